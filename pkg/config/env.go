package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/nspcc-dev/go-ordered-json"
	"github.com/nspcc-dev/neo-go/pkg/config/netmode"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"gopkg.in/yaml.v3"
)

const (
	// EnvTestbed is the environment variable overriding testbed location.
	EnvTestbed = "NEO_TESTBED"
	// DefaultTestbedPath is the testbed used when neither an explicit path
	// nor EnvTestbed is given.
	DefaultTestbedPath = "testbed/localnet.json"

	// DefaultRPCEndpoint is the RPC endpoint of the local testing network.
	DefaultRPCEndpoint = "127.0.0.1:10332"
	// DefaultNetwork is the magic of the local testing network.
	DefaultNetwork netmode.Magic = 1234567890
)

// Testbed document keys.
const (
	KeyRPCEndpoint = "rpc_endpoint"
	KeyNetwork     = "network"
	KeyHardforks   = "hardforks"
	KeyValidators  = "validators"
	KeyOthers      = "others"
)

// DocumentKeys lists all required top-level testbed keys in canonical order.
var DocumentKeys = []string{KeyRPCEndpoint, KeyNetwork, KeyHardforks, KeyValidators, KeyOthers}

// Document is a plain key-value form of the testbed.
type Document map[string]any

// Env describes the network the tests are run against. The node behind
// RPCEndpoint must have RpcServer, consensus and ApplicationLogs services
// enabled.
type Env struct {
	RPCEndpoint string
	Network     netmode.Magic
	Hardforks   Hardfork
	// Validators are consensus node accounts, they're used to sign
	// BFT/committee multisignature transactions.
	Validators []*wallet.Account
	// Others are regular accounts for testing.
	Others []*wallet.Account
}

// ResolvePath returns testbed path to use: path itself if it's not empty,
// EnvTestbed variable value if it's set and DefaultTestbedPath otherwise.
// The variable is checked on every call.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if p := os.Getenv(EnvTestbed); p != "" {
		return p
	}
	return DefaultTestbedPath
}

// Load reads testbed from the given file, see ResolvePath for empty path
// handling. Files with .yml/.yaml extensions are parsed as YAML, everything
// else is JSON. All errors returned are *ConfigurationError.
func Load(path string) (*Env, error) {
	path = ResolvePath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{File: path, Err: err}
	}
	doc, err := ParseDocument(data, isYAML(path))
	if err != nil {
		return nil, withFile(path, err)
	}
	env, err := FromDocument(doc)
	if err != nil {
		return nil, withFile(path, err)
	}
	return env, nil
}

// ParseDocument decodes testbed JSON (or YAML) into Document. Numbers are
// kept precise.
func ParseDocument(data []byte, asYAML bool) (Document, error) {
	var doc Document
	if asYAML {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &ConfigurationError{Err: fmt.Errorf("bad YAML: %w", err)}
		}
	} else {
		d := json.NewDecoder(bytes.NewReader(data))
		d.UseNumber()
		if err := d.Decode(&doc); err != nil {
			return nil, &ConfigurationError{Err: fmt.Errorf("bad JSON: %w", err)}
		}
		var extra any
		if err := d.Decode(&extra); !errors.Is(err, io.EOF) {
			return nil, &ConfigurationError{Err: errors.New("bad JSON: trailing data after the document")}
		}
	}
	if doc == nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("%w: empty document", ErrInvalidValue)}
	}
	return doc, nil
}

// FromDocument creates Env from its document form. Hardforks may be given
// either as Hardfork (or pointer to it) or as a name->height mapping.
func FromDocument(doc Document) (*Env, error) {
	for _, k := range DocumentKeys {
		if _, ok := doc[k]; !ok {
			return nil, keyError(k, ErrMissingKey)
		}
	}

	endpoint, ok := doc[KeyRPCEndpoint].(string)
	if !ok || endpoint == "" {
		return nil, keyError(KeyRPCEndpoint, fmt.Errorf("%w: expected non-empty string, got %v", ErrInvalidValue, doc[KeyRPCEndpoint]))
	}
	network, err := toUint32(doc[KeyNetwork])
	if err != nil {
		return nil, keyError(KeyNetwork, err)
	}
	hfs, err := toHardfork(doc[KeyHardforks])
	if err != nil {
		return nil, err
	}
	validators, err := decodeAccounts(KeyValidators, doc[KeyValidators])
	if err != nil {
		return nil, err
	}
	others, err := decodeAccounts(KeyOthers, doc[KeyOthers])
	if err != nil {
		return nil, err
	}
	return &Env{
		RPCEndpoint: endpoint,
		Network:     netmode.Magic(network),
		Hardforks:   hfs,
		Validators:  validators,
		Others:      others,
	}, nil
}

// ToDocument returns the document form of e.
func (e *Env) ToDocument() Document {
	return Document{
		KeyRPCEndpoint: e.RPCEndpoint,
		KeyNetwork:     uint32(e.Network),
		KeyHardforks:   e.Hardforks.ToMap(),
		KeyValidators:  encodeAccounts(e.Validators),
		KeyOthers:      encodeAccounts(e.Others),
	}
}

// Equal checks that e and o describe the same testbed (same endpoint,
// network, hardforks and keys in the same order).
func (e *Env) Equal(o *Env) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.RPCEndpoint == o.RPCEndpoint &&
		e.Network == o.Network &&
		e.Hardforks == o.Hardforks &&
		sameKeys(e.Validators, o.Validators) &&
		sameKeys(e.Others, o.Others)
}

// MarshalJSON implements the json.Marshaler interface, keys are written in
// the canonical order.
func (e *Env) MarshalJSON() ([]byte, error) {
	var hfs = make(json.OrderedObject, 0, len(hardforkFields))
	for _, f := range hardforkFields {
		hfs = append(hfs, json.Member{Key: f.name, Value: *f.field(&e.Hardforks)})
	}
	return json.Marshal(json.OrderedObject{
		{Key: KeyRPCEndpoint, Value: e.RPCEndpoint},
		{Key: KeyNetwork, Value: uint32(e.Network)},
		{Key: KeyHardforks, Value: hfs},
		{Key: KeyValidators, Value: encodeAccounts(e.Validators)},
		{Key: KeyOthers, Value: encodeAccounts(e.Others)},
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (e *Env) UnmarshalJSON(data []byte) error {
	doc, err := ParseDocument(data, false)
	if err != nil {
		return err
	}
	env, err := FromDocument(doc)
	if err != nil {
		return err
	}
	*e = *env
	return nil
}

// yamlEnv is the YAML form of Env. Hardfork names sort alphabetically in
// their activation order, so a map is fine here.
type yamlEnv struct {
	RPCEndpoint string            `yaml:"rpc_endpoint"`
	Network     uint32            `yaml:"network"`
	Hardforks   map[string]uint32 `yaml:"hardforks"`
	Validators  []string          `yaml:"validators"`
	Others      []string          `yaml:"others"`
}

// MarshalYAML implements the yaml.Marshaler interface.
func (e *Env) MarshalYAML() (any, error) {
	return yamlEnv{
		RPCEndpoint: e.RPCEndpoint,
		Network:     uint32(e.Network),
		Hardforks:   e.Hardforks.ToMap(),
		Validators:  encodeAccounts(e.Validators),
		Others:      encodeAccounts(e.Others),
	}, nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (e *Env) UnmarshalYAML(node *yaml.Node) error {
	var doc Document
	if err := node.Decode(&doc); err != nil {
		return err
	}
	env, err := FromDocument(doc)
	if err != nil {
		return err
	}
	*e = *env
	return nil
}

// Encode returns indented JSON or YAML document.
func (e *Env) Encode(asYAML bool) ([]byte, error) {
	if asYAML {
		return yaml.Marshal(e)
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteFile saves e to the given path, format is chosen by extension just
// like Load does.
func (e *Env) WriteFile(path string) error {
	data, err := e.Encode(isYAML(path))
	if err != nil {
		return fmt.Errorf("failed to encode testbed: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create testbed directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return true
	default:
		return false
	}
}

func toHardfork(v any) (Hardfork, error) {
	switch h := v.(type) {
	case Hardfork:
		return h, nil
	case *Hardfork:
		if h == nil {
			return Hardfork{}, keyError(KeyHardforks, fmt.Errorf("%w: nil descriptor", ErrInvalidValue))
		}
		return *h, nil
	case map[string]any:
		return NewHardforkFromMap(h)
	case Document:
		return NewHardforkFromMap(h)
	case map[string]uint32:
		var m = make(map[string]any, len(h))
		for k, v := range h {
			m[k] = v
		}
		return NewHardforkFromMap(m)
	default:
		return Hardfork{}, keyError(KeyHardforks, fmt.Errorf("%w: %T is not a mapping", ErrInvalidValue, v))
	}
}

// toUint32 converts numbers coming from JSON/YAML decoders or Go code.
func toUint32(v any) (uint32, error) {
	var n int64
	switch x := v.(type) {
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			// 5.0 and 5e3 are integers too.
			f, fErr := x.Float64()
			if fErr != nil || f != float64(int64(f)) {
				return 0, fmt.Errorf("%w: %s is not an integer", ErrInvalidValue, x)
			}
			i = int64(f)
		}
		n = i
	case float64:
		if x != float64(int64(x)) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidValue, x)
		}
		n = int64(x)
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint32:
		return x, nil
	case netmode.Magic:
		return uint32(x), nil
	case uint64:
		if x > 1<<32-1 {
			return 0, fmt.Errorf("%w: %d overflows uint32", ErrInvalidValue, x)
		}
		return uint32(x), nil
	case uint:
		if uint64(x) > 1<<32-1 {
			return 0, fmt.Errorf("%w: %d overflows uint32", ErrInvalidValue, x)
		}
		return uint32(x), nil
	default:
		return 0, fmt.Errorf("%w: %v (%T) is not a number", ErrInvalidValue, v, v)
	}
	if n < 0 || n > 1<<32-1 {
		return 0, fmt.Errorf("%w: %d is out of uint32 range", ErrInvalidValue, n)
	}
	return uint32(n), nil
}

func sameKeys(a, b []*wallet.Account) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i].PrivateKey().Bytes(), b[i].PrivateKey().Bytes()) {
			return false
		}
	}
	return true
}
