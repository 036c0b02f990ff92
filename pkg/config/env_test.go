package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	localnetPath    = "./testdata/localnet.json"
	partialPath     = "./testdata/partial.yml"
	noNetworkPath   = "./testdata/no_network.json"
	badHardforkPath = "./testdata/bad_hardfork.json"
	brokenPath      = "./testdata/broken.json"
)

func newTestEnv(t *testing.T, nValidators, nOthers int) *Env {
	newAccs := func(n int) []*wallet.Account {
		var accs []*wallet.Account
		for range n {
			p, err := keys.NewPrivateKey()
			require.NoError(t, err)
			accs = append(accs, wallet.NewAccountFromPrivateKey(p))
		}
		return accs
	}
	hfs := DefaultHardfork()
	hfs.Cockatrice = 5
	hfs.Faun = 300
	return &Env{
		RPCEndpoint: "http://127.0.0.1:20332",
		Network:     42,
		Hardforks:   hfs,
		Validators:  newAccs(nValidators),
		Others:      newAccs(nOthers),
	}
}

func TestLoad(t *testing.T) {
	env, err := Load(localnetPath)
	require.NoError(t, err)
	require.Equal(t, DefaultRPCEndpoint, env.RPCEndpoint)
	require.Equal(t, DefaultNetwork, env.Network)
	require.Equal(t, DefaultHardfork(), env.Hardforks)
	require.Len(t, env.Validators, 4)
	require.Len(t, env.Others, 2)

	// Same as testchain's first privnet key (KzfPUYDC9n2yf4fK5ro4C8KMcdeXtFuEnStycbZgX3GomiUsvX6W).
	require.Equal(t, "66b8bcf4202da680101bbb53aecb077afcdd4cf98af5d716ddf4a629c0a7d30a",
		env.Validators[0].PrivateKey().String())
}

func TestLoadYAML(t *testing.T) {
	env, err := Load(partialPath)
	require.NoError(t, err)
	require.Equal(t, "http://10.0.0.1:30333", env.RPCEndpoint)
	require.EqualValues(t, 56753, env.Network)

	hfs := DefaultHardfork()
	hfs.Echidna = 100
	require.Equal(t, hfs, env.Hardforks)
	require.Len(t, env.Validators, 1)
	require.Len(t, env.Others, 0)
}

func TestLoadPathResolution(t *testing.T) {
	t.Run("env variable", func(t *testing.T) {
		t.Setenv(EnvTestbed, partialPath)
		require.Equal(t, partialPath, ResolvePath(""))

		env, err := Load("")
		require.NoError(t, err)
		require.EqualValues(t, 56753, env.Network)
	})
	t.Run("explicit path wins", func(t *testing.T) {
		t.Setenv(EnvTestbed, partialPath)
		env, err := Load(localnetPath)
		require.NoError(t, err)
		require.Equal(t, DefaultNetwork, env.Network)
	})
	t.Run("variable changes are observed", func(t *testing.T) {
		t.Setenv(EnvTestbed, partialPath)
		require.Equal(t, partialPath, ResolvePath(""))
		t.Setenv(EnvTestbed, localnetPath)
		require.Equal(t, localnetPath, ResolvePath(""))
	})
	t.Run("default", func(t *testing.T) {
		t.Setenv(EnvTestbed, "")
		require.Equal(t, DefaultTestbedPath, ResolvePath(""))
	})
}

func TestLoadErrors(t *testing.T) {
	check := func(t *testing.T, path string, key string, target error) {
		env, err := Load(path)
		require.Nil(t, env)
		var cErr *ConfigurationError
		require.ErrorAs(t, err, &cErr)
		require.Equal(t, path, cErr.File)
		require.Equal(t, key, cErr.Key)
		if target != nil {
			require.ErrorIs(t, err, target)
		}
	}
	t.Run("missing file", func(t *testing.T) {
		check(t, filepath.Join(t.TempDir(), "nope.json"), "", os.ErrNotExist)
	})
	t.Run("bad JSON", func(t *testing.T) {
		check(t, brokenPath, "", nil)
	})
	t.Run("missing network", func(t *testing.T) {
		check(t, noNetworkPath, KeyNetwork, ErrMissingKey)
	})
	t.Run("unknown hardfork", func(t *testing.T) {
		check(t, badHardforkPath, KeyHardforks, ErrUnknownHardfork)
	})
	t.Run("not an object", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "array.json")
		require.NoError(t, os.WriteFile(p, []byte(`[1, 2, 3]`), 0644))
		check(t, p, "", nil)
	})
	t.Run("trailing data", func(t *testing.T) {
		data, err := os.ReadFile(localnetPath)
		require.NoError(t, err)
		for name, junk := range map[string]string{
			"object":  `{"network": 1}`,
			"garbage": `xyz`,
			"brace":   `}`,
		} {
			p := filepath.Join(t.TempDir(), name+".json")
			require.NoError(t, os.WriteFile(p, append(data, junk...), 0644))
			check(t, p, "", nil)
		}
	})
}

func TestParseDocumentTrailingSpace(t *testing.T) {
	data, err := os.ReadFile(localnetPath)
	require.NoError(t, err)
	_, err = ParseDocument(append(data, " \n\t\n"...), false)
	require.NoError(t, err)
}

func TestParseDocumentWholeNumbers(t *testing.T) {
	const (
		jsonDoc = `{"rpc_endpoint": "127.0.0.1:10332", "network": %s, "hardforks": {"HF_Faun": %s}, "validators": [], "others": []}`
		yamlDoc = "rpc_endpoint: 127.0.0.1:10332\nnetwork: %s\nhardforks:\n  HF_Faun: %s\nvalidators: []\nothers: []\n"
	)
	for _, asYAML := range []bool{false, true} {
		format := jsonDoc
		if asYAML {
			format = yamlDoc
		}
		for _, tc := range []struct {
			network, faun string
			ok            bool
		}{
			{"42", "5", true},
			{"42.0", "5.0", true},
			{"4.2e1", "5", true},
			{"42.5", "5", false},
			{"42", "5.5", false},
			{"-42", "5", false},
			{"4294967296", "5", false},
		} {
			doc, err := ParseDocument([]byte(fmt.Sprintf(format, tc.network, tc.faun)), asYAML)
			require.NoError(t, err)
			env, err := FromDocument(doc)
			if !tc.ok {
				require.ErrorIs(t, err, ErrInvalidValue, "yaml %t: %s/%s", asYAML, tc.network, tc.faun)
				continue
			}
			require.NoError(t, err, "yaml %t: %s/%s", asYAML, tc.network, tc.faun)
			require.EqualValues(t, 42, env.Network)
			require.EqualValues(t, 5, env.Hardforks.Faun)
		}
	}
}

func TestFromDocumentMissingKeys(t *testing.T) {
	full := newTestEnv(t, 1, 1).ToDocument()
	for _, k := range DocumentKeys {
		doc := Document{}
		for kk, v := range full {
			if kk != k {
				doc[kk] = v
			}
		}
		env, err := FromDocument(doc)
		require.Nil(t, env, k)
		var cErr *ConfigurationError
		require.ErrorAs(t, err, &cErr, k)
		require.Equal(t, k, cErr.Key)
		require.ErrorIs(t, err, ErrMissingKey, k)
	}
}

func TestFromDocumentInvalid(t *testing.T) {
	base := newTestEnv(t, 1, 1).ToDocument()
	for name, tc := range map[string]struct {
		key    string
		value  any
		target error
	}{
		"empty endpoint":     {KeyRPCEndpoint, "", ErrInvalidValue},
		"numeric endpoint":   {KeyRPCEndpoint, 10332, ErrInvalidValue},
		"negative network":   {KeyNetwork, -1, ErrInvalidValue},
		"string network":     {KeyNetwork, "42", ErrInvalidValue},
		"fractional network": {KeyNetwork, 4.2, ErrInvalidValue},
		"hardforks list":     {KeyHardforks, []any{1, 2}, ErrInvalidValue},
		"validators string":  {KeyValidators, "0x01", ErrInvalidValue},
		"validators numbers": {KeyValidators, []any{1}, ErrInvalidValue},
		"bad hex":            {KeyValidators, []string{"0xabcg"}, ErrInvalidKey},
		"long key":           {KeyOthers, []any{"0x" + strings.Repeat("11", 40)}, ErrInvalidKey},
	} {
		t.Run(name, func(t *testing.T) {
			doc := Document{}
			for k, v := range base {
				doc[k] = v
			}
			doc[tc.key] = tc.value
			env, err := FromDocument(doc)
			require.Nil(t, env)
			var cErr *ConfigurationError
			require.ErrorAs(t, err, &cErr)
			require.Equal(t, tc.key, cErr.Key)
			require.ErrorIs(t, err, tc.target)
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	env := newTestEnv(t, 4, 3)
	doc := env.ToDocument()
	require.Equal(t, env.RPCEndpoint, doc[KeyRPCEndpoint])
	require.Equal(t, uint32(env.Network), doc[KeyNetwork])
	require.Equal(t, env.Hardforks.ToMap(), doc[KeyHardforks])
	require.Len(t, doc[KeyValidators], 4)
	require.Len(t, doc[KeyOthers], 3)

	actual, err := FromDocument(doc)
	require.NoError(t, err)
	require.True(t, env.Equal(actual))
	for i := range env.Validators {
		require.Equal(t, env.Validators[i].PrivateKey().Bytes(), actual.Validators[i].PrivateKey().Bytes())
		require.Equal(t, env.Validators[i].Address, actual.Validators[i].Address)
	}
}

func TestFromDocumentHardforkForms(t *testing.T) {
	env := newTestEnv(t, 1, 0)
	for name, hfs := range map[string]any{
		"value":   env.Hardforks,
		"pointer": &env.Hardforks,
		"map":     env.Hardforks.ToMap(),
	} {
		t.Run(name, func(t *testing.T) {
			doc := env.ToDocument()
			doc[KeyHardforks] = hfs
			actual, err := FromDocument(doc)
			require.NoError(t, err)
			require.Equal(t, env.Hardforks, actual.Hardforks)
		})
	}
}

func TestEnvJSON(t *testing.T) {
	env := newTestEnv(t, 2, 1)
	data, err := json.Marshal(env)
	require.NoError(t, err)

	// Canonical key order is preserved.
	s := string(data)
	var last = -1
	for _, k := range DocumentKeys {
		idx := strings.Index(s, `"`+k+`"`)
		require.Greater(t, idx, last, k)
		last = idx
	}

	var actual = new(Env)
	require.NoError(t, json.Unmarshal(data, actual))
	require.True(t, env.Equal(actual))

	require.Error(t, json.Unmarshal([]byte(`{"network": 1}`), new(Env)))
}

func TestEnvYAML(t *testing.T) {
	env := newTestEnv(t, 2, 2)
	data, err := yaml.Marshal(env)
	require.NoError(t, err)

	var actual = new(Env)
	require.NoError(t, yaml.Unmarshal(data, actual))
	require.True(t, env.Equal(actual))
}

func TestEnvWriteFile(t *testing.T) {
	env := newTestEnv(t, 4, 2)
	for _, name := range []string{"testbed.json", "testbed.yml", "sub/dir/testbed.yaml"} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), name)
			require.NoError(t, env.WriteFile(p))
			actual, err := Load(p)
			require.NoError(t, err)
			require.True(t, env.Equal(actual))
		})
	}
}

func TestEnvEqual(t *testing.T) {
	a := newTestEnv(t, 2, 1)
	b, err := FromDocument(a.ToDocument())
	require.NoError(t, err)
	require.True(t, a.Equal(b))

	b.Hardforks.Basilisk = 77
	require.False(t, a.Equal(b))

	c, err := FromDocument(a.ToDocument())
	require.NoError(t, err)
	c.Others = c.Others[:0]
	require.False(t, a.Equal(c))

	var nilEnv *Env
	require.True(t, nilEnv.Equal(nil))
	require.False(t, a.Equal(nil))
}
