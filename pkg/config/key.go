package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
)

// EncodePrivateKey returns testbed representation of the key: 0x-prefixed
// hex of the 32-byte scalar in little-endian byte order.
func EncodePrivateKey(p *keys.PrivateKey) string {
	b := p.Bytes()
	slices.Reverse(b)
	return "0x" + hex.EncodeToString(b)
}

// DecodePrivateKey is the inverse of EncodePrivateKey. The hex string is
// treated as an unsigned number, so leading zeroes may be omitted, but it
// must fit into 32 bytes.
func DecodePrivateKey(s string) (*keys.PrivateKey, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(digits) == 0 {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidKey)
	}
	n, ok := new(big.Int).SetString(digits, 16)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("%w: not a hex number: %q", ErrInvalidKey, s)
	}
	if n.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero key", ErrInvalidKey)
	}
	u, overflow := uint256.FromBig(n)
	if overflow {
		return nil, fmt.Errorf("%w: wrong length, %d bits", ErrInvalidKey, n.BitLen())
	}
	b := u.Bytes32()
	slices.Reverse(b[:])
	p, err := keys.NewPrivateKeyFromBytes(b[:])
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}
	return p, nil
}

// decodeAccounts converts a list of encoded keys into accounts.
func decodeAccounts(key string, v any) ([]*wallet.Account, error) {
	var strs []string
	switch l := v.(type) {
	case []string:
		strs = l
	case []any:
		strs = make([]string, 0, len(l))
		for i, e := range l {
			s, ok := e.(string)
			if !ok {
				return nil, keyError(key, fmt.Errorf("%w: element #%d is %T, not a string", ErrInvalidValue, i, e))
			}
			strs = append(strs, s)
		}
	case nil:
		return nil, keyError(key, fmt.Errorf("%w: null list", ErrInvalidValue))
	default:
		return nil, keyError(key, fmt.Errorf("%w: %T is not a list", ErrInvalidValue, v))
	}

	var accs = make([]*wallet.Account, 0, len(strs))
	for i, s := range strs {
		p, err := DecodePrivateKey(s)
		if err != nil {
			return nil, keyError(key, fmt.Errorf("account #%d: %w", i, err))
		}
		accs = append(accs, wallet.NewAccountFromPrivateKey(p))
	}
	return accs, nil
}

func encodeAccounts(accs []*wallet.Account) []string {
	var res = make([]string, 0, len(accs))
	for _, a := range accs {
		res = append(res, EncodePrivateKey(a.PrivateKey()))
	}
	return res
}
