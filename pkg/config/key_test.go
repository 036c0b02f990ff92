package config

import (
	"strings"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/stretchr/testify/require"
)

func sequentialKey(t *testing.T) *keys.PrivateKey {
	var b = make([]byte, 32)
	for i := range b {
		b[i] = byte(i + 1)
	}
	p, err := keys.NewPrivateKeyFromBytes(b)
	require.NoError(t, err)
	return p
}

func TestEncodePrivateKey(t *testing.T) {
	p := sequentialKey(t)
	const expected = "0x201f1e1d1c1b1a191817161514131211100f0e0d0c0b0a090807060504030201"
	require.Equal(t, expected, EncodePrivateKey(p))

	actual, err := DecodePrivateKey(expected)
	require.NoError(t, err)
	require.Equal(t, p.Bytes(), actual.Bytes())
}

func TestDecodePrivateKey(t *testing.T) {
	t.Run("random", func(t *testing.T) {
		for range 10 {
			p, err := keys.NewPrivateKey()
			require.NoError(t, err)
			actual, err := DecodePrivateKey(EncodePrivateKey(p))
			require.NoError(t, err)
			require.Equal(t, p.Bytes(), actual.Bytes())
			require.True(t, p.PublicKey().Equal(actual.PublicKey()))
		}
	})
	t.Run("no prefix", func(t *testing.T) {
		s := strings.TrimPrefix(EncodePrivateKey(sequentialKey(t)), "0x")
		actual, err := DecodePrivateKey(s)
		require.NoError(t, err)
		require.Equal(t, sequentialKey(t).Bytes(), actual.Bytes())
	})
	t.Run("short", func(t *testing.T) {
		// Missing leading zero digits are fine, the value is the same.
		actual, err := DecodePrivateKey("0x1")
		require.NoError(t, err)
		expected := make([]byte, 32)
		expected[0] = 1
		require.Equal(t, expected, actual.Bytes())
	})
	t.Run("invalid", func(t *testing.T) {
		for _, s := range []string{
			"",
			"0x",
			"0xzz",
			"0x-01",
			"0x0",
			"0x" + strings.Repeat("ff", 33),
		} {
			_, err := DecodePrivateKey(s)
			require.ErrorIs(t, err, ErrInvalidKey, s)
		}
	})
}
