package common

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SetupDataDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	require.NoError(t, SetupDataDir(dir, []string{"vault", "keystore"}))

	assert.True(t, DirectoryExists(filepath.Join(dir, "vault")))
	assert.True(t, DirectoryExists(filepath.Join(dir, "keystore")))
	assert.False(t, DirectoryExists(filepath.Join(dir, "missing")))

	// already existing directories are not an error
	require.NoError(t, SetupDataDir(dir, []string{"vault"}))
}

func Test_ParseUint64orHex(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		value      *string
		expected   uint64
		shouldFail bool
	}{
		{"nil value", nil, 0, false},
		{"decimal", strPtr("123"), 123, false},
		{"hex", strPtr("0xff"), 255, false},
		{"invalid", strPtr("0xzz"), 0, true},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := ParseUint64orHex(c.value)
			if c.shouldFail {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, c.expected, parsed)
			}
		})
	}
}

func Test_EncodeParseRoundtrip(t *testing.T) {
	t.Parallel()

	num, err := ParseUint64orHex(EncodeUint64(57005))
	require.NoError(t, err)
	assert.Equal(t, uint64(57005), num)

	bigNum, err := ParseUint256orHex(EncodeBigInt(big.NewInt(1000000)))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000000), bigNum)
}

func strPtr(s string) *string {
	return &s
}
