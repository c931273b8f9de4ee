package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAddr(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		address    string
		defaultIP  IPBinding
		expectedIP string
		expectErr  bool
	}{
		{
			name:       "explicit ip and port",
			address:    "127.0.0.1:10001",
			defaultIP:  AllInterfacesBinding,
			expectedIP: "127.0.0.1",
		},
		{
			name:       "port only falls back to default ip",
			address:    ":8545",
			defaultIP:  LocalHostBinding,
			expectedIP: "127.0.0.1",
		},
		{
			name:       "port only falls back to all interfaces",
			address:    ":8545",
			defaultIP:  AllInterfacesBinding,
			expectedIP: "0.0.0.0",
		},
		{
			name:      "invalid port",
			address:   "127.0.0.1:999999",
			defaultIP: LocalHostBinding,
			expectErr: true,
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			addr, err := ResolveAddr(c.address, c.defaultIP)

			if c.expectErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, c.expectedIP, addr.IP.String())
		})
	}
}

func TestValidateAddress(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		address   string
		expectErr bool
	}{
		{
			name:    "well formed address",
			address: "0x1010101010101010101010101010101010101010",
		},
		{
			name:      "zero address",
			address:   "0x0000000000000000000000000000000000000000",
			expectErr: true,
		},
		{
			name:      "truncated address",
			address:   "0x1234",
			expectErr: true,
		},
		{
			name:      "not hex at all",
			address:   "clearly-not-an-address",
			expectErr: true,
		},
		{
			name:      "empty string",
			address:   "",
			expectErr: true,
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAddress(c.address)

			if c.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestFormatKV(t *testing.T) {
	t.Parallel()

	assert.Equal(
		t,
		"A  = 1\nBB = 2",
		FormatKV([]string{"A|1", "BB|2"}),
	)
}

func TestValidateSecretFlags(t *testing.T) {
	t.Parallel()

	t.Run("neither flag set", func(t *testing.T) {
		t.Parallel()

		require.ErrorIs(t, ValidateSecretFlags("", ""), ErrInvalidSecretsParams)
	})

	t.Run("config path set", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, ValidateSecretFlags("", "./secrets.json"))
	})

	t.Run("missing data directory", func(t *testing.T) {
		t.Parallel()

		require.Error(t, ValidateSecretFlags("./does-not-exist", ""))
	})

	t.Run("existing data directory", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, ValidateSecretFlags(t.TempDir(), ""))
	})
}
