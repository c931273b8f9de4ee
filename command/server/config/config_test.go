package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfigFile(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		fileName string
		content  string
		check    func(t *testing.T, config *Config)
	}{
		{
			name:     "json config",
			fileName: "config.json",
			content: `{
				"data_dir": "/var/lib/edge-vault",
				"storage": "boltdb",
				"json_rpc_batch_request_limit": 50
			}`,
			check: func(t *testing.T, config *Config) {
				t.Helper()

				assert.Equal(t, "/var/lib/edge-vault", config.DataDir)
				assert.Equal(t, "boltdb", config.Storage)
				assert.Equal(t, uint64(50), config.JSONRPCBatchRequestLimit)
			},
		},
		{
			name:     "yaml config",
			fileName: "config.yaml",
			content: `
data_dir: /srv/vault
log_level: DEBUG
headers:
  access_control_allow_origins:
    - "https://operator.example.com"
`,
			check: func(t *testing.T, config *Config) {
				t.Helper()

				assert.Equal(t, "/srv/vault", config.DataDir)
				assert.Equal(t, "DEBUG", config.LogLevel)
				assert.Equal(t,
					[]string{"https://operator.example.com"},
					config.Headers.AccessControlAllowOrigins,
				)
			},
		},
		{
			name:     "unset fields keep defaults",
			fileName: "config.json",
			content:  `{"log_to": "/var/log/vault.log"}`,
			check: func(t *testing.T, config *Config) {
				t.Helper()

				assert.Equal(t, "/var/log/vault.log", config.LogFilePath)
				assert.Equal(t, DefaultJSONRPCBatchRequestLimit, config.JSONRPCBatchRequestLimit)
				assert.Equal(t, DefaultJSONRPCEventRangeLimit, config.JSONRPCEventRangeLimit)
				assert.Equal(t, DefaultConcurrentRequestsDebug, config.ConcurrentRequestsDebug)
				assert.Equal(t, "INFO", config.LogLevel)
			},
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), c.fileName)
			require.NoError(t, os.WriteFile(path, []byte(c.content), 0600))

			config, err := ReadConfigFile(path)
			require.NoError(t, err)

			c.check(t, config)
		})
	}
}

func TestReadConfigFile_UnsupportedSuffix(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir = \"/tmp\""), 0600))

	_, err := ReadConfigFile(path)
	require.ErrorContains(t, err, "neither hcl, json, yaml nor yml")
}

func TestReadConfigFile_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := ReadConfigFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
