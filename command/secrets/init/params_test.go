package init

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/edge-vault/types"
)

func Test_validateFlags(t *testing.T) {
	t.Parallel()

	ip := &initParams{}
	require.ErrorIs(t, ip.validateFlags(), errInvalidParams)

	ip = &initParams{dataDir: "./vault-data"}
	require.NoError(t, ip.validateFlags())
}

func Test_initSecrets(t *testing.T) {
	dir := t.TempDir()

	ip := &initParams{dataDir: dir}
	require.NoError(t, ip.initSecrets())

	assert.True(t, fileExists(path.Join(dir, "keystore/relayer.key")))

	res, err := ip.getResult()
	require.NoError(t, err)

	initRes, ok := res.(*SecretsInitResult)
	require.True(t, ok)
	assert.NotEqual(t, types.ZeroAddress, initRes.Address)

	// A repeated init must not overwrite the existing key
	ip = &initParams{dataDir: dir}
	require.ErrorContains(t, ip.initSecrets(), "already initialized")
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}

	return !info.IsDir()
}
