package local

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/edge-vault/helper/common"
	"github.com/0xPolygon/edge-vault/secrets"
)

// LocalSecretsManager stores secrets on the local file system,
// the relayer key under <path>/keystore/relayer.key
type LocalSecretsManager struct {
	logger hclog.Logger

	// base working directory
	path string

	// paths of the known secrets, keyed by secret name
	secretPathMap     map[string]string
	secretPathMapLock sync.RWMutex
}

// SecretsManagerFactory implements the factory method
func SecretsManagerFactory(
	_ *secrets.SecretsManagerConfig,
	params *secrets.SecretsManagerParams,
) (secrets.SecretsManager, error) {
	path, ok := params.Extra[secrets.Path]
	if !ok {
		return nil, errors.New("no path specified for local secrets manager")
	}

	pathStr, ok := path.(string)
	if !ok {
		return nil, errors.New("invalid type assertion")
	}

	localManager := &LocalSecretsManager{
		logger:        params.Logger.Named(string(secrets.Local)),
		path:          pathStr,
		secretPathMap: make(map[string]string),
	}

	if err := localManager.Setup(); err != nil {
		return nil, err
	}

	return localManager, nil
}

// Setup creates the keystore directory and registers the relayer key path
func (l *LocalSecretsManager) Setup() error {
	l.secretPathMapLock.Lock()
	defer l.secretPathMapLock.Unlock()

	if err := common.SetupDataDir(l.path, []string{secrets.KeystoreFolderLocal}); err != nil {
		return err
	}

	// baseDir/keystore/relayer.key
	l.secretPathMap[secrets.RelayerKey] = filepath.Join(
		l.path,
		secrets.KeystoreFolderLocal,
		secrets.RelayerKeyLocal,
	)

	return nil
}

// GetSecret reads the secret from disk
func (l *LocalSecretsManager) GetSecret(name string) ([]byte, error) {
	l.secretPathMapLock.RLock()
	secretPath, ok := l.secretPathMap[name]
	l.secretPathMapLock.RUnlock()

	if !ok {
		return nil, secrets.ErrSecretNotFound
	}

	secret, err := os.ReadFile(secretPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read secret from disk (%s), %w", secretPath, err)
	}

	return secret, nil
}

// SetSecret writes the secret to disk, readable by the owner only.
// A secret that is already initialized is not overwritten
func (l *LocalSecretsManager) SetSecret(name string, value []byte) error {
	// no write without a working directory
	if l.path == "" {
		return nil
	}

	l.secretPathMapLock.RLock()
	secretPath, ok := l.secretPathMap[name]
	l.secretPathMapLock.RUnlock()

	if !ok {
		return secrets.ErrSecretNotFound
	}

	if _, err := os.Stat(secretPath); err == nil {
		return fmt.Errorf("%s already initialized", secretPath)
	}

	if err := os.WriteFile(secretPath, value, 0o600); err != nil {
		return fmt.Errorf("unable to write secret to disk (%s), %w", secretPath, err)
	}

	return nil
}

// HasSecret checks if the secret is present on disk
func (l *LocalSecretsManager) HasSecret(name string) bool {
	_, err := l.GetSecret(name)

	return err == nil
}

// RemoveSecret removes the secret from disk and forgets its path
func (l *LocalSecretsManager) RemoveSecret(name string) error {
	l.secretPathMapLock.Lock()
	defer l.secretPathMapLock.Unlock()

	secretPath, ok := l.secretPathMap[name]
	if !ok {
		return secrets.ErrSecretNotFound
	}

	if err := os.Remove(secretPath); err != nil {
		return fmt.Errorf("unable to remove secret, %w", err)
	}

	delete(l.secretPathMap, name)

	return nil
}
