package helper

import (
	"errors"
	"fmt"
	"os"

	"github.com/0xPolygon/edge-vault/crypto"
	"github.com/0xPolygon/edge-vault/secrets"
	secretsHelper "github.com/0xPolygon/edge-vault/secrets/helper"
)

// Flags shared by every command that signs envelopes with the
// secrets-managed relayer key
const (
	AccountDirFlag    = "data-dir"
	AccountConfigFlag = "config"

	AccountDirFlagDesc    = "the directory for the vault data if the local FS secrets manager is used"
	AccountConfigFlagDesc = "the path to the SecretsManager config file, if omitted, the local FS secrets manager is used"
)

var (
	ErrInvalidSecretsParams = errors.New("no config file or data directory passed in")
	ErrUnsupportedSecrets   = errors.New("unsupported secrets manager")
)

// ValidateSecretFlags checks that exactly one key source is usable
func ValidateSecretFlags(dataDir, config string) error {
	if config == "" {
		if dataDir == "" {
			return ErrInvalidSecretsParams
		}

		if _, err := os.Stat(dataDir); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("provided directory '%s' doesn't exist", dataDir)
		}
	}

	return nil
}

// GetSecretsManager resolves a secrets manager instance based on the
// provided data directory or config path. The config path wins when both
// are set.
func GetSecretsManager(dataPath, configPath string) (secrets.SecretsManager, error) {
	if configPath != "" {
		secretsConfig, readErr := secrets.ReadConfig(configPath)
		if readErr != nil {
			return nil, fmt.Errorf("invalid secrets configuration: %w", readErr)
		}

		if !secrets.SupportedServiceManager(secretsConfig.Type) {
			return nil, ErrUnsupportedSecrets
		}

		return secretsHelper.InitCloudSecretsManager(secretsConfig)
	}

	return secretsHelper.SetupLocalSecretsManager(dataPath)
}

// GetRelayerKey loads the relayer signing key from the resolved secrets
// manager
func GetRelayerKey(dataPath, configPath string) (crypto.Key, error) {
	secretsManager, err := GetSecretsManager(dataPath, configPath)
	if err != nil {
		return nil, err
	}

	privKey, err := crypto.ReadRelayerKey(secretsManager)
	if err != nil {
		return nil, err
	}

	return crypto.NewECDSAKey(privKey), nil
}
