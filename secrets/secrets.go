package secrets

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/hashicorp/go-hclog"
)

type SecretsManagerType string

// Define constant types of secrets managers
const (
	// Local pertains to the local FS [Default]
	Local SecretsManagerType = "local"

	// HashicorpVault pertains to the Hashicorp Vault server
	HashicorpVault SecretsManagerType = "hashicorp-vault"

	// AWSSSM pertains to AWS SSM using configured EC2 instance role
	AWSSSM SecretsManagerType = "aws-ssm"

	// GCPSSM pertains to the Google Cloud Computing secret store manager
	GCPSSM SecretsManagerType = "gcp-ssm"
)

// Define constant names for available secrets
const (
	// RelayerKey is the private key secret of the authorized relayer
	RelayerKey = "relayer-key"
)

// Define constant file names for the local SecretsManager
const (
	RelayerKeyLocal = "relayer.key"
)

// Define constant folder names for the local SecretsManager
const (
	KeystoreFolderLocal = "keystore"
)

var (
	// ErrSecretNotFound is returned if the secret is not present
	ErrSecretNotFound = errors.New("secret not found")
)

// SecretsManager defines the base public interface that all
// secret manager implementations should have
type SecretsManager interface {
	// Setup performs secret manager-specific setup
	Setup() error

	// GetSecret gets the secret by name
	GetSecret(name string) ([]byte, error)

	// SetSecret sets the secret to a provided value
	SetSecret(name string, value []byte) error

	// HasSecret checks if the secret is present
	HasSecret(name string) bool

	// RemoveSecret removes the secret from storage
	RemoveSecret(name string) error
}

// SecretsManagerParams defines the configuration params for the
// secrets manager
type SecretsManagerParams struct {
	// Local logger object
	Logger hclog.Logger

	// Extra contains additional data needed for the SecretsManager to function
	Extra map[string]interface{}
}

// SecretsManagerConfig is the configuration that gets
// written to a single secrets manager config file
type SecretsManagerConfig struct {
	Token     string                 `json:"token"`      // Access token to the instance
	ServerURL string                 `json:"server_url"` // The URL of the running server
	Type      SecretsManagerType     `json:"type"`       // The type of SecretsManager
	Name      string                 `json:"name"`       // The name of the current node
	Namespace string                 `json:"namespace"`  // The namespace of the service
	Extra     map[string]interface{} `json:"extra"`      // Any kind of arbitrary data
}

// WriteConfig writes the current configuration to the specified path.
// The config may carry access tokens, so it is not world-readable
func (c *SecretsManagerConfig) WriteConfig(path string) error {
	jsonBytes, _ := json.MarshalIndent(c, "", " ")

	return os.WriteFile(path, jsonBytes, 0o600)
}

// ReadConfig reads the SecretsManagerConfig from the specified path
func ReadConfig(path string) (*SecretsManagerConfig, error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &SecretsManagerConfig{}
	if err = json.Unmarshal(configFile, config); err != nil {
		return nil, err
	}

	return config, nil
}

// SecretsManagerFactory is the factory method for secrets managers
type SecretsManagerFactory func(
	config *SecretsManagerConfig,
	params *SecretsManagerParams,
) (SecretsManager, error)

// SupportedServiceManager checks if the passed in service manager type is supported
func SupportedServiceManager(service SecretsManagerType) bool {
	return service == HashicorpVault ||
		service == AWSSSM ||
		service == GCPSSM ||
		service == Local
}

const (
	// Path is the path to the base working directory
	Path = "path"
)
