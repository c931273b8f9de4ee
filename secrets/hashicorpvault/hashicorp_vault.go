package hashicorpvault

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	vault "github.com/hashicorp/vault/api"

	"github.com/0xPolygon/edge-vault/secrets"
)

// VaultSecretsManager stores secrets on a Hashicorp Vault instance,
// under the KV-2 engine at secret/data/<name>/<secret>
type VaultSecretsManager struct {
	logger hclog.Logger

	// authentication token for the Vault instance
	token string

	// address of the running Vault server
	serverURL string

	// service name, prefixes every secret path
	name string

	// namespace the secrets live under
	namespace string

	basePath string
	client   *vault.Client
}

// SecretsManagerFactory implements the factory method
func SecretsManagerFactory(
	config *secrets.SecretsManagerConfig,
	params *secrets.SecretsManagerParams,
) (secrets.SecretsManager, error) {
	if config.Token == "" {
		return nil, errors.New("no token specified for Vault secrets manager")
	}

	if config.ServerURL == "" {
		return nil, errors.New("no server URL specified for Vault secrets manager")
	}

	if config.Name == "" {
		return nil, errors.New("no service name specified for Vault secrets manager")
	}

	vaultManager := &VaultSecretsManager{
		logger:    params.Logger.Named(string(secrets.HashicorpVault)),
		token:     config.Token,
		serverURL: config.ServerURL,
		name:      config.Name,
		namespace: config.Namespace,
		basePath:  fmt.Sprintf("secret/data/%s", config.Name),
	}

	if err := vaultManager.Setup(); err != nil {
		return nil, err
	}

	return vaultManager, nil
}

// Setup initializes the Vault client against the configured server
func (v *VaultSecretsManager) Setup() error {
	config := vault.DefaultConfig()
	config.Address = v.serverURL

	client, err := vault.NewClient(config)
	if err != nil {
		return fmt.Errorf("unable to initialize Vault client: %w", err)
	}

	client.SetToken(v.token)
	client.SetNamespace(v.namespace)

	v.client = client

	return nil
}

func (v *VaultSecretsManager) secretPath(name string) string {
	return fmt.Sprintf("%s/%s", v.basePath, name)
}

// GetSecret fetches a secret from the Vault server
func (v *VaultSecretsManager) GetSecret(name string) ([]byte, error) {
	secret, err := v.client.Logical().Read(v.secretPath(name))
	if err != nil {
		return nil, fmt.Errorf("unable to read secret from Vault, %w", err)
	}

	if secret == nil {
		return nil, secrets.ErrSecretNotFound
	}

	// the KV-2 engine nests the stored pairs under a "data" wrapper;
	// a soft-deleted version surfaces as a nil wrapper
	raw, ok := secret.Data["data"]
	if !ok {
		return nil, fmt.Errorf("unable to assert type for secret from Vault, %T %#v", raw, raw)
	}

	if raw == nil {
		return nil, secrets.ErrSecretNotFound
	}

	wrapped, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unable to assert type for secret from Vault, %T %#v", raw, raw)
	}

	value, ok := wrapped[name]
	if !ok {
		return nil, secrets.ErrSecretNotFound
	}

	stringVal, ok := value.(string)
	if !ok {
		return nil, errors.New("invalid type assertion for secret value")
	}

	return []byte(stringVal), nil
}

// SetSecret saves a secret to the Vault server.
// An existing secret under the same name is overwritten
func (v *VaultSecretsManager) SetSecret(name string, value []byte) error {
	_, err := v.GetSecret(name)
	if err == nil {
		v.logger.Warn("overwriting secret", "name", name)
	} else if !errors.Is(err, secrets.ErrSecretNotFound) {
		return err
	}

	_, err = v.client.Logical().Write(v.secretPath(name), map[string]interface{}{
		"data": map[string]string{
			name: string(value),
		},
	})
	if err != nil {
		return fmt.Errorf("unable to store secret (%s), %w", name, err)
	}

	return nil
}

// HasSecret checks if the secret is present on the Vault server
func (v *VaultSecretsManager) HasSecret(name string) bool {
	_, err := v.GetSecret(name)

	return err == nil
}

// RemoveSecret removes a secret from the Vault server.
// Removing an absent secret fails with ErrSecretNotFound
func (v *VaultSecretsManager) RemoveSecret(name string) error {
	if _, err := v.GetSecret(name); err != nil {
		return err
	}

	if _, err := v.client.Logical().Delete(v.secretPath(name)); err != nil {
		return fmt.Errorf("unable to delete secret (%s), %w", name, err)
	}

	return nil
}
