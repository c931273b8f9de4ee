package gcpssm

import (
	"context"
	"errors"
	"fmt"
	"os"

	sm "cloud.google.com/go/secretmanager/apiv1"
	"github.com/hashicorp/go-hclog"
	smpb "google.golang.org/genproto/googleapis/cloud/secretmanager/v1"

	"github.com/0xPolygon/edge-vault/secrets"
)

const (
	projectIDKey      = "project-id"
	credentialFileKey = "gcp-ssm-cred"
)

// GcpSsmManager stores secrets in the Google Cloud Secret Manager,
// one secret per name, keyed <service>_<name>
type GcpSsmManager struct {
	logger hclog.Logger

	// project the secrets are stored in
	projectID string

	// path to the credentials JSON the client authenticates with
	credFilePath string

	// service name, prefixes every secret id
	serviceName string

	client  *sm.Client
	context context.Context
}

// SecretsManagerFactory implements the factory method
func SecretsManagerFactory(
	config *secrets.SecretsManagerConfig,
	params *secrets.SecretsManagerParams,
) (secrets.SecretsManager, error) {
	projectID, err := extraString(config, projectIDKey)
	if err != nil {
		return nil, err
	}

	credFilePath, err := extraString(config, credentialFileKey)
	if err != nil {
		return nil, err
	}

	if config.Name == "" {
		return nil, errors.New("no service name specified for GCP secrets manager")
	}

	gcpSsmManager := &GcpSsmManager{
		logger:       params.Logger.Named(string(secrets.GCPSSM)),
		projectID:    projectID,
		credFilePath: credFilePath,
		serviceName:  config.Name,
	}

	if err := gcpSsmManager.Setup(); err != nil {
		return nil, err
	}

	return gcpSsmManager, nil
}

// extraString reads a required non-empty string from the extra config section
func extraString(config *secrets.SecretsManagerConfig, key string) (string, error) {
	raw, ok := config.Extra[key]
	if !ok {
		return "", fmt.Errorf("no %s variable specified", key)
	}

	value, ok := raw.(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%s can't be an empty string", key)
	}

	return value, nil
}

// Setup points the client credentials at the configured file and dials the API
func (gm *GcpSsmManager) Setup() error {
	if err := os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", gm.credFilePath); err != nil {
		return errors.New("could not set GOOGLE_APPLICATION_CREDENTIALS environment variable")
	}

	gm.context = context.Background()

	client, err := sm.NewClient(gm.context)
	if err != nil {
		return fmt.Errorf("could not initialize new GCP secrets manager client %w", err)
	}

	gm.client = client

	return nil
}

// GetSecret fetches the first version of the named secret
func (gm *GcpSsmManager) GetSecret(name string) ([]byte, error) {
	result, err := gm.client.AccessSecretVersion(gm.context, &smpb.AccessSecretVersionRequest{
		Name: gm.secretVersionName(name),
	})
	if err != nil {
		return nil, fmt.Errorf("could not fetch secret from GCP secret manager: %w", err)
	}

	return result.Payload.Data, nil
}

// SetSecret creates the secret placeholder and stores the value as its version
func (gm *GcpSsmManager) SetSecret(name string, value []byte) error {
	secret, err := gm.client.CreateSecret(gm.context, &smpb.CreateSecretRequest{
		Parent:   fmt.Sprintf("projects/%s", gm.projectID),
		SecretId: gm.secretID(name),
		Secret: &smpb.Secret{
			Replication: &smpb.Replication{
				Replication: &smpb.Replication_Automatic_{
					Automatic: &smpb.Replication_Automatic{},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("could not set secret, %w", err)
	}

	_, err = gm.client.AddSecretVersion(gm.context, &smpb.AddSecretVersionRequest{
		Parent: secret.Name,
		Payload: &smpb.SecretPayload{
			Data: value,
		},
	})
	if err != nil {
		return fmt.Errorf("could not store secret, %w", err)
	}

	return nil
}

// HasSecret checks if the secret is present
func (gm *GcpSsmManager) HasSecret(name string) bool {
	_, err := gm.GetSecret(name)

	return err == nil
}

// RemoveSecret removes the secret from storage, used only for tests
func (gm *GcpSsmManager) RemoveSecret(name string) error {
	secretName := fmt.Sprintf("projects/%s/secrets/%s", gm.projectID, gm.secretID(name))

	err := gm.client.DeleteSecret(gm.context, &smpb.DeleteSecretRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("could not delete secret %s from GCP secret manager: %w", secretName, err)
	}

	return nil
}

func (gm *GcpSsmManager) secretID(name string) string {
	return fmt.Sprintf("%s_%s", gm.serviceName, name)
}

// secretVersionName returns the full resource path of the secret's only version
func (gm *GcpSsmManager) secretVersionName(name string) string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/1", gm.projectID, gm.secretID(name))
}
