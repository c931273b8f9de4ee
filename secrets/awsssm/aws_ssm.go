package awsssm

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/edge-vault/secrets"
)

// AwsSsmManager stores secrets in the AWS SSM Parameter Store as
// SecureString parameters under <ssm-parameter-path>/<service>/<name>
type AwsSsmManager struct {
	logger hclog.Logger

	// region the parameter store lives in
	region string

	// parameter path prefix, includes the service name
	basePath string

	client *ssm.SSM
}

// SecretsManagerFactory implements the factory method
func SecretsManagerFactory(
	config *secrets.SecretsManagerConfig,
	params *secrets.SecretsManagerParams,
) (secrets.SecretsManager, error) {
	if config.Name == "" {
		return nil, errors.New("no service name specified for AWS SSM secrets manager")
	}

	if config.Extra == nil || config.Extra["region"] == nil || config.Extra["ssm-parameter-path"] == nil {
		return nil, errors.New("required extra map containing 'region' and 'ssm-parameter-path' not found for aws-ssm")
	}

	awsSsmManager := &AwsSsmManager{
		logger:   params.Logger.Named(string(secrets.AWSSSM)),
		region:   fmt.Sprintf("%v", config.Extra["region"]),
		basePath: fmt.Sprintf("%s/%s", config.Extra["ssm-parameter-path"], config.Name),
	}

	if err := awsSsmManager.Setup(); err != nil {
		return nil, err
	}

	return awsSsmManager, nil
}

// Setup opens the AWS session the SSM client runs on
func (a *AwsSsmManager) Setup() error {
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            aws.Config{Region: aws.String(a.region)},
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return fmt.Errorf("unable to initialize AWS SSM client: %w", err)
	}

	a.client = ssm.New(sess, aws.NewConfig().WithRegion(a.region))

	return nil
}

func (a *AwsSsmManager) secretPath(name string) string {
	return fmt.Sprintf("%s/%s", a.basePath, name)
}

// GetSecret fetches a secret from the parameter store
func (a *AwsSsmManager) GetSecret(name string) ([]byte, error) {
	param, err := a.client.GetParameter(&ssm.GetParameterInput{
		Name:           aws.String(a.secretPath(name)),
		WithDecryption: aws.Bool(true),
	})
	if err != nil || param == nil {
		return nil, secrets.ErrSecretNotFound
	}

	return []byte(*param.Parameter.Value), nil
}

// SetSecret saves a secret as a SecureString parameter.
// An existing parameter under the same name is not overwritten
func (a *AwsSsmManager) SetSecret(name string, value []byte) error {
	if _, err := a.client.PutParameter(&ssm.PutParameterInput{
		Name:      aws.String(a.secretPath(name)),
		Value:     aws.String(string(value)),
		Type:      aws.String(ssm.ParameterTypeSecureString),
		Overwrite: aws.Bool(false),
	}); err != nil {
		return fmt.Errorf("unable to store secret (%s), %w", name, err)
	}

	return nil
}

// HasSecret checks if the secret is present in the parameter store
func (a *AwsSsmManager) HasSecret(name string) bool {
	_, err := a.GetSecret(name)

	return err == nil
}

// RemoveSecret removes a secret from the parameter store.
// Removing an absent secret fails with ErrSecretNotFound
func (a *AwsSsmManager) RemoveSecret(name string) error {
	if _, err := a.GetSecret(name); err != nil {
		return err
	}

	if _, err := a.client.DeleteParameter(&ssm.DeleteParameterInput{
		Name: aws.String(a.secretPath(name)),
	}); err != nil {
		return fmt.Errorf("unable to delete secret (%s), %w", name, err)
	}

	return nil
}
