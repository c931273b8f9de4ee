package init

import (
	"errors"

	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/secrets"
	"github.com/0xPolygon/edge-vault/secrets/helper"
)

const (
	dataDirFlag = "data-dir"
	configFlag  = "config"
)

var (
	params = &initParams{}
)

var (
	errInvalidConfig   = errors.New("invalid secrets configuration")
	errInvalidParams   = errors.New("no config file or data directory passed in")
	errUnsupportedType = errors.New("unsupported secrets manager")
)

type initParams struct {
	dataDir    string
	configPath string

	secretsManager secrets.SecretsManager
	secretsConfig  *secrets.SecretsManagerConfig
}

func (ip *initParams) validateFlags() error {
	if ip.dataDir == "" && ip.configPath == "" {
		return errInvalidParams
	}

	return nil
}

func (ip *initParams) initSecrets() error {
	if err := ip.initSecretsManager(); err != nil {
		return err
	}

	return ip.initRelayerKey()
}

func (ip *initParams) initSecretsManager() error {
	var err error
	if ip.hasConfigPath() {
		if err = ip.parseConfig(); err != nil {
			return err
		}

		ip.secretsManager, err = helper.InitCloudSecretsManager(ip.secretsConfig)

		return err
	}

	return ip.initLocalSecretsManager()
}

func (ip *initParams) hasConfigPath() bool {
	return ip.configPath != ""
}

func (ip *initParams) parseConfig() error {
	secretsConfig, readErr := secrets.ReadConfig(ip.configPath)
	if readErr != nil {
		return errInvalidConfig
	}

	if !secrets.SupportedServiceManager(secretsConfig.Type) {
		return errUnsupportedType
	}

	ip.secretsConfig = secretsConfig

	return nil
}

func (ip *initParams) initLocalSecretsManager() error {
	local, err := helper.SetupLocalSecretsManager(ip.dataDir)
	if err != nil {
		return err
	}

	ip.secretsManager = local

	return nil
}

func (ip *initParams) initRelayerKey() error {
	if _, err := helper.InitRelayerKey(ip.secretsManager); err != nil {
		return err
	}

	return nil
}

// getResult loads the generated key from the secrets manager and returns the result to display
func (ip *initParams) getResult() (command.CommandResult, error) {
	address, err := helper.LoadRelayerAddress(ip.secretsManager)
	if err != nil {
		return nil, err
	}

	return &SecretsInitResult{
		Address: address,
	}, nil
}
