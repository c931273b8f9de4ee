package output

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/helper/common"
	"github.com/0xPolygon/edge-vault/secrets"
	"github.com/0xPolygon/edge-vault/secrets/helper"
	"github.com/0xPolygon/edge-vault/types"
)

const (
	dataDirFlag = "data-dir"
	configFlag  = "config"
)

var (
	params = &outputParams{}
)

var (
	errInvalidConfig   = errors.New("invalid secrets configuration")
	errInvalidParams   = errors.New("no config file or data directory passed in")
	errUnsupportedType = errors.New("unsupported secrets manager")
	errNoRelayerKey    = errors.New("no relayer key initialized")
)

type outputParams struct {
	dataDir    string
	configPath string

	secretsManager secrets.SecretsManager
	secretsConfig  *secrets.SecretsManagerConfig

	relayerAddress types.Address
}

func (op *outputParams) validateFlags() error {
	if op.dataDir == "" && op.configPath == "" {
		return errInvalidParams
	}

	return nil
}

func (op *outputParams) initSecrets() error {
	if err := op.initSecretsManager(); err != nil {
		return err
	}

	return op.initRelayerAddress()
}

func (op *outputParams) initSecretsManager() error {
	var err error
	if op.hasConfigPath() {
		if err = op.parseConfig(); err != nil {
			return err
		}

		op.secretsManager, err = helper.InitCloudSecretsManager(op.secretsConfig)

		return err
	}

	return op.initLocalSecretsManager()
}

func (op *outputParams) hasConfigPath() bool {
	return op.configPath != ""
}

func (op *outputParams) parseConfig() error {
	secretsConfig, readErr := secrets.ReadConfig(op.configPath)
	if readErr != nil {
		return errInvalidConfig
	}

	if !secrets.SupportedServiceManager(secretsConfig.Type) {
		return errUnsupportedType
	}

	op.secretsConfig = secretsConfig

	return nil
}

func (op *outputParams) initLocalSecretsManager() error {
	keystorePathPrefix := filepath.Join(op.dataDir, secrets.KeystoreFolderLocal)
	dataDirAbs, _ := filepath.Abs(op.dataDir)

	if !common.DirectoryExists(op.dataDir) {
		return fmt.Errorf("the data directory provided does not exist: %s", dataDirAbs)
	}

	if !common.DirectoryExists(keystorePathPrefix) {
		return fmt.Errorf("no relayer key found in the data directory provided: %s", dataDirAbs)
	}

	local, err := helper.SetupLocalSecretsManager(op.dataDir)
	if err != nil {
		return err
	}

	op.secretsManager = local

	return nil
}

func (op *outputParams) initRelayerAddress() error {
	relayerAddress, err := helper.LoadRelayerAddress(op.secretsManager)
	if err != nil {
		return err
	}

	if relayerAddress == types.ZeroAddress {
		return errNoRelayerKey
	}

	op.relayerAddress = relayerAddress

	return nil
}

func (op *outputParams) getResult() command.CommandResult {
	return &SecretsOutputResult{
		Address: op.relayerAddress,
	}
}
