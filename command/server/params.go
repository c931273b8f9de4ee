package server

import (
	"errors"
	"fmt"
	"net"

	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/edge-vault/chain"
	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/command/server/config"
	"github.com/0xPolygon/edge-vault/secrets"
	"github.com/0xPolygon/edge-vault/server"
)

const (
	configFlag                   = "config"
	genesisPathFlag              = "chain"
	dataDirFlag                  = "data-dir"
	jsonrpcAddressFlag           = "jsonrpc"
	prometheusAddressFlag        = "prometheus"
	storageFlag                  = "storage"
	forwardURLFlag               = "forward-url"
	secretsConfigFlag            = "secrets-config"
	corsOriginFlag               = "access-control-allow-origins"
	logFileLocationFlag          = "log-to"
	jsonRPCBatchRequestLimitFlag = "json-rpc-batch-request-limit"
	jsonRPCEventRangeLimitFlag   = "json-rpc-event-range-limit"
	concurrentRequestsDebugFlag  = "concurrent-requests-debug"
	jsonLogFormatFlag            = "json-log-format"
)

var (
	params = &serverParams{
		rawConfig: &config.Config{
			Telemetry: &config.Telemetry{},
			Headers:   &config.Headers{},
		},
	}
)

var (
	errDataDirectoryUndefined = errors.New("data directory not defined")
)

type serverParams struct {
	rawConfig  *config.Config
	configPath string

	prometheusAddress *net.TCPAddr
	jsonRPCAddress    *net.TCPAddr

	genesisConfig *chain.Chain
	secretsConfig *secrets.SecretsManagerConfig

	logFileLocation string
}

func (p *serverParams) validateFlags() error {
	if !server.StorageSupported(p.rawConfig.Storage) {
		return fmt.Errorf("storage backend '%s' not supported", p.rawConfig.Storage)
	}

	return nil
}

func (p *serverParams) initConfigFromFile() error {
	var parseErr error

	if p.rawConfig, parseErr = config.ReadConfigFile(p.configPath); parseErr != nil {
		return parseErr
	}

	return nil
}

func (p *serverParams) initRawParams() error {
	if err := p.initSecretsConfig(); err != nil {
		return err
	}

	if err := p.initGenesisConfig(); err != nil {
		return err
	}

	if err := p.initDataDirLocation(); err != nil {
		return err
	}

	p.initLogFileLocation()

	return p.initAddresses()
}

func (p *serverParams) isSecretsConfigPathSet() bool {
	return p.rawConfig.SecretsConfigPath != ""
}

func (p *serverParams) initSecretsConfig() error {
	if !p.isSecretsConfigPathSet() {
		return nil
	}

	var parseErr error

	if p.secretsConfig, parseErr = secrets.ReadConfig(
		p.rawConfig.SecretsConfigPath,
	); parseErr != nil {
		return fmt.Errorf("unable to read secrets config file, %w", parseErr)
	}

	return nil
}

func (p *serverParams) initGenesisConfig() error {
	var parseErr error

	if p.genesisConfig, parseErr = chain.Import(
		p.rawConfig.GenesisPath,
	); parseErr != nil {
		return parseErr
	}

	return nil
}

func (p *serverParams) initDataDirLocation() error {
	if p.rawConfig.DataDir == "" {
		return errDataDirectoryUndefined
	}

	return nil
}

func (p *serverParams) isLogFileLocationSet() bool {
	return p.rawConfig.LogFilePath != ""
}

func (p *serverParams) initLogFileLocation() {
	if p.isLogFileLocationSet() {
		p.logFileLocation = p.rawConfig.LogFilePath
	}
}

func (p *serverParams) isPrometheusAddressSet() bool {
	return p.rawConfig.Telemetry != nil && p.rawConfig.Telemetry.PrometheusAddr != ""
}

func (p *serverParams) initPrometheusAddress() error {
	if !p.isPrometheusAddressSet() {
		return nil
	}

	var parseErr error

	if p.prometheusAddress, parseErr = helper.ResolveAddr(
		p.rawConfig.Telemetry.PrometheusAddr,
		helper.AllInterfacesBinding,
	); parseErr != nil {
		return parseErr
	}

	return nil
}

func (p *serverParams) initJSONRPCAddress() error {
	var parseErr error

	if p.jsonRPCAddress, parseErr = helper.ResolveAddr(
		p.rawConfig.JSONRPCAddr,
		helper.AllInterfacesBinding,
	); parseErr != nil {
		return parseErr
	}

	return nil
}

func (p *serverParams) initAddresses() error {
	if err := p.initPrometheusAddress(); err != nil {
		return err
	}

	return p.initJSONRPCAddress()
}

func (p *serverParams) generateConfig() *server.Config {
	return &server.Config{
		Chain: p.genesisConfig,
		JSONRPC: &server.JSONRPC{
			JSONRPCAddr:              p.jsonRPCAddress,
			AccessControlAllowOrigin: p.rawConfig.Headers.AccessControlAllowOrigins,
			BatchLengthLimit:         p.rawConfig.JSONRPCBatchRequestLimit,
			EventRangeLimit:          p.rawConfig.JSONRPCEventRangeLimit,
			ConcurrentRequestsDebug:  p.rawConfig.ConcurrentRequestsDebug,
		},
		Telemetry: &server.Telemetry{
			PrometheusAddr: p.prometheusAddress,
		},
		DataDir:        p.rawConfig.DataDir,
		Storage:        server.StorageType(p.rawConfig.Storage),
		ForwardURL:     p.rawConfig.ForwardURL,
		SecretsManager: p.secretsConfig,
		LogLevel:       hclog.LevelFromString(p.rawConfig.LogLevel),
		JSONLogFormat:  p.rawConfig.JSONLogFormat,
		LogFilePath:    p.logFileLocation,
	}
}
