package server

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/command/server/config"
	"github.com/0xPolygon/edge-vault/server"
)

func GetCommand() *cobra.Command {
	serverCmd := &cobra.Command{
		Use:     "server",
		Short:   "The default command that starts the Edge Vault endpoint, by bootstrapping all modules together",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(serverCmd)

	return serverCmd
}

func setFlags(cmd *cobra.Command) {
	defaultConfig := config.DefaultConfig()

	cmd.Flags().StringVar(
		&params.rawConfig.LogLevel,
		command.LogLevelFlag,
		defaultConfig.LogLevel,
		fmt.Sprintf(
			"the log level for console output. Default: %s",
			defaultConfig.LogLevel,
		),
	)

	cmd.Flags().StringVar(
		&params.rawConfig.GenesisPath,
		genesisPathFlag,
		defaultConfig.GenesisPath,
		fmt.Sprintf(
			"the genesis file used for starting the vault. Default: %s",
			defaultConfig.GenesisPath,
		),
	)

	cmd.Flags().StringVar(
		&params.configPath,
		configFlag,
		"",
		"the path to the CLI config. Supports .json, .hcl, .yaml and .yml",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.DataDir,
		dataDirFlag,
		defaultConfig.DataDir,
		"the data directory used for storing Edge Vault client data",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.JSONRPCAddr,
		jsonrpcAddressFlag,
		defaultConfig.JSONRPCAddr,
		"the address and port for the JSON-RPC service (address:port)",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.Telemetry.PrometheusAddr,
		prometheusAddressFlag,
		"",
		"the address and port for the prometheus instrumentation service (address:port)",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.Storage,
		storageFlag,
		defaultConfig.Storage,
		fmt.Sprintf(
			"the storage backend used for the vault state (leveldb, boltdb or memory). Default: %s",
			defaultConfig.Storage,
		),
	)

	cmd.Flags().StringVar(
		&params.rawConfig.ForwardURL,
		forwardURLFlag,
		"",
		"the execution endpoint allocated messages are forwarded to. "+
			"If omitted, sequencing with forwarding fails",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.SecretsConfigPath,
		secretsConfigFlag,
		"",
		"the path to the SecretsManager config file. Used for Hashicorp Vault, AWS SSM and GCP Secrets Manager. "+
			"If omitted, the local FS secrets manager is used",
	)

	cmd.Flags().StringArrayVar(
		&params.rawConfig.Headers.AccessControlAllowOrigins,
		corsOriginFlag,
		defaultConfig.Headers.AccessControlAllowOrigins,
		"the CORS header indicating whether any JSON-RPC response can be shared with the specified origin",
	)

	cmd.Flags().Uint64Var(
		&params.rawConfig.JSONRPCBatchRequestLimit,
		jsonRPCBatchRequestLimitFlag,
		defaultConfig.JSONRPCBatchRequestLimit,
		fmt.Sprintf(
			"max length to be considered when handling json-rpc batch requests, value of 0 disables it. Default: %d",
			defaultConfig.JSONRPCBatchRequestLimit,
		),
	)

	cmd.Flags().Uint64Var(
		&params.rawConfig.JSONRPCEventRangeLimit,
		jsonRPCEventRangeLimitFlag,
		defaultConfig.JSONRPCEventRangeLimit,
		fmt.Sprintf(
			"max event range to be considered when executing json-rpc queries, value of 0 disables it. Default: %d",
			defaultConfig.JSONRPCEventRangeLimit,
		),
	)

	cmd.Flags().Uint64Var(
		&params.rawConfig.ConcurrentRequestsDebug,
		concurrentRequestsDebugFlag,
		defaultConfig.ConcurrentRequestsDebug,
		fmt.Sprintf(
			"max number of concurrent requests for debug endpoints. Default: %d",
			defaultConfig.ConcurrentRequestsDebug,
		),
	)

	cmd.Flags().StringVar(
		&params.rawConfig.LogFilePath,
		logFileLocationFlag,
		defaultConfig.LogFilePath,
		"write all logs to the file at specified location instead of writing them to console",
	)

	cmd.Flags().BoolVar(
		&params.rawConfig.JSONLogFormat,
		jsonLogFormatFlag,
		defaultConfig.JSONLogFormat,
		"set JSON log format",
	)
}

func runPreRun(cmd *cobra.Command, _ []string) error {
	// Check if the config file has been specified
	// The config file takes precedence over raw flags when both are given
	if isConfigFileSpecified(cmd) {
		if err := params.initConfigFromFile(); err != nil {
			return err
		}
	}

	if err := params.validateFlags(); err != nil {
		return err
	}

	return params.initRawParams()
}

func isConfigFileSpecified(cmd *cobra.Command) bool {
	return cmd.Flags().Changed(configFlag)
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)

	if err := runServerLoop(params.generateConfig(), outputter); err != nil {
		outputter.SetError(err)
		outputter.WriteOutput()

		return
	}
}

func runServerLoop(
	cfg *server.Config,
	outputter command.OutputFormatter,
) error {
	serverInstance, err := server.NewServer(cfg)
	if err != nil {
		return err
	}

	return helper.HandleSignals(serverInstance.Close, outputter)
}
