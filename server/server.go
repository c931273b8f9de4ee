package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0xPolygon/edge-vault/helper/common"
	"github.com/0xPolygon/edge-vault/jsonrpc"
	"github.com/0xPolygon/edge-vault/secrets"
	secretsHelper "github.com/0xPolygon/edge-vault/secrets/helper"
	"github.com/0xPolygon/edge-vault/types"
	"github.com/0xPolygon/edge-vault/vault"
	"github.com/0xPolygon/edge-vault/vault/storage"
)

// Server is the central manager of the vault service
type Server struct {
	logger hclog.Logger
	config *Config

	// vault is the custody core
	vault *vault.Vault

	// db is the durable vault state storage
	db storage.Storage

	// jsonrpcServer is the API interface
	jsonrpcServer *jsonrpc.JSONRPC

	// secretsManager holds the local operator key material
	secretsManager secrets.SecretsManager

	// prometheusServer exposes the telemetry sink
	prometheusServer *http.Server
}

var dirPaths = []string{
	"vault",
}

// NewServer opens the vault state, restores the custody book and
// starts the API servers
func NewServer(config *Config) (*Server, error) {
	logger, err := newLoggerFromConfig(config)
	if err != nil {
		return nil, fmt.Errorf("could not setup new logger instance, %w", err)
	}

	srv := &Server{
		logger: logger.Named("server"),
		config: config,
	}

	srv.logger.Info("Data dir", "path", config.DataDir)

	// Generate all the paths in the dataDir
	if err := common.SetupDataDir(config.DataDir, dirPaths); err != nil {
		return nil, fmt.Errorf("failed to create data directories: %w", err)
	}

	// Set up datadog profiler
	if err := srv.enableDataDogProfiler(); err != nil {
		srv.logger.Error("DataDog profiler setup failed", "err", err.Error())
	}

	if config.Telemetry != nil && config.Telemetry.PrometheusAddr != nil {
		// Only setup telemetry if the address is specified
		if err := srv.setupTelemetry(); err != nil {
			return nil, err
		}

		srv.prometheusServer = srv.startPrometheusServer(config.Telemetry.PrometheusAddr)
	}

	// Set up the secrets manager
	if err := srv.setupSecretsManager(); err != nil {
		return nil, fmt.Errorf("failed to set up the secrets manager: %w", err)
	}

	// Open the vault state storage
	if err := srv.setupStorage(); err != nil {
		return nil, err
	}

	// Restore the custody book from the event log
	custodian, err := newBookCustodian(logger, srv.db, config.Chain)
	if err != nil {
		return nil, fmt.Errorf("failed to restore the custody book: %w", err)
	}

	forwarder := newHTTPForwarder(logger, config.ForwardURL)

	v, err := vault.NewVault(logger, srv.db, config.Chain, custodian, forwarder)
	if err != nil {
		return nil, err
	}

	srv.vault = v

	srv.verifyRelayerIdentity()

	// Set up and start the JSON-RPC server
	if err := srv.setupJSONRPC(); err != nil {
		return nil, err
	}

	return srv, nil
}

// setupStorage opens the configured storage backend under the data dir
func (s *Server) setupStorage() error {
	backend := s.config.Storage
	if backend == "" {
		backend = LevelDBStorage
	}

	factory, ok := storageBackends[backend]
	if !ok {
		return fmt.Errorf("storage backend '%s' not found", backend)
	}

	db, err := factory(
		map[string]interface{}{
			"path": filepath.Join(s.config.DataDir, "vault"),
		},
		s.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	s.db = db

	return nil
}

// setupSecretsManager sets up the secrets manager
func (s *Server) setupSecretsManager() error {
	secretsManagerConfig := s.config.SecretsManager
	if secretsManagerConfig == nil {
		// No config provided, use default
		secretsManagerConfig = &secrets.SecretsManagerConfig{
			Type: secrets.Local,
		}
	}

	secretsManagerType := secretsManagerConfig.Type
	secretsManagerParams := &secrets.SecretsManagerParams{
		Logger: s.logger,
	}

	if secretsManagerType == secrets.Local {
		// Only the base directory is required for the local secrets manager
		secretsManagerParams.Extra = map[string]interface{}{
			secrets.Path: s.config.DataDir,
		}
	}

	// Grab the factory method
	secretsManagerFactory, ok := secretsManagerBackends[secretsManagerType]
	if !ok {
		return fmt.Errorf("secrets manager type '%s' not found", secretsManagerType)
	}

	// Instantiate the secrets manager
	secretsManager, factoryErr := secretsManagerFactory(
		secretsManagerConfig,
		secretsManagerParams,
	)
	if factoryErr != nil {
		return fmt.Errorf("unable to instantiate secrets manager, %w", factoryErr)
	}

	s.secretsManager = secretsManager

	return nil
}

// verifyRelayerIdentity warns when a locally initialized relayer key
// does not belong to the authorized relayer, which usually means the
// wrong genesis or the wrong data dir
func (s *Server) verifyRelayerIdentity() {
	addr, err := secretsHelper.LoadRelayerAddress(s.secretsManager)
	if err != nil || addr == types.ZeroAddress {
		return
	}

	if addr != s.vault.Relayer() {
		s.logger.Warn("local relayer key does not match the authorized relayer",
			"local", addr,
			"authorized", s.vault.Relayer(),
		)

		return
	}

	s.logger.Info("local relayer key matches the authorized relayer", "relayer", addr)
}

// setupJSONRPC sets up the JSONRPC server, using the set configuration
func (s *Server) setupJSONRPC() error {
	conf := &jsonrpc.Config{
		Store:                    s.vault,
		Addr:                     s.config.JSONRPC.JSONRPCAddr,
		ChainID:                  s.config.Chain.Params.ChainID,
		ChainName:                s.config.Chain.Name,
		AccessControlAllowOrigin: s.config.JSONRPC.AccessControlAllowOrigin,
		BatchLengthLimit:         s.config.JSONRPC.BatchLengthLimit,
		EventRangeLimit:          s.config.JSONRPC.EventRangeLimit,
		ConcurrentRequestsDebug:  s.config.JSONRPC.ConcurrentRequestsDebug,
	}

	srv, err := jsonrpc.NewJSONRPC(s.logger, conf)
	if err != nil {
		return err
	}

	s.jsonrpcServer = srv

	return nil
}

// startPrometheusServer starts a http server that serves the
// prometheus scrape endpoint
func (s *Server) startPrometheusServer(listenAddr *net.TCPAddr) *http.Server {
	srv := &http.Server{
		Addr: listenAddr.String(),
		Handler: promhttp.InstrumentMetricHandler(
			prometheus.DefaultRegisterer, promhttp.HandlerFor(
				prometheus.DefaultGatherer,
				promhttp.HandlerOpts{},
			),
		),
		ReadHeaderTimeout: 60 * time.Second,
	}

	go func() {
		s.logger.Info("Prometheus server started", "addr", listenAddr.String())

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Prometheus HTTP server ListenAndServe", "err", err)
		}
	}()

	return srv
}

// Vault returns the custody core of the server
func (s *Server) Vault() *vault.Vault {
	return s.vault
}

// Close closes the server and all of its subsystems
func (s *Server) Close() error {
	var errs error

	if s.prometheusServer != nil {
		if err := s.prometheusServer.Shutdown(context.Background()); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	// the vault owns the storage handle
	if err := s.vault.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}

	s.closeDataDogProfiler()

	return errs
}

// newFileLogger returns a logger instance that writes all logs to a
// specified file. If the log file can't be created, it returns an error
func newFileLogger(config *Config) (hclog.Logger, error) {
	logFileWriter, err := os.Create(config.LogFilePath)
	if err != nil {
		return nil, fmt.Errorf("could not create log file, %w", err)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       "edge-vault",
		Level:      config.LogLevel,
		Output:     logFileWriter,
		JSONFormat: config.JSONLogFormat,
	}), nil
}

// newCLILogger returns a logger instance that sends all logs to
// standard output
func newCLILogger(config *Config) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "edge-vault",
		Level:      config.LogLevel,
		JSONFormat: config.JSONLogFormat,
	})
}

// newLoggerFromConfig creates a new logger which logs to a specified
// file. If the log file is not set it outputs to standard output.
func newLoggerFromConfig(config *Config) (hclog.Logger, error) {
	if config.LogFilePath != "" {
		fileLoggerInstance, err := newFileLogger(config)
		if err != nil {
			return nil, err
		}

		return fileLoggerInstance, nil
	}

	return newCLILogger(config), nil
}
