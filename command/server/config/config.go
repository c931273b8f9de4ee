package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl"
	"gopkg.in/yaml.v3"

	"github.com/0xPolygon/edge-vault/server"
)

// Config defines the server configuration params
type Config struct {
	GenesisPath              string     `json:"chain_config" yaml:"chain_config"`
	SecretsConfigPath        string     `json:"secrets_config" yaml:"secrets_config"`
	DataDir                  string     `json:"data_dir" yaml:"data_dir"`
	JSONRPCAddr              string     `json:"jsonrpc_addr" yaml:"jsonrpc_addr"`
	Storage                  string     `json:"storage" yaml:"storage"`
	ForwardURL               string     `json:"forward_url" yaml:"forward_url"`
	Telemetry                *Telemetry `json:"telemetry" yaml:"telemetry"`
	LogLevel                 string     `json:"log_level" yaml:"log_level"`
	Headers                  *Headers   `json:"headers" yaml:"headers"`
	LogFilePath              string     `json:"log_to" yaml:"log_to"`
	JSONRPCBatchRequestLimit uint64     `json:"json_rpc_batch_request_limit" yaml:"json_rpc_batch_request_limit"`
	JSONRPCEventRangeLimit   uint64     `json:"json_rpc_event_range_limit" yaml:"json_rpc_event_range_limit"`
	ConcurrentRequestsDebug  uint64     `json:"concurrent_requests_debug" yaml:"concurrent_requests_debug"`
	JSONLogFormat            bool       `json:"json_log_format" yaml:"json_log_format"`
}

// Telemetry holds the config details for metric services.
type Telemetry struct {
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr"`
}

// Headers defines the HTTP response headers required to enable CORS.
type Headers struct {
	AccessControlAllowOrigins []string `json:"access_control_allow_origins" yaml:"access_control_allow_origins"`
}

const (
	// DefaultJSONRPCBatchRequestLimit maximum length allowed for json_rpc batch requests
	DefaultJSONRPCBatchRequestLimit uint64 = 20

	// DefaultJSONRPCEventRangeLimit maximum event range allowed for json_rpc
	// requests with fromIndex/toIndex values
	DefaultJSONRPCEventRangeLimit uint64 = 1000

	// DefaultConcurrentRequestsDebug specifies max number of allowed concurrent requests for debug endpoints
	DefaultConcurrentRequestsDebug uint64 = 32
)

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		GenesisPath: "./genesis.json",
		DataDir:     "",
		JSONRPCAddr: fmt.Sprintf("0.0.0.0:%d", server.DefaultJSONRPCPort),
		Storage:     string(server.LevelDBStorage),
		ForwardURL:  "",
		Telemetry:   &Telemetry{},
		LogLevel:    "INFO",
		Headers: &Headers{
			AccessControlAllowOrigins: []string{"*"},
		},
		LogFilePath:              "",
		JSONRPCBatchRequestLimit: DefaultJSONRPCBatchRequestLimit,
		JSONRPCEventRangeLimit:   DefaultJSONRPCEventRangeLimit,
		ConcurrentRequestsDebug:  DefaultConcurrentRequestsDebug,
	}
}

// ReadConfigFile reads the config file from the specified path, builds a Config object
// and returns it.
//
// Supported file types: .json, .hcl, .yaml, .yml
func ReadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var unmarshalFunc func([]byte, interface{}) error

	switch {
	case strings.HasSuffix(path, ".hcl"):
		unmarshalFunc = hcl.Unmarshal
	case strings.HasSuffix(path, ".json"):
		unmarshalFunc = json.Unmarshal
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		unmarshalFunc = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("suffix of %s is neither hcl, json, yaml nor yml", path)
	}

	config := DefaultConfig()
	if err := unmarshalFunc(data, config); err != nil {
		return nil, err
	}

	return config, nil
}
