package server

import (
	"net"

	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/edge-vault/chain"
	"github.com/0xPolygon/edge-vault/secrets"
)

const DefaultJSONRPCPort int = 8545

// Config is used to parametrize the vault server
type Config struct {
	Chain *chain.Chain

	JSONRPC   *JSONRPC
	Telemetry *Telemetry

	// DataDir is the base folder for durable state and the local
	// secrets manager
	DataDir string

	// Storage selects the backend the vault state is persisted in
	Storage StorageType

	// ForwardURL is the execution endpoint allocated messages are
	// delivered to. Sequencing with forwarding fails when unset.
	ForwardURL string

	SecretsManager *secrets.SecretsManagerConfig

	LogLevel hclog.Level

	JSONLogFormat bool

	LogFilePath string
}

// Telemetry holds the config details for metric services
type Telemetry struct {
	PrometheusAddr *net.TCPAddr
}

// JSONRPC holds the config details for the JSON-RPC server
type JSONRPC struct {
	JSONRPCAddr              *net.TCPAddr
	AccessControlAllowOrigin []string
	BatchLengthLimit         uint64
	EventRangeLimit          uint64
	ConcurrentRequestsDebug  uint64
}
