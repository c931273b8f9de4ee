package command

const (
	DefaultGenesisFileName = "genesis.json"
	DefaultChainName       = "edge-vault"
	DefaultChainID         = 100
	DefaultPremineBalance  = "0x3635C9ADC5DEA00000" // 1000 tokens
)

const (
	JSONOutputFlag = "json"
	JSONRPCFlag    = "jsonrpc"
	LogLevelFlag   = "log-level"
)
