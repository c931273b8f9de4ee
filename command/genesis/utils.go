package genesis

import (
	"fmt"
	"os"
	"strings"

	"github.com/0xPolygon/edge-vault/chain"
	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/helper/common"
	"github.com/0xPolygon/edge-vault/types"
)

const (
	StatError   = "StatError"
	ExistsError = "ExistsError"
)

// GenesisGenError is a specific error type for generating genesis
type GenesisGenError struct {
	message   string
	errorType string
}

// GetMessage returns the message of the genesis generation error
func (g *GenesisGenError) GetMessage() string {
	return g.message
}

// GetType returns the type of the genesis generation error
func (g *GenesisGenError) GetType() string {
	return g.errorType
}

// verifyGenesisExistence checks if the genesis file at the specified path is present
func verifyGenesisExistence(genesisPath string) *GenesisGenError {
	_, err := os.Stat(genesisPath)
	if err != nil && !os.IsNotExist(err) {
		return &GenesisGenError{
			message:   fmt.Sprintf("failed to stat (%s): %v", genesisPath, err),
			errorType: StatError,
		}
	}

	if !os.IsNotExist(err) {
		return &GenesisGenError{
			message:   fmt.Sprintf("genesis file at path (%s) already exists", genesisPath),
			errorType: ExistsError,
		}
	}

	return nil
}

// parsePremineInfo parses a funding pool entry in the format <chainID>:<tokenID>[:<balance>]
func parsePremineInfo(premineInfoRaw string) (*chain.PremineBalance, error) {
	parts := strings.Split(premineInfoRaw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return nil, fmt.Errorf("invalid premine entry provided: %s", premineInfoRaw)
	}

	chainID, err := common.ParseUint64orHex(&parts[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse premine chain ID %s: %w", parts[0], err)
	}

	balanceRaw := command.DefaultPremineBalance
	if len(parts) == 3 {
		balanceRaw = parts[2]
	}

	balance, err := common.ParseUint256orHex(&balanceRaw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse premine balance %s: %w", balanceRaw, err)
	}

	return &chain.PremineBalance{
		ChainID: chainID,
		TokenID: types.StringToAddress(parts[1]),
		Balance: balance,
	}, nil
}
