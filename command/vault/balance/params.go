package balance

import (
	"errors"
	"fmt"

	"github.com/0xPolygon/edge-vault/helper/common"
	"github.com/0xPolygon/edge-vault/types"
)

const (
	chainFlag = "chain"
	tokenFlag = "token"
)

var (
	params balanceParams
)

var (
	errNoTokens = errors.New("at least one token address is required")
)

type balanceParams struct {
	jsonRPC  string
	chainRaw string
	tokens   []string

	chain    uint64
	tokenIDs []types.Address
}

func (bp *balanceParams) validateFlags() error {
	if len(bp.tokens) == 0 {
		return errNoTokens
	}

	return nil
}

func (bp *balanceParams) initRawParams() error {
	// The chain defaults to the endpoint's own chain and is resolved
	// over RPC right before the queries run
	if bp.chainRaw != "" {
		chain, err := common.ParseUint64orHex(&bp.chainRaw)
		if err != nil {
			return fmt.Errorf("failed to parse chain ID %s: %w", bp.chainRaw, err)
		}

		bp.chain = chain
	}

	for _, token := range bp.tokens {
		bp.tokenIDs = append(bp.tokenIDs, types.StringToAddress(token))
	}

	return nil
}
