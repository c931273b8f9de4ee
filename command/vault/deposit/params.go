package deposit

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/helper/common"
	"github.com/0xPolygon/edge-vault/types"
)

const (
	fromFlag        = "from"
	sourceChainFlag = "source-chain"
	destChainFlag   = "dest-chain"
	toFlag          = "to"
	tokenFlag       = "token"
	amountFlag      = "amount"
)

var (
	params depositParams
)

var (
	errInvalidFromAddress = errors.New("a valid depositor address is required")
	errInvalidToAddress   = errors.New("a valid receiving address is required")
	errInvalidTokenID     = errors.New("a valid token address is required")
	errInvalidAmount      = errors.New("a positive deposit amount is required")
)

type depositParams struct {
	fromRaw        string
	sourceChainRaw string
	destChainRaw   string
	toRaw          string
	tokenRaw       string
	amountRaw      string
	jsonRPC        string

	from        types.Address
	sourceChain uint64
	destChain   uint64
	to          types.Address
	token       types.Address
	amount      *big.Int
}

func (dp *depositParams) validateFlags() error {
	if helper.ValidateAddress(dp.fromRaw) != nil {
		return errInvalidFromAddress
	}

	if helper.ValidateAddress(dp.toRaw) != nil {
		return errInvalidToAddress
	}

	if helper.ValidateAddress(dp.tokenRaw) != nil {
		return errInvalidTokenID
	}

	return nil
}

func (dp *depositParams) initRawParams() error {
	dp.from = types.StringToAddress(dp.fromRaw)
	dp.to = types.StringToAddress(dp.toRaw)
	dp.token = types.StringToAddress(dp.tokenRaw)

	// The source chain defaults to the endpoint's own chain and is
	// resolved over RPC right before submission
	if dp.sourceChainRaw != "" {
		sourceChain, err := common.ParseUint64orHex(&dp.sourceChainRaw)
		if err != nil {
			return fmt.Errorf("failed to parse source chain ID %s: %w", dp.sourceChainRaw, err)
		}

		dp.sourceChain = sourceChain
	}

	destChain, err := common.ParseUint64orHex(&dp.destChainRaw)
	if err != nil {
		return fmt.Errorf("failed to parse destination chain ID %s: %w", dp.destChainRaw, err)
	}

	dp.destChain = destChain

	amount, err := common.ParseUint256orHex(&dp.amountRaw)
	if err != nil {
		return fmt.Errorf("failed to parse amount %s: %w", dp.amountRaw, err)
	}

	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}

	dp.amount = amount

	return nil
}
