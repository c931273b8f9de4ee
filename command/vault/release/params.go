package release

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/helper/common"
	"github.com/0xPolygon/edge-vault/types"
)

const (
	sourceChainFlag = "source-chain"
	destChainFlag   = "dest-chain"
	toFlag          = "to"
	tokenFlag       = "token"
	amountFlag      = "amount"
)

var (
	params releaseParams
)

var (
	errInvalidToAddress = errors.New("a valid receiving address is required")
	errInvalidTokenID   = errors.New("a valid token address is required")
	errInvalidAmount    = errors.New("a positive release amount is required")
)

type releaseParams struct {
	accountDir    string
	accountConfig string
	jsonRPC       string

	sourceChainRaw string
	destChainRaw   string
	toRaw          string
	tokenRaw       string
	amountRaw      string

	sourceChain uint64
	destChain   uint64
	to          types.Address
	token       types.Address
	amount      *big.Int
}

func (rp *releaseParams) validateFlags() error {
	if err := helper.ValidateSecretFlags(rp.accountDir, rp.accountConfig); err != nil {
		return err
	}

	if helper.ValidateAddress(rp.toRaw) != nil {
		return errInvalidToAddress
	}

	if helper.ValidateAddress(rp.tokenRaw) != nil {
		return errInvalidTokenID
	}

	return nil
}

func (rp *releaseParams) initRawParams() error {
	rp.to = types.StringToAddress(rp.toRaw)
	rp.token = types.StringToAddress(rp.tokenRaw)

	sourceChain, err := common.ParseUint64orHex(&rp.sourceChainRaw)
	if err != nil {
		return fmt.Errorf("failed to parse source chain ID %s: %w", rp.sourceChainRaw, err)
	}

	rp.sourceChain = sourceChain

	// The destination chain defaults to the endpoint's own chain and is
	// resolved over RPC right before submission
	if rp.destChainRaw != "" {
		destChain, err := common.ParseUint64orHex(&rp.destChainRaw)
		if err != nil {
			return fmt.Errorf("failed to parse destination chain ID %s: %w", rp.destChainRaw, err)
		}

		rp.destChain = destChain
	}

	amount, err := common.ParseUint256orHex(&rp.amountRaw)
	if err != nil {
		return fmt.Errorf("failed to parse amount %s: %w", rp.amountRaw, err)
	}

	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}

	rp.amount = amount

	return nil
}
