package sweep

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/helper/common"
	"github.com/0xPolygon/edge-vault/types"
)

const (
	tokenFlag  = "token"
	toFlag     = "to"
	amountFlag = "amount"
)

var (
	params sweepParams
)

var (
	errInvalidToAddress = errors.New("a valid receiving address is required")
	errInvalidTokenID   = errors.New("a valid token address is required")
	errInvalidAmount    = errors.New("a positive sweep amount is required")
)

type sweepParams struct {
	accountDir    string
	accountConfig string
	jsonRPC       string

	tokenRaw  string
	toRaw     string
	amountRaw string

	token  types.Address
	to     types.Address
	amount *big.Int
}

func (sp *sweepParams) validateFlags() error {
	if err := helper.ValidateSecretFlags(sp.accountDir, sp.accountConfig); err != nil {
		return err
	}

	if helper.ValidateAddress(sp.toRaw) != nil {
		return errInvalidToAddress
	}

	if helper.ValidateAddress(sp.tokenRaw) != nil {
		return errInvalidTokenID
	}

	return nil
}

func (sp *sweepParams) initRawParams() error {
	sp.token = types.StringToAddress(sp.tokenRaw)
	sp.to = types.StringToAddress(sp.toRaw)

	amount, err := common.ParseUint256orHex(&sp.amountRaw)
	if err != nil {
		return fmt.Errorf("failed to parse amount %s: %w", sp.amountRaw, err)
	}

	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}

	sp.amount = amount

	return nil
}
