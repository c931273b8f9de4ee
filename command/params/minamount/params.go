package minamount

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/helper/common"
)

const (
	amountFlag = "amount"
)

var (
	params minAmountParams
)

var (
	errNegativeAmount = errors.New("the minimum transfer amount must not be negative")
)

type minAmountParams struct {
	accountDir    string
	accountConfig string
	jsonRPC       string

	amountRaw string

	amount *big.Int
}

func (mp *minAmountParams) validateFlags() error {
	if !mp.isSetAction() {
		return nil
	}

	return helper.ValidateSecretFlags(mp.accountDir, mp.accountConfig)
}

func (mp *minAmountParams) initRawParams() error {
	if !mp.isSetAction() {
		return nil
	}

	amount, err := common.ParseUint256orHex(&mp.amountRaw)
	if err != nil {
		return fmt.Errorf("failed to parse amount %s: %w", mp.amountRaw, err)
	}

	// A zero minimum is legal and disables the threshold check
	if amount.Sign() < 0 {
		return errNegativeAmount
	}

	mp.amount = amount

	return nil
}

// isSetAction reports whether the command updates the parameter
// instead of querying it
func (mp *minAmountParams) isSetAction() bool {
	return mp.amountRaw != ""
}
