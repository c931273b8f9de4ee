package sequence

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/helper/common"
	"github.com/0xPolygon/edge-vault/types"
)

const (
	fromFlag     = "from"
	toFlag       = "to"
	amountFlag   = "amount"
	targetFlag   = "target"
	gasLimitFlag = "gas-limit"
)

var (
	params sequenceParams
)

var (
	errInvalidFromAddress    = errors.New("a valid sender address is required")
	errInvalidToAddress      = errors.New("a valid receiving address is required")
	errInvalidAmount         = errors.New("a positive sequence amount is required")
	errGasLimitWithoutTarget = errors.New("gas limit is only valid together with a target")
	errInvalidTargetAddress  = errors.New("a valid target address is required")
)

type sequenceParams struct {
	accountDir    string
	accountConfig string
	jsonRPC       string

	fromRaw   string
	toRaw     string
	amountRaw string
	targetRaw string
	gasLimit  uint64

	from   types.Address
	to     types.Address
	amount *big.Int
	target types.Address
}

func (sp *sequenceParams) validateFlags() error {
	if err := helper.ValidateSecretFlags(sp.accountDir, sp.accountConfig); err != nil {
		return err
	}

	if types.StringToAddress(sp.fromRaw) == types.ZeroAddress {
		return errInvalidFromAddress
	}

	if types.StringToAddress(sp.toRaw) == types.ZeroAddress {
		return errInvalidToAddress
	}

	if sp.targetRaw == "" && sp.gasLimit != 0 {
		return errGasLimitWithoutTarget
	}

	if sp.targetRaw != "" && types.StringToAddress(sp.targetRaw) == types.ZeroAddress {
		return errInvalidTargetAddress
	}

	return nil
}

func (sp *sequenceParams) initRawParams() error {
	sp.from = types.StringToAddress(sp.fromRaw)
	sp.to = types.StringToAddress(sp.toRaw)
	sp.target = types.StringToAddress(sp.targetRaw)

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

func (sp *sequenceParams) isAllocated() bool {
	return sp.targetRaw != ""
}
