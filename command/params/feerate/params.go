package feerate

import (
	"fmt"

	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/helper/common"
)

const (
	rateFlag = "rate"
)

var (
	params feeRateParams
)

type feeRateParams struct {
	accountDir    string
	accountConfig string
	jsonRPC       string

	rateRaw string

	rate uint64
}

func (fp *feeRateParams) validateFlags() error {
	if !fp.isSetAction() {
		return nil
	}

	return helper.ValidateSecretFlags(fp.accountDir, fp.accountConfig)
}

func (fp *feeRateParams) initRawParams() error {
	if !fp.isSetAction() {
		return nil
	}

	rate, err := common.ParseUint64orHex(&fp.rateRaw)
	if err != nil {
		return fmt.Errorf("failed to parse rate %s: %w", fp.rateRaw, err)
	}

	fp.rate = rate

	return nil
}

// isSetAction reports whether the command updates the parameter
// instead of querying it
func (fp *feeRateParams) isSetAction() bool {
	return fp.rateRaw != ""
}
