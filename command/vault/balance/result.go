package balance

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/edge-vault/command/helper"
)

type tokenBalance struct {
	TokenID string `json:"tokenId"`
	Balance string `json:"balance"`
}

type balanceResult struct {
	ChainID  uint64         `json:"chainId"`
	Fees     string         `json:"fees"`
	Balances []tokenBalance `json:"balances"`
}

func (br *balanceResult) GetOutput() string {
	var buffer bytes.Buffer

	vals := make([]string, 0, len(br.Balances)+2)
	vals = append(vals, fmt.Sprintf("Chain ID|%d", br.ChainID))
	vals = append(vals, fmt.Sprintf("Accrued Fees|%s", br.Fees))

	for _, balance := range br.Balances {
		vals = append(vals, fmt.Sprintf("%s|%s", balance.TokenID, balance.Balance))
	}

	buffer.WriteString("\n[VAULT BALANCE]\n")
	buffer.WriteString(helper.FormatKV(vals))
	buffer.WriteString("\n")

	return buffer.String()
}
