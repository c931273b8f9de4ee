package deposit

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/edge-vault/command/helper"
)

type depositResult struct {
	Index       uint64 `json:"index"`
	From        string `json:"from"`
	SourceChain uint64 `json:"sourceChainId"`
	DestChain   uint64 `json:"destChainId"`
	To          string `json:"to"`
	Token       string `json:"tokenId"`
	Amount      string `json:"amount"`
}

func (dr *depositResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[VAULT DEPOSIT]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Event Index|%d", dr.Index),
		fmt.Sprintf("Depositor|%s", dr.From),
		fmt.Sprintf("Source Chain|%d", dr.SourceChain),
		fmt.Sprintf("Destination Chain|%d", dr.DestChain),
		fmt.Sprintf("Receiver|%s", dr.To),
		fmt.Sprintf("Token|%s", dr.Token),
		fmt.Sprintf("Amount|%s", dr.Amount),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
