package sweep

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/edge-vault/command/helper"
)

type sweepResult struct {
	EnvelopeHash string `json:"envelopeHash"`
	Nonce        uint64 `json:"nonce"`
	Token        string `json:"tokenId"`
	To           string `json:"to"`
	Amount       string `json:"amount"`
}

func (sr *sweepResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[VAULT SWEEP]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Envelope Hash|%s", sr.EnvelopeHash),
		fmt.Sprintf("Operation Nonce|%d", sr.Nonce),
		fmt.Sprintf("Token|%s", sr.Token),
		fmt.Sprintf("Receiver|%s", sr.To),
		fmt.Sprintf("Amount|%s", sr.Amount),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
