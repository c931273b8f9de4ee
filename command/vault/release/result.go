package release

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/edge-vault/command/helper"
)

type releaseResult struct {
	EnvelopeHash string `json:"envelopeHash"`
	Nonce        uint64 `json:"nonce"`
	To           string `json:"to"`
	Token        string `json:"tokenId"`
	Amount       string `json:"amount"`
}

func (rr *releaseResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[VAULT RELEASE]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Envelope Hash|%s", rr.EnvelopeHash),
		fmt.Sprintf("Operation Nonce|%d", rr.Nonce),
		fmt.Sprintf("Receiver|%s", rr.To),
		fmt.Sprintf("Token|%s", rr.Token),
		fmt.Sprintf("Amount|%s", rr.Amount),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
