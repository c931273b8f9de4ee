package sequence

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/edge-vault/command/helper"
)

type sequenceResult struct {
	EnvelopeHash string `json:"envelopeHash"`
	Nonce        uint64 `json:"nonce"`
	MessageNonce uint64 `json:"messageNonce"`
	MessageHash  string `json:"messageHash"`
	Target       string `json:"target,omitempty"`
	GasLimit     uint64 `json:"gasLimit,omitempty"`
	From         string `json:"from"`
	To           string `json:"to"`
	Amount       string `json:"amount"`
}

func (sr *sequenceResult) GetOutput() string {
	var buffer bytes.Buffer

	vals := make([]string, 0, 9)
	vals = append(vals, fmt.Sprintf("Envelope Hash|%s", sr.EnvelopeHash))
	vals = append(vals, fmt.Sprintf("Operation Nonce|%d", sr.Nonce))
	vals = append(vals, fmt.Sprintf("Message Nonce|%d", sr.MessageNonce))
	vals = append(vals, fmt.Sprintf("Message Hash|%s", sr.MessageHash))

	if sr.Target != "" {
		vals = append(vals, fmt.Sprintf("Target|%s", sr.Target))
		vals = append(vals, fmt.Sprintf("Gas Limit|%d", sr.GasLimit))
	}

	vals = append(vals, fmt.Sprintf("Sender|%s", sr.From))
	vals = append(vals, fmt.Sprintf("Receiver|%s", sr.To))
	vals = append(vals, fmt.Sprintf("Amount|%s", sr.Amount))

	buffer.WriteString("\n[VAULT SEQUENCE]\n")
	buffer.WriteString(helper.FormatKV(vals))
	buffer.WriteString("\n")

	return buffer.String()
}
