package minamount

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/edge-vault/command/helper"
)

type minAmountResult struct {
	Amount       string `json:"amount"`
	Updated      bool   `json:"updated"`
	EnvelopeHash string `json:"envelopeHash,omitempty"`
	Nonce        uint64 `json:"nonce,omitempty"`
}

func (mr *minAmountResult) GetOutput() string {
	var buffer bytes.Buffer

	vals := make([]string, 0, 3)
	vals = append(vals, fmt.Sprintf("Min Transfer Amount|%s", mr.Amount))

	if mr.Updated {
		vals = append(vals, fmt.Sprintf("Envelope Hash|%s", mr.EnvelopeHash))
		vals = append(vals, fmt.Sprintf("Operation Nonce|%d", mr.Nonce))
	}

	buffer.WriteString("\n[MIN TRANSFER AMOUNT]\n")
	buffer.WriteString(helper.FormatKV(vals))
	buffer.WriteString("\n")

	return buffer.String()
}
