package feerate

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/edge-vault/command/helper"
)

type feeRateResult struct {
	Rate         uint64 `json:"rate"`
	Updated      bool   `json:"updated"`
	EnvelopeHash string `json:"envelopeHash,omitempty"`
	Nonce        uint64 `json:"nonce,omitempty"`
}

func (fr *feeRateResult) GetOutput() string {
	var buffer bytes.Buffer

	vals := make([]string, 0, 3)
	vals = append(vals, fmt.Sprintf("Fee Rate (per mille)|%d", fr.Rate))

	if fr.Updated {
		vals = append(vals, fmt.Sprintf("Envelope Hash|%s", fr.EnvelopeHash))
		vals = append(vals, fmt.Sprintf("Operation Nonce|%d", fr.Nonce))
	}

	buffer.WriteString("\n[FEE RATE]\n")
	buffer.WriteString(helper.FormatKV(vals))
	buffer.WriteString("\n")

	return buffer.String()
}
