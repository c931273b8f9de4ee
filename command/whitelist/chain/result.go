package chain

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/edge-vault/command/helper"
)

type whitelistUpdate struct {
	ChainID      uint64 `json:"chainId"`
	Allowed      bool   `json:"allowed"`
	EnvelopeHash string `json:"envelopeHash"`
	Nonce        uint64 `json:"nonce"`
}

type chainResult struct {
	Updates []whitelistUpdate `json:"updates"`
}

func (cr *chainResult) GetOutput() string {
	var buffer bytes.Buffer

	vals := make([]string, 0, len(cr.Updates))

	for _, update := range cr.Updates {
		status := "allowed"
		if !update.Allowed {
			status = "revoked"
		}

		vals = append(vals, fmt.Sprintf("Chain %d|%s", update.ChainID, status))
	}

	buffer.WriteString("\n[CHAIN WHITELIST]\n")
	buffer.WriteString(helper.FormatKV(vals))
	buffer.WriteString("\n")

	return buffer.String()
}
