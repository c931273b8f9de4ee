package token

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/edge-vault/command/helper"
)

type whitelistUpdate struct {
	TokenID      string `json:"tokenId"`
	Allowed      bool   `json:"allowed"`
	EnvelopeHash string `json:"envelopeHash"`
	Nonce        uint64 `json:"nonce"`
}

type tokenResult struct {
	Updates []whitelistUpdate `json:"updates"`
}

func (tr *tokenResult) GetOutput() string {
	var buffer bytes.Buffer

	vals := make([]string, 0, len(tr.Updates))

	for _, update := range tr.Updates {
		status := "allowed"
		if !update.Allowed {
			status = "revoked"
		}

		vals = append(vals, fmt.Sprintf("%s|%s", update.TokenID, status))
	}

	buffer.WriteString("\n[TOKEN WHITELIST]\n")
	buffer.WriteString(helper.FormatKV(vals))
	buffer.WriteString("\n")

	return buffer.String()
}
