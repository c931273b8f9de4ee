package status

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/edge-vault/command/helper"
)

type StatusResult struct {
	ChainID           uint64 `json:"chain_id"`
	Relayer           string `json:"relayer"`
	MessageNonce      uint64 `json:"message_nonce"`
	EventCount        uint64 `json:"event_count"`
	MinTransferAmount string `json:"min_transfer_amount"`
	FeeRate           uint64 `json:"fee_rate"`
}

func (r *StatusResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[VAULT STATUS]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Network (Chain ID)|%d", r.ChainID),
		fmt.Sprintf("Relayer|%s", r.Relayer),
		fmt.Sprintf("Message Nonce|%d", r.MessageNonce),
		fmt.Sprintf("Event Count|%d", r.EventCount),
		fmt.Sprintf("Min Transfer Amount|%s", r.MinTransferAmount),
		fmt.Sprintf("Fee Rate (per mille)|%d", r.FeeRate),
	}))

	return buffer.String()
}
