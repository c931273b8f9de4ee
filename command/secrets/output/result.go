package output

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/types"
)

type SecretsOutputResult struct {
	Address types.Address `json:"address"`
}

func (r *SecretsOutputResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[SECRETS OUTPUT]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Public key (address)|%s", r.Address),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
