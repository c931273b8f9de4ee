package command

import (
	"encoding/json"
	"fmt"
	"os"
)

type JSONOutput struct {
	commonOutputFormatter
}

func newJSONOutput() *JSONOutput {
	return &JSONOutput{}
}

func (jo *JSONOutput) WriteOutput() {
	if jo.errorOutput != nil {
		_, _ = fmt.Fprintln(os.Stderr, jo.getErrorOutput())

		return
	}

	if jo.commandOutput == nil {
		return
	}

	_, _ = fmt.Fprintln(os.Stdout, jo.getCommandOutput())
}

func (jo *JSONOutput) WriteCommandResult(result CommandResult) {
	_, _ = fmt.Fprintln(os.Stdout, marshalJSONToString(result))
}

func (jo *JSONOutput) getErrorOutput() string {
	return marshalJSONToString(
		struct {
			Err string `json:"error"`
		}{
			Err: jo.errorOutput.Error(),
		},
	)
}

func (jo *JSONOutput) getCommandOutput() string {
	return marshalJSONToString(jo.commandOutput)
}

func marshalJSONToString(input interface{}) string {
	bytes, err := json.Marshal(input)
	if err != nil {
		return err.Error()
	}

	return string(bytes)
}
