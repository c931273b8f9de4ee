package params

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/edge-vault/command/params/feerate"
	"github.com/0xPolygon/edge-vault/command/params/minamount"
)

func GetCommand() *cobra.Command {
	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "Top level command for reading and updating the vault transfer parameters. Only accepts subcommands",
	}

	registerSubcommands(paramsCmd)

	return paramsCmd
}

func registerSubcommands(baseCmd *cobra.Command) {
	baseCmd.AddCommand(
		// params min-amount
		minamount.GetCommand(),
		// params fee-rate
		feerate.GetCommand(),
	)
}
