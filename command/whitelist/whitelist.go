package whitelist

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/edge-vault/command/whitelist/chain"
	"github.com/0xPolygon/edge-vault/command/whitelist/token"
)

func GetCommand() *cobra.Command {
	whitelistCmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Top level command for updating the vault whitelists. Only accepts subcommands",
	}

	registerSubcommands(whitelistCmd)

	return whitelistCmd
}

func registerSubcommands(baseCmd *cobra.Command) {
	baseCmd.AddCommand(
		// whitelist chain
		chain.GetCommand(),
		// whitelist token
		token.GetCommand(),
	)
}
