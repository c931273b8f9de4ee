package vault

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/edge-vault/command/vault/balance"
	"github.com/0xPolygon/edge-vault/command/vault/deposit"
	"github.com/0xPolygon/edge-vault/command/vault/release"
	"github.com/0xPolygon/edge-vault/command/vault/sequence"
	"github.com/0xPolygon/edge-vault/command/vault/sweep"
)

func GetCommand() *cobra.Command {
	vaultCmd := &cobra.Command{
		Use:   "vault",
		Short: "Top level command for interacting with the vault ledger. Only accepts subcommands",
	}

	registerSubcommands(vaultCmd)

	return vaultCmd
}

func registerSubcommands(baseCmd *cobra.Command) {
	baseCmd.AddCommand(
		// vault deposit
		deposit.GetCommand(),
		// vault release
		release.GetCommand(),
		// vault sweep
		sweep.GetCommand(),
		// vault sequence
		sequence.GetCommand(),
		// vault balance
		balance.GetCommand(),
	)
}
