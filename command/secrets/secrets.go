package secrets

import (
	"github.com/spf13/cobra"

	initCmd "github.com/0xPolygon/edge-vault/command/secrets/init"
	"github.com/0xPolygon/edge-vault/command/secrets/output"
)

func GetCommand() *cobra.Command {
	secretsCmd := &cobra.Command{
		Use:   "secrets",
		Short: "Top level SecretsManager command for interacting with secrets functionality. Only accepts subcommands",
	}

	registerSubcommands(secretsCmd)

	return secretsCmd
}

func registerSubcommands(baseCmd *cobra.Command) {
	baseCmd.AddCommand(
		// secrets init
		initCmd.GetCommand(),
		// secrets output
		output.GetCommand(),
	)
}
