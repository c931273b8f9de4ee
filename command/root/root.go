package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/edge-vault/command/genesis"
	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/command/license"
	"github.com/0xPolygon/edge-vault/command/params"
	"github.com/0xPolygon/edge-vault/command/secrets"
	"github.com/0xPolygon/edge-vault/command/server"
	"github.com/0xPolygon/edge-vault/command/status"
	"github.com/0xPolygon/edge-vault/command/vault"
	"github.com/0xPolygon/edge-vault/command/version"
	"github.com/0xPolygon/edge-vault/command/whitelist"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Short: "Edge Vault is a custody endpoint for value moving between chains",
		},
	}

	helper.RegisterJSONOutputFlag(rootCommand.baseCmd)

	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		version.GetCommand(),
		status.GetCommand(),
		secrets.GetCommand(),
		genesis.GetCommand(),
		server.GetCommand(),
		vault.GetCommand(),
		whitelist.GetCommand(),
		params.GetCommand(),
		license.GetCommand(),
	)
}

func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
