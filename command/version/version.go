package version

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/versioning"
)

func GetCommand() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Returns the current Edge Vault version",
		Args:  cobra.NoArgs,
		Run:   runCommand,
	}

	return versionCmd
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	outputter.SetCommandResult(
		&VersionResult{
			Version:   versioning.Version,
			Commit:    versioning.Commit,
			Branch:    versioning.Branch,
			BuildTime: versioning.BuildTime,
		},
	)
}
