package genesis

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/edge-vault/command"
)

func GetCommand() *cobra.Command {
	genesisCmd := &cobra.Command{
		Use:     "genesis",
		Short:   "Generates the genesis configuration file with the passed in parameters",
		PreRunE: preRunCommand,
		Run:     runCommand,
	}

	setFlags(genesisCmd)

	return genesisCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&params.genesisPath,
		dirFlag,
		fmt.Sprintf("./%s", command.DefaultGenesisFileName),
		"the directory for the Edge Vault genesis data",
	)

	cmd.Flags().StringVar(
		&params.name,
		nameFlag,
		command.DefaultChainName,
		"the name for the chain",
	)

	cmd.Flags().Uint64Var(
		&params.chainID,
		chainIDFlag,
		command.DefaultChainID,
		"the ID of the chain",
	)

	cmd.Flags().StringVar(
		&params.relayerRaw,
		relayerFlag,
		"",
		"the address authorized for privileged vault operations",
	)

	cmd.Flags().StringVar(
		&params.relayerDataDir,
		relayerDataDirFlag,
		"",
		"the data directory holding the relayer key in the local secrets layout. "+
			"The key is generated if not present",
	)

	cmd.MarkFlagsMutuallyExclusive(relayerFlag, relayerDataDirFlag)

	cmd.Flags().StringArrayVar(
		&params.chainWhitelistRaw,
		chainWhitelistFlag,
		[]string{},
		"the counterpart chain IDs eligible for transfers. This flag can be used multiple times",
	)

	cmd.Flags().StringArrayVar(
		&params.tokenWhitelistRaw,
		tokenWhitelistFlag,
		[]string{},
		"the token addresses eligible for transfers. This flag can be used multiple times",
	)

	cmd.Flags().StringVar(
		&params.minAmountRaw,
		minAmountFlag,
		"",
		"the minimum transfer amount accepted by the vault",
	)

	cmd.Flags().Uint64Var(
		&params.feeRate,
		feeRateFlag,
		0,
		"the deposit fee rate, in parts per thousand",
	)

	cmd.Flags().StringArrayVar(
		&params.premineRaw,
		premineFlag,
		[]string{},
		fmt.Sprintf(
			"the premined funding pool balances (format: <chainID>:<tokenID>[:<balance>]). "+
				"Default premined balance: %s. This flag can be used multiple times",
			command.DefaultPremineBalance,
		),
	)
}

func preRunCommand(_ *cobra.Command, _ []string) error {
	if err := params.validateFlags(); err != nil {
		return err
	}

	return params.initRawParams()
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	if err := params.generateGenesis(); err != nil {
		outputter.SetError(err)

		return
	}

	outputter.WriteCommandResult(params.getResult())
}
