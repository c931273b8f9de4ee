package chain

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/operator"
)

func GetCommand() *cobra.Command {
	chainCmd := &cobra.Command{
		Use:     "chain",
		Short:   "Updates the whitelist of chains eligible for transfers. Relayer only",
		PreRunE: runPreRun,
		RunE:    runCommand,
	}

	helper.RegisterJSONRPCFlag(chainCmd)
	setFlags(chainCmd)

	return chainCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&params.accountDir,
		helper.AccountDirFlag,
		"",
		helper.AccountDirFlagDesc,
	)

	cmd.Flags().StringVar(
		&params.accountConfig,
		helper.AccountConfigFlag,
		"",
		helper.AccountConfigFlagDesc,
	)

	cmd.Flags().StringArrayVar(
		&params.addChainsRaw,
		addFlag,
		[]string{},
		"adds a chain ID to the whitelist. This flag can be used multiple times",
	)

	cmd.Flags().StringArrayVar(
		&params.removeChainsRaw,
		removeFlag,
		[]string{},
		"removes a chain ID from the whitelist. This flag can be used multiple times",
	)

	cmd.MarkFlagsMutuallyExclusive(helper.AccountDirFlag, helper.AccountConfigFlag)
}

func runPreRun(cmd *cobra.Command, _ []string) error {
	params.jsonRPC = helper.GetJSONRPCAddress(cmd)

	if err := params.validateFlags(); err != nil {
		return err
	}

	return params.initRawParams()
}

func runCommand(cmd *cobra.Command, _ []string) error {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	relayerKey, err := helper.GetRelayerKey(params.accountDir, params.accountConfig)
	if err != nil {
		return err
	}

	client, err := operator.NewClient(
		operator.WithAddr(params.jsonRPC),
		operator.WithKey(relayerKey),
	)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	res := &chainResult{}

	// Envelopes carry consecutive nonces, so updates are submitted one at a time
	for _, chainID := range params.addChains {
		receipt, err := client.SetChainWhitelist(ctx, chainID, true)
		if err != nil {
			return err
		}

		res.Updates = append(res.Updates, whitelistUpdate{
			ChainID:      chainID,
			Allowed:      true,
			EnvelopeHash: receipt.EnvelopeHash.String(),
			Nonce:        receipt.Nonce,
		})
	}

	for _, chainID := range params.removeChains {
		receipt, err := client.SetChainWhitelist(ctx, chainID, false)
		if err != nil {
			return err
		}

		res.Updates = append(res.Updates, whitelistUpdate{
			ChainID:      chainID,
			Allowed:      false,
			EnvelopeHash: receipt.EnvelopeHash.String(),
			Nonce:        receipt.Nonce,
		})
	}

	outputter.WriteCommandResult(res)

	return nil
}
