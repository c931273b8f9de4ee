package release

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/operator"
)

func GetCommand() *cobra.Command {
	releaseCmd := &cobra.Command{
		Use:     "release",
		Short:   "Releases bridged value from the vault to a receiving address. Relayer only",
		PreRunE: runPreRun,
		RunE:    runCommand,
	}

	helper.RegisterJSONRPCFlag(releaseCmd)
	setFlags(releaseCmd)

	return releaseCmd
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

	cmd.Flags().StringVar(
		&params.sourceChainRaw,
		sourceChainFlag,
		"",
		"the chain ID the released value was bridged from",
	)

	cmd.Flags().StringVar(
		&params.destChainRaw,
		destChainFlag,
		"",
		"the chain ID the value is released on, if omitted, the endpoint's own chain ID is used",
	)

	cmd.Flags().StringVar(
		&params.toRaw,
		toFlag,
		"",
		"the address receiving the released value",
	)

	cmd.Flags().StringVar(
		&params.tokenRaw,
		tokenFlag,
		"",
		"the address of the token being released",
	)

	cmd.Flags().StringVar(
		&params.amountRaw,
		amountFlag,
		"",
		"the amount to release",
	)

	cmd.MarkFlagsMutuallyExclusive(helper.AccountDirFlag, helper.AccountConfigFlag)

	_ = cmd.MarkFlagRequired(sourceChainFlag)
	_ = cmd.MarkFlagRequired(toFlag)
	_ = cmd.MarkFlagRequired(tokenFlag)
	_ = cmd.MarkFlagRequired(amountFlag)
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

	if params.destChainRaw == "" {
		destChain, err := client.ChainID(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch chain ID: %w", err)
		}

		params.destChain = destChain
	}

	receipt, err := client.ReleaseValue(
		ctx,
		params.sourceChain,
		params.destChain,
		params.to,
		params.token,
		params.amount,
	)
	if err != nil {
		return err
	}

	outputter.WriteCommandResult(&releaseResult{
		EnvelopeHash: receipt.EnvelopeHash.String(),
		Nonce:        receipt.Nonce,
		To:           params.to.String(),
		Token:        params.token.String(),
		Amount:       params.amount.String(),
	})

	return nil
}
