package sweep

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/operator"
)

func GetCommand() *cobra.Command {
	sweepCmd := &cobra.Command{
		Use:     "sweep",
		Short:   "Sends tokens held by the vault directly to a user address. Relayer only",
		PreRunE: runPreRun,
		RunE:    runCommand,
	}

	helper.RegisterJSONRPCFlag(sweepCmd)
	setFlags(sweepCmd)

	return sweepCmd
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
		&params.tokenRaw,
		tokenFlag,
		"",
		"the address of the token being swept",
	)

	cmd.Flags().StringVar(
		&params.toRaw,
		toFlag,
		"",
		"the address receiving the swept tokens",
	)

	cmd.Flags().StringVar(
		&params.amountRaw,
		amountFlag,
		"",
		"the amount to sweep",
	)

	cmd.MarkFlagsMutuallyExclusive(helper.AccountDirFlag, helper.AccountConfigFlag)

	_ = cmd.MarkFlagRequired(tokenFlag)
	_ = cmd.MarkFlagRequired(toFlag)
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

	receipt, err := client.SendTokenToUser(cmd.Context(), params.token, params.to, params.amount)
	if err != nil {
		return err
	}

	outputter.WriteCommandResult(&sweepResult{
		EnvelopeHash: receipt.EnvelopeHash.String(),
		Nonce:        receipt.Nonce,
		Token:        params.token.String(),
		To:           params.to.String(),
		Amount:       params.amount.String(),
	})

	return nil
}
