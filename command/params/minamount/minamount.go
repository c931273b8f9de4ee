package minamount

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/operator"
)

func GetCommand() *cobra.Command {
	minAmountCmd := &cobra.Command{
		Use:     "min-amount",
		Short:   "Returns or updates the minimum transfer amount. Updating is relayer only",
		PreRunE: runPreRun,
		RunE:    runCommand,
	}

	helper.RegisterJSONRPCFlag(minAmountCmd)
	setFlags(minAmountCmd)

	return minAmountCmd
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
		&params.amountRaw,
		amountFlag,
		"",
		"the minimum transfer amount to set, if omitted, the current value is returned",
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

	var (
		res command.CommandResult
		err error
	)

	if params.isSetAction() {
		res, err = setMinAmount(cmd)
	} else {
		res, err = queryMinAmount(cmd)
	}

	if err != nil {
		return err
	}

	outputter.WriteCommandResult(res)

	return nil
}

func setMinAmount(cmd *cobra.Command) (command.CommandResult, error) {
	relayerKey, err := helper.GetRelayerKey(params.accountDir, params.accountConfig)
	if err != nil {
		return nil, err
	}

	client, err := operator.NewClient(
		operator.WithAddr(params.jsonRPC),
		operator.WithKey(relayerKey),
	)
	if err != nil {
		return nil, err
	}

	receipt, err := client.SetMinTransferAmount(cmd.Context(), params.amount)
	if err != nil {
		return nil, err
	}

	return &minAmountResult{
		Amount:       params.amount.String(),
		Updated:      true,
		EnvelopeHash: receipt.EnvelopeHash.String(),
		Nonce:        receipt.Nonce,
	}, nil
}

func queryMinAmount(cmd *cobra.Command) (command.CommandResult, error) {
	client, err := operator.NewClient(operator.WithAddr(params.jsonRPC))
	if err != nil {
		return nil, err
	}

	amount, err := client.MinTransferAmount(cmd.Context())
	if err != nil {
		return nil, err
	}

	return &minAmountResult{
		Amount: amount.String(),
	}, nil
}
