package feerate

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/operator"
)

func GetCommand() *cobra.Command {
	feeRateCmd := &cobra.Command{
		Use:     "fee-rate",
		Short:   "Returns or updates the deposit fee rate. Updating is relayer only",
		PreRunE: runPreRun,
		RunE:    runCommand,
	}

	helper.RegisterJSONRPCFlag(feeRateCmd)
	setFlags(feeRateCmd)

	return feeRateCmd
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
		&params.rateRaw,
		rateFlag,
		"",
		"the fee rate to set, in parts per thousand, if omitted, the current value is returned",
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
		res, err = setFeeRate(cmd)
	} else {
		res, err = queryFeeRate(cmd)
	}

	if err != nil {
		return err
	}

	outputter.WriteCommandResult(res)

	return nil
}

func setFeeRate(cmd *cobra.Command) (command.CommandResult, error) {
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

	receipt, err := client.SetFeeRate(cmd.Context(), params.rate)
	if err != nil {
		return nil, err
	}

	return &feeRateResult{
		Rate:         params.rate,
		Updated:      true,
		EnvelopeHash: receipt.EnvelopeHash.String(),
		Nonce:        receipt.Nonce,
	}, nil
}

func queryFeeRate(cmd *cobra.Command) (command.CommandResult, error) {
	client, err := operator.NewClient(operator.WithAddr(params.jsonRPC))
	if err != nil {
		return nil, err
	}

	rate, err := client.FeeRate(cmd.Context())
	if err != nil {
		return nil, err
	}

	return &feeRateResult{
		Rate: rate,
	}, nil
}
