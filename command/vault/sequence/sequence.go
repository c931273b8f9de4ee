package sequence

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/operator"
)

func GetCommand() *cobra.Command {
	sequenceCmd := &cobra.Command{
		Use: "sequence",
		Short: "Sequences an outbound value message, optionally forwarding it " +
			"to a target contract. Relayer only",
		PreRunE: runPreRun,
		RunE:    runCommand,
	}

	helper.RegisterJSONRPCFlag(sequenceCmd)
	setFlags(sequenceCmd)

	return sequenceCmd
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
		&params.fromRaw,
		fromFlag,
		"",
		"the address the sequenced value originates from",
	)

	cmd.Flags().StringVar(
		&params.toRaw,
		toFlag,
		"",
		"the address receiving the sequenced value",
	)

	cmd.Flags().StringVar(
		&params.amountRaw,
		amountFlag,
		"",
		"the amount being sequenced",
	)

	cmd.Flags().StringVar(
		&params.targetRaw,
		targetFlag,
		"",
		"the contract the sequenced value is forwarded to, if omitted, "+
			"the message is recorded without forwarding",
	)

	cmd.Flags().Uint64Var(
		&params.gasLimit,
		gasLimitFlag,
		0,
		"the minimum gas guaranteed to the forwarded call, only valid together with --target",
	)

	cmd.MarkFlagsMutuallyExclusive(helper.AccountDirFlag, helper.AccountConfigFlag)

	_ = cmd.MarkFlagRequired(fromFlag)
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

	var receipt *operator.OperationReceipt

	if params.isAllocated() {
		receipt, err = client.SequenceAllocated(
			cmd.Context(),
			params.target,
			params.from,
			params.to,
			params.amount,
			params.gasLimit,
		)
	} else {
		receipt, err = client.SequenceReceived(
			cmd.Context(),
			params.from,
			params.to,
			params.amount,
		)
	}

	if err != nil {
		return err
	}

	res := &sequenceResult{
		EnvelopeHash: receipt.EnvelopeHash.String(),
		Nonce:        receipt.Nonce,
		From:         params.from.String(),
		To:           params.to.String(),
		Amount:       params.amount.String(),
	}

	if params.isAllocated() {
		res.Target = params.target.String()
		res.GasLimit = params.gasLimit
	}

	if receipt.MessageNonce != nil {
		res.MessageNonce = *receipt.MessageNonce
	}

	if receipt.MessageHash != nil {
		res.MessageHash = receipt.MessageHash.String()
	}

	outputter.WriteCommandResult(res)

	return nil
}
