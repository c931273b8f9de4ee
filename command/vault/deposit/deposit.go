package deposit

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/operator"
)

func GetCommand() *cobra.Command {
	depositCmd := &cobra.Command{
		Use:     "deposit",
		Short:   "Deposits value into the vault for bridging to a destination chain",
		PreRunE: runPreRun,
		RunE:    runCommand,
	}

	helper.RegisterJSONRPCFlag(depositCmd)
	setFlags(depositCmd)

	return depositCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&params.fromRaw,
		fromFlag,
		"",
		"the address the deposited value is debited from",
	)

	cmd.Flags().StringVar(
		&params.sourceChainRaw,
		sourceChainFlag,
		"",
		"the chain ID the deposit originates on, if omitted, the endpoint's own chain ID is used",
	)

	cmd.Flags().StringVar(
		&params.destChainRaw,
		destChainFlag,
		"",
		"the chain ID the deposited value is bridged to",
	)

	cmd.Flags().StringVar(
		&params.toRaw,
		toFlag,
		"",
		"the address receiving the value on the destination chain",
	)

	cmd.Flags().StringVar(
		&params.tokenRaw,
		tokenFlag,
		"",
		"the address of the token being deposited",
	)

	cmd.Flags().StringVar(
		&params.amountRaw,
		amountFlag,
		"",
		"the amount to deposit",
	)

	_ = cmd.MarkFlagRequired(fromFlag)
	_ = cmd.MarkFlagRequired(destChainFlag)
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

	client, err := operator.NewClient(operator.WithAddr(params.jsonRPC))
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if params.sourceChainRaw == "" {
		sourceChain, err := client.ChainID(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch chain ID: %w", err)
		}

		params.sourceChain = sourceChain
	}

	index, err := client.Deposit(
		ctx,
		params.from,
		params.sourceChain,
		params.destChain,
		params.to,
		params.token,
		params.amount,
	)
	if err != nil {
		return err
	}

	outputter.WriteCommandResult(&depositResult{
		Index:       index,
		From:        params.from.String(),
		SourceChain: params.sourceChain,
		DestChain:   params.destChain,
		To:          params.to.String(),
		Token:       params.token.String(),
		Amount:      params.amount.String(),
	})

	return nil
}
