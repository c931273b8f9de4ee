package balance

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/operator"
)

func GetCommand() *cobra.Command {
	balanceCmd := &cobra.Command{
		Use:     "balance",
		Short:   "Returns the funding pool balances and accrued fees for a chain",
		PreRunE: runPreRun,
		RunE:    runCommand,
	}

	helper.RegisterJSONRPCFlag(balanceCmd)
	setFlags(balanceCmd)

	return balanceCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&params.chainRaw,
		chainFlag,
		"",
		"the chain ID the funding pools belong to, if omitted, the endpoint's own chain ID is used",
	)

	cmd.Flags().StringArrayVar(
		&params.tokens,
		tokenFlag,
		[]string{},
		"the token address to query the balance of. This flag can be used multiple times",
	)

	_ = cmd.MarkFlagRequired(tokenFlag)
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

	if params.chainRaw == "" {
		chain, err := client.ChainID(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch chain ID: %w", err)
		}

		params.chain = chain
	}

	res := &balanceResult{
		ChainID:  params.chain,
		Balances: make([]tokenBalance, len(params.tokenIDs)),
	}

	// Every query writes a distinct result slot, so no locking is needed
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fees, err := client.Fees(gctx, params.chain)
		if err != nil {
			return err
		}

		res.Fees = fees.String()

		return nil
	})

	for i, tokenID := range params.tokenIDs {
		i, tokenID := i, tokenID

		g.Go(func() error {
			balance, err := client.Balance(gctx, params.chain, tokenID)
			if err != nil {
				return err
			}

			res.Balances[i] = tokenBalance{
				TokenID: tokenID.String(),
				Balance: balance.String(),
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	outputter.WriteCommandResult(res)

	return nil
}
