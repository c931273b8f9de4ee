package status

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/operator"
)

func GetCommand() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Returns the status of the Edge Vault endpoint",
		Run:   runCommand,
	}

	helper.RegisterJSONRPCFlag(statusCmd)

	return statusCmd
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	client, err := operator.NewClient(operator.WithAddr(helper.GetJSONRPCAddress(cmd)))
	if err != nil {
		outputter.SetError(err)

		return
	}

	res := &StatusResult{}

	// Every query writes a distinct result field, so no locking is needed
	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		chainID, err := client.ChainID(ctx)
		if err != nil {
			return err
		}

		res.ChainID = chainID

		return nil
	})

	g.Go(func() error {
		relayer, err := client.Relayer(ctx)
		if err != nil {
			return err
		}

		res.Relayer = relayer.String()

		return nil
	})

	g.Go(func() error {
		messageNonce, err := client.MessageNonce(ctx)
		if err != nil {
			return err
		}

		res.MessageNonce = messageNonce

		return nil
	})

	g.Go(func() error {
		eventCount, err := client.EventCount(ctx)
		if err != nil {
			return err
		}

		res.EventCount = eventCount

		return nil
	})

	g.Go(func() error {
		minAmount, err := client.MinTransferAmount(ctx)
		if err != nil {
			return err
		}

		res.MinTransferAmount = minAmount.String()

		return nil
	})

	g.Go(func() error {
		feeRate, err := client.FeeRate(ctx)
		if err != nil {
			return err
		}

		res.FeeRate = feeRate

		return nil
	})

	if err := g.Wait(); err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(res)
}
