package token

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/operator"
)

func GetCommand() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:     "token",
		Short:   "Updates the whitelist of tokens eligible for transfers. Relayer only",
		PreRunE: runPreRun,
		RunE:    runCommand,
	}

	helper.RegisterJSONRPCFlag(tokenCmd)
	setFlags(tokenCmd)

	return tokenCmd
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
		&params.addTokensRaw,
		addFlag,
		[]string{},
		"adds a token address to the whitelist. This flag can be used multiple times",
	)

	cmd.Flags().StringArrayVar(
		&params.removeTokensRaw,
		removeFlag,
		[]string{},
		"removes a token address from the whitelist. This flag can be used multiple times",
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
	res := &tokenResult{}

	// Envelopes carry consecutive nonces, so updates are submitted one at a time
	for _, token := range params.addTokens {
		receipt, err := client.SetTokenWhitelist(ctx, token, true)
		if err != nil {
			return err
		}

		res.Updates = append(res.Updates, whitelistUpdate{
			TokenID:      token.String(),
			Allowed:      true,
			EnvelopeHash: receipt.EnvelopeHash.String(),
			Nonce:        receipt.Nonce,
		})
	}

	for _, token := range params.removeTokens {
		receipt, err := client.SetTokenWhitelist(ctx, token, false)
		if err != nil {
			return err
		}

		res.Updates = append(res.Updates, whitelistUpdate{
			TokenID:      token.String(),
			Allowed:      false,
			EnvelopeHash: receipt.EnvelopeHash.String(),
			Nonce:        receipt.Nonce,
		})
	}

	outputter.WriteCommandResult(res)

	return nil
}
