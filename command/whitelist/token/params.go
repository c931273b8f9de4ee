package token

import (
	"errors"
	"fmt"

	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/types"
)

const (
	addFlag    = "add"
	removeFlag = "remove"
)

var (
	params tokenParams
)

var (
	errNoUpdates = errors.New("at least one token must be added or removed")
)

type tokenParams struct {
	accountDir    string
	accountConfig string
	jsonRPC       string

	// raw token addresses, entered by CLI commands
	addTokensRaw    []string
	removeTokensRaw []string

	// token addresses, converted from raw entries
	addTokens    []types.Address
	removeTokens []types.Address
}

func (tp *tokenParams) validateFlags() error {
	if err := helper.ValidateSecretFlags(tp.accountDir, tp.accountConfig); err != nil {
		return err
	}

	if len(tp.addTokensRaw) == 0 && len(tp.removeTokensRaw) == 0 {
		return errNoUpdates
	}

	return nil
}

func (tp *tokenParams) initRawParams() error {
	var err error

	if tp.addTokens, err = unmarshallRawTokens(tp.addTokensRaw); err != nil {
		return err
	}

	tp.removeTokens, err = unmarshallRawTokens(tp.removeTokensRaw)

	return err
}

func unmarshallRawTokens(tokensRaw []string) ([]types.Address, error) {
	tokens := make([]types.Address, len(tokensRaw))

	for indx, tokenRaw := range tokensRaw {
		if helper.ValidateAddress(tokenRaw) != nil {
			return nil, fmt.Errorf("invalid token address %s", tokenRaw)
		}

		tokens[indx] = types.StringToAddress(tokenRaw)
	}

	return tokens, nil
}
