package chain

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/0xPolygon/edge-vault/helper/common"
	"github.com/0xPolygon/edge-vault/types"
)

// Chain is the blockchain-side configuration the vault is anchored to
type Chain struct {
	Name    string   `json:"name"`
	Genesis *Genesis `json:"genesis"`
	Params  *Params  `json:"params"`
}

// Params holds the identity of the local chain
type Params struct {
	ChainID uint64 `json:"chainID"`
}

// Genesis specifies the initial state of the vault
type Genesis struct {
	// Relayer is the single principal authorized for privileged operations
	Relayer types.Address `json:"relayer"`

	// ChainWhitelist are the counterpart chains eligible for bridging
	ChainWhitelist []uint64 `json:"chainWhitelist,omitempty"`

	// TokenWhitelist are the tokens eligible for bridging
	TokenWhitelist []types.Address `json:"tokenWhitelist,omitempty"`

	// MinAmount is the minimum transfer threshold
	MinAmount *big.Int `json:"minAmount,omitempty"`

	// FeeRate is the deposit fee, in parts per thousand
	FeeRate uint64 `json:"feeRate"`

	// Premine are funding pool balances present from genesis
	Premine []*PremineBalance `json:"premine,omitempty"`
}

// PremineBalance is a funding pool entry present from genesis
type PremineBalance struct {
	ChainID uint64        `json:"chainID"`
	TokenID types.Address `json:"tokenID"`
	Balance *big.Int      `json:"balance"`
}

// genesisJSON mirrors Genesis with scalar fields encoded as hex strings
type genesisJSON struct {
	Relayer        types.Address     `json:"relayer"`
	ChainWhitelist []uint64          `json:"chainWhitelist,omitempty"`
	TokenWhitelist []types.Address   `json:"tokenWhitelist,omitempty"`
	MinAmount      *string           `json:"minAmount,omitempty"`
	FeeRate        *string           `json:"feeRate"`
	Premine        []json.RawMessage `json:"premine,omitempty"`
}

type premineJSON struct {
	ChainID *string       `json:"chainID"`
	TokenID types.Address `json:"tokenID"`
	Balance *string       `json:"balance"`
}

func (g *Genesis) MarshalJSON() ([]byte, error) {
	obj := &genesisJSON{
		Relayer:        g.Relayer,
		ChainWhitelist: g.ChainWhitelist,
		TokenWhitelist: g.TokenWhitelist,
		FeeRate:        common.EncodeUint64(g.FeeRate),
	}

	if g.MinAmount != nil {
		obj.MinAmount = common.EncodeBigInt(g.MinAmount)
	}

	for _, premine := range g.Premine {
		raw, err := json.Marshal(&premineJSON{
			ChainID: common.EncodeUint64(premine.ChainID),
			TokenID: premine.TokenID,
			Balance: common.EncodeBigInt(premine.Balance),
		})
		if err != nil {
			return nil, err
		}

		obj.Premine = append(obj.Premine, raw)
	}

	return json.Marshal(obj)
}

func (g *Genesis) UnmarshalJSON(data []byte) error {
	var dec genesisJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}

	g.Relayer = dec.Relayer
	g.ChainWhitelist = dec.ChainWhitelist
	g.TokenWhitelist = dec.TokenWhitelist

	var (
		err     error
		parseErr = func(field string, err error) error {
			return fmt.Errorf("%s: %w", field, err)
		}
	)

	if g.MinAmount, err = common.ParseUint256orHex(dec.MinAmount); err != nil {
		return parseErr("minAmount", err)
	}

	if g.FeeRate, err = common.ParseUint64orHex(dec.FeeRate); err != nil {
		return parseErr("feeRate", err)
	}

	for _, raw := range dec.Premine {
		var premine premineJSON
		if err := json.Unmarshal(raw, &premine); err != nil {
			return parseErr("premine", err)
		}

		entry := &PremineBalance{
			TokenID: premine.TokenID,
		}

		if entry.ChainID, err = common.ParseUint64orHex(premine.ChainID); err != nil {
			return parseErr("premine chainID", err)
		}

		if entry.Balance, err = common.ParseUint256orHex(premine.Balance); err != nil {
			return parseErr("premine balance", err)
		}

		g.Premine = append(g.Premine, entry)
	}

	return nil
}

// Import imports a chain definition from a filepath
func Import(chainFile string) (*Chain, error) {
	return ImportFromFile(chainFile)
}

// ImportFromFile imports a chain from a filepath
func ImportFromFile(filename string) (*Chain, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return importChain(data)
}

// ImportFromString imports a chain from a JSON string
func ImportFromString(chainStr string) (*Chain, error) {
	return importChain([]byte(chainStr))
}

func importChain(content []byte) (*Chain, error) {
	var chain *Chain

	if err := json.Unmarshal(content, &chain); err != nil {
		return nil, err
	}

	if chain.Genesis == nil {
		return nil, fmt.Errorf("genesis definition is missing")
	}

	if chain.Params == nil || chain.Params.ChainID == 0 {
		return nil, fmt.Errorf("chain id is missing")
	}

	if chain.Genesis.Relayer == types.ZeroAddress {
		return nil, fmt.Errorf("relayer address is missing")
	}

	return chain, nil
}
