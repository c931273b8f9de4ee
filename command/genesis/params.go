package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/0xPolygon/edge-vault/chain"
	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/crypto"
	"github.com/0xPolygon/edge-vault/helper/common"
	"github.com/0xPolygon/edge-vault/secrets"
	"github.com/0xPolygon/edge-vault/types"
)

const (
	dirFlag            = "dir"
	nameFlag           = "name"
	chainIDFlag        = "chain-id"
	relayerFlag        = "relayer"
	relayerDataDirFlag = "relayer-data-dir"
	chainWhitelistFlag = "chain-whitelist"
	tokenWhitelistFlag = "token-whitelist"
	minAmountFlag      = "min-amount"
	feeRateFlag        = "fee-rate"
	premineFlag        = "premine"
)

var (
	params = &genesisParams{}
)

var (
	errRelayerNotSpecified   = errors.New("relayer address not specified")
	errInvalidRelayerAddress = errors.New("invalid relayer address")
)

type genesisParams struct {
	genesisPath string
	name        string
	chainID     uint64
	feeRate     uint64

	relayerRaw        string
	relayerDataDir    string
	chainWhitelistRaw []string
	tokenWhitelistRaw []string
	minAmountRaw      string
	premineRaw        []string

	relayer        types.Address
	chainWhitelist []uint64
	tokenWhitelist []types.Address
	minAmount      *big.Int
	premine        []*chain.PremineBalance

	genesisConfig *chain.Chain
}

func (p *genesisParams) validateFlags() error {
	if p.relayerRaw == "" && p.relayerDataDir == "" {
		return errRelayerNotSpecified
	}

	// Check if the genesis file already exists
	if generateError := verifyGenesisExistence(p.genesisPath); generateError != nil {
		return errors.New(generateError.GetMessage())
	}

	return nil
}

func (p *genesisParams) initRawParams() error {
	if err := p.initRelayerAddress(); err != nil {
		return err
	}

	if err := p.initWhitelists(); err != nil {
		return err
	}

	if err := p.initMinAmount(); err != nil {
		return err
	}

	return p.initPremine()
}

func (p *genesisParams) initRelayerAddress() error {
	if p.relayerDataDir != "" {
		return p.resolveRelayerFromDataDir()
	}

	p.relayer = types.StringToAddress(p.relayerRaw)
	if p.relayer == types.ZeroAddress {
		return errInvalidRelayerAddress
	}

	return nil
}

// resolveRelayerFromDataDir derives the relayer address from the key file
// in the local secrets layout under the given directory. The key is
// generated on the spot if no file is present, so a fresh data directory
// can be bootstrapped with a single genesis invocation.
func (p *genesisParams) resolveRelayerFromDataDir() error {
	if err := common.SetupDataDir(p.relayerDataDir, []string{secrets.KeystoreFolderLocal}); err != nil {
		return err
	}

	keyPath := filepath.Join(p.relayerDataDir, secrets.KeystoreFolderLocal, secrets.RelayerKeyLocal)

	priv, err := crypto.GenerateOrReadPrivateKey(keyPath)
	if err != nil {
		return err
	}

	p.relayer = crypto.PubKeyToAddress(&priv.PublicKey)

	return nil
}

func (p *genesisParams) initWhitelists() error {
	for _, entry := range p.chainWhitelistRaw {
		entry := entry

		chainID, err := common.ParseUint64orHex(&entry)
		if err != nil {
			return fmt.Errorf("failed to parse chain whitelist entry %s: %w", entry, err)
		}

		p.chainWhitelist = append(p.chainWhitelist, chainID)
	}

	for _, entry := range p.tokenWhitelistRaw {
		p.tokenWhitelist = append(p.tokenWhitelist, types.StringToAddress(entry))
	}

	return nil
}

func (p *genesisParams) initMinAmount() error {
	if p.minAmountRaw == "" {
		return nil
	}

	minAmount, err := common.ParseUint256orHex(&p.minAmountRaw)
	if err != nil {
		return fmt.Errorf("failed to parse min amount %s: %w", p.minAmountRaw, err)
	}

	p.minAmount = minAmount

	return nil
}

func (p *genesisParams) initPremine() error {
	for _, entry := range p.premineRaw {
		premine, err := parsePremineInfo(entry)
		if err != nil {
			return err
		}

		p.premine = append(p.premine, premine)
	}

	return nil
}

func (p *genesisParams) generateGenesis() error {
	p.initGenesisConfig()

	if err := p.writeGenesisToDisk(); err != nil {
		return err
	}

	return nil
}

func (p *genesisParams) initGenesisConfig() {
	p.genesisConfig = &chain.Chain{
		Name: p.name,
		Genesis: &chain.Genesis{
			Relayer:        p.relayer,
			ChainWhitelist: p.chainWhitelist,
			TokenWhitelist: p.tokenWhitelist,
			MinAmount:      p.minAmount,
			FeeRate:        p.feeRate,
			Premine:        p.premine,
		},
		Params: &chain.Params{
			ChainID: p.chainID,
		},
	}
}

// writeGenesisToDisk writes the passed in configuration to a genesis file at the specified path
func (p *genesisParams) writeGenesisToDisk() error {
	data, err := json.MarshalIndent(p.genesisConfig, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to generate genesis: %w", err)
	}

	//nolint:gosec
	if err := os.WriteFile(p.genesisPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write genesis: %w", err)
	}

	return nil
}

func (p *genesisParams) getResult() command.CommandResult {
	return &GenesisResult{
		Message: fmt.Sprintf("Genesis written to %s\n", p.genesisPath),
	}
}
