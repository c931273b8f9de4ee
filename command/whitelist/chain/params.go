package chain

import (
	"errors"
	"fmt"

	"github.com/0xPolygon/edge-vault/command/helper"
	"github.com/0xPolygon/edge-vault/helper/common"
)

const (
	addFlag    = "add"
	removeFlag = "remove"
)

var (
	params chainParams
)

var (
	errNoUpdates = errors.New("at least one chain must be added or removed")
)

type chainParams struct {
	accountDir    string
	accountConfig string
	jsonRPC       string

	// raw chain IDs, entered by CLI commands
	addChainsRaw    []string
	removeChainsRaw []string

	// chain IDs, converted from raw entries
	addChains    []uint64
	removeChains []uint64
}

func (cp *chainParams) validateFlags() error {
	if err := helper.ValidateSecretFlags(cp.accountDir, cp.accountConfig); err != nil {
		return err
	}

	if len(cp.addChainsRaw) == 0 && len(cp.removeChainsRaw) == 0 {
		return errNoUpdates
	}

	return nil
}

func (cp *chainParams) initRawParams() error {
	var err error

	if cp.addChains, err = unmarshallRawChainIDs(cp.addChainsRaw); err != nil {
		return err
	}

	cp.removeChains, err = unmarshallRawChainIDs(cp.removeChainsRaw)

	return err
}

func unmarshallRawChainIDs(chainsRaw []string) ([]uint64, error) {
	chains := make([]uint64, len(chainsRaw))

	for indx, chainRaw := range chainsRaw {
		chainRaw := chainRaw

		chainID, err := common.ParseUint64orHex(&chainRaw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse chain ID %s: %w", chainRaw, err)
		}

		chains[indx] = chainID
	}

	return chains, nil
}
