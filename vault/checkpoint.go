package vault

import (
	"fmt"

	"github.com/0xPolygon/edge-vault/merkle"
	"github.com/0xPolygon/edge-vault/types"
)

// Checkpoint is a merkle commitment over the sequenced message log. An
// external verifier holding the root can check the inclusion of any
// message with the proof for its ordinal.
type Checkpoint struct {
	// MessageCount is the number of sequenced messages covered
	MessageCount uint64

	// Root is the merkle root over the message hashes, zero while the
	// log is empty
	Root types.Hash
}

func (v *Vault) messageHashes(count uint64) ([][]byte, error) {
	hashes := make([][]byte, count)

	for i := uint64(0); i < count; i++ {
		msg, ok, err := v.GetMessage(i)
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, fmt.Errorf("message %d missing from the log", i)
		}

		hashes[i] = msg.Hash.Bytes()
	}

	return hashes, nil
}

// BuildCheckpoint commits to every message sequenced so far
func (v *Vault) BuildCheckpoint() (*Checkpoint, error) {
	count := v.MessageNonce()
	if count == 0 {
		return &Checkpoint{}, nil
	}

	hashes, err := v.messageHashes(count)
	if err != nil {
		return nil, err
	}

	tree, err := merkle.NewMerkleTree(hashes)
	if err != nil {
		return nil, err
	}

	return &Checkpoint{
		MessageCount: count,
		Root:         tree.Hash(),
	}, nil
}

// MessageProof generates the inclusion proof of one sequenced message
// against the current checkpoint
func (v *Vault) MessageProof(ordinal uint64) ([]types.Hash, error) {
	count := v.MessageNonce()
	if ordinal >= count {
		return nil, fmt.Errorf("message %d has not been sequenced yet", ordinal)
	}

	hashes, err := v.messageHashes(count)
	if err != nil {
		return nil, err
	}

	tree, err := merkle.NewMerkleTree(hashes)
	if err != nil {
		return nil, err
	}

	return tree.GenerateProof(ordinal), nil
}

// VerifyMessageProof checks an inclusion proof produced by MessageProof
func VerifyMessageProof(ordinal uint64, hash types.Hash, proof []types.Hash, root types.Hash) error {
	return merkle.VerifyProof(ordinal, hash.Bytes(), proof, root)
}
