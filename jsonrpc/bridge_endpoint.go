package jsonrpc

import (
	"github.com/0xPolygon/edge-vault/types"
	"github.com/0xPolygon/edge-vault/vault"
)

// bridgeStore provides the checkpoint surface consumed by the bridge endpoint
type bridgeStore interface {
	// BuildCheckpoint commits to every message sequenced so far
	BuildCheckpoint() (*vault.Checkpoint, error)

	// MessageProof generates the inclusion proof of one sequenced message
	MessageProof(ordinal uint64) ([]types.Hash, error)

	// GetMessage returns the message stored under the given ordinal
	GetMessage(ordinal uint64) (*vault.Message, bool, error)
}

// Bridge is the bridge jsonrpc endpoint
type Bridge struct {
	store bridgeStore
}

// GetCheckpoint returns the current commitment over the sequenced message
// log (bridge_getCheckpoint)
func (b *Bridge) GetCheckpoint() (interface{}, error) {
	cp, err := b.store.BuildCheckpoint()
	if err != nil {
		return nil, err
	}

	return &checkpoint{
		MessageCount: argUint64(cp.MessageCount),
		Root:         cp.Root,
	}, nil
}

// GetMessageProof returns a sequenced message with its inclusion proof
// (bridge_getMessageProof). The proof verifies against the returned root
// only; callers observing a different checkpoint root must fetch again.
func (b *Bridge) GetMessageProof(ordinal argUint64) (interface{}, error) {
	msg, ok, err := b.store.GetMessage(uint64(ordinal))
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	cp, err := b.store.BuildCheckpoint()
	if err != nil {
		return nil, err
	}

	proof, err := b.store.MessageProof(uint64(ordinal))
	if err != nil {
		return nil, err
	}

	return &messageProof{
		Message: toMessage(msg),
		Root:    cp.Root,
		Proof:   proof,
	}, nil
}
