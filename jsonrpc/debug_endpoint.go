package jsonrpc

import (
	"context"
	"time"

	"github.com/0xPolygon/edge-vault/vault"
)

type debugVaultStore interface {
	// GetEvent returns the event stored under the given index
	GetEvent(index uint64) (*vault.Event, bool, error)

	// GetMessage returns the message stored under the given ordinal
	GetMessage(ordinal uint64) (*vault.Message, bool, error)
}

type debugStore interface {
	debugVaultStore
}

// Debug is the debug jsonrpc endpoint
type Debug struct {
	store      debugStore
	throttling *Throttling
}

func NewDebug(store debugStore, requestsPerSecond uint64) *Debug {
	return &Debug{
		store:      store,
		throttling: NewThrottling(requestsPerSecond, time.Second),
	}
}

// GetRawEvent returns the consensus encoding of the event stored under
// the given index (debug_getRawEvent)
func (d *Debug) GetRawEvent(index argUint64) (interface{}, error) {
	return d.throttling.AttemptRequest(
		context.Background(),
		func() (interface{}, error) {
			evnt, ok, err := d.store.GetEvent(uint64(index))
			if err != nil {
				return nil, err
			}

			if !ok {
				return nil, nil
			}

			return argBytes(evnt.MarshalRLP()), nil
		},
	)
}

// GetRawMessage returns the consensus encoding of the message stored under
// the given ordinal (debug_getRawMessage)
func (d *Debug) GetRawMessage(ordinal argUint64) (interface{}, error) {
	return d.throttling.AttemptRequest(
		context.Background(),
		func() (interface{}, error) {
			msg, ok, err := d.store.GetMessage(uint64(ordinal))
			if err != nil {
				return nil, err
			}

			if !ok {
				return nil, nil
			}

			return argBytes(msg.MarshalRLP()), nil
		},
	)
}
