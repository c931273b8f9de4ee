package vault

import (
	"fmt"
	"math/big"

	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/edge-vault/types"
)

// EventType tags the records appended to the vault event log
type EventType uint64

const (
	// DepositReceived is an inbound transfer locked into custody
	DepositReceived EventType = iota

	// ValueReleased is an outbound payout authorized by the relayer
	ValueReleased

	// TokenSwept is an administrative direct payout
	TokenSwept

	// MessageReceived is a sequenced inbound message
	MessageReceived

	// MessageAllocated is a sequenced message with a forwarded call
	MessageAllocated

	// ConfigChanged is a configuration mutation
	ConfigChanged
)

func (t EventType) String() string {
	switch t {
	case DepositReceived:
		return "deposit-received"
	case ValueReleased:
		return "value-released"
	case TokenSwept:
		return "token-swept"
	case MessageReceived:
		return "message-received"
	case MessageAllocated:
		return "message-allocated"
	case ConfigChanged:
		return "config-changed"
	}

	return "unknown"
}

// Event is one record of the append-only vault event log. Every
// state-changing operation emits exactly one event. Fields that do not
// apply to the event type keep their zero value; Amount and Fee are
// never nil on an emitted event. Events are immutable once published.
type Event struct {
	Index uint64
	Type  EventType

	SourceChainID uint64
	DestChainID   uint64

	From    types.Address
	To      types.Address
	TokenID types.Address

	// Target is the callee of a forwarded message
	Target types.Address

	Amount *big.Int
	Fee    *big.Int

	GasLimit uint64
	Nonce    uint64
	Hash     types.Hash

	// Op and Args describe configuration changes. Args holds the ABI
	// encoding of the new values
	Op   string
	Args []byte
}

func (e *Event) normalize() *Event {
	if e.Amount == nil {
		e.Amount = new(big.Int)
	}

	if e.Fee == nil {
		e.Fee = new(big.Int)
	}

	return e
}

// MarshalRLP returns the RLP encoding of the event
func (e *Event) MarshalRLP() []byte {
	ar := fastrlp.DefaultArenaPool.Get()
	defer fastrlp.DefaultArenaPool.Put(ar)

	return e.MarshalRLPWith(ar).MarshalTo(nil)
}

// MarshalRLPWith marshals the event into an RLP list with a specific arena
func (e *Event) MarshalRLPWith(a *fastrlp.Arena) *fastrlp.Value {
	e.normalize()

	vv := a.NewArray()
	vv.Set(a.NewUint(e.Index))
	vv.Set(a.NewUint(uint64(e.Type)))
	vv.Set(a.NewUint(e.SourceChainID))
	vv.Set(a.NewUint(e.DestChainID))
	vv.Set(a.NewCopyBytes(e.From[:]))
	vv.Set(a.NewCopyBytes(e.To[:]))
	vv.Set(a.NewCopyBytes(e.TokenID[:]))
	vv.Set(a.NewCopyBytes(e.Target[:]))
	vv.Set(a.NewBigInt(e.Amount))
	vv.Set(a.NewBigInt(e.Fee))
	vv.Set(a.NewUint(e.GasLimit))
	vv.Set(a.NewUint(e.Nonce))
	vv.Set(a.NewCopyBytes(e.Hash[:]))
	vv.Set(a.NewCopyBytes([]byte(e.Op)))
	vv.Set(a.NewCopyBytes(e.Args))

	return vv
}

// UnmarshalRLP decodes an event from its RLP encoding
func (e *Event) UnmarshalRLP(input []byte) error {
	pr := fastrlp.DefaultParserPool.Get()
	defer fastrlp.DefaultParserPool.Put(pr)

	v, err := pr.Parse(input)
	if err != nil {
		return err
	}

	return e.UnmarshalRLPFrom(pr, v)
}

// UnmarshalRLPFrom unmarshals an event from a parsed RLP value
func (e *Event) UnmarshalRLPFrom(p *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) != 15 {
		return fmt.Errorf("incorrect number of elements to decode event, expected 15 but found %d", len(elems))
	}

	if e.Index, err = elems[0].GetUint64(); err != nil {
		return err
	}

	typ, err := elems[1].GetUint64()
	if err != nil {
		return err
	}

	e.Type = EventType(typ)

	if e.SourceChainID, err = elems[2].GetUint64(); err != nil {
		return err
	}

	if e.DestChainID, err = elems[3].GetUint64(); err != nil {
		return err
	}

	if err = elems[4].GetAddr(e.From[:]); err != nil {
		return err
	}

	if err = elems[5].GetAddr(e.To[:]); err != nil {
		return err
	}

	if err = elems[6].GetAddr(e.TokenID[:]); err != nil {
		return err
	}

	if err = elems[7].GetAddr(e.Target[:]); err != nil {
		return err
	}

	e.Amount = new(big.Int)
	if err = elems[8].GetBigInt(e.Amount); err != nil {
		return err
	}

	e.Fee = new(big.Int)
	if err = elems[9].GetBigInt(e.Fee); err != nil {
		return err
	}

	if e.GasLimit, err = elems[10].GetUint64(); err != nil {
		return err
	}

	if e.Nonce, err = elems[11].GetUint64(); err != nil {
		return err
	}

	if err = elems[12].GetHash(e.Hash[:]); err != nil {
		return err
	}

	op, err := elems[13].GetBytes(nil)
	if err != nil {
		return err
	}

	e.Op = string(op)

	if e.Args, err = elems[14].GetBytes(e.Args[:0]); err != nil {
		return err
	}

	return nil
}
