package vault

import (
	"fmt"
	"math/big"

	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/abi"
	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/edge-vault/helper/keccak"
	"github.com/0xPolygon/edge-vault/types"
)

// onValueReceivedMethod is the fixed receiving entry point invoked on
// the target of every forwarded message
var onValueReceivedMethod = abi.MustNewMethod("function onValueReceived(address from, address to, uint256 amount)")

// Message is a sequenced cross-chain message. Nonce is the ordinal the
// message was sequenced under and doubles as its storage key. Target
// and GasLimit are only set for messages that carried a forwarded call.
type Message struct {
	Nonce  uint64
	Hash   types.Hash
	From   types.Address
	To     types.Address
	Amount *big.Int

	Target   types.Address
	GasLimit uint64

	// Forwarded marks messages whose sequencing dispatched a call
	Forwarded bool
}

// receivedHash is the commitment of a plain sequenced message, the
// keccak256 hash of rlp(from, to, amount, nonce)
func receivedHash(from, to types.Address, amount *big.Int, nonce uint64) types.Hash {
	ar := fastrlp.DefaultArenaPool.Get()
	defer fastrlp.DefaultArenaPool.Put(ar)

	vv := ar.NewArray()
	vv.Set(ar.NewCopyBytes(from[:]))
	vv.Set(ar.NewCopyBytes(to[:]))
	vv.Set(ar.NewBigInt(amount))
	vv.Set(ar.NewUint(nonce))

	return types.BytesToHash(keccak.Keccak256Rlp(nil, vv))
}

// allocatedHash is the commitment of a forwarded message, the keccak256
// hash of rlp(from, to, amount, gasLimit, nonce)
func allocatedHash(from, to types.Address, amount *big.Int, gasLimit, nonce uint64) types.Hash {
	ar := fastrlp.DefaultArenaPool.Get()
	defer fastrlp.DefaultArenaPool.Put(ar)

	vv := ar.NewArray()
	vv.Set(ar.NewCopyBytes(from[:]))
	vv.Set(ar.NewCopyBytes(to[:]))
	vv.Set(ar.NewBigInt(amount))
	vv.Set(ar.NewUint(gasLimit))
	vv.Set(ar.NewUint(nonce))

	return types.BytesToHash(keccak.Keccak256Rlp(nil, vv))
}

// forwardInput encodes the payload delivered to a forwarded call
// target: the onValueReceived selector followed by the ABI encoded
// (from, to, amount) arguments
func forwardInput(from, to types.Address, amount *big.Int) ([]byte, error) {
	input, err := onValueReceivedMethod.Encode(map[string]interface{}{
		"from":   ethgo.Address(from),
		"to":     ethgo.Address(to),
		"amount": amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode forwarded call input: %w", err)
	}

	return input, nil
}

// MarshalRLP returns the RLP encoding of the message
func (m *Message) MarshalRLP() []byte {
	ar := fastrlp.DefaultArenaPool.Get()
	defer fastrlp.DefaultArenaPool.Put(ar)

	return m.MarshalRLPWith(ar).MarshalTo(nil)
}

// MarshalRLPWith marshals the message into an RLP list with a specific arena
func (m *Message) MarshalRLPWith(a *fastrlp.Arena) *fastrlp.Value {
	amount := m.Amount
	if amount == nil {
		amount = new(big.Int)
	}

	forwarded := uint64(0)
	if m.Forwarded {
		forwarded = 1
	}

	vv := a.NewArray()
	vv.Set(a.NewUint(m.Nonce))
	vv.Set(a.NewCopyBytes(m.Hash[:]))
	vv.Set(a.NewCopyBytes(m.From[:]))
	vv.Set(a.NewCopyBytes(m.To[:]))
	vv.Set(a.NewBigInt(amount))
	vv.Set(a.NewCopyBytes(m.Target[:]))
	vv.Set(a.NewUint(m.GasLimit))
	vv.Set(a.NewUint(forwarded))

	return vv
}

// UnmarshalRLP decodes a message from its RLP encoding
func (m *Message) UnmarshalRLP(input []byte) error {
	pr := fastrlp.DefaultParserPool.Get()
	defer fastrlp.DefaultParserPool.Put(pr)

	v, err := pr.Parse(input)
	if err != nil {
		return err
	}

	return m.UnmarshalRLPFrom(pr, v)
}

// UnmarshalRLPFrom unmarshals a message from a parsed RLP value
func (m *Message) UnmarshalRLPFrom(p *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) != 8 {
		return fmt.Errorf("incorrect number of elements to decode message, expected 8 but found %d", len(elems))
	}

	if m.Nonce, err = elems[0].GetUint64(); err != nil {
		return err
	}

	if err = elems[1].GetHash(m.Hash[:]); err != nil {
		return err
	}

	if err = elems[2].GetAddr(m.From[:]); err != nil {
		return err
	}

	if err = elems[3].GetAddr(m.To[:]); err != nil {
		return err
	}

	m.Amount = new(big.Int)
	if err = elems[4].GetBigInt(m.Amount); err != nil {
		return err
	}

	if err = elems[5].GetAddr(m.Target[:]); err != nil {
		return err
	}

	if m.GasLimit, err = elems[6].GetUint64(); err != nil {
		return err
	}

	forwarded, err := elems[7].GetUint64()
	if err != nil {
		return err
	}

	m.Forwarded = forwarded == 1

	return nil
}
