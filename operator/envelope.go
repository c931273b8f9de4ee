package operator

import (
	"fmt"

	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/edge-vault/crypto"
	"github.com/0xPolygon/edge-vault/helper/keccak"
	"github.com/0xPolygon/edge-vault/types"
)

// Envelope is one signed privileged operation submitted to the vault
// operator endpoint. Params carries the ABI encoded argument tuple of
// the method. Nonce must grow with every envelope of a signer; the
// endpoint rejects replays of an already processed nonce.
type Envelope struct {
	Method string
	Params []byte
	Nonce  uint64

	// Signature is the 65 byte [R || S || V] secp256k1 signature over
	// the envelope hash
	Signature []byte
}

// Hash is the signing commitment of the envelope, the keccak256 hash
// of rlp(method, params, nonce)
func (e *Envelope) Hash() types.Hash {
	ar := fastrlp.DefaultArenaPool.Get()
	defer fastrlp.DefaultArenaPool.Put(ar)

	vv := ar.NewArray()
	vv.Set(ar.NewCopyBytes([]byte(e.Method)))
	vv.Set(ar.NewCopyBytes(e.Params))
	vv.Set(ar.NewUint(e.Nonce))

	return types.BytesToHash(keccak.Keccak256Rlp(nil, vv))
}

// Sign signs the envelope hash and attaches the signature
func (e *Envelope) Sign(key crypto.Key) error {
	hash := e.Hash()

	sig, err := key.Sign(hash.Bytes())
	if err != nil {
		return fmt.Errorf("failed to sign envelope: %w", err)
	}

	e.Signature = sig

	return nil
}

// RecoverSigner recovers the address that signed the envelope
func (e *Envelope) RecoverSigner() (types.Address, error) {
	hash := e.Hash()

	return crypto.RecoverAddress(hash.Bytes(), e.Signature)
}

// MarshalRLP returns the RLP encoding of the envelope
func (e *Envelope) MarshalRLP() []byte {
	ar := fastrlp.DefaultArenaPool.Get()
	defer fastrlp.DefaultArenaPool.Put(ar)

	return e.MarshalRLPWith(ar).MarshalTo(nil)
}

// MarshalRLPWith marshals the envelope into an RLP list with a specific arena
func (e *Envelope) MarshalRLPWith(a *fastrlp.Arena) *fastrlp.Value {
	vv := a.NewArray()
	vv.Set(a.NewCopyBytes([]byte(e.Method)))
	vv.Set(a.NewCopyBytes(e.Params))
	vv.Set(a.NewUint(e.Nonce))
	vv.Set(a.NewCopyBytes(e.Signature))

	return vv
}

// UnmarshalRLP decodes an envelope from its RLP encoding
func (e *Envelope) UnmarshalRLP(input []byte) error {
	pr := fastrlp.DefaultParserPool.Get()
	defer fastrlp.DefaultParserPool.Put(pr)

	v, err := pr.Parse(input)
	if err != nil {
		return err
	}

	return e.UnmarshalRLPFrom(pr, v)
}

// UnmarshalRLPFrom unmarshals an envelope from a parsed RLP value
func (e *Envelope) UnmarshalRLPFrom(p *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) != 4 {
		return fmt.Errorf("incorrect number of elements to decode envelope, expected 4 but found %d", len(elems))
	}

	method, err := elems[0].GetBytes(nil)
	if err != nil {
		return err
	}

	e.Method = string(method)

	if e.Params, err = elems[1].GetBytes(e.Params[:0]); err != nil {
		return err
	}

	if e.Nonce, err = elems[2].GetUint64(); err != nil {
		return err
	}

	if e.Signature, err = elems[3].GetBytes(e.Signature[:0]); err != nil {
		return err
	}

	return nil
}
