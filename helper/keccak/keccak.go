package keccak

import (
	"hash"

	"github.com/umbracle/fastrlp"
	"golang.org/x/crypto/sha3"
)

// Keccak is the sha256 keccak hash
type Keccak struct {
	buf  []byte // buffer to store intermediate rlp marshal values
	tmp  []byte
	hash hash.Hash
}

// WriteRlp writes an RLP value
func (k *Keccak) WriteRlp(dst []byte, v *fastrlp.Value) []byte {
	k.buf = v.MarshalTo(k.buf[:0])
	k.Write(k.buf) //nolint:errcheck

	return k.Sum(dst)
}

// Write implements the hash interface
func (k *Keccak) Write(b []byte) (int, error) {
	return k.hash.Write(b)
}

// Reset implements the hash interface
func (k *Keccak) Reset() {
	k.buf = k.buf[:0]
	k.hash.Reset()
}

// Sum implements the hash interface
func (k *Keccak) Sum(dst []byte) []byte {
	k.tmp = k.hash.Sum(k.tmp[:0])
	dst = append(dst, k.tmp...)

	return dst
}

// NewKeccak256 returns a new keccak 256
func NewKeccak256() *Keccak {
	return &Keccak{
		hash: sha3.NewLegacyKeccak256(),
	}
}
