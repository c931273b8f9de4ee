package crypto

import (
	"crypto/ecdsa"

	"github.com/0xPolygon/edge-vault/types"
)

// Key is the signing identity used to authorize vault envelopes
type Key interface {
	Address() types.Address
	Sign(hash []byte) ([]byte, error)
}

var _ Key = (*ECDSAKey)(nil)

// ECDSAKey is an in-memory secp256k1 signer with the derived address
// cached at construction time
type ECDSAKey struct {
	priv *ecdsa.PrivateKey
	addr types.Address
}

// NewECDSAKey wraps an existing private key
func NewECDSAKey(priv *ecdsa.PrivateKey) *ECDSAKey {
	return &ECDSAKey{
		priv: priv,
		addr: PubKeyToAddress(&priv.PublicKey),
	}
}

// GenerateECDSAKey creates a fresh secp256k1 key pair
func GenerateECDSAKey() (*ECDSAKey, error) {
	priv, err := GenerateECDSAPrivateKey()
	if err != nil {
		return nil, err
	}

	return NewECDSAKey(priv), nil
}

// NewECDSAKeyFromRawPrivECDSA parses the 32-byte big-endian private key material
func NewECDSAKeyFromRawPrivECDSA(rawPrivKey []byte) (*ECDSAKey, error) {
	priv, err := ParseECDSAPrivateKey(rawPrivKey)
	if err != nil {
		return nil, err
	}

	return NewECDSAKey(priv), nil
}

// Sign signs the provided hash with the wrapped private key
func (k *ECDSAKey) Sign(hash []byte) ([]byte, error) {
	return Sign(k.priv, hash)
}

// Address returns the address derived from the public key
func (k *ECDSAKey) Address() types.Address {
	return k.addr
}

// MarshalPrivateKey returns the 32-byte big-endian form of the private key
func (k *ECDSAKey) MarshalPrivateKey() ([]byte, error) {
	return MarshalECDSAPrivateKey(k.priv)
}

func (k *ECDSAKey) String() string {
	return k.addr.String()
}
