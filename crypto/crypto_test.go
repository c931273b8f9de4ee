package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/edge-vault/helper/hex"
	"github.com/0xPolygon/edge-vault/secrets"
	"github.com/0xPolygon/edge-vault/types"
)

func TestKeyEncoding(t *testing.T) {
	t.Parallel()

	for i := 0; i < 10; i++ {
		priv, err := GenerateECDSAPrivateKey()
		require.NoError(t, err)

		// marshal private key
		buf, err := MarshalECDSAPrivateKey(priv)
		require.NoError(t, err)

		priv0, err := ParseECDSAPrivateKey(buf)
		require.NoError(t, err)

		assert.Equal(t, priv.D, priv0.D)
		assert.Equal(t, PubKeyToAddress(&priv.PublicKey), PubKeyToAddress(&priv0.PublicKey))
	}
}

func TestKnownKeyAddress(t *testing.T) {
	t.Parallel()

	// the signing example from EIP-155
	priv, err := ParseECDSAPrivateKey(
		hex.MustDecodeHex("0x4646464646464646464646464646464646464646464646464646464646464646"),
	)
	require.NoError(t, err)

	assert.Equal(t,
		types.StringToAddress("0x9d8a62f656a8d1615c1294fd71e9cfb3e4855a4f"),
		PubKeyToAddress(&priv.PublicKey),
	)
}

func TestSignRecover(t *testing.T) {
	t.Parallel()

	priv, err := GenerateECDSAPrivateKey()
	require.NoError(t, err)

	signer := PubKeyToAddress(&priv.PublicKey)
	hash := Keccak256Hash([]byte("sequenced message"))

	sig, err := Sign(priv, hash.Bytes())
	require.NoError(t, err)
	require.Len(t, sig, ECDSASignatureLength)

	recovered, err := RecoverAddress(hash.Bytes(), sig)
	require.NoError(t, err)

	assert.Equal(t, signer, recovered)
}

func TestRecoverInvalidInputs(t *testing.T) {
	t.Parallel()

	priv, err := GenerateECDSAPrivateKey()
	require.NoError(t, err)

	hash := Keccak256Hash([]byte("payload"))

	sig, err := Sign(priv, hash.Bytes())
	require.NoError(t, err)

	cases := []struct {
		name string
		hash []byte
		sig  []byte
	}{
		{
			name: "short hash",
			hash: hash.Bytes()[:16],
			sig:  sig,
		},
		{
			name: "short signature",
			hash: hash.Bytes(),
			sig:  sig[:32],
		},
		{
			name: "empty signature",
			hash: hash.Bytes(),
			sig:  nil,
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			_, err := RecoverPubKey(c.sig, c.hash)
			assert.Error(t, err)
		})
	}
}

func TestSignRejectsShortHash(t *testing.T) {
	t.Parallel()

	priv, err := GenerateECDSAPrivateKey()
	require.NoError(t, err)

	_, err = Sign(priv, []byte("short"))
	assert.Error(t, err)
}

func TestKeccak256EmptyInput(t *testing.T) {
	t.Parallel()

	// well known keccak-256 of the empty string
	assert.Equal(t,
		"0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		Keccak256Hash().String(),
	)
}

func TestBytesToECDSAPrivateKey(t *testing.T) {
	t.Parallel()

	priv, encoded, err := GenerateAndEncodeECDSAPrivateKey()
	require.NoError(t, err)

	parsed, err := BytesToECDSAPrivateKey(encoded)
	require.NoError(t, err)

	assert.Equal(t, priv.D, parsed.D)

	// malformed inputs
	_, err = BytesToECDSAPrivateKey([]byte("not-hex"))
	assert.Error(t, err)

	_, err = BytesToECDSAPrivateKey([]byte("abcd"))
	assert.Error(t, err)
}

func TestReadRelayerKey(t *testing.T) {
	t.Parallel()

	manager := secrets.NewSecretsManagerMock()

	_, err := ReadRelayerKey(manager)
	assert.Error(t, err)

	priv, encoded, err := GenerateAndEncodeECDSAPrivateKey()
	require.NoError(t, err)
	require.NoError(t, manager.SetSecret(secrets.RelayerKey, encoded))

	restored, err := ReadRelayerKey(manager)
	require.NoError(t, err)
	assert.Equal(t, priv.D, restored.D)
}

func TestECDSAKeyWrapper(t *testing.T) {
	t.Parallel()

	key, err := GenerateECDSAKey()
	require.NoError(t, err)

	require.NotEqual(t, types.ZeroAddress, key.Address())

	hash := Keccak256Hash([]byte("release order"))

	sig, err := key.Sign(hash.Bytes())
	require.NoError(t, err)

	recovered, err := RecoverAddress(hash.Bytes(), sig)
	require.NoError(t, err)

	assert.Equal(t, key.Address(), recovered)

	raw, err := key.MarshalPrivateKey()
	require.NoError(t, err)

	restored, err := NewECDSAKeyFromRawPrivECDSA(raw)
	require.NoError(t, err)

	assert.Equal(t, key.Address(), restored.Address())
}
