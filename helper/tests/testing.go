package tests

import (
	"crypto/ecdsa"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/0xPolygon/edge-vault/crypto"
	"github.com/0xPolygon/edge-vault/types"
)

// GenerateKeyAndAddr generates a private key with the address derived from it
func GenerateKeyAndAddr(t *testing.T) (*ecdsa.PrivateKey, types.Address) {
	t.Helper()

	key, err := crypto.GenerateECDSAPrivateKey()
	assert.NoError(t, err)

	addr := crypto.PubKeyToAddress(&key.PublicKey)

	return key, addr
}

// GetFreePort asks the kernel for a free open port that is ready to use
func GetFreePort() (port int, err error) {
	var addr *net.TCPAddr

	if addr, err = net.ResolveTCPAddr("tcp", "localhost:0"); err == nil {
		var l *net.TCPListener

		if l, err = net.ListenTCP("tcp", addr); err == nil {
			defer func(l *net.TCPListener) {
				_ = l.Close()
			}(l)

			return l.Addr().(*net.TCPAddr).Port, nil
		}
	}

	return
}
