package vault

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/edge-vault/types"
)

var (
	addrTokenX = types.StringToAddress("0x1000000000000000000000000000000000000001")
	addrTokenY = types.StringToAddress("0x1000000000000000000000000000000000000002")
)

func TestLedger_CreditDebit(t *testing.T) {
	t.Parallel()

	l := newLedger()

	assert.Equal(t, big.NewInt(0), l.balance(1, addrTokenX))

	l.credit(1, addrTokenX, big.NewInt(100))
	l.credit(1, addrTokenX, big.NewInt(50))
	l.credit(2, addrTokenX, big.NewInt(7))

	assert.Equal(t, big.NewInt(150), l.balance(1, addrTokenX))
	assert.Equal(t, big.NewInt(7), l.balance(2, addrTokenX))
	assert.Equal(t, big.NewInt(0), l.balance(1, addrTokenY))

	require.NoError(t, l.debit(1, addrTokenX, big.NewInt(150)))
	assert.Equal(t, big.NewInt(0), l.balance(1, addrTokenX))

	// the pool never goes negative
	err := l.debit(1, addrTokenX, big.NewInt(1))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, big.NewInt(0), l.balance(1, addrTokenX))
}

func TestLedger_FeesAccrue(t *testing.T) {
	t.Parallel()

	l := newLedger()

	assert.Equal(t, big.NewInt(0), l.fees(1))

	l.accrueFee(1, big.NewInt(3))
	l.accrueFee(1, big.NewInt(4))
	l.accrueFee(9, big.NewInt(1))

	assert.Equal(t, big.NewInt(7), l.fees(1))
	assert.Equal(t, big.NewInt(1), l.fees(9))
}

func TestLedger_Whitelists(t *testing.T) {
	t.Parallel()

	l := newLedger()

	assert.False(t, l.isChainAllowed(10))
	assert.False(t, l.isTokenAllowed(addrTokenX))

	l.setChainAllowed(10, true)
	l.setTokenAllowed(addrTokenX, true)

	assert.True(t, l.isChainAllowed(10))
	assert.True(t, l.isTokenAllowed(addrTokenX))

	// flipping is idempotent
	l.setChainAllowed(10, true)
	assert.True(t, l.isChainAllowed(10))

	l.setChainAllowed(10, false)
	l.setTokenAllowed(addrTokenX, false)

	assert.False(t, l.isChainAllowed(10))
	assert.False(t, l.isTokenAllowed(addrTokenX))
}

func TestLedger_NonceAndParams(t *testing.T) {
	t.Parallel()

	l := newLedger()

	assert.Equal(t, uint64(0), l.nonce())

	l.setNonce(5)
	assert.Equal(t, uint64(5), l.nonce())

	p := l.getParams()
	assert.Equal(t, big.NewInt(0), p.minAmount)
	assert.Equal(t, uint64(0), p.feeRate)

	l.setParams(&params{minAmount: big.NewInt(100), feeRate: 1500})

	p = l.getParams()
	assert.Equal(t, big.NewInt(100), p.minAmount)
	assert.Equal(t, uint64(1500), p.feeRate)
}

func TestLedger_SnapshotRollback(t *testing.T) {
	t.Parallel()

	l := newLedger()
	l.credit(1, addrTokenX, big.NewInt(100))
	l.setNonce(3)

	id := l.Snapshot()

	l.credit(1, addrTokenX, big.NewInt(900))
	l.setNonce(4)
	l.setChainAllowed(10, true)

	require.NoError(t, l.debit(1, addrTokenX, big.NewInt(500)))
	assert.Equal(t, big.NewInt(500), l.balance(1, addrTokenX))

	l.RevertToSnapshot(id)

	assert.Equal(t, big.NewInt(100), l.balance(1, addrTokenX))
	assert.Equal(t, uint64(3), l.nonce())
	assert.False(t, l.isChainAllowed(10))
}

func TestLedger_MarshalRoundtrip(t *testing.T) {
	t.Parallel()

	l := newLedger()
	l.setChainID(100)
	l.setRelayer(types.StringToAddress("0xaa"))
	l.setChainAllowed(10, true)
	l.setTokenAllowed(addrTokenX, true)
	l.credit(100, addrTokenX, big.NewInt(12345))
	l.accrueFee(100, big.NewInt(99))
	l.setNonce(42)
	l.setParams(&params{minAmount: big.NewInt(100), feeRate: 10})

	restored := newLedger()
	require.NoError(t, restored.unmarshal(l.marshal()))

	assert.Equal(t, uint64(100), readChainID(restored.txn))
	assert.Equal(t, types.StringToAddress("0xaa"), restored.relayer())
	assert.True(t, restored.isChainAllowed(10))
	assert.False(t, restored.isChainAllowed(11))
	assert.True(t, restored.isTokenAllowed(addrTokenX))
	assert.Equal(t, big.NewInt(12345), restored.balance(100, addrTokenX))
	assert.Equal(t, big.NewInt(99), restored.fees(100))
	assert.Equal(t, uint64(42), restored.nonce())
	assert.Equal(t, big.NewInt(100), restored.getParams().minAmount)
	assert.Equal(t, uint64(10), restored.getParams().feeRate)
}

func TestLedger_UnmarshalInvalid(t *testing.T) {
	t.Parallel()

	l := newLedger()

	assert.Error(t, l.unmarshal([]byte{0x1, 0x2, 0x3}))
}

func TestParams_Roundtrip(t *testing.T) {
	t.Parallel()

	p := &params{minAmount: big.NewInt(1000), feeRate: 2000}

	restored := &params{}
	require.NoError(t, restored.unmarshal(p.marshal()))

	assert.Equal(t, p.minAmount, restored.minAmount)
	assert.Equal(t, p.feeRate, restored.feeRate)
}
