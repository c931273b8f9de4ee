package vault

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/edge-vault/chain"
	"github.com/0xPolygon/edge-vault/types"
	"github.com/0xPolygon/edge-vault/vault/storage/memory"
)

const (
	localChainID  = uint64(100)
	remoteChainID = uint64(10)
)

var (
	testRelayer = types.StringToAddress("0xfe")
	stranger    = types.StringToAddress("0xbad")
	depositor   = types.StringToAddress("0xd1")
	receiver    = types.StringToAddress("0xd2")
)

type mockCustodian struct {
	lock sync.Mutex

	held map[types.Address]*big.Int

	pullErr error
	payErr  error

	pulls    int
	payments int
}

func newMockCustodian() *mockCustodian {
	return &mockCustodian{held: map[types.Address]*big.Int{}}
}

func (m *mockCustodian) fund(token types.Address, amount int64) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.balanceOf(token).Add(m.balanceOf(token), big.NewInt(amount))
}

func (m *mockCustodian) balanceOf(token types.Address) *big.Int {
	balance, ok := m.held[token]
	if !ok {
		balance = new(big.Int)
		m.held[token] = balance
	}

	return balance
}

func (m *mockCustodian) Pull(ctx context.Context, token, from types.Address, amount *big.Int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.pullErr != nil {
		return m.pullErr
	}

	m.balanceOf(token).Add(m.balanceOf(token), amount)
	m.pulls++

	return nil
}

func (m *mockCustodian) Pay(ctx context.Context, token, to types.Address, amount *big.Int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.payErr != nil {
		return m.payErr
	}

	m.balanceOf(token).Sub(m.balanceOf(token), amount)
	m.payments++

	return nil
}

func (m *mockCustodian) Held(token types.Address) (*big.Int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return new(big.Int).Set(m.balanceOf(token)), nil
}

type forwardedCall struct {
	target   types.Address
	value    *big.Int
	gasLimit uint64
	input    []byte
}

type mockForwarder struct {
	err   error
	calls []forwardedCall
}

func (m *mockForwarder) Forward(
	ctx context.Context,
	target types.Address,
	value *big.Int,
	gasLimit uint64,
	input []byte,
) error {
	if m.err != nil {
		return m.err
	}

	m.calls = append(m.calls, forwardedCall{target: target, value: value, gasLimit: gasLimit, input: input})

	return nil
}

func newTestChain() *chain.Chain {
	return &chain.Chain{
		Name:   "test",
		Params: &chain.Params{ChainID: localChainID},
		Genesis: &chain.Genesis{
			Relayer:        testRelayer,
			ChainWhitelist: []uint64{remoteChainID},
			TokenWhitelist: []types.Address{addrTokenX},
			MinAmount:      big.NewInt(100),
			FeeRate:        10,
		},
	}
}

func newTestVaultWithChain(t *testing.T, chainConfig *chain.Chain) (*Vault, *mockCustodian, *mockForwarder) {
	t.Helper()

	db, err := memory.NewMemoryStorage(hclog.NewNullLogger())
	require.NoError(t, err)

	custodian := newMockCustodian()
	forwarder := &mockForwarder{}

	v, err := NewVault(hclog.NewNullLogger(), db, chainConfig, custodian, forwarder)
	require.NoError(t, err)

	return v, custodian, forwarder
}

func newTestVault(t *testing.T) (*Vault, *mockCustodian, *mockForwarder) {
	t.Helper()

	return newTestVaultWithChain(t, newTestChain())
}

func TestVault_GenesisInit(t *testing.T) {
	t.Parallel()

	chainConfig := newTestChain()
	chainConfig.Genesis.Premine = []*chain.PremineBalance{
		{ChainID: localChainID, TokenID: addrTokenX, Balance: big.NewInt(150)},
	}

	v, _, _ := newTestVaultWithChain(t, chainConfig)

	assert.Equal(t, localChainID, v.ChainID())
	assert.Equal(t, testRelayer, v.Relayer())
	assert.True(t, v.IsChainAllowed(remoteChainID))
	assert.False(t, v.IsChainAllowed(11))
	assert.True(t, v.IsTokenAllowed(addrTokenX))
	assert.False(t, v.IsTokenAllowed(addrTokenY))
	assert.Equal(t, big.NewInt(100), v.MinTransferAmount())
	assert.Equal(t, uint64(10), v.FeeRate())
	assert.Equal(t, big.NewInt(150), v.Balance(localChainID, addrTokenX))
	assert.Equal(t, uint64(0), v.MessageNonce())
	assert.Equal(t, uint64(0), v.GetEventCount())
}

func TestVault_ReceiveValue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		source  uint64
		dest    uint64
		tokenID types.Address
		amount  *big.Int
		err     error
	}{
		{
			name:    "source must be the local chain",
			source:  remoteChainID,
			dest:    remoteChainID,
			tokenID: addrTokenX,
			amount:  big.NewInt(150),
			err:     ErrSourceChainMismatch,
		},
		{
			name:    "destination must be whitelisted",
			source:  localChainID,
			dest:    11,
			tokenID: addrTokenX,
			amount:  big.NewInt(150),
			err:     ErrChainNotAllowed,
		},
		{
			name:    "token must be whitelisted",
			source:  localChainID,
			dest:    remoteChainID,
			tokenID: addrTokenY,
			amount:  big.NewInt(150),
			err:     ErrTokenNotAllowed,
		},
		{
			name:    "amount below the minimum",
			source:  localChainID,
			dest:    remoteChainID,
			tokenID: addrTokenX,
			amount:  big.NewInt(50),
			err:     ErrAmountTooLow,
		},
		{
			name:    "amount must be positive",
			source:  localChainID,
			dest:    remoteChainID,
			tokenID: addrTokenX,
			amount:  big.NewInt(0),
			err:     ErrInvalidAmount,
		},
		{
			name:    "native deposits skip the token whitelist",
			source:  localChainID,
			dest:    remoteChainID,
			tokenID: types.ZeroAddress,
			amount:  big.NewInt(150),
		},
		{
			name:    "valid token deposit",
			source:  localChainID,
			dest:    remoteChainID,
			tokenID: addrTokenX,
			amount:  big.NewInt(150),
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			v, custodian, _ := newTestVault(t)

			evnt, err := v.ReceiveValue(context.Background(), depositor, c.source, c.dest, receiver, c.tokenID, c.amount)

			if c.err != nil {
				require.ErrorIs(t, err, c.err)
				assert.Nil(t, evnt)
				assert.Equal(t, big.NewInt(0), v.Balance(localChainID, c.tokenID))
				assert.Equal(t, uint64(0), v.GetEventCount())
				assert.Zero(t, custodian.pulls)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, evnt)
			assert.Equal(t, uint64(0), evnt.Index)
			assert.Equal(t, c.amount, v.Balance(localChainID, c.tokenID))
			assert.Equal(t, 1, custodian.pulls)
			assert.Equal(t, uint64(1), v.GetEventCount())
		})
	}
}

func TestVault_DepositScenario(t *testing.T) {
	t.Parallel()

	v, custodian, _ := newTestVault(t)

	sub := v.SubscribeEvents()
	defer sub.Close()

	// below the minimum of 100
	_, err := v.ReceiveValue(context.Background(), depositor, localChainID, remoteChainID, receiver, addrTokenX, big.NewInt(50))
	require.ErrorIs(t, err, ErrAmountTooLow)

	// the full amount lands in the pool, the fee accrues on top of it
	deposited, err := v.ReceiveValue(context.Background(), depositor, localChainID, remoteChainID, receiver, addrTokenX, big.NewInt(150))
	require.NoError(t, err)
	require.NotNil(t, deposited)
	assert.Equal(t, uint64(0), deposited.Index)

	assert.Equal(t, big.NewInt(150), v.Balance(localChainID, addrTokenX))
	assert.Equal(t, big.NewInt(1), v.Fees(localChainID)) // 150 * 10 / 1000
	assert.Equal(t, big.NewInt(150), custodian.balanceOf(addrTokenX))

	evnt := sub.GetEvent()
	require.NotNil(t, evnt)
	assert.Equal(t, DepositReceived, evnt.Type)
	assert.Equal(t, localChainID, evnt.SourceChainID)
	assert.Equal(t, remoteChainID, evnt.DestChainID)
	assert.Equal(t, addrTokenX, evnt.TokenID)
	assert.Equal(t, big.NewInt(150), evnt.Amount)
	assert.Equal(t, big.NewInt(1), evnt.Fee)
}

func TestVault_DepositsAreNotDeduplicated(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestVault(t)

	for i := 0; i < 2; i++ {
		evnt, err := v.ReceiveValue(context.Background(), depositor, localChainID, remoteChainID, receiver, addrTokenX, big.NewInt(150))
		require.NoError(t, err)
		require.Equal(t, uint64(i), evnt.Index)
	}

	assert.Equal(t, big.NewInt(300), v.Balance(localChainID, addrTokenX))
	assert.Equal(t, big.NewInt(2), v.Fees(localChainID))
	assert.Equal(t, uint64(2), v.GetEventCount())
}

func TestVault_DepositPullFailure(t *testing.T) {
	t.Parallel()

	v, custodian, _ := newTestVault(t)
	custodian.pullErr = errors.New("transfer reverted")

	_, err := v.ReceiveValue(context.Background(), depositor, localChainID, remoteChainID, receiver, addrTokenX, big.NewInt(150))
	require.Error(t, err)

	// a failed pull leaves no trace in the ledger
	assert.Equal(t, big.NewInt(0), v.Balance(localChainID, addrTokenX))
	assert.Equal(t, big.NewInt(0), v.Fees(localChainID))
	assert.Equal(t, uint64(0), v.GetEventCount())
}

func TestVault_ReleaseValue(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (*Vault, *mockCustodian) {
		t.Helper()

		chainConfig := newTestChain()
		chainConfig.Genesis.Premine = []*chain.PremineBalance{
			{ChainID: localChainID, TokenID: addrTokenX, Balance: big.NewInt(150)},
		}

		v, custodian, _ := newTestVaultWithChain(t, chainConfig)
		custodian.fund(addrTokenX, 10000)

		return v, custodian
	}

	t.Run("requires the relayer", func(t *testing.T) {
		t.Parallel()

		v, _ := setup(t)

		err := v.ReleaseValue(context.Background(), stranger, remoteChainID, localChainID, receiver, addrTokenX, big.NewInt(100))
		require.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, big.NewInt(150), v.Balance(localChainID, addrTokenX))
	})

	t.Run("destination must be the local chain", func(t *testing.T) {
		t.Parallel()

		v, _ := setup(t)

		err := v.ReleaseValue(context.Background(), testRelayer, remoteChainID, remoteChainID, receiver, addrTokenX, big.NewInt(100))
		require.ErrorIs(t, err, ErrDestChainMismatch)
	})

	t.Run("source must be whitelisted", func(t *testing.T) {
		t.Parallel()

		v, _ := setup(t)

		err := v.ReleaseValue(context.Background(), testRelayer, 11, localChainID, receiver, addrTokenX, big.NewInt(100))
		require.ErrorIs(t, err, ErrChainNotAllowed)
	})

	t.Run("amount below the minimum", func(t *testing.T) {
		t.Parallel()

		v, _ := setup(t)

		err := v.ReleaseValue(context.Background(), testRelayer, remoteChainID, localChainID, receiver, addrTokenX, big.NewInt(50))
		require.ErrorIs(t, err, ErrAmountTooLow)
	})

	t.Run("over balance release fails and changes nothing", func(t *testing.T) {
		t.Parallel()

		v, custodian := setup(t)

		err := v.ReleaseValue(context.Background(), testRelayer, remoteChainID, localChainID, receiver, addrTokenX, big.NewInt(200))
		require.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Equal(t, big.NewInt(150), v.Balance(localChainID, addrTokenX))
		assert.Zero(t, custodian.payments)
	})

	t.Run("ledger balance is not enough without held balance", func(t *testing.T) {
		t.Parallel()

		chainConfig := newTestChain()
		chainConfig.Genesis.Premine = []*chain.PremineBalance{
			{ChainID: localChainID, TokenID: addrTokenX, Balance: big.NewInt(500)},
		}

		v, custodian, _ := newTestVaultWithChain(t, chainConfig)
		custodian.fund(addrTokenX, 50)

		err := v.ReleaseValue(context.Background(), testRelayer, remoteChainID, localChainID, receiver, addrTokenX, big.NewInt(100))
		require.ErrorIs(t, err, ErrInsufficientHoldings)
		assert.Equal(t, big.NewInt(500), v.Balance(localChainID, addrTokenX))
	})

	t.Run("payout failure rolls the debit back", func(t *testing.T) {
		t.Parallel()

		v, custodian := setup(t)
		custodian.payErr = errors.New("transfer reverted")

		err := v.ReleaseValue(context.Background(), testRelayer, remoteChainID, localChainID, receiver, addrTokenX, big.NewInt(100))
		require.Error(t, err)
		assert.Equal(t, big.NewInt(150), v.Balance(localChainID, addrTokenX))
		assert.Equal(t, uint64(0), v.GetEventCount())
	})

	t.Run("valid release", func(t *testing.T) {
		t.Parallel()

		v, custodian := setup(t)

		sub := v.SubscribeEvents()
		defer sub.Close()

		err := v.ReleaseValue(context.Background(), testRelayer, remoteChainID, localChainID, receiver, addrTokenX, big.NewInt(100))
		require.NoError(t, err)

		assert.Equal(t, big.NewInt(50), v.Balance(localChainID, addrTokenX))
		assert.Equal(t, 1, custodian.payments)

		evnt := sub.GetEvent()
		require.NotNil(t, evnt)
		assert.Equal(t, ValueReleased, evnt.Type)
		assert.Equal(t, receiver, evnt.To)
		assert.Equal(t, big.NewInt(100), evnt.Amount)
	})
}

func TestVault_SendTokenToUser(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (*Vault, *mockCustodian) {
		t.Helper()

		chainConfig := newTestChain()
		chainConfig.Genesis.Premine = []*chain.PremineBalance{
			{ChainID: localChainID, TokenID: addrTokenX, Balance: big.NewInt(150)},
		}

		v, custodian, _ := newTestVaultWithChain(t, chainConfig)
		custodian.fund(addrTokenX, 10000)

		return v, custodian
	}

	t.Run("requires the relayer", func(t *testing.T) {
		t.Parallel()

		v, _ := setup(t)

		err := v.SendTokenToUser(context.Background(), stranger, addrTokenX, receiver, big.NewInt(10))
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("token must be whitelisted", func(t *testing.T) {
		t.Parallel()

		v, _ := setup(t)

		err := v.SendTokenToUser(context.Background(), testRelayer, addrTokenY, receiver, big.NewInt(10))
		require.ErrorIs(t, err, ErrTokenNotAllowed)
	})

	t.Run("ledger balance is enforced", func(t *testing.T) {
		t.Parallel()

		v, _ := setup(t)

		err := v.SendTokenToUser(context.Background(), testRelayer, addrTokenX, receiver, big.NewInt(200))
		require.ErrorIs(t, err, ErrInsufficientFunds)
	})

	t.Run("held balance is enforced", func(t *testing.T) {
		t.Parallel()

		chainConfig := newTestChain()
		chainConfig.Genesis.Premine = []*chain.PremineBalance{
			{ChainID: localChainID, TokenID: addrTokenX, Balance: big.NewInt(150)},
		}

		v, custodian, _ := newTestVaultWithChain(t, chainConfig)
		custodian.fund(addrTokenX, 5)

		err := v.SendTokenToUser(context.Background(), testRelayer, addrTokenX, receiver, big.NewInt(10))
		require.ErrorIs(t, err, ErrInsufficientHoldings)
	})

	t.Run("sweeps below the minimum transfer amount", func(t *testing.T) {
		t.Parallel()

		// the sweep path skips the chain whitelists and the minimum,
		// debiting the full local chain and token key
		v, custodian := setup(t)

		err := v.SendTokenToUser(context.Background(), testRelayer, addrTokenX, receiver, big.NewInt(50))
		require.NoError(t, err)

		assert.Equal(t, big.NewInt(100), v.Balance(localChainID, addrTokenX))
		assert.Equal(t, 1, custodian.payments)
	})
}

func TestVault_SequenceReceived(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestVault(t)

	_, err := v.SequenceReceived(context.Background(), stranger, depositor, receiver, big.NewInt(10))
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, uint64(0), v.MessageNonce())

	for i := uint64(0); i < 3; i++ {
		msg, err := v.SequenceReceived(context.Background(), testRelayer, depositor, receiver, big.NewInt(10))
		require.NoError(t, err)

		assert.Equal(t, i, msg.Nonce)
		assert.Equal(t, receivedHash(depositor, receiver, big.NewInt(10), i), msg.Hash)
		assert.Equal(t, i+1, v.MessageNonce())

		stored, ok, err := v.GetMessage(i)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, msg, stored)
	}

	// identical payloads sequence under distinct ordinals
	first, _, err := v.GetMessage(0)
	require.NoError(t, err)
	second, _, err := v.GetMessage(1)
	require.NoError(t, err)
	assert.NotEqual(t, first.Hash, second.Hash)
}

func TestVault_SequenceAllocated(t *testing.T) {
	t.Parallel()

	target := types.StringToAddress("0xc0de")

	t.Run("forwards the call and advances the nonce", func(t *testing.T) {
		t.Parallel()

		v, _, forwarder := newTestVault(t)

		msg, err := v.SequenceAllocated(context.Background(), testRelayer, target, depositor, receiver, big.NewInt(25), 30000)
		require.NoError(t, err)

		assert.Equal(t, uint64(0), msg.Nonce)
		assert.Equal(t, allocatedHash(depositor, receiver, big.NewInt(25), 30000, 0), msg.Hash)
		assert.True(t, msg.Forwarded)
		assert.Equal(t, uint64(1), v.MessageNonce())

		require.Len(t, forwarder.calls, 1)
		call := forwarder.calls[0]
		assert.Equal(t, target, call.target)
		assert.Equal(t, big.NewInt(25), call.value)
		assert.Equal(t, uint64(30000), call.gasLimit)

		expected, err := forwardInput(depositor, receiver, big.NewInt(25))
		require.NoError(t, err)
		assert.Equal(t, expected, call.input)
	})

	t.Run("failed forwarding advances nothing", func(t *testing.T) {
		t.Parallel()

		v, _, forwarder := newTestVault(t)
		forwarder.err = errors.New("out of gas")

		_, err := v.SequenceAllocated(context.Background(), testRelayer, target, depositor, receiver, big.NewInt(25), 30000)
		require.ErrorIs(t, err, ErrForwardingFailed)

		assert.Equal(t, uint64(0), v.MessageNonce())
		assert.Equal(t, uint64(0), v.GetEventCount())

		_, ok, err := v.GetMessage(0)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("requires the relayer", func(t *testing.T) {
		t.Parallel()

		v, _, forwarder := newTestVault(t)

		_, err := v.SequenceAllocated(context.Background(), stranger, target, depositor, receiver, big.NewInt(25), 30000)
		require.ErrorIs(t, err, ErrUnauthorized)
		assert.Empty(t, forwarder.calls)
	})
}

func TestVault_ConfigOps(t *testing.T) {
	t.Parallel()

	t.Run("chain whitelist", func(t *testing.T) {
		t.Parallel()

		v, _, _ := newTestVault(t)

		sub := v.SubscribeEvents()
		defer sub.Close()

		require.ErrorIs(t, v.SetChainWhitelist(stranger, 11, true), ErrUnauthorized)
		require.NoError(t, v.SetChainWhitelist(testRelayer, 11, true))
		assert.True(t, v.IsChainAllowed(11))

		evnt := sub.GetEvent()
		require.NotNil(t, evnt)
		assert.Equal(t, ConfigChanged, evnt.Type)
		assert.Equal(t, "setChainWhitelist", evnt.Op)

		decoded, err := chainWhitelistArgs.Decode(evnt.Args)
		require.NoError(t, err)

		values, ok := decoded.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, big.NewInt(11), values["chainId"])
		assert.Equal(t, true, values["allowed"])

		require.NoError(t, v.SetChainWhitelist(testRelayer, 11, false))
		assert.False(t, v.IsChainAllowed(11))
	})

	t.Run("token whitelist", func(t *testing.T) {
		t.Parallel()

		v, _, _ := newTestVault(t)

		require.NoError(t, v.SetTokenWhitelist(testRelayer, addrTokenY, true))
		assert.True(t, v.IsTokenAllowed(addrTokenY))

		// idempotent
		require.NoError(t, v.SetTokenWhitelist(testRelayer, addrTokenY, true))
		assert.True(t, v.IsTokenAllowed(addrTokenY))

		require.NoError(t, v.SetTokenWhitelist(testRelayer, addrTokenY, false))
		assert.False(t, v.IsTokenAllowed(addrTokenY))
	})

	t.Run("minimum transfer amount accepts zero", func(t *testing.T) {
		t.Parallel()

		v, _, _ := newTestVault(t)

		require.NoError(t, v.SetMinTransferAmount(testRelayer, big.NewInt(0)))
		assert.Equal(t, big.NewInt(0), v.MinTransferAmount())

		// with a zero minimum, small deposits pass the threshold check
		_, err := v.ReceiveValue(context.Background(), depositor, localChainID, remoteChainID, receiver, addrTokenX, big.NewInt(1))
		require.NoError(t, err)
	})

	t.Run("fee rate has no upper bound", func(t *testing.T) {
		t.Parallel()

		v, _, _ := newTestVault(t)

		require.NoError(t, v.SetFeeRate(testRelayer, 5000))
		assert.Equal(t, uint64(5000), v.FeeRate())

		// a rate above the denominator accrues more fee than the deposit
		_, err := v.ReceiveValue(context.Background(), depositor, localChainID, remoteChainID, receiver, addrTokenX, big.NewInt(100))
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(500), v.Fees(localChainID))
	})
}

func TestVault_RestoreState(t *testing.T) {
	t.Parallel()

	db, err := memory.NewMemoryStorage(hclog.NewNullLogger())
	require.NoError(t, err)

	chainConfig := newTestChain()
	custodian := newMockCustodian()
	forwarder := &mockForwarder{}

	v, err := NewVault(hclog.NewNullLogger(), db, chainConfig, custodian, forwarder)
	require.NoError(t, err)

	_, err = v.ReceiveValue(context.Background(), depositor, localChainID, remoteChainID, receiver, addrTokenX, big.NewInt(150))
	require.NoError(t, err)

	_, err = v.SequenceReceived(context.Background(), testRelayer, depositor, receiver, big.NewInt(10))
	require.NoError(t, err)

	// a new vault over the same storage picks the state up where it was
	restored, err := NewVault(hclog.NewNullLogger(), db, chainConfig, custodian, forwarder)
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(150), restored.Balance(localChainID, addrTokenX))
	assert.Equal(t, big.NewInt(1), restored.Fees(localChainID))
	assert.Equal(t, uint64(1), restored.MessageNonce())
	assert.Equal(t, uint64(2), restored.GetEventCount())
	assert.Equal(t, testRelayer, restored.Relayer())

	msg, ok, err := restored.GetMessage(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(0), msg.Nonce)
}

func TestVault_RestoreRejectsForeignState(t *testing.T) {
	t.Parallel()

	db, err := memory.NewMemoryStorage(hclog.NewNullLogger())
	require.NoError(t, err)

	_, err = NewVault(hclog.NewNullLogger(), db, newTestChain(), newMockCustodian(), &mockForwarder{})
	require.NoError(t, err)

	otherChain := newTestChain()
	otherChain.Params = &chain.Params{ChainID: 7}

	_, err = NewVault(hclog.NewNullLogger(), db, otherChain, newMockCustodian(), &mockForwarder{})
	require.ErrorContains(t, err, "state belongs to chain")
}

// reentrantCustodian calls back into the vault while the pull is in
// flight, the way a malicious token contract would
type reentrantCustodian struct {
	*mockCustodian

	vault *Vault
	inner error
}

func (c *reentrantCustodian) Pull(ctx context.Context, token, from types.Address, amount *big.Int) error {
	c.inner = c.vault.ReleaseValue(ctx, testRelayer, remoteChainID, localChainID, from, token, amount)

	return c.mockCustodian.Pull(ctx, token, from, amount)
}

func TestVault_ReentrantCallRejected(t *testing.T) {
	t.Parallel()

	db, err := memory.NewMemoryStorage(hclog.NewNullLogger())
	require.NoError(t, err)

	custodian := &reentrantCustodian{mockCustodian: newMockCustodian()}

	v, err := NewVault(hclog.NewNullLogger(), db, newTestChain(), custodian, &mockForwarder{})
	require.NoError(t, err)

	custodian.vault = v

	_, err = v.ReceiveValue(context.Background(), depositor, localChainID, remoteChainID, receiver, addrTokenX, big.NewInt(150))
	require.NoError(t, err)

	// the nested release was rejected before touching any state
	require.ErrorIs(t, custodian.inner, ErrReentrantCall)
	assert.Equal(t, big.NewInt(150), v.Balance(localChainID, addrTokenX))
}

func TestVault_Checkpoint(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestVault(t)

	checkpoint, err := v.BuildCheckpoint()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), checkpoint.MessageCount)
	assert.Equal(t, types.ZeroHash, checkpoint.Root)

	for i := 0; i < 3; i++ {
		_, err := v.SequenceReceived(context.Background(), testRelayer, depositor, receiver, big.NewInt(int64(i+1)))
		require.NoError(t, err)
	}

	checkpoint, err = v.BuildCheckpoint()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), checkpoint.MessageCount)
	assert.NotEqual(t, types.ZeroHash, checkpoint.Root)

	for i := uint64(0); i < 3; i++ {
		proof, err := v.MessageProof(i)
		require.NoError(t, err)

		msg, ok, err := v.GetMessage(i)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, VerifyMessageProof(i, msg.Hash, proof, checkpoint.Root))
	}

	_, err = v.MessageProof(3)
	require.Error(t, err)
}

func TestVault_CloseReleasesStorage(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestVault(t)

	require.NoError(t, v.Close())
}
