package vault

import (
	"context"
	"math/big"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/0xPolygon/edge-vault/types"
	"github.com/0xPolygon/edge-vault/vault/storage/memory"
)

// Random interleavings of deposits, releases and sweeps must never
// drive a pool negative, and the pools must always hold exactly the
// credited minus the debited value.
func TestVault_LedgerConservation(t *testing.T) {
	t.Parallel()

	tokens := []types.Address{addrTokenX, types.ZeroAddress}

	rapid.Check(t, func(tt *rapid.T) {
		chainConfig := newTestChain()
		chainConfig.Genesis.MinAmount = big.NewInt(0)

		db, err := memory.NewMemoryStorage(hclog.NewNullLogger())
		require.NoError(tt, err)

		custodian := newMockCustodian()
		for _, token := range tokens {
			custodian.fund(token, 1<<60)
		}

		v, err := NewVault(hclog.NewNullLogger(), db, chainConfig, custodian, &mockForwarder{})
		require.NoError(tt, err)

		model := map[types.Address]*big.Int{}
		for _, token := range tokens {
			model[token] = new(big.Int)
		}

		credits := new(big.Int)
		debits := new(big.Int)

		numOps := rapid.IntRange(1, 60).Draw(tt, "number of operations")

		for i := 0; i < numOps; i++ {
			var (
				op     = rapid.IntRange(0, 2).Draw(tt, "operation")
				token  = rapid.SampledFrom(tokens).Draw(tt, "token")
				amount = big.NewInt(rapid.Int64Range(1, 1000).Draw(tt, "amount"))
			)

			switch op {
			case 0:
				_, err := v.ReceiveValue(context.Background(), depositor, localChainID, remoteChainID, receiver, token, amount)
				require.NoError(tt, err)

				model[token].Add(model[token], amount)
				credits.Add(credits, amount)
			case 1:
				err := v.ReleaseValue(context.Background(), testRelayer, remoteChainID, localChainID, receiver, token, amount)

				if model[token].Cmp(amount) >= 0 {
					require.NoError(tt, err)

					model[token].Sub(model[token], amount)
					debits.Add(debits, amount)
				} else {
					require.ErrorIs(tt, err, ErrInsufficientFunds)
				}
			case 2:
				err := v.SendTokenToUser(context.Background(), testRelayer, token, receiver, amount)

				if model[token].Cmp(amount) >= 0 {
					require.NoError(tt, err)

					model[token].Sub(model[token], amount)
					debits.Add(debits, amount)
				} else {
					require.ErrorIs(tt, err, ErrInsufficientFunds)
				}
			}
		}

		total := new(big.Int)

		for _, token := range tokens {
			balance := v.Balance(localChainID, token)
			require.True(tt, balance.Sign() >= 0, "pool for %s went negative", token)
			require.Zero(tt, balance.Cmp(model[token]), "pool for %s diverged from the model", token)

			total.Add(total, balance)
		}

		// sum of credits minus sum of debits equals the held total
		require.Zero(tt, new(big.Int).Sub(credits, debits).Cmp(total))
	})
}
