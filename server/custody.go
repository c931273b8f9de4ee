package server

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/edge-vault/chain"
	"github.com/0xPolygon/edge-vault/types"
	"github.com/0xPolygon/edge-vault/vault"
	"github.com/0xPolygon/edge-vault/vault/storage"
)

// bookCustodian tracks the per token holdings of the service. The
// external asset layer settles real value out of band; the book is the
// in-process record of what has physically entered and left custody.
// It is not persisted on its own: every custody movement is covered by
// exactly one vault event, so the book is rebuilt from the event log on
// startup, seeded with the local-chain premines.
type bookCustodian struct {
	logger hclog.Logger

	lock sync.Mutex
	held map[types.Address]*big.Int
}

func newBookCustodian(logger hclog.Logger, db storage.Storage, config *chain.Chain) (*bookCustodian, error) {
	if config == nil || config.Genesis == nil {
		return nil, fmt.Errorf("chain configuration is required")
	}

	c := &bookCustodian{
		logger: logger.Named("custody"),
		held:   map[types.Address]*big.Int{},
	}

	for _, premine := range config.Genesis.Premine {
		// premines on remote chains are liquidity promised elsewhere,
		// not value held here
		if premine.ChainID == config.Params.ChainID {
			c.credit(premine.TokenID, premine.Balance)
		}
	}

	if err := c.replay(db); err != nil {
		return nil, err
	}

	return c, nil
}

// replay rebuilds the holdings from the event log. Deposits moved
// value in, releases and sweeps moved value out; no other event type
// touches custody.
func (c *bookCustodian) replay(db storage.Storage) error {
	count, err := db.ReadEventCount()
	if err != nil {
		return fmt.Errorf("failed to read event count: %w", err)
	}

	for index := uint64(0); index < count; index++ {
		data, ok, err := db.ReadEvent(index)
		if err != nil {
			return fmt.Errorf("failed to read event %d: %w", index, err)
		}

		if !ok {
			return fmt.Errorf("event log is missing record %d", index)
		}

		event := &vault.Event{}
		if err := event.UnmarshalRLP(data); err != nil {
			return fmt.Errorf("failed to decode event %d: %w", index, err)
		}

		switch event.Type {
		case vault.DepositReceived:
			c.credit(event.TokenID, event.Amount)
		case vault.ValueReleased, vault.TokenSwept:
			if err := c.debit(event.TokenID, event.Amount); err != nil {
				return fmt.Errorf("event %d: %w", index, err)
			}
		}
	}

	if count > 0 {
		c.logger.Info("custody book restored", "events", count, "tokens", len(c.held))
	}

	return nil
}

func (c *bookCustodian) credit(token types.Address, amount *big.Int) {
	balance, ok := c.held[token]
	if !ok {
		balance = new(big.Int)
		c.held[token] = balance
	}

	balance.Add(balance, amount)
}

func (c *bookCustodian) debit(token types.Address, amount *big.Int) error {
	balance, ok := c.held[token]
	if !ok || balance.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient holdings of token %s", token)
	}

	balance.Sub(balance, amount)

	return nil
}

// Pull records an inbound transfer into the custody book
func (c *bookCustodian) Pull(ctx context.Context, token, from types.Address, amount *big.Int) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.credit(token, amount)
	c.logger.Debug("custody pulled", "token", token, "from", from, "amount", amount)

	return nil
}

// Pay records an outbound transfer out of the custody book
func (c *bookCustodian) Pay(ctx context.Context, token, to types.Address, amount *big.Int) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.debit(token, amount); err != nil {
		return err
	}

	c.logger.Debug("custody paid", "token", token, "to", to, "amount", amount)

	return nil
}

// Held reports the physically held balance of a token
func (c *bookCustodian) Held(token types.Address) (*big.Int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	balance, ok := c.held[token]
	if !ok {
		return new(big.Int), nil
	}

	return new(big.Int).Set(balance), nil
}
