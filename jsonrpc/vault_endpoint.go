package jsonrpc

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"

	"github.com/0xPolygon/edge-vault/helper/common"
	"github.com/0xPolygon/edge-vault/operator"
	"github.com/0xPolygon/edge-vault/types"
	"github.com/0xPolygon/edge-vault/vault"
)

// vaultQueryStore has the read only surface of the vault
type vaultQueryStore interface {
	// ChainID returns the chain id the vault settles on
	ChainID() uint64

	// Relayer returns the address allowed to submit privileged operations
	Relayer() types.Address

	// Balance returns the held balance for a chain and token pair
	Balance(chainID uint64, tokenID types.Address) *big.Int

	// Fees returns the fees accumulated for a chain
	Fees(chainID uint64) *big.Int

	// MessageNonce returns the number of sequenced messages
	MessageNonce() uint64

	// MinTransferAmount returns the deposit floor
	MinTransferAmount() *big.Int

	// FeeRate returns the deposit fee rate in parts per thousand
	FeeRate() uint64

	// IsChainAllowed returns whether the chain is whitelisted
	IsChainAllowed(chainID uint64) bool

	// IsTokenAllowed returns whether the token is whitelisted
	IsTokenAllowed(tokenID types.Address) bool

	// GetEventCount returns the number of events appended to the log
	GetEventCount() uint64

	// GetEvent returns the event stored under the given index
	GetEvent(index uint64) (*vault.Event, bool, error)

	// GetMessage returns the message stored under the given ordinal
	GetMessage(ordinal uint64) (*vault.Message, bool, error)
}

// vaultOperationStore has the state changing surface of the vault
type vaultOperationStore interface {
	ReceiveValue(
		ctx context.Context,
		from types.Address,
		sourceChainID uint64,
		destChainID uint64,
		to types.Address,
		tokenID types.Address,
		amount *big.Int,
	) (*vault.Event, error)

	ReleaseValue(
		ctx context.Context,
		caller types.Address,
		sourceChainID uint64,
		destChainID uint64,
		to types.Address,
		tokenID types.Address,
		amount *big.Int,
	) error

	SendTokenToUser(
		ctx context.Context,
		caller types.Address,
		tokenID types.Address,
		to types.Address,
		amount *big.Int,
	) error

	SequenceReceived(
		ctx context.Context,
		caller types.Address,
		from types.Address,
		to types.Address,
		amount *big.Int,
	) (*vault.Message, error)

	SequenceAllocated(
		ctx context.Context,
		caller types.Address,
		target types.Address,
		from types.Address,
		to types.Address,
		amount *big.Int,
		gasLimit uint64,
	) (*vault.Message, error)

	SetChainWhitelist(caller types.Address, chainID uint64, allowed bool) error

	SetTokenWhitelist(caller types.Address, tokenID types.Address, allowed bool) error

	SetMinTransferAmount(caller types.Address, amount *big.Int) error

	SetFeeRate(caller types.Address, rate uint64) error
}

// vaultStore is the full interface the vault endpoint works with
type vaultStore interface {
	vaultQueryStore
	vaultOperationStore
}

// viewCacheSize is the number of rendered event and message views kept in memory
const viewCacheSize = 1024

// Cache keys are typed so event and message indices cannot collide in
// the shared view cache
type (
	eventCacheKey   uint64
	messageCacheKey uint64
)

// Vault is the vault jsonrpc endpoint
type Vault struct {
	logger        hclog.Logger
	store         vaultStore
	chainID       uint64
	filterManager *FilterManager

	// viewCache memoizes rendered event and message views. Both logs are
	// append only, so a cached view never goes stale.
	viewCache *lru.Cache

	// operationNonces tracks the next envelope nonce expected from each
	// signer. nonceLock is held for the whole envelope processing so
	// concurrent submissions of one signer serialize.
	nonceLock       sync.Mutex
	operationNonces map[types.Address]uint64
}

// ChainId returns the chain id the vault settles on (vault_chainId)
//
//nolint:stylecheck
func (v *Vault) ChainId() (interface{}, error) {
	return argUintPtr(v.chainID), nil
}

// Relayer returns the address allowed to submit privileged operations (vault_relayer)
func (v *Vault) Relayer() (interface{}, error) {
	return v.store.Relayer(), nil
}

// Deposit credits an inbound transfer and returns the index of the
// recorded deposit event (vault_deposit)
func (v *Vault) Deposit(req operator.DepositRequest) (interface{}, error) {
	sourceChainID, err := common.ParseUint64orHex(&req.SourceChainID)
	if err != nil {
		return nil, NewInvalidParamsError(fmt.Sprintf("failed to parse sourceChainId: %v", err))
	}

	destChainID, err := common.ParseUint64orHex(&req.DestChainID)
	if err != nil {
		return nil, NewInvalidParamsError(fmt.Sprintf("failed to parse destChainId: %v", err))
	}

	amount, err := common.ParseUint256orHex(&req.Amount)
	if err != nil {
		return nil, NewInvalidParamsError(fmt.Sprintf("failed to parse amount: %v", err))
	}

	evnt, err := v.store.ReceiveValue(
		context.Background(),
		req.From,
		sourceChainID,
		destChainID,
		req.To,
		req.TokenID,
		amount,
	)
	if err != nil {
		return nil, err
	}

	return argUint64(evnt.Index), nil
}

// SendOperation processes one signed envelope (vault_sendOperation). The
// nonce of a well formed envelope is consumed even when the wrapped
// operation itself fails, so a failed operation cannot be replayed.
func (v *Vault) SendOperation(input argBytes) (interface{}, error) {
	envelope := &operator.Envelope{}
	if err := envelope.UnmarshalRLP(input); err != nil {
		return nil, NewInvalidParamsError(fmt.Sprintf("failed to decode envelope: %v", err))
	}

	signer, err := envelope.RecoverSigner()
	if err != nil {
		return nil, NewInvalidParamsError(fmt.Sprintf("failed to recover envelope signer: %v", err))
	}

	v.nonceLock.Lock()
	defer v.nonceLock.Unlock()

	expected := v.operationNonces[signer]
	if envelope.Nonce != expected {
		return nil, fmt.Errorf("invalid operation nonce %d, expected %d", envelope.Nonce, expected)
	}

	ctx := context.Background()

	var apply func() (*vault.Message, error)

	switch envelope.Method {
	case operator.MethodReleaseValue:
		params := &operator.ReleaseValueParams{}
		if err := params.DecodeAbi(envelope.Params); err != nil {
			return nil, NewInvalidParamsError(err.Error())
		}

		apply = func() (*vault.Message, error) {
			return nil, v.store.ReleaseValue(
				ctx,
				signer,
				params.SourceChainID.Uint64(),
				params.DestChainID.Uint64(),
				params.To,
				params.TokenID,
				params.Amount,
			)
		}

	case operator.MethodSendTokenToUser:
		params := &operator.SendTokenToUserParams{}
		if err := params.DecodeAbi(envelope.Params); err != nil {
			return nil, NewInvalidParamsError(err.Error())
		}

		apply = func() (*vault.Message, error) {
			return nil, v.store.SendTokenToUser(ctx, signer, params.TokenID, params.To, params.Amount)
		}

	case operator.MethodSequenceReceived:
		params := &operator.SequenceReceivedParams{}
		if err := params.DecodeAbi(envelope.Params); err != nil {
			return nil, NewInvalidParamsError(err.Error())
		}

		apply = func() (*vault.Message, error) {
			return v.store.SequenceReceived(ctx, signer, params.From, params.To, params.Amount)
		}

	case operator.MethodSequenceAllocated:
		params := &operator.SequenceAllocatedParams{}
		if err := params.DecodeAbi(envelope.Params); err != nil {
			return nil, NewInvalidParamsError(err.Error())
		}

		apply = func() (*vault.Message, error) {
			return v.store.SequenceAllocated(
				ctx,
				signer,
				params.Target,
				params.From,
				params.To,
				params.Amount,
				params.GasLimit.Uint64(),
			)
		}

	case operator.MethodSetChainWhitelist:
		params := &operator.SetChainWhitelistParams{}
		if err := params.DecodeAbi(envelope.Params); err != nil {
			return nil, NewInvalidParamsError(err.Error())
		}

		apply = func() (*vault.Message, error) {
			return nil, v.store.SetChainWhitelist(signer, params.ChainID.Uint64(), params.Allowed)
		}

	case operator.MethodSetTokenWhitelist:
		params := &operator.SetTokenWhitelistParams{}
		if err := params.DecodeAbi(envelope.Params); err != nil {
			return nil, NewInvalidParamsError(err.Error())
		}

		apply = func() (*vault.Message, error) {
			return nil, v.store.SetTokenWhitelist(signer, params.TokenID, params.Allowed)
		}

	case operator.MethodSetMinTransferAmount:
		params := &operator.SetMinTransferAmountParams{}
		if err := params.DecodeAbi(envelope.Params); err != nil {
			return nil, NewInvalidParamsError(err.Error())
		}

		apply = func() (*vault.Message, error) {
			return nil, v.store.SetMinTransferAmount(signer, params.Amount)
		}

	case operator.MethodSetFeeRate:
		params := &operator.SetFeeRateParams{}
		if err := params.DecodeAbi(envelope.Params); err != nil {
			return nil, NewInvalidParamsError(err.Error())
		}

		apply = func() (*vault.Message, error) {
			return nil, v.store.SetFeeRate(signer, params.Rate.Uint64())
		}

	default:
		return nil, fmt.Errorf("unknown operation method %s", envelope.Method)
	}

	// a well formed envelope consumes its nonce even when the operation fails
	v.operationNonces[signer] = expected + 1

	receipt := &operator.OperationReceipt{
		EnvelopeHash: envelope.Hash(),
		Method:       envelope.Method,
		Nonce:        envelope.Nonce,
	}

	msg, err := apply()
	if err != nil {
		return nil, err
	}

	if msg != nil {
		nonce, hash := msg.Nonce, msg.Hash
		receipt.MessageNonce = &nonce
		receipt.MessageHash = &hash
	}

	return receipt, nil
}

// OperationNonce returns the next envelope nonce expected from the given
// signer (vault_operationNonce)
func (v *Vault) OperationNonce(signer types.Address) (interface{}, error) {
	v.nonceLock.Lock()
	defer v.nonceLock.Unlock()

	return argUintPtr(v.operationNonces[signer]), nil
}

// GetBalance returns the held balance for a chain and token pair (vault_getBalance)
func (v *Vault) GetBalance(chainID argUint64, tokenID types.Address) (interface{}, error) {
	return argBigPtr(v.store.Balance(uint64(chainID), tokenID)), nil
}

// GetFees returns the fees accumulated for a chain (vault_getFees)
func (v *Vault) GetFees(chainID argUint64) (interface{}, error) {
	return argBigPtr(v.store.Fees(uint64(chainID))), nil
}

// MessageNonce returns the number of sequenced messages (vault_messageNonce)
func (v *Vault) MessageNonce() (interface{}, error) {
	return argUintPtr(v.store.MessageNonce()), nil
}

// MinTransferAmount returns the deposit floor (vault_minTransferAmount)
func (v *Vault) MinTransferAmount() (interface{}, error) {
	return argBigPtr(v.store.MinTransferAmount()), nil
}

// FeeRate returns the deposit fee rate in parts per thousand (vault_feeRate)
func (v *Vault) FeeRate() (interface{}, error) {
	return argUintPtr(v.store.FeeRate()), nil
}

// IsChainAllowed returns whether the chain is whitelisted (vault_isChainAllowed)
func (v *Vault) IsChainAllowed(chainID argUint64) (interface{}, error) {
	return v.store.IsChainAllowed(uint64(chainID)), nil
}

// IsTokenAllowed returns whether the token is whitelisted (vault_isTokenAllowed)
func (v *Vault) IsTokenAllowed(tokenID types.Address) (interface{}, error) {
	return v.store.IsTokenAllowed(tokenID), nil
}

// GetEventCount returns the number of events appended to the log (vault_getEventCount)
func (v *Vault) GetEventCount() (interface{}, error) {
	return argUintPtr(v.store.GetEventCount()), nil
}

// GetEvent returns the event stored under the given index, or null if the
// log has not reached it yet (vault_getEvent)
func (v *Vault) GetEvent(index argUint64) (interface{}, error) {
	if cached, ok := v.viewCache.Get(eventCacheKey(index)); ok {
		return cached, nil
	}

	evnt, ok, err := v.store.GetEvent(uint64(index))
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	res := toEvent(evnt)
	v.viewCache.Add(eventCacheKey(index), res)

	return res, nil
}

// GetEvents returns the events matching the given query (vault_getEvents)
func (v *Vault) GetEvents(query *EventQuery) (interface{}, error) {
	return v.filterManager.GetEventsForQuery(query)
}

// GetMessage returns the message stored under the given ordinal, or null
// if nothing has been sequenced there yet (vault_getMessage)
func (v *Vault) GetMessage(ordinal argUint64) (interface{}, error) {
	if cached, ok := v.viewCache.Get(messageCacheKey(ordinal)); ok {
		return cached, nil
	}

	msg, ok, err := v.store.GetMessage(uint64(ordinal))
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	res := toMessage(msg)
	v.viewCache.Add(messageCacheKey(ordinal), res)

	return res, nil
}

// NewEventFilter creates a filter that collects the events matching the
// query (vault_newEventFilter)
func (v *Vault) NewEventFilter(query *EventQuery) (interface{}, error) {
	return v.filterManager.NewEventFilter(query, nil), nil
}

// NewMessageFilter creates a filter that collects sequenced messages
// (vault_newMessageFilter)
func (v *Vault) NewMessageFilter() (interface{}, error) {
	return v.filterManager.NewMessageFilter(nil), nil
}

// GetFilterChanges returns the updates a filter collected since the last
// poll (vault_getFilterChanges)
func (v *Vault) GetFilterChanges(id string) (interface{}, error) {
	return v.filterManager.GetFilterChanges(id)
}

// UninstallFilter removes the filter with the given id (vault_uninstallFilter)
func (v *Vault) UninstallFilter(id string) (interface{}, error) {
	return v.filterManager.Uninstall(id), nil
}
