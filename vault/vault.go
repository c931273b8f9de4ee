package vault

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/edge-vault/chain"
	"github.com/0xPolygon/edge-vault/types"
	"github.com/0xPolygon/edge-vault/vault/storage"
)

const (
	// feeDenominator sizes the fee rate in parts per thousand
	feeDenominator = 1000

	vaultMetrics = "vault"
)

// Custodian moves native and token value in and out of custody.
// The sentinel token types.ZeroAddress selects native currency.
type Custodian interface {
	// Pull takes amount of token from the depositor into custody
	Pull(ctx context.Context, token types.Address, from types.Address, amount *big.Int) error

	// Pay sends amount of token out of custody
	Pay(ctx context.Context, token types.Address, to types.Address, amount *big.Int) error

	// Held reports the physically held balance of token
	Held(token types.Address) (*big.Int, error)
}

// Forwarder dispatches a call to an arbitrary target with attached
// value, guaranteeing the callee at least gasLimit gas
type Forwarder interface {
	Forward(ctx context.Context, target types.Address, value *big.Int, gasLimit uint64, input []byte) error
}

// ABI argument layouts of the configuration change events
var (
	chainWhitelistArgs = abi.MustNewType("tuple(uint256 chainId, bool allowed)")
	tokenWhitelistArgs = abi.MustNewType("tuple(address tokenId, bool allowed)")
	minAmountArgs      = abi.MustNewType("tuple(uint256 amount)")
	feeRateArgs        = abi.MustNewType("tuple(uint256 rate)")
)

// Vault is the custody core. It tracks whitelists, funding and fee
// pools and the message nonce, moves value through the custodian,
// forwards sequenced calls and appends one event per mutation. All
// state-changing operations serialize on an internal lock and become
// durable before they return.
type Vault struct {
	logger hclog.Logger

	chainID uint64

	db    storage.Storage
	state *ledger

	custodian Custodian
	forwarder Forwarder

	stream *eventStream

	// current holds the latest committed state tree for lock-free readers
	current atomic.Value

	eventCount uint64

	// lock serializes state-changing operations
	lock sync.Mutex

	// guard is the transfer re-entrancy flag. It is taken before the
	// lock so that a collaborator calling back into the vault on the
	// same goroutine fails fast instead of deadlocking.
	guard uint32
}

// NewVault creates a vault over the given storage. A fresh storage is
// initialized from the genesis configuration; an existing one is
// restored and verified against the configured chain ID.
func NewVault(
	logger hclog.Logger,
	db storage.Storage,
	config *chain.Chain,
	custodian Custodian,
	forwarder Forwarder,
) (*Vault, error) {
	if config == nil || config.Genesis == nil {
		return nil, fmt.Errorf("chain configuration is required")
	}

	if custodian == nil {
		return nil, fmt.Errorf("custodian is required")
	}

	if forwarder == nil {
		return nil, fmt.Errorf("forwarder is required")
	}

	v := &Vault{
		logger:    logger.Named("vault"),
		chainID:   config.Params.ChainID,
		db:        db,
		state:     newLedger(),
		custodian: custodian,
		forwarder: forwarder,
		stream:    newEventStream(),
	}

	data, ok, err := db.ReadState()
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	if ok {
		if err := v.restoreState(data); err != nil {
			return nil, err
		}
	} else {
		if err := v.initGenesisState(config.Genesis); err != nil {
			return nil, err
		}
	}

	v.current.Store(v.state.commit())

	return v, nil
}

func (v *Vault) restoreState(data []byte) error {
	if err := v.state.unmarshal(data); err != nil {
		return fmt.Errorf("failed to restore state: %w", err)
	}

	if stored := readChainID(v.state.txn); stored != v.chainID {
		return fmt.Errorf("state belongs to chain %d, configured chain is %d", stored, v.chainID)
	}

	count, err := v.db.ReadEventCount()
	if err != nil {
		return fmt.Errorf("failed to read event count: %w", err)
	}

	v.eventCount = count

	v.logger.Info("state restored", "nonce", v.state.nonce(), "events", count)

	return nil
}

func (v *Vault) initGenesisState(genesis *chain.Genesis) error {
	v.state.setChainID(v.chainID)
	v.state.setRelayer(genesis.Relayer)

	for _, chainID := range genesis.ChainWhitelist {
		v.state.setChainAllowed(chainID, true)
	}

	for _, tokenID := range genesis.TokenWhitelist {
		v.state.setTokenAllowed(tokenID, true)
	}

	minAmount := genesis.MinAmount
	if minAmount == nil {
		minAmount = big.NewInt(0)
	}

	v.state.setParams(&params{minAmount: minAmount, feeRate: genesis.FeeRate})

	for _, premine := range genesis.Premine {
		v.state.credit(premine.ChainID, premine.TokenID, premine.Balance)
	}

	batch := v.db.NewBatch()
	batch.WriteState(v.state.marshal())

	if err := batch.Write(); err != nil {
		return fmt.Errorf("failed to write genesis state: %w", err)
	}

	v.logger.Info("genesis state initialized", "chain", v.chainID, "relayer", genesis.Relayer)

	return nil
}

// Close closes the underlying storage
func (v *Vault) Close() error {
	return v.db.Close()
}

func (v *Vault) readTree() stateReader {
	return v.current.Load().(stateReader)
}

// commit makes the in-memory state durable together with the event
// produced by the operation (and the message record, when one was
// sequenced), then publishes the event to subscribers
func (v *Vault) commit(event *Event, msg *Message) error {
	event.normalize()
	event.Index = atomic.LoadUint64(&v.eventCount)

	batch := v.db.NewBatch()
	batch.WriteState(v.state.marshal())
	batch.WriteEvent(event.Index, event.MarshalRLP())
	batch.WriteEventCount(event.Index + 1)

	if msg != nil {
		batch.WriteMessage(msg.Nonce, msg.MarshalRLP())
	}

	if err := batch.Write(); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}

	v.current.Store(v.state.commit())
	atomic.StoreUint64(&v.eventCount, event.Index+1)
	v.stream.push(event)

	return nil
}

// requireRelayer gates privileged operations on the caller identity
func (v *Vault) requireRelayer(caller types.Address) error {
	if caller != v.state.relayer() {
		metrics.IncrCounter([]string{vaultMetrics, "unauthorized_calls"}, 1)

		return ErrUnauthorized
	}

	return nil
}

func (v *Vault) acquireTransferGuard() error {
	if !atomic.CompareAndSwapUint32(&v.guard, 0, 1) {
		return ErrReentrantCall
	}

	return nil
}

func (v *Vault) releaseTransferGuard() {
	atomic.StoreUint32(&v.guard, 0)
}

func validTransferAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	return nil
}

// zero is a legal attached value for sequenced messages
func validMessageAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	return nil
}

// ReceiveValue locks an inbound transfer into custody. The operation is
// open to any caller: the custodian pulls the amount from the depositor
// before the ledger is touched, the full amount is credited to the
// local funding pool and the fee is accrued separately on top of it.
func (v *Vault) ReceiveValue(
	ctx context.Context,
	from types.Address,
	sourceChainID uint64,
	destChainID uint64,
	to types.Address,
	tokenID types.Address,
	amount *big.Int,
) (*Event, error) {
	if err := v.acquireTransferGuard(); err != nil {
		return nil, err
	}
	defer v.releaseTransferGuard()

	v.lock.Lock()
	defer v.lock.Unlock()

	if err := validTransferAmount(amount); err != nil {
		return nil, err
	}

	if sourceChainID != v.chainID {
		return nil, ErrSourceChainMismatch
	}

	if !v.state.isChainAllowed(destChainID) {
		return nil, ErrChainNotAllowed
	}

	if tokenID != types.ZeroAddress && !v.state.isTokenAllowed(tokenID) {
		return nil, ErrTokenNotAllowed
	}

	p := v.state.getParams()
	if amount.Cmp(p.minAmount) < 0 {
		return nil, ErrAmountTooLow
	}

	// custody moves first; only a successful pull may touch the ledger
	if err := v.custodian.Pull(ctx, tokenID, from, amount); err != nil {
		return nil, fmt.Errorf("failed to pull custody: %w", err)
	}

	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(p.feeRate))
	fee.Div(fee, big.NewInt(feeDenominator))

	snapshot := v.state.Snapshot()

	v.state.credit(v.chainID, tokenID, amount)
	v.state.accrueFee(v.chainID, fee)

	event := &Event{
		Type:          DepositReceived,
		SourceChainID: sourceChainID,
		DestChainID:   destChainID,
		From:          from,
		To:            to,
		TokenID:       tokenID,
		Amount:        amount,
		Fee:           fee,
	}

	if err := v.commit(event, nil); err != nil {
		v.state.RevertToSnapshot(snapshot)

		return nil, err
	}

	metrics.IncrCounter([]string{vaultMetrics, "deposits"}, 1)
	v.logger.Info("deposit received",
		"source", sourceChainID,
		"dest", destChainID,
		"token", tokenID,
		"amount", amount,
		"fee", fee,
	)

	return event, nil
}

// ReleaseValue pays an outbound transfer out of custody. Privileged.
// The ledger debit is final before value leaves custody; a failed
// payout rolls the debit back and persists nothing.
func (v *Vault) ReleaseValue(
	ctx context.Context,
	caller types.Address,
	sourceChainID uint64,
	destChainID uint64,
	to types.Address,
	tokenID types.Address,
	amount *big.Int,
) error {
	if err := v.acquireTransferGuard(); err != nil {
		return err
	}
	defer v.releaseTransferGuard()

	v.lock.Lock()
	defer v.lock.Unlock()

	if err := v.requireRelayer(caller); err != nil {
		return err
	}

	if err := validTransferAmount(amount); err != nil {
		return err
	}

	if destChainID != v.chainID {
		return ErrDestChainMismatch
	}

	if !v.state.isChainAllowed(sourceChainID) {
		return ErrChainNotAllowed
	}

	if tokenID != types.ZeroAddress && !v.state.isTokenAllowed(tokenID) {
		return ErrTokenNotAllowed
	}

	p := v.state.getParams()
	if amount.Cmp(p.minAmount) < 0 {
		return ErrAmountTooLow
	}

	// the ledger may promise more than the custodian physically holds;
	// a payout needs both
	held, err := v.custodian.Held(tokenID)
	if err != nil {
		return fmt.Errorf("failed to read held balance: %w", err)
	}

	if held.Cmp(amount) < 0 {
		return ErrInsufficientHoldings
	}

	snapshot := v.state.Snapshot()

	if err := v.state.debit(v.chainID, tokenID, amount); err != nil {
		return err
	}

	if err := v.custodian.Pay(ctx, tokenID, to, amount); err != nil {
		v.state.RevertToSnapshot(snapshot)

		return fmt.Errorf("failed to pay out custody: %w", err)
	}

	event := &Event{
		Type:          ValueReleased,
		SourceChainID: sourceChainID,
		DestChainID:   destChainID,
		To:            to,
		TokenID:       tokenID,
		Amount:        amount,
	}

	if err := v.commit(event, nil); err != nil {
		v.state.RevertToSnapshot(snapshot)

		return err
	}

	metrics.IncrCounter([]string{vaultMetrics, "releases"}, 1)
	v.logger.Info("value released",
		"source", sourceChainID,
		"dest", destChainID,
		"to", to,
		"token", tokenID,
		"amount", amount,
	)

	return nil
}

// SendTokenToUser is the administrative direct payout. Privileged. It
// bypasses the chain whitelists and the minimum amount but still
// enforces the token whitelist, the ledger balance under the full
// (local chain, token) key and the physically held balance.
func (v *Vault) SendTokenToUser(
	ctx context.Context,
	caller types.Address,
	tokenID types.Address,
	to types.Address,
	amount *big.Int,
) error {
	if err := v.acquireTransferGuard(); err != nil {
		return err
	}
	defer v.releaseTransferGuard()

	v.lock.Lock()
	defer v.lock.Unlock()

	if err := v.requireRelayer(caller); err != nil {
		return err
	}

	if err := validTransferAmount(amount); err != nil {
		return err
	}

	if tokenID != types.ZeroAddress && !v.state.isTokenAllowed(tokenID) {
		return ErrTokenNotAllowed
	}

	held, err := v.custodian.Held(tokenID)
	if err != nil {
		return fmt.Errorf("failed to read held balance: %w", err)
	}

	if held.Cmp(amount) < 0 {
		return ErrInsufficientHoldings
	}

	snapshot := v.state.Snapshot()

	if err := v.state.debit(v.chainID, tokenID, amount); err != nil {
		return err
	}

	if err := v.custodian.Pay(ctx, tokenID, to, amount); err != nil {
		v.state.RevertToSnapshot(snapshot)

		return fmt.Errorf("failed to pay out custody: %w", err)
	}

	event := &Event{
		Type:        TokenSwept,
		DestChainID: v.chainID,
		To:          to,
		TokenID:     tokenID,
		Amount:      amount,
	}

	if err := v.commit(event, nil); err != nil {
		v.state.RevertToSnapshot(snapshot)

		return err
	}

	metrics.IncrCounter([]string{vaultMetrics, "sweeps"}, 1)
	v.logger.Info("token swept", "to", to, "token", tokenID, "amount", amount)

	return nil
}

// SequenceReceived assigns the next ordinal to an observed inbound
// message. Privileged. The commitment hash and the emitted event both
// carry the ordinal the message was sequenced under.
func (v *Vault) SequenceReceived(
	ctx context.Context,
	caller types.Address,
	from types.Address,
	to types.Address,
	amount *big.Int,
) (*Message, error) {
	v.lock.Lock()
	defer v.lock.Unlock()

	if err := v.requireRelayer(caller); err != nil {
		return nil, err
	}

	if err := validMessageAmount(amount); err != nil {
		return nil, err
	}

	nonce := v.state.nonce()

	msg := &Message{
		Nonce:  nonce,
		Hash:   receivedHash(from, to, amount, nonce),
		From:   from,
		To:     to,
		Amount: amount,
	}

	snapshot := v.state.Snapshot()
	v.state.setNonce(nonce + 1)

	event := &Event{
		Type:   MessageReceived,
		Nonce:  nonce,
		Hash:   msg.Hash,
		From:   from,
		To:     to,
		Amount: amount,
	}

	if err := v.commit(event, msg); err != nil {
		v.state.RevertToSnapshot(snapshot)

		return nil, err
	}

	metrics.IncrCounter([]string{vaultMetrics, "sequenced_messages"}, 1)
	metrics.SetGauge([]string{vaultMetrics, "message_nonce"}, float32(nonce+1))
	v.logger.Info("message sequenced", "nonce", nonce, "hash", msg.Hash)

	return msg, nil
}

// SequenceAllocated sequences a message and forwards a call to the
// target carrying the amount as attached value and at least gasLimit
// gas. Privileged. A failed forward aborts the operation: the nonce
// does not advance and nothing persists.
func (v *Vault) SequenceAllocated(
	ctx context.Context,
	caller types.Address,
	target types.Address,
	from types.Address,
	to types.Address,
	amount *big.Int,
	gasLimit uint64,
) (*Message, error) {
	if err := v.acquireTransferGuard(); err != nil {
		return nil, err
	}
	defer v.releaseTransferGuard()

	v.lock.Lock()
	defer v.lock.Unlock()

	if err := v.requireRelayer(caller); err != nil {
		return nil, err
	}

	if err := validMessageAmount(amount); err != nil {
		return nil, err
	}

	nonce := v.state.nonce()

	input, err := forwardInput(from, to, amount)
	if err != nil {
		return nil, err
	}

	if err := v.forwarder.Forward(ctx, target, amount, gasLimit, input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForwardingFailed, err)
	}

	msg := &Message{
		Nonce:     nonce,
		Hash:      allocatedHash(from, to, amount, gasLimit, nonce),
		From:      from,
		To:        to,
		Amount:    amount,
		Target:    target,
		GasLimit:  gasLimit,
		Forwarded: true,
	}

	snapshot := v.state.Snapshot()
	v.state.setNonce(nonce + 1)

	event := &Event{
		Type:     MessageAllocated,
		Nonce:    nonce,
		Hash:     msg.Hash,
		From:     from,
		To:       to,
		Target:   target,
		Amount:   amount,
		GasLimit: gasLimit,
	}

	if err := v.commit(event, msg); err != nil {
		v.state.RevertToSnapshot(snapshot)

		return nil, err
	}

	metrics.IncrCounter([]string{vaultMetrics, "forwarded_messages"}, 1)
	metrics.SetGauge([]string{vaultMetrics, "message_nonce"}, float32(nonce+1))
	v.logger.Info("message forwarded",
		"nonce", nonce,
		"hash", msg.Hash,
		"target", target,
		"gas", gasLimit,
	)

	return msg, nil
}

// SetChainWhitelist flips the whitelist membership of a remote chain.
// Privileged, idempotent.
func (v *Vault) SetChainWhitelist(caller types.Address, chainID uint64, allowed bool) error {
	v.lock.Lock()
	defer v.lock.Unlock()

	if err := v.requireRelayer(caller); err != nil {
		return err
	}

	args, err := chainWhitelistArgs.Encode(map[string]interface{}{
		"chainId": new(big.Int).SetUint64(chainID),
		"allowed": allowed,
	})
	if err != nil {
		return fmt.Errorf("failed to encode event args: %w", err)
	}

	snapshot := v.state.Snapshot()
	v.state.setChainAllowed(chainID, allowed)

	if err := v.commit(newConfigEvent("setChainWhitelist", args), nil); err != nil {
		v.state.RevertToSnapshot(snapshot)

		return err
	}

	metrics.IncrCounter([]string{vaultMetrics, "config_changes"}, 1)
	v.logger.Info("chain whitelist updated", "chain", chainID, "allowed", allowed)

	return nil
}

// SetTokenWhitelist flips the whitelist membership of a token.
// Privileged, idempotent.
func (v *Vault) SetTokenWhitelist(caller types.Address, tokenID types.Address, allowed bool) error {
	v.lock.Lock()
	defer v.lock.Unlock()

	if err := v.requireRelayer(caller); err != nil {
		return err
	}

	args, err := tokenWhitelistArgs.Encode(map[string]interface{}{
		"tokenId": ethgo.Address(tokenID),
		"allowed": allowed,
	})
	if err != nil {
		return fmt.Errorf("failed to encode event args: %w", err)
	}

	snapshot := v.state.Snapshot()
	v.state.setTokenAllowed(tokenID, allowed)

	if err := v.commit(newConfigEvent("setTokenWhitelist", args), nil); err != nil {
		v.state.RevertToSnapshot(snapshot)

		return err
	}

	metrics.IncrCounter([]string{vaultMetrics, "config_changes"}, 1)
	v.logger.Info("token whitelist updated", "token", tokenID, "allowed", allowed)

	return nil
}

// SetMinTransferAmount replaces the minimum transfer amount. Zero is
// accepted and disables the check. Privileged.
func (v *Vault) SetMinTransferAmount(caller types.Address, amount *big.Int) error {
	v.lock.Lock()
	defer v.lock.Unlock()

	if err := v.requireRelayer(caller); err != nil {
		return err
	}

	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	args, err := minAmountArgs.Encode(map[string]interface{}{"amount": amount})
	if err != nil {
		return fmt.Errorf("failed to encode event args: %w", err)
	}

	snapshot := v.state.Snapshot()

	p := v.state.getParams()
	p.minAmount = amount
	v.state.setParams(p)

	if err := v.commit(newConfigEvent("setMinTransferAmount", args), nil); err != nil {
		v.state.RevertToSnapshot(snapshot)

		return err
	}

	metrics.IncrCounter([]string{vaultMetrics, "config_changes"}, 1)
	v.logger.Info("minimum transfer amount updated", "amount", amount)

	return nil
}

// SetFeeRate replaces the fee rate, expressed in parts per thousand.
// Rates at or above the denominator are not rejected. Privileged.
func (v *Vault) SetFeeRate(caller types.Address, rate uint64) error {
	v.lock.Lock()
	defer v.lock.Unlock()

	if err := v.requireRelayer(caller); err != nil {
		return err
	}

	args, err := feeRateArgs.Encode(map[string]interface{}{
		"rate": new(big.Int).SetUint64(rate),
	})
	if err != nil {
		return fmt.Errorf("failed to encode event args: %w", err)
	}

	snapshot := v.state.Snapshot()

	p := v.state.getParams()
	p.feeRate = rate
	v.state.setParams(p)

	if err := v.commit(newConfigEvent("setFeeRate", args), nil); err != nil {
		v.state.RevertToSnapshot(snapshot)

		return err
	}

	metrics.IncrCounter([]string{vaultMetrics, "config_changes"}, 1)
	v.logger.Info("fee rate updated", "rate", rate)

	return nil
}

func newConfigEvent(op string, args []byte) *Event {
	return &Event{
		Type: ConfigChanged,
		Op:   op,
		Args: args,
	}
}

// ChainID returns the local chain identifier
func (v *Vault) ChainID() uint64 {
	return v.chainID
}

// Balance returns the funding pool balance of (chainID, tokenID)
func (v *Vault) Balance(chainID uint64, tokenID types.Address) *big.Int {
	return readBalance(v.readTree(), chainID, tokenID)
}

// Fees returns the accrued fee counter of the chain
func (v *Vault) Fees(chainID uint64) *big.Int {
	return readFees(v.readTree(), chainID)
}

// MessageNonce returns the next ordinal to be assigned
func (v *Vault) MessageNonce() uint64 {
	return readNonce(v.readTree())
}

// IsChainAllowed reports the whitelist membership of a chain
func (v *Vault) IsChainAllowed(chainID uint64) bool {
	return readChainAllowed(v.readTree(), chainID)
}

// IsTokenAllowed reports the whitelist membership of a token
func (v *Vault) IsTokenAllowed(tokenID types.Address) bool {
	return readTokenAllowed(v.readTree(), tokenID)
}

// MinTransferAmount returns the configured minimum transfer amount
func (v *Vault) MinTransferAmount() *big.Int {
	return readParams(v.readTree()).minAmount
}

// FeeRate returns the configured fee rate in parts per thousand
func (v *Vault) FeeRate() uint64 {
	return readParams(v.readTree()).feeRate
}

// Relayer returns the authorized relayer address
func (v *Vault) Relayer() types.Address {
	return readRelayer(v.readTree())
}

// GetEventCount returns the number of records in the event log
func (v *Vault) GetEventCount() uint64 {
	return atomic.LoadUint64(&v.eventCount)
}

// GetEvent reads one event log record
func (v *Vault) GetEvent(index uint64) (*Event, bool, error) {
	data, ok, err := v.db.ReadEvent(index)
	if err != nil || !ok {
		return nil, false, err
	}

	event := &Event{}
	if err := event.UnmarshalRLP(data); err != nil {
		return nil, false, fmt.Errorf("failed to decode event %d: %w", index, err)
	}

	return event, true, nil
}

// GetMessage reads one sequenced message record
func (v *Vault) GetMessage(ordinal uint64) (*Message, bool, error) {
	data, ok, err := v.db.ReadMessage(ordinal)
	if err != nil || !ok {
		return nil, false, err
	}

	msg := &Message{}
	if err := msg.UnmarshalRLP(data); err != nil {
		return nil, false, fmt.Errorf("failed to decode message %d: %w", ordinal, err)
	}

	return msg, true, nil
}

// SubscribeEvents returns a subscription over the event stream
func (v *Vault) SubscribeEvents() Subscription {
	return v.stream.subscribe()
}
