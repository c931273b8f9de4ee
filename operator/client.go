package operator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/umbracle/ethgo/jsonrpc"

	"github.com/0xPolygon/edge-vault/crypto"
	"github.com/0xPolygon/edge-vault/helper/common"
	"github.com/0xPolygon/edge-vault/helper/hex"
	"github.com/0xPolygon/edge-vault/types"
)

var errNoSigningKey = errors.New("client has no signing key configured")

const (
	defaultClientAddr   = "http://127.0.0.1:8545"
	defaultRetryTimeout = 2 * time.Second
)

// DepositRequest is the wire form of the open deposit call. Numeric
// fields are 0x prefixed hex strings.
type DepositRequest struct {
	From          types.Address `json:"from"`
	SourceChainID string        `json:"sourceChainId"`
	DestChainID   string        `json:"destChainId"`
	To            types.Address `json:"to"`
	TokenID       types.Address `json:"tokenId"`
	Amount        string        `json:"amount"`
}

type ClientOption func(*Client)

func WithAddr(addr string) ClientOption {
	return func(c *Client) {
		c.addr = addr
	}
}

func WithClient(client *jsonrpc.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithKey sets the key that signs privileged envelopes. Query methods
// and Deposit work without one.
func WithKey(key crypto.Key) ClientOption {
	return func(c *Client) {
		c.key = key
	}
}

// WithRetryTimeout bounds how long queries and event polling keep
// retrying before giving up
func WithRetryTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.retryTimeout = timeout
	}
}

// Client submits vault operations over JSON-RPC. Privileged calls are
// wrapped in signed envelopes; the envelope nonce is fetched from the
// endpoint before every submission.
type Client struct {
	addr         string
	client       *jsonrpc.Client
	key          crypto.Key
	retryTimeout time.Duration
}

func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		addr:         defaultClientAddr,
		retryTimeout: defaultRetryTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		client, err := jsonrpc.NewClient(c.addr)
		if err != nil {
			return nil, err
		}

		c.client = client
	}

	return c, nil
}

// callRetry keeps retrying read calls with fibonacci backoff until the
// retry timeout elapses. Safe for reads only.
func (c *Client) callRetry(ctx context.Context, method string, out interface{}, params ...interface{}) error {
	backoff := retry.WithMaxDuration(c.retryTimeout, retry.NewFibonacci(100*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := c.client.Call(method, out, params...); err != nil {
			return retry.RetryableError(err)
		}

		return nil
	})
}

type abiEncoder interface {
	EncodeAbi() ([]byte, error)
}

// sendOperation signs and submits one envelope. Submission is a single
// attempt; the per signer nonce makes a blind resubmission indistinguishable
// from a replay on the endpoint side.
func (c *Client) sendOperation(ctx context.Context, method string, params abiEncoder) (*OperationReceipt, error) {
	if c.key == nil {
		return nil, errNoSigningKey
	}

	encoded, err := params.EncodeAbi()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s params: %w", method, err)
	}

	nonce, err := c.OperationNonce(ctx, c.key.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch operation nonce: %w", err)
	}

	envelope := &Envelope{
		Method: method,
		Params: encoded,
		Nonce:  nonce,
	}

	if err := envelope.Sign(c.key); err != nil {
		return nil, err
	}

	var receipt *OperationReceipt
	if err := c.client.Call("vault_sendOperation", &receipt, hex.EncodeToHex(envelope.MarshalRLP())); err != nil {
		return nil, err
	}

	return receipt, nil
}

// Deposit submits an open deposit and returns the index of the recorded
// deposit event
func (c *Client) Deposit(
	ctx context.Context,
	from types.Address,
	sourceChainID uint64,
	destChainID uint64,
	to types.Address,
	tokenID types.Address,
	amount *big.Int,
) (uint64, error) {
	req := &DepositRequest{
		From:          from,
		SourceChainID: hex.EncodeUint64(sourceChainID),
		DestChainID:   hex.EncodeUint64(destChainID),
		To:            to,
		TokenID:       tokenID,
		Amount:        hex.EncodeBig(amount),
	}

	var out string
	if err := c.client.Call("vault_deposit", &out, req); err != nil {
		return 0, err
	}

	return common.ParseUint64orHex(&out)
}

func (c *Client) ReleaseValue(
	ctx context.Context,
	sourceChainID uint64,
	destChainID uint64,
	to types.Address,
	tokenID types.Address,
	amount *big.Int,
) (*OperationReceipt, error) {
	return c.sendOperation(ctx, MethodReleaseValue, &ReleaseValueParams{
		SourceChainID: new(big.Int).SetUint64(sourceChainID),
		DestChainID:   new(big.Int).SetUint64(destChainID),
		To:            to,
		TokenID:       tokenID,
		Amount:        amount,
	})
}

func (c *Client) SendTokenToUser(
	ctx context.Context,
	tokenID types.Address,
	to types.Address,
	amount *big.Int,
) (*OperationReceipt, error) {
	return c.sendOperation(ctx, MethodSendTokenToUser, &SendTokenToUserParams{
		TokenID: tokenID,
		To:      to,
		Amount:  amount,
	})
}

func (c *Client) SequenceReceived(
	ctx context.Context,
	from types.Address,
	to types.Address,
	amount *big.Int,
) (*OperationReceipt, error) {
	return c.sendOperation(ctx, MethodSequenceReceived, &SequenceReceivedParams{
		From:   from,
		To:     to,
		Amount: amount,
	})
}

func (c *Client) SequenceAllocated(
	ctx context.Context,
	target types.Address,
	from types.Address,
	to types.Address,
	amount *big.Int,
	gasLimit uint64,
) (*OperationReceipt, error) {
	return c.sendOperation(ctx, MethodSequenceAllocated, &SequenceAllocatedParams{
		Target:   target,
		From:     from,
		To:       to,
		Amount:   amount,
		GasLimit: new(big.Int).SetUint64(gasLimit),
	})
}

func (c *Client) SetChainWhitelist(ctx context.Context, chainID uint64, allowed bool) (*OperationReceipt, error) {
	return c.sendOperation(ctx, MethodSetChainWhitelist, &SetChainWhitelistParams{
		ChainID: new(big.Int).SetUint64(chainID),
		Allowed: allowed,
	})
}

func (c *Client) SetTokenWhitelist(ctx context.Context, tokenID types.Address, allowed bool) (*OperationReceipt, error) {
	return c.sendOperation(ctx, MethodSetTokenWhitelist, &SetTokenWhitelistParams{
		TokenID: tokenID,
		Allowed: allowed,
	})
}

func (c *Client) SetMinTransferAmount(ctx context.Context, amount *big.Int) (*OperationReceipt, error) {
	return c.sendOperation(ctx, MethodSetMinTransferAmount, &SetMinTransferAmountParams{
		Amount: amount,
	})
}

func (c *Client) SetFeeRate(ctx context.Context, rate uint64) (*OperationReceipt, error) {
	return c.sendOperation(ctx, MethodSetFeeRate, &SetFeeRateParams{
		Rate: new(big.Int).SetUint64(rate),
	})
}

// OperationNonce returns the next envelope nonce the endpoint expects
// from the given signer
func (c *Client) OperationNonce(ctx context.Context, addr types.Address) (uint64, error) {
	var out string
	if err := c.callRetry(ctx, "vault_operationNonce", &out, addr); err != nil {
		return 0, err
	}

	return common.ParseUint64orHex(&out)
}

func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	var out string
	if err := c.callRetry(ctx, "vault_chainId", &out); err != nil {
		return 0, err
	}

	return common.ParseUint64orHex(&out)
}

// Relayer returns the address authorized for privileged operations
func (c *Client) Relayer(ctx context.Context) (types.Address, error) {
	var out types.Address
	if err := c.callRetry(ctx, "vault_relayer", &out); err != nil {
		return types.ZeroAddress, err
	}

	return out, nil
}

// EventCount returns the length of the event log
func (c *Client) EventCount(ctx context.Context) (uint64, error) {
	var out string
	if err := c.callRetry(ctx, "vault_getEventCount", &out); err != nil {
		return 0, err
	}

	return common.ParseUint64orHex(&out)
}

func (c *Client) Balance(ctx context.Context, chainID uint64, tokenID types.Address) (*big.Int, error) {
	var out string
	if err := c.callRetry(ctx, "vault_getBalance", &out, hex.EncodeUint64(chainID), tokenID); err != nil {
		return nil, err
	}

	return common.ParseUint256orHex(&out)
}

func (c *Client) Fees(ctx context.Context, chainID uint64) (*big.Int, error) {
	var out string
	if err := c.callRetry(ctx, "vault_getFees", &out, hex.EncodeUint64(chainID)); err != nil {
		return nil, err
	}

	return common.ParseUint256orHex(&out)
}

func (c *Client) MessageNonce(ctx context.Context) (uint64, error) {
	var out string
	if err := c.callRetry(ctx, "vault_messageNonce", &out); err != nil {
		return 0, err
	}

	return common.ParseUint64orHex(&out)
}

func (c *Client) MinTransferAmount(ctx context.Context) (*big.Int, error) {
	var out string
	if err := c.callRetry(ctx, "vault_minTransferAmount", &out); err != nil {
		return nil, err
	}

	return common.ParseUint256orHex(&out)
}

func (c *Client) FeeRate(ctx context.Context) (uint64, error) {
	var out string
	if err := c.callRetry(ctx, "vault_feeRate", &out); err != nil {
		return 0, err
	}

	return common.ParseUint64orHex(&out)
}

func (c *Client) IsChainAllowed(ctx context.Context, chainID uint64) (bool, error) {
	var out bool
	if err := c.callRetry(ctx, "vault_isChainAllowed", &out, hex.EncodeUint64(chainID)); err != nil {
		return false, err
	}

	return out, nil
}

func (c *Client) IsTokenAllowed(ctx context.Context, tokenID types.Address) (bool, error) {
	var out bool
	if err := c.callRetry(ctx, "vault_isTokenAllowed", &out, tokenID); err != nil {
		return false, err
	}

	return out, nil
}

// WaitEvent polls for a vault event until it is visible on the endpoint
// or the retry timeout elapses. The raw JSON form of the event is
// returned so callers can render it without re-decoding.
func (c *Client) WaitEvent(ctx context.Context, index uint64) (json.RawMessage, error) {
	var out json.RawMessage

	backoff := retry.WithMaxDuration(c.retryTimeout, retry.NewFibonacci(50*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		out = nil
		if err := c.client.Call("vault_getEvent", &out, hex.EncodeUint64(index)); err != nil {
			return retry.RetryableError(err)
		}

		if len(out) == 0 || string(out) == "null" {
			return retry.RetryableError(fmt.Errorf("event %d not found", index))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
