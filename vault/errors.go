package vault

import "errors"

// Operation errors. Every failed operation returns exactly one of these,
// possibly wrapped with call context, and leaves both the in-memory and
// the durable state untouched.
var (
	ErrUnauthorized         = errors.New("caller is not the authorized relayer")
	ErrSourceChainMismatch  = errors.New("source chain is not the local chain")
	ErrDestChainMismatch    = errors.New("destination chain is not the local chain")
	ErrChainNotAllowed      = errors.New("chain is not whitelisted")
	ErrTokenNotAllowed      = errors.New("token is not whitelisted")
	ErrAmountTooLow         = errors.New("amount is below the minimum transfer amount")
	ErrInvalidAmount        = errors.New("invalid transfer amount")
	ErrInsufficientFunds    = errors.New("insufficient funds in the funding pool")
	ErrInsufficientHoldings = errors.New("insufficient held balance in custody")
	ErrForwardingFailed     = errors.New("message forwarding failed")
	ErrReentrantCall        = errors.New("reentrant call rejected")
)
