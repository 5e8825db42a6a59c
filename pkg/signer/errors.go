package signer

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/zero-tech/zchain-bridge/pkg/indexer"
	"github.com/zero-tech/zchain-bridge/pkg/proofs"
)

// Kind classifies submission and claim failures into the closed set the
// flow surfaces to users. Raw provider errors are never shown directly.
type Kind int

const (
	KindUnknown Kind = iota
	// KindUserRejected means the wallet prompt was dismissed or denied
	KindUserRejected
	// KindInsufficientFunds means a balance or gas shortfall
	KindInsufficientFunds
	// KindExecutionReverted means the on-chain call failed
	KindExecutionReverted
	// KindNetwork means the RPC or indexer was unreachable
	KindNetwork
	// KindUnsupportedChain means the chain is not in the registry
	KindUnsupportedChain
	// KindSameChain means source and destination chains are equal
	KindSameChain
	// KindProofUnavailable means the claim proof could not be fetched
	KindProofUnavailable
	// KindWalletMismatch means the connected address differs from the
	// expected signer
	KindWalletMismatch
	// KindSignerBusy means another submission or claim is already in
	// flight through the shared signer
	KindSignerBusy
)

func (k Kind) String() string {
	switch k {
	case KindUserRejected:
		return "user_rejected"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindExecutionReverted:
		return "execution_reverted"
	case KindNetwork:
		return "network_error"
	case KindUnsupportedChain:
		return "unsupported_chain"
	case KindSameChain:
		return "same_chain"
	case KindProofUnavailable:
		return "proof_unavailable"
	case KindWalletMismatch:
		return "wallet_mismatch"
	case KindSignerBusy:
		return "signer_busy"
	default:
		return "unknown"
	}
}

// Message returns the short human-readable string shown to users
func (k Kind) Message() string {
	switch k {
	case KindUserRejected:
		return "Transaction was rejected in your wallet"
	case KindInsufficientFunds:
		return "Insufficient funds to complete this transaction"
	case KindExecutionReverted:
		return "Transaction failed on-chain"
	case KindUnsupportedChain:
		return "Unsupported network"
	case KindSameChain:
		return "Cannot bridge to the same chain"
	case KindProofUnavailable:
		return "Bridge proof is not available yet"
	case KindWalletMismatch:
		return "Connected wallet does not match the expected signer"
	case KindSignerBusy:
		return "Another transaction is already in progress"
	default:
		return "Something went wrong, please try again"
	}
}

// Error is a normalized submission or claim failure
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Kind.Message()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with the given kind
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the normalized kind from err, or KindUnknown
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// Normalize maps an arbitrary submission or claim error onto the closed
// kind set. Already-normalized errors pass through unchanged.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}

	var se *Error
	if errors.As(err, &se) {
		return se
	}

	if errors.Is(err, proofs.ErrProofUnavailable) {
		return NewError(KindProofUnavailable, err)
	}

	var apiErr *indexer.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusPaymentRequired:
			return NewError(KindInsufficientFunds, err)
		case apiErr.StatusCode >= http.StatusInternalServerError:
			return NewError(KindNetwork, err)
		default:
			return NewError(KindExecutionReverted, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewError(KindNetwork, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "user denied"),
		strings.Contains(msg, "user rejected"),
		strings.Contains(msg, "request rejected"):
		return NewError(KindUserRejected, err)
	case strings.Contains(msg, "insufficient funds"),
		strings.Contains(msg, "insufficient balance"):
		return NewError(KindInsufficientFunds, err)
	case strings.Contains(msg, "execution reverted"),
		strings.Contains(msg, "always failing transaction"),
		strings.Contains(msg, "receipt status 0"):
		return NewError(KindExecutionReverted, err)
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "eof"):
		return NewError(KindNetwork, err)
	default:
		return NewError(KindUnknown, err)
	}
}
