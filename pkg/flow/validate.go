package flow

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ValidationCode identifies why an amount/token selection was rejected
type ValidationCode string

const (
	CodeNoFromToken         ValidationCode = "NO_FROM_TOKEN"
	CodeNoToToken           ValidationCode = "NO_TO_TOKEN"
	CodeSameChain           ValidationCode = "SAME_CHAIN"
	CodeInvalidAmount       ValidationCode = "INVALID_AMOUNT"
	CodeNoTokenAddress      ValidationCode = "NO_TOKEN_ADDRESS"
	CodeInsufficientBalance ValidationCode = "INSUFFICIENT_BALANCE"
)

var validationMessages = map[ValidationCode]string{
	CodeNoFromToken:         "Please select a token to bridge",
	CodeNoToToken:           "Error fetching bridge counterpart token information",
	CodeSameChain:           "Cannot bridge to the same chain",
	CodeInvalidAmount:       "Please enter a valid amount greater than 0",
	CodeNoTokenAddress:      "Token address is required",
	CodeInsufficientBalance: "You do not have a balance for the selected token",
}

// ValidationError blocks a step transition without contacting the network
type ValidationError struct {
	Code ValidationCode
}

func (e *ValidationError) Error() string {
	if msg, ok := validationMessages[e.Code]; ok {
		return msg
	}
	return string(e.Code)
}

func newValidationError(code ValidationCode) *ValidationError {
	return &ValidationError{Code: code}
}

// ParseAmount converts a user-entered decimal string into the token's
// integer base units. Comparisons against balances happen on the returned
// big.Int, never in floating point.
func ParseAmount(amount string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	if d.Sign() <= 0 {
		return nil, newValidationError(CodeInvalidAmount)
	}
	return d.Shift(int32(decimals)).BigInt(), nil
}

// validateAmount checks the entered amount against the wallet's base-unit
// balance. Both sides are integers in the token's base units.
func validateAmount(amountBase, balanceBase *big.Int) error {
	if amountBase == nil || amountBase.Sign() <= 0 {
		return newValidationError(CodeInvalidAmount)
	}
	if balanceBase == nil || amountBase.Cmp(balanceBase) > 0 {
		return newValidationError(CodeInsufficientBalance)
	}
	return nil
}
