// Package errors defines the marketplace error taxonomy. Every operation
// either succeeds completely or surfaces one of these errors with no partial
// effects; callers match with errors.Is / errors.As.
package errors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnauthorized is returned when the caller is not the item owner or
	// the configured admin.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when a referenced item id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrWrongInput is returned for structurally invalid requests: empty
	// batches, malformed addresses, a fee rate above the limit.
	ErrWrongInput = errors.New("wrong input")

	// ErrInvalidTokenType is returned when both or neither of the native
	// and token-asset payment forms are configured.
	ErrInvalidTokenType = errors.New("no support for token and native assets simultaneously")

	// ErrAssetNotSupported is returned when a token-asset payment arrives
	// but no token asset is configured at all.
	ErrAssetNotSupported = errors.New("the marketplace does not support token-asset payments")

	// ErrSendSingleNative is returned when a native purchase attaches zero
	// or more than one denomination.
	ErrSendSingleNative = errors.New("send a single native token type")

	// ErrNotOnSale is returned when a purchase targets a delisted item.
	ErrNotOnSale = errors.New("nft not on sale")

	// ErrOverflow is returned when fee or payout arithmetic leaves the
	// representable range.
	ErrOverflow = errors.New("amount overflow")
)

// NativeDenomNotAllowedError reports a native purchase paid in a denom other
// than the configured one.
type NativeDenomNotAllowedError struct {
	Denom string
}

func (e *NativeDenomNotAllowedError) Error() string {
	return fmt.Sprintf("native token not in allowed list: %s", e.Denom)
}

// AssetNotAllowedError reports a token-asset payment from a ledger other than
// the configured one.
type AssetNotAllowedError struct {
	Sent string
	Need string
}

func (e *AssetNotAllowedError) Error() string {
	return fmt.Sprintf("this token asset is not allowed (sent: %s, allowed: %s)", e.Sent, e.Need)
}

// WrongFundsAmountError reports an exact-amount mismatch in either direction.
type WrongFundsAmountError struct {
	Need decimal.Decimal
	Sent decimal.Decimal
}

func (e *WrongFundsAmountError) Error() string {
	return fmt.Sprintf("sent wrong amount of funds, need: %s sent: %s", e.Need, e.Sent)
}

// Is delegates to the stdlib so call sites need a single import.
func Is(err, target error) bool { return errors.Is(err, target) }

// As delegates to the stdlib so call sites need a single import.
func As(err error, target any) bool { return errors.As(err, target) }
