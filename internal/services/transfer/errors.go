package transfer

import "errors"

// Engine error kinds. Every failure path returns exactly one of these,
// usually wrapped with detail; callers match with errors.Is and decide
// transport status and retry policy. The engine itself never retries.
var (
	ErrInvalidRequest         = errors.New("invalid transfer request")
	ErrDuplicateRequest       = errors.New("duplicate transfer request")
	ErrAccountNotFound        = errors.New("account not found")
	ErrCurrencyMismatch       = errors.New("currency mismatch between accounts")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrExternalUnavailable    = errors.New("external settlement unavailable")
	ErrTransferAborted        = errors.New("transfer aborted")
)
