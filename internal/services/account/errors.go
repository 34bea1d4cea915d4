package account

import "errors"

// Service errors
var (
	ErrNotFound       = errors.New("account not found")
	ErrInvalidAccount = errors.New("invalid account data")
)
