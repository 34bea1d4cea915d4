package transfer

import "context"

// Service moves funds between two accounts under the engine's guarantees:
// no duplicate execution of the same logical request, no partial
// application, no negative balances.
type Service interface {
	Transfer(ctx context.Context, req Request) (*Receipt, error)
}
