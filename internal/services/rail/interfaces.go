package rail

import (
	"context"

	"github.com/shopspring/decimal"
)

// Settlement is one settlement instruction pushed to the external rail.
// The rail gives no richer guarantee than ok/failure; callers must treat
// every call as potentially failing.
type Settlement struct {
	Reference string
	Amount    decimal.Decimal
	Currency  string
}

// Client is the outbound payment-rail boundary.
type Client interface {
	SettlePayment(ctx context.Context, s Settlement) error
}
