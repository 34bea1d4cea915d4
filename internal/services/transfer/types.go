package transfer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CreditKeySuffix derives the CREDIT entry's idempotency key from the DEBIT
// key, keeping the pair traceable while each key stays individually unique.
const CreditKeySuffix = "-CREDIT"

// Request is one transfer submission. It is consumed once per call and
// never persisted as-is.
type Request struct {
	FromAccountID  uint
	ToAccountID    uint
	Amount         decimal.Decimal
	IdempotencyKey string
}

// Receipt describes a committed transfer.
type Receipt struct {
	Reference       string          `json:"reference"`
	DebitKey        string          `json:"debit_key"`
	CreditKey       string          `json:"credit_key"`
	SenderBalance   decimal.Decimal `json:"sender_balance"`
	ReceiverBalance decimal.Decimal `json:"receiver_balance"`
}

// MetricsCollector defines the metrics hooks the engine emits into.
type MetricsCollector interface {
	RecordTransfer(result string, amount decimal.Decimal)
	RecordDuration(operation string, duration time.Duration)
	RecordError(operation, errType string)
}

// CacheInvalidator clears cached account state after a commit.
type CacheInvalidator interface {
	Delete(ctx context.Context, keys ...string) error
	GenerateKey(entityType, keyType string, value interface{}) string
}
