package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger entry types
const (
	EntryTypeDebit  = "DEBIT"
	EntryTypeCredit = "CREDIT"
)

// Transaction is one immutable ledger entry: a single account-side effect of
// a transfer. Entries are append-only and never mutated or deleted.
//
// The unique index on IdempotencyKey is the real duplicate-settlement guard;
// any existence pre-check in the service layer is only a fast path.
// Reference correlates the DEBIT/CREDIT pair written by one transfer.
type Transaction struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	AccountID      uint            `gorm:"not null;index" json:"account_id"`
	Amount         decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"amount"`
	EntryType      string          `gorm:"type:varchar(6);not null" json:"entry_type"`
	Timestamp      time.Time       `gorm:"not null" json:"timestamp"`
	IdempotencyKey string          `gorm:"uniqueIndex;not null" json:"idempotency_key"`
	Reference      string          `gorm:"index" json:"reference"`
	CreatedAt      time.Time       `json:"created_at"`
}
