package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a customer ledger account. Balance is persisted as a scale-4
// numeric, never as a binary float. Version backs the optimistic-concurrency
// check on balance writes: it increments exactly once per committed mutation.
type Account struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	Balance   decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"balance"`
	Currency  string          `gorm:"type:varchar(3);not null" json:"currency"`
	Version   int64           `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
