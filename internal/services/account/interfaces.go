package account

import (
	"context"
	"time"

	"paygate/internal/models"

	"github.com/shopspring/decimal"
)

// Service provisions and reads accounts. Transfers never go through here;
// this is thin plumbing around the ledger store.
type Service interface {
	Create(ctx context.Context, name string, balance decimal.Decimal, currency string) (*models.Account, error)
	Get(ctx context.Context, id uint) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	Delete(ctx context.Context, id uint) error
}

// Cache is the read-through cache used for account lookups.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	GenerateKey(entityType, keyType string, value interface{}) string
}
