package repositories

import (
	"context"
	"errors"

	"paygate/internal/models"
)

var (
	ErrAccountNotFound         = errors.New("account not found")
	ErrVersionConflict         = errors.New("account version conflict")
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
)

// LedgerRepository is the persistence boundary for accounts and ledger
// entries. Concurrency control over balances is delegated entirely to the
// store: conditional writes on the version column, and a unique index on the
// idempotency key. No in-process locks are held around these calls.
type LedgerRepository interface {
	// Account operations
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByID(ctx context.Context, id uint) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	DeleteAccount(ctx context.Context, id uint) error

	// ExistsByIdempotencyKey reports whether a ledger entry with the given
	// key has already been committed.
	ExistsByIdempotencyKey(ctx context.Context, key string) (bool, error)

	// CommitTransfer persists both balance mutations and both ledger entries
	// as a single database transaction: either all four writes commit or
	// none do. Each account write is conditional on the version read
	// earlier; a lost race surfaces as ErrVersionConflict and a reused
	// idempotency key as ErrDuplicateIdempotencyKey.
	CommitTransfer(ctx context.Context, sender, receiver *models.Account, entries []*models.Transaction) error
}
