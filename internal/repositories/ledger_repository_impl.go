package repositories

import (
	"context"
	"errors"
	"fmt"

	"paygate/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{
		db: db,
	}
}

func (r *ledgerRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetAccountByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	return &account, nil
}

func (r *ledgerRepository) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).Order("id").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (r *ledgerRepository) DeleteAccount(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Account{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete account %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *ledgerRepository) ExistsByIdempotencyKey(ctx context.Context, key string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("idempotency_key = ?", key).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	return count > 0, nil
}

func (r *ledgerRepository) CommitTransfer(ctx context.Context, sender, receiver *models.Account, entries []*models.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, account := range []*models.Account{sender, receiver} {
			result := tx.Model(&models.Account{}).
				Where("id = ? AND version = ?", account.ID, account.Version).
				Updates(map[string]interface{}{
					"balance": account.Balance,
					"version": account.Version + 1,
				})
			if result.Error != nil {
				return fmt.Errorf("failed to update account %d: %w", account.ID, result.Error)
			}
			// Zero rows means someone committed a newer version since the
			// read. Never overwrite it; the caller decides whether to retry.
			if result.RowsAffected == 0 {
				return ErrVersionConflict
			}
		}

		for _, entry := range entries {
			if err := tx.Create(entry).Error; err != nil {
				if isUniqueViolation(err) {
					return ErrDuplicateIdempotencyKey
				}
				return fmt.Errorf("failed to append ledger entry: %w", err)
			}
		}

		return nil
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
