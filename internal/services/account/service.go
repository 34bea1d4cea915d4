package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"paygate/internal/models"
	"paygate/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type service struct {
	repo  repositories.LedgerRepository
	cache Cache
	log   *logrus.Logger
}

// NewService creates a new account service. Cache may be nil.
func NewService(repo repositories.LedgerRepository, cache Cache, log *logrus.Logger) Service {
	if repo == nil {
		panic("repo is required")
	}
	if log == nil {
		log = logrus.New()
	}
	return &service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func (s *service) Create(ctx context.Context, name string, balance decimal.Decimal, currency string) (*models.Account, error) {
	name = strings.TrimSpace(name)
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidAccount)
	}
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidAccount)
	}
	if balance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance cannot be negative", ErrInvalidAccount)
	}

	account := &models.Account{
		Name:     name,
		Balance:  balance,
		Currency: currency,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"account_id": account.ID,
		"currency":   account.Currency,
	}).Info("account created")
	return account, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Account, error) {
	if s.cache != nil {
		var cached models.Account
		key := s.cache.GenerateKey("account", "id", id)
		if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	account, err := s.repo.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if s.cache != nil {
		key := s.cache.GenerateKey("account", "id", id)
		if err := s.cache.Set(ctx, key, account); err != nil {
			s.log.WithError(err).Warn("failed to cache account")
		}
	}
	return account, nil
}

func (s *service) List(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.DeleteAccount(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if s.cache != nil {
		key := s.cache.GenerateKey("account", "id", id)
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.WithError(err).Warn("failed to invalidate account cache")
		}
	}

	s.log.WithField("account_id", id).Info("account deleted")
	return nil
}
