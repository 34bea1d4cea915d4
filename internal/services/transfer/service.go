package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"paygate/internal/models"
	"paygate/internal/repositories"
	"paygate/internal/services/rail"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type service struct {
	repo    repositories.LedgerRepository
	rail    rail.Client
	cache   CacheInvalidator
	log     *logrus.Logger
	metrics MetricsCollector
}

// NewService creates the transfer engine. The rail client is expected to be
// circuit-breaker wrapped already; the engine treats any rail error as the
// uniform unavailable outcome.
func NewService(
	repo repositories.LedgerRepository,
	railClient rail.Client,
	cache CacheInvalidator,
	log *logrus.Logger,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if railClient == nil {
		panic("rail client is required")
	}
	if log == nil {
		log = logrus.New()
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	return &service{
		repo:    repo,
		rail:    railClient,
		cache:   cache,
		log:     log,
		metrics: metrics,
	}
}

// Transfer validates the request, settles through the guarded rail, then
// commits both balance mutations and both ledger entries atomically.
// Validation fails fast: the first violated rule decides the error.
func (s *service) Transfer(ctx context.Context, req Request) (*Receipt, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordDuration("transfer", time.Since(start))
	}()

	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		return nil, s.reject("missing_key", fmt.Errorf("%w: idempotency key is required", ErrInvalidRequest))
	}

	// Fast path only. The unique index on the ledger is the real duplicate
	// guard; a race past this check is caught again at commit time.
	exists, err := s.repo.ExistsByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if exists {
		return nil, s.reject("duplicate", fmt.Errorf("%w: key %q already settled", ErrDuplicateRequest, key))
	}

	if !req.Amount.IsPositive() {
		return nil, s.reject("invalid_amount", fmt.Errorf("%w: amount must be greater than zero", ErrInvalidRequest))
	}

	if req.FromAccountID == req.ToAccountID {
		return nil, s.reject("self_transfer", fmt.Errorf("%w: sender and receiver must differ", ErrInvalidRequest))
	}

	sender, err := s.loadAccount(ctx, "sender", req.FromAccountID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.loadAccount(ctx, "receiver", req.ToAccountID)
	if err != nil {
		return nil, err
	}

	if sender.Currency != receiver.Currency {
		return nil, s.reject("currency_mismatch", fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, sender.Currency, receiver.Currency))
	}

	if sender.Balance.LessThan(req.Amount) {
		return nil, s.reject("insufficient_balance", fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientBalance, sender.Balance, req.Amount))
	}

	reference := uuid.NewString()
	settlement := rail.Settlement{
		Reference: reference,
		Amount:    req.Amount,
		Currency:  sender.Currency,
	}
	if err := s.rail.SettlePayment(ctx, settlement); err != nil {
		// Nothing has been written yet; the transfer aborts cleanly.
		return nil, s.reject("rail", fmt.Errorf("%w: %v", ErrExternalUnavailable, err))
	}

	sender.Balance = sender.Balance.Sub(req.Amount)
	receiver.Balance = receiver.Balance.Add(req.Amount)

	now := time.Now().UTC()
	entries := []*models.Transaction{
		{
			AccountID:      sender.ID,
			Amount:         req.Amount,
			EntryType:      models.EntryTypeDebit,
			Timestamp:      now,
			IdempotencyKey: key,
			Reference:      reference,
		},
		{
			AccountID:      receiver.ID,
			Amount:         req.Amount,
			EntryType:      models.EntryTypeCredit,
			Timestamp:      now,
			IdempotencyKey: key + CreditKeySuffix,
			Reference:      reference,
		},
	}

	if err := s.repo.CommitTransfer(ctx, sender, receiver, entries); err != nil {
		switch {
		case errors.Is(err, repositories.ErrVersionConflict):
			// Someone else committed first. No automatic retry here: the
			// caller re-submits and the idempotency check absorbs it if the
			// first attempt actually went through.
			return nil, s.reject("version_conflict", fmt.Errorf("%w: please retry", ErrConcurrentModification))
		case errors.Is(err, repositories.ErrDuplicateIdempotencyKey):
			return nil, s.reject("duplicate", fmt.Errorf("%w: key %q already settled", ErrDuplicateRequest, key))
		default:
			return nil, s.reject("commit", fmt.Errorf("%w: %v", ErrTransferAborted, err))
		}
	}

	s.invalidateAccounts(ctx, sender.ID, receiver.ID)

	s.log.WithFields(logrus.Fields{
		"reference": reference,
		"from":      sender.ID,
		"to":        receiver.ID,
		"amount":    req.Amount.String(),
		"currency":  sender.Currency,
	}).Info("transfer committed")
	s.metrics.RecordTransfer("success", req.Amount)

	return &Receipt{
		Reference:       reference,
		DebitKey:        key,
		CreditKey:       key + CreditKeySuffix,
		SenderBalance:   sender.Balance,
		ReceiverBalance: receiver.Balance,
	}, nil
}

func (s *service) loadAccount(ctx context.Context, side string, id uint) (*models.Account, error) {
	account, err := s.repo.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, s.reject("account_not_found", fmt.Errorf("%w: %s account %d", ErrAccountNotFound, side, id))
		}
		return nil, fmt.Errorf("failed to load %s account %d: %w", side, id, err)
	}
	return account, nil
}

func (s *service) reject(errType string, err error) error {
	s.metrics.RecordError("transfer", errType)
	return err
}

func (s *service) invalidateAccounts(ctx context.Context, ids ...uint) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.cache.GenerateKey("account", "id", id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.WithError(err).Warn("failed to invalidate account cache")
	}
}
