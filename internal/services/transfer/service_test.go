package transfer

import (
	"context"
	"errors"
	"io"
	"testing"

	"paygate/internal/models"
	"paygate/internal/repositories"
	"paygate/internal/services/rail"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepo struct {
	mock.Mock
}

type MockRail struct {
	mock.Mock
}

type MockCache struct {
	mock.Mock
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func inr(balance int64) decimal.Decimal {
	return decimal.NewFromInt(balance)
}

func sender() *models.Account {
	return &models.Account{ID: 1, Name: "Alice", Balance: inr(1000), Currency: "INR", Version: 3}
}

func receiver() *models.Account {
	return &models.Account{ID: 2, Name: "Bob", Balance: inr(500), Currency: "INR", Version: 7}
}

func TestTransfer_Success(t *testing.T) {
	repo := new(MockRepo)
	railClient := new(MockRail)

	repo.On("ExistsByIdempotencyKey", mock.Anything, "k1").Return(false, nil)
	repo.On("GetAccountByID", mock.Anything, uint(1)).Return(sender(), nil)
	repo.On("GetAccountByID", mock.Anything, uint(2)).Return(receiver(), nil)
	railClient.On("SettlePayment", mock.Anything, mock.Anything).Return(nil)

	var committedSender, committedReceiver *models.Account
	var committedEntries []*models.Transaction
	repo.On("CommitTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			committedSender = args.Get(1).(*models.Account)
			committedReceiver = args.Get(2).(*models.Account)
			committedEntries = args.Get(3).([]*models.Transaction)
		}).
		Return(nil)

	s := NewService(repo, railClient, nil, testLogger(), nil)
	receipt, err := s.Transfer(context.Background(), Request{
		FromAccountID:  1,
		ToAccountID:    2,
		Amount:         inr(100),
		IdempotencyKey: "k1",
	})

	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, "k1", receipt.DebitKey)
	assert.Equal(t, "k1-CREDIT", receipt.CreditKey)
	assert.NotEmpty(t, receipt.Reference)
	assert.True(t, receipt.SenderBalance.Equal(inr(900)))
	assert.True(t, receipt.ReceiverBalance.Equal(inr(600)))

	require.NotNil(t, committedSender)
	assert.True(t, committedSender.Balance.Equal(inr(900)))
	assert.True(t, committedReceiver.Balance.Equal(inr(600)))

	require.Len(t, committedEntries, 2)
	debit, credit := committedEntries[0], committedEntries[1]
	assert.Equal(t, models.EntryTypeDebit, debit.EntryType)
	assert.Equal(t, uint(1), debit.AccountID)
	assert.True(t, debit.Amount.Equal(inr(100)))
	assert.Equal(t, "k1", debit.IdempotencyKey)
	assert.Equal(t, models.EntryTypeCredit, credit.EntryType)
	assert.Equal(t, uint(2), credit.AccountID)
	assert.True(t, credit.Amount.Equal(inr(100)))
	assert.Equal(t, "k1-CREDIT", credit.IdempotencyKey)
	assert.Equal(t, debit.Reference, credit.Reference)
	assert.Equal(t, receipt.Reference, debit.Reference)

	repo.AssertExpectations(t)
	railClient.AssertExpectations(t)
}

func TestTransfer_TotalBalancePreserved(t *testing.T) {
	repo := new(MockRepo)
	railClient := new(MockRail)

	before := sender().Balance.Add(receiver().Balance)

	repo.On("ExistsByIdempotencyKey", mock.Anything, "k1").Return(false, nil)
	repo.On("GetAccountByID", mock.Anything, uint(1)).Return(sender(), nil)
	repo.On("GetAccountByID", mock.Anything, uint(2)).Return(receiver(), nil)
	railClient.On("SettlePayment", mock.Anything, mock.Anything).Return(nil)
	repo.On("CommitTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	s := NewService(repo, railClient, nil, testLogger(), nil)
	receipt, err := s.Transfer(context.Background(), Request{
		FromAccountID:  1,
		ToAccountID:    2,
		Amount:         decimal.RequireFromString("123.4567"),
		IdempotencyKey: "k1",
	})

	require.NoError(t, err)
	after := receipt.SenderBalance.Add(receipt.ReceiverBalance)
	assert.True(t, before.Equal(after), "transfer must not create or destroy funds")
}

func TestTransfer_ValidationFailures(t *testing.T) {
	tests := []struct {
		name      string
		req       Request
		setupMock func(*MockRepo, *MockRail)
		wantErr   error
	}{
		{
			name: "missing idempotency key",
			req:  Request{FromAccountID: 1, ToAccountID: 2, Amount: inr(100), IdempotencyKey: "   "},
			setupMock: func(repo *MockRepo, railClient *MockRail) {
				// Key check precedes everything, including the duplicate lookup.
			},
			wantErr: ErrInvalidRequest,
		},
		{
			name: "duplicate key on pre-check",
			req:  Request{FromAccountID: 1, ToAccountID: 2, Amount: inr(100), IdempotencyKey: "k1"},
			setupMock: func(repo *MockRepo, railClient *MockRail) {
				repo.On("ExistsByIdempotencyKey", mock.Anything, "k1").Return(true, nil)
			},
			wantErr: ErrDuplicateRequest,
		},
		{
			name: "zero amount",
			req:  Request{FromAccountID: 1, ToAccountID: 2, Amount: decimal.Zero, IdempotencyKey: "k1"},
			setupMock: func(repo *MockRepo, railClient *MockRail) {
				repo.On("ExistsByIdempotencyKey", mock.Anything, "k1").Return(false, nil)
			},
			wantErr: ErrInvalidRequest,
		},
		{
			name: "negative amount",
			req:  Request{FromAccountID: 1, ToAccountID: 2, Amount: inr(-5), IdempotencyKey: "k1"},
			setupMock: func(repo *MockRepo, railClient *MockRail) {
				repo.On("ExistsByIdempotencyKey", mock.Anything, "k1").Return(false, nil)
			},
			wantErr: ErrInvalidRequest,
		},
		{
			name: "sender equals receiver",
			req:  Request{FromAccountID: 1, ToAccountID: 1, Amount: inr(100), IdempotencyKey: "k1"},
			setupMock: func(repo *MockRepo, railClient *MockRail) {
				repo.On("ExistsByIdempotencyKey", mock.Anything, "k1").Return(false, nil)
			},
			wantErr: ErrInvalidRequest,
		},
		{
			name: "sender missing, reported before receiver",
			req:  Request{FromAccountID: 9, ToAccountID: 2, Amount: inr(100), IdempotencyKey: "k1"},
			setupMock: func(repo *MockRepo, railClient *MockRail) {
				repo.On("ExistsByIdempotencyKey", mock.Anything, "k1").Return(false, nil)
				repo.On("GetAccountByID", mock.Anything, uint(9)).Return(nil, repositories.ErrAccountNotFound)
			},
			wantErr: ErrAccountNotFound,
		},
		{
			name: "receiver missing",
			req:  Request{FromAccountID: 1, ToAccountID: 9, Amount: inr(100), IdempotencyKey: "k1"},
			setupMock: func(repo *MockRepo, railClient *MockRail) {
				repo.On("ExistsByIdempotencyKey", mock.Anything, "k1").Return(false, nil)
				repo.On("GetAccountByID", mock.Anything, uint(1)).Return(sender(), nil)
				repo.On("GetAccountByID", mock.Anything, uint(9)).Return(nil, repositories.ErrAccountNotFound)
			},
			wantErr: ErrAccountNotFound,
		},
		{
			name: "currency mismatch",
			req:  Request{FromAccountID: 1, ToAccountID: 2, Amount: inr(100), IdempotencyKey: "k1"},
			setupMock: func(repo *MockRepo, railClient *MockRail) {
				usd := receiver()
				usd.Currency = "USD"
				repo.On("ExistsByIdempotencyKey", mock.Anything, "k1").Return(false, nil)
				repo.On("GetAccountByID", mock.Anything, uint(1)).Return(sender(), nil)
				repo.On("GetAccountByID", mock.Anything, uint(2)).Return(usd, nil)
			},
			wantErr: ErrCurrencyMismatch,
		},
		{
			name: "insufficient balance",
			req:  Request{FromAccountID: 1, ToAccountID: 2, Amount: inr(2000), IdempotencyKey: "k1"},
			setupMock: func(repo *MockRepo, railClient *MockRail) {
				repo.On("ExistsByIdempotencyKey", mock.Anything, "k1").Return(false, nil)
				repo.On("GetAccountByID", mock.Anything, uint(1)).Return(sender(), nil)
				repo.On("GetAccountByID", mock.Anything, uint(2)).Return(receiver(), nil)
			},
			wantErr: ErrInsufficientBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepo)
			railClient := new(MockRail)
			tt.setupMock(repo, railClient)

			s := NewService(repo, railClient, nil, testLogger(), nil)
			receipt, err := s.Transfer(context.Background(), tt.req)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, receipt)

			// No failed validation may touch the rail or the ledger.
			railClient.AssertNotCalled(t, "SettlePayment", mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "CommitTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			repo.AssertExpectations(t)
		})
	}
}

func TestTransfer_RailFailureAbortsBeforeAnyWrite(t *testing.T) {
	repo := new(MockRepo)
	railClient := new(MockRail)

	repo.On("ExistsByIdempotencyKey", mock.Anything, "k1").Return(false, nil)
	repo.On("GetAccountByID", mock.Anything, uint(1)).Return(sender(), nil)
	repo.On("GetAccountByID", mock.Anything, uint(2)).Return(receiver(), nil)
	railClient.On("SettlePayment", mock.Anything, mock.Anything).Return(rail.ErrUnavailable)

	s := NewService(repo, railClient, nil, testLogger(), nil)
	receipt, err := s.Transfer(context.Background(), Request{
		FromAccountID:  1,
		ToAccountID:    2,
		Amount:         inr(100),
		IdempotencyKey: "k1",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExternalUnavailable)
	assert.Nil(t, receipt)
	repo.AssertNotCalled(t, "CommitTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransfer_CommitFailures(t *testing.T) {
	tests := []struct {
		name      string
		commitErr error
		wantErr   error
	}{
		{
			name:      "version conflict is surfaced, never retried",
			commitErr: repositories.ErrVersionConflict,
			wantErr:   ErrConcurrentModification,
		},
		{
			name:      "duplicate key at commit wins over the stale pre-check",
			commitErr: repositories.ErrDuplicateIdempotencyKey,
			wantErr:   ErrDuplicateRequest,
		},
		{
			name:      "any other commit failure aborts the transfer",
			commitErr: errors.New("connection reset"),
			wantErr:   ErrTransferAborted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepo)
			railClient := new(MockRail)

			repo.On("ExistsByIdempotencyKey", mock.Anything, "k1").Return(false, nil)
			repo.On("GetAccountByID", mock.Anything, uint(1)).Return(sender(), nil)
			repo.On("GetAccountByID", mock.Anything, uint(2)).Return(receiver(), nil)
			railClient.On("SettlePayment", mock.Anything, mock.Anything).Return(nil)
			repo.On("CommitTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tt.commitErr)

			s := NewService(repo, railClient, nil, testLogger(), nil)
			receipt, err := s.Transfer(context.Background(), Request{
				FromAccountID:  1,
				ToAccountID:    2,
				Amount:         inr(100),
				IdempotencyKey: "k1",
			})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, receipt)

			// The commit was attempted exactly once.
			repo.AssertNumberOfCalls(t, "CommitTransfer", 1)
		})
	}
}

func TestTransfer_SettlementCarriesAmountAndCurrency(t *testing.T) {
	repo := new(MockRepo)
	railClient := new(MockRail)

	repo.On("ExistsByIdempotencyKey", mock.Anything, "k1").Return(false, nil)
	repo.On("GetAccountByID", mock.Anything, uint(1)).Return(sender(), nil)
	repo.On("GetAccountByID", mock.Anything, uint(2)).Return(receiver(), nil)
	railClient.On("SettlePayment", mock.Anything, mock.MatchedBy(func(s rail.Settlement) bool {
		return s.Amount.Equal(inr(100)) && s.Currency == "INR" && s.Reference != ""
	})).Return(nil)
	repo.On("CommitTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	s := NewService(repo, railClient, nil, testLogger(), nil)
	_, err := s.Transfer(context.Background(), Request{
		FromAccountID:  1,
		ToAccountID:    2,
		Amount:         inr(100),
		IdempotencyKey: "k1",
	})

	require.NoError(t, err)
	railClient.AssertExpectations(t)
}

func TestTransfer_CacheInvalidatedAfterCommit(t *testing.T) {
	repo := new(MockRepo)
	railClient := new(MockRail)
	cache := new(MockCache)

	repo.On("ExistsByIdempotencyKey", mock.Anything, "k1").Return(false, nil)
	repo.On("GetAccountByID", mock.Anything, uint(1)).Return(sender(), nil)
	repo.On("GetAccountByID", mock.Anything, uint(2)).Return(receiver(), nil)
	railClient.On("SettlePayment", mock.Anything, mock.Anything).Return(nil)
	repo.On("CommitTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	cache.On("GenerateKey", "account", "id", uint(1)).Return("account:id:1")
	cache.On("GenerateKey", "account", "id", uint(2)).Return("account:id:2")
	cache.On("Delete", mock.Anything, []string{"account:id:1", "account:id:2"}).Return(nil)

	s := NewService(repo, railClient, cache, testLogger(), nil)
	_, err := s.Transfer(context.Background(), Request{
		FromAccountID:  1,
		ToAccountID:    2,
		Amount:         inr(100),
		IdempotencyKey: "k1",
	})

	require.NoError(t, err)
	cache.AssertExpectations(t)
}

// Mock implementations

func (m *MockRepo) CreateAccount(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockRepo) GetAccountByID(ctx context.Context, id uint) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockRepo) ListAccounts(ctx context.Context) ([]models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockRepo) DeleteAccount(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepo) ExistsByIdempotencyKey(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepo) CommitTransfer(ctx context.Context, sender, receiver *models.Account, entries []*models.Transaction) error {
	args := m.Called(ctx, sender, receiver, entries)
	return args.Error(0)
}

func (m *MockRail) SettlePayment(ctx context.Context, s rail.Settlement) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockCache) GenerateKey(entityType, keyType string, value interface{}) string {
	args := m.Called(entityType, keyType, value)
	return args.String(0)
}
