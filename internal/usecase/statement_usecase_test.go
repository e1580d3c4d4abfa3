package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/usecase"
	"github.com/corebank-io/corebank/internal/usecase/mocks"
)

func seedStatementFixtures(t *testing.T, accountRepo *mocks.MockAccountRepository, logRepo *mocks.MockTransactionLogRepository) {
	t.Helper()

	accountRepo.Put(&domain.Account{
		ID:         "acc-1",
		CustomerID: "cust-1",
		Currency:   "USD",
		Type:       domain.AccountTypeCustomer,
		Status:     domain.AccountStatusActive,
	})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, ref := range []string{"ref-1", "ref-2", "ref-3"} {
		err := logRepo.Create(context.Background(), nil, &domain.TransactionLogEntry{
			ID:           ref + "-entry",
			AccountID:    "acc-1",
			Type:         domain.EntryTypeCredit,
			Amount:       decimal.RequireFromString("10.00"),
			Currency:     "USD",
			BalanceAfter: decimal.RequireFromString("10.00"),
			Timestamp:    base.Add(time.Duration(i) * 24 * time.Hour),
			ReferenceID:  ref,
		})
		require.NoError(t, err)
	}
}

func TestStatement_ListTransactions(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	logRepo := mocks.NewMockTransactionLogRepository()
	seedStatementFixtures(t, accountRepo, logRepo)

	uc := usecase.NewStatementUseCase(accountRepo, logRepo)

	entries, err := uc.ListTransactions(context.Background(), "acc-1", 20, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestStatement_ListTransactionsUnknownAccount(t *testing.T) {
	uc := usecase.NewStatementUseCase(mocks.NewMockAccountRepository(), mocks.NewMockTransactionLogRepository())

	_, err := uc.ListTransactions(context.Background(), "missing", 20, 0)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestStatement_ListTransactionsByRange(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	logRepo := mocks.NewMockTransactionLogRepository()
	seedStatementFixtures(t, accountRepo, logRepo)

	uc := usecase.NewStatementUseCase(accountRepo, logRepo)

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 2, 23, 59, 59, 0, time.UTC)

	entries, err := uc.ListTransactionsByRange(context.Background(), "acc-1", from, to, 20, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ref-2", entries[0].ReferenceID)
}

func TestStatement_GetTransactionByReference(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	logRepo := mocks.NewMockTransactionLogRepository()
	seedStatementFixtures(t, accountRepo, logRepo)

	uc := usecase.NewStatementUseCase(accountRepo, logRepo)

	entry, err := uc.GetTransactionByReference(context.Background(), "ref-2")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", entry.AccountID)

	_, err = uc.GetTransactionByReference(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrEntryNotFound)
}
