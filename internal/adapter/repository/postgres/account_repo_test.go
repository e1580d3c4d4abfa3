package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/usecase"
)

func beginTx(t *testing.T, pool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	return tx
}

func TestAccountUpdateBalancesVersionConflict(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("UPDATE accounts").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx := beginTx(t, mockPool)

	repo := &AccountRepository{}
	account := &domain.Account{
		ID:               "acc-1",
		CurrentBalance:   decimal.RequireFromString("10.00"),
		AvailableBalance: decimal.RequireFromString("10.00"),
		UpdatedAt:        time.Now().UTC(),
	}

	err := repo.UpdateBalances(context.Background(), tx, account, 3)
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestAccountUpdateBalancesSuccess(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("UPDATE accounts").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx := beginTx(t, mockPool)

	repo := &AccountRepository{}
	account := &domain.Account{
		ID:               "acc-1",
		CurrentBalance:   decimal.RequireFromString("10.00"),
		AvailableBalance: decimal.RequireFromString("10.00"),
		UpdatedAt:        time.Now().UTC(),
	}

	if err := repo.UpdateBalances(context.Background(), tx, account, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestTransactionLogCreateDuplicateReference(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO transaction_log").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	tx := beginTx(t, mockPool)

	repo := &TransactionLogRepository{}
	err := repo.Create(context.Background(), tx, &domain.TransactionLogEntry{
		ID:          "log-1",
		AccountID:   "acc-1",
		Type:        domain.EntryTypeCredit,
		Amount:      decimal.RequireFromString("5.00"),
		Currency:    "USD",
		Timestamp:   time.Now().UTC(),
		ReferenceID: "ref-1",
	})
	if !errors.Is(err, domain.ErrDuplicateOperation) {
		t.Fatalf("expected duplicate operation, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestDecimalNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "0.01", "123.45", "-7.50", "1000000000000"} {
		d := decimal.RequireFromString(s)
		got := numericToDecimal(decimalToNumeric(d))
		if !got.Equal(d) {
			t.Fatalf("round trip of %s gave %s", s, got)
		}
	}
}
