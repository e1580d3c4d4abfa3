package usecase

import (
	"context"
	"time"

	"github.com/corebank-io/corebank/internal/domain"
)

// StatementUseCase reads the append-only transaction log for customer-facing
// statements and history.
type StatementUseCase struct {
	accountRepo AccountRepository
	logRepo     TransactionLogRepository
}

// NewStatementUseCase creates a new StatementUseCase.
func NewStatementUseCase(accountRepo AccountRepository, logRepo TransactionLogRepository) *StatementUseCase {
	return &StatementUseCase{
		accountRepo: accountRepo,
		logRepo:     logRepo,
	}
}

// ListTransactions lists an account's log entries, newest first.
func (uc *StatementUseCase) ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]*domain.TransactionLogEntry, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	limit, offset, _ = domain.ValidatePagination(limit, offset)

	return uc.logRepo.ListByAccount(ctx, accountID, limit, offset)
}

// ListTransactionsByRange lists an account's log entries within a date range.
func (uc *StatementUseCase) ListTransactionsByRange(ctx context.Context, accountID string, from, to time.Time, limit, offset int) ([]*domain.TransactionLogEntry, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	limit, offset, _ = domain.ValidatePagination(limit, offset)

	return uc.logRepo.ListByAccountAndRange(ctx, accountID, from, to, limit, offset)
}

// GetTransactionByReference looks up the log entry recorded for an operation
// reference id.
func (uc *StatementUseCase) GetTransactionByReference(ctx context.Context, referenceID string) (*domain.TransactionLogEntry, error) {
	return uc.logRepo.GetByReference(ctx, referenceID)
}
