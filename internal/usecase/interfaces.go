package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank-io/corebank/internal/domain"
)

// AccountRepository defines data access for ledger accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	// UpdateBalances writes both balances, the transaction timestamp, and
	// bumps the version. The write is guarded by expectedVersion; a stale
	// version yields domain.ErrVersionConflict.
	UpdateBalances(ctx context.Context, tx Transaction, account *domain.Account, expectedVersion int64) error
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// CustomerRepository defines data access for account holders.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetSystemCustomer(ctx context.Context) (*domain.Customer, error)
}

// TransferRepository defines data access for transfers.
type TransferRepository interface {
	// Create persists a transfer in its own unit of work so that a PENDING
	// or FAILED record survives later failures.
	Create(ctx context.Context, transfer *domain.Transfer) error
	CreateTx(ctx context.Context, tx Transaction, transfer *domain.Transfer) error
	GetByID(ctx context.Context, id string) (*domain.Transfer, error)
	UpdateStatus(ctx context.Context, id string, status domain.TransferStatus, failureReason string, updatedAt time.Time) error
	UpdateStatusTx(ctx context.Context, tx Transaction, id string, status domain.TransferStatus, failureReason string, updatedAt time.Time) error
	// ExistsCompensation reports whether a COMPENSATION-type transfer already
	// references the given transfer.
	ExistsCompensation(ctx context.Context, originalTransferID string) (bool, error)
	ListDueScheduled(ctx context.Context, asOf time.Time, limit int) ([]*domain.Transfer, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error)
}

// JournalRepository defines data access for the double-entry journal.
type JournalRepository interface {
	CreateEntry(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	GetEntryByID(ctx context.Context, id string) (*domain.JournalEntry, error)
	ListEntriesByReference(ctx context.Context, reference string) ([]*domain.JournalEntry, error)
	// SumByAccountAndType aggregates line amounts for one account, grouped
	// into total debits and total credits.
	SumByAccountAndType(ctx context.Context, accountID string) (debits, credits decimal.Decimal, err error)
}

// TransactionLogRepository defines data access for the append-only
// transaction log.
type TransactionLogRepository interface {
	// Create appends a log entry. A duplicate reference id yields
	// domain.ErrDuplicateOperation.
	Create(ctx context.Context, tx Transaction, entry *domain.TransactionLogEntry) error
	ExistsByReference(ctx context.Context, referenceID string) (bool, error)
	GetByReference(ctx context.Context, referenceID string) (*domain.TransactionLogEntry, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.TransactionLogEntry, error)
	ListByAccountAndRange(ctx context.Context, accountID string, from, to time.Time, limit, offset int) ([]*domain.TransactionLogEntry, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// SettlementGateway executes a movement command against the external
// settlement system. The call is synchronous; a transport error is returned
// as err, a business rejection inside the result.
type SettlementGateway interface {
	Execute(ctx context.Context, cmd domain.SettlementCommand) (*domain.SettlementResult, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs a unit of work on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations used for balance snapshots.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
