package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/usecase"
)

const logColumns = `id, account_id, type, amount, currency, balance_after,
	recorded_at, description, reference_id`

// TransactionLogRepository implements usecase.TransactionLogRepository. The
// log is append-only; the unique index on reference_id is the idempotency
// backstop for the whole movement path.
type TransactionLogRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionLogRepository creates a new TransactionLogRepository.
func NewTransactionLogRepository(pool *pgxpool.Pool) *TransactionLogRepository {
	return &TransactionLogRepository{pool: pool}
}

// Create appends a log entry. A reference id already present in the log makes
// the insert fail with ErrDuplicateOperation.
func (r *TransactionLogRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.TransactionLogEntry) error {
	_, err := txQuerier(tx).Exec(ctx, `
		INSERT INTO transaction_log (`+logColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID,
		entry.AccountID,
		string(entry.Type),
		decimalToNumeric(entry.Amount),
		entry.Currency,
		decimalToNumeric(entry.BalanceAfter),
		timeToPgTimestamptz(entry.Timestamp),
		entry.Description,
		entry.ReferenceID,
	)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrDuplicateOperation
	}

	return err
}

// ExistsByReference reports whether a log entry exists for a reference id.
func (r *TransactionLogRepository) ExistsByReference(ctx context.Context, referenceID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM transaction_log WHERE reference_id = $1)`,
		referenceID).Scan(&exists)

	return exists, err
}

// GetByReference retrieves the log entry recorded for a reference id.
func (r *TransactionLogRepository) GetByReference(ctx context.Context, referenceID string) (*domain.TransactionLogEntry, error) {
	return scanLogEntry(r.pool.QueryRow(ctx, `
		SELECT `+logColumns+` FROM transaction_log WHERE reference_id = $1`,
		referenceID))
}

// ListByAccount lists an account's log entries, newest first.
func (r *TransactionLogRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.TransactionLogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+logColumns+` FROM transaction_log
		WHERE account_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2 OFFSET $3`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLogEntries(rows)
}

// ListByAccountAndRange lists an account's log entries within [from, to],
// newest first.
func (r *TransactionLogRepository) ListByAccountAndRange(ctx context.Context, accountID string, from, to time.Time, limit, offset int) ([]*domain.TransactionLogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+logColumns+` FROM transaction_log
		WHERE account_id = $1 AND recorded_at BETWEEN $2 AND $3
		ORDER BY recorded_at DESC, id DESC
		LIMIT $4 OFFSET $5`,
		accountID, timeToPgTimestamptz(from), timeToPgTimestamptz(to), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLogEntries(rows)
}

func scanLogEntry(row pgx.Row) (*domain.TransactionLogEntry, error) {
	var (
		entry        domain.TransactionLogEntry
		entryType    string
		amount       pgtype.Numeric
		balanceAfter pgtype.Numeric
		recordedAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.ID,
		&entry.AccountID,
		&entryType,
		&amount,
		&entry.Currency,
		&balanceAfter,
		&recordedAt,
		&entry.Description,
		&entry.ReferenceID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	entry.Type = domain.EntryType(entryType)
	entry.Amount = numericToDecimal(amount)
	entry.BalanceAfter = numericToDecimal(balanceAfter)
	entry.Timestamp = recordedAt.Time

	return &entry, nil
}

func collectLogEntries(rows pgx.Rows) ([]*domain.TransactionLogEntry, error) {
	var entries []*domain.TransactionLogEntry
	for rows.Next() {
		entry, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
