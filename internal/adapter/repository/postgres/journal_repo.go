package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/usecase"
)

// JournalRepository implements usecase.JournalRepository. Journal entries and
// their lines are insert-only; there is no update path.
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// CreateEntry inserts a journal entry and all of its lines in the caller's
// transaction, so the entry commits atomically with the balance mutation.
func (r *JournalRepository) CreateEntry(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	q := txQuerier(tx)

	_, err := q.Exec(ctx, `
		INSERT INTO journal_entries (id, reference, description, entry_date)
		VALUES ($1, $2, $3, $4)`,
		entry.ID,
		entry.Reference,
		entry.Description,
		timeToPgTimestamptz(entry.EntryDate),
	)
	if err != nil {
		return err
	}

	for _, line := range entry.Lines {
		_, err := q.Exec(ctx, `
			INSERT INTO journal_lines (id, entry_id, account_id, type, amount, currency, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			line.ID,
			line.EntryID,
			line.AccountID,
			string(line.Type),
			decimalToNumeric(line.Amount),
			line.Currency,
			line.Description,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetEntryByID retrieves a journal entry with its lines.
func (r *JournalRepository) GetEntryByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	entry, err := r.scanEntry(r.pool.QueryRow(ctx, `
		SELECT id, reference, description, entry_date
		FROM journal_entries WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	if err := r.loadLines(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// ListEntriesByReference lists the journal entries posted under an operation
// reference.
func (r *JournalRepository) ListEntriesByReference(ctx context.Context, reference string) ([]*domain.JournalEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, reference, description, entry_date
		FROM journal_entries
		WHERE reference = $1
		ORDER BY entry_date`, reference)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JournalEntry
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if err := r.loadLines(ctx, entry); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// SumByAccountAndType aggregates an account's journal lines into total debits
// and total credits.
func (r *JournalRepository) SumByAccountAndType(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	var debits, credits pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = $2), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = $3), 0)
		FROM journal_lines
		WHERE account_id = $1`,
		accountID, string(domain.EntryTypeDebit), string(domain.EntryTypeCredit),
	).Scan(&debits, &credits)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(debits), numericToDecimal(credits), nil
}

func (r *JournalRepository) scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var (
		entry     domain.JournalEntry
		entryDate pgtype.Timestamptz
	)

	err := row.Scan(&entry.ID, &entry.Reference, &entry.Description, &entryDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	entry.EntryDate = entryDate.Time

	return &entry, nil
}

func (r *JournalRepository) loadLines(ctx context.Context, entry *domain.JournalEntry) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, entry_id, account_id, type, amount, currency, description
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY id`, entry.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line     domain.JournalLine
			lineType string
			amount   pgtype.Numeric
		)
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID, &lineType, &amount, &line.Currency, &line.Description); err != nil {
			return err
		}
		line.Type = domain.EntryType(lineType)
		line.Amount = numericToDecimal(amount)
		entry.Lines = append(entry.Lines, line)
	}

	return rows.Err()
}
