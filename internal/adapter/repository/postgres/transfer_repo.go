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

const transferColumns = `id, reference_id, source_account_id,
	destination_account_id, external_reference, amount, currency, type,
	status, description, failure_reason, scheduled_at, created_at, updated_at`

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	pool *pgxpool.Pool
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{pool: pool}
}

// Create persists a transfer in its own implicit transaction. Used to make
// the PENDING record durable before the settlement call.
func (r *TransferRepository) Create(ctx context.Context, transfer *domain.Transfer) error {
	return createTransfer(ctx, r.pool, transfer)
}

// CreateTx persists a transfer inside a caller-managed transaction.
func (r *TransferRepository) CreateTx(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	return createTransfer(ctx, txQuerier(tx), transfer)
}

func createTransfer(ctx context.Context, q querier, transfer *domain.Transfer) error {
	_, err := q.Exec(ctx, `
		INSERT INTO transfers (`+transferColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		transfer.ID,
		transfer.ReferenceID,
		transfer.SourceAccountID,
		nullableText(transfer.DestinationAccountID),
		nullableText(transfer.ExternalReference),
		decimalToNumeric(transfer.Amount),
		transfer.Currency,
		string(transfer.Type),
		string(transfer.Status),
		transfer.Description,
		transfer.FailureReason,
		timePtrToPgTimestamptz(transfer.ScheduledAt),
		timeToPgTimestamptz(transfer.CreatedAt),
		timeToPgTimestamptz(transfer.UpdatedAt),
	)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrDuplicateOperation
	}

	return err
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	return scanTransfer(r.pool.QueryRow(ctx, `
		SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id))
}

// UpdateStatus updates a transfer's status in its own implicit transaction.
func (r *TransferRepository) UpdateStatus(ctx context.Context, id string, status domain.TransferStatus, failureReason string, updatedAt time.Time) error {
	return updateTransferStatus(ctx, r.pool, id, status, failureReason, updatedAt)
}

// UpdateStatusTx updates a transfer's status inside a caller-managed
// transaction.
func (r *TransferRepository) UpdateStatusTx(ctx context.Context, tx usecase.Transaction, id string, status domain.TransferStatus, failureReason string, updatedAt time.Time) error {
	return updateTransferStatus(ctx, txQuerier(tx), id, status, failureReason, updatedAt)
}

func updateTransferStatus(ctx context.Context, q querier, id string, status domain.TransferStatus, failureReason string, updatedAt time.Time) error {
	tag, err := q.Exec(ctx, `
		UPDATE transfers SET status = $2, failure_reason = $3, updated_at = $4
		WHERE id = $1`,
		id, string(status), failureReason, timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransferNotFound
	}

	return nil
}

// ExistsCompensation reports whether a COMPENSATION-type transfer already
// references the given original transfer.
func (r *TransferRepository) ExistsCompensation(ctx context.Context, originalTransferID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM transfers
			WHERE type = $1 AND reference_id = $2
		)`, string(domain.TransferTypeCompensation), originalTransferID).Scan(&exists)

	return exists, err
}

// ListDueScheduled lists SCHEDULED transfers whose execution time has passed,
// oldest first.
func (r *TransferRepository) ListDueScheduled(ctx context.Context, asOf time.Time, limit int) ([]*domain.Transfer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transferColumns+` FROM transfers
		WHERE status = $1 AND scheduled_at <= $2
		ORDER BY scheduled_at
		LIMIT $3`,
		string(domain.TransferStatusScheduled), timeToPgTimestamptz(asOf), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransfers(rows)
}

// ListByAccount lists transfers where the account is source or destination,
// newest first.
func (r *TransferRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transferColumns+` FROM transfers
		WHERE source_account_id = $1 OR destination_account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransfers(rows)
}

func scanTransfer(row pgx.Row) (*domain.Transfer, error) {
	var (
		transfer      domain.Transfer
		destinationID pgtype.Text
		externalRef   pgtype.Text
		amount        pgtype.Numeric
		transferType  string
		status        string
		scheduledAt   pgtype.Timestamptz
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
	)

	err := row.Scan(
		&transfer.ID,
		&transfer.ReferenceID,
		&transfer.SourceAccountID,
		&destinationID,
		&externalRef,
		&amount,
		&transfer.Currency,
		&transferType,
		&status,
		&transfer.Description,
		&transfer.FailureReason,
		&scheduledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, err
	}

	transfer.DestinationAccountID = destinationID.String
	transfer.ExternalReference = externalRef.String
	transfer.Amount = numericToDecimal(amount)
	transfer.Type = domain.TransferType(transferType)
	transfer.Status = domain.TransferStatus(status)
	transfer.ScheduledAt = pgTimestamptzToTimePtr(scheduledAt)
	transfer.CreatedAt = createdAt.Time
	transfer.UpdatedAt = updatedAt.Time

	return &transfer, nil
}

func collectTransfers(rows pgx.Rows) ([]*domain.Transfer, error) {
	var transfers []*domain.Transfer
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}

	return transfers, rows.Err()
}

func nullableText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
