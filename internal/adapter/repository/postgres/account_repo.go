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

const accountColumns = `id, customer_id, number, currency, type, status,
	current_balance, available_balance, version, last_transaction_at,
	created_at, updated_at`

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return createAccount(ctx, r.pool, account)
}

// CreateTx creates a new account inside a caller-managed transaction.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	return createAccount(ctx, txQuerier(tx), account)
}

func createAccount(ctx context.Context, q querier, account *domain.Account) error {
	_, err := q.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		account.ID,
		account.CustomerID,
		account.Number,
		account.Currency,
		string(account.Type),
		string(account.Status),
		decimalToNumeric(account.CurrentBalance),
		decimalToNumeric(account.AvailableBalance),
		account.Version,
		timePtrToPgTimestamptz(account.LastTransactionAt),
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

// GetByNumber retrieves an account by its unique account number.
func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE number = $1`, number))
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	return scanAccount(txQuerier(tx).QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id))
}

// GetByIDsForUpdate retrieves multiple accounts with FOR UPDATE locks, in
// ascending ID order so concurrent movements lock in the same order.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	rows, err := txQuerier(tx).Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// UpdateBalances persists the mutated balances guarded by an optimistic
// version check. A stale version leaves zero rows updated.
func (r *AccountRepository) UpdateBalances(ctx context.Context, tx usecase.Transaction, account *domain.Account, expectedVersion int64) error {
	tag, err := txQuerier(tx).Exec(ctx, `
		UPDATE accounts
		SET current_balance = $2,
			available_balance = $3,
			version = version + 1,
			last_transaction_at = $4,
			updated_at = $5
		WHERE id = $1 AND version = $6`,
		account.ID,
		decimalToNumeric(account.CurrentBalance),
		decimalToNumeric(account.AvailableBalance),
		timePtrToPgTimestamptz(account.LastTransactionAt),
		timeToPgTimestamptz(account.UpdatedAt),
		expectedVersion,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}

	return nil
}

// UpdateStatus updates an account's lifecycle status.
func (r *AccountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// ListByCustomer lists a customer's accounts with pagination.
func (r *AccountRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		ORDER BY id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account           domain.Account
		accountType       string
		status            string
		currentBalance    pgtype.Numeric
		availableBalance  pgtype.Numeric
		lastTransactionAt pgtype.Timestamptz
		createdAt         pgtype.Timestamptz
		updatedAt         pgtype.Timestamptz
	)

	err := row.Scan(
		&account.ID,
		&account.CustomerID,
		&account.Number,
		&account.Currency,
		&accountType,
		&status,
		&currentBalance,
		&availableBalance,
		&account.Version,
		&lastTransactionAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	account.Type = domain.AccountType(accountType)
	account.Status = domain.AccountStatus(status)
	account.CurrentBalance = numericToDecimal(currentBalance)
	account.AvailableBalance = numericToDecimal(availableBalance)
	account.LastTransactionAt = pgTimestamptzToTimePtr(lastTransactionAt)
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time

	return &account, nil
}

func collectAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}
