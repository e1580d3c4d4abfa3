package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebank-io/corebank/internal/domain"
)

// CustomerRepository implements usecase.CustomerRepository.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create creates a new customer.
func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO customers (id, name, system, created_at)
		VALUES ($1, $2, $3, $4)`,
		customer.ID,
		customer.Name,
		customer.System,
		timeToPgTimestamptz(customer.CreatedAt),
	)

	return err
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx, `
		SELECT id, name, system, created_at FROM customers WHERE id = $1`, id))
}

// GetSystemCustomer retrieves the singleton customer that owns the system
// accounts.
func (r *CustomerRepository) GetSystemCustomer(ctx context.Context) (*domain.Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx, `
		SELECT id, name, system, created_at FROM customers WHERE system LIMIT 1`))
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var (
		customer  domain.Customer
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(&customer.ID, &customer.Name, &customer.System, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}

		return nil, err
	}

	customer.CreatedAt = createdAt.Time

	return &customer, nil
}
