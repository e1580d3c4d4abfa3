package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/corebank-io/corebank/internal/domain"
)

// SystemAccountRegistry lazily creates and caches the well-known system
// accounts (cash, clearing, suspense) per currency. These accounts are the
// journal counter-parties for externally-facing movements.
type SystemAccountRegistry struct {
	accountRepo  AccountRepository
	customerRepo CustomerRepository
	idGen        IDGenerator
	logger       zerolog.Logger

	mu    sync.RWMutex
	cache map[string]*domain.Account
}

// NewSystemAccountRegistry creates a new SystemAccountRegistry.
func NewSystemAccountRegistry(
	accountRepo AccountRepository,
	customerRepo CustomerRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
) *SystemAccountRegistry {
	return &SystemAccountRegistry{
		accountRepo:  accountRepo,
		customerRepo: customerRepo,
		idGen:        idGen,
		logger:       logger,
		cache:        make(map[string]*domain.Account),
	}
}

// GetOrCreate returns the system account for (purpose, currency), creating
// it on first use. Creation is double-checked under the registry mutex so
// concurrent first use yields exactly one account per (purpose, currency).
func (r *SystemAccountRegistry) GetOrCreate(ctx context.Context, purpose domain.SystemPurpose, currency string) (*domain.Account, error) {
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	number := domain.SystemAccountNumber(purpose, currency)

	r.mu.RLock()
	if account, ok := r.cache[number]; ok {
		r.mu.RUnlock()
		return account, nil
	}
	r.mu.RUnlock()

	account, err := r.accountRepo.GetByNumber(ctx, number)
	if err == nil {
		r.put(number, account)
		return account, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check storage: another goroutine may have created the account
	// between our lookup and taking the lock.
	account, err = r.accountRepo.GetByNumber(ctx, number)
	if err == nil {
		r.cache[number] = account
		return account, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	account, err = r.create(ctx, purpose, currency, number)
	if err != nil {
		return nil, err
	}

	r.cache[number] = account

	r.logger.Info().
		Str("account_id", account.ID).
		Str("purpose", string(purpose)).
		Str("currency", currency).
		Msg("created system account")

	return account, nil
}

func (r *SystemAccountRegistry) create(ctx context.Context, purpose domain.SystemPurpose, currency, number string) (*domain.Account, error) {
	customer, err := r.systemCustomer(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:               r.idGen.Generate(),
		CustomerID:       customer.ID,
		Number:           number,
		Currency:         currency,
		Type:             domain.AccountTypeSystem,
		Status:           domain.AccountStatusActive,
		CurrentBalance:   decimal.Zero,
		AvailableBalance: decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := r.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create system account %s: %w", number, err)
	}

	return account, nil
}

// systemCustomer returns the singleton customer that owns system accounts,
// creating it lazily. Caller must hold r.mu.
func (r *SystemAccountRegistry) systemCustomer(ctx context.Context) (*domain.Customer, error) {
	customer, err := r.customerRepo.GetSystemCustomer(ctx)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		return nil, err
	}

	customer = &domain.Customer{
		ID:        r.idGen.Generate(),
		Name:      domain.SystemCustomerName,
		System:    true,
		CreatedAt: time.Now().UTC(),
	}

	if err := r.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create system customer: %w", err)
	}

	return customer, nil
}

func (r *SystemAccountRegistry) put(number string, account *domain.Account) {
	r.mu.Lock()
	r.cache[number] = account
	r.mu.Unlock()
}
