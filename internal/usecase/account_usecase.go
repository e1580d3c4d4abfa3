package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/corebank-io/corebank/internal/domain"
)

// AccountUseCase handles account lifecycle and balance queries.
type AccountUseCase struct {
	accountRepo AccountRepository
	idGen       IDGenerator
	cache       Cache
	logger      zerolog.Logger
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, idGen IDGenerator, cache Cache, logger zerolog.Logger) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
		cache:       cache,
		logger:      logger,
	}
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	CustomerID string
	Currency   string
}

// OpenAccount creates a new active customer account with zero balances.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	if input.CustomerID == "" {
		return nil, domain.ErrCustomerNotFound
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	id := uc.idGen.Generate()
	account := &domain.Account{
		ID:               id,
		CustomerID:       input.CustomerID,
		Number:           "ACCT-" + id,
		Currency:         input.Currency,
		Type:             domain.AccountTypeCustomer,
		Status:           domain.AccountStatusActive,
		CurrentBalance:   decimal.Zero,
		AvailableBalance: decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("account_id", account.ID).
		Str("customer_id", account.CustomerID).
		Str("currency", account.Currency).
		Msg("account opened")

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsByCustomer lists a customer's accounts.
func (uc *AccountUseCase) ListAccountsByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Account, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)
	return uc.accountRepo.ListByCustomer(ctx, customerID, limit, offset)
}

// CloseAccount closes an account. Accounts close only at zero balance.
func (uc *AccountUseCase) CloseAccount(ctx context.Context, id string) error {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := account.ValidateClose(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := uc.accountRepo.UpdateStatus(ctx, id, domain.AccountStatusClosed, now); err != nil {
		return err
	}

	uc.invalidateBalance(ctx, id)

	uc.logger.Info().Str("account_id", id).Msg("account closed")

	return nil
}

// GetBalance returns a balance snapshot, served read-through from the cache.
// Movements invalidate the cached snapshot explicitly.
func (uc *AccountUseCase) GetBalance(ctx context.Context, accountID string) (*domain.BalanceSnapshot, error) {
	key := balanceCacheKey(accountID)

	if uc.cache != nil {
		if data, err := uc.cache.Get(ctx, key); err == nil && len(data) > 0 {
			var snapshot domain.BalanceSnapshot
			if err := json.Unmarshal(data, &snapshot); err == nil {
				return &snapshot, nil
			}
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	snapshot := account.Snapshot(time.Now().UTC())

	if uc.cache != nil {
		if data, err := json.Marshal(snapshot); err == nil {
			if err := uc.cache.Set(ctx, key, data, BalanceCacheTTL); err != nil {
				uc.logger.Warn().Err(err).Str("account_id", accountID).Msg("balance cache write failed")
			}
		}
	}

	return &snapshot, nil
}

func (uc *AccountUseCase) invalidateBalance(ctx context.Context, accountID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, balanceCacheKey(accountID)); err != nil {
		uc.logger.Warn().Err(err).Str("account_id", accountID).Msg("balance cache invalidation failed")
	}
}
