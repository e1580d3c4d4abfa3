package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank-io/corebank/internal/domain"
)

// JournalUseCase posts and reads double-entry journal records.
type JournalUseCase struct {
	txManager   TransactionManager
	journalRepo JournalRepository
	idGen       IDGenerator
}

// NewJournalUseCase creates a new JournalUseCase.
func NewJournalUseCase(
	txManager TransactionManager,
	journalRepo JournalRepository,
	idGen IDGenerator,
) *JournalUseCase {
	return &JournalUseCase{
		txManager:   txManager,
		journalRepo: journalRepo,
		idGen:       idGen,
	}
}

// JournalLineInput is one debit or credit in a CreateEntry request.
type JournalLineInput struct {
	AccountID   string
	Type        domain.EntryType
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// CreateEntryInput represents input for posting a journal entry.
type CreateEntryInput struct {
	Reference   string
	Description string
	Lines       []JournalLineInput
}

// CreateEntry validates and persists a balanced journal entry in its own
// unit of work. Nothing persists if validation fails.
func (uc *JournalUseCase) CreateEntry(ctx context.Context, input CreateEntryInput) (*domain.JournalEntry, error) {
	entry := uc.BuildEntry(input, time.Now().UTC())

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.journalRepo.CreateEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

// BuildEntry assembles an entry with generated ids without persisting it.
func (uc *JournalUseCase) BuildEntry(input CreateEntryInput, now time.Time) *domain.JournalEntry {
	entry := &domain.JournalEntry{
		ID:          uc.idGen.Generate(),
		Reference:   input.Reference,
		Description: input.Description,
		EntryDate:   now,
	}

	for _, li := range input.Lines {
		entry.Lines = append(entry.Lines, domain.JournalLine{
			ID:          uc.idGen.Generate(),
			EntryID:     entry.ID,
			AccountID:   li.AccountID,
			Type:        li.Type,
			Amount:      li.Amount,
			Currency:    li.Currency,
			Description: li.Description,
		})
	}

	return entry
}

// GetEntry retrieves a journal entry with its lines.
func (uc *JournalUseCase) GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	return uc.journalRepo.GetEntryByID(ctx, id)
}

// ListEntriesByReference lists the journal entries correlated to an
// operation reference.
func (uc *JournalUseCase) ListEntriesByReference(ctx context.Context, reference string) ([]*domain.JournalEntry, error) {
	return uc.journalRepo.ListEntriesByReference(ctx, reference)
}

// BalanceFromJournal derives an account's balance from its journal lines:
// sum(credits) minus sum(debits). Used by reconciliation only, never as the
// live balance.
func (uc *JournalUseCase) BalanceFromJournal(ctx context.Context, accountID string) (decimal.Decimal, error) {
	debits, credits, err := uc.journalRepo.SumByAccountAndType(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return credits.Sub(debits), nil
}
