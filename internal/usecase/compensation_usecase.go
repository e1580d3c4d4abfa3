package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/infrastructure/metrics"
)

// CompensationUseCase reverses FAILED transfers: it credits the source back,
// posts a reversing journal entry and log entry, and records the reversal as
// a COMPENSATION-type transfer.
type CompensationUseCase struct {
	txManager    TransactionManager
	retrier      Retrier
	accountRepo  AccountRepository
	transferRepo TransferRepository
	journalRepo  JournalRepository
	logRepo      TransactionLogRepository
	auditRepo    AuditRepository
	registry     *SystemAccountRegistry
	idGen        IDGenerator
	cache        Cache
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewCompensationUseCase creates a new CompensationUseCase.
func NewCompensationUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	journalRepo JournalRepository,
	logRepo TransactionLogRepository,
	auditRepo AuditRepository,
	registry *SystemAccountRegistry,
	idGen IDGenerator,
	cache Cache,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *CompensationUseCase {
	return &CompensationUseCase{
		txManager:    txManager,
		retrier:      retrier,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		journalRepo:  journalRepo,
		logRepo:      logRepo,
		auditRepo:    auditRepo,
		registry:     registry,
		idGen:        idGen,
		cache:        cache,
		metrics:      m,
		logger:       logger,
	}
}

// CompensationResult describes what a compensation run did.
type CompensationResult struct {
	OriginalTransferID     string
	CompensationTransferID string
	Refunded               bool
}

// Compensate reverses a FAILED transfer. Calling it again for an already
// compensated transfer is a no-op; the source account is never credited
// twice.
func (uc *CompensationUseCase) Compensate(ctx context.Context, transferID string) (*CompensationResult, error) {
	transfer, err := uc.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}

	if transfer.Status == domain.TransferStatusCompensated {
		uc.logger.Info().
			Str("transfer_id", transferID).
			Msg("transfer already compensated")
		return &CompensationResult{OriginalTransferID: transferID, Refunded: false}, nil
	}

	if transfer.Status != domain.TransferStatusFailed {
		return nil, domain.ErrTransferNotFailed
	}

	refundRequired, err := uc.refundRequired(ctx, transfer)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if !refundRequired {
		// The transfer failed before any local mutation; close it out
		// without touching balances.
		if err := transfer.TransitionTo(domain.TransferStatusCompensated, now); err != nil {
			return nil, err
		}
		if err := uc.transferRepo.UpdateStatus(ctx, transfer.ID, transfer.Status, transfer.FailureReason, now); err != nil {
			return nil, err
		}

		uc.logger.Info().
			Str("transfer_id", transferID).
			Msg("no refund required, transfer closed as compensated")

		return &CompensationResult{OriginalTransferID: transferID, Refunded: false}, nil
	}

	var result *CompensationResult
	err = uc.retrier.Retry(ctx, func() error {
		var opErr error
		result, opErr = uc.runRefund(ctx, transfer)
		return opErr
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.TransfersCompensated.Inc()
	uc.invalidateBalance(ctx, transfer.SourceAccountID)
	uc.audit(ctx, transfer, result)

	return result, nil
}

// refundRequired is true only when no COMPENSATION-type transfer references
// the failed transfer yet and the original debit actually committed, as
// witnessed by a log entry carrying the transfer's reference id.
func (uc *CompensationUseCase) refundRequired(ctx context.Context, transfer *domain.Transfer) (bool, error) {
	compensated, err := uc.transferRepo.ExistsCompensation(ctx, transfer.ID)
	if err != nil {
		return false, err
	}
	if compensated {
		return false, nil
	}

	debited, err := uc.logRepo.ExistsByReference(ctx, transfer.ReferenceID)
	if err != nil {
		return false, err
	}

	return debited, nil
}

func (uc *CompensationUseCase) runRefund(ctx context.Context, transfer *domain.Transfer) (*CompensationResult, error) {
	cash, err := uc.registry.GetOrCreate(ctx, domain.PurposeCash, transfer.Currency)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	source, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, transfer.SourceAccountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expected := source.Version
	source.ApplyCredit(transfer.Amount, now)

	// A fresh reference id keeps the refund's log entry distinct from the
	// original debit entry; the compensation transfer row links back to the
	// original via ReferenceID.
	compensationID := uc.idGen.Generate()
	description := "compensation for transfer " + transfer.ID

	entry := &domain.JournalEntry{
		ID:          uc.idGen.Generate(),
		Reference:   compensationID,
		Description: description,
		EntryDate:   now,
		Lines: []domain.JournalLine{
			{
				ID:        uc.idGen.Generate(),
				AccountID: cash.ID,
				Type:      domain.EntryTypeDebit,
				Amount:    transfer.Amount,
				Currency:  transfer.Currency,
			},
			{
				ID:        uc.idGen.Generate(),
				AccountID: source.ID,
				Type:      domain.EntryTypeCredit,
				Amount:    transfer.Amount,
				Currency:  transfer.Currency,
			},
		},
	}
	for i := range entry.Lines {
		entry.Lines[i].EntryID = entry.ID
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := uc.journalRepo.CreateEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.logRepo.Create(ctx, tx, &domain.TransactionLogEntry{
		ID:           uc.idGen.Generate(),
		AccountID:    source.ID,
		Type:         domain.EntryTypeCredit,
		Amount:       transfer.Amount,
		Currency:     transfer.Currency,
		BalanceAfter: source.CurrentBalance,
		Timestamp:    now,
		Description:  description,
		ReferenceID:  compensationID,
	}); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalances(ctx, tx, source, expected); err != nil {
		return nil, err
	}

	if !transfer.CanTransitionTo(domain.TransferStatusCompensated) {
		return nil, domain.ErrIllegalTransition
	}

	if err := uc.transferRepo.UpdateStatusTx(ctx, tx, transfer.ID, domain.TransferStatusCompensated, transfer.FailureReason, now); err != nil {
		return nil, err
	}

	if err := uc.createCompensationTransferTx(ctx, tx, transfer, compensationID, description, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if err := transfer.TransitionTo(domain.TransferStatusCompensated, now); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("transfer_id", transfer.ID).
		Str("compensation_id", compensationID).
		Str("amount", transfer.Amount.String()).
		Msg("transfer compensated")

	return &CompensationResult{
		OriginalTransferID:     transfer.ID,
		CompensationTransferID: compensationID,
		Refunded:               true,
	}, nil
}

func (uc *CompensationUseCase) createCompensationTransferTx(ctx context.Context, tx Transaction, original *domain.Transfer, compensationID, description string, now time.Time) error {
	compensation := &domain.Transfer{
		ID:                   compensationID,
		ReferenceID:          original.ID,
		SourceAccountID:      original.SourceAccountID,
		DestinationAccountID: original.DestinationAccountID,
		ExternalReference:    original.ExternalReference,
		Amount:               original.Amount,
		Currency:             original.Currency,
		Type:                 domain.TransferTypeCompensation,
		Status:               domain.TransferStatusCompleted,
		Description:          description,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	return uc.transferRepo.CreateTx(ctx, tx, compensation)
}

func (uc *CompensationUseCase) invalidateBalance(ctx context.Context, accountID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, balanceCacheKey(accountID)); err != nil {
		uc.logger.Warn().Err(err).Str("account_id", accountID).Msg("balance cache invalidation failed")
	}
}

func (uc *CompensationUseCase) audit(ctx context.Context, transfer *domain.Transfer, result *CompensationResult) {
	if uc.auditRepo == nil {
		return
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Action:       domain.AuditActionCompensation,
		ResourceType: "transfer",
		ResourceID:   transfer.ID,
		Detail: domain.JSON{
			"compensation_id": result.CompensationTransferID,
			"refunded":        result.Refunded,
			"amount":          transfer.Amount.String(),
		},
		Status:    domain.AuditStatusSuccess,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.auditRepo.Create(ctx, log); err != nil {
		uc.logger.Warn().Err(err).Str("transfer_id", transfer.ID).Msg("audit write failed")
		return
	}

	uc.metrics.AuditLogsCreated.WithLabelValues(string(log.Action), string(log.Status)).Inc()
}
