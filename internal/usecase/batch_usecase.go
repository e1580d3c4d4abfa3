package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/infrastructure/metrics"
)

// BatchUseCase manages scheduled transfers and the end-of-day run that
// executes them.
type BatchUseCase struct {
	accountRepo    AccountRepository
	transferRepo   TransferRepository
	logRepo        TransactionLogRepository
	auditRepo      AuditRepository
	movement       *MovementUseCase
	reconciliation *ReconciliationUseCase
	idGen          IDGenerator
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

// NewBatchUseCase creates a new BatchUseCase.
func NewBatchUseCase(
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	logRepo TransactionLogRepository,
	auditRepo AuditRepository,
	movement *MovementUseCase,
	reconciliation *ReconciliationUseCase,
	idGen IDGenerator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *BatchUseCase {
	return &BatchUseCase{
		accountRepo:    accountRepo,
		transferRepo:   transferRepo,
		logRepo:        logRepo,
		auditRepo:      auditRepo,
		movement:       movement,
		reconciliation: reconciliation,
		idGen:          idGen,
		metrics:        m,
		logger:         logger,
	}
}

// ScheduleTransferInput represents input for scheduling a future transfer.
type ScheduleTransferInput struct {
	CallerID             string
	SourceAccountID      string
	DestinationAccountID string
	ExternalReference    string
	Amount               decimal.Decimal
	Description          string
	ScheduledAt          time.Time
}

// ScheduleTransfer persists a SCHEDULED transfer. No settlement call happens
// until the transfer becomes due and the end-of-day run executes it.
func (uc *BatchUseCase) ScheduleTransfer(ctx context.Context, input ScheduleTransferInput) (*domain.Transfer, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	source, err := uc.accountRepo.GetByID(ctx, input.SourceAccountID)
	if err != nil {
		return nil, err
	}
	if source.CustomerID != input.CallerID {
		return nil, domain.ErrOwnershipViolation
	}

	if input.DestinationAccountID != "" {
		destination, err := uc.accountRepo.GetByID(ctx, input.DestinationAccountID)
		if err != nil {
			return nil, err
		}
		if destination.Currency != source.Currency {
			return nil, domain.ErrCurrencyMismatch
		}
	}

	now := time.Now().UTC()
	scheduledAt := input.ScheduledAt
	transfer := &domain.Transfer{
		ID:                   uc.idGen.Generate(),
		ReferenceID:          uc.idGen.Generate(),
		SourceAccountID:      source.ID,
		DestinationAccountID: input.DestinationAccountID,
		ExternalReference:    input.ExternalReference,
		Amount:               input.Amount,
		Currency:             source.Currency,
		Type:                 domain.TransferTypeScheduled,
		Status:               domain.TransferStatusScheduled,
		Description:          input.Description,
		ScheduledAt:          &scheduledAt,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	if err := uc.transferRepo.Create(ctx, transfer); err != nil {
		return nil, err
	}

	uc.audit(ctx, input.CallerID, domain.AuditActionSchedule, transfer.ID, domain.JSON{
		"scheduled_at": scheduledAt,
		"amount":       input.Amount.String(),
	})

	return transfer, nil
}

// CancelTransfer moves a PENDING or SCHEDULED transfer to CANCELLED. A
// transfer whose debit already committed cannot be cancelled; it has to fail
// and go through compensation instead.
func (uc *BatchUseCase) CancelTransfer(ctx context.Context, callerID, transferID string) error {
	transfer, err := uc.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return err
	}

	source, err := uc.accountRepo.GetByID(ctx, transfer.SourceAccountID)
	if err != nil {
		return err
	}
	if source.CustomerID != callerID {
		return domain.ErrOwnershipViolation
	}

	debited, err := uc.logRepo.ExistsByReference(ctx, transfer.ReferenceID)
	if err != nil {
		return err
	}
	if debited {
		return domain.ErrIllegalTransition
	}

	now := time.Now().UTC()
	if err := transfer.TransitionTo(domain.TransferStatusCancelled, now); err != nil {
		return err
	}

	if err := uc.transferRepo.UpdateStatus(ctx, transfer.ID, transfer.Status, "", now); err != nil {
		return err
	}

	uc.metrics.TransfersCancelled.Inc()
	uc.audit(ctx, callerID, domain.AuditActionCancellation, transfer.ID, nil)

	uc.logger.Info().Str("transfer_id", transferID).Msg("transfer cancelled")

	return nil
}

// EndOfDayReport summarizes one end-of-day run.
type EndOfDayReport struct {
	Executed       int
	Failed         int
	FailedIDs      []string
	Reconciliation *ReconciliationReport
	StartedAt      time.Time
	FinishedAt     time.Time
}

// RunEndOfDay executes all due scheduled transfers through the movement
// orchestrator and finishes with a full reconciliation pass. A failing
// transfer is marked FAILED by the orchestrator and does not stop the run.
func (uc *BatchUseCase) RunEndOfDay(ctx context.Context) (*EndOfDayReport, error) {
	report := &EndOfDayReport{StartedAt: time.Now().UTC()}

	due, err := uc.transferRepo.ListDueScheduled(ctx, report.StartedAt, endOfDayBatchSize)
	if err != nil {
		return nil, err
	}

	for _, transfer := range due {
		if _, err := uc.movement.ExecuteScheduled(ctx, transfer.ID, report.StartedAt); err != nil {
			report.Failed++
			report.FailedIDs = append(report.FailedIDs, transfer.ID)
			uc.logger.Warn().Err(err).
				Str("transfer_id", transfer.ID).
				Msg("scheduled transfer failed during end-of-day run")
			continue
		}
		report.Executed++
		uc.metrics.ScheduledExecuted.Inc()
	}

	reconciliation, err := uc.reconciliation.ReconcileAll(ctx)
	if err != nil {
		return nil, err
	}
	report.Reconciliation = reconciliation
	report.FinishedAt = time.Now().UTC()

	uc.audit(ctx, "", domain.AuditActionEndOfDay, "", domain.JSON{
		"executed":      report.Executed,
		"failed":        report.Failed,
		"discrepancies": len(reconciliation.Discrepancies),
	})

	uc.logger.Info().
		Int("executed", report.Executed).
		Int("failed", report.Failed).
		Msg("end-of-day run finished")

	return report, nil
}

func (uc *BatchUseCase) audit(ctx context.Context, customerID string, action domain.AuditAction, resourceID string, detail domain.JSON) {
	if uc.auditRepo == nil {
		return
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		CustomerID:   customerID,
		Action:       action,
		ResourceType: "transfer",
		ResourceID:   resourceID,
		Detail:       detail,
		Status:       domain.AuditStatusSuccess,
		CreatedAt:    time.Now().UTC(),
	}

	if err := uc.auditRepo.Create(ctx, log); err != nil {
		uc.logger.Warn().Err(err).Str("action", string(action)).Msg("audit write failed")
		return
	}

	uc.metrics.AuditLogsCreated.WithLabelValues(string(action), string(log.Status)).Inc()
}
