package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/infrastructure/metrics"
)

// MovementUseCase coordinates one logical money movement end to end:
// authorization, limit check, settlement call, balance mutation, journal
// post, and log append, with idempotency via a per-operation reference id.
type MovementUseCase struct {
	txManager    TransactionManager
	retrier      Retrier
	accountRepo  AccountRepository
	transferRepo TransferRepository
	journalRepo  JournalRepository
	logRepo      TransactionLogRepository
	auditRepo    AuditRepository
	registry     *SystemAccountRegistry
	gateway      SettlementGateway
	idGen        IDGenerator
	cache        Cache
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewMovementUseCase creates a new MovementUseCase.
func NewMovementUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	journalRepo JournalRepository,
	logRepo TransactionLogRepository,
	auditRepo AuditRepository,
	registry *SystemAccountRegistry,
	gateway SettlementGateway,
	idGen IDGenerator,
	cache Cache,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *MovementUseCase {
	return &MovementUseCase{
		txManager:    txManager,
		retrier:      retrier,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		journalRepo:  journalRepo,
		logRepo:      logRepo,
		auditRepo:    auditRepo,
		registry:     registry,
		gateway:      gateway,
		idGen:        idGen,
		cache:        cache,
		metrics:      m,
		logger:       logger,
	}
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	CallerID    string
	AccountID   string
	Amount      decimal.Decimal
	Description string
	// ReferenceID is optional; when empty a fresh id is minted. Supplying
	// the same id twice makes the second call fail DUPLICATE_OPERATION.
	ReferenceID string
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput struct {
	CallerID    string
	AccountID   string
	Amount      decimal.Decimal
	Description string
	ReferenceID string
}

// TransferInput represents input for a transfer. Either
// DestinationAccountID (internal) or ExternalReference must be set.
type TransferInput struct {
	CallerID             string
	SourceAccountID      string
	DestinationAccountID string
	ExternalReference    string
	Amount               decimal.Decimal
	Description          string
	ReferenceID          string
}

// TransferResult is the outcome of a completed transfer.
type TransferResult struct {
	Transfer *domain.Transfer
	Source   domain.BalanceSnapshot
}

// Deposit credits an account after the settlement system confirms the
// inbound movement. The counter-party is the currency's CASH system account.
func (uc *MovementUseCase) Deposit(ctx context.Context, input DepositInput) (*domain.BalanceSnapshot, error) {
	if err := validateMovement(input.Amount, input.Description); err != nil {
		return nil, err
	}

	account, err := uc.authorizedAccount(ctx, input.CallerID, input.AccountID)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateCredit(input.Amount); err != nil {
		return nil, err
	}

	cash, err := uc.registry.GetOrCreate(ctx, domain.PurposeCash, account.Currency)
	if err != nil {
		return nil, err
	}

	referenceID := uc.referenceID(input.ReferenceID)
	started := time.Now()

	if err := uc.checkDuplicate(ctx, referenceID); err != nil {
		return nil, err
	}

	// Settlement happens exactly once; only the local unit of work below is
	// retried on transient storage conflicts.
	if err := uc.settle(ctx, domain.DepositCommand{
		AccountID:   account.ID,
		Amount:      input.Amount,
		Currency:    account.Currency,
		Description: input.Description,
	}); err != nil {
		uc.observeFailed("deposit", err)
		return nil, err
	}

	var snapshot *domain.BalanceSnapshot
	err = uc.retrier.Retry(ctx, func() error {
		var opErr error
		snapshot, opErr = uc.runDeposit(ctx, account.ID, cash, input, referenceID)
		return opErr
	})
	if err != nil {
		uc.observeFailed("deposit", err)
		return nil, err
	}

	uc.observeCompleted("deposit", started, input.Amount)
	uc.invalidateBalance(ctx, account.ID)
	uc.audit(ctx, account.CustomerID, domain.AuditActionDeposit, account.ID, referenceID, nil)

	return snapshot, nil
}

func (uc *MovementUseCase) runDeposit(ctx context.Context, accountID string, cash *domain.Account, input DepositInput, referenceID string) (*domain.BalanceSnapshot, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	// Re-checked under the row lock; the account may have been frozen or the
	// reference consumed since the pre-checks.
	if err := account.ValidateCredit(input.Amount); err != nil {
		return nil, err
	}

	if err := uc.checkDuplicate(ctx, referenceID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expected := account.Version
	account.ApplyCredit(input.Amount, now)

	if err := uc.postJournal(ctx, tx, referenceID, input.Description, now, cash, account, input.Amount); err != nil {
		return nil, err
	}

	if err := uc.appendLog(ctx, tx, account, domain.EntryTypeCredit, input.Amount, referenceID, input.Description, now); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalances(ctx, tx, account, expected); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("account_id", account.ID).
		Str("reference_id", referenceID).
		Str("amount", input.Amount.String()).
		Msg("deposit completed")

	snapshot := account.Snapshot(now)

	return &snapshot, nil
}

// Withdraw debits an account after confirming funds and settling the
// outbound movement. Insufficient funds abort before the gateway is called.
func (uc *MovementUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*domain.BalanceSnapshot, error) {
	if err := validateMovement(input.Amount, input.Description); err != nil {
		return nil, err
	}

	account, err := uc.authorizedAccount(ctx, input.CallerID, input.AccountID)
	if err != nil {
		return nil, err
	}

	// Funds check before any settlement call; the gateway is never invoked
	// for a rejected withdrawal.
	if err := account.ValidateDebit(input.Amount); err != nil {
		return nil, err
	}

	cash, err := uc.registry.GetOrCreate(ctx, domain.PurposeCash, account.Currency)
	if err != nil {
		return nil, err
	}

	referenceID := uc.referenceID(input.ReferenceID)
	started := time.Now()

	if err := uc.checkDuplicate(ctx, referenceID); err != nil {
		return nil, err
	}

	// Settlement happens exactly once; only the local unit of work below is
	// retried on transient storage conflicts.
	if err := uc.settle(ctx, domain.WithdrawCommand{
		AccountID:   account.ID,
		Amount:      input.Amount,
		Description: input.Description,
	}); err != nil {
		uc.observeFailed("withdraw", err)
		return nil, err
	}

	var snapshot *domain.BalanceSnapshot
	err = uc.retrier.Retry(ctx, func() error {
		var opErr error
		snapshot, opErr = uc.runWithdraw(ctx, account.ID, cash, input, referenceID)
		return opErr
	})
	if err != nil {
		uc.observeFailed("withdraw", err)
		return nil, err
	}

	uc.observeCompleted("withdraw", started, input.Amount)
	uc.invalidateBalance(ctx, account.ID)
	uc.audit(ctx, account.CustomerID, domain.AuditActionWithdraw, account.ID, referenceID, nil)

	return snapshot, nil
}

func (uc *MovementUseCase) runWithdraw(ctx context.Context, accountID string, cash *domain.Account, input WithdrawInput, referenceID string) (*domain.BalanceSnapshot, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	// Funds re-check under the row lock; a concurrent debit may have drained
	// the account since the pre-check.
	if err := account.ValidateDebit(input.Amount); err != nil {
		return nil, err
	}

	if err := uc.checkDuplicate(ctx, referenceID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expected := account.Version
	account.ApplyDebit(input.Amount, now)

	if err := uc.postJournal(ctx, tx, referenceID, input.Description, now, account, cash, input.Amount); err != nil {
		return nil, err
	}

	if err := uc.appendLog(ctx, tx, account, domain.EntryTypeDebit, input.Amount, referenceID, input.Description, now); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalances(ctx, tx, account, expected); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("account_id", account.ID).
		Str("reference_id", referenceID).
		Str("amount", input.Amount.String()).
		Msg("withdrawal completed")

	snapshot := account.Snapshot(now)

	return &snapshot, nil
}

// Transfer moves funds from a source account to an internal destination
// account or an external reference. The transfer row is persisted PENDING
// before the settlement call; failures after that point leave a durable
// FAILED record for later compensation instead of rolling it back.
func (uc *MovementUseCase) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if err := validateMovement(input.Amount, input.Description); err != nil {
		return nil, err
	}

	source, err := uc.authorizedAccount(ctx, input.CallerID, input.SourceAccountID)
	if err != nil {
		return nil, err
	}

	transferType := domain.TransferTypeExternal
	if input.DestinationAccountID != "" {
		destination, err := uc.accountRepo.GetByID(ctx, input.DestinationAccountID)
		if err != nil {
			return nil, err
		}
		if destination.Currency != source.Currency {
			return nil, domain.ErrCurrencyMismatch
		}
		transferType = domain.TransferTypeInternal
	} else if input.ExternalReference == "" {
		return nil, fmt.Errorf("%w: transfer requires a destination account or external reference", domain.ErrInvalidDescription)
	}

	// Funds pre-check before the PENDING row is written and before any
	// settlement call; re-checked under the row lock in the movement unit
	// of work.
	if err := source.ValidateDebit(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transfer := &domain.Transfer{
		ID:                   uc.idGen.Generate(),
		ReferenceID:          uc.referenceID(input.ReferenceID),
		SourceAccountID:      source.ID,
		DestinationAccountID: input.DestinationAccountID,
		ExternalReference:    input.ExternalReference,
		Amount:               input.Amount,
		Currency:             source.Currency,
		Type:                 transferType,
		Status:               domain.TransferStatusPending,
		Description:          input.Description,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	// Persist PENDING in its own committed unit of work so the record
	// survives whatever happens next.
	if err := uc.transferRepo.Create(ctx, transfer); err != nil {
		return nil, err
	}

	return uc.executeTransfer(ctx, transfer)
}

// ExecuteScheduled moves a due SCHEDULED transfer through the regular
// settlement and movement path. Ownership was checked when the transfer was
// scheduled.
func (uc *MovementUseCase) ExecuteScheduled(ctx context.Context, transferID string, asOf time.Time) (*TransferResult, error) {
	transfer, err := uc.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}

	if transfer.Status != domain.TransferStatusScheduled {
		return nil, domain.ErrTransferNotPending
	}

	if transfer.ScheduledAt != nil && transfer.ScheduledAt.After(asOf) {
		return nil, domain.ErrTransferNotDue
	}

	now := time.Now().UTC()
	if err := transfer.TransitionTo(domain.TransferStatusPending, now); err != nil {
		return nil, err
	}

	if err := uc.transferRepo.UpdateStatus(ctx, transfer.ID, transfer.Status, "", now); err != nil {
		return nil, err
	}

	// Funds check before any settlement call; an unfunded scheduled transfer
	// fails durably without ever reaching the gateway.
	source, err := uc.accountRepo.GetByID(ctx, transfer.SourceAccountID)
	if err != nil {
		return nil, err
	}
	if err := source.ValidateDebit(transfer.Amount); err != nil {
		uc.markFailed(ctx, transfer, err)
		uc.observeFailed("transfer", err)
		return nil, err
	}

	return uc.executeTransfer(ctx, transfer)
}

// executeTransfer runs the settlement call and, on success, the local
// movement unit of work. The transfer must already be persisted PENDING.
func (uc *MovementUseCase) executeTransfer(ctx context.Context, transfer *domain.Transfer) (*TransferResult, error) {
	started := time.Now()

	var cmd domain.SettlementCommand
	if transfer.IsInternal() {
		cmd = domain.TransferCommand{
			FromID:        transfer.SourceAccountID,
			ToID:          transfer.DestinationAccountID,
			Amount:        transfer.Amount,
			Currency:      transfer.Currency,
			Description:   transfer.Description,
			CorrelationID: transfer.ReferenceID,
		}
	} else {
		// External destinations settle as a withdrawal against the
		// external reference.
		cmd = domain.WithdrawCommand{
			AccountID:   transfer.SourceAccountID,
			Amount:      transfer.Amount,
			Description: transfer.Description,
		}
	}

	if err := uc.settle(ctx, cmd); err != nil {
		uc.markFailed(ctx, transfer, err)
		uc.observeFailed("transfer", err)
		return nil, err
	}

	var result *TransferResult
	err := uc.retrier.Retry(ctx, func() error {
		var opErr error
		result, opErr = uc.runTransferMovement(ctx, transfer)
		return opErr
	})
	if err != nil {
		uc.markFailed(ctx, transfer, err)
		uc.observeFailed("transfer", err)
		return nil, err
	}

	uc.observeCompleted("transfer", started, transfer.Amount)
	uc.invalidateBalance(ctx, transfer.SourceAccountID)
	if transfer.IsInternal() {
		uc.invalidateBalance(ctx, transfer.DestinationAccountID)
	}
	uc.audit(ctx, "", domain.AuditActionTransfer, transfer.ID, transfer.ReferenceID, nil)

	return result, nil
}

func (uc *MovementUseCase) runTransferMovement(ctx context.Context, transfer *domain.Transfer) (*TransferResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock accounts in sorted order (deadlock prevention).
	ids := []string{transfer.SourceAccountID}
	if transfer.IsInternal() {
		ids = append(ids, transfer.DestinationAccountID)
	}
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	if len(accounts) != len(ids) {
		return nil, domain.ErrAccountNotFound
	}

	var source, destination *domain.Account
	for _, a := range accounts {
		switch a.ID {
		case transfer.SourceAccountID:
			source = a
		case transfer.DestinationAccountID:
			destination = a
		}
	}
	if source == nil {
		return nil, domain.ErrAccountNotFound
	}

	if err := source.ValidateDebit(transfer.Amount); err != nil {
		return nil, err
	}

	if err := uc.checkDuplicate(ctx, transfer.ReferenceID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sourceExpected := source.Version
	source.ApplyDebit(transfer.Amount, now)

	if transfer.IsInternal() {
		destinationExpected := destination.Version
		destination.ApplyCredit(transfer.Amount, now)

		if err := uc.postJournal(ctx, tx, transfer.ReferenceID, transfer.Description, now, source, destination, transfer.Amount); err != nil {
			return nil, err
		}

		if err := uc.accountRepo.UpdateBalances(ctx, tx, destination, destinationExpected); err != nil {
			return nil, err
		}
	} else {
		cash, err := uc.registry.GetOrCreate(ctx, domain.PurposeCash, source.Currency)
		if err != nil {
			return nil, err
		}

		if err := uc.postJournal(ctx, tx, transfer.ReferenceID, transfer.Description, now, source, cash, transfer.Amount); err != nil {
			return nil, err
		}
	}

	// Exactly one log entry carries the operation's reference id, on the
	// debited source account.
	if err := uc.appendLog(ctx, tx, source, domain.EntryTypeDebit, transfer.Amount, transfer.ReferenceID, transfer.Description, now); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalances(ctx, tx, source, sourceExpected); err != nil {
		return nil, err
	}

	// The in-memory transfer is only transitioned after the commit so a
	// retried unit of work starts from PENDING again.
	if !transfer.CanTransitionTo(domain.TransferStatusCompleted) {
		return nil, domain.ErrIllegalTransition
	}

	if err := uc.transferRepo.UpdateStatusTx(ctx, tx, transfer.ID, domain.TransferStatusCompleted, "", now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if err := transfer.TransitionTo(domain.TransferStatusCompleted, now); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("transfer_id", transfer.ID).
		Str("reference_id", transfer.ReferenceID).
		Str("amount", transfer.Amount.String()).
		Str("type", string(transfer.Type)).
		Msg("transfer completed")

	return &TransferResult{
		Transfer: transfer,
		Source:   source.Snapshot(now),
	}, nil
}

// GetTransfer retrieves a transfer by ID.
func (uc *MovementUseCase) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return uc.transferRepo.GetByID(ctx, id)
}

// ListTransfersByAccount lists transfers touching an account.
func (uc *MovementUseCase) ListTransfersByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)
	return uc.transferRepo.ListByAccount(ctx, accountID, limit, offset)
}

// markFailed durably records the failure in an independent unit of work and
// keeps the original error for the caller.
func (uc *MovementUseCase) markFailed(ctx context.Context, transfer *domain.Transfer, cause error) {
	now := time.Now().UTC()
	if err := transfer.TransitionTo(domain.TransferStatusFailed, now); err != nil {
		uc.logger.Error().Err(err).
			Str("transfer_id", transfer.ID).
			Msg("cannot mark transfer failed")
		return
	}

	transfer.FailureReason = cause.Error()

	if err := uc.transferRepo.UpdateStatus(ctx, transfer.ID, transfer.Status, transfer.FailureReason, now); err != nil {
		uc.logger.Error().Err(err).
			Str("transfer_id", transfer.ID).
			Msg("failed to persist FAILED status")
		return
	}

	uc.logger.Warn().
		Str("transfer_id", transfer.ID).
		Str("reason", transfer.FailureReason).
		Msg("transfer marked failed")
}

// settle executes a settlement command and converts rejections and transport
// failures into domain errors.
func (uc *MovementUseCase) settle(ctx context.Context, cmd domain.SettlementCommand) error {
	result, err := uc.gateway.Execute(ctx, cmd)
	if err != nil {
		return domain.SettlementError("UNREACHABLE", err.Error())
	}

	if !result.Successful {
		return domain.SettlementError(result.ErrorCode, result.ErrorMessage)
	}

	return nil
}

// checkDuplicate rejects a reference id that already appears in the
// transaction log before any further mutation.
func (uc *MovementUseCase) checkDuplicate(ctx context.Context, referenceID string) error {
	exists, err := uc.logRepo.ExistsByReference(ctx, referenceID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicateOperation
	}
	return nil
}

// authorizedAccount loads an account and verifies the caller owns it.
func (uc *MovementUseCase) authorizedAccount(ctx context.Context, callerID, accountID string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if account.CustomerID != callerID {
		return nil, domain.ErrOwnershipViolation
	}

	return account, nil
}

func (uc *MovementUseCase) postJournal(ctx context.Context, tx Transaction, reference, description string, now time.Time, debited, credited *domain.Account, amount decimal.Decimal) error {
	entry := &domain.JournalEntry{
		ID:          uc.idGen.Generate(),
		Reference:   reference,
		Description: description,
		EntryDate:   now,
		Lines: []domain.JournalLine{
			{
				ID:          uc.idGen.Generate(),
				AccountID:   debited.ID,
				Type:        domain.EntryTypeDebit,
				Amount:      amount,
				Currency:    debited.Currency,
				Description: description,
			},
			{
				ID:          uc.idGen.Generate(),
				AccountID:   credited.ID,
				Type:        domain.EntryTypeCredit,
				Amount:      amount,
				Currency:    credited.Currency,
				Description: description,
			},
		},
	}

	for i := range entry.Lines {
		entry.Lines[i].EntryID = entry.ID
	}

	if err := entry.Validate(); err != nil {
		return err
	}

	return uc.journalRepo.CreateEntry(ctx, tx, entry)
}

func (uc *MovementUseCase) appendLog(ctx context.Context, tx Transaction, account *domain.Account, entryType domain.EntryType, amount decimal.Decimal, referenceID, description string, now time.Time) error {
	return uc.logRepo.Create(ctx, tx, &domain.TransactionLogEntry{
		ID:           uc.idGen.Generate(),
		AccountID:    account.ID,
		Type:         entryType,
		Amount:       amount,
		Currency:     account.Currency,
		BalanceAfter: account.CurrentBalance,
		Timestamp:    now,
		Description:  description,
		ReferenceID:  referenceID,
	})
}

func (uc *MovementUseCase) referenceID(supplied string) string {
	if supplied != "" {
		return supplied
	}
	return uc.idGen.Generate()
}

func (uc *MovementUseCase) invalidateBalance(ctx context.Context, accountID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, balanceCacheKey(accountID)); err != nil {
		uc.logger.Warn().Err(err).Str("account_id", accountID).Msg("balance cache invalidation failed")
	}
}

func (uc *MovementUseCase) audit(ctx context.Context, customerID string, action domain.AuditAction, resourceID, referenceID string, detail domain.JSON) {
	if uc.auditRepo == nil {
		return
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		CustomerID:   customerID,
		Action:       action,
		ResourceType: "movement",
		ResourceID:   resourceID,
		Detail:       detail,
		Status:       domain.AuditStatusSuccess,
		CreatedAt:    time.Now().UTC(),
	}
	if log.Detail == nil {
		log.Detail = domain.JSON{"reference_id": referenceID}
	}

	if err := uc.auditRepo.Create(ctx, log); err != nil {
		uc.logger.Warn().Err(err).Str("action", string(action)).Msg("audit write failed")
		return
	}

	uc.metrics.AuditLogsCreated.WithLabelValues(string(action), string(log.Status)).Inc()
}

func (uc *MovementUseCase) observeCompleted(movementType string, started time.Time, amount decimal.Decimal) {
	uc.metrics.MovementsCompleted.WithLabelValues(movementType).Inc()
	uc.metrics.MovementDuration.WithLabelValues(movementType).Observe(time.Since(started).Seconds())
	uc.metrics.MovementAmount.Observe(amount.InexactFloat64())
}

func (uc *MovementUseCase) observeFailed(movementType string, err error) {
	uc.metrics.MovementsFailed.WithLabelValues(movementType, string(domain.CodeOf(err))).Inc()
}

func validateMovement(amount decimal.Decimal, description string) error {
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}
	return domain.ValidateDescription(description)
}
