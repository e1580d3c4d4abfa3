package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/infrastructure/metrics"
)

// ReconciliationUseCase compares cached balances to journal-derived balances
// and reports drift. It is read-only: mismatches are reported, never
// corrected. Correction requires an explicit compensation action.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	journalRepo JournalRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	journalRepo JournalRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		metrics:     m,
		logger:      logger,
	}
}

// ReconciliationResult is the verification outcome for one account.
type ReconciliationResult struct {
	AccountID      string
	CachedBalance  decimal.Decimal
	JournalBalance decimal.Decimal
	Difference     decimal.Decimal
	Balanced       bool
	CheckedAt      time.Time
}

// ReconciliationReport summarizes a full reconciliation pass.
type ReconciliationReport struct {
	TotalAccounts    int
	BalancedAccounts int
	SkippedAccounts  int
	Discrepancies    []*ReconciliationResult
	CheckedAt        time.Time
}

// Verify compares one account's cached balance with the balance derived from
// its journal lines (credits minus debits), after identical rounding.
func (uc *ReconciliationUseCase) Verify(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return uc.verifyAccount(ctx, account)
}

func (uc *ReconciliationUseCase) verifyAccount(ctx context.Context, account *domain.Account) (*ReconciliationResult, error) {
	now := time.Now().UTC()

	// System accounts keep zero cached balances; their journal lines exist
	// only as counter-parties, so the per-account invariant does not apply.
	if account.IsSystem() {
		return &ReconciliationResult{
			AccountID:      account.ID,
			CachedBalance:  account.CurrentBalance,
			JournalBalance: account.CurrentBalance,
			Difference:     decimal.Zero,
			Balanced:       true,
			CheckedAt:      now,
		}, nil
	}

	debits, credits, err := uc.journalRepo.SumByAccountAndType(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	cached := domain.RoundAmount(account.CurrentBalance, account.Currency)
	derived := domain.RoundAmount(credits.Sub(debits), account.Currency)

	return &ReconciliationResult{
		AccountID:      account.ID,
		CachedBalance:  cached,
		JournalBalance: derived,
		Difference:     cached.Sub(derived),
		Balanced:       cached.Equal(derived),
		CheckedAt:      now,
	}, nil
}

// ReconcileAll verifies every account and collects the ones that fail. Safe
// to run concurrently with live mutations; a straddling pass may report a
// transient mismatch and must simply be re-run.
func (uc *ReconciliationUseCase) ReconcileAll(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	offset := 0
	for {
		accounts, err := uc.accountRepo.List(ctx, reconciliationPageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			break
		}

		for _, account := range accounts {
			if account.IsSystem() {
				report.TotalAccounts++
				report.SkippedAccounts++
				continue
			}

			result, err := uc.verifyAccount(ctx, account)
			if err != nil {
				return nil, err
			}

			report.TotalAccounts++
			if result.Balanced {
				report.BalancedAccounts++
			} else {
				report.Discrepancies = append(report.Discrepancies, result)
			}
		}

		if len(accounts) < reconciliationPageSize {
			break
		}
		offset += reconciliationPageSize
	}

	return report, nil
}

// RunScheduledReconciliation is the entry point for the external time-based
// trigger. It runs a full pass, logs the outcome, and records an audit row.
func (uc *ReconciliationUseCase) RunScheduledReconciliation(ctx context.Context) (*ReconciliationReport, error) {
	report, err := uc.ReconcileAll(ctx)
	if err != nil {
		return nil, err
	}

	uc.metrics.ReconciliationRuns.Inc()
	uc.metrics.AccountsReconciled.Add(float64(report.TotalAccounts - report.SkippedAccounts))
	uc.metrics.DiscrepanciesDetected.Add(float64(len(report.Discrepancies)))
	uc.metrics.ReconciliationDrift.Set(float64(len(report.Discrepancies)))

	event := uc.logger.Info()
	if len(report.Discrepancies) > 0 {
		event = uc.logger.Warn()
	}
	event.
		Int("total", report.TotalAccounts).
		Int("balanced", report.BalancedAccounts).
		Int("skipped", report.SkippedAccounts).
		Int("discrepancies", len(report.Discrepancies)).
		Msg("scheduled reconciliation finished")

	if uc.auditRepo != nil {
		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			Action:       domain.AuditActionReconciliation,
			ResourceType: "ledger",
			Detail: domain.JSON{
				"total":         report.TotalAccounts,
				"balanced":      report.BalancedAccounts,
				"discrepancies": len(report.Discrepancies),
			},
			Status:    domain.AuditStatusSuccess,
			CreatedAt: time.Now().UTC(),
		}
		if len(report.Discrepancies) > 0 {
			log.Status = domain.AuditStatusFailure
		}

		if err := uc.auditRepo.Create(ctx, log); err != nil {
			uc.logger.Warn().Err(err).Msg("audit write failed")
		} else {
			uc.metrics.AuditLogsCreated.WithLabelValues(string(log.Action), string(log.Status)).Inc()
		}
	}

	return report, nil
}
