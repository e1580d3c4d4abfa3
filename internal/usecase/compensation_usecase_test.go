package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/infrastructure/metrics"
	"github.com/corebank-io/corebank/internal/usecase"
	"github.com/corebank-io/corebank/internal/usecase/mocks"
)

type compensationFixture struct {
	accountRepo  *mocks.MockAccountRepository
	transferRepo *mocks.MockTransferRepository
	journalRepo  *mocks.MockJournalRepository
	logRepo      *mocks.MockTransactionLogRepository
	uc           *usecase.CompensationUseCase
}

func newCompensationFixture(t *testing.T) *compensationFixture {
	t.Helper()

	f := &compensationFixture{
		accountRepo:  mocks.NewMockAccountRepository(),
		transferRepo: mocks.NewMockTransferRepository(),
		journalRepo:  mocks.NewMockJournalRepository(),
		logRepo:      mocks.NewMockTransactionLogRepository(),
	}

	idGen := mocks.NewMockIDGenerator()
	registry := usecase.NewSystemAccountRegistry(f.accountRepo, mocks.NewMockCustomerRepository(), idGen, zerolog.Nop())
	f.uc = usecase.NewCompensationUseCase(
		mocks.NewMockTransactionManager(),
		mocks.NewMockRetrier(),
		f.accountRepo,
		f.transferRepo,
		f.journalRepo,
		f.logRepo,
		mocks.NewMockAuditRepository(),
		registry,
		idGen,
		mocks.NewMockCache(),
		metrics.New(prometheus.NewRegistry()),
		zerolog.Nop(),
	)

	return f
}

func (f *compensationFixture) seedFailedTransfer(id, referenceID, sourceID, amount string) *domain.Transfer {
	transfer := &domain.Transfer{
		ID:                   id,
		ReferenceID:          referenceID,
		SourceAccountID:      sourceID,
		DestinationAccountID: "acc-dst",
		Amount:               decimal.RequireFromString(amount),
		Currency:             "USD",
		Type:                 domain.TransferTypeInternal,
		Status:               domain.TransferStatusFailed,
		FailureReason:        "settlement rejected [E7]: down",
	}
	f.transferRepo.Put(transfer)
	return transfer
}

func (f *compensationFixture) seedDebitLog(accountID, referenceID, amount string) {
	_ = f.logRepo.Create(context.Background(), nil, &domain.TransactionLogEntry{
		ID:          "log-" + referenceID,
		AccountID:   accountID,
		Type:        domain.EntryTypeDebit,
		Amount:      decimal.RequireFromString(amount),
		Currency:    "USD",
		Timestamp:   time.Now().UTC(),
		ReferenceID: referenceID,
	})
}

func TestCompensation_Refund(t *testing.T) {
	f := newCompensationFixture(t)
	ctx := context.Background()

	source := &domain.Account{
		ID:               "acc-src",
		CustomerID:       "cust-1",
		Currency:         "USD",
		Type:             domain.AccountTypeCustomer,
		Status:           domain.AccountStatusActive,
		CurrentBalance:   decimal.RequireFromString("70.00"),
		AvailableBalance: decimal.RequireFromString("70.00"),
	}
	f.accountRepo.Put(source)

	transfer := f.seedFailedTransfer("tr-1", "ref-1", "acc-src", "30.00")
	f.seedDebitLog("acc-src", "ref-1", "30.00")

	result, err := f.uc.Compensate(ctx, "tr-1")
	require.NoError(t, err)

	assert.True(t, result.Refunded)
	assert.Equal(t, "tr-1", result.OriginalTransferID)
	assert.NotEmpty(t, result.CompensationTransferID)

	// Source is made whole and the transfer closed out.
	assert.True(t, source.CurrentBalance.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, domain.TransferStatusCompensated, transfer.Status)

	// A COMPENSATION transfer now references the original.
	compensation, err := f.transferRepo.GetByID(ctx, result.CompensationTransferID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferTypeCompensation, compensation.Type)
	assert.Equal(t, domain.TransferStatusCompleted, compensation.Status)
	assert.Equal(t, "tr-1", compensation.ReferenceID)

	// The refund posts its own balanced journal entry and CREDIT log entry
	// under a fresh reference, not the original one.
	entries := f.journalRepo.Entries()
	require.Len(t, entries, 1)
	require.NoError(t, entries[0].Validate())
	assert.NotEqual(t, "ref-1", entries[0].Reference)

	logs := f.logRepo.AllEntries()
	require.Len(t, logs, 2)
	refund := logs[1]
	assert.Equal(t, domain.EntryTypeCredit, refund.Type)
	assert.Equal(t, "acc-src", refund.AccountID)
	assert.NotEqual(t, "ref-1", refund.ReferenceID)
}

func TestCompensation_AlreadyCompensatedIsNoOp(t *testing.T) {
	f := newCompensationFixture(t)
	ctx := context.Background()

	source := &domain.Account{
		ID:               "acc-src",
		CustomerID:       "cust-1",
		Currency:         "USD",
		Type:             domain.AccountTypeCustomer,
		Status:           domain.AccountStatusActive,
		CurrentBalance:   decimal.RequireFromString("100.00"),
		AvailableBalance: decimal.RequireFromString("100.00"),
	}
	f.accountRepo.Put(source)

	transfer := f.seedFailedTransfer("tr-1", "ref-1", "acc-src", "30.00")
	transfer.Status = domain.TransferStatusCompensated

	result, err := f.uc.Compensate(ctx, "tr-1")
	require.NoError(t, err)

	assert.False(t, result.Refunded)
	assert.True(t, source.CurrentBalance.Equal(decimal.RequireFromString("100.00")))
	assert.Empty(t, f.journalRepo.Entries())
}

func TestCompensation_ExistingCompensationBlocksSecondRefund(t *testing.T) {
	f := newCompensationFixture(t)
	ctx := context.Background()

	source := &domain.Account{
		ID:               "acc-src",
		CustomerID:       "cust-1",
		Currency:         "USD",
		Type:             domain.AccountTypeCustomer,
		Status:           domain.AccountStatusActive,
		CurrentBalance:   decimal.RequireFromString("70.00"),
		AvailableBalance: decimal.RequireFromString("70.00"),
	}
	f.accountRepo.Put(source)

	transfer := f.seedFailedTransfer("tr-1", "ref-1", "acc-src", "30.00")
	f.seedDebitLog("acc-src", "ref-1", "30.00")

	// A prior run already wrote the compensation transfer, but the status
	// update was lost. The guard must detect it and skip the credit.
	f.transferRepo.Put(&domain.Transfer{
		ID:              "comp-0",
		ReferenceID:     "tr-1",
		SourceAccountID: "acc-src",
		Amount:          decimal.RequireFromString("30.00"),
		Currency:        "USD",
		Type:            domain.TransferTypeCompensation,
		Status:          domain.TransferStatusCompleted,
	})

	result, err := f.uc.Compensate(ctx, "tr-1")
	require.NoError(t, err)

	assert.False(t, result.Refunded)
	assert.True(t, source.CurrentBalance.Equal(decimal.RequireFromString("70.00")))
	assert.Equal(t, domain.TransferStatusCompensated, transfer.Status)
}

func TestCompensation_NoDebitMeansNoRefund(t *testing.T) {
	f := newCompensationFixture(t)
	ctx := context.Background()

	source := &domain.Account{
		ID:               "acc-src",
		CustomerID:       "cust-1",
		Currency:         "USD",
		Type:             domain.AccountTypeCustomer,
		Status:           domain.AccountStatusActive,
		CurrentBalance:   decimal.RequireFromString("100.00"),
		AvailableBalance: decimal.RequireFromString("100.00"),
	}
	f.accountRepo.Put(source)

	// Failed before the movement unit of work committed: no log entry exists.
	transfer := f.seedFailedTransfer("tr-1", "ref-1", "acc-src", "30.00")

	result, err := f.uc.Compensate(ctx, "tr-1")
	require.NoError(t, err)

	assert.False(t, result.Refunded)
	assert.Equal(t, domain.TransferStatusCompensated, transfer.Status)
	assert.True(t, source.CurrentBalance.Equal(decimal.RequireFromString("100.00")))
	assert.Empty(t, f.journalRepo.Entries())
	assert.Empty(t, f.logRepo.AllEntries())
}

func TestCompensation_RejectsNonFailedTransfer(t *testing.T) {
	f := newCompensationFixture(t)
	ctx := context.Background()

	for _, status := range []domain.TransferStatus{
		domain.TransferStatusPending,
		domain.TransferStatusCompleted,
		domain.TransferStatusCancelled,
	} {
		transfer := f.seedFailedTransfer("tr-"+string(status), "ref-"+string(status), "acc-src", "30.00")
		transfer.Status = status

		_, err := f.uc.Compensate(ctx, transfer.ID)
		require.ErrorIs(t, err, domain.ErrTransferNotFailed, "status %s", status)
	}
}

func TestCompensation_UnknownTransfer(t *testing.T) {
	f := newCompensationFixture(t)

	_, err := f.uc.Compensate(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrTransferNotFound)
}
