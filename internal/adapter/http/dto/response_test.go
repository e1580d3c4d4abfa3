package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/usecase"
)

func TestAccountFromDomain(t *testing.T) {
	now := time.Now()
	account := &domain.Account{
		ID:               "acc-1",
		CustomerID:       "cust-1",
		Number:           "ACCT-acc-1",
		Currency:         "USD",
		Type:             domain.AccountTypeCustomer,
		Status:           domain.AccountStatusActive,
		CurrentBalance:   decimal.RequireFromString("123.45"),
		AvailableBalance: decimal.RequireFromString("123.45"),
		Version:          2,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	resp := AccountFromDomain(account)
	if resp.ID != account.ID || !resp.CurrentBalance.Equal(account.CurrentBalance) || resp.Version != 2 {
		t.Fatalf("unexpected account response: %+v", resp)
	}
	if resp.Type != "CUSTOMER" || resp.Status != "ACTIVE" {
		t.Fatalf("unexpected account response: %+v", resp)
	}

	list := AccountsFromDomain([]*domain.Account{account})
	if len(list) != 1 || list[0].ID != account.ID {
		t.Fatalf("AccountsFromDomain returned %+v", list)
	}
}

func TestTransferFromDomain(t *testing.T) {
	now := time.Now()
	transfer := &domain.Transfer{
		ID:                   "tr-1",
		ReferenceID:          "ref-1",
		SourceAccountID:      "A",
		DestinationAccountID: "B",
		Amount:               decimal.RequireFromString("10"),
		Currency:             "USD",
		Type:                 domain.TransferTypeInternal,
		Status:               domain.TransferStatusCompleted,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	resp := TransferFromDomain(transfer)
	if resp.ID != transfer.ID || !resp.Amount.Equal(transfer.Amount) || resp.Status != "COMPLETED" {
		t.Fatalf("unexpected transfer response: %+v", resp)
	}

	list := TransfersFromDomain([]*domain.Transfer{transfer})
	if len(list) != 1 || list[0].ID != transfer.ID {
		t.Fatalf("TransfersFromDomain returned %+v", list)
	}
}

func TestTransactionFromDomain(t *testing.T) {
	entry := &domain.TransactionLogEntry{
		ID:           "log-1",
		AccountID:    "acc",
		Type:         domain.EntryTypeCredit,
		Amount:       decimal.RequireFromString("5"),
		Currency:     "USD",
		BalanceAfter: decimal.RequireFromString("15"),
		Timestamp:    time.Now(),
		ReferenceID:  "ref-1",
	}

	resp := TransactionFromDomain(entry)
	if resp.AccountID != entry.AccountID || resp.Type != "CREDIT" || !resp.BalanceAfter.Equal(entry.BalanceAfter) {
		t.Fatalf("unexpected transaction response: %+v", resp)
	}

	list := TransactionsFromDomain([]*domain.TransactionLogEntry{entry})
	if len(list) != 1 || list[0].ID != entry.ID {
		t.Fatalf("TransactionsFromDomain returned %+v", list)
	}
}

func TestReconciliationReportFromUseCase(t *testing.T) {
	now := time.Now()
	report := &usecase.ReconciliationReport{
		TotalAccounts:    3,
		BalancedAccounts: 1,
		SkippedAccounts:  1,
		Discrepancies: []*usecase.ReconciliationResult{
			{
				AccountID:      "acc-1",
				CachedBalance:  decimal.RequireFromString("10"),
				JournalBalance: decimal.RequireFromString("5"),
				Difference:     decimal.RequireFromString("5"),
				CheckedAt:      now,
			},
		},
		CheckedAt: now,
	}

	resp := ReconciliationReportFromUseCase(report)
	if resp.TotalAccounts != 3 || len(resp.Discrepancies) != 1 {
		t.Fatalf("unexpected reconciliation response: %+v", resp)
	}
	if !resp.Discrepancies[0].Difference.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("unexpected discrepancy: %+v", resp.Discrepancies[0])
	}
}

func TestEndOfDayFromUseCase(t *testing.T) {
	now := time.Now()
	report := &usecase.EndOfDayReport{
		Executed:       2,
		Failed:         1,
		FailedIDs:      []string{"tr-9"},
		Reconciliation: &usecase.ReconciliationReport{CheckedAt: now},
		StartedAt:      now,
		FinishedAt:     now,
	}

	resp := EndOfDayFromUseCase(report)
	if resp.Executed != 2 || resp.Failed != 1 || len(resp.FailedIDs) != 1 {
		t.Fatalf("unexpected end-of-day response: %+v", resp)
	}
	if resp.Reconciliation == nil {
		t.Fatalf("expected embedded reconciliation report")
	}
}
