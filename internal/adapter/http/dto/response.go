package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/usecase"
)

// CustomerResponse represents a customer in API responses. Token is set only
// on registration.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID               string          `json:"id"`
	CustomerID       string          `json:"customer_id"`
	Number           string          `json:"number"`
	Currency         string          `json:"currency"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:               a.ID,
		CustomerID:       a.CustomerID,
		Number:           a.Number,
		Currency:         a.Currency,
		Type:             string(a.Type),
		Status:           string(a.Status),
		CurrentBalance:   a.CurrentBalance,
		AvailableBalance: a.AvailableBalance,
		Version:          a.Version,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// BalanceResponse represents a balance snapshot in API responses.
type BalanceResponse struct {
	AccountID        string          `json:"account_id"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	Currency         string          `json:"currency"`
	AsOf             time.Time       `json:"as_of"`
}

// BalanceFromDomain converts a balance snapshot to a response.
func BalanceFromDomain(s *domain.BalanceSnapshot) *BalanceResponse {
	return &BalanceResponse{
		AccountID:        s.AccountID,
		CurrentBalance:   s.CurrentBalance,
		AvailableBalance: s.AvailableBalance,
		Currency:         s.Currency,
		AsOf:             s.AsOf,
	}
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID                   string          `json:"id"`
	ReferenceID          string          `json:"reference_id"`
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id,omitempty"`
	ExternalReference    string          `json:"external_reference,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	Type                 string          `json:"type"`
	Status               string          `json:"status"`
	Description          string          `json:"description,omitempty"`
	FailureReason        string          `json:"failure_reason,omitempty"`
	ScheduledAt          *time.Time      `json:"scheduled_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// TransferFromDomain converts a domain transfer to a response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:                   t.ID,
		ReferenceID:          t.ReferenceID,
		SourceAccountID:      t.SourceAccountID,
		DestinationAccountID: t.DestinationAccountID,
		ExternalReference:    t.ExternalReference,
		Amount:               t.Amount,
		Currency:             t.Currency,
		Type:                 string(t.Type),
		Status:               string(t.Status),
		Description:          t.Description,
		FailureReason:        t.FailureReason,
		ScheduledAt:          t.ScheduledAt,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// TransferResultResponse is the outcome of a completed transfer, including the
// source account's post-movement balance.
type TransferResultResponse struct {
	Transfer *TransferResponse `json:"transfer"`
	Source   *BalanceResponse  `json:"source"`
}

// TransferResultFromUseCase converts a transfer result to a response.
func TransferResultFromUseCase(r *usecase.TransferResult) *TransferResultResponse {
	source := r.Source
	return &TransferResultResponse{
		Transfer: TransferFromDomain(r.Transfer),
		Source:   BalanceFromDomain(&source),
	}
}

// TransactionResponse represents a transaction log entry in API responses.
type TransactionResponse struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Timestamp    time.Time       `json:"timestamp"`
	Description  string          `json:"description,omitempty"`
	ReferenceID  string          `json:"reference_id"`
}

// TransactionFromDomain converts a log entry to a response.
func TransactionFromDomain(e *domain.TransactionLogEntry) *TransactionResponse {
	return &TransactionResponse{
		ID:           e.ID,
		AccountID:    e.AccountID,
		Type:         string(e.Type),
		Amount:       e.Amount,
		Currency:     e.Currency,
		BalanceAfter: e.BalanceAfter,
		Timestamp:    e.Timestamp,
		Description:  e.Description,
		ReferenceID:  e.ReferenceID,
	}
}

// TransactionsFromDomain converts log entries to responses.
func TransactionsFromDomain(entries []*domain.TransactionLogEntry) []*TransactionResponse {
	result := make([]*TransactionResponse, len(entries))
	for i, e := range entries {
		result[i] = TransactionFromDomain(e)
	}
	return result
}

// JournalLineResponse represents a journal line in API responses.
type JournalLineResponse struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`
}

// JournalEntryResponse represents a journal entry in API responses.
type JournalEntryResponse struct {
	ID          string                `json:"id"`
	Reference   string                `json:"reference"`
	Description string                `json:"description,omitempty"`
	EntryDate   time.Time             `json:"entry_date"`
	Lines       []JournalLineResponse `json:"lines"`
}

// JournalEntryFromDomain converts a journal entry to a response.
func JournalEntryFromDomain(e *domain.JournalEntry) *JournalEntryResponse {
	resp := &JournalEntryResponse{
		ID:          e.ID,
		Reference:   e.Reference,
		Description: e.Description,
		EntryDate:   e.EntryDate,
	}
	for _, line := range e.Lines {
		resp.Lines = append(resp.Lines, JournalLineResponse{
			ID:          line.ID,
			AccountID:   line.AccountID,
			Type:        string(line.Type),
			Amount:      line.Amount,
			Currency:    line.Currency,
			Description: line.Description,
		})
	}
	return resp
}

// JournalEntriesFromDomain converts journal entries to responses.
func JournalEntriesFromDomain(entries []*domain.JournalEntry) []*JournalEntryResponse {
	result := make([]*JournalEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = JournalEntryFromDomain(e)
	}
	return result
}

// CompensationResponse describes what a compensation run did.
type CompensationResponse struct {
	OriginalTransferID     string `json:"original_transfer_id"`
	CompensationTransferID string `json:"compensation_transfer_id,omitempty"`
	Refunded               bool   `json:"refunded"`
}

// CompensationFromUseCase converts a compensation result to a response.
func CompensationFromUseCase(r *usecase.CompensationResult) *CompensationResponse {
	return &CompensationResponse{
		OriginalTransferID:     r.OriginalTransferID,
		CompensationTransferID: r.CompensationTransferID,
		Refunded:               r.Refunded,
	}
}

// ReconciliationResultResponse is one account's verification outcome.
type ReconciliationResultResponse struct {
	AccountID      string          `json:"account_id"`
	CachedBalance  decimal.Decimal `json:"cached_balance"`
	JournalBalance decimal.Decimal `json:"journal_balance"`
	Difference     decimal.Decimal `json:"difference"`
	Balanced       bool            `json:"balanced"`
	CheckedAt      time.Time       `json:"checked_at"`
}

// ReconciliationResultFromUseCase converts a verification result to a response.
func ReconciliationResultFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResultResponse {
	return &ReconciliationResultResponse{
		AccountID:      r.AccountID,
		CachedBalance:  r.CachedBalance,
		JournalBalance: r.JournalBalance,
		Difference:     r.Difference,
		Balanced:       r.Balanced,
		CheckedAt:      r.CheckedAt,
	}
}

// ReconciliationReportResponse summarizes a full reconciliation pass.
type ReconciliationReportResponse struct {
	TotalAccounts    int                             `json:"total_accounts"`
	BalancedAccounts int                             `json:"balanced_accounts"`
	SkippedAccounts  int                             `json:"skipped_accounts"`
	Discrepancies    []*ReconciliationResultResponse `json:"discrepancies"`
	CheckedAt        time.Time                       `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a reconciliation report to a
// response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResultResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationResultFromUseCase(d)
	}
	return &ReconciliationReportResponse{
		TotalAccounts:    r.TotalAccounts,
		BalancedAccounts: r.BalancedAccounts,
		SkippedAccounts:  r.SkippedAccounts,
		Discrepancies:    discrepancies,
		CheckedAt:        r.CheckedAt,
	}
}

// EndOfDayResponse summarizes one end-of-day run.
type EndOfDayResponse struct {
	Executed       int                           `json:"executed"`
	Failed         int                           `json:"failed"`
	FailedIDs      []string                      `json:"failed_ids,omitempty"`
	Reconciliation *ReconciliationReportResponse `json:"reconciliation"`
	StartedAt      time.Time                     `json:"started_at"`
	FinishedAt     time.Time                     `json:"finished_at"`
}

// EndOfDayFromUseCase converts an end-of-day report to a response.
func EndOfDayFromUseCase(r *usecase.EndOfDayReport) *EndOfDayResponse {
	return &EndOfDayResponse{
		Executed:       r.Executed,
		Failed:         r.Failed,
		FailedIDs:      r.FailedIDs,
		Reconciliation: ReconciliationReportFromUseCase(r.Reconciliation),
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
	}
}

// ErrorResponse represents an error in API responses. Retryable tells the
// client whether resubmitting the same request can succeed.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable"`
}
