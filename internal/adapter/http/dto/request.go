package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/usecase"
)

// CreateCustomerRequest represents a request to register a customer.
type CreateCustomerRequest struct {
	Name string `json:"name"`
}

// OpenAccountRequest represents a request to open an account.
type OpenAccountRequest struct {
	Currency string `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput(callerID string) usecase.OpenAccountInput {
	return usecase.OpenAccountInput{
		CustomerID: callerID,
		Currency:   r.Currency,
	}
}

// MovementRequest represents a deposit or withdrawal request. ReferenceID is
// optional; supplying the same id twice makes the second call a duplicate.
type MovementRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ReferenceID string          `json:"reference_id,omitempty"`
}

// ToDepositInput converts to use case input.
func (r *MovementRequest) ToDepositInput(callerID, accountID string) usecase.DepositInput {
	return usecase.DepositInput{
		CallerID:    callerID,
		AccountID:   accountID,
		Amount:      r.Amount,
		Description: r.Description,
		ReferenceID: r.ReferenceID,
	}
}

// ToWithdrawInput converts to use case input.
func (r *MovementRequest) ToWithdrawInput(callerID, accountID string) usecase.WithdrawInput {
	return usecase.WithdrawInput{
		CallerID:    callerID,
		AccountID:   accountID,
		Amount:      r.Amount,
		Description: r.Description,
		ReferenceID: r.ReferenceID,
	}
}

// CreateTransferRequest represents a request to transfer funds. Exactly one of
// DestinationAccountID or ExternalReference must be set.
type CreateTransferRequest struct {
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id,omitempty"`
	ExternalReference    string          `json:"external_reference,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	Description          string          `json:"description"`
	ReferenceID          string          `json:"reference_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput(callerID string) usecase.TransferInput {
	return usecase.TransferInput{
		CallerID:             callerID,
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		ExternalReference:    r.ExternalReference,
		Amount:               r.Amount,
		Description:          r.Description,
		ReferenceID:          r.ReferenceID,
	}
}

// JournalLineRequest is one debit or credit in a manual journal posting.
type JournalLineRequest struct {
	AccountID   string          `json:"account_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`
}

// CreateJournalEntryRequest represents a manual adjustment posting.
type CreateJournalEntryRequest struct {
	Reference   string               `json:"reference"`
	Description string               `json:"description"`
	Lines       []JournalLineRequest `json:"lines"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateJournalEntryRequest) ToUseCaseInput() usecase.CreateEntryInput {
	input := usecase.CreateEntryInput{
		Reference:   r.Reference,
		Description: r.Description,
	}
	for _, line := range r.Lines {
		input.Lines = append(input.Lines, usecase.JournalLineInput{
			AccountID:   line.AccountID,
			Type:        domain.EntryType(line.Type),
			Amount:      line.Amount,
			Currency:    line.Currency,
			Description: line.Description,
		})
	}
	return input
}

// ScheduleTransferRequest represents a request to schedule a future transfer.
type ScheduleTransferRequest struct {
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id,omitempty"`
	ExternalReference    string          `json:"external_reference,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	Description          string          `json:"description"`
	ScheduledAt          time.Time       `json:"scheduled_at"`
}

// ToUseCaseInput converts to use case input.
func (r *ScheduleTransferRequest) ToUseCaseInput(callerID string) usecase.ScheduleTransferInput {
	return usecase.ScheduleTransferInput{
		CallerID:             callerID,
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		ExternalReference:    r.ExternalReference,
		Amount:               r.Amount,
		Description:          r.Description,
		ScheduledAt:          r.ScheduledAt,
	}
}
