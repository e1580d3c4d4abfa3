package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle state of a transfer.
type TransferStatus string

const (
	TransferStatusPending     TransferStatus = "PENDING"
	TransferStatusCompleted   TransferStatus = "COMPLETED"
	TransferStatusFailed      TransferStatus = "FAILED"
	TransferStatusCompensated TransferStatus = "COMPENSATED"
	TransferStatusCancelled   TransferStatus = "CANCELLED"
	TransferStatusScheduled   TransferStatus = "SCHEDULED"
)

// TransferType classifies what kind of movement the transfer records.
type TransferType string

const (
	TransferTypeInternal     TransferType = "INTERNAL"
	TransferTypeExternal     TransferType = "EXTERNAL"
	TransferTypeScheduled    TransferType = "SCHEDULED"
	TransferTypeCompensation TransferType = "COMPENSATION"
)

// transferTransitions is the only source of truth for status changes.
// Status writes outside this table are forbidden.
var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferStatusScheduled: {TransferStatusPending, TransferStatusCancelled},
	TransferStatusPending:   {TransferStatusCompleted, TransferStatusFailed, TransferStatusCancelled},
	TransferStatusFailed:    {TransferStatusCompensated},
}

// Transfer records intent to move funds from a source account to an internal
// destination account or an external reference. ReferenceID links the
// transfer to its journal entry, log entry, and any compensation.
type Transfer struct {
	ID                   string
	ReferenceID          string
	SourceAccountID      string
	DestinationAccountID string
	ExternalReference    string
	Amount               decimal.Decimal
	Currency             string
	Type                 TransferType
	Status               TransferStatus
	Description          string
	FailureReason        string
	ScheduledAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Validate validates the transfer request.
func (t *Transfer) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if t.DestinationAccountID != "" && t.SourceAccountID == t.DestinationAccountID {
		return ErrSameAccount
	}

	return nil
}

// CanTransitionTo reports whether the transition is allowed by the lifecycle
// table.
func (t *Transfer) CanTransitionTo(next TransferStatus) bool {
	for _, allowed := range transferTransitions[t.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo moves the transfer to the next status, enforcing the
// lifecycle table.
func (t *Transfer) TransitionTo(next TransferStatus, now time.Time) error {
	if !t.CanTransitionTo(next) {
		return ErrIllegalTransition
	}

	t.Status = next
	t.UpdatedAt = now

	return nil
}

// IsInternal reports whether the destination is a resolvable ledger account.
func (t *Transfer) IsInternal() bool {
	return t.DestinationAccountID != ""
}
