package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records a financial operation for compliance review. Writing an
// audit row is best effort and never fails the operation it describes.
type AuditLog struct {
	ID           string
	CustomerID   string
	Action       AuditAction
	ResourceType string
	ResourceID   string
	RequestID    string
	Detail       JSON
	Status       AuditStatus
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionDeposit        AuditAction = "movement.deposit"
	AuditActionWithdraw       AuditAction = "movement.withdraw"
	AuditActionTransfer       AuditAction = "movement.transfer"
	AuditActionCompensation   AuditAction = "transfer.compensate"
	AuditActionCancellation   AuditAction = "transfer.cancel"
	AuditActionSchedule       AuditAction = "transfer.schedule"
	AuditActionEndOfDay       AuditAction = "batch.end_of_day"
	AuditActionReconciliation AuditAction = "reconciliation.run"
	AuditActionAccountOpen    AuditAction = "account.open"
	AuditActionAccountClose   AuditAction = "account.close"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	CustomerID   string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
