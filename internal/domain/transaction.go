package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionLogEntry is one append-only history row for an account, used
// for customer-facing statements. ReferenceID is unique across the log;
// a duplicate insert signals a retried operation.
type TransactionLogEntry struct {
	ID           string
	AccountID    string
	Type         EntryType
	Amount       decimal.Decimal
	Currency     string
	BalanceAfter decimal.Decimal
	Timestamp    time.Time
	Description  string
	ReferenceID  string
}
