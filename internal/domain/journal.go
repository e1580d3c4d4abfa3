package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType marks a journal line or log entry as a debit or a credit.
type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

// JournalLine is a single debit or credit belonging to exactly one
// JournalEntry.
type JournalLine struct {
	ID          string
	EntryID     string
	AccountID   string
	Type        EntryType
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// JournalEntry is an immutable, balanced double-entry record. Reference
// correlates the entry to the originating operation.
type JournalEntry struct {
	ID          string
	Reference   string
	Description string
	EntryDate   time.Time
	Lines       []JournalLine
}

// Validate enforces the double-entry invariants: at least two lines, positive
// amounts, and debits equal to credits after rounding to the currency scale.
func (e *JournalEntry) Validate() error {
	if len(e.Lines) < 2 {
		return ErrUnbalancedJournal
	}

	debits := decimal.Zero
	credits := decimal.Zero
	currency := e.Lines[0].Currency

	for _, line := range e.Lines {
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidAmount
		}

		switch line.Type {
		case EntryTypeDebit:
			debits = debits.Add(line.Amount)
		case EntryTypeCredit:
			credits = credits.Add(line.Amount)
		default:
			return ErrUnbalancedJournal
		}
	}

	if !AmountsEqual(debits, credits, currency) {
		return ErrUnbalancedJournal
	}

	return nil
}

// TotalDebits sums the entry's debit lines.
func (e *JournalEntry) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		if line.Type == EntryTypeDebit {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// TotalCredits sums the entry's credit lines.
func (e *JournalEntry) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		if line.Type == EntryTypeCredit {
			total = total.Add(line.Amount)
		}
	}
	return total
}
