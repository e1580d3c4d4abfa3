package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus represents the lifecycle state of a ledger account.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusClosed AccountStatus = "CLOSED"
)

// AccountType distinguishes customer accounts from internal system accounts.
type AccountType string

const (
	AccountTypeCustomer AccountType = "CUSTOMER"
	AccountTypeSystem   AccountType = "SYSTEM"
)

// SystemPurpose identifies a well-known system account role. One system
// account exists per (purpose, currency).
type SystemPurpose string

const (
	PurposeCash     SystemPurpose = "CASH"
	PurposeClearing SystemPurpose = "CLEARING"
	PurposeSuspense SystemPurpose = "SUSPENSE"
)

// Account is a balance holder. Current and available balance always move
// together; there is no hold mechanism.
type Account struct {
	ID                string
	CustomerID        string
	Number            string
	Currency          string
	Type              AccountType
	Status            AccountStatus
	CurrentBalance    decimal.Decimal
	AvailableBalance  decimal.Decimal
	Version           int64
	LastTransactionAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SystemAccountNumber is the deterministic naming convention used to look up
// system accounts in storage before falling back to creation.
func SystemAccountNumber(purpose SystemPurpose, currency string) string {
	return fmt.Sprintf("SYS-%s-%s", purpose, currency)
}

// IsSystem reports whether the account is an internal system account.
func (a *Account) IsSystem() bool {
	return a.Type == AccountTypeSystem
}

// ValidateDebit checks that the account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Status != AccountStatusActive {
		return ErrAccountNotActive
	}
	if a.AvailableBalance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// ValidateCredit checks that the account can be credited.
func (a *Account) ValidateCredit(amount decimal.Decimal) error {
	if a.Status != AccountStatusActive {
		return ErrAccountNotActive
	}
	return nil
}

// ApplyDebit decreases both balances and stamps the transaction time.
func (a *Account) ApplyDebit(amount decimal.Decimal, now time.Time) {
	a.CurrentBalance = a.CurrentBalance.Sub(amount)
	a.AvailableBalance = a.AvailableBalance.Sub(amount)
	a.LastTransactionAt = &now
	a.UpdatedAt = now
}

// ApplyCredit increases both balances and stamps the transaction time.
func (a *Account) ApplyCredit(amount decimal.Decimal, now time.Time) {
	a.CurrentBalance = a.CurrentBalance.Add(amount)
	a.AvailableBalance = a.AvailableBalance.Add(amount)
	a.LastTransactionAt = &now
	a.UpdatedAt = now
}

// ValidateClose checks that the account may be closed. Accounts close only
// at zero balance.
func (a *Account) ValidateClose() error {
	if a.Status != AccountStatusActive {
		return ErrAccountNotActive
	}
	if !a.CurrentBalance.IsZero() {
		return ErrBalanceNotZero
	}
	return nil
}

// BalanceSnapshot is the balance view returned by movement operations.
type BalanceSnapshot struct {
	AccountID        string
	CurrentBalance   decimal.Decimal
	AvailableBalance decimal.Decimal
	Currency         string
	AsOf             time.Time
}

// Snapshot returns the account's balance snapshot at time now.
func (a *Account) Snapshot(now time.Time) BalanceSnapshot {
	return BalanceSnapshot{
		AccountID:        a.ID,
		CurrentBalance:   a.CurrentBalance,
		AvailableBalance: a.AvailableBalance,
		Currency:         a.Currency,
		AsOf:             now,
	}
}
