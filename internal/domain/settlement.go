package domain

import "github.com/shopspring/decimal"

// SettlementCommand is the tagged union of commands sent to the external
// settlement system. Gateways must match the variants exhaustively.
type SettlementCommand interface {
	settlementCommand()
}

// DepositCommand settles an inbound movement into an account.
type DepositCommand struct {
	AccountID   string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// WithdrawCommand settles an outbound movement from an account.
type WithdrawCommand struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
}

// TransferCommand settles a movement between two parties. CorrelationID ties
// the settlement to the local transfer record.
type TransferCommand struct {
	FromID        string
	ToID          string
	Amount        decimal.Decimal
	Currency      string
	Description   string
	CorrelationID string
}

func (DepositCommand) settlementCommand()  {}
func (WithdrawCommand) settlementCommand() {}
func (TransferCommand) settlementCommand() {}

// SettlementResult is the gateway's synchronous response.
type SettlementResult struct {
	Successful        bool
	ExternalReference string
	ErrorCode         string
	ErrorMessage      string
}
