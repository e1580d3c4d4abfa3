package settlement

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/corebank-io/corebank/internal/domain"
)

// MockGateway is an in-process gateway for local development. It accepts
// every command and fabricates an external reference. Descriptions containing
// "reject" are declined, which makes failure paths testable end to end.
type MockGateway struct {
	counter atomic.Int64
}

// NewMockGateway creates an in-process settlement gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Execute settles the command locally.
func (g *MockGateway) Execute(_ context.Context, cmd domain.SettlementCommand) (*domain.SettlementResult, error) {
	var description string
	switch c := cmd.(type) {
	case domain.DepositCommand:
		description = c.Description
	case domain.WithdrawCommand:
		description = c.Description
	case domain.TransferCommand:
		description = c.Description
	}

	if strings.Contains(strings.ToLower(description), "reject") {
		return &domain.SettlementResult{
			Successful:   false,
			ErrorCode:    "MOCK_REJECTED",
			ErrorMessage: "settlement declined by mock gateway",
		}, nil
	}

	return &domain.SettlementResult{
		Successful:        true,
		ExternalReference: fmt.Sprintf("MOCK-%08d", g.counter.Add(1)),
	}, nil
}
