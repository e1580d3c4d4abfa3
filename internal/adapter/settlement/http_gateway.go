// Package settlement provides gateways to the external settlement system.
package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/infrastructure/metrics"
)

// wirePayload is the JSON body sent to the settlement endpoint. Kind selects
// the command variant; unused fields are omitted.
type wirePayload struct {
	Kind          string `json:"kind"`
	AccountID     string `json:"account_id,omitempty"`
	FromID        string `json:"from_id,omitempty"`
	ToID          string `json:"to_id,omitempty"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency,omitempty"`
	Description   string `json:"description,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

type wireResult struct {
	Successful        bool   `json:"successful"`
	ExternalReference string `json:"external_reference"`
	ErrorCode         string `json:"error_code"`
	ErrorMessage      string `json:"error_message"`
}

// HTTPGateway talks to a settlement system over HTTP. Transport failures are
// returned as errors; business rejections come back inside the result so the
// caller can record them durably.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewHTTPGateway creates an HTTP settlement gateway.
func NewHTTPGateway(baseURL string, timeout time.Duration, logger zerolog.Logger, m *metrics.Metrics) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "settlement_gateway").Logger(),
		metrics: m,
	}
}

// Execute sends the command to the settlement endpoint and decodes the
// synchronous result.
func (g *HTTPGateway) Execute(ctx context.Context, cmd domain.SettlementCommand) (*domain.SettlementResult, error) {
	payload, err := encodeCommand(cmd)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode settlement payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/settlements", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build settlement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	g.metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		g.metrics.SettlementCalls.WithLabelValues("transport_error").Inc()
		g.logger.Error().Err(err).Str("kind", payload.Kind).Msg("settlement call failed")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.metrics.SettlementCalls.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("settlement endpoint returned status %d", resp.StatusCode)
	}

	var wire wireResult
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		g.metrics.SettlementCalls.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("decode settlement response: %w", err)
	}

	if wire.Successful {
		g.metrics.SettlementCalls.WithLabelValues("accepted").Inc()
	} else {
		g.metrics.SettlementCalls.WithLabelValues("rejected").Inc()
		g.logger.Warn().
			Str("kind", payload.Kind).
			Str("error_code", wire.ErrorCode).
			Msg("settlement rejected")
	}

	return &domain.SettlementResult{
		Successful:        wire.Successful,
		ExternalReference: wire.ExternalReference,
		ErrorCode:         wire.ErrorCode,
		ErrorMessage:      wire.ErrorMessage,
	}, nil
}

func encodeCommand(cmd domain.SettlementCommand) (wirePayload, error) {
	switch c := cmd.(type) {
	case domain.DepositCommand:
		return wirePayload{
			Kind:        "deposit",
			AccountID:   c.AccountID,
			Amount:      c.Amount.String(),
			Currency:    c.Currency,
			Description: c.Description,
		}, nil
	case domain.WithdrawCommand:
		return wirePayload{
			Kind:        "withdraw",
			AccountID:   c.AccountID,
			Amount:      c.Amount.String(),
			Description: c.Description,
		}, nil
	case domain.TransferCommand:
		return wirePayload{
			Kind:          "transfer",
			FromID:        c.FromID,
			ToID:          c.ToID,
			Amount:        c.Amount.String(),
			Currency:      c.Currency,
			Description:   c.Description,
			CorrelationID: c.CorrelationID,
		}, nil
	default:
		return wirePayload{}, fmt.Errorf("unknown settlement command type %T", cmd)
	}
}
