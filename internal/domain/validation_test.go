package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateCurrency(t *testing.T) {
	if err := ValidateCurrency("USD"); err != nil {
		t.Errorf("unexpected error for USD: %v", err)
	}
	if err := ValidateCurrency(" eur "); err != nil {
		t.Errorf("unexpected error for lowercase/padded EUR: %v", err)
	}
	if err := ValidateCurrency("XXX"); !errors.Is(err, ErrUnsupportedCurrency) {
		t.Errorf("expected ErrUnsupportedCurrency, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name        string
		amount      string
		expectError error
	}{
		{"valid amount", "100.00", nil},
		{"minimum amount", "0.01", nil},
		{"zero", "0", ErrInvalidAmount},
		{"negative", "-1", ErrInvalidAmount},
		{"below minimum", "0.005", ErrInvalidAmount},
		{"above maximum", "1000000000001", ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount))
			if !errors.Is(err, tt.expectError) {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestValidatePagination(t *testing.T) {
	limit, offset, err := ValidatePagination(0, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != 50 || offset != 0 {
		t.Errorf("expected defaults (50, 0), got (%d, %d)", limit, offset)
	}

	limit, _, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Errorf("expected limit capped at 1000, got %d", limit)
	}
}

func TestErrorCodes(t *testing.T) {
	err := SettlementError("E42", "ledger offline")
	if CodeOf(err) != CodeSettlementFailure {
		t.Errorf("expected SETTLEMENT_FAILURE, got %s", CodeOf(err))
	}
	if !IsRetryable(err) {
		t.Error("settlement failures before mutation should be retryable")
	}
	if IsRetryable(ErrDuplicateOperation) {
		t.Error("duplicate operations must not be retryable")
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Error("expected empty code for non-domain error")
	}
}
