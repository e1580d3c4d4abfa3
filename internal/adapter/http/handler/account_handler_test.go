package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/corebank-io/corebank/internal/adapter/http/dto"
	"github.com/corebank-io/corebank/internal/adapter/http/middleware"
	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/usecase"
)

type accountServiceStub struct {
	openFn    func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	getFn     func(ctx context.Context, id string) (*domain.Account, error)
	listFn    func(ctx context.Context, customerID string, limit, offset int) ([]*domain.Account, error)
	closeFn   func(ctx context.Context, id string) error
	balanceFn func(ctx context.Context, accountID string) (*domain.BalanceSnapshot, error)
}

func (s *accountServiceStub) OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
	return s.openFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) ListAccountsByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Account, error) {
	return s.listFn(ctx, customerID, limit, offset)
}

func (s *accountServiceStub) CloseAccount(ctx context.Context, id string) error {
	return s.closeFn(ctx, id)
}

func (s *accountServiceStub) GetBalance(ctx context.Context, accountID string) (*domain.BalanceSnapshot, error) {
	return s.balanceFn(ctx, accountID)
}

func withCaller(r *http.Request, customerID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.CallerContextKey, customerID))
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}

func TestAccountHandler_Open_Success(t *testing.T) {
	account := &domain.Account{
		ID:         "acc-1",
		CustomerID: "cust-1",
		Currency:   "USD",
		Type:       domain.AccountTypeCustomer,
		Status:     domain.AccountStatusActive,
	}

	var captured usecase.OpenAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			captured = input
			return account, nil
		},
	})

	body, _ := json.Marshal(dto.OpenAccountRequest{Currency: "USD"})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	req = withCaller(req, "cust-1")
	rec := httptest.NewRecorder()

	handler.Open(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.CustomerID != "cust-1" || captured.Currency != "USD" {
		t.Fatalf("expected input to carry the caller, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" {
		t.Fatalf("expected account ID acc-1, got %s", resp.ID)
	}
}

func TestAccountHandler_Open_MissingCaller(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			t.Fatal("OpenAccount should not be called without a caller")
			return nil, nil
		},
	})

	body, _ := json.Marshal(dto.OpenAccountRequest{Currency: "USD"})
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Open(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAccountHandler_Open_InvalidJSON(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			t.Fatal("OpenAccount should not be called for invalid payload")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString("{invalid json"))
	req = withCaller(req, "cust-1")
	rec := httptest.NewRecorder()

	handler.Open(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_Close_BalanceNotZero(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		closeFn: func(ctx context.Context, id string) error {
			return domain.ErrBalanceNotZero
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/close", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Close(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAccountHandler_Balance(t *testing.T) {
	snapshot := &domain.BalanceSnapshot{
		AccountID:        "acc-1",
		CurrentBalance:   decimal.RequireFromString("42.50"),
		AvailableBalance: decimal.RequireFromString("42.50"),
		Currency:         "USD",
		AsOf:             time.Now().UTC(),
	}

	handler := NewAccountHandler(&accountServiceStub{
		balanceFn: func(ctx context.Context, accountID string) (*domain.BalanceSnapshot, error) {
			if accountID != "acc-1" {
				t.Fatalf("expected acc-1, got %s", accountID)
			}
			return snapshot, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/balance", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Balance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.CurrentBalance.Equal(snapshot.CurrentBalance) {
		t.Fatalf("expected balance to round-trip, got %+v", resp)
	}
}

func TestAccountHandler_List(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, customerID string, limit, offset int) ([]*domain.Account, error) {
			if customerID != "cust-1" || limit != 5 || offset != 2 {
				t.Fatalf("unexpected list args: %s %d %d", customerID, limit, offset)
			}
			return []*domain.Account{{ID: "acc-1"}, {ID: "acc-2"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts?limit=5&offset=2", nil)
	req = withCaller(req, "cust-1")
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []*dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(resp))
	}
}
