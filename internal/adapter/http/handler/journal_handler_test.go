package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/corebank-io/corebank/internal/adapter/http/dto"
	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/usecase"
)

type journalServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateEntryInput) (*domain.JournalEntry, error)
	getFn    func(ctx context.Context, id string) (*domain.JournalEntry, error)
	listFn   func(ctx context.Context, reference string) ([]*domain.JournalEntry, error)
}

func (s *journalServiceStub) CreateEntry(ctx context.Context, input usecase.CreateEntryInput) (*domain.JournalEntry, error) {
	return s.createFn(ctx, input)
}

func (s *journalServiceStub) GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	return s.getFn(ctx, id)
}

func (s *journalServiceStub) ListEntriesByReference(ctx context.Context, reference string) ([]*domain.JournalEntry, error) {
	return s.listFn(ctx, reference)
}

func TestJournalHandler_Post(t *testing.T) {
	var captured usecase.CreateEntryInput
	handler := NewJournalHandler(&journalServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateEntryInput) (*domain.JournalEntry, error) {
			captured = input
			return &domain.JournalEntry{
				ID:        "je-1",
				Reference: input.Reference,
				Lines: []domain.JournalLine{
					{ID: "l1", EntryID: "je-1", AccountID: "acc-1", Type: domain.EntryTypeDebit, Amount: decimal.RequireFromString("40"), Currency: "USD"},
					{ID: "l2", EntryID: "je-1", AccountID: "acc-2", Type: domain.EntryTypeCredit, Amount: decimal.RequireFromString("40"), Currency: "USD"},
				},
			}, nil
		},
	})

	body, _ := json.Marshal(dto.CreateJournalEntryRequest{
		Reference:   "ref-1",
		Description: "manual adjustment",
		Lines: []dto.JournalLineRequest{
			{AccountID: "acc-1", Type: "DEBIT", Amount: decimal.RequireFromString("40"), Currency: "USD"},
			{AccountID: "acc-2", Type: "CREDIT", Amount: decimal.RequireFromString("40"), Currency: "USD"},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/admin/journal", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Post(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Reference != "ref-1" || len(captured.Lines) != 2 {
		t.Fatalf("unexpected input: %+v", captured)
	}
	if captured.Lines[0].Type != domain.EntryTypeDebit {
		t.Fatalf("unexpected line type: %s", captured.Lines[0].Type)
	}

	var resp dto.JournalEntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "je-1" || len(resp.Lines) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestJournalHandler_Post_Unbalanced(t *testing.T) {
	handler := NewJournalHandler(&journalServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateEntryInput) (*domain.JournalEntry, error) {
			return nil, domain.ErrUnbalancedJournal
		},
	})

	body, _ := json.Marshal(dto.CreateJournalEntryRequest{Reference: "ref-1"})
	req := httptest.NewRequest(http.MethodPost, "/admin/journal", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Post(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if resp.Error != "UNBALANCED_JOURNAL" {
		t.Fatalf("unexpected error body: %+v", resp)
	}
}

func TestJournalHandler_GetEntry_NotFound(t *testing.T) {
	handler := NewJournalHandler(&journalServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.JournalEntry, error) {
			return nil, domain.ErrEntryNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/journal/entries/je-1", nil)
	req = setChiURLParam(req, "id", "je-1")
	rec := httptest.NewRecorder()

	handler.GetEntry(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestJournalHandler_ListByReference(t *testing.T) {
	handler := NewJournalHandler(&journalServiceStub{
		listFn: func(ctx context.Context, reference string) ([]*domain.JournalEntry, error) {
			if reference != "ref-1" {
				t.Fatalf("expected ref-1, got %s", reference)
			}
			return []*domain.JournalEntry{{ID: "je-1", Reference: "ref-1"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/journal/ref-1", nil)
	req = setChiURLParam(req, "reference", "ref-1")
	rec := httptest.NewRecorder()

	handler.ListByReference(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []*dto.JournalEntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != "je-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
