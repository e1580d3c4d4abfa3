package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corebank-io/corebank/internal/adapter/http/dto"
	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/usecase"
)

// JournalService defines the behavior needed by JournalHandler.
type JournalService interface {
	CreateEntry(ctx context.Context, input usecase.CreateEntryInput) (*domain.JournalEntry, error)
	GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error)
	ListEntriesByReference(ctx context.Context, reference string) ([]*domain.JournalEntry, error)
}

// JournalHandler serves the double-entry journal: manual adjustment postings
// and reads by entry id or operation reference.
type JournalHandler struct {
	journalUC JournalService
}

// NewJournalHandler creates a new JournalHandler.
func NewJournalHandler(journalUC JournalService) *JournalHandler {
	return &JournalHandler{journalUC: journalUC}
}

// Post records a manual adjustment entry. The entry must balance; an
// unbalanced posting is rejected and nothing persists.
func (h *JournalHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateJournalEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.journalUC.CreateEntry(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.JournalEntryFromDomain(entry))
}

// GetEntry retrieves a journal entry with its lines.
func (h *JournalHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.journalUC.GetEntry(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalEntryFromDomain(entry))
}

// ListByReference lists the journal entries correlated to an operation
// reference.
func (h *JournalHandler) ListByReference(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		writeError(w, http.StatusBadRequest, "missing reference", "")
		return
	}

	entries, err := h.journalUC.ListEntriesByReference(r.Context(), reference)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalEntriesFromDomain(entries))
}
