package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/corebank-io/corebank/internal/adapter/http/dto"
	"github.com/corebank-io/corebank/internal/domain"
)

// StatementService defines the behavior needed by StatementHandler.
type StatementService interface {
	ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]*domain.TransactionLogEntry, error)
	ListTransactionsByRange(ctx context.Context, accountID string, from, to time.Time, limit, offset int) ([]*domain.TransactionLogEntry, error)
	GetTransactionByReference(ctx context.Context, referenceID string) (*domain.TransactionLogEntry, error)
}

// StatementHandler serves the append-only transaction log.
type StatementHandler struct {
	statementUC StatementService
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementUC StatementService) *StatementHandler {
	return &StatementHandler{statementUC: statementUC}
}

// ListTransactions lists an account's log entries, newest first. Optional
// from/to query parameters (RFC 3339) narrow the range.
func (h *StatementHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	from, hasFrom := parseTimeQuery(r, "from")
	to, hasTo := parseTimeQuery(r, "to")

	var entries []*domain.TransactionLogEntry
	var err error
	if hasFrom || hasTo {
		if !hasTo {
			to = time.Now().UTC()
		}
		entries, err = h.statementUC.ListTransactionsByRange(r.Context(), accountID, from, to, limit, offset)
	} else {
		entries, err = h.statementUC.ListTransactions(r.Context(), accountID, limit, offset)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(entries))
}

// GetByReference looks up the log entry recorded for an operation reference.
func (h *StatementHandler) GetByReference(w http.ResponseWriter, r *http.Request) {
	referenceID := chi.URLParam(r, "referenceID")
	if referenceID == "" {
		writeError(w, http.StatusBadRequest, "missing reference ID", "")
		return
	}

	entry, err := h.statementUC.GetTransactionByReference(r.Context(), referenceID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(entry))
}
