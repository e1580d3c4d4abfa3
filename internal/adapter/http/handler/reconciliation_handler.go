package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corebank-io/corebank/internal/adapter/http/dto"
	"github.com/corebank-io/corebank/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	Verify(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	RunScheduledReconciliation(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// EndOfDayService runs the end-of-day batch.
type EndOfDayService interface {
	RunEndOfDay(ctx context.Context) (*usecase.EndOfDayReport, error)
}

// ReconciliationHandler exposes the consistency checker and batch runs.
type ReconciliationHandler struct {
	reconciliationUC ReconciliationService
	batchUC          EndOfDayService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC ReconciliationService, batchUC EndOfDayService) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliationUC: reconciliationUC,
		batchUC:          batchUC,
	}
}

// VerifyAccount compares one account's cached balance with its journal-derived
// balance.
func (h *ReconciliationHandler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	result, err := h.reconciliationUC.Verify(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationResultFromUseCase(result))
}

// Run triggers a full reconciliation pass.
func (h *ReconciliationHandler) Run(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.RunScheduledReconciliation(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}

// EndOfDay executes due scheduled transfers and finishes with a full
// reconciliation pass.
func (h *ReconciliationHandler) EndOfDay(w http.ResponseWriter, r *http.Request) {
	report, err := h.batchUC.RunEndOfDay(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EndOfDayFromUseCase(report))
}
