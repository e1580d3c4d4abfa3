package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corebank-io/corebank/internal/adapter/http/dto"
	"github.com/corebank-io/corebank/internal/adapter/http/middleware"
	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/usecase"
)

// CompensationService defines the behavior needed to reverse failed transfers.
type CompensationService interface {
	Compensate(ctx context.Context, transferID string) (*usecase.CompensationResult, error)
}

// ScheduleService defines the scheduling behavior needed by TransferHandler.
type ScheduleService interface {
	ScheduleTransfer(ctx context.Context, input usecase.ScheduleTransferInput) (*domain.Transfer, error)
	CancelTransfer(ctx context.Context, callerID, transferID string) error
}

// TransferHandler handles the transfer lifecycle beyond execution:
// scheduling, cancellation, and compensation.
type TransferHandler struct {
	compensationUC CompensationService
	scheduleUC     ScheduleService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(compensationUC CompensationService, scheduleUC ScheduleService) *TransferHandler {
	return &TransferHandler{
		compensationUC: compensationUC,
		scheduleUC:     scheduleUC,
	}
}

// Schedule persists a transfer for future execution by the end-of-day run.
func (h *TransferHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller identity", "")
		return
	}

	var req dto.ScheduleTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transfer, err := h.scheduleUC.ScheduleTransfer(r.Context(), req.ToUseCaseInput(callerID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(transfer))
}

// Cancel cancels a PENDING or SCHEDULED transfer.
func (h *TransferHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller identity", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	if err := h.scheduleUC.CancelTransfer(r.Context(), callerID, id); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// Compensate reverses a FAILED transfer. Safe to call repeatedly; an already
// compensated transfer reports refunded=false.
func (h *TransferHandler) Compensate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	result, err := h.compensationUC.Compensate(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CompensationFromUseCase(result))
}
