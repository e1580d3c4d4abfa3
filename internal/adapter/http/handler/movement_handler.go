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

// MovementService defines the behavior needed by MovementHandler.
type MovementService interface {
	Deposit(ctx context.Context, input usecase.DepositInput) (*domain.BalanceSnapshot, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.BalanceSnapshot, error)
	Transfer(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error)
	GetTransfer(ctx context.Context, id string) (*domain.Transfer, error)
	ListTransfersByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error)
}

// MovementHandler handles deposits, withdrawals, and transfers.
type MovementHandler struct {
	movementUC MovementService
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movementUC MovementService) *MovementHandler {
	return &MovementHandler{movementUC: movementUC}
}

// Deposit credits the account after settlement confirms the inbound movement.
func (h *MovementHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller identity", "")
		return
	}

	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	snapshot, err := h.movementUC.Deposit(r.Context(), req.ToDepositInput(callerID, accountID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(snapshot))
}

// Withdraw debits the account after a funds check and settlement.
func (h *MovementHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller identity", "")
		return
	}

	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	snapshot, err := h.movementUC.Withdraw(r.Context(), req.ToWithdrawInput(callerID, accountID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(snapshot))
}

// Transfer moves funds to an internal account or an external reference.
func (h *MovementHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller identity", "")
		return
	}

	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.movementUC.Transfer(r.Context(), req.ToUseCaseInput(callerID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferResultFromUseCase(result))
}

// GetTransfer retrieves a transfer by ID.
func (h *MovementHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	transfer, err := h.movementUC.GetTransfer(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// ListTransfers lists transfers touching an account.
func (h *MovementHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	transfers, err := h.movementUC.ListTransfersByAccount(r.Context(), accountID, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers))
}
