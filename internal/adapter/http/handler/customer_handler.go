package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/corebank-io/corebank/internal/adapter/http/dto"
	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/infrastructure/auth"
	"github.com/corebank-io/corebank/internal/usecase"
)

// CustomerHandler registers customers and issues their API tokens.
type CustomerHandler struct {
	customerRepo usecase.CustomerRepository
	idGen        usecase.IDGenerator
	jwtManager   *auth.JWTManager
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customerRepo usecase.CustomerRepository, idGen usecase.IDGenerator, jwtManager *auth.JWTManager) *CustomerHandler {
	return &CustomerHandler{
		customerRepo: customerRepo,
		idGen:        idGen,
		jwtManager:   jwtManager,
	}
}

// Create registers a customer and returns a bearer token for it.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", "")
		return
	}

	customer := &domain.Customer{
		ID:        h.idGen.Generate(),
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.customerRepo.Create(r.Context(), customer); err != nil {
		writeDomainError(w, err)
		return
	}

	token := ""
	if h.jwtManager != nil {
		var err error
		token, err = h.jwtManager.Generate(customer)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to generate token", err.Error())
			return
		}
	}

	writeJSON(w, http.StatusCreated, dto.CustomerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		Token:     token,
		CreatedAt: customer.CreatedAt,
	})
}

// Get retrieves a customer by ID.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing customer ID", "")
		return
	}

	customer, err := h.customerRepo.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CustomerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		CreatedAt: customer.CreatedAt,
	})
}
