package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/corebank-io/corebank/internal/adapter/http/dto"
	"github.com/corebank-io/corebank/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps a domain error to its HTTP status and emits the
// machine-readable code and retryability alongside the message.
func writeDomainError(w http.ResponseWriter, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		writeError(w, http.StatusInternalServerError, "internal error", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusForCode(derr.Code))
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:     string(derr.Code),
		Message:   derr.Message,
		Retryable: derr.Retryable,
	})
}

func statusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeValidation, domain.CodeUnbalancedJournal:
		return http.StatusBadRequest
	case domain.CodeOwnershipViolation:
		return http.StatusForbidden
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeInsufficientFunds:
		return http.StatusUnprocessableEntity
	case domain.CodeDuplicateOperation, domain.CodeIllegalState, domain.CodeVersionConflict:
		return http.StatusConflict
	case domain.CodeSettlementFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseTimeQuery parses an RFC 3339 query parameter, reporting presence.
func parseTimeQuery(r *http.Request, key string) (time.Time, bool) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
