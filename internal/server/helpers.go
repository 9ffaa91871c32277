package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/basket/internal/models"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeNotFound         = "not_found"
	CodeBasketExited     = "basket_exited"
	CodeInvalidRequest   = "invalid_request"
	CodePriceUnavailable = "price_unavailable"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeInternal         = "internal_error"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// WriteServiceError maps basket service errors onto HTTP status codes.
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrBasketNotFound):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), CodeNotFound)
	case errors.Is(err, models.ErrBasketExited):
		WriteErrorWithCode(w, http.StatusConflict, err.Error(), CodeBasketExited)
	case errors.Is(err, models.ErrInvalidBasket):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), CodeInvalidRequest)
	case errors.Is(err, models.ErrPriceUnavailable):
		WriteErrorWithCode(w, http.StatusBadGateway, err.Error(), CodePriceUnavailable)
	default:
		WriteErrorWithCode(w, http.StatusInternalServerError, err.Error(), CodeInternal)
	}
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteErrorWithCode(w, http.StatusMethodNotAllowed, "Method not allowed", CodeMethodNotAllowed)
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.Body == http.NoBody {
		WriteErrorWithCode(w, http.StatusBadRequest, "Request body is required", CodeInvalidRequest)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, "Invalid JSON: "+err.Error(), CodeInvalidRequest)
		return false
	}
	return true
}
