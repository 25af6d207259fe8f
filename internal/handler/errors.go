package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/tasktracker/internal/domain"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failure. Field names the offending input field
// for validation errors and is omitted otherwise.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorBody(code, message, field string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Field: field}}
}

// fail maps err onto a status code and writes the error body. resource
// names what was looked up (e.g. "task") for the 404 message. Errors that
// map to no known category are logged and answered with a bare 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, resource string) {
	var (
		fieldErr *domain.FieldError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge,
			errorBody("request_too_large", "request body too large", ""))
	case errors.As(err, &fieldErr):
		writeJSON(w, http.StatusBadRequest,
			errorBody("validation_error", fieldErr.Message, fieldErr.Field))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest,
			errorBody("validation_error", unwrapMessage(err), ""))
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusBadRequest,
			errorBody("invalid_credentials", domain.ErrInvalidCredentials.Error(), ""))
	case errors.Is(err, domain.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		writeJSON(w, http.StatusUnauthorized,
			errorBody("not_authenticated", domain.ErrUnauthenticated.Error(), ""))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not_found", resource+" not found", ""))
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
		writeJSON(w, http.StatusInternalServerError,
			errorBody("internal_error", "internal server error", ""))
	}
}

// unwrapMessage extracts the human-readable part of a wrapped validation error.
// e.g. "service.TagService.Create: validation error: name is required" → "name is required"
func unwrapMessage(err error) string {
	msg := err.Error()
	prefix := domain.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}
