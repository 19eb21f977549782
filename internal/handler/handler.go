// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/blogback/blogback/internal/handler/dto"
	"github.com/blogback/blogback/internal/service"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidJSON        = "INVALID_JSON"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeNotFound           = "NOT_FOUND"
	CodeRouteNotFound      = "ROUTE_NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeIncorrectPassword  = "INCORRECT_PASSWORD"
	CodeInternal           = "INTERNAL_ERROR"
)

var (
	errInvalidJSON  = errors.New("invalid JSON body")
	errBodyTooLarge = errors.New("request body too large")
)

// Handler serves the service-level endpoints.
type Handler struct {
	version string
}

// New creates a new Handler instance.
func New(version string) *Handler {
	return &Handler{version: version}
}

// Hello returns service information.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "blogback API",
		"version": h.version,
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, CodeRouteNotFound, "route not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already sent; an encode failure here means the client went away.
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{Message: message, Code: code})
}

// writeValidationError writes a 422 with per-field messages.
func writeValidationError(w http.ResponseWriter, v *service.ValidationError) {
	writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
		Message: v.Message(),
		Code:    CodeValidationFailed,
		Errors:  v.Fields,
	})
}

// decodeJSON reads a JSON object into dst. An empty body decodes as {} so
// that missing fields surface as validation errors. A field of the wrong JSON
// type is reported as a *service.ValidationError.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		v := service.NewValidationError()
		v.Add(typeErr.Field, fmt.Sprintf("The %s field must be a string.", strings.ReplaceAll(typeErr.Field, "_", " ")))
		return v
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return errInvalidJSON
}

// handleDecodeError writes the response for a decodeJSON failure.
func handleDecodeError(w http.ResponseWriter, err error) {
	var v *service.ValidationError
	switch {
	case errors.As(err, &v):
		writeValidationError(w, v)
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "Request body too large.")
	default:
		writeError(w, http.StatusBadRequest, CodeInvalidJSON, "Invalid request body.")
	}
}

// writeServiceError maps the errors every handler treats the same way.
// Handlers check their own sentinels first and fall through to this.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var v *service.ValidationError
	switch {
	case errors.As(err, &v):
		writeValidationError(w, v)
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, CodeUnauthenticated, "Unauthenticated.")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, CodeForbidden, "This action is unauthorized.")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "Resource not found.")
	default:
		logger.Error("internal_error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		writeError(w, http.StatusInternalServerError, CodeInternal, "An internal error occurred.")
	}
}
