package response

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edvin/buildcrm/internal/core"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MessageResponse is returned by endpoints that only acknowledge an action.
type MessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorResponse whose error field is the lower-cased
// status text.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{
		Error:   strings.ToLower(http.StatusText(status)),
		Message: message,
	})
}

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(err error) int {
	switch core.KindOf(err) {
	case core.ErrUnauthenticated:
		return http.StatusUnauthorized
	case core.ErrForbidden:
		return http.StatusForbidden
	case core.ErrNotFound:
		return http.StatusNotFound
	case core.ErrInvalidState:
		return http.StatusConflict
	case core.ErrValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// WriteServiceError translates an error returned by a core service.
// Unclassified errors are logged and reported without detail.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		WriteError(w, status, "An unexpected error occurred")
		return
	}

	msg := core.PublicMessage(err)
	if msg == "" {
		msg = err.Error()
	}
	WriteError(w, status, msg)
}
