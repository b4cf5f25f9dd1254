// Package handler is the HTTP layer: it decodes requests, calls the service
// layer, and encodes the response envelope. Domain errors are translated to
// status codes here and nowhere else.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/snippetify/snippetify/internal/apperror"
)

// envelope is the response shape shared by every endpoint:
// {"success": bool, "message"?: string, "data"?: {...}, "error"?: string}.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// responder carries the pieces every handler needs to write envelopes. The
// exposeDetail flag is set in the development posture only; production
// callers get a generic message for storage and unknown failures.
type responder struct {
	logger       *slog.Logger
	exposeDetail bool
}

// writeJSON sends a JSON body with the given status. Headers must be set
// before the first write, so the order here is fixed.
func (rs responder) writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already gone; all we can do is log.
		rs.logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// ok sends a success envelope.
func (rs responder) ok(w http.ResponseWriter, status int, message string, data any) {
	rs.writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// fail maps a domain error to its status class and sends a failure envelope.
func (rs responder) fail(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthenticated):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		}

		msg := appErr.Message
		if status == http.StatusInternalServerError && !rs.exposeDetail {
			msg = "an internal error occurred"
		}
		rs.writeJSON(w, status, envelope{Success: false, Error: msg})
		return
	}

	// Unknown error. The raw message can carry file paths or SQL, so it is
	// only surfaced in the development posture.
	msg := "an internal error occurred"
	if rs.exposeDetail {
		msg = err.Error()
	}
	rs.writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Error: msg})
}

// badRequest reports a malformed request body without involving apperror.
func (rs responder) badRequest(w http.ResponseWriter, message string) {
	rs.writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: message})
}
