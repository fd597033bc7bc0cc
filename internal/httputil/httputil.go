// package httputil writes the JSON envelope shared by every API response and maps domain errors to statuses
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/shared"
)

// maxBodyBytes bounds request bodies read by [ReadJSON].
const maxBodyBytes = 1 << 20

// Response is the envelope around every JSON body.
type Response struct {
	Status string     `json:"status"`
	Data   any        `json:"data,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes data inside an "ok" envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Status: "ok", Data: data})
}

// WriteError writes an "error" envelope with the given code and message.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		Status: "error",
		Error:  &ErrorBody{Code: code, Message: message},
	})
}

var statuses = []struct {
	sentinel error
	status   int
	code     string
}{
	{shared.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{shared.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{shared.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{shared.ErrConflict, http.StatusConflict, "CONFLICT"},
	{shared.ErrTransient, http.StatusServiceUnavailable, "TRANSIENT"},
}

// Status returns the HTTP status and error code for err.
// Errors without a domain sentinel map to 500.
func Status(err error) (int, string) {
	for _, s := range statuses {
		if errors.Is(err, s.sentinel) {
			return s.status, s.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL"
}

// Sentinel returns the domain error for an envelope error code, or nil for an unknown code.
func Sentinel(code string) error {
	for _, s := range statuses {
		if s.code == code {
			return s.sentinel
		}
	}
	return nil
}

// WriteErr maps err to a status and writes it. Server errors are logged and replaced with a generic message.
func WriteErr(w http.ResponseWriter, logger *log.Logger, err error) {
	status, code := Status(err)
	message := err.Error()

	kv := []any{"error", err}
	var c interface{ Cause() error }
	if errors.As(err, &c) {
		kv = append(kv, "cause", c.Cause())
	}

	switch status {
	case http.StatusInternalServerError:
		logger.Error("request failed", kv...)
		message = "internal server error"
	case http.StatusServiceUnavailable:
		logger.Warn("transient failure", kv...)
		message = "service temporarily unavailable, retry later"
	default:
		logger.Debug("request rejected", append(kv, "status", status)...)
	}
	WriteError(w, status, code, message)
}

// ReadJSON decodes a JSON request body into dst. Unknown fields and trailing data are rejected.
func ReadJSON(r *http.Request, dst any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", shared.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed JSON body: %v", shared.ErrInvalidInput, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: request body must contain a single JSON value", shared.ErrInvalidInput)
	}
	return nil
}
