// Package httpserver contains the HTTP handlers and middleware of the matcher.
//
// Handlers decode and validate requests, call the usecase services and map
// domain errors onto a stable JSON error envelope.
package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error onto its HTTP status and stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED"
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return http.StatusServiceUnavailable, "UPSTREAM_TIMEOUT"
	case errors.Is(err, domain.ErrUpstreamRateLimit):
		return http.StatusServiceUnavailable, "UPSTREAM_RATE_LIMIT"
	case errors.Is(err, domain.ErrDependency):
		return http.StatusInternalServerError, "DEPENDENCY"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func writeError(w http.ResponseWriter, r *http.Request, err error, details interface{}) {
	code, codeStr := statusFor(err)
	msg := err.Error()
	if code >= http.StatusInternalServerError {
		LoggerFrom(r).Error("request failed", slog.String("code", codeStr), slog.Any("error", err))
		// Store and driver errors stay in the logs.
		if codeStr == "DEPENDENCY" || codeStr == "INTERNAL" {
			msg = http.StatusText(code)
		}
	}
	writeJSON(w, code, errorEnvelope{Error: apiError{Code: codeStr, Message: msg, Details: details}})
}

// writeErrorStatus writes the envelope with an explicit status for transport
// level failures such as 413 and 415.
func writeErrorStatus(w http.ResponseWriter, status int, message string, details interface{}) {
	writeJSON(w, status, errorEnvelope{Error: apiError{Code: "INVALID_ARGUMENT", Message: message, Details: details}})
}
