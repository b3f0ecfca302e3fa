// Package response writes JSON bodies for plain chi handlers, using the same
// {code, message, details} error shape as the Huma operations.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/listenupapp/crate-server/internal/errors"
	"github.com/listenupapp/crate-server/internal/store"
)

// ErrorBody is the JSON error payload.
type ErrorBody struct {
	Code    domainerrors.Code `json:"code"`
	Message string            `json:"message"`
	Details any               `json:"details,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// Error writes an error body.
func Error(w http.ResponseWriter, status int, code domainerrors.Code, message string, logger *slog.Logger) {
	JSON(w, status, ErrorBody{Code: code, Message: message}, logger)
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, domainerrors.CodeNotFound, message, logger)
}

// MethodNotAllowed writes a 405.
func MethodNotAllowed(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusMethodNotAllowed, domainerrors.CodeValidation, "method not allowed", logger)
}

// TooManyRequests writes a 429.
func TooManyRequests(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusTooManyRequests, domainerrors.CodeRateLimited, "rate limit exceeded", logger)
}

// HandleError maps err to a status and body. Domain errors keep their code
// and details, store errors map by kind, and anything else is a logged 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	status, body := Classify(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("unhandled error", "error", err)
	}
	JSON(w, status, body, logger)
}

// Classify returns the status and body HandleError would write.
func Classify(err error) (int, ErrorBody) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.HTTPStatus(), ErrorBody{Code: domainErr.Code, Message: domainErr.Message, Details: domainErr.Details}
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		code := domainerrors.CodeInternal
		switch {
		case errors.Is(err, store.ErrNotFound):
			code = domainerrors.CodeNotFound
		case errors.Is(err, store.ErrAlreadyExists):
			code = domainerrors.CodeAlreadyExists
		case errors.Is(err, store.ErrInvalidInput):
			code = domainerrors.CodeValidation
		}
		if code != domainerrors.CodeInternal {
			return code.HTTPStatus(), ErrorBody{Code: code, Message: storeErr.Message}
		}
	}

	return http.StatusInternalServerError, ErrorBody{Code: domainerrors.CodeInternal, Message: "internal server error"}
}
