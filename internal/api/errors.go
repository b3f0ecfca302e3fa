package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/listenupapp/crate-server/internal/errors"
	"github.com/listenupapp/crate-server/internal/http/response"
	"github.com/listenupapp/crate-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			if isClassified(err) {
				code, body := response.Classify(err)
				return &APIError{
					status:  code,
					Code:    string(body.Code),
					Message: body.Message,
					Details: body.Details,
				}
			}
		}

		apiErr := &APIError{
			status:  status,
			Code:    string(statusToCode(status)),
			Message: message,
		}

		// Huma's own request validation reports one ErrorDetail per field.
		details := map[string]string{}
		for _, err := range errs {
			var detail *huma.ErrorDetail
			if errors.As(err, &detail) {
				details[detail.Location] = detail.Message
			}
		}
		if len(details) > 0 {
			apiErr.Details = details
		}
		return apiErr
	}
}

// isClassified reports whether err carries a domain or store error.
func isClassified(err error) bool {
	var domainErr *domainerrors.Error
	var storeErr *store.Error
	return errors.As(err, &domainErr) || errors.As(err, &storeErr)
}

// statusToCode maps HTTP status codes to domain error codes.
func statusToCode(status int) domainerrors.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return domainerrors.CodeValidation
	case http.StatusNotFound:
		return domainerrors.CodeNotFound
	case http.StatusConflict:
		return domainerrors.CodeConflict
	case http.StatusTooManyRequests:
		return domainerrors.CodeRateLimited
	case http.StatusBadGateway:
		return domainerrors.CodeUpstream
	default:
		return domainerrors.CodeInternal
	}
}
