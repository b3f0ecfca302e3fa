package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/crate-server/internal/errors"
	"github.com/listenupapp/crate-server/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusCreated, map[string]int{"count": 3}, testLogger())

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"count":3}`, w.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   domainerrors.Code
	}{
		{"not found", func(w http.ResponseWriter) { NotFound(w, "no such route", testLogger()) }, http.StatusNotFound, domainerrors.CodeNotFound},
		{"method", func(w http.ResponseWriter) { MethodNotAllowed(w, testLogger()) }, http.StatusMethodNotAllowed, domainerrors.CodeValidation},
		{"rate limited", func(w http.ResponseWriter) { TooManyRequests(w, testLogger()) }, http.StatusTooManyRequests, domainerrors.CodeRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode(t, w).Code)
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    domainerrors.Code
		message string
	}{
		{
			name:    "domain not found",
			err:     domainerrors.NotFoundf("playlist %q not found", "pl-x"),
			status:  http.StatusNotFound,
			code:    domainerrors.CodeNotFound,
			message: `playlist "pl-x" not found`,
		},
		{
			name:    "wrapped domain error",
			err:     fmt.Errorf("export: %w", domainerrors.Validation("bad name")),
			status:  http.StatusBadRequest,
			code:    domainerrors.CodeValidation,
			message: "bad name",
		},
		{
			name:    "store not found",
			err:     store.ErrNotFound.WithMessage("track not found"),
			status:  http.StatusNotFound,
			code:    domainerrors.CodeNotFound,
			message: "track not found",
		},
		{
			name:    "store conflict",
			err:     fmt.Errorf("create: %w", store.ErrAlreadyExists),
			status:  http.StatusConflict,
			code:    domainerrors.CodeAlreadyExists,
			message: "resource already exists",
		},
		{
			name:    "unknown error hides message",
			err:     errors.New("database is locked"),
			status:  http.StatusInternalServerError,
			code:    domainerrors.CodeInternal,
			message: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, testLogger())

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestHandleError_KeepsDetails(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, domainerrors.ValidationWithDetails("validation failed", map[string]string{"name": "is required"}), nil)

	assert.JSONEq(t, `{"code":"VALIDATION","message":"validation failed","details":{"name":"is required"}}`, w.Body.String())
}
