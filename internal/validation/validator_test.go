package validation_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/crate-server/internal/errors"
	"github.com/listenupapp/crate-server/internal/validation"
)

type previewRequest struct {
	Name   string   `json:"name" validate:"required,max=20"`
	Genres []string `json:"genres" validate:"dive,genre"`
	MinBPM int      `json:"min_bpm" validate:"bpm"`
	MaxBPM int      `json:"max_bpm,omitempty" validate:"bpm,required_with=MinBPM,omitempty,gtefield=MinBPM"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(previewRequest{
		Name:   "Evening",
		Genres: []string{"Shoegaze", "dream pop"},
		MinBPM: 80,
		MaxBPM: 120,
	})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       previewRequest
		wantField string
	}{
		{
			name:      "missing name",
			req:       previewRequest{Genres: []string{"rock"}},
			wantField: "name",
		},
		{
			name:      "name too long",
			req:       previewRequest{Name: "a very long playlist name"},
			wantField: "name",
		},
		{
			name:      "blank genre",
			req:       previewRequest{Name: "x", Genres: []string{"rock", "   "}},
			wantField: "genres[1]",
		},
		{
			name:      "bpm too high",
			req:       previewRequest{Name: "x", MinBPM: 500, MaxBPM: 600},
			wantField: "min_bpm",
		},
		{
			name:      "max below min",
			req:       previewRequest{Name: "x", MinBPM: 120, MaxBPM: 80},
			wantField: "max_bpm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.wantField)
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(previewRequest{})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	details := domainErr.Details.(map[string]string)
	assert.Contains(t, details, "name")
	assert.NotContains(t, details, "Name")
}
