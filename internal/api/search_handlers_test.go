package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/crate-server/internal/search"
)

func TestSearch_Tracks(t *testing.T) {
	ts := setupTestServer(t)
	ts.addTrack(t, "/m/1.flac", "Paranoid Android", "Radiohead", 84, "Alternative Rock")
	ts.addTrack(t, "/m/2.flac", "Alison", "Slowdive", 0, "Shoegaze")

	resp := ts.api.Post("/api/v1/tracks/reindex")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.JSONEq(t, `{"indexed":2}`, resp.Body.String())

	resp = ts.api.Get("/api/v1/tracks/search?q=paranoid")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var result search.Result
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "Paranoid Android", result.Hits[0].Title)

	resp = ts.api.Get("/api/v1/tracks/search?q=paranoid&genres=SHOEGAZE")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Empty(t, result.Hits)
}

func TestSearch_Validation(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name string
		path string
		key  string
	}{
		{"short query", "/api/v1/tracks/search?q=a", "q"},
		{"inverted bpm", "/api/v1/tracks/search?q=rock&min_bpm=150&max_bpm=90", "min_bpm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get(tt.path)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			body := decodeError(t, resp)
			assert.Equal(t, "VALIDATION", body.Code)
			assert.Contains(t, body.Details, tt.key)
		})
	}
}
