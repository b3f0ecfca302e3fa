package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/genre"
)

func TestGroups_SeedListGet(t *testing.T) {
	ts := setupTestServer(t)
	ts.addTrack(t, "/m/1.flac", "Alison", "Slowdive", 0, "Shoegaze")

	resp := ts.api.Post("/api/v1/genre-groups/seed?dry_run=true")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var dry domain.GroupSeedReport
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &dry))
	assert.True(t, dry.DryRun)

	resp = ts.api.Get("/api/v1/genre-groups")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"groups":[]}`, resp.Body.String(), "dry run writes nothing")

	resp = ts.api.Post("/api/v1/genre-groups/seed")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var report domain.GroupSeedReport
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &report))
	assert.Equal(t, len(genre.DefaultGroups), report.GroupsCreated)

	resp = ts.api.Get("/api/v1/genre-groups")
	require.Equal(t, http.StatusOK, resp.Code)
	var list struct {
		Groups []*domain.GenreGroup `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Len(t, list.Groups, len(genre.DefaultGroups))

	resp = ts.api.Get("/api/v1/genre-groups/rock")
	require.Equal(t, http.StatusOK, resp.Code)
	var rock domain.GenreGroup
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rock))
	assert.Equal(t, "Rock", rock.DisplayName)
	assert.Equal(t, []string{"Shoegaze"}, rock.Members)
}

func TestGroups_GetUnknown(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/genre-groups/polka")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)
}
