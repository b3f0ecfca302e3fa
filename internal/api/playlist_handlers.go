package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/http/response"
	"github.com/listenupapp/crate-server/internal/playlist"
	"github.com/listenupapp/crate-server/internal/service"
)

func (s *Server) registerPlaylistRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "previewPlaylist",
		Method:      http.MethodPost,
		Path:        "/api/v1/playlists/preview",
		Summary:     "Preview playlist",
		Description: "Composes filters into an ordered track list without saving it",
		Tags:        []string{"Playlists"},
	}, s.handlePreviewPlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID: "countPlaylist",
		Method:      http.MethodPost,
		Path:        "/api/v1/playlists/count",
		Summary:     "Count playlist",
		Description: "Counts the tracks matching filters, ignoring shuffle and limit",
		Tags:        []string{"Playlists"},
	}, s.handleCountPlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPlaylist",
		Method:        http.MethodPost,
		Path:          "/api/v1/playlists",
		Summary:       "Save playlist",
		Description:   "Composes filters and saves the resulting track order under a unique name",
		Tags:          []string{"Playlists"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreatePlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPlaylists",
		Method:      http.MethodGet,
		Path:        "/api/v1/playlists",
		Summary:     "List playlists",
		Description: "Returns saved playlists, newest first",
		Tags:        []string{"Playlists"},
	}, s.handleListPlaylists)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPlaylist",
		Method:      http.MethodGet,
		Path:        "/api/v1/playlists/{id}",
		Summary:     "Get playlist",
		Description: "Returns a saved playlist with its ordered track IDs",
		Tags:        []string{"Playlists"},
	}, s.handleGetPlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePlaylist",
		Method:      http.MethodDelete,
		Path:        "/api/v1/playlists/{id}",
		Summary:     "Delete playlist",
		Description: "Deletes a saved playlist",
		Tags:        []string{"Playlists"},
	}, s.handleDeletePlaylist)
}

// === DTOs ===

// PlaylistFiltersInput carries filters in the body.
type PlaylistFiltersInput struct {
	Body playlist.Filters
}

// PreviewPlaylistOutput contains the composed tracks.
type PreviewPlaylistOutput struct {
	Body *service.Preview
}

// CountPlaylistOutput contains the match count.
type CountPlaylistOutput struct {
	Body struct {
		Count int `json:"count" doc:"Matching tracks"`
	}
}

// CreatePlaylistInput contains the playlist to save.
type CreatePlaylistInput struct {
	Body service.CreateRequest
}

// PlaylistOutput contains one playlist.
type PlaylistOutput struct {
	Body *domain.Playlist
}

// ListPlaylistsOutput contains saved playlists.
type ListPlaylistsOutput struct {
	Body struct {
		Playlists []*domain.Playlist `json:"playlists" doc:"Saved playlists"`
	}
}

// PlaylistIDInput identifies a playlist.
type PlaylistIDInput struct {
	ID string `path:"id" maxLength:"64" doc:"Playlist ID"`
}

// === Handlers ===

func (s *Server) handlePreviewPlaylist(ctx context.Context, input *PlaylistFiltersInput) (*PreviewPlaylistOutput, error) {
	preview, err := s.services.Playlist.Preview(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &PreviewPlaylistOutput{Body: preview}, nil
}

func (s *Server) handleCountPlaylist(ctx context.Context, input *PlaylistFiltersInput) (*CountPlaylistOutput, error) {
	n, err := s.services.Playlist.Count(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	out := &CountPlaylistOutput{}
	out.Body.Count = n
	return out, nil
}

func (s *Server) handleCreatePlaylist(ctx context.Context, input *CreatePlaylistInput) (*PlaylistOutput, error) {
	p, err := s.services.Playlist.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &PlaylistOutput{Body: p}, nil
}

func (s *Server) handleListPlaylists(ctx context.Context, _ *struct{}) (*ListPlaylistsOutput, error) {
	playlists, err := s.services.Playlist.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &ListPlaylistsOutput{}
	out.Body.Playlists = nonNil(playlists)
	return out, nil
}

func (s *Server) handleGetPlaylist(ctx context.Context, input *PlaylistIDInput) (*PlaylistOutput, error) {
	p, err := s.services.Playlist.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PlaylistOutput{Body: p}, nil
}

func (s *Server) handleDeletePlaylist(ctx context.Context, input *PlaylistIDInput) (*MessageOutput, error) {
	if err := s.services.Playlist.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Playlist deleted"}}, nil
}

// handleExportM3U streams a saved playlist as an M3U file.
func (s *Server) handleExportM3U(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Resolve first so a missing playlist still gets a JSON error.
	p, err := s.services.Playlist.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", "audio/x-mpegurl; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+p.ID+`.m3u"`)
	if err := s.services.Playlist.ExportM3U(r.Context(), p.ID, w); err != nil {
		s.logger.Error("failed to export playlist", "playlist_id", p.ID, "error", err)
	}
}
