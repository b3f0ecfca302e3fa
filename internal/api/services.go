package api

import "github.com/listenupapp/crate-server/internal/service"

// Services groups the business services used by the API server.
type Services struct {
	Genre    *service.GenreService
	Group    *service.GroupService
	Playlist *service.PlaylistService
	Search   *service.SearchService
	Library  *service.LibraryService
	Enrich   *service.EnrichService
}
