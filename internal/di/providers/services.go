package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/crate-server/internal/config"
	"github.com/listenupapp/crate-server/internal/enrich"
	"github.com/listenupapp/crate-server/internal/genre"
	"github.com/listenupapp/crate-server/internal/library"
	"github.com/listenupapp/crate-server/internal/logger"
	"github.com/listenupapp/crate-server/internal/playlist"
	"github.com/listenupapp/crate-server/internal/service"
)

// ProvideGenreService provides the genre normalization service.
func ProvideGenreService(i do.Injector) (*service.GenreService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	normalizer := do.MustInvoke[*genre.Normalizer](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewGenreService(storeHandle.Store, normalizer, log.Logger), nil
}

// ProvideGroupService provides the genre group service.
func ProvideGroupService(i do.Injector) (*service.GroupService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	normalizer := do.MustInvoke[*genre.Normalizer](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewGroupService(storeHandle.Store, normalizer, cfg.Groups.File, log.Logger), nil
}

// ProvidePlaylistService provides the playlist service.
func ProvidePlaylistService(i do.Injector) (*service.PlaylistService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	composer := playlist.NewComposer(storeHandle.Store)
	return service.NewPlaylistService(storeHandle.Store, composer, log.Logger), nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	normalizer := do.MustInvoke[*genre.Normalizer](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewSearchService(indexHandle.TrackIndex, storeHandle.Store, normalizer, log.Logger), nil
}

// ProvideLibraryService provides the library import service. Imported
// tracks are indexed as they land.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	groups := do.MustInvoke[*service.GroupService](i)
	log := do.MustInvoke[*logger.Logger](i)

	importer := library.NewImporter(storeHandle.Store, indexHandle.TrackIndex, log.Logger)
	return service.NewLibraryService(importer, groups, cfg.Library.MusicPath, log.Logger), nil
}

// ProvideEnrichService provides the artist enrichment service.
func ProvideEnrichService(i do.Injector) (*service.EnrichService, error) {
	pipeline := do.MustInvoke[*enrich.Pipeline](i)
	clientHandle := do.MustInvoke[*LastFMClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewEnrichService(pipeline, clientHandle.Enabled(), log.Logger), nil
}
