package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/crate-server/internal/config"
	"github.com/listenupapp/crate-server/internal/genre"
	"github.com/listenupapp/crate-server/internal/logger"
	"github.com/listenupapp/crate-server/internal/search"
	"github.com/listenupapp/crate-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.TrackIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve track index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	normalizer := do.MustInvoke[*genre.Normalizer](i)

	index, err := search.NewTrackIndex(search.Options{
		DataPath:   cfg.Data.IndexPath(),
		Normalizer: normalizer,
		Logger:     log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{TrackIndex: index}, nil
}

// TriggerSearchReindexIfNeeded rebuilds the index in the background when it
// is empty but the store has tracks.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := searchService.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	count, err := storeHandle.CountTracks(ctx)
	if err != nil || count == 0 {
		return
	}

	log.Info("Search index is empty but tracks exist, triggering initial reindex", "track_count", count)

	go func() {
		if _, err := searchService.Reindex(context.Background()); err != nil {
			log.Error("Initial search reindex failed", "error", err)
		}
	}()
}
