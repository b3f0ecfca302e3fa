// Package di provides dependency injection configuration for the Crate server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/crate-server/internal/config"
	"github.com/listenupapp/crate-server/internal/di/providers"
	"github.com/listenupapp/crate-server/internal/enrich"
	"github.com/listenupapp/crate-server/internal/genre"
	"github.com/listenupapp/crate-server/internal/logger"
	"github.com/listenupapp/crate-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// opts control where configuration is loaded from.
func NewContainer(opts config.Options) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, opts)

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideNormalizer)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCache)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Enrichment
	do.Provide(injector, providers.ProvideLastFMClient)
	do.Provide(injector, providers.ProvideEnrichPipeline)

	// Business services
	do.Provide(injector, providers.ProvideGenreService)
	do.Provide(injector, providers.ProvideGroupService)
	do.Provide(injector, providers.ProvidePlaylistService)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideEnrichService)

	// Workers
	do.Provide(injector, providers.ProvideWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*genre.Normalizer](injector)

	for _, invoke := range []func(do.Injector) error{
		invokeAs[*providers.StoreHandle],
		invokeAs[*providers.CacheHandle],
		invokeAs[*providers.SearchIndexHandle],
		invokeAs[*providers.LastFMClientHandle],
		invokeAs[*enrich.Pipeline],
		invokeAs[*service.GenreService],
		invokeAs[*service.GroupService],
		invokeAs[*service.PlaylistService],
		invokeAs[*service.SearchService],
		invokeAs[*service.LibraryService],
		invokeAs[*service.EnrichService],
		invokeAs[*providers.WatcherHandle],
		invokeAs[*providers.HTTPServerHandle],
	} {
		if err := invoke(injector); err != nil {
			return err
		}
	}

	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}

func invokeAs[T any](i do.Injector) error {
	_, err := do.Invoke[T](i)
	return err
}
