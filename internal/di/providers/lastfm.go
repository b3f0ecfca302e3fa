package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/crate-server/internal/config"
	"github.com/listenupapp/crate-server/internal/enrich"
	"github.com/listenupapp/crate-server/internal/lastfm"
	"github.com/listenupapp/crate-server/internal/logger"
)

// LastFMClientHandle wraps the Last.fm client with shutdown capability.
type LastFMClientHandle struct {
	*lastfm.Client
}

// Shutdown implements do.Shutdownable.
func (h *LastFMClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideLastFMClient provides the Last.fm client. Without an API key the
// client is built but reports itself disabled.
func ProvideLastFMClient(i do.Injector) (*LastFMClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)

	client := lastfm.New(lastfm.Config{
		APIKey:            cfg.LastFM.APIKey,
		APISecret:         cfg.LastFM.APISecret,
		RequestsPerSecond: cfg.LastFM.RequestsPerSecond,
		CacheTTL:          cfg.LastFM.CacheTTL,
	}, cacheHandle.Cache, log.Logger)

	if client.Enabled() {
		log.Info("Last.fm enrichment enabled", "rps", cfg.LastFM.RequestsPerSecond)
	} else {
		log.Info("Last.fm enrichment disabled, set LASTFM_API_KEY to enable")
	}

	return &LastFMClientHandle{Client: client}, nil
}

// ProvideEnrichPipeline provides the artist enrichment pipeline.
func ProvideEnrichPipeline(i do.Injector) (*enrich.Pipeline, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	clientHandle := do.MustInvoke[*LastFMClientHandle](i)

	return enrich.NewPipeline(clientHandle.Client, storeHandle.Store, enrich.Options{
		MaxAge:       cfg.LastFM.CacheTTL,
		SimilarLimit: cfg.LastFM.SimilarLimit,
		Threshold:    cfg.LastFM.MatchThreshold,
	}, log.Logger), nil
}
