// Package providers contains dependency injection providers for the Crate server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/crate-server/internal/config"
	"github.com/listenupapp/crate-server/internal/genre"
	"github.com/listenupapp/crate-server/internal/logger"
)

// ProvideConfig provides the application configuration. Load options are
// read from the injector when the caller registered them.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	opts, err := do.Invoke[config.Options](i)
	if err != nil {
		opts = config.Options{}
	}
	return config.Load(opts)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Crate",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"music_path", cfg.Library.MusicPath,
		"lastfm", cfg.LastFM.Enabled(),
	)

	return log, nil
}

// ProvideNormalizer provides the genre normalizer shared by the store,
// search index and services.
func ProvideNormalizer(_ do.Injector) (*genre.Normalizer, error) {
	return genre.Default(), nil
}
