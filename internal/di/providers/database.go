package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/crate-server/internal/cache"
	"github.com/listenupapp/crate-server/internal/config"
	"github.com/listenupapp/crate-server/internal/genre"
	"github.com/listenupapp/crate-server/internal/logger"
	"github.com/listenupapp/crate-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite track store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	normalizer := do.MustInvoke[*genre.Normalizer](i)

	dbPath := cfg.Data.DBPath()
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}
	db.SetNormalizer(normalizer)

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// CacheHandle wraps the badger cache with shutdown capability.
type CacheHandle struct {
	*cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the Last.fm response cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	c, err := cache.Open(cfg.Data.CachePath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Cache initialized", "path", cfg.Data.CachePath())

	return &CacheHandle{Cache: c}, nil
}
