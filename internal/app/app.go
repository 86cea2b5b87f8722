package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/invenio/internal/common"
	"github.com/ternarybob/invenio/internal/handlers"
	"github.com/ternarybob/invenio/internal/interfaces"
	"github.com/ternarybob/invenio/internal/services/places"
	"github.com/ternarybob/invenio/internal/services/search"
	badgerstore "github.com/ternarybob/invenio/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	DB           *badgerstore.BadgerDB
	SearchCache  interfaces.SearchCacheStorage
	WebsiteCache interfaces.WebsiteCacheStorage

	PlacesClient  interfaces.PlacesClient
	SearchService interfaces.SearchService

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	PageHandler   *handlers.PageHandler
	SearchHandler *handlers.SearchHandler

	sweeper *cron.Cron
}

// New creates the application with all services wired together
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := a.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a.initServices()
	a.initHandlers()

	if err := a.startCacheSweeper(); err != nil {
		return nil, fmt.Errorf("failed to start cache sweeper: %w", err)
	}

	if cfg.PlacesAPI.APIKey == "" {
		a.Logger.Warn().Msg("No Places API key configured, search requests will fail until one is set")
	}

	return a, nil
}

func (a *App) initStorage() error {
	db, err := badgerstore.NewBadgerDB(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return err
	}
	a.DB = db

	ttl := common.ParseDurationOr(a.Config.Cache.TTL, time.Hour)
	a.SearchCache = badgerstore.NewSearchCacheStorage(db, ttl, a.Config.Cache.Capacity, a.Logger)
	a.WebsiteCache = badgerstore.NewWebsiteCacheStorage(db, a.Config.PlacesAPI.WebsiteCacheSize, a.Logger)

	return nil
}

func (a *App) initServices() {
	a.PlacesClient = places.NewClient(&a.Config.PlacesAPI, a.WebsiteCache, a.Logger)
	a.SearchService = search.NewService(a.PlacesClient, &a.Config.Search, a.Logger)
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler()
	a.PageHandler = handlers.NewPageHandler(a.Logger)
	a.SearchHandler = handlers.NewSearchHandler(a.SearchService, a.SearchCache, a.Logger)
}

// startCacheSweeper schedules the periodic purge of expired cache entries.
// Expired entries are also dropped lazily on lookup; the sweep reclaims the
// ones nobody asks for again.
func (a *App) startCacheSweeper() error {
	a.sweeper = cron.New()

	_, err := a.sweeper.AddFunc(a.Config.Cache.SweepSchedule, func() {
		purged, err := a.SearchCache.PurgeExpired(context.Background())
		if err != nil {
			a.Logger.Warn().Err(err).Msg("Cache sweep failed")
			return
		}
		if purged > 0 {
			a.Logger.Info().Int("purged", purged).Msg("Cache sweep removed expired entries")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", a.Config.Cache.SweepSchedule, err)
	}

	a.sweeper.Start()
	return nil
}

// Close closes all application resources
func (a *App) Close() error {
	if a.sweeper != nil {
		ctx := a.sweeper.Stop()
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
			a.Logger.Warn().Msg("Timed out waiting for cache sweeper to stop")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	return nil
}
