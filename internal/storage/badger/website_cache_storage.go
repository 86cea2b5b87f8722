package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// WebsiteCacheEntry caches one website lookup by place ID. Place IDs are
// stable, so entries have no TTL; LastUsed drives LRU eviction.
type WebsiteCacheEntry struct {
	PlaceID  string
	Website  string
	LastUsed time.Time
}

// WebsiteCacheStorage implements the WebsiteCacheStorage interface for
// Badger with a least-recently-used capacity bound.
type WebsiteCacheStorage struct {
	db       *BadgerDB
	capacity int
	now      func() time.Time
	logger   arbor.ILogger
}

// NewWebsiteCacheStorage creates a new WebsiteCacheStorage instance
func NewWebsiteCacheStorage(db *BadgerDB, capacity int, logger arbor.ILogger) *WebsiteCacheStorage {
	if capacity <= 0 {
		capacity = 500
	}
	return &WebsiteCacheStorage{
		db:       db,
		capacity: capacity,
		now:      time.Now,
		logger:   logger,
	}
}

// SetClock replaces the time source. Used by LRU tests.
func (s *WebsiteCacheStorage) SetClock(now func() time.Time) {
	s.now = now
}

// Get returns the cached website for placeID, refreshing its LRU position.
func (s *WebsiteCacheStorage) Get(ctx context.Context, placeID string) (string, bool) {
	var entry WebsiteCacheEntry
	err := s.db.Store().Get(placeID, &entry)
	if err == badgerhold.ErrNotFound {
		return "", false
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("place_id", placeID).Msg("Website cache lookup failed")
		return "", false
	}

	// Best effort; a stale LastUsed only skews eviction order.
	entry.LastUsed = s.now()
	if err := s.db.Store().Upsert(placeID, &entry); err != nil {
		s.logger.Warn().Err(err).Str("place_id", placeID).Msg("Failed to refresh website cache entry")
	}

	return entry.Website, true
}

// Put stores the website for placeID, evicting the least-recently-used entry
// when the store is at capacity.
func (s *WebsiteCacheStorage) Put(ctx context.Context, placeID, website string) error {
	var existing WebsiteCacheEntry
	isNew := s.db.Store().Get(placeID, &existing) == badgerhold.ErrNotFound

	if isNew {
		count, err := s.db.Store().Count(&WebsiteCacheEntry{}, nil)
		if err != nil {
			return fmt.Errorf("failed to count website cache entries: %w", err)
		}
		if int(count) >= s.capacity {
			if err := s.evictLeastRecentlyUsed(); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to evict website cache entry")
			}
		}
	}

	entry := WebsiteCacheEntry{
		PlaceID:  placeID,
		Website:  website,
		LastUsed: s.now(),
	}

	if err := s.db.Store().Upsert(placeID, &entry); err != nil {
		return fmt.Errorf("failed to put website cache entry: %w", err)
	}

	return nil
}

func (s *WebsiteCacheStorage) evictLeastRecentlyUsed() error {
	var oldest []WebsiteCacheEntry
	query := badgerhold.Where("PlaceID").Ne("").SortBy("LastUsed").Limit(1)
	if err := s.db.Store().Find(&oldest, query); err != nil {
		return fmt.Errorf("failed to find least-recently-used entry: %w", err)
	}
	if len(oldest) == 0 {
		return nil
	}

	if err := s.db.Store().Delete(oldest[0].PlaceID, &WebsiteCacheEntry{}); err != nil {
		return fmt.Errorf("failed to delete least-recently-used entry: %w", err)
	}

	s.logger.Debug().Str("place_id", oldest[0].PlaceID).Msg("Evicted least-recently-used website cache entry")
	return nil
}
