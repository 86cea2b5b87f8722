package badger

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/invenio/internal/interfaces"
	"github.com/ternarybob/invenio/internal/models"
)

// SearchCacheEntry is the stored form of one cached first page.
type SearchCacheEntry struct {
	Key        string
	Keyword    string
	Location   string
	Page       models.SearchPage
	InsertedAt time.Time
}

// SearchCacheStorage implements the SearchCacheStorage interface for Badger.
// Entries expire ttl after insertion; expiry is checked lazily on Get against
// the injected clock, and PurgeExpired sweeps the rest.
type SearchCacheStorage struct {
	db       *BadgerDB
	ttl      time.Duration
	capacity int
	now      func() time.Time
	logger   arbor.ILogger
}

// NewSearchCacheStorage creates a new SearchCacheStorage instance
func NewSearchCacheStorage(db *BadgerDB, ttl time.Duration, capacity int, logger arbor.ILogger) *SearchCacheStorage {
	return &SearchCacheStorage{
		db:       db,
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
		logger:   logger,
	}
}

// SetClock replaces the time source. Used by TTL tests.
func (s *SearchCacheStorage) SetClock(now func() time.Time) {
	s.now = now
}

// cacheKey derives the storage key from the normalized lowercased
// keyword+location pair.
func cacheKey(keyword, location string) string {
	digest := md5.Sum([]byte(strings.ToLower(keyword) + "_" + strings.ToLower(location)))
	return hex.EncodeToString(digest[:])
}

// Get retrieves the cached page for (keyword, location). An expired entry is
// deleted and reported as a miss.
func (s *SearchCacheStorage) Get(ctx context.Context, keyword, location string) (*models.SearchPage, error) {
	key := cacheKey(keyword, location)

	var entry SearchCacheEntry
	err := s.db.Store().Get(key, &entry)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	if s.now().Sub(entry.InsertedAt) >= s.ttl {
		if err := s.db.Store().Delete(key, &SearchCacheEntry{}); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to evict expired cache entry")
		}
		return nil, interfaces.ErrCacheMiss
	}

	page := entry.Page
	return &page, nil
}

// Put inserts or overwrites the entry for (keyword, location). When the store
// is at capacity the oldest entry is evicted first.
func (s *SearchCacheStorage) Put(ctx context.Context, keyword, location string, page *models.SearchPage) error {
	key := cacheKey(keyword, location)

	if s.capacity > 0 {
		if err := s.evictOldestAtCapacity(key); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to bound cache size")
		}
	}

	entry := SearchCacheEntry{
		Key:        key,
		Keyword:    strings.ToLower(keyword),
		Location:   strings.ToLower(location),
		Page:       *page,
		InsertedAt: s.now(),
	}

	if err := s.db.Store().Upsert(key, &entry); err != nil {
		return fmt.Errorf("failed to put cache entry: %w", err)
	}

	return nil
}

// evictOldestAtCapacity removes the oldest entry when inserting key would
// exceed the capacity bound. Overwrites of an existing key never evict.
func (s *SearchCacheStorage) evictOldestAtCapacity(key string) error {
	var existing SearchCacheEntry
	if err := s.db.Store().Get(key, &existing); err == nil {
		return nil
	}

	count, err := s.db.Store().Count(&SearchCacheEntry{}, nil)
	if err != nil {
		return fmt.Errorf("failed to count cache entries: %w", err)
	}
	if int(count) < s.capacity {
		return nil
	}

	var oldest []SearchCacheEntry
	query := badgerhold.Where("Key").Ne("").SortBy("InsertedAt").Limit(1)
	if err := s.db.Store().Find(&oldest, query); err != nil {
		return fmt.Errorf("failed to find oldest cache entry: %w", err)
	}
	if len(oldest) == 0 {
		return nil
	}

	if err := s.db.Store().Delete(oldest[0].Key, &SearchCacheEntry{}); err != nil {
		return fmt.Errorf("failed to evict oldest cache entry: %w", err)
	}

	s.logger.Debug().
		Str("keyword", oldest[0].Keyword).
		Str("location", oldest[0].Location).
		Msg("Evicted oldest cache entry at capacity")

	return nil
}

// PurgeExpired removes all expired entries and returns how many were deleted.
func (s *SearchCacheStorage) PurgeExpired(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.ttl)

	var expired []SearchCacheEntry
	if err := s.db.Store().Find(&expired, badgerhold.Where("InsertedAt").Le(cutoff)); err != nil {
		return 0, fmt.Errorf("failed to find expired cache entries: %w", err)
	}

	purged := 0
	for _, entry := range expired {
		if err := s.db.Store().Delete(entry.Key, &SearchCacheEntry{}); err != nil {
			s.logger.Warn().Err(err).Str("key", entry.Key).Msg("Failed to purge expired cache entry")
			continue
		}
		purged++
	}

	return purged, nil
}
