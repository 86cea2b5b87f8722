package interfaces

import (
	"context"

	"github.com/ternarybob/invenio/internal/models"
)

// SearchCacheStorage stores the merged first page of a keyword+location
// query. Entries carry a fixed TTL from insertion and are evicted lazily on
// lookup; PurgeExpired sweeps the remainder on a schedule.
type SearchCacheStorage interface {
	// Get returns the cached page for (keyword, location), or ErrCacheMiss
	// when no entry exists or the entry has expired.
	Get(ctx context.Context, keyword, location string) (*models.SearchPage, error)

	// Put inserts or overwrites the entry for (keyword, location).
	Put(ctx context.Context, keyword, location string, page *models.SearchPage) error

	// PurgeExpired removes all expired entries and returns how many were
	// deleted.
	PurgeExpired(ctx context.Context) (int, error)
}

// WebsiteCacheStorage caches website lookups by place ID. Place IDs are
// stable and the field rarely changes, so entries have no TTL; the store is
// bounded and evicts the least-recently-used entry at capacity.
type WebsiteCacheStorage interface {
	// Get returns the cached website for placeID and whether it was found.
	Get(ctx context.Context, placeID string) (string, bool)

	// Put stores the website for placeID, evicting the least-recently-used
	// entry if the store is at capacity.
	Put(ctx context.Context, placeID, website string) error
}
