package badger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/invenio/internal/common"
	"github.com/ternarybob/invenio/internal/interfaces"
	"github.com/ternarybob/invenio/internal/models"
)

func newTestDB(t *testing.T) *BadgerDB {
	t.Helper()
	db, err := NewBadgerDB(common.GetLogger(), &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func samplePage(names ...string) *models.SearchPage {
	records := make([]models.PlaceRecord, len(names))
	for i, name := range names {
		records[i] = models.PlaceRecord{
			Name:    name,
			Rating:  models.OptionalFloat{Value: 4.0, Valid: true},
			Reviews: models.OptionalInt{Value: 10, Valid: true},
			Website: "https://example.com",
		}
	}
	return &models.SearchPage{Records: records, NextPageToken: ""}
}

func TestSearchCache_PutGetRoundTrip(t *testing.T) {
	store := NewSearchCacheStorage(newTestDB(t), time.Hour, 16, common.GetLogger())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "coffee", "Austin", samplePage("Alpha", "Beta")))

	page, err := store.Get(ctx, "coffee", "Austin")
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	assert.Equal(t, "Alpha", page.Records[0].Name)
	assert.True(t, page.Records[0].Rating.Valid)
}

func TestSearchCache_MissForUnknownKey(t *testing.T) {
	store := NewSearchCacheStorage(newTestDB(t), time.Hour, 16, common.GetLogger())

	_, err := store.Get(context.Background(), "coffee", "Austin")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}

func TestSearchCache_KeyIsCaseInsensitive(t *testing.T) {
	store := NewSearchCacheStorage(newTestDB(t), time.Hour, 16, common.GetLogger())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "Coffee", "Austin", samplePage("Alpha")))

	page, err := store.Get(ctx, "coffee", "AUSTIN")
	require.NoError(t, err)
	assert.Len(t, page.Records, 1)
}

func TestSearchCache_EntryExpiresAfterTTL(t *testing.T) {
	store := NewSearchCacheStorage(newTestDB(t), time.Hour, 16, common.GetLogger())
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	require.NoError(t, store.Put(ctx, "coffee", "Austin", samplePage("Alpha")))

	// Just inside the TTL window.
	now = now.Add(time.Hour - time.Second)
	_, err := store.Get(ctx, "coffee", "Austin")
	require.NoError(t, err)

	// Past the window: lazily evicted and reported as a miss.
	now = now.Add(2 * time.Second)
	_, err = store.Get(ctx, "coffee", "Austin")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)

	// The expired entry is gone, not just hidden.
	count, countErr := store.db.Store().Count(&SearchCacheEntry{}, nil)
	require.NoError(t, countErr)
	assert.EqualValues(t, 0, count)
}

func TestSearchCache_OverwriteRefreshesEntry(t *testing.T) {
	store := NewSearchCacheStorage(newTestDB(t), time.Hour, 16, common.GetLogger())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "coffee", "Austin", samplePage("Old")))
	require.NoError(t, store.Put(ctx, "coffee", "Austin", samplePage("New")))

	page, err := store.Get(ctx, "coffee", "Austin")
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "New", page.Records[0].Name)
}

func TestSearchCache_CapacityEvictsOldest(t *testing.T) {
	store := NewSearchCacheStorage(newTestDB(t), time.Hour, 3, common.GetLogger())
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Put(ctx, fmt.Sprintf("keyword-%d", i), "Austin", samplePage("A")))
		now = now.Add(time.Minute)
	}

	// Fourth insert pushes out the oldest entry.
	require.NoError(t, store.Put(ctx, "keyword-3", "Austin", samplePage("A")))

	_, err := store.Get(ctx, "keyword-0", "Austin")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)

	for i := 1; i <= 3; i++ {
		_, err := store.Get(ctx, fmt.Sprintf("keyword-%d", i), "Austin")
		assert.NoError(t, err, "keyword-%d should survive", i)
	}
}

func TestSearchCache_PurgeExpired(t *testing.T) {
	store := NewSearchCacheStorage(newTestDB(t), time.Hour, 16, common.GetLogger())
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	require.NoError(t, store.Put(ctx, "old-1", "Austin", samplePage("A")))
	require.NoError(t, store.Put(ctx, "old-2", "Austin", samplePage("A")))

	now = now.Add(2 * time.Hour)
	require.NoError(t, store.Put(ctx, "fresh", "Austin", samplePage("A")))

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, purged)

	_, err = store.Get(ctx, "fresh", "Austin")
	assert.NoError(t, err)
}
