package places

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/invenio/internal/common"
	"github.com/ternarybob/invenio/internal/interfaces"
	"github.com/ternarybob/invenio/internal/models"
)

// memWebsiteCache implements interfaces.WebsiteCacheStorage in memory
type memWebsiteCache struct {
	mu      sync.Mutex
	entries map[string]string
	puts    int
}

func newMemWebsiteCache() *memWebsiteCache {
	return &memWebsiteCache{entries: make(map[string]string)}
}

func (m *memWebsiteCache) Get(ctx context.Context, placeID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	website, ok := m.entries[placeID]
	return website, ok
}

func (m *memWebsiteCache) Put(ctx context.Context, placeID, website string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	m.entries[placeID] = website
	return nil
}

func testConfig(baseURL string) *common.PlacesAPIConfig {
	return &common.PlacesAPIConfig{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		RequestTimeout: "2s",
	}
}

func newTestClient(baseURL string, cache interfaces.WebsiteCacheStorage) *Client {
	return NewClient(testConfig(baseURL), cache, common.GetLogger(), WithPageTokenDelay(time.Millisecond))
}

func TestSearchPage_BuildsQueryAndParsesResults(t *testing.T) {
	var gotQuery, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, textSearchPath, r.URL.Path)
		gotQuery = r.URL.Query().Get("query")
		gotKey = r.URL.Query().Get("key")
		fmt.Fprint(w, `{
			"status": "OK",
			"results": [
				{"place_id": "p1", "name": "Alpha Coffee", "rating": 4.5, "user_ratings_total": 120},
				{"place_id": "p2", "name": "Beta Coffee"}
			],
			"next_page_token": "tok-next"
		}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	page, err := client.SearchPage(context.Background(), "coffee shop", "Austin", "")
	require.NoError(t, err)

	assert.Equal(t, "coffee shop in Austin", gotQuery)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "tok-next", page.NextPageToken)
	require.Len(t, page.Places, 2)

	assert.Equal(t, "p1", page.Places[0].PlaceID)
	require.NotNil(t, page.Places[0].Rating)
	assert.Equal(t, 4.5, *page.Places[0].Rating)
	require.NotNil(t, page.Places[0].UserRatingsTotal)
	assert.Equal(t, 120, *page.Places[0].UserRatingsTotal)

	assert.Nil(t, page.Places[1].Rating)
	assert.Nil(t, page.Places[1].UserRatingsTotal)
}

func TestSearchPage_SendsPageToken(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("pagetoken")
		fmt.Fprint(w, `{"status": "OK", "results": []}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	_, err := client.SearchPage(context.Background(), "coffee", "Austin", "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", gotToken)
}

func TestSearchPage_ZeroResultsIsEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "ZERO_RESULTS", "results": []}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	page, err := client.SearchPage(context.Background(), "coffee", "Atlantis", "")
	require.NoError(t, err)
	assert.Empty(t, page.Places)
	assert.Empty(t, page.NextPageToken)
}

func TestSearchPage_ProviderStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid.", "results": []}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	_, err := client.SearchPage(context.Background(), "coffee", "Austin", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrUpstream))
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestSearchPage_HTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream out to lunch", http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	_, err := client.SearchPage(context.Background(), "coffee", "Austin", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrUpstream))
}

func TestSearchPage_MissingAPIKey(t *testing.T) {
	cfg := testConfig("http://unused.invalid")
	cfg.APIKey = ""
	client := NewClient(cfg, nil, common.GetLogger())

	_, err := client.SearchPage(context.Background(), "coffee", "Austin", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrMissingAPIKey))
}

func TestFetchWebsite_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, detailsPath, r.URL.Path)
		assert.Equal(t, "p1", r.URL.Query().Get("place_id"))
		assert.Equal(t, "website", r.URL.Query().Get("fields"))
		fmt.Fprint(w, `{"status": "OK", "result": {"website": "https://alpha.example.com"}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	website := client.FetchWebsite(context.Background(), "p1")
	assert.Equal(t, "https://alpha.example.com", website)
}

func TestFetchWebsite_FailuresDegradeToSentinel(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{{{`)
		}},
		{"missing website field", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status": "OK", "result": {}}`)
		}},
		{"not found status", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status": "NOT_FOUND"}`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := newTestClient(server.URL, nil)
			assert.Equal(t, models.SentinelNA, client.FetchWebsite(context.Background(), "p1"))
		})
	}
}

func TestFetchWebsite_EmptyPlaceID(t *testing.T) {
	client := newTestClient("http://unused.invalid", nil)
	assert.Equal(t, models.SentinelNA, client.FetchWebsite(context.Background(), ""))
}

func TestFetchWebsite_ServedFromCache(t *testing.T) {
	var serverCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverCalls++
		fmt.Fprint(w, `{"status": "OK", "result": {"website": "https://alpha.example.com"}}`)
	}))
	defer server.Close()

	cache := newMemWebsiteCache()
	client := newTestClient(server.URL, cache)

	first := client.FetchWebsite(context.Background(), "p1")
	second := client.FetchWebsite(context.Background(), "p1")

	assert.Equal(t, "https://alpha.example.com", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, serverCalls)
	assert.Equal(t, 1, cache.puts)
}

func TestFetchWebsite_TransportFailureNotCached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	cache := newMemWebsiteCache()
	client := newTestClient(server.URL, cache)

	assert.Equal(t, models.SentinelNA, client.FetchWebsite(context.Background(), "p1"))
	assert.Equal(t, 0, cache.puts)
}

func TestFetchWebsite_MissingWebsiteCachedAsSentinel(t *testing.T) {
	var serverCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverCalls++
		fmt.Fprint(w, `{"status": "OK", "result": {}}`)
	}))
	defer server.Close()

	cache := newMemWebsiteCache()
	client := newTestClient(server.URL, cache)

	assert.Equal(t, models.SentinelNA, client.FetchWebsite(context.Background(), "p1"))
	assert.Equal(t, models.SentinelNA, client.FetchWebsite(context.Background(), "p1"))
	assert.Equal(t, 1, serverCalls)
}
