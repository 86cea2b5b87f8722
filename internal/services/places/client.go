// Package places provides the client for the Google Places API.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/invenio/internal/common"
	"github.com/ternarybob/invenio/internal/interfaces"
	"github.com/ternarybob/invenio/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the Google Maps Platform APIs.
	DefaultBaseURL = "https://maps.googleapis.com"

	textSearchPath = "/maps/api/place/textsearch/json"
	detailsPath    = "/maps/api/place/details/json"
)

// Client is a Google Places API client
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	logger       arbor.ILogger
	websiteCache interfaces.WebsiteCacheStorage
	// Gates continuation-token fetches: the provider rejects a page
	// token presented too soon after it was issued.
	pageLimiter *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL. Used by tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithPageTokenDelay sets the minimum wait before a continuation token is
// presented to the provider.
func WithPageTokenDelay(delay time.Duration) ClientOption {
	return func(c *Client) {
		c.pageLimiter = rate.NewLimiter(rate.Every(delay), 1)
	}
}

// NewClient creates a new Places API client. A missing API key does not fail
// construction; SearchPage then reports ErrMissingAPIKey so the service can
// keep running and surface a clear error per request.
func NewClient(config *common.PlacesAPIConfig, websiteCache interfaces.WebsiteCacheStorage, logger arbor.ILogger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: common.ParseDurationOr(config.RequestTimeout, 8*time.Second),
		},
		logger:       logger,
		websiteCache: websiteCache,
		pageLimiter:  rate.NewLimiter(rate.Every(common.ParseDurationOr(config.PageTokenDelay, 2*time.Second)), 1),
	}

	if config.BaseURL != "" {
		c.baseURL = config.BaseURL
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SearchPage performs one page of a Places text search for
// "<keyword> in <location>".
func (c *Client) SearchPage(ctx context.Context, keyword, location, pageToken string) (*models.ProviderPage, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("search %q in %q: %w", keyword, location, interfaces.ErrMissingAPIKey)
	}

	query := fmt.Sprintf("%s in %s", keyword, location)

	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)
	if pageToken != "" {
		params.Set("pagetoken", pageToken)
		if err := c.pageLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for page token delay: %w", err)
		}
	}

	// Redact API key in logs
	c.logger.Debug().
		Str("query", query).
		Bool("continuation", pageToken != "").
		Msg("Calling Places Text Search API")

	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, textSearchPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build text search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Places API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: text search returned status %d: %s", interfaces.ErrUpstream, resp.StatusCode, string(body))
	}

	var apiResp TextSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode text search response: %v", interfaces.ErrUpstream, err)
	}

	if apiResp.Status != "OK" && apiResp.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("%w: %s - %s", interfaces.ErrUpstream, apiResp.Status, apiResp.ErrorMessage)
	}

	page := &models.ProviderPage{
		Places:        make([]models.ProviderPlace, len(apiResp.Results)),
		NextPageToken: apiResp.NextPageToken,
	}
	for i, place := range apiResp.Results {
		page.Places[i] = models.ProviderPlace{
			PlaceID:          place.PlaceID,
			Name:             place.Name,
			Rating:           place.Rating,
			UserRatingsTotal: place.UserRatingsTotal,
		}
	}

	// Consume the limiter token so a continuation issued off this page
	// waits out the provider's minimum interval.
	if page.NextPageToken != "" {
		c.pageLimiter.Allow()
	}

	c.logger.Info().
		Str("query", query).
		Int("results_count", len(page.Places)).
		Str("status", apiResp.Status).
		Bool("has_next_page", page.NextPageToken != "").
		Msg("Places text search completed")

	return page, nil
}

// FetchWebsite looks up the website for one place ID via the Place Details
// API. Any failure degrades to the "N/A" sentinel; this call never returns
// an error to its caller.
func (c *Client) FetchWebsite(ctx context.Context, placeID string) string {
	if placeID == "" || c.apiKey == "" {
		return models.SentinelNA
	}

	if c.websiteCache != nil {
		if website, ok := c.websiteCache.Get(ctx, placeID); ok {
			return website
		}
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "website")
	params.Set("key", c.apiKey)

	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, detailsPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return models.SentinelNA
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures (including an expired enrichment budget)
		// are not cached; the next batch may succeed.
		c.logger.Debug().Err(err).Str("place_id", placeID).Msg("Place details call failed")
		return models.SentinelNA
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug().Int("status", resp.StatusCode).Str("place_id", placeID).Msg("Place details returned non-success status")
		return models.SentinelNA
	}

	var apiResp DetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		c.logger.Debug().Err(err).Str("place_id", placeID).Msg("Failed to decode place details response")
		return models.SentinelNA
	}

	website := models.SentinelNA
	if apiResp.Status == "OK" && apiResp.Result.Website != "" {
		website = apiResp.Result.Website
	}

	// Cache completed lookups, missing-website results included; place
	// IDs are stable and the field rarely changes.
	if c.websiteCache != nil && (apiResp.Status == "OK" || apiResp.Status == "ZERO_RESULTS" || apiResp.Status == "NOT_FOUND") {
		if err := c.websiteCache.Put(ctx, placeID, website); err != nil {
			c.logger.Warn().Err(err).Str("place_id", placeID).Msg("Failed to cache website lookup")
		}
	}

	return website
}
