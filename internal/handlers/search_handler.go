package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/invenio/internal/common"
	"github.com/ternarybob/invenio/internal/interfaces"
	"github.com/ternarybob/invenio/internal/models"
)

// SearchHandler serves the search endpoints. The request cache sits in
// front of the search service and only ever holds first pages; any request
// carrying a continuation token bypasses it entirely.
type SearchHandler struct {
	searchService interfaces.SearchService
	cache         interfaces.SearchCacheStorage
	validate      *validator.Validate
	logger        arbor.ILogger
}

// NewSearchHandler creates a search handler with the given dependencies.
func NewSearchHandler(searchService interfaces.SearchService, cache interfaces.SearchCacheStorage, logger arbor.ILogger) *SearchHandler {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &SearchHandler{
		searchService: searchService,
		cache:         cache,
		validate:      validator.New(),
		logger:        logger,
	}
}

// SearchRequest is the body for POST /search.
type SearchRequest struct {
	Keyword   string `json:"keyword" validate:"required"`
	Location  string `json:"location" validate:"required"`
	PageToken string `json:"page_token"`
}

// SearchResponse is the body for a successful POST /search.
type SearchResponse struct {
	Data          []models.PlaceRecord `json:"data"`
	NextPageToken *string              `json:"next_page_token"`
	Cached        bool                 `json:"cached"`
}

// MultiSearchRequest is the body for POST /search-multiple. Locations is a
// comma-separated string, matching the form field the landing page submits.
type MultiSearchRequest struct {
	Keyword   string `json:"keyword" validate:"required"`
	Locations string `json:"locations" validate:"required"`
}

// DeepSearchRequest is the body for POST /search-deep.
type DeepSearchRequest struct {
	Keyword  string `json:"keyword" validate:"required"`
	Location string `json:"location" validate:"required"`
}

// HandleSearch handles POST /search requests
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Keyword = strings.TrimSpace(req.Keyword)
	req.Location = strings.TrimSpace(req.Location)

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Keyword and location are required")
		return
	}

	// Continuation pages are never cached; only first pages are looked up.
	if req.PageToken == "" {
		if page, err := h.cache.Get(r.Context(), req.Keyword, req.Location); err == nil {
			h.logger.Debug().
				Str("keyword", req.Keyword).
				Str("location", req.Location).
				Msg("Serving search from cache")
			WriteJSON(w, http.StatusOK, searchResponse(page, true))
			return
		}
	}

	page, err := h.searchService.Search(r.Context(), req.Keyword, req.Location, req.PageToken)
	if err != nil {
		h.writeSearchError(w, err)
		return
	}

	if req.PageToken == "" {
		if err := h.cache.Put(r.Context(), req.Keyword, req.Location, page); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to cache search result")
		}
	}

	WriteJSON(w, http.StatusOK, searchResponse(page, false))
}

// HandleSearchMultiple handles POST /search-multiple requests
func (h *SearchHandler) HandleSearchMultiple(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req MultiSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Keyword = strings.TrimSpace(req.Keyword)
	req.Locations = strings.TrimSpace(req.Locations)

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Keyword and locations are required")
		return
	}

	result, err := h.searchService.SearchMany(r.Context(), req.Keyword, strings.Split(req.Locations, ","))
	if err != nil {
		if errors.Is(err, interfaces.ErrInvalidInput) {
			WriteError(w, http.StatusBadRequest, "At least one location is required")
			return
		}
		h.writeSearchError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results":         result.Results,
		"total_locations": result.TotalLocations,
		"locations_found": result.LocationsFound,
		"keyword":         result.Keyword,
	})
}

// HandleSearchDeep handles POST /search-deep requests
func (h *SearchHandler) HandleSearchDeep(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req DeepSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Keyword = strings.TrimSpace(req.Keyword)
	req.Location = strings.TrimSpace(req.Location)

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Keyword and location are required")
		return
	}

	page, err := h.searchService.DeepSearch(r.Context(), req.Keyword, req.Location)
	if err != nil {
		h.writeSearchError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":         page.Records,
		"record_count": len(page.Records),
	})
}

// writeSearchError maps service errors to HTTP responses. The missing
// credential case gets its own message so operators can tell it apart from
// transient provider failures; everything else stays generic.
func (h *SearchHandler) writeSearchError(w http.ResponseWriter, err error) {
	if errors.Is(err, interfaces.ErrMissingAPIKey) {
		h.logger.Error().Err(err).Msg("Search rejected, no API key configured")
		WriteError(w, http.StatusInternalServerError, "Places API key is not configured")
		return
	}

	h.logger.Error().Err(err).Msg("Search failed")
	WriteError(w, http.StatusInternalServerError, "Server error. Please try again later.")
}

func searchResponse(page *models.SearchPage, cached bool) SearchResponse {
	records := page.Records
	if records == nil {
		records = []models.PlaceRecord{}
	}

	var token *string
	if page.NextPageToken != "" {
		t := page.NextPageToken
		token = &t
	}

	return SearchResponse{
		Data:          records,
		NextPageToken: token,
		Cached:        cached,
	}
}
