// Package search orchestrates keyword+location queries: provider page
// fetches, per-place website enrichment and multi-location fan-out.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/invenio/internal/common"
	"github.com/ternarybob/invenio/internal/interfaces"
	"github.com/ternarybob/invenio/internal/models"
)

// Service implements the SearchService interface
type Service struct {
	client              interfaces.PlacesClient
	logger              arbor.ILogger
	detailConcurrency   int
	detailBudget        time.Duration
	locationConcurrency int
	locationTimeout     time.Duration
	maxPages            int
	maxRecords          int
}

// NewService creates a new search service instance
func NewService(client interfaces.PlacesClient, config *common.SearchConfig, logger arbor.ILogger) *Service {
	detailConcurrency := config.DetailConcurrency
	if detailConcurrency <= 0 {
		detailConcurrency = 5
	}
	locationConcurrency := config.LocationConcurrency
	if locationConcurrency <= 0 {
		locationConcurrency = 3
	}
	maxPages := config.MaxPages
	if maxPages <= 0 {
		maxPages = 3
	}
	maxRecords := config.MaxRecords
	if maxRecords <= 0 {
		maxRecords = 60
	}

	return &Service{
		client:              client,
		logger:              logger,
		detailConcurrency:   detailConcurrency,
		detailBudget:        common.ParseDurationOr(config.DetailBudget, 45*time.Second),
		locationConcurrency: locationConcurrency,
		locationTimeout:     common.ParseDurationOr(config.LocationTimeout, 90*time.Second),
		maxPages:            maxPages,
		maxRecords:          maxRecords,
	}
}

// Search runs one page of a keyword+location query and merges website
// enrichment back onto the records in page order.
func (s *Service) Search(ctx context.Context, keyword, location, pageToken string) (*models.SearchPage, error) {
	providerPage, err := s.client.SearchPage(ctx, keyword, location, pageToken)
	if err != nil {
		if pageToken != "" {
			// Continuation pages stop silently; the caller keeps what
			// it already has.
			s.logger.Warn().
				Err(err).
				Str("keyword", keyword).
				Str("location", location).
				Msg("Continuation page fetch failed, stopping pagination")
			return &models.SearchPage{Records: []models.PlaceRecord{}}, nil
		}
		return nil, fmt.Errorf("failed to search places: %w", err)
	}

	placeIDs := make([]string, len(providerPage.Places))
	records := make([]models.PlaceRecord, len(providerPage.Places))
	for i, place := range providerPage.Places {
		placeIDs[i] = place.PlaceID
		records[i] = models.PlaceRecord{
			Name:    place.Name,
			Rating:  models.Float(place.Rating),
			Reviews: models.Int(place.UserRatingsTotal),
			Website: models.SentinelNA,
		}
	}

	websites := s.enrichWebsites(ctx, placeIDs)
	for i := range records {
		records[i].Website = websites[i]
	}

	s.logger.Info().
		Str("keyword", keyword).
		Str("location", location).
		Int("records", len(records)).
		Bool("has_next_page", providerPage.NextPageToken != "").
		Msg("Search page completed")

	return &models.SearchPage{
		Records:       records,
		NextPageToken: providerPage.NextPageToken,
	}, nil
}

// DeepSearch follows continuation tokens until the configured page and
// record caps are reached. Failures after the first page stop pagination
// silently and return what was accumulated.
func (s *Service) DeepSearch(ctx context.Context, keyword, location string) (*models.SearchPage, error) {
	merged := &models.SearchPage{Records: []models.PlaceRecord{}}

	pageToken := ""
	for page := 0; page < s.maxPages; page++ {
		result, err := s.Search(ctx, keyword, location, pageToken)
		if err != nil {
			return nil, err
		}

		merged.Records = append(merged.Records, result.Records...)
		if len(merged.Records) >= s.maxRecords {
			merged.Records = merged.Records[:s.maxRecords]
			break
		}

		pageToken = result.NextPageToken
		if pageToken == "" {
			break
		}
	}

	s.logger.Info().
		Str("keyword", keyword).
		Str("location", location).
		Int("records", len(merged.Records)).
		Msg("Deep search completed")

	return merged, nil
}
