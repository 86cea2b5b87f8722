package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ternarybob/invenio/internal/interfaces"
	"github.com/ternarybob/invenio/internal/models"
)

// SearchMany runs one first-page search per location, bounded to
// locationConcurrency in-flight searches, each with its own timeout. A
// location whose search fails or times out maps to an empty record list;
// it is never dropped and never fails the batch.
func (s *Service) SearchMany(ctx context.Context, keyword string, locations []string) (*models.MultiLocationResult, error) {
	normalized := normalizeLocations(locations)
	if len(normalized) == 0 {
		return nil, fmt.Errorf("at least one location is required: %w", interfaces.ErrInvalidInput)
	}

	results := make(map[string][]models.PlaceRecord, len(normalized))
	var mu sync.Mutex

	workers := s.locationConcurrency
	if workers > len(normalized) {
		workers = len(normalized)
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for location := range jobs {
				records := s.searchOneLocation(ctx, keyword, location)
				mu.Lock()
				results[location] = records
				mu.Unlock()
			}
		}()
	}

	for _, location := range normalized {
		jobs <- location
	}
	close(jobs)
	wg.Wait()

	found := 0
	for _, records := range results {
		if len(records) > 0 {
			found++
		}
	}

	s.logger.Info().
		Str("keyword", keyword).
		Int("total_locations", len(normalized)).
		Int("locations_found", found).
		Msg("Multi-location search completed")

	return &models.MultiLocationResult{
		Keyword:        keyword,
		Results:        results,
		TotalLocations: len(normalized),
		LocationsFound: found,
	}, nil
}

// searchOneLocation runs the first page for one location under its own
// timeout, absorbing every failure into an empty record list.
func (s *Service) searchOneLocation(ctx context.Context, keyword, location string) []models.PlaceRecord {
	lctx, cancel := context.WithTimeout(ctx, s.locationTimeout)
	defer cancel()

	page, err := s.Search(lctx, keyword, location, "")
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("keyword", keyword).
			Str("location", location).
			Msg("Location search failed, returning empty result")
		return []models.PlaceRecord{}
	}

	if page.Records == nil {
		return []models.PlaceRecord{}
	}
	return page.Records
}

// normalizeLocations trims whitespace, drops empties and deduplicates while
// preserving first-seen order.
func normalizeLocations(locations []string) []string {
	seen := make(map[string]bool, len(locations))
	normalized := make([]string, 0, len(locations))
	for _, location := range locations {
		location = strings.TrimSpace(location)
		if location == "" {
			continue
		}
		key := strings.ToLower(location)
		if seen[key] {
			continue
		}
		seen[key] = true
		normalized = append(normalized, location)
	}
	return normalized
}
