package interfaces

import (
	"context"

	"github.com/ternarybob/invenio/internal/models"
)

// SearchService defines the interface for keyword+location search operations
type SearchService interface {
	// Search runs one page of a keyword+location query: fetches the
	// provider page, enriches every record with its website, and returns
	// the merged page plus the provider's continuation token.
	//
	// A provider failure on the first page (empty pageToken) is returned
	// to the caller. A failure on a continuation page stops silently and
	// returns an empty page with no token.
	Search(ctx context.Context, keyword, location, pageToken string) (*models.SearchPage, error)

	// DeepSearch follows continuation tokens until the configured page
	// and record caps are reached, merging all pages into one result.
	DeepSearch(ctx context.Context, keyword, location string) (*models.SearchPage, error)

	// SearchMany runs Search once per location with bounded concurrency.
	// A location that fails or times out maps to an empty record list;
	// it is never dropped from the result. Returns ErrInvalidInput when
	// no usable location remains after trimming and deduplication.
	SearchMany(ctx context.Context, keyword string, locations []string) (*models.MultiLocationResult, error)
}
