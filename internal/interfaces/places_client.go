package interfaces

import (
	"context"

	"github.com/ternarybob/invenio/internal/models"
)

// PlacesClient defines the interface for the remote places provider.
type PlacesClient interface {
	// SearchPage fetches one page of text-search results for
	// "<keyword> in <location>". A non-empty pageToken requests the
	// continuation page; the client enforces the provider's minimum
	// delay before presenting a token. A ZERO_RESULTS response is an
	// empty page, not an error.
	SearchPage(ctx context.Context, keyword, location, pageToken string) (*models.ProviderPage, error)

	// FetchWebsite looks up the website field for a single place ID.
	// Returns the "N/A" sentinel on any failure; never returns an error.
	FetchWebsite(ctx context.Context, placeID string) string
}
