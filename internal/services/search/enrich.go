package search

import (
	"context"
	"sync"

	"github.com/ternarybob/invenio/internal/models"
)

// enrichWebsites dispatches one website lookup per place ID, bounded to
// detailConcurrency in-flight calls, and returns the results positionally:
// the i-th output always belongs to the i-th input regardless of completion
// order. The whole batch shares one wall-clock budget; positions whose call
// has not completed when the budget elapses hold the "N/A" sentinel.
func (s *Service) enrichWebsites(ctx context.Context, placeIDs []string) []string {
	websites := make([]string, len(placeIDs))
	for i := range websites {
		websites[i] = models.SentinelNA
	}
	if len(placeIDs) == 0 {
		return websites
	}

	ctx, cancel := context.WithTimeout(ctx, s.detailBudget)
	defer cancel()

	workers := s.detailConcurrency
	if workers > len(placeIDs) {
		workers = len(placeIDs)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				// Each worker writes a distinct position; no lock needed.
				websites[i] = s.client.FetchWebsite(ctx, placeIDs[i])
			}
		}()
	}

feed:
	for i := range placeIDs {
		select {
		case indexes <- i:
		case <-ctx.Done():
			// Budget elapsed; undispatched positions keep the sentinel.
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	return websites
}
