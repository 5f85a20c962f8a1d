package scrape

import (
	"context"

	"yardwatch/internal/domain"
)

// Source is one salvage yard the poller knows how to ask for inventory.
// Fetch returns every listing currently visible; an empty slice is a
// normal answer, not an error. Implementations honor ctx cancellation.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Listing, error)
}
