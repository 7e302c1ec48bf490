package registry

import (
	"context"

	"gar-builder/feature/registry/models"
)

// Source supplies the raw record sets of each region.
type Source interface {
	// Regions lists the region codes available in the source, sorted.
	Regions(ctx context.Context) ([]string, error)
	// Load reads all four record sets of one region.
	Load(ctx context.Context, region string) (*models.Dataset, error)
}
