package export

import (
	"context"
	"path/filepath"

	"gar-builder/feature/registry/models"
)

// DirSink writes one flat file per region into a directory.
type DirSink struct {
	dir string
}

// NewDirSink creates a sink writing to dir.
func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir}
}

// Path returns the file a region is written to.
func (s *DirSink) Path(region string) string {
	return filepath.Join(s.dir, region+".csv")
}

// WriteRegion writes the region file and returns its path.
func (s *DirSink) WriteRegion(ctx context.Context, region string, addrs []models.ResolvedAddress) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := s.Path(region)
	if _, err := WriteFile(path, region, addrs); err != nil {
		return "", err
	}
	return path, nil
}
