package registry

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"gar-builder/core/faults"
	"gar-builder/feature/registry/models"

	"go.uber.org/zap"
)

// Registry file kinds inside one region directory of the archive.
const (
	fileHouses = "AS_HOUSES_"
	fileParams = "AS_HOUSES_PARAMS_"
	fileObjs   = "AS_ADDR_OBJ_"
	fileLinks  = "AS_MUN_HIERARCHY_"
)

// ZipSource reads regions from the packaged GAR XML archive.
type ZipSource struct {
	path   string
	logger *zap.Logger
}

// NewZipSource creates a source over the archive at path.
func NewZipSource(path string, logger *zap.Logger) *ZipSource {
	return &ZipSource{path: path, logger: logger}
}

// Regions returns the two-character region directories of the archive.
// The country-wide "AS" directory is not a region.
func (s *ZipSource) Regions(ctx context.Context) ([]string, error) {
	zr, err := s.open()
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	set := make(map[string]struct{})
	for _, f := range zr.File {
		dir, _, ok := strings.Cut(f.Name, "/")
		if !ok || len(dir) != 2 || strings.EqualFold(dir, "AS") {
			continue
		}
		set[dir] = struct{}{}
	}

	regions := make([]string, 0, len(set))
	for r := range set {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	return regions, nil
}

// Load parses the four registry files of a region.
func (s *ZipSource) Load(ctx context.Context, region string) (*models.Dataset, error) {
	zr, err := s.open()
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	files, err := regionFiles(zr, region)
	if err != nil {
		return nil, err
	}

	ds := &models.Dataset{}

	err = readElements(ctx, files[fileHouses], "HOUSE", func(a Attrs) error {
		h, err := CastHouse(a)
		if err != nil {
			return err
		}
		h.Region = region
		ds.Houses = append(ds.Houses, h)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readElements(ctx, files[fileParams], "PARAM", func(a Attrs) error {
		p, err := CastParam(a)
		if err != nil {
			return err
		}
		// Only postal codes are used; skipping early keeps memory low.
		if p.TypeID != models.PostalCodeType {
			return nil
		}
		p.Region = region
		ds.Params = append(ds.Params, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readElements(ctx, files[fileObjs], "OBJECT", func(a Attrs) error {
		o, err := CastObject(a)
		if err != nil {
			return err
		}
		o.Region = region
		ds.Objects = append(ds.Objects, o)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readElements(ctx, files[fileLinks], "ITEM", func(a Attrs) error {
		l, err := CastLink(a)
		if err != nil {
			return err
		}
		l.Region = region
		ds.Links = append(ds.Links, l)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Region loaded from archive",
		zap.String("region", region),
		zap.Int("houses", len(ds.Houses)),
		zap.Int("params", len(ds.Params)),
		zap.Int("objects", len(ds.Objects)),
		zap.Int("links", len(ds.Links)),
	)
	return ds, nil
}

func (s *ZipSource) open() (*zip.ReadCloser, error) {
	zr, err := zip.OpenReader(s.path)
	if err != nil {
		return nil, faults.Unavailable(fmt.Sprintf("archive %s", s.path), err)
	}
	return zr, nil
}

// regionFiles picks the file of each kind inside the region directory.
func regionFiles(zr *zip.ReadCloser, region string) (map[string]*zip.File, error) {
	files := make(map[string]*zip.File, 4)
	for _, f := range zr.File {
		dir, name := path.Split(f.Name)
		if dir != region+"/" {
			continue
		}
		if kind := fileKind(name); kind != "" {
			files[kind] = f
		}
	}

	for _, kind := range []string{fileHouses, fileParams, fileObjs, fileLinks} {
		if files[kind] == nil {
			return nil, faults.Unavailable(fmt.Sprintf("region %s: %s*.XML", region, kind), nil)
		}
	}
	return files, nil
}

func fileKind(name string) string {
	upper := strings.ToUpper(name)
	if !strings.HasSuffix(upper, ".XML") {
		return ""
	}
	switch {
	case strings.HasPrefix(upper, fileParams):
		return fileParams
	case strings.HasPrefix(upper, fileHouses):
		return fileHouses
	case strings.HasPrefix(upper, fileObjs):
		if strings.HasPrefix(upper, "AS_ADDR_OBJ_PARAMS") || strings.HasPrefix(upper, "AS_ADDR_OBJ_DIVISION") {
			return ""
		}
		return fileObjs
	case strings.HasPrefix(upper, fileLinks):
		return fileLinks
	}
	return ""
}

// readElements streams the file and calls fn with the attributes of each element named tag.
func readElements(ctx context.Context, f *zip.File, tag string, fn func(Attrs) error) error {
	rc, err := f.Open()
	if err != nil {
		return faults.Unavailable(f.Name, err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	for n := 0; ; n++ {
		if n%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return faults.Unavailable(f.Name, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != tag {
			continue
		}

		attrs := make(Attrs, len(start.Attr))
		for _, a := range start.Attr {
			attrs[a.Name.Local] = a.Value
		}
		if err := fn(attrs); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}
}
