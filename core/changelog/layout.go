package changelog

import (
	"strings"

	"gar-builder/core/faults"
)

// Layout describes how input rows map to identity keys and content strings.
type Layout struct {
	// Comma separates fields of the input and output files.
	Comma rune
	// GUID, Current and PostalCode name the identity key columns. GUID also selects the shard.
	GUID       string
	Current    string
	PostalCode string
	// Content lists the descriptive columns, in the order they are joined.
	Content []string
	// Separator joins the content columns.
	Separator string
}

// DefaultLayout matches the flat export: native-script address fields only.
func DefaultLayout(separator string) Layout {
	return Layout{
		Comma:      '¬',
		GUID:       "guid",
		Current:    "current",
		PostalCode: "postalcode",
		Content: []string{
			"housenum", "buildnum", "strucnum",
			"street_s", "street_f", "terr_s", "terr_f", "place_s", "place_f",
			"city_s", "city_f", "muni_s", "muni_f", "munr_s", "munr_f",
			"region_s", "region_f",
		},
		Separator: separator,
	}
}

// OutputHeader is the header of the merged change log.
func (l Layout) OutputHeader() []string {
	return []string{l.GUID, l.Current, l.PostalCode, "addr_prev", "addr_curr", "status"}
}

// binding holds the field positions of a layout within one input header.
type binding struct {
	guid, current, postal int
	content               []int
	sep                   string
}

// bind locates the layout columns in header. Missing columns are a structural violation.
func (l Layout) bind(header []string) (*binding, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		// A byte order mark can precede the first column
		index[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := index[name]
		if !ok {
			missing = append(missing, name)
		}
		return i
	}

	b := &binding{
		guid:    lookup(l.GUID),
		current: lookup(l.Current),
		postal:  lookup(l.PostalCode),
		content: make([]int, len(l.Content)),
		sep:     l.Separator,
	}
	for i, c := range l.Content {
		b.content[i] = lookup(c)
	}

	if len(missing) > 0 {
		return nil, faults.Structural("changelog_header", "input lacks columns %v", missing)
	}
	return b, nil
}

// row extracts the identity key and content string of a record.
func (b *binding) row(rec []string) Row {
	parts := make([]string, len(b.content))
	for i, idx := range b.content {
		parts[i] = rec[idx]
	}
	return Row{
		Key: Key{
			GUID:       rec[b.guid],
			Current:    rec[b.current],
			PostalCode: rec[b.postal],
		},
		Content: strings.Join(parts, b.sep),
	}
}
