package export

import (
	"strconv"

	"gar-builder/core/utils"
	"gar-builder/feature/registry/models"
	"gar-builder/feature/translit"
)

// Encoder renders resolved addresses of one region as flat-file records.
// Row ids start at 0 for every encoder.
type Encoder struct {
	iso   string
	next  int
	latin map[string]string
}

// NewEncoder creates an encoder for region.
func NewEncoder(region string) *Encoder {
	return &Encoder{
		iso:   ISOCode(region),
		latin: make(map[string]string),
	}
}

// Encode renders a and assigns it the next row id.
func (e *Encoder) Encode(a models.ResolvedAddress) []string {
	rec := make([]string, 0, len(columns))
	rec = append(rec,
		strconv.Itoa(e.next),
		a.GUID,
		utils.BoolFlag(a.Current),
		a.PostalCode,
		a.HouseNum,
		a.BuildNum,
		a.StrucNum,
		e.translit(a.HouseNum),
		e.translit(a.BuildNum),
		e.translit(a.StrucNum),
	)
	for _, lvl := range models.Levels() {
		if lvl.Reserved() {
			continue
		}
		name := a.Levels[lvl]
		rec = append(rec, name.Short, name.Full, e.translit(name.Short), e.translit(name.Full))
	}
	e.next++
	return append(rec, e.iso)
}

// Level names repeat across thousands of rows; each distinct value is transliterated once.
func (e *Encoder) translit(s string) string {
	if s == "" {
		return ""
	}
	if lat, ok := e.latin[s]; ok {
		return lat
	}
	lat := translit.Latin(s)
	e.latin[s] = lat
	return lat
}
