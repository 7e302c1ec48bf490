package houselist

import (
	"sort"

	"gar-builder/core/faults"
	"gar-builder/feature/registry/models"
)

// Row is one (house, postal-history record) pair of the base row set.
type Row struct {
	HouseID    int64
	GUID       string
	Current    bool
	PostalCode string
	HouseNum   string
	BuildNum   string
	StrucNum   string
}

type recordKey struct {
	house  int64
	end    int64
	typeID int
}

// Normalize guarantees exactly one current postal record per house.
// Houses without a current record get an empty one. Records repeating a
// (house, end-marker, type) combination are dropped, keeping the first.
// More than one current record for a house is a structural violation.
func Normalize(houses []models.House, params []models.HouseParam) ([]models.HouseParam, error) {
	out := make([]models.HouseParam, 0, len(params)+len(houses))
	seen := make(map[recordKey]struct{}, len(params)+len(houses))
	add := func(p models.HouseParam) {
		k := recordKey{p.ObjectID, p.ChangeIDEnd, p.TypeID}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}

	for _, p := range params {
		add(p)
	}
	// Real records were added first, so a dummy only lands where no current record exists.
	for _, h := range houses {
		add(models.HouseParam{
			Region:   h.Region,
			ObjectID: h.ObjectID,
			TypeID:   models.PostalCodeType,
		})
	}

	current := make(map[int64]int, len(houses))
	for _, p := range out {
		if p.IsCurrent() {
			current[p.ObjectID]++
		}
	}
	for _, h := range houses {
		if n := current[h.ObjectID]; n > 1 {
			return nil, faults.Structural("single_current_postal", "house %d has %d current postal records", h.ObjectID, n)
		}
	}
	return out, nil
}

// Build normalizes the postal history and joins it onto the houses.
// Rows are ordered by house id, then current before historic, then end-marker.
func Build(houses []models.House, params []models.HouseParam) ([]Row, error) {
	normalized, err := Normalize(houses, params)
	if err != nil {
		return nil, err
	}

	byHouse := make(map[int64][]models.HouseParam, len(houses))
	for _, p := range normalized {
		byHouse[p.ObjectID] = append(byHouse[p.ObjectID], p)
	}

	ordered := make([]models.House, len(houses))
	copy(ordered, houses)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ObjectID < ordered[j].ObjectID })

	rows := make([]Row, 0, len(normalized))
	for _, h := range ordered {
		records := byHouse[h.ObjectID]
		// A house listed twice must not emit its history twice
		delete(byHouse, h.ObjectID)

		sort.SliceStable(records, func(i, j int) bool {
			return records[i].ChangeIDEnd < records[j].ChangeIDEnd
		})
		for _, p := range records {
			rows = append(rows, Row{
				HouseID:    h.ObjectID,
				GUID:       h.GUID,
				Current:    p.IsCurrent(),
				PostalCode: p.Value,
				HouseNum:   h.HouseNum,
				BuildNum:   h.AddNum1,
				StrucNum:   h.AddNum2,
			})
		}
	}
	return rows, nil
}
