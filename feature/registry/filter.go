package registry

import (
	"sort"

	"gar-builder/core/faults"
	"gar-builder/feature/registry/models"
)

// DefaultHouseTypes lists the house/additional-number types kept by Filter.
// Garages, mines, boiler rooms and the like are dropped.
const DefaultHouseTypes = "0,1,2,3,5,7,8,9,10"

// FilterOptions controls which raw records survive filtering.
type FilterOptions struct {
	// HouseTypes is the allowed set for HOUSETYPE, ADDTYPE1 and ADDTYPE2.
	HouseTypes map[int]struct{}
}

// Filter keeps only the records that take part in region processing.
// It returns a StructuralViolation when address object ids or hierarchy children
// are not unique after filtering.
func Filter(ds *models.Dataset, opts FilterOptions) (*models.Dataset, error) {
	houses := FilterHouses(ds.Houses, opts.HouseTypes)
	params := FilterParams(ds.Params, houses)

	objects, err := FilterObjects(ds.Objects)
	if err != nil {
		return nil, err
	}

	links, err := FilterLinks(ds.Links, houses, objects)
	if err != nil {
		return nil, err
	}

	return &models.Dataset{
		Houses:  houses,
		Params:  params,
		Objects: objects,
		Links:   links,
	}, nil
}

// FilterHouses keeps active houses whose type and both additional types are allowed.
func FilterHouses(houses []models.House, types map[int]struct{}) []models.House {
	allowed := func(t int) bool {
		_, ok := types[t]
		return ok
	}

	out := make([]models.House, 0, len(houses))
	for _, h := range houses {
		if h.IsActive != 1 {
			continue
		}
		if !allowed(h.HouseType) || !allowed(h.AddType1) || !allowed(h.AddType2) {
			continue
		}
		out = append(out, h)
	}
	return out
}

// FilterParams keeps postal-code records of the given houses, ordered by
// (house, end-marker), with repeated (house, value) pairs collapsed onto the
// earliest end-marker so a current record wins over an identical historic one.
func FilterParams(params []models.HouseParam, houses []models.House) []models.HouseParam {
	known := houseIDs(houses)

	out := make([]models.HouseParam, 0, len(params))
	for _, p := range params {
		if p.TypeID != models.PostalCodeType {
			continue
		}
		if _, ok := known[p.ObjectID]; !ok {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ObjectID != out[j].ObjectID {
			return out[i].ObjectID < out[j].ObjectID
		}
		return out[i].ChangeIDEnd < out[j].ChangeIDEnd
	})

	type houseValue struct {
		id    int64
		value string
	}
	seen := make(map[houseValue]struct{}, len(out))
	deduped := out[:0]
	for _, p := range out {
		k := houseValue{p.ObjectID, p.Value}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		deduped = append(deduped, p)
	}
	return deduped
}

// FilterObjects keeps active address objects and requires their ids to be unique.
func FilterObjects(objects []models.AddressObject) ([]models.AddressObject, error) {
	out := make([]models.AddressObject, 0, len(objects))
	seen := make(map[int64]struct{}, len(objects))
	var dupes []int64

	for _, o := range objects {
		if o.IsActive != 1 {
			continue
		}
		if _, dup := seen[o.ObjectID]; dup {
			dupes = append(dupes, o.ObjectID)
			continue
		}
		seen[o.ObjectID] = struct{}{}
		out = append(out, o)
	}

	if len(dupes) > 0 {
		return nil, faults.Structural("unique_object_id", "%d duplicate active address object ids, first %d", len(dupes), dupes[0])
	}
	return out, nil
}

// FilterLinks keeps active links whose child is a known house or object and whose
// parent is a known object. When a child has several parents the link to the lowest
// parent id is kept, so every child ends up with exactly one parent.
func FilterLinks(links []models.HierarchyLink, houses []models.House, objects []models.AddressObject) ([]models.HierarchyLink, error) {
	houseSet := houseIDs(houses)
	objectSet := make(map[int64]struct{}, len(objects))
	for _, o := range objects {
		objectSet[o.ObjectID] = struct{}{}
	}

	out := make([]models.HierarchyLink, 0, len(links))
	for _, l := range links {
		if l.IsActive != 1 {
			continue
		}
		_, isHouse := houseSet[l.ObjectID]
		_, isObject := objectSet[l.ObjectID]
		if !isHouse && !isObject {
			continue
		}
		if _, ok := objectSet[l.ParentObjID]; !ok {
			continue
		}
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ObjectID != out[j].ObjectID {
			return out[i].ObjectID < out[j].ObjectID
		}
		return out[i].ParentObjID < out[j].ParentObjID
	})

	deduped := out[:0]
	for i, l := range out {
		if i > 0 && out[i-1].ObjectID == l.ObjectID {
			continue
		}
		deduped = append(deduped, l)
	}

	if err := checkUniqueChildren(deduped); err != nil {
		return nil, err
	}
	return deduped, nil
}

func checkUniqueChildren(links []models.HierarchyLink) error {
	seen := make(map[int64]struct{}, len(links))
	for _, l := range links {
		if _, dup := seen[l.ObjectID]; dup {
			return faults.Structural("unique_hierarchy_child", "object %d has more than one parent link", l.ObjectID)
		}
		seen[l.ObjectID] = struct{}{}
	}
	return nil
}

func houseIDs(houses []models.House) map[int64]struct{} {
	set := make(map[int64]struct{}, len(houses))
	for _, h := range houses {
		set[h.ObjectID] = struct{}{}
	}
	return set
}
