package registry

import (
	"fmt"

	"gar-builder/core/faults"
	"gar-builder/core/utils"
	"gar-builder/feature/registry/models"

	"github.com/google/uuid"
)

// Attrs holds the raw attribute values of one registry XML element.
type Attrs map[string]string

// CastHouse converts raw HOUSE attributes into a House.
func CastHouse(a Attrs) (models.House, error) {
	id, err := requiredID(a, "house")
	if err != nil {
		return models.House{}, err
	}

	guid := a["OBJECTGUID"]
	if err := validateGUID(guid); err != nil {
		return models.House{}, faults.Structural("house_guid", "house %d: %v", id, err)
	}

	h := models.House{
		ObjectID: id,
		GUID:     guid,
		HouseNum: a["HOUSENUM"],
		AddNum1:  a["ADDNUM1"],
		AddNum2:  a["ADDNUM2"],
	}

	ints := []struct {
		attr string
		dst  *int
	}{
		{"HOUSETYPE", &h.HouseType},
		{"ADDTYPE1", &h.AddType1},
		{"ADDTYPE2", &h.AddType2},
		{"ISACTIVE", &h.IsActive},
	}
	for _, f := range ints {
		if *f.dst, err = utils.ToInt(a[f.attr], 0); err != nil {
			return models.House{}, castError("house", id, f.attr, err)
		}
	}

	return h, nil
}

// CastParam converts raw PARAM attributes into a HouseParam.
func CastParam(a Attrs) (models.HouseParam, error) {
	id, err := requiredID(a, "house param")
	if err != nil {
		return models.HouseParam{}, err
	}

	p := models.HouseParam{ObjectID: id, Value: a["VALUE"]}
	if p.ChangeIDEnd, err = utils.ToInt64(a["CHANGEIDEND"], 0); err != nil {
		return models.HouseParam{}, castError("house param", id, "CHANGEIDEND", err)
	}
	if p.TypeID, err = utils.ToInt(a["TYPEID"], 0); err != nil {
		return models.HouseParam{}, castError("house param", id, "TYPEID", err)
	}
	return p, nil
}

// CastObject converts raw OBJECT attributes into an AddressObject.
func CastObject(a Attrs) (models.AddressObject, error) {
	id, err := requiredID(a, "address object")
	if err != nil {
		return models.AddressObject{}, err
	}

	o := models.AddressObject{ObjectID: id, Name: a["NAME"], TypeName: a["TYPENAME"]}
	if o.Level, err = utils.ToInt(a["LEVEL"], 0); err != nil {
		return models.AddressObject{}, castError("address object", id, "LEVEL", err)
	}
	if o.IsActive, err = utils.ToInt(a["ISACTIVE"], 0); err != nil {
		return models.AddressObject{}, castError("address object", id, "ISACTIVE", err)
	}
	return o, nil
}

// CastLink converts raw hierarchy ITEM attributes into a HierarchyLink.
// An absent parent becomes 0, which never matches an address object.
func CastLink(a Attrs) (models.HierarchyLink, error) {
	id, err := requiredID(a, "hierarchy item")
	if err != nil {
		return models.HierarchyLink{}, err
	}

	l := models.HierarchyLink{ObjectID: id}
	if l.ParentObjID, err = utils.ToInt64(a["PARENTOBJID"], 0); err != nil {
		return models.HierarchyLink{}, castError("hierarchy item", id, "PARENTOBJID", err)
	}
	if l.IsActive, err = utils.ToInt(a["ISACTIVE"], 0); err != nil {
		return models.HierarchyLink{}, castError("hierarchy item", id, "ISACTIVE", err)
	}
	return l, nil
}

func requiredID(a Attrs, kind string) (int64, error) {
	raw, ok := a["OBJECTID"]
	if !ok || raw == "" {
		return 0, faults.Structural("object_id", "%s without OBJECTID", kind)
	}
	id, err := utils.ToInt64(raw, 0)
	if err != nil {
		return 0, faults.Structural("object_id", "%s: %v", kind, err)
	}
	return id, nil
}

func validateGUID(guid string) error {
	if guid == "" {
		return fmt.Errorf("missing OBJECTGUID")
	}
	if len(guid) != models.GUIDLength {
		return fmt.Errorf("OBJECTGUID %q has length %d, want %d", guid, len(guid), models.GUIDLength)
	}
	if err := uuid.Validate(guid); err != nil {
		return fmt.Errorf("OBJECTGUID %q: %w", guid, err)
	}
	return nil
}

func castError(kind string, id int64, attr string, err error) error {
	return faults.Structural("cast", "%s %d: %s: %v", kind, id, attr, err)
}
