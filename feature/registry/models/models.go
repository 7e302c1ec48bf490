package models

// PostalCodeType is the house parameter type id that carries postal codes.
const PostalCodeType = 5

// GUIDLength is the fixed length of an object GUID in its canonical text form.
const GUIDLength = 36

// House is a registry house (AS_HOUSES / HOUSE element).
type House struct {
	Region    string `gorm:"column:region;size:8;index"`
	ObjectID  int64  `gorm:"column:object_id;index"`
	GUID      string `gorm:"column:object_guid;size:36"`
	HouseNum  string `gorm:"column:house_num"`
	HouseType int    `gorm:"column:house_type"`
	AddNum1   string `gorm:"column:add_num1"`
	AddType1  int    `gorm:"column:add_type1"`
	AddNum2   string `gorm:"column:add_num2"`
	AddType2  int    `gorm:"column:add_type2"`
	IsActive  int    `gorm:"column:is_active"`
}

// TableName overrides the table name for houses.
func (House) TableName() string {
	return "gar_houses"
}

// HouseParam is one postal-history record (AS_HOUSES_PARAMS / PARAM element).
// ChangeIDEnd is 0 for the record currently in effect.
type HouseParam struct {
	Region      string `gorm:"column:region;size:8;index"`
	ObjectID    int64  `gorm:"column:object_id;index"`
	ChangeIDEnd int64  `gorm:"column:change_id_end"`
	TypeID      int    `gorm:"column:type_id"`
	Value       string `gorm:"column:value"`
}

// TableName overrides the table name for house parameters.
func (HouseParam) TableName() string {
	return "gar_house_params"
}

// IsCurrent reports whether the record is the one currently in effect.
func (p HouseParam) IsCurrent() bool {
	return p.ChangeIDEnd == 0
}

// AddressObject is a named node of the administrative/municipal hierarchy.
// Level is its rank: 1 is the region, 8 the street.
type AddressObject struct {
	Region   string `gorm:"column:region;size:8;index"`
	ObjectID int64  `gorm:"column:object_id;index"`
	Name     string `gorm:"column:name"`
	TypeName string `gorm:"column:type_name"`
	Level    int    `gorm:"column:level"`
	IsActive int    `gorm:"column:is_active"`
}

// TableName overrides the table name for address objects.
func (AddressObject) TableName() string {
	return "gar_addr_objects"
}

// HierarchyLink is a child -> parent edge of the municipal hierarchy.
type HierarchyLink struct {
	Region      string `gorm:"column:region;size:8;index"`
	ObjectID    int64  `gorm:"column:object_id;index"`
	ParentObjID int64  `gorm:"column:parent_obj_id"`
	IsActive    int    `gorm:"column:is_active"`
}

// TableName overrides the table name for hierarchy links.
func (HierarchyLink) TableName() string {
	return "gar_hierarchy"
}

// Dataset bundles the four record sets of one region.
type Dataset struct {
	Houses  []House
	Params  []HouseParam
	Objects []AddressObject
	Links   []HierarchyLink
}
