// Package registry implements the Entity Store: the typed, filtered record sets of one region.
//
// # Records
//
// Four record sets are read per region (see the models subpackage):
//   - Houses (AS_HOUSES, element HOUSE)
//   - House parameters (AS_HOUSES_PARAMS, element PARAM). Only type 5, the postal code, is kept.
//   - Address objects (AS_ADDR_OBJ, element OBJECT)
//   - Municipal hierarchy links (AS_MUN_HIERARCHY, element ITEM)
//
// # Casting
//
// Raw attributes are converted by the Cast* functions. OBJECTID is required and OBJECTGUID must be
// a 36 character UUID. Anything else is a structural violation.
//
// # Filtering
//
// Filter drops inactive records, unsupported house types and dangling links, and enforces the
// uniqueness of address object ids and hierarchy children.
//
// # Sources
//
//   - ZipSource streams the packaged XML archive.
//   - SQLSource reads and writes gorm tables (gar_houses, gar_house_params, gar_addr_objects, gar_hierarchy).
package registry
