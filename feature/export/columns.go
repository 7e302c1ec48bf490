package export

import "gar-builder/feature/registry/models"

// Separator is the field separator of every flat file.
const Separator = '¬'

// Fixed column names.
const (
	ColID            = "id"
	ColGUID          = "guid"
	ColCurrent       = "current"
	ColPostalCode    = "postalcode"
	ColHouseNum      = "housenum"
	ColBuildNum      = "buildnum"
	ColStrucNum      = "strucnum"
	ColRegionISOCode = "region_iso_code"
)

var columns = buildColumns()

func buildColumns() []string {
	cols := []string{
		ColID, ColGUID, ColCurrent, ColPostalCode,
		ColHouseNum, ColBuildNum, ColStrucNum,
		ColHouseNum + "_en", ColBuildNum + "_en", ColStrucNum + "_en",
	}
	for _, lvl := range models.Levels() {
		if lvl.Reserved() {
			continue
		}
		c := lvl.Column()
		cols = append(cols, c+"_s", c+"_f", c+"_s_en", c+"_f_en")
	}
	return append(cols, ColRegionISOCode)
}

// Columns returns the column names of the flat format, in file order.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}
