package models

// Level is one fixed output level of the flat address record.
type Level int

// Output levels ordered from the deepest (street) to the root (region).
const (
	LevelStreet Level = iota
	LevelTerritory
	LevelSettlement
	LevelCity
	LevelMunicipality
	LevelMunicipalRegion
	LevelAdminRegion
	LevelRegion
)

// LevelCount is the number of fixed output levels.
const LevelCount = 8

var levelInfo = [LevelCount]struct {
	column   string
	rank     int
	reserved bool
}{
	LevelStreet:          {"street", 8, false},
	LevelTerritory:       {"terr", 7, false},
	LevelSettlement:      {"place", 6, false},
	LevelCity:            {"city", 5, false},
	LevelMunicipality:    {"muni", 4, false},
	LevelMunicipalRegion: {"munr", 3, false},
	LevelAdminRegion:     {"admr", 2, true},
	LevelRegion:          {"region", 1, false},
}

// Column is the column prefix of the level in flat files (e.g. "street").
func (l Level) Column() string {
	return levelInfo[l].column
}

// Rank is the AddressObject rank projected into this level.
func (l Level) Rank() int {
	return levelInfo[l].rank
}

// Reserved levels are always blank and are not written to flat files.
func (l Level) Reserved() bool {
	return levelInfo[l].reserved
}

// Levels returns all levels from street to region.
func Levels() []Level {
	out := make([]Level, LevelCount)
	for i := range out {
		out[i] = Level(i)
	}
	return out
}

// LevelForRank maps an AddressObject rank to its output level.
func LevelForRank(rank int) (Level, bool) {
	for i, info := range levelInfo {
		if info.rank == rank {
			return Level(i), true
		}
	}
	return 0, false
}

// LevelName holds the short (type) and full (name) form of one level.
type LevelName struct {
	Short string
	Full  string
}

// ResolvedAddress is one house row with its postal code and projected ancestors.
// A house appears once per postal-history record.
type ResolvedAddress struct {
	HouseID    int64
	GUID       string
	Current    bool
	PostalCode string
	HouseNum   string
	BuildNum   string
	StrucNum   string
	Levels     [LevelCount]LevelName
}
