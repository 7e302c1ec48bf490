package hierarchy

import (
	"gar-builder/core/faults"
	"gar-builder/core/metrics"
	"gar-builder/feature/houselist"
	"gar-builder/feature/registry/models"

	"go.uber.org/zap"
)

// MaxDepth is the longest legitimate chain of parent links from a house to its region.
const MaxDepth = 6

// RootRank is the rank of the top-level region object.
const RootRank = 1

// Ancestor is one address object collected while climbing from a house.
type Ancestor struct {
	ObjectID int64
	Name     string
	TypeName string
	Rank     int
}

// Stats summarizes one Resolve call.
type Stats struct {
	Rows int
	// Orphans counts houses with no resolvable parent at all.
	Orphans int
	// Conflicts counts houses where two ancestors shared a rank.
	Conflicts int
}

// Resolver climbs the municipal hierarchy of one region.
type Resolver struct {
	parents map[int64]int64
	objects map[int64]models.AddressObject
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewResolver indexes the links and objects of a region.
// Duplicate object ids or children with several parents are structural violations.
// m may be nil.
func NewResolver(links []models.HierarchyLink, objects []models.AddressObject, logger *zap.Logger, m *metrics.Metrics) (*Resolver, error) {
	r := &Resolver{
		parents: make(map[int64]int64, len(links)),
		objects: make(map[int64]models.AddressObject, len(objects)),
		logger:  logger,
		metrics: m,
	}

	for _, o := range objects {
		if _, dup := r.objects[o.ObjectID]; dup {
			return nil, faults.Structural("unique_object_id", "address object %d appears more than once", o.ObjectID)
		}
		r.objects[o.ObjectID] = o
	}
	for _, l := range links {
		if _, dup := r.parents[l.ObjectID]; dup {
			return nil, faults.Structural("unique_hierarchy_child", "object %d has more than one parent link", l.ObjectID)
		}
		r.parents[l.ObjectID] = l.ParentObjID
	}
	return r, nil
}

// parent returns the address object above id, if both the link and the object exist.
func (r *Resolver) parent(id int64) (models.AddressObject, bool) {
	pid, ok := r.parents[id]
	if !ok {
		return models.AddressObject{}, false
	}
	obj, ok := r.objects[pid]
	return obj, ok
}

// Climb collects the ancestors of id, nearest first, stopping at the first
// missing link or object. A chain longer than MaxDepth, or one of exactly
// MaxDepth that does not end at the root rank, is a structural violation.
func (r *Resolver) Climb(id int64) ([]Ancestor, error) {
	chain := make([]Ancestor, 0, MaxDepth)
	node := id

	for len(chain) < MaxDepth {
		obj, ok := r.parent(node)
		if !ok {
			return chain, nil
		}
		chain = append(chain, Ancestor{
			ObjectID: obj.ObjectID,
			Name:     obj.Name,
			TypeName: obj.TypeName,
			Rank:     obj.Level,
		})
		node = obj.ObjectID
	}

	if obj, ok := r.parent(node); ok {
		return nil, faults.Structural("hierarchy_depth", "object %d: parent %d beyond depth %d (cycle or malformed hierarchy)", id, obj.ObjectID, MaxDepth)
	}
	if top := chain[MaxDepth-1]; top.Rank != RootRank {
		return nil, faults.Structural("hierarchy_root", "object %d: ancestor %d at depth %d has rank %d, want %d", id, top.ObjectID, MaxDepth, top.Rank, RootRank)
	}
	return chain, nil
}

// Project maps ancestors onto the fixed output levels. The reserved level and
// ranks without a level stay blank. When two ancestors share a rank the one
// nearest to the house is kept and the others are returned as conflicts.
func Project(chain []Ancestor) (levels [models.LevelCount]models.LevelName, conflicts []Ancestor) {
	byRank := make(map[int]Ancestor, len(chain))
	for _, a := range chain {
		if _, taken := byRank[a.Rank]; taken {
			conflicts = append(conflicts, a)
			continue
		}
		byRank[a.Rank] = a
	}

	for _, lvl := range models.Levels() {
		if lvl.Reserved() {
			continue
		}
		if a, ok := byRank[lvl.Rank()]; ok {
			levels[lvl] = models.LevelName{Short: a.TypeName, Full: a.Name}
		}
	}
	return levels, conflicts
}

// Resolve attaches the projected ancestor levels to every base row.
// Any structural violation aborts the whole call.
func (r *Resolver) Resolve(rows []houselist.Row) ([]models.ResolvedAddress, Stats, error) {
	cache := make(map[int64][models.LevelCount]models.LevelName)

	var stats Stats
	out := make([]models.ResolvedAddress, 0, len(rows))

	for _, row := range rows {
		levels, ok := cache[row.HouseID]
		if !ok {
			chain, err := r.Climb(row.HouseID)
			if err != nil {
				return nil, stats, err
			}
			if len(chain) == 0 {
				stats.Orphans++
			}

			var conflicts []Ancestor
			levels, conflicts = Project(chain)
			if len(conflicts) > 0 {
				stats.Conflicts++
				r.logger.Warn("Ancestors share a rank, keeping the nearest",
					zap.Int64("house_id", row.HouseID),
					zap.Int("rank", conflicts[0].Rank),
					zap.Int64("dropped_object_id", conflicts[0].ObjectID),
					zap.Int("conflicts", len(conflicts)),
				)
			}

			cache[row.HouseID] = levels
		}

		out = append(out, models.ResolvedAddress{
			HouseID:    row.HouseID,
			GUID:       row.GUID,
			Current:    row.Current,
			PostalCode: row.PostalCode,
			HouseNum:   row.HouseNum,
			BuildNum:   row.BuildNum,
			StrucNum:   row.StrucNum,
			Levels:     levels,
		})
	}
	stats.Rows = len(out)

	if r.metrics != nil {
		r.metrics.RowsResolvedTotal.Add(float64(stats.Rows))
		r.metrics.RankConflictsTotal.Add(float64(stats.Conflicts))
	}
	return out, stats, nil
}
