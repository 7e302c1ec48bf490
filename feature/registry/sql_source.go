package registry

import (
	"context"
	"fmt"
	"sort"

	"gar-builder/core/database"
	"gar-builder/core/faults"
	"gar-builder/feature/registry/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const insertBatchSize = 1000

// requiredColumns lists the columns each Entity Store table must expose.
var requiredColumns = map[string][]string{
	models.House{}.TableName():         {"region", "object_id", "object_guid", "house_num", "house_type", "add_num1", "add_type1", "add_num2", "add_type2", "is_active"},
	models.HouseParam{}.TableName():    {"region", "object_id", "change_id_end", "type_id", "value"},
	models.AddressObject{}.TableName(): {"region", "object_id", "name", "type_name", "level", "is_active"},
	models.HierarchyLink{}.TableName(): {"region", "object_id", "parent_obj_id", "is_active"},
}

// SQLSource is an Entity Store backed by a relational database.
type SQLSource struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLSource creates a source over db.
func NewSQLSource(db *gorm.DB, logger *zap.Logger) *SQLSource {
	return &SQLSource{db: db, logger: logger}
}

// Migrate creates or updates the Entity Store tables.
func (s *SQLSource) Migrate() error {
	if err := s.db.AutoMigrate(&models.House{}, &models.HouseParam{}, &models.AddressObject{}, &models.HierarchyLink{}); err != nil {
		return fmt.Errorf("failed to migrate entity store: %w", err)
	}
	return nil
}

// CheckSchema verifies that every table exposes the columns Load reads.
func (s *SQLSource) CheckSchema() error {
	tables := make([]string, 0, len(requiredColumns))
	for t := range requiredColumns {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	for _, table := range tables {
		missing, err := database.MissingColumns(s.db, table, requiredColumns[table])
		if err != nil {
			return faults.Unavailable("table "+table, err)
		}
		if len(missing) > 0 {
			return faults.Unavailable(fmt.Sprintf("table %s (missing columns %v)", table, missing), nil)
		}
	}
	return nil
}

// Regions returns the distinct region codes present in the houses table.
func (s *SQLSource) Regions(ctx context.Context) ([]string, error) {
	var regions []string
	err := s.db.WithContext(ctx).
		Model(&models.House{}).
		Distinct("region").
		Order("region").
		Pluck("region", &regions).Error
	if err != nil {
		return nil, faults.Unavailable("region list", err)
	}
	return regions, nil
}

// Load reads the four record sets of a region.
func (s *SQLSource) Load(ctx context.Context, region string) (*models.Dataset, error) {
	db := s.db.WithContext(ctx)
	ds := &models.Dataset{}

	queries := []struct {
		name string
		dst  any
	}{
		{"houses", &ds.Houses},
		{"house params", &ds.Params},
		{"address objects", &ds.Objects},
		{"hierarchy", &ds.Links},
	}
	for _, q := range queries {
		if err := db.Where("region = ?", region).Order("object_id").Find(q.dst).Error; err != nil {
			return nil, faults.Unavailable(fmt.Sprintf("region %s %s", region, q.name), err)
		}
	}

	s.logger.Debug("Region loaded from database",
		zap.String("region", region),
		zap.Int("houses", len(ds.Houses)),
		zap.Int("params", len(ds.Params)),
	)
	return ds, nil
}

// Save replaces all records of a region with ds in one transaction.
func (s *SQLSource) Save(ctx context.Context, region string, ds *models.Dataset) error {
	stamp(region, ds)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.House{}, &models.HouseParam{}, &models.AddressObject{}, &models.HierarchyLink{}} {
			if err := tx.Where("region = ?", region).Delete(m).Error; err != nil {
				return err
			}
		}
		if len(ds.Houses) > 0 {
			if err := tx.CreateInBatches(ds.Houses, insertBatchSize).Error; err != nil {
				return err
			}
		}
		if len(ds.Params) > 0 {
			if err := tx.CreateInBatches(ds.Params, insertBatchSize).Error; err != nil {
				return err
			}
		}
		if len(ds.Objects) > 0 {
			if err := tx.CreateInBatches(ds.Objects, insertBatchSize).Error; err != nil {
				return err
			}
		}
		if len(ds.Links) > 0 {
			if err := tx.CreateInBatches(ds.Links, insertBatchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save region %s: %w", region, err)
	}

	s.logger.Info("Region imported",
		zap.String("region", region),
		zap.Int("houses", len(ds.Houses)),
		zap.Int("params", len(ds.Params)),
		zap.Int("objects", len(ds.Objects)),
		zap.Int("links", len(ds.Links)),
	)
	return nil
}

func stamp(region string, ds *models.Dataset) {
	for i := range ds.Houses {
		ds.Houses[i].Region = region
	}
	for i := range ds.Params {
		ds.Params[i].Region = region
	}
	for i := range ds.Objects {
		ds.Objects[i].Region = region
	}
	for i := range ds.Links {
		ds.Links[i].Region = region
	}
}
