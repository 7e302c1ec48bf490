package region_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gar-builder/core/faults"
	"gar-builder/core/metrics"
	"gar-builder/core/utils"
	"gar-builder/feature/export"
	"gar-builder/feature/registry"
	"gar-builder/feature/registry/models"
	"gar-builder/feature/region"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memorySource map[string]*models.Dataset

func (s memorySource) Regions(ctx context.Context) ([]string, error) {
	return []string{"77", "78", "79"}, nil
}

func (s memorySource) Load(ctx context.Context, code string) (*models.Dataset, error) {
	ds, ok := s[code]
	if !ok {
		return nil, faults.Unavailable("region "+code, nil)
	}
	return ds, nil
}

type recordingPublisher struct {
	published map[string]string
}

func (p *recordingPublisher) PublishRegion(ctx context.Context, code, path string) error {
	p.published[code] = path
	return nil
}

func moscow() *models.Dataset {
	return &models.Dataset{
		Houses: []models.House{
			{ObjectID: 100, GUID: "0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d", HouseNum: "5", HouseType: 2, IsActive: 1},
			{ObjectID: 101, GUID: "1a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d", HouseNum: "7", HouseType: 4, IsActive: 1},
		},
		Params: []models.HouseParam{
			{ObjectID: 100, ChangeIDEnd: 0, TypeID: 5, Value: "119002"},
			{ObjectID: 100, ChangeIDEnd: 55, TypeID: 5, Value: "119001"},
		},
		Objects: []models.AddressObject{
			{ObjectID: 1, Name: "Москва", TypeName: "г", Level: 1, IsActive: 1},
			{ObjectID: 8, Name: "Арбат", TypeName: "ул", Level: 8, IsActive: 1},
		},
		Links: []models.HierarchyLink{
			{ObjectID: 100, ParentObjID: 8, IsActive: 1},
			{ObjectID: 8, ParentObjID: 1, IsActive: 1},
		},
	}
}

func newProcessor(t *testing.T, src registry.Source, m *metrics.Metrics) (*region.Processor, string) {
	t.Helper()
	types, err := utils.ParseIntSet(registry.DefaultHouseTypes)
	require.NoError(t, err)

	dir := t.TempDir()
	p := region.NewProcessor(src, export.NewDirSink(dir), registry.FilterOptions{HouseTypes: types}, zap.NewNop(), m)
	return p, dir
}

func TestProcessRegion(t *testing.T) {
	m := metrics.NewMetrics()
	p, dir := newProcessor(t, memorySource{"77": moscow()}, m)

	res, err := p.ProcessRegion(context.Background(), "77")
	require.NoError(t, err)

	assert.Equal(t, "77", res.Region)
	assert.Equal(t, 1, res.Houses, "garages are filtered out")
	assert.Equal(t, 2, res.Rows, "one row per postal record")
	assert.Equal(t, filepath.Join(dir, "77.csv"), res.Path)

	f, err := os.Open(res.Path)
	require.NoError(t, err)
	defer f.Close()
	r, err := export.NewReader(f)
	require.NoError(t, err)
	rec, err := r.Read()
	require.NoError(t, err)

	cols := export.Columns()
	byName := map[string]string{}
	for i, c := range cols {
		byName[c] = rec[i]
	}
	assert.Equal(t, "119002", byName["postalcode"])
	assert.Equal(t, "1", byName["current"])
	assert.Equal(t, "Арбат", byName["street_f"])
	assert.Equal(t, "Moskva", byName["region_f_en"])
	assert.Equal(t, "RU-MOW", byName["region_iso_code"])

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HousesLoadedTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.RowsResolvedTotal))
}

func TestProcessAll_RegionIsolation(t *testing.T) {
	broken := moscow()
	broken.Objects = append(broken.Objects, models.AddressObject{ObjectID: 8, Name: "Дубль", Level: 8, IsActive: 1})

	src := memorySource{"77": moscow(), "78": broken}
	m := metrics.NewMetrics()
	p, _ := newProcessor(t, src, m)
	pub := &recordingPublisher{published: map[string]string{}}
	p.WithPublisher(pub)

	report, err := p.ProcessAll(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, report.Succeeded, 1)
	assert.Equal(t, "77", report.Succeeded[0].Region)
	assert.Contains(t, pub.published, "77")

	require.Len(t, report.Failed, 2)
	assert.Equal(t, "78", report.Failed[0].Region)
	assert.True(t, faults.IsStructural(report.Failed[0].Err))
	assert.Equal(t, "79", report.Failed[1].Region)
	assert.ErrorIs(t, report.Failed[1].Err, faults.ErrSourceUnavailable)

	err = report.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "78,79")
	assert.True(t, errors.Is(err, faults.ErrStructuralViolation))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RegionsTotal.WithLabelValues("ok")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.RegionsTotal.WithLabelValues("failed")))
}

func TestProcessAll_ExplicitRegions(t *testing.T) {
	p, dir := newProcessor(t, memorySource{"77": moscow()}, nil)

	report, err := p.ProcessAll(context.Background(), []string{"77"})
	require.NoError(t, err)
	assert.NoError(t, report.Err())
	assert.FileExists(t, filepath.Join(dir, "77.csv"))
}

func TestProcessAll_Cancelled(t *testing.T) {
	p, _ := newProcessor(t, memorySource{"77": moscow()}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ProcessAll(ctx, []string{"77"})
	assert.ErrorIs(t, err, context.Canceled)
}
