package registry_test

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"gar-builder/core/faults"
	"gar-builder/feature/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeArchive(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gar_xml.zip")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func regionArchive() map[string]string {
	return map[string]string{
		"AS_ADDR_OBJ_TYPES_20240101.XML": `<?xml version="1.0" encoding="utf-8"?><ADDRESSOBJECTTYPES/>`,
		"77/AS_HOUSES_20240101_abc.XML": `<?xml version="1.0" encoding="utf-8"?>
<HOUSES><HOUSE OBJECTID="100" OBJECTGUID="` + testGUID + `" HOUSENUM="5" HOUSETYPE="2" ISACTIVE="1"/></HOUSES>`,
		"77/AS_HOUSES_PARAMS_20240101_abc.XML": `<?xml version="1.0" encoding="utf-8"?>
<PARAMS>
<PARAM OBJECTID="100" CHANGEIDEND="0" TYPEID="5" VALUE="101000"/>
<PARAM OBJECTID="100" CHANGEIDEND="0" TYPEID="6" VALUE="45286575000"/>
</PARAMS>`,
		"77/AS_ADDR_OBJ_20240101_abc.XML": `<?xml version="1.0" encoding="utf-8"?>
<ADDRESSOBJECTS><OBJECT OBJECTID="1" NAME="Москва" TYPENAME="г" LEVEL="1" ISACTIVE="1"/></ADDRESSOBJECTS>`,
		"77/AS_ADDR_OBJ_PARAMS_20240101_abc.XML":   `<?xml version="1.0" encoding="utf-8"?><PARAMS/>`,
		"77/AS_ADDR_OBJ_DIVISION_20240101_abc.XML": `<?xml version="1.0" encoding="utf-8"?><ITEMS/>`,
		"77/AS_MUN_HIERARCHY_20240101_abc.XML": `<?xml version="1.0" encoding="utf-8"?>
<ITEMS><ITEM OBJECTID="100" PARENTOBJID="1" ISACTIVE="1"/></ITEMS>`,
		"78/AS_HOUSES_20240101_abc.XML": `<HOUSES/>`,
		"AS/readme.txt":                 "not a region",
	}
}

func TestZipSource_Regions(t *testing.T) {
	src := registry.NewZipSource(writeArchive(t, regionArchive()), zap.NewNop())

	regions, err := src.Regions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"77", "78"}, regions)
}

func TestZipSource_Load(t *testing.T) {
	src := registry.NewZipSource(writeArchive(t, regionArchive()), zap.NewNop())

	ds, err := src.Load(context.Background(), "77")
	require.NoError(t, err)

	require.Len(t, ds.Houses, 1)
	assert.Equal(t, "77", ds.Houses[0].Region)
	assert.Equal(t, testGUID, ds.Houses[0].GUID)

	require.Len(t, ds.Params, 1, "only postal codes are kept")
	assert.Equal(t, "101000", ds.Params[0].Value)

	require.Len(t, ds.Objects, 1)
	assert.Equal(t, "Москва", ds.Objects[0].Name)

	require.Len(t, ds.Links, 1)
	assert.Equal(t, int64(1), ds.Links[0].ParentObjID)
}

func TestZipSource_Unavailable(t *testing.T) {
	src := registry.NewZipSource(writeArchive(t, regionArchive()), zap.NewNop())

	_, err := src.Load(context.Background(), "78")
	assert.ErrorIs(t, err, faults.ErrSourceUnavailable)

	missing := registry.NewZipSource(filepath.Join(t.TempDir(), "absent.zip"), zap.NewNop())
	_, err = missing.Regions(context.Background())
	assert.ErrorIs(t, err, faults.ErrSourceUnavailable)
}

func TestZipSource_BadRecord(t *testing.T) {
	files := regionArchive()
	files["77/AS_HOUSES_20240101_abc.XML"] = `<HOUSES><HOUSE OBJECTID="100" OBJECTGUID="short"/></HOUSES>`
	src := registry.NewZipSource(writeArchive(t, files), zap.NewNop())

	_, err := src.Load(context.Background(), "77")
	assert.True(t, faults.IsStructural(err))
}
