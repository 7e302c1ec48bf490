package artifacts_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gar-builder/core/faults"
	"gar-builder/core/storage/mocks"
	"gar-builder/feature/artifacts"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestObjectKeys(t *testing.T) {
	assert.Equal(t, "regions/77.csv", artifacts.RegionObject("77"))
	assert.Equal(t, "exports/gar.csv", artifacts.ExportObject("data/out/gar.csv"))
	assert.Equal(t, "changelogs/a_b_change_log.csv", artifacts.ChangelogObject("/tmp/a_b_change_log.csv"))
}

func TestEnsureBucket(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "gar").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "gar", mock.Anything).Return(nil)

	svc := artifacts.NewService(client, "gar", zap.NewNop())
	require.NoError(t, svc.EnsureBucket(t.Context()))
	client.AssertExpectations(t)

	failing := new(mocks.Client)
	failing.On("BucketExists", mock.Anything, "gar").Return(false, errors.New("connection refused"))
	err := artifacts.NewService(failing, "gar", zap.NewNop()).EnsureBucket(t.Context())
	assert.ErrorIs(t, err, faults.ErrSourceUnavailable)
}

func TestUploadAndPublish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "77.csv")
	require.NoError(t, os.WriteFile(path, []byte("id¬guid\n"), 0o644))

	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, "gar", "regions/77.csv", mock.Anything, int64(len("id¬guid\n")), mock.Anything).
		Return(minio.UploadInfo{}, nil)

	svc := artifacts.NewService(client, "gar", zap.NewNop())
	require.NoError(t, svc.PublishRegion(t.Context(), "77", path))
	client.AssertExpectations(t)

	_, err := svc.Upload(t.Context(), filepath.Join(t.TempDir(), "missing.csv"), "exports/x.csv")
	assert.ErrorIs(t, err, faults.ErrSourceUnavailable)
}

func TestDownload(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "gar", "exports/old.csv", mock.Anything).
		Return(io.NopCloser(strings.NewReader("payload")), nil)
	client.On("GetObject", mock.Anything, "gar", "exports/absent.csv", mock.Anything).
		Return(nil, errors.New("NoSuchKey"))

	svc := artifacts.NewService(client, "gar", zap.NewNop())
	dest := filepath.Join(t.TempDir(), "in", "old.csv")

	n, err := svc.Download(t.Context(), "exports/old.csv", dest)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = svc.Download(t.Context(), "exports/absent.csv", filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorIs(t, err, faults.ErrSourceUnavailable)
}

func listing(items ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(items))
	for _, it := range items {
		ch <- it
	}
	close(ch)
	return ch
}

func newApp(client *mocks.Client) *fiber.App {
	app := fiber.New()
	f := artifacts.NewFeature(client, "gar", zap.NewNop())
	_ = f.Load(app)
	return app
}

func TestHandleList(t *testing.T) {
	modified := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "gar", minio.ListObjectsOptions{Prefix: "regions/", Recursive: true}).
		Return(listing(
			minio.ObjectInfo{Key: "regions/77.csv", Size: 10, LastModified: modified},
			minio.ObjectInfo{Key: "regions/78.csv", Size: 20, LastModified: modified},
		))

	resp, err := newApp(client).Test(httptest.NewRequest("GET", "/artifacts?prefix=regions/", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var items []artifacts.Artifact
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 2)
	assert.Equal(t, "regions/78.csv", items[1].Key)
	assert.Equal(t, int64(20), items[1].Size)
}

func TestHandleList_Error(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "gar", mock.Anything).
		Return(listing(minio.ObjectInfo{Err: errors.New("access denied")}))

	resp, err := newApp(client).Test(httptest.NewRequest("GET", "/artifacts", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestHandleDownload(t *testing.T) {
	client := new(mocks.Client)
	client.On("StatObject", mock.Anything, "gar", "regions/77.csv", mock.Anything).
		Return(minio.ObjectInfo{Key: "regions/77.csv", Size: 7}, nil)
	client.On("GetObject", mock.Anything, "gar", "regions/77.csv", mock.Anything).
		Return(io.NopCloser(strings.NewReader("payload")), nil)
	client.On("StatObject", mock.Anything, "gar", "regions/99.csv", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

	app := newApp(client)

	resp, err := app.Test(httptest.NewRequest("GET", "/artifacts/object/regions/77.csv", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "77.csv")
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "payload", string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/artifacts/object/regions/99.csv", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/artifacts/object/", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
