package artifacts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"gar-builder/core/faults"
	"gar-builder/core/storage"
	"gar-builder/core/utils"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Object key prefixes.
const (
	PrefixRegions    = "regions/"
	PrefixExports    = "exports/"
	PrefixChangelogs = "changelogs/"
)

const contentTypeCSV = "text/csv; charset=utf-8"

// RegionObject is the key of a region file.
func RegionObject(region string) string {
	return PrefixRegions + region + ".csv"
}

// ExportObject is the key of a merged export named after its local file.
func ExportObject(localPath string) string {
	return PrefixExports + path.Base(toSlash(localPath))
}

// ChangelogObject is the key of a change log named after its local file.
func ChangelogObject(localPath string) string {
	return PrefixChangelogs + path.Base(toSlash(localPath))
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// Artifact describes one stored object.
type Artifact struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Service moves pipeline artifacts between the local disk and object storage.
type Service struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewService creates a new artifacts service.
func NewService(client storage.Client, bucket string, logger *zap.Logger) *Service {
	return &Service{client: client, bucket: bucket, logger: logger}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Service) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return faults.Unavailable("bucket "+s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("Bucket created", zap.String("bucket", s.bucket))
	return nil
}

// Upload stores the local file under object and returns its size.
func (s *Service) Upload(ctx context.Context, localPath, object string) (int64, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return 0, faults.Unavailable(localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, faults.Unavailable(localPath, err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, object, f, info.Size(), minio.PutObjectOptions{ContentType: contentTypeCSV})
	if err != nil {
		return 0, fmt.Errorf("failed to upload %s: %w", object, err)
	}

	s.logger.Info("Artifact uploaded",
		zap.String("object", object),
		zap.Int64("bytes", info.Size()),
	)
	return info.Size(), nil
}

// PublishRegion uploads a finished region file.
func (s *Service) PublishRegion(ctx context.Context, region, localPath string) error {
	_, err := s.Upload(ctx, localPath, RegionObject(region))
	return err
}

// Download copies object to localPath. The local file only appears once complete.
func (s *Service) Download(ctx context.Context, object, localPath string) (int64, error) {
	rc, err := s.client.GetObject(ctx, s.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return 0, faults.Unavailable("object "+object, err)
	}
	defer rc.Close()

	var n int64
	err = utils.WriteAtomic(localPath, func(w io.Writer) error {
		var err error
		n, err = io.Copy(w, rc)
		return err
	})
	if err != nil {
		return 0, faults.Unavailable("object "+object, err)
	}

	s.logger.Info("Artifact downloaded",
		zap.String("object", object),
		zap.String("path", localPath),
		zap.Int64("bytes", n),
	)
	return n, nil
}

// List returns the artifacts under prefix, recursively.
func (s *Service) List(ctx context.Context, prefix string) ([]Artifact, error) {
	out := []Artifact{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, faults.Unavailable("bucket "+s.bucket, obj.Err)
		}
		out = append(out, Artifact{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return out, nil
}

// Open returns a reader over object together with its metadata.
func (s *Service) Open(ctx context.Context, object string) (io.ReadCloser, minio.ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, object, minio.StatObjectOptions{})
	if err != nil {
		return nil, minio.ObjectInfo{}, err
	}
	rc, err := s.client.GetObject(ctx, s.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, minio.ObjectInfo{}, err
	}
	return rc, info, nil
}
