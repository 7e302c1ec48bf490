// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so that region files, merged exports and change logs can
// be published to AWS S3 or a self-hosted MinIO instance, and so that the change log
// command can fetch its two input snapshots from the same bucket.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easy to mock
// storage interactions in unit tests (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage
