// Package filestore defines the read-only object storage interface the seed
// loader pulls fixtures from.
//
// Providers: minio (any S3-compatible server) and local (a directory tree).
// Callers depend only on this package.
//
// Usage:
//
//	fs, err := minio.New(ctx, filestore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin"))
//	if err != nil { ... }
//	defer fs.Close()
//
//	objs, err := fs.ListObjects(ctx, "fixtures", filestore.ListOptions{Recursive: true})
package filestore

import "context"

// Store is implemented by every provider.
type Store interface {
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases held resources.
	Close() error

	// ListObjects returns the objects in bucket matching opts, sorted by key.
	ListObjects(ctx context.Context, bucket string, opts ListOptions) ([]ObjectInfo, error)

	// GetObject opens the object at key. The caller MUST close it.
	GetObject(ctx context.Context, bucket, key string) (Object, error)

	// StatObject returns the object's metadata without reading it.
	StatObject(ctx context.Context, bucket, key string) (*ObjectInfo, error)
}
