package filestore

import (
	"io"
	"time"
)

// ObjectInfo describes a single stored object.
type ObjectInfo struct {
	// Key is the full object path within the bucket, e.g. "fixtures/users.yaml".
	Key string

	// Size is the byte size of the object. -1 if unknown.
	Size int64

	ContentType  string
	ETag         string
	LastModified time.Time

	// IsDir is true for a virtual directory (common prefix).
	IsDir bool
}

// Object is a streaming handle to an object's content.
// The caller MUST call Close() after reading.
type Object interface {
	io.ReadCloser

	Info() *ObjectInfo
}

// ListOptions controls ListObjects.
type ListOptions struct {
	// Prefix restricts results to keys starting with this string.
	Prefix string

	// Recursive lists every object under Prefix. When false, virtual
	// directories are returned as IsDir entries instead of being walked.
	Recursive bool

	// Limit caps the number of results. 0 means no cap.
	Limit int
}
