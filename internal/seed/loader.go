package seed

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/koustreak/schemastore/internal/errs"
	"github.com/koustreak/schemastore/internal/filestore"
)

// DefaultMaxSize caps a single fixture object.
const DefaultMaxSize int64 = 8 << 20

// Loader reads fixtures from a bucket in a filestore.
type Loader struct {
	fs      filestore.Store
	bucket  string
	prefix  string
	limit   int
	maxSize int64
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLimit caps how many objects are listed under the prefix, counted in
// key order before non-fixture objects are skipped. 0 means no cap.
func WithLimit(n int) LoaderOption {
	return func(l *Loader) { l.limit = n }
}

// WithMaxSize rejects fixture objects larger than n bytes.
func WithMaxSize(n int64) LoaderOption {
	return func(l *Loader) { l.maxSize = n }
}

// NewLoader reads every *.yaml / *.yml object under prefix in bucket.
func NewLoader(fs filestore.Store, bucket, prefix string, opts ...LoaderOption) *Loader {
	l := &Loader{fs: fs, bucket: bucket, prefix: prefix, maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the fixtures ordered by object key, so file names like
// 01_users.yaml, 02_orders.yaml control the apply order.
func (l *Loader) Load(ctx context.Context) ([]Fixture, error) {
	if l.bucket == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "fixture bucket is empty")
	}

	objs, err := l.fs.ListObjects(ctx, l.bucket, filestore.ListOptions{
		Prefix:    l.prefix,
		Recursive: true,
		Limit:     l.limit,
	})
	if err != nil {
		return nil, err
	}

	fixtures := make([]Fixture, 0, len(objs))
	for _, obj := range objs {
		if obj.IsDir || !isFixture(obj.Key) {
			continue
		}
		fx, err := l.read(ctx, obj.Key)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, fx)
	}
	return fixtures, nil
}

// read stats the object first so an oversized fixture is rejected before
// any of it is downloaded.
func (l *Loader) read(ctx context.Context, key string) (Fixture, error) {
	info, err := l.fs.StatObject(ctx, l.bucket, key)
	if err != nil {
		return Fixture{}, err
	}
	if l.maxSize > 0 && info.Size > l.maxSize {
		return Fixture{}, errs.Newf(errs.ErrKindInvalidInput,
			"fixture %s/%s is %d bytes, over the %d byte limit", l.bucket, key, info.Size, l.maxSize)
	}

	obj, err := l.fs.GetObject(ctx, l.bucket, key)
	if err != nil {
		return Fixture{}, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return Fixture{}, errs.Wrap(errs.ErrKindConnectionFailed, fmt.Sprintf("failed to read %s", key), err)
	}
	return Parse(data, l.bucket+"/"+key)
}

func isFixture(key string) bool {
	switch strings.ToLower(path.Ext(key)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
