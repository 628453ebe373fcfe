// Package local serves a directory tree as a filestore.Store: each
// subdirectory of the root is a bucket and file paths below it are keys.
// It lets fixtures be seeded without an object store.
package local

import (
	"context"
	"errors"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/koustreak/schemastore/internal/errs"
	"github.com/koustreak/schemastore/internal/filestore"
)

// Driver is a directory-backed filestore.Store.
type Driver struct {
	root fs.FS
}

// New opens root. The directory must exist.
func New(root string) (*Driver, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, mapError(err, "failed to open fixture root")
	}
	if !info.IsDir() {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "fixture root %s is not a directory", root)
	}
	return &Driver{root: os.DirFS(root)}, nil
}

func (d *Driver) Ping(context.Context) error {
	if _, err := fs.Stat(d.root, "."); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

func (d *Driver) Close() error { return nil }

func (d *Driver) ListObjects(ctx context.Context, bucket string, opts filestore.ListOptions) ([]filestore.ObjectInfo, error) {
	if !fs.ValidPath(bucket) || bucket == "." {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "invalid bucket name %q", bucket)
	}
	if _, err := fs.Stat(d.root, bucket); err != nil {
		return nil, mapError(err, "failed to list objects")
	}

	results := make([]filestore.ObjectInfo, 0)
	seenDirs := make(map[string]bool)

	err := fs.WalkDir(d.root, bucket, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			return nil
		}

		key := strings.TrimPrefix(p, bucket+"/")
		if !strings.HasPrefix(key, opts.Prefix) {
			return nil
		}

		if !opts.Recursive {
			rest := key[len(opts.Prefix):]
			if i := strings.Index(rest, "/"); i >= 0 {
				dir := opts.Prefix + rest[:i+1]
				if !seenDirs[dir] {
					seenDirs[dir] = true
					results = append(results, filestore.ObjectInfo{Key: dir, Size: -1, IsDir: true})
				}
				return nil
			}
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}
		results = append(results, objectInfo(key, info))
		return nil
	})
	if err != nil {
		return nil, mapError(err, "failed to list objects")
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Key < results[j].Key })
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

func (d *Driver) GetObject(_ context.Context, bucket, key string) (filestore.Object, error) {
	name, err := objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	f, err := d.root.Open(name)
	if err != nil {
		return nil, mapError(err, "failed to get object")
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, mapError(err, "failed to stat object after get")
	}
	if info.IsDir() {
		f.Close()
		return nil, errs.Newf(errs.ErrKindNotFound, "object %s is a directory", key)
	}
	oi := objectInfo(key, info)
	return &object{File: f, info: &oi}, nil
}

func (d *Driver) StatObject(_ context.Context, bucket, key string) (*filestore.ObjectInfo, error) {
	name, err := objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	info, err := fs.Stat(d.root, name)
	if err != nil {
		return nil, mapError(err, "failed to stat object")
	}
	if info.IsDir() {
		return nil, errs.Newf(errs.ErrKindNotFound, "object %s is a directory", key)
	}
	oi := objectInfo(key, info)
	return &oi, nil
}

func objectPath(bucket, key string) (string, error) {
	name := path.Join(bucket, key)
	if !fs.ValidPath(bucket) || !fs.ValidPath(key) || !fs.ValidPath(name) {
		return "", errs.Newf(errs.ErrKindInvalidInput, "invalid object path %s/%s", bucket, key)
	}
	return name, nil
}

func objectInfo(key string, info fs.FileInfo) filestore.ObjectInfo {
	return filestore.ObjectInfo{
		Key:          key,
		Size:         info.Size(),
		ContentType:  mime.TypeByExtension(filepath.Ext(key)),
		LastModified: info.ModTime(),
	}
}

func mapError(err error, msg string) *errs.Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	case errors.Is(err, fs.ErrNotExist):
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	case errors.Is(err, fs.ErrPermission):
		return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
	case errors.Is(err, fs.ErrInvalid):
		return errs.Wrap(errs.ErrKindInvalidInput, msg, err)
	default:
		return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
	}
}

type object struct {
	fs.File
	info *filestore.ObjectInfo
}

func (o *object) Info() *filestore.ObjectInfo { return o.info }
