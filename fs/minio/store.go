package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/jmgilman/busybox/fs/core"
	"github.com/jmgilman/busybox/fs/minio/internal/errs"
	"github.com/jmgilman/busybox/fs/minio/internal/pathutil"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"
)

// Store implements core.FS over a MinIO/S3 bucket.
//
// Directories are key prefixes. Mkdir writes a zero-byte marker object
// ("dir/") so that empty directories survive; listings hide the marker.
type Store struct {
	client             *minio.Client
	bucket             string
	prefix             string
	multipartThreshold int64
	renameConcurrency  int
	capacity           int64
}

// New creates a MinIO-backed store.
// Returns an error if the configuration is invalid or the client cannot be built.
func New(cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
	}

	s := &Store{
		client:             client,
		bucket:             cfg.Bucket,
		prefix:             pathutil.NormalizePrefix(cfg.Prefix),
		multipartThreshold: cfg.MultipartThreshold,
		renameConcurrency:  cfg.MaxRenameConcurrency,
		capacity:           cfg.Capacity,
	}
	if s.multipartThreshold <= 0 {
		s.multipartThreshold = defaultMultipartThreshold
	}
	if s.renameConcurrency <= 0 {
		s.renameConcurrency = defaultRenameConcurrency
	}
	if s.capacity == 0 {
		s.capacity = defaultCapacity
	}
	return s, nil
}

// key maps a normalized store name to its object key.
func (s *Store) key(name string) string {
	return pathutil.JoinPath(s.prefix, name)
}

// Stat returns metadata for a file or a (possibly virtual) directory.
// The root always exists.
func (s *Store) Stat(name string) (fs.FileInfo, error) {
	name = pathutil.Normalize(name)
	ctx := context.Background()
	key := s.key(name)

	if name != "." {
		info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
		if err == nil {
			return newFileInfo(path.Base(name), info.Size, info.LastModified, false), nil
		}
		if err = errs.Translate(err); !errors.Is(err, fs.ErrNotExist) {
			return nil, errs.PathError("stat", name, err)
		}

		found, err := s.hasPrefix(ctx, pathutil.DirPrefix(key))
		if err != nil {
			return nil, errs.PathError("stat", name, err)
		}
		if !found {
			return nil, errs.PathError("stat", name, fs.ErrNotExist)
		}
	}

	return newFileInfo(path.Base(name), 0, time.Time{}, true), nil
}

// hasPrefix reports whether any object key starts with prefix.
func (s *Store) hasPrefix(ctx context.Context, prefix string) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:  prefix,
		MaxKeys: 1,
	}) {
		if object.Err != nil {
			return false, errs.Translate(object.Err)
		}
		return true, nil
	}
	return false, nil
}

// listDir lists the immediate children under a directory prefix, sorted by
// name. The directory's own marker is skipped.
func (s *Store) listDir(ctx context.Context, prefix string) ([]fs.DirEntry, error) {
	var entries []fs.DirEntry
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix: prefix,
	}) {
		if object.Err != nil {
			return nil, errs.Translate(object.Err)
		}
		if object.Key == prefix {
			continue
		}

		rel := strings.TrimPrefix(object.Key, prefix)
		isDir := strings.HasSuffix(rel, "/")
		rel = strings.TrimSuffix(rel, "/")
		if rel == "" {
			continue
		}
		entries = append(entries, newDirEntry(rel, isDir, object.Size, object.LastModified))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

// ReadDir reads the named directory and returns its entries sorted by name.
func (s *Store) ReadDir(name string) ([]fs.DirEntry, error) {
	name = pathutil.Normalize(name)
	info, err := s.Stat(name)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errs.PathError("readdir", name, syscall.ENOTDIR)
	}

	entries, err := s.listDir(context.Background(), pathutil.DirPrefix(s.key(name)))
	if err != nil {
		return nil, errs.PathError("readdir", name, err)
	}
	return entries, nil
}

// Open opens the named object for streaming reads.
func (s *Store) Open(name string) (fs.File, error) {
	r, err := s.openReader(name)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) openReader(name string) (*reader, error) {
	name = pathutil.Normalize(name)
	info, err := s.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errs.PathError("open", name, syscall.EISDIR)
	}

	obj, err := s.client.GetObject(context.Background(), s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, errs.PathError("open", name, errs.Translate(err))
	}
	return &reader{name: name, obj: obj, info: info}, nil
}

// ReadFile reads the named object and returns its contents.
func (s *Store) ReadFile(name string) ([]byte, error) {
	r, err := s.openReader(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.PathError("readfile", r.name, err)
	}
	return data, nil
}

// Exists reports whether the named file or directory exists.
func (s *Store) Exists(name string) (bool, error) {
	_, err := s.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Create creates or truncates the named object for writing.
func (s *Store) Create(name string) (core.File, error) {
	return s.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
}

// OpenFile opens the named object with the specified flags.
//
// Supported: O_RDONLY, O_WRONLY, O_CREATE, O_TRUNC and O_APPEND. Appends
// download the current object and re-upload it on Close.
// Unsupported: O_RDWR, O_EXCL, O_SYNC (returns ErrUnsupported).
func (s *Store) OpenFile(name string, flag int, _ fs.FileMode) (core.File, error) {
	name = pathutil.Normalize(name)
	switch {
	case flag&os.O_RDWR != 0:
		return nil, errs.PathErrorf("open", name, "%w: O_RDWR not supported in S3", core.ErrUnsupported)
	case flag&os.O_EXCL != 0:
		return nil, errs.PathErrorf("open", name, "%w: O_EXCL not supported in S3", core.ErrUnsupported)
	case flag&os.O_SYNC != 0:
		return nil, errs.PathErrorf("open", name, "%w: O_SYNC not supported in S3", core.ErrUnsupported)
	}

	if flag&(os.O_WRONLY|os.O_CREATE|os.O_APPEND) == 0 {
		r, err := s.openReader(name)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	w := &writer{store: s, name: name, key: s.key(name), buf: new(bytes.Buffer)}

	// existing content matters unless the object is created fresh
	if flag&os.O_CREATE == 0 || (flag&os.O_APPEND != 0 && flag&os.O_TRUNC == 0) {
		info, err := s.Stat(name)
		switch {
		case err != nil && !(errors.Is(err, fs.ErrNotExist) && flag&os.O_CREATE != 0):
			return nil, err
		case err == nil && info.IsDir():
			return nil, errs.PathError("open", name, syscall.EISDIR)
		case err == nil && flag&os.O_APPEND != 0:
			data, err := s.ReadFile(name)
			if err != nil {
				return nil, err
			}
			w.buf.Write(data)
			w.written = int64(len(data))
		}
	}
	return w, nil
}

// WriteFile writes data to the named object.
func (s *Store) WriteFile(name string, data []byte, _ fs.FileMode) error {
	f, err := s.Create(name)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return errs.PathError("writefile", name, err)
	}
	if err := f.Close(); err != nil {
		return errs.PathError("writefile", name, err)
	}
	return nil
}

// putMarker writes the zero-byte directory marker for name.
func (s *Store) putMarker(name string) error {
	_, err := s.client.PutObject(context.Background(), s.bucket, pathutil.DirPrefix(s.key(name)),
		bytes.NewReader(nil), 0, minio.PutObjectOptions{ContentType: "application/x-directory"})
	return errs.Translate(err)
}

// Mkdir creates a directory marker. The parent must exist and the name
// must be free.
func (s *Store) Mkdir(name string, _ fs.FileMode) error {
	name = pathutil.Normalize(name)
	if ok, err := s.Exists(name); err != nil {
		return err
	} else if ok {
		return errs.PathError("mkdir", name, fs.ErrExist)
	}

	if parent := path.Dir(name); parent != "." {
		info, err := s.Stat(parent)
		if err != nil {
			return errs.PathError("mkdir", name, fs.ErrNotExist)
		}
		if !info.IsDir() {
			return errs.PathError("mkdir", name, syscall.ENOTDIR)
		}
	}
	return errs.PathError("mkdir", name, s.putMarker(name))
}

// MkdirAll creates a directory marker unless the directory already exists.
// Intermediate directories exist implicitly through the marker's key.
func (s *Store) MkdirAll(name string, _ fs.FileMode) error {
	name = pathutil.Normalize(name)
	if name == "." {
		return nil
	}
	info, err := s.Stat(name)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return errs.PathError("mkdir", name, syscall.ENOTDIR)
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}
	return errs.PathError("mkdir", name, s.putMarker(name))
}

// Remove removes the named object or empty directory.
func (s *Store) Remove(name string) error {
	name = pathutil.Normalize(name)
	if name == "." {
		return errs.PathError("remove", name, fs.ErrInvalid)
	}
	info, err := s.Stat(name)
	if err != nil {
		return err
	}

	ctx := context.Background()
	key := s.key(name)
	if info.IsDir() {
		key = pathutil.DirPrefix(key)
		children, err := s.listDir(ctx, key)
		if err != nil {
			return errs.PathError("remove", name, err)
		}
		if len(children) > 0 {
			return errs.PathError("remove", name, syscall.ENOTEMPTY)
		}
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errs.PathError("remove", name, errs.Translate(err))
	}
	return nil
}

// RemoveAll removes path and any children it contains. RemoveAll(".")
// empties the store.
func (s *Store) RemoveAll(name string) error {
	name = pathutil.Normalize(name)
	key := s.key(name)
	ctx := context.Background()

	if key != "" {
		if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return errs.PathError("removeall", name, errs.Translate(err))
		}
	}

	objectsCh := make(chan minio.ObjectInfo, 100)
	var listErr error
	go func() {
		defer close(objectsCh)
		for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
			Prefix:    pathutil.DirPrefix(key),
			Recursive: true,
		}) {
			if object.Err != nil {
				listErr = object.Err
				return
			}
			objectsCh <- object
		}
	}()

	var firstErr error
	for rErr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rErr.Err != nil && firstErr == nil {
			firstErr = rErr.Err
		}
	}

	if listErr != nil {
		return errs.PathError("removeall", name, errs.Translate(listErr))
	}
	if firstErr != nil {
		return errs.PathError("removeall", name, errs.Translate(firstErr))
	}
	return nil
}

// Rename moves oldpath to newpath as copy + delete.
//
// Not atomic: a failure during the copy phase leaves partial copies, a
// failure during the delete phase leaves objects at both paths.
func (s *Store) Rename(oldpath, newpath string) error {
	oldpath = pathutil.Normalize(oldpath)
	newpath = pathutil.Normalize(newpath)
	info, err := s.Stat(oldpath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	oldKey, newKey := s.key(oldpath), s.key(newpath)

	if !info.IsDir() {
		src := minio.CopySrcOptions{Bucket: s.bucket, Object: oldKey}
		dst := minio.CopyDestOptions{Bucket: s.bucket, Object: newKey}
		if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
			return errs.PathError("rename", oldpath, errs.Translate(err))
		}
		if err := s.client.RemoveObject(ctx, s.bucket, oldKey, minio.RemoveObjectOptions{}); err != nil {
			return errs.PathError("rename", oldpath, errs.Translate(err))
		}
		return nil
	}

	copied, err := s.parallelCopy(ctx, pathutil.DirPrefix(oldKey), pathutil.DirPrefix(newKey))
	if err != nil {
		return errs.PathError("rename", oldpath, errs.Translate(err))
	}

	toDelete := make(chan minio.ObjectInfo, len(copied))
	for _, k := range copied {
		toDelete <- minio.ObjectInfo{Key: k}
	}
	close(toDelete)

	for rErr := range s.client.RemoveObjects(ctx, s.bucket, toDelete, minio.RemoveObjectsOptions{}) {
		if rErr.Err != nil {
			return errs.PathError("rename", oldpath, errs.Translate(rErr.Err))
		}
	}
	return nil
}

// parallelCopy copies every object under oldPrefix to newPrefix with a
// bounded worker pool and returns the source keys that were copied.
func (s *Store) parallelCopy(ctx context.Context, oldPrefix, newPrefix string) ([]string, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.renameConcurrency)

	var mu sync.Mutex
	var copied []string

	for object := range s.client.ListObjects(egCtx, s.bucket, minio.ListObjectsOptions{
		Prefix:    oldPrefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			_ = eg.Wait()
			return copied, object.Err
		}

		srcKey := object.Key
		eg.Go(func() error {
			dstKey := newPrefix + strings.TrimPrefix(srcKey, oldPrefix)
			src := minio.CopySrcOptions{Bucket: s.bucket, Object: srcKey}
			dst := minio.CopyDestOptions{Bucket: s.bucket, Object: dstKey}
			if _, err := s.client.CopyObject(egCtx, dst, src); err != nil {
				return fmt.Errorf("copy object %s to %s: %w", srcKey, dstKey, err)
			}

			mu.Lock()
			copied = append(copied, srcKey)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return copied, fmt.Errorf("parallel copy failed: %w", err)
	}
	return copied, nil
}

// Walk walks the tree rooted at root in lexical order, synthesizing
// directory entries for key prefixes.
func (s *Store) Walk(root string, walkFn fs.WalkDirFunc) error {
	root = pathutil.Normalize(root)
	info, err := s.Stat(root)
	switch {
	case err != nil:
		err = walkFn(root, nil, err)
	case !info.IsDir():
		err = walkFn(root, fs.FileInfoToDirEntry(info), nil)
	default:
		err = s.walkDir(context.Background(), root, walkFn)
	}
	if errors.Is(err, fs.SkipDir) || errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func (s *Store) walkDir(ctx context.Context, name string, walkFn fs.WalkDirFunc) error {
	self := newDirEntry(path.Base(name), true, 0, time.Time{})
	if err := walkFn(name, self, nil); err != nil {
		if errors.Is(err, fs.SkipDir) {
			return nil
		}
		return err
	}

	entries, err := s.listDir(ctx, pathutil.DirPrefix(s.key(name)))
	if err != nil {
		if err := walkFn(name, self, err); err != nil {
			return err
		}
	}

	for _, entry := range entries {
		child := pathutil.Child(name, entry.Name())
		if entry.IsDir() {
			if err := s.walkDir(ctx, child, walkFn); err != nil {
				return err
			}
			continue
		}
		if err := walkFn(child, entry, nil); err != nil {
			if errors.Is(err, fs.SkipDir) {
				// skip the remaining files of this directory
				return nil
			}
			return err
		}
	}
	return nil
}

// Type returns FSTypeRemote.
func (s *Store) Type() core.FSType {
	return core.FSTypeRemote
}

// Space reports the configured capacity and the bytes stored under the
// store's prefix.
func (s *Store) Space() (total, used int64, err error) {
	for object := range s.client.ListObjects(context.Background(), s.bucket, minio.ListObjectsOptions{
		Prefix:    pathutil.DirPrefix(s.prefix),
		Recursive: true,
	}) {
		if object.Err != nil {
			return 0, 0, errs.Translate(object.Err)
		}
		used += object.Size
	}
	return s.capacity, used, nil
}

// Compile-time interface checks.
var (
	_ core.FS      = (*Store)(nil)
	_ core.SpaceFS = (*Store)(nil)
)
