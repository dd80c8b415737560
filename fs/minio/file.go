package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"time"

	"github.com/jmgilman/busybox/fs/core"
	"github.com/jmgilman/busybox/fs/minio/internal/errs"
	"github.com/minio/minio-go/v7"
)

// fileInfo implements fs.FileInfo for objects and virtual directories.
type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
	dir     bool
}

func newFileInfo(name string, size int64, modTime time.Time, dir bool) *fileInfo {
	return &fileInfo{name: name, size: size, modTime: modTime, dir: dir}
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.dir }
func (fi *fileInfo) Sys() interface{}   { return nil }

func (fi *fileInfo) Mode() fs.FileMode {
	if fi.dir {
		return fs.ModeDir | 0755
	}
	return 0644
}

// dirEntry implements fs.DirEntry for listing results.
type dirEntry struct {
	info *fileInfo
}

func newDirEntry(name string, dir bool, size int64, modTime time.Time) *dirEntry {
	return &dirEntry{info: newFileInfo(name, size, modTime, dir)}
}

func (e *dirEntry) Name() string               { return e.info.name }
func (e *dirEntry) IsDir() bool                { return e.info.dir }
func (e *dirEntry) Type() fs.FileMode          { return e.info.Mode().Type() }
func (e *dirEntry) Info() (fs.FileInfo, error) { return e.info, nil }

// reader streams an object without buffering it in memory.
type reader struct {
	name   string
	obj    *minio.Object
	info   fs.FileInfo
	closed bool
}

func (r *reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, errs.PathError("read", r.name, fs.ErrClosed)
	}
	n, err := r.obj.Read(p)
	// report data first, EOF on the next call
	if n > 0 && errors.Is(err, io.EOF) {
		return n, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return n, errs.PathError("read", r.name, errs.Translate(err))
	}
	return n, err
}

func (r *reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.obj.Close()
}

func (r *reader) Stat() (fs.FileInfo, error) { return r.info, nil }

func (r *reader) Name() string { return r.name }

func (r *reader) Write(_ []byte) (int, error) {
	return 0, errs.PathError("write", r.name, fs.ErrInvalid)
}

// writer buffers writes and uploads them on Close. Past the store's
// multipart threshold it switches to a streaming upload through a pipe.
type writer struct {
	store   *Store
	name    string
	key     string
	buf     *bytes.Buffer
	pipeW   *io.PipeWriter
	done    chan error
	written int64
	closed  bool
}

func (w *writer) Read(_ []byte) (int, error) {
	return 0, errs.PathError("read", w.name, fs.ErrInvalid)
}

func (w *writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errs.PathError("write", w.name, fs.ErrClosed)
	}

	if w.pipeW == nil && int64(w.buf.Len()+len(p)) > w.store.multipartThreshold {
		if err := w.startStreaming(); err != nil {
			return 0, err
		}
	}

	var n int
	var err error
	if w.pipeW != nil {
		n, err = w.pipeW.Write(p)
	} else {
		n, err = w.buf.Write(p)
	}
	w.written += int64(n)
	if err != nil {
		return n, errs.PathError("write", w.name, err)
	}
	return n, nil
}

// startStreaming starts the background upload and flushes the buffer
// into it.
//
//nolint:contextcheck // io.Writer.Write cannot accept a context
func (w *writer) startStreaming() error {
	pr, pw := io.Pipe()
	w.pipeW = pw
	w.done = make(chan error, 1)

	go func() {
		_, err := w.store.client.PutObject(context.Background(), w.store.bucket, w.key, pr, -1,
			minio.PutObjectOptions{ContentType: "application/octet-stream"})
		_ = pr.CloseWithError(err)
		w.done <- errs.Translate(err)
		close(w.done)
	}()

	if w.buf.Len() > 0 {
		if _, err := pw.Write(w.buf.Bytes()); err != nil {
			return errs.PathError("write", w.name, err)
		}
	}
	w.buf = nil
	return nil
}

// Close finishes the upload. A second Close is a no-op.
func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.pipeW != nil {
		_ = w.pipeW.Close()
		return errs.PathError("close", w.name, <-w.done)
	}

	_, err := w.store.client.PutObject(context.Background(), w.store.bucket, w.key,
		bytes.NewReader(w.buf.Bytes()), int64(w.buf.Len()),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	return errs.PathError("close", w.name, errs.Translate(err))
}

// Stat reports the bytes written so far.
func (w *writer) Stat() (fs.FileInfo, error) {
	return newFileInfo(w.name, w.written, time.Now(), false), nil
}

func (w *writer) Name() string { return w.name }

// Compile-time interface checks.
var (
	_ core.File   = (*reader)(nil)
	_ core.File   = (*writer)(nil)
	_ fs.FileInfo = (*fileInfo)(nil)
	_ fs.DirEntry = (*dirEntry)(nil)
)
