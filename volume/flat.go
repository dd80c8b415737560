package volume

import (
	"io/fs"
	"path"

	"github.com/jmgilman/busybox/errors"
)

// flat serves kinds without directories. The root is the only directory
// and every file is a child of it, named by its absolute path. Slashes in
// file names are kept in the store as nested store directories, which are
// created on write and pruned once empty.
type flat struct {
	*base
}

func (v *flat) Open(p string, mode Mode) (Handle, error) {
	p = Clean(p)
	if p == "/" {
		if mode != ModeRead {
			return nil, errors.New(errors.CodeIsADirectory, "open /: is a directory")
		}
		return v.dirHandle(p), nil
	}

	info, err := v.stat(p)
	switch {
	case err == nil && mode == ModeRead:
		return v.fileHandle(p, info.Size()), nil
	case err != nil && (mode == ModeRead || !errors.Is(err, fs.ErrNotExist)):
		return nil, errors.FromFS("open", p, err)
	}

	if err := v.ensureParent(p); err != nil {
		return nil, err
	}
	return v.create(p, mode)
}

// stat returns file info for p. Store directories do not exist on a flat
// volume.
func (v *flat) stat(p string) (fs.FileInfo, error) {
	info, err := v.store.Stat(key(p))
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "stat", Path: key(p), Err: fs.ErrNotExist}
	}
	return info, nil
}

// list returns every file in the store.
func (v *flat) list(string) ([]entry, error) {
	var entries []entry
	err := v.store.Walk(".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, entry{path: Clean(name), size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, errors.FromFS("readdir", "/", err)
	}
	return entries, nil
}

func (v *flat) Exists(p string) bool {
	if Clean(p) == "/" {
		return true
	}
	_, err := v.stat(p)
	return err == nil
}

func (v *flat) Remove(p string) error {
	p = Clean(p)
	if p == "/" {
		return errors.New(errors.CodeIsADirectory, "remove /: is a directory")
	}
	if _, err := v.stat(p); err != nil {
		return errors.FromFS("remove", p, err)
	}
	if err := v.store.Remove(key(p)); err != nil {
		return errors.FromFS("remove", p, err)
	}
	v.prune(path.Dir(p))
	v.log.Debug().Str("path", p).Msg("removed file")
	return nil
}

func (v *flat) Rename(oldPath, newPath string) error {
	oldPath, newPath = Clean(oldPath), Clean(newPath)
	if oldPath == "/" || newPath == "/" {
		return invalid("rename", oldPath, "cannot rename the root directory")
	}
	if _, err := v.stat(oldPath); err != nil {
		return errors.FromFS("rename", oldPath, err)
	}
	if err := v.ensureParent(newPath); err != nil {
		return err
	}
	if err := v.store.Rename(key(oldPath), key(newPath)); err != nil {
		return errors.WithContext(errors.FromFS("rename", oldPath, err), "new_path", newPath)
	}
	v.prune(path.Dir(oldPath))
	return nil
}

func (v *flat) Mkdir(p string) error {
	return unsupported("mkdir", Clean(p))
}

func (v *flat) Rmdir(p string) error {
	return unsupported("rmdir", Clean(p))
}

// ensureParent creates the store directories a nested file name needs.
func (v *flat) ensureParent(p string) error {
	dir := path.Dir(p)
	if dir == "/" {
		return nil
	}
	if err := v.store.MkdirAll(key(dir), 0o755); err != nil {
		return errors.FromFS("open", p, err)
	}
	return nil
}

// prune removes empty store directories from dir upwards.
func (v *flat) prune(dir string) {
	for ; dir != "/"; dir = path.Dir(dir) {
		children, err := v.store.ReadDir(key(dir))
		if err != nil || len(children) > 0 {
			return
		}
		if err := v.store.Remove(key(dir)); err != nil {
			v.log.Debug().Err(err).Str("path", dir).Msg("leaving store directory")
			return
		}
	}
}
