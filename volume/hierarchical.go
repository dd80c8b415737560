package volume

import (
	"io/fs"
	"path"

	"github.com/jmgilman/busybox/errors"
)

// hierarchical serves kinds with real directories.
type hierarchical struct {
	*base
}

func (v *hierarchical) Open(p string, mode Mode) (Handle, error) {
	p = Clean(p)
	info, err := v.store.Stat(key(p))
	switch {
	case err == nil && info.IsDir():
		if mode != ModeRead {
			return nil, errors.Newf(errors.CodeIsADirectory, "open %s: is a directory", p)
		}
		return v.dirHandle(p), nil
	case err == nil && mode == ModeRead:
		return v.fileHandle(p, info.Size()), nil
	case err != nil && (mode == ModeRead || !errors.Is(err, fs.ErrNotExist)):
		return nil, errors.FromFS("open", p, err)
	}
	if err := v.checkParent("open", p); err != nil {
		return nil, err
	}
	return v.create(p, mode)
}

// checkParent fails unless the parent of p is an existing directory. Some
// stores create missing parents on write; a flash volume does not.
func (v *hierarchical) checkParent(op, p string) error {
	parent := path.Dir(p)
	if parent == "/" {
		return nil
	}
	info, err := v.store.Stat(key(parent))
	if err != nil {
		return errors.FromFS(op, p, err)
	}
	if !info.IsDir() {
		return errors.Newf(errors.CodeNotADirectory, "%s %s: parent is not a directory", op, p)
	}
	return nil
}

func (v *hierarchical) list(p string) ([]entry, error) {
	des, err := v.store.ReadDir(key(p))
	if err != nil {
		return nil, errors.FromFS("readdir", p, err)
	}

	entries := make([]entry, 0, len(des))
	for _, d := range des {
		e := entry{path: path.Join(p, d.Name()), dir: d.IsDir()}
		if !e.dir {
			info, err := d.Info()
			if err != nil {
				return nil, errors.FromFS("stat", e.path, err)
			}
			e.size = info.Size()
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (v *hierarchical) Exists(p string) bool {
	_, err := v.store.Stat(key(p))
	return err == nil
}

// Remove deletes a file. Directories go through Rmdir.
func (v *hierarchical) Remove(p string) error {
	p = Clean(p)
	info, err := v.store.Stat(key(p))
	if err != nil {
		return errors.FromFS("remove", p, err)
	}
	if info.IsDir() {
		return errors.Newf(errors.CodeIsADirectory, "remove %s: is a directory", p)
	}
	if err := v.store.Remove(key(p)); err != nil {
		return errors.FromFS("remove", p, err)
	}
	v.log.Debug().Str("path", p).Msg("removed file")
	return nil
}

func (v *hierarchical) Rename(oldPath, newPath string) error {
	oldPath, newPath = Clean(oldPath), Clean(newPath)
	if oldPath == "/" || newPath == "/" {
		return invalid("rename", oldPath, "cannot rename the root directory")
	}
	if err := v.checkParent("rename", newPath); err != nil {
		return errors.WithContext(err, "new_path", newPath)
	}
	if err := v.store.Rename(key(oldPath), key(newPath)); err != nil {
		return errors.WithContext(errors.FromFS("rename", oldPath, err), "new_path", newPath)
	}
	return nil
}

func (v *hierarchical) Mkdir(p string) error {
	p = Clean(p)
	if p == "/" {
		return errors.New(errors.CodeAlreadyExists, "mkdir /: root directory exists")
	}
	if err := v.store.Mkdir(key(p), 0o755); err != nil {
		return errors.FromFS("mkdir", p, err)
	}
	return nil
}

// Rmdir deletes an empty directory. Emptiness is checked here because
// stores disagree on how they report it.
func (v *hierarchical) Rmdir(p string) error {
	p = Clean(p)
	if p == "/" {
		return invalid("rmdir", p, "cannot remove the root directory")
	}

	info, err := v.store.Stat(key(p))
	if err != nil {
		return errors.FromFS("rmdir", p, err)
	}
	if !info.IsDir() {
		return errors.Newf(errors.CodeNotADirectory, "rmdir %s: not a directory", p)
	}

	children, err := v.store.ReadDir(key(p))
	if err != nil {
		return errors.FromFS("rmdir", p, err)
	}
	if len(children) > 0 {
		return errors.Newf(errors.CodeNotEmpty, "rmdir %s: directory not empty", p)
	}

	if err := v.store.Remove(key(p)); err != nil {
		return errors.FromFS("rmdir", p, err)
	}
	v.log.Debug().Str("path", p).Msg("removed directory")
	return nil
}
