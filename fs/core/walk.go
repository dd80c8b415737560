package core

import (
	"errors"
	"io/fs"
	"path"
)

// DirReader is the subset of ReadFS needed to walk a hierarchical store.
type DirReader interface {
	Stat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
}

// WalkDir walks the tree rooted at root in lexical order, calling walkFn for
// each file or directory, including root. It follows the fs.WalkDir contract
// for fs.SkipDir and fs.SkipAll, and stats only the root: children are
// described by their directory entries.
func WalkDir(fsys DirReader, root string, walkFn fs.WalkDirFunc) error {
	info, err := fsys.Stat(root)
	if err != nil {
		err = walkFn(root, nil, err)
	} else {
		err = walkDir(fsys, root, fs.FileInfoToDirEntry(info), walkFn)
	}
	if errors.Is(err, fs.SkipDir) || errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func walkDir(fsys DirReader, name string, d fs.DirEntry, walkFn fs.WalkDirFunc) error {
	if err := walkFn(name, d, nil); err != nil || !d.IsDir() {
		if errors.Is(err, fs.SkipDir) && d.IsDir() {
			err = nil
		}
		return err
	}

	entries, err := fsys.ReadDir(name)
	if err != nil {
		if err = walkFn(name, d, err); err != nil {
			if errors.Is(err, fs.SkipDir) {
				err = nil
			}
			return err
		}
	}

	for _, entry := range entries {
		if err := walkDir(fsys, path.Join(name, entry.Name()), entry, walkFn); err != nil {
			if errors.Is(err, fs.SkipDir) {
				// SkipDir from a file skips the rest of its directory
				return nil
			}
			return err
		}
	}
	return nil
}
