package core

import (
	"io/fs"
	"path"
	"strings"
)

// Seed copies all files from a read-only filesystem (os.DirFS, embed.FS,
// testing/fstest.MapFS) into a store, preserving the directory structure.
//
// The srcRoot parameter is the directory in src to copy from; "." copies
// everything. Parent directories are created with MkdirAll, which object
// stores treat as a no-op. Returns the number of files copied.
//
// Example:
//
//	n, err := core.Seed(os.DirFS("./testdata"), store, ".")
func Seed(src fs.FS, dst FS, srcRoot string) (int, error) {
	copied := 0
	err := fs.WalkDir(src, srcRoot, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		data, err := fs.ReadFile(src, filePath)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		dstPath := filePath
		if srcRoot != "." && srcRoot != "" {
			dstPath = strings.TrimPrefix(filePath, srcRoot)
			dstPath = strings.TrimPrefix(dstPath, "/")
		}

		if dir := path.Dir(dstPath); dir != "." && dir != "" {
			if err := dst.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}

		if err := dst.WriteFile(dstPath, data, info.Mode().Perm()); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, err
}
