//go:build linux || darwin || freebsd

package billy

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// diskSpace reports the size of the filesystem holding root.
func diskSpace(root string) (total, used int64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(root, &st); err != nil {
		return 0, 0, &fs.PathError{Op: "statfs", Path: root, Err: err}
	}
	bsize := int64(st.Bsize)
	total = int64(st.Blocks) * bsize
	free := int64(st.Bavail) * bsize
	return total, total - free, nil
}
