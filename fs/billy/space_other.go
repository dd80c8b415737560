//go:build !linux && !darwin && !freebsd

package billy

import (
	"io/fs"

	"github.com/jmgilman/busybox/fs/core"
)

func diskSpace(root string) (total, used int64, err error) {
	return 0, 0, &fs.PathError{Op: "statfs", Path: root, Err: core.ErrUnsupported}
}
