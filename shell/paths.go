package shell

import (
	"io"
	"strings"

	"github.com/jmgilman/busybox/volume"
)

// ChildPath returns the absolute path of a child reported by a directory
// handle opened at parentPath. Kinds that report absolute names are
// returned as is; bare names are joined to the parent with exactly one
// slash.
func ChildPath(childName, parentPath string, caps volume.Capabilities) string {
	if caps.AbsoluteChildNames {
		return childName
	}
	name := strings.TrimLeft(childName, "/")
	if parentPath == "/" {
		return "/" + name
	}
	return strings.TrimSuffix(parentPath, "/") + "/" + name
}

// child is what a directory cursor reported for one entry.
type child struct {
	path string
	dir  bool
	size int64
}

// eachChild hands fn one child of dir at a time. The child's handle is
// closed before fn runs, so fn is free to recurse into or delete the
// child. Iteration stops at the first error from the cursor or from fn.
func (s *Shell) eachChild(dir volume.Handle, parent string, fn func(child) error) error {
	for {
		h, err := dir.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		c := child{
			path: ChildPath(h.Name(), parent, s.caps),
			dir:  h.IsDir(),
			size: h.Size(),
		}
		s.release(h)

		if err := fn(c); err != nil {
			return err
		}
	}
}
