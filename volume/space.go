package volume

import (
	"github.com/jmgilman/busybox/errors"
	"github.com/jmgilman/busybox/fs/core"
)

// Space reports volume usage in bytes.
type Space struct {
	Total int64
	Used  int64
}

// Free returns the bytes still available.
func (s Space) Free() int64 {
	if s.Used >= s.Total {
		return 0
	}
	return s.Total - s.Used
}

// SpaceInfo reports total and used bytes. Kinds without the SpaceInfo
// capability, and stores that cannot measure themselves, report
// UNSUPPORTED.
func (b *base) SpaceInfo() (Space, error) {
	if !b.caps.SpaceInfo {
		return Space{}, unsupported("df", "/")
	}
	sfs, ok := b.store.(core.SpaceFS)
	if !ok {
		return Space{}, unsupported("df", "/")
	}

	total, used, err := sfs.Space()
	if err != nil {
		return Space{}, errors.FromFS("df", "/", err)
	}
	return Space{Total: total, Used: used}, nil
}
