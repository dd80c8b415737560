// Package billy provides go-billy backed stores implementing core.FS.
//
// Two stores are available. Both are the same adapter over a
// billy.Filesystem:
//
//	// In-memory store, reports a 1 MiB capacity unless configured
//	mem := billy.NewMemory(billy.WithCapacity(4 << 20))
//
//	// Local directory store, reports the backing disk
//	disk := billy.NewLocal("/var/lib/busybox")
//
// Both stores keep real directories and are used under the hierarchical
// volume kinds (littlefs, fatfs). They work equally well under a flat kind,
// where only the files matter.
//
// # Thread Safety
//
// The local store is safe for concurrent use. The memory store follows
// go-billy's memfs and is not; the shell drives it from a single goroutine.
package billy
