// Package core defines the storage primitives that volumes are built on.
//
// A store is anything that can open, read, write, rename, remove and list
// named files: an in-memory tree, a local directory, an S3 bucket or an SFTP
// server. Stores report what they are and what they can do; they do not try
// to hide their differences. The volume package layers backend semantics
// (directories or not, how child names are reported) on top of a store.
//
// # Interface Hierarchy
//
// The FS interface is composed of four sub-interfaces:
//
//   - ReadFS: Open, Stat, ReadDir, ReadFile, Exists
//   - WriteFS: Create, OpenFile, WriteFile, Mkdir, MkdirAll
//   - ManageFS: Remove, RemoveAll, Rename
//   - WalkFS: Walk
//
// Optional capabilities are discovered with type assertions:
//
//   - SpaceFS: total and used bytes
//
// # Provider Implementations
//
//   - github.com/jmgilman/busybox/fs/billy - go-billy memory and local stores
//   - github.com/jmgilman/busybox/fs/minio - MinIO/S3 object store
//   - github.com/jmgilman/busybox/fs/sftp - SFTP store
package core
