// Package pathutil maps store names onto S3 object keys.
package pathutil

import (
	"path"
	"strings"
)

// Normalize cleans a name into a slash-separated key fragment without
// leading or trailing slashes. The root is returned as ".".
func Normalize(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.Trim(path.Clean("/"+name), "/")
	if name == "" {
		return "."
	}
	return name
}

// NormalizePrefix normalizes a key prefix. The root prefix is "".
func NormalizePrefix(prefix string) string {
	if p := Normalize(prefix); p != "." {
		return p
	}
	return ""
}

// JoinPath joins a prefix with a name to create a full object key.
// The root of an empty prefix is the empty key.
func JoinPath(prefix, name string) string {
	name = Normalize(name)
	switch {
	case name == ".":
		return prefix
	case prefix == "":
		return name
	default:
		return prefix + "/" + name
	}
}

// DirPrefix returns the listing prefix for a directory key: the key with a
// trailing slash, or "" for the root.
func DirPrefix(key string) string {
	if key == "" || strings.HasSuffix(key, "/") {
		return key
	}
	return key + "/"
}

// Child returns the name of a child entry under parent, both in store
// (not key) space.
func Child(parent, name string) string {
	if parent == "." || parent == "" {
		return name
	}
	return parent + "/" + name
}
