package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "."},
		{".", "."},
		{"/", "."},
		{"file.txt", "file.txt"},
		{"/logs/boot.txt", "logs/boot.txt"},
		{"logs/", "logs"},
		{"a//b", "a/b"},
		{"a/./b/../c", "a/c"},
		{"..", "."},
		{"../../escape", "escape"},
		{"win\\style\\path", "win/style/path"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	assert.Equal(t, "", NormalizePrefix(""))
	assert.Equal(t, "", NormalizePrefix("."))
	assert.Equal(t, "", NormalizePrefix("/"))
	assert.Equal(t, "myapp/data", NormalizePrefix("/myapp/data/"))
	assert.Equal(t, "data/files", NormalizePrefix("myapp/../data/./files"))
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		prefix, name, expected string
	}{
		{"", ".", ""},
		{"", "/", ""},
		{"", "a.txt", "a.txt"},
		{"pre", ".", "pre"},
		{"pre", "/dir/a.txt", "pre/dir/a.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, JoinPath(tt.prefix, tt.name), "JoinPath(%q, %q)", tt.prefix, tt.name)
	}
}

func TestDirPrefix(t *testing.T) {
	assert.Equal(t, "", DirPrefix(""))
	assert.Equal(t, "logs/", DirPrefix("logs"))
	assert.Equal(t, "logs/", DirPrefix("logs/"))
}

func TestChild(t *testing.T) {
	assert.Equal(t, "a", Child(".", "a"))
	assert.Equal(t, "a", Child("", "a"))
	assert.Equal(t, "dir/a", Child("dir", "a"))
}
