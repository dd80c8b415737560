// Package volumetest provides a conformance suite for volume.Volume
// implementations.
//
// The suite reads the capability record of the volume under test and checks
// the behaviour that record promises: flat volumes must refuse directory
// operations without touching the store, hierarchical volumes must honour
// them, and every kind must report child names in its own convention.
//
// Example usage:
//
//	func TestLittleFSOnMemory(t *testing.T) {
//	    volumetest.TestSuite(t, func(t *testing.T) volume.Volume {
//	        v, err := volume.New(volume.KindLittleFS, billy.NewMemory())
//	        require.NoError(t, err)
//	        return v
//	    })
//	}
package volumetest

import (
	"slices"
	"testing"

	"github.com/jmgilman/busybox/volume"
)

// Factory returns a fresh, empty volume. Each test group gets its own.
type Factory func(t *testing.T) volume.Volume

// Config adapts the suite to store quirks.
type Config struct {
	// SkipTests lists groups or subtests to skip, e.g. "Space" or
	// "Files/Append".
	SkipTests []string
}

// TestSuite runs every group against fresh volumes from newVolume.
func TestSuite(t *testing.T, newVolume Factory) {
	TestSuiteWithConfig(t, newVolume, Config{})
}

// TestSuiteWithConfig runs every group not skipped by config.
func TestSuiteWithConfig(t *testing.T, newVolume Factory, config Config) {
	groups := []struct {
		name string
		run  func(*testing.T, volume.Volume, Config)
	}{
		{"Files", TestFiles},
		{"Children", TestChildren},
		{"Directories", TestDirectories},
		{"Handles", TestHandles},
		{"Space", TestSpace},
		{"Format", TestFormat},
	}

	for _, g := range groups {
		t.Run(g.name, func(t *testing.T) {
			if config.skip(g.name) {
				t.Skip("Skipped by provider configuration")
			}
			g.run(t, newVolume(t), config)
		})
	}
}

func (c Config) skip(name string) bool {
	return slices.Contains(c.SkipTests, name)
}

// run starts a subtest unless config skips it.
func run(t *testing.T, config Config, group, name string, fn func(t *testing.T)) {
	t.Run(name, func(t *testing.T) {
		if config.skip(group + "/" + name) {
			t.Skip("Skipped by provider configuration")
		}
		fn(t)
	})
}
