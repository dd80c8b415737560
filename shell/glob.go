package shell

import (
	"path"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/jmgilman/busybox/volume"
)

const globMeta = "*?[{"

// Expand matches pattern against the children of its parent directory and
// returns the matching paths in order. Only the final path element may hold
// wildcards. A pattern without wildcards, one that does not compile, or one
// that matches nothing is returned unchanged so the command reports it.
func (s *Shell) Expand(pattern string) []string {
	p := volume.Clean(pattern)
	if !strings.ContainsAny(p, globMeta) {
		return []string{p}
	}

	parent := "/"
	var separators []rune
	if s.caps.Directories {
		parent = path.Dir(p)
		if strings.ContainsAny(parent, globMeta) {
			return []string{p}
		}
		separators = []rune{'/'}
	}

	g, err := glob.Compile(p, separators...)
	if err != nil {
		s.log.Debug().Err(err).Str("pattern", p).Msg("glob: bad pattern")
		return []string{p}
	}

	dir, err := s.vol.Open(parent, volume.ModeRead)
	if err != nil {
		return []string{p}
	}
	defer s.release(dir)
	if !dir.IsDir() {
		return []string{p}
	}

	var matches []string
	err = s.eachChild(dir, parent, func(c child) error {
		if g.Match(c.path) {
			matches = append(matches, c.path)
		}
		return nil
	})
	if err != nil {
		s.log.Debug().Err(err).Str("pattern", p).Msg("glob: listing failed")
	}
	if len(matches) == 0 {
		return []string{p}
	}
	sort.Strings(matches)
	return matches
}

// ExpandAll expands every pattern and concatenates the results.
func (s *Shell) ExpandAll(patterns []string) []string {
	var out []string
	for _, p := range patterns {
		out = append(out, s.Expand(p)...)
	}
	return out
}
