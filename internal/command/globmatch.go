package command

import (
	"strings"

	"github.com/gobwas/glob"
)

// compileGlob compiles pattern (*, ?, [set]) for repeated matching. It
// reports ok=false when the pattern fails to compile, so callers can fall
// back to the observed KEYS quirk (a null bulk reply) instead of an error.
func compileGlob(pattern string) (m glob.Glob, ok bool) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, false
	}
	return g, true
}

// matchKey reports whether candidate matches the compiled pattern,
// operating on the UTF-8 lossy decoding of candidate per spec.
func matchKey(g glob.Glob, candidate []byte) bool {
	return g.Match(strings.ToValidUTF8(string(candidate), "�"))
}
