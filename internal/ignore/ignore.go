package ignore

import (
	"path/filepath"
	"strings"
)

// fragments are path segments excluded from every traversal. The same list
// backs file search, content search, and tree listing so their results stay
// mutually consistent.
var fragments = []string{
	"node_modules",
	".git",
	".svn",
	".hg",
	"dist",
	"build",
	"target",
	"vendor",
	"__pycache__",
	".venv",
	"venv",
	".idea",
	".vscode",
	".cache",
	".next",
	".nuxt",
	"coverage",
	"logs",
	"out",
	"bin",
	"obj",
}

// Matcher tests paths against a fixed set of ignore fragments. The zero value
// matches nothing; use Default.
type Matcher struct {
	fragments []string
}

// Default returns a matcher over the shared ignore list.
func Default() Matcher {
	return Matcher{fragments: fragments}
}

// Extended returns a new matcher with extra caller-supplied patterns appended.
// Extras may be plain segment names or globs (matched per segment).
func (m Matcher) Extended(extra ...string) Matcher {
	if len(extra) == 0 {
		return m
	}
	merged := make([]string, 0, len(m.fragments)+len(extra))
	merged = append(merged, m.fragments...)
	for _, e := range extra {
		if e = strings.TrimSpace(e); e != "" {
			merged = append(merged, e)
		}
	}
	return Matcher{fragments: merged}
}

// Match reports whether relPath (slash-separated, relative to the search root)
// contains any ignored fragment as a path segment.
func (m Matcher) Match(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	if relPath == "" || relPath == "." {
		return false
	}
	for _, seg := range strings.Split(relPath, "/") {
		for _, frag := range m.fragments {
			if seg == frag {
				return true
			}
			if strings.ContainsAny(frag, "*?[") {
				if ok, _ := filepath.Match(frag, seg); ok {
					return true
				}
			}
		}
	}
	return false
}

// Fragments returns the active fragment list. Callers use it to build
// backend-native exclusions (e.g. rg --glob '!**/frag/**').
func (m Matcher) Fragments() []string {
	out := make([]string, len(m.fragments))
	copy(out, m.fragments)
	return out
}
