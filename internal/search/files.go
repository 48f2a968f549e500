package search

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"reposcout/internal/execx"
	"reposcout/internal/ignore"
)

// FileSearch discovers files by glob pattern. The primary backend is
// ripgrep's file lister; when it is unavailable or fails, a pure-Go walk
// with doublestar matching takes over. Discovery failures are soft: the
// engine returns an empty result, never an error.
type FileSearch struct {
	run     execx.Runner
	rg      string
	ign     ignore.Matcher
	limit   int
	log     *log.Logger
}

// NewFileSearch creates a file search engine. rgBin names the ripgrep
// binary; empty means "rg".
func NewFileSearch(run execx.Runner, rgBin string, ign ignore.Matcher, logger *log.Logger) *FileSearch {
	if rgBin == "" {
		rgBin = "rg"
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FileSearch{run: run, rg: rgBin, ign: ign, limit: DefaultLimit, log: logger}
}

// Find returns up to the cap of paths under dir matching pattern, most
// recently modified first. Paths containing an ignored fragment are dropped.
func (s *FileSearch) Find(ctx context.Context, pattern, dir string) Result[string] {
	if dir == "" {
		dir = "."
	}

	rels, ok := s.findRipgrep(ctx, pattern, dir)
	if !ok {
		var err error
		rels, err = s.findWalk(pattern, dir)
		if err != nil {
			s.log.Warn("file search failed", "pattern", pattern, "dir", dir, "err", err)
			return empty[string]()
		}
	}

	kept := rels[:0]
	for _, rel := range rels {
		if !s.ign.Match(rel) {
			kept = append(kept, rel)
		}
	}

	sortByModTime(kept, dir)

	paths := make([]string, len(kept))
	for i, rel := range kept {
		paths[i] = filepath.Join(dir, rel)
	}
	return capped(paths, s.limit)
}

// findRipgrep lists matching files via `rg --files --glob`. The second return
// is false when the backend was unavailable or failed, signalling fallback.
func (s *FileSearch) findRipgrep(ctx context.Context, pattern, dir string) ([]string, bool) {
	out := s.run.Run(ctx, dir, s.rg, "--files", "--glob", pattern)
	if out.OK() {
		return splitLines(out.Stdout), true
	}
	// Exit 1 with no output means no files matched the glob.
	if out.Err == nil && out.ExitCode == 1 && len(out.Stdout) == 0 {
		return nil, true
	}
	s.log.Debug("ripgrep file listing unavailable, walking", "err", out.Diagnostic())
	return nil, false
}

// findWalk enumerates dir recursively and matches relative paths with
// doublestar, so `**` and `{a,b}` keep their meaning in the fallback.
// A pattern without a slash also matches on base name alone, mirroring
// ripgrep's glob semantics.
func (s *FileSearch) findWalk(pattern, dir string) ([]string, error) {
	var rels []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && s.ign.Match(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if matchGlob(pattern, rel) {
			rels = append(rels, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rels, nil
}

func matchGlob(pattern, rel string) bool {
	if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if ok, _ := doublestar.Match(pattern, filepath.Base(rel)); ok {
			return true
		}
	}
	return false
}

// sortByModTime orders relative paths most recently modified first. Paths
// that fail to stat sort last; ties break lexicographically for stable
// output.
func sortByModTime(rels []string, dir string) {
	mtimes := make(map[string]time.Time, len(rels))
	for _, rel := range rels {
		if info, err := os.Stat(filepath.Join(dir, rel)); err == nil {
			mtimes[rel] = info.ModTime()
		}
	}
	sort.SliceStable(rels, func(i, j int) bool {
		ti, tj := mtimes[rels[i]], mtimes[rels[j]]
		if ti.Equal(tj) {
			return rels[i] < rels[j]
		}
		return ti.After(tj)
	})
}

func splitLines(b []byte) []string {
	var out []string
	for _, line := range strings.Split(string(b), "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			out = append(out, filepath.ToSlash(line))
		}
	}
	return out
}
