package search

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"reposcout/internal/execx"
	"reposcout/internal/ignore"
)

// maxLineLength caps each matched line's content before it is returned.
const maxLineLength = 2000

// Match is one matched line of a content search.
type Match struct {
	File    string
	Line    int
	Content string
}

// ContentSearch runs regex searches over file contents. Primary backend is
// ripgrep with the ignore list translated to exclusion globs; the fallback is
// plain recursive grep, which keeps its own ordering and does not reapply the
// ignore list.
type ContentSearch struct {
	run   execx.Runner
	rg    string
	grep  string
	ign   ignore.Matcher
	limit int
	log   *log.Logger
}

// NewContentSearch creates a content search engine. Empty binary names fall
// back to "rg" and "grep".
func NewContentSearch(run execx.Runner, rgBin, grepBin string, ign ignore.Matcher, logger *log.Logger) *ContentSearch {
	if rgBin == "" {
		rgBin = "rg"
	}
	if grepBin == "" {
		grepBin = "grep"
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ContentSearch{run: run, rg: rgBin, grep: grepBin, ign: ign, limit: DefaultLimit, log: logger}
}

// Search returns up to the cap of matching lines for pattern under dir,
// optionally restricted to files matching include (e.g. "*.go"). Search
// failures are soft: an empty result, never an error.
func (s *ContentSearch) Search(ctx context.Context, pattern, dir, include string) Result[Match] {
	if dir == "" {
		dir = "."
	}

	matches, ok := s.searchRipgrep(ctx, pattern, dir, include)
	if ok {
		sortMatchesByModTime(matches)
		return capped(truncateContents(matches), s.limit)
	}

	matches, ok = s.searchGrep(ctx, pattern, dir, include)
	if !ok {
		s.log.Warn("content search failed on both backends", "pattern", pattern, "dir", dir)
		return empty[Match]()
	}
	// Fallback path: backend-native ordering is preserved.
	return capped(truncateContents(matches), s.limit)
}

// searchRipgrep runs `rg -n` with per-fragment exclusion globs. Exit 1 is a
// valid empty result; anything else non-zero signals fallback.
func (s *ContentSearch) searchRipgrep(ctx context.Context, pattern, dir, include string) ([]Match, bool) {
	args := []string{"-n", "--no-heading", "--color", "never"}
	for _, frag := range s.ign.Fragments() {
		args = append(args, "--glob", "!**/"+frag+"/**")
	}
	if include != "" {
		args = append(args, "--glob", include)
	}
	args = append(args, "-e", pattern, ".")

	out := s.run.Run(ctx, dir, s.rg, args...)
	if out.OK() {
		return parseGrepLines(out.Stdout, dir), true
	}
	if out.Err == nil && out.ExitCode == 1 {
		return nil, true // no matches
	}
	s.log.Debug("ripgrep unavailable, falling back to grep", "err", out.Diagnostic())
	return nil, false
}

// searchGrep runs `grep -rn` with the same include filter. The ignore list is
// not reapplied here, an accepted degradation of the fallback path.
func (s *ContentSearch) searchGrep(ctx context.Context, pattern, dir, include string) ([]Match, bool) {
	args := []string{"-rn"}
	if include != "" {
		args = append(args, "--include", include)
	}
	args = append(args, "-e", pattern, ".")

	out := s.run.Run(ctx, dir, s.grep, args...)
	if out.OK() {
		return parseGrepLines(out.Stdout, dir), true
	}
	if out.Err == nil && out.ExitCode == 1 {
		return nil, true
	}
	return nil, false
}

// parseGrepLines parses "path:line:content" records as emitted by both rg
// and grep. Malformed lines are dropped.
func parseGrepLines(b []byte, dir string) []Match {
	var matches []Match
	for _, raw := range strings.Split(string(b), "\n") {
		raw = strings.TrimRight(raw, "\r")
		if raw == "" {
			continue
		}
		i := strings.Index(raw, ":")
		if i <= 0 {
			continue
		}
		j := strings.Index(raw[i+1:], ":")
		if j < 0 {
			continue
		}
		lineNo, err := strconv.Atoi(raw[i+1 : i+1+j])
		if err != nil {
			continue
		}
		rel := strings.TrimPrefix(filepath.ToSlash(raw[:i]), "./")
		matches = append(matches, Match{
			File:    filepath.Join(dir, rel),
			Line:    lineNo,
			Content: raw[i+1+j+1:],
		})
	}
	return matches
}

func truncateContents(matches []Match) []Match {
	for i, m := range matches {
		if len(m.Content) > maxLineLength {
			matches[i].Content = m.Content[:maxLineLength]
		}
	}
	return matches
}

// sortMatchesByModTime orders matches by their containing file's mtime,
// newest file first, keeping line order within a file.
func sortMatchesByModTime(matches []Match) {
	mtimes := make(map[string]time.Time)
	for _, m := range matches {
		if _, seen := mtimes[m.File]; !seen {
			if info, err := os.Stat(m.File); err == nil {
				mtimes[m.File] = info.ModTime()
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		ti, tj := mtimes[matches[i].File], mtimes[matches[j].File]
		if ti.Equal(tj) {
			return false // keep backend order within and across equal files
		}
		return ti.After(tj)
	})
}
