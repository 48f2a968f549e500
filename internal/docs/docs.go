package docs

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"reposcout/internal/tree"
)

// rootCandidates are probed in order at the repository root; the first that
// exists is the docs root.
var rootCandidates = []string{"docs", "documentation", "doc"}

// markdownExts are the documentation file extensions collected.
var markdownExts = map[string]bool{
	".md":       true,
	".mdx":      true,
	".markdown": true,
	".rst":      true,
	".txt":      true,
}

const (
	// DefaultMaxResults is how many ranked files a docs search returns.
	DefaultMaxResults = 10
	// snippetsPerFile caps matching lines shown per file; the file's score
	// still counts every matching line.
	snippetsPerFile = 5
	// snippetLength caps each shown line.
	snippetLength = 200
	// maxSuggestions caps similar-path hints on a missing doc.
	maxSuggestions = 5
)

// Entry is one discovered documentation file.
type Entry struct {
	AbsPath string
	RelPath string // relative to the docs root
}

// ListResult describes a repository's documentation folder. DocsPath is empty
// when no conventional docs folder exists.
type ListResult struct {
	DocsPath  string
	Tree      string
	FileCount int
	Files     []Entry
}

// ReadResult is the outcome of reading one doc. A missing docs root or file
// is a soft failure: Exists is false and Content explains, with similar-path
// suggestions where any exist.
type ReadResult struct {
	Content  string
	FullPath string
	Exists   bool
}

// Snippet is one matching line of a docs search.
type Snippet struct {
	Line int
	Text string
}

// FileHits is one ranked file of a docs search. Score counts every matching
// line in the file, even beyond the snippet cap.
type FileHits struct {
	File     string // relative to the docs root
	Score    int
	Snippets []Snippet
}

// SearchOutcome ranks files for a query. TotalMatches sums the score of every
// matching file, not only the returned ones, so truncation to maxResults
// never hides the relevance signal.
type SearchOutcome struct {
	Results      []FileHits
	TotalMatches int
}

// findRoot returns the docs root under repoPath, or "" if none exists.
func findRoot(repoPath string) string {
	for _, name := range rootCandidates {
		candidate := filepath.Join(repoPath, name)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return ""
}

// collect gathers every markdown-family file under root, skipping hidden
// directories and dependency folders.
func collect(root string) []Entry {
	var entries []Entry
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if !markdownExts[strings.ToLower(filepath.Ext(name))] {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		entries = append(entries, Entry{AbsPath: path, RelPath: filepath.ToSlash(rel)})
		return nil
	})
	return entries
}

// ListDocs discovers the docs root of repoPath and returns its markdown files
// with a rendered tree relative to that root.
func ListDocs(repoPath string) *ListResult {
	root := findRoot(repoPath)
	if root == "" {
		return &ListResult{Tree: "No documentation folder found (looked for: " + strings.Join(rootCandidates, ", ") + ")"}
	}

	files := collect(root)
	rels := make([]string, len(files))
	for i, f := range files {
		rels[i] = f.RelPath
	}

	return &ListResult{
		DocsPath:  root,
		Tree:      tree.Render(filepath.Base(root)+"/", rels),
		FileCount: len(files),
		Files:     files,
	}
}

// ReadDoc reads one documentation file by its path relative to the docs root.
func ReadDoc(repoPath, docPath string) *ReadResult {
	root := findRoot(repoPath)
	if root == "" {
		return &ReadResult{
			Content: "No documentation folder found in " + repoPath,
		}
	}

	full := filepath.Join(root, filepath.FromSlash(docPath))
	data, err := os.ReadFile(full)
	if err == nil {
		return &ReadResult{Content: string(data), FullPath: full, Exists: true}
	}

	msg := fmt.Sprintf("Documentation file not found: %s", docPath)
	if suggestions := suggestDocs(root, docPath); len(suggestions) > 0 {
		msg += "\n\nSimilar files:\n  " + strings.Join(suggestions, "\n  ")
	}
	return &ReadResult{Content: msg, FullPath: full}
}

// suggestDocs lists discovered docs whose relative path shares a substring
// with the requested path, in either direction.
func suggestDocs(root, docPath string) []string {
	want := strings.ToLower(filepath.ToSlash(docPath))

	var out []string
	for _, e := range collect(root) {
		have := strings.ToLower(e.RelPath)
		if strings.Contains(have, want) || strings.Contains(want, have) {
			out = append(out, e.RelPath)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}

// SearchDocs scans every doc file for lines containing any whitespace-
// separated query token, case-insensitively, and ranks files by their total
// matching-line count.
func SearchDocs(repoPath, query string, maxResults int) *SearchOutcome {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	tokens := strings.Fields(strings.ToLower(query))
	root := findRoot(repoPath)
	if root == "" || len(tokens) == 0 {
		return &SearchOutcome{}
	}

	var hits []FileHits
	total := 0
	for _, e := range collect(root) {
		h := scanFile(e, tokens)
		if h.Score == 0 {
			continue
		}
		total += h.Score
		hits = append(hits, h)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].File < hits[j].File
	})
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}

	return &SearchOutcome{Results: hits, TotalMatches: total}
}

func scanFile(e Entry, tokens []string) FileHits {
	f, err := os.Open(e.AbsPath)
	if err != nil {
		return FileHits{File: e.RelPath}
	}
	defer f.Close()

	h := FileHits{File: e.RelPath}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !containsAny(strings.ToLower(line), tokens) {
			continue
		}
		h.Score++
		if len(h.Snippets) < snippetsPerFile {
			text := strings.TrimSpace(line)
			if len(text) > snippetLength {
				text = text[:snippetLength]
			}
			h.Snippets = append(h.Snippets, Snippet{Line: lineNo, Text: text})
		}
	}
	return h
}

func containsAny(line string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(line, t) {
			return true
		}
	}
	return false
}
