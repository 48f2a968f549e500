package tree

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"reposcout/internal/ignore"
)

// DefaultLimit caps how many files a listing considers.
const DefaultLimit = 100

// Listing is the rendered view of a directory. Enumeration failures are soft:
// the error text lands inside Tree with FileCount zero.
type Listing struct {
	Tree      string
	FileCount int
	Truncated bool
}

// Lister renders capped recursive directory trees.
type Lister struct {
	ign   ignore.Matcher
	limit int
}

// NewLister creates a lister over the given ignore policy.
func NewLister(ign ignore.Matcher) *Lister {
	return &Lister{ign: ign, limit: DefaultLimit}
}

// List enumerates dir recursively, honoring the ignore policy plus any
// caller-supplied extra patterns, and renders the hierarchy implied by the
// retained files.
func (l *Lister) List(dir string, extraIgnore []string) *Listing {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return &Listing{Tree: fmt.Sprintf("Error listing directory: %v", err)}
	}
	if _, err := os.Stat(abs); err != nil {
		return &Listing{Tree: fmt.Sprintf("Error listing directory: %v", err)}
	}

	matcher := l.ign.Extended(extraIgnore...)

	var rels []string
	truncated := false
	walkErr := filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(abs, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if matcher.Match(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.Match(rel) {
			return nil
		}
		if len(rels) == l.limit {
			truncated = true
			return fs.SkipAll
		}
		rels = append(rels, rel)
		return nil
	})
	if walkErr != nil {
		return &Listing{Tree: fmt.Sprintf("Error listing directory: %v", walkErr)}
	}

	return &Listing{
		Tree:      Render(filepath.Base(abs)+"/", rels),
		FileCount: len(rels),
		Truncated: truncated,
	}
}

// node is one directory level: child directories by name plus the files
// directly at this level.
type node struct {
	dirs  map[string]*node
	files []string
}

func newNode() *node {
	return &node{dirs: map[string]*node{}}
}

func (n *node) insert(rel string) {
	segs := strings.Split(rel, "/")
	cur := n
	for _, seg := range segs[:len(segs)-1] {
		child, ok := cur.dirs[seg]
		if !ok {
			child = newNode()
			cur.dirs[seg] = child
		}
		cur = child
	}
	cur.files = append(cur.files, segs[len(segs)-1])
}

// Render builds the hierarchy implied by the flat relative paths and renders
// it depth-first: subdirectories before files at each level, both sorted,
// indentation proportional to depth. The root label always comes first, even
// over an empty path list.
func Render(rootLabel string, rels []string) string {
	root := newNode()
	for _, rel := range rels {
		root.insert(rel)
	}

	var sb strings.Builder
	sb.WriteString(rootLabel)
	renderNode(&sb, root, 1)
	return sb.String()
}

func renderNode(sb *strings.Builder, n *node, depth int) {
	indent := strings.Repeat("  ", depth)

	names := make([]string, 0, len(n.dirs))
	for name := range n.dirs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(sb, "\n%s%s/", indent, name)
		renderNode(sb, n.dirs[name], depth+1)
	}

	files := append([]string(nil), n.files...)
	sort.Strings(files)
	for _, f := range files {
		fmt.Fprintf(sb, "\n%s%s", indent, f)
	}
}
