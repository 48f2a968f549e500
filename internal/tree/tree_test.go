package tree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reposcout/internal/ignore"
)

func writeFiles(t *testing.T, dir string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))
	}
}

func TestListRendersHierarchy(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.txt", "a/x.go", "a/b/y.go", "c.txt")

	l := NewLister(ignore.Default())
	listing := l.List(dir, nil)

	expected := strings.Join([]string{
		filepath.Base(dir) + "/",
		"  a/",
		"    b/",
		"      y.go",
		"    x.go",
		"  b.txt",
		"  c.txt",
	}, "\n")
	assert.Equal(t, expected, listing.Tree)
	assert.Equal(t, 4, listing.FileCount)
	assert.False(t, listing.Truncated)
}

func TestListSkipsIgnoredDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "main.go", "node_modules/dep/index.js", "vendor/lib.go")

	l := NewLister(ignore.Default())
	listing := l.List(dir, nil)

	assert.Equal(t, 1, listing.FileCount)
	assert.NotContains(t, listing.Tree, "node_modules")
	assert.NotContains(t, listing.Tree, "vendor")
}

func TestListExtraIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "main.go", "testdata/fixture.json")

	l := NewLister(ignore.Default())
	listing := l.List(dir, []string{"testdata"})

	assert.Equal(t, 1, listing.FileCount)
	assert.NotContains(t, listing.Tree, "testdata")
}

func TestListCapsAtLimit(t *testing.T) {
	dir := t.TempDir()
	var rels []string
	for i := 0; i < 150; i++ {
		rels = append(rels, fmt.Sprintf("f%03d.txt", i))
	}
	writeFiles(t, dir, rels...)

	l := NewLister(ignore.Default())
	listing := l.List(dir, nil)

	assert.Equal(t, DefaultLimit, listing.FileCount)
	assert.True(t, listing.Truncated)
}

func TestListMissingDirectoryIsSoft(t *testing.T) {
	l := NewLister(ignore.Default())
	listing := l.List(filepath.Join(t.TempDir(), "nope"), nil)

	assert.Contains(t, listing.Tree, "Error listing directory")
	assert.Zero(t, listing.FileCount)
	assert.False(t, listing.Truncated)
}

func TestRenderEmptyStillEmitsRoot(t *testing.T) {
	assert.Equal(t, "root/", Render("root/", nil))
}

func TestRenderDirsBeforeFiles(t *testing.T) {
	out := Render("r/", []string{"zz.txt", "aa/f.txt"})

	// The aa/ subtree renders before the root-level file despite sort order.
	assert.Less(t, strings.Index(out, "aa/"), strings.Index(out, "zz.txt"))
}
