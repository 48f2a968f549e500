package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, repo, rel, content string) {
	t.Helper()
	path := filepath.Join(repo, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestListDocsDiscovery(t *testing.T) {
	repo := t.TempDir()
	writeDoc(t, repo, "docs/readme.md", "# Hello\n")
	writeDoc(t, repo, "docs/guide/setup.md", "setup\n")
	writeDoc(t, repo, "docs/notes.txt", "notes\n")
	writeDoc(t, repo, "docs/image.png", "binary")
	writeDoc(t, repo, "docs/.hidden/secret.md", "shh\n")
	writeDoc(t, repo, "docs/node_modules/dep.md", "dep\n")

	res := ListDocs(repo)
	assert.Equal(t, filepath.Join(repo, "docs"), res.DocsPath)
	assert.Equal(t, 3, res.FileCount)

	rels := make([]string, len(res.Files))
	for i, f := range res.Files {
		rels[i] = f.RelPath
	}
	assert.Contains(t, rels, "guide/setup.md")
	assert.NotContains(t, rels, "image.png")
	assert.NotContains(t, rels, ".hidden/secret.md")
	assert.NotContains(t, rels, "node_modules/dep.md")

	assert.Contains(t, res.Tree, "docs/")
	assert.Contains(t, res.Tree, "setup.md")
}

func TestListDocsCandidateOrder(t *testing.T) {
	repo := t.TempDir()
	writeDoc(t, repo, "doc/a.md", "a\n")
	writeDoc(t, repo, "documentation/b.md", "b\n")

	// "documentation" outranks "doc" in the candidate list.
	res := ListDocs(repo)
	assert.Equal(t, filepath.Join(repo, "documentation"), res.DocsPath)
}

func TestListDocsAbsent(t *testing.T) {
	res := ListDocs(t.TempDir())
	assert.Empty(t, res.DocsPath)
	assert.Zero(t, res.FileCount)
	assert.Contains(t, res.Tree, "No documentation folder")
}

func TestReadDoc(t *testing.T) {
	repo := t.TempDir()
	writeDoc(t, repo, "docs/guide/setup.md", "# Setup\n")

	res := ReadDoc(repo, "guide/setup.md")
	assert.True(t, res.Exists)
	assert.Equal(t, "# Setup\n", res.Content)
	assert.Equal(t, filepath.Join(repo, "docs/guide/setup.md"), res.FullPath)
}

func TestReadDocMissingWithSuggestions(t *testing.T) {
	repo := t.TempDir()
	writeDoc(t, repo, "docs/guide/setup.md", "# Setup\n")

	res := ReadDoc(repo, "setup.md")
	assert.False(t, res.Exists)
	assert.Contains(t, res.Content, "not found")
	assert.Contains(t, res.Content, "guide/setup.md")
}

func TestReadDocNoDocsRoot(t *testing.T) {
	res := ReadDoc(t.TempDir(), "anything.md")
	assert.False(t, res.Exists)
	assert.Contains(t, res.Content, "No documentation folder")
}

func TestSearchDocsRanking(t *testing.T) {
	repo := t.TempDir()
	writeDoc(t, repo, "docs/memory.md",
		"agent memory design\nthe agent stores context\nmemory is bounded\nunrelated line\n")
	writeDoc(t, repo, "docs/other.md",
		"nothing here\nagents appear once\n")

	res := SearchDocs(repo, "agent memory", 10)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "memory.md", res.Results[0].File)
	assert.Equal(t, 3, res.Results[0].Score)
	assert.Equal(t, 1, res.Results[1].Score)
	assert.Equal(t, 4, res.TotalMatches)
}

func TestSearchDocsSnippetCapKeepsFullScore(t *testing.T) {
	repo := t.TempDir()
	content := ""
	for i := 0; i < 7; i++ {
		content += "keyword line\n"
	}
	writeDoc(t, repo, "docs/big.md", content)

	res := SearchDocs(repo, "keyword", 10)
	require.Len(t, res.Results, 1)
	assert.Equal(t, 7, res.Results[0].Score)
	assert.Len(t, res.Results[0].Snippets, 5)
	assert.Equal(t, 7, res.TotalMatches)
}

func TestSearchDocsMaxResultsKeepsTotal(t *testing.T) {
	repo := t.TempDir()
	writeDoc(t, repo, "docs/a.md", "term\nterm\n")
	writeDoc(t, repo, "docs/b.md", "term\n")

	res := SearchDocs(repo, "term", 1)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "a.md", res.Results[0].File)
	// TotalMatches still counts the file dropped by max_results.
	assert.Equal(t, 3, res.TotalMatches)
}

func TestSearchDocsCaseInsensitive(t *testing.T) {
	repo := t.TempDir()
	writeDoc(t, repo, "docs/a.md", "The AGENT runs\n")

	res := SearchDocs(repo, "agent", 10)
	require.Len(t, res.Results, 1)
	assert.Equal(t, 1, res.Results[0].Snippets[0].Line)
}

func TestSearchDocsNoDocsRoot(t *testing.T) {
	res := SearchDocs(t.TempDir(), "query", 10)
	assert.Empty(t, res.Results)
	assert.Zero(t, res.TotalMatches)
}

func TestSearchDocsTruncatesSnippets(t *testing.T) {
	repo := t.TempDir()
	long := "keyword "
	for len(long) < 300 {
		long += "padding "
	}
	writeDoc(t, repo, "docs/long.md", long+"\n")

	res := SearchDocs(repo, "keyword", 10)
	require.Len(t, res.Results, 1)
	assert.LessOrEqual(t, len(res.Results[0].Snippets[0].Text), 200)
}
