package repocache

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reposcout/internal/execx"
)

// fakeGit scripts git invocations and records them.
type fakeGit struct {
	calls  []string
	script func(dir string, args []string) execx.Outcome
}

func (f *fakeGit) Run(ctx context.Context, dir, name string, args ...string) execx.Outcome {
	f.calls = append(f.calls, strings.Join(args, " "))
	return f.script(dir, args)
}

func (f *fakeGit) cloneCalls() int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, "clone ") {
			n++
		}
	}
	return n
}

// seedEntry materializes a fake working copy with a .git marker.
func seedEntry(t *testing.T, root, dir string) string {
	t.Helper()
	path := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(path, ".git"), 0o755))
	return path
}

func TestResolveReusesValidEntry(t *testing.T) {
	root := t.TempDir()
	seedEntry(t, root, "spf13/cobra@main")

	git := &fakeGit{script: func(dir string, args []string) execx.Outcome {
		if args[0] == "rev-parse" {
			return execx.Outcome{Stdout: []byte("main\n")}
		}
		t.Fatalf("unexpected git call: %v", args)
		return execx.Outcome{}
	}}
	m := NewManager(root, WithRunner(git))

	path, err := m.Resolve(context.Background(), "https://github.com/spf13/cobra.git", "main")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "spf13/cobra@main"), path)
	assert.Zero(t, git.cloneCalls())
}

func TestResolveIdempotent(t *testing.T) {
	root := t.TempDir()
	seedEntry(t, root, "spf13/cobra")

	git := &fakeGit{script: func(dir string, args []string) execx.Outcome {
		return execx.Outcome{Stdout: []byte("main\n")}
	}}
	m := NewManager(root, WithRunner(git))

	first, err := m.Resolve(context.Background(), "https://github.com/spf13/cobra.git", "")
	require.NoError(t, err)
	second, err := m.Resolve(context.Background(), "https://github.com/spf13/cobra.git", "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Zero(t, git.cloneCalls())
}

func TestResolveClonesWhenMissing(t *testing.T) {
	root := t.TempDir()

	git := &fakeGit{}
	git.script = func(dir string, args []string) execx.Outcome {
		if args[0] == "clone" {
			dest := args[len(args)-1]
			if err := os.MkdirAll(filepath.Join(dest, ".git"), 0o755); err != nil {
				return execx.Outcome{Err: err, ExitCode: -1}
			}
			return execx.Outcome{}
		}
		return execx.Outcome{Stdout: []byte("main\n")}
	}
	m := NewManager(root, WithRunner(git))

	path, err := m.Resolve(context.Background(), "https://github.com/golang/go.git", "")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(path, ".git"))
	assert.Equal(t, 1, git.cloneCalls())

	// Clone args carry the shallow-fetch contract.
	assert.Contains(t, git.calls[0], "--depth 1")
}

func TestResolveReplacesBranchMismatch(t *testing.T) {
	root := t.TempDir()
	old := seedEntry(t, root, "golang/go@release")
	sentinel := filepath.Join(old, "stale.txt")
	require.NoError(t, os.WriteFile(sentinel, []byte("old"), 0o644))

	git := &fakeGit{}
	git.script = func(dir string, args []string) execx.Outcome {
		switch args[0] {
		case "rev-parse":
			return execx.Outcome{Stdout: []byte("main\n")} // wrong branch
		case "clone":
			dest := args[len(args)-1]
			os.MkdirAll(filepath.Join(dest, ".git"), 0o755)
			return execx.Outcome{}
		}
		return execx.Outcome{}
	}
	m := NewManager(root, WithRunner(git))

	path, err := m.Resolve(context.Background(), "https://github.com/golang/go.git", "release")
	require.NoError(t, err)
	assert.Equal(t, 1, git.cloneCalls())
	assert.Contains(t, git.calls[len(git.calls)-1], "--branch release")
	assert.NoFileExists(t, filepath.Join(path, "stale.txt"))
}

func TestResolveDetachedHeadNotReused(t *testing.T) {
	root := t.TempDir()
	seedEntry(t, root, "golang/go@main")

	git := &fakeGit{}
	git.script = func(dir string, args []string) execx.Outcome {
		switch args[0] {
		case "rev-parse":
			return execx.Outcome{Stdout: []byte("HEAD\n")}
		case "clone":
			os.MkdirAll(filepath.Join(args[len(args)-1], ".git"), 0o755)
			return execx.Outcome{}
		}
		return execx.Outcome{}
	}
	m := NewManager(root, WithRunner(git))

	_, err := m.Resolve(context.Background(), "https://github.com/golang/go.git", "main")
	require.NoError(t, err)
	assert.Equal(t, 1, git.cloneCalls())
}

func TestResolveFetchFailure(t *testing.T) {
	root := t.TempDir()

	git := &fakeGit{script: func(dir string, args []string) execx.Outcome {
		return execx.Outcome{ExitCode: 128, Stderr: []byte("fatal: repository not found")}
	}}
	m := NewManager(root, WithRunner(git))

	_, err := m.Resolve(context.Background(), "https://github.com/nobody/missing.git", "")
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Contains(t, fetchErr.Diagnostic, "repository not found")

	// No half-written entry survives a failed fetch.
	assert.NoDirExists(t, filepath.Join(root, "nobody/missing"))
}

func TestResolveMissingGitBinary(t *testing.T) {
	root := t.TempDir()

	git := &fakeGit{script: func(dir string, args []string) execx.Outcome {
		return execx.Outcome{Err: exec.ErrNotFound, ExitCode: -1}
	}}
	m := NewManager(root, WithRunner(git))

	_, err := m.Resolve(context.Background(), "https://github.com/golang/go.git", "")
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
}
