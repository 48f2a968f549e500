package repocache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"reposcout/internal/execx"
)

// defaultCloneTimeout bounds a shallow clone of a large repository.
const defaultCloneTimeout = 5 * time.Minute

// FetchError is a hard failure: the fetch backend refused the clone. It
// carries the backend's diagnostic text so the caller can self-correct
// (bad URL, unknown branch) without retrying blindly.
type FetchError struct {
	URL        string
	Branch     string
	Diagnostic string
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("clone of %s failed", e.URL)
	if e.Branch != "" {
		msg += fmt.Sprintf(" (branch %s)", e.Branch)
	}
	if e.Diagnostic != "" {
		msg += ": " + e.Diagnostic
	}
	return msg
}

// Manager maps a source URL (+ optional branch) to a local working copy under
// a fixed cache root, reusing valid entries and shallow-cloning otherwise.
// It performs no locking: callers must keep resolutions of the same identity
// serialized.
type Manager struct {
	root    string
	git     string
	run     execx.Runner
	timeout time.Duration
	log     *log.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithRunner overrides the process runner (tests inject a fake git here).
func WithRunner(r execx.Runner) Option {
	return func(m *Manager) { m.run = r }
}

// WithGitBinary overrides the git binary name.
func WithGitBinary(bin string) Option {
	return func(m *Manager) { m.git = bin }
}

// WithCloneTimeout overrides the clone timeout ceiling.
func WithCloneTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// WithLogger sets the manager's logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a cache manager rooted at root.
func NewManager(root string, opts ...Option) *Manager {
	m := &Manager{
		root:    root,
		git:     "git",
		timeout: defaultCloneTimeout,
		log:     log.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.run == nil {
		m.run = execx.CommandRunner{Timeout: m.timeout}
	}
	return m
}

// Resolve returns the local path for sourceURL at branch, fetching a fresh
// shallow copy only when no reusable entry exists. On success the path holds
// a valid working copy checked out to the requested branch.
func (m *Manager) Resolve(ctx context.Context, sourceURL, branch string) (string, error) {
	id := ParseIdentity(sourceURL, branch)
	localPath := filepath.Join(m.root, id.Dir())

	if m.reusable(ctx, localPath, branch) {
		m.log.Debug("reusing cached repository", "repo", id.Slug(), "path", localPath)
		return localPath, nil
	}

	// A stale or mismatched entry is replaced whole, never patched.
	if _, err := os.Stat(localPath); err == nil {
		m.log.Info("removing stale cache entry", "repo", id.Slug(), "path", localPath)
		if err := os.RemoveAll(localPath); err != nil {
			return "", fmt.Errorf("remove stale entry %s: %w", localPath, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("create cache directory: %w", err)
	}

	args := []string{"clone", "--depth", "1"}
	if branch != "" {
		args = append(args, "--branch", branch, "--single-branch")
	}
	args = append(args, sourceURL, localPath)

	m.log.Info("cloning repository", "repo", id.Slug(), "branch", branch)
	out := m.run.Run(ctx, "", m.git, args...)
	if !out.OK() {
		// Never leave a half-written entry behind.
		os.RemoveAll(localPath)
		return "", &FetchError{URL: sourceURL, Branch: branch, Diagnostic: out.Diagnostic()}
	}

	return localPath, nil
}

// reusable reports whether the entry at path is a valid working copy and,
// when a branch was requested, is checked out to exactly that branch.
func (m *Manager) reusable(ctx context.Context, path, branch string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	if err != nil || !info.IsDir() {
		return false
	}
	if branch == "" {
		return true
	}
	return m.currentBranch(ctx, path) == branch
}

// currentBranch returns the checked-out branch name, or "" when it cannot be
// determined (detached HEAD reports as "HEAD" and is treated as unknown).
func (m *Manager) currentBranch(ctx context.Context, path string) string {
	out := m.run.Run(ctx, path, m.git, "rev-parse", "--abbrev-ref", "HEAD")
	if !out.OK() {
		return ""
	}
	name := strings.TrimSpace(string(out.Stdout))
	if name == "HEAD" {
		return ""
	}
	return name
}
