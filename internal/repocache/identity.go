package repocache

import (
	"path/filepath"
	"strings"
)

// Identity names a repository working copy: the last two path segments of the
// source URL plus the requested branch. Identical URL+branch always derives
// the same identity; distinct branches of the same repo never share a
// directory.
type Identity struct {
	Owner  string
	Name   string
	Branch string
}

// ParseIdentity derives an identity from a source URL and optional branch.
// It strips a trailing ".git" and reads the last two non-empty segments
// delimited by '/' or ':', so both https and scp-style git URLs work.
func ParseIdentity(sourceURL, branch string) Identity {
	trimmed := strings.TrimSuffix(strings.TrimRight(sourceURL, "/"), ".git")

	segs := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '/' || r == ':'
	})

	id := Identity{Owner: "_", Name: "repo", Branch: branch}
	switch {
	case len(segs) >= 2:
		id.Owner = segs[len(segs)-2]
		id.Name = segs[len(segs)-1]
	case len(segs) == 1:
		id.Name = segs[0]
	}
	return id
}

// Dir returns the entry path relative to the cache root: "owner/name", or
// "owner/name@branch" when a branch was requested. Slashes in branch names
// are mapped to '-' to stay filesystem-safe.
func (id Identity) Dir() string {
	name := id.Name
	if id.Branch != "" {
		name += "@" + strings.ReplaceAll(id.Branch, "/", "-")
	}
	return filepath.Join(id.Owner, name)
}

// Slug returns "owner/name" for log and error messages.
func (id Identity) Slug() string {
	return id.Owner + "/" + id.Name
}
