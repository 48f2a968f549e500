package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultLimit is the window size when the caller gives none.
	DefaultLimit = 2000
	// MaxFileSize rejects whole-file reads above this ceiling; larger files
	// must be inspected through narrower offset/limit windows.
	MaxFileSize = 10 << 20
	// maxLineLength truncates individual lines before display.
	maxLineLength = 2000
	// maxSuggestions caps nearby-name hints on a missing file.
	maxSuggestions = 3
)

// NotFoundError is a hard failure: the requested file does not exist.
// Suggestions hold up to three sibling names resembling the requested one.
type NotFoundError struct {
	Path        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("file not found: %s", e.Path)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// TooLargeError is a hard failure: the file exceeds the read ceiling.
type TooLargeError struct {
	Path string
	Size int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file too large: %s is %d bytes (limit %d); read it in windows with offset and limit",
		e.Path, e.Size, int64(MaxFileSize))
}

// ReadResult is one window of a file.
type ReadResult struct {
	// Content is the rendered window: numbered lines wrapped in explicit
	// begin/end markers, plus a continuation hint when more lines remain.
	Content    string
	TotalLines int
	HasMore    bool
}

// Read returns the window [offset, offset+limit) of the file's lines,
// 0-based offset, each line prefixed with its 1-based number. A relative
// path resolves against the current working directory.
func Read(path string, offset, limit int) (*ReadResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: abs, Suggestions: suggestSiblings(abs)}
		}
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", abs)
	}
	if info.Size() > MaxFileSize {
		return nil, &TooLargeError{Path: abs, Size: info.Size()}
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}

	lines := strings.Split(string(data), "\n")
	// A trailing newline yields one empty final element, not an extra line.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	total := len(lines)

	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	window := lines[start:end]
	hasMore := total > offset+len(window)

	var sb strings.Builder
	if len(window) == 0 {
		fmt.Fprintf(&sb, "--- BEGIN %s (no lines in window; file has %d lines) ---\n", abs, total)
	} else {
		fmt.Fprintf(&sb, "--- BEGIN %s (lines %d-%d of %d) ---\n", abs, start+1, end, total)
	}
	for i, line := range window {
		if len(line) > maxLineLength {
			line = line[:maxLineLength] + "... [truncated]"
		}
		fmt.Fprintf(&sb, "%6d\t%s\n", start+i+1, line)
	}
	fmt.Fprintf(&sb, "--- END %s ---", abs)
	if hasMore {
		fmt.Fprintf(&sb, "\n(%d more lines. Continue reading with offset=%d.)", total-end, end)
	}

	return &ReadResult{Content: sb.String(), TotalLines: total, HasMore: hasMore}, nil
}

// suggestSiblings lists entries in the missing file's directory whose names
// share a case-insensitive substring with the requested base name.
func suggestSiblings(abs string) []string {
	entries, err := os.ReadDir(filepath.Dir(abs))
	if err != nil {
		return nil
	}
	want := strings.ToLower(filepath.Base(abs))

	var out []string
	for _, e := range entries {
		have := strings.ToLower(e.Name())
		if strings.Contains(have, want) || strings.Contains(want, have) {
			out = append(out, e.Name())
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}
