// Package patch turns generated diff text into filesystem writes. It
// understands the whole-file marker dialect (Add File / Update File blocks)
// and delegates anything else to an external patch-apply collaborator.
package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileMode distinguishes file creation from whole-file replacement. Both
// currently write the full content; the mode is retained for reporting.
type FileMode int

const (
	ModeCreate FileMode = iota
	ModeReplace
)

// FileChange is one parsed entry of a whole-file marker diff.
type FileChange struct {
	Path    string
	Content string
	Mode    FileMode
}

// Result reports which files a diff application wrote.
type Result struct {
	FilesWritten []string
	OK           bool
}

// Applier is the external patch-apply collaborator used for diffs that do
// not match the marker dialect.
type Applier interface {
	ApplyPatch(diffText string) (Result, error)
}

// Apply writes a diff to the workspace root. Marker-dialect diffs are parsed
// and written file by file; anything else is delegated verbatim to fallback.
// Writing is best-effort per file: one failed write is reported to stderr
// and does not abort the rest. OK is false only when nothing was written.
func Apply(diffText, workspaceRoot string, fallback Applier) Result {
	if strings.TrimSpace(diffText) == "" {
		return Result{OK: false}
	}

	changes := ParseMarkers(diffText)
	if len(changes) == 0 {
		if fallback == nil {
			return Result{OK: false}
		}
		res, err := fallback.ApplyPatch(diffText)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: patch fallback failed: %v\n", err)
			return Result{OK: false}
		}
		return res
	}

	var written []string
	for _, c := range changes {
		path := filepath.Join(workspaceRoot, c.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "warning: creating dir for %s: %v\n", c.Path, err)
			continue
		}
		if err := os.WriteFile(path, []byte(c.Content), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "warning: writing %s: %v\n", c.Path, err)
			continue
		}
		written = append(written, c.Path)
	}
	return Result{FilesWritten: written, OK: len(written) > 0}
}

// Marker prefixes. The starred forms come from the patch grammar the fixer
// emits; the bare forms appear when the model drops the stars.
var addMarkers = []string{"*** Add File:", "Add File:"}
var updateMarkers = []string{"*** Update File:", "Update File:"}

const endMarker = "*** End Patch"

// ParseMarkers tokenizes a whole-file marker diff into ordered file changes.
// Body lines run until the next marker or end of input, with separator
// artifacts (`---`, `@@`) dropped and one outermost code fence stripped.
func ParseMarkers(diffText string) []FileChange {
	lines := strings.Split(diffText, "\n")
	var changes []FileChange
	var current *FileChange
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Content = cleanBody(body)
		changes = append(changes, *current)
		current = nil
		body = nil
	}

	for _, line := range lines {
		if path, ok := markerPath(line, addMarkers); ok {
			flush()
			current = &FileChange{Path: path, Mode: ModeCreate}
			continue
		}
		if path, ok := markerPath(line, updateMarkers); ok {
			flush()
			current = &FileChange{Path: path, Mode: ModeReplace}
			continue
		}
		if strings.HasPrefix(line, endMarker) || strings.HasPrefix(line, "*** Begin Patch") {
			flush()
			continue
		}
		if current == nil {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "---" || strings.HasPrefix(trimmed, "@@") {
			continue
		}
		body = append(body, line)
	}
	flush()

	// Drop entries with no usable path.
	out := changes[:0]
	for _, c := range changes {
		if c.Path != "" {
			out = append(out, c)
		}
	}
	return out
}

func markerPath(line string, markers []string) (string, bool) {
	for _, m := range markers {
		if strings.HasPrefix(line, m) {
			return strings.TrimSpace(strings.TrimPrefix(line, m)), true
		}
	}
	return "", false
}

// cleanBody joins body lines and strips one enclosing code fence. Fences
// inside the content are preserved: only the outermost boundary is removed.
func cleanBody(lines []string) string {
	// Trim leading/trailing blank lines first so fences on their own lines
	// sit at the slice edges.
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	lines = lines[start:end]
	if len(lines) == 0 {
		return ""
	}

	if strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
