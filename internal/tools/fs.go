package tools

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var skipDirs = map[string]bool{
	".git":         true,
	".conduct":     true,
	"node_modules": true,
	"__pycache__":  true,
	".venv":        true,
}

// ListFiles returns the dir-relative paths of all regular files under dir,
// sorted, with build and VCS noise skipped.
func (t *Toolbox) ListFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// ReadFile reads a file into a string.
func (t *Toolbox) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteFile writes a file, creating parent directories as needed.
func (t *Toolbox) WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// CondenseLog trims a long process log down to its head, any error-bearing
// lines, and its tail so it fits in a prompt without losing the failure.
func CondenseLog(text string, maxLines int) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= maxLines {
		return text
	}
	head := maxLines / 3
	tail := maxLines / 3
	var errLines []string
	for _, l := range lines[head : len(lines)-tail] {
		low := strings.ToLower(l)
		if strings.Contains(low, "error") || strings.Contains(low, "traceback") || strings.Contains(low, "failed") {
			errLines = append(errLines, l)
			if len(errLines) >= maxLines-head-tail {
				break
			}
		}
	}
	var b strings.Builder
	for _, l := range lines[:head] {
		b.WriteString(l)
		b.WriteString("\n")
	}
	if len(errLines) > 0 {
		b.WriteString(fmt.Sprintf("... (%d lines elided) ...\n", len(lines)-head-tail))
		for _, l := range errLines {
			b.WriteString(l)
			b.WriteString("\n")
		}
	}
	b.WriteString("... (tail) ...\n")
	for _, l := range lines[len(lines)-tail:] {
		b.WriteString(l)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
