package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
)

// ProjectsDirName is the subdirectory of the workspace root that holds
// generated project directories.
const ProjectsDirName = "generated_projects"

const metadataFile = ".project_metadata.json"

var subdirs = []string{"backend", "frontend", "database", "docs", "tests", "scripts"}

var nameClean = regexp.MustCompile(`[^a-z0-9]+`)

// Metadata is the registry entry written into every project directory.
type Metadata struct {
	Name      string    `json:"name"`
	Goal      string    `json:"goal,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	RunID     string    `json:"run_id,omitempty"`
	Status    string    `json:"status"`
}

// Manager creates and inventories project directories under a workspace root.
type Manager struct {
	Root string
}

// Project is one generated workspace.
type Project struct {
	Dir  string
	Meta Metadata
}

// Create makes a fresh uniquely named project directory with the standard
// subdirectory skeleton and an initial metadata file.
func (m *Manager) Create(name, goal string) (*Project, error) {
	clean := CleanName(name)
	dirName := fmt.Sprintf("%s_%s_%s",
		time.Now().Format("20060102_150405"), clean, uuid.NewString()[:8])
	dir := filepath.Join(m.Root, ProjectsDirName, dirName)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}
	for _, sub := range subdirs {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, err
		}
	}

	p := &Project{
		Dir: dir,
		Meta: Metadata{
			Name:      name,
			Goal:      goal,
			CreatedAt: time.Now().UTC(),
			Status:    "active",
		},
	}
	if err := p.SaveMetadata(); err != nil {
		return nil, err
	}
	return p, nil
}

// Open loads an existing project directory. Returns a project with empty
// metadata if the metadata file is missing.
func Open(dir string) (*Project, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	p := &Project{Dir: dir}
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &p.Meta); err != nil {
		return nil, err
	}
	return p, nil
}

// SaveMetadata persists the metadata file atomically.
func (p *Project) SaveMetadata() error {
	data, err := json.MarshalIndent(p.Meta, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(p.Dir, metadataFile), data, 0644)
}

// ListFiles returns project-relative paths matching the doublestar pattern,
// sorted. Pattern "**/*" lists everything.
func (p *Project) ListFiles(pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(p.Dir), pattern)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range matches {
		if strings.HasPrefix(m, ".") {
			continue
		}
		info, err := os.Stat(filepath.Join(p.Dir, m))
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

// Info is one row of the projects listing.
type Info struct {
	Dir       string
	Name      string
	CreatedAt time.Time
	SizeBytes int64
	Files     int
}

// List inventories all project directories in the workspace, newest first.
func (m *Manager) List() ([]Info, error) {
	base := filepath.Join(m.Root, ProjectsDirName)
	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []Info
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(base, e.Name())
		p, err := Open(dir)
		if err != nil {
			continue
		}
		info := Info{Dir: dir, Name: p.Meta.Name, CreatedAt: p.Meta.CreatedAt}
		if files, err := p.ListFiles("**/*"); err == nil {
			info.Files = len(files)
			for _, f := range files {
				if fi, err := os.Stat(filepath.Join(dir, f)); err == nil {
					info.SizeBytes += fi.Size()
				}
			}
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Cleanup removes all but the newest keep project directories and reports
// how many were deleted.
func (m *Manager) Cleanup(keep int) (int, error) {
	infos, err := m.List()
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	removed := 0
	for i := keep; i < len(infos); i++ {
		if err := os.RemoveAll(infos[i].Dir); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Switch records dir as the current project for subsequent status commands.
func (m *Manager) Switch(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(m.Root, ProjectsDirName, ".current"), []byte(dir+"\n"), 0644)
}

// Current returns the directory recorded by Switch, or the newest project
// when none was recorded.
func (m *Manager) Current() (string, error) {
	data, err := os.ReadFile(filepath.Join(m.Root, ProjectsDirName, ".current"))
	if err == nil {
		dir := strings.TrimSpace(string(data))
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		}
	}
	infos, err := m.List()
	if err != nil {
		return "", err
	}
	if len(infos) == 0 {
		return "", errors.New("no projects found")
	}
	return infos[0].Dir, nil
}

// CleanName lowercases a project name and collapses everything outside
// [a-z0-9] into single underscores, capped at 30 characters.
func CleanName(name string) string {
	clean := nameClean.ReplaceAllString(strings.ToLower(name), "_")
	clean = strings.Trim(clean, "_")
	if len(clean) > 30 {
		clean = clean[:30]
		clean = strings.TrimRight(clean, "_")
	}
	return clean
}
