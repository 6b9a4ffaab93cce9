// Package skills discovers and serves skill bundles: directories whose
// SKILL.md carries YAML frontmatter (name, description) above a
// free-text instruction body the model can load on demand.
package skills

import (
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound reports a missing skill or reference document. It is the
// "absent" case, distinct from I/O failures which surface as-is.
var ErrNotFound = errors.New("not found")

// Registry holds the skills discovered under one root directory.
// Safe for concurrent reads after discovery.
type Registry struct {
	mu     sync.RWMutex
	dir    string
	skills map[string]*Skill
	loaded bool
}

// NewRegistry creates a registry rooted at dir. Nothing is read until
// Discover or the first Catalog call.
func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir, skills: make(map[string]*Skill)}
}

// Discover rescans the root directory and rebuilds the registry.
// A subdirectory is a candidate iff it contains SKILL.md; candidates
// with malformed or incomplete frontmatter are skipped, never fatal —
// one broken bundle must not take down the rest.
func (r *Registry) Discover() []*Skill {
	found := make(map[string]*Skill)

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read skills directory", "dir", r.dir, "error", err)
		}
		return r.install(found)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(r.dir, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, ManifestName)); err != nil {
			continue
		}

		skill, err := loadSkill(dir)
		if err != nil {
			slog.Warn("skipping skill", "dir", dir, "error", err)
			continue
		}
		if _, dup := found[skill.Name]; dup {
			slog.Warn("skipping skill with duplicate name", "name", skill.Name, "dir", dir)
			continue
		}
		found[skill.Name] = skill
	}

	return r.install(found)
}

func (r *Registry) install(skills map[string]*Skill) []*Skill {
	r.mu.Lock()
	r.skills = skills
	r.loaded = true
	r.mu.Unlock()
	return sorted(skills)
}

// Get returns the skill with the given name.
func (r *Registry) Get(name string) (*Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.skills[name]
	return s, ok
}

// Names returns all registered skill names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.skills))
	for name := range r.skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered skills sorted by name.
func (r *Registry) All() []*Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sorted(r.skills)
}

func sorted(skills map[string]*Skill) []*Skill {
	out := make([]*Skill, 0, len(skills))
	for _, s := range skills {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type catalogXML struct {
	XMLName xml.Name          `xml:"available_skills"`
	Skills  []catalogEntryXML `xml:"skill"`
}

type catalogEntryXML struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Location    string `xml:"location"`
}

// Catalog renders the <available_skills> listing embedded in the
// system prompt. Discovers lazily on first use.
func (r *Registry) Catalog() string {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if !loaded {
		r.Discover()
	}

	doc := catalogXML{}
	for _, s := range r.All() {
		doc.Skills = append(doc.Skills, catalogEntryXML{
			Name:        s.Name,
			Description: s.Description,
			Location:    s.ManifestPath(),
		})
	}

	b, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		slog.Warn("failed to render skill catalog", "error", err)
		return "<available_skills></available_skills>"
	}
	return string(b)
}

// LoadReference reads a document under a skill's references directory.
// Returns ErrNotFound when the skill or the file does not exist; other
// I/O failures surface as-is. Names escaping the references directory
// are rejected.
func (r *Registry) LoadReference(skillName, referenceName string) (string, error) {
	skill, ok := r.Get(skillName)
	if !ok {
		return "", fmt.Errorf("skill %q: %w", skillName, ErrNotFound)
	}

	refDir := skill.ReferencesDir()
	path := filepath.Join(refDir, referenceName)
	if rel, err := filepath.Rel(refDir, path); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("reference %q: %w", referenceName, ErrNotFound)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("reference %q: %w", referenceName, ErrNotFound)
		}
		return "", fmt.Errorf("read reference %s: %w", path, err)
	}
	return string(data), nil
}
