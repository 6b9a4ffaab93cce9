package skills

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestName is the file that marks a directory as a skill bundle.
const ManifestName = "SKILL.md"

// Metadata is the optional frontmatter beyond name and description.
type Metadata struct {
	License       string         `yaml:"license"`
	Compatibility string         `yaml:"compatibility"`
	AllowedTools  string         `yaml:"allowed-tools"`
	Extra         map[string]any `yaml:"metadata"`
}

// Skill is a loaded skill bundle. Immutable after discovery.
type Skill struct {
	Name         string
	Description  string
	Path         string // absolute bundle directory
	Instructions string // SKILL.md body after the frontmatter
	Meta         Metadata
}

// ScriptsDir returns the bundle's scripts directory.
func (s *Skill) ScriptsDir() string { return filepath.Join(s.Path, "scripts") }

// ReferencesDir returns the bundle's references directory.
func (s *Skill) ReferencesDir() string { return filepath.Join(s.Path, "references") }

// AssetsDir returns the bundle's assets directory.
func (s *Skill) AssetsDir() string { return filepath.Join(s.Path, "assets") }

// ManifestPath returns the absolute path of the bundle's SKILL.md.
func (s *Skill) ManifestPath() string { return filepath.Join(s.Path, ManifestName) }

type frontmatter struct {
	Name          string         `yaml:"name"`
	Description   string         `yaml:"description"`
	License       string         `yaml:"license"`
	Compatibility string         `yaml:"compatibility"`
	AllowedTools  string         `yaml:"allowed-tools"`
	Extra         map[string]any `yaml:"metadata"`
}

// loadSkill parses a bundle directory into a Skill. Any error means
// the candidate is not admissible; discovery treats them all the same.
func loadSkill(dir string) (*Skill, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	data, err := os.ReadFile(filepath.Join(abs, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	header, body, err := splitFrontmatter(string(data))
	if err != nil {
		return nil, err
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	fm.Name = strings.TrimSpace(fm.Name)
	fm.Description = strings.TrimSpace(fm.Description)
	if fm.Name == "" {
		return nil, errors.New("frontmatter.name is required")
	}
	if fm.Description == "" {
		return nil, errors.New("frontmatter.description is required")
	}

	return &Skill{
		Name:         fm.Name,
		Description:  fm.Description,
		Path:         abs,
		Instructions: strings.TrimSpace(body),
		Meta: Metadata{
			License:       fm.License,
			Compatibility: fm.Compatibility,
			AllowedTools:  fm.AllowedTools,
			Extra:         fm.Extra,
		},
	}, nil
}

// splitFrontmatter separates the YAML header (between two --- marker
// lines, the first of which must open the file) from the body.
func splitFrontmatter(content string) (header, body string, err error) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(strings.TrimRight(lines[0], "\r")) != "---" {
		return "", "", errors.New("manifest must open with a --- frontmatter marker")
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(strings.TrimRight(lines[i], "\r")) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n"), nil
		}
	}
	return "", "", errors.New("unterminated frontmatter (missing closing ---)")
}
