package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Project is the optional per-project configuration loaded from neon.yaml
// next to the entry script (or any parent directory).
type Project struct {
	StackMax    int      `yaml:"stackMax"`
	FramesMax   int      `yaml:"framesMax"`
	ModuleRoots []string `yaml:"moduleRoots"`
}

const projectFileName = "neon.yaml"

// DefaultProject returns the configuration used when no neon.yaml exists.
func DefaultProject() *Project {
	return &Project{
		StackMax:  DefaultStackMax,
		FramesMax: DefaultFramesMax,
	}
}

// LoadProject walks upward from dir looking for neon.yaml. A missing file is
// not an error; a malformed one is.
func LoadProject(dir string) (*Project, error) {
	p := DefaultProject()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return p, nil
	}
	for {
		candidate := filepath.Join(abs, projectFileName)
		data, err := os.ReadFile(candidate)
		if err == nil {
			if err := yaml.Unmarshal(data, p); err != nil {
				return nil, fmt.Errorf("config: %s: %w", candidate, err)
			}
			if p.StackMax <= 0 {
				p.StackMax = DefaultStackMax
			}
			if p.FramesMax <= 0 {
				p.FramesMax = DefaultFramesMax
			}
			return p, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return p, nil
		}
		abs = parent
	}
}
