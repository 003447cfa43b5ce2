package data

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/skarn/worldsim/internal/anim"
)

type animFile struct {
	GenericIdle anim.Meta   `yaml:"generic_idle"`
	Animations  []anim.Meta `yaml:"animations"`
}

// LoadAnimations reads animations.yaml from the data directory into a
// resolver. A missing file yields a resolver with only the built-in idle,
// which is enough for headless runs.
func LoadAnimations(dataDir string) (*anim.Resolver, error) {
	path := filepath.Join(dataDir, "animations.yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("no animation metadata, using generic idle only", "path", path)
			return anim.NewResolver(anim.Meta{Name: "S_RUN", Model: "HUMANS", Loop: true}), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var file animFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	idle := file.GenericIdle
	if idle.Name == "" {
		idle = anim.Meta{Name: "S_RUN", Model: "HUMANS", Loop: true}
	}
	resolver := anim.NewResolver(idle)
	for i, m := range file.Animations {
		if m.Name == "" || m.Model == "" {
			return nil, fmt.Errorf("%s: animation %d missing name or model", path, i)
		}
		resolver.Register(m)
	}

	slog.Info("loaded animation metadata", "count", len(file.Animations), "path", path)
	return resolver, nil
}

// DataDirOrDefault resolves the data directory path relative to the
// working directory.
func DataDirOrDefault(dir string) string {
	if dir == "" {
		dir = "data"
	}
	return filepath.Clean(dir)
}
