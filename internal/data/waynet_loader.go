package data

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/skarn/worldsim/internal/model"
	"github.com/skarn/worldsim/internal/waynet"
)

type waypointDef struct {
	Name string  `yaml:"name"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Z    float64 `yaml:"z"`
}

type freepointDef struct {
	Name string  `yaml:"name"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Z    float64 `yaml:"z"`
	Dir  float64 `yaml:"dir"` // facing, radians
}

type waynetFile struct {
	Waypoints  []waypointDef  `yaml:"waypoints"`
	Freepoints []freepointDef `yaml:"freepoints"`
}

// LoadWaynet reads waynet.yaml from the data directory into a fresh net.
func LoadWaynet(dataDir string) (*waynet.Net, error) {
	path := filepath.Join(dataDir, "waynet.yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var file waynetFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	net := waynet.NewNet()
	for i, wp := range file.Waypoints {
		if wp.Name == "" {
			return nil, fmt.Errorf("%s: waypoint %d has no name", path, i)
		}
		net.AddWaypoint(wp.Name, model.Vec3{X: wp.X, Y: wp.Y, Z: wp.Z})
	}
	for i, fp := range file.Freepoints {
		if fp.Name == "" {
			return nil, fmt.Errorf("%s: freepoint %d has no name", path, i)
		}
		net.AddFreepoint(fp.Name, model.Vec3{X: fp.X, Y: fp.Y, Z: fp.Z}, fp.Dir)
	}

	slog.Info("loaded waynet",
		"waypoints", net.WaypointCount(),
		"freepoints", net.FreepointCount(),
		"path", path)
	return net, nil
}
