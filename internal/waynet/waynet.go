// Package waynet holds the navigation graph of the world: named waypoints
// and point-of-interest freepoints, plus the waypoint mover that walks
// entities between them.
package waynet

import (
	"fmt"
	"strings"

	"github.com/skarn/worldsim/internal/model"
)

// Waypoint is a named navigation node.
type Waypoint struct {
	Name string
	Pos  model.Vec3
}

// Freepoint is a point-of-interest slot (bench, smith anvil, bed). At most
// one entity occupies a freepoint at a time.
type Freepoint struct {
	Name       string
	Pos        model.Vec3
	Dir        float64 // facing, radians
	occupiedBy uint32  // 0 = free
}

// Net is the loaded waypoint/freepoint graph. Static after load.
type Net struct {
	waypoints  map[string]*Waypoint
	freepoints map[string]*Freepoint
}

// NewNet creates an empty net.
func NewNet() *Net {
	return &Net{
		waypoints:  make(map[string]*Waypoint),
		freepoints: make(map[string]*Freepoint),
	}
}

// AddWaypoint registers a waypoint. Names are case-insensitive.
func (n *Net) AddWaypoint(name string, pos model.Vec3) {
	key := strings.ToUpper(name)
	n.waypoints[key] = &Waypoint{Name: key, Pos: pos}
}

// AddFreepoint registers a freepoint.
func (n *Net) AddFreepoint(name string, pos model.Vec3, dir float64) {
	key := strings.ToUpper(name)
	n.freepoints[key] = &Freepoint{Name: key, Pos: pos, Dir: dir}
}

// Waypoint looks up a waypoint by name.
func (n *Net) Waypoint(name string) (*Waypoint, bool) {
	wp, ok := n.waypoints[strings.ToUpper(name)]
	return wp, ok
}

// Freepoint looks up a freepoint by exact name.
func (n *Net) Freepoint(name string) (*Freepoint, bool) {
	fp, ok := n.freepoints[strings.ToUpper(name)]
	return fp, ok
}

// NearestFreepoint returns the closest unoccupied freepoint whose name
// contains the given fragment (e.g. "SMITH" matches "FP_SMITH_ANVIL_01").
func (n *Net) NearestFreepoint(fragment string, from model.Vec3) (*Freepoint, bool) {
	fragment = strings.ToUpper(fragment)
	var best *Freepoint
	bestDist := 0.0
	for _, fp := range n.freepoints {
		if fp.occupiedBy != 0 {
			continue
		}
		if !strings.Contains(fp.Name, fragment) {
			continue
		}
		d := fp.Pos.DistanceSquared(from)
		if best == nil || d < bestDist {
			best = fp
			bestDist = d
		}
	}
	return best, best != nil
}

// Claim marks the freepoint as occupied by the entity.
// Returns an error when it is already claimed by someone else.
func (n *Net) Claim(name string, entityID uint32) error {
	fp, ok := n.Freepoint(name)
	if !ok {
		return fmt.Errorf("freepoint %q not found", name)
	}
	if fp.occupiedBy != 0 && fp.occupiedBy != entityID {
		return fmt.Errorf("freepoint %q occupied by entity %d", name, fp.occupiedBy)
	}
	fp.occupiedBy = entityID
	return nil
}

// Release frees every freepoint claimed by the entity.
func (n *Net) Release(entityID uint32) {
	for _, fp := range n.freepoints {
		if fp.occupiedBy == entityID {
			fp.occupiedBy = 0
		}
	}
}

// Occupied reports whether the freepoint is claimed.
func (n *Net) Occupied(name string) bool {
	fp, ok := n.Freepoint(name)
	return ok && fp.occupiedBy != 0
}

// WaypointCount returns the number of loaded waypoints.
func (n *Net) WaypointCount() int {
	return len(n.waypoints)
}

// FreepointCount returns the number of loaded freepoints.
func (n *Net) FreepointCount() int {
	return len(n.freepoints)
}
