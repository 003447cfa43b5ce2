package model

import "math"

// Vec3 represents a position or displacement in world space (centimeters).
// Value type, passed by value (immutable).
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// NewVec3 creates a Vec3 with the given components.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the component-wise sum of both vectors.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns the component-wise difference v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns the vector multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Length returns the Euclidean length.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// DistanceTo returns the Euclidean distance to the other point.
func (v Vec3) DistanceTo(o Vec3) float64 {
	return v.Sub(o).Length()
}

// DistanceSquared returns the squared distance (no sqrt, for range checks).
func (v Vec3) DistanceSquared(o Vec3) float64 {
	d := v.Sub(o)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

// HorizontalDistance returns the distance ignoring the Y (up) axis.
func (v Vec3) HorizontalDistance(o Vec3) float64 {
	dx := v.X - o.X
	dz := v.Z - o.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// YawForward returns the unit forward vector for a yaw angle (radians),
// yaw 0 looking down +Z, increasing counter-clockwise.
func YawForward(yaw float64) Vec3 {
	return Vec3{X: math.Sin(yaw), Y: 0, Z: math.Cos(yaw)}
}
