// Package anim defines the animation request surface consumed by the
// rendered-character handle and the metadata resolver that supplies blend
// durations and fallback chains.
package anim

import "strings"

// Request describes one animation to apply on a character handle.
type Request struct {
	Name       string
	ModelName  string // source skeleton/animation-set key
	Loop       bool
	ResetTime  bool
	BlendInMs  int
	BlendOutMs int
	// Fallbacks are tried in order when Name is missing on the model.
	Fallbacks []string
	// Next chains a second animation after the first completes.
	Next *Request
}

// Handle is the rendered character of one entity. Implemented by the
// scene-graph layer; the simulation only calls through this surface.
type Handle interface {
	// Update advances the skeleton/pose by elapsed seconds.
	Update(dtSeconds float64)
	// SetAnimation applies an animation request.
	SetAnimation(req Request)
	// ActiveAnimation returns the currently playing animation name,
	// empty when idle-posed.
	ActiveAnimation() string
}

// Meta is the resolved metadata of one animation.
type Meta struct {
	Name       string `yaml:"name"`
	Model      string `yaml:"model"`
	BlendInMs  int    `yaml:"blend_in_ms"`
	BlendOutMs int    `yaml:"blend_out_ms"`
	DurationMs int    `yaml:"duration_ms"`
	Loop       bool   `yaml:"loop"`
	// RootMotion is the forward displacement, in world units, the clip
	// moves the body over its full duration. Zero for in-place clips.
	RootMotion float64 `yaml:"root_motion"`
}

// Resolver maps (model key, animation name) to blend metadata.
// Missing names resolve through an ordered fallback list; the final
// fallback is a generic idle so a request never fails outright.
type Resolver struct {
	byModel     map[string]map[string]Meta
	genericIdle Meta
}

// NewResolver creates an empty resolver with the given generic idle.
func NewResolver(genericIdle Meta) *Resolver {
	return &Resolver{
		byModel:     make(map[string]map[string]Meta),
		genericIdle: genericIdle,
	}
}

// Register adds one animation's metadata.
func (r *Resolver) Register(m Meta) {
	model := strings.ToUpper(m.Model)
	m.Name = strings.ToUpper(m.Name)
	byName, ok := r.byModel[model]
	if !ok {
		byName = make(map[string]Meta)
		r.byModel[model] = byName
	}
	byName[m.Name] = m
}

// Resolve looks up one animation on a model.
func (r *Resolver) Resolve(modelKey, name string) (Meta, bool) {
	byName, ok := r.byModel[strings.ToUpper(modelKey)]
	if !ok {
		return Meta{}, false
	}
	m, ok := byName[strings.ToUpper(name)]
	return m, ok
}

// ResolveFirst returns the first resolvable name from the list, falling back
// to the generic idle when none resolves.
func (r *Resolver) ResolveFirst(modelKey string, names ...string) Meta {
	for _, name := range names {
		if m, ok := r.Resolve(modelKey, name); ok {
			return m
		}
	}
	return r.genericIdle
}

// RequestFor builds a Request from resolved metadata.
func RequestFor(m Meta, resetTime bool) Request {
	return Request{
		Name:       m.Name,
		ModelName:  m.Model,
		Loop:       m.Loop,
		ResetTime:  resetTime,
		BlendInMs:  m.BlendInMs,
		BlendOutMs: m.BlendOutMs,
	}
}
