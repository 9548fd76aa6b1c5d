package gecs

import "github.com/go-gl/mathgl/mgl32"

// Built-in components common to most simulations. Games define their own
// component types alongside these; any struct works as a component.

// Pos3 stores an object's position and orientation in 3D space.
type Pos3 struct {
	Pos mgl32.Vec3
	Rot mgl32.Quat
}

// NewPos3 creates a position component with identity rotation.
func NewPos3(pos mgl32.Vec3) Pos3 {
	return Pos3{Pos: pos, Rot: mgl32.QuatIdent()}
}

// Translated returns a copy shifted by delta.
func (p Pos3) Translated(delta mgl32.Vec3) Pos3 {
	p.Pos = p.Pos.Add(delta)
	return p
}

// Scale stores an object's scale. A zero value means unscaled.
type Scale struct {
	X, Y, Z float32
}

// UniformScale creates a scale component with the same factor on all axes.
func UniformScale(f float32) Scale {
	return Scale{X: f, Y: f, Z: f}
}

// Vec3 returns the scale as a vector, mapping the zero value to identity.
func (s Scale) Vec3() mgl32.Vec3 {
	if s == (Scale{}) {
		return mgl32.Vec3{1, 1, 1}
	}
	return mgl32.Vec3{s.X, s.Y, s.Z}
}

// Name labels an entity for debugging and lookup.
type Name string

// Health tracks a damageable entity's hit points.
type Health struct {
	Current float32
	Max     float32
}

// Alive reports whether the entity has hit points left.
func (h Health) Alive() bool {
	return h.Current > 0
}

// Damage reduces current health, clamping at zero.
func (h *Health) Damage(amount float32) {
	h.Current -= amount
	if h.Current < 0 {
		h.Current = 0
	}
}

// Heal raises current health, clamping at Max.
func (h *Health) Heal(amount float32) {
	h.Current += amount
	if h.Current > h.Max {
		h.Current = h.Max
	}
}

// Marker components carry no data; their presence on an entity is the
// signal. Systems filter on them through EntitiesWith or bitmask matching.

// PlayerMarker tags the player-controlled entity.
type PlayerMarker struct{}

// CameraMarker tags the active camera entity.
type CameraMarker struct{}

// StaticMarker tags entities that never move; movement systems skip them.
type StaticMarker struct{}
