package entity

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shapesim/internal/shape"
)

// Builder computes an entity's shapes from variant-specific state. The set
// of builders is closed; the implementations below are the only ones.
type Builder interface {
	// Shapes returns the entity's shapes in entity-local space.
	Shapes() []shape.Shape
	// BakesPose reports whether built shapes are frozen in world space, in
	// which case every pose change invalidates them.
	BakesPose() bool
	sealed()
}

type SphereBuilder struct {
	Offset mgl64.Vec3
	Radius float64
}

func (b SphereBuilder) Shapes() []shape.Shape {
	return []shape.Shape{shape.NewSphere(b.Offset, b.Radius)}
}

func (SphereBuilder) BakesPose() bool { return false }
func (SphereBuilder) sealed()         {}

// CapsuleBuilder produces a capsule standing along local +Y.
type CapsuleBuilder struct {
	Offset     mgl64.Vec3
	Radius     float64
	HalfHeight float64
}

func (b CapsuleBuilder) Shapes() []shape.Shape {
	return []shape.Shape{shape.NewCapsule(b.Offset, mgl64.QuatIdent(), b.Radius, b.HalfHeight)}
}

func (CapsuleBuilder) BakesPose() bool { return false }
func (CapsuleBuilder) sealed()         {}

// ChainBuilder lays Count spheres along local +X, centred on the origin.
// It stands in for jointed bodies whose colliders follow a skeleton.
type ChainBuilder struct {
	Count   int
	Radius  float64
	Spacing float64
}

func (b ChainBuilder) Shapes() []shape.Shape {
	if b.Count <= 0 {
		return nil
	}
	out := make([]shape.Shape, b.Count)
	start := -b.Spacing * float64(b.Count-1) / 2
	for i := range out {
		out[i] = shape.NewSphere(mgl64.Vec3{start + float64(i)*b.Spacing, 0, 0}, b.Radius)
	}
	return out
}

func (ChainBuilder) BakesPose() bool { return false }
func (ChainBuilder) sealed()         {}

// PlaneBuilder holds a plane in local implicit form.
type PlaneBuilder struct {
	Normal mgl64.Vec3
	Offset float64
}

func (b PlaneBuilder) Shapes() []shape.Shape {
	return []shape.Shape{shape.NewPlane(b.Normal, b.Offset)}
}

func (PlaneBuilder) BakesPose() bool { return false }
func (PlaneBuilder) sealed()         {}

// CompoundBuilder is an explicit list of local shapes.
type CompoundBuilder struct {
	Parts []shape.Shape
}

func (b CompoundBuilder) Shapes() []shape.Shape {
	out := make([]shape.Shape, len(b.Parts))
	copy(out, b.Parts)
	return out
}

func (CompoundBuilder) BakesPose() bool { return false }
func (CompoundBuilder) sealed()         {}

// StaticBuilder bakes its parts into world space when built. Used for
// scenery that rarely moves and is queried often.
type StaticBuilder struct {
	Parts []shape.Shape
}

func (b StaticBuilder) Shapes() []shape.Shape {
	return CompoundBuilder(b).Shapes()
}

func (StaticBuilder) BakesPose() bool { return true }
func (StaticBuilder) sealed()         {}
