package entity

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shapesim/internal/shape"
)

// Simulator is the read-only view an entity keeps of its host.
type Simulator interface {
	Contains(e *Entity) bool
	Arena() *shape.Arena
	// Hosts reports whether h is the Host this simulator issued.
	Hosts(h *Host) bool
}

type Entity struct {
	id      shape.Owner
	name    string
	arena   *shape.Arena
	builder Builder

	translation    mgl64.Vec3
	rotation       mgl64.Quat
	boundingRadius float64
	shapesAreDirty bool
	shapesEnabled  bool
	shapes         []shape.ID

	simulation Simulator
}

func New(arena *shape.Arena, builder Builder) *Entity {
	return &Entity{
		id:             arena.NewOwner(),
		arena:          arena,
		builder:        builder,
		rotation:       mgl64.QuatIdent(),
		shapesAreDirty: true,
		shapesEnabled:  true,
	}
}

func (e *Entity) ID() shape.Owner         { return e.id }
func (e *Entity) Arena() *shape.Arena     { return e.arena }
func (e *Entity) Builder() Builder        { return e.builder }
func (e *Entity) Translation() mgl64.Vec3 { return e.translation }
func (e *Entity) Rotation() mgl64.Quat    { return e.rotation }
func (e *Entity) BoundingRadius() float64 { return e.boundingRadius }
func (e *Entity) ShapesAreDirty() bool    { return e.shapesAreDirty }
func (e *Entity) ShapesEnabled() bool     { return e.shapesEnabled }
func (e *Entity) Simulation() Simulator   { return e.simulation }

// SetEnableShapes toggles whether queries see the shapes. Disabled shapes
// stay owned.
func (e *Entity) SetEnableShapes(enable bool) { e.shapesEnabled = enable }

func (e *Entity) Name() string {
	if e.name == "" {
		return fmt.Sprintf("entity-%d", e.id)
	}
	return e.name
}

func (e *Entity) SetName(name string) { e.name = name }

// Shapes returns a copy of the owned handles in order.
func (e *Entity) Shapes() []shape.ID {
	out := make([]shape.ID, len(e.shapes))
	copy(out, e.shapes)
	return out
}

func (e *Entity) Pose() shape.Pose {
	return shape.Pose{Translation: e.translation, Rotation: e.rotation}
}

func (e *Entity) SetTranslation(v mgl64.Vec3) {
	e.translation = v
	e.poseChanged()
}

func (e *Entity) SetRotation(q mgl64.Quat) {
	e.rotation = q.Normalize()
	e.poseChanged()
}

// poseChanged moves live shapes to the new pose. Baked shapes cannot move
// and are invalidated instead.
func (e *Entity) poseChanged() {
	if e.builder != nil && e.builder.BakesPose() {
		e.shapesAreDirty = true
		return
	}
	pose := e.Pose()
	for _, id := range e.shapes {
		_ = e.arena.SetPose(id, pose)
	}
}

// SetBuilder replaces the variant state; shapes are rebuilt on the next
// BuildShapes.
func (e *Entity) SetBuilder(b Builder) {
	e.builder = b
	e.shapesAreDirty = true
}

// BuildShapes replaces the current shapes with the builder's output.
// Building twice without a state change produces an equivalent set.
func (e *Entity) BuildShapes() {
	e.releaseShapes()
	if e.builder != nil {
		parts := e.builder.Shapes()
		e.shapes = make([]shape.ID, 0, len(parts))
		for _, s := range parts {
			e.shapes = append(e.shapes, e.place(s))
		}
		e.boundingRadius = boundingRadius(parts)
	}
	e.shapesAreDirty = false
}

// AddShape appends a local-space shape outside of the builder. It is lost
// on the next rebuild.
func (e *Entity) AddShape(s shape.Shape) shape.ID {
	id := e.place(s)
	e.shapes = append(e.shapes, id)
	e.boundingRadius = math.Max(e.boundingRadius, s.BoundingRadius())
	return id
}

// place allocates s owned by e, either following the entity pose or baked
// into world space.
func (e *Entity) place(s shape.Shape) shape.ID {
	if e.builder != nil && e.builder.BakesPose() {
		return e.arena.AllocOwned(s.Transformed(e.Pose()), e.id)
	}
	id := e.arena.AllocOwned(s, e.id)
	_ = e.arena.SetPose(id, e.Pose())
	return id
}

// RemoveShape destroys the shape at index i.
func (e *Entity) RemoveShape(i int) bool {
	if i < 0 || i >= len(e.shapes) {
		return false
	}
	e.arena.Release(e.shapes[i])
	e.shapes = append(e.shapes[:i], e.shapes[i+1:]...)
	e.boundingRadius = e.measure()
	return true
}

// ClearShapes destroys every owned shape and marks the entity dirty.
func (e *Entity) ClearShapes() {
	e.releaseShapes()
	e.boundingRadius = 0
	e.shapesAreDirty = true
}

// Destroy releases everything the entity owns. A hosted entity is
// refused; remove it from its simulation first.
func (e *Entity) Destroy() error {
	if e.simulation != nil {
		return fmt.Errorf("%w: %s", ErrHosted, e.Name())
	}
	e.ClearShapes()
	return nil
}

func (e *Entity) releaseShapes() {
	for _, id := range e.shapes {
		e.arena.Release(id)
	}
	e.shapes = e.shapes[:0]
}

// SetShapeBackPointers points every owned shape back at this entity.
// Membership changes already do this; the call is for re-syncing after
// ownership was cleared from the arena side.
func (e *Entity) SetShapeBackPointers() error {
	for _, id := range e.shapes {
		if err := e.arena.SetOwner(id, e.id); err != nil {
			return fmt.Errorf("entity %s: %w", e.Name(), err)
		}
	}
	return nil
}

func (e *Entity) measure() float64 {
	parts := make([]shape.Shape, 0, len(e.shapes))
	for _, id := range e.shapes {
		if s, ok := e.arena.Get(id); ok {
			parts = append(parts, s)
		}
	}
	if e.builder != nil && e.builder.BakesPose() {
		// baked shapes are stored in world space
		inv := shape.Pose{Rotation: e.rotation.Inverse()}
		inv.Translation = inv.Rotation.Rotate(e.translation.Mul(-1))
		for i := range parts {
			parts[i] = parts[i].Transformed(inv)
		}
	}
	return boundingRadius(parts)
}

func boundingRadius(parts []shape.Shape) float64 {
	r := 0.0
	for _, s := range parts {
		r = math.Max(r, s.BoundingRadius())
	}
	return r
}
