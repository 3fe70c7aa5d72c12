package entity

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shapesim/internal/shape"
)

// queryable reports whether the entity currently answers queries. Dirty
// shapes are never rebuilt here; callers build first.
func (e *Entity) queryable() bool {
	return e.shapesEnabled && !e.shapesAreDirty && len(e.shapes) > 0
}

// FindRayIntersection returns the distance to the nearest of the entity's
// shapes along the ray. On equal distances the earlier shape wins.
func (e *Entity) FindRayIntersection(origin, direction mgl64.Vec3) (float64, bool) {
	if !e.queryable() {
		return 0, false
	}
	found := false
	best := 0.0
	for _, id := range e.shapes {
		s, ok := e.arena.World(id)
		if !ok {
			continue
		}
		d, hit := shape.RayIntersection(s, origin, direction)
		if hit && (!found || d < best) {
			best, found = d, true
		}
	}
	return best, found
}

// FindCollisions tests every own shape against every shape in others and
// appends one record per overlapping pair. Existing entries are kept.
func (e *Entity) FindCollisions(others []shape.ID, collisions *shape.CollisionList) bool {
	if !e.queryable() {
		return false
	}
	added := false
	for _, id := range e.shapes {
		a, ok := e.arena.World(id)
		if !ok {
			continue
		}
		for _, other := range others {
			if other == id {
				continue
			}
			b, ok := e.arena.World(other)
			if !ok {
				continue
			}
			info, hit := shape.Collide(a, b)
			if !hit {
				continue
			}
			info.ShapeA, info.ShapeB = id, other
			if !collisions.Add(info) {
				return added
			}
			added = true
		}
	}
	return added
}

// FindSphereCollisions tests a sphere against the entity's shapes, skipping
// the shape at skipIndex (pass -1 to skip none). The sphere is side A of
// each record and carries no ID.
func (e *Entity) FindSphereCollisions(center mgl64.Vec3, radius float64, collisions *shape.CollisionList, skipIndex int) bool {
	if !e.queryable() {
		return false
	}
	probe := shape.NewSphere(center, radius)
	added := false
	for i, id := range e.shapes {
		if i == skipIndex {
			continue
		}
		s, ok := e.arena.World(id)
		if !ok {
			continue
		}
		info, hit := shape.Collide(probe, s)
		if !hit {
			continue
		}
		info.ShapeA, info.ShapeB = shape.None, id
		if !collisions.Add(info) {
			return added
		}
		added = true
	}
	return added
}

// FindPlaneCollisions tests the plane n·x + d = 0 (plane = (n, d)) against
// the entity's shapes. Each own shape is side A; the plane carries no ID.
// A zero normal matches nothing.
func (e *Entity) FindPlaneCollisions(plane mgl64.Vec4, collisions *shape.CollisionList) bool {
	probe, ok := shape.PlaneFromVec4(plane)
	if !ok || !e.queryable() {
		return false
	}
	added := false
	for _, id := range e.shapes {
		s, ok := e.arena.World(id)
		if !ok {
			continue
		}
		info, hit := shape.Collide(s, probe)
		if !hit {
			continue
		}
		info.ShapeA, info.ShapeB = id, shape.None
		if !collisions.Add(info) {
			return added
		}
		added = true
	}
	return added
}
