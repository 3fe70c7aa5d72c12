// Package shape provides collidable primitives and the arena that owns them.
//
// Shapes live in an [Arena] and are referred to by stable [ID] handles.
// Every slot carries an [Owner] back-reference so that a [CollisionInfo]
// naming two shapes can be walked back to the entities that hold them:
//
//	arena := shape.NewArena()
//	id := arena.Alloc(shape.NewSphere(mgl64.Vec3{}, 1))
//	_ = arena.SetOwner(id, owner)
//
// Released handles are never reused, so a stale [ID] held by a collision
// record resolves to "missing" rather than to a different shape.
//
// # Geometry
//
// [Collide] tests two world-space shapes for overlap and [RayIntersection]
// casts a ray against one shape. Planes are the surface of the solid
// half-space behind their normal.
package shape
