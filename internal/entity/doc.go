// Package entity implements objects that own collidable shapes.
//
// An [Entity] holds an ordered list of shape handles allocated from a
// shared [shape.Arena]. Its geometry comes from a [Builder]; shapes are
// built lazily with [Entity.BuildShapes] and every query returns "no hit"
// until they are:
//
//	e := entity.New(arena, entity.ChainBuilder{Count: 3, Radius: 0.5, Spacing: 1})
//	e.BuildShapes()
//	dist, ok := e.FindRayIntersection(origin, dir)
//
// Shape back-references are kept in sync on every membership change, so
// each handle in [Entity.Shapes] reports the entity as its owner.
//
// # Simulations
//
// Only a [Host] can set the simulation an entity belongs to. A simulation
// creates its own Host, keeps it private and vouches for it through
// [Simulator.Hosts]; a Host made by anyone else fails with [ErrForeignHost].
// Callers can read [Entity.Simulation] but not change it.
//
// # Thread Safety
//
// Entities are NOT thread-safe. Mutations (pose setters, BuildShapes,
// ClearShapes) need exclusive access; queries may run concurrently with
// each other but not with mutations.
package entity
