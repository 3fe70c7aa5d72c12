package entity

import "errors"

var (
	// ErrAttached indicates the entity is already hosted by another simulation.
	ErrAttached = errors.New("entity: attached to a different simulation")

	// ErrNotAttached indicates a detach from a simulation that does not host the entity.
	ErrNotAttached = errors.New("entity: not attached to this simulation")

	// ErrForeignArena indicates the entity's shapes live in another arena.
	ErrForeignArena = errors.New("entity: shape arena does not match simulation")

	// ErrForeignHost indicates a Host its simulation does not vouch for.
	ErrForeignHost = errors.New("entity: host not issued by its simulation")

	// ErrHosted indicates an operation that needs the entity out of any simulation.
	ErrHosted = errors.New("entity: still hosted by a simulation")
)
