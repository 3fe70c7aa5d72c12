package entity

import "fmt"

// Host is the capability to set an entity's simulation back-reference.
// A Host only acts while its simulation vouches for it through
// [Simulator.Hosts], so a Host built by anyone else is inert.
type Host struct {
	sim Simulator
}

// NewHost binds a Host to sim. The simulation must keep the returned
// value private and answer Hosts(h) with true only for it.
func NewHost(sim Simulator) *Host {
	return &Host{sim: sim}
}

func (h *Host) check() error {
	if h == nil || h.sim == nil || !h.sim.Hosts(h) {
		return ErrForeignHost
	}
	return nil
}

// Attach records the host's simulation on e. Re-attaching to the same
// simulation is a no-op.
func (h *Host) Attach(e *Entity) error {
	if err := h.check(); err != nil {
		return fmt.Errorf("%w: %s", err, e.Name())
	}
	if e.arena != h.sim.Arena() {
		return fmt.Errorf("%w: %s", ErrForeignArena, e.Name())
	}
	if e.simulation != nil && e.simulation != h.sim {
		return fmt.Errorf("%w: %s", ErrAttached, e.Name())
	}
	e.simulation = h.sim
	return nil
}

func (h *Host) Detach(e *Entity) error {
	if err := h.check(); err != nil {
		return fmt.Errorf("%w: %s", err, e.Name())
	}
	if e.simulation != h.sim {
		return fmt.Errorf("%w: %s", ErrNotAttached, e.Name())
	}
	e.simulation = nil
	return nil
}
