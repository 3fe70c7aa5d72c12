// Package scene turns a scene description into a populated simulation.
package scene

import (
	"fmt"

	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/entity"
	"github.com/san-kum/shapesim/internal/metrics"
	"github.com/san-kum/shapesim/internal/shape"
	"github.com/san-kum/shapesim/internal/simulation"
	"github.com/sirupsen/logrus"
)

// Build creates a simulation for sc with the default metrics attached.
func Build(sc *config.Scene, log logrus.FieldLogger) (*simulation.Simulation, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	cfg := simulation.DefaultConfig()
	cfg.Dt = sc.Dt
	cfg.Steps = sc.Steps
	cfg.MaxCollisions = sc.MaxCollisions

	arena := shape.NewArena()
	sim := simulation.New(cfg, arena, log)
	for _, m := range metrics.Defaults() {
		sim.AddMetric(m)
	}

	registry := NewRegistry()
	for _, ec := range sc.Entities {
		b, err := registry.GetBuilder(ec)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", ec.Name, err)
		}

		e := entity.New(arena, b)
		e.SetName(ec.Name)
		e.SetTranslation(vec(ec.Translation))
		e.SetRotation(orientation(ec.Rotation))
		e.SetEnableShapes(!ec.Disabled)

		if err := sim.Add(e); err != nil {
			return nil, fmt.Errorf("entity %q: %w", ec.Name, err)
		}
		if err := sim.SetVelocity(e, vec(ec.Velocity)); err != nil {
			return nil, err
		}
	}

	return sim, nil
}

// Find returns the hosted entity with the given name.
func Find(sim *simulation.Simulation, name string) (*entity.Entity, bool) {
	for _, e := range sim.Entities() {
		if e.Name() == name {
			return e, true
		}
	}
	return nil, false
}
