// Package simulation hosts entities and gathers their collisions.
//
// A [Simulation] owns the [shape.Arena] its entities allocate from and the
// private [entity.Host] capability that sets their back-references. Each
// [Simulation.Step] moves kinematic entities, rebuilds dirty shapes, culls
// pairs on bounding radius and collects narrow-phase collisions into a
// bounded list:
//
//	arena := shape.NewArena()
//	s := simulation.New(simulation.DefaultConfig(), arena, logrus.StandardLogger())
//	_ = s.Add(entity.New(arena, entity.SphereBuilder{Radius: 1}))
//	result, _ := s.Run(ctx, 100)
//
// # Thread Safety
//
// Simulation instances are NOT thread-safe. Ray casts fan out over worker
// goroutines internally but only read entity state.
package simulation
