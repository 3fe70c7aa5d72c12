package simulation

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shapesim/internal/entity"
	"github.com/san-kum/shapesim/internal/shape"
	"github.com/sirupsen/logrus"
)

type Simulation struct {
	cfg   Config
	arena *shape.Arena
	host  *entity.Host
	log   logrus.FieldLogger

	entities []*entity.Entity
	byOwner  map[shape.Owner]*entity.Entity
	velocity map[shape.Owner]mgl64.Vec3

	collisions *shape.CollisionList
	metrics    []Metric
	observers  []Observer

	step int
	time float64
}

// New creates a simulation over arena. A nil logger falls back to the
// logrus standard logger.
func New(cfg Config, arena *shape.Arena, log logrus.FieldLogger) *Simulation {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Simulation{
		cfg:        cfg,
		arena:      arena,
		log:        log,
		byOwner:    make(map[shape.Owner]*entity.Entity),
		velocity:   make(map[shape.Owner]mgl64.Vec3),
		collisions: shape.NewCollisionList(cfg.MaxCollisions),
	}
	s.host = entity.NewHost(s)
	return s
}

func (s *Simulation) Arena() *shape.Arena        { return s.arena }
func (s *Simulation) Config() Config             { return s.cfg }
func (s *Simulation) Time() float64              { return s.time }
func (s *Simulation) StepCount() int             { return s.step }
func (s *Simulation) AddMetric(m Metric)         { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o Observer)     { s.observers = append(s.observers, o) }
func (s *Simulation) Entities() []*entity.Entity { return append([]*entity.Entity(nil), s.entities...) }

// Hosts vouches for the Host created in New and no other.
func (s *Simulation) Hosts(h *entity.Host) bool { return h != nil && h == s.host }

func (s *Simulation) Contains(e *entity.Entity) bool {
	return e != nil && s.byOwner[e.ID()] == e
}

// Lookup resolves a shape owner back to a hosted entity.
func (s *Simulation) Lookup(o shape.Owner) (*entity.Entity, bool) {
	e, ok := s.byOwner[o]
	return e, ok
}

// Add hosts e, building its shapes first if needed.
func (s *Simulation) Add(e *entity.Entity) error {
	if s.Contains(e) {
		return fmt.Errorf("%w: %s", ErrDuplicate, e.Name())
	}
	if err := s.host.Attach(e); err != nil {
		return err
	}
	if e.ShapesAreDirty() {
		e.BuildShapes()
	}
	if err := e.SetShapeBackPointers(); err != nil {
		_ = s.host.Detach(e)
		return err
	}
	s.entities = append(s.entities, e)
	s.byOwner[e.ID()] = e
	s.log.WithFields(logrus.Fields{
		"entity": e.Name(),
		"shapes": len(e.Shapes()),
		"radius": e.BoundingRadius(),
	}).Debug("entity attached")
	return nil
}

// Remove stops hosting e. The entity keeps its shapes.
func (s *Simulation) Remove(e *entity.Entity) error {
	if !s.Contains(e) {
		return fmt.Errorf("%w: %s", ErrNotHosted, e.Name())
	}
	if err := s.host.Detach(e); err != nil {
		return err
	}
	for i, other := range s.entities {
		if other == e {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			break
		}
	}
	delete(s.byOwner, e.ID())
	delete(s.velocity, e.ID())
	s.log.WithField("entity", e.Name()).Debug("entity detached")
	return nil
}

func (s *Simulation) SetVelocity(e *entity.Entity, v mgl64.Vec3) error {
	if !s.Contains(e) {
		return fmt.Errorf("%w: %s", ErrNotHosted, e.Name())
	}
	if v == (mgl64.Vec3{}) {
		delete(s.velocity, e.ID())
		return nil
	}
	s.velocity[e.ID()] = v
	return nil
}

func (s *Simulation) Velocity(e *entity.Entity) mgl64.Vec3 {
	return s.velocity[e.ID()]
}

// Step advances the world by one tick and returns the contacts found.
func (s *Simulation) Step(ctx context.Context) (StepRecord, error) {
	select {
	case <-ctx.Done():
		return StepRecord{}, &StepError{Step: s.step, Time: s.time, Wrapped: ctx.Err()}
	default:
	}
	if err := s.cfg.validate(); err != nil {
		return StepRecord{}, &StepError{Step: s.step, Time: s.time, Wrapped: err}
	}

	s.advance(s.cfg.Dt)
	s.rebuildDirty()

	rec := StepRecord{Step: s.step, Time: s.time}
	rec.Overflowed = s.collide()
	rec.Contacts = s.resolveAll(s.collisions.All())

	if rec.Overflowed {
		s.log.WithFields(logrus.Fields{
			"step":     s.step,
			"capacity": s.collisions.Cap(),
		}).Warn("collision list full, contacts dropped")
	}

	for _, m := range s.metrics {
		m.Observe(rec)
	}
	for _, o := range s.observers {
		o.OnStep(rec)
	}
	return rec, nil
}

// Run steps the world. steps <= 0 uses the configured step count.
func (s *Simulation) Run(ctx context.Context, steps int) (*Result, error) {
	if err := s.cfg.validate(); err != nil {
		return nil, err
	}
	if steps <= 0 {
		steps = s.cfg.Steps
	}

	result := &Result{
		Records: make([]StepRecord, 0, steps),
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; i < steps; i++ {
		rec, err := s.Step(ctx)
		if err != nil {
			return result, err
		}
		result.Records = append(result.Records, rec)
		result.StepsTaken++
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	s.log.WithFields(logrus.Fields{
		"steps":    result.StepsTaken,
		"entities": len(s.entities),
	}).Info("run complete")
	return result, nil
}

func (s *Simulation) advance(dt float64) {
	for _, e := range s.entities {
		if v, ok := s.velocity[e.ID()]; ok {
			e.SetTranslation(e.Translation().Add(v.Mul(dt)))
		}
	}
	s.step++
	s.time += dt
}

func (s *Simulation) rebuildDirty() {
	for _, e := range s.entities {
		if !e.ShapesAreDirty() {
			continue
		}
		e.BuildShapes()
		s.log.WithField("entity", e.Name()).Debug("shapes rebuilt")
	}
}

// collide fills the collision list for every hosted pair whose bounding
// spheres touch. It reports whether the list reached capacity.
func (s *Simulation) collide() bool {
	s.collisions.Clear()
	for i, a := range s.entities {
		if !a.ShapesEnabled() {
			continue
		}
		for _, b := range s.entities[i+1:] {
			if !b.ShapesEnabled() || !boundsTouch(a, b) {
				continue
			}
			a.FindCollisions(b.Shapes(), s.collisions)
			if s.collisions.Full() {
				return true
			}
		}
	}
	return false
}

func boundsTouch(a, b *entity.Entity) bool {
	reach := a.BoundingRadius() + b.BoundingRadius()
	if math.IsInf(reach, 1) {
		return true
	}
	return a.Translation().Sub(b.Translation()).Len() <= reach
}

// Resolve walks a collision's shape back-references to hosted entities.
func (s *Simulation) Resolve(info shape.CollisionInfo) (a, b *entity.Entity) {
	a = s.byOwner[s.arena.Owner(info.ShapeA)]
	b = s.byOwner[s.arena.Owner(info.ShapeB)]
	return a, b
}

func (s *Simulation) resolveAll(infos []shape.CollisionInfo) []Contact {
	out := make([]Contact, len(infos))
	for i, info := range infos {
		a, b := s.Resolve(info)
		out[i] = Contact{A: a, B: b, Info: info, Depth: info.Depth()}
	}
	return out
}

// FindRayIntersection returns the nearest hit across all hosted entities.
// Equal distances resolve to the entity added first.
func (s *Simulation) FindRayIntersection(origin, direction mgl64.Vec3) (RayHit, bool) {
	dir := direction
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	} else {
		return RayHit{}, false
	}

	var (
		mu       sync.Mutex
		best     = math.Inf(1)
		bestIdx  = -1
		entities = s.entities
	)
	ParallelFor(len(entities), s.cfg.ParallelMin, s.cfg.Workers, func(start, end int) {
		localBest, localIdx := math.Inf(1), -1
		for i := start; i < end; i++ {
			e := entities[i]
			if !mayHit(e, origin, dir) {
				continue
			}
			if d, ok := e.FindRayIntersection(origin, dir); ok && d < localBest {
				localBest, localIdx = d, i
			}
		}
		if localIdx < 0 {
			return
		}
		mu.Lock()
		if localBest < best || (localBest == best && localIdx < bestIdx) {
			best, bestIdx = localBest, localIdx
		}
		mu.Unlock()
	})

	if bestIdx < 0 {
		return RayHit{}, false
	}
	return RayHit{
		Entity:   entities[bestIdx],
		Distance: best,
		Point:    origin.Add(dir.Mul(best)),
	}, true
}

// mayHit culls entities whose bounding sphere the ray misses.
func mayHit(e *entity.Entity, origin, dir mgl64.Vec3) bool {
	r := e.BoundingRadius()
	if math.IsInf(r, 1) {
		return true
	}
	_, ok := shape.RayIntersection(shape.NewSphere(e.Translation(), r), origin, dir)
	return ok
}

// FindSphereCollisions probes every hosted entity with a sphere.
func (s *Simulation) FindSphereCollisions(center mgl64.Vec3, radius float64) []Contact {
	list := shape.NewCollisionList(s.cfg.MaxCollisions)
	for _, e := range s.entities {
		d := e.Translation().Sub(center).Len()
		if d > e.BoundingRadius()+radius {
			continue
		}
		e.FindSphereCollisions(center, radius, list, -1)
	}
	return s.resolveAll(list.All())
}

// FindPlaneCollisions probes every hosted entity with a plane.
func (s *Simulation) FindPlaneCollisions(plane mgl64.Vec4) []Contact {
	list := shape.NewCollisionList(s.cfg.MaxCollisions)
	for _, e := range s.entities {
		e.FindPlaneCollisions(plane, list)
	}
	return s.resolveAll(list.All())
}
