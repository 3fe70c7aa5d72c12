package simulation

import (
	"fmt"
	"runtime"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shapesim/internal/entity"
	"github.com/san-kum/shapesim/internal/shape"
)

type Config struct {
	Dt            float64
	Steps         int
	MaxCollisions int // 0 means unbounded
	Workers       int
	ParallelMin   int // entities per worker before ray casts fan out
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Steps:         500,
		MaxCollisions: 1024,
		Workers:       runtime.NumCPU(),
		ParallelMin:   64,
	}
}

func (c Config) validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, c.Dt)
	}
	if c.MaxCollisions < 0 {
		return fmt.Errorf("%w: max collisions must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Contact is a collision resolved back to the entities involved. A side
// without an entity (a synthetic query shape) has a nil pointer.
type Contact struct {
	A, B  *entity.Entity
	Info  shape.CollisionInfo
	Depth float64
}

type StepRecord struct {
	Step     int
	Time     float64
	Contacts []Contact
	// Overflowed is set when the collision list hit capacity; contacts past
	// that point were not gathered.
	Overflowed bool
}

type RayHit struct {
	Entity   *entity.Entity
	Distance float64
	Point    mgl64.Vec3
}

type Metric interface {
	Name() string
	Observe(rec StepRecord)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(rec StepRecord)
}

type Result struct {
	Records    []StepRecord
	Metrics    map[string]float64
	StepsTaken int
}

// CollisionCounts returns the number of contacts per recorded step.
func (r *Result) CollisionCounts() []float64 {
	out := make([]float64, len(r.Records))
	for i, rec := range r.Records {
		out[i] = float64(len(rec.Contacts))
	}
	return out
}
