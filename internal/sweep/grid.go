// Package sweep runs a scene across a grid of parameter values, mainly to
// find the timestep and speed at which fast bodies start to tunnel.
package sweep

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/scene"
	"github.com/san-kum/shapesim/internal/simulation"
	"github.com/sirupsen/logrus"
)

// Parameters understood by Apply.
const (
	ParamDt     = "dt"     // timestep; the step count follows so the duration holds
	ParamSpeed  = "speed"  // velocity multiplier
	ParamRadius = "radius" // radius multiplier for every sphere and capsule
)

var known = map[string]bool{ParamDt: true, ParamSpeed: true, ParamRadius: true}

type Point struct {
	Params  map[string]float64
	Metrics map[string]float64
	Steps   int
	Err     error
}

type Grid struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGrid(params []string, ranges [][]float64) (*Grid, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("sweep: %d params but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if !known[name] {
			return nil, fmt.Errorf("sweep: unknown parameter %q", name)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("sweep: no values for %q", name)
		}
		for _, v := range ranges[i] {
			if v <= 0 {
				return nil, fmt.Errorf("sweep: %s must be positive, got %f", name, v)
			}
		}
	}
	return &Grid{paramNames: params, ranges: ranges, workers: runtime.NumCPU()}, nil
}

func (g *Grid) SetWorkers(n int) { g.workers = n }

// Combinations lists every grid point, varying the last parameter fastest.
func (g *Grid) Combinations() []map[string]float64 {
	var out []map[string]float64
	g.combine(0, make(map[string]float64), &out)
	return out
}

func (g *Grid) combine(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.combine(depth+1, newParams, out)
	}
}

// Run simulates base at every grid point. Points are independent and run in
// parallel; a failed point keeps its error and does not stop the others.
func (g *Grid) Run(ctx context.Context, base *config.Scene, log logrus.FieldLogger) ([]Point, error) {
	combos := g.Combinations()
	points := make([]Point, len(combos))

	simulation.ParallelFor(len(combos), 1, g.workers, func(start, end int) {
		for i := start; i < end; i++ {
			points[i] = runPoint(ctx, base, combos[i], log)
		}
	})

	if err := ctx.Err(); err != nil {
		return points, err
	}
	return points, nil
}

func runPoint(ctx context.Context, base *config.Scene, params map[string]float64, log logrus.FieldLogger) Point {
	p := Point{Params: params}

	sc := Apply(base, params)
	p.Steps = sc.Steps

	sim, err := scene.Build(sc, log)
	if err != nil {
		p.Err = err
		return p
	}
	result, err := sim.Run(ctx, sc.Steps)
	if err != nil {
		p.Err = err
		return p
	}
	p.Metrics = result.Metrics
	return p
}

// Apply returns a copy of base with params applied. base is not modified.
func Apply(base *config.Scene, params map[string]float64) *config.Scene {
	sc := *base
	sc.Entities = make([]config.EntityConfig, len(base.Entities))
	for i, e := range base.Entities {
		e.Parts = append([]config.PartConfig(nil), e.Parts...)
		sc.Entities[i] = e
	}

	if dt, ok := params[ParamDt]; ok {
		duration := float64(base.Steps) * base.Dt
		sc.Dt = dt
		sc.Steps = max(int(math.Round(duration/dt)), 1)
	}
	if speed, ok := params[ParamSpeed]; ok {
		for i := range sc.Entities {
			for j := range sc.Entities[i].Velocity {
				sc.Entities[i].Velocity[j] *= speed
			}
		}
	}
	if scale, ok := params[ParamRadius]; ok {
		for i := range sc.Entities {
			e := &sc.Entities[i]
			e.Radius = scaled(e.Radius, scale)
			for j := range e.Parts {
				e.Parts[j].Radius = scaled(e.Parts[j].Radius, scale)
			}
		}
	}
	return &sc
}

// scaled treats an unset radius as the default one.
func scaled(r, scale float64) float64 {
	if r == 0 {
		r = config.DefaultRadius
	}
	return r * scale
}

// Best returns the successful point with the lowest value of metric, or the
// highest when maximize is set.
func Best(points []Point, metric string, maximize bool) (Point, bool) {
	var (
		best  Point
		found bool
	)
	for _, p := range points {
		if p.Err != nil {
			continue
		}
		v, ok := p.Metrics[metric]
		if !ok {
			continue
		}
		if !found || (maximize && v > best.Metrics[metric]) || (!maximize && v < best.Metrics[metric]) {
			best = p
			found = true
		}
	}
	return best, found
}
