package metrics

import (
	"github.com/san-kum/shapesim/internal/shape"
	"github.com/san-kum/shapesim/internal/simulation"
)

type pairKey struct {
	a, b shape.Owner
}

// ContactPairs counts distinct entity pairs that touched during a run.
type ContactPairs struct {
	name  string
	pairs map[pairKey]struct{}
}

func NewContactPairs() *ContactPairs {
	return &ContactPairs{
		name:  "contact_pairs",
		pairs: make(map[pairKey]struct{}),
	}
}

func (p *ContactPairs) Name() string {
	return p.name
}

func (p *ContactPairs) Observe(rec simulation.StepRecord) {
	for _, c := range rec.Contacts {
		if c.A == nil || c.B == nil {
			continue
		}
		a, b := c.A.ID(), c.B.ID()
		if a > b {
			a, b = b, a
		}
		p.pairs[pairKey{a, b}] = struct{}{}
	}
}

func (p *ContactPairs) Value() float64 {
	return float64(len(p.pairs))
}

func (p *ContactPairs) Reset() {
	p.pairs = make(map[pairKey]struct{})
}

// Defaults is the metric set attached to every scene run.
func Defaults() []simulation.Metric {
	return []simulation.Metric{
		NewContactRate(),
		NewMaxPenetration(),
		NewMeanPenetration(),
		NewContactPairs(),
	}
}
