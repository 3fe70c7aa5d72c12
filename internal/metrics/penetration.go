package metrics

import (
	"math"

	"github.com/san-kum/shapesim/internal/simulation"
)

// MaxPenetration tracks the deepest overlap seen across a run.
type MaxPenetration struct {
	name string
	max  float64
}

func NewMaxPenetration() *MaxPenetration {
	return &MaxPenetration{
		name: "max_penetration",
	}
}

func (m *MaxPenetration) Name() string {
	return m.name
}

func (m *MaxPenetration) Observe(rec simulation.StepRecord) {
	for _, c := range rec.Contacts {
		m.max = math.Max(m.max, c.Depth)
	}
}

func (m *MaxPenetration) Value() float64 {
	return m.max
}

func (m *MaxPenetration) Reset() {
	m.max = 0
}

// MeanPenetration averages contact depth over all contacts.
type MeanPenetration struct {
	name  string
	sum   float64
	count int
}

func NewMeanPenetration() *MeanPenetration {
	return &MeanPenetration{
		name: "mean_penetration",
	}
}

func (m *MeanPenetration) Name() string {
	return m.name
}

func (m *MeanPenetration) Observe(rec simulation.StepRecord) {
	for _, c := range rec.Contacts {
		m.sum += c.Depth
		m.count++
	}
}

func (m *MeanPenetration) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

func (m *MeanPenetration) Reset() {
	m.sum = 0
	m.count = 0
}
