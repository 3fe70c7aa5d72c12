package metrics

import "github.com/san-kum/shapesim/internal/simulation"

// ContactRate is the fraction of steps with at least one contact.
type ContactRate struct {
	name     string
	touching int
	samples  int
}

func NewContactRate() *ContactRate {
	return &ContactRate{
		name: "contact_rate",
	}
}

func (c *ContactRate) Name() string {
	return c.name
}

func (c *ContactRate) Observe(rec simulation.StepRecord) {
	c.samples++
	if len(rec.Contacts) > 0 {
		c.touching++
	}
}

func (c *ContactRate) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.touching) / float64(c.samples)
}

func (c *ContactRate) Reset() {
	c.touching = 0
	c.samples = 0
}
