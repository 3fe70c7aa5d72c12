package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt            = 0.01
	DefaultSteps         = 500
	DefaultMaxCollisions = 1024
	DefaultRadius        = 0.5
	DefaultSpacing       = 1.0
)

// Entity kinds understood by the scene builder.
const (
	KindSphere   = "sphere"
	KindCapsule  = "capsule"
	KindChain    = "chain"
	KindPlane    = "plane"
	KindCompound = "compound"
	KindStatic   = "static"
)

type Scene struct {
	Name          string         `yaml:"name"`
	Dt            float64        `yaml:"dt"`
	Steps         int            `yaml:"steps"`
	MaxCollisions int            `yaml:"max_collisions"`
	Entities      []EntityConfig `yaml:"entities"`
}

type EntityConfig struct {
	Name        string       `yaml:"name"`
	Kind        string       `yaml:"kind"`
	Translation [3]float64   `yaml:"translation"`
	Rotation    [3]float64   `yaml:"rotation,omitempty"` // yaw, pitch, roll in degrees
	Velocity    [3]float64   `yaml:"velocity,omitempty"`
	Radius      float64      `yaml:"radius,omitempty"`
	HalfHeight  float64      `yaml:"half_height,omitempty"`
	Count       int          `yaml:"count,omitempty"`
	Spacing     float64      `yaml:"spacing,omitempty"`
	Normal      [3]float64   `yaml:"normal,omitempty"`
	Offset      float64      `yaml:"offset,omitempty"`
	Parts       []PartConfig `yaml:"parts,omitempty"`
	Disabled    bool         `yaml:"disabled,omitempty"`
}

// PartConfig describes one local shape of a compound or static entity.
type PartConfig struct {
	Kind       string     `yaml:"kind"`
	Center     [3]float64 `yaml:"center"`
	Radius     float64    `yaml:"radius"`
	HalfHeight float64    `yaml:"half_height,omitempty"`
	Normal     [3]float64 `yaml:"normal,omitempty"`
	Offset     float64    `yaml:"offset,omitempty"`
}

func DefaultScene() *Scene {
	return &Scene{
		Name:          "default",
		Dt:            DefaultDt,
		Steps:         DefaultSteps,
		MaxCollisions: DefaultMaxCollisions,
		Entities: []EntityConfig{
			{Name: "floor", Kind: KindPlane, Normal: [3]float64{0, 1, 0}},
			{Name: "ball", Kind: KindSphere, Translation: [3]float64{0, 3, 0}, Velocity: [3]float64{0, -2, 0}, Radius: DefaultRadius},
		},
	}
}

func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := DefaultScene()
	sc.Entities = nil
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

func Save(path string, sc *Scene) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Scene) Validate() error {
	if s.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", s.Dt)
	}
	if s.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", s.Steps)
	}
	if s.MaxCollisions < 0 {
		return fmt.Errorf("max_collisions must not be negative")
	}
	names := make(map[string]bool, len(s.Entities))
	for i, e := range s.Entities {
		if e.Name == "" {
			return fmt.Errorf("entity %d: missing name", i)
		}
		if names[e.Name] {
			return fmt.Errorf("entity %q: duplicate name", e.Name)
		}
		names[e.Name] = true
		if err := e.validate(); err != nil {
			return fmt.Errorf("entity %q: %w", e.Name, err)
		}
	}
	return nil
}

func (e EntityConfig) validate() error {
	switch e.Kind {
	case KindSphere, KindCapsule, KindChain:
		if e.Radius < 0 {
			return fmt.Errorf("negative radius")
		}
		if e.Kind == KindChain && e.Count < 0 {
			return fmt.Errorf("negative count")
		}
	case KindPlane:
		if e.Normal == ([3]float64{}) {
			return fmt.Errorf("plane needs a normal")
		}
	case KindCompound, KindStatic:
		if len(e.Parts) == 0 {
			return fmt.Errorf("%s needs parts", e.Kind)
		}
	default:
		return fmt.Errorf("unknown kind %q", e.Kind)
	}
	return nil
}
