package scene

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/entity"
	"github.com/san-kum/shapesim/internal/shape"
)

type Registry struct {
	builders map[string]func(config.EntityConfig) (entity.Builder, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		builders: make(map[string]func(config.EntityConfig) (entity.Builder, error)),
	}

	r.builders[config.KindSphere] = func(c config.EntityConfig) (entity.Builder, error) {
		return entity.SphereBuilder{Radius: radiusOr(c.Radius)}, nil
	}
	r.builders[config.KindCapsule] = func(c config.EntityConfig) (entity.Builder, error) {
		return entity.CapsuleBuilder{Radius: radiusOr(c.Radius), HalfHeight: c.HalfHeight}, nil
	}
	r.builders[config.KindChain] = func(c config.EntityConfig) (entity.Builder, error) {
		spacing := c.Spacing
		if spacing == 0 {
			spacing = config.DefaultSpacing
		}
		count := c.Count
		if count == 0 {
			count = 1
		}
		return entity.ChainBuilder{Count: count, Radius: radiusOr(c.Radius), Spacing: spacing}, nil
	}
	r.builders[config.KindPlane] = func(c config.EntityConfig) (entity.Builder, error) {
		return entity.PlaneBuilder{Normal: vec(c.Normal), Offset: c.Offset}, nil
	}
	r.builders[config.KindCompound] = func(c config.EntityConfig) (entity.Builder, error) {
		parts, err := convertParts(c.Parts)
		if err != nil {
			return nil, err
		}
		return entity.CompoundBuilder{Parts: parts}, nil
	}
	r.builders[config.KindStatic] = func(c config.EntityConfig) (entity.Builder, error) {
		parts, err := convertParts(c.Parts)
		if err != nil {
			return nil, err
		}
		return entity.StaticBuilder{Parts: parts}, nil
	}

	return r
}

func (r *Registry) GetBuilder(c config.EntityConfig) (entity.Builder, error) {
	fn, ok := r.builders[c.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind: %s", c.Kind)
	}
	return fn(c)
}

func (r *Registry) ListKinds() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func convertParts(parts []config.PartConfig) ([]shape.Shape, error) {
	out := make([]shape.Shape, 0, len(parts))
	for i, p := range parts {
		switch p.Kind {
		case config.KindSphere:
			out = append(out, shape.NewSphere(vec(p.Center), radiusOr(p.Radius)))
		case config.KindCapsule:
			out = append(out, shape.NewCapsule(vec(p.Center), mgl64.QuatIdent(), radiusOr(p.Radius), p.HalfHeight))
		case config.KindPlane:
			out = append(out, shape.NewPlane(vec(p.Normal), p.Offset))
		default:
			return nil, fmt.Errorf("part %d: unknown kind %q", i, p.Kind)
		}
	}
	return out, nil
}

func radiusOr(r float64) float64 {
	if r == 0 {
		return config.DefaultRadius
	}
	return r
}

func vec(v [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}

// orientation converts yaw, pitch, roll in degrees to a quaternion.
func orientation(ypr [3]float64) mgl64.Quat {
	return mgl64.AnglesToQuat(
		mgl64.DegToRad(ypr[0]),
		mgl64.DegToRad(ypr[1]),
		mgl64.DegToRad(ypr[2]),
		mgl64.YXZ,
	)
}
