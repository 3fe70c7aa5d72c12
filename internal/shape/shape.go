package shape

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Kind uint8

const (
	Sphere Kind = iota
	Capsule
	Plane
)

func (k Kind) String() string {
	switch k {
	case Sphere:
		return "sphere"
	case Capsule:
		return "capsule"
	case Plane:
		return "plane"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Shape is a value description of a primitive. Center and Rotation are
// relative to whatever frame the shape is expressed in; Transformed moves
// it into another one.
type Shape struct {
	Kind       Kind
	Center     mgl64.Vec3
	Rotation   mgl64.Quat
	Radius     float64
	HalfHeight float64    // capsule: half length of the core segment along local +Y
	Plane      mgl64.Vec4 // plane: (nx, ny, nz, d) with n·x + d = 0
}

func NewSphere(center mgl64.Vec3, radius float64) Shape {
	return Shape{Kind: Sphere, Center: center, Rotation: mgl64.QuatIdent(), Radius: radius}
}

func NewCapsule(center mgl64.Vec3, rotation mgl64.Quat, radius, halfHeight float64) Shape {
	return Shape{
		Kind:       Capsule,
		Center:     center,
		Rotation:   rotation.Normalize(),
		Radius:     radius,
		HalfHeight: halfHeight,
	}
}

// NewPlane builds a plane from a normal and offset. The normal is
// normalized and the offset scaled with it.
func NewPlane(normal mgl64.Vec3, d float64) Shape {
	l := normal.Len()
	if l == 0 {
		normal, l = mgl64.Vec3{0, 1, 0}, 1
	}
	n := normal.Mul(1 / l)
	return Shape{Kind: Plane, Rotation: mgl64.QuatIdent(), Plane: n.Vec4(d / l)}
}

// PlaneFromVec4 accepts the implicit 4-component form directly. It
// reports false for a zero or non-finite normal, which names no plane.
func PlaneFromVec4(p mgl64.Vec4) (Shape, bool) {
	l := p.Vec3().Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) || math.IsNaN(p[3]) {
		return Shape{}, false
	}
	return NewPlane(p.Vec3(), p[3]), true
}

// Pose is a rigid transform: rotate then translate.
type Pose struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
}

func IdentityPose() Pose {
	return Pose{Rotation: mgl64.QuatIdent()}
}

func (p Pose) Apply(v mgl64.Vec3) mgl64.Vec3 {
	return p.Translation.Add(p.Rotation.Rotate(v))
}

// Transformed returns the shape expressed in the frame that p maps into.
func (s Shape) Transformed(p Pose) Shape {
	out := s
	switch s.Kind {
	case Plane:
		n := p.Rotation.Rotate(s.Plane.Vec3())
		// a point on the local plane is -d*n
		onPlane := p.Apply(s.Plane.Vec3().Mul(-s.Plane[3]))
		out.Plane = n.Vec4(-n.Dot(onPlane))
	default:
		out.Center = p.Apply(s.Center)
		out.Rotation = p.Rotation.Mul(s.Rotation).Normalize()
	}
	return out
}

// Endpoints returns the capsule core segment. For a sphere both ends are
// the center.
func (s Shape) Endpoints() (mgl64.Vec3, mgl64.Vec3) {
	if s.Kind != Capsule {
		return s.Center, s.Center
	}
	axis := s.Rotation.Rotate(mgl64.Vec3{0, s.HalfHeight, 0})
	return s.Center.Sub(axis), s.Center.Add(axis)
}

// BoundingRadius is the radius of the smallest sphere about the frame
// origin that holds the shape. Planes are unbounded.
func (s Shape) BoundingRadius() float64 {
	switch s.Kind {
	case Sphere:
		return s.Center.Len() + s.Radius
	case Capsule:
		a, b := s.Endpoints()
		return math.Max(a.Len(), b.Len()) + s.Radius
	default:
		return math.Inf(1)
	}
}

// SignedDistance from p to the plane; positive on the normal side.
func (s Shape) SignedDistance(p mgl64.Vec3) float64 {
	return s.Plane.Vec3().Dot(p) + s.Plane[3]
}

func (s Shape) String() string {
	switch s.Kind {
	case Sphere:
		return fmt.Sprintf("sphere{c=%v r=%.3f}", s.Center, s.Radius)
	case Capsule:
		return fmt.Sprintf("capsule{c=%v r=%.3f h=%.3f}", s.Center, s.Radius, s.HalfHeight)
	case Plane:
		return fmt.Sprintf("plane{%v}", s.Plane)
	default:
		return s.Kind.String()
	}
}
