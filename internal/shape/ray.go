package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RayIntersection casts a ray against a world-space shape and returns the
// distance along dir to the first surface hit. dir should be unit length;
// the distance is measured in multiples of it. A ray starting inside a
// solid hits at distance 0.
func RayIntersection(s Shape, origin, dir mgl64.Vec3) (float64, bool) {
	switch s.Kind {
	case Sphere:
		return raySphere(origin, dir, s.Center, s.Radius)
	case Capsule:
		return rayCapsule(origin, dir, s)
	case Plane:
		return rayPlane(origin, dir, s)
	}
	return 0, false
}

func raySphere(origin, dir, center mgl64.Vec3, radius float64) (float64, bool) {
	m := origin.Sub(center)
	c := m.Dot(m) - radius*radius
	if c <= 0 {
		return 0, true
	}
	a := dir.Dot(dir)
	if a < epsilon {
		return 0, false
	}
	b := m.Dot(dir)
	if b > 0 {
		// outside and pointing away
		return 0, false
	}
	disc := b*b - a*c
	if disc < 0 {
		return 0, false
	}
	return (-b - math.Sqrt(disc)) / a, true
}

func rayCapsule(origin, dir mgl64.Vec3, s Shape) (float64, bool) {
	p0, p1 := s.Endpoints()
	r := s.Radius
	if closestPointOnSegment(origin, p0, p1).Sub(origin).Len() <= r {
		return 0, true
	}

	best := math.Inf(1)
	if t, ok := raySphere(origin, dir, p0, r); ok {
		best = t
	}
	if t, ok := raySphere(origin, dir, p1, r); ok && t < best {
		best = t
	}

	axis := p1.Sub(p0)
	length := axis.Len()
	if length > epsilon {
		u := axis.Mul(1 / length)
		w := origin.Sub(p0)
		dPerp := dir.Sub(u.Mul(dir.Dot(u)))
		wPerp := w.Sub(u.Mul(w.Dot(u)))
		a := dPerp.Dot(dPerp)
		b := 2 * wPerp.Dot(dPerp)
		c := wPerp.Dot(wPerp) - r*r
		if a > epsilon {
			if disc := b*b - 4*a*c; disc >= 0 {
				t := (-b - math.Sqrt(disc)) / (2 * a)
				if t >= 0 {
					h := w.Add(dir.Mul(t)).Dot(u)
					if h >= 0 && h <= length && t < best {
						best = t
					}
				}
			}
		}
	}

	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

func rayPlane(origin, dir mgl64.Vec3, p Shape) (float64, bool) {
	d := p.SignedDistance(origin)
	if d <= 0 {
		return 0, true
	}
	denom := p.Plane.Vec3().Dot(dir)
	if denom >= -epsilon {
		return 0, false
	}
	return -d / denom, true
}
