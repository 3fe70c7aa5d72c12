package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

// Collide tests two world-space shapes. Touching counts as overlap.
// The returned info has no IDs set; callers fill them in.
func Collide(a, b Shape) (CollisionInfo, bool) {
	switch {
	case a.Kind == Plane && b.Kind == Plane:
		return CollisionInfo{}, false
	case b.Kind == Plane:
		return solidVsPlane(a, b)
	case a.Kind == Plane:
		info, ok := solidVsPlane(b, a)
		if !ok {
			return info, false
		}
		return flip(info), true
	default:
		return solidVsSolid(a, b)
	}
}

// flip swaps the roles of the two sides, moving the contact point onto the
// surface of the new first side.
func flip(c CollisionInfo) CollisionInfo {
	c.ShapeA, c.ShapeB = c.ShapeB, c.ShapeA
	c.ContactPoint = c.ContactPoint.Sub(c.Penetration)
	c.Penetration = c.Penetration.Mul(-1)
	return c
}

// solidVsSolid handles any pair of spheres and capsules by reducing each to
// its core segment and testing the closest points as spheres.
func solidVsSolid(a, b Shape) (CollisionInfo, bool) {
	a0, a1 := a.Endpoints()
	b0, b1 := b.Endpoints()
	pa, pb := closestSegmentPoints(a0, a1, b0, b1)
	return sphereVsSphere(pa, a.Radius, pb, b.Radius)
}

func sphereVsSphere(ca mgl64.Vec3, ra float64, cb mgl64.Vec3, rb float64) (CollisionInfo, bool) {
	ab := cb.Sub(ca)
	sum := ra + rb
	dist := ab.Len()
	if dist > sum {
		return CollisionInfo{}, false
	}
	var dir mgl64.Vec3
	if dist < epsilon {
		// coincident centers: pick an arbitrary but fixed axis
		dir = mgl64.Vec3{0, 1, 0}
	} else {
		dir = ab.Mul(1 / dist)
	}
	return CollisionInfo{
		Penetration:  dir.Mul(sum - dist),
		ContactPoint: ca.Add(dir.Mul(ra)),
	}, true
}

func solidVsPlane(s, p Shape) (CollisionInfo, bool) {
	a, b := s.Endpoints()
	da, db := p.SignedDistance(a), p.SignedDistance(b)
	deepest, dist := a, da
	if db < da {
		deepest, dist = b, db
	}
	if dist > s.Radius {
		return CollisionInfo{}, false
	}
	n := p.Plane.Vec3()
	return CollisionInfo{
		Penetration:  n.Mul(-(s.Radius - dist)),
		ContactPoint: deepest.Sub(n.Mul(s.Radius)),
	}, true
}

// closestPointOnSegment clamps the projection of p onto [a, b].
func closestPointOnSegment(p, a, b mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < epsilon {
		return a
	}
	t := clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
	return a.Add(ab.Mul(t))
}

// closestSegmentPoints returns the closest pair of points between segments
// p1q1 and p2q2 (Ericson, Real-Time Collision Detection 5.1.9).
func closestSegmentPoints(p1, q1, p2, q2 mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a < epsilon && e < epsilon:
		return p1, p2
	case a < epsilon:
		t = clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e < epsilon {
			s = clamp(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > epsilon {
				s = clamp((b*f-c*e)/denom, 0, 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clamp(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = clamp((b-c)/a, 0, 1)
			}
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
