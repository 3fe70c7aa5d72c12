package shape

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRayIntersection(t *testing.T) {
	x := mgl64.Vec3{1, 0, 0}
	tests := []struct {
		name   string
		s      Shape
		origin mgl64.Vec3
		dir    mgl64.Vec3
		hit    bool
		dist   float64
	}{
		{"sphere ahead", NewSphere(mgl64.Vec3{5, 0, 0}, 1), mgl64.Vec3{}, x, true, 4},
		{"sphere behind", NewSphere(mgl64.Vec3{-5, 0, 0}, 1), mgl64.Vec3{}, x, false, 0},
		{"sphere missed", NewSphere(mgl64.Vec3{5, 3, 0}, 1), mgl64.Vec3{}, x, false, 0},
		{"inside sphere", NewSphere(mgl64.Vec3{}, 1), mgl64.Vec3{}, x, true, 0},
		{"capsule side", NewCapsule(mgl64.Vec3{5, 0, 0}, mgl64.QuatIdent(), 1, 2), mgl64.Vec3{0, 1, 0}, x, true, 4},
		{"capsule cap", NewCapsule(mgl64.Vec3{0, 5, 0}, mgl64.QuatIdent(), 1, 2), mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, true, 2},
		{"capsule missed", NewCapsule(mgl64.Vec3{5, 0, 0}, mgl64.QuatIdent(), 1, 2), mgl64.Vec3{0, 5, 0}, x, false, 0},
		{"plane below", NewPlane(mgl64.Vec3{0, 1, 0}, 0), mgl64.Vec3{0, 3, 0}, mgl64.Vec3{0, -1, 0}, true, 3},
		{"plane parallel", NewPlane(mgl64.Vec3{0, 1, 0}, 0), mgl64.Vec3{0, 3, 0}, x, false, 0},
		{"plane away", NewPlane(mgl64.Vec3{0, 1, 0}, 0), mgl64.Vec3{0, 3, 0}, mgl64.Vec3{0, 1, 0}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, hit := RayIntersection(tt.s, tt.origin, tt.dir)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if hit && math.Abs(d-tt.dist) > 1e-9 {
				t.Errorf("distance = %v, want %v", d, tt.dist)
			}
		})
	}
}
