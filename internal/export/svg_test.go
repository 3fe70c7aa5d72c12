package export

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shapesim/internal/entity"
	"github.com/san-kum/shapesim/internal/shape"
	"github.com/san-kum/shapesim/internal/simulation"
)

func built(arena *shape.Arena, name string, b entity.Builder, at mgl64.Vec3) *entity.Entity {
	e := entity.New(arena, b)
	e.SetName(name)
	e.SetTranslation(at)
	e.BuildShapes()
	return e
}

func TestSceneSVG(t *testing.T) {
	arena := shape.NewArena()
	floor := built(arena, "floor", entity.PlaneBuilder{Normal: mgl64.Vec3{0, 1, 0}}, mgl64.Vec3{})
	ball := built(arena, "ball", entity.SphereBuilder{Radius: 1}, mgl64.Vec3{0, 1, 0})
	pill := built(arena, "pill", entity.CapsuleBuilder{Radius: 0.5, HalfHeight: 1}, mgl64.Vec3{3, 2, 0})

	contacts := []simulation.Contact{{A: ball, B: floor, Info: shape.CollisionInfo{ContactPoint: mgl64.Vec3{0, 0, 0}}}}
	svg := SceneSVG([]*entity.Entity{floor, ball, pill}, contacts, 400, 300)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not an svg document")
	}
	for _, want := range []string{`id="floor"`, `id="ball"`, `id="pill"`, "stroke-linecap", `r="3"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("missing %s", want)
		}
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 circles (ball and contact), got %d", n)
	}
	if n := strings.Count(svg, "<line"); n != 2 {
		t.Errorf("expected 2 lines (floor and capsule), got %d", n)
	}
}

func TestFitKeepsShapesInside(t *testing.T) {
	arena := shape.NewArena()
	a := built(arena, "a", entity.SphereBuilder{Radius: 1}, mgl64.Vec3{-4, 0, 0})
	b := built(arena, "b", entity.SphereBuilder{Radius: 1}, mgl64.Vec3{4, 2, 0})

	v := fit([]*entity.Entity{a, b}, 200, 100)
	for _, p := range []mgl64.Vec3{{-5, -1, 0}, {5, 3, 0}} {
		x, y := v.px(p)
		if x < 0 || x > 200 || y < 0 || y > 100 {
			t.Errorf("%v maps outside the canvas: (%.1f, %.1f)", p, x, y)
		}
	}
}

func TestPlaneSegment(t *testing.T) {
	v := view{minX: -2, minY: -1, maxX: 2, maxY: 1}

	a, b, ok := planeSegment(shape.NewPlane(mgl64.Vec3{0, 1, 0}, 0.5), v)
	if !ok || a[1] != -0.5 || b[1] != -0.5 || a[0] != -2 || b[0] != 2 {
		t.Errorf("horizontal plane segment = %v %v", a, b)
	}

	a, b, ok = planeSegment(shape.NewPlane(mgl64.Vec3{1, 0, 0}, 0), v)
	if !ok || a[0] != 0 || b[0] != 0 || a[1] != -1 || b[1] != 1 {
		t.Errorf("vertical plane segment = %v %v", a, b)
	}

	if _, _, ok := planeSegment(shape.NewPlane(mgl64.Vec3{0, 0, 1}, 0), v); ok {
		t.Error("plane facing the viewer has no trace")
	}
}
