package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shapesim/internal/entity"
	"github.com/san-kum/shapesim/internal/shape"
	"github.com/san-kum/shapesim/internal/simulation"
)

var palette = []string{"#00ccff", "#ffaa00", "#00ff88", "#ff00ff", "#ffee55", "#88aaff"}

// view maps world X/Y onto SVG pixels with Y pointing up.
type view struct {
	minX, minY, maxX, maxY float64
	scale                  float64
	height                 float64
}

func (v view) px(p mgl64.Vec3) (float64, float64) {
	return (p[0] - v.minX) * v.scale, v.height - (p[1]-v.minY)*v.scale
}

// SceneSVG draws a side view of the hosted entities (X right, Y up) with
// the given contacts marked in red.
func SceneSVG(entities []*entity.Entity, contacts []simulation.Contact, width, height int) string {
	v := fit(entities, float64(width), float64(height))

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for i, e := range entities {
		color := palette[i%len(palette)]
		opacity := 0.8
		if !e.ShapesEnabled() {
			opacity = 0.25
		}
		sb.WriteString(fmt.Sprintf(`<g id=%q fill=%q stroke=%q fill-opacity="%.2f" stroke-opacity="%.2f">
`, e.Name(), color, color, opacity, opacity))
		for _, id := range e.Shapes() {
			if s, ok := e.Arena().World(id); ok {
				writeShape(&sb, v, s)
			}
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString(`<g fill="#ff4444">` + "\n")
	for _, c := range contacts {
		x, y := v.px(c.Info.ContactPoint)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3"/>
`, x, y))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func writeShape(sb *strings.Builder, v view, s shape.Shape) {
	switch s.Kind {
	case shape.Sphere:
		x, y := v.px(s.Center)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, x, y, s.Radius*v.scale))
	case shape.Capsule:
		a, b := s.Endpoints()
		x1, y1 := v.px(a)
		x2, y2 := v.px(b)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke-width="%.1f" stroke-linecap="round"/>
`, x1, y1, x2, y2, 2*s.Radius*v.scale))
	case shape.Plane:
		a, b, ok := planeSegment(s, v)
		if !ok {
			return
		}
		x1, y1 := v.px(a)
		x2, y2 := v.px(b)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke-width="2"/>
`, x1, y1, x2, y2))
	}
}

// planeSegment clips the plane's trace in the z=0 slice to the view.
func planeSegment(s shape.Shape, v view) (mgl64.Vec3, mgl64.Vec3, bool) {
	nx, ny, d := s.Plane[0], s.Plane[1], s.Plane[3]
	switch {
	case math.Abs(ny) >= math.Abs(nx) && math.Abs(ny) > 1e-9:
		y := func(x float64) float64 { return -(nx*x + d) / ny }
		return mgl64.Vec3{v.minX, y(v.minX), 0}, mgl64.Vec3{v.maxX, y(v.maxX), 0}, true
	case math.Abs(nx) > 1e-9:
		x := func(y float64) float64 { return -(ny*y + d) / nx }
		return mgl64.Vec3{x(v.minY), v.minY, 0}, mgl64.Vec3{x(v.maxY), v.maxY, 0}, true
	}
	return mgl64.Vec3{}, mgl64.Vec3{}, false
}

// fit frames every bounded shape with 10% padding, keeping aspect.
func fit(entities []*entity.Entity, width, height float64) view {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, e := range entities {
		for _, id := range e.Shapes() {
			s, ok := e.Arena().World(id)
			if !ok || s.Kind == shape.Plane {
				continue
			}
			a, b := s.Endpoints()
			for _, p := range []mgl64.Vec3{a, b} {
				minX = math.Min(minX, p[0]-s.Radius)
				maxX = math.Max(maxX, p[0]+s.Radius)
				minY = math.Min(minY, p[1]-s.Radius)
				maxY = math.Max(maxY, p[1]+s.Radius)
			}
		}
	}
	if math.IsInf(minX, 1) {
		minX, minY, maxX, maxY = -1, -1, 1, 1
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1

	scale := math.Min(width/(maxX-minX), height/(maxY-minY))
	// Grow the short axis so the picture fills the canvas.
	maxX = minX + width/scale
	maxY = minY + height/scale

	return view{minX: minX, minY: minY, maxX: maxX, maxY: maxY, scale: scale, height: height}
}
