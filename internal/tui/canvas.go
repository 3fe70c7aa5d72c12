package tui

import (
	"strings"
	"unicode"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shapesim/internal/entity"
	"github.com/san-kum/shapesim/internal/shape"
	"github.com/san-kum/shapesim/internal/simulation"
)

// Canvas is a side view of the world: X runs right and Y runs up, Z is
// dropped. Terminal cells are about twice as tall as wide, so the vertical
// scale is half the horizontal one.
type Canvas struct {
	w, h   int
	scale  float64
	center mgl64.Vec2
	cells  [][]rune
}

func NewCanvas(w, h int, scale float64) *Canvas {
	cells := make([][]rune, h)
	for i := range cells {
		cells[i] = make([]rune, w)
	}
	c := &Canvas{w: w, h: h, scale: scale, cells: cells}
	c.Clear()
	return c
}

func (c *Canvas) Clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = ' '
		}
	}
}

// Center moves the view so that p sits in the middle of the canvas.
func (c *Canvas) Center(p mgl64.Vec2) { c.center = p }

func (c *Canvas) world(col, row int) mgl64.Vec2 {
	return mgl64.Vec2{
		c.center[0] + (float64(col)-float64(c.w)/2)/c.scale,
		c.center[1] + (float64(c.h)/2-float64(row))/(c.scale/2),
	}
}

func (c *Canvas) cell(p mgl64.Vec3) (int, int) {
	col := int((p[0]-c.center[0])*c.scale + float64(c.w)/2)
	row := int(float64(c.h)/2 - (p[1]-c.center[1])*(c.scale/2))
	return col, row
}

func (c *Canvas) set(col, row int, r rune) {
	if col >= 0 && col < c.w && row >= 0 && row < c.h {
		c.cells[row][col] = r
	}
}

func (c *Canvas) At(col, row int) rune { return c.cells[row][col] }

// DrawShape rasterizes a world-space shape. Planes draw only the band of
// cells just inside their surface.
func (c *Canvas) DrawShape(s shape.Shape, mark rune) {
	band := 2 / c.scale
	for row := 0; row < c.h; row++ {
		for col := 0; col < c.w; col++ {
			p := c.world(col, row)
			switch s.Kind {
			case shape.Plane:
				d := s.SignedDistance(p.Vec3(0))
				if d <= 0 && d > -band {
					c.cells[row][col] = '='
				}
			default:
				a, b := s.Endpoints()
				if segmentDistance(p, a.Vec2(), b.Vec2()) <= s.Radius {
					c.cells[row][col] = mark
				}
			}
		}
	}
}

// DrawEntity draws every live shape of e with the upper-cased first letter
// of its name.
func (c *Canvas) DrawEntity(e *entity.Entity) {
	mark := '#'
	if name := e.Name(); name != "" {
		mark = unicode.ToUpper([]rune(name)[0])
	}
	if !e.ShapesEnabled() {
		mark = unicode.ToLower(mark)
	}
	for _, id := range e.Shapes() {
		if s, ok := e.Arena().World(id); ok {
			c.DrawShape(s, mark)
		}
	}
}

func (c *Canvas) DrawContacts(contacts []simulation.Contact) {
	for _, ct := range contacts {
		col, row := c.cell(ct.Info.ContactPoint)
		c.set(col, row, '*')
	}
}

func (c *Canvas) Lines() []string {
	lines := make([]string, len(c.cells))
	for i, row := range c.cells {
		lines[i] = string(row)
	}
	return lines
}

func (c *Canvas) String() string { return strings.Join(c.Lines(), "\n") }

func segmentDistance(p, a, b mgl64.Vec2) float64 {
	ab := b.Sub(a)
	t := 0.0
	if l := ab.Dot(ab); l > 0 {
		t = mgl64.Clamp(p.Sub(a).Dot(ab)/l, 0, 1)
	}
	return p.Sub(a.Add(ab.Mul(t))).Len()
}
