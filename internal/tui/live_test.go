package tui

import (
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/shape"
	"github.com/sirupsen/logrus"
)

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestCanvasDrawsSphereAtCenter(t *testing.T) {
	c := NewCanvas(40, 20, 4)
	c.DrawShape(shape.NewSphere(mgl64.Vec3{}, 1), 'B')

	if got := c.At(20, 10); got != 'B' {
		t.Errorf("center cell = %q, want 'B'", got)
	}
	if got := c.At(0, 0); got != ' ' {
		t.Errorf("corner cell = %q, want blank", got)
	}
}

func TestCanvasDrawsPlaneSurface(t *testing.T) {
	c := NewCanvas(40, 20, 4)
	c.Center(mgl64.Vec2{0, 2})
	c.DrawShape(shape.NewPlane(mgl64.Vec3{0, 1, 0}, 0), 'F')

	found := false
	for _, line := range c.Lines() {
		if strings.Count(line, "=") == 40 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a full row of ground:\n%s", c)
	}
	if got := c.At(20, 0); got != ' ' {
		t.Errorf("above ground should be blank, got %q", got)
	}
}

func TestSegmentDistance(t *testing.T) {
	a, b := mgl64.Vec2{0, 0}, mgl64.Vec2{2, 0}
	tests := []struct {
		p    mgl64.Vec2
		want float64
	}{
		{mgl64.Vec2{1, 1}, 1},
		{mgl64.Vec2{-1, 0}, 1},
		{mgl64.Vec2{3, 0}, 1},
		{mgl64.Vec2{1, 0}, 0},
	}
	for _, tt := range tests {
		if got := segmentDistance(tt.p, a, b); got != tt.want {
			t.Errorf("segmentDistance(%v) = %f, want %f", tt.p, got, tt.want)
		}
	}
	if got := segmentDistance(mgl64.Vec2{0, 3}, a, a); got != 3 {
		t.Errorf("degenerate segment distance = %f, want 3", got)
	}
}

func TestModelSteps(t *testing.T) {
	m, err := New(config.GetPreset("headon"), quiet())
	if err != nil {
		t.Fatal(err)
	}

	var tm tea.Model = *m
	for i := 0; i < 5; i++ {
		tm, _ = tm.Update(tickMsg(time.Now()))
	}
	got := tm.(model)
	if got.sim.StepCount() != 5 {
		t.Errorf("expected 5 steps, got %d", got.sim.StepCount())
	}
	if len(got.history) != 5 {
		t.Errorf("expected 5 history points, got %d", len(got.history))
	}
	if !strings.Contains(got.View(), "headon") {
		t.Error("view should name the scene")
	}
}

func TestModelPauseAndSingleStep(t *testing.T) {
	m, err := New(config.GetPreset("drop"), quiet())
	if err != nil {
		t.Fatal(err)
	}

	var tm tea.Model = *m
	tm, _ = tm.Update(tea.KeyMsg{Type: tea.KeySpace})
	tm, _ = tm.Update(tickMsg(time.Now()))
	if n := tm.(model).sim.StepCount(); n != 0 {
		t.Fatalf("paused model stepped %d times", n)
	}

	tm, _ = tm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if n := tm.(model).sim.StepCount(); n != 1 {
		t.Errorf("single step gave %d steps", n)
	}
}

func TestModelStopsAtSceneEnd(t *testing.T) {
	sc := *config.GetPreset("headon")
	sc.Steps = 3

	m, err := New(&sc, quiet())
	if err != nil {
		t.Fatal(err)
	}
	m.speed = 8

	var tm tea.Model = *m
	tm, _ = tm.Update(tickMsg(time.Now()))
	got := tm.(model)
	if !got.done || got.sim.StepCount() != 3 {
		t.Errorf("done=%v steps=%d, want done at 3", got.done, got.sim.StepCount())
	}
}
