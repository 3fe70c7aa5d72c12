package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/scene"
	"github.com/san-kum/shapesim/internal/simulation"
	"github.com/sirupsen/logrus"
)

const (
	historyLen  = 120
	maxListed   = 4
	defaultZoom = 4.0
)

type model struct {
	sc  *config.Scene
	log logrus.FieldLogger
	sim *simulation.Simulation

	last    simulation.StepRecord
	history []float64
	total   int
	paused  bool
	done    bool
	speed   int
	zoom    float64
	err     error

	lastFrame time.Time
	fps       float64

	width  int
	height int
}

// New builds the scene and returns a live view positioned before its first step.
func New(sc *config.Scene, log logrus.FieldLogger) (*model, error) {
	m := &model{
		sc:     sc,
		log:    log,
		speed:  1,
		zoom:   defaultZoom,
		width:  80,
		height: 30,
	}
	if err := m.reset(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m model) Init() tea.Cmd { return tick() }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if !m.paused && !m.done {
			now := time.Now()
			if !m.lastFrame.IsZero() {
				if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
					m.fps = 1.0 / dt
				}
			}
			m.lastFrame = now
			for i := 0; i < m.speed && !m.done; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ", "p":
		m.paused = !m.paused
	case "n", ".":
		if m.paused && !m.done {
			m.step()
		}
	case "r":
		if err := m.reset(); err != nil {
			m.err = err
		}
		return m, tea.ClearScreen
	case "+", "=":
		m.speed = min(m.speed*2, 32)
	case "-", "_":
		m.speed = max(m.speed/2, 1)
	case "z":
		m.zoom = min(m.zoom*1.5, 32)
	case "x":
		m.zoom = max(m.zoom/1.5, 0.5)
	}
	return m, nil
}

func (m *model) reset() error {
	sim, err := scene.Build(m.sc, m.log)
	if err != nil {
		return err
	}
	m.sim = sim
	m.last = simulation.StepRecord{}
	m.history = make([]float64, 0, historyLen)
	m.total = 0
	m.done = false
	m.err = nil
	m.lastFrame = time.Time{}
	return nil
}

func (m *model) step() {
	if m.sim.StepCount() >= m.sc.Steps {
		m.done = true
		return
	}
	rec, err := m.sim.Step(context.Background())
	if err != nil {
		m.err = err
		m.done = true
		return
	}
	m.last = rec
	m.total += len(rec.Contacts)
	m.history = append(m.history, float64(len(rec.Contacts)))
	if len(m.history) > historyLen {
		m.history = m.history[1:]
	}
}

func (m model) View() string {
	cw := m.width - 6
	ch := m.height - 16
	if cw < 40 {
		cw = 40
	}
	if ch < 10 {
		ch = 10
	}

	canvas := NewCanvas(cw, ch, m.zoom)
	canvas.Center(m.focus())
	for _, e := range m.sim.Entities() {
		canvas.DrawEntity(e)
	}
	canvas.DrawContacts(m.last.Contacts)

	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	switch {
	case m.err != nil:
		statusIcon = red.Render("✕")
		statusText = red.Render(m.err.Error())
	case m.done:
		statusIcon = dim.Render("■")
		statusText = dim.Render("done")
	case m.paused:
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s\n", statusIcon, cyan.Render(m.sc.Name), statusText))

	progress := float64(m.sim.StepCount()) / float64(max(m.sc.Steps, 1))
	barWidth := 36
	filled := int(min(progress, 1) * float64(barWidth))
	stepStr := fmt.Sprintf("step %d/%d  t=%.2fs", m.sim.StepCount(), m.sc.Steps, m.sim.Time())
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n", bar, dim.Render(stepStr), dim.Render(fmt.Sprintf("%.0ffps x%d", m.fps, m.speed))))

	border := dimmer.Render("   " + strings.Repeat("─", cw))
	b.WriteString(border + "\n")
	for _, line := range canvas.Lines() {
		b.WriteString("   " + line + "\n")
	}
	b.WriteString(border + "\n")

	b.WriteString(fmt.Sprintf("   %s %s  %s %s\n",
		dim.Render("contacts"), white.Render(fmt.Sprintf("%d", len(m.last.Contacts))),
		dim.Render("total"), white.Render(fmt.Sprintf("%d", m.total))))
	for i, c := range m.last.Contacts {
		if i == maxListed {
			b.WriteString(dim.Render(fmt.Sprintf("   … %d more", len(m.last.Contacts)-maxListed)) + "\n")
			break
		}
		b.WriteString(fmt.Sprintf("   %s %s %s  %s\n",
			white.Render(sideName(c, true)), dimmer.Render("↔"), white.Render(sideName(c, false)),
			magenta.Render(fmt.Sprintf("depth %.3f", c.Depth))))
	}
	if m.last.Overflowed {
		b.WriteString(yellow.Render("   collision list full") + "\n")
	}

	if len(m.history) > 1 {
		graph := asciigraph.Plot(m.history,
			asciigraph.Height(4),
			asciigraph.Width(min(cw-10, historyLen)),
			asciigraph.Precision(0),
		)
		b.WriteString("\n" + cyan.Render(indent(graph, "   ")) + "\n")
	}

	b.WriteString("\n" + dim.Render("   space pause  n step  ±speed  z/x zoom  r reset  q quit") + "\n")

	return b.String()
}

// focus is the mean position of the moving entities, or of all entities
// when nothing moves.
func (m model) focus() mgl64.Vec2 {
	var sum mgl64.Vec3
	n := 0
	for _, e := range m.sim.Entities() {
		if m.sim.Velocity(e).Len() > 0 {
			sum = sum.Add(e.Translation())
			n++
		}
	}
	if n == 0 {
		for _, e := range m.sim.Entities() {
			sum = sum.Add(e.Translation())
			n++
		}
	}
	if n == 0 {
		return mgl64.Vec2{}
	}
	return sum.Mul(1 / float64(n)).Vec2()
}

func sideName(c simulation.Contact, a bool) string {
	e := c.B
	if a {
		e = c.A
	}
	if e == nil {
		return "probe"
	}
	return e.Name()
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}

// Run opens the live view for sc and blocks until the user quits.
func Run(sc *config.Scene, log logrus.FieldLogger) error {
	m, err := New(sc, log)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
