package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/swarmlab/internal/metrics"
	"github.com/san-kum/swarmlab/internal/simulator"
	"github.com/san-kum/swarmlab/internal/swarm"
)

// TickMsg drives the frame loop.
type TickMsg time.Time

const (
	framesPerSecond = 60
	canvasWidth     = 70
	canvasHeight    = 20
	graphWindow     = 120
)

func tick() tea.Cmd {
	return tea.Tick(time.Second/framesPerSecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// domain is the slice of the environment the view draws: the world window
// and the goal ring. The standard environment satisfies it; a simulator
// without one renders no ring and frames the initial states instead.
type domain interface {
	Extents() []float64
	Goal() (center []float64, radius float64, ok bool)
}

// Model is the live terminal view of a simulation. It owns the tick loop:
// every frame advances the simulator a few steps and redraws, so the
// trajectory shown live is exactly the one a headless run would produce.
type Model struct {
	sim *simulator.Simulator
	dom domain

	canvas   *Canvas
	styles   []lipgloss.Style
	title    string
	maxSteps int

	stepsPerFrame int
	running       bool
	err           error

	graphIdx int
}

// NewModel builds the view for a prepared idle simulator. The run config
// supplies the duration; pacing is frame-driven, one frame advancing enough
// steps to track real time at 1x.
func NewModel(sim *simulator.Simulator, title string, run simulator.Config) Model {
	m := Model{
		sim:     sim,
		title:   title,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		styles:  layerStyles(len(sim.Populations())),
		running: true,
	}
	m.dom, _ = sim.Env().(domain)

	if dt := sim.Dt(); dt > 0 {
		m.maxSteps = int(run.Duration / dt)
		m.stepsPerFrame = int(math.Round(1 / (framesPerSecond * dt)))
	}
	if m.stepsPerFrame < 1 {
		m.stepsPerFrame = 1
	}
	m.setWindow()
	return m
}

// setWindow frames the domain extents when the environment has them,
// otherwise the initial states with room to wander.
func (m *Model) setWindow() {
	if m.dom != nil {
		if ext := m.dom.Extents(); len(ext) > 0 {
			hx := ext[0] / 2
			hy := hx
			if len(ext) > 1 {
				hy = ext[1] / 2
			}
			m.canvas.Window(-hx*1.05, -hy*1.05, hx*1.05, hy*1.05)
			return
		}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range m.sim.Populations() {
		x := p.State()
		for i := 0; i < x.Rows(); i++ {
			row := x.Row(i)
			for c := 0; c < 2 && c < len(row); c++ {
				lo = math.Min(lo, row[c])
				hi = math.Max(hi, row[c])
			}
		}
	}
	if math.IsInf(lo, 1) {
		lo, hi = -10, 10
	}
	pad := hi - lo
	if pad <= 0 {
		pad = 1
	}
	m.canvas.Window(lo-pad, lo-pad, hi+pad, hi+pad)
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.sim.Reset(); err != nil {
				m.err = err
			} else {
				m.err = nil
				m.running = true
			}
		case "+", "=":
			m.stepsPerFrame *= 2
		case "-", "_":
			if m.stepsPerFrame > 1 {
				m.stepsPerFrame /= 2
			}
		case "m":
			if n := len(m.sim.Metrics()); n > 0 {
				m.graphIdx = (m.graphIdx + 1) % n
			}
		}
	case TickMsg:
		m.advance()
		return m, tick()
	}
	return m, nil
}

// advance runs the simulator portion of one frame.
func (m *Model) advance() {
	if !m.running || m.err != nil {
		return
	}
	if m.sim.Phase() == simulator.Idle {
		if err := m.sim.Start(); err != nil {
			m.err = err
			return
		}
	}
	for i := 0; i < m.stepsPerFrame && m.sim.Phase() == simulator.Running; i++ {
		if m.maxSteps > 0 && m.sim.Step() >= m.maxSteps {
			break
		}
		if err := m.sim.Tick(); err != nil {
			m.err = err
			return
		}
	}
	if m.maxSteps > 0 && m.sim.Step() >= m.maxSteps {
		m.sim.Stop()
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("swarmlab "+m.title) + "\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.renderCanvas()),
		statsStyle.Render(m.renderStats()),
	))
	b.WriteString("\n" + helpStyle.Render("[space] pause  [r] reset  [+/-] speed  [m] metric  [q] quit"))
	return b.String()
}

// renderCanvas redraws the scatter: goal ring first so populations overwrite
// it where they overlap, then every population's first two state columns.
func (m Model) renderCanvas() string {
	m.canvas.Clear()
	if m.dom != nil {
		if center, radius, ok := m.dom.Goal(); ok && len(center) > 0 {
			cy := 0.0
			if len(center) > 1 {
				cy = center[1]
			}
			m.canvas.Ring(center[0], cy, radius, 1)
		}
	}
	for i, p := range m.sim.Populations() {
		x := p.State()
		layer := uint8(2 + i)
		for r := 0; r < x.Rows(); r++ {
			row := x.Row(r)
			y := 0.0
			if len(row) > 1 {
				y = row[1]
			}
			m.canvas.Plot(row[0], y, layer)
		}
	}
	return m.canvas.Styled(m.styles)
}

func (m Model) renderStats() string {
	var b strings.Builder

	status := statusRunning.Render("running")
	switch {
	case m.err != nil:
		status = statusError.Render("error")
	case m.sim.Phase() == simulator.Stopped:
		status = statusDone.Render("done")
	case !m.running:
		status = statusPaused.Render("paused")
	}

	b.WriteString(labelStyle.Render("status  ") + status + "\n")
	b.WriteString(labelStyle.Render("time    ") + valueStyle.Render(fmt.Sprintf("%.2f s", m.sim.Time())) + "\n")
	b.WriteString(labelStyle.Render("step    ") + valueStyle.Render(fmt.Sprintf("%d / %d", m.sim.Step(), m.maxSteps)) + "\n")
	b.WriteString(labelStyle.Render("speed   ") + valueStyle.Render(fmt.Sprintf("%.1fx", m.speed())) + "\n")
	if m.err != nil {
		b.WriteString(statusError.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	for i, p := range m.sim.Populations() {
		b.WriteString(populationStyle(i).Render("⣿ ") +
			valueStyle.Render(p.ID()) +
			labelStyle.Render(fmt.Sprintf("  n=%d", p.N())) + "\n")
	}

	if ms := m.sim.Metrics(); len(ms) > 0 {
		b.WriteString("\n")
		for _, mt := range ms {
			b.WriteString(labelStyle.Render(mt.Name()+" ") +
				valueStyle.Render(fmt.Sprintf("%.4g", mt.Value())) + "\n")
		}
		b.WriteString("\n" + m.renderGraph(ms[m.graphIdx]))
	}
	return b.String()
}

// renderGraph plots the tail of the selected metric series.
func (m Model) renderGraph(mt swarm.Metric) string {
	sm, ok := mt.(metrics.SeriesMetric)
	if !ok {
		return ""
	}
	vals := sm.Series()
	if len(vals) < 2 {
		return labelStyle.Render("collecting " + mt.Name() + "...")
	}
	if len(vals) > graphWindow {
		vals = vals[len(vals)-graphWindow:]
	}
	return graphStyle.Render(asciigraph.Plot(vals,
		asciigraph.Height(5),
		asciigraph.Width(32),
		asciigraph.Caption(mt.Name()),
	))
}

// speed is the simulated-to-wall-clock time ratio at the current step rate.
func (m Model) speed() float64 {
	return float64(m.stepsPerFrame) * framesPerSecond * m.sim.Dt()
}
