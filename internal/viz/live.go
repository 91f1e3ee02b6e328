package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/forcesim/internal/experiment"
	"github.com/san-kum/forcesim/internal/geom"
)

const (
	defaultWidth    = 80
	defaultHeight   = 24
	historyCapacity = 600
	panelWidth      = 38
	frameRate       = 30
	maxSpeed        = 32
	strengthStep    = 1.1
)

// GIFPath is where recordings are written.
var GIFPath = "layout.gif"

// Source is what the live view drives: an experiment with its point type
// erased. experiment.Runner satisfies it.
type Source interface {
	Name() string
	Step(n int) int
	Snapshot() experiment.Snapshot
	Reheat() error
	ScaleStrength(name string, factor float64) error
	Gain(name string) float64
	Forces() []string
}

// TickMsg drives one frame of the model with the matching ID.
type TickMsg struct {
	ID   int
	Time time.Time
}

var lastModelID int

// Model is the Bubble Tea model for a running layout.
type Model struct {
	id            int
	src           Source
	snap          experiment.Snapshot
	width, height int
	canvas        *Canvas
	camera        *Camera
	theme         Theme
	st            styles
	running       bool
	speed         int
	forces        []string
	selected      int
	alphaHistory  []float64
	energyHistory []float64
	recording     bool
	frames        []*image.Paletted
	showHelp      bool
	status        string
	quitting      bool
}

func NewModel(src Source, theme string) Model {
	t := GetTheme(theme)
	lastModelID++
	m := Model{
		id:            lastModelID,
		src:           src,
		width:         defaultWidth,
		height:        defaultHeight,
		canvas:        NewCanvas(defaultWidth, defaultHeight),
		camera:        NewCamera(),
		theme:         t,
		st:            newStyles(t),
		running:       true,
		speed:         1,
		forces:        src.Forces(),
		alphaHistory:  make([]float64, 0, historyCapacity),
		energyHistory: make([]float64, 0, historyCapacity),
	}
	m.snap = src.Snapshot()
	m.draw()
	return m
}

func tick(id int) tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg{ID: id, Time: t} })
}

func (m Model) Init() tea.Cmd { return tick(m.id) }

// Update handles input and advances the layout on every frame tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.quitting || msg.ID != m.id {
			return m, nil
		}
		if m.running {
			m.advance()
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick(m.id)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		if err := m.src.Reheat(); err != nil {
			m.status = err.Error()
		} else {
			m.status = "reheated"
		}
	case "tab":
		if len(m.forces) > 0 {
			m.selected = (m.selected + 1) % len(m.forces)
		}
	case "up", "k":
		m.scaleSelected(strengthStep)
	case "down", "j":
		m.scaleSelected(1 / strengthStep)
	case ">", ".":
		m.speed = min(maxSpeed, m.speed*2)
	case "<", ",":
		m.speed = max(1, m.speed/2)
	case "g":
		m.toggleRecording()
	case "t":
		m.theme = m.theme.next()
		m.st = newStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	case "x":
		m.camera.RotateX(0.1)
	case "X":
		m.camera.RotateX(-0.1)
	case "y":
		m.camera.RotateY(0.1)
	case "Y":
		m.camera.RotateY(-0.1)
	case "z":
		m.camera.RotateZ(0.1)
	case "Z":
		m.camera.RotateZ(-0.1)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	}
	m.draw()
	return m, nil
}

func (m *Model) resize(w, h int) {
	m.width = max(20, w-panelWidth-4)
	m.height = max(8, h-2)
	m.canvas = NewCanvas(m.width, m.height)
	m.draw()
}

// advance runs speed ticks and records the alpha and energy histories.
func (m *Model) advance() {
	if m.src.Step(m.speed) == 0 {
		m.snap = m.src.Snapshot()
		return
	}
	m.snap = m.src.Snapshot()
	m.alphaHistory = pushHistory(m.alphaHistory, m.snap.Alpha)
	m.energyHistory = pushHistory(m.energyHistory, m.snap.Metrics["kinetic_energy"])
}

func pushHistory(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) scaleSelected(factor float64) {
	if len(m.forces) == 0 {
		return
	}
	name := m.forces[m.selected]
	if err := m.src.ScaleStrength(name, factor); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("%s x%.2f", name, m.src.Gain(name))
}

// draw renders the current snapshot onto the canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	dw, dh := m.canvas.Dots()
	dots, scale := project(m.snap.Positions, m.camera, dw, dh)

	for _, l := range m.snap.Links {
		if l.Source < 0 || l.Target < 0 || l.Source >= len(dots) || l.Target >= len(dots) {
			continue
		}
		a, b := dots[l.Source], dots[l.Target]
		if a.ok && b.ok {
			m.canvas.DrawLine(a.x, a.y, b.x, b.y)
		}
	}
	for i, d := range dots {
		if !d.ok {
			continue
		}
		r := 0.0
		if i < len(m.snap.Radii) {
			r = m.snap.Radii[i] * scale
		}
		m.canvas.DrawCircle(d.x, d.y, int(math.Round(r)))
	}
}

type dot struct {
	x, y int
	ok   bool
}

// project maps layout coordinates onto a dw x dh dot grid and returns the
// layout-to-dot scale. Layouts of up to two dimensions are fitted to the
// grid; higher ones are normalised into the unit cube and seen through the
// camera using their first three coordinates.
func project(pos [][]float64, cam *Camera, dw, dh int) ([]dot, float64) {
	dots := make([]dot, len(pos))
	if len(pos) == 0 {
		return dots, 1
	}
	dims := min(len(pos[0]), 3)

	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range pos {
		for k := 0; k < 3; k++ {
			v := coord(p, k)
			lo[k], hi[k] = min(lo[k], v), max(hi[k], v)
		}
	}
	var mid [3]float64
	span := 0.0
	for k := 0; k < dims; k++ {
		mid[k] = (lo[k] + hi[k]) / 2
		span = max(span, hi[k]-lo[k])
	}
	if span == 0 {
		span = 1
	}
	half := float64(min(dw, dh)) / 2

	if dims <= 2 {
		scale := (2*half - 2) / span * cam.Zoom
		for i, p := range pos {
			dots[i] = dot{
				x:  int(math.Round((coord(p, 0)-mid[0])*scale)) + dw/2,
				y:  int(math.Round(-(coord(p, 1)-mid[1])*scale)) + dh/2,
				ok: true,
			}
		}
		return dots, scale
	}

	unit := 2 / span
	for i, p := range pos {
		var v geom.Vec3
		for k := 0; k < 3; k++ {
			v[k] = (coord(p, k) - mid[k]) * unit
		}
		x, y, _, ok := cam.Project(v, dw, dh)
		dots[i] = dot{x: x, y: y, ok: ok}
	}
	return dots, unit * half * cam.Zoom
}

func coord(p []float64, k int) float64 {
	if k < len(p) {
		return p[k]
	}
	return 0
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = m.frames[:0]
		m.status = "recording"
		return
	}
	m.recording = false
	if err := m.saveGIF(GIFPath); err != nil {
		m.status = err.Error()
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", len(m.frames), GIFPath)
	}
	m.frames = nil
}

// captureFrame rasterises the canvas, one 4x4 block per dot.
func (m *Model) captureFrame() {
	const dotSize = 4
	dw, dh := m.canvas.Dots()
	img := image.NewPaletted(image.Rect(0, 0, dw*dotSize, dh*dotSize), color.Palette{color.Black, color.White})
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotSize; py++ {
				for px := 0; px < dotSize; px++ {
					img.SetColorIndex(x*dotSize+px, y*dotSize+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF(path string) error {
	if len(m.frames) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	anim := gif.GIF{}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 100/frameRate)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gif: %w", err)
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	canvasView := m.st.canvas.Render(strings.TrimRight(m.canvas.String(), "\n"))
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.st.panel.Render(m.stats()))
	if m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left, m.st.help.Render(helpText), main)
	}
	return main
}

func (m Model) stats() string {
	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.src.Name()), m.theme.Primary, m.theme.Secondary) + "\n")

	switch {
	case m.recording:
		s.WriteString(m.st.warn.Render("● REC") + "\n\n")
	case m.snap.Settled:
		s.WriteString(m.st.active.Render("SETTLED") + "\n\n")
	case !m.running:
		s.WriteString(m.st.warn.Render("PAUSED") + "\n\n")
	default:
		s.WriteString(m.st.value.Render(fmt.Sprintf("RUNNING x%d", m.speed)) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(m.st.label.Render(fmt.Sprintf("%-15s", label)) + m.st.value.Render(value) + "\n")
	}
	row("tick", fmt.Sprintf("%d", m.snap.Tick))
	row("alpha", fmt.Sprintf("%.4f", m.snap.Alpha))
	s.WriteString(m.st.muted.Render(Bar(m.snap.Alpha, panelWidth-4)) + "\n")
	row("nodes", fmt.Sprintf("%d", len(m.snap.Positions)))
	row("links", fmt.Sprintf("%d", len(m.snap.Links)))

	names := make([]string, 0, len(m.snap.Metrics))
	for k := range m.snap.Metrics {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		row(k, fmt.Sprintf("%.4g", m.snap.Metrics[k]))
	}

	if len(m.alphaHistory) > 1 {
		chart := asciigraph.Plot(m.alphaHistory,
			asciigraph.Height(4), asciigraph.Width(panelWidth-12), asciigraph.Caption("alpha"))
		s.WriteString("\n" + m.st.muted.Render(chart) + "\n")
	}
	if len(m.energyHistory) > 1 {
		s.WriteString("\n" + m.st.label.Render("energy ") + Sparkline(m.energyHistory, panelWidth-11) + "\n")
	}

	s.WriteString("\n" + m.st.header.Render("FORCES") + "\n")
	for i, name := range m.forces {
		line := fmt.Sprintf("%-12s x%.2f", name, m.src.Gain(name))
		if i == m.selected {
			s.WriteString(m.st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + m.st.label.Render(line) + "\n")
		}
	}
	if m.status != "" {
		s.WriteString("\n" + m.st.muted.Render(m.status) + "\n")
	}
	s.WriteString("\n" + m.st.muted.Render("space pause  r reheat  ? help  q quit"))
	return s.String()
}

const helpText = `KEYS
  space      pause / resume
  r          reheat to the initial alpha
  tab        select next force
  up / k     strengthen selected force
  down / j   weaken selected force
  < >        halve / double ticks per frame
  x y z      rotate (shift reverses)
  + -        zoom
  g          start / stop GIF recording
  t          next theme
  ?          toggle help
  q          quit`
