package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/forcesim/internal/config"
	"github.com/san-kum/forcesim/internal/experiment"
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// param is one adjustable knob on the config screen.
type param struct {
	name string
	step float64
	min  float64
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var params = []param{
	{"nodes", 10, 1,
		func(c *config.Config) float64 { return float64(c.Graph.Nodes) },
		func(c *config.Config, v float64) { c.Graph.Nodes = int(v) }},
	{"seed", 1, 0,
		func(c *config.Config) float64 { return float64(c.Seed) },
		func(c *config.Config, v float64) { c.Seed = int64(v) }},
	{"radius", 1, 0,
		func(c *config.Config) float64 { return c.Graph.Radius },
		func(c *config.Config, v float64) { c.Graph.Radius = v }},
	{"velocity_decay", 0.05, 0,
		func(c *config.Config) float64 { return c.VelocityDecay },
		func(c *config.Config, v float64) { c.VelocityDecay = min(v, 1) }},
	{"alpha_target", 0.05, 0,
		func(c *config.Config) float64 { return c.Alpha.Target },
		func(c *config.Config, v float64) { c.Alpha.Target = min(v, 1) }},
}

// App picks a preset, tunes it, and hands over to the live view.
type App struct {
	ctx         context.Context
	state       int
	cursor      int
	presets     []string
	cfg         *config.Config
	paramCursor int
	theme       Theme
	st          styles
	err         error
	live        Model
}

func NewApp(ctx context.Context, theme string) App {
	t := GetTheme(theme)
	return App{
		ctx:     ctx,
		state:   stateMenu,
		presets: config.ListPresets(),
		theme:   t,
		st:      newStyles(t),
	}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == stateSim {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			a.state = stateConfig
			a.live.quitting = true
			return a, nil
		}
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch a.state {
		case stateMenu:
			return a.menuKey(k)
		case stateConfig:
			return a.configKey(k)
		}
	}
	return a, nil
}

func (a App) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ":
		cfg := config.GetPreset(a.presets[a.cursor])
		if cfg == nil {
			a.err = fmt.Errorf("unknown preset %q", a.presets[a.cursor])
			return a, nil
		}
		a.cfg, a.err = cfg, nil
		a.state, a.paramCursor = stateConfig, 0
	}
	return a, nil
}

func (a App) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := params[a.paramCursor]
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "q", "esc":
		a.state = stateMenu
	case "up", "k":
		if a.paramCursor > 0 {
			a.paramCursor--
		}
	case "down", "j":
		if a.paramCursor < len(params)-1 {
			a.paramCursor++
		}
	case "left", "h":
		p.set(a.cfg, max(p.min, p.get(a.cfg)-p.step))
	case "right", "l":
		p.set(a.cfg, p.get(a.cfg)+p.step)
	case "enter", "s":
		return a.start()
	}
	return a, nil
}

func (a App) start() (tea.Model, tea.Cmd) {
	cfg := a.cfg.Clone()
	g, err := experiment.LoadGraph(cfg)
	if err != nil {
		a.err = err
		return a, nil
	}
	r, err := experiment.Open(a.ctx, cfg, g)
	if err != nil {
		a.err = err
		return a, nil
	}
	a.err = nil
	a.live = NewModel(r, a.theme.Name)
	a.state = stateSim
	return a, a.live.Init()
}

func (a App) View() string {
	switch a.state {
	case stateConfig:
		return a.viewConfig()
	case stateSim:
		return a.live.View()
	}
	return a.viewMenu()
}

func (a App) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n  " + GradientText("FORCESIM", a.theme.Primary, a.theme.Secondary) + "\n")
	b.WriteString("  " + a.st.muted.Render("force-directed layout") + "\n\n")
	for i, name := range a.presets {
		desc := ""
		if cfg := config.GetPreset(name); cfg != nil {
			desc = fmt.Sprintf("%dd %s, %d nodes", cfg.Dimensions, cfg.Graph.Generator, cfg.Graph.Nodes)
		}
		label := fmt.Sprintf("%-10s", name)
		if i == a.cursor {
			b.WriteString("  " + a.st.active.Render("> "+label) + " " + a.st.muted.Render(desc) + "\n")
		} else {
			b.WriteString("    " + label + " " + a.st.muted.Render(desc) + "\n")
		}
	}
	b.WriteString(a.errLine())
	b.WriteString("\n  " + a.st.muted.Render("j/k move  enter select  q quit") + "\n")
	return b.String()
}

func (a App) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n  " + a.st.header.Render(strings.ToUpper(a.cfg.Name)) + "\n\n")
	for i, p := range params {
		line := fmt.Sprintf("%-16s %g", p.name, p.get(a.cfg))
		if i == a.paramCursor {
			b.WriteString("  " + a.st.active.Render("> "+line) + "\n")
		} else {
			b.WriteString("    " + a.st.label.Render(line) + "\n")
		}
	}
	forces := make([]string, len(a.cfg.Forces))
	for i, fc := range a.cfg.Forces {
		forces[i] = fc.Key()
	}
	b.WriteString("\n  " + a.st.label.Render("forces ") + a.st.value.Render(strings.Join(forces, ", ")) + "\n")
	b.WriteString(a.errLine())
	b.WriteString("\n  " + a.st.muted.Render("h/l adjust  enter start  esc back") + "\n")
	return b.String()
}

func (a App) errLine() string {
	if a.err == nil {
		return ""
	}
	return "\n  " + a.st.warn.Render(a.err.Error()) + "\n"
}

// RunInteractive starts the preset picker on the alternate screen.
func RunInteractive(ctx context.Context, theme string) error {
	_, err := tea.NewProgram(NewApp(ctx, theme), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// RunLive shows a single layout on the alternate screen.
func RunLive(ctx context.Context, src Source, theme string) error {
	_, err := tea.NewProgram(NewModel(src, theme), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
