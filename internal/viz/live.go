package viz

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/projmo/internal/analysis"
	"github.com/san-kum/projmo/internal/config"
	"github.com/san-kum/projmo/internal/logging"
	"github.com/san-kum/projmo/internal/physics"
	"github.com/san-kum/projmo/internal/sim"
	"github.com/san-kum/projmo/internal/trajectory"
)

const (
	width         = 72
	height        = 20
	frameRate     = 60
	heightSamples = 240
	speedStep     = 1.0
	angleStep     = 5.0
	barrelLength  = 10
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live view. Each tick steps the simulation once and redraws.
type Model struct {
	sim    *sim.Simulation
	log    *logging.Logger
	canvas *Canvas
	view   Viewport
	theme  Theme

	running  bool
	showHelp bool

	projectiles []string
	projectile  int

	barrel      harmonica.Spring
	barrelAngle float64
	barrelVel   float64

	heights []float64
	shots   int
	err     error
}

func NewModel(s *sim.Simulation, log *logging.Logger) Model {
	if log == nil {
		log = logging.Discard()
	}
	m := Model{
		sim:         s,
		log:         log,
		canvas:      NewCanvas(width, height),
		theme:       ThemeCyberpunk,
		running:     true,
		projectiles: physics.ProjectileNames(),
		barrel:      harmonica.NewSpring(harmonica.FPS(frameRate), 6.0, 0.7),
		barrelAngle: s.Launch().Angle,
		heights:     make([]float64, 0, heightSamples),
	}
	m.syncProjectile()
	m.view = initialViewport(s)
	return m
}

// initialViewport frames the vacuum path of the current launch.
func initialViewport(s *sim.Simulation) Viewport {
	l, g := s.Launch(), s.Gravity()
	v := Viewport{MaxX: 10, MaxY: 5}
	if r := analysis.AnalyticRange(l, g); !math.IsInf(r, 0) {
		v.MaxX = math.Max(v.MaxX, r*1.1)
	}
	if a := analysis.AnalyticApex(l, g); !math.IsInf(a, 0) {
		v.MaxY = math.Max(v.MaxY, a*1.2)
	}
	return v
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.fire()
		case "r":
			m.reset()
		case "left":
			m.adjustSpeed(-speedStep)
		case "right":
			m.adjustSpeed(speedStep)
		case "up":
			m.adjustAngle(angleStep)
		case "down":
			m.adjustAngle(-angleStep)
		case "d":
			m.sim.SetDrag(!m.sim.DragEnabled())
		case "p":
			m.running = !m.running
		case "tab":
			m.cycleProjectile()
		case "t":
			m.theme = nextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		w := max(msg.Width-50, 20)
		h := max(msg.Height-6, 8)
		m.canvas = NewCanvas(w, h)
	case TickMsg:
		if m.running {
			m.step()
		}
		m.barrelAngle, m.barrelVel = m.barrel.Update(m.barrelAngle, m.barrelVel, m.sim.Launch().Angle)
		return m, tick()
	}
	return m, nil
}

func (m *Model) fire() {
	id, err := m.sim.Fire()
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.shots++
	m.heights = m.heights[:0]
	m.log.Debug("live fire", "trajectory", id)
}

func (m *Model) reset() {
	m.sim.Reset()
	m.err = nil
	m.shots = 0
	m.heights = m.heights[:0]
	m.view = initialViewport(m.sim)
	m.barrelVel = 0
	m.syncProjectile()
}

func (m *Model) adjustSpeed(delta float64) {
	l := m.sim.Launch()
	l.Speed = math.Min(math.Max(l.Speed+delta, config.MinSpeed), config.MaxSpeed)
	m.err = m.sim.SetLaunch(l)
}

func (m *Model) adjustAngle(delta float64) {
	l := m.sim.Launch()
	l.Angle = math.Min(math.Max(l.Angle+delta, config.MinAngle), config.MaxAngle)
	m.err = m.sim.SetLaunch(l)
}

func (m *Model) cycleProjectile() {
	if len(m.projectiles) == 0 {
		return
	}
	m.projectile = (m.projectile + 1) % len(m.projectiles)
	p, err := physics.LookupProjectile(m.projectiles[m.projectile])
	if err == nil {
		err = m.sim.SetProjectile(p)
	}
	m.err = err
}

func (m *Model) syncProjectile() {
	name := m.sim.Projectile().Name
	for i, n := range m.projectiles {
		if n == name {
			m.projectile = i
			return
		}
	}
}

// step advances the simulation by one frame and samples the height of the
// newest projectile in flight.
func (m *Model) step() {
	if err := m.sim.Step(1.0 / frameRate); err != nil {
		m.err = err
		m.log.Failure(context.Background(), "live step", err)
	}

	trs := m.sim.Trajectories()
	for i := len(trs) - 1; i >= 0; i-- {
		if trs[i].Status == trajectory.Flying {
			m.heights = append(m.heights, trs[i].State.Position.Y)
			if len(m.heights) > heightSamples {
				m.heights = m.heights[1:]
			}
			break
		}
	}
}

// draw renders ground, cannon and all paths onto the canvas.
func (m *Model) draw(trs []*trajectory.Trajectory) {
	m.canvas.Clear()

	for _, tr := range trs {
		for _, p := range tr.History.Points() {
			m.view.Fit(p.Position.X, p.Position.Y)
		}
	}

	pw, ph := m.canvas.PixelSize()
	m.canvas.DrawLine(0, ph-1, pw-1, ph-1, inkGround)

	l := m.sim.Launch()
	cx, cy := m.view.Project(m.canvas, 0, l.Height)
	if l.Height > 0 {
		m.canvas.DrawLine(cx, cy, cx, ph-1, inkCannon)
	}
	m.canvas.DrawCircle(cx+2, cy, 2, inkCannon)
	rad := m.barrelAngle * math.Pi / 180
	bx := cx + 2 + int(math.Round(barrelLength*math.Cos(rad)))
	by := cy - int(math.Round(barrelLength*math.Sin(rad)/2))
	m.canvas.DrawLine(cx+2, cy, bx, by, inkCannon)

	for i, tr := range trs {
		ink := inkTrail + i
		px, py := m.view.Project(m.canvas, 0, tr.Launch.Height)
		for _, p := range tr.History.Points() {
			x, y := m.view.Project(m.canvas, p.Position.X, p.Position.Y)
			m.canvas.DrawLine(px, py, x, y, ink)
			px, py = x, y
		}
		if tr.Status == trajectory.Flying {
			x, y := m.view.Project(m.canvas, tr.State.Position.X, tr.State.Position.Y)
			m.canvas.DrawCircle(x, y, 1, ink)
		}
	}
}

func (m Model) View() string {
	trs := m.sim.Trajectories()
	m.draw(trs)
	canvasView := canvasStyle.Render(m.canvas.Render(m.theme.Palette()))

	var s strings.Builder
	s.WriteString(headerStyle.Render("PROJECTILE MOTION") + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.heights) > 1 {
		chart := asciigraph.Plot(m.heights, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Height (m)"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	l := m.sim.Launch()
	drag := "off"
	if m.sim.DragEnabled() {
		drag = "on"
	}
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Speed", fmt.Sprintf("%.1f m/s ", l.Speed)+ProgressBar(l.Speed/config.MaxSpeed, 10))
	row("Angle", fmt.Sprintf("%.0f°", l.Angle))
	row("Height", fmt.Sprintf("%.1f m", l.Height))
	row("Drag", drag)
	row("Projectile", m.sim.Projectile().Name)
	row("In flight", fmt.Sprintf("%d", m.sim.ActiveCount()))
	row("Shots", fmt.Sprintf("%d", m.shots))

	if last := lastFinished(trs); last != nil {
		sum := last.Summary()
		s.WriteString("\nLAST SHOT\n")
		row("Range", fmt.Sprintf("%.2f m", sum.Range))
		row("Apex", fmt.Sprintf("%.2f m", sum.MaxHeight))
		row("Flight", fmt.Sprintf("%.2f s", sum.FlightTime))
	}

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Fire R:Reset P:Pause Q:Quit\n←→:Speed ↑↓:Angle D:Drag\nTab:Projectile T:Theme ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Fire                     ║
║  R        - Reset                    ║
║  ←/→      - Launch speed -/+ 1 m/s   ║
║  ↑/↓      - Launch angle +/- 5°      ║
║  D        - Toggle air resistance    ║
║  P        - Pause/Resume             ║
║  Tab      - Cycle projectile type    ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func lastFinished(trs []*trajectory.Trajectory) *trajectory.Trajectory {
	for i := len(trs) - 1; i >= 0; i-- {
		switch trs[i].Status {
		case trajectory.Landed, trajectory.OutOfBounds:
			return trs[i]
		}
	}
	return nil
}

// Run starts the live view on the terminal using the named theme.
func Run(s *sim.Simulation, log *logging.Logger, theme string) error {
	m := NewModel(s, log)
	m.theme = GetTheme(theme)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
