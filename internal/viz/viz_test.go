package viz

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/projmo/internal/dynamo"
	"github.com/san-kum/projmo/internal/sim"
	"github.com/san-kum/projmo/internal/trajectory"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(3, 2)
	c.Set(1, 2)
	if !c.IsSet(1, 2) {
		t.Fatal("pixel not set")
	}
	if c.Grid[0][0] != rune(blank|0x20) {
		t.Errorf("cell = %U, want %U", c.Grid[0][0], rune(blank|0x20))
	}
	c.Unset(1, 2)
	if c.IsSet(1, 2) || c.Grid[0][0] != blank {
		t.Error("pixel not cleared")
	}

	c.Set(-1, 0)
	c.Set(100, 100)
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("out of range pixels were drawn")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 19, 19, 3)
	for i := 0; i < 20; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal pixel (%d,%d) missing", i, i)
		}
	}
	if c.ink[4][9] != 3 {
		t.Errorf("ink = %d, want 3", c.ink[4][9])
	}
}

func TestViewportProject(t *testing.T) {
	c := NewCanvas(10, 5)
	v := Viewport{MaxX: 100, MaxY: 50}

	x, y := v.Project(c, 0, 0)
	if x != 0 || y != 19 {
		t.Errorf("origin projected to (%d,%d)", x, y)
	}
	x, y = v.Project(c, 100, 50)
	if x != 19 || y != 0 {
		t.Errorf("corner projected to (%d,%d)", x, y)
	}

	v.Fit(200, 10)
	if v.MaxX <= 200 || v.MaxY != 50 {
		t.Errorf("fit = %+v", v)
	}
}

func newLiveModel(t *testing.T) Model {
	t.Helper()
	s, err := sim.New(sim.Options{Launch: trajectory.Launch{Speed: 15, Angle: 0, Height: 10}})
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(s, nil)
}

func press(m Model, msg tea.KeyMsg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelKeys(t *testing.T) {
	m := newLiveModel(t)

	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.sim.Launch().Speed; got != 16 {
		t.Errorf("speed = %v, want 16", got)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyUp})
	if got := m.sim.Launch().Angle; got != 5 {
		t.Errorf("angle = %v, want 5", got)
	}

	m = press(m, runes("d"))
	if !m.sim.DragEnabled() {
		t.Error("drag not toggled on")
	}

	before := m.sim.Projectile().Name
	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.sim.Projectile().Name == before {
		t.Error("projectile not cycled")
	}

	m = press(m, runes("p"))
	if m.running {
		t.Error("expected paused")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if m.sim.ActiveCount() != 1 || m.shots != 1 {
		t.Errorf("fire: active=%d shots=%d", m.sim.ActiveCount(), m.shots)
	}

	m = press(m, runes("r"))
	trs := m.sim.Trajectories()
	if len(trs) != 1 || trs[0].Status != trajectory.Armed || m.sim.DragEnabled() {
		t.Error("reset did not restore defaults")
	}
	if m.sim.Projectile().Name != before {
		t.Errorf("projectile index not resynced: %s", m.sim.Projectile().Name)
	}

	if _, cmd := m.Update(runes("q")); cmd == nil {
		t.Error("expected quit command")
	}
}

func TestModelSpeedClamped(t *testing.T) {
	m := newLiveModel(t)
	for i := 0; i < 100; i++ {
		m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	}
	if got := m.sim.Launch().Speed; got != 50 || m.err != nil {
		t.Errorf("speed = %v err = %v", got, m.err)
	}
	for i := 0; i < 100; i++ {
		m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	}
	if got := m.sim.Launch().Speed; got != 0 {
		t.Errorf("speed = %v, want 0", got)
	}
}

func TestModelTickSteps(t *testing.T) {
	m := newLiveModel(t)
	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	m = press(m, tea.KeyMsg{Type: tea.KeyUp})

	for i := 0; i < 30; i++ {
		next, cmd := m.Update(TickMsg{})
		if cmd == nil {
			t.Fatal("tick did not schedule the next frame")
		}
		m = next.(Model)
	}

	tr, err := m.sim.Trajectory(1)
	if err != nil {
		t.Fatal(err)
	}
	if tr.History.Len() != 30 || math.Abs(tr.State.Time-0.5) > 1e-9 {
		t.Errorf("after 30 frames: points=%d t=%v", tr.History.Len(), tr.State.Time)
	}
	if len(m.heights) != 30 {
		t.Errorf("height samples = %d", len(m.heights))
	}
	if m.barrelAngle <= 0 || m.barrelAngle > 5.5 {
		t.Errorf("barrel angle = %v, want easing toward 5", m.barrelAngle)
	}

	view := m.View()
	if !strings.Contains(view, "PROJECTILE MOTION") || !strings.Contains(view, "Height (m)") {
		t.Error("view missing header or height chart")
	}
}

func TestModelPausedDoesNotStep(t *testing.T) {
	m := newLiveModel(t)
	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	m = press(m, runes("p"))
	next, _ := m.Update(TickMsg{})
	m = next.(Model)

	tr, _ := m.sim.Trajectory(1)
	if tr.History.Len() != 0 {
		t.Errorf("paused model stepped: %d points", tr.History.Len())
	}
}

func TestNextTheme(t *testing.T) {
	th := ThemeCyberpunk
	seen := map[string]bool{}
	for range Themes {
		seen[th.Name] = true
		th = nextTheme(th)
	}
	if len(seen) != len(Themes) || th.Name != ThemeCyberpunk.Name {
		t.Errorf("theme cycle broken: %v", seen)
	}
	if GetTheme("nope").Name != ThemeCyberpunk.Name {
		t.Error("unknown theme should fall back")
	}
}

func TestPlotPaths(t *testing.T) {
	paths := map[int][]trajectory.Point{
		1: {{Position: dynamo.Vec2{X: 0, Y: 10}}, {Position: dynamo.Vec2{X: 5, Y: 12}}, {Position: dynamo.Vec2{X: 10, Y: 0}}},
	}
	c := PlotPaths(paths, []int{1}, 20, 6)
	pw, ph := c.PixelSize()
	for x := 0; x < pw; x++ {
		if !c.IsSet(x, ph-1) {
			t.Fatalf("ground pixel %d missing", x)
		}
	}
	launched := false
	for y := 0; y < ph-1; y++ {
		launched = launched || c.IsSet(0, y)
	}
	if !launched {
		t.Error("path not drawn from the launch column")
	}
	if n := strings.Count(c.Render(ThemeCyberpunk.Palette()), "\n"); n != 6 {
		t.Errorf("rendered %d rows, want 6", n)
	}
}

func TestInkColorWrapsOntoTrails(t *testing.T) {
	th := ThemeRetroGreen
	p := th.Palette()
	if inkColor(p, inkGround) != th.Ground || inkColor(p, inkCannon) != th.Cannon {
		t.Fatal("fixed inks resolved to the wrong colors")
	}
	for i := 0; i < 20; i++ {
		got := inkColor(p, inkTrail+i)
		if want := th.Trails[i%len(th.Trails)]; got != want {
			t.Errorf("trail %d = %v, want %v", i, got, want)
		}
	}
}
