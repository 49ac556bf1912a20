package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI. Paths cycle through Trails.
type Theme struct {
	Name   string
	Ground lipgloss.Color
	Cannon lipgloss.Color
	Accent lipgloss.Color
	Muted  lipgloss.Color
	Trails []lipgloss.Color
}

// Ink slots on the canvas. Trajectory i uses inkTrail+i; Render wraps it
// onto the theme's trail colors.
const (
	inkGround = iota
	inkCannon
	inkTrail
)

// Palette returns the canvas palette indexed by ink.
func (t Theme) Palette() []lipgloss.Color {
	p := []lipgloss.Color{t.Ground, t.Cannon}
	return append(p, t.Trails...)
}

var (
	ThemeCyberpunk = Theme{
		Name:   "cyberpunk",
		Ground: lipgloss.Color("#666666"),
		Cannon: lipgloss.Color("#ffff00"),
		Accent: lipgloss.Color("#00ffff"),
		Muted:  lipgloss.Color("#666666"),
		Trails: []lipgloss.Color{"#ff00ff", "#00ffff", "#00ff00", "#ff8800"},
	}

	ThemeRetroGreen = Theme{
		Name:   "retro",
		Ground: lipgloss.Color("#005500"),
		Cannon: lipgloss.Color("#88ff88"),
		Accent: lipgloss.Color("#00ff00"),
		Muted:  lipgloss.Color("#005500"),
		Trails: []lipgloss.Color{"#00ff00", "#00cc00", "#88ff88"},
	}

	ThemeSunset = Theme{
		Name:   "sunset",
		Ground: lipgloss.Color("#8b6b8c"),
		Cannon: lipgloss.Color("#feca57"),
		Accent: lipgloss.Color("#ff9ff3"),
		Muted:  lipgloss.Color("#8b6b8c"),
		Trails: []lipgloss.Color{"#ff6b6b", "#feca57", "#5fd068", "#ff9ff3"},
	}

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// nextTheme returns the theme after current in Themes.
func nextTheme(current Theme) Theme {
	for i, t := range Themes {
		if t.Name == current.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
