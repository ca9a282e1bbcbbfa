package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/fkviz/internal/figure"
)

// Theme colours the terminal player after one of the figure colour maps.
// The surface view draws with ColorMap; the text colours are sampled from
// the same map so the chrome matches the data.
type Theme struct {
	Name      string
	ColorMap  string
	Primary   lipgloss.Color // near the top of the map
	Secondary lipgloss.Color // lower third
	Muted     lipgloss.Color // mid range
}

// mapTheme samples cmap on [0, 1]. An unknown map yields greys.
func mapTheme(cmap string) Theme {
	t := Theme{
		Name:      cmap,
		ColorMap:  cmap,
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Muted:     lipgloss.Color("#888888"),
	}
	cm, err := figure.ColorMap(cmap, 0, 1)
	if err != nil {
		return t
	}
	at := func(v float64, fallback lipgloss.Color) lipgloss.Color {
		c, err := cm.At(v)
		if err != nil {
			return fallback
		}
		return lipgloss.Color(colorHex(c))
	}
	t.Primary = at(0.9, t.Primary)
	t.Secondary = at(0.3, t.Secondary)
	t.Muted = at(0.6, t.Muted)
	return t
}

var (
	Themes = []Theme{
		mapTheme("magma"),
		mapTheme("inferno"),
		mapTheme("rdbu"),
		mapTheme("coolwarm"),
		mapTheme("viridis"),
		mapTheme("kindlmann"),
	}

	CurrentTheme = Themes[0]
)

// GetTheme returns the named theme, or the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Label styles secondary text in the theme's muted colour.
func (t Theme) Label() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted)
}

// Border frames a panel in the theme's primary colour.
func (t Theme) Border() lipgloss.Style {
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary)
}
