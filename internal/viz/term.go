package viz

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/plot/palette"
)

// heatTerm renders a heatmap with upper half blocks: each character cell
// carries two vertically stacked pixels, foreground on top.
type heatTerm struct {
	data *gridXYZ
	cmap palette.ColorMap
}

func (h *heatTerm) RenderTerm(cols, rows int) string {
	g := h.data.g
	if g == nil || g.Rows == 0 || g.Cols == 0 || cols < 1 || rows < 1 {
		return ""
	}
	if cols > g.Cols {
		cols = g.Cols
	}
	pixRows := rows * 2
	if pixRows > g.Rows {
		pixRows = g.Rows + g.Rows%2
		rows = pixRows / 2
	}

	sample := func(py, px int) string {
		r := py * g.Rows / pixRows
		if r >= g.Rows {
			r = g.Rows - 1
		}
		return h.hex(g.At(r, px*g.Cols/cols))
	}

	var b strings.Builder
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(sample(2*y, x))).
				Background(lipgloss.Color(sample(2*y+1, x)))
			b.WriteString(style.Render("▀"))
		}
		if y < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (h *heatTerm) hex(v float64) string {
	if math.IsNaN(v) {
		return "#000000"
	}
	v = math.Max(h.cmap.Min(), math.Min(h.cmap.Max(), v))
	c, err := h.cmap.At(v)
	if err != nil {
		return "#000000"
	}
	return colorHex(c)
}

func colorHex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return hexColor(int(r>>8), int(g>>8), int(b>>8))
}
