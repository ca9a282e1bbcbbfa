package figure

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var ErrNotSavable = errors.New("figure: backend cannot be written to a file")

// TermRenderer draws a panel as text for terminal display, within the
// given number of character columns and rows.
type TermRenderer interface {
	RenderTerm(cols, rows int) string
}

// Panel is one tile of a figure: a main plot, an optional colour bar drawn
// to its right, and an optional terminal rendering of the same data.
type Panel struct {
	Plot     *plot.Plot
	ColorBar *plot.Plot
	Term     TermRenderer
}

// Title returns the title of the main plot.
func (p *Panel) Title() string {
	if p == nil || p.Plot == nil {
		return ""
	}
	return p.Plot.Title.Text
}

func (p *Panel) Draw(c draw.Canvas) {
	if p.Plot == nil {
		return
	}
	if p.ColorBar == nil {
		p.Plot.Draw(c)
		return
	}
	w := c.Max.X - c.Min.X
	barW := w * 0.18
	if minW := vg.Centimeter * 1.6; barW < minW && w > 3*minW {
		barW = minW
	}
	p.Plot.Draw(draw.Crop(c, 0, -barW, 0, 0))
	p.ColorBar.Draw(draw.Crop(c, w-barW, 0, 0, 0))
}

// Figure is a Rows x Cols arrangement of panels. Panels are stored row-major;
// a nil entry is an empty tile.
type Figure struct {
	Width, Height vg.Length
	Rows, Cols    int
	Title         string
	Panels        []*Panel

	// TermCols and TermRows size each panel when shown in a terminal.
	TermCols, TermRows int
}

func New(rows, cols int, width, height vg.Length) *Figure {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return &Figure{
		Width:    width,
		Height:   height,
		Rows:     rows,
		Cols:     cols,
		Panels:   make([]*Panel, rows*cols),
		TermCols: 40,
		TermRows: 16,
	}
}

// Set places p in tile i, counted row-major.
func (f *Figure) Set(i int, p *Panel) {
	f.Panels[i] = p
}

func (f *Figure) At(row, col int) *Panel {
	return f.Panels[row*f.Cols+col]
}

// Active returns the non-empty panels in layout order.
func (f *Figure) Active() []*Panel {
	out := make([]*Panel, 0, len(f.Panels))
	for _, p := range f.Panels {
		if p != nil && p.Plot != nil {
			out = append(out, p)
		}
	}
	return out
}

func (f *Figure) titleStyle() text.Style {
	return text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, FontSize()*1.2),
		XAlign:  text.XCenter,
		YAlign:  text.YTop,
		Handler: plot.DefaultTextHandler,
	}
}

func (f *Figure) Draw(c draw.Canvas) {
	c.SetColor(color.White)
	c.Fill(c.Rectangle.Path())

	if f.Title != "" {
		sty := f.titleStyle()
		pad := vg.Millimeter * 2
		c.FillText(sty, vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: c.Max.Y - pad}, f.Title)
		c = draw.Crop(c, 0, 0, 0, -(sty.Height(f.Title) + 2*pad))
	}

	tiles := draw.Tiles{
		Rows:      f.Rows,
		Cols:      f.Cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	for i, p := range f.Panels {
		if p == nil {
			continue
		}
		p.Draw(tiles.At(c, i%f.Cols, i/f.Cols))
	}
}

// Image rasterizes the figure at the default resolution.
func (f *Figure) Image() image.Image {
	c := vgimg.New(f.Width, f.Height)
	f.Draw(draw.New(c))
	return c.Image()
}

// WriterTo renders the figure in the given file format.
func (f *Figure) WriterTo(format string) (io.WriterTo, error) {
	format = strings.ToLower(format)
	if format == "term" {
		return nil, fmt.Errorf("%w: %s", ErrNotSavable, format)
	}
	c, err := draw.NewFormattedCanvas(f.Width, f.Height, format)
	if err != nil {
		return nil, fmt.Errorf("figure: %w", err)
	}
	f.Draw(draw.New(c))
	return c, nil
}

// Save writes the figure to path. The format follows the file extension, or
// the active backend when there is none, in which case the extension is
// appended. It returns the path written.
func (f *Figure) Save(path string) (string, error) {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		format = Backend()
		path += "." + format
	}
	wt, err := f.WriterTo(format)
	if err != nil {
		return "", err
	}
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := wt.WriteTo(out); err != nil {
		out.Close()
		return "", err
	}
	return path, out.Close()
}

var (
	termTitleStyle = lipgloss.NewStyle().Bold(true)
	termPanelStyle = lipgloss.NewStyle().MarginRight(2)
)

// TermString lays the panels out as text, one row of panels per line block.
// Panels without a terminal renderer are shown by title only.
func (f *Figure) TermString() string {
	var rows []string
	if f.Title != "" {
		rows = append(rows, termTitleStyle.Render(f.Title))
	}
	for r := 0; r < f.Rows; r++ {
		var blocks []string
		for c := 0; c < f.Cols; c++ {
			p := f.At(r, c)
			if p == nil || p.Plot == nil {
				continue
			}
			body := ""
			if p.Term != nil {
				body = p.Term.RenderTerm(f.TermCols, f.TermRows)
			}
			blocks = append(blocks, termPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, termTitleStyle.Render(p.Title()), body)))
		}
		if len(blocks) > 0 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Show displays the figure on w as text.
func (f *Figure) Show(w io.Writer) error {
	_, err := fmt.Fprintln(w, f.TermString())
	return err
}
