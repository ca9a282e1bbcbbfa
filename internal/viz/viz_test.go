package viz

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/fkviz/internal/field"
	"github.com/san-kum/fkviz/internal/figure"
	"github.com/san-kum/fkviz/internal/physics"
)

func ramp(rows, cols int, offset float64) *field.Grid {
	g := field.NewGrid(rows, cols)
	for i := range g.Data {
		g.Data[i] = offset + float64(i)/float64(len(g.Data))
	}
	return g
}

func testState(t *testing.T, rows, cols int, offset float64) field.State {
	t.Helper()
	st, err := field.NewState(physics.FieldNames, ramp(rows, cols, offset), ramp(rows, cols, 0.5), ramp(rows, cols, 0.2))
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func testSequence(t *testing.T, n int) field.Sequence {
	t.Helper()
	seq := make(field.Sequence, n)
	for i := range seq {
		seq[i] = testState(t, 6, 8, float64(i)/10)
	}
	return seq
}

func TestPlotState(t *testing.T) {
	f, err := PlotState(testState(t, 6, 8, 0))
	if err != nil {
		t.Fatal(err)
	}
	panels := f.Active()
	if len(panels) != 3 {
		t.Fatalf("panels = %d, want 3", len(panels))
	}
	for i, p := range panels {
		if p.Title() != physics.FieldNames[i] {
			t.Errorf("panel %d title = %q, want %q", i, p.Title(), physics.FieldNames[i])
		}
		if p.ColorBar == nil {
			t.Errorf("panel %d has no colour bar", i)
		}
		if p.Plot.X.Label.Text != "x [cm]" || p.Plot.Y.Label.Text != "y [cm]" {
			t.Errorf("panel %d labels = %q, %q", i, p.Plot.X.Label.Text, p.Plot.Y.Label.Text)
		}
	}
}

func TestPlotStateErrors(t *testing.T) {
	if _, err := PlotState(field.State{}); !errors.Is(err, ErrNoData) {
		t.Errorf("empty state err = %v, want ErrNoData", err)
	}
	_, err := PlotState(testState(t, 4, 4, 0), WithColorMap("jet"))
	if !errors.Is(err, figure.ErrUnknownColorMap) {
		t.Errorf("err = %v, want ErrUnknownColorMap", err)
	}
}

func TestPlotStateSaves(t *testing.T) {
	f, err := PlotState(testState(t, 6, 8, 0), WithSize(6, 2))
	if err != nil {
		t.Fatal(err)
	}
	path, err := f.Save(filepath.Join(t.TempDir(), "state.png"))
	if err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("stat %s: %v", path, err)
	}
}

func TestGridLayout(t *testing.T) {
	tests := []struct {
		n, rows        int
		lines, perLine int
	}{
		{12, 5, 3, 5},
		{1, 5, 1, 2},
		{5, 5, 1, 5},
		{7, 3, 3, 3},
		{3, 10, 1, 3},
		{3, 0, 3, 2},
	}
	for _, tt := range tests {
		lines, perLine := GridLayout(tt.n, tt.rows)
		if lines != tt.lines || perLine != tt.perLine {
			t.Errorf("GridLayout(%d, %d) = %d, %d; want %d, %d", tt.n, tt.rows, lines, perLine, tt.lines, tt.perLine)
		}
		if lines*perLine < tt.n {
			t.Errorf("GridLayout(%d, %d) has room for %d panels", tt.n, tt.rows, lines*perLine)
		}
	}
}

func TestShowGridFontSizePersists(t *testing.T) {
	defer figure.SetFontSize(figure.DefaultFontSize)

	frames := []*field.Grid{ramp(4, 4, -85), ramp(4, 4, -40)}
	if _, err := ShowGrid(frames, nil, WithFontSize(14)); err != nil {
		t.Fatal(err)
	}
	if got := figure.FontSize(); got != 14 {
		t.Errorf("font size after ShowGrid = %v, want 14", got)
	}
	p := figure.NewPlot()
	if p.Title.TextStyle.Font.Size != 14 {
		t.Errorf("later plot title size = %v, want 14", p.Title.TextStyle.Font.Size)
	}
}

func TestAnimationFrameUpdatesInPlace(t *testing.T) {
	seq := testSequence(t, 4)
	a, err := AnimateState(seq, []float64{0, 2.5}, WithSize(6, 2))
	if err != nil {
		t.Fatal(err)
	}
	plots := make(map[int]any)
	for i, p := range a.Figure.Active() {
		plots[i] = p.Plot
	}

	a.Frame(3)
	for i, d := range a.data {
		if d.g != seq[3].Field(i) {
			t.Errorf("panel %d shows the wrong grid", i)
		}
	}
	for i, p := range a.Figure.Active() {
		if plots[i] != any(p.Plot) {
			t.Errorf("panel %d was replaced", i)
		}
	}
	if a.Figure.Title != "" {
		t.Errorf("unlabelled frame title = %q, want empty", a.Figure.Title)
	}
	if a.Frame(1).Title != "time: 2.5" {
		t.Errorf("title = %q, want time: 2.5", a.Figure.Title)
	}
}

func TestAnimationRender(t *testing.T) {
	a, err := AnimateState(testSequence(t, 2), nil, WithSize(4, 1.5))
	if err != nil {
		t.Fatal(err)
	}
	img, err := a.Render(1)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Empty() {
		t.Error("empty frame")
	}
	if _, err := a.Render(2); err == nil {
		t.Error("expected out of range error")
	}
}

func TestAnimationEmptyTimesUsesIndices(t *testing.T) {
	for _, times := range [][]float64{nil, {}} {
		a, err := AnimateState(testSequence(t, 3), times, WithSize(4, 1.5))
		if err != nil {
			t.Fatal(err)
		}
		if got := a.Frame(1).Title; got != "time: 1" {
			t.Errorf("times %v: title = %q, want %q", times, got, "time: 1")
		}
	}
}

func TestAnimateStateErrors(t *testing.T) {
	if _, err := AnimateState(nil, nil); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
	seq := field.Sequence{testState(t, 4, 4, 0), testState(t, 5, 4, 0)}
	if _, err := AnimateState(seq, nil); !errors.Is(err, ErrShapeChanged) {
		t.Errorf("err = %v, want ErrShapeChanged", err)
	}

	if err := figure.UseBackend("svg"); err != nil {
		t.Fatal(err)
	}
	defer figure.UseBackend("png")
	if _, err := AnimateState(testSequence(t, 1), nil, WithColorMap("jet")); err == nil {
		t.Error("expected colour map error")
	}
	if got := figure.Backend(); got != "svg" {
		t.Errorf("backend after failure = %q, want svg", got)
	}
}

func TestSampleIndices(t *testing.T) {
	tests := []struct {
		n, count int
		want     int
	}{
		{300, 200, 200},
		{300, 20, 20},
		{300, 10, 10},
		{50, 200, 50},
		{30, 10, 10},
		{40, 12, 12},
		{201, 200, 200},
		{2, 1, 2},
	}
	for _, tt := range tests {
		idx := sampleIndices(tt.n, tt.count)
		if len(idx) != tt.want {
			t.Errorf("sampleIndices(%d, %d) has %d entries, want %d", tt.n, tt.count, len(idx), tt.want)
		}
		if idx[0] != 0 || idx[len(idx)-1] != tt.n-1 {
			t.Errorf("sampleIndices(%d, %d) = %v, want both ends", tt.n, tt.count, idx)
		}
		for i := 1; i < len(idx); i++ {
			if idx[i] <= idx[i-1] {
				t.Errorf("sampleIndices(%d, %d) = %v, not strictly increasing", tt.n, tt.count, idx)
				break
			}
		}
	}
}

func TestShow3D(t *testing.T) {
	g := physics.GridToMillivolts(ramp(30, 40, 0))
	f, err := Show3D(g, WithZLim(-100, 30), WithSamples(10, 12), WithSize(4, 3))
	if err != nil {
		t.Fatal(err)
	}
	panels := f.Active()
	if len(panels) != 1 {
		t.Fatalf("panels = %d, want 1", len(panels))
	}
	if panels[0].ColorBar.Title.Text != "mV" {
		t.Errorf("colour bar title = %q, want mV", panels[0].ColorBar.Title.Text)
	}
	if _, err := f.Save(filepath.Join(t.TempDir(), "surface.png")); err != nil {
		t.Fatal(err)
	}

	s := NewSurface(g, nil, 10, 12)
	if r, c := s.Samples(); r != 10 || c != 12 {
		t.Errorf("samples = %dx%d, want 10x12", r, c)
	}

	if _, err := Show3D(field.NewGrid(1, 5)); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestSurfaceHeightClamps(t *testing.T) {
	s := &Surface{ZMin: -85, ZMax: 15}
	if h := s.height(-200); h != -boxHalfHeight {
		t.Errorf("height below range = %v, want %v", h, -boxHalfHeight)
	}
	if h := s.height(100); h != boxHalfHeight {
		t.Errorf("height above range = %v, want %v", h, boxHalfHeight)
	}
}

func TestTermRendering(t *testing.T) {
	f, err := PlotState(testState(t, 12, 20, 0))
	if err != nil {
		t.Fatal(err)
	}
	out := f.Active()[0].Term.RenderTerm(10, 4)
	if lines := strings.Count(out, "\n") + 1; lines != 4 {
		t.Errorf("lines = %d, want 4", lines)
	}
	if !strings.Contains(out, "▀") {
		t.Error("no half blocks in output")
	}
}

func TestRender3D(t *testing.T) {
	c := NewCanvas(20, 10)
	wf := NewWireframe()
	wf.AddEdge(Vec3{-0.5, 0, 0}, Vec3{0.5, 0, 0})
	Render3D(c, wf, SurfaceCamera())
	if strings.Trim(c.String(), "⠀\n") == "" {
		t.Error("wireframe drew nothing")
	}

	x, y, _, ok := SurfaceCamera().ProjectF(Vec3{})
	if !ok || x != 0 || y != 0 {
		t.Errorf("origin projects to (%v, %v, %v)", x, y, ok)
	}
}

func TestPlotStimuli(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotStimuli[physics.Stimulus](&buf, nil); err != nil {
		t.Fatalf("zero stimuli: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("zero stimuli wrote %q", buf.String())
	}

	stimuli := []physics.Stimulus{
		physics.Linear(10, 10, physics.Left, 0.2, 1, physics.Protocol{Duration: 2}),
		physics.Circular(10, 10, physics.Cell{Row: 5, Col: 5}, 2, -1, physics.Protocol{Duration: 2}),
	}
	if err := PlotStimuli(&buf, stimuli); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Stimulus 0", "Stimulus 1"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(p Player, keys ...string) Player {
	for _, k := range keys {
		m, _ := p.Update(key(k))
		p = m.(Player)
	}
	return p
}

func TestThemesFollowColorMaps(t *testing.T) {
	for _, th := range Themes {
		cm, err := figure.ColorMap(th.ColorMap, 0, 1)
		if err != nil {
			t.Errorf("theme %s: %v", th.Name, err)
			continue
		}
		c, _ := cm.At(0.9)
		if want := lipgloss.Color(colorHex(c)); th.Primary != want {
			t.Errorf("theme %s primary = %s, want %s", th.Name, th.Primary, want)
		}
	}
	if GetTheme("no-such-theme").Name != Themes[0].Name {
		t.Error("unknown theme should fall back to the first")
	}

	saved := CurrentTheme
	t.Cleanup(func() { CurrentTheme = saved })
	SetTheme("viridis")
	if CurrentTheme.ColorMap != "viridis" {
		t.Errorf("current colour map = %s, want viridis", CurrentTheme.ColorMap)
	}
}

func TestPlayerThemeKeyCycles(t *testing.T) {
	saved := CurrentTheme
	t.Cleanup(func() { CurrentTheme = saved })
	SetTheme(Themes[0].Name)

	a, err := AnimateState(testSequence(t, 2), nil, WithSize(4, 1.5))
	if err != nil {
		t.Fatal(err)
	}
	p := press(NewPlayer(a, PlayerOptions{}), "t")
	if CurrentTheme.Name != Themes[1].Name {
		t.Errorf("theme after t = %s, want %s", CurrentTheme.Name, Themes[1].Name)
	}
	p = press(p, "3")
	if view := p.View(); !strings.Contains(view, Themes[1].Name) {
		t.Errorf("surface view does not name theme %s", Themes[1].Name)
	}
}

func TestPlayerKeys(t *testing.T) {
	a, err := AnimateState(testSequence(t, 3), nil, WithSize(4, 1.5))
	if err != nil {
		t.Fatal(err)
	}
	p := NewPlayer(a, PlayerOptions{})

	p = press(p, "]", "]", "]")
	if p.Frame() != 2 {
		t.Errorf("frame = %d, want 2", p.Frame())
	}
	if p.running {
		t.Error("stepping should pause playback")
	}
	p = press(p, "[")
	if p.Frame() != 1 {
		t.Errorf("frame = %d, want 1", p.Frame())
	}
	p = press(p, "r")
	if p.Frame() != 0 {
		t.Errorf("frame after restart = %d, want 0", p.Frame())
	}

	m, _ := p.Update(TickMsg{})
	if m.(Player).Frame() != 0 {
		t.Error("paused player advanced on tick")
	}
	p = press(p, " ")
	m, _ = p.Update(TickMsg{})
	if m.(Player).Frame() != 1 {
		t.Error("running player did not advance on tick")
	}

	if view := p.View(); !strings.Contains(view, "Frame") {
		t.Error("view is missing the frame counter")
	}
	p = press(p, "3")
	if view := p.View(); view == "" {
		t.Error("surface view is empty")
	}
}

func TestPlayerRecordsGIF(t *testing.T) {
	a, err := AnimateState(testSequence(t, 3), nil, WithSize(3, 1))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "rec.gif")
	p := NewPlayer(a, PlayerOptions{GIFPath: path})

	p = press(p, "g", "]", "]", "g")
	if p.recording {
		t.Error("recording should have stopped")
	}
	if len(p.recorded) != 3 {
		t.Errorf("recorded %d frames, want 3", len(p.recorded))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("gif not written: %v (status %q)", err, p.status)
	}
	if a.Current() != 2 {
		t.Errorf("animation left on frame %d, want 2", a.Current())
	}
}
