package viz

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/san-kum/fkviz/internal/field"
	"github.com/san-kum/fkviz/internal/figure"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

func surfaceDefaults() options {
	return options{
		cmap:   "magma",
		rcount: 200,
		ccount: 200,
		width:  6.4 * vg.Inch,
		height: 4.8 * vg.Inch,
	}
}

// Show3D draws g as a surface over its grid indices, x and y in cm and
// height in mV. Colours span the data range; WithZLim fixes the height
// axis. The mesh keeps at most WithSamples points per direction.
func Show3D(g *field.Grid, opts ...Option) (*figure.Figure, error) {
	if g == nil || g.Rows < 2 || g.Cols < 2 {
		return nil, fmt.Errorf("%w: surface needs at least 2x2 cells", ErrNoData)
	}
	o := apply(surfaceDefaults(), opts)
	lo, hi := g.Range()
	cm, err := figure.ColorMap(o.cmap, lo, hi)
	if err != nil {
		return nil, err
	}

	s := NewSurface(g, cm, o.rcount, o.ccount)
	if o.zlim != nil {
		s.ZMin, s.ZMax = o.zlim[0], o.zlim[1]
	}

	p := figure.NewPlot()
	p.HideAxes()
	p.Add(s)

	f := figure.New(1, 1, o.width, o.height)
	f.Set(0, &figure.Panel{
		Plot:     p,
		ColorBar: figure.NewColorBar(cm, "mV"),
		Term:     &surfaceTerm{s: s},
	})
	return f, nil
}

// Surface is a plot.Plotter drawing a height field in perspective. Quads
// are filled far to near.
type Surface struct {
	Grid       *field.Grid
	ColorMap   palette.ColorMap
	ZMin, ZMax float64
	Camera     *Camera

	rows, cols []int
}

func NewSurface(g *field.Grid, cm palette.ColorMap, rcount, ccount int) *Surface {
	lo, hi := g.Range()
	return &Surface{
		Grid:     g,
		ColorMap: cm,
		ZMin:     lo,
		ZMax:     hi,
		Camera:   SurfaceCamera(),
		rows:     sampleIndices(g.Rows, rcount),
		cols:     sampleIndices(g.Cols, ccount),
	}
}

// Samples returns the mesh size after down-sampling.
func (s *Surface) Samples() (rows, cols int) { return len(s.rows), len(s.cols) }

// sampleIndices picks min(n, count) evenly spaced indices from [0, n),
// always keeping both ends.
func sampleIndices(n, count int) []int {
	if count < 2 {
		count = 2
	}
	if n <= count {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	step := float64(n-1) / float64(count-1)
	idx := make([]int, count)
	for i := range idx {
		idx[i] = int(math.Round(float64(i) * step))
	}
	return idx
}

const boxHalfHeight = 0.3

func (s *Surface) height(v float64) float64 {
	lo, hi := s.ZMin, s.ZMax
	if !(hi > lo) {
		hi = lo + 1
	}
	t := (math.Max(lo, math.Min(hi, v)) - lo) / (hi - lo)
	return 2*boxHalfHeight*t - boxHalfHeight
}

func (s *Surface) world(r, c int) Vec3 {
	return Vec3{
		X: float64(c)/float64(s.Grid.Cols-1) - 0.5,
		Y: s.height(s.Grid.At(r, c)),
		Z: float64(r)/float64(s.Grid.Rows-1) - 0.5,
	}
}

type quad struct {
	pts   []vg.Point
	depth float64
	fill  color.Color
}

// screen fits the projection of the bounding box into c.
type screen struct {
	cam       *Camera
	x0, y0, k float64
	ox, oy    vg.Length
}

func newScreen(cam *Camera, c draw.Canvas) screen {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, x := range []float64{-0.5, 0.5} {
		for _, y := range []float64{-boxHalfHeight, boxHalfHeight} {
			for _, z := range []float64{-0.5, 0.5} {
				px, py, _, ok := cam.ProjectF(Vec3{x, y, z})
				if !ok {
					continue
				}
				minX, maxX = math.Min(minX, px), math.Max(maxX, px)
				minY, maxY = math.Min(minY, py), math.Max(maxY, py)
			}
		}
	}
	w, h := float64(c.Max.X-c.Min.X), float64(c.Max.Y-c.Min.Y)
	k := math.Min(w/(maxX-minX), h/(maxY-minY))
	return screen{
		cam: cam,
		x0:  minX,
		y0:  minY,
		k:   k,
		ox:  c.Min.X + vg.Length((w-k*(maxX-minX))/2),
		oy:  c.Min.Y + vg.Length((h-k*(maxY-minY))/2),
	}
}

func (sc screen) point(p Vec3) (vg.Point, float64, bool) {
	x, y, depth, ok := sc.cam.ProjectF(p)
	return vg.Point{
		X: sc.ox + vg.Length((x-sc.x0)*sc.k),
		Y: sc.oy + vg.Length((y-sc.y0)*sc.k),
	}, depth, ok
}

func (s *Surface) Plot(c draw.Canvas, _ *plot.Plot) {
	size := figure.FontSize()
	margin := 3 * size
	area := draw.Crop(c, margin, -margin, margin, -margin/2)
	sc := newScreen(s.Camera, area)

	edge := draw.LineStyle{Color: color.Gray{Y: 160}, Width: vg.Points(0.5)}
	floor := []Vec3{
		{-0.5, -boxHalfHeight, -0.5}, {0.5, -boxHalfHeight, -0.5},
		{0.5, -boxHalfHeight, 0.5}, {-0.5, -boxHalfHeight, 0.5},
		{-0.5, -boxHalfHeight, -0.5},
	}
	var line []vg.Point
	for _, v := range floor {
		if pt, _, ok := sc.point(v); ok {
			line = append(line, pt)
		}
	}
	c.StrokeLines(edge, line)
	c.StrokeLines(edge, s.segment(sc, Vec3{0.5, -boxHalfHeight, 0.5}, Vec3{0.5, boxHalfHeight, 0.5}))

	for _, q := range s.quads(sc) {
		c.FillPolygon(q.fill, q.pts)
	}
	s.labels(c, sc, size)
}

func (s *Surface) segment(sc screen, a, b Vec3) []vg.Point {
	pa, _, okA := sc.point(a)
	pb, _, okB := sc.point(b)
	if !okA || !okB {
		return nil
	}
	return []vg.Point{pa, pb}
}

func (s *Surface) quads(sc screen) []quad {
	out := make([]quad, 0, (len(s.rows)-1)*(len(s.cols)-1))
	for i := 0; i+1 < len(s.rows); i++ {
		for j := 0; j+1 < len(s.cols); j++ {
			corners := [4][2]int{
				{s.rows[i], s.cols[j]}, {s.rows[i], s.cols[j+1]},
				{s.rows[i+1], s.cols[j+1]}, {s.rows[i+1], s.cols[j]},
			}
			q := quad{pts: make([]vg.Point, 0, 4)}
			var sum float64
			visible := true
			for _, rc := range corners {
				pt, depth, ok := sc.point(s.world(rc[0], rc[1]))
				if !ok {
					visible = false
					break
				}
				q.pts = append(q.pts, pt)
				q.depth += depth / 4
				sum += s.Grid.At(rc[0], rc[1])
			}
			if !visible {
				continue
			}
			q.fill = s.colorAt(sum / 4)
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].depth < out[b].depth })
	return out
}

func (s *Surface) colorAt(v float64) color.Color {
	if math.IsNaN(v) {
		return color.Transparent
	}
	v = math.Max(s.ColorMap.Min(), math.Min(s.ColorMap.Max(), v))
	col, err := s.ColorMap.At(v)
	if err != nil {
		return color.Transparent
	}
	return col
}

func (s *Surface) labels(c draw.Canvas, sc screen, size vg.Length) {
	sty := text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, size),
		Handler: plot.DefaultTextHandler,
	}
	put := func(v Vec3, xa text.XAlignment, ya text.YAlignment, label string) {
		if pt, _, ok := sc.point(v); ok {
			st := sty
			st.XAlign, st.YAlign = xa, ya
			c.FillText(st, pt, label)
		}
	}

	ticks := figure.CentimeterTicks()
	for _, t := range ticks.Ticks(0, float64(s.Grid.Cols-1)) {
		if t.IsMinor() {
			continue
		}
		x := t.Value/float64(s.Grid.Cols-1) - 0.5
		put(Vec3{x, -boxHalfHeight, 0.58}, text.XCenter, text.YTop, t.Label)
	}
	for _, t := range ticks.Ticks(0, float64(s.Grid.Rows-1)) {
		if t.IsMinor() {
			continue
		}
		z := t.Value/float64(s.Grid.Rows-1) - 0.5
		put(Vec3{-0.58, -boxHalfHeight, z}, text.XRight, text.YCenter, t.Label)
	}
	for _, t := range (plot.DefaultTicks{}).Ticks(s.ZMin, s.ZMax) {
		if t.IsMinor() {
			continue
		}
		put(Vec3{0.56, s.height(t.Value), 0.5}, text.XLeft, text.YCenter, t.Label)
	}

	put(Vec3{0, -boxHalfHeight, 0.8}, text.XCenter, text.YTop, "x [cm]")
	put(Vec3{-0.8, -boxHalfHeight, 0}, text.XRight, text.YCenter, "y [cm]")
	put(Vec3{0.5, boxHalfHeight + 0.08, 0.5}, text.XCenter, text.YBottom, "Voltage [mV]")
}

// surfaceTerm renders the surface mesh as a braille wireframe.
type surfaceTerm struct {
	s *Surface
}

const termMeshLines = 24

func (t *surfaceTerm) RenderTerm(cols, rows int) string {
	s := t.s
	canvas := NewCanvas(cols, rows)
	ri := sampleIndices(len(s.rows), termMeshLines)
	ci := sampleIndices(len(s.cols), termMeshLines)

	wf := NewWireframe()
	for _, i := range ri {
		r := s.rows[i]
		for j := 0; j+1 < len(s.cols); j++ {
			wf.AddEdge(s.world(r, s.cols[j]), s.world(r, s.cols[j+1]))
		}
	}
	for _, j := range ci {
		c := s.cols[j]
		for i := 0; i+1 < len(s.rows); i++ {
			wf.AddEdge(s.world(s.rows[i], c), s.world(s.rows[i+1], c))
		}
	}
	cam := *s.Camera
	cam.Zoom *= 1.4
	Render3D(canvas, wf, &cam)
	return canvas.String()
}
