package viz

import (
	"fmt"
	"image"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/fkviz/internal/export"
	"github.com/san-kum/fkviz/internal/figure"
)

var (
	panelStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// PlayerOptions configure a Player. Zero values select the defaults.
type PlayerOptions struct {
	FPS int
	// PanelCols and PanelRows size each heatmap in characters.
	PanelCols, PanelRows int
	// GIFPath is where recordings are written.
	GIFPath string
}

// Player is a Bubble Tea model replaying an Animation in the terminal.
type Player struct {
	anim      *Animation
	opts      PlayerOptions
	frame     int
	running   bool
	showHelp  bool
	surface   bool
	camera    *Camera
	recording bool
	recorded  []int
	means     []float64
	status    string
}

func NewPlayer(a *Animation, opts PlayerOptions) Player {
	if opts.FPS <= 0 {
		opts.FPS = 10
	}
	if opts.PanelCols <= 0 {
		opts.PanelCols = 40
	}
	if opts.PanelRows <= 0 {
		opts.PanelRows = 16
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "animation.gif"
	}
	means := make([]float64, a.Len())
	for i := range means {
		means[i] = a.State(i).Field(0).Mean()
	}
	a.Figure.TermCols, a.Figure.TermRows = opts.PanelCols, opts.PanelRows
	return Player{
		anim:    a,
		opts:    opts,
		running: true,
		camera:  SurfaceCamera(),
		means:   means,
	}
}

// Play runs a Player on the terminal until the user quits.
func Play(a *Animation, opts PlayerOptions) error {
	_, err := tea.NewProgram(NewPlayer(a, opts), tea.WithAltScreen()).Run()
	return err
}

func (p Player) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(p.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (p Player) Init() tea.Cmd {
	return p.tick()
}

// Frame returns the index of the frame on display.
func (p Player) Frame() int { return p.frame }

func (p Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return p, tea.Quit
		case " ":
			p.running = !p.running
		case "r":
			p.frame = 0
			p.status = ""
		case "[":
			p.running = false
			p.seek(-1)
		case "]":
			p.running = false
			p.seek(1)
		case "g":
			p.toggleRecording()
		case "?":
			p.showHelp = !p.showHelp
		case "t":
			names := ThemeNames()
			for i, name := range names {
				if name == CurrentTheme.Name {
					SetTheme(names[(i+1)%len(names)])
					break
				}
			}
		case "3":
			p.surface = !p.surface
		case "x":
			p.camera.RotateX(0.1)
		case "X":
			p.camera.RotateX(-0.1)
		case "y":
			p.camera.RotateY(0.1)
		case "Y":
			p.camera.RotateY(-0.1)
		case "+", "=":
			p.camera.ZoomIn()
		case "-", "_":
			p.camera.ZoomOut()
		}
	case TickMsg:
		if p.running {
			p.seek(1)
			if p.frame == p.anim.Len()-1 && !p.recording {
				p.running = false
			}
		}
		return p, p.tick()
	}
	return p, nil
}

func (p *Player) seek(dir int) {
	next := p.frame + dir
	if next < 0 || next >= p.anim.Len() {
		return
	}
	p.frame = next
	if p.recording {
		p.recorded = append(p.recorded, next)
	}
}

func (p *Player) toggleRecording() {
	if !p.recording {
		p.recording = true
		p.recorded = append(p.recorded[:0], p.frame)
		p.status = "recording"
		return
	}
	p.recording = false
	err := export.SaveGIF(p.opts.GIFPath, recordedFrames{p.anim, p.recorded}, export.Options{FPS: p.opts.FPS})
	p.anim.Frame(p.frame)
	if err != nil {
		p.status = "gif: " + err.Error()
		return
	}
	p.status = fmt.Sprintf("saved %d frames to %s", len(p.recorded), p.opts.GIFPath)
}

// recordedFrames renders a subset of an animation's frames.
type recordedFrames struct {
	anim   *Animation
	frames []int
}

func (r recordedFrames) Len() int { return len(r.frames) }

func (r recordedFrames) Render(i int) (image.Image, error) {
	return r.anim.Render(r.frames[i])
}

func (p Player) View() string {
	fig := p.anim.Frame(p.frame)

	var main string
	if p.surface {
		main = p.surfaceView()
	} else {
		main = fig.TermString()
	}

	var s strings.Builder
	s.WriteString(GradientText("FENTON-KARMA", CurrentTheme.Primary, CurrentTheme.Secondary) + "\n")
	status := StatusRunning.Render("PLAYING")
	switch {
	case p.recording:
		status = StatusRecording.Render("● REC")
	case !p.running:
		status = StatusPaused.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	if p.frame > 0 {
		chart := asciigraph.Plot(p.means[:p.frame+1], asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("mean "+p.anim.State(0).Name(0)))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(SparklineChart(p.means, 30) + "\n\n")

	progress := 1.0
	if n := p.anim.Len(); n > 1 {
		progress = float64(p.frame) / float64(n-1)
	}
	s.WriteString(ProgressBar(progress, 30) + "\n")
	s.WriteString(labelStyle.Render("Frame") + valueStyle.Render(fmt.Sprintf("%d/%d", p.frame+1, p.anim.Len())) + "\n")
	if t, ok := p.anim.Time(p.frame); ok {
		s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%g", t)) + "\n")
	}
	st := p.anim.State(p.frame)
	for i := 0; i < st.Len(); i++ {
		lo, hi := st.Field(i).Range()
		s.WriteString(labelStyle.Render(st.Name(i)) + MetricValue.Render(fmt.Sprintf("%.3f .. %.3f", lo, hi)) + "\n")
	}
	s.WriteString(labelStyle.Render("Theme") + valueStyle.Render(CurrentTheme.Name) + "\n")
	if p.status != "" {
		s.WriteString("\n" + CurrentTheme.Label().Render(p.status) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause [ ]:Step R:Restart\nG:Record 3:Surface T:Theme ?:Help Q:Quit"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, CurrentTheme.Border().Render(panelStyle.Render(main)), statsStyle.Render(s.String()))
	if p.showHelp {
		return helpText + "\n" + view
	}
	return view
}

func (p Player) surfaceView() string {
	g := p.anim.State(p.frame).Field(0)
	if g.Rows < 2 || g.Cols < 2 {
		return "grid too small for a surface"
	}
	lo, hi := g.Range()
	cm, err := figure.ColorMap(CurrentTheme.ColorMap, lo, hi)
	if err != nil {
		return err.Error()
	}
	s := NewSurface(g, cm, 60, 60)
	s.Camera = p.camera
	t := &surfaceTerm{s: s}
	return t.RenderTerm(p.opts.PanelCols*p.anim.Figure.Cols, p.opts.PanelRows*2)
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume playback    ║
║  [ ]      - Step back/forward        ║
║  R        - Restart from frame 0     ║
║  G        - Toggle GIF recording     ║
║  3        - Toggle surface view      ║
║  x/X y/Y  - Rotate surface           ║
║  + -      - Zoom surface             ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
`
