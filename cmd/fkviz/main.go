package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/fkviz/internal/analysis"
	"github.com/san-kum/fkviz/internal/automation"
	"github.com/san-kum/fkviz/internal/config"
	"github.com/san-kum/fkviz/internal/export"
	"github.com/san-kum/fkviz/internal/field"
	"github.com/san-kum/fkviz/internal/figure"
	"github.com/san-kum/fkviz/internal/integrators"
	"github.com/san-kum/fkviz/internal/physics"
	"github.com/san-kum/fkviz/internal/storage"
	"github.com/san-kum/fkviz/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	backend    string
	configFile string
	preset     string

	rows, cols  int
	dt          float64
	duration    float64
	sampleEvery int
	integrator  string
	paramSet    string
	paramFlags  []string

	out       string
	frameIdx  int
	fieldName string
	every     int
	gridRows  int
	zlim      []float64
	samples   int
	fps       int
	width     int
	tui       bool
	probeRow  int
	probeCol  int
	level     float64

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("fkviz: ")

	rootCmd := &cobra.Command{
		Use:               "fkviz",
		Short:             "Fenton-Karma simulation and visualization",
		SilenceUsage:      true,
		PersistentPreRunE: applyEnv,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "data", "data directory")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "png", "figure output format ("+strings.Join(figure.Backends, ", ")+")")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its frames",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one simulation per value of a model parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "sweep", "", "parameter to vary ("+strings.Join(physics.ParamNames(), ", ")+")")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.MarkFlagRequired("sweep")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted batch of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot every field of one frame",
		Args:  cobra.ExactArgs(1),
		RunE:  plotState,
	}
	plotCmd.Flags().IntVar(&frameIdx, "frame", -1, "frame index (negative counts from the end)")
	plotCmd.Flags().StringVarP(&out, "out", "o", "", "output file")

	animateCmd := &cobra.Command{
		Use:   "animate [run_id]",
		Short: "animate a run to GIF or AVI, or play it in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  animateRun,
	}
	animateCmd.Flags().StringVarP(&out, "out", "o", "", "output file (.gif or .avi)")
	animateCmd.Flags().IntVar(&fps, "fps", 10, "frames per second")
	animateCmd.Flags().IntVar(&width, "width", 0, "scale frames to this width in pixels")
	animateCmd.Flags().BoolVar(&tui, "tui", false, "play in the terminal")

	gridCmd := &cobra.Command{
		Use:   "grid [run_id]",
		Short: "show frames of one field side by side",
		Args:  cobra.ExactArgs(1),
		RunE:  showGrid,
	}
	gridCmd.Flags().StringVar(&fieldName, "field", "u", "field name")
	gridCmd.Flags().IntVar(&every, "every", 1, "use every n-th frame")
	gridCmd.Flags().IntVar(&gridRows, "rows", 5, "panels per line")
	gridCmd.Flags().StringVarP(&out, "out", "o", "", "output file")

	surfaceCmd := &cobra.Command{
		Use:   "surface [run_id]",
		Short: "draw one frame of a field as a 3D surface",
		Args:  cobra.ExactArgs(1),
		RunE:  showSurface,
	}
	surfaceCmd.Flags().IntVar(&frameIdx, "frame", -1, "frame index (negative counts from the end)")
	surfaceCmd.Flags().StringVar(&fieldName, "field", "u", "field name")
	surfaceCmd.Flags().Float64SliceVar(&zlim, "zlim", nil, "height axis limits lo,hi")
	surfaceCmd.Flags().IntVar(&samples, "samples", 200, "mesh samples per direction")
	surfaceCmd.Flags().StringVarP(&out, "out", "o", "", "output file")

	stimuliCmd := &cobra.Command{
		Use:   "stimuli",
		Short: "show the stimulus patterns of a configuration",
		Args:  cobra.NoArgs,
		RunE:  showStimuli,
	}
	stimuliCmd.Flags().StringVar(&preset, "preset", "", "preset to show")

	traceCmd := &cobra.Command{
		Use:   "trace [run_id]",
		Short: "plot the action potential of one cell",
		Args:  cobra.ExactArgs(1),
		RunE:  traceCell,
	}
	traceCmd.Flags().IntVar(&probeRow, "row", -1, "cell row (default: centre)")
	traceCmd.Flags().IntVar(&probeCol, "col", -1, "cell column (default: centre)")
	traceCmd.Flags().StringVar(&fieldName, "field", "u", "field name")
	traceCmd.Flags().Float64Var(&level, "level", -75, "activation and repolarisation level (mV)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSET\tGRID\tDURATION\tSTIMULI")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%dx%d\t%.0fms\t%d\n", name, p.ParamSet, p.Rows, p.Cols, p.Duration, len(p.Stimuli))
			}
			return w.Flush()
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	rootCmd.AddCommand(runCmd, sweepCmd, scenarioCmd, listCmd, plotCmd, animateCmd, gridCmd, surfaceCmd, stimuliCmd, traceCmd, presetsCmd, exportJSONCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "start from a preset ("+strings.Join(config.ListPresets(), ", ")+")")
	cmd.Flags().IntVar(&rows, "rows", config.DefaultRows, "grid rows")
	cmd.Flags().IntVar(&cols, "cols", config.DefaultCols, "grid columns")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (ms)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (ms)")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "steps between stored frames")
	cmd.Flags().StringVar(&integrator, "integrator", "euler", "integrator ("+strings.Join(integrators.Names, ", ")+")")
	cmd.Flags().StringVar(&paramSet, "param-set", physics.DefaultParamSet, "parameter set ("+strings.Join(physics.ParamSetNames(), ", ")+")")
	cmd.Flags().StringArrayVar(&paramFlags, "param", nil, "override a model parameter, key=value")
}

// applyEnv fills settings not given on the command line from FKVIZ_*
// variables and activates the figure backend.
func applyEnv(cmd *cobra.Command, args []string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("data") {
		dataDir = env.DataDir
	}
	if !flags.Changed("backend") {
		backend = env.Backend
	}
	if !flags.Changed("config") && env.Config != "" {
		configFile = env.Config
	}
	viz.SetTheme(env.Theme)
	return figure.UseBackend(backend)
}

// loadConfig resolves the run configuration: defaults, then preset, then
// config file, then flags set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Lookup("rows") == nil {
		return cfg, nil
	}
	if flags.Changed("rows") {
		cfg.Rows = rows
	}
	if flags.Changed("cols") {
		cfg.Cols = cols
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("param-set") {
		cfg.ParamSet = paramSet
	}
	for _, kv := range paramFlags {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --param %q, want key=value", kv)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --param %q: %w", kv, err)
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[k] = f
	}
	return cfg, nil
}

func plotConfig() (config.PlotConfig, error) {
	if configFile == "" {
		return config.PlotConfig{}, nil
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.PlotConfig{}, err
	}
	return cfg.Plot, nil
}

// plotOptions turns the plot block of a config into figure options. Unset
// entries keep each figure's defaults.
func plotOptions(pc config.PlotConfig) []viz.Option {
	var opts []viz.Option
	if pc.VMin != nil && pc.VMax != nil {
		opts = append(opts, viz.WithRange(*pc.VMin, *pc.VMax))
	}
	if pc.ColorMap != "" {
		opts = append(opts, viz.WithColorMap(pc.ColorMap))
	}
	if pc.Width > 0 && pc.Height > 0 {
		opts = append(opts, viz.WithSize(pc.Width, pc.Height))
	}
	if pc.Rows > 0 {
		opts = append(opts, viz.WithRows(pc.Rows))
	}
	if pc.FontSize > 0 {
		opts = append(opts, viz.WithFontSize(pc.FontSize))
	}
	return opts
}

func newRunner() (*automation.Runner, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return &automation.Runner{Store: st, Logf: log.Printf}, nil
}

func printOutcome(out automation.Outcome) {
	fmt.Printf("completed in %v\n", out.Elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", out.RunID)
	fmt.Printf("steps: %d\n", out.Steps)
	fmt.Printf("frames: %d\n", out.Frames)
	if len(out.Metrics) == 0 {
		return
	}
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(out.Metrics))
	for name := range out.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, out.Metrics[name])
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runner, err := newRunner()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := runner.Run(ctx, cfg)
	if out.RunID == "" {
		return err
	}
	printOutcome(out)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runner, err := newRunner()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := runner.RunSweep(ctx, automation.Sweep{
		Base:  cfg,
		Param: sweepParam,
		Min:   sweepMin,
		Max:   sweepMax,
		Steps: sweepSteps,
	})
	if len(results) > 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "%s\tRUN\tFRAMES\tPEAK\tMEAN mV\n", strings.ToUpper(sweepParam))
		for _, res := range results {
			fmt.Fprintf(w, "%.4g\t%s\t%d\t%.3f\t%.2f\n",
				res.Value, res.RunID, res.Frames,
				res.Metrics["peak_activation"], res.Metrics["mean_potential_mv"])
		}
		w.Flush()
	}
	return err
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	runner, err := newRunner()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if sc.Description != "" {
		fmt.Printf("%s: %s\n", sc.Name, sc.Description)
	}
	outcomes, err := runner.RunScenario(ctx, sc, filepath.Dir(args[0]))
	for _, out := range outcomes {
		fmt.Printf("%s\t%d frames\t%v\n", out.RunID, out.Frames, out.Elapsed.Round(time.Millisecond))
	}
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSET\tTIME\tGRID\tDURATION\tDT\tFRAMES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%.0fms\t%.4gms\t%d\n",
			run.ID,
			run.ParamSet,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Rows, run.Cols,
			run.Duration,
			run.Dt,
			run.Frames,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (field.Sequence, []float64, error) {
	seq, times, err := storage.New(dataDir).LoadSequence(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(seq) == 0 {
		return nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	return seq, times, nil
}

func pickFrame(n, i int) (int, error) {
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("frame %d out of range (run has %d frames)", frameIdx, n)
	}
	return i, nil
}

// inMillivolts converts the membrane potential field to mV and leaves
// other fields as they are.
func inMillivolts(name string, g *field.Grid) *field.Grid {
	if name != physics.FieldNames[0] {
		return g
	}
	return physics.GridToMillivolts(g)
}

// emit saves f, or prints it when the terminal backend is active and no
// file was named.
func emit(f *figure.Figure, path, fallback string) error {
	if path == "" {
		if figure.Backend() == "term" {
			return f.Show(os.Stdout)
		}
		path = fallback
	}
	written, err := f.Save(path)
	if err != nil {
		return err
	}
	fmt.Printf("saved %s\n", written)
	return nil
}

func plotState(cmd *cobra.Command, args []string) error {
	seq, times, err := loadRun(args[0])
	if err != nil {
		return err
	}
	i, err := pickFrame(len(seq), frameIdx)
	if err != nil {
		return err
	}
	pc, err := plotConfig()
	if err != nil {
		return err
	}
	f, err := viz.PlotState(seq[i], plotOptions(pc)...)
	if err != nil {
		return err
	}
	f.Title = fmt.Sprintf("t = %g ms", times[i])
	return emit(f, out, fmt.Sprintf("%s_state_%d", args[0], i))
}

func animateRun(cmd *cobra.Command, args []string) error {
	seq, times, err := loadRun(args[0])
	if err != nil {
		return err
	}
	pc, err := plotConfig()
	if err != nil {
		return err
	}
	anim, err := viz.AnimateState(seq, times, plotOptions(pc)...)
	if err != nil {
		return err
	}
	if tui {
		return viz.Play(anim, viz.PlayerOptions{FPS: fps, GIFPath: args[0] + ".gif"})
	}

	path := out
	if path == "" {
		path = args[0] + ".gif"
	}
	opts := export.Options{
		FPS:   fps,
		Width: width,
		Stamp: func(i int) string { return fmt.Sprintf("t = %g ms", times[i]) },
	}
	log.Printf("encoding %d frames...", anim.Len())
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gif":
		err = export.SaveGIF(path, anim, opts)
	case ".avi":
		err = export.WriteAVI(path, anim, opts)
	default:
		return fmt.Errorf("unsupported animation format %q (want .gif or .avi)", ext)
	}
	if err != nil {
		return err
	}
	fmt.Printf("saved %s\n", path)
	return nil
}

func showGrid(cmd *cobra.Command, args []string) error {
	seq, times, err := loadRun(args[0])
	if err != nil {
		return err
	}
	all, err := seq.Select(fieldName)
	if err != nil {
		return err
	}
	if every < 1 {
		every = 1
	}
	var frames []*field.Grid
	var labels []float64
	for i := 0; i < len(all); i += every {
		frames = append(frames, inMillivolts(fieldName, all[i]))
		labels = append(labels, times[i])
	}

	pc, err := plotConfig()
	if err != nil {
		return err
	}
	opts := plotOptions(pc)
	if cmd.Flags().Changed("rows") || pc.Rows == 0 {
		opts = append(opts, viz.WithRows(gridRows))
	}
	f, err := viz.ShowGrid(frames, labels, opts...)
	if err != nil {
		return err
	}
	return emit(f, out, fmt.Sprintf("%s_grid_%s", args[0], fieldName))
}

func showSurface(cmd *cobra.Command, args []string) error {
	seq, _, err := loadRun(args[0])
	if err != nil {
		return err
	}
	i, err := pickFrame(len(seq), frameIdx)
	if err != nil {
		return err
	}
	g, ok := seq[i].ByName(fieldName)
	if !ok {
		return fmt.Errorf("%w: %s", field.ErrUnknownField, fieldName)
	}

	opts := []viz.Option{viz.WithSamples(samples, samples)}
	switch len(zlim) {
	case 0:
	case 2:
		opts = append(opts, viz.WithZLim(zlim[0], zlim[1]))
	default:
		return fmt.Errorf("--zlim wants two values, got %d", len(zlim))
	}
	f, err := viz.Show3D(inMillivolts(fieldName, g), opts...)
	if err != nil {
		return err
	}
	return emit(f, out, fmt.Sprintf("%s_surface_%d", args[0], i))
}

func showStimuli(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fk, err := cfg.Build()
	if err != nil {
		return err
	}
	if len(fk.Stimuli) == 0 {
		fmt.Println("no stimuli configured")
	}
	return viz.PlotStimuli(os.Stdout, fk.Stimuli, plotOptions(cfg.Plot)...)
}

func traceCell(cmd *cobra.Command, args []string) error {
	seq, times, err := loadRun(args[0])
	if err != nil {
		return err
	}
	grids, err := seq.Select(fieldName)
	if err != nil {
		return err
	}
	r, c := probeRow, probeCol
	if r < 0 {
		r = grids[0].Rows / 2
	}
	if c < 0 {
		c = grids[0].Cols / 2
	}
	if r >= grids[0].Rows || c >= grids[0].Cols {
		return fmt.Errorf("cell (%d, %d) outside %dx%d grid", r, c, grids[0].Rows, grids[0].Cols)
	}

	data := make([]float64, len(grids))
	for i, g := range grids {
		data[i] = g.At(r, c)
		if fieldName == physics.FieldNames[0] {
			data[i] = physics.ToMillivolts(data[i])
		}
	}

	fmt.Printf("run: %s\n", args[0])
	fmt.Printf("cell: (%d, %d) of %dx%d\n", r, c, grids[0].Rows, grids[0].Cols)
	fmt.Printf("samples: %d over %g..%g ms\n\n", len(data), times[0], times[len(times)-1])
	if len(data) < 2 {
		fmt.Printf("%s = %.3f\n", fieldName, data[0])
		return nil
	}
	if fieldName == physics.FieldNames[0] {
		summary, err := analysis.Summarize(data, times, level)
		if err != nil {
			return err
		}
		fmt.Printf("range: %.1f..%.1f mV\n", summary.Min, summary.Max)
		fmt.Printf("activations: %d\n", len(summary.Activations))
		if len(summary.Durations) > 0 {
			fmt.Printf("mean APD at %g mV: %.1f ms\n", level, summary.MeanDuration())
		}
		if len(summary.CycleLengths) > 0 {
			fmt.Printf("mean cycle length: %.1f ms\n", summary.MeanCycle())
		}
		if summary.DominantHz > 0 {
			fmt.Printf("dominant frequency: %.2f Hz\n", summary.DominantHz)
		}
		fmt.Println()
	}
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s at (%d, %d) vs time", fieldName, r, c)),
	))
	return nil
}
