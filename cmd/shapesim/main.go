package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/entity"
	"github.com/san-kum/shapesim/internal/export"
	"github.com/san-kum/shapesim/internal/scene"
	"github.com/san-kum/shapesim/internal/shape"
	"github.com/san-kum/shapesim/internal/simulation"
	"github.com/san-kum/shapesim/internal/storage"
	"github.com/san-kum/shapesim/internal/sweep"
	"github.com/san-kum/shapesim/internal/tui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

var (
	dataDir  string
	logLevel string

	// Scene selection and overrides
	configFile    string
	preset        string
	dt            float64
	steps         int
	maxCollisions int

	// Probes
	origin      []float64
	direction   []float64
	center      []float64
	radius      float64
	plane       []float64
	atStep      int
	skipShape   int
	probeTarget string

	outFile   string
	svgOut    string
	svgWidth  int
	svgHeight int

	// Sweep
	dtValues     []float64
	speedValues  []float64
	radiusValues []float64
	sweepMetric  string
	maximize     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "shapesim",
		Short:         "collision shape lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(lvl)
			log.SetOutput(os.Stderr)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".shapesim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scene and store its contacts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	sceneFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot contacts per step",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	raycastCmd := &cobra.Command{
		Use:   "raycast [preset]",
		Short: "cast a ray into a scene",
		Args:  cobra.MaximumNArgs(1),
		RunE:  raycast,
	}
	sceneFlags(raycastCmd)
	raycastCmd.Flags().Float64SliceVar(&origin, "origin", []float64{0, 10, 0}, "ray origin x,y,z")
	raycastCmd.Flags().Float64SliceVar(&direction, "dir", []float64{0, -1, 0}, "ray direction x,y,z")
	raycastCmd.Flags().IntVar(&atStep, "at-step", 0, "advance the scene this many steps first")
	raycastCmd.Flags().StringVar(&probeTarget, "entity", "", "only test this entity")

	probeCmd := &cobra.Command{
		Use:   "probe [preset]",
		Short: "test a sphere or plane against a scene",
		Args:  cobra.MaximumNArgs(1),
		RunE:  probe,
	}
	sceneFlags(probeCmd)
	probeCmd.Flags().Float64SliceVar(&center, "center", []float64{0, 0, 0}, "sphere center x,y,z")
	probeCmd.Flags().Float64Var(&radius, "radius", 1, "sphere radius")
	probeCmd.Flags().Float64SliceVar(&plane, "plane", nil, "plane a,b,c,d (ax+by+cz+d=0); replaces the sphere")
	probeCmd.Flags().IntVar(&atStep, "at-step", 0, "advance the scene this many steps first")
	probeCmd.Flags().StringVar(&probeTarget, "entity", "", "only test this entity")
	probeCmd.Flags().IntVar(&skipShape, "skip", -1, "shape index to skip on --entity")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "step through a scene in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	sceneFlags(liveCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [preset]",
		Short: "write a side view of a scene as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshot,
	}
	sceneFlags(snapshotCmd)
	snapshotCmd.Flags().IntVar(&atStep, "at-step", 0, "advance the scene this many steps first")
	snapshotCmd.Flags().StringVarP(&svgOut, "out", "o", "scene.svg", "output file")
	snapshotCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	snapshotCmd.Flags().IntVar(&svgHeight, "height", 500, "image height")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run a scene over a grid of dt, speed and radius values",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sceneFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&dtValues, "dt-values", nil, "timesteps to try")
	sweepCmd.Flags().Float64SliceVar(&speedValues, "speed-values", nil, "velocity multipliers to try")
	sweepCmd.Flags().Float64SliceVar(&radiusValues, "radius-values", nil, "radius multipliers to try")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "contact_pairs", "metric to rank points by")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "rank by highest metric instead of lowest")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			sort.Strings(names)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tENTITIES\tSTEPS\tDT")
			for _, name := range names {
				sc := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%d\t%.4fs\n", name, len(sc.Entities), sc.Steps, sc.Dt)
			}
			return w.Flush()
		},
	}

	kindsCmd := &cobra.Command{
		Use:   "kinds",
		Short: "list entity kinds usable in scene files",
		Run: func(cmd *cobra.Command, args []string) {
			for _, k := range scene.NewRegistry().ListKinds() {
				fmt.Printf("  %s\n", k)
			}
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a scene file to start from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := config.DefaultScene()
			if preset != "" {
				if sc = config.GetPreset(preset); sc == nil {
					return fmt.Errorf("unknown preset: %s", preset)
				}
			}
			if err := config.Save(args[0], sc); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, raycastCmd, probeCmd, snapshotCmd, sweepCmd, liveCmd, presetsCmd, kindsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scene file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a built-in scene")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().IntVar(&maxCollisions, "max-collisions", config.DefaultMaxCollisions, "collision list capacity (0 = unbounded)")
}

// loadScene resolves the scene from --config, --preset or a positional
// preset name, in that order, then applies flag overrides.
func loadScene(cmd *cobra.Command, args []string) (*config.Scene, error) {
	var sc *config.Scene
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		sc = loaded
	case preset != "" || len(args) == 1:
		name := preset
		if name == "" {
			name = args[0]
		}
		p := config.GetPreset(name)
		if p == nil {
			names := config.ListPresets()
			sort.Strings(names)
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", name, strings.Join(names, ", "))
		}
		copied := *p
		sc = &copied
	default:
		sc = config.DefaultScene()
	}

	if cmd.Flags().Changed("dt") {
		sc.Dt = dt
	}
	if cmd.Flags().Changed("steps") {
		sc.Steps = steps
	}
	if cmd.Flags().Changed("max-collisions") {
		sc.MaxCollisions = maxCollisions
	}
	return sc, sc.Validate()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runScene(cmd *cobra.Command, args []string) error {
	sc, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sim, err := scene.Build(sc, log)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s (%d entities)...\n", sc.Name, len(sc.Entities))
	start := time.Now()

	result, err := sim.Run(ctx, sc.Steps)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	names := make([]string, 0, len(sc.Entities))
	for _, e := range sim.Entities() {
		names = append(names, e.Name())
	}
	runID, err := st.Save(sc.Name, sc.Dt, names, result)
	if err != nil {
		return err
	}

	overflowed := 0
	for _, rec := range result.Records {
		if rec.Overflowed {
			overflowed++
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if overflowed > 0 {
		fmt.Printf("steps with a full collision list: %d\n", overflowed)
	}
	printMetrics(result.Metrics)

	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tSTEPS\tDT\tENTITIES\tCONTACTS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			len(run.Entities),
			run.Contacts,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	counts, err := st.StepCounts(runID)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		return fmt.Errorf("run %s has no steps", runID)
	}

	fmt.Printf("\n%s  %d steps  %d contacts\n\n", meta.Scene, meta.Steps, meta.Contacts)
	graph := asciigraph.Plot(counts,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("contacts per step"),
	)
	fmt.Println(graph)
	fmt.Println()

	printMetrics(meta.Metrics)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if err := st.ExportJSON(w, args[0]); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Printf("exported to %s\n", outFile)
	}
	return nil
}

// prepare builds the scene and advances it to --at-step.
func prepare(cmd *cobra.Command, args []string) (*simulation.Simulation, error) {
	sc, err := loadScene(cmd, args)
	if err != nil {
		return nil, err
	}
	sim, err := scene.Build(sc, log)
	if err != nil {
		return nil, err
	}
	if atStep > 0 {
		ctx, cancel := signalContext()
		defer cancel()
		if _, err := sim.Run(ctx, atStep); err != nil {
			return nil, err
		}
	}
	return sim, nil
}

func raycast(cmd *cobra.Command, args []string) error {
	o, err := vec3("origin", origin)
	if err != nil {
		return err
	}
	d, err := vec3("dir", direction)
	if err != nil {
		return err
	}
	if d.Len() == 0 {
		return fmt.Errorf("dir must be non-zero")
	}

	sim, err := prepare(cmd, args)
	if err != nil {
		return err
	}

	if probeTarget != "" {
		e, ok := scene.Find(sim, probeTarget)
		if !ok {
			return fmt.Errorf("no entity named %q", probeTarget)
		}
		dist, ok := e.FindRayIntersection(o, d)
		if !ok {
			fmt.Println("no hit")
			return nil
		}
		fmt.Printf("hit %s at distance %.4f\n", e.Name(), dist)
		return nil
	}

	hit, ok := sim.FindRayIntersection(o, d)
	if !ok {
		fmt.Println("no hit")
		return nil
	}
	fmt.Printf("hit %s at distance %.4f point %s\n", hit.Entity.Name(), hit.Distance, fmtVec(hit.Point))
	return nil
}

func probe(cmd *cobra.Command, args []string) error {
	sim, err := prepare(cmd, args)
	if err != nil {
		return err
	}

	var contacts []simulation.Contact
	switch {
	case len(plane) > 0:
		if len(plane) != 4 {
			return fmt.Errorf("plane needs 4 components, got %d", len(plane))
		}
		p := mgl64.Vec4{plane[0], plane[1], plane[2], plane[3]}
		if p.Vec3().Len() == 0 {
			return fmt.Errorf("plane normal must be non-zero")
		}
		contacts = sim.FindPlaneCollisions(p)
	default:
		c, err := vec3("center", center)
		if err != nil {
			return err
		}
		if probeTarget != "" {
			contacts, err = probeEntity(sim, c)
			if err != nil {
				return err
			}
		} else {
			contacts = sim.FindSphereCollisions(c, radius)
		}
	}

	if len(contacts) == 0 {
		fmt.Println("no contacts")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "A\tB\tSHAPE_A\tSHAPE_B\tDEPTH\tPOINT")
	for _, c := range contacts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4f\t%s\n",
			entityName(c.A), entityName(c.B),
			c.Info.ShapeA, c.Info.ShapeB,
			c.Depth, fmtVec(c.Info.ContactPoint))
	}
	return w.Flush()
}

func probeEntity(sim *simulation.Simulation, c mgl64.Vec3) ([]simulation.Contact, error) {
	e, ok := scene.Find(sim, probeTarget)
	if !ok {
		return nil, fmt.Errorf("no entity named %q", probeTarget)
	}
	list := shape.NewCollisionList(sim.Config().MaxCollisions)
	if !e.FindSphereCollisions(c, radius, list, skipShape) {
		return nil, nil
	}
	out := make([]simulation.Contact, 0, list.Len())
	for _, info := range list.All() {
		a, b := sim.Resolve(info)
		out = append(out, simulation.Contact{A: a, B: b, Info: info, Depth: info.Depth()})
	}
	return out, nil
}

func snapshot(cmd *cobra.Command, args []string) error {
	sc, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	sim, err := scene.Build(sc, log)
	if err != nil {
		return err
	}

	var contacts []simulation.Contact
	if atStep > 0 {
		ctx, cancel := signalContext()
		defer cancel()
		result, err := sim.Run(ctx, atStep)
		if err != nil {
			return err
		}
		contacts = result.Records[len(result.Records)-1].Contacts
	}

	svg := export.SceneSVG(sim.Entities(), contacts, svgWidth, svgHeight)
	if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (step %d, %d contacts)\n", svgOut, sim.StepCount(), len(contacts))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	sc, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	var (
		params []string
		ranges [][]float64
	)
	for _, p := range []struct {
		name   string
		values []float64
	}{
		{sweep.ParamDt, dtValues},
		{sweep.ParamSpeed, speedValues},
		{sweep.ParamRadius, radiusValues},
	} {
		if len(p.values) > 0 {
			params = append(params, p.name)
			ranges = append(ranges, p.values)
		}
	}
	if len(params) == 0 {
		return fmt.Errorf("nothing to sweep: set --dt-values, --speed-values or --radius-values")
	}

	grid, err := sweep.NewGrid(params, ranges)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("sweeping %s over %d points...\n", sc.Name, len(grid.Combinations()))
	start := time.Now()
	points, err := grid.Run(ctx, sc, log)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(params, "\t"))+"\tSTEPS\t"+strings.ToUpper(sweepMetric))
	for _, p := range points {
		for _, name := range params {
			fmt.Fprintf(w, "%g\t", p.Params[name])
		}
		if p.Err != nil {
			fmt.Fprintf(w, "%d\terror: %v\n", p.Steps, p.Err)
			continue
		}
		fmt.Fprintf(w, "%d\t%.6f\n", p.Steps, p.Metrics[sweepMetric])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	best, ok := sweep.Best(points, sweepMetric, maximize)
	if !ok {
		return fmt.Errorf("no point produced metric %q", sweepMetric)
	}
	fmt.Printf("\nbest:")
	for _, name := range params {
		fmt.Printf(" %s=%g", name, best.Params[name])
	}
	fmt.Printf("  %s=%.6f\n", sweepMetric, best.Metrics[sweepMetric])
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	sc, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	// Log lines would tear the alternate screen.
	log.SetOutput(io.Discard)
	return tui.Run(sc, log)
}

func vec3(name string, v []float64) (mgl64.Vec3, error) {
	if len(v) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("%s needs 3 components, got %d", name, len(v))
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}

func fmtVec(v mgl64.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v[0], v[1], v[2])
}

func entityName(e *entity.Entity) string {
	if e == nil {
		return "probe"
	}
	return e.Name()
}
