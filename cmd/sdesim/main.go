package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stochlab/sdesim"
	"github.com/stochlab/sdesim/internal/config"
	"github.com/stochlab/sdesim/internal/rng"
	"github.com/stochlab/sdesim/internal/table"
)

var (
	configFile string
	equations  []string
	gridStart  float64
	gridEnd    float64
	gridStep   float64
	scenarios  int
	initPairs  []string
	rngMethod  string
	scheme     string
	seed       uint64
	workers    int
	outPath    string
	outFormat  string
	quiet      bool

	// noise command
	noiseWiener   int
	noiseJumps    int
	noiseSteps    int
	noiseScenario int

	// plot command
	plotProcess string
	plotHeight  int
	plotWidth   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sdesim",
		Short: "monte carlo simulation of stochastic differential equations",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate the configured processes and emit the result table",
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&outPath, "output", "", "output file (default stdout)")
	runCmd.Flags().StringVar(&outFormat, "format", "csv", "output format: csv or json")

	noiseCmd := &cobra.Command{
		Use:   "noise",
		Short: "dump raw draws from a noise source",
		RunE:  dumpNoise,
	}
	noiseCmd.Flags().StringVar(&rngMethod, "rng", "pseudo", "rng method: pseudo or sobol")
	noiseCmd.Flags().Uint64Var(&seed, "seed", 0, "seed (pseudo only)")
	noiseCmd.Flags().IntVar(&noiseWiener, "wiener", 1, "wiener dimensions")
	noiseCmd.Flags().IntVar(&noiseJumps, "jumps", 0, "jump dimensions")
	noiseCmd.Flags().IntVar(&noiseSteps, "steps", 10, "steps to dump")
	noiseCmd.Flags().IntVar(&noiseScenario, "scenario", 0, "scenario index")

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "simulate and render the mean path of one process",
		RunE:  plotMeanPath,
	}
	addRunFlags(plotCmd)
	plotCmd.Flags().StringVar(&plotProcess, "process", "", "process name (default: first declared)")
	plotCmd.Flags().IntVar(&plotHeight, "height", 15, "chart height")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "chart width")

	rootCmd.AddCommand(runCmd, noiseCmd, plotCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "yaml run spec")
	cmd.Flags().StringArrayVar(&equations, "eq", nil, "process equation (repeatable)")
	cmd.Flags().Float64Var(&gridStart, "start", 0.0, "grid start time")
	cmd.Flags().Float64Var(&gridEnd, "end", 1.0, "grid end time")
	cmd.Flags().Float64Var(&gridStep, "step", 0.01, "grid step")
	cmd.Flags().IntVar(&scenarios, "scenarios", config.DefaultScenarios, "scenario count")
	cmd.Flags().StringArrayVar(&initPairs, "init", nil, "initial value, e.g. X1=100 (repeatable)")
	cmd.Flags().StringVar(&rngMethod, "rng", config.DefaultRNG, "rng method: pseudo or sobol")
	cmd.Flags().StringVar(&scheme, "scheme", config.DefaultScheme, "scheme: euler or runge-kutta")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "pseudo rng seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress log output")
}

func newLogger() zerolog.Logger {
	if quiet {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// buildRequest merges the config file (if any) with command line flags;
// flags win when set explicitly.
func buildRequest(cmd *cobra.Command) (sdesim.Request, *config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return sdesim.Request{}, nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("eq") {
		cfg.Equations = equations
	}
	if cmd.Flags().Changed("start") || cmd.Flags().Changed("end") || cmd.Flags().Changed("step") {
		cfg.Grid = config.GridConfig{Start: gridStart, End: gridEnd, Step: gridStep}
	}
	if cmd.Flags().Changed("scenarios") {
		cfg.Scenarios = scenarios
	}
	if cmd.Flags().Changed("rng") {
		cfg.RNG = rngMethod
	}
	if cmd.Flags().Changed("scheme") {
		cfg.Scheme = scheme
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("init") {
		values, err := parseInitPairs(initPairs)
		if err != nil {
			return sdesim.Request{}, nil, err
		}
		cfg.InitialValues = values
	}

	grid, err := cfg.Grid.ExpandGrid()
	if err != nil {
		return sdesim.Request{}, nil, err
	}

	req := sdesim.Request{
		Equations:     cfg.Equations,
		TimeSteps:     grid,
		Scenarios:     cfg.Scenarios,
		InitialValues: cfg.InitialValues,
		RNG:           cfg.RNG,
		Scheme:        cfg.Scheme,
		Seed:          cfg.Seed,
	}
	return req, cfg, nil
}

func parseInitPairs(pairs []string) (map[string]float64, error) {
	values := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, raw, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid --init %q, want Name=value", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --init %q: %v", pair, err)
		}
		values[strings.TrimSpace(name)] = v
	}
	return values, nil
}

func simulate(cmd *cobra.Command) (*sdesim.Result, *config.Config, error) {
	req, cfg, err := buildRequest(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Workers != 0 && !cmd.Flags().Changed("workers") {
		workers = cfg.Workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := sdesim.Simulate(ctx, req,
		sdesim.WithWorkers(workers),
		sdesim.WithLogger(newLogger()),
	)
	if err != nil && res == nil {
		return nil, nil, err
	}
	return res, cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	res, cfg, err := simulate(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("output") {
		cfg.Output.Path = outPath
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = outFormat
	}

	out := os.Stdout
	if cfg.Output.Path != "" {
		f, err := os.Create(cfg.Output.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch cfg.Output.Format {
	case "json":
		return table.WriteJSON(out, res.Rows)
	case "csv", "":
		return table.WriteCSV(out, res.Rows)
	default:
		return fmt.Errorf("unknown output format %q (want csv or json)", cfg.Output.Format)
	}
}

func dumpNoise(cmd *cobra.Command, args []string) error {
	var src rng.Source
	switch rngMethod {
	case "sobol":
		s, err := rng.NewSobol(noiseSteps, noiseWiener, noiseJumps)
		if err != nil {
			return err
		}
		src = s
	case "pseudo":
		src = rng.NewPseudo(seed)
	default:
		return fmt.Errorf("unknown rng %q (want pseudo or sobol)", rngMethod)
	}

	draw := rng.NewDraw(noiseWiener, noiseJumps)
	for step := 0; step < noiseSteps; step++ {
		draw.Fill(src, noiseScenario, step)
		fields := make([]string, 0, noiseWiener+noiseJumps+1)
		fields = append(fields, strconv.Itoa(step))
		for _, z := range draw.Wiener {
			fields = append(fields, strconv.FormatFloat(z, 'f', 6, 64))
		}
		for _, u := range draw.JumpU {
			fields = append(fields, strconv.FormatFloat(u, 'f', 6, 64))
		}
		fmt.Println(strings.Join(fields, "\t"))
	}
	return nil
}

func plotMeanPath(cmd *cobra.Command, args []string) error {
	res, cfg, err := simulate(cmd)
	if err != nil {
		return err
	}
	if len(res.Rows) == 0 {
		return fmt.Errorf("no rows to plot")
	}

	process := plotProcess
	if process == "" {
		process = res.Rows[0].Process
	}
	_, values := table.Mean(res.Rows, process)
	if len(values) == 0 {
		return fmt.Errorf("no rows for process %q", process)
	}

	caption := fmt.Sprintf("mean path of %s over %d scenarios (%s, %s)",
		process, cfg.Scenarios, cfg.Scheme, cfg.RNG)
	graph := asciigraph.Plot(values,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	return nil
}
