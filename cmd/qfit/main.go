package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/qfit/internal/ansatz"
	"github.com/san-kum/qfit/internal/config"
	"github.com/san-kum/qfit/internal/expval"
	"github.com/san-kum/qfit/internal/loss"
	"github.com/san-kum/qfit/internal/reference"
	"github.com/san-kum/qfit/internal/storage"
	"github.com/san-kum/qfit/internal/train"
	"github.com/san-kum/qfit/internal/tui"
)

var (
	dataDir    string
	qubits     int
	variant    int
	gridSize   int
	coefA      float64
	coefB      float64
	coefC      float64
	u0         float64
	du0        float64
	weight     float64
	seed       int64
	optimizer  string
	maxIter    int
	tolerance  float64
	stepSize   float64
	workers    int
	configFile string
	preset     string
	samples    int
	outFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "qfit",
		Short: "fit quantum circuit models to ordinary differential equations",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".qfit", "data directory")

	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "train a circuit model against the configured ODE",
		RunE:  runTrain,
	}
	addTrainFlags(trainCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "train with a live loss monitor",
		RunE:  runLive,
	}
	addTrainFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a run's loss history",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	predictCmd := &cobra.Command{
		Use:   "predict [run_id]",
		Short: "sample the trained model over one period",
		Args:  cobra.ExactArgs(1),
		RunE:  predictRun,
	}
	predictCmd.Flags().IntVar(&samples, "samples", 100, "sample count")

	compareCmd := &cobra.Command{
		Use:   "compare [run_id]",
		Short: "compare the trained model against the integrated reference",
		Args:  cobra.ExactArgs(1),
		RunE:  compareRun,
	}
	compareCmd.Flags().IntVar(&samples, "samples", 100, "sample count")

	exportCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export model and reference trajectories to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCmd.Flags().IntVar(&samples, "samples", 100, "sample count")
	exportCmd.Flags().StringVar(&outFile, "out", "trajectory.csv", "output file")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
		},
	}

	rootCmd.AddCommand(trainCmd, liveCmd, listCmd, plotCmd, predictCmd, compareCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addTrainFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&qubits, "qubits", 1, "qubit count")
	cmd.Flags().IntVar(&variant, "variant", 1, "circuit topology variant (1-4)")
	cmd.Flags().IntVar(&gridSize, "grid", 15, "time grid points over one period")
	cmd.Flags().Float64Var(&coefA, "a", 0, "f' coefficient")
	cmd.Flags().Float64Var(&coefB, "b", 1, "f coefficient")
	cmd.Flags().Float64Var(&coefC, "c", 0, "constant term")
	cmd.Flags().Float64Var(&u0, "u0", 0.8, "initial value f(0)")
	cmd.Flags().Float64Var(&du0, "du0", 0, "initial slope f'(0)")
	cmd.Flags().Float64Var(&weight, "weight", 10, "boundary penalty weight")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().StringVar(&optimizer, "optimizer", "neldermead", "strategy: neldermead or trustregion")
	cmd.Flags().IntVar(&maxIter, "max-iter", 3000, "iteration budget")
	cmd.Flags().Float64Var(&tolerance, "tol", 1e-8, "convergence tolerance")
	cmd.Flags().Float64Var(&stepSize, "step", 0.5, "initial step radius")
	cmd.Flags().IntVar(&workers, "workers", 0, "grid evaluation workers (0 = all cores)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig resolves preset, config file, and flags in increasing
// precedence, following the CLI convention used across our tools.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("qubits") {
		cfg.Qubits = qubits
	}
	if flags.Changed("variant") {
		cfg.Variant = variant
	}
	if flags.Changed("grid") {
		cfg.Grid = gridSize
	}
	if flags.Changed("a") {
		cfg.ODE.A = coefA
	}
	if flags.Changed("b") {
		cfg.ODE.B = coefB
	}
	if flags.Changed("c") {
		cfg.ODE.C = coefC
	}
	if flags.Changed("u0") {
		cfg.Initial.U0 = u0
	}
	if flags.Changed("du0") {
		cfg.Initial.DU0 = du0
	}
	if flags.Changed("weight") {
		cfg.Weight = weight
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("optimizer") {
		cfg.Optimizer.Strategy = optimizer
	}
	if flags.Changed("max-iter") {
		cfg.Optimizer.MaxIterations = maxIter
	}
	if flags.Changed("tol") {
		cfg.Optimizer.Tolerance = tolerance
	}
	if flags.Changed("step") {
		cfg.Optimizer.StepSize = stepSize
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	return cfg, nil
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tc := cfg.TrainConfig()
	fmt.Printf("training %d-qubit %s circuit against f'' + %g f' + %g f + %g = 0\n",
		tc.Qubits, tc.Variant, tc.A, tc.B, tc.C)

	start := time.Now()
	result, err := train.New(tc).Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(tc, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v (%s)\n", elapsed, result.Status)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("evaluations: %d\n", result.Evaluations)
	fmt.Printf("best loss: %.6g\n", result.BestLoss)
	fmt.Println()
	printLossGraph(result.History)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	tc := cfg.TrainConfig()
	title := fmt.Sprintf("%d-qubit %s", tc.Qubits, tc.Variant)
	program := tea.NewProgram(tui.NewModel(title))

	trainer := train.New(tc)
	trainer.AddObserver(loss.ObserverFunc(func(eval int, value float64, x []float64) {
		program.Send(tui.EvalMsg{Eval: eval, Value: value})
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var result *train.Result
	var trainErr error
	go func() {
		defer close(done)
		result, trainErr = trainer.Run(ctx)
		if trainErr == nil {
			program.Send(tui.DoneMsg{Status: result.Status.String(), Loss: result.BestLoss})
		} else {
			program.Quit()
		}
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-done
		return err
	}
	cancel()
	<-done

	if trainErr != nil {
		return trainErr
	}
	runID, err := st.Save(tc, result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s (best loss %.6g, %s)\n", runID, result.BestLoss, result.Status)
	return nil
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
	fmt.Fprintln(w, "ID\tTIME\tQUBITS\tVARIANT\tODE\tOPTIMIZER\tSTATUS\tLOSS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\ta=%g b=%g c=%g\t%s\t%s\t%.4g\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Qubits,
			run.Variant,
			run.A, run.B, run.C,
			run.Optimizer,
			run.Status,
			run.BestLoss,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	history, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}
	if len(history) < 2 {
		return fmt.Errorf("run %s has no history to plot", args[0])
	}
	printLossGraph(history)
	return nil
}

func predictRun(cmd *cobra.Command, args []string) error {
	predict, _, err := loadPredictor(args[0])
	if err != nil {
		return err
	}

	ts := reference.Samples(2*math.Pi, samples)
	values := make([]float64, len(ts))
	for i, tv := range ts {
		values[i] = predict(tv)
	}

	fmt.Println(asciigraph.Plot(values,
		asciigraph.Height(14),
		asciigraph.Width(72),
		asciigraph.Caption("f(t) over [0, 2pi]")))
	return nil
}

func compareRun(cmd *cobra.Command, args []string) error {
	predict, meta, err := loadPredictor(args[0])
	if err != nil {
		return err
	}

	ts := reference.Samples(2*math.Pi, samples)
	truth, err := reference.Solve(reference.Oscillator{A: meta.A, B: meta.B, C: meta.C},
		meta.U0, meta.DU0, ts)
	if err != nil {
		return err
	}

	model := make([]float64, len(ts))
	var rss float64
	for i, tv := range ts {
		model[i] = predict(tv)
		d := model[i] - truth[i]
		rss += d * d
	}

	fmt.Println(asciigraph.PlotMany([][]float64{truth, model},
		asciigraph.Height(14),
		asciigraph.Width(72),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.Caption("reference (blue) vs model (red)")))
	fmt.Printf("\nresidual sum of squares over %d samples: %.6g\n", samples, rss)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	predict, meta, err := loadPredictor(args[0])
	if err != nil {
		return err
	}

	ts := reference.Samples(2*math.Pi, samples)
	truth, err := reference.Solve(reference.Oscillator{A: meta.A, B: meta.B, C: meta.C},
		meta.U0, meta.DU0, ts)
	if err != nil {
		return err
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"time", "model", "reference"}); err != nil {
		return err
	}
	for i, tv := range ts {
		row := []string{
			strconv.FormatFloat(tv, 'f', 6, 64),
			strconv.FormatFloat(predict(tv), 'f', 6, 64),
			strconv.FormatFloat(truth[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	fmt.Printf("wrote %d rows to %s\n", len(ts), outFile)
	return nil
}

// loadPredictor rebuilds the trained model from a stored run.
func loadPredictor(runID string) (func(float64) float64, *storage.RunMetadata, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	weights, err := st.LoadWeights(runID)
	if err != nil {
		return nil, nil, err
	}

	circuit, err := ansatz.Build(meta.Qubits, ansatz.Variant(meta.Variant))
	if err != nil {
		return nil, nil, err
	}
	if len(weights) != circuit.Weights+1 {
		return nil, nil, fmt.Errorf("run %s stores %d weights, circuit wants %d",
			runID, len(weights), circuit.Weights+1)
	}
	return train.Predictor(expval.New(circuit), weights), meta, nil
}

func printLossGraph(history []float64) {
	data := make([]float64, len(history))
	for i, v := range history {
		if v <= 0 {
			v = 1e-16
		}
		data[i] = math.Log10(v)
	}
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(72),
		asciigraph.Caption("log10 loss per evaluation")))
}
