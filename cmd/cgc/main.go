package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ohowland/cgc_control/internal/pkg/analysis"
	"github.com/ohowland/cgc_control/internal/pkg/config"
	"github.com/ohowland/cgc_control/internal/pkg/sim"
)

func main() {
	var (
		configPath string
		ticks      int
		csvPath    string
		verbose    bool
	)
	flag.StringVar(&configPath, "config", "", "path to YAML or JSON config, defaults when empty")
	flag.IntVar(&ticks, "ticks", 10000, "number of sample periods to simulate")
	flag.StringVar(&csvPath, "csv", "", "write the trace as CSV to this path, - for stdout")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	log, err := newLogger(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(configPath, ticks, csvPath, log); err != nil {
		log.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	// stdout may carry the trace
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func run(configPath string, ticks int, csvPath string, log *zap.Logger) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	log.Info("starting cgc_control",
		zap.String("config", configPath),
		zap.String("scenario", cfg.Scenario),
		zap.Int("ticks", ticks))

	scenario, err := sim.Build(cfg, log)
	if err != nil {
		return err
	}
	runner, err := sim.New(cfg.Ts, log)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	trace, err := runner.Run(ctx, scenario, ticks)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	summarize(trace, log)

	if csvPath != "" {
		return writeCSV(trace, csvPath)
	}
	return nil
}

// summarize logs the statistics of every column over the last quarter of the run.
func summarize(trace sim.Trace, log *zap.Logger) {
	for _, name := range trace.Columns[1:] {
		x, err := trace.Column(name)
		if err != nil {
			continue
		}
		s := analysis.Summarize(analysis.Tail(x, 0.25))
		log.Info("steady state",
			zap.String("column", name),
			zap.Float64("mean", s.Mean),
			zap.Float64("std", s.StdDev),
			zap.Float64("rms", s.RMS),
			zap.Float64("min", s.Min),
			zap.Float64("max", s.Max))
	}
}

func writeCSV(trace sim.Trace, path string) error {
	if path == "-" {
		return trace.WriteCSV(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := trace.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
