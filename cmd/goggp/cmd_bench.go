package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitrdm/goggp/internal/metrics"
	"github.com/gitrdm/goggp/internal/simulate"
	"github.com/gitrdm/goggp/pkg/statemachine"
)

var (
	benchPlayouts    int
	benchWorkers     int
	benchAll         bool
	benchMetricsAddr string
)

var benchCmd = &cobra.Command{
	Use:   "bench GAME",
	Short: "Measure random playout throughput",
	Long: `Runs random playouts from the initial state on the configured backend,
or on every backend with --all, and prints one report per backend.`,
	Args: cobra.ExactArgs(1),
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVarP(&benchPlayouts, "playouts", "n", 0, "Number of playouts (0 = config value)")
	benchCmd.Flags().IntVarP(&benchWorkers, "workers", "j", -1, "Worker goroutines (-1 = config value, 0 = one per CPU)")
	benchCmd.Flags().BoolVar(&benchAll, "all", false, "Benchmark every backend")
	benchCmd.Flags().StringVar(&benchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
}

func runBench(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	addr := benchMetricsAddr
	if addr == "" {
		addr = cfg.Metrics.Addr
	}
	if addr != "" {
		stop := serveMetrics(addr, reg)
		defer stop()
	}

	opts := simulate.Options{
		Playouts: cfg.Simulation.Playouts,
		Workers:  cfg.Simulation.Workers,
		MaxSteps: cfg.Simulation.MaxSteps,
		Seed:     cfg.Simulation.Seed,
		Logger:   logger,
		Metrics:  m,
	}
	if benchPlayouts > 0 {
		opts.Playouts = benchPlayouts
	}
	if benchWorkers >= 0 {
		opts.Workers = benchWorkers
	}

	backends := []statemachine.Backend{statemachine.Backend(cfg.Engine.Backend)}
	if benchAll {
		backends = []statemachine.Backend{statemachine.BackendProver, statemachine.BackendPropnet}
	}
	machines := simulate.NewMachines(machineOptions(), m)
	for _, b := range backends {
		sm, err := machines.Get(args[0], b)
		if err != nil {
			return err
		}
		report, err := simulate.Run(ctx, sm, opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), report)
		if report.FirstFailure != nil {
			return fmt.Errorf("%d playouts failed: %w", report.Failures, report.FirstFailure)
		}
	}
	return nil
}

// serveMetrics exposes reg over HTTP and returns a function that stops the
// server.
func serveMetrics(addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
