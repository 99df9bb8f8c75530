// Package simulate runs batches of random playouts and backend verification
// walks in parallel. Every playout draws from its own generator seeded by
// (seed, index), so a run is reproducible for any worker count.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gitrdm/goggp/internal/metrics"
	"github.com/gitrdm/goggp/internal/parallel"
	"github.com/gitrdm/goggp/pkg/game"
	"github.com/gitrdm/goggp/pkg/statemachine"
)

// Options configures Run.
type Options struct {
	Playouts int
	Workers  int // 0 = one per CPU
	MaxSteps int // 0 = unbounded
	Seed     uint64
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

// Report summarizes a run. MeanGoals and MeanDepth cover completed
// playouts only.
type Report struct {
	RunID     string
	Backend   statemachine.Backend
	Roles     []game.Role
	Playouts  int
	Completed int
	TooLong   int
	Failures  int
	// FirstFailure is the error of the lowest-indexed failed playout.
	FirstFailure error
	MeanGoals    []float64
	MeanDepth    float64
	Duration     time.Duration
}

// PlayoutsPerSecond is the throughput over the whole run.
func (r *Report) PlayoutsPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Playouts) / r.Duration.Seconds()
}

func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d playouts in %s (%.0f/s), mean depth %.2f",
		r.Backend, r.Playouts, r.Duration.Round(time.Millisecond), r.PlayoutsPerSecond(), r.MeanDepth)
	for i, role := range r.Roles {
		fmt.Fprintf(&b, ", %s %.2f", role, r.MeanGoals[i])
	}
	if r.TooLong > 0 {
		fmt.Fprintf(&b, ", %d too long", r.TooLong)
	}
	if r.Failures > 0 {
		fmt.Fprintf(&b, ", %d failed", r.Failures)
	}
	return b.String()
}

type result struct {
	goals []int
	depth int
	err   error
}

// Run plays opts.Playouts random matches of sm from its initial state.
// Playouts that hit the step limit are counted as TooLong; any other
// playout error is counted as a failure. Run returns an error only when ctx
// ends before every playout was scheduled.
func Run(ctx context.Context, sm statemachine.StateMachine, opts Options) (*Report, error) {
	if opts.Playouts <= 0 {
		return nil, fmt.Errorf("simulate: playouts must be positive, got %d", opts.Playouts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	report := &Report{
		RunID:    uuid.NewString(),
		Backend:  sm.Backend(),
		Roles:    sm.Roles(),
		Playouts: opts.Playouts,
	}
	logger = logger.With(zap.String("run_id", report.RunID), zap.String("backend", string(report.Backend)))
	logger.Info("simulation started",
		zap.Int("playouts", opts.Playouts),
		zap.Int("workers", opts.Workers),
		zap.Uint64("seed", opts.Seed))

	results := make([]result, opts.Playouts)
	pool := parallel.NewWorkerPool(opts.Workers)
	start := time.Now()
	err := pool.ForEach(ctx, opts.Playouts, func(i int) {
		results[i] = playout(sm, opts, i)
	})
	pool.Shutdown()
	report.Duration = time.Since(start)
	if err != nil {
		logger.Warn("simulation interrupted", zap.Error(err))
		return nil, fmt.Errorf("simulate: run %s: %w", report.RunID, err)
	}

	report.MeanGoals = make([]float64, len(report.Roles))
	depth := 0
	for _, res := range results {
		switch {
		case res.err == nil:
			report.Completed++
			depth += res.depth
			for j, g := range res.goals {
				report.MeanGoals[j] += float64(g)
			}
		case errors.Is(res.err, statemachine.ErrPlayoutTooLong):
			report.TooLong++
		default:
			report.Failures++
			if report.FirstFailure == nil {
				report.FirstFailure = res.err
			}
		}
	}
	if report.Completed > 0 {
		n := float64(report.Completed)
		for j := range report.MeanGoals {
			report.MeanGoals[j] /= n
		}
		report.MeanDepth = float64(depth) / n
	}
	if report.FirstFailure != nil {
		logger.Warn("playouts failed", zap.Int("failures", report.Failures), zap.Error(report.FirstFailure))
	}
	logger.Info("simulation finished",
		zap.Int("completed", report.Completed),
		zap.Int("too_long", report.TooLong),
		zap.Duration("duration", report.Duration),
		zap.Float64("playouts_per_second", report.PlayoutsPerSecond()))
	return report, nil
}

func playout(sm statemachine.StateMachine, opts Options, i int) result {
	rng := rand.New(rand.NewPCG(opts.Seed, uint64(i)))
	start := time.Now()
	final, depth, err := statemachine.Playout(sm, sm.InitialState(), rng, opts.MaxSteps)
	var goals []int
	if err == nil {
		goals, err = statemachine.Goals(sm, final)
	}
	opts.Metrics.ObservePlayout(string(sm.Backend()), depth, time.Since(start), err)
	return result{goals: goals, depth: depth, err: err}
}
