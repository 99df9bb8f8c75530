package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gitrdm/goggp/internal/metrics"
	"github.com/gitrdm/goggp/pkg/statemachine"
)

// VerifyOptions configures Verify.
type VerifyOptions struct {
	Walks    int
	Workers  int // 0 or less = one per CPU
	MaxSteps int // 0 = until terminal
	Seed     uint64
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

// Verify runs opts.Walks independent equivalence walks between a and b.
// The first disagreement cancels the remaining walks and is returned as a
// *statemachine.MismatchError.
func Verify(ctx context.Context, a, b statemachine.StateMachine, opts VerifyOptions) error {
	if opts.Walks <= 0 {
		return fmt.Errorf("simulate: walks must be positive, got %d", opts.Walks)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(walkLimit(opts.Workers))
	for w := 0; w < opts.Walks; w++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(opts.Seed, uint64(w)))
			return statemachine.CheckEquivalence(a, b, nil, rng, 1, opts.MaxSteps)
		})
	}
	err := g.Wait()
	if errors.Is(err, statemachine.ErrMismatch) {
		opts.Metrics.ObserveMismatch()
		logger.Warn("backends disagree", zap.Error(err))
		return err
	}
	if err != nil {
		return fmt.Errorf("simulate: verify: %w", err)
	}
	logger.Info("backends agree",
		zap.String("a", string(a.Backend())),
		zap.String("b", string(b.Backend())),
		zap.Int("walks", opts.Walks))
	return nil
}

// walkLimit is the number of walks Verify runs at once.
func walkLimit(workers int) int {
	if workers <= 0 {
		return runtime.NumCPU()
	}
	return workers
}
