package simulate

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gitrdm/goggp/internal/games"
	"github.com/gitrdm/goggp/internal/metrics"
	"github.com/gitrdm/goggp/pkg/statemachine"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func machine(t *testing.T, name string, b statemachine.Backend) statemachine.StateMachine {
	t.Helper()
	sm, err := statemachine.New(games.MustLoad(name), statemachine.Options{Backend: b})
	require.NoError(t, err)
	return sm
}

func TestRun(t *testing.T) {
	sm := machine(t, games.TicTacToe, statemachine.BackendPropnet)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	report, err := Run(context.Background(), sm, Options{Playouts: 40, Workers: 4, Seed: 11, Metrics: m})
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 40, report.Completed)
	assert.Zero(t, report.Failures)
	assert.Len(t, report.MeanGoals, 2)
	for _, g := range report.MeanGoals {
		assert.GreaterOrEqual(t, g, 0.0)
		assert.LessOrEqual(t, g, 100.0)
	}
	// Tic-tac-toe ends after five to nine moves.
	assert.GreaterOrEqual(t, report.MeanDepth, 5.0)
	assert.LessOrEqual(t, report.MeanDepth, 9.0)
	assert.Positive(t, report.PlayoutsPerSecond())
	assert.Contains(t, report.String(), "40 playouts")
	assert.Equal(t, 40.0, testutil.ToFloat64(m.PlayoutsTotal.WithLabelValues("propnet", "ok")))
}

func TestRun_ReproducibleAcrossWorkerCounts(t *testing.T) {
	sm := machine(t, games.TicTacToe, statemachine.BackendPropnet)
	one, err := Run(context.Background(), sm, Options{Playouts: 30, Workers: 1, Seed: 5})
	require.NoError(t, err)
	many, err := Run(context.Background(), sm, Options{Playouts: 30, Workers: 6, Seed: 5})
	require.NoError(t, err)
	assert.Equal(t, one.MeanGoals, many.MeanGoals)
	assert.Equal(t, one.MeanDepth, many.MeanDepth)
	assert.NotEqual(t, one.RunID, many.RunID)
}

func TestRun_SameResultOnBothBackends(t *testing.T) {
	opts := Options{Playouts: 20, Workers: 2, Seed: 9}
	p, err := Run(context.Background(), machine(t, games.Buttons, statemachine.BackendProver), opts)
	require.NoError(t, err)
	n, err := Run(context.Background(), machine(t, games.Buttons, statemachine.BackendPropnet), opts)
	require.NoError(t, err)
	assert.Equal(t, p.MeanGoals, n.MeanGoals)
	assert.Equal(t, p.MeanDepth, n.MeanDepth)
}

func TestRun_StepLimit(t *testing.T) {
	sm := machine(t, games.TicTacToe, statemachine.BackendPropnet)
	report, err := Run(context.Background(), sm, Options{Playouts: 10, Workers: 2, MaxSteps: 2})
	require.NoError(t, err)
	assert.Equal(t, 10, report.TooLong)
	assert.Zero(t, report.Completed)
	assert.Zero(t, report.Failures)
	assert.Equal(t, []float64{0, 0}, report.MeanGoals)
}

func TestRun_Invalid(t *testing.T) {
	sm := machine(t, games.RPS, statemachine.BackendProver)
	_, err := Run(context.Background(), sm, Options{})
	assert.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	sm := machine(t, games.TicTacToe, statemachine.BackendProver)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, sm, Options{Playouts: 10000, Workers: 1})
	if err != nil {
		assert.True(t, errors.Is(err, context.Canceled))
	}
}

func TestVerify(t *testing.T) {
	for _, name := range games.Names() {
		t.Run(name, func(t *testing.T) {
			p := machine(t, name, statemachine.BackendProver)
			n := machine(t, name, statemachine.BackendPropnet)
			assert.NoError(t, Verify(context.Background(), p, n, VerifyOptions{Walks: 6, Workers: 3, Seed: 2}))
		})
	}
}

func TestVerify_WalkLimit(t *testing.T) {
	assert.Equal(t, runtime.NumCPU(), walkLimit(0))
	assert.Equal(t, runtime.NumCPU(), walkLimit(-1))
	assert.Equal(t, 3, walkLimit(3))

	p := machine(t, games.Buttons, statemachine.BackendProver)
	n := machine(t, games.Buttons, statemachine.BackendPropnet)
	assert.NoError(t, Verify(context.Background(), p, n, VerifyOptions{Walks: 4 * runtime.NumCPU()}))
}

func TestVerify_ReportsMismatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	a := machine(t, games.TicTacToe, statemachine.BackendProver)
	b := machine(t, games.Buttons, statemachine.BackendPropnet)

	err := Verify(context.Background(), a, b, VerifyOptions{Walks: 4, Workers: 2, Metrics: m})
	require.Error(t, err)
	assert.True(t, errors.Is(err, statemachine.ErrMismatch))
	var mm *statemachine.MismatchError
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, "InitialState", mm.Op)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EquivalenceMismatchesTotal))
}

func TestMachines(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	cache := NewMachines(statemachine.Options{}, m)

	var wg sync.WaitGroup
	got := make([]statemachine.StateMachine, 8)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sm, err := cache.Get(games.TicTacToe, statemachine.BackendPropnet)
			assert.NoError(t, err)
			got[i] = sm
		}()
	}
	wg.Wait()
	for _, sm := range got {
		assert.Same(t, got[0], sm)
	}
	assert.Positive(t, testutil.ToFloat64(m.PropnetComponents.WithLabelValues("total")))

	p, err := cache.Get(games.TicTacToe, statemachine.BackendProver)
	require.NoError(t, err)
	assert.Equal(t, statemachine.BackendProver, p.Backend())

	_, err = cache.Get("no-such-game", statemachine.BackendProver)
	assert.Error(t, err)
}
