package simulate

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/gitrdm/goggp/internal/games"
	"github.com/gitrdm/goggp/internal/metrics"
	"github.com/gitrdm/goggp/pkg/propnet"
	"github.com/gitrdm/goggp/pkg/statemachine"
)

// Machines builds state machines for named games and keeps them. Concurrent
// requests for the same game and backend share one build.
type Machines struct {
	opts    statemachine.Options
	metrics *metrics.Metrics

	flight singleflight.Group
	mu     sync.RWMutex
	built  map[string]statemachine.StateMachine
}

// NewMachines returns an empty cache. opts.Backend is ignored; Get names
// the backend.
func NewMachines(opts statemachine.Options, m *metrics.Metrics) *Machines {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Machines{opts: opts, metrics: m, built: make(map[string]statemachine.StateMachine)}
}

// Get returns the machine for a bundled game name or a KIF file path.
// Failed builds are not cached.
func (c *Machines) Get(game string, backend statemachine.Backend) (statemachine.StateMachine, error) {
	key := string(backend) + ":" + game
	c.mu.RLock()
	sm, ok := c.built[key]
	c.mu.RUnlock()
	if ok {
		return sm, nil
	}

	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		db, err := games.Resolve(game)
		if err != nil {
			return nil, err
		}
		opts := c.opts
		opts.Backend = backend
		start := time.Now()
		sm, err := statemachine.New(db, opts)
		if err != nil {
			return nil, fmt.Errorf("simulate: build %s for %s: %w", backend, game, err)
		}
		if pm, ok := sm.(interface{ Propnet() *propnet.Propnet }); ok {
			c.metrics.ObserveCompile(pm.Propnet().Stats())
		}
		opts.Logger.Debug("state machine built",
			zap.String("game", game),
			zap.String("backend", string(backend)),
			zap.Duration("duration", time.Since(start)))

		c.mu.Lock()
		c.built[key] = sm
		c.mu.Unlock()
		return sm, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(statemachine.StateMachine), nil
}
