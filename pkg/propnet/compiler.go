package propnet

import (
	"time"

	"go.uber.org/zap"

	"github.com/gitrdm/goggp/pkg/game"
	"github.com/gitrdm/goggp/pkg/gdl"
)

// DefaultMaxPropositions bounds the number of possible ground sentences.
const DefaultMaxPropositions = 250000

// Option configures Compile.
type Option func(*compiler)

// WithLogger sets the logger for compilation progress.
func WithLogger(l *zap.Logger) Option {
	return func(c *compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxPropositions bounds grounding; games that need more possible
// sentences fail with a *gdl.MalformedRulesError.
func WithMaxPropositions(n int) Option {
	return func(c *compiler) {
		if n > 0 {
			c.maxProps = n
		}
	}
}

type compiler struct {
	logger   *zap.Logger
	maxProps int
}

// Compile translates a rule database into a propnet. When roles is nil the
// roles are taken from the (role r) facts. Every failure is a
// *gdl.MalformedRulesError and no partial network is returned.
func Compile(db *gdl.Database, roles []game.Role, opts ...Option) (*Propnet, error) {
	c := &compiler{logger: zap.NewNop(), maxProps: DefaultMaxPropositions}
	for _, opt := range opts {
		opt(c)
	}
	start := time.Now()

	if err := db.CheckArity(); err != nil {
		return nil, err
	}
	if err := db.CheckStratified(); err != nil {
		return nil, err
	}
	if roles == nil {
		for _, t := range db.Roles() {
			r, err := game.RoleOf(t)
			if err != nil {
				return nil, gdl.Malformed(gdl.RoleName, "%v", err)
			}
			roles = append(roles, r)
		}
	}
	if len(roles) == 0 {
		return nil, gdl.Malformed(gdl.RoleName, "game declares no roles")
	}

	rules, err := flatten(db)
	if err != nil {
		return nil, err
	}
	known, err := possibleSentences(rules, c.maxProps)
	if err != nil {
		return nil, err
	}
	instances := groundInstances(rules, known)
	c.logger.Debug("grounded rules",
		zap.Int("rules", len(rules)),
		zap.Int("possible_sentences", known.len()),
		zap.Int("instances", len(instances)))

	raw := buildGraph(known, instances)
	order, err := raw.topoSort()
	if err != nil {
		return nil, err
	}
	opt := optimize(raw, order)
	c.logger.Debug("optimized network",
		zap.Int("before", len(raw.comps)),
		zap.Int("after", len(opt.comps)))

	pn := newPropnet(opt, roles)
	pn.stats.PossibleSentences = known.len()
	pn.stats.RuleInstances = len(instances)
	pn.stats.RawComponents = len(raw.comps)
	pn.stats.Duration = time.Since(start)
	c.logger.Info("compiled propnet",
		zap.Int("components", pn.stats.Components),
		zap.Int("bases", pn.stats.Bases),
		zap.Int("inputs", pn.stats.Inputs),
		zap.Duration("duration", pn.stats.Duration))
	return pn, nil
}
