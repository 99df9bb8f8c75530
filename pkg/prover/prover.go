// Package prover answers queries against a game description by backward
// chaining: a goal is unified with every rule head of its predicate, the rule
// body is proved left to right with shared bindings, and negation is
// negation as failure.
//
// Every sentence goal is answered through an answer table keyed by the
// goal's variant (its rendering with variables renumbered). Tables give the
// prover two properties a plain depth-first search lacks:
//   - recursive rules terminate: a goal that reappears while it is being
//     expanded consumes the answers found so far, and its expansion repeats
//     until no new answers appear (a fixpoint)
//   - repeated subgoals are answered once per query
//
// Tables for predicates that never depend on true or does are shared by all
// queries, since their answers cannot change for the lifetime of the rule
// database. All other tables live for a single query.
//
// A Prover is safe for concurrent use. Each query owns its own tables and
// binding chains; only the shared tables are synchronized.
package prover

import (
	"sync"

	"go.uber.org/zap"

	"github.com/gitrdm/goggp/pkg/gdl"
)

// DefaultMaxDepth bounds the number of nested goal expansions in one query
// and the number of fixpoint rounds spent on one recursive goal.
const DefaultMaxDepth = 1000

// Option configures a Prover.
type Option func(*Prover)

// WithMaxDepth sets the recursion ceiling. Queries that nest deeper, or whose
// recursive answer tables are still growing after that many rounds, fail with
// a *gdl.MalformedRulesError.
func WithMaxDepth(n int) Option {
	return func(p *Prover) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(p *Prover) {
		if l != nil {
			p.logger = l
		}
	}
}

// Prover answers queries against one rule database.
type Prover struct {
	db       *gdl.Database
	maxDepth int
	logger   *zap.Logger
	static   sync.Map // variant key -> []*gdl.Sentence
}

// New creates a prover over db.
func New(db *gdl.Database, opts ...Option) *Prover {
	p := &Prover{db: db, maxDepth: DefaultMaxDepth, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Database returns the rule database.
func (p *Prover) Database() *gdl.Database { return p.db }

// Prove reports whether the query literal holds in ctx. An unsatisfiable
// query is (false, nil), not an error.
func (p *Prover) Prove(query gdl.Literal, ctx *Context) (bool, error) {
	sv := p.newSolver(ctx)
	found := false
	sv.one(query, nil, func(*gdl.Substitution) bool {
		found = true
		return false
	})
	if sv.err != nil {
		return false, sv.err
	}
	return found, nil
}

// AskOne returns one instance of the query that holds in ctx.
func (p *Prover) AskOne(query *gdl.Sentence, ctx *Context) (*gdl.Sentence, bool, error) {
	sv := p.newSolver(ctx)
	var answer *gdl.Sentence
	sv.one(query, nil, func(s *gdl.Substitution) bool {
		answer = gdl.SubstituteSentence(query, s)
		return false
	})
	if sv.err != nil {
		return nil, false, sv.err
	}
	return answer, answer != nil, nil
}

// AskAll returns every distinct instance of the query that holds in ctx.
// The order follows rule order but is not part of the contract.
func (p *Prover) AskAll(query *gdl.Sentence, ctx *Context) ([]*gdl.Sentence, error) {
	sv := p.newSolver(ctx)
	answers, ok := sv.answers(query)
	if !ok {
		return nil, sv.err
	}
	return append([]*gdl.Sentence(nil), answers...), nil
}

func (p *Prover) newSolver(ctx *Context) *solver {
	return &solver{
		p:      p,
		ctx:    ctx,
		tables: make(map[string][]*gdl.Sentence),
		shared: ctx.transientOnly(),
	}
}

// frame is a goal under expansion.
type frame struct {
	key       string
	answers   []*gdl.Sentence
	seen      map[string]struct{}
	low       int  // lowest stack index this expansion consumed answers from
	recursive bool // a descendant consumed this frame's partial answers
}

func (f *frame) add(s *gdl.Sentence) {
	k := gdl.VariantKey(s)
	if _, dup := f.seen[k]; dup {
		return
	}
	f.seen[k] = struct{}{}
	f.answers = append(f.answers, s)
}

type solver struct {
	p      *Prover
	ctx    *Context
	tables map[string][]*gdl.Sentence
	stack  []*frame
	shared bool
	err    error
}

// conj proves goals left to right; k receives each solution and returns
// false to stop. conj returns false once stopped or failed.
func (sv *solver) conj(goals []gdl.Literal, s *gdl.Substitution, k func(*gdl.Substitution) bool) bool {
	if len(goals) == 0 {
		return k(s)
	}
	rest := goals[1:]
	return sv.one(goals[0], s, func(next *gdl.Substitution) bool {
		return sv.conj(rest, next, k)
	})
}

func (sv *solver) one(l gdl.Literal, s *gdl.Substitution, k func(*gdl.Substitution) bool) bool {
	switch x := l.(type) {
	case *gdl.Sentence:
		goal := gdl.SubstituteSentence(x, s)
		answers, ok := sv.answers(goal)
		if !ok {
			return false
		}
		for _, a := range answers {
			if next, ok := gdl.UnifySentence(goal, a, s); ok {
				if !k(next) {
					return false
				}
			}
		}
		return true

	case *gdl.Not:
		found := false
		sv.one(gdl.SubstituteLiteral(x.Body, s), nil, func(*gdl.Substitution) bool {
			found = true
			return false
		})
		if sv.err != nil {
			return false
		}
		if found {
			return true
		}
		return k(s)

	case *gdl.Distinct:
		if gdl.Equal(gdl.Substitute(x.Left, s), gdl.Substitute(x.Right, s)) {
			return true
		}
		return k(s)

	case *gdl.Or:
		for _, d := range x.Disjuncts {
			if !sv.one(d, s, k) {
				return false
			}
		}
		return true
	}
	return true
}

// answers returns the instances of goal that hold. The result may be shared
// with a table and must not be modified.
func (sv *solver) answers(goal *gdl.Sentence) ([]*gdl.Sentence, bool) {
	name := goal.Name()
	facts := sv.ctx.facts(name)
	rules := sv.p.db.RulesFor(name)
	if len(rules) == 0 {
		return matching(goal, facts), true
	}

	key := gdl.VariantKey(goal)
	shared := sv.shared && sv.p.db.IsStatic(name)
	if shared {
		if v, ok := sv.p.static.Load(key); ok {
			return v.([]*gdl.Sentence), true
		}
	} else if v, ok := sv.tables[key]; ok {
		return v, true
	}

	for i, f := range sv.stack {
		if f.key == key {
			f.recursive = true
			top := sv.stack[len(sv.stack)-1]
			top.low = min(top.low, i)
			return f.answers, true
		}
	}

	idx := len(sv.stack)
	if idx >= sv.p.maxDepth {
		sv.err = gdl.Malformed(name, "query recursion exceeded depth %d at %s", sv.p.maxDepth, goal)
		sv.p.logger.Warn("prover recursion ceiling exceeded",
			zap.String("goal", goal.String()),
			zap.Int("max_depth", sv.p.maxDepth))
		return nil, false
	}

	f := &frame{key: key, seen: make(map[string]struct{}), low: idx}
	sv.stack = append(sv.stack, f)
	for _, x := range matching(goal, facts) {
		f.add(x)
	}
	for round := 0; ; round++ {
		if round >= sv.p.maxDepth {
			sv.err = gdl.Malformed(name, "answers for %s still growing after %d rounds", goal, sv.p.maxDepth)
			sv.p.logger.Warn("prover fixpoint ceiling exceeded",
				zap.String("goal", goal.String()),
				zap.Int("answers", len(f.answers)),
				zap.Int("max_depth", sv.p.maxDepth))
			sv.stack = sv.stack[:idx]
			return nil, false
		}
		f.recursive = false
		before := len(f.answers)
		for _, r := range rules {
			rn := gdl.Rename(r)
			s, ok := gdl.UnifySentence(rn.Head, goal, nil)
			if !ok {
				continue
			}
			sv.conj(rn.Body, s, func(s *gdl.Substitution) bool {
				f.add(gdl.SubstituteSentence(goal, s))
				return true
			})
			if sv.err != nil {
				sv.stack = sv.stack[:idx]
				return nil, false
			}
		}
		if !f.recursive || len(f.answers) == before {
			break
		}
	}
	sv.stack = sv.stack[:idx]

	if f.low < idx {
		// Incomplete: depends on a goal still being expanded further down.
		parent := sv.stack[idx-1]
		parent.low = min(parent.low, f.low)
		return f.answers, true
	}
	if shared {
		sv.p.static.Store(key, f.answers)
	} else {
		sv.tables[key] = f.answers
	}
	return f.answers, true
}

func matching(goal *gdl.Sentence, facts []*gdl.Sentence) []*gdl.Sentence {
	if len(facts) == 0 {
		return nil
	}
	if goal.IsGround() {
		for _, f := range facts {
			if f == goal {
				return []*gdl.Sentence{f}
			}
		}
		return nil
	}
	var out []*gdl.Sentence
	for _, f := range facts {
		if _, ok := gdl.UnifySentence(goal, f, nil); ok {
			out = append(out, f)
		}
	}
	return out
}
