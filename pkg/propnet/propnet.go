// Package propnet compiles a game description into a propositional network:
// a directed acyclic graph of boolean gates whose inputs are the base
// propositions (the current state) and the input propositions (the moves of
// this turn), and whose observable outputs are the legal, goal, terminal and
// next propositions.
//
// Compilation grounds the rules over an over-approximation of the sentences
// that can ever hold, wires one gate per ground rule body, and then folds
// constants, shares identical gates and removes everything that no
// observable proposition depends on. State feedback runs through Transition
// components, which name their target base proposition instead of linking to
// it, so a single evaluation never sees a cycle.
//
// A compiled Propnet is immutable. Evaluation writes into an Assignment owned
// by the caller, so any number of goroutines may evaluate one Propnet at once
// as long as each uses its own Assignment.
package propnet

import (
	"fmt"
	"sync"
	"time"

	"github.com/gitrdm/goggp/pkg/game"
	"github.com/gitrdm/goggp/pkg/gdl"
)

// Stats summarizes a compiled network.
type Stats struct {
	PossibleSentences int
	RuleInstances     int
	RawComponents     int
	Components        int
	Propositions      int
	Gates             int
	Constants         int
	Transitions       int
	Bases             int
	Inputs            int
	Duration          time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf("components=%d (raw %d) propositions=%d gates=%d transitions=%d bases=%d inputs=%d in %s",
		s.Components, s.RawComponents, s.Propositions, s.Gates, s.Transitions, s.Bases, s.Inputs, s.Duration)
}

// Propnet is a compiled game.
type Propnet struct {
	components []*Component
	roles      []game.Role

	base        map[*gdl.Sentence]int // (true x) -> proposition
	bases       []int
	input       map[*gdl.Sentence]int // (does r m) -> proposition
	inputs      []int
	legal       map[game.Role][]int
	goal        map[game.Role][]int
	inits       []int
	transitions []int
	terminal    int

	circuit *circuit
	pool    sync.Pool
	stats   Stats
}

func newPropnet(g *graph, roles []game.Role) *Propnet {
	pn := &Propnet{
		components: g.comps,
		roles:      roles,
		base:       make(map[*gdl.Sentence]int),
		input:      make(map[*gdl.Sentence]int),
		legal:      make(map[game.Role][]int),
		goal:       make(map[game.Role][]int),
		terminal:   -1,
	}
	known := make(map[game.Role]bool, len(roles))
	for _, r := range roles {
		known[r] = true
	}
	roleOf := func(s *gdl.Sentence) (game.Role, bool) {
		r, err := game.RoleOf(s.Get(0))
		return r, err == nil && known[r]
	}

	for _, c := range g.comps {
		switch c.Kind {
		case KindTransition:
			pn.transitions = append(pn.transitions, c.ID)
			continue
		case KindProposition:
		default:
			continue
		}
		switch c.Category {
		case CategoryBase:
			pn.base[c.Sentence] = c.ID
			pn.bases = append(pn.bases, c.ID)
		case CategoryInput:
			pn.input[c.Sentence] = c.ID
			pn.inputs = append(pn.inputs, c.ID)
		case CategoryLegal:
			if r, ok := roleOf(c.Sentence); ok {
				pn.legal[r] = append(pn.legal[r], c.ID)
			}
		case CategoryGoal:
			if r, ok := roleOf(c.Sentence); ok {
				pn.goal[r] = append(pn.goal[r], c.ID)
			}
		case CategoryInit:
			pn.inits = append(pn.inits, c.ID)
		case CategoryTerminal:
			pn.terminal = c.ID
		}
	}
	pn.circuit = lower(g.comps)
	pn.pool.New = func() any {
		vs := make([]bool, pn.circuit.size())
		return &vs
	}

	for _, c := range g.comps {
		switch c.Kind {
		case KindProposition:
			pn.stats.Propositions++
		case KindAnd, KindOr, KindNot:
			pn.stats.Gates++
		case KindConstant:
			pn.stats.Constants++
		case KindTransition:
			pn.stats.Transitions++
		}
	}
	pn.stats.Components = len(g.comps)
	pn.stats.Bases = len(pn.bases)
	pn.stats.Inputs = len(pn.inputs)
	return pn
}

// Components returns every component in topological order; a component's
// ID is its index. The components must not be modified.
func (pn *Propnet) Components() []*Component {
	return append([]*Component(nil), pn.components...)
}

// Component returns the component with the given id.
func (pn *Propnet) Component(id int) *Component { return pn.components[id] }

// Roles returns the roles in declaration order.
func (pn *Propnet) Roles() []game.Role { return append([]game.Role(nil), pn.roles...) }

// BasePropositions returns the ids of the base propositions.
func (pn *Propnet) BasePropositions() []int { return append([]int(nil), pn.bases...) }

// InputPropositions returns the ids of the input propositions.
func (pn *Propnet) InputPropositions() []int { return append([]int(nil), pn.inputs...) }

// LegalPropositions returns the ids of the legal propositions of a role.
func (pn *Propnet) LegalPropositions(r game.Role) []int { return append([]int(nil), pn.legal[r]...) }

// GoalPropositions returns the ids of the goal propositions of a role.
func (pn *Propnet) GoalPropositions(r game.Role) []int { return append([]int(nil), pn.goal[r]...) }

// InitPropositions returns the ids of the init propositions.
func (pn *Propnet) InitPropositions() []int { return append([]int(nil), pn.inits...) }

// TerminalProposition returns the id of the terminal proposition. It
// reports false when the game can never end, in which case no terminal
// sentence is possible.
func (pn *Propnet) TerminalProposition() (int, bool) { return pn.terminal, pn.terminal >= 0 }

// Transitions returns the ids of the transition components.
func (pn *Propnet) Transitions() []int { return append([]int(nil), pn.transitions...) }

// BaseProposition returns the base proposition of a (true x) sentence.
func (pn *Propnet) BaseProposition(s *gdl.Sentence) (int, bool) {
	id, ok := pn.base[s]
	return id, ok
}

// InputProposition returns the input proposition of a role playing a move.
func (pn *Propnet) InputProposition(r game.Role, m game.Move) (int, bool) {
	id, ok := pn.input[doesSentence(r, m)]
	return id, ok
}

// Stats returns compilation statistics.
func (pn *Propnet) Stats() Stats { return pn.stats }

func doesSentence(r game.Role, m game.Move) *gdl.Sentence {
	return gdl.NewSentence(gdl.DoesName, r.Term(), m.Contents())
}
