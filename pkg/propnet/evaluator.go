package propnet

import (
	"errors"
	"fmt"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/gitrdm/goggp/pkg/game"
	"github.com/gitrdm/goggp/pkg/gdl"
)

var (
	// ErrUnknownSentence is returned when a state holds a sentence with no
	// base proposition.
	ErrUnknownSentence = errors.New("propnet: sentence has no base proposition")
	// ErrUnknownMove is returned when a move has no input proposition.
	ErrUnknownMove = errors.New("propnet: move has no input proposition")
)

// circuit is the network lowered to an and-inverter graph. Base and input
// propositions are circuit inputs; every other component maps to the
// literal computing its value.
type circuit struct {
	c    *logic.C
	lits []z.Lit
}

// lower requires comps in topological order.
func lower(comps []*Component) *circuit {
	c := logic.NewC()
	lits := make([]z.Lit, len(comps))
	ins := func(comp *Component) []z.Lit {
		out := make([]z.Lit, len(comp.Inputs))
		for i, in := range comp.Inputs {
			out[i] = lits[in]
		}
		return out
	}
	for _, comp := range comps {
		switch comp.Kind {
		case KindProposition:
			switch {
			case len(comp.Inputs) > 0:
				lits[comp.ID] = lits[comp.Inputs[0]]
			case comp.Category == CategoryBase || comp.Category == CategoryInput:
				lits[comp.ID] = c.Lit()
			default:
				lits[comp.ID] = c.F
			}
		case KindAnd:
			lits[comp.ID] = c.Ands(ins(comp)...)
		case KindOr:
			lits[comp.ID] = c.Ors(ins(comp)...)
		case KindNot:
			lits[comp.ID] = lits[comp.Inputs[0]].Not()
		case KindConstant:
			if comp.Value {
				lits[comp.ID] = c.T
			} else {
				lits[comp.ID] = c.F
			}
		case KindTransition:
			lits[comp.ID] = lits[comp.Inputs[0]]
		}
	}
	return &circuit{c: c, lits: lits}
}

// size is the length of a value vector indexed by variable.
func (ct *circuit) size() int { return ct.c.Len() + 1 }

// Assignment holds the truth values of one evaluation. It is not safe for
// concurrent use; give each goroutine its own.
type Assignment struct {
	pn  *Propnet
	buf *[]bool
	vs  []bool
}

// NewAssignment returns a cleared assignment backed by a pooled buffer.
// Hand it back with Release when done.
func (pn *Propnet) NewAssignment() *Assignment {
	buf := pn.pool.Get().(*[]bool)
	a := &Assignment{pn: pn, buf: buf, vs: *buf}
	a.Reset()
	return a
}

// Release returns the assignment's buffer to the pool. The assignment must
// not be used afterwards.
func (pn *Propnet) Release(a *Assignment) {
	if a == nil || a.buf == nil || a.pn != pn {
		return
	}
	pn.pool.Put(a.buf)
	a.buf, a.vs = nil, nil
}

// Reset sets every base and input proposition to false.
func (a *Assignment) Reset() {
	clear(a.vs)
	t := a.pn.circuit.c.T
	a.vs[t.Var()] = t.IsPos()
}

// SetState marks the base propositions of the state's sentences true. The
// assignment should be Reset first.
func (a *Assignment) SetState(st *game.State) error {
	var err error
	st.Each(func(s *gdl.Sentence) {
		id, ok := a.pn.base[s]
		if !ok {
			if err == nil {
				err = fmt.Errorf("%w: %s", ErrUnknownSentence, s)
			}
			return
		}
		a.set(id)
	})
	return err
}

// SetMoves marks the input propositions of the joint move true.
func (a *Assignment) SetMoves(moves game.JointMove) error {
	for r, m := range moves {
		id, ok := a.pn.input[doesSentence(r, m)]
		if !ok {
			return fmt.Errorf("%w: role %s move %s", ErrUnknownMove, r, m)
		}
		a.set(id)
	}
	return nil
}

func (a *Assignment) set(id int) {
	m := a.pn.circuit.lits[id]
	a.vs[m.Var()] = m.IsPos()
}

// Evaluate propagates the base and input values through the network.
func (a *Assignment) Evaluate() {
	a.pn.circuit.c.Eval(a.vs)
}

// Value returns the value of a component after Evaluate. For a transition it
// is the value its target takes in the next state.
func (a *Assignment) Value(id int) bool {
	m := a.pn.circuit.lits[id]
	return a.vs[m.Var()] == m.IsPos()
}
