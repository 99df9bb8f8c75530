package statemachine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/gitrdm/goggp/pkg/game"
)

// ErrMismatch is wrapped by MismatchError.
var ErrMismatch = errors.New("statemachine: backends disagree")

// MismatchError describes the first query on which two state machines gave
// different answers.
type MismatchError struct {
	Op    string
	State *game.State
	Moves game.JointMove
	A, B  string
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "statemachine: %s differs in state %s", e.Op, e.State)
	if e.Moves != nil {
		fmt.Fprintf(&b, " with moves %s", renderJointMove(e.Moves))
	}
	fmt.Fprintf(&b, ": %s vs %s", e.A, e.B)
	return b.String()
}

func (e *MismatchError) Unwrap() error { return ErrMismatch }

func renderJointMove(jm game.JointMove) string {
	parts := make([]string, 0, len(jm))
	for r, m := range jm {
		parts = append(parts, r.String()+"="+m.String())
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, " ") + "}"
}

// outcome renders a result so that equal answers from two backends render
// equally. Errors render by kind.
func outcome(v any, err error) string {
	if err != nil {
		switch {
		case errors.Is(err, game.ErrNoLegalMove):
			return "error: no legal move"
		case errors.Is(err, game.ErrIllegalMove):
			return "error: illegal move"
		case errors.Is(err, game.ErrGoalDefinition):
			return "error: goal not defined"
		}
		return "error: " + err.Error()
	}
	switch x := v.(type) {
	case *game.State:
		return x.String()
	case []game.Move:
		parts := make([]string, len(x))
		for i, m := range x {
			parts[i] = m.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	}
	return fmt.Sprint(v)
}

// CheckEquivalence runs random walks from start (the initial state when nil)
// and compares the two machines on every visited state: terminality, goals,
// legal moves of every role, and the successor of every
// legal joint move. It returns the first difference as a *MismatchError.
func CheckEquivalence(a, b StateMachine, start *game.State, rng *rand.Rand, walks, maxSteps int) error {
	if start == nil {
		ia, ib := a.InitialState(), b.InitialState()
		if !ia.Equal(ib) {
			return &MismatchError{Op: "InitialState", State: ia, A: ia.String(), B: ib.String()}
		}
		start = ia
	}
	roles := a.Roles()
	for w := 0; w < walks; w++ {
		st := start
		for step := 0; maxSteps <= 0 || step < maxSteps; step++ {
			ta, errA := a.IsTerminal(st)
			tb, errB := b.IsTerminal(st)
			if oa, ob := outcome(ta, errA), outcome(tb, errB); oa != ob {
				return &MismatchError{Op: "IsTerminal", State: st, A: oa, B: ob}
			}
			if errA != nil {
				return errA
			}
			for _, r := range roles {
				ga, errA := a.Goal(st, r)
				gb, errB := b.Goal(st, r)
				if oa, ob := outcome(ga, errA), outcome(gb, errB); oa != ob {
					return &MismatchError{Op: "Goal(" + r.String() + ")", State: st, A: oa, B: ob}
				}
			}
			for _, r := range roles {
				la, errA := a.LegalMoves(st, r)
				lb, errB := b.LegalMoves(st, r)
				if oa, ob := outcome(la, errA), outcome(lb, errB); oa != ob {
					return &MismatchError{Op: "LegalMoves(" + r.String() + ")", State: st, A: oa, B: ob}
				}
			}
			if ta {
				break
			}

			joint, err := LegalJointMoves(a, st)
			if err != nil {
				return err
			}
			var succ []*game.State
			for _, jm := range joint {
				na, errA := a.NextState(st, jm)
				nb, errB := b.NextState(st, jm)
				if oa, ob := outcome(na, errA), outcome(nb, errB); oa != ob {
					return &MismatchError{Op: "NextState", State: st, Moves: jm, A: oa, B: ob}
				}
				if errA != nil {
					return errA
				}
				succ = append(succ, na)
			}
			st = succ[rng.IntN(len(succ))]
		}
	}
	return nil
}
