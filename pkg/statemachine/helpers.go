package statemachine

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/gitrdm/goggp/pkg/game"
)

// ErrPlayoutTooLong is returned by Playout when the step limit is reached
// before a terminal state.
var ErrPlayoutTooLong = errors.New("statemachine: playout exceeded step limit")

// Goals returns the goal value of every role, in role order.
func Goals(sm StateMachine, st *game.State) ([]int, error) {
	roles := sm.Roles()
	out := make([]int, len(roles))
	for i, r := range roles {
		v, err := sm.Goal(st, r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// LegalJointMoves returns every combination of legal moves, varying the
// last role fastest.
func LegalJointMoves(sm StateMachine, st *game.State) ([]game.JointMove, error) {
	roles := sm.Roles()
	legal := make([][]game.Move, len(roles))
	total := 1
	for i, r := range roles {
		moves, err := sm.LegalMoves(st, r)
		if err != nil {
			return nil, err
		}
		legal[i] = moves
		total *= len(moves)
	}
	out := make([]game.JointMove, 0, total)
	idx := make([]int, len(roles))
	for {
		jm := make(game.JointMove, len(roles))
		for i, r := range roles {
			jm[r] = legal[i][idx[i]]
		}
		out = append(out, jm)
		i := len(roles) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(legal[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return out, nil
		}
	}
}

// RandomJointMove picks one legal move per role uniformly at random.
func RandomJointMove(sm StateMachine, st *game.State, rng *rand.Rand) (game.JointMove, error) {
	roles := sm.Roles()
	jm := make(game.JointMove, len(roles))
	for _, r := range roles {
		moves, err := sm.LegalMoves(st, r)
		if err != nil {
			return nil, err
		}
		jm[r] = moves[rng.IntN(len(moves))]
	}
	return jm, nil
}

// RandomNextState advances the state with a random joint move.
func RandomNextState(sm StateMachine, st *game.State, rng *rand.Rand) (*game.State, error) {
	jm, err := RandomJointMove(sm, st, rng)
	if err != nil {
		return nil, err
	}
	return sm.NextState(st, jm)
}

// Playout plays random joint moves from st until a terminal state and
// returns it with the number of steps taken. A maxSteps of zero or less
// means no limit.
func Playout(sm StateMachine, st *game.State, rng *rand.Rand, maxSteps int) (*game.State, int, error) {
	for steps := 0; ; steps++ {
		terminal, err := sm.IsTerminal(st)
		if err != nil {
			return nil, steps, err
		}
		if terminal {
			return st, steps, nil
		}
		if maxSteps > 0 && steps >= maxSteps {
			return st, steps, fmt.Errorf("%w (%d)", ErrPlayoutTooLong, maxSteps)
		}
		if st, err = RandomNextState(sm, st, rng); err != nil {
			return nil, steps, err
		}
	}
}
