package statemachine

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/goggp/internal/games"
	"github.com/gitrdm/goggp/pkg/game"
	"github.com/gitrdm/goggp/pkg/gdl"
)

var backends = []Backend{BackendProver, BackendPropnet}

func newMachine(t *testing.T, name string, b Backend) StateMachine {
	t.Helper()
	sm, err := New(games.MustLoad(name), Options{Backend: b})
	require.NoError(t, err)
	require.Equal(t, b, sm.Backend())
	return sm
}

func move(s string) game.Move { return game.NewMove(gdl.MustParseTerm(s)) }

var (
	xplayer = game.NewRole("xplayer")
	oplayer = game.NewRole("oplayer")
)

func TestTicTacToeScenario(t *testing.T) {
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			sm := newMachine(t, games.TicTacToe, b)
			assert.Equal(t, []game.Role{xplayer, oplayer}, sm.Roles())

			init := sm.InitialState()
			assert.Equal(t, 10, init.Len())
			assert.True(t, init.Contains(gdl.MustParseSentence("(true (control xplayer))")))

			xMoves, err := sm.LegalMoves(init, xplayer)
			require.NoError(t, err)
			assert.Len(t, xMoves, 9)
			assert.Equal(t, move("(mark 1 1)"), xMoves[0])

			oMoves, err := sm.LegalMoves(init, oplayer)
			require.NoError(t, err)
			assert.Equal(t, []game.Move{move("noop")}, oMoves)

			next, err := sm.NextState(init, game.JointMove{xplayer: move("(mark 1 1)"), oplayer: move("noop")})
			require.NoError(t, err)
			assert.True(t, next.Contains(gdl.MustParseSentence("(true (cell 1 1 x))")))
			assert.True(t, next.Contains(gdl.MustParseSentence("(true (control oplayer))")))
			assert.False(t, next.Contains(gdl.MustParseSentence("(true (control xplayer))")))

			st := next
			for _, jm := range []game.JointMove{
				{xplayer: move("noop"), oplayer: move("(mark 2 1)")},
				{xplayer: move("(mark 1 2)"), oplayer: move("noop")},
				{xplayer: move("noop"), oplayer: move("(mark 2 2)")},
				{xplayer: move("(mark 1 3)"), oplayer: move("noop")},
			} {
				terminal, err := sm.IsTerminal(st)
				require.NoError(t, err)
				require.False(t, terminal)
				st, err = sm.NextState(st, jm)
				require.NoError(t, err)
			}

			terminal, err := sm.IsTerminal(st)
			require.NoError(t, err)
			assert.True(t, terminal)
			goals, err := Goals(sm, st)
			require.NoError(t, err)
			assert.Equal(t, []int{100, 0}, goals)

			_, err = sm.LegalMoves(st, xplayer)
			var nlm *game.NoLegalMoveError
			require.ErrorAs(t, err, &nlm)
			assert.True(t, nlm.Terminal)
		})
	}
}

func TestBackendEquivalence(t *testing.T) {
	for _, name := range games.Names() {
		t.Run(name, func(t *testing.T) {
			db := games.MustLoad(name)
			p, err := NewProverMachine(db, Options{})
			require.NoError(t, err)
			n, err := NewPropnetMachine(db, Options{})
			require.NoError(t, err)
			rng := rand.New(rand.NewPCG(1, uint64(len(name))))
			assert.NoError(t, CheckEquivalence(p, n, nil, rng, 4, 12))
		})
	}
}

func TestNextStateDeterminism(t *testing.T) {
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			sm := newMachine(t, games.Buttons, b)
			robot := game.NewRole("robot")
			jm := game.JointMove{robot: move("a")}
			s1, err := sm.NextState(sm.InitialState(), jm)
			require.NoError(t, err)
			s2, err := sm.NextState(sm.InitialState(), jm)
			require.NoError(t, err)
			assert.True(t, s1.Equal(s2))
			if diff := cmp.Diff(s1.Strings(), s2.Strings()); diff != "" {
				t.Errorf("NextState not deterministic (-first +second):\n%s", diff)
			}
			assert.Equal(t, []string{
				"(true (off q))", "(true (off r))", "(true (on p))", "(true (step 2))",
			}, s1.Strings())
		})
	}
}

func TestNextStateValidation(t *testing.T) {
	tests := []struct {
		name  string
		moves game.JointMove
		role  game.Role
	}{
		{
			name:  "illegal move",
			moves: game.JointMove{xplayer: move("noop"), oplayer: move("noop")},
			role:  xplayer,
		},
		{
			name:  "missing role",
			moves: game.JointMove{xplayer: move("(mark 1 1)")},
			role:  oplayer,
		},
		{
			name: "unknown role",
			moves: game.JointMove{
				xplayer: move("(mark 1 1)"), oplayer: move("noop"), game.NewRole("zplayer"): move("noop"),
			},
			role: game.NewRole("zplayer"),
		},
		{
			name:  "move from the wrong game",
			moves: game.JointMove{xplayer: move("(jump 4)"), oplayer: move("noop")},
			role:  xplayer,
		},
	}
	for _, b := range backends {
		sm := newMachine(t, games.TicTacToe, b)
		for _, tt := range tests {
			t.Run(string(b)+"/"+tt.name, func(t *testing.T) {
				_, err := sm.NextState(sm.InitialState(), tt.moves)
				require.Error(t, err)
				assert.True(t, errors.Is(err, game.ErrIllegalMove))
				var ime *game.IllegalMoveError
				require.ErrorAs(t, err, &ime)
				assert.Equal(t, tt.role, ime.Role)
			})
		}
	}
}

func TestGoalOnNonTerminalState(t *testing.T) {
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			sm := newMachine(t, games.RPS, b)
			_, err := sm.Goal(sm.InitialState(), game.NewRole("left"))
			var gde *game.GoalDefinitionError
			require.ErrorAs(t, err, &gde)
			assert.Empty(t, gde.Values)
			assert.True(t, errors.Is(err, game.ErrGoalDefinition))
		})
	}
}

func TestUnknownRoleQueries(t *testing.T) {
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			sm := newMachine(t, games.RPS, b)
			_, err := sm.LegalMoves(sm.InitialState(), xplayer)
			assert.True(t, errors.Is(err, ErrUnknownRole))
			_, err = sm.Goal(sm.InitialState(), xplayer)
			assert.True(t, errors.Is(err, ErrUnknownRole))
		})
	}
}

func TestRockPaperScissors(t *testing.T) {
	left, right := game.NewRole("left"), game.NewRole("right")
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			sm := newMachine(t, games.RPS, b)
			joint, err := LegalJointMoves(sm, sm.InitialState())
			require.NoError(t, err)
			assert.Len(t, joint, 9)

			st, err := sm.NextState(sm.InitialState(), game.JointMove{left: move("paper"), right: move("rock")})
			require.NoError(t, err)
			terminal, err := sm.IsTerminal(st)
			require.NoError(t, err)
			require.True(t, terminal)
			goals, err := Goals(sm, st)
			require.NoError(t, err)
			assert.Equal(t, []int{100, 0}, goals)
		})
	}
}

func TestPlayout(t *testing.T) {
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			sm := newMachine(t, games.Buttons, b)
			rng := rand.New(rand.NewPCG(7, 7))
			final, steps, err := Playout(sm, sm.InitialState(), rng, 0)
			require.NoError(t, err)
			assert.LessOrEqual(t, steps, 6)
			terminal, err := sm.IsTerminal(final)
			require.NoError(t, err)
			assert.True(t, terminal)

			_, _, err = Playout(sm, sm.InitialState(), rng, 1)
			if err != nil {
				assert.True(t, errors.Is(err, ErrPlayoutTooLong))
			}
		})
	}
}

func TestPlayoutSameSeedSameResult(t *testing.T) {
	p := newMachine(t, games.TicTacToe, BackendProver)
	n := newMachine(t, games.TicTacToe, BackendPropnet)
	fp, dp, err := Playout(p, p.InitialState(), rand.New(rand.NewPCG(3, 9)), 0)
	require.NoError(t, err)
	fn, dn, err := Playout(n, n.InitialState(), rand.New(rand.NewPCG(3, 9)), 0)
	require.NoError(t, err)
	assert.Equal(t, dp, dn)
	assert.Empty(t, cmp.Diff(fp.Strings(), fn.Strings()))
}

func TestMalformedRules(t *testing.T) {
	src := `(role r) (init p)
		(<= (legal r a) (true p))
		(<= (legal r a b) (true p))`
	db, err := gdl.ParseDatabase(src)
	require.NoError(t, err)
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			sm, err := New(db, Options{Backend: b})
			assert.Nil(t, sm)
			assert.True(t, errors.Is(err, gdl.ErrMalformedRules))
		})
	}
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("propnet")
	require.NoError(t, err)
	assert.Equal(t, BackendPropnet, b)
	_, err = ParseBackend("oracle")
	assert.Error(t, err)
	_, err = New(games.MustLoad(games.RPS), Options{Backend: "oracle"})
	assert.Error(t, err)
}

func TestMismatchError(t *testing.T) {
	err := error(&MismatchError{
		Op:    "NextState",
		State: game.NewState(gdl.MustParseSentence("(true p)")),
		Moves: game.JointMove{xplayer: move("noop")},
		A:     "{}",
		B:     "{(true p)}",
	})
	assert.True(t, errors.Is(err, ErrMismatch))
	assert.Equal(t, "statemachine: NextState differs in state {(true p)} with moves {xplayer=noop}: {} vs {(true p)}", err.Error())
}
