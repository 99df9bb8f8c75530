// Package statemachine exposes a game as a state machine: roles, initial
// state, legal moves, successor states, termination and goals. Two backends
// implement the same contract. The prover backend answers every call by
// backward chaining over the rules; the propnet backend compiles the rules
// once and answers every call with a single network evaluation.
//
// Both backends are safe for concurrent use. States are immutable and may be
// shared between goroutines and search branches.
package statemachine

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/gitrdm/goggp/pkg/game"
	"github.com/gitrdm/goggp/pkg/gdl"
)

// Backend selects the engine behind a StateMachine.
type Backend string

const (
	BackendProver  Backend = "prover"
	BackendPropnet Backend = "propnet"
)

// ParseBackend converts a configuration value into a Backend.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendProver, BackendPropnet:
		return b, nil
	}
	return "", fmt.Errorf("statemachine: unknown backend %q (want %s or %s)", s, BackendProver, BackendPropnet)
}

// ErrUnknownRole is returned when a query names a role the game does not declare.
var ErrUnknownRole = errors.New("statemachine: unknown role")

// Options configures a state machine.
type Options struct {
	Backend Backend
	// MaxDepth is the prover recursion ceiling; zero keeps the default.
	MaxDepth int
	// MaxPropositions bounds propnet grounding; zero keeps the default.
	MaxPropositions int
	Logger          *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// StateMachine is the query contract shared by both backends.
//
// LegalMoves returns the moves sorted by their rendering, so both backends
// list the same moves in the same order. It fails with a
// *game.NoLegalMoveError on a terminal state or when the role has no move.
//
// NextState requires exactly one legal move per role and fails with a
// *game.IllegalMoveError otherwise.
//
// Goal is meaningful on terminal states. On other states it returns the
// single goal value the rules happen to define, or a
// *game.GoalDefinitionError when there is not exactly one.
type StateMachine interface {
	Backend() Backend
	Roles() []game.Role
	InitialState() *game.State
	LegalMoves(state *game.State, role game.Role) ([]game.Move, error)
	NextState(state *game.State, moves game.JointMove) (*game.State, error)
	IsTerminal(state *game.State) (bool, error)
	Goal(state *game.State, role game.Role) (int, error)

	sealed()
}

// New builds a state machine with the backend named in opts.
func New(db *gdl.Database, opts Options) (StateMachine, error) {
	switch opts.Backend {
	case BackendProver:
		return NewProverMachine(db, opts)
	case BackendPropnet:
		return NewPropnetMachine(db, opts)
	}
	return nil, fmt.Errorf("statemachine: unknown backend %q", opts.Backend)
}

func rolesOf(db *gdl.Database) ([]game.Role, error) {
	var roles []game.Role
	for _, t := range db.Roles() {
		r, err := game.RoleOf(t)
		if err != nil {
			return nil, gdl.Malformed(gdl.RoleName, "%v", err)
		}
		roles = append(roles, r)
	}
	if len(roles) == 0 {
		return nil, gdl.Malformed(gdl.RoleName, "game declares no roles")
	}
	return roles, nil
}

// checkRoles verifies that moves holds exactly one move per role.
func checkRoles(roles []game.Role, moves game.JointMove) error {
	for r, m := range moves {
		if !hasRole(roles, r) {
			return &game.IllegalMoveError{Role: r, Move: m, Reason: "unknown role"}
		}
	}
	for _, r := range roles {
		if m, ok := moves[r]; !ok || m.IsZero() {
			return &game.IllegalMoveError{Role: r, Reason: "no move submitted"}
		}
	}
	return nil
}

func hasRole(roles []game.Role, r game.Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

func sortMoves(moves []game.Move) {
	sort.Slice(moves, func(i, j int) bool { return moves[i].String() < moves[j].String() })
}

// goalValue resolves the goal sentences that hold for a role.
func goalValue(r game.Role, goals []*gdl.Sentence) (int, error) {
	values := make([]string, len(goals))
	for i, g := range goals {
		values[i] = g.Get(1).String()
	}
	if len(values) != 1 {
		sort.Strings(values)
		return 0, &game.GoalDefinitionError{Role: r, Values: values}
	}
	v, err := strconv.Atoi(values[0])
	if err != nil {
		return 0, &game.GoalDefinitionError{Role: r, Values: values}
	}
	return v, nil
}

func nextToTrue(next []*gdl.Sentence) *game.State {
	facts := make([]*gdl.Sentence, len(next))
	for i, s := range next {
		facts[i] = gdl.NewSentence(gdl.TrueName, s.Get(0))
	}
	return game.NewState(facts...)
}
