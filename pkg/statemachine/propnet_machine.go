package statemachine

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/gitrdm/goggp/pkg/game"
	"github.com/gitrdm/goggp/pkg/gdl"
	"github.com/gitrdm/goggp/pkg/propnet"
)

type propnetMachine struct {
	pn      *propnet.Propnet
	roles   []game.Role
	initial *game.State
	legalOf map[*gdl.Sentence]int // (legal r m) -> proposition
}

// NewPropnetMachine compiles the rules and builds a state machine that
// answers every call with one evaluation of the network.
func NewPropnetMachine(db *gdl.Database, opts Options) (StateMachine, error) {
	roles, err := rolesOf(db)
	if err != nil {
		return nil, err
	}
	logger := opts.logger().With(zap.String("backend", string(BackendPropnet)))
	pn, err := propnet.Compile(db, roles,
		propnet.WithLogger(logger),
		propnet.WithMaxPropositions(opts.MaxPropositions))
	if err != nil {
		return nil, err
	}
	return newPropnetMachine(pn), nil
}

// FromPropnet wraps an already compiled network.
func FromPropnet(pn *propnet.Propnet) StateMachine { return newPropnetMachine(pn) }

func newPropnetMachine(pn *propnet.Propnet) *propnetMachine {
	m := &propnetMachine{pn: pn, roles: pn.Roles(), legalOf: make(map[*gdl.Sentence]int)}
	for _, r := range m.roles {
		for _, id := range pn.LegalPropositions(r) {
			m.legalOf[pn.Component(id).Sentence] = id
		}
	}

	a := pn.NewAssignment()
	defer pn.Release(a)
	a.Evaluate()
	var facts []*gdl.Sentence
	for _, id := range pn.InitPropositions() {
		if a.Value(id) {
			facts = append(facts, gdl.NewSentence(gdl.TrueName, pn.Component(id).Sentence.Get(0)))
		}
	}
	m.initial = game.NewState(facts...)
	return m
}

func (m *propnetMachine) sealed() {}

func (m *propnetMachine) Backend() Backend { return BackendPropnet }

func (m *propnetMachine) Roles() []game.Role { return slices.Clone(m.roles) }

func (m *propnetMachine) InitialState() *game.State { return m.initial }

// Propnet returns the compiled network.
func (m *propnetMachine) Propnet() *propnet.Propnet { return m.pn }

// load evaluates the network on a state; the caller releases the assignment.
func (m *propnetMachine) load(st *game.State) (*propnet.Assignment, error) {
	a := m.pn.NewAssignment()
	if err := a.SetState(st); err != nil {
		m.pn.Release(a)
		return nil, err
	}
	a.Evaluate()
	return a, nil
}

func (m *propnetMachine) terminal(a *propnet.Assignment) bool {
	id, ok := m.pn.TerminalProposition()
	return ok && a.Value(id)
}

func (m *propnetMachine) LegalMoves(st *game.State, r game.Role) ([]game.Move, error) {
	if !hasRole(m.roles, r) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, r)
	}
	a, err := m.load(st)
	if err != nil {
		return nil, err
	}
	defer m.pn.Release(a)
	if m.terminal(a) {
		return nil, &game.NoLegalMoveError{Role: r, Terminal: true}
	}
	var moves []game.Move
	for _, id := range m.pn.LegalPropositions(r) {
		if a.Value(id) {
			moves = append(moves, game.NewMove(m.pn.Component(id).Sentence.Get(1)))
		}
	}
	if len(moves) == 0 {
		return nil, &game.NoLegalMoveError{Role: r}
	}
	sortMoves(moves)
	return moves, nil
}

func (m *propnetMachine) NextState(st *game.State, moves game.JointMove) (*game.State, error) {
	if err := checkRoles(m.roles, moves); err != nil {
		return nil, err
	}
	a, err := m.load(st)
	if err != nil {
		return nil, err
	}
	defer m.pn.Release(a)
	terminal := m.terminal(a)
	for _, r := range m.roles {
		mv := moves[r]
		if terminal {
			return nil, &game.IllegalMoveError{Role: r, Move: mv, Reason: "state is terminal"}
		}
		id, ok := m.legalOf[gdl.NewSentence(gdl.LegalName, r.Term(), mv.Contents())]
		if !ok || !a.Value(id) {
			return nil, &game.IllegalMoveError{Role: r, Move: mv, Reason: "not a legal move in this state"}
		}
	}

	if err := a.SetMoves(moves); err != nil {
		return nil, err
	}
	a.Evaluate()
	var facts []*gdl.Sentence
	for _, id := range m.pn.Transitions() {
		if a.Value(id) {
			facts = append(facts, m.pn.Component(m.pn.Component(id).Target).Sentence)
		}
	}
	return game.NewState(facts...), nil
}

func (m *propnetMachine) IsTerminal(st *game.State) (bool, error) {
	a, err := m.load(st)
	if err != nil {
		return false, err
	}
	defer m.pn.Release(a)
	return m.terminal(a), nil
}

func (m *propnetMachine) Goal(st *game.State, r game.Role) (int, error) {
	if !hasRole(m.roles, r) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRole, r)
	}
	a, err := m.load(st)
	if err != nil {
		return 0, err
	}
	defer m.pn.Release(a)
	var goals []*gdl.Sentence
	for _, id := range m.pn.GoalPropositions(r) {
		if a.Value(id) {
			goals = append(goals, m.pn.Component(id).Sentence)
		}
	}
	return goalValue(r, goals)
}
