package statemachine

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/gitrdm/goggp/pkg/game"
	"github.com/gitrdm/goggp/pkg/gdl"
	"github.com/gitrdm/goggp/pkg/prover"
)

type proverMachine struct {
	p       *prover.Prover
	roles   []game.Role
	initial *game.State
	logger  *zap.Logger

	terminal   *gdl.Sentence
	nextQuery  *gdl.Sentence
	legalQuery map[game.Role]*gdl.Sentence
	goalQuery  map[game.Role]*gdl.Sentence
}

// NewProverMachine builds a state machine that answers every call with the
// prover. The rules must use consistent arities and be stratified.
func NewProverMachine(db *gdl.Database, opts Options) (StateMachine, error) {
	if err := db.CheckArity(); err != nil {
		return nil, err
	}
	if err := db.CheckStratified(); err != nil {
		return nil, err
	}
	roles, err := rolesOf(db)
	if err != nil {
		return nil, err
	}
	logger := opts.logger().With(zap.String("backend", string(BackendProver)))
	m := &proverMachine{
		p:          prover.New(db, prover.WithMaxDepth(opts.MaxDepth), prover.WithLogger(logger)),
		roles:      roles,
		logger:     logger,
		terminal:   gdl.NewProposition(gdl.TerminalName),
		nextQuery:  gdl.NewSentence(gdl.NextName, gdl.Fresh("x")),
		legalQuery: make(map[game.Role]*gdl.Sentence, len(roles)),
		goalQuery:  make(map[game.Role]*gdl.Sentence, len(roles)),
	}
	for _, r := range roles {
		m.legalQuery[r] = gdl.NewSentence(gdl.LegalName, r.Term(), gdl.Fresh("m"))
		m.goalQuery[r] = gdl.NewSentence(gdl.GoalName, r.Term(), gdl.Fresh("v"))
	}

	inits, err := m.p.AskAll(gdl.NewSentence(gdl.InitName, gdl.Fresh("x")), nil)
	if err != nil {
		return nil, err
	}
	facts := make([]*gdl.Sentence, len(inits))
	for i, s := range inits {
		facts[i] = gdl.NewSentence(gdl.TrueName, s.Get(0))
	}
	m.initial = game.NewState(facts...)
	logger.Debug("prover machine ready", zap.Int("roles", len(roles)), zap.Int("initial_facts", m.initial.Len()))
	return m, nil
}

func (m *proverMachine) sealed() {}

func (m *proverMachine) Backend() Backend { return BackendProver }

func (m *proverMachine) Roles() []game.Role { return slices.Clone(m.roles) }

func (m *proverMachine) InitialState() *game.State { return m.initial }

func stateContext(st *game.State, moves game.JointMove) *prover.Context {
	facts := st.Contents()
	for r, mv := range moves {
		facts = append(facts, gdl.NewSentence(gdl.DoesName, r.Term(), mv.Contents()))
	}
	return prover.NewContext(facts...)
}

func (m *proverMachine) LegalMoves(st *game.State, r game.Role) ([]game.Move, error) {
	query, ok := m.legalQuery[r]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, r)
	}
	ctx := stateContext(st, nil)
	terminal, err := m.p.Prove(m.terminal, ctx)
	if err != nil {
		return nil, err
	}
	if terminal {
		return nil, &game.NoLegalMoveError{Role: r, Terminal: true}
	}
	answers, err := m.p.AskAll(query, ctx)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, &game.NoLegalMoveError{Role: r}
	}
	moves := make([]game.Move, len(answers))
	for i, a := range answers {
		moves[i] = game.NewMove(a.Get(1))
	}
	sortMoves(moves)
	return moves, nil
}

func (m *proverMachine) NextState(st *game.State, moves game.JointMove) (*game.State, error) {
	if err := checkRoles(m.roles, moves); err != nil {
		return nil, err
	}
	ctx := stateContext(st, nil)
	terminal, err := m.p.Prove(m.terminal, ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range m.roles {
		mv := moves[r]
		if terminal {
			return nil, &game.IllegalMoveError{Role: r, Move: mv, Reason: "state is terminal"}
		}
		legal := gdl.NewSentence(gdl.LegalName, r.Term(), mv.Contents())
		ok, err := m.p.Prove(legal, ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &game.IllegalMoveError{Role: r, Move: mv, Reason: "not a legal move in this state"}
		}
	}

	next, err := m.p.AskAll(m.nextQuery, stateContext(st, moves))
	if err != nil {
		return nil, err
	}
	return nextToTrue(next), nil
}

func (m *proverMachine) IsTerminal(st *game.State) (bool, error) {
	return m.p.Prove(m.terminal, stateContext(st, nil))
}

func (m *proverMachine) Goal(st *game.State, r game.Role) (int, error) {
	query, ok := m.goalQuery[r]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRole, r)
	}
	goals, err := m.p.AskAll(query, stateContext(st, nil))
	if err != nil {
		return 0, err
	}
	return goalValue(r, goals)
}
