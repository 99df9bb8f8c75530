package game

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/goggp/pkg/gdl"
)

func sentence(s string) *gdl.Sentence { return gdl.MustParseSentence(s) }

func TestRole(t *testing.T) {
	a, b := NewRole("xplayer"), NewRole("xplayer")
	assert.Equal(t, a, b)
	assert.True(t, a == b)
	assert.Equal(t, "xplayer", a.String())
	assert.True(t, Role{}.IsZero())
	assert.Equal(t, "", Role{}.Name())

	m := map[Role]int{a: 1}
	assert.Equal(t, 1, m[b])

	r, err := RoleOf(gdl.NewConstant("robot"))
	require.NoError(t, err)
	assert.Equal(t, NewRole("robot"), r)
	_, err = RoleOf(gdl.MustParseTerm("(team red)"))
	assert.Error(t, err)
}

func TestMove(t *testing.T) {
	a := NewMove(gdl.MustParseTerm("(mark 1 2)"))
	b := NewMove(gdl.NewFunction("mark", gdl.NewConstant("1"), gdl.NewConstant("2")))
	assert.True(t, a == b)
	assert.Equal(t, "(mark 1 2)", a.String())
	assert.Equal(t, "<none>", Move{}.String())
	assert.True(t, Move{}.IsZero())
	assert.Panics(t, func() { NewMove(gdl.MustParseTerm("(mark ?x 2)")) })
	assert.Panics(t, func() { NewMove(nil) })
}

func TestState(t *testing.T) {
	p := sentence("(true (cell 1 1 b))")
	q := sentence("(true (control xplayer))")

	s1 := NewState(q, p, p)
	s2 := NewState(p, q)
	assert.Equal(t, 2, s1.Len())
	assert.True(t, s1.Equal(s2))
	assert.True(t, s1.Contains(p))
	assert.False(t, s1.Contains(sentence("(true (cell 1 1 x))")))
	assert.Empty(t, cmp.Diff([]string{"(true (cell 1 1 b))", "(true (control xplayer))"}, s1.Strings()))
	assert.Equal(t, "{(true (cell 1 1 b)) (true (control xplayer))}", s1.String())

	contents := s1.Contents()
	contents[0] = nil
	assert.NotNil(t, s1.Contents()[0])

	n := 0
	s1.Each(func(*gdl.Sentence) { n++ })
	assert.Equal(t, 2, n)

	assert.False(t, s1.Equal(NewState(p)))
	assert.False(t, s1.Equal(nil))
	assert.True(t, NewState().Equal(NewState()))
	assert.Panics(t, func() { NewState(sentence("(true ?x)")) })
}

func TestErrors(t *testing.T) {
	x := NewRole("xplayer")
	noop := NewMove(gdl.NewConstant("noop"))

	tests := []struct {
		err      error
		sentinel error
		msg      string
	}{
		{&IllegalMoveError{Role: x, Move: noop}, ErrIllegalMove, "game: illegal move noop for role xplayer"},
		{&IllegalMoveError{Role: x, Reason: "no move submitted"}, ErrIllegalMove, "game: illegal move <none> for role xplayer: no move submitted"},
		{&NoLegalMoveError{Role: x}, ErrNoLegalMove, "game: no legal move for role xplayer"},
		{&NoLegalMoveError{Role: x, Terminal: true}, ErrNoLegalMove, "game: no legal move for role xplayer: state is terminal"},
		{&GoalDefinitionError{Role: x}, ErrGoalDefinition, "game: no goal value for role xplayer"},
		{&GoalDefinitionError{Role: x, Values: []string{"0", "100"}}, ErrGoalDefinition, "game: goal for role xplayer is not a single integer: [0 100]"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			assert.Equal(t, tt.msg, tt.err.Error())
		})
	}
}
