package gdl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallGame = `
(role white) (role black)
(init (control white))
(succ 1 2)
(<= (legal ?r noop) (role ?r) (not (true (control ?r))))
(<= (next (control ?r)) (does ?o ?m) (role ?r) (distinct ?r ?o))
(<= terminal (true (step 2)))
(<= (goal ?r 50) (role ?r))
`

func TestDatabaseIndex(t *testing.T) {
	db, err := ParseDatabase(smallGame)
	require.NoError(t, err)

	assert.Equal(t, 8, db.Len())
	assert.Equal(t, []Term{NewConstant("white"), NewConstant("black")}, db.Roles())
	assert.Len(t, db.RulesFor(LegalName), 1)
	assert.Empty(t, db.RulesFor("missing"))
	assert.Equal(t, []string{"role", "init", "succ", "legal", "next", "terminal", "goal"}, db.HeadNames())
	assert.Contains(t, db.Predicates(), Predicate{Name: TrueName, Arity: 1})
	assert.Contains(t, db.Predicates(), Predicate{Name: DoesName, Arity: 2})
	assert.Equal(t, "Database{rules: 8, predicates: 7, roles: 2}", db.String())

	rules := db.Rules()
	rules[0] = nil
	assert.NotNil(t, db.Rules()[0])
}

func TestIsStatic(t *testing.T) {
	db, err := ParseDatabase(smallGame)
	require.NoError(t, err)

	for _, name := range []string{RoleName, InitName, "succ", GoalName} {
		assert.True(t, db.IsStatic(name), name)
	}
	for _, name := range []string{LegalName, NextName, TerminalName, TrueName, DoesName} {
		assert.False(t, db.IsStatic(name), name)
	}
}

func TestCheckArity(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		predicate string
	}{
		{"heads disagree", "(p 1) (p 1 2)", "p"},
		{"body disagrees with head", "(p 1) (<= q (p 1 2))", "p"},
		{"inside negation", "(p 1) (<= q (not (p)))", "p"},
		{"inside disjunction", "(p 1) (<= q (or (p 1 2) r))", "p"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := ParseDatabase(tt.src)
			require.NoError(t, err)
			err = db.CheckArity()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRules))
			var mre *MalformedRulesError
			require.ErrorAs(t, err, &mre)
			assert.Equal(t, tt.predicate, mre.Predicate)
		})
	}

	db, err := ParseDatabase(smallGame)
	require.NoError(t, err)
	assert.NoError(t, db.CheckArity())
}

func TestCheckStratified(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ok   bool
	}{
		{"positive recursion", "(<= (path ?x ?y) (edge ?x ?y)) (<= (path ?x ?z) (edge ?x ?y) (path ?y ?z))", true},
		{"negation of a lower stratum", "(<= p (not q)) (<= q r)", true},
		{"self negation", "(<= p (not p))", false},
		{"mutual negation", "(<= p (not q)) (<= q p)", false},
		{"negated disjunction", "(<= p (not (or q s))) (<= q p)", false},
		{"double negation is positive", "(<= p (not (not q))) (<= q p)", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := ParseDatabase(tt.src)
			require.NoError(t, err)
			err = db.CheckStratified()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrMalformedRules))
		})
	}
}

func TestMalformedRulesError(t *testing.T) {
	err := Malformed("legal", "used with arity %d and %d", 2, 3)
	assert.Equal(t, "gdl: malformed rules: legal: used with arity 2 and 3", err.Error())
	err = Malformed("", "no roles")
	assert.Equal(t, "gdl: malformed rules: no roles", err.Error())
}
