package gdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnify(t *testing.T) {
	x, y := Fresh("x"), Fresh("y")
	one, two := NewConstant("1"), NewConstant("2")

	tests := []struct {
		name string
		a, b Term
		ok   bool
		want map[*Variable]Term
	}{
		{"identical constants", one, one, true, nil},
		{"different constants", one, two, false, nil},
		{"variable binds", x, one, true, map[*Variable]Term{x: one}},
		{"binds on the right", one, x, true, map[*Variable]Term{x: one}},
		{"nested", NewFunction("f", x, two), NewFunction("f", one, y), true, map[*Variable]Term{x: one, y: two}},
		{"functor mismatch", NewFunction("f", x), NewFunction("g", one), false, nil},
		{"arity mismatch", NewFunction("f", x), NewFunction("f", one, two), false, nil},
		{"constant against function", one, NewFunction("f", one), false, nil},
		{"repeated variable conflict", NewFunction("f", x, x), NewFunction("f", one, two), false, nil},
		{"ground functions differ", NewFunction("f", one), NewFunction("f", two), false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Unify(tt.a, tt.b, nil)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			for v, want := range tt.want {
				assert.Same(t, want, Substitute(v, s))
			}
			assert.True(t, Equal(Substitute(tt.a, s), Substitute(tt.b, s)))
		})
	}
}

func TestUnifyVariableChains(t *testing.T) {
	x, y := Fresh("x"), Fresh("y")
	s, ok := Unify(x, y, nil)
	require.True(t, ok)
	s, ok = Unify(y, NewConstant("b"), s)
	require.True(t, ok)
	assert.Equal(t, NewConstant("b"), s.Walk(x))
	assert.Equal(t, 2, s.Size())

	same, ok := Unify(x, x, nil)
	require.True(t, ok)
	assert.Nil(t, same)
}

func TestSubstitutionIsPersistent(t *testing.T) {
	x := Fresh("x")
	base := (*Substitution)(nil).Bind(Fresh("z"), NewConstant("0"))
	left := base.Bind(x, NewConstant("1"))
	right := base.Bind(x, NewConstant("2"))

	l, _ := left.Lookup(x)
	r, _ := right.Lookup(x)
	assert.Equal(t, NewConstant("1"), l)
	assert.Equal(t, NewConstant("2"), r)
	_, ok := base.Lookup(x)
	assert.False(t, ok)
	assert.Equal(t, "{}", (*Substitution)(nil).String())
}

func TestUnifySentence(t *testing.T) {
	q := MustParseSentence("(legal ?r (mark ?m 1))")
	fact := MustParseSentence("(legal xplayer (mark 3 1))")
	s, ok := UnifySentence(q, fact, nil)
	require.True(t, ok)
	assert.Same(t, fact, SubstituteSentence(q, s))

	_, ok = UnifySentence(q, MustParseSentence("(legal xplayer noop)"), nil)
	assert.False(t, ok)
	_, ok = UnifySentence(q, MustParseSentence("(goal xplayer 100)"), nil)
	assert.False(t, ok)
	_, ok = UnifySentence(fact, MustParseSentence("(legal oplayer (mark 3 1))"), nil)
	assert.False(t, ok)
}

func TestSubstituteLiteral(t *testing.T) {
	rules, err := Parse("(<= (h ?x) (not (p ?x)) (distinct ?x ?y) (or (q ?y) (r ?x)))")
	require.NoError(t, err)
	r := rules[0]
	vars := r.Vars()
	s := (*Substitution)(nil).Bind(vars[0], NewConstant("a")).Bind(vars[1], NewConstant("b"))

	var got []string
	for _, l := range r.Body {
		sl := SubstituteLiteral(l, s)
		assert.True(t, sl.IsGround())
		got = append(got, sl.String())
	}
	assert.Equal(t, []string{"(not (p a))", "(distinct a b)", "(or (q b) (r a))"}, got)
}

func TestRename(t *testing.T) {
	rules, err := Parse("(<= (path ?x ?z) (edge ?x ?y) (path ?y ?z))")
	require.NoError(t, err)
	r := rules[0]
	rn := Rename(r)
	assert.Equal(t, r.String(), rn.String())

	// The renamed head no longer shares variables with the original.
	orig := r.Head.Get(0).(*Variable)
	renamed := rn.Head.Get(0).(*Variable)
	assert.NotSame(t, orig, renamed)
	// Shared occurrences stay shared within the copy.
	assert.Same(t, renamed, rn.Body[0].(*Sentence).Get(0))

	fact := NewFact(MustParseSentence("(edge a b)"))
	assert.Same(t, fact, Rename(fact))
}

func TestVariantKey(t *testing.T) {
	a := MustParseSentence("(p ?a ?b ?a)")
	b := MustParseSentence("(p ?x ?y ?x)")
	c := MustParseSentence("(p ?x ?y ?y)")
	assert.Equal(t, VariantKey(a), VariantKey(b))
	assert.NotEqual(t, VariantKey(a), VariantKey(c))
	assert.Equal(t, "(p ?0 ?1 ?0)", VariantKey(a))
	assert.Equal(t, "(q (f ?0 1) ?0)", VariantKey(MustParseSentence("(q (f ?v 1) ?v)")))
	assert.Equal(t, "(p 1 2)", VariantKey(MustParseSentence("(p 1 2)")))
}
