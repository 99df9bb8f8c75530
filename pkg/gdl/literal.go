package gdl

import (
	"fmt"
	"strings"
)

// Literal is one element of a rule body. The variants are *Sentence
// (a positive literal), *Not, *Distinct and *Or.
type Literal interface {
	String() string
	IsGround() bool
	literal()
}

// Not is negation as failure over a literal.
type Not struct {
	Body Literal
}

// NewNot wraps a literal in a negation.
func NewNot(body Literal) *Not {
	if body == nil {
		panic("gdl: nil body for not")
	}
	return &Not{Body: body}
}

func (n *Not) String() string { return fmt.Sprintf("(not %s)", n.Body) }
func (n *Not) IsGround() bool { return n.Body.IsGround() }
func (n *Not) literal()       {}

// Distinct holds when its two terms are not identical.
type Distinct struct {
	Left, Right Term
}

// NewDistinct builds a distinct literal.
func NewDistinct(left, right Term) *Distinct {
	if left == nil || right == nil {
		panic("gdl: nil term for distinct")
	}
	return &Distinct{Left: left, Right: right}
}

func (d *Distinct) String() string { return fmt.Sprintf("(distinct %s %s)", d.Left, d.Right) }
func (d *Distinct) IsGround() bool { return d.Left.IsGround() && d.Right.IsGround() }
func (d *Distinct) literal()       {}

// Or holds when any of its disjuncts holds.
type Or struct {
	Disjuncts []Literal
}

// NewOr builds a disjunction.
func NewOr(disjuncts ...Literal) *Or {
	return &Or{Disjuncts: append([]Literal(nil), disjuncts...)}
}

func (o *Or) String() string {
	parts := make([]string, len(o.Disjuncts))
	for i, d := range o.Disjuncts {
		parts[i] = d.String()
	}
	return "(or " + strings.Join(parts, " ") + ")"
}

func (o *Or) IsGround() bool {
	for _, d := range o.Disjuncts {
		if !d.IsGround() {
			return false
		}
	}
	return true
}

func (o *Or) literal() {}

// Sentences calls fn for every sentence inside the literal, descending into
// negations and disjunctions. positive is false under an odd number of negations.
func Sentences(l Literal, fn func(s *Sentence, positive bool)) {
	walkSentences(l, true, fn)
}

func walkSentences(l Literal, positive bool, fn func(*Sentence, bool)) {
	switch x := l.(type) {
	case *Sentence:
		fn(x, positive)
	case *Not:
		walkSentences(x.Body, !positive, fn)
	case *Or:
		for _, d := range x.Disjuncts {
			walkSentences(d, positive, fn)
		}
	}
}
