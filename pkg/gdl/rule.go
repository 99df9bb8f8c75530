package gdl

import "strings"

// Rule reads "Head holds if every Body literal holds". A rule with an
// empty body is a fact.
type Rule struct {
	Head *Sentence
	Body []Literal

	vars []*Variable
}

// NewRule builds a rule and records its variables for renaming.
func NewRule(head *Sentence, body ...Literal) *Rule {
	if head == nil {
		panic("gdl: nil rule head")
	}
	r := &Rule{Head: head, Body: append([]Literal(nil), body...)}
	seen := make(map[*Variable]bool)
	collectVars(head, seen, &r.vars)
	for _, l := range r.Body {
		collectLiteralVars(l, seen, &r.vars)
	}
	return r
}

// NewFact builds a rule with an empty body.
func NewFact(head *Sentence) *Rule {
	return NewRule(head)
}

// IsFact reports whether the rule has an empty body.
func (r *Rule) IsFact() bool { return len(r.Body) == 0 }

// Vars returns the distinct variables of the rule in order of first occurrence.
func (r *Rule) Vars() []*Variable {
	return append([]*Variable(nil), r.vars...)
}

func (r *Rule) String() string {
	if r.IsFact() {
		return r.Head.String()
	}
	var b strings.Builder
	b.WriteString("(<= ")
	b.WriteString(r.Head.String())
	for _, l := range r.Body {
		b.WriteByte(' ')
		b.WriteString(l.String())
	}
	b.WriteByte(')')
	return b.String()
}

func collectVars(t interface {
	Arity() int
	Get(int) Term
}, seen map[*Variable]bool, out *[]*Variable) {
	for i := 0; i < t.Arity(); i++ {
		collectTermVars(t.Get(i), seen, out)
	}
}

func collectTermVars(t Term, seen map[*Variable]bool, out *[]*Variable) {
	if t.IsGround() {
		return
	}
	if v, ok := t.(*Variable); ok {
		if !seen[v] {
			seen[v] = true
			*out = append(*out, v)
		}
		return
	}
	collectVars(t, seen, out)
}

func collectLiteralVars(l Literal, seen map[*Variable]bool, out *[]*Variable) {
	if l.IsGround() {
		return
	}
	switch x := l.(type) {
	case *Sentence:
		collectVars(x, seen, out)
	case *Not:
		collectLiteralVars(x.Body, seen, out)
	case *Distinct:
		collectTermVars(x.Left, seen, out)
		collectTermVars(x.Right, seen, out)
	case *Or:
		for _, d := range x.Disjuncts {
			collectLiteralVars(d, seen, out)
		}
	}
}
