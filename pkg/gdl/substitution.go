package gdl

import (
	"strconv"
	"strings"
)

// Substitution maps variables to terms. It is a persistent binding chain:
// Bind returns a new substitution that shares its parent, so backtracking is
// free and a substitution may be shared between goroutines. The nil
// *Substitution is the empty substitution.
type Substitution struct {
	v      *Variable
	t      Term
	parent *Substitution
	size   int
}

// Lookup returns the term bound to v, if any.
func (s *Substitution) Lookup(v *Variable) (Term, bool) {
	for b := s; b != nil; b = b.parent {
		if b.v == v {
			return b.t, true
		}
	}
	return nil, false
}

// Bind returns a substitution extended with v -> t.
func (s *Substitution) Bind(v *Variable, t Term) *Substitution {
	if t == Term(v) {
		return s
	}
	return &Substitution{v: v, t: t, parent: s, size: s.Size() + 1}
}

// Size returns the number of bindings.
func (s *Substitution) Size() int {
	if s == nil {
		return 0
	}
	return s.size
}

// Walk follows variable bindings until it reaches a non-variable or an unbound variable.
func (s *Substitution) Walk(t Term) Term {
	for {
		v, ok := t.(*Variable)
		if !ok {
			return t
		}
		bound, ok := s.Lookup(v)
		if !ok {
			return t
		}
		t = bound
	}
}

func (s *Substitution) String() string {
	if s == nil {
		return "{}"
	}
	parts := make([]string, 0, s.size)
	for b := s; b != nil; b = b.parent {
		parts = append(parts, b.v.String()+"="+b.t.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Unify extends s so that a and b become equal. It reports false when no
// such extension exists. There is no occurs check; game descriptions only
// produce finite terms.
func Unify(a, b Term, s *Substitution) (*Substitution, bool) {
	a = s.Walk(a)
	b = s.Walk(b)
	if a == b {
		return s, true
	}
	if va, ok := a.(*Variable); ok {
		return s.Bind(va, b), true
	}
	if vb, ok := b.(*Variable); ok {
		return s.Bind(vb, a), true
	}
	if a.IsGround() && b.IsGround() {
		return s, false
	}
	fa, ok := a.(*Function)
	if !ok {
		return s, false
	}
	fb, ok := b.(*Function)
	if !ok || fa.name != fb.name || len(fa.args) != len(fb.args) {
		return s, false
	}
	for i := range fa.args {
		if s, ok = Unify(fa.args[i], fb.args[i], s); !ok {
			return s, false
		}
	}
	return s, true
}

// UnifySentence unifies two sentences argument by argument.
func UnifySentence(a, b *Sentence, s *Substitution) (*Substitution, bool) {
	if a == b {
		return s, true
	}
	if a.name != b.name || len(a.args) != len(b.args) || (a.ground && b.ground) {
		return s, false
	}
	var ok bool
	for i := range a.args {
		if s, ok = Unify(a.args[i], b.args[i], s); !ok {
			return s, false
		}
	}
	return s, true
}

// Substitute applies s to t, rebuilding only the parts that change.
func Substitute(t Term, s *Substitution) Term {
	if s == nil || t.IsGround() {
		return t
	}
	switch x := t.(type) {
	case *Variable:
		w := s.Walk(x)
		if w == Term(x) {
			return x
		}
		return Substitute(w, s)
	case *Function:
		args, changed := substituteArgs(x.args, s)
		if !changed {
			return x
		}
		return NewFunction(x.name, args...)
	}
	return t
}

// SubstituteSentence applies s to every argument of the sentence.
func SubstituteSentence(x *Sentence, s *Substitution) *Sentence {
	if s == nil || x.ground {
		return x
	}
	args, changed := substituteArgs(x.args, s)
	if !changed {
		return x
	}
	return NewSentence(x.name, args...)
}

// SubstituteLiteral applies s throughout a body literal.
func SubstituteLiteral(l Literal, s *Substitution) Literal {
	if s == nil || l.IsGround() {
		return l
	}
	switch x := l.(type) {
	case *Sentence:
		return SubstituteSentence(x, s)
	case *Not:
		return &Not{Body: SubstituteLiteral(x.Body, s)}
	case *Distinct:
		return &Distinct{Left: Substitute(x.Left, s), Right: Substitute(x.Right, s)}
	case *Or:
		ds := make([]Literal, len(x.Disjuncts))
		for i, d := range x.Disjuncts {
			ds[i] = SubstituteLiteral(d, s)
		}
		return &Or{Disjuncts: ds}
	}
	return l
}

func substituteArgs(args []Term, s *Substitution) ([]Term, bool) {
	var out []Term
	for i, a := range args {
		na := Substitute(a, s)
		if na != a && out == nil {
			out = make([]Term, len(args))
			copy(out, args[:i])
		}
		if out != nil {
			out[i] = na
		}
	}
	if out == nil {
		return args, false
	}
	return out, true
}

// Rename returns a copy of r in which every variable is replaced by a fresh
// one, so that separate applications of a rule never share bindings.
func Rename(r *Rule) *Rule {
	if r.Head.ground && len(r.Body) == 0 {
		return r
	}
	fresh := make(map[*Variable]*Variable)
	rn := &Rule{Head: renameSentence(r.Head, fresh), Body: make([]Literal, len(r.Body))}
	for i, l := range r.Body {
		rn.Body[i] = renameLiteral(l, fresh)
	}
	return rn
}

func renameTerm(t Term, fresh map[*Variable]*Variable) Term {
	if t.IsGround() {
		return t
	}
	switch x := t.(type) {
	case *Variable:
		nv, ok := fresh[x]
		if !ok {
			nv = Fresh(x.name)
			fresh[x] = nv
		}
		return nv
	case *Function:
		args := make([]Term, len(x.args))
		for i, a := range x.args {
			args[i] = renameTerm(a, fresh)
		}
		return &Function{name: x.name, args: args}
	}
	return t
}

func renameSentence(x *Sentence, fresh map[*Variable]*Variable) *Sentence {
	if x.ground {
		return x
	}
	args := make([]Term, len(x.args))
	for i, a := range x.args {
		args[i] = renameTerm(a, fresh)
	}
	return &Sentence{name: x.name, args: args}
}

func renameLiteral(l Literal, fresh map[*Variable]*Variable) Literal {
	if l.IsGround() {
		return l
	}
	switch x := l.(type) {
	case *Sentence:
		return renameSentence(x, fresh)
	case *Not:
		return &Not{Body: renameLiteral(x.Body, fresh)}
	case *Distinct:
		return &Distinct{Left: renameTerm(x.Left, fresh), Right: renameTerm(x.Right, fresh)}
	case *Or:
		ds := make([]Literal, len(x.Disjuncts))
		for i, d := range x.Disjuncts {
			ds[i] = renameLiteral(d, fresh)
		}
		return &Or{Disjuncts: ds}
	}
	return l
}

// VariantKey renders a sentence with its variables numbered by first
// occurrence, so (p ?a ?b ?a) and (p ?x ?y ?x) share a key. Ground sentences
// keep their plain rendering.
func VariantKey(x *Sentence) string {
	if x.ground {
		return x.str
	}
	var b strings.Builder
	vars := make(map[*Variable]int)
	b.WriteByte('(')
	b.WriteString(x.name)
	for _, a := range x.args {
		b.WriteByte(' ')
		writeVariant(&b, a, vars)
	}
	b.WriteByte(')')
	return b.String()
}

func writeVariant(b *strings.Builder, t Term, vars map[*Variable]int) {
	switch x := t.(type) {
	case *Variable:
		n, ok := vars[x]
		if !ok {
			n = len(vars)
			vars[x] = n
		}
		b.WriteByte('?')
		b.WriteString(strconv.Itoa(n))
	case *Function:
		if x.ground {
			b.WriteString(x.str)
			return
		}
		b.WriteByte('(')
		b.WriteString(x.name)
		for _, a := range x.args {
			b.WriteByte(' ')
			writeVariant(b, a, vars)
		}
		b.WriteByte(')')
	default:
		b.WriteString(t.String())
	}
}
