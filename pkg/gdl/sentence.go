package gdl

import (
	"fmt"
	"strings"
)

// Sentence is a predicate applied to zero or more terms: the root of a fact,
// a rule head, or a query. A sentence with no arguments is a proposition.
// Ground sentences are interned.
type Sentence struct {
	name   string
	args   []Term
	id     uint32
	ground bool
	str    string
}

// NewSentence builds a sentence. Ground results are interned.
func NewSentence(name string, args ...Term) *Sentence {
	ground := true
	for _, a := range args {
		if a == nil {
			panic(fmt.Sprintf("gdl: nil argument to sentence %s", name))
		}
		if !a.IsGround() {
			ground = false
		}
	}
	if !ground {
		return &Sentence{name: name, args: append([]Term(nil), args...)}
	}

	key := groundKey('s', name, args)
	if v, ok := internTable.Load(key); ok {
		return v.(*Sentence)
	}
	s := &Sentence{name: name, args: append([]Term(nil), args...), ground: true, id: nextID()}
	s.str = renderSentence(name, s.args)
	v, _ := internTable.LoadOrStore(key, s)
	return v.(*Sentence)
}

// NewProposition returns the zero-argument sentence with the given name.
func NewProposition(name string) *Sentence {
	return NewSentence(name)
}

func (s *Sentence) Name() string   { return s.name }
func (s *Sentence) Arity() int     { return len(s.args) }
func (s *Sentence) Get(i int) Term { return s.args[i] }
func (s *Sentence) IsGround() bool { return s.ground }
func (s *Sentence) literal()       {}

// ID returns the intern handle of a ground sentence, zero otherwise.
func (s *Sentence) ID() uint32 { return s.id }

// Args returns a copy of the argument list.
func (s *Sentence) Args() []Term {
	return append([]Term(nil), s.args...)
}

// Predicate returns the name/arity pair of the sentence.
func (s *Sentence) Predicate() Predicate {
	return Predicate{Name: s.name, Arity: len(s.args)}
}

func (s *Sentence) String() string {
	if s.ground {
		return s.str
	}
	return renderSentence(s.name, s.args)
}

// Equal reports whether two sentences are structurally equal.
func (s *Sentence) Equal(o *Sentence) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil || (s.ground && o.ground) {
		return false
	}
	if s.name != o.name || len(s.args) != len(o.args) {
		return false
	}
	for i := range s.args {
		if !Equal(s.args[i], o.args[i]) {
			return false
		}
	}
	return true
}

// Predicate identifies a relation by name and arity, e.g. legal/2.
type Predicate struct {
	Name  string
	Arity int
}

// Of builds a sentence over the predicate. A mismatched argument count is a
// programming error and panics.
func (p Predicate) Of(args ...Term) *Sentence {
	if len(args) != p.Arity {
		panic(fmt.Sprintf("gdl: predicate %s applied to %d arguments", p, len(args)))
	}
	return NewSentence(p.Name, args...)
}

func (p Predicate) String() string { return fmt.Sprintf("%s/%d", p.Name, p.Arity) }

func renderSentence(name string, args []Term) string {
	if len(args) == 0 {
		return name
	}
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(name)
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}
