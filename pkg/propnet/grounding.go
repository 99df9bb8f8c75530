package propnet

import (
	"strconv"
	"strings"

	"github.com/gitrdm/goggp/pkg/gdl"
)

// flatRule is a rule whose body holds no disjunction: positive sentences,
// negated sentences and distinct tests.
type flatRule struct {
	head *gdl.Sentence
	pos  []*gdl.Sentence
	neg  []*gdl.Sentence
	dist []*gdl.Distinct
}

// groundRule is one ground instance of a flatRule. Distinct tests have been
// decided and negations of impossible sentences dropped.
type groundRule struct {
	head *gdl.Sentence
	pos  []*gdl.Sentence
	neg  []*gdl.Sentence
}

var reservedArity = map[string]int{
	gdl.RoleName:     1,
	gdl.InitName:     1,
	gdl.TrueName:     1,
	gdl.NextName:     1,
	gdl.BaseName:     1,
	gdl.LegalName:    2,
	gdl.DoesName:     2,
	gdl.GoalName:     2,
	gdl.InputName:    2,
	gdl.TerminalName: 0,
}

// flatten expands every rule body into disjunctive normal form and checks
// that the result can be grounded.
func flatten(db *gdl.Database) ([]flatRule, error) {
	var out []flatRule
	for _, r := range db.Rules() {
		name := r.Head.Name()
		if name == gdl.TrueName || name == gdl.DoesName {
			return nil, gdl.Malformed(name, "%s cannot be the head of a rule", name)
		}
		if err := checkReserved(r); err != nil {
			return nil, err
		}
		bodies, err := dnf(r.Body, name)
		if err != nil {
			return nil, err
		}
		for _, body := range bodies {
			fr := flatRule{head: r.Head}
			for _, l := range body {
				switch x := l.(type) {
				case *gdl.Sentence:
					fr.pos = append(fr.pos, x)
				case *gdl.Not:
					fr.neg = append(fr.neg, x.Body.(*gdl.Sentence))
				case *gdl.Distinct:
					fr.dist = append(fr.dist, x)
				}
			}
			if err := fr.checkSafe(); err != nil {
				return nil, err
			}
			out = append(out, fr)
		}
	}
	return out, nil
}

func checkReserved(r *gdl.Rule) error {
	var err error
	check := func(s *gdl.Sentence, _ bool) {
		if want, ok := reservedArity[s.Name()]; ok && err == nil && s.Arity() != want {
			err = gdl.Malformed(s.Name(), "reserved predicate needs arity %d, got %s", want, s)
		}
	}
	check(r.Head, true)
	for _, l := range r.Body {
		gdl.Sentences(l, check)
	}
	return err
}

// dnf returns the conjunctions whose disjunction is equivalent to body.
func dnf(body []gdl.Literal, pred string) ([][]gdl.Literal, error) {
	out := [][]gdl.Literal{nil}
	for _, l := range body {
		alts, err := alternatives(l, pred)
		if err != nil {
			return nil, err
		}
		next := make([][]gdl.Literal, 0, len(out)*len(alts))
		for _, prefix := range out {
			for _, alt := range alts {
				b := make([]gdl.Literal, 0, len(prefix)+len(alt))
				b = append(append(b, prefix...), alt...)
				next = append(next, b)
			}
		}
		out = next
	}
	return out, nil
}

func alternatives(l gdl.Literal, pred string) ([][]gdl.Literal, error) {
	switch x := l.(type) {
	case *gdl.Or:
		var out [][]gdl.Literal
		for _, d := range x.Disjuncts {
			alts, err := alternatives(d, pred)
			if err != nil {
				return nil, err
			}
			out = append(out, alts...)
		}
		return out, nil
	case *gdl.Not:
		if _, ok := x.Body.(*gdl.Sentence); !ok {
			return nil, gdl.Malformed(pred, "cannot compile negation of %s", x.Body)
		}
	}
	return [][]gdl.Literal{{l}}, nil
}

// checkSafe requires every variable of the head, of a negation or of a
// distinct test to occur in a positive body sentence.
func (fr *flatRule) checkSafe() error {
	bound := make(map[*gdl.Variable]bool)
	for _, p := range fr.pos {
		for i := 0; i < p.Arity(); i++ {
			termVars(p.Get(i), bound)
		}
	}
	free := make(map[*gdl.Variable]bool)
	for i := 0; i < fr.head.Arity(); i++ {
		termVars(fr.head.Get(i), free)
	}
	for _, n := range fr.neg {
		for i := 0; i < n.Arity(); i++ {
			termVars(n.Get(i), free)
		}
	}
	for _, d := range fr.dist {
		termVars(d.Left, free)
		termVars(d.Right, free)
	}
	for v := range free {
		if !bound[v] {
			return gdl.Malformed(fr.head.Name(), "unsafe rule: %s is not bound by a positive literal", v)
		}
	}
	return nil
}

func termVars(t gdl.Term, out map[*gdl.Variable]bool) {
	switch x := t.(type) {
	case *gdl.Variable:
		out[x] = true
	case *gdl.Function:
		for i := 0; i < x.Arity(); i++ {
			termVars(x.Get(i), out)
		}
	}
}

// instances calls fn with every substitution that grounds the rule against
// known sentences and satisfies its distinct tests. Negations are ignored.
func (fr *flatRule) instances(known *sentenceSet, fn func(*gdl.Substitution)) {
	var walk func(i int, s *gdl.Substitution)
	walk = func(i int, s *gdl.Substitution) {
		if i == len(fr.pos) {
			for _, d := range fr.dist {
				if gdl.Equal(gdl.Substitute(d.Left, s), gdl.Substitute(d.Right, s)) {
					return
				}
			}
			fn(s)
			return
		}
		goal := gdl.SubstituteSentence(fr.pos[i], s)
		if goal.IsGround() {
			if known.has(goal) {
				walk(i+1, s)
			}
			return
		}
		for _, f := range known.byName[goal.Name()] {
			if next, ok := gdl.UnifySentence(goal, f, s); ok {
				walk(i+1, next)
			}
		}
	}
	walk(0, nil)
}

// sentenceSet is an insertion-ordered set of ground sentences.
type sentenceSet struct {
	order  []*gdl.Sentence
	byName map[string][]*gdl.Sentence
	set    map[*gdl.Sentence]struct{}
}

func newSentenceSet() *sentenceSet {
	return &sentenceSet{
		byName: make(map[string][]*gdl.Sentence),
		set:    make(map[*gdl.Sentence]struct{}),
	}
}

func (s *sentenceSet) has(x *gdl.Sentence) bool {
	_, ok := s.set[x]
	return ok
}

func (s *sentenceSet) add(x *gdl.Sentence) bool {
	if s.has(x) {
		return false
	}
	s.set[x] = struct{}{}
	s.order = append(s.order, x)
	s.byName[x.Name()] = append(s.byName[x.Name()], x)
	return true
}

func (s *sentenceSet) len() int { return len(s.order) }

// possibleSentences over-approximates every ground sentence that can hold in
// a reachable state: negations are assumed satisfiable, true follows init and
// next, and does follows legal.
func possibleSentences(rules []flatRule, limit int) (*sentenceSet, error) {
	known := newSentenceSet()
	derive := func(h *gdl.Sentence) bool {
		if !known.add(h) {
			return false
		}
		switch h.Name() {
		case gdl.InitName, gdl.NextName, gdl.BaseName:
			known.add(gdl.NewSentence(gdl.TrueName, h.Get(0)))
		case gdl.LegalName, gdl.InputName:
			known.add(gdl.NewSentence(gdl.DoesName, h.Get(0), h.Get(1)))
		}
		return true
	}
	for changed := true; changed; {
		changed = false
		for i := range rules {
			r := &rules[i]
			r.instances(known, func(s *gdl.Substitution) {
				if derive(gdl.SubstituteSentence(r.head, s)) {
					changed = true
				}
			})
			if known.len() > limit {
				return nil, gdl.Malformed(r.head.Name(), "grounding exceeded %d sentences", limit)
			}
		}
	}
	return known, nil
}

// groundInstances enumerates the distinct ground instances of every rule
// over the possible sentences.
func groundInstances(rules []flatRule, known *sentenceSet) []groundRule {
	var out []groundRule
	seen := make(map[string]struct{})
	var key strings.Builder
	for i := range rules {
		r := &rules[i]
		r.instances(known, func(s *gdl.Substitution) {
			g := groundRule{head: gdl.SubstituteSentence(r.head, s)}
			for _, p := range r.pos {
				g.pos = append(g.pos, gdl.SubstituteSentence(p, s))
			}
			for _, n := range r.neg {
				n = gdl.SubstituteSentence(n, s)
				if known.has(n) {
					g.neg = append(g.neg, n)
				}
			}
			key.Reset()
			writeIDs(&key, g.head)
			key.WriteByte('+')
			writeIDs(&key, g.pos...)
			key.WriteByte('-')
			writeIDs(&key, g.neg...)
			if _, dup := seen[key.String()]; dup {
				return
			}
			seen[key.String()] = struct{}{}
			out = append(out, g)
		})
	}
	return out
}

func writeIDs(b *strings.Builder, xs ...*gdl.Sentence) {
	for _, x := range xs {
		b.WriteString(strconv.FormatUint(uint64(x.ID()), 36))
		b.WriteByte(',')
	}
}
