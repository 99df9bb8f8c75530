package gdl

import (
	"strings"
	"unicode"
)

// Parse reads a KIF game description into rules. Symbols are folded to
// lower case, ';' starts a comment that runs to the end of the line, and
// variables are written ?name. Variables are scoped to one top-level form.
func Parse(src string) ([]*Rule, error) {
	forms, err := readForms(src)
	if err != nil {
		return nil, err
	}
	rules := make([]*Rule, 0, len(forms))
	for _, f := range forms {
		p := &formParser{vars: make(map[string]*Variable)}
		r, err := p.rule(f)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// ParseDatabase parses a game description and indexes it.
func ParseDatabase(src string) (*Database, error) {
	rules, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return NewDatabase(rules), nil
}

// ParseSentence parses one sentence, e.g. "(legal ?r ?m)" or "terminal".
func ParseSentence(src string) (*Sentence, error) {
	f, err := readOne(src)
	if err != nil {
		return nil, err
	}
	p := &formParser{vars: make(map[string]*Variable)}
	return p.sentence(f)
}

// ParseTerm parses one term, e.g. "(mark 1 1)" or "noop".
func ParseTerm(src string) (Term, error) {
	f, err := readOne(src)
	if err != nil {
		return nil, err
	}
	p := &formParser{vars: make(map[string]*Variable)}
	return p.term(f)
}

// MustParseSentence is ParseSentence for literals known to be valid; it panics on error.
func MustParseSentence(src string) *Sentence {
	s, err := ParseSentence(src)
	if err != nil {
		panic(err)
	}
	return s
}

// MustParseTerm is ParseTerm for literals known to be valid; it panics on error.
func MustParseTerm(src string) Term {
	t, err := ParseTerm(src)
	if err != nil {
		panic(err)
	}
	return t
}

// sexpr is either an atom or a list.
type sexpr struct {
	atom   string
	list   []sexpr
	line   int
	isList bool
}

func readOne(src string) (sexpr, error) {
	forms, err := readForms(src)
	if err != nil {
		return sexpr{}, err
	}
	if len(forms) != 1 {
		return sexpr{}, &ParseError{Line: 1, Msg: "expected exactly one form"}
	}
	return forms[0], nil
}

func readForms(src string) ([]sexpr, error) {
	r := &reader{src: src, line: 1}
	var forms []sexpr
	for {
		r.skipSpace()
		if r.pos >= len(r.src) {
			return forms, nil
		}
		f, err := r.read()
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
}

type reader struct {
	src  string
	pos  int
	line int
}

func (r *reader) skipSpace() {
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		switch {
		case c == '\n':
			r.line++
			r.pos++
		case c == ';':
			for r.pos < len(r.src) && r.src[r.pos] != '\n' {
				r.pos++
			}
		case unicode.IsSpace(rune(c)):
			r.pos++
		default:
			return
		}
	}
}

func (r *reader) read() (sexpr, error) {
	r.skipSpace()
	if r.pos >= len(r.src) {
		return sexpr{}, &ParseError{Line: r.line, Msg: "unexpected end of input"}
	}
	switch r.src[r.pos] {
	case '(':
		start := r.line
		r.pos++
		list := []sexpr{}
		for {
			r.skipSpace()
			if r.pos >= len(r.src) {
				return sexpr{}, &ParseError{Line: start, Msg: "unclosed '('"}
			}
			if r.src[r.pos] == ')' {
				r.pos++
				return sexpr{list: list, line: start, isList: true}, nil
			}
			e, err := r.read()
			if err != nil {
				return sexpr{}, err
			}
			list = append(list, e)
		}
	case ')':
		return sexpr{}, &ParseError{Line: r.line, Msg: "unexpected ')'"}
	}
	start := r.pos
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		if c == '(' || c == ')' || c == ';' || unicode.IsSpace(rune(c)) {
			break
		}
		r.pos++
	}
	return sexpr{atom: strings.ToLower(r.src[start:r.pos]), line: r.line}, nil
}

type formParser struct {
	vars map[string]*Variable
}

func (p *formParser) rule(f sexpr) (*Rule, error) {
	if f.isList && len(f.list) > 0 && !f.list[0].isList && f.list[0].atom == "<=" {
		if len(f.list) < 2 {
			return nil, &ParseError{Line: f.line, Msg: "rule without head"}
		}
		head, err := p.sentence(f.list[1])
		if err != nil {
			return nil, err
		}
		body := make([]Literal, 0, len(f.list)-2)
		for _, e := range f.list[2:] {
			l, err := p.literal(e)
			if err != nil {
				return nil, err
			}
			body = append(body, l)
		}
		return NewRule(head, body...), nil
	}
	head, err := p.sentence(f)
	if err != nil {
		return nil, err
	}
	return NewFact(head), nil
}

func (p *formParser) literal(f sexpr) (Literal, error) {
	if f.isList && len(f.list) > 0 && !f.list[0].isList {
		switch f.list[0].atom {
		case "not":
			if len(f.list) != 2 {
				return nil, &ParseError{Line: f.line, Msg: "not takes one literal"}
			}
			body, err := p.literal(f.list[1])
			if err != nil {
				return nil, err
			}
			return NewNot(body), nil
		case "distinct":
			if len(f.list) != 3 {
				return nil, &ParseError{Line: f.line, Msg: "distinct takes two terms"}
			}
			a, err := p.term(f.list[1])
			if err != nil {
				return nil, err
			}
			b, err := p.term(f.list[2])
			if err != nil {
				return nil, err
			}
			return NewDistinct(a, b), nil
		case "or":
			ds := make([]Literal, 0, len(f.list)-1)
			for _, e := range f.list[1:] {
				d, err := p.literal(e)
				if err != nil {
					return nil, err
				}
				ds = append(ds, d)
			}
			return NewOr(ds...), nil
		}
	}
	return p.sentence(f)
}

func (p *formParser) sentence(f sexpr) (*Sentence, error) {
	if !f.isList {
		if strings.HasPrefix(f.atom, "?") {
			return nil, &ParseError{Line: f.line, Msg: "variable " + f.atom + " used as a sentence"}
		}
		return NewProposition(f.atom), nil
	}
	if len(f.list) == 0 {
		return nil, &ParseError{Line: f.line, Msg: "empty sentence"}
	}
	name := f.list[0]
	if name.isList || strings.HasPrefix(name.atom, "?") {
		return nil, &ParseError{Line: f.line, Msg: "sentence must start with a predicate name"}
	}
	args := make([]Term, 0, len(f.list)-1)
	for _, e := range f.list[1:] {
		t, err := p.term(e)
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}
	return NewSentence(name.atom, args...), nil
}

func (p *formParser) term(f sexpr) (Term, error) {
	if !f.isList {
		if strings.HasPrefix(f.atom, "?") {
			if len(f.atom) == 1 {
				return nil, &ParseError{Line: f.line, Msg: "variable without a name"}
			}
			name := f.atom[1:]
			v, ok := p.vars[name]
			if !ok {
				v = Fresh(name)
				p.vars[name] = v
			}
			return v, nil
		}
		return NewConstant(f.atom), nil
	}
	if len(f.list) < 2 {
		return nil, &ParseError{Line: f.line, Msg: "function term needs a name and at least one argument"}
	}
	name := f.list[0]
	if name.isList || strings.HasPrefix(name.atom, "?") {
		return nil, &ParseError{Line: f.line, Msg: "function term must start with a symbol"}
	}
	args := make([]Term, 0, len(f.list)-1)
	for _, e := range f.list[1:] {
		t, err := p.term(e)
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}
	return NewFunction(name.atom, args...), nil
}
