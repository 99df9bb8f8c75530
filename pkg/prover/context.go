package prover

import "github.com/gitrdm/goggp/pkg/gdl"

// Context is a transient set of ground facts layered over the rule database
// for one query, typically the current state plus the moves of this turn.
// A Context is read-only once built; build one per query or per goroutine.
type Context struct {
	byName map[string][]*gdl.Sentence
	seen   map[*gdl.Sentence]struct{}
	// onlyTransient is true when every fact is a true or does sentence, which
	// lets context-independent predicates share tables across queries.
	onlyTransient bool
}

// NewContext builds a context from ground sentences; duplicates collapse.
func NewContext(sentences ...*gdl.Sentence) *Context {
	c := &Context{
		byName:        make(map[string][]*gdl.Sentence),
		seen:          make(map[*gdl.Sentence]struct{}, len(sentences)),
		onlyTransient: true,
	}
	c.add(sentences)
	return c
}

// With returns a new context holding the facts of c plus the extra sentences.
func (c *Context) With(extra ...*gdl.Sentence) *Context {
	n := NewContext()
	if c != nil {
		for _, list := range c.byName {
			n.add(list)
		}
	}
	n.add(extra)
	return n
}

func (c *Context) add(sentences []*gdl.Sentence) {
	for _, s := range sentences {
		if _, dup := c.seen[s]; dup {
			continue
		}
		c.seen[s] = struct{}{}
		c.byName[s.Name()] = append(c.byName[s.Name()], s)
		if s.Name() != gdl.TrueName && s.Name() != gdl.DoesName {
			c.onlyTransient = false
		}
	}
}

// Len returns the number of facts.
func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	return len(c.seen)
}

// Contains reports whether the ground sentence is one of the facts.
func (c *Context) Contains(s *gdl.Sentence) bool {
	if c == nil {
		return false
	}
	_, ok := c.seen[s]
	return ok
}

func (c *Context) facts(name string) []*gdl.Sentence {
	if c == nil {
		return nil
	}
	return c.byName[name]
}

func (c *Context) transientOnly() bool {
	return c == nil || c.onlyTransient
}
