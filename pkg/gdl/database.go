package gdl

import (
	"fmt"
	"sort"
)

// Reserved predicate names of the game description language.
const (
	RoleName     = "role"
	InitName     = "init"
	TrueName     = "true"
	NextName     = "next"
	LegalName    = "legal"
	DoesName     = "does"
	GoalName     = "goal"
	TerminalName = "terminal"
	BaseName     = "base"
	InputName    = "input"
)

// Database is the immutable rule set of one game, indexed by head predicate
// name. It is built once and shared read-only by every query and by the
// propnet compiler.
type Database struct {
	rules   []*Rule
	byName  map[string][]*Rule
	names   []string // head predicate names in first-seen order
	roles   []Term
	dynamic map[string]bool // depends, transitively, on true or does
}

// NewDatabase indexes the rules. The slice is copied; rules are shared.
func NewDatabase(rules []*Rule) *Database {
	db := &Database{
		rules:  append([]*Rule(nil), rules...),
		byName: make(map[string][]*Rule),
	}
	for _, r := range db.rules {
		name := r.Head.name
		if _, ok := db.byName[name]; !ok {
			db.names = append(db.names, name)
		}
		db.byName[name] = append(db.byName[name], r)
		if name == RoleName && r.IsFact() && r.Head.Arity() == 1 {
			db.roles = append(db.roles, r.Head.Get(0))
		}
	}
	db.dynamic = db.computeDynamic()
	return db
}

// Rules returns every rule in declaration order.
func (db *Database) Rules() []*Rule {
	return append([]*Rule(nil), db.rules...)
}

// RulesFor returns the rules whose head uses the named predicate. The
// returned slice must not be modified.
func (db *Database) RulesFor(name string) []*Rule {
	return db.byName[name]
}

// HeadNames returns the head predicate names in first-seen order.
func (db *Database) HeadNames() []string {
	return append([]string(nil), db.names...)
}

// Predicates returns every predicate used in a head or body, in first-seen
// order. A name used with two arities appears twice.
func (db *Database) Predicates() []Predicate {
	seen := make(map[Predicate]bool)
	var out []Predicate
	add := func(s *Sentence, _ bool) {
		p := s.Predicate()
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, r := range db.rules {
		add(r.Head, true)
		for _, l := range r.Body {
			Sentences(l, add)
		}
	}
	return out
}

// Roles returns the arguments of the (role ?r) facts in declaration order.
func (db *Database) Roles() []Term {
	return append([]Term(nil), db.roles...)
}

// Len returns the number of rules and facts.
func (db *Database) Len() int { return len(db.rules) }

// IsStatic reports whether the predicate's truth never depends on the
// current state or moves, i.e. it reaches neither true nor does.
func (db *Database) IsStatic(name string) bool {
	return !db.dynamic[name]
}

func (db *Database) computeDynamic() map[string]bool {
	dynamic := map[string]bool{TrueName: true, DoesName: true}
	for changed := true; changed; {
		changed = false
		for _, r := range db.rules {
			if dynamic[r.Head.name] {
				continue
			}
			for _, l := range r.Body {
				hit := false
				Sentences(l, func(s *Sentence, _ bool) {
					if dynamic[s.name] {
						hit = true
					}
				})
				if hit {
					dynamic[r.Head.name] = true
					changed = true
					break
				}
			}
		}
	}
	return dynamic
}

// CheckArity verifies that every predicate is used with one arity across all
// heads and body literals.
func (db *Database) CheckArity() error {
	arity := make(map[string]int)
	var err error
	check := func(s *Sentence) {
		if err != nil {
			return
		}
		if a, ok := arity[s.name]; ok && a != len(s.args) {
			err = Malformed(s.name, "used with arity %d and %d", a, len(s.args))
			return
		}
		arity[s.name] = len(s.args)
	}
	for _, r := range db.rules {
		check(r.Head)
		for _, l := range r.Body {
			Sentences(l, func(s *Sentence, _ bool) { check(s) })
		}
	}
	return err
}

// CheckStratified verifies that no predicate depends on itself through a
// negation.
func (db *Database) CheckStratified() error {
	type edge struct {
		to       string
		negative bool
	}
	graph := make(map[string][]edge)
	nodes := make(map[string]bool)
	for _, r := range db.rules {
		head := r.Head.name
		nodes[head] = true
		for _, l := range r.Body {
			Sentences(l, func(s *Sentence, positive bool) {
				nodes[s.name] = true
				graph[head] = append(graph[head], edge{to: s.name, negative: !positive})
			})
		}
	}

	names := make([]string, 0, len(nodes))
	for n := range nodes {
		names = append(names, n)
	}
	sort.Strings(names)

	// Tarjan's strongly connected components.
	index := make(map[string]int)
	low := make(map[string]int)
	onStack := make(map[string]bool)
	comp := make(map[string]int)
	var stack []string
	next, ncomp := 0, 0
	var visit func(string)
	visit = func(v string) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true
		for _, e := range graph[v] {
			if _, seen := index[e.to]; !seen {
				visit(e.to)
				low[v] = min(low[v], low[e.to])
			} else if onStack[e.to] {
				low[v] = min(low[v], index[e.to])
			}
		}
		if low[v] == index[v] {
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp[w] = ncomp
				if w == v {
					break
				}
			}
			ncomp++
		}
	}
	for _, n := range names {
		if _, seen := index[n]; !seen {
			visit(n)
		}
	}

	for _, n := range names {
		for _, e := range graph[n] {
			if e.negative && comp[n] == comp[e.to] {
				return Malformed(n, "recursion through negation of %s", e.to)
			}
		}
	}
	return nil
}

func (db *Database) String() string {
	return fmt.Sprintf("Database{rules: %d, predicates: %d, roles: %d}", len(db.rules), len(db.names), len(db.roles))
}
