// Package gdl provides the logic-term data model for declaratively specified games.
//
// A game description is a set of facts and implication rules written over
// terms. This package defines those terms and the immutable rule database
// built from them:
//   - Constant: an atomic symbol such as xplayer or 100
//   - Variable: a logic variable such as ?x, bound through unification
//   - Function: a compound term such as (cell 1 1 b)
//   - Sentence: the root of a fact or query, a predicate name applied to terms
//   - Literal: a body element of a rule (Sentence, Not, Distinct, Or)
//
// Ground terms and ground sentences are interned in a process-wide table, so
// two structurally equal ground values are the same pointer. Hot loops can
// therefore compare and hash them by identity. Terms that contain variables
// are never interned; use Equal to compare them structurally.
//
// All values produced by this package are immutable and safe for concurrent use.
package gdl

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Term is any value in the game-description universe.
type Term interface {
	// Name returns the symbol of a constant or function, or the name of a variable.
	Name() string

	// Arity returns the number of arguments; zero for constants and variables.
	Arity() int

	// Get returns the i-th argument. It panics if i is out of range.
	Get(i int) Term

	// IsGround reports whether the term contains no variables.
	IsGround() bool

	// String returns the canonical KIF rendering of the term.
	String() string

	isTerm()
}

// interned values share one table; the key prefix keeps the kinds apart.
var (
	internTable sync.Map // string -> *Constant | *Function | *Sentence
	internSeq   atomic.Uint32
	varSeq      atomic.Uint64
)

func nextID() uint32 {
	return internSeq.Add(1)
}

// Constant is an atomic symbol. Constants are always interned.
type Constant struct {
	name string
	id   uint32
}

// NewConstant returns the interned constant with the given name.
func NewConstant(name string) *Constant {
	key := "c" + name
	if v, ok := internTable.Load(key); ok {
		return v.(*Constant)
	}
	v, _ := internTable.LoadOrStore(key, &Constant{name: name, id: nextID()})
	return v.(*Constant)
}

func (c *Constant) Name() string   { return c.name }
func (c *Constant) Arity() int     { return 0 }
func (c *Constant) IsGround() bool { return true }
func (c *Constant) String() string { return c.name }
func (c *Constant) isTerm()        {}

// ID returns the stable intern handle of the constant.
func (c *Constant) ID() uint32 { return c.id }

// Get panics: constants have no arguments.
func (c *Constant) Get(i int) Term {
	panic(fmt.Sprintf("gdl: constant %s has no argument %d", c.name, i))
}

// Variable is a logic variable. Each call to Fresh yields a distinct variable;
// two variables are the same only if they are the same pointer.
type Variable struct {
	name string
	id   uint64
}

// Fresh creates a new variable. The name is for rendering only.
func Fresh(name string) *Variable {
	return &Variable{name: name, id: varSeq.Add(1)}
}

func (v *Variable) Name() string   { return v.name }
func (v *Variable) Arity() int     { return 0 }
func (v *Variable) IsGround() bool { return false }
func (v *Variable) String() string { return "?" + v.name }
func (v *Variable) isTerm()        {}

// Get panics: variables have no arguments.
func (v *Variable) Get(i int) Term {
	panic(fmt.Sprintf("gdl: variable ?%s has no argument %d", v.name, i))
}

// Function is a compound term: a function symbol applied to one or more terms.
type Function struct {
	name   string
	args   []Term
	id     uint32 // zero unless ground
	ground bool
	str    string // cached for ground functions
}

// NewFunction builds a compound term. Ground results are interned.
// It panics when called without arguments; use NewConstant for atoms.
func NewFunction(name string, args ...Term) *Function {
	if len(args) == 0 {
		panic(fmt.Sprintf("gdl: function %s needs at least one argument", name))
	}
	ground := true
	for _, a := range args {
		if a == nil {
			panic(fmt.Sprintf("gdl: nil argument to function %s", name))
		}
		if !a.IsGround() {
			ground = false
		}
	}
	if !ground {
		return &Function{name: name, args: append([]Term(nil), args...)}
	}

	key := groundKey('f', name, args)
	if v, ok := internTable.Load(key); ok {
		return v.(*Function)
	}
	f := &Function{name: name, args: append([]Term(nil), args...), ground: true, id: nextID()}
	f.str = renderCompound(name, f.args)
	v, _ := internTable.LoadOrStore(key, f)
	return v.(*Function)
}

func (f *Function) Name() string   { return f.name }
func (f *Function) Arity() int     { return len(f.args) }
func (f *Function) Get(i int) Term { return f.args[i] }
func (f *Function) IsGround() bool { return f.ground }
func (f *Function) isTerm()        {}

// ID returns the intern handle of a ground function, zero otherwise.
func (f *Function) ID() uint32 { return f.id }

func (f *Function) String() string {
	if f.ground {
		return f.str
	}
	return renderCompound(f.name, f.args)
}

// Functor declares a function symbol with a fixed arity.
type Functor struct {
	Name  string
	Arity int
}

// Apply builds the function term. A mismatched argument count is a
// programming error and panics.
func (fn Functor) Apply(args ...Term) *Function {
	if len(args) != fn.Arity {
		panic(fmt.Sprintf("gdl: functor %s/%d applied to %d arguments", fn.Name, fn.Arity, len(args)))
	}
	return NewFunction(fn.Name, args...)
}

func (fn Functor) String() string { return fmt.Sprintf("%s/%d", fn.Name, fn.Arity) }

// Equal reports whether two terms are structurally equal.
func Equal(a, b Term) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	// distinct interned values are never equal
	if a.IsGround() && b.IsGround() {
		return false
	}
	switch x := a.(type) {
	case *Variable:
		return false
	case *Function:
		y, ok := b.(*Function)
		if !ok || x.name != y.name || len(x.args) != len(y.args) {
			return false
		}
		for i := range x.args {
			if !Equal(x.args[i], y.args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// internID returns the intern handle of a ground term.
func internID(t Term) uint32 {
	switch x := t.(type) {
	case *Constant:
		return x.id
	case *Function:
		return x.id
	}
	panic(fmt.Sprintf("gdl: %s is not an interned term", t))
}

// groundKey builds the intern key from the argument handles; it never renders strings.
func groundKey(kind byte, name string, args []Term) string {
	buf := make([]byte, 0, 2+len(name)+4*len(args))
	buf = append(buf, kind)
	buf = append(buf, name...)
	buf = append(buf, 0)
	for _, a := range args {
		buf = binary.LittleEndian.AppendUint32(buf, internID(a))
	}
	return string(buf)
}

func renderCompound(name string, args []Term) string {
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
