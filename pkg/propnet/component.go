package propnet

import (
	"fmt"
	"strings"

	"github.com/gitrdm/goggp/pkg/gdl"
)

// Kind is the variant of a component.
type Kind uint8

const (
	KindProposition Kind = iota
	KindAnd
	KindOr
	KindNot
	KindConstant
	KindTransition
)

func (k Kind) String() string {
	switch k {
	case KindProposition:
		return "proposition"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindNot:
		return "not"
	case KindConstant:
		return "constant"
	case KindTransition:
		return "transition"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Category classifies a proposition by the reserved predicate it carries.
// Propositions of user predicates are views.
type Category uint8

const (
	CategoryView Category = iota
	CategoryBase
	CategoryInput
	CategoryLegal
	CategoryTerminal
	CategoryGoal
	CategoryInit
	CategoryNext
)

func (c Category) String() string {
	switch c {
	case CategoryView:
		return "view"
	case CategoryBase:
		return "base"
	case CategoryInput:
		return "input"
	case CategoryLegal:
		return "legal"
	case CategoryTerminal:
		return "terminal"
	case CategoryGoal:
		return "goal"
	case CategoryInit:
		return "init"
	case CategoryNext:
		return "next"
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// observable reports whether a proposition of this category is read by the
// state machine and must survive optimization.
func (c Category) observable() bool {
	return c != CategoryView
}

func categoryOf(s *gdl.Sentence) Category {
	switch s.Name() {
	case gdl.TrueName:
		return CategoryBase
	case gdl.DoesName:
		return CategoryInput
	case gdl.LegalName:
		return CategoryLegal
	case gdl.TerminalName:
		return CategoryTerminal
	case gdl.GoalName:
		return CategoryGoal
	case gdl.InitName:
		return CategoryInit
	case gdl.NextName:
		return CategoryNext
	}
	return CategoryView
}

// Component is one node of a compiled propnet. Components are owned by their
// Propnet and never modified after compilation; truth values live in an
// Assignment.
type Component struct {
	ID   int
	Kind Kind

	// Propositions only.
	Category Category
	Sentence *gdl.Sentence

	// Constants only.
	Value bool

	Inputs  []int
	Outputs []int

	// Transitions only: the base proposition that receives this component's
	// value in the next state. It is not an edge, which keeps the graph acyclic.
	Target int
}

func (c *Component) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s", c.ID, c.Kind)
	switch c.Kind {
	case KindProposition:
		fmt.Fprintf(&b, "[%s] %s", c.Category, c.Sentence)
	case KindConstant:
		fmt.Fprintf(&b, " %t", c.Value)
	case KindTransition:
		fmt.Fprintf(&b, " -> #%d", c.Target)
	}
	if len(c.Inputs) > 0 {
		fmt.Fprintf(&b, " <- %v", c.Inputs)
	}
	return b.String()
}
