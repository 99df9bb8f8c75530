// Package game defines the values exchanged between a state machine and its
// callers: roles, moves, joint moves and immutable states.
package game

import (
	"fmt"

	"github.com/gitrdm/goggp/pkg/gdl"
)

// Role names a player. Roles compare by identity of the interned constant,
// so Role is usable as a map key.
type Role struct {
	name *gdl.Constant
}

// NewRole returns the role with the given name.
func NewRole(name string) Role {
	return Role{name: gdl.NewConstant(name)}
}

// RoleOf converts a role term from a game description. Role terms must be constants.
func RoleOf(t gdl.Term) (Role, error) {
	c, ok := t.(*gdl.Constant)
	if !ok {
		return Role{}, fmt.Errorf("game: role %s is not a constant", t)
	}
	return Role{name: c}, nil
}

// Name returns the role name.
func (r Role) Name() string {
	if r.name == nil {
		return ""
	}
	return r.name.Name()
}

// Term returns the role as a term, for building queries.
func (r Role) Term() gdl.Term { return r.name }

// IsZero reports whether r is the zero Role.
func (r Role) IsZero() bool { return r.name == nil }

func (r Role) String() string { return r.Name() }

// Move is the action one role takes in one turn, e.g. (mark 1 1) or noop.
// Moves wrap interned ground terms, so equal moves compare equal with ==.
type Move struct {
	term gdl.Term
}

// NewMove wraps a ground term. Non-ground contents are a programming error
// and panic.
func NewMove(t gdl.Term) Move {
	if t == nil || !t.IsGround() {
		panic(fmt.Sprintf("game: move %v is not ground", t))
	}
	return Move{term: t}
}

// Contents returns the move term.
func (m Move) Contents() gdl.Term { return m.term }

// IsZero reports whether m is the zero Move.
func (m Move) IsZero() bool { return m.term == nil }

func (m Move) String() string {
	if m.term == nil {
		return "<none>"
	}
	return m.term.String()
}

// JointMove holds one move per role for a single turn.
type JointMove map[Role]Move
