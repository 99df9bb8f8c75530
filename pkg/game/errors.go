package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIllegalMove is wrapped by IllegalMoveError.
	ErrIllegalMove = errors.New("illegal move")
	// ErrNoLegalMove is wrapped by NoLegalMoveError.
	ErrNoLegalMove = errors.New("no legal move")
	// ErrGoalDefinition is wrapped by GoalDefinitionError.
	ErrGoalDefinition = errors.New("goal not defined")
)

// IllegalMoveError reports a submitted move that is not legal for its role,
// or a joint move that does not name exactly one move per role. Coordinators
// recover from it, typically by substituting a default move.
type IllegalMoveError struct {
	Role   Role
	Move   Move
	Reason string
}

func (e *IllegalMoveError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("game: illegal move %s for role %s: %s", e.Move, e.Role, e.Reason)
	}
	return fmt.Sprintf("game: illegal move %s for role %s", e.Move, e.Role)
}

func (e *IllegalMoveError) Unwrap() error { return ErrIllegalMove }

// NoLegalMoveError reports a legal-move query that has no answer, most often
// because the state is terminal.
type NoLegalMoveError struct {
	Role     Role
	Terminal bool
}

func (e *NoLegalMoveError) Error() string {
	if e.Terminal {
		return fmt.Sprintf("game: no legal move for role %s: state is terminal", e.Role)
	}
	return fmt.Sprintf("game: no legal move for role %s", e.Role)
}

func (e *NoLegalMoveError) Unwrap() error { return ErrNoLegalMove }

// GoalDefinitionError reports a goal query that did not produce exactly one
// integer value for the role.
type GoalDefinitionError struct {
	Role   Role
	Values []string
}

func (e *GoalDefinitionError) Error() string {
	if len(e.Values) == 0 {
		return fmt.Sprintf("game: no goal value for role %s", e.Role)
	}
	return fmt.Sprintf("game: goal for role %s is not a single integer: [%s]", e.Role, strings.Join(e.Values, " "))
}

func (e *GoalDefinitionError) Unwrap() error { return ErrGoalDefinition }
