package gdl

import (
	"errors"
	"fmt"
)

// ErrMalformedRules is the sentinel wrapped by every MalformedRulesError.
var ErrMalformedRules = errors.New("malformed rules")

// MalformedRulesError reports a game description that cannot be used: an
// inconsistent predicate arity, a forbidden dependency cycle, an unsafe rule,
// or a query that exceeded the recursion ceiling. It is fatal for match setup.
type MalformedRulesError struct {
	Predicate string // offending predicate, if known
	Reason    string
}

func (e *MalformedRulesError) Error() string {
	if e.Predicate == "" {
		return "gdl: malformed rules: " + e.Reason
	}
	return fmt.Sprintf("gdl: malformed rules: %s: %s", e.Predicate, e.Reason)
}

func (e *MalformedRulesError) Unwrap() error { return ErrMalformedRules }

// Malformed builds a MalformedRulesError with a formatted reason.
func Malformed(predicate string, format string, args ...any) error {
	return &MalformedRulesError{Predicate: predicate, Reason: fmt.Sprintf(format, args...)}
}

// ParseError reports a syntax error in a KIF source text.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gdl: parse error at line %d: %s", e.Line, e.Msg)
}
