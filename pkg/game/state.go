package game

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/gitrdm/goggp/pkg/gdl"
)

// State is the set of ground sentences true in one game position, normally
// of the form (true X). A State is never modified after construction, so it
// may be shared freely between goroutines and search branches.
type State struct {
	facts []*gdl.Sentence // sorted by intern id, no duplicates
	set   map[*gdl.Sentence]struct{}
}

// NewState builds a state from ground sentences. Duplicates collapse and
// order is irrelevant. A non-ground sentence is a programming error and panics.
func NewState(sentences ...*gdl.Sentence) *State {
	set := make(map[*gdl.Sentence]struct{}, len(sentences))
	facts := make([]*gdl.Sentence, 0, len(sentences))
	for _, s := range sentences {
		if !s.IsGround() {
			panic(fmt.Sprintf("game: state sentence %s is not ground", s))
		}
		if _, dup := set[s]; dup {
			continue
		}
		set[s] = struct{}{}
		facts = append(facts, s)
	}
	slices.SortFunc(facts, func(a, b *gdl.Sentence) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	return &State{facts: facts, set: set}
}

// Contains reports whether the sentence is true in the state.
func (s *State) Contains(x *gdl.Sentence) bool {
	_, ok := s.set[x]
	return ok
}

// Len returns the number of sentences.
func (s *State) Len() int { return len(s.facts) }

// Contents returns the sentences ordered by intern id. The slice is a copy.
func (s *State) Contents() []*gdl.Sentence {
	return append([]*gdl.Sentence(nil), s.facts...)
}

// Each calls fn for every sentence without copying.
func (s *State) Each(fn func(*gdl.Sentence)) {
	for _, f := range s.facts {
		fn(f)
	}
}

// Equal reports value equality of the sentence sets.
func (s *State) Equal(o *State) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil || len(s.facts) != len(o.facts) {
		return false
	}
	for i := range s.facts {
		if s.facts[i] != o.facts[i] {
			return false
		}
	}
	return true
}

// Strings returns the rendered sentences in lexical order, for display and diffs.
func (s *State) Strings() []string {
	out := make([]string, len(s.facts))
	for i, f := range s.facts {
		out[i] = f.String()
	}
	sort.Strings(out)
	return out
}

func (s *State) String() string {
	return "{" + strings.Join(s.Strings(), " ") + "}"
}
