package propnet

import (
	"slices"
	"strconv"
	"strings"
)

// builder creates gates with constant folding and structural hashing:
// a gate with the same kind and inputs as an existing one is reused.
type builder struct {
	g         *graph
	strash    map[string]int
	constants [2]int
}

func newBuilder() *builder {
	return &builder{g: &graph{}, strash: make(map[string]int), constants: [2]int{-1, -1}}
}

func (b *builder) constant(v bool) int {
	i := 0
	if v {
		i = 1
	}
	if b.constants[i] < 0 {
		b.constants[i] = b.g.add(&Component{Kind: KindConstant, Value: v})
	}
	return b.constants[i]
}

func (b *builder) constValue(id int) (value, ok bool) {
	c := b.g.comps[id]
	return c.Value, c.Kind == KindConstant
}

func (b *builder) not(in int) int {
	if v, ok := b.constValue(in); ok {
		return b.constant(!v)
	}
	if c := b.g.comps[in]; c.Kind == KindNot {
		return c.Inputs[0]
	}
	return b.gate(KindNot, []int{in})
}

func (b *builder) and(ins []int) int { return b.nary(KindAnd, ins, true) }

func (b *builder) or(ins []int) int { return b.nary(KindOr, ins, false) }

// nary folds an And (identity true) or an Or (identity false).
func (b *builder) nary(kind Kind, ins []int, identity bool) int {
	set := make([]int, 0, len(ins))
	for _, in := range ins {
		if v, ok := b.constValue(in); ok {
			if v == identity {
				continue
			}
			return b.constant(!identity)
		}
		set = append(set, in)
	}
	slices.Sort(set)
	set = slices.Compact(set)
	for _, in := range set {
		if c := b.g.comps[in]; c.Kind == KindNot {
			if _, found := slices.BinarySearch(set, c.Inputs[0]); found {
				return b.constant(!identity)
			}
		}
	}
	switch len(set) {
	case 0:
		return b.constant(identity)
	case 1:
		return set[0]
	}
	return b.gate(kind, set)
}

func (b *builder) gate(kind Kind, ins []int) int {
	var key strings.Builder
	key.WriteByte(byte('0' + kind))
	for _, in := range ins {
		key.WriteByte(':')
		key.WriteString(strconv.Itoa(in))
	}
	if id, ok := b.strash[key.String()]; ok {
		return id
	}
	id := b.g.add(&Component{Kind: kind, Inputs: ins})
	b.strash[key.String()] = id
	return id
}

// optimize rebuilds raw in topological order through a folding builder.
// View propositions collapse into their drivers; observable propositions
// are kept as named taps on the folded logic.
func optimize(raw *graph, order []int) *graph {
	b := newBuilder()
	ref := make([]int, len(raw.comps))
	var transitions []*Component
	for _, id := range order {
		c := raw.comps[id]
		switch c.Kind {
		case KindProposition:
			if c.Category == CategoryBase || c.Category == CategoryInput {
				ref[id] = b.g.add(&Component{Kind: KindProposition, Category: c.Category, Sentence: c.Sentence})
				continue
			}
			driver := ref[c.Inputs[0]]
			if c.Category.observable() {
				b.g.add(&Component{Kind: KindProposition, Category: c.Category, Sentence: c.Sentence, Inputs: []int{driver}})
			}
			ref[id] = driver
		case KindAnd:
			ref[id] = b.and(remap(c.Inputs, ref))
		case KindOr:
			ref[id] = b.or(remap(c.Inputs, ref))
		case KindNot:
			ref[id] = b.not(ref[c.Inputs[0]])
		case KindConstant:
			ref[id] = b.constant(c.Value)
		case KindTransition:
			transitions = append(transitions, c)
		}
	}
	for _, t := range transitions {
		in := ref[t.Inputs[0]]
		if v, ok := b.constValue(in); ok && !v {
			continue
		}
		b.g.add(&Component{Kind: KindTransition, Inputs: []int{in}, Target: ref[t.Target]})
	}
	return prune(b.g)
}

func remap(ids, ref []int) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = ref[id]
	}
	return out
}

// prune drops components with no path to a proposition the state machine
// reads or a transition, then renumbers the survivors. The input is in
// topological order and so is the result.
func prune(g *graph) *graph {
	live := make([]bool, len(g.comps))
	var stack []int
	for _, c := range g.comps {
		if c.Kind == KindTransition || (c.Kind == KindProposition && c.Category.observable()) {
			live[c.ID] = true
			stack = append(stack, c.ID)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, in := range g.comps[id].Inputs {
			if !live[in] {
				live[in] = true
				stack = append(stack, in)
			}
		}
	}

	renum := make([]int, len(g.comps))
	out := &graph{comps: make([]*Component, 0, len(g.comps))}
	for _, c := range g.comps {
		if !live[c.ID] {
			renum[c.ID] = -1
			continue
		}
		renum[c.ID] = len(out.comps)
		c.ID = len(out.comps)
		out.comps = append(out.comps, c)
	}
	for _, c := range out.comps {
		for i, in := range c.Inputs {
			c.Inputs[i] = renum[in]
		}
		if c.Kind == KindTransition {
			c.Target = renum[c.Target]
		}
	}
	out.link()
	return out
}
