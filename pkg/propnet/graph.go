package propnet

import (
	"github.com/gitrdm/goggp/pkg/gdl"
)

// graph is the mutable component list used while compiling.
type graph struct {
	comps []*Component
}

func (g *graph) add(c *Component) int {
	c.ID = len(g.comps)
	if c.Kind != KindTransition {
		c.Target = -1
	}
	g.comps = append(g.comps, c)
	return c.ID
}

// link rebuilds every Outputs list from the Inputs lists.
func (g *graph) link() {
	for _, c := range g.comps {
		c.Outputs = c.Outputs[:0]
	}
	for _, c := range g.comps {
		for _, in := range c.Inputs {
			g.comps[in].Outputs = append(g.comps[in].Outputs, c.ID)
		}
	}
}

// buildGraph wires one proposition per possible sentence. A derived
// proposition is driven by an Or over one And per ground rule instance;
// next propositions feed their base proposition through a Transition.
func buildGraph(known *sentenceSet, instances []groundRule) *graph {
	g := &graph{}
	props := make(map[*gdl.Sentence]int, known.len())
	for _, s := range known.order {
		props[s] = g.add(&Component{Kind: KindProposition, Category: categoryOf(s), Sentence: s})
	}

	byHead := make(map[*gdl.Sentence][]groundRule)
	for _, in := range instances {
		byHead[in.head] = append(byHead[in.head], in)
	}

	constants := [2]int{-1, -1}
	constant := func(v bool) int {
		i := 0
		if v {
			i = 1
		}
		if constants[i] < 0 {
			constants[i] = g.add(&Component{Kind: KindConstant, Value: v})
		}
		return constants[i]
	}

	for _, s := range known.order {
		id := props[s]
		if cat := g.comps[id].Category; cat == CategoryBase || cat == CategoryInput {
			continue
		}
		var disjuncts []int
		for _, in := range byHead[s] {
			conj := make([]int, 0, len(in.pos)+len(in.neg))
			for _, p := range in.pos {
				conj = append(conj, props[p])
			}
			for _, n := range in.neg {
				conj = append(conj, g.add(&Component{Kind: KindNot, Inputs: []int{props[n]}}))
			}
			if len(conj) == 0 {
				conj = append(conj, constant(true))
			}
			disjuncts = append(disjuncts, g.add(&Component{Kind: KindAnd, Inputs: conj}))
		}
		driver := constant(false)
		if len(disjuncts) > 0 {
			driver = g.add(&Component{Kind: KindOr, Inputs: disjuncts})
		}
		g.comps[id].Inputs = []int{driver}
	}

	for _, s := range known.order {
		if s.Name() != gdl.NextName {
			continue
		}
		base := props[gdl.NewSentence(gdl.TrueName, s.Get(0))]
		g.add(&Component{Kind: KindTransition, Inputs: []int{props[s]}, Target: base})
	}
	g.link()
	return g
}

// topoSort orders components so that every component follows its inputs.
// Transitions have no outgoing edges, so a cycle means the rules are
// recursive in a way that survives grounding.
func (g *graph) topoSort() ([]int, error) {
	indeg := make([]int, len(g.comps))
	var queue []int
	for _, c := range g.comps {
		indeg[c.ID] = len(c.Inputs)
		if indeg[c.ID] == 0 {
			queue = append(queue, c.ID)
		}
	}
	order := make([]int, 0, len(g.comps))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, out := range g.comps[id].Outputs {
			indeg[out]--
			if indeg[out] == 0 {
				queue = append(queue, out)
			}
		}
	}
	if len(order) == len(g.comps) {
		return order, nil
	}
	for id, d := range indeg {
		if c := g.comps[id]; d > 0 && c.Kind == KindProposition {
			return nil, gdl.Malformed(c.Sentence.Name(), "cyclic dependency involving %s", c.Sentence)
		}
	}
	return nil, gdl.Malformed("", "cyclic dependency among %d components", len(g.comps)-len(order))
}
