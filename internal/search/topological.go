package search

import (
	"github.com/kiyer-oss/dagsched/internal/graph"
	"github.com/kiyer-oss/dagsched/internal/memaccount"
	"github.com/kiyer-oss/dagsched/internal/schedstate"
)

// Topological is the diagnostic-only baseline from original_source/'s
// src/baseline.cpp: a plain Kahn's-algorithm topological order, run through
// the real memory-accounting transition rather than the original's naive
// "never free" bookkeeping. It is never reported as a feasible result on
// its own; the driver uses it only to describe how far a memory-unaware
// pass would have peaked when every memory-aware strategy fails.
func Topological(p *graph.Problem) *schedstate.State {
	order := kahnOrder(p)
	s := schedstate.New()
	for _, name := range order {
		s = memaccount.Execute(p, s, name)
	}
	return s
}

func kahnOrder(p *graph.Problem) []string {
	inDegree := make(map[string]int, len(p.Nodes))
	for _, name := range p.NodeOrder() {
		inDegree[name] = len(p.Nodes[name].Inputs)
	}

	queue := make([]string, 0, len(p.Nodes))
	for _, name := range p.NodeOrder() {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	order := make([]string, 0, len(p.Nodes))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		for _, succ := range p.Successors[cur] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}
	return order
}
