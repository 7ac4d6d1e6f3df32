package search

import (
	"github.com/kiyer-oss/dagsched/internal/graph"
	"github.com/kiyer-oss/dagsched/internal/memaccount"
	"github.com/kiyer-oss/dagsched/internal/ready"
	"github.com/kiyer-oss/dagsched/internal/schedstate"
)

// Heuristic behaves like Greedy, except that when any fitting compute-ready
// candidate has a non-positive dynamic impact, it prefers the one with the
// smallest peak over the standard (predicted_peak, time_cost) ordering.
func Heuristic(p *graph.Problem, budget *Budget) *schedstate.State {
	s := schedstate.New()
	for !s.Complete(p.NodeOrder()) {
		if budget != nil && budget.Exhausted() {
			return s
		}
		candidates := ready.ComputeReady(p, s)

		choice, ok := bestNonPositiveImpact(p, candidates)
		if !ok {
			choice, ok = firstFitting(p, candidates)
		}
		if !ok {
			return s
		}

		s = memaccount.Execute(p, s, choice.Name)
		if budget != nil {
			budget.Spend()
		}
	}
	return s
}

func bestNonPositiveImpact(p *graph.Problem, candidates []ready.Candidate) (ready.Candidate, bool) {
	var best ready.Candidate
	found := false
	for _, c := range candidates {
		if c.PredictedPeak > p.TotalMemory {
			continue
		}
		if c.DynamicImpact > 0 {
			continue
		}
		if !found || c.Node.Peak < best.Node.Peak {
			best = c
			found = true
		}
	}
	return best, found
}
