package search

import (
	"github.com/kiyer-oss/dagsched/internal/graph"
	"github.com/kiyer-oss/dagsched/internal/memaccount"
	"github.com/kiyer-oss/dagsched/internal/ready"
	"github.com/kiyer-oss/dagsched/internal/schedstate"
)

// Greedy repeatedly chooses the compute-ready candidate minimizing
// (predicted_peak, time_cost) lexicographically, rejecting any candidate
// that would exceed p.TotalMemory. It stops when no candidate fits or
// every node has been computed.
func Greedy(p *graph.Problem, budget *Budget) *schedstate.State {
	s := schedstate.New()
	for !s.Complete(p.NodeOrder()) {
		if budget != nil && budget.Exhausted() {
			return s
		}
		candidates := ready.ComputeReady(p, s)
		choice, ok := firstFitting(p, candidates)
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

// firstFitting returns the first candidate (candidates are already sorted
// by the standard tie-break) whose predicted peak fits the budget.
func firstFitting(p *graph.Problem, candidates []ready.Candidate) (ready.Candidate, bool) {
	for _, c := range candidates {
		if c.PredictedPeak <= p.TotalMemory {
			return c, true
		}
	}
	return ready.Candidate{}, false
}
