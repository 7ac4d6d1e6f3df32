package search

import (
	"github.com/kiyer-oss/dagsched/internal/graph"
	"github.com/kiyer-oss/dagsched/internal/memaccount"
	"github.com/kiyer-oss/dagsched/internal/ready"
	"github.com/kiyer-oss/dagsched/internal/schedstate"
)

// DPGreedy implements the bounded-lookahead DP ("dp_greedy") strategy: at
// each step, the top branchFactor compute-ready candidates
// (by (predicted_peak, time_cost)) are each tried, continuing greedily for
// lookaheadDepth-1 further steps; the path scoring best on (memory_peak,
// total_time) among feasible paths wins, and its first candidate is
// committed. If no lookahead path stays feasible, the top-ranked immediate
// candidate is committed instead.
func DPGreedy(p *graph.Problem, budget *Budget, branchFactor, lookaheadDepth int) *schedstate.State {
	if branchFactor < 1 {
		branchFactor = 1
	}
	if lookaheadDepth < 1 {
		lookaheadDepth = 1
	}

	s := schedstate.New()
	for !s.Complete(p.NodeOrder()) {
		if budget != nil && budget.Exhausted() {
			return s
		}

		candidates := ready.ComputeReady(p, s)
		if len(candidates) == 0 {
			return s
		}
		sortByPeakThenTime(candidates)
		if len(candidates) > branchFactor {
			candidates = candidates[:branchFactor]
		}

		firstChoice, ok := bestLookaheadFirstStep(p, s, budget, candidates, lookaheadDepth)
		if !ok {
			firstChoice = candidates[0].Name
		}

		s = memaccount.Execute(p, s, firstChoice)
		if budget != nil {
			budget.Spend()
		}
	}
	return s
}

func bestLookaheadFirstStep(p *graph.Problem, s *schedstate.State, budget *Budget, candidates []ready.Candidate, lookaheadDepth int) (string, bool) {
	var bestFirst string
	var bestPeak, bestTime int64
	found := false

	for _, c := range candidates {
		if budget != nil && budget.Exhausted() {
			break
		}
		next := memaccount.Execute(p, s, c.Name)
		if budget != nil {
			budget.Spend()
		}
		path := greedyContinue(p, next, budget, lookaheadDepth-1)
		if !feasible(p, path) {
			continue
		}
		if !found || path.MemoryPeak < bestPeak || (path.MemoryPeak == bestPeak && path.TotalTime < bestTime) {
			bestFirst = c.Name
			bestPeak = path.MemoryPeak
			bestTime = path.TotalTime
			found = true
		}
	}

	return bestFirst, found
}

// greedyContinue advances s greedily for up to n further steps, stopping
// early if the problem completes, no candidate remains, or the budget is
// exhausted.
func greedyContinue(p *graph.Problem, s *schedstate.State, budget *Budget, n int) *schedstate.State {
	cur := s
	for i := 0; i < n; i++ {
		if cur.Complete(p.NodeOrder()) {
			break
		}
		if budget != nil && budget.Exhausted() {
			break
		}
		candidates := ready.ComputeReady(p, cur)
		choice, ok := firstFitting(p, candidates)
		if !ok {
			break
		}
		cur = memaccount.Execute(p, cur, choice.Name)
		if budget != nil {
			budget.Spend()
		}
	}
	return cur
}
