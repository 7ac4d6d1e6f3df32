package search

import (
	"github.com/kiyer-oss/dagsched/internal/graph"
	"github.com/kiyer-oss/dagsched/internal/memaccount"
	"github.com/kiyer-oss/dagsched/internal/ready"
	"github.com/kiyer-oss/dagsched/internal/schedstate"
)

// DFS implements the bounded depth-first search: opportunistic
// GC before each expansion, a ready-set built from compute-ready candidates
// falling back to recompute candidates and then a single spill retry,
// negative-impact pruning, hard rejection of over-budget candidates, and the
// two cooperative budgets below. It returns the best feasible
// complete schedule found, or an empty state if none was found within
// budget.
func DFS(p *graph.Problem, budget *Budget) *schedstate.State {
	d := &dfsSearch{p: p, budget: budget}
	d.explore(schedstate.New(), false)
	if d.best == nil {
		return schedstate.New()
	}
	return d.best
}

type dfsSearch struct {
	p      *graph.Problem
	budget *Budget
	best   *schedstate.State
}

func (d *dfsSearch) explore(s *schedstate.State, alreadySpilled bool) {
	if d.budget != nil && d.budget.Exhausted() {
		return
	}

	if s.Complete(d.p.NodeOrder()) {
		d.considerLeaf(s)
		return
	}

	s = memaccount.GC(d.p, s)

	candidates := ready.ComputeReady(d.p, s)
	if len(candidates) == 0 {
		candidates = ready.RecomputeCandidates(d.p, s)
	}
	if len(candidates) == 0 {
		return // dead-end: nothing left to run
	}

	pruned := ready.NegativeImpactPrune(candidates, s.MemoryPeak)
	fitting := fittingCandidates(d.p, pruned)

	if len(fitting) == 0 {
		if alreadySpilled {
			return // already spilled once at this branch; dead-end
		}
		victim, ok := memaccount.SelectSpillVictim(d.p, s)
		if !ok {
			return
		}
		d.explore(memaccount.Spill(s, victim), true)
		return
	}

	for _, c := range fitting {
		if d.budget != nil && d.budget.Exhausted() {
			return
		}
		next := memaccount.Execute(d.p, s, c.Name)
		if d.budget != nil {
			d.budget.Spend()
		}
		d.explore(next, false)
	}
}

func (d *dfsSearch) considerLeaf(s *schedstate.State) {
	if s.MemoryPeak > d.p.TotalMemory {
		return
	}
	if d.best == nil || betterSchedule(s, d.best) {
		d.best = s
	}
}

// betterSchedule is the lexicographic (time, peak) comparison used to
// decide whether a newly found leaf replaces the current best.
func betterSchedule(a, b *schedstate.State) bool {
	if a.TotalTime != b.TotalTime {
		return a.TotalTime < b.TotalTime
	}
	return a.MemoryPeak < b.MemoryPeak
}

func fittingCandidates(p *graph.Problem, candidates []ready.Candidate) []ready.Candidate {
	var out []ready.Candidate
	for _, c := range candidates {
		if c.PredictedPeak <= p.TotalMemory {
			out = append(out, c)
		}
	}
	return out
}
