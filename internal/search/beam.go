package search

import (
	"sort"

	"github.com/kiyer-oss/dagsched/internal/graph"
	"github.com/kiyer-oss/dagsched/internal/memaccount"
	"github.com/kiyer-oss/dagsched/internal/ready"
	"github.com/kiyer-oss/dagsched/internal/schedstate"
)

// Beam implements the beam search. At most beamWidth states
// are kept alive at a time; each round every beam member is extended by its
// top beamWidth feasible compute-ready candidates (sorted by
// (predicted_peak, time_cost)), the aggregate successor set is sorted by
// (feasibility first, total_time, memory_peak) and truncated back to
// beamWidth. It terminates when a round produces no successor or the budget
// is exhausted, returning the best completed state observed, or the best
// partial state in the final beam if none completed.
func Beam(p *graph.Problem, budget *Budget, beamWidth int) *schedstate.State {
	if beamWidth < 1 {
		beamWidth = 1
	}

	beam := []*schedstate.State{schedstate.New()}
	var bestComplete *schedstate.State

	for {
		if budget != nil && budget.Exhausted() {
			break
		}

		var successors []*schedstate.State
		anyIncomplete := false

		for _, s := range beam {
			if s.Complete(p.NodeOrder()) {
				if feasible(p, s) && (bestComplete == nil || betterSchedule(s, bestComplete)) {
					bestComplete = s
				}
				continue
			}
			anyIncomplete = true

			candidates := ready.ComputeReady(p, s)
			candidates = fittingCandidates(p, candidates)
			sortByPeakThenTime(candidates)
			if len(candidates) > beamWidth {
				candidates = candidates[:beamWidth]
			}
			for _, c := range candidates {
				if budget != nil && budget.Exhausted() {
					break
				}
				next := memaccount.Execute(p, s, c.Name)
				if budget != nil {
					budget.Spend()
				}
				successors = append(successors, next)
			}
		}

		if !anyIncomplete {
			break
		}
		if len(successors) == 0 {
			// Every incomplete member stalled (nothing fit the remaining
			// budget this round); keep the beam as-is so bestPartial below
			// still has the real stalled states to choose from, instead of
			// falling back to an empty schedule.
			break
		}

		sortSuccessors(p, successors)
		if len(successors) > beamWidth {
			successors = successors[:beamWidth]
		}
		beam = successors
	}

	if bestComplete != nil {
		return bestComplete
	}
	return bestPartial(beam)
}

func feasible(p *graph.Problem, s *schedstate.State) bool {
	return s.MemoryPeak <= p.TotalMemory
}

func sortByPeakThenTime(candidates []ready.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].PredictedPeak != candidates[j].PredictedPeak {
			return candidates[i].PredictedPeak < candidates[j].PredictedPeak
		}
		return candidates[i].Node.TimeCost < candidates[j].Node.TimeCost
	})
}

// sortSuccessors orders the aggregate successor pool by feasibility first,
// then total_time, then memory_peak.
func sortSuccessors(p *graph.Problem, states []*schedstate.State) {
	sort.Slice(states, func(i, j int) bool {
		fi, fj := feasible(p, states[i]), feasible(p, states[j])
		if fi != fj {
			return fi
		}
		if states[i].TotalTime != states[j].TotalTime {
			return states[i].TotalTime < states[j].TotalTime
		}
		return states[i].MemoryPeak < states[j].MemoryPeak
	})
}

func bestPartial(beam []*schedstate.State) *schedstate.State {
	if len(beam) == 0 {
		return schedstate.New()
	}
	best := beam[0]
	for _, s := range beam[1:] {
		if s.Len() > best.Len() {
			best = s
		}
	}
	return best
}
