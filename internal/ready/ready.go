// Package ready enumerates the two distinct notions of "ready" —
// compute-ready and recompute candidates — and implements the
// negative-impact pruning rule.
package ready

import (
	"sort"

	"github.com/kiyer-oss/dagsched/internal/graph"
	"github.com/kiyer-oss/dagsched/internal/memaccount"
	"github.com/kiyer-oss/dagsched/internal/schedstate"
)

// Kind tags whether a Candidate is a first-time execution or a
// recomputation of an already-produced node.
type Kind int

const (
	KindCompute Kind = iota
	KindRecompute
)

// Candidate is one schedulable node at a given state, carrying everything
// the search strategies need to rank it without recomputing from scratch.
type Candidate struct {
	Name          string
	Kind          Kind
	Node          graph.Node
	PredictedPeak int64
	DynamicImpact int64
}

// ComputeReady enumerates nodes not yet in s.Computed whose every input is
// currently resident (output_memory.contains(input)).
func ComputeReady(p *graph.Problem, s *schedstate.State) []Candidate {
	var out []Candidate
	for _, name := range p.NodeOrder() {
		if s.IsComputed(name) {
			continue
		}
		n := p.Nodes[name]
		if !allInputsResident(s, n) {
			continue
		}
		out = append(out, newCandidate(p, s, n, KindCompute))
	}
	sortCandidates(out)
	return out
}

// RecomputeCandidates enumerates nodes whose output is not currently
// resident, whose every input is resident, and that still have at least one
// unsatisfied consumer (the output is still needed by something).
func RecomputeCandidates(p *graph.Problem, s *schedstate.State) []Candidate {
	var out []Candidate
	for _, name := range p.NodeOrder() {
		if s.IsResident(name) {
			continue
		}
		n := p.Nodes[name]
		if !allInputsResident(s, n) {
			continue
		}
		if !stillNeeded(p, s, name) {
			continue
		}
		out = append(out, newCandidate(p, s, n, KindRecompute))
	}
	sortCandidates(out)
	return out
}

func allInputsResident(s *schedstate.State, n graph.Node) bool {
	for _, in := range n.Inputs {
		if !s.IsResident(in) {
			return false
		}
	}
	return true
}

func stillNeeded(p *graph.Problem, s *schedstate.State, name string) bool {
	consumers := p.Dependencies[name]
	if len(consumers) == 0 {
		// A graph output is always "needed" if it hasn't been computed at
		// all yet; if it has been computed and then dropped, nothing
		// downstream is waiting, so it is not a recompute candidate.
		return !s.IsComputed(name)
	}
	for consumer := range consumers {
		if !s.IsComputed(consumer) {
			return true
		}
	}
	return false
}

func newCandidate(p *graph.Problem, s *schedstate.State, n graph.Node, kind Kind) Candidate {
	return Candidate{
		Name:          n.Name,
		Kind:          kind,
		Node:          n,
		PredictedPeak: memaccount.PredictPeak(s, n),
		DynamicImpact: memaccount.DynamicImpact(p, s, n),
	}
}

// sortCandidates applies the stable total order:
// (predicted_peak asc, time_cost asc, name asc).
func sortCandidates(c []Candidate) {
	sort.Slice(c, func(i, j int) bool {
		if c[i].PredictedPeak != c[j].PredictedPeak {
			return c[i].PredictedPeak < c[j].PredictedPeak
		}
		if c[i].Node.TimeCost != c[j].Node.TimeCost {
			return c[i].Node.TimeCost < c[j].Node.TimeCost
		}
		return c[i].Name < c[j].Name
	})
}

// NegativeImpactPrune implements §4.2: find the negative-or-zero-impact
// candidate N with the smallest peak. If none exists, candidates is
// returned unchanged. Otherwise, if executing N would not raise
// memoryPeak, only N is returned (execute it immediately); else N plus
// every candidate with a strictly smaller peak is retained, falling back
// to the original list if that would be empty.
func NegativeImpactPrune(candidates []Candidate, memoryPeak int64) []Candidate {
	n, found := smallestNegativeImpact(candidates)
	if !found {
		return candidates
	}

	if n.PredictedPeak <= memoryPeak {
		return []Candidate{n}
	}

	var pruned []Candidate
	for _, c := range candidates {
		if c.Name == n.Name || c.Node.Peak < n.Node.Peak {
			pruned = append(pruned, c)
		}
	}
	if len(pruned) == 0 {
		return candidates
	}
	return pruned
}

func smallestNegativeImpact(candidates []Candidate) (Candidate, bool) {
	var best Candidate
	found := false
	for _, c := range candidates {
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
