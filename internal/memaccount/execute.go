// Package memaccount implements the pure memory-accounting functions: the
// state transition Execute, dynamic impact, freeable-input detection,
// garbage collection, and spill-victim selection. Every function
// here takes a *schedstate.State and returns a new one (or a computed
// value); none mutate their input.
package memaccount

import (
	"github.com/kiyer-oss/dagsched/internal/graph"
	"github.com/kiyer-oss/dagsched/internal/schedstate"
)

// PredictPeak computes the peak executing node n would reach on top of
// state s, without mutating s.
func PredictPeak(s *schedstate.State, n graph.Node) int64 {
	return maxInt64(s.MemoryPeak, n.Peak+s.CurrentMemory)
}

// FreeableInputs returns the inputs of n that become freeable once n is
// computed: every one of the input's consumers (per p.Dependencies) is
// already in the hypothetical post-state's computed set (s.Computed plus n
// itself). Inputs with no Dependencies entry are treated as freeable.
func FreeableInputs(p *graph.Problem, s *schedstate.State, n graph.Node) []string {
	var freeable []string
	for _, in := range n.Inputs {
		if isFreeableAfter(p, s, n.Name, in) {
			freeable = append(freeable, in)
		}
	}
	return freeable
}

func isFreeableAfter(p *graph.Problem, s *schedstate.State, justComputed, input string) bool {
	consumers := p.Dependencies[input]
	if len(consumers) == 0 {
		return true
	}
	for consumer := range consumers {
		if consumer == justComputed {
			continue
		}
		if !s.IsComputed(consumer) {
			return false
		}
	}
	return true
}

// DynamicImpact is output_mem(n) minus the sum of output_memory sizes of
// n's freeable inputs that are currently resident, clamped to the platform
// int32 range at the interface boundary.
func DynamicImpact(p *graph.Problem, s *schedstate.State, n graph.Node) int64 {
	freed := freedSum(p, s, n)
	impact := n.OutputMem - freed
	return clampInt32(impact)
}

func freedSum(p *graph.Problem, s *schedstate.State, n graph.Node) int64 {
	var freed int64
	for _, in := range FreeableInputs(p, s, n) {
		if size, ok := s.OutputMemory[in]; ok {
			freed += size
		}
	}
	return freed
}

// Execute applies the state transition for running node n on state s,
// returning the resulting state. s is not mutated.
func Execute(p *graph.Problem, s *schedstate.State, nodeName string) *schedstate.State {
	n := p.Nodes[nodeName]

	predicted := PredictPeak(s, n)
	freed := freedSum(p, s, n)

	next := s.Clone()
	for _, in := range FreeableInputs(p, s, n) {
		delete(next.OutputMemory, in)
	}

	newCurrent := next.CurrentMemory + n.OutputMem - freed
	if newCurrent < 0 {
		newCurrent = 0
	}
	next.CurrentMemory = newCurrent

	if predicted > next.MemoryPeak {
		next.MemoryPeak = predicted
	}

	wasComputed := next.IsComputed(nodeName)
	next.OutputMemory[nodeName] = n.OutputMem
	next.RecomputeFlags = append(next.RecomputeFlags, wasComputed)
	next.TotalTime += n.TimeCost
	next.ExecutionOrder = append(next.ExecutionOrder, nodeName)
	next.Computed[nodeName] = struct{}{}

	return next
}

// GC prunes output_memory of any resident entry whose every consumer has
// already been computed (it has no remaining purpose in memory). It is
// cost-free: it never touches total_time, only current_memory. GC returns a
// new state; s is not mutated.
func GC(p *graph.Problem, s *schedstate.State) *schedstate.State {
	var dead []string
	for name := range s.OutputMemory {
		consumers := p.Dependencies[name]
		if len(consumers) == 0 {
			// A graph output has no consumer to wait for; GC never touches
			// it (it is the point of having computed it).
			continue
		}
		allDone := true
		for consumer := range consumers {
			if !s.IsComputed(consumer) {
				allDone = false
				break
			}
		}
		if allDone {
			dead = append(dead, name)
		}
	}
	if len(dead) == 0 {
		return s
	}

	next := s.Clone()
	for _, name := range dead {
		if size, ok := next.OutputMemory[name]; ok {
			next.CurrentMemory -= size
			delete(next.OutputMemory, name)
		}
	}
	if next.CurrentMemory < 0 {
		next.CurrentMemory = 0
	}
	return next
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func clampInt32(v int64) int64 {
	const (
		maxI32 = int64(1)<<31 - 1
		minI32 = -(int64(1) << 31)
	)
	if v > maxI32 {
		return maxI32
	}
	if v < minI32 {
		return minI32
	}
	return v
}
