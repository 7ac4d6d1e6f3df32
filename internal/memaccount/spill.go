package memaccount

import (
	"sort"

	"github.com/kiyer-oss/dagsched/internal/graph"
	"github.com/kiyer-oss/dagsched/internal/schedstate"
)

// SelectSpillVictim picks the resident output to evict when every ready
// candidate would breach the memory budget. It ranks candidates with
// remaining consumers by size / max(1, time_cost_of_producer) — a
// bang-per-buck eviction ratio: the candidate that frees the most memory
// per unit of recompute cost goes first. Equal ratios go to the larger
// output, then to the smaller name. A name with no known producer is costed
// at 1. There is no separate largest-output fallback: every resident output
// is either ranked this way or treated as free below.
//
// A resident output with no remaining consumer is returned as the first
// choice, since evicting it costs nothing. GC drops most such outputs
// earlier, but it keeps graph outputs (nodes with no consumers at all), so
// those can still appear here.
func SelectSpillVictim(p *graph.Problem, s *schedstate.State) (string, bool) {
	if len(s.OutputMemory) == 0 {
		return "", false
	}

	type candidate struct {
		name  string
		ratio float64
		size  int64
	}

	var free []string
	var withConsumers []candidate

	for name, size := range s.OutputMemory {
		if !hasRemainingConsumer(p, s, name) {
			free = append(free, name)
			continue
		}
		producerTime := producerTimeCost(p, name)
		cost := int64(1)
		if producerTime > 1 {
			cost = producerTime
		}
		withConsumers = append(withConsumers, candidate{
			name:  name,
			ratio: float64(size) / float64(cost),
			size:  size,
		})
	}

	if len(free) > 0 {
		sort.Strings(free)
		return free[0], true
	}

	if len(withConsumers) == 0 {
		return "", false
	}

	sort.Slice(withConsumers, func(i, j int) bool {
		if withConsumers[i].ratio != withConsumers[j].ratio {
			return withConsumers[i].ratio > withConsumers[j].ratio
		}
		if withConsumers[i].size != withConsumers[j].size {
			return withConsumers[i].size > withConsumers[j].size
		}
		return withConsumers[i].name < withConsumers[j].name
	})

	return withConsumers[0].name, true
}

func hasRemainingConsumer(p *graph.Problem, s *schedstate.State, name string) bool {
	for consumer := range p.Dependencies[name] {
		if !s.IsComputed(consumer) {
			return true
		}
	}
	return false
}

func producerTimeCost(p *graph.Problem, name string) int64 {
	if n, ok := p.Node(name); ok {
		return n.TimeCost
	}
	return 1
}

// Spill evicts name from s's output memory, returning a new state. The
// caller is expected to have chosen name via SelectSpillVictim.
func Spill(s *schedstate.State, name string) *schedstate.State {
	size, ok := s.OutputMemory[name]
	if !ok {
		return s
	}
	next := s.Clone()
	delete(next.OutputMemory, name)
	next.CurrentMemory -= size
	if next.CurrentMemory < 0 {
		next.CurrentMemory = 0
	}
	return next
}
