package schedstate

import (
	"fmt"

	"github.com/kiyer-oss/dagsched/internal/graph"
)

// CheckInvariants asserts I1, the static half of I3, and I6 against a state
// produced for problem p, and that every executed name is a node of p. I4
// and I5 are CheckComplete and CheckFeasible; I2 concerns the moment before
// each step and is not checked here. It is a diagnostic used only by tests: a correct
// implementation never violates these, so production code never calls it.
func CheckInvariants(p *graph.Problem, s *State) error {
	if err := checkMemoryAccounting(s); err != nil {
		return err
	}
	if err := checkPeakMonotonic(s); err != nil {
		return err
	}
	if len(s.ExecutionOrder) != len(s.RecomputeFlags) {
		return fmt.Errorf("I6 violated: execution_order has %d entries, recompute_flags has %d",
			len(s.ExecutionOrder), len(s.RecomputeFlags))
	}
	for _, name := range s.ExecutionOrder {
		if _, ok := p.Node(name); !ok {
			return fmt.Errorf("execution_order references unknown node %q", name)
		}
	}
	return nil
}

// checkMemoryAccounting asserts I1: current_memory equals the sum of
// output_memory values, and both are non-negative.
func checkMemoryAccounting(s *State) error {
	if s.CurrentMemory < 0 {
		return fmt.Errorf("I1 violated: current_memory is negative (%d)", s.CurrentMemory)
	}
	var sum int64
	for name, v := range s.OutputMemory {
		if v < 0 {
			return fmt.Errorf("I1 violated: output_memory[%q] is negative (%d)", name, v)
		}
		sum += v
	}
	if sum != s.CurrentMemory {
		return fmt.Errorf("I1 violated: current_memory=%d but sum(output_memory)=%d", s.CurrentMemory, sum)
	}
	return nil
}

// checkPeakMonotonic asserts I3's static half: memory_peak is at least the
// final current_memory. Monotonicity across the run is not checked here: it
// needs the successive prefix states, which a caller has to compare itself.
func checkPeakMonotonic(s *State) error {
	if s.MemoryPeak < s.CurrentMemory {
		return fmt.Errorf("I3 violated: memory_peak=%d < current_memory=%d", s.MemoryPeak, s.CurrentMemory)
	}
	return nil
}

// CheckComplete asserts I4: every node in the problem appears in computed.
func CheckComplete(p *graph.Problem, s *State) error {
	for _, name := range p.NodeOrder() {
		if !s.IsComputed(name) {
			return fmt.Errorf("I4 violated: node %q never computed", name)
		}
	}
	return nil
}

// CheckFeasible asserts I5: a completed state's memory_peak does not exceed
// the problem's budget.
func CheckFeasible(p *graph.Problem, s *State) error {
	if s.MemoryPeak > p.TotalMemory {
		return fmt.Errorf("I5 violated: memory_peak=%d exceeds total_memory=%d", s.MemoryPeak, p.TotalMemory)
	}
	return nil
}

// TotalTimeMatches asserts P4: total_time equals the sum of time_cost over
// execution_order, recomputations included.
func TotalTimeMatches(p *graph.Problem, s *State) error {
	var sum int64
	for _, name := range s.ExecutionOrder {
		n, ok := p.Node(name)
		if !ok {
			return fmt.Errorf("execution_order references unknown node %q", name)
		}
		sum += n.TimeCost
	}
	if sum != s.TotalTime {
		return fmt.Errorf("P4 violated: total_time=%d but sum(time_cost)=%d", s.TotalTime, sum)
	}
	return nil
}
