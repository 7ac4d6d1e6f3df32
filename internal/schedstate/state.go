// Package schedstate holds the mutable record of a partial or complete
// schedule: the execution order, recompute flags, live memory accounting,
// and the set of nodes that have produced output at least once.
//
// State is owned exclusively by its holder; branching requires Clone.
package schedstate

// State is the schedule state: the execution order so far, per-step
// recompute flags, and the live memory accounting needed to predict the
// next step's peak. All fields are exported so memaccount and search
// packages can read them directly, but
// only the memaccount package (Execute, GC, Spill) is expected to construct
// a mutated successor via Clone — every other caller treats a *State as read-only.
type State struct {
	ExecutionOrder []string
	RecomputeFlags []bool
	CurrentMemory  int64
	MemoryPeak     int64
	TotalTime      int64
	Computed       map[string]struct{}
	OutputMemory   map[string]int64
}

// New returns the empty initial state every strategy starts from.
func New() *State {
	return &State{
		Computed:     make(map[string]struct{}),
		OutputMemory: make(map[string]int64),
	}
}

// Clone returns a deep copy suitable for independent mutation at a branch
// point. Slices are copied, not aliased; maps are copied key by key.
func (s *State) Clone() *State {
	c := &State{
		CurrentMemory: s.CurrentMemory,
		MemoryPeak:    s.MemoryPeak,
		TotalTime:     s.TotalTime,
	}
	c.ExecutionOrder = append([]string(nil), s.ExecutionOrder...)
	c.RecomputeFlags = append([]bool(nil), s.RecomputeFlags...)

	c.Computed = make(map[string]struct{}, len(s.Computed))
	for k := range s.Computed {
		c.Computed[k] = struct{}{}
	}

	c.OutputMemory = make(map[string]int64, len(s.OutputMemory))
	for k, v := range s.OutputMemory {
		c.OutputMemory[k] = v
	}

	return c
}

// IsComputed reports whether n has produced its output at least once.
func (s *State) IsComputed(n string) bool {
	_, ok := s.Computed[n]
	return ok
}

// IsResident reports whether n's output currently occupies live memory.
func (s *State) IsResident(n string) bool {
	_, ok := s.OutputMemory[n]
	return ok
}

// Len returns the number of steps executed so far.
func (s *State) Len() int {
	return len(s.ExecutionOrder)
}

// Complete reports whether every name in nodeOrder has been computed at
// least once.
func (s *State) Complete(nodeOrder []string) bool {
	for _, n := range nodeOrder {
		if !s.IsComputed(n) {
			return false
		}
	}
	return true
}
