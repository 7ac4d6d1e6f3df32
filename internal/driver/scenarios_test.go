package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiyer-oss/dagsched/internal/graph"
	"github.com/kiyer-oss/dagsched/internal/schedstate"
	"github.com/kiyer-oss/dagsched/internal/search"
)

func mustGraph(t *testing.T, totalMemory int64, specs []graph.Spec) *graph.Problem {
	t.Helper()
	p, err := graph.New(totalMemory, specs)
	require.NoError(t, err)
	return p
}

// TestLinearChainAmpleMemory covers scenario 1: A->B->C->D, each
// run_mem=0 output_mem=10 time=1, budget 100.
func TestLinearChainAmpleMemory(t *testing.T) {
	p := mustGraph(t, 100, []graph.Spec{
		{Name: "A", OutputMem: 10, TimeCost: 1},
		{Name: "B", OutputMem: 10, TimeCost: 1, Inputs: []string{"A"}},
		{Name: "C", OutputMem: 10, TimeCost: 1, Inputs: []string{"B"}},
		{Name: "D", OutputMem: 10, TimeCost: 1, Inputs: []string{"C"}},
	})

	s, _, err := Schedule(context.Background(), p, Options{})
	require.NoError(t, err)
	require.NoError(t, schedstate.CheckInvariants(p, s))
	assert.Equal(t, []string{"A", "B", "C", "D"}, s.ExecutionOrder)
	assert.Equal(t, int64(4), s.TotalTime)
	assert.Equal(t, int64(10), s.MemoryPeak)
}

// TestDiamondSharedConsumer covers scenario 2: A feeds B and C, D consumes
// both; budget 30 forces A, B, C all live at once before D frees them.
func TestDiamondSharedConsumer(t *testing.T) {
	p := mustGraph(t, 30, []graph.Spec{
		{Name: "A", OutputMem: 10, TimeCost: 1},
		{Name: "B", OutputMem: 10, TimeCost: 1, Inputs: []string{"A"}},
		{Name: "C", OutputMem: 10, TimeCost: 1, Inputs: []string{"A"}},
		{Name: "D", OutputMem: 10, TimeCost: 1, Inputs: []string{"B", "C"}},
	})

	s, _, err := Schedule(context.Background(), p, Options{})
	require.NoError(t, err)
	require.NoError(t, schedstate.CheckInvariants(p, s))
	assert.Equal(t, "A", s.ExecutionOrder[0])
	assert.Equal(t, "D", s.ExecutionOrder[3])
	assert.Equal(t, int64(4), s.TotalTime)
	assert.Equal(t, int64(30), s.MemoryPeak)
}

// TestForcesRecomputation covers scenario 3: A is needed early (by B) and
// late (by the final merge F), with a mandatory memory-heavy node BIG
// in between that depends only on B. At budget 30 there is no slack to keep
// A resident across BIG, so the only feasible path spills A once BIG needs
// the room and recomputes it before F.
func TestForcesRecomputation(t *testing.T) {
	p := mustGraph(t, 30, []graph.Spec{
		{Name: "A", OutputMem: 10, TimeCost: 1},
		{Name: "B", OutputMem: 5, TimeCost: 1, Inputs: []string{"A"}},
		{Name: "BIG", OutputMem: 20, TimeCost: 1, Inputs: []string{"B"}},
		{Name: "F", TimeCost: 1, Inputs: []string{"A", "BIG"}},
	})

	s, _, err := Schedule(context.Background(), p, Options{})
	require.NoError(t, err)
	require.NoError(t, schedstate.CheckInvariants(p, s))
	assert.LessOrEqual(t, s.MemoryPeak, int64(30))
	assert.True(t, s.Complete(p.NodeOrder()))

	recomputes := 0
	for i, name := range s.ExecutionOrder {
		if name == "A" && s.RecomputeFlags[i] {
			recomputes++
		}
	}
	assert.Equal(t, 1, recomputes, "A must be recomputed exactly once")
}

// TestNegativeImpactPruningWins covers scenario 4 at the driver level (see
// internal/ready's TestNegativeImpactPruningWins for the unit-level check of
// the exact peak/impact figures): once "Base" is resident,
// X is Base's sole consumer and frees it for a deeply negative dynamic
// impact, while Y is independent and positive-impact; X must run before Y.
func TestNegativeImpactPruningWins(t *testing.T) {
	p := mustGraph(t, 100, []graph.Spec{
		{Name: "Base", OutputMem: 60, TimeCost: 1},
		{Name: "X", OutputMem: 0, TimeCost: 1, Inputs: []string{"Base"}},
		{Name: "Y", RunMem: 50, OutputMem: 40, TimeCost: 1},
	})

	s, _, err := Schedule(context.Background(), p, Options{})
	require.NoError(t, err)
	require.NoError(t, schedstate.CheckInvariants(p, s))
	xIdx, yIdx := indexOf(s.ExecutionOrder, "X"), indexOf(s.ExecutionOrder, "Y")
	require.GreaterOrEqual(t, xIdx, 0)
	require.GreaterOrEqual(t, yIdx, 0)
	assert.Less(t, xIdx, yIdx)
}

func indexOf(names []string, target string) int {
	for i, n := range names {
		if n == target {
			return i
		}
	}
	return -1
}

// TestInfeasibleSingleNode covers scenario 5: a single node whose run_mem
// exceeds the budget is infeasible before any search runs.
func TestInfeasibleSingleNode(t *testing.T) {
	p := mustGraph(t, 500, []graph.Spec{
		{Name: "Huge", RunMem: 1000, TimeCost: 1},
	})

	_, _, err := Schedule(context.Background(), p, Options{})
	require.Error(t, err)
	var infeasible *InfeasibleError
	assert.ErrorAs(t, err, &infeasible)
}

// TestBudgetExhaustionFallsThrough covers scenario 6: a tight expansion
// budget starves bounded DFS, but the fixed fallback chain still produces a
// complete feasible schedule via a later strategy.
func TestBudgetExhaustionFallsThrough(t *testing.T) {
	p := randomChainGraph(t, 30, 100)

	s, stats, err := Schedule(context.Background(), p, Options{MaxExpansions: 2, TimeLimit: time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, schedstate.CheckInvariants(p, s))
	assert.True(t, s.Complete(p.NodeOrder()))
	assert.LessOrEqual(t, s.MemoryPeak, p.TotalMemory)
	assert.NotEmpty(t, stats.WinningStrategy)
}

// TestNoFeasibleScheduleWrapsSentinel asserts that exhausting every
// fallback for a genuinely infeasible multi-node graph reports
// ErrNoFeasibleSchedule via errors.Is.
func TestNoFeasibleScheduleWrapsSentinel(t *testing.T) {
	p := mustGraph(t, 5, []graph.Spec{
		{Name: "A", OutputMem: 4, TimeCost: 1},
		{Name: "B", OutputMem: 4, TimeCost: 1, Inputs: []string{"A"}},
		{Name: "C", OutputMem: 4, TimeCost: 1, Inputs: []string{"A", "B"}},
	})

	_, _, err := Schedule(context.Background(), p, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFeasibleSchedule))
}

// randomChainGraph builds a deterministic pseudo-random-shaped DAG of n
// nodes, each depending on a small fixed-size window of its predecessors, so
// every run produces the same graph (no math/rand global state, since
// generated fixtures must stay reproducible across test runs).
func randomChainGraph(t *testing.T, n int, budget int64) *graph.Problem {
	t.Helper()
	specs := make([]graph.Spec, 0, n)
	for i := 0; i < n; i++ {
		name := nodeName(i)
		var inputs []string
		for back := 1; back <= 2 && i-back >= 0; back++ {
			inputs = append(inputs, nodeName(i-back))
		}
		specs = append(specs, graph.Spec{
			Name:      name,
			RunMem:    2,
			OutputMem: 3,
			TimeCost:  int64(1 + i%3),
			Inputs:    inputs,
		})
	}
	return mustGraph(t, budget, specs)
}

func nodeName(i int) string {
	return "n" + string(rune('A'+i%26)) + string(rune('0'+i/26))
}

// TestDeterministicReplay covers property P6: scheduling the same problem
// twice with the same Options yields byte-for-byte identical schedules,
// since nothing in the search family consults global mutable state.
func TestDeterministicReplay(t *testing.T) {
	p := randomChainGraph(t, 20, 60)

	first, _, err := Schedule(context.Background(), p, Options{})
	require.NoError(t, err)
	second, _, err := Schedule(context.Background(), p, Options{})
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("schedule was not deterministic (-first +second):\n%s", diff)
	}
}

// TestPrimaryDominatesGreedy covers property P7: the driver's winning
// strategy (headed by bounded DFS) never produces a worse total time than
// plain greedy alone, since greedy is the last, weakest fallback rung.
func TestPrimaryDominatesGreedy(t *testing.T) {
	p := randomChainGraph(t, 20, 60)

	best, _, err := Schedule(context.Background(), p, Options{})
	require.NoError(t, err)

	greedyOnly := search.Greedy(p, search.NewBudget(0, time.Time{}))
	require.True(t, greedyOnly.Complete(p.NodeOrder()))

	assert.LessOrEqual(t, best.TotalTime, greedyOnly.TotalTime)
}
