// Package driver implements the strategy driver: it runs the strongest
// affordable search strategy, and falls back in a fixed order until a
// feasible complete schedule is produced or every fallback is exhausted.
// The fallback order is modeled as data (Strategies, a
// []StrategyDescriptor) rather than control flow, so the degrade path is
// an explicit, inspectable list instead of a chain of nested calls.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kiyer-oss/dagsched/internal/ctxlog"
	"github.com/kiyer-oss/dagsched/internal/graph"
	"github.com/kiyer-oss/dagsched/internal/schedstate"
	"github.com/kiyer-oss/dagsched/internal/search"
)

// InfeasibleError reports a problem that fails the up-front feasibility
// check, before any search strategy runs.
type InfeasibleError struct {
	Reason string
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("infeasible problem: %s", e.Reason)
}

// ErrNoFeasibleSchedule is returned when every strategy in the fallback
// chain failed to produce a complete, feasible schedule.
var ErrNoFeasibleSchedule = errors.New("driver: no feasible schedule found after all fallbacks")

// Options bundles the CLI-facing tunables that govern how hard the driver
// searches before settling for a weaker fallback.
type Options struct {
	MaxExpansions int
	TimeLimit     time.Duration
	BeamWidth     int
	DPDepth       int
	DPBranch      int

	// Clock overrides the wall clock the budget consults; nil means
	// search.RealClock{}. Tests inject a fake to simulate deadline
	// exhaustion deterministically.
	Clock search.Clock
}

func (o Options) withDefaults() Options {
	if o.MaxExpansions <= 0 {
		o.MaxExpansions = 200_000
	}
	if o.TimeLimit <= 0 {
		o.TimeLimit = 5 * time.Second
	}
	if o.BeamWidth <= 0 {
		o.BeamWidth = 8
	}
	if o.DPDepth <= 0 {
		o.DPDepth = 3
	}
	if o.DPBranch <= 0 {
		o.DPBranch = 3
	}
	if o.Clock == nil {
		o.Clock = search.RealClock{}
	}
	return o
}

// StrategyDescriptor names one rung of the fallback chain.
type StrategyDescriptor struct {
	Name string
	Run  func(p *graph.Problem, budget *search.Budget, o Options) *schedstate.State
}

// Strategies is the fixed fallback order: bounded DFS, then heuristic,
// dp_greedy, beam, and finally greedy.
var Strategies = []StrategyDescriptor{
	{Name: "bounded_dfs", Run: func(p *graph.Problem, b *search.Budget, _ Options) *schedstate.State {
		return search.DFS(p, b)
	}},
	{Name: "heuristic", Run: func(p *graph.Problem, b *search.Budget, _ Options) *schedstate.State {
		return search.Heuristic(p, b)
	}},
	{Name: "dp_greedy", Run: func(p *graph.Problem, b *search.Budget, o Options) *schedstate.State {
		return search.DPGreedy(p, b, o.DPBranch, o.DPDepth)
	}},
	{Name: "beam", Run: func(p *graph.Problem, b *search.Budget, o Options) *schedstate.State {
		return search.Beam(p, b, o.BeamWidth)
	}},
	{Name: "greedy", Run: func(p *graph.Problem, b *search.Budget, _ Options) *schedstate.State {
		return search.Greedy(p, b)
	}},
}

// AttemptStat records one strategy's outcome for --trace/--verbose output.
type AttemptStat struct {
	Strategy   string
	Expansions int
	Complete   bool
	Feasible   bool
	TotalTime  int64
	MemoryPeak int64
}

// DebugStats carries per-run diagnostics, tagged with a run id the way
// other_examples' session-tagging pattern tags a correlatable id per
// invocation.
type DebugStats struct {
	RunID           string
	WinningStrategy string
	Attempts        []AttemptStat
}

// Schedule runs the driver's fallback chain against p, returning the first
// complete feasible schedule produced, or an error if none was. Only the
// primary strategy (bounded DFS) runs under opts.MaxExpansions and
// opts.TimeLimit; each fallback gets an unlimited budget and runs to
// completion.
func Schedule(ctx context.Context, p *graph.Problem, opts Options) (*schedstate.State, *DebugStats, error) {
	opts = opts.withDefaults()
	stats := &DebugStats{RunID: uuid.New().String()}
	log := ctxlog.FromContext(ctx)

	if err := checkUpFrontFeasibility(p); err != nil {
		log.Debug("infeasible up front", "run_id", stats.RunID, "reason", err.Error())
		return nil, stats, err
	}

	deadline := opts.Clock.Now().Add(opts.TimeLimit)

	for i, sd := range Strategies {
		budget := &search.Budget{Clock: opts.Clock}
		if i == 0 {
			budget.MaxExpansions = opts.MaxExpansions
			budget.Deadline = deadline
		}
		result := sd.Run(p, budget, opts)

		complete := result.Complete(p.NodeOrder())
		feasible := result.MemoryPeak <= p.TotalMemory

		stats.Attempts = append(stats.Attempts, AttemptStat{
			Strategy:   sd.Name,
			Expansions: budget.Spent(),
			Complete:   complete,
			Feasible:   feasible,
			TotalTime:  result.TotalTime,
			MemoryPeak: result.MemoryPeak,
		})
		log.Info("strategy attempt", "run_id", stats.RunID, "strategy", sd.Name,
			"complete", complete, "feasible", feasible,
			"total_time", result.TotalTime, "memory_peak", result.MemoryPeak,
			"expansions", budget.Spent())

		if complete && feasible {
			stats.WinningStrategy = sd.Name
			return result, stats, nil
		}
	}

	return nil, stats, noFeasibleScheduleError(p)
}

// checkUpFrontFeasibility implements a "detectable up front" infeasibility
// check: a problem with at least one node is hopeless before
// any search if not a single node's intrinsic peak fits the budget (nothing
// could ever run first). Graph-level cyclic/unknown-name problems are
// already rejected earlier by graph.New and never reach here.
func checkUpFrontFeasibility(p *graph.Problem) error {
	if len(p.Nodes) == 0 {
		return nil
	}
	for _, name := range p.NodeOrder() {
		if p.Nodes[name].Peak <= p.TotalMemory {
			return nil
		}
	}
	return &InfeasibleError{
		Reason: fmt.Sprintf("every node's intrinsic peak exceeds the memory budget of %d", p.TotalMemory),
	}
}

// noFeasibleScheduleError wraps ErrNoFeasibleSchedule with the diagnostic
// original_source/'s baseline solver would have reported: how far a
// memory-unaware topological pass peaks.
func noFeasibleScheduleError(p *graph.Problem) error {
	topo := search.Topological(p)
	return fmt.Errorf("%w (a topological baseline pass would peak at %d against a budget of %d)",
		ErrNoFeasibleSchedule, topo.MemoryPeak, p.TotalMemory)
}
