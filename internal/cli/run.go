package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kiyer-oss/dagsched/internal/ctxlog"
	"github.com/kiyer-oss/dagsched/internal/dot"
	"github.com/kiyer-oss/dagsched/internal/driver"
	"github.com/kiyer-oss/dagsched/internal/graph"
	"github.com/kiyer-oss/dagsched/internal/parser"
	"github.com/kiyer-oss/dagsched/internal/schedstate"
)

var runFlags struct {
	verbose       bool
	trace         bool
	maxExpansions int
	timeLimit     time.Duration
	beamWidth     int
	dpDepth       int
	dpBranch      int
	format        string
	dotPath       string
}

var runCmd = &cobra.Command{
	Use:   "run <path>",
	Short: "Parse a DAG description, schedule it, and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	f := runCmd.Flags()
	f.BoolVar(&runFlags.verbose, "verbose", false, "log each strategy attempt at info level")
	f.BoolVar(&runFlags.trace, "trace", false, "log scheduler internals at debug level")
	f.IntVar(&runFlags.maxExpansions, "max-expansions", 0, "cap on bounded-DFS expansions (0 = default)")
	f.DurationVar(&runFlags.timeLimit, "time-limit", 0, "wall-clock deadline for bounded DFS (0 = default)")
	f.IntVar(&runFlags.beamWidth, "beam-width", 0, "beam search width (0 = default)")
	f.IntVar(&runFlags.dpDepth, "dp-depth", 0, "bounded-lookahead DP depth (0 = default)")
	f.IntVar(&runFlags.dpBranch, "dp-branch", 0, "bounded-lookahead DP branch factor (0 = default)")
	f.StringVar(&runFlags.format, "format", "auto", "input format: auto, simple, or examples")
	f.StringVar(&runFlags.dotPath, "dot", "", "write a Graphviz DOT rendering of the result to this path")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ctx = ctxlog.WithLogger(ctx, newRunLogger(os.Stderr))

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return exitError(1, "open %s: %v", path, err)
	}
	defer f.Close()

	result, err := parseInput(runFlags.format, f)
	if err != nil {
		var syntaxErr *parser.SyntaxError
		if errors.As(err, &syntaxErr) {
			return exitError(2, "%s: %v", path, syntaxErr)
		}
		return exitError(2, "%s: %v", path, err)
	}

	specs := make([]graph.Spec, len(result.Specs))
	for i, s := range result.Specs {
		specs[i] = graph.Spec{
			Name:      s.Name,
			RunMem:    s.RunMem,
			OutputMem: s.OutputMem,
			TimeCost:  s.TimeCost,
			Inputs:    s.Inputs,
		}
	}
	p, err := graph.New(result.TotalMemory, specs)
	if err != nil {
		var invalid *graph.ValidationError
		if errors.As(err, &invalid) {
			infeasible := &driver.InfeasibleError{Reason: invalid.Msg}
			return exitError(3, "%v", infeasible)
		}
		return exitError(2, "%s: %v", path, err)
	}

	opts := driver.Options{
		MaxExpansions: runFlags.maxExpansions,
		TimeLimit:     runFlags.timeLimit,
		BeamWidth:     runFlags.beamWidth,
		DPDepth:       runFlags.dpDepth,
		DPBranch:      runFlags.dpBranch,
	}
	s, stats, err := driver.Schedule(ctx, p, opts)
	if err != nil {
		var infeasible *driver.InfeasibleError
		if errors.As(err, &infeasible) || errors.Is(err, driver.ErrNoFeasibleSchedule) {
			return exitError(3, "%v", err)
		}
		return exitError(1, "%v", err)
	}

	if runFlags.trace {
		for _, a := range stats.Attempts {
			fmt.Fprintf(cmd.OutOrStdout(), "# %s: complete=%t feasible=%t time=%d peak=%d expansions=%d\n",
				a.Strategy, a.Complete, a.Feasible, a.TotalTime, a.MemoryPeak, a.Expansions)
		}
	}

	printSchedule(cmd.OutOrStdout(), p, s)

	if runFlags.dotPath != "" {
		out, err := os.Create(runFlags.dotPath)
		if err != nil {
			return exitError(1, "create %s: %v", runFlags.dotPath, err)
		}
		defer out.Close()
		if err := dot.Render(out, p, s); err != nil {
			return exitError(1, "render dot: %v", err)
		}
	}

	return nil
}

func parseInput(format string, f io.Reader) (*parser.Result, error) {
	switch format {
	case "simple":
		return parser.ParseSimple(f)
	case "examples":
		return parser.ParseExamples(f)
	case "auto", "":
		detected, rest, err := parser.Detect(f)
		if err != nil {
			return nil, err
		}
		if detected == parser.FormatExamples {
			return parser.ParseExamples(rest)
		}
		return parser.ParseSimple(rest)
	default:
		return nil, fmt.Errorf("unknown --format %q (want auto, simple, or examples)", format)
	}
}

func printSchedule(w io.Writer, p *graph.Problem, s *schedstate.State) {
	fmt.Fprintln(w, renderOrder(s))
	fmt.Fprintf(w, "Total time: %d\n", s.TotalTime)
	fmt.Fprintf(w, "Memory peak: %d (limit=%d)\n", s.MemoryPeak, p.TotalMemory)
}

// renderOrder joins the execution order with " -> ", suffixing recomputed
// steps with "*".
func renderOrder(s *schedstate.State) string {
	steps := make([]string, len(s.ExecutionOrder))
	for i, name := range s.ExecutionOrder {
		if s.RecomputeFlags[i] {
			steps[i] = name + "*"
		} else {
			steps[i] = name
		}
	}
	return strings.Join(steps, " -> ")
}

func newRunLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case runFlags.trace:
		level = slog.LevelDebug
	case runFlags.verbose:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
