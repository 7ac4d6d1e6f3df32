// Package dot renders a graph.Problem (and, optionally, a schedule) as
// Graphviz DOT text, grounded on original_source/'s
// Visualization/SimpleDAGVisualizer.{h,cpp} but expressed with text/template
// instead of hand-rolled string concatenation. PNG rendering itself stays
// out of scope; only the textual DOT interface is implemented.
package dot

import (
	"fmt"
	"io"
	"text/template"

	"github.com/kiyer-oss/dagsched/internal/graph"
	"github.com/kiyer-oss/dagsched/internal/schedstate"
)

var tmpl = template.Must(template.New("dot").Parse(`digraph dag {
  rankdir=LR;
{{- range .Nodes}}
  "{{.Name}}" [label="{{.Name}}\nrun={{.RunMem}} out={{.OutputMem}} t={{.TimeCost}}"{{if .Recomputed}}, style=filled, fillcolor=lightyellow{{end}}];
{{- end}}
{{- range .Edges}}
  "{{.From}}" -> "{{.To}}";
{{- end}}
}
`))

type nodeView struct {
	Name                        string
	RunMem, OutputMem, TimeCost int64
	Recomputed                  bool
}

type edgeView struct{ From, To string }

type view struct {
	Nodes []nodeView
	Edges []edgeView
}

// Render writes p (and, if s is non-nil, the recompute coloring implied by
// s.RecomputeFlags) to w as Graphviz DOT text.
func Render(w io.Writer, p *graph.Problem, s *schedstate.State) error {
	recomputed := recomputedNodes(s)

	v := view{}
	for _, name := range p.NodeOrder() {
		n := p.Nodes[name]
		v.Nodes = append(v.Nodes, nodeView{
			Name:       n.Name,
			RunMem:     n.RunMem,
			OutputMem:  n.OutputMem,
			TimeCost:   n.TimeCost,
			Recomputed: recomputed[n.Name],
		})
		for _, in := range n.Inputs {
			v.Edges = append(v.Edges, edgeView{From: in, To: n.Name})
		}
	}

	if err := tmpl.Execute(w, v); err != nil {
		return fmt.Errorf("dot: rendering: %w", err)
	}
	return nil
}

func recomputedNodes(s *schedstate.State) map[string]bool {
	recomputed := make(map[string]bool)
	if s == nil {
		return recomputed
	}
	for i, name := range s.ExecutionOrder {
		if s.RecomputeFlags[i] {
			recomputed[name] = true
		}
	}
	return recomputed
}
