package graph

import "fmt"

// Spec is the parser-facing description of one node: a name, three
// non-negative costs, and an ordered list of input names that must refer
// to prior specs.
type Spec struct {
	Name      string
	RunMem    int64
	OutputMem int64
	TimeCost  int64
	Inputs    []string
}

// ValidationError reports a structural defect in the graph itself: a
// duplicate node name, an input referring to an unknown name, or a cycle.
// These are not malformed syntax (the parser already accepted the tokens
// fine) - per spec.md §7 they fall under "Infeasible problem", detectable
// up front before any search strategy runs, so callers should map this to
// the same outcome as a single node that can never fit the memory budget.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// New builds a Problem from an ordered list of specs and a memory budget.
// It validates that every input name resolves to a prior spec and that the
// resulting graph is acyclic, then derives the consumer/producer maps and
// each node's static impact (the sole-consumer rule).
func New(totalMemory int64, specs []Spec) (*Problem, error) {
	p := &Problem{
		TotalMemory:  totalMemory,
		Nodes:        make(map[string]Node, len(specs)),
		Dependencies: make(map[string]map[string]struct{}, len(specs)),
		Successors:   make(map[string][]string, len(specs)),
	}

	for _, s := range specs {
		if _, dup := p.Nodes[s.Name]; dup {
			return nil, &ValidationError{Msg: fmt.Sprintf("graph: duplicate node name %q", s.Name)}
		}
		for _, in := range s.Inputs {
			if _, ok := p.Nodes[in]; !ok {
				return nil, &ValidationError{Msg: fmt.Sprintf("graph: node %q references unknown input %q", s.Name, in)}
			}
		}

		n := Node{
			Name:      s.Name,
			RunMem:    s.RunMem,
			OutputMem: s.OutputMem,
			TimeCost:  s.TimeCost,
			Inputs:    append([]string(nil), s.Inputs...),
			Peak:      maxInt64(s.RunMem, s.OutputMem),
		}
		n.Impact = n.OutputMem // placeholder, refined below

		p.Nodes[s.Name] = n
		p.order = append(p.order, s.Name)

		if _, ok := p.Successors[s.Name]; !ok {
			p.Successors[s.Name] = nil
		}
		for _, in := range s.Inputs {
			if p.Dependencies[in] == nil {
				p.Dependencies[in] = make(map[string]struct{})
			}
			p.Dependencies[in][s.Name] = struct{}{}
			p.Successors[in] = append(p.Successors[in], s.Name)
		}
	}

	if err := checkAcyclic(p); err != nil {
		return nil, err
	}

	deriveStaticImpact(p)

	return p, nil
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// deriveStaticImpact applies the sole-consumer rule of §4.1: a node's static
// impact is its own output size minus the output sizes of any input whose
// only consumer is this node.
func deriveStaticImpact(p *Problem) {
	for name, n := range p.Nodes {
		impact := n.OutputMem
		for _, in := range n.Inputs {
			consumers := p.Dependencies[in]
			if len(consumers) == 1 {
				if _, soleIsN := consumers[name]; soleIsN {
					impact -= p.Nodes[in].OutputMem
				}
			}
		}
		n.Impact = impact
		p.Nodes[name] = n
	}
}

// checkAcyclic runs a topological sort over all nodes and reports a cycle
// if one remains unscheduled.
func checkAcyclic(p *Problem) error {
	inDegree := make(map[string]int, len(p.Nodes))
	for name := range p.Nodes {
		inDegree[name] = 0
	}
	for _, name := range p.order {
		for range p.Nodes[name].Inputs {
			inDegree[name]++
		}
	}

	queue := make([]string, 0, len(p.Nodes))
	for _, name := range p.order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	visited := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		visited++
		for _, succ := range p.Successors[cur] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if visited != len(p.Nodes) {
		return &ValidationError{Msg: fmt.Sprintf("graph: cycle detected (only %d/%d nodes are reachable in topological order)", visited, len(p.Nodes))}
	}
	return nil
}
