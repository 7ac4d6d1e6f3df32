// Package graph holds the immutable problem description: nodes keyed by
// name, their costs, their input lists, and the derived consumer/producer
// maps used by every downstream component.
package graph

// Node is an immutable record identified by name.
type Node struct {
	Name       string
	RunMem     int64
	OutputMem  int64
	TimeCost   int64
	Inputs     []string
	Peak       int64 // max(RunMem, OutputMem)
	Impact     int64 // static impact, see deriveStaticImpact
}

// Problem is the immutable aggregate built by New. Nodes is keyed by name;
// Dependencies maps a producer to the set of its consumers; Successors
// preserves the parse order of those same consumers.
type Problem struct {
	TotalMemory  int64
	order        []string // insertion order, for deterministic iteration
	Nodes        map[string]Node
	Dependencies map[string]map[string]struct{}
	Successors   map[string][]string
}

// NodeOrder returns node names in the order they were inserted during New.
func (p *Problem) NodeOrder() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Node looks up a node by name. ok is false if the name is unknown.
func (p *Problem) Node(name string) (Node, bool) {
	n, ok := p.Nodes[name]
	return n, ok
}

// Consumers returns the set of consumer names for a producer, or nil if the
// producer has none.
func (p *Problem) Consumers(name string) map[string]struct{} {
	return p.Dependencies[name]
}
