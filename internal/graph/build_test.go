package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainSpecs() []Spec {
	return []Spec{
		{Name: "A", OutputMem: 10, TimeCost: 1},
		{Name: "B", OutputMem: 10, TimeCost: 1, Inputs: []string{"A"}},
		{Name: "C", OutputMem: 10, TimeCost: 1, Inputs: []string{"B"}},
		{Name: "D", OutputMem: 10, TimeCost: 1, Inputs: []string{"C"}},
	}
}

func TestNewLinearChain(t *testing.T) {
	p, err := New(100, chainSpecs())
	require.NoError(t, err)
	require.Len(t, p.Nodes, 4)

	a, ok := p.Node("A")
	require.True(t, ok)
	assert.Equal(t, int64(10), a.Peak)
	// A is the sole consumer's producer: B is A's only consumer, so A's
	// impact contribution comes from being freed when B completes, not from
	// A's own static impact (which is just its own output).
	assert.Equal(t, int64(10), a.Impact)

	b, ok := p.Node("B")
	require.True(t, ok)
	// B is the sole consumer of A, so B's impact nets out A's output.
	assert.Equal(t, int64(0), b.Impact)
}

func TestNewRejectsUnknownInput(t *testing.T) {
	_, err := New(100, []Spec{
		{Name: "A", Inputs: []string{"ghost"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown input")
}

func TestNewRejectsDuplicateName(t *testing.T) {
	_, err := New(100, []Spec{
		{Name: "A"},
		{Name: "A"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate node")
}

func TestNewRejectsCycle(t *testing.T) {
	// Can't express a true cycle through the forward-only Inputs contract
	// without a name referencing something not yet declared, which New
	// already rejects as unknown (and a repeated name is rejected as a
	// duplicate), so no cycle reaches checkAcyclic through New. Exercise the
	// check directly on hand-built maps.
	p := &Problem{
		Nodes: map[string]Node{
			"A": {Name: "A", Inputs: []string{"B"}},
			"B": {Name: "B", Inputs: []string{"A"}},
		},
		Dependencies: map[string]map[string]struct{}{
			"A": {"B": struct{}{}},
			"B": {"A": struct{}{}},
		},
		Successors: map[string][]string{
			"A": {"B"},
			"B": {"A"},
		},
		order: []string{"A", "B"},
	}
	err := checkAcyclic(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestDiamondSoleConsumerImpact(t *testing.T) {
	specs := []Spec{
		{Name: "A", OutputMem: 10, TimeCost: 1},
		{Name: "B", OutputMem: 10, TimeCost: 1, Inputs: []string{"A"}},
		{Name: "C", OutputMem: 10, TimeCost: 1, Inputs: []string{"A"}},
		{Name: "D", OutputMem: 10, TimeCost: 1, Inputs: []string{"B", "C"}},
	}
	p, err := New(30, specs)
	require.NoError(t, err)

	a, _ := p.Node("A")
	// A has two consumers (B and C), so neither is the sole consumer and
	// A's static impact is just its own output.
	assert.Equal(t, int64(10), a.Impact)

	d, _ := p.Node("D")
	assert.Equal(t, int64(10)-10-10, d.Impact)
}
