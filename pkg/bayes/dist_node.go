package bayes

import (
	"fmt"

	"github.com/probkit/bayesnet/pkg/dist"
	"github.com/probkit/bayesnet/pkg/world"
)

// DistNode is a node that delegates sampling and scoring to an injected
// distribution, parameterized by the node's parent values. The support may
// be discrete or real; no table is materialized, so unbounded and continuous
// domains are supported.
type DistNode struct {
	core
	distribution dist.Distribution
}

// NewDistNode creates a distribution-backed node. The distribution receives
// the parent values, in ascending parent-index order, as its parameters.
func NewDistNode(index int, name string, support Support, distribution dist.Distribution) *DistNode {
	return &DistNode{
		core: core{
			index:   index,
			name:    name,
			support: support,
		},
		distribution: distribution,
	}
}

func (d *DistNode) compile() error {
	if d.distribution == nil {
		return fmt.Errorf("%w: node %s has no distribution", ErrStructural, d.label())
	}
	return d.compileBase()
}

// Sample draws from the distribution parameterized by the parent values in w.
func (d *DistNode) Sample(w *world.World) (float64, error) {
	if !d.compiled {
		return 0, fmt.Errorf("%w: node %s is not compiled", ErrPrecondition, d.label())
	}
	params, err := d.parentValues(w)
	if err != nil {
		return 0, err
	}
	return d.distribution.Sample(params), nil
}

// LogProbability scores value under the distribution parameterized by the
// parent values in w.
func (d *DistNode) LogProbability(w *world.World, value float64) (float64, error) {
	if !d.compiled {
		return 0, fmt.Errorf("%w: node %s is not compiled", ErrPrecondition, d.label())
	}
	params, err := d.parentValues(w)
	if err != nil {
		return 0, err
	}
	return d.distribution.LogProbability(params, value), nil
}

// DeterministicNode is a continuous node whose value is a pure function of
// its parent values. All probability mass sits on the computed value.
type DeterministicNode struct {
	core
	fn func(params []float64) float64
}

// NewDeterministicNode creates a deterministic node. fn receives the parent
// values in ascending parent-index order.
func NewDeterministicNode(index int, name string, fn func(params []float64) float64) *DeterministicNode {
	return &DeterministicNode{
		core: core{
			index:   index,
			name:    name,
			support: RealSupport(),
		},
		fn: fn,
	}
}

func (d *DeterministicNode) compile() error {
	if d.fn == nil {
		return fmt.Errorf("%w: deterministic node %s has no function", ErrStructural, d.label())
	}
	return d.compileBase()
}

// Value evaluates the node's function on the parent values in w.
func (d *DeterministicNode) Value(w *world.World) (float64, error) {
	if !d.compiled {
		return 0, fmt.Errorf("%w: deterministic node %s is not compiled", ErrPrecondition, d.label())
	}
	params, err := d.parentValues(w)
	if err != nil {
		return 0, err
	}
	return d.fn(params), nil
}

// Sample returns the function value; there is nothing random to draw.
func (d *DeterministicNode) Sample(w *world.World) (float64, error) {
	return d.Value(w)
}

// LogProbability returns 0 (log of certainty) when value equals the function
// output exactly, and dist.LogProbZero otherwise.
func (d *DeterministicNode) LogProbability(w *world.World, value float64) (float64, error) {
	computed, err := d.Value(w)
	if err != nil {
		return 0, err
	}
	if computed == value {
		return 0, nil
	}
	return dist.LogProbZero, nil
}
