package bayes

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/probkit/bayesnet/pkg/dist"
	"github.com/probkit/bayesnet/pkg/world"
)

// TableNode is a discrete node defined by an explicit conditional
// probability table. The table is a flat probability list with one row per
// combination of parent values: rows are ordered lexicographically over
// parent values in sorted-parent order, and within a row the node's own
// value varies fastest.
//
// For a node with parents p5, p7 (sorted by index) the layout is
//
//	P(v=0 | p5=0, p7=0), P(v=1 | p5=0, p7=0),
//	P(v=0 | p5=0, p7=1), ...
type TableNode struct {
	core
	cpt         []float64
	multipliers []int
	dists       []distuv.Categorical
}

// NewTableNode creates a table node with the given domain size and flat CPT.
// The CPT length and row contents are validated when the owning network is
// compiled, once the parent set is known.
func NewTableNode(index int, name string, domainSize int, cpt []float64) *TableNode {
	return &TableNode{
		core: core{
			index:   index,
			name:    name,
			support: DiscreteSupport(domainSize),
		},
		cpt: append([]float64(nil), cpt...),
	}
}

// CPT returns the flat probability list.
func (t *TableNode) CPT() []float64 {
	return append([]float64(nil), t.cpt...)
}

// Multipliers returns the mixed-radix stride per parent position, available
// after compile.
func (t *TableNode) Multipliers() []int {
	return append([]int(nil), t.multipliers...)
}

func (t *TableNode) compile() error {
	if err := t.compileBase(); err != nil {
		return err
	}
	if t.support.Size() < 1 {
		return fmt.Errorf("%w: table node %s has domain size %d", ErrStructural, t.label(), t.support.Size())
	}
	for _, parent := range t.Parents() {
		if !parent.Support().Discrete() {
			return fmt.Errorf("%w: table node %s has non-discrete parent %s",
				ErrStructural, t.label(), nodeLabel(parent))
		}
	}
	t.multipliers = t.computeMultipliers()
	return t.buildDistributions()
}

// computeMultipliers derives the mixed-radix strides: iterating parents
// right-to-left, each position's multiplier is the product of the domain
// sizes of all parents after it.
func (t *TableNode) computeMultipliers() []int {
	parents := t.Parents()
	multipliers := make([]int, len(parents))
	multiplier := 1
	for i := len(parents) - 1; i >= 0; i-- {
		multipliers[i] = multiplier
		multiplier *= parents[i].Support().Size()
	}
	return multipliers
}

// buildDistributions slices the CPT into one categorical distribution per
// parent-value combination, enumerating combinations in the lexicographic
// order implied by the multipliers. Each enumeration position is
// cross-checked against distributionIndex to catch addressing bugs.
func (t *TableNode) buildDistributions() error {
	parents := t.Parents()
	domainSize := t.support.Size()

	rows := 1
	for _, parent := range parents {
		rows *= parent.Support().Size()
	}
	if len(t.cpt) != rows*domainSize {
		return fmt.Errorf("%w: table node %s has %d CPT entries, want %d (%d rows x domain %d)",
			ErrStructural, t.label(), len(t.cpt), rows*domainSize, rows, domainSize)
	}

	combo := make([]float64, len(parents))
	t.dists = make([]distuv.Categorical, 0, rows)
	for row := 0; row < rows; row++ {
		weights := t.cpt[row*domainSize : (row+1)*domainSize]
		if err := validateRow(weights); err != nil {
			return fmt.Errorf("%w: table node %s CPT row %d: %v", ErrStructural, t.label(), row, err)
		}

		index, inRange := t.rowIndex(combo)
		if !inRange || index != row {
			return fmt.Errorf("%w: table node %s CPT addressing mismatch: row %d indexed as %d",
				ErrStructural, t.label(), row, index)
		}

		t.dists = append(t.dists, distuv.NewCategorical(append([]float64(nil), weights...), t.net.src))
		advance(combo, parents)
	}
	return nil
}

// advance steps combo to the next parent-value combination, incrementing the
// last position first (lexicographic order).
func advance(combo []float64, parents []Node) {
	for i := len(combo) - 1; i >= 0; i-- {
		combo[i]++
		if int(combo[i]) < parents[i].Support().Size() {
			return
		}
		combo[i] = 0
	}
}

func validateRow(weights []float64) error {
	total := 0.0
	for i, w := range weights {
		if w < 0 {
			return fmt.Errorf("negative probability %g at position %d", w, i)
		}
		total += w
	}
	if total == 0 {
		return fmt.Errorf("probabilities sum to zero")
	}
	return nil
}

// rowIndex computes the flat row offset for the given parent values using
// the mixed-radix multipliers. inRange is false if any value is not a whole
// number inside its parent's domain.
func (t *TableNode) rowIndex(parentValues []float64) (index int, inRange bool) {
	parents := t.Parents()
	for i, value := range parentValues {
		v := int(value)
		if float64(v) != value || v < 0 || v >= parents[i].Support().Size() {
			return 0, false
		}
		index += v * t.multipliers[i]
	}
	return index, true
}

// DistributionIndex returns the CPT row selected by the parent values in w.
// It fails if a parent value is missing or outside its parent's domain.
func (t *TableNode) DistributionIndex(w *world.World) (int, error) {
	if !t.compiled {
		return 0, fmt.Errorf("%w: table node %s is not compiled", ErrPrecondition, t.label())
	}
	values, err := t.parentValues(w)
	if err != nil {
		return 0, err
	}
	index, inRange := t.rowIndex(values)
	if !inRange {
		return 0, fmt.Errorf("%w: parent value outside support for node %s", ErrPrecondition, t.label())
	}
	return index, nil
}

// Sample draws from the categorical distribution selected by the parent
// values in w, using the network's shared generator.
func (t *TableNode) Sample(w *world.World) (float64, error) {
	index, err := t.DistributionIndex(w)
	if err != nil {
		return 0, err
	}
	return t.dists[index].Rand(), nil
}

// LogProbability returns the log mass of value under the row selected by
// the parent values in w. Values outside the node's domain, and rows
// addressed by out-of-domain parent values, score as dist.LogProbZero.
func (t *TableNode) LogProbability(w *world.World, value float64) (float64, error) {
	if !t.compiled {
		return 0, fmt.Errorf("%w: table node %s is not compiled", ErrPrecondition, t.label())
	}
	values, err := t.parentValues(w)
	if err != nil {
		return 0, err
	}
	index, inRange := t.rowIndex(values)
	if !inRange {
		return dist.LogProbZero, nil
	}
	v := int(value)
	if float64(v) != value || v < 0 || v >= t.support.Size() {
		return dist.LogProbZero, nil
	}
	lp := t.dists[index].LogProb(value)
	if lp < dist.LogProbZero {
		return dist.LogProbZero, nil
	}
	return lp, nil
}
