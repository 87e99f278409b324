package bayes

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/probkit/bayesnet/pkg/world"
)

// Enumerator computes exact marginals on a compiled network by summing over
// every assignment of the unobserved discrete nodes. Cost is exponential in
// the number of unobserved nodes; it is meant for small networks and as a
// reference for sampling-based estimates.
type Enumerator struct {
	net *Network
}

// NewEnumerator creates an enumerator over net.
func NewEnumerator(net *Network) *Enumerator {
	return &Enumerator{net: net}
}

// Marginalize returns the marginal distribution of query given the partial
// evidence, as a map from support value to probability. The query node must
// be discrete and absent from the evidence; every unobserved node must be
// discrete. A nil evidence world means no evidence.
func (e *Enumerator) Marginalize(evidence *world.World, query Node) (map[float64]float64, error) {
	if !e.net.Compiled() {
		return nil, fmt.Errorf("%w: network is not compiled", ErrPrecondition)
	}
	if evidence == nil {
		evidence = world.New()
	}
	if evidence.Has(query.Index()) {
		return nil, fmt.Errorf("%w: query node %s is already observed", ErrPrecondition, nodeLabel(query))
	}
	if !query.Support().Discrete() {
		return nil, fmt.Errorf("%w: query node %s is not discrete", ErrPrecondition, nodeLabel(query))
	}

	values := query.Support().Values()
	logProbs := make([]float64, len(values))
	for i, value := range values {
		lp, err := e.marginalizeNodes(evidence.Extend(query.Index(), value), e.net.order)
		if err != nil {
			return nil, err
		}
		logProbs[i] = lp
	}

	total := floats.LogSumExp(logProbs)
	marginal := make(map[float64]float64, len(values))
	for i, value := range values {
		marginal[value] = math.Exp(logProbs[i] - total)
	}
	return marginal, nil
}

// marginalizeNodes computes the log normalization constant of nodes given
// evidence: observed nodes contribute their score, unobserved nodes are
// summed out with log-sum-exp. Nodes must be in topological order so parent
// values are always assigned before a child is scored.
func (e *Enumerator) marginalizeNodes(evidence *world.World, nodes []Node) (float64, error) {
	if len(nodes) == 0 {
		return 0, nil
	}
	node, rest := nodes[0], nodes[1:]

	if value, ok := evidence.Value(node.Index()); ok {
		local, err := node.LogProbability(evidence, value)
		if err != nil {
			return 0, err
		}
		remainder, err := e.marginalizeNodes(evidence, rest)
		if err != nil {
			return 0, err
		}
		return local + remainder, nil
	}

	if !node.Support().Discrete() {
		return 0, fmt.Errorf("%w: cannot enumerate non-discrete node %s", ErrPrecondition, nodeLabel(node))
	}
	logProbs := make([]float64, 0, node.Support().Size())
	for _, value := range node.Support().Values() {
		local, err := node.LogProbability(evidence, value)
		if err != nil {
			return 0, err
		}
		remainder, err := e.marginalizeNodes(evidence.Extend(node.Index(), value), rest)
		if err != nil {
			return 0, err
		}
		logProbs = append(logProbs, local+remainder)
	}
	return floats.LogSumExp(logProbs), nil
}
