// Package bayes represents Bayesian networks: directed acyclic graphs of
// random variables with ancestral sampling, joint log-probability scoring,
// and exact inference by enumeration.
package bayes

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/probkit/bayesnet/pkg/logging"
	"github.com/probkit/bayesnet/pkg/world"
)

// Network is a Bayesian network: a directed acyclic graph of nodes with a
// two-phase lifecycle. Nodes and edges are added during the build phase;
// Compile derives the topological order and per-node caches; afterwards the
// network is structurally immutable and serves Sample and LogProbability.
//
// The generator src is shared by all table nodes. It is the only mutable
// state of a compiled network: concurrent callers must either serialize
// access or build one network per generator.
type Network struct {
	src      rand.Source
	graph    *simple.DirectedGraph
	nodes    []Node
	byName   map[string]Node
	order    []Node
	compiled bool
}

// New creates an empty network drawing randomness from src.
func New(src rand.Source) *Network {
	return &Network{
		src:    src,
		graph:  simple.NewDirectedGraph(),
		byName: make(map[string]Node),
	}
}

// AddNode registers a node. Indices must be dense and assigned in
// registration order: the node's index must equal the current node count.
// Non-empty names must be unique.
func (n *Network) AddNode(node Node) error {
	if n.compiled {
		return fmt.Errorf("%w: cannot add node %s to a compiled network", ErrStructural, nodeLabel(node))
	}
	if node.Index() != len(n.nodes) {
		return fmt.Errorf("%w: node %s has index %d, want %d (indices are dense, in registration order)",
			ErrStructural, nodeLabel(node), node.Index(), len(n.nodes))
	}
	if name := node.Name(); name != "" {
		if _, exists := n.byName[name]; exists {
			return fmt.Errorf("%w: duplicate node name %q", ErrStructural, name)
		}
	}
	if err := node.attach(n); err != nil {
		return err
	}
	n.graph.AddNode(simple.Node(node.Index()))
	n.nodes = append(n.nodes, node)
	if name := node.Name(); name != "" {
		n.byName[name] = node
	}
	return nil
}

// AddEdge adds a directed edge from parent to child. Both nodes must
// already be registered with this network.
func (n *Network) AddEdge(parent, child Node) error {
	if n.compiled {
		return fmt.Errorf("%w: cannot add edge to a compiled network", ErrStructural)
	}
	if !n.contains(parent) {
		return fmt.Errorf("%w: edge parent %s is not registered with this network", ErrStructural, nodeLabel(parent))
	}
	if !n.contains(child) {
		return fmt.Errorf("%w: edge child %s is not registered with this network", ErrStructural, nodeLabel(child))
	}
	if parent.Index() == child.Index() {
		return fmt.Errorf("%w: self-edge on node %s", ErrStructural, nodeLabel(parent))
	}
	from, to := int64(parent.Index()), int64(child.Index())
	if !n.graph.HasEdgeFromTo(from, to) {
		n.graph.SetEdge(n.graph.NewEdge(n.graph.Node(from), n.graph.Node(to)))
	}
	return nil
}

func (n *Network) contains(node Node) bool {
	i := node.Index()
	return i >= 0 && i < len(n.nodes) && n.nodes[i] == node
}

// Compile derives the topological order and runs each node's compile step
// (structure caches, Markov blankets, and table distribution caches).
// Compiling an already compiled network is a no-op. A cyclic edge relation
// fails with ErrStructural naming the cycle members.
func (n *Network) Compile() error {
	if n.compiled {
		return nil
	}
	if len(n.nodes) == 0 {
		return fmt.Errorf("%w: network has no nodes", ErrStructural)
	}

	sorted, err := topo.SortStabilized(n.graph, func(ns []graph.Node) {
		sort.Slice(ns, func(i, j int) bool { return ns[i].ID() < ns[j].ID() })
	})
	if err != nil {
		if unorderable, ok := err.(topo.Unorderable); ok {
			return fmt.Errorf("%w: edge relation is cyclic: %s", ErrStructural, n.describeCycles(unorderable))
		}
		return fmt.Errorf("%w: topological sort failed: %v", ErrStructural, err)
	}

	// Indices are dense by construction; re-verify before trusting them as
	// positions into n.nodes.
	for i, node := range n.nodes {
		if node.Index() != i {
			return fmt.Errorf("%w: node at position %d has index %d", ErrStructural, i, node.Index())
		}
	}

	order := make([]Node, len(sorted))
	for i, gn := range sorted {
		order[i] = n.nodes[gn.ID()]
	}

	for _, node := range order {
		if err := node.compile(); err != nil {
			return err
		}
	}
	n.order = order
	n.compiled = true
	logging.Debug("network compiled", "nodes", len(n.nodes), "edges", n.graph.Edges().Len())
	return nil
}

func (n *Network) describeCycles(unorderable topo.Unorderable) string {
	var parts []string
	for _, cycle := range unorderable {
		labels := make([]string, len(cycle))
		for i, gn := range cycle {
			labels[i] = nodeLabel(n.nodes[gn.ID()])
		}
		sort.Strings(labels)
		parts = append(parts, "["+strings.Join(labels, " ")+"]")
	}
	return strings.Join(parts, " ")
}

// Compiled reports whether Compile has run.
func (n *Network) Compiled() bool {
	return n.compiled
}

// NodeCount returns the number of registered nodes.
func (n *Network) NodeCount() int {
	return len(n.nodes)
}

// Nodes returns the nodes in index order.
func (n *Network) Nodes() []Node {
	return append([]Node(nil), n.nodes...)
}

// TopologicalOrder returns the compiled traversal order.
func (n *Network) TopologicalOrder() []Node {
	return append([]Node(nil), n.order...)
}

// NodeByIndex returns the node with the given index.
func (n *Network) NodeByIndex(index int) (Node, error) {
	if index < 0 || index >= len(n.nodes) {
		return nil, fmt.Errorf("%w: no node with index %d", ErrNotFound, index)
	}
	return n.nodes[index], nil
}

// FindNode returns the node with the given name.
func (n *Network) FindNode(name string) (Node, error) {
	node, ok := n.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: no node named %q", ErrNotFound, name)
	}
	return node, nil
}

// Sample draws a complete world by ancestral sampling. If w is non-nil its
// values are kept as conditioning evidence and the remaining nodes are
// sampled; w itself is never mutated. Traversal follows the stabilized
// topological order, so runs with the same generator state reproduce.
func (n *Network) Sample(w *world.World) (*world.World, error) {
	if !n.compiled {
		return nil, fmt.Errorf("%w: network is not compiled", ErrPrecondition)
	}
	if w == nil {
		w = world.New()
	} else {
		w = w.Copy()
	}
	if err := n.sampleInto(w); err != nil {
		return nil, err
	}
	return w, nil
}

// SampleInPlace is Sample with explicit in-place mutation of w.
func (n *Network) SampleInPlace(w *world.World) error {
	if !n.compiled {
		return fmt.Errorf("%w: network is not compiled", ErrPrecondition)
	}
	if w == nil {
		return fmt.Errorf("%w: nil world", ErrPrecondition)
	}
	return n.sampleInto(w)
}

func (n *Network) sampleInto(w *world.World) error {
	for _, node := range n.order {
		if w.Has(node.Index()) {
			continue
		}
		value, err := node.Sample(w)
		if err != nil {
			return err
		}
		w.Set(node.Index(), value)
	}
	return nil
}

// LogProbability returns the joint log probability of a complete world:
// the sum of each node's score given its parents. A world that is missing
// any node, or assigns extra indices, fails with ErrPrecondition.
func (n *Network) LogProbability(w *world.World) (float64, error) {
	if !n.compiled {
		return 0, fmt.Errorf("%w: network is not compiled", ErrPrecondition)
	}
	if w == nil {
		return 0, fmt.Errorf("%w: nil world", ErrPrecondition)
	}
	if w.Len() != len(n.nodes) {
		return 0, fmt.Errorf("%w: world assigns %d nodes, network has %d", ErrPrecondition, w.Len(), len(n.nodes))
	}
	total := 0.0
	for _, node := range n.nodes {
		value, ok := w.Value(node.Index())
		if !ok {
			return 0, fmt.Errorf("%w: world has no value for node %s", ErrPrecondition, nodeLabel(node))
		}
		lp, err := node.LogProbability(w, value)
		if err != nil {
			return 0, err
		}
		total += lp
	}
	return total, nil
}

// parentsOf returns the predecessors of the node at index, sorted by index.
func (n *Network) parentsOf(index int) []Node {
	return n.neighbors(n.graph.To(int64(index)))
}

// childrenOf returns the successors of the node at index, sorted by index.
func (n *Network) childrenOf(index int) []Node {
	return n.neighbors(n.graph.From(int64(index)))
}

func (n *Network) neighbors(iter graph.Nodes) []Node {
	var nodes []Node
	for iter.Next() {
		nodes = append(nodes, n.nodes[iter.Node().ID()])
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Index() < nodes[j].Index() })
	return nodes
}

// String renders one line per node with its parents and support, in
// topological order when compiled, otherwise index order.
func (n *Network) String() string {
	if len(n.nodes) == 0 {
		return "<<BN>>"
	}
	nodes := n.nodes
	if n.compiled {
		nodes = n.order
	}
	var b strings.Builder
	b.WriteString("<<BN\n")
	for _, node := range nodes {
		parents := make([]string, len(node.Parents()))
		for i, parent := range node.Parents() {
			parents[i] = nodeLabel(parent)
		}
		fmt.Fprintf(&b, "  [%s] -> %s  %s\n", strings.Join(parents, " "), nodeLabel(node), node.Support())
	}
	b.WriteString(">>")
	return b.String()
}
