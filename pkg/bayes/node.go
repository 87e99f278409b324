package bayes

import (
	"fmt"
	"sort"

	"github.com/probkit/bayesnet/pkg/world"
)

// Node is the contract shared by all node variants. Sample and
// LogProbability require that the node is compiled and that w already holds
// a value for every parent of the node.
//
// The variant set is closed: TableNode, DistNode, and DeterministicNode are
// the only implementations, enforced by the unexported lifecycle methods.
type Node interface {
	// Index is the node's network-unique dense identifier, assigned by
	// registration order and immutable afterwards.
	Index() int
	// Name is an optional secondary identifier; empty if unnamed.
	Name() string
	// Support describes the node's domain.
	Support() Support
	// Parents returns the node's parents sorted by ascending index. The
	// order fixes distribution parameter order and CPT column order.
	Parents() []Node
	// Children returns the node's children sorted by ascending index.
	Children() []Node
	// MarkovBlanket returns the node's Markov blanket, computed at compile
	// time: parents, children, and children's other parents, sorted by index.
	MarkovBlanket() []Node
	// Compiled reports whether the node's compile step has run.
	Compiled() bool

	// Sample draws a value for the node given its parent values in w.
	Sample(w *world.World) (float64, error)
	// LogProbability scores value given the node's parent values in w.
	LogProbability(w *world.World, value float64) (float64, error)

	attach(net *Network) error
	compile() error
}

// core carries the identity, ownership, and cached structure shared by all
// node variants. Parents and children are derived from the owning network's
// edge relation and cached on first use; the network structure is frozen
// once any node has cached them.
type core struct {
	index    int
	name     string
	support  Support
	net      *Network
	parents  []Node
	children []Node
	blanket  []Node
	compiled bool
}

func (c *core) Index() int       { return c.index }
func (c *core) Name() string     { return c.name }
func (c *core) Support() Support { return c.support }
func (c *core) Compiled() bool   { return c.compiled }

// label identifies the node in error messages: name if set, else the index.
func (c *core) label() string {
	if c.name != "" {
		return c.name
	}
	return fmt.Sprintf("#%d", c.index)
}

func nodeLabel(n Node) string {
	if n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("#%d", n.Index())
}

func (c *core) attach(net *Network) error {
	if c.net != nil {
		return fmt.Errorf("%w: node %s is already attached to a network", ErrStructural, c.label())
	}
	c.net = net
	return nil
}

func (c *core) Parents() []Node {
	if c.parents == nil {
		c.parents = c.net.parentsOf(c.index)
	}
	return c.parents
}

func (c *core) Children() []Node {
	if c.children == nil {
		c.children = c.net.childrenOf(c.index)
	}
	return c.children
}

func (c *core) MarkovBlanket() []Node {
	return c.blanket
}

// compileBase caches parents, children, and the Markov blanket. Called by
// each variant's compile step.
func (c *core) compileBase() error {
	if c.net == nil {
		return fmt.Errorf("%w: node %s is not attached to a network", ErrPrecondition, c.label())
	}
	c.parents = c.net.parentsOf(c.index)
	c.children = c.net.childrenOf(c.index)
	c.blanket = c.computeMarkovBlanket()
	c.compiled = true
	return nil
}

// computeMarkovBlanket collects parents, children, and coparents (other
// parents of this node's children), excluding the node itself, deduplicated
// and sorted by index.
func (c *core) computeMarkovBlanket() []Node {
	members := make(map[int]Node)
	for _, parent := range c.Parents() {
		members[parent.Index()] = parent
	}
	for _, child := range c.Children() {
		members[child.Index()] = child
		for _, coparent := range child.Parents() {
			members[coparent.Index()] = coparent
		}
	}
	delete(members, c.index)

	blanket := make([]Node, 0, len(members))
	for _, node := range members {
		blanket = append(blanket, node)
	}
	sort.Slice(blanket, func(i, j int) bool { return blanket[i].Index() < blanket[j].Index() })
	return blanket
}

// parentValues extracts this node's parent values from w in sorted parent
// order. A missing parent value is a precondition failure.
func (c *core) parentValues(w *world.World) ([]float64, error) {
	parents := c.Parents()
	values := make([]float64, len(parents))
	for i, parent := range parents {
		value, ok := w.Value(parent.Index())
		if !ok {
			return nil, fmt.Errorf("%w: world has no value for parent %s of node %s",
				ErrPrecondition, nodeLabel(parent), c.label())
		}
		values[i] = value
	}
	return values, nil
}
