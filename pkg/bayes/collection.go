package bayes

import (
	"fmt"
	"sort"
)

// NetworkCollection is a keyed registry of compiled networks over the same
// variables: every registered network must have the same node count and,
// position by position, the same support as the first one. Different edge
// sets are allowed; that is the point, the collection holds alternative
// factorizations of one variable set.
type NetworkCollection struct {
	nets      map[string]*Network
	nodeCount int
	supports  []Support
}

// NewNetworkCollection creates an empty collection.
func NewNetworkCollection() *NetworkCollection {
	return &NetworkCollection{
		nets:      make(map[string]*Network),
		nodeCount: -1,
	}
}

// Add registers net under key. The first registration fixes the node count
// and per-index supports; later registrations must match them exactly. The
// network must be compiled, and the key must be new. A failed Add leaves
// the collection unchanged.
func (c *NetworkCollection) Add(key string, net *Network) error {
	if !net.Compiled() {
		return fmt.Errorf("%w: network for key %q is not compiled", ErrPrecondition, key)
	}
	if _, exists := c.nets[key]; exists {
		return fmt.Errorf("%w: key %q is already registered", ErrStructural, key)
	}

	if c.nodeCount == -1 {
		c.nodeCount = net.NodeCount()
		c.supports = make([]Support, 0, net.NodeCount())
		for _, node := range net.Nodes() {
			c.supports = append(c.supports, node.Support())
		}
	} else {
		if net.NodeCount() != c.nodeCount {
			return fmt.Errorf("%w: network for key %q has %d nodes, collection has %d",
				ErrIncompatible, key, net.NodeCount(), c.nodeCount)
		}
		for i, node := range net.Nodes() {
			if !node.Support().Equal(c.supports[i]) {
				return fmt.Errorf("%w: network for key %q has support %s at index %d, collection has %s",
					ErrIncompatible, key, node.Support(), i, c.supports[i])
			}
		}
	}

	c.nets[key] = net
	return nil
}

// Get returns the network registered under key.
func (c *NetworkCollection) Get(key string) (*Network, error) {
	net, ok := c.nets[key]
	if !ok {
		return nil, fmt.Errorf("%w: no network for key %q", ErrNotFound, key)
	}
	return net, nil
}

// Keys returns the registered keys in sorted order.
func (c *NetworkCollection) Keys() []string {
	keys := make([]string, 0, len(c.nets))
	for key := range c.nets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of registered networks.
func (c *NetworkCollection) Len() int {
	return len(c.nets)
}
