package schema

import (
	"fmt"
	"reflect"

	"github.com/samber/lo"

	"github.com/reoring/transpose/naming"
)

// Collection is the sealed set of nodes describing one struct type. Lookups
// are case, whitespace and separator insensitive; iteration keeps declaration
// order.
type Collection struct {
	typ   reflect.Type
	nodes []Node
	index map[string]int
}

// NewCollection indexes nodes by normalised wire name. Two nodes sharing a
// normalised name are a definition error.
func NewCollection(t reflect.Type, nodes ...Node) (*Collection, error) {
	c := &Collection{typ: t, nodes: append([]Node(nil), nodes...), index: make(map[string]int, len(nodes))}
	for i, n := range c.nodes {
		key := naming.Normalize(n.WireName())
		if j, dup := c.index[key]; dup {
			return nil, &DefinitionError{Type: t, Field: n.Name(), Err: fmt.Errorf("%w: %q and %q", ErrDuplicateProperty, c.nodes[j].WireName(), n.WireName())}
		}
		c.index[key] = i
	}
	return c, nil
}

// Type is the struct type described, or nil for hand-built collections.
func (c *Collection) Type() reflect.Type { return c.typ }

// Len returns the number of nodes.
func (c *Collection) Len() int { return len(c.nodes) }

// Nodes returns the nodes in declaration order.
func (c *Collection) Nodes() []Node { return append([]Node(nil), c.nodes...) }

// WireNames returns the wire names in declaration order.
func (c *Collection) WireNames() []string {
	return lo.Map(c.nodes, func(n Node, _ int) string { return n.WireName() })
}

// Lookup finds the node for an input key.
func (c *Collection) Lookup(key string) (Node, bool) {
	i, ok := c.index[naming.Normalize(key)]
	if !ok {
		return nil, false
	}
	return c.nodes[i], true
}

// Add always fails: collections are sealed after construction.
func (c *Collection) Add(Node) error { return ErrSealed }

// Remove always fails: collections are sealed after construction.
func (c *Collection) Remove(string) error { return ErrSealed }
