package merkle

import "fmt"

// Chain is an append-only sequence of nodes where every node links to the one
// before it. It is not safe for concurrent use.
type Chain struct {
	nodes []*Node
}

// Append adds content as a new head node and returns it.
func (c *Chain) Append(content any) *Node {
	node := NewNode(content, c.Head())
	c.nodes = append(c.nodes, node)
	return node
}

// Head returns the most recent node, or nil for an empty chain.
func (c *Chain) Head() *Node {
	if len(c.nodes) == 0 {
		return nil
	}
	return c.nodes[len(c.nodes)-1]
}

// HeadHash returns the hash of the head node, or "" for an empty chain.
func (c *Chain) HeadHash() string {
	if head := c.Head(); head != nil {
		return head.Hash
	}
	return ""
}

// Len returns the number of nodes in the chain.
func (c *Chain) Len() int {
	return len(c.nodes)
}

// Nodes returns the nodes oldest first.
func (c *Chain) Nodes() []*Node {
	out := make([]*Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// Verify recomputes every hash and parent link.
func (c *Chain) Verify() error {
	var prev *Node
	for i, n := range c.nodes {
		if !n.Valid() {
			return fmt.Errorf("node %d: hash mismatch", i)
		}
		switch {
		case prev == nil && n.ParentHash != nil:
			return fmt.Errorf("node %d: first node has a parent", i)
		case prev != nil && (n.ParentHash == nil || *n.ParentHash != prev.Hash):
			return fmt.Errorf("node %d: broken parent link", i)
		}
		prev = n
	}
	return nil
}
