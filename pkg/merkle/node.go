// Package merkle chains chat turns into content-addressed nodes so a history
// has a single head hash that identifies its whole ordered content.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Node represents a single content-addressed entry in a history chain
type Node struct {
	// Hash is the content-addressed identifier (SHA-256, hex-encoded)
	Hash string `json:"hash"`

	// ParentHash links to the previous node hash.
	// This will be nil for the first node of a chain.
	ParentHash *string `json:"parent_hash"`

	// Content is the hashable content for the node
	Content any `json:"content"`
}

type input struct {
	Parent  string `json:"parent,omitempty"`
	Content any    `json:"content"`
}

// NewNode creates a new node with the computed hash for the provided content
func NewNode(content any, parent *Node) *Node {
	n := &Node{
		Content: content,
	}

	if parent != nil {
		h := parent.Hash
		n.ParentHash = &h
	}

	n.Hash = n.computeHash()
	return n
}

// Valid reports whether the stored hash matches the node's content and parent.
func (n *Node) Valid() bool {
	return n.Hash == n.computeHash()
}

func (n *Node) computeHash() string {
	i := &input{
		Content: n.Content,
	}

	if n.ParentHash != nil {
		i.Parent = *n.ParentHash
	}

	// Canonical JSON encoding for deterministic hashing
	data, err := json.Marshal(i)
	if err != nil {
		panic("failed to marshal hash input: " + err.Error())
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
