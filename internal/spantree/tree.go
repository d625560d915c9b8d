package spantree

import (
	"fmt"

	"fortio.org/safecast"

	"mergelint/internal/source"
)

// NodeID is an index into the tree's node arena. The implicit root is
// always node 0.
type NodeID int32

// NoNode is the parent of the root and the End of an unclosed span.
const NoNode NodeID = -1

// Node is one brace-delimited region of the document. Start is the offset
// of '{' (-1 for the root), End is the offset of the matching '}' (-1 while
// unmatched; the buffer length for the root). Children are ordered by the
// offset of their opening brace.
type Node struct {
	Start      int32
	End        int32
	Parent     NodeID
	Children   []NodeID
	WellFormed bool
}

// Matched reports whether the span found its closing brace.
func (n *Node) Matched() bool {
	return n.End >= 0
}

// IsRoot reports whether the node is the implicit whole-document span.
func (n *Node) IsRoot() bool {
	return n.Start < 0
}

// Tree is the arena of spans built from one document. It is mutable during
// Build and read-only afterwards.
type Tree struct {
	src        *source.File
	nodes      []Node
	wellFormed bool
}

// Root returns the ID of the implicit root span.
func (t *Tree) Root() NodeID { return 0 }

// Node returns the node for the given ID.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Len returns the number of spans including the root.
func (t *Tree) Len() int { return len(t.nodes) }

// Source returns the document the tree was built from.
func (t *Tree) Source() *source.File { return t.src }

// WellFormed reports whether the scan finished without structural warnings.
func (t *Tree) WellFormed() bool { return t.wellFormed }

// Text returns the literal "{...}" bytes of a matched span, the whole
// buffer for the root, and nil for an unmatched span.
func (t *Tree) Text(id NodeID) []byte {
	n := &t.nodes[id]
	if n.IsRoot() {
		return t.src.Content
	}
	if !n.Matched() {
		return nil
	}
	return t.src.Content[n.Start : n.End+1]
}

// Span converts a node into a source.Span. Matched spans cover '{' through
// '}' inclusive; unmatched spans cover just the opening brace; the root
// covers the whole buffer.
func (t *Tree) Span(id NodeID) source.Span {
	n := &t.nodes[id]
	if n.IsRoot() {
		end, err := safecast.Conv[uint32](len(t.src.Content))
		if err != nil {
			panic(fmt.Errorf("content length overflow: %w", err))
		}
		return source.Span{File: t.src.ID, Start: 0, End: end}
	}
	start := uint32(n.Start)
	if !n.Matched() {
		return source.Span{File: t.src.ID, Start: start, End: start + 1}
	}
	return source.Span{File: t.src.ID, Start: start, End: uint32(n.End) + 1}
}

// Depth returns the maximum nesting depth: 0 for a childless root, 1 for a
// top-level brace pair, and so on.
func (t *Tree) Depth() int {
	var walk func(id NodeID) int
	walk = func(id NodeID) int {
		deepest := 0
		for _, child := range t.nodes[id].Children {
			if d := walk(child); d > deepest {
				deepest = d
			}
		}
		return deepest + 1
	}
	// The root itself does not count as a level.
	return walk(t.Root()) - 1
}
