package spantree

import (
	"fmt"

	"fortio.org/safecast"

	"mergelint/internal/source"
)

// Warning texts are fixed; the renderer prints the offending context right
// below each one.
const (
	msgExtraClose = "Extra '}' found as following"
	msgExtraOpen  = "Extra '{' found as following"
)

// Build scans the document once and produces the span tree. Malformed
// input never aborts the scan: an unmatched '}' is reported and skipped, an
// unmatched '{' is reported when the scan ends and left with a sentinel
// End. The returned tree always has exactly one root.
func Build(file *source.File, r Reporter) *Tree {
	length, err := safecast.Conv[int32](len(file.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	t := &Tree{
		src:        file,
		nodes:      make([]Node, 1, 8),
		wellFormed: true,
	}
	t.nodes[0] = Node{
		Start:      -1,
		End:        length,
		Parent:     NoNode,
		WellFormed: true,
	}

	report := func(kind WarnKind, at int32, msg string) {
		if r == nil {
			return
		}
		start := uint32(at)
		r.Report(kind, source.Span{File: file.ID, Start: start, End: start + 1}, msg)
	}

	stack := []NodeID{t.Root()}
	for i := int32(0); i < length; i++ {
		switch file.Content[i] {
		case '{':
			parent := stack[len(stack)-1]
			id := NodeID(len(t.nodes))
			t.nodes = append(t.nodes, Node{
				Start:      i,
				End:        -1,
				Parent:     parent,
				WellFormed: true,
			})
			t.nodes[parent].Children = append(t.nodes[parent].Children, id)
			stack = append(stack, id)

		case '}':
			if len(stack) == 1 {
				// Nothing open: tolerate and keep scanning.
				report(WarnExtraClose, i, msgExtraClose)
				t.markMalformed(stack[0])
				continue
			}
			top := stack[len(stack)-1]
			t.nodes[top].End = i
			stack = stack[:len(stack)-1]
		}
	}

	// Anything still open below the root never found its '}'. Report
	// deepest-first.
	for len(stack) > 1 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		report(WarnExtraOpen, t.nodes[top].Start, msgExtraOpen)
		t.markMalformed(top)
	}

	return t
}

// markMalformed clears WellFormed on the node and every ancestor.
func (t *Tree) markMalformed(id NodeID) {
	t.wellFormed = false
	for id != NoNode {
		t.nodes[id].WellFormed = false
		id = t.nodes[id].Parent
	}
}
