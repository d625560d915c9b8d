package directive

import (
	"mergelint/internal/diag"
	"mergelint/internal/source"
	"mergelint/internal/spantree"
)

// Options configures the checker.
type Options struct {
	// Gated skips directive checks entirely unless the brace tree is
	// fully well-formed. Default is tolerant: check even malformed trees,
	// since they surface more findings.
	Gated bool
}

const (
	msgExtraEndIf = "Extra 'End If' command is found as following"
	msgExtraIf    = "Extra 'If' command is found as following"
	msgAskFound   = "'ASK' function is found as following"
	msgInputFound = "'INPUT' command is found as following"
)

// Check walks the span tree and verifies directive usage: IF/END IF pairing
// per scope (the direct children of one parent), plus advisory ASK/INPUT
// findings. Diagnostics are append-only; running Check twice reports twice.
func Check(t *spantree.Tree, opts Options, r diag.Reporter) {
	if opts.Gated && !t.WellFormed() {
		return
	}
	checkScope(t, t.Root(), r)
}

// checkScope verifies one parent's direct children. Children are recursed
// into first so nested violations are attached to the inner scope. IF/END IF
// balance is a counting discipline local to this scope: an IF opened here
// cannot be closed by an END IF in a sibling subtree.
func checkScope(t *spantree.Tree, id spantree.NodeID, r diag.Reporter) {
	node := t.Node(id)
	if len(node.Children) == 0 {
		return
	}

	var open []spantree.NodeID
	for _, childID := range node.Children {
		checkScope(t, childID, r)

		child := t.Node(childID)
		if !child.Matched() {
			// Only well-formed spans participate in directive semantics.
			continue
		}
		text := t.Text(childID)

		if ContainsAsk(text) {
			diag.ReportInfo(r, diag.DirAskFound, t.Span(childID), msgAskFound).Emit()
		}

		switch Classify(text) {
		case KindInput:
			diag.ReportInfo(r, diag.DirInputFound, t.Span(childID), msgInputFound).Emit()

		case KindIf:
			open = append(open, childID)

		case KindEndIf:
			if len(open) == 0 {
				diag.ReportWarning(r, diag.DirExtraEndIf, t.Span(childID), msgExtraEndIf).
					WithFix("remove extra 'End If'", diag.FixEdit{Span: t.Span(childID)}).
					Emit()
				continue
			}
			open = open[:len(open)-1]
		}
	}

	if len(open) == 0 {
		return
	}

	// One diagnostic per scope, anchored at the most recently opened IF,
	// with a note for every IF still open (most recent first).
	b := diag.ReportWarning(r, diag.DirExtraIf, t.Span(open[len(open)-1]), msgExtraIf)
	for i := len(open) - 1; i >= 0; i-- {
		b.WithNote(t.Span(open[i]), "'If' opened here was never closed in this scope")
	}
	if at, ok := scopeCloseOffset(t, id); ok {
		b.WithFix("insert '{END IF}' before the scope ends", diag.FixEdit{
			Span:    sameFilePoint(t, at),
			NewText: "{END IF}",
		})
	}
	b.Emit()
}

// scopeCloseOffset returns the byte offset just before the scope's closing
// brace (or the end of the buffer for the root). Unmatched parents have no
// usable insertion point.
func scopeCloseOffset(t *spantree.Tree, id spantree.NodeID) (uint32, bool) {
	node := t.Node(id)
	if node.IsRoot() {
		return t.Span(id).End, true
	}
	if !node.Matched() {
		return 0, false
	}
	return uint32(node.End), true
}

func sameFilePoint(t *spantree.Tree, at uint32) source.Span {
	return source.Span{File: t.Source().ID, Start: at, End: at}
}
