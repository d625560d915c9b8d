package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"mergelint/internal/directive"
	"mergelint/internal/spantree"
)

// FormatTreePretty dumps the span tree as an indented outline: offsets,
// directive kind and a short excerpt per span.
func FormatTreePretty(w io.Writer, tree *spantree.Tree) error {
	var walk func(id spantree.NodeID, depth int) error
	walk = func(id spantree.NodeID, depth int) error {
		node := tree.Node(id)
		indent := strings.Repeat("  ", depth)

		var err error
		switch {
		case node.IsRoot():
			_, err = fmt.Fprintf(w, "%sroot [0..%d] children=%d\n", indent, node.End, len(node.Children))
		case !node.Matched():
			_, err = fmt.Fprintf(w, "%sspan [%d..?] UNCLOSED\n", indent, node.Start)
		default:
			text := tree.Text(id)
			kind := directive.Classify(text)
			label := ""
			if kind != directive.KindOther {
				label = " " + kind.String()
			}
			if directive.ContainsAsk(text) {
				label += " ASK"
			}
			_, err = fmt.Fprintf(w, "%sspan [%d..%d]%s %s\n", indent, node.Start, node.End, label, excerpt(text))
		}
		if err != nil {
			return err
		}
		for _, child := range node.Children {
			if err := walk(child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(tree.Root(), 0)
}

func excerpt(text []byte) string {
	const maxLen = 40
	s := strings.Map(func(r rune) rune {
		switch r {
		case '\n':
			return '-'
		case '\t':
			return ' '
		}
		return r
	}, string(text))
	if len(s) > maxLen {
		s = s[:maxLen-3] + "..."
	}
	return s
}

type treeNodeJSON struct {
	Start      int32          `json:"start"`
	End        int32          `json:"end"`
	Kind       string         `json:"kind,omitempty"`
	Ask        bool           `json:"ask,omitempty"`
	WellFormed bool           `json:"well_formed"`
	Children   []treeNodeJSON `json:"children,omitempty"`
}

// FormatTreeJSON dumps the span tree as nested JSON.
func FormatTreeJSON(w io.Writer, tree *spantree.Tree) error {
	var build func(id spantree.NodeID) treeNodeJSON
	build = func(id spantree.NodeID) treeNodeJSON {
		node := tree.Node(id)
		out := treeNodeJSON{
			Start:      node.Start,
			End:        node.End,
			WellFormed: node.WellFormed,
		}
		if !node.IsRoot() && node.Matched() {
			text := tree.Text(id)
			if kind := directive.Classify(text); kind != directive.KindOther {
				out.Kind = kind.String()
			}
			out.Ask = directive.ContainsAsk(text)
		}
		for _, child := range node.Children {
			out.Children = append(out.Children, build(child))
		}
		return out
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(build(tree.Root()))
}
