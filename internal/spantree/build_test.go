package spantree

import (
	"testing"

	"mergelint/internal/source"
)

type recordedWarn struct {
	Kind WarnKind
	Span source.Span
	Msg  string
}

type recorder struct {
	warns []recordedWarn
}

func (r *recorder) Report(kind WarnKind, span source.Span, msg string) {
	r.warns = append(r.warns, recordedWarn{Kind: kind, Span: span, Msg: msg})
}

func buildText(t *testing.T, text string) (*Tree, *recorder) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.tpl", []byte(text))
	rec := &recorder{}
	return Build(fs.Get(id), rec), rec
}

func TestBuildEmpty(t *testing.T) {
	tree, rec := buildText(t, "")
	if len(rec.warns) != 0 {
		t.Errorf("warnings = %d, want 0", len(rec.warns))
	}
	root := tree.Node(tree.Root())
	if len(root.Children) != 0 {
		t.Errorf("root children = %d, want 0", len(root.Children))
	}
	if !tree.WellFormed() {
		t.Error("empty buffer should be well-formed")
	}
	if tree.Depth() != 0 {
		t.Errorf("Depth = %d, want 0", tree.Depth())
	}
}

func TestBuildSinglePair(t *testing.T) {
	tree, rec := buildText(t, "{}")
	if len(rec.warns) != 0 {
		t.Fatalf("warnings = %d, want 0", len(rec.warns))
	}
	root := tree.Node(tree.Root())
	if len(root.Children) != 1 {
		t.Fatalf("root children = %d, want 1", len(root.Children))
	}
	child := tree.Node(root.Children[0])
	if child.Start != 0 || child.End != 1 {
		t.Errorf("child span = [%d,%d], want [0,1]", child.Start, child.End)
	}
	if !child.Matched() || !child.WellFormed {
		t.Error("child should be matched and well-formed")
	}
}

func TestBuildLoneClose(t *testing.T) {
	tree, rec := buildText(t, "}")
	root := tree.Node(tree.Root())
	if len(root.Children) != 0 {
		t.Errorf("root children = %d, want 0", len(root.Children))
	}
	if len(rec.warns) != 1 {
		t.Fatalf("warnings = %d, want 1", len(rec.warns))
	}
	w := rec.warns[0]
	if w.Kind != WarnExtraClose {
		t.Errorf("kind = %d, want WarnExtraClose", w.Kind)
	}
	if w.Span.Start != 0 || w.Span.End != 1 {
		t.Errorf("anchor = [%d,%d), want [0,1)", w.Span.Start, w.Span.End)
	}
	if w.Msg != "Extra '}' found as following" {
		t.Errorf("msg = %q", w.Msg)
	}
	if tree.WellFormed() {
		t.Error("tree should not be well-formed")
	}
}

func TestBuildLoneOpen(t *testing.T) {
	tree, rec := buildText(t, "{")
	root := tree.Node(tree.Root())
	if len(root.Children) != 1 {
		t.Fatalf("root children = %d, want 1", len(root.Children))
	}
	child := tree.Node(root.Children[0])
	if child.Matched() {
		t.Error("child should be unmatched")
	}
	if len(rec.warns) != 1 {
		t.Fatalf("warnings = %d, want 1", len(rec.warns))
	}
	w := rec.warns[0]
	if w.Kind != WarnExtraOpen {
		t.Errorf("kind = %d, want WarnExtraOpen", w.Kind)
	}
	if w.Span.Start != 0 {
		t.Errorf("anchor start = %d, want 0", w.Span.Start)
	}
	if w.Msg != "Extra '{' found as following" {
		t.Errorf("msg = %q", w.Msg)
	}
	if child.WellFormed || tree.Node(tree.Root()).WellFormed {
		t.Error("unmatched chain should be marked malformed")
	}
}

func TestBuildNestedGroups(t *testing.T) {
	tree, rec := buildText(t, "{{}}{{{}}}{}")
	if len(rec.warns) != 0 {
		t.Fatalf("warnings = %d, want 0", len(rec.warns))
	}
	if tree.Depth() != 3 {
		t.Errorf("Depth = %d, want 3", tree.Depth())
	}
	root := tree.Node(tree.Root())
	if len(root.Children) != 3 {
		t.Errorf("root children = %d, want 3", len(root.Children))
	}
	// One leaf per innermost pair.
	leaves := 0
	for id := NodeID(1); int(id) < tree.Len(); id++ {
		if len(tree.Node(id).Children) == 0 {
			leaves++
		}
	}
	if leaves != 3 {
		t.Errorf("leaves = %d, want 3", leaves)
	}
	if tree.Len() != 7 {
		t.Errorf("node count = %d, want 7", tree.Len())
	}
}

func TestBuildCloseThenOpen(t *testing.T) {
	tree, rec := buildText(t, "}{")
	if len(rec.warns) != 2 {
		t.Fatalf("warnings = %d, want 2", len(rec.warns))
	}
	if rec.warns[0].Kind != WarnExtraClose || rec.warns[1].Kind != WarnExtraOpen {
		t.Errorf("kinds = %d,%d", rec.warns[0].Kind, rec.warns[1].Kind)
	}
	if rec.warns[1].Span.Start != 1 {
		t.Errorf("open anchor = %d, want 1", rec.warns[1].Span.Start)
	}
	if tree.WellFormed() {
		t.Error("tree should not be well-formed")
	}
}

func TestBuildUnmatchedOpensDeepestFirst(t *testing.T) {
	_, rec := buildText(t, "{a{b")
	if len(rec.warns) != 2 {
		t.Fatalf("warnings = %d, want 2", len(rec.warns))
	}
	if rec.warns[0].Span.Start != 2 || rec.warns[1].Span.Start != 0 {
		t.Errorf("anchors = %d,%d, want 2,0 (deepest first)",
			rec.warns[0].Span.Start, rec.warns[1].Span.Start)
	}
}

func TestBuildInterleavedText(t *testing.T) {
	tree, rec := buildText(t, "Dear {NAME}, re: {IF a}{x}{END IF}")
	if len(rec.warns) != 0 {
		t.Fatalf("warnings = %d, want 0", len(rec.warns))
	}
	root := tree.Node(tree.Root())
	if len(root.Children) != 4 {
		t.Fatalf("root children = %d, want 4", len(root.Children))
	}
	if got := string(tree.Text(root.Children[0])); got != "{NAME}" {
		t.Errorf("first child text = %q", got)
	}
}

func TestTextAndSpan(t *testing.T) {
	tree, _ := buildText(t, "a{bc}d{")
	root := tree.Node(tree.Root())
	matched := root.Children[0]
	open := root.Children[1]

	if got := string(tree.Text(matched)); got != "{bc}" {
		t.Errorf("Text(matched) = %q", got)
	}
	if tree.Text(open) != nil {
		t.Error("Text(unmatched) should be nil")
	}

	sp := tree.Span(matched)
	if sp.Start != 1 || sp.End != 5 {
		t.Errorf("Span(matched) = [%d,%d), want [1,5)", sp.Start, sp.End)
	}
	sp = tree.Span(open)
	if sp.Start != 6 || sp.End != 7 {
		t.Errorf("Span(unmatched) = [%d,%d), want [6,7)", sp.Start, sp.End)
	}
	sp = tree.Span(tree.Root())
	if sp.Start != 0 || sp.End != 7 {
		t.Errorf("Span(root) = [%d,%d), want [0,7)", sp.Start, sp.End)
	}
}

func TestBuildNilReporterTolerated(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.tpl", []byte("}}{{"))
	tree := Build(fs.Get(id), nil)
	if tree.WellFormed() {
		t.Error("tree should record malformedness even without a reporter")
	}
}
