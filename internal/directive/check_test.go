package directive

import (
	"testing"

	"mergelint/internal/diag"
	"mergelint/internal/source"
	"mergelint/internal/spantree"
)

type nopScanReporter struct{}

func (nopScanReporter) Report(spantree.WarnKind, source.Span, string) {}

func analyze(t *testing.T, text string, opts Options) *diag.Bag {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.tpl", []byte(text))
	tree := spantree.Build(fs.Get(id), nopScanReporter{})
	bag := diag.NewBag(100)
	Check(tree, opts, diag.BagReporter{Bag: bag})
	return bag
}

func countCode(bag *diag.Bag, code diag.Code) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func TestCheckBalancedIf(t *testing.T) {
	bag := analyze(t, "{IF cond}hello{END IF}", Options{})
	if bag.Len() != 0 {
		t.Errorf("diagnostics = %d, want 0", bag.Len())
	}
}

func TestCheckExtraEndIf(t *testing.T) {
	bag := analyze(t, "text {END IF} more", Options{})
	if countCode(bag, diag.DirExtraEndIf) != 1 {
		t.Fatalf("extra end-if count = %d, want 1", countCode(bag, diag.DirExtraEndIf))
	}
	d := bag.Items()[0]
	if d.Message != "Extra 'End If' command is found as following" {
		t.Errorf("message = %q", d.Message)
	}
	if d.Primary.Start != 5 {
		t.Errorf("anchor = %d, want 5", d.Primary.Start)
	}
	if len(d.Fixes) != 1 {
		t.Errorf("fixes = %d, want removal suggestion", len(d.Fixes))
	}
}

func TestCheckExtraIf(t *testing.T) {
	bag := analyze(t, "{IF a} body", Options{})
	if countCode(bag, diag.DirExtraIf) != 1 {
		t.Fatalf("extra if count = %d, want 1", countCode(bag, diag.DirExtraIf))
	}
	d := bag.Items()[0]
	if d.Message != "Extra 'If' command is found as following" {
		t.Errorf("message = %q", d.Message)
	}
	if len(d.Notes) != 1 {
		t.Errorf("notes = %d, want 1", len(d.Notes))
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Edits[0].NewText != "{END IF}" {
		t.Errorf("expected an insert-{END IF} fix, got %+v", d.Fixes)
	}
}

func TestCheckMultipleOpenIfsOneDiagnostic(t *testing.T) {
	// Both IFs are direct children of the root: one scope, one diagnostic.
	bag := analyze(t, "{IF a}{IF b} x", Options{})
	if countCode(bag, diag.DirExtraIf) != 1 {
		t.Fatalf("extra if diagnostics = %d, want 1", countCode(bag, diag.DirExtraIf))
	}
	d := bag.Items()[0]
	if len(d.Notes) != 2 {
		t.Fatalf("notes = %d, want 2", len(d.Notes))
	}
	// Most recently opened first.
	if d.Notes[0].Span.Start != 6 || d.Notes[1].Span.Start != 0 {
		t.Errorf("note order = %d,%d, want 6,0", d.Notes[0].Span.Start, d.Notes[1].Span.Start)
	}
}

func TestCheckScopeLocality(t *testing.T) {
	// The IF is opened at root level but the END IF sits inside a sibling
	// wrapper span: they must NOT pair across scopes.
	bag := analyze(t, "{IF a} {x{END IF}}", Options{})
	if countCode(bag, diag.DirExtraIf) != 1 {
		t.Errorf("extra if = %d, want 1", countCode(bag, diag.DirExtraIf))
	}
	if countCode(bag, diag.DirExtraEndIf) != 1 {
		t.Errorf("extra end-if = %d, want 1", countCode(bag, diag.DirExtraEndIf))
	}
}

func TestCheckNestedBalanced(t *testing.T) {
	bag := analyze(t, "{block {IF a}x{END IF}}{IF b}{END IF}", Options{})
	if bag.Len() != 0 {
		t.Errorf("diagnostics = %d, want 0; got %+v", bag.Len(), bag.Items())
	}
}

func TestCheckAdvisories(t *testing.T) {
	bag := analyze(t, "{ASK(name?)} and {INPUT city}", Options{})
	if countCode(bag, diag.DirAskFound) != 1 {
		t.Errorf("ask advisories = %d, want 1", countCode(bag, diag.DirAskFound))
	}
	if countCode(bag, diag.DirInputFound) != 1 {
		t.Errorf("input advisories = %d, want 1", countCode(bag, diag.DirInputFound))
	}
	for _, d := range bag.Items() {
		if d.Severity != diag.SevInfo {
			t.Errorf("advisory severity = %v, want SevInfo", d.Severity)
		}
	}
	if bag.HasWarnings() {
		t.Error("advisories alone must not count as warnings")
	}
}

func TestCheckAdvisoryMessages(t *testing.T) {
	bag := analyze(t, "{ASK(q)}{INPUT x}", Options{})
	var asks, inputs int
	for _, d := range bag.Items() {
		switch d.Message {
		case "'ASK' function is found as following":
			asks++
		case "'INPUT' command is found as following":
			inputs++
		}
	}
	if asks != 1 || inputs != 1 {
		t.Errorf("asks=%d inputs=%d, want 1 and 1", asks, inputs)
	}
}

func TestCheckUnmatchedSpansSkipped(t *testing.T) {
	// The unclosed {IF is not classified; only structural warnings apply
	// (and those come from the scanner, not the checker).
	bag := analyze(t, "{IF a", Options{})
	if bag.Len() != 0 {
		t.Errorf("diagnostics = %d, want 0 from the checker", bag.Len())
	}
}

func TestCheckGated(t *testing.T) {
	malformed := "} {IF a}"
	bag := analyze(t, malformed, Options{Gated: true})
	if bag.Len() != 0 {
		t.Errorf("gated check on malformed tree reported %d diagnostics", bag.Len())
	}
	bag = analyze(t, malformed, Options{Gated: false})
	if countCode(bag, diag.DirExtraIf) != 1 {
		t.Error("tolerant check should still report the unmatched IF")
	}
}

func TestCheckAppendOnlyNotIdempotent(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.tpl", []byte("{IF a}"))
	tree := spantree.Build(fs.Get(id), nopScanReporter{})
	bag := diag.NewBag(100)
	r := diag.BagReporter{Bag: bag}
	Check(tree, Options{}, r)
	Check(tree, Options{}, r)
	if bag.Len() != 2 {
		t.Errorf("two runs reported %d diagnostics, want 2 (append-only)", bag.Len())
	}
}

// Conservation: per scope, notes on the Extra-If diagnostic plus paired IFs
// equal the number of IF-classified direct children.
func TestIfConservation(t *testing.T) {
	tests := []struct {
		name string
		text string
		ifs  int
	}{
		{name: "all paired", text: "{IF a}{END IF}{IF b}{END IF}", ifs: 2},
		{name: "one open", text: "{IF a}{IF b}{END IF}", ifs: 2},
		{name: "all open", text: "{IF a}{IF b}{IF c}", ifs: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := analyze(t, tt.text, Options{})
			unmatched := 0
			for _, d := range bag.Items() {
				if d.Code == diag.DirExtraIf {
					unmatched += len(d.Notes)
				}
			}
			endIfs := 0
			for _, d := range bag.Items() {
				if d.Code == diag.DirExtraEndIf {
					endIfs++
				}
			}
			paired := countDirectIfs(t, tt.text) - unmatched
			if paired+unmatched != tt.ifs {
				t.Errorf("paired(%d)+unmatched(%d) != ifs(%d)", paired, unmatched, tt.ifs)
			}
			if endIfs != 0 {
				t.Errorf("unexpected extra end-if reports: %d", endIfs)
			}
		})
	}
}

func countDirectIfs(t *testing.T, text string) int {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.tpl", []byte(text))
	tree := spantree.Build(fs.Get(id), nopScanReporter{})
	root := tree.Node(tree.Root())
	n := 0
	for _, child := range root.Children {
		if tree.Node(child).Matched() && Classify(tree.Text(child)) == KindIf {
			n++
		}
	}
	return n
}
