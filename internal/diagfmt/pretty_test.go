package diagfmt

import (
	"strings"
	"testing"

	"mergelint/internal/diag"
	"mergelint/internal/source"
)

func makeBag(fs *source.FileSet, id source.FileID) *diag.Bag {
	bag := diag.NewBag(10)
	bag.Add(diag.NewWarning(diag.ScanExtraCloseBrace,
		source.Span{File: id, Start: 6, End: 7},
		"Extra '}' found as following"))
	return bag
}

func TestPrettyHeaderAndCaret(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("letter.tpl", []byte("Dear }customer"))
	bag := makeBag(fs, id)

	var out strings.Builder
	Pretty(&out, bag, fs, PrettyOpts{ContextPadding: 5})
	got := out.String()

	if !strings.Contains(got, "letter.tpl:1:7: WARNING SCN2001: Extra '}' found as following") {
		t.Errorf("missing header line in:\n%s", got)
	}
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), got)
	}
	ctx := strings.TrimPrefix(lines[1], "    ")
	marker := strings.TrimRight(strings.TrimPrefix(lines[2], "    "), " ")
	caret := strings.Index(marker, "^")
	if caret < 0 || ctx[caret] != '}' {
		t.Errorf("caret does not underline the brace:\n%q\n%q", ctx, marker)
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.tpl", []byte("{IF a} body"))
	bag := diag.NewBag(10)
	bag.Add(diag.NewWarning(diag.DirExtraIf, source.Span{File: id, Start: 0, End: 6},
		"Extra 'If' command is found as following").
		WithNote(source.Span{File: id, Start: 0, End: 6}, "'If' opened here was never closed in this scope").
		WithFix("insert '{END IF}' before the scope ends"))

	var out strings.Builder
	Pretty(&out, bag, fs, PrettyOpts{ContextPadding: 10, ShowNotes: true, ShowFixes: true})
	got := out.String()
	if !strings.Contains(got, "note: 'If' opened here") {
		t.Errorf("missing note in:\n%s", got)
	}
	if !strings.Contains(got, "fix: insert '{END IF}'") {
		t.Errorf("missing fix in:\n%s", got)
	}
}

func TestPrettyDefaultPadding(t *testing.T) {
	fs := source.NewFileSet()
	long := strings.Repeat("x", 200) + "}" + strings.Repeat("y", 200)
	id := fs.AddVirtual("t.tpl", []byte(long))
	bag := diag.NewBag(10)
	bag.Add(diag.NewWarning(diag.ScanExtraCloseBrace,
		source.Span{File: id, Start: 200, End: 201}, "Extra '}' found as following"))

	var out strings.Builder
	Pretty(&out, bag, fs, PrettyOpts{ContextPadding: -1})
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	ctx := strings.TrimPrefix(lines[1], "    ")
	if len(ctx) != 2*DefaultContextPadding+1 {
		t.Errorf("context width = %d, want %d", len(ctx), 2*DefaultContextPadding+1)
	}
}

func TestJSONOutput(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.tpl", []byte("{END IF}"))
	bag := diag.NewBag(10)
	bag.Add(diag.NewWarning(diag.DirExtraEndIf, source.Span{File: id, Start: 0, End: 8},
		"Extra 'End If' command is found as following").
		WithFix("remove extra 'End If'", diag.FixEdit{Span: source.Span{File: id, Start: 0, End: 8}}))

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{
		IncludePositions: true,
		IncludeFixes:     true,
	})
	if len(out.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if d.Code != "DIR3001" || d.Line != 1 || d.Column != 1 {
		t.Errorf("entry = %+v", d)
	}
	if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 1 {
		t.Errorf("fixes = %+v", d.Fixes)
	}
}
