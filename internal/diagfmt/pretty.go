package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"mergelint/internal/diag"
	"mergelint/internal/source"
)

type palette struct {
	sev    map[diag.Severity]func(a ...interface{}) string
	caret  func(a ...interface{}) string
	fixTag func(a ...interface{}) string
}

func newPalette(enabled bool) palette {
	plain := fmt.Sprint
	p := palette{
		sev: map[diag.Severity]func(a ...interface{}) string{
			diag.SevInfo:    plain,
			diag.SevWarning: plain,
			diag.SevError:   plain,
		},
		caret:  plain,
		fixTag: plain,
	}
	if !enabled {
		return p
	}
	p.sev[diag.SevInfo] = color.New(color.FgCyan).SprintFunc()
	p.sev[diag.SevWarning] = color.New(color.FgYellow, color.Bold).SprintFunc()
	p.sev[diag.SevError] = color.New(color.FgRed, color.Bold).SprintFunc()
	p.caret = color.New(color.FgGreen, color.Bold).SprintFunc()
	p.fixTag = color.New(color.FgMagenta).SprintFunc()
	return p
}

// Pretty renders diagnostics in a human-readable form: a position-anchored
// header line, then the offending context with a caret line underneath,
// then optional notes and fix titles. The bag should be sorted beforehand.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pad := opts.ContextPadding
	if pad < 0 {
		pad = DefaultContextPadding
	}
	pal := newPalette(opts.Color)

	for _, d := range bag.Items() {
		file := fs.Get(d.Primary.File)
		start, _ := fs.Resolve(d.Primary)
		path := file.FormatPath(opts.PathMode.key(), fs.BaseDir())

		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			path, start.Line, start.Col,
			pal.sev[d.Severity](d.Severity.String()), d.Code.ID(), d.Message)
		writeContext(w, pal, file, d.Primary, pad)

		if opts.ShowNotes {
			for _, n := range d.Notes {
				nfile := fs.Get(n.Span.File)
				nstart, _ := fs.Resolve(n.Span)
				fmt.Fprintf(w, "  note: %s (%s:%d:%d)\n", n.Msg,
					nfile.FormatPath(opts.PathMode.key(), fs.BaseDir()),
					nstart.Line, nstart.Col)
				writeContext(w, pal, nfile, n.Span, pad)
			}
		}
		if opts.ShowFixes {
			for _, f := range d.Fixes {
				fmt.Fprintf(w, "  %s: %s\n", pal.fixTag("fix"), f.Title)
			}
		}
	}
}

// writeContext prints one context/caret pair, indented. Spans are
// half-open; Window wants an inclusive tail.
func writeContext(w io.Writer, pal palette, file *source.File, sp source.Span, pad int) {
	if len(file.Content) == 0 {
		return
	}
	tail := sp.End
	if tail > sp.Start {
		tail--
	}
	ctx, marker := Window(file.Content, sp.Start, tail, pad)
	if ctx == "" {
		return
	}
	fmt.Fprintf(w, "    %s\n", ctx)
	fmt.Fprintf(w, "    %s\n", pal.caret(marker))
}
