package diag

import (
	"fmt"
	"sort"
	"strings"

	"mergelint/internal/source"
)

type shortEntry struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShort renders diagnostics into a stable single-line-per-entry form
// suitable for golden files and CLI short output. Entries are sorted
// deterministically; the result is "" when nothing remains.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	rendered := make([]shortEntry, 0, len(diags))
	for _, d := range diags {
		start, _ := fs.Resolve(d.Primary)
		file := fs.Get(d.Primary.File)
		rendered = append(rendered, shortEntry{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Path:     file.Path,
			Line:     start.Line,
			Column:   start.Col,
			Message:  d.Message,
		})
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			nstart, _ := fs.Resolve(n.Span)
			nfile := fs.Get(n.Span.File)
			rendered = append(rendered, shortEntry{
				Severity: "NOTE",
				Code:     d.Code.ID(),
				Path:     nfile.Path,
				Line:     nstart.Line,
				Column:   nstart.Col,
				Message:  n.Msg,
			})
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, e := range rendered {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s:%d:%d: %s %s: %s", e.Path, e.Line, e.Column, e.Severity, e.Code, e.Message)
	}
	return b.String()
}
