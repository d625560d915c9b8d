package diagfmt

import (
	"encoding/json"
	"io"

	"mergelint/internal/diag"
	"mergelint/internal/source"
)

// DiagnosticJSON is the machine-readable form of one finding.
type DiagnosticJSON struct {
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	Message  string     `json:"message"`
	Path     string     `json:"path"`
	Start    uint32     `json:"start"`
	End      uint32     `json:"end"`
	Line     uint32     `json:"line,omitempty"`
	Column   uint32     `json:"column,omitempty"`
	Notes    []NoteJSON `json:"notes,omitempty"`
	Fixes    []FixJSON  `json:"fixes,omitempty"`
}

// NoteJSON is a secondary span attached to a diagnostic.
type NoteJSON struct {
	Message string `json:"message"`
	Start   uint32 `json:"start"`
	End     uint32 `json:"end"`
	Line    uint32 `json:"line,omitempty"`
	Column  uint32 `json:"column,omitempty"`
}

// FixJSON is a suggested correction.
type FixJSON struct {
	Title string        `json:"title"`
	Edits []FixEditJSON `json:"edits"`
}

// FixEditJSON is one replacement of a byte range.
type FixEditJSON struct {
	Start   uint32 `json:"start"`
	End     uint32 `json:"end"`
	NewText string `json:"new_text"`
}

// DiagnosticsOutput groups the findings of one document.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
}

// BuildDiagnosticsOutput converts a bag into its JSON form.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0, bag.Len()),
	}
	for _, d := range bag.Items() {
		file := fs.Get(d.Primary.File)
		entry := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Path:     file.FormatPath(opts.PathMode.key(), fs.BaseDir()),
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		if opts.IncludePositions {
			start, _ := fs.Resolve(d.Primary)
			entry.Line = start.Line
			entry.Column = start.Col
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				note := NoteJSON{
					Message: n.Msg,
					Start:   n.Span.Start,
					End:     n.Span.End,
				}
				if opts.IncludePositions {
					nstart, _ := fs.Resolve(n.Span)
					note.Line = nstart.Line
					note.Column = nstart.Col
				}
				entry.Notes = append(entry.Notes, note)
			}
		}
		if opts.IncludeFixes {
			for _, f := range d.Fixes {
				fix := FixJSON{Title: f.Title}
				for _, e := range f.Edits {
					fix.Edits = append(fix.Edits, FixEditJSON{
						Start:   e.Span.Start,
						End:     e.Span.End,
						NewText: e.NewText,
					})
				}
				entry.Fixes = append(entry.Fixes, fix)
			}
		}
		out.Diagnostics = append(out.Diagnostics, entry)
	}
	return out
}

// JSON writes the bag as indented JSON.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
