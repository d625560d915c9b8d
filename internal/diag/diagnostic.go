package diag

import (
	"mergelint/internal/source"
)

// Note attaches a secondary span with its own message to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// FixEdit is a single replacement inside the analyzed buffer.
type FixEdit struct {
	Span    source.Span
	NewText string
}

// Fix is a suggested correction: a short title plus the edits realizing it.
type Fix struct {
	Title string
	Edits []FixEdit
}

// Diagnostic is one finding anchored at a primary span.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewWarning(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevWarning, code, primary, msg)
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(title string, edits ...FixEdit) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{Title: title, Edits: edits})
	return d
}
