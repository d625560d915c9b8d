package spantree

import "mergelint/internal/source"

// WarnKind classifies a structural warning from the scanner.
type WarnKind uint8

const (
	// WarnExtraClose is a '}' with no open span to close.
	WarnExtraClose WarnKind = iota
	// WarnExtraOpen is a '{' still open when the scan ends.
	WarnExtraOpen
)

// Reporter is a thin local interface so the scanner does not depend on the
// diagnostic layer. The caller composes the bridge; a nil reporter drops
// warnings but the scan still completes.
type Reporter interface {
	Report(kind WarnKind, span source.Span, msg string)
}
