// Package diag defines the diagnostic model shared by all analysis phases.
//
// Diagnostic is the central record: a Severity, a compact Code, a short
// message, a primary source.Span anchoring the finding, optional Notes
// (secondary spans with their own messages) and optional Fixes (structured
// edit suggestions). Producers emit through the Reporter interface so they
// stay decoupled from storage; Bag is the default sink and provides
// deterministic ordering and deduplication for output layers.
//
// Package diag performs no formatting and no IO. Rendering lives in
// internal/diagfmt; orchestration lives in internal/driver.
package diag
