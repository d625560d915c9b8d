package directive

import "regexp"

// Kind is the closed set of directive shapes a span can take. A span
// matches at most one Kind; ASK detection is independent (see ContainsAsk).
type Kind uint8

const (
	KindOther Kind = iota
	KindIf
	KindEndIf
	KindInput
)

func (k Kind) String() string {
	switch k {
	case KindIf:
		return "IF"
	case KindEndIf:
		return "END IF"
	case KindInput:
		return "INPUT"
	}
	return "OTHER"
}

// Whole-span shapes, case-insensitive, dot matches newline because spans
// may wrap lines. Ordered checks: END IF before IF keeps the keyword sets
// disjoint without lookahead.
var (
	reEndIf = regexp.MustCompile(`(?is)^\{\s*end\s+if\s*\}$`)
	reIf    = regexp.MustCompile(`(?is)^\{\s*if\s.*\}$`)
	reInput = regexp.MustCompile(`(?is)^\{\s*input\s.*\}$`)
	reAsk   = regexp.MustCompile(`(?is)ask\s*(\(.*?\))?`)
)

// Classify maps the literal "{...}" text of a span to its directive kind.
// It is a pure function; callers must pass matched spans only.
func Classify(text []byte) Kind {
	switch {
	case reEndIf.Match(text):
		return KindEndIf
	case reIf.Match(text):
		return KindIf
	case reInput.Match(text):
		return KindInput
	}
	return KindOther
}

// ContainsAsk reports whether the span text contains an ASK invocation:
// the literal "ask" anywhere inside the braces, optionally followed by a
// parenthesized argument. Advisory only; independent of Classify.
func ContainsAsk(text []byte) bool {
	return reAsk.Match(text)
}
