package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses a readable form automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

func (m PathMode) key() string {
	switch m {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	}
	return "auto"
}

// DefaultContextPadding is the number of characters of surrounding text
// included on each side of a flagged span.
const DefaultContextPadding = 35

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color          bool
	ContextPadding int // characters of context each side; <0 means default
	PathMode       PathMode
	ShowNotes      bool
	ShowFixes      bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // add line/col to each entry
	PathMode         PathMode
	IncludeNotes     bool
	IncludeFixes     bool
}
