package diag

import (
	"fmt"
)

// Code is a compact identifier for a class of findings. Ranges:
// 1xxx I/O, 2xxx brace structure, 3xxx directives, 4xxx observability.
type Code uint16

const (
	UnknownCode Code = 0

	// I/O
	IOLoadFileError Code = 1001
	IOWalkError     Code = 1002

	// Brace structure (span tree builder)
	ScanExtraCloseBrace Code = 2001
	ScanExtraOpenBrace  Code = 2002

	// Directives (checker)
	DirExtraEndIf Code = 3001
	DirExtraIf    Code = 3002
	DirAskFound   Code = 3003
	DirInputFound Code = 3004

	// Observability
	ObsTimings Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown issue",

	IOLoadFileError: "Failed to load file",
	IOWalkError:     "Failed to enumerate directory",

	ScanExtraCloseBrace: "Closing brace without a matching open brace",
	ScanExtraOpenBrace:  "Opening brace never closed",

	DirExtraEndIf: "'End If' without a matching 'If' in its scope",
	DirExtraIf:    "'If' without a matching 'End If' in its scope",
	DirAskFound:   "'ASK' directive flagged for review",
	DirInputFound: "'INPUT' directive flagged for review",

	ObsTimings: "Analysis timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SCN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("DIR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
