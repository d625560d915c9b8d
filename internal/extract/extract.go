// Package extract converts rich-text template sources to plain text before
// analysis. It understands a pragmatic RTF subset and is deliberately
// tolerant: any input it cannot make sense of comes back unchanged, so a
// broken document still flows into the analyzer as raw text instead of
// failing the batch.
package extract

import (
	"bytes"
	"errors"

	"golang.org/x/text/encoding/charmap"
)

var rtfMagic = []byte(`{\rtf`)

// Text converts rich-text input to plain text. Plain input and malformed
// rich text are returned unchanged; Text never fails.
func Text(input []byte) []byte {
	if !bytes.HasPrefix(input, rtfMagic) {
		return input
	}
	out, err := decodeRTF(input)
	if err != nil {
		return input
	}
	return out
}

// IsRichText reports whether the input would be treated as RTF.
func IsRichText(input []byte) bool {
	return bytes.HasPrefix(input, rtfMagic)
}

var (
	errUnbalanced = errors.New("unbalanced rtf groups")
	errTruncated  = errors.New("truncated rtf escape")
)

// Destinations whose whole group carries no document text.
var skipGroups = map[string]bool{
	"fonttbl":    true,
	"colortbl":   true,
	"stylesheet": true,
	"info":       true,
	"pict":       true,
}

type rtfCursor struct {
	data []byte
	off  int
}

func (c *rtfCursor) eof() bool {
	return c.off >= len(c.data)
}

func (c *rtfCursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.data[c.off]
}

func (c *rtfCursor) bump() byte {
	b := c.data[c.off]
	c.off++
	return b
}

func decodeRTF(input []byte) ([]byte, error) {
	c := &rtfCursor{data: input}
	var out bytes.Buffer

	// One skip flag per open group; a skipped group suppresses all output
	// until it closes.
	depth := 0
	skipDepth := -1 // depth at which skipping began, -1 when not skipping

	skipping := func() bool { return skipDepth >= 0 }

	for !c.eof() {
		switch b := c.bump(); b {
		case '{':
			depth++
			if !skipping() && isSkipDestination(c) {
				skipDepth = depth
			}

		case '}':
			if depth == 0 {
				return nil, errUnbalanced
			}
			if skipDepth == depth {
				skipDepth = -1
			}
			depth--

		case '\\':
			if err := decodeControl(c, &out, skipping()); err != nil {
				return nil, err
			}

		case '\r', '\n':
			// Raw line breaks in RTF are formatting noise; \par marks
			// real paragraph breaks.

		default:
			if !skipping() {
				out.WriteByte(b)
			}
		}
	}

	if depth != 0 {
		return nil, errUnbalanced
	}
	return out.Bytes(), nil
}

// isSkipDestination peeks right after '{' for \* or a known no-text
// destination without consuming anything the main loop still needs.
func isSkipDestination(c *rtfCursor) bool {
	if c.peek() != '\\' {
		return false
	}
	if c.off+1 < len(c.data) && c.data[c.off+1] == '*' {
		return true
	}
	word := make([]byte, 0, 12)
	for i := c.off + 1; i < len(c.data) && isAlpha(c.data[i]); i++ {
		word = append(word, c.data[i])
	}
	return skipGroups[string(word)]
}

func decodeControl(c *rtfCursor, out *bytes.Buffer, skipping bool) error {
	if c.eof() {
		return errTruncated
	}

	switch b := c.peek(); {
	case b == '{' || b == '}' || b == '\\':
		c.bump()
		if !skipping {
			out.WriteByte(b)
		}
		return nil

	case b == '\'':
		c.bump()
		if c.off+2 > len(c.data) {
			return errTruncated
		}
		hi, okHi := hexVal(c.bump())
		lo, okLo := hexVal(c.bump())
		if !okHi || !okLo {
			return errTruncated
		}
		if !skipping {
			out.WriteRune(charmap.Windows1252.DecodeByte(byte(hi<<4 | lo)))
		}
		return nil

	case isAlpha(b):
		word := readControlWord(c)
		if skipping {
			return nil
		}
		switch word {
		case "par", "line":
			out.WriteByte('\n')
		case "tab":
			out.WriteByte('\t')
		}
		return nil

	default:
		// Unknown control symbol: drop it.
		c.bump()
		return nil
	}
}

// readControlWord consumes letters, an optional signed numeric parameter
// and the single optional space delimiter.
func readControlWord(c *rtfCursor) string {
	start := c.off
	for !c.eof() && isAlpha(c.peek()) {
		c.bump()
	}
	word := string(c.data[start:c.off])

	if c.peek() == '-' {
		c.bump()
	}
	for !c.eof() && isDigit(c.peek()) {
		c.bump()
	}
	if c.peek() == ' ' {
		c.bump()
	}
	return word
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func hexVal(b byte) (int, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), true
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10, true
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10, true
	}
	return 0, false
}
