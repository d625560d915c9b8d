package diagfmt

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Window carves a readable excerpt around the inclusive byte range
// [head, tail] with pad characters of context on each side, clipped to the
// buffer. It returns the excerpt on one printable line (newlines become
// '-', tabs become spaces) and a marker line of equal display width with
// '^' under exactly the target range. Both strings are empty for an empty
// buffer.
func Window(content []byte, head, tail uint32, pad int) (context, marker string) {
	if len(content) == 0 {
		return "", ""
	}
	last := uint32(len(content) - 1)
	if head > last {
		head = last
	}
	if tail < head {
		tail = head
	}
	if tail > last {
		tail = last
	}

	lo := int(head) - pad
	if lo < 0 {
		lo = 0
	}
	hi := int(tail) + pad
	if hi > int(last) {
		hi = int(last)
	}

	var ctx, mark strings.Builder
	for i := lo; i <= hi; {
		r, size := utf8.DecodeRune(content[i:])
		printed := string(r)
		switch r {
		case '\n':
			printed = "-"
		case '\t':
			printed = " "
		}
		ctx.WriteString(printed)

		width := runewidth.StringWidth(printed)
		fill := " "
		if uint32(i) >= head && uint32(i) <= tail {
			fill = "^"
		}
		mark.WriteString(strings.Repeat(fill, width))
		i += size
	}
	return ctx.String(), mark.String()
}
