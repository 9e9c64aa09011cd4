package property

import (
	"strings"
	"unicode/utf8"

	"tempical/internal/constants"
)

// MaxLineOctets is the folding limit: no emitted physical line exceeds
// this many octets, continuation lines included.
const MaxLineOctets = constants.ICalMaxLineLength

// WriteFolded writes a single logical line applying folding. Lines
// longer than the limit are folded by inserting CRLF + space; a
// continuation line's leading space counts against its budget.
func WriteFolded(b *strings.Builder, line string) {
	for i, seg := range foldLine(line, MaxLineOctets) {
		if i == 0 {
			b.WriteString(seg)
		} else {
			b.WriteString(" " + seg)
		}
		b.WriteString("\r\n")
	}
}

// foldLine splits a string into segments of at most limit octets (the
// first) and limit-1 octets (the rest, leaving room for the leading
// space). Octets are counted per rune so a multi-byte UTF-8 code point
// is never split across a fold boundary. Returned segments carry no
// CRLF or leading space; WriteFolded adds those.
func foldLine(s string, limit int) []string {
	if limit <= 1 || len(s) <= limit {
		return []string{s}
	}
	var segments []string
	var cur strings.Builder
	curBytes := 0
	budget := limit

	for _, r := range s {
		rl := utf8.RuneLen(r)
		if rl < 0 {
			rl = 1
		}
		if curBytes+rl > budget {
			segments = append(segments, cur.String())
			cur.Reset()
			curBytes = 0
			budget = limit - 1
		}
		cur.WriteRune(r)
		curBytes += rl
	}
	if cur.Len() > 0 {
		segments = append(segments, cur.String())
	}
	return segments
}
