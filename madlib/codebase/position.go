package codebase

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Editors address text by zero-based line and UTF-16 code unit; the parser
// works in byte offsets. LineIndex converts between the two.
type LineIndex struct {
	src   []byte
	lines []int
}

func NewLineIndex(src []byte) *LineIndex {
	lines := []int{0}
	for i, b := range src {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &LineIndex{src: src, lines: lines}
}

// Offset returns the byte offset of (line, character). Positions past the
// end of a line clamp to the line end, lines past the end clamp to EOF.
func (x *LineIndex) Offset(line, character int) int {
	if line < 0 {
		return 0
	}
	if line >= len(x.lines) {
		return len(x.src)
	}
	offset := x.lines[line]
	end := x.lineEnd(line)
	for units := 0; offset < end && units < character; {
		r, size := utf8.DecodeRune(x.src[offset:end])
		units += utf16.RuneLen(r)
		if units > character && r >= 0x10000 {
			break
		}
		offset += size
	}
	return offset
}

// Position returns the zero-based line and UTF-16 character of offset.
func (x *LineIndex) Position(offset int) (line, character int) {
	if offset > len(x.src) {
		offset = len(x.src)
	}
	if offset < 0 {
		offset = 0
	}
	lo, hi := 0, len(x.lines)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if x.lines[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	for i := x.lines[lo]; i < offset; {
		r, size := utf8.DecodeRune(x.src[i:offset])
		if r == utf8.RuneError && size <= 1 {
			character++
			i++
			continue
		}
		character += utf16.RuneLen(r)
		i += size
	}
	return lo, character
}

func (x *LineIndex) lineEnd(line int) int {
	end := len(x.src)
	if line+1 < len(x.lines) {
		end = x.lines[line+1] - 1
	}
	if end > x.lines[line] && x.src[end-1] == '\r' {
		end--
	}
	return end
}
