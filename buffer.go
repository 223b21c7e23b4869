package rline

import (
	"unicode"

	"github.com/rivo/uniseg"
)

// buffer is the mutable text model described by the EditBuffer entity: a
// sequence of code points, a cursor clamped to [0, len(text)], and an
// overtype flag. It performs no terminal I/O; every method here is pure
// state manipulation, leaving rendering to the screen (C8).
type buffer struct {
	text     []rune
	cursor   int
	overtype bool
	mark     int // set-mark position for kill-region; -1 when unset
}

// reset clears the buffer and installs the supplied initial text, leaving
// the cursor at the end (matching readLine's initialBuffer argument).
func (b *buffer) reset(initial []rune) {
	b.text = append(b.text[:0], initial...)
	b.cursor = len(b.text)
	b.mark = -1
}

// clear empties the buffer and resets the cursor to 0.
func (b *buffer) clear() {
	b.text = b.text[:0]
	b.cursor = 0
	b.mark = -1
}

// copy returns an independent copy of the current text.
func (b *buffer) copy() []rune {
	out := make([]rune, len(b.text))
	copy(out, b.text)
	return out
}

// current returns the code point at the cursor, or 0 if the cursor is at
// the end of the buffer.
func (b *buffer) current() rune {
	if b.cursor >= len(b.text) {
		return 0
	}
	return b.text[b.cursor]
}

// nextChar returns the code point immediately after the cursor, or 0 if
// none remains.
func (b *buffer) nextChar() rune {
	if b.cursor+1 >= len(b.text) {
		return 0
	}
	return b.text[b.cursor+1]
}

// upToCursor returns the slice of text preceding the cursor.
func (b *buffer) upToCursor() []rune {
	return b.text[:b.cursor]
}

// insert inserts str at the cursor, advancing the cursor past it. In
// overtype mode, characters replace existing text instead of shifting it,
// for as long as there is text left to overwrite.
func (b *buffer) insert(str []rune) {
	if len(str) == 0 {
		return
	}
	if b.overtype {
		avail := len(b.text) - b.cursor
		n := len(str)
		if n > avail {
			n = avail
		}
		copy(b.text[b.cursor:], str[:n])
		if n < len(str) {
			b.text = append(b.text, str[n:]...)
		}
		b.cursor += len(str)
		return
	}

	b.text = append(b.text, str...) // grow
	copy(b.text[b.cursor+len(str):], b.text[b.cursor:len(b.text)-len(str)])
	copy(b.text[b.cursor:], str)
	b.cursor += len(str)
}

// deleteRange removes text in [a,b) (a<=b, both clamped), leaving the
// cursor at a. Returns the removed text.
func (b *buffer) deleteRange(a, bb int) []rune {
	if a < 0 {
		a = 0
	}
	if bb > len(b.text) {
		bb = len(b.text)
	}
	if bb <= a {
		return nil
	}
	removed := append([]rune(nil), b.text[a:bb]...)
	b.text = append(b.text[:a], b.text[bb:]...)
	if b.cursor > bb {
		b.cursor -= bb - a
	} else if b.cursor > a {
		b.cursor = a
	}
	return removed
}

// backspace deletes up to n code points before the cursor, returning how
// many were actually removed (n' <= n).
func (b *buffer) backspace(n int) int {
	if n > b.cursor {
		n = b.cursor
	}
	if n <= 0 {
		return 0
	}
	b.deleteRange(b.cursor-n, b.cursor)
	return n
}

// moveCursor shifts the cursor by delta, clamped to [0, len(text)], and
// returns the actual delta applied.
func (b *buffer) moveCursor(delta int) int {
	target := b.cursor + delta
	if target < 0 {
		target = 0
	}
	if target > len(b.text) {
		target = len(b.text)
	}
	applied := target - b.cursor
	b.cursor = target
	return applied
}

// len returns the number of code points in the buffer.
func (b *buffer) len() int {
	return len(b.text)
}

// graphemeBoundaries returns the rune offsets at which each grapheme
// cluster in text begins, plus a final boundary at len(text).
func graphemeBoundaries(text []rune) []int {
	bounds := []int{0}
	rest := string(text)
	state := -1
	pos := 0
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		pos += len([]rune(cluster))
		bounds = append(bounds, pos)
	}
	return bounds
}

// nextGraphemeEnd returns the position just past the grapheme cluster that
// begins at pos, using real Unicode segmentation so that combining marks
// and multi-rune clusters move as a unit.
func (b *buffer) nextGraphemeEnd(pos int) int {
	if pos >= len(b.text) {
		return len(b.text)
	}
	for _, boundary := range graphemeBoundaries(b.text) {
		if boundary > pos {
			return boundary
		}
	}
	return len(b.text)
}

// prevGraphemeStart returns the position of the start of the grapheme
// cluster immediately before pos.
func (b *buffer) prevGraphemeStart(pos int) int {
	if pos <= 0 {
		return 0
	}
	bounds := graphemeBoundaries(b.text)
	start := 0
	for _, boundary := range bounds {
		if boundary >= pos {
			break
		}
		start = boundary
	}
	return start
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
