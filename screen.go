package rline

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/mattn/go-runewidth"
)

// attrSpan is a highlighted region of input text, [start,end) in rune
// offsets, paired with the ANSI SGR sequence to wrap it in. Produced
// fresh on each render by the active Highlighter rather than maintained
// incrementally across edits (the teacher's attrInfo bookkeeping tracks
// span boundaries through every Insert/EraseTo; recomputing from
// scratch is simpler and cheap at interactive line lengths).
type attrSpan struct {
	start, end int
	sgr        string
}

// Highlighter produces attribute spans over the current input text.
type Highlighter func(text []rune) []attrSpan

// lineInfo records which run of composed display text occupies one
// terminal row.
type lineInfo struct {
	startPos, endPos int
	y                int
}

// screen is the C8 Redisplay Engine: it composes prompt + buffer text
// (or its mask) + status suffix into wrapped terminal lines and
// reconciles the physical screen with that model by diffing the newly
// composed lines against the previous paint, per spec.md §4.7 steps
// 2-5. Grounded on the teacher's screen.go for line-wrapping/cell-width
// bookkeeping (lineInfo, maybeRecomputeLines, moveCursor) but replacing
// its always-repaint-the-tail strategy with a common-prefix/common-
// suffix character diff per line — the same technique GNU readline's
// own update_line uses to decide between an EQUAL skip, an
// insert-character fast path, and a delete-character fast path instead
// of a full reprint.
type screen struct {
	term *terminal

	prefix []rune
	suffix []rune

	masked bool // true for a ReadLineMasked/session in progress
	mask   rune // 0 means fully hidden; nonzero is the echoed mask rune

	lines    []lineInfo
	lastText []rune
	rawText  []rune // buffer text alone, for Highlighter (excludes prompt/suffix)

	width, height int
	cursorPos     int // composed offset: prefix+text+suffix
	cursorX       int
	cursorY       int
	maxY          int

	highlighter Highlighter

	outbuf bytes.Buffer
}

func newScreen(term *terminal) *screen {
	return &screen{term: term, width: 80, height: 40}
}

func (s *screen) SetSize(width, height int) {
	if width <= 0 {
		width = 1
	}
	s.width, s.height = width, height
}

func (s *screen) SetHighlighter(h Highlighter) { s.highlighter = h }

// SetMask installs the password-masking state for the in-progress
// session. masked distinguishes a ReadLineMasked call from an ordinary
// one, since the zero rune is itself a valid (fully-hidden) mask value
// and can't double as "masking is off".
func (s *screen) SetMask(masked bool, mask rune) {
	s.masked = masked
	s.mask = mask
}

// Reset starts rendering a new prompt/input from scratch.
func (s *screen) Reset(prompt []rune, buf *buffer) {
	s.prefix = prompt
	s.suffix = nil
	s.cursorX, s.cursorY, s.maxY = 0, 0, 0
	s.lastText = nil
	s.lines = nil
	s.render(buf)
}

// SetSuffix installs (or clears, if nil) the status suffix used by
// incremental search ("(bck-i-search:`key')") and completion listings.
// The suffix is wrapped into s.lines like any other text, so a change
// to it diffs against the previous paint exactly like a buffer edit.
func (s *screen) SetSuffix(buf *buffer, suffix []rune) {
	s.suffix = suffix
	s.render(buf)
}

// composed builds the full display text: prompt, then the buffer body
// (or its mask, per spec.md §4.7 step 1: an all-zero mask renders
// empty, a nonzero mask renders len(buf) repetitions of that rune),
// then the status suffix.
func (s *screen) composed(buf *buffer) []rune {
	body := buf.text
	if s.masked {
		body = maskRunes(s.mask, buf.len())
	}
	out := make([]rune, 0, len(s.prefix)+len(body)+len(s.suffix))
	out = append(out, s.prefix...)
	out = append(out, body...)
	out = append(out, s.suffix...)
	return out
}

func maskRunes(mask rune, n int) []rune {
	if mask == 0 {
		return nil
	}
	out := make([]rune, n)
	for i := range out {
		out[i] = mask
	}
	return out
}

// render recomputes line wrapping for the current buffer and
// reconciles the physical screen with it: the first render after a
// Reset (or ClearScreen) does a full repaint since there is nothing to
// diff against; every later render walks old and new wrapped lines in
// lockstep and only emits the bytes needed to turn one into the other
// (spec.md §4.7 steps 2-5).
func (s *screen) render(buf *buffer) {
	text := s.composed(buf)
	oldText := s.lastText
	oldLines := append([]lineInfo(nil), s.lines...)

	s.computeLines(text)
	newLines := s.lines
	s.rawText = buf.text

	if oldText == nil {
		s.fullRepaint(text, newLines)
	} else {
		s.diffRepaint(oldText, oldLines, text, newLines)
	}
	s.lastText = text

	if n := len(newLines); n > 0 {
		last := newLines[n-1]
		s.cursorX = cellWidth(text[last.startPos:last.endPos])
		s.cursorY = last.y
	} else {
		s.cursorX, s.cursorY = 0, 0
	}
	if s.cursorY > s.maxY {
		s.maxY = s.cursorY
	}

	bodyLen := buf.cursor
	if s.masked && s.mask == 0 {
		bodyLen = 0 // nothing is ever echoed; the cursor has nowhere to go but the prompt
	}
	s.MoveTo(len(s.prefix) + bodyLen)
}

// fullRepaint clears the display from the prompt origin and prints
// every line in full, used the first time a prompt is shown and after
// Control-l.
func (s *screen) fullRepaint(text []rune, lines []lineInfo) {
	s.home()
	s.eraseDown()
	for i, li := range lines {
		if i > 0 {
			s.outbuf.WriteString("\r\n")
		}
		s.writeLineText(text[li.startPos:li.endPos], li.startPos)
	}
}

// diffRepaint walks old and new wrapped lines row by row (spec.md
// §4.7 step 5's excess-line handling falls out of the haveOld/haveNew
// mismatch cases): a row present in both gets a character-level diff,
// a row only in the new paint is printed fresh, and a row only in the
// old paint is cleared.
func (s *screen) diffRepaint(oldText []rune, oldLines []lineInfo, newText []rune, newLines []lineInfo) {
	rows := s.maxY + 1
	if len(newLines) > rows {
		rows = len(newLines)
	}
	for i := 0; i < rows; i++ {
		haveOld := i < len(oldLines)
		haveNew := i < len(newLines)
		switch {
		case haveOld && haveNew:
			oldLine := oldText[oldLines[i].startPos:oldLines[i].endPos]
			newLine := newText[newLines[i].startPos:newLines[i].endPos]
			changed := s.diffLine(oldLine, newLine, i, newLines[i].startPos)
			if changed && cellWidth(newLine) == s.width {
				s.forceWrapIfNeeded(i == rows-1)
			}
		case haveNew:
			newLine := newText[newLines[i].startPos:newLines[i].endPos]
			s.moveCursor(0, i)
			s.writeLineText(newLine, newLines[i].startPos)
			s.cursorX = cellWidth(newLine)
			if cellWidth(newLine) == s.width {
				s.forceWrapIfNeeded(i == rows-1)
			}
		default:
			s.moveCursor(0, i)
			s.clearToEOL()
			s.cursorX = 0
		}
	}
}

// diffLine reconciles one terminal row: it finds the longest common
// prefix and (non-overlapping) common suffix of the old and new text
// for that row and treats only the differing middle as changed, the
// same common-prefix/common-suffix technique GNU readline's
// update_line uses instead of a general-purpose diff. Reports whether
// anything was actually written.
func (s *screen) diffLine(oldLine, newLine []rune, row, base int) bool {
	pre := commonPrefixLen(oldLine, newLine)
	oldRest := oldLine[pre:]
	newRest := newLine[pre:]
	maxSuf := len(oldRest)
	if len(newRest) < maxSuf {
		maxSuf = len(newRest)
	}
	suf := commonSuffixLen(oldRest, newRest, maxSuf)

	oldMid := oldRest[:len(oldRest)-suf]
	newMid := newRest[:len(newRest)-suf]
	if len(oldMid) == 0 && len(newMid) == 0 {
		return false
	}

	col := cellWidth(newLine[:pre])
	s.moveCursor(col, row)

	switch {
	case len(newMid) > len(oldMid):
		// INSERT followed by EQUAL (spec.md §4.7 step 3): open room for
		// the extra cells only when a common suffix must be preserved;
		// writing the whole of newMid then overwrites both the opened
		// gap and whatever of oldMid used to occupy it.
		extra := len(newMid) - len(oldMid)
		if suf > 0 {
			s.insertChars(extra)
		}
		s.writeLineText(newMid, base+pre)
	case len(newMid) < len(oldMid):
		// DELETE followed by EQUAL: overwrite the shared-length prefix of
		// oldMid, then either close the gap with delete-character or, if
		// nothing follows, simply clear to end of line.
		deficit := len(oldMid) - len(newMid)
		s.writeLineText(newMid, base+pre)
		if suf > 0 {
			s.deleteChars(deficit)
		} else {
			s.clearToEOL()
		}
	default:
		s.writeLineText(newMid, base+pre)
	}
	s.cursorX = col + cellWidth(newMid)
	return true
}

func commonPrefixLen(a, b []rune) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func commonSuffixLen(a, b []rune, max int) int {
	i := 0
	for i < max && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}

// forceWrapIfNeeded implements spec.md §4.7 step 4's right-margin
// glitch fix: on a terminal whose terminfo entry sets auto_right_margin
// (the loaded capability this library exposes for it), a line that
// exactly fills the last column leaves the physical cursor in an
// ambiguous "pending wrap" state on some terminals. Printing one space
// and returning with CR forces it to resolve before the next line's
// motion is computed relative to it.
func (s *screen) forceWrapIfNeeded(isLastRow bool) {
	if isLastRow {
		return
	}
	caps := s.term.caps()
	if caps == nil || !caps.AutoMargin {
		return
	}
	s.outbuf.WriteString(" \r")
	s.cursorX = 0
}

func (s *screen) home() {
	if s.cursorY != 0 {
		s.emitVertical(-s.cursorY)
	}
	s.outbuf.WriteString("\r")
	s.cursorX, s.cursorY = 0, 0
}

func (s *screen) writeLineText(line []rune, base int) {
	spans := s.spansFor(base, len(line))
	i := 0
	for _, sp := range spans {
		if sp.start > i {
			s.outbuf.WriteString(string(line[i:sp.start]))
		}
		s.outbuf.WriteString(sp.sgr)
		s.outbuf.WriteString(string(line[sp.start:sp.end]))
		s.outbuf.WriteString(attrReset)
		i = sp.end
	}
	if i < len(line) {
		s.outbuf.WriteString(string(line[i:]))
	}
}

// spansFor translates highlighter spans (rune offsets into the raw
// input text) into offsets relative to a composed display line
// starting at base, clipped to [0,length).
func (s *screen) spansFor(base, length int) []attrSpan {
	if s.highlighter == nil || s.masked {
		return nil
	}
	promptLen := len(s.prefix)
	var out []attrSpan
	for _, sp := range s.highlighter(s.rawText) {
		start := sp.start + promptLen - base
		end := sp.end + promptLen - base
		if start < 0 {
			start = 0
		}
		if end > length {
			end = length
		}
		if start >= end {
			continue
		}
		out = append(out, attrSpan{start, end, sp.sgr})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

func (s *screen) computeLines(text []rune) {
	s.lines = s.lines[:0]
	x, y, start := 0, 0, 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == '\n' {
			s.lines = append(s.lines, lineInfo{startPos: start, endPos: i, y: y})
			y++
			start = i + 1
			x = 0
			continue
		}
		w := runewidth.RuneWidth(text[i])
		if x+w > s.width && x > 0 {
			s.lines = append(s.lines, lineInfo{startPos: start, endPos: i, y: y})
			y++
			start = i
			x = 0
		}
		x += w
	}
}

func cellWidth(text []rune) int {
	w := 0
	for _, r := range text {
		w += runewidth.RuneWidth(r)
	}
	return w
}

// MoveTo repositions the cursor to composed offset pos.
func (s *screen) MoveTo(pos int) {
	var li *lineInfo
	for i := range s.lines {
		if pos <= s.lines[i].endPos {
			li = &s.lines[i]
			break
		}
	}
	if li == nil && len(s.lines) > 0 {
		li = &s.lines[len(s.lines)-1]
	}
	if li == nil {
		return
	}
	end := pos
	if end > li.endPos {
		end = li.endPos
	}
	col := 0
	if end > li.startPos && end <= len(s.lastText) {
		col = cellWidth(s.lastText[li.startPos:end])
	}
	s.cursorPos = pos
	s.moveCursor(col, li.y)
}

// moveCursor repositions the cursor given a target column (in display
// cells from the start of the current display line) and row.
func (s *screen) moveCursor(col, row int) {
	if dy := row - s.cursorY; dy != 0 {
		s.emitVertical(dy)
	}
	s.outbuf.WriteString("\r")
	s.cursorRight(col)
	s.cursorX, s.cursorY = col, row
}

// emitVertical and cursorRight use the portable parameterized ANSI
// cursor-motion sequences rather than a terminfo lookup: the loaded
// *terminfo.Terminfo (terminal.go's caps()) is this library's trimmed,
// tcell-Screen-oriented capability set and does not carry termcap-style
// cursor_up/parm_up_cursor/parm_right_cursor fields to look up, only
// the handful consulted directly in this file (Bell, Clear,
// AutoMargin).
func (s *screen) emitVertical(dy int) {
	switch {
	case dy > 0:
		s.outbuf.WriteString(repeatString("\n", dy))
	case dy < 0:
		s.outbuf.WriteString("\x1b[" + strconv.Itoa(-dy) + "A")
	}
}

func (s *screen) cursorRight(n int) {
	if n <= 0 {
		return
	}
	s.outbuf.WriteString("\x1b[" + strconv.Itoa(n) + "C")
}

// insertChars opens room for n cells at the cursor (parm_ich/
// insert_character in spec.md §4.7 step 3 vocabulary), shifting
// whatever followed the cursor to the right.
func (s *screen) insertChars(n int) {
	if n <= 0 {
		return
	}
	s.outbuf.WriteString("\x1b[" + strconv.Itoa(n) + "@")
}

// deleteChars removes n cells at the cursor (parm_dch/delete_character),
// pulling whatever followed the cursor to the left.
func (s *screen) deleteChars(n int) {
	if n <= 0 {
		return
	}
	s.outbuf.WriteString("\x1b[" + strconv.Itoa(n) + "P")
}

// clearToEOL clears from the cursor to the end of the current line
// (clr_eol).
func (s *screen) clearToEOL() {
	s.outbuf.WriteString("\x1b[K")
}

func (s *screen) eraseDown() {
	s.clearToEOL()
	for y := s.cursorY; y < s.maxY; y++ {
		s.outbuf.WriteString("\r\n")
		s.clearToEOL()
	}
	if s.maxY > s.cursorY {
		s.emitVertical(s.cursorY - s.maxY)
	}
}

// insertAt is the self-insert-at-end-of-line fast path: the new rune
// lands after everything already on screen, so it is only ever an
// append, never a genuine insert-with-shift, and needs no ICH. The
// terminfo gate still applies: an unrecognized terminal ($TERM with no
// database entry) gets the safer full render() instead of this partial
// update, matching the teacher's caution around unfamiliar terminals.
func (s *screen) insertAt(r rune, col, row int) bool {
	if s.term.caps() == nil {
		return false
	}
	if row != s.cursorY || col != s.cursorX {
		return false
	}
	s.outbuf.WriteRune(r)
	s.cursorX += runewidth.RuneWidth(r)
	return true
}

// ClearScreen clears the entire terminal and repaints from the top,
// implementing Control-l / clear-screen. Uses the terminfo Clear
// capability when the database has one for $TERM.
func (s *screen) ClearScreen(buf *buffer) {
	if caps := s.term.caps(); caps != nil && caps.Clear != "" {
		s.outbuf.WriteString(caps.Clear)
	} else {
		s.outbuf.WriteString("\x1b[H\x1b[2J")
	}
	s.cursorX, s.cursorY, s.maxY = 0, 0, 0
	s.lastText = nil
	s.lines = nil
	s.render(buf)
}

// Bell emits an audible bell, using the terminfo Bell capability when
// the database has one for $TERM.
func (s *screen) Bell() {
	if caps := s.term.caps(); caps != nil && caps.Bell != "" {
		s.outbuf.WriteString(caps.Bell)
		return
	}
	s.outbuf.WriteByte(7)
}

// Flash emits a visible-bell approximation (brief reverse video) on a
// recognized terminal, falling back to an audible bell otherwise. The
// terminfo capability set this library loads has no flash_screen field
// to look up, so a recognized terminal gets the portable DEC private
// mode toggle instead.
func (s *screen) Flash() {
	if s.term.caps() == nil {
		s.Bell()
		return
	}
	s.outbuf.WriteString("\x1b[?5h\x1b[?5l")
}

// Flush writes buffered output and clears the buffer.
func (s *screen) Flush(w writer) {
	debugPrintf("output: %q\n", s.outbuf.Bytes())
	_, _ = w.Write(s.outbuf.Bytes())
	s.outbuf.Reset()
}

type writer interface {
	Write(p []byte) (int, error)
}

func repeatString(s string, n int) string {
	if n <= 0 {
		return ""
	}
	var b bytes.Buffer
	for i := 0; i < n; i++ {
		b.WriteString(s)
	}
	return b.String()
}

const attrReset = "\x1b[0m"
