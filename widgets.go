package rline

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// newWidgetTable builds the C9 Widget Table: one function per Operation,
// taking the Editor as its first argument, so dispatch.go's `fn(e, seq)` calls need nothing beyond
// the Operation tag and the key sequence that produced it. Grounded on
// the teacher's three separate command tables (bind.go, kill_ring.go,
// history.go) collapsed into the single map spec.md §4.8 names.
func newWidgetTable(e *Editor) map[Operation]func(*Editor, []rune) {
	return map[Operation]func(*Editor, []rune){
		OpForwardChar:     opForwardChar,
		OpBackwardChar:    opBackwardChar,
		OpForwardWord:     opForwardWord,
		OpBackwardWord:    opBackwardWord,
		OpBeginningOfLine: opBeginningOfLine,
		OpEndOfLine:       opEndOfLine,
		OpPreviousLine:    opPreviousLine,
		OpNextLine:        opNextLine,

		OpDeleteChar:            opDeleteChar,
		OpBackwardDeleteChar:    opBackwardDeleteChar,
		OpDeleteHorizontalSpace: opDeleteHorizontalSpace,

		OpKillLine:         opKillLine,
		OpBackwardKillLine: opBackwardKillLine,
		OpKillWholeLine:    opKillWholeLine,
		OpKillWord:         opKillWord,
		OpBackwardKillWord: opBackwardKillWord,
		OpUnixWordRubout:   opUnixWordRubout,
		OpUnixLineDiscard:  opUnixLineDiscard,
		OpYank:             opYank,
		OpYankPop:          opYankPop,
		OpKillRegion:       opKillRegion,

		OpUpcaseWord:     opUpcaseWord,
		OpDowncaseWord:   opDowncaseWord,
		OpCapitalizeWord: opCapitalizeWord,
		OpTransposeChars: opTransposeChars,
		OpTransposeWords: opTransposeWords,

		OpSelfInsert:         opSelfInsert,
		OpQuotedInsert:       opQuotedInsert,
		OpTabInsert:          opTabInsert,
		OpInsertCloseBracket: opInsertCloseBracket,

		OpOverwriteMode:     opOverwriteMode,
		OpToggleEditingMode: opToggleEditingMode,
		OpViInsertMode:      opViInsertMode,
		OpViMoveMode:        opViMoveMode,

		OpPreviousHistory:       opPreviousHistory,
		OpNextHistory:           opNextHistory,
		OpBeginningOfHistory:    opBeginningOfHistory,
		OpEndOfHistory:          opEndOfHistory,
		OpReverseSearchHistory:  opReverseSearchHistory,
		OpForwardSearchHistory:  opForwardSearchHistory,
		OpHistorySearchBackward: opHistorySearchBackward,
		OpHistorySearchForward:  opHistorySearchForward,
		OpNonIncSearchHistory:   opNonIncSearchHistory,

		OpComplete:            opComplete,
		OpPossibleCompletions: opPossibleCompletions,
		OpInsertCompletions:   opInsertCompletions,

		OpStartKbdMacro:    opStartKbdMacro,
		OpEndKbdMacro:      opEndKbdMacro,
		OpCallLastKbdMacro: opCallLastKbdMacro,

		OpAcceptLine:         opAcceptLine,
		OpAbort:              opAbort,
		OpInterrupt:          opInterrupt,
		OpEndOfFileOrDelete:  opEndOfFileOrDelete,
		OpClearScreen:        opClearScreen,
		OpReReadInitFile:     opReReadInitFile,
		OpUniversalArgument:  opUniversalArgument,
		OpUndo:               opUndo,
		OpSetMark:            opSetMark,
		OpPasteFromClipboard: opPasteFromClipboard,

		OpViDeleteChar:       opViDeleteChar,
		OpViSubstChar:        opViSubstChar,
		OpViFirstPrint:       opViFirstPrint,
		OpViCharSearch:       opViCharSearch,
		OpViRepeatCharSearch: opViRepeatCharSearch,
		OpViRedo:             opViRedo,
		OpViAppendEol:        opViAppendEol,
		OpViInsertBeg:        opViInsertBeg,
		OpViReplace:          opViReplace,
		OpViPut:              opViPut,
		OpViChangeToEol:      opViChangeToEol,
	}
}

// snapshotUndo records the buffer's current text/cursor as the undo
// target, overwriting whatever was recorded before. Spec.md's undo is
// deliberately a single-level toggle rather than a full stack (see
// DESIGN.md): calling undo twice in a row restores the state from
// before the first undo.
func (e *Editor) snapshotUndo() {
	e.disp.undoText = e.buf.copy()
	e.disp.undoCursor = e.buf.cursor
	e.disp.hasUndo = true
}

func isBlank(r rune) bool { return r == ' ' || r == '\t' }

func lastNewlineBefore(text []rune, pos int) int {
	for i := pos - 1; i >= 0; i-- {
		if text[i] == '\n' {
			return i
		}
	}
	return -1
}

func nextNewlineAt(text []rune, pos int) int {
	for i := pos; i < len(text); i++ {
		if text[i] == '\n' {
			return i
		}
	}
	return len(text)
}

// --- Cursor motion -----------------------------------------------------

func opForwardChar(e *Editor, _ []rune) {
	b := &e.buf
	b.cursor = b.nextGraphemeEnd(b.cursor)
	e.screen.render(b)
}

func opBackwardChar(e *Editor, _ []rune) {
	b := &e.buf
	b.cursor = b.prevGraphemeStart(b.cursor)
	e.screen.render(b)
}

func opForwardWord(e *Editor, _ []rune) {
	b := &e.buf
	i := b.cursor
	for i < b.len() && !isWordRune(b.text[i]) {
		i++
	}
	for i < b.len() && isWordRune(b.text[i]) {
		i++
	}
	b.cursor = i
	e.screen.render(b)
}

func opBackwardWord(e *Editor, _ []rune) {
	b := &e.buf
	i := b.cursor
	for i > 0 && !isWordRune(b.text[i-1]) {
		i--
	}
	for i > 0 && isWordRune(b.text[i-1]) {
		i--
	}
	b.cursor = i
	e.screen.render(b)
}

// opBeginningOfLine/opEndOfLine treat the buffer as a single logical
// line (spec.md's Non-goal on multi-line paragraph editing); vertical
// motion across embedded newlines is handled separately by
// opPreviousLine/opNextLine.
func opBeginningOfLine(e *Editor, _ []rune) {
	e.buf.cursor = 0
	e.screen.render(&e.buf)
}

func opEndOfLine(e *Editor, _ []rune) {
	e.buf.cursor = e.buf.len()
	e.screen.render(&e.buf)
}

func opPreviousLine(e *Editor, _ []rune) {
	b := &e.buf
	lineStart := lastNewlineBefore(b.text, b.cursor) + 1
	if lineStart == 0 {
		e.screen.Bell()
		return
	}
	col := b.cursor - lineStart
	prevLineEnd := lineStart - 1
	prevLineStart := lastNewlineBefore(b.text, prevLineEnd) + 1
	target := prevLineStart + col
	if target > prevLineEnd {
		target = prevLineEnd
	}
	b.cursor = target
	e.screen.render(b)
}

func opNextLine(e *Editor, _ []rune) {
	b := &e.buf
	lineStart := lastNewlineBefore(b.text, b.cursor) + 1
	col := b.cursor - lineStart
	lineEnd := nextNewlineAt(b.text, b.cursor)
	if lineEnd >= b.len() {
		e.screen.Bell()
		return
	}
	nextLineStart := lineEnd + 1
	nextLineEnd := nextNewlineAt(b.text, nextLineStart)
	target := nextLineStart + col
	if target > nextLineEnd {
		target = nextLineEnd
	}
	b.cursor = target
	e.screen.render(b)
}

// --- Deletion ------------------------------------------------------------

func opDeleteChar(e *Editor, _ []rune) {
	b := &e.buf
	end := b.nextGraphemeEnd(b.cursor)
	if end == b.cursor {
		e.screen.Bell()
		return
	}
	e.snapshotUndo()
	b.deleteRange(b.cursor, end)
	e.screen.render(b)
}

func opBackwardDeleteChar(e *Editor, _ []rune) {
	b := &e.buf
	start := b.prevGraphemeStart(b.cursor)
	if start == b.cursor {
		e.screen.Bell()
		return
	}
	e.snapshotUndo()
	b.deleteRange(start, b.cursor)
	e.screen.render(b)
}

func opDeleteHorizontalSpace(e *Editor, _ []rune) {
	b := &e.buf
	start, end := b.cursor, b.cursor
	for start > 0 && isBlank(b.text[start-1]) {
		start--
	}
	for end < b.len() && isBlank(b.text[end]) {
		end++
	}
	if start == end {
		return
	}
	e.snapshotUndo()
	b.deleteRange(start, end)
	e.screen.render(b)
}

// --- Killing / yanking ---------------------------------------------------

func opKillLine(e *Editor, _ []rune) {
	b := &e.buf
	e.snapshotUndo()
	removed := b.deleteRange(b.cursor, b.len())
	if len(removed) > 0 {
		e.killRing.Append(string(removed))
	}
	e.screen.render(b)
}

func opBackwardKillLine(e *Editor, seq []rune) {
	opUnixLineDiscard(e, seq)
}

func opKillWholeLine(e *Editor, _ []rune) {
	b := &e.buf
	e.snapshotUndo()
	removed := b.deleteRange(0, b.len())
	if len(removed) > 0 {
		e.killRing.Append(string(removed))
	}
	e.screen.render(b)
}

func opKillWord(e *Editor, _ []rune) {
	b := &e.buf
	start := b.cursor
	i := start
	for i < b.len() && !isWordRune(b.text[i]) {
		i++
	}
	for i < b.len() && isWordRune(b.text[i]) {
		i++
	}
	if i == start {
		return
	}
	e.snapshotUndo()
	removed := b.deleteRange(start, i)
	if len(removed) > 0 {
		e.killRing.Append(string(removed))
	}
	e.screen.render(b)
}

func opBackwardKillWord(e *Editor, _ []rune) {
	b := &e.buf
	end := b.cursor
	i := end
	for i > 0 && !isWordRune(b.text[i-1]) {
		i--
	}
	for i > 0 && isWordRune(b.text[i-1]) {
		i--
	}
	if i == end {
		return
	}
	e.snapshotUndo()
	removed := b.deleteRange(i, end)
	if len(removed) > 0 {
		e.killRing.Prepend(string(removed))
	}
	e.screen.render(b)
}

// opUnixWordRubout is Control-w: like backward-kill-word, but a "word"
// ends at whitespace only (punctuation is swallowed), matching the
// shell's traditional ^W rather than the emacs word-motion notion of a
// word spec.md §4.3 uses for M-Backspace.
func opUnixWordRubout(e *Editor, _ []rune) {
	b := &e.buf
	end := b.cursor
	i := end
	for i > 0 && isBlank(b.text[i-1]) {
		i--
	}
	for i > 0 && !isBlank(b.text[i-1]) {
		i--
	}
	if i == end {
		return
	}
	e.snapshotUndo()
	removed := b.deleteRange(i, end)
	if len(removed) > 0 {
		e.killRing.Prepend(string(removed))
	}
	e.screen.render(b)
}

func opUnixLineDiscard(e *Editor, _ []rune) {
	b := &e.buf
	if b.cursor == 0 {
		return
	}
	e.snapshotUndo()
	removed := b.deleteRange(0, b.cursor)
	if len(removed) > 0 {
		e.killRing.Prepend(string(removed))
	}
	e.screen.render(b)
}

func opKillRegion(e *Editor, _ []rune) {
	b := &e.buf
	if b.mark < 0 {
		e.screen.Bell()
		return
	}
	a, c := b.mark, b.cursor
	if a > c {
		a, c = c, a
	}
	e.snapshotUndo()
	removed := b.deleteRange(a, c)
	if len(removed) > 0 {
		e.killRing.Append(string(removed))
	}
	b.mark = -1
	e.screen.render(b)
}

func opYank(e *Editor, _ []rune) {
	text := e.killRing.Yank()
	if text == nil {
		e.screen.Bell()
		return
	}
	e.snapshotUndo()
	start := e.buf.cursor
	e.buf.insert(text)
	e.disp.lastYankStart, e.disp.lastYankEnd = start, e.buf.cursor
	e.screen.render(&e.buf)
}

// opYankPop replaces the span inserted by the immediately preceding
// yank/yank-pop with the next-older kill-ring entry (spec.md §4.5);
// legal only while killRing.isYanking() holds.
func opYankPop(e *Editor, _ []rune) {
	if !e.killRing.isYanking() {
		e.screen.Bell()
		return
	}
	e.buf.deleteRange(e.disp.lastYankStart, e.disp.lastYankEnd)
	e.buf.cursor = e.disp.lastYankStart
	e.killRing.Rotate()
	text := e.killRing.Yank()
	start := e.buf.cursor
	e.buf.insert(text)
	e.disp.lastYankStart, e.disp.lastYankEnd = start, e.buf.cursor
	e.screen.render(&e.buf)
}

// --- Case / transforms -----------------------------------------------------

// transformWord rewrites the word at or after the cursor with f,
// leaving the cursor just past it (spec.md's upcase/downcase/
// capitalize-word semantics: the word touched is the next one, not
// necessarily the one the cursor currently sits inside).
func transformWord(e *Editor, f func(string) string) {
	b := &e.buf
	i := b.cursor
	for i < b.len() && !isWordRune(b.text[i]) {
		i++
	}
	start := i
	for i < b.len() && isWordRune(b.text[i]) {
		i++
	}
	if start == i {
		b.cursor = i
		e.screen.render(b)
		return
	}
	e.snapshotUndo()
	newWord := []rune(f(string(b.text[start:i])))
	b.deleteRange(start, i)
	b.cursor = start
	b.insert(newWord)
	e.screen.render(b)
}

func capitalizeWord(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	out := make([]rune, len(r))
	out[0] = unicode.ToUpper(r[0])
	for i := 1; i < len(r); i++ {
		out[i] = unicode.ToLower(r[i])
	}
	return string(out)
}

func opUpcaseWord(e *Editor, _ []rune)     { transformWord(e, strings.ToUpper) }
func opDowncaseWord(e *Editor, _ []rune)   { transformWord(e, strings.ToLower) }
func opCapitalizeWord(e *Editor, _ []rune) { transformWord(e, capitalizeWord) }

func opTransposeChars(e *Editor, _ []rune) {
	b := &e.buf
	if b.len() < 2 || b.cursor == 0 {
		e.screen.Bell()
		return
	}
	pos := b.cursor
	if pos >= b.len() {
		pos = b.len() - 1
	}
	e.snapshotUndo()
	b.text[pos-1], b.text[pos] = b.text[pos], b.text[pos-1]
	if b.cursor < b.len() {
		b.cursor = pos + 1
	}
	e.screen.render(b)
}

func opTransposeWords(e *Editor, _ []rune) {
	b := &e.buf
	pos := b.cursor
	end1 := pos
	for end1 > 0 && !isWordRune(b.text[end1-1]) {
		end1--
	}
	start1 := end1
	for start1 > 0 && isWordRune(b.text[start1-1]) {
		start1--
	}
	if start1 == end1 {
		e.screen.Bell()
		return
	}
	start2 := end1
	for start2 < b.len() && !isWordRune(b.text[start2]) {
		start2++
	}
	end2 := start2
	for end2 < b.len() && isWordRune(b.text[end2]) {
		end2++
	}
	if start2 == end2 {
		e.screen.Bell()
		return
	}
	e.snapshotUndo()
	w1 := append([]rune(nil), b.text[start1:end1]...)
	w2 := append([]rune(nil), b.text[start2:end2]...)
	gap := append([]rune(nil), b.text[end1:start2]...)
	newSeg := append(append(append([]rune(nil), w2...), gap...), w1...)
	b.text = append(b.text[:start1], append(newSeg, b.text[end2:]...)...)
	b.cursor = start1 + len(newSeg)
	e.screen.render(b)
}

// --- Insertion -------------------------------------------------------------

// opSelfInsert inserts the decoded code point(s) at the cursor, taking
// the screen's insert-character fast path when a single rune is typed at
// the end of the buffer (spec.md §4.8's redisplay-cost
// note); every other case falls back to a full render.
func opSelfInsert(e *Editor, seq []rune) {
	b := &e.buf
	s := e.screen
	if len(seq) == 1 && !b.overtype && b.cursor == b.len() && !s.masked &&
		s.insertAt(seq[0], s.cursorX, s.cursorY) {
		b.insert(seq)
		s.lastText = s.composed(b)
		s.computeLines(s.lastText)
		s.cursorPos = len(s.prefix) + b.cursor
		return
	}
	b.insert(seq)
	e.screen.render(b)
}

// opQuotedInsert arms the literal-next-character mode; readBinding
// (C6) consumes the flag and inserts whatever code point follows
// unconditionally, bypassing key-map lookup.
func opQuotedInsert(e *Editor, _ []rune) {
	e.disp.quotedInsert = true
}

func opTabInsert(e *Editor, _ []rune) {
	e.buf.insert([]rune{'\t'})
	e.screen.render(&e.buf)
}

var bracketPairs = map[rune]rune{')': '(', ']': '[', '}': '{'}

// opInsertCloseBracket inserts a closing bracket and, when
// blink-matching-paren is on, briefly moves the cursor to the matching
// open bracket (spec.md §6), capped at blink-matching-paren-timeout.
func opInsertCloseBracket(e *Editor, seq []rune) {
	b := &e.buf
	b.insert(seq)
	e.screen.render(b)
	if v, _ := e.config.GetVariable("blink-matching-paren"); v != "on" || len(seq) == 0 {
		return
	}
	open, ok := bracketPairs[seq[0]]
	if !ok {
		return
	}
	depth := 0
	for i := b.cursor - 2; i >= 0; i-- {
		switch b.text[i] {
		case seq[0]:
			depth++
		case open:
			if depth == 0 {
				e.blinkAt(i)
				return
			}
			depth--
		}
	}
}

// blinkAt is the BLINK_MATCHING_PAREN_TIMEOUT = 500ms-capped cursor
// flash to a matching open bracket (spec.md §6).
func (e *Editor) blinkAt(pos int) {
	timeoutUs := 500000
	if v, ok := e.config.GetVariable("blink-matching-paren-timeout"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			timeoutUs = n
		}
	}
	if timeoutUs > 500000 {
		timeoutUs = 500000
	}
	saved := e.buf.cursor
	e.buf.cursor = pos
	e.screen.MoveTo(len(e.screen.prefix) + pos)
	e.screen.Flush(e.term.out)
	time.Sleep(time.Duration(timeoutUs) * time.Microsecond)
	e.buf.cursor = saved
	e.screen.MoveTo(len(e.screen.prefix) + saved)
	e.screen.Flush(e.term.out)
}

// --- Mode --------------------------------------------------------------

func opOverwriteMode(e *Editor, _ []rune) {
	e.buf.overtype = !e.buf.overtype
}

func opToggleEditingMode(e *Editor, _ []rune) {
	if e.mode == EmacsMode {
		e.mode = ViMode
		e.activeMap = e.viInsert
	} else {
		e.mode = EmacsMode
		e.activeMap = e.emacsMap
	}
}

// opViInsertMode enters vi insert mode; bound to both 'i' (insert
// before cursor) and 'a' (append after cursor), distinguished by
// seq[0] since the two share everything but the one-column shift.
func opViInsertMode(e *Editor, seq []rune) {
	if len(seq) > 0 && seq[0] == 'a' && e.buf.cursor < e.buf.len() {
		e.buf.cursor++
	}
	e.mode = ViMode
	e.activeMap = e.viInsert
}

func opViMoveMode(e *Editor, _ []rune) {
	if e.buf.cursor > 0 {
		e.buf.cursor = e.buf.prevGraphemeStart(e.buf.cursor)
	}
	e.mode = ViMode
	e.activeMap = e.viMove
	e.screen.render(&e.buf)
}

// --- History -------------------------------------------------------------

func opPreviousHistory(e *Editor, _ []rune) {
	if !e.history.Previous(e) {
		e.screen.Bell()
	}
}

func opNextHistory(e *Editor, _ []rune) {
	if !e.history.Next(e) {
		e.screen.Bell()
	}
}

func opBeginningOfHistory(e *Editor, _ []rune) {
	if !e.history.MoveToFirst(e) {
		e.screen.Bell()
	}
}

func opEndOfHistory(e *Editor, _ []rune) {
	e.history.MoveToLast(e)
}

func opReverseSearchHistory(e *Editor, _ []rune) {
	e.history.ReverseSearch(e)
}

func opForwardSearchHistory(e *Editor, _ []rune) {
	e.history.ForwardSearch(e)
}

func opHistorySearchBackward(e *Editor, _ []rune) {
	if !e.history.substringSearch(e, true) {
		e.screen.Bell()
	}
}

func opHistorySearchForward(e *Editor, _ []rune) {
	if !e.history.substringSearch(e, false) {
		e.screen.Bell()
	}
}

// opNonIncSearchHistory implements history-search/non-incremental
// search: reads a search string from the user on a status line, then
// recalls the most recent entry containing it.
func opNonIncSearchHistory(e *Editor, _ []rune) {
	var key []rune
	e.screen.SetSuffix(&e.buf, []rune("\n(search)`'"))
	e.screen.Flush(e.term.out)
	for {
		r, err := e.term.readCodePoint()
		if err != nil || r == keyEscape {
			e.screen.SetSuffix(&e.buf, nil)
			return
		}
		if r == keyEnter || r == '\n' {
			break
		}
		if r == keyBackspace {
			if len(key) > 0 {
				key = key[:len(key)-1]
			}
		} else {
			key = append(key, r)
		}
		e.screen.SetSuffix(&e.buf, []rune("\n(search)`"+string(key)+"'"))
		e.screen.Flush(e.term.out)
	}
	e.screen.SetSuffix(&e.buf, nil)
	if len(key) == 0 {
		return
	}
	entries := e.history.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if strings.Contains(entries[i], string(key)) {
			e.replaceText([]rune(entries[i]), -1)
			return
		}
	}
	e.screen.Bell()
}

// --- Keyboard macros -------------------------------------------------------

func opStartKbdMacro(e *Editor, _ []rune) {
	e.disp.recording = true
	e.disp.macro = nil
}

func opEndKbdMacro(e *Editor, _ []rune) {
	if !e.disp.recording {
		e.screen.Bell()
		return
	}
	e.disp.recording = false
	e.disp.lastMacro = append([]rune(nil), e.disp.macro...)
	e.disp.macro = nil
}

func opCallLastKbdMacro(e *Editor, _ []rune) {
	if len(e.disp.lastMacro) == 0 {
		e.screen.Bell()
		return
	}
	e.disp.pushBack = append(append([]rune{}, e.disp.lastMacro...), e.disp.pushBack...)
}

// --- Control ---------------------------------------------------------------

func opAcceptLine(e *Editor, _ []rune) {
	line := string(e.buf.copy())
	if e.inputFinished != nil && !e.inputFinished(line) {
		e.buf.insert([]rune{'\n'})
		e.screen.render(&e.buf)
		return
	}
	e.disp.result = line
	e.disp.mode = modeDone
}

// opAbort is Control-g: a benign reset (cancels a pending vi operator,
// digit argument, or macro recording) and a beep, not a whole-read
// abort -- the isearch-active case is handled earlier by
// dispatchSearch before this widget is ever reached.
func opAbort(e *Editor, _ []rune) {
	e.disp.pendingOp = OpNone
	e.disp.isArgDigit = false
	e.disp.repeatCount = 0
	e.disp.recording = false
	e.screen.Bell()
}

func opInterrupt(e *Editor, _ []rune) {
	e.disp.mode = modeInterrupt
}

func opEndOfFileOrDelete(e *Editor, seq []rune) {
	if e.buf.len() == 0 {
		e.disp.mode = modeEOF
		return
	}
	opDeleteChar(e, seq)
}

func opClearScreen(e *Editor, _ []rune) {
	e.screen.ClearScreen(&e.buf)
}

// opReReadInitFile is intentionally a no-op: inputrc parsing is an
// external collaborator per spec.md §9, outside this core.
func opReReadInitFile(_ *Editor, _ []rune) {}

// opUniversalArgument multiplies the pending repeat count by 4, or
// starts it at 4 (GNU readline's universal-argument, spec.md §6).
// dispatch routes it like a digit argument, before the repeat count is
// consumed, so the count carries over to the next widget.
func opUniversalArgument(e *Editor, _ []rune) {
	if e.disp.isArgDigit && e.disp.repeatCount > 0 {
		e.disp.repeatCount *= 4
	} else {
		e.disp.repeatCount = 4
	}
	e.disp.isArgDigit = true
}

// opUndo is a single-level toggle, not a full undo stack (see
// DESIGN.md): it swaps the live buffer with whatever snapshotUndo last
// recorded, so invoking it twice in a row restores the pre-undo state.
func opUndo(e *Editor, _ []rune) {
	if !e.disp.hasUndo {
		e.screen.Bell()
		return
	}
	curText := e.buf.copy()
	curCursor := e.buf.cursor
	e.buf.reset(e.disp.undoText)
	e.buf.cursor = e.disp.undoCursor
	e.disp.undoText = curText
	e.disp.undoCursor = curCursor
	e.screen.render(&e.buf)
}

func opSetMark(e *Editor, _ []rune) {
	e.buf.mark = e.buf.cursor
}

// --- vi operator / motion widgets ------------------------------------------

func opViDeleteChar(e *Editor, _ []rune) {
	b := &e.buf
	end := b.nextGraphemeEnd(b.cursor)
	if end == b.cursor {
		e.screen.Bell()
		return
	}
	e.snapshotUndo()
	removed := b.deleteRange(b.cursor, end)
	if len(removed) > 0 {
		e.killRing.Append(string(removed))
	}
	e.screen.render(b)
}

func opViSubstChar(e *Editor, _ []rune) {
	b := &e.buf
	if b.cursor >= b.len() {
		e.screen.Bell()
		return
	}
	r, err := e.term.readCodePoint()
	if err != nil {
		return
	}
	e.snapshotUndo()
	b.text[b.cursor] = r
	e.screen.render(b)
}

func opViFirstPrint(e *Editor, _ []rune) {
	b := &e.buf
	i := 0
	for i < b.len() && isBlank(b.text[i]) {
		i++
	}
	b.cursor = i
	e.screen.render(b)
}

func opViCharSearch(e *Editor, seq []rune) {
	if len(seq) == 0 {
		return
	}
	cmd := seq[0]
	target, err := e.term.readCodePoint()
	if err != nil {
		return
	}
	forward := cmd == 'f' || cmd == 't'
	till := cmd == 't' || cmd == 'T'
	e.disp.charSearch = viCharSearchState{char: target, forward: forward, till: till, initialized: true}
	viCharSearchMove(e, e.disp.charSearch, false)
}

func opViRepeatCharSearch(e *Editor, seq []rune) {
	if !e.disp.charSearch.initialized {
		e.screen.Bell()
		return
	}
	reverse := len(seq) > 0 && seq[0] == ','
	viCharSearchMove(e, e.disp.charSearch, reverse)
}

func viCharSearchMove(e *Editor, st viCharSearchState, reverse bool) {
	b := &e.buf
	forward := st.forward
	if reverse {
		forward = !forward
	}
	if forward {
		start := b.cursor + 1
		if st.till {
			start++
		}
		for i := start; i < b.len(); i++ {
			if b.text[i] == st.char {
				if st.till {
					b.cursor = i - 1
				} else {
					b.cursor = i
				}
				e.screen.render(b)
				return
			}
		}
	} else {
		start := b.cursor - 1
		if st.till {
			start--
		}
		for i := start; i >= 0; i-- {
			if b.text[i] == st.char {
				if st.till {
					b.cursor = i + 1
				} else {
					b.cursor = i
				}
				e.screen.render(b)
				return
			}
		}
	}
	e.screen.Bell()
}

// opViRedo ('.') is a deliberate no-op (see DESIGN.md): repeating the
// last change requires recording which widget ran and with what
// argument, which this implementation does not track.
func opViRedo(e *Editor, _ []rune) {
	e.screen.Bell()
}

func opViAppendEol(e *Editor, _ []rune) {
	e.buf.cursor = e.buf.len()
	e.mode = ViMode
	e.activeMap = e.viInsert
	e.screen.render(&e.buf)
}

func opViInsertBeg(e *Editor, _ []rune) {
	opViFirstPrint(e, nil)
	e.mode = ViMode
	e.activeMap = e.viInsert
}

func opViReplace(e *Editor, _ []rune) {
	e.buf.overtype = true
	e.mode = ViMode
	e.activeMap = e.viInsert
}

func opViPut(e *Editor, seq []rune) {
	text := e.killRing.Yank()
	if text == nil {
		e.screen.Bell()
		return
	}
	b := &e.buf
	e.snapshotUndo()
	pos := b.cursor
	if len(seq) > 0 && seq[0] == 'p' && pos < b.len() {
		pos++
	}
	b.cursor = pos
	b.insert(text)
	e.screen.render(b)
}

func opViChangeToEol(e *Editor, _ []rune) {
	b := &e.buf
	e.snapshotUndo()
	removed := b.deleteRange(b.cursor, b.len())
	if len(removed) > 0 {
		e.killRing.Append(string(removed))
	}
	e.mode = ViMode
	e.activeMap = e.viInsert
	e.screen.render(b)
}
