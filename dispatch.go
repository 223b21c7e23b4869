package rline

import (
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"time"
)

// dispatchMode is the phase of the C6 Input Dispatch state machine
// (spec.md §3's DispatchState.mode).
type dispatchMode int

const (
	modeNormal dispatchMode = iota
	modeSearch
	modeForwardSearch
	modeViDeleteTo
	modeViChangeTo
	modeViYankTo
	modeDone
	modeEOF
	modeInterrupt
)

// viCharSearchState remembers the target of the last f/F/t/T search so
// ';'/',' can repeat it (spec.md §4.6.5).
type viCharSearchState struct {
	char        rune
	forward     bool
	till        bool
	initialized bool
}

// dispatchState is spec.md §3's DispatchState entity: everything the
// dispatch loop needs to carry between key reads within one readLine
// call. Exists only for the duration of readLine, like EditBuffer.
type dispatchState struct {
	mode dispatchMode

	repeatCount int
	isArgDigit  bool
	argNegative bool

	quotedInsert bool

	recording bool
	macro     []rune
	lastMacro []rune

	pendingOp      Operation
	pendingOpStart int
	pendingOpCount int

	charSearch viCharSearchState

	yankBuffer []rune
	pushBack   []rune

	lastYankStart, lastYankEnd int

	undoText   []rune
	undoCursor int
	hasUndo    bool

	lastWasKill  bool
	result       string
	resultErr    error
}

// runLoop is the outer loop of readLine(prompt, mask, initialBuffer)
// (spec.md §4.6.1): read a binding, dispatch it, repeat until a
// terminal mode (DONE/EOF/INTERRUPT) is reached.
func (e *Editor) runLoop() (string, error) {
	for e.disp.mode == modeNormal || e.disp.mode == modeSearch || e.disp.mode == modeForwardSearch ||
		e.disp.mode == modeViDeleteTo || e.disp.mode == modeViChangeTo || e.disp.mode == modeViYankTo {

		b, seq, err := e.readBinding(e.activeMap)
		if err != nil {
			if atomic.CompareAndSwapInt32(&e.interrupted, 1, 0) {
				return "", &UserInterruptError{Line: string(e.buf.copy())}
			}
			if errors.Is(err, io.EOF) {
				return e.finishOnEOF()
			}
			return "", err
		}

		if e.disp.recording && !isMacroControlOp(b) {
			e.disp.macro = append(e.disp.macro, seq...)
		}

		e.dispatch(b, seq)
		e.screen.Flush(e.term.out)

		switch e.disp.mode {
		case modeDone:
			return e.finishOnAccept()
		case modeEOF:
			return e.finishOnEOF()
		case modeInterrupt:
			return "", &UserInterruptError{Line: string(e.buf.copy())}
		}
	}
	return "", e.disp.resultErr
}

// finishOnAccept runs the C7 Event Expander over the committed line
// (spec.md §4.6.6) before adding it to history and returning it. An
// EventNotFoundError is recovered locally per spec.md §7: beep, clear
// the buffer, return an empty line.
func (e *Editor) finishOnAccept() (string, error) {
	line := e.disp.result

	if v, _ := e.config.GetVariable("disable-event-expansion"); v != "on" {
		expanded, changed, err := expandEvents(e.history, line)
		if err != nil {
			e.screen.Bell()
			e.screen.Flush(e.term.out)
			e.buf.clear()
			return "", nil
		}
		if changed {
			e.term.flush([]byte(expanded + "\r\n"))
			line = expanded
		}
	}

	if v, _ := e.config.GetVariable("disable-history"); v != "on" {
		e.history.Add(line)
	}
	return line, nil
}

func (e *Editor) finishOnEOF() (string, error) {
	text := string(e.buf.copy())
	if len(text) == 0 {
		return "", io.EOF
	}
	e.history.Add(text)
	return text, nil
}

func isMacroControlOp(b binding) bool {
	return b.Kind == bindOperation && (b.Op == OpStartKbdMacro || b.Op == OpEndKbdMacro || b.Op == OpCallLastKbdMacro)
}

// readBinding implements the decode half of spec.md §4.6.2: read code
// points one at a time, walking the active key map, resolving a lone
// ESC as Meta-prefix-in-progress vs. a bound action by peeking for more
// input within keyseq-timeout (only in vi-insert, or during isearch when
// ESC is a search terminator, and only while pushBack is empty; elsewhere
// an ESC that prefixes longer bindings waits for the next code point),
// and backing off to self-insert with the
// unconsumed remainder pushed back when a sequence matches no binding.
func (e *Editor) readBinding(km *KeyMap) (binding, []rune, error) {
	if e.disp.quotedInsert {
		r, err := e.nextCodePoint()
		if err != nil {
			return binding{}, nil, err
		}
		e.disp.quotedInsert = false
		return binding{Kind: bindOperation, Op: OpSelfInsert}, []rune{r}, nil
	}

	var seq []rune
	for {
		r, err := e.nextCodePoint()
		if err != nil {
			return binding{}, seq, err
		}
		seq = append(seq, r)

		peekESC := km == e.viInsert
		if !peekESC && e.history.Searching() != 0 {
			terms, _ := e.config.GetVariable("search-terminators")
			peekESC = strings.ContainsRune(terms, r)
		}
		if len(seq) == 1 && r == keyEscape && peekESC && km.hasChildren(seq) && len(e.disp.pushBack) == 0 {
			timeoutMS := 500
			if v, ok := e.config.GetVariable("keyseq-timeout"); ok {
				if n, perr := parsePositiveInt(v); perr == nil {
					timeoutMS = n
				}
			}
			if !e.term.peekTimeout(time.Duration(timeoutMS) * time.Millisecond) {
				if b, ok := km.getBound(seq); ok {
					return b, seq, nil
				}
				if b, ok := km.otherKeyAt(seq); ok {
					return b, seq, nil
				}
				return binding{Kind: bindOperation, Op: OpSelfInsert}, seq, nil
			}
			continue
		}

		if km.hasChildren(seq) {
			continue
		}

		if b, ok := km.getBound(seq); ok {
			return b, seq, nil
		}
		if b, ok := km.otherKeyAt(seq); ok {
			return b, seq, nil
		}

		// Unbound: back off to the first code point as self-insert,
		// pushing the remainder back for re-lookup.
		if len(seq) > 1 {
			e.disp.pushBack = append(append([]rune{}, seq[1:]...), e.disp.pushBack...)
		}
		return binding{Kind: bindOperation, Op: OpSelfInsert}, seq[:1], nil
	}
}

func (e *Editor) nextCodePoint() (rune, error) {
	if len(e.disp.pushBack) > 0 {
		r := e.disp.pushBack[0]
		e.disp.pushBack = e.disp.pushBack[1:]
		return r, nil
	}
	return e.term.readCodePoint()
}

// dispatch resolves one decoded binding into an editing action,
// threading it through the isearch sub-machine, the vi operator-motion
// filter, digit-argument accumulation, and kill-ring killing/yanking
// state, before finally invoking the Operation's widget.
func (e *Editor) dispatch(b binding, seq []rune) {
	switch b.Kind {
	case bindMacro:
		e.disp.pushBack = append(append([]rune{}, b.Macro...), e.disp.pushBack...)
		return
	case bindWidget:
		b.Fn(e)
		e.afterOperation(OpNone)
		return
	}

	op := b.Op
	r := seq[len(seq)-1]

	if e.history.Searching() != 0 {
		if e.dispatchSearch(op, r) {
			e.afterOperation(op)
			return
		}
	}

	if e.disp.pendingOp != OpNone {
		e.applyPendingOperator(op, r)
		return
	}

	if op == OpViBeginningOfLineOrArgDigit {
		if e.disp.isArgDigit {
			e.accumulateDigit(r)
			return
		}
		op = OpBeginningOfLine
	}
	if op == OpDigitArgument {
		e.accumulateDigit(r)
		return
	}
	if op == OpUniversalArgument {
		opUniversalArgument(e, seq)
		return
	}
	if e.disp.isArgDigit {
		e.disp.isArgDigit = false
	}

	count := e.takeRepeatCount()

	switch op {
	case OpViDeleteTo, OpViChangeTo, OpViYankTo:
		e.beginPendingOperator(op, count)
		e.afterOperation(op)
		return
	}

	fn, ok := e.widgets[op]
	if !ok {
		e.afterOperation(op)
		return
	}
	for i := 0; i < count; i++ {
		fn(e, seq)
		if e.disp.mode != modeNormal {
			break
		}
	}
	e.afterOperation(op)
}

// afterOperation updates kill-ring killing/yanking continuity: any
// operation that is not itself a kill resets killing, and any that is
// not itself a yank resets yanking (teacher's kill_ring.go Dispatch).
func (e *Editor) afterOperation(op Operation) {
	if !isKillOperation(op) {
		e.killRing.resetKilling()
	}
	if !isYankOperation(op) {
		e.killRing.resetYanking()
	}
}

func isKillOperation(op Operation) bool {
	switch op {
	case OpKillLine, OpBackwardKillLine, OpKillWholeLine, OpKillWord, OpBackwardKillWord, OpUnixWordRubout, OpUnixLineDiscard, OpKillRegion:
		return true
	}
	return false
}

func isYankOperation(op Operation) bool {
	return op == OpYank || op == OpYankPop
}

func (e *Editor) accumulateDigit(r rune) {
	e.disp.isArgDigit = true
	d := int(r - '0')
	if r == '-' && e.disp.repeatCount == 0 {
		e.disp.argNegative = true
		return
	}
	e.disp.repeatCount = e.disp.repeatCount*10 + d
}

func (e *Editor) takeRepeatCount() int {
	n := e.disp.repeatCount
	if n == 0 {
		n = 1
	}
	if e.disp.argNegative {
		n = -n
	}
	e.disp.repeatCount = 0
	e.disp.argNegative = false
	if n < 0 {
		return 1 // the sign is discarded: a negative count runs the widget once
	}
	if n > 1000 {
		n = 1000 // guard against runaway repeat counts from mistyped digits
	}
	return n
}

// beginPendingOperator starts a vi d/c/y operator awaiting its motion.
// The dd/cc/yy whole-line form is completed by applyPendingOperator
// once the second half of the pair arrives.
func (e *Editor) beginPendingOperator(op Operation, count int) {
	e.disp.pendingOp = op
	e.disp.pendingOpStart = e.buf.cursor
	e.disp.pendingOpCount = count
}

// applyPendingOperator completes a vi operator-motion pair: if the
// widget just dispatched is a recognized motion, the operator applies
// over the span between the operator's start position and the
// cursor's new position; anything else aborts the pending operator
// without acting (spec.md §4.6.4).
func (e *Editor) applyPendingOperator(op Operation, r rune) {
	// A digit extends the operator's repeat count ("d2w") without
	// resolving the operator yet; "0" only counts as a digit once a
	// count is already being accumulated, otherwise it is the
	// beginning-of-line motion ("d0").
	if op == OpDigitArgument || (op == OpViBeginningOfLineOrArgDigit && e.disp.isArgDigit) {
		e.accumulateDigit(r)
		return
	}
	if op == OpViBeginningOfLineOrArgDigit {
		op = OpBeginningOfLine
	}

	pending := e.disp.pendingOp
	e.disp.pendingOp = OpNone
	e.disp.isArgDigit = false
	motionCount := e.takeRepeatCount()

	if op == pending {
		// dd / cc / yy typed as the second half of the pair.
		e.applyOperatorRange(pending, 0, e.buf.len())
		return
	}
	if !viOperatorMotionFilter[op] {
		return
	}

	count := e.disp.pendingOpCount * motionCount
	start := e.disp.pendingOpStart
	fn, ok := e.widgets[op]
	if ok {
		for i := 0; i < count; i++ {
			fn(e, []rune{r})
		}
	}
	end := e.buf.cursor
	e.buf.cursor = start
	e.applyOperatorRange(pending, min(start, end), max(start, end))
}

// applyOperatorRange finishes a vi operator-motion pair over [a,b): d
// and c kill the span, c additionally entering insert mode; y copies
// it into the kill ring without touching the buffer (spec.md §4.6.4).
func (e *Editor) applyOperatorRange(op Operation, a, b int) {
	if op == OpViYankTo {
		if b > a {
			e.killRing.Append(string(e.buf.text[a:b]))
		}
		e.buf.cursor = a
		e.screen.render(&e.buf)
		return
	}

	e.snapshotUndo()
	removed := e.buf.deleteRange(a, b)
	if len(removed) > 0 {
		e.killRing.Append(string(removed))
	}
	e.buf.cursor = a
	e.screen.render(&e.buf)

	switch op {
	case OpViChangeTo:
		e.activeMap = e.viInsert
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// dispatchSearch routes a binding through the incremental-search
// sub-machine (spec.md §4.6.3). Returns true if the binding was
// consumed as a search action.
func (e *Editor) dispatchSearch(op Operation, r rune) bool {
	switch op {
	case OpAbort:
		e.history.AbortSearch(e)
		return true
	case OpBackwardDeleteChar:
		e.history.TruncateSearchKey(e)
		return true
	case OpReverseSearchHistory:
		e.history.ReverseSearch(e)
		return true
	case OpForwardSearchHistory:
		e.history.ForwardSearch(e)
		return true
	case OpSelfInsert:
		if isSearchPrintable(r) {
			e.history.AppendSearchKey(e, r)
			return true
		}
		e.history.CancelSearch(e)
		return false
	case OpAcceptLine:
		e.history.CancelSearch(e)
		return false
	default:
		e.history.CancelSearch(e)
		return false
	}
}

func isSearchPrintable(r rune) bool {
	return r >= 32 && r != keyBackspace
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, errors.New("empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errors.New("not a number")
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
