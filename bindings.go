package rline

// Operation is the closed set of named editing actions a key sequence
// can resolve to (spec.md §4.8, "Dynamic dispatch via operation tags").
// Unlike the teacher's three separate map[command]commandFunc tables
// (one each for bind.go, kill_ring.go, history.go), every widget here is
// reached through a single table keyed by Operation, whose functions
// take the Editor as their first argument.
type Operation int

const (
	OpNone Operation = iota

	// Cursor motion.
	OpForwardChar
	OpBackwardChar
	OpForwardWord
	OpBackwardWord
	OpBeginningOfLine
	OpEndOfLine
	OpPreviousLine
	OpNextLine

	// Deletion.
	OpDeleteChar
	OpBackwardDeleteChar
	OpDeleteHorizontalSpace

	// Killing / yanking.
	OpKillLine
	OpBackwardKillLine
	OpKillWholeLine
	OpKillWord
	OpBackwardKillWord
	OpUnixWordRubout
	OpUnixLineDiscard
	OpYank
	OpYankPop
	OpKillRegion

	// Case / transforms.
	OpUpcaseWord
	OpDowncaseWord
	OpCapitalizeWord
	OpTransposeChars
	OpTransposeWords

	// Insertion.
	OpSelfInsert
	OpQuotedInsert
	OpTabInsert
	OpInsertCloseBracket

	// Mode.
	OpOverwriteMode
	OpToggleEditingMode
	OpViInsertMode
	OpViMoveMode

	// History.
	OpPreviousHistory
	OpNextHistory
	OpBeginningOfHistory
	OpEndOfHistory
	OpReverseSearchHistory
	OpForwardSearchHistory
	OpHistorySearchBackward
	OpHistorySearchForward
	OpNonIncSearchHistory

	// Completion.
	OpComplete
	OpPossibleCompletions
	OpInsertCompletions

	// Keyboard macros.
	OpStartKbdMacro
	OpEndKbdMacro
	OpCallLastKbdMacro

	// Control.
	OpAcceptLine
	OpAbort
	OpInterrupt
	OpEndOfFileOrDelete
	OpClearScreen
	OpReReadInitFile
	OpDigitArgument
	OpUniversalArgument
	OpUndo
	OpSetMark
	OpPasteFromClipboard

	// vi operator/motion.
	OpViDeleteTo
	OpViChangeTo
	OpViYankTo
	OpViDeleteChar
	OpViSubstChar
	OpViFirstPrint
	OpViCharSearch
	OpViRepeatCharSearch
	OpViRedo
	OpViAppendEol
	OpViInsertBeg
	OpViReplace
	OpViPut
	OpViChangeToEol
	OpViBeginningOfLineOrArgDigit
)

// defaultOtherKey installs self-insert as the fallback for any code
// point not otherwise bound in an insertion-mode map, mirroring the
// teacher's "anything not a control char inserts itself" default in
// bind.go.
func defaultOtherKey() binding {
	return binding{Kind: bindOperation, Op: OpSelfInsert}
}

// mustBindOperation parses a bind-line key spec and installs it,
// panicking on malformed built-in tables (a programmer error, not a
// runtime condition) -- matches the teacher's bind.go init-time table
// construction, which likewise treats a bad literal as fatal.
func mustBindOperation(k *KeyMap, spec string, op Operation) {
	seq, err := parseKeySequence(spec)
	if err != nil {
		panic(err)
	}
	k.BindOperation(seq, op)
}

// newEmacsKeyMap builds the default emacs keymap, grounded on the
// teacher's bind.go defaultBindings table and extended with the
// operations spec.md names that the teacher never bound (isearch,
// kbd macros, transforms).
func newEmacsKeyMap() *KeyMap {
	k := NewKeyMap("emacs")
	k.SetOtherKey(defaultOtherKey())

	binds := []struct {
		spec string
		op   Operation
	}{
		{"Control-a", OpBeginningOfLine},
		{"Control-b", OpBackwardChar},
		{"Control-d", OpEndOfFileOrDelete},
		{"Control-e", OpEndOfLine},
		{"Control-f", OpForwardChar},
		{"Control-g", OpAbort},
		{"Control-h", OpBackwardDeleteChar},
		{"backspace", OpBackwardDeleteChar},
		{"Control-i", OpComplete},
		{"tab", OpComplete},
		{"Control-j", OpAcceptLine},
		{"enter", OpAcceptLine},
		{"Control-k", OpKillLine},
		{"Control-l", OpClearScreen},
		{"Control-m", OpAcceptLine},
		{"Control-n", OpNextHistory},
		{"Control-p", OpPreviousHistory},
		{"Control-q", OpQuotedInsert},
		{"Control-r", OpReverseSearchHistory},
		{"Control-s", OpForwardSearchHistory},
		{"Control-t", OpTransposeChars},
		{"Control-u", OpUnixLineDiscard},
		{"Control-v", OpQuotedInsert},
		{"Control-w", OpUnixWordRubout},
		{"Control-y", OpYank},
		{"Control-c", OpInterrupt},
		{"Control-_", OpUndo},
		{"Control-x Control-u", OpUndo},
		{"Control-x Control-x", OpTransposeChars},
		{"Control-[", OpAbort},
		{"delete", OpDeleteChar},
		{"home", OpBeginningOfLine},
		{"end", OpEndOfLine},
		{"left", OpBackwardChar},
		{"right", OpForwardChar},
		{"up", OpPreviousHistory},
		{"down", OpNextHistory},
		{"Meta-b", OpBackwardWord},
		{"Meta-f", OpForwardWord},
		{"Meta-d", OpKillWord},
		{"Meta-backspace", OpBackwardKillWord},
		{"Meta-y", OpYankPop},
		{"Meta-u", OpUpcaseWord},
		{"Meta-l", OpDowncaseWord},
		{"Meta-c", OpCapitalizeWord},
		{"Meta-t", OpTransposeWords},
		{"Meta-r", OpReReadInitFile},
		{"Meta-<", OpBeginningOfHistory},
		{"Meta->", OpEndOfHistory},
		{"Meta-.", OpYank},
		{"Meta-space", OpUniversalArgument},
		{"Meta-?", OpPossibleCompletions},
		{"Meta-*", OpInsertCompletions},
		{"Meta-Control-e", OpViInsertMode}, // emacs-editing-mode toggle target
		{"Control-@", OpSetMark},
		{")", OpInsertCloseBracket},
		{"]", OpInsertCloseBracket},
		{"}", OpInsertCloseBracket},
	}
	for _, b := range binds {
		mustBindOperation(k, b.spec, b.op)
	}
	return k
}

// newViInsertKeyMap builds the vi-insert keymap: self-insert is the
// default, with ESC switching to vi-move and a handful of control
// characters kept live (matching the teacher's lack of vi support, this
// table is wholly new, grounded in miles-to-go-readline-vim.go's
// insert-mode table).
func newViInsertKeyMap() *KeyMap {
	k := NewKeyMap("vi-insert")
	k.SetOtherKey(defaultOtherKey())

	binds := []struct {
		spec string
		op   Operation
	}{
		{"escape", OpViMoveMode},
		{"Control-h", OpBackwardDeleteChar},
		{"backspace", OpBackwardDeleteChar},
		{"Control-j", OpAcceptLine},
		{"enter", OpAcceptLine},
		{"Control-m", OpAcceptLine},
		{"Control-w", OpUnixWordRubout},
		{"Control-u", OpUnixLineDiscard},
		{"Control-r", OpReverseSearchHistory},
		{"Control-v", OpQuotedInsert},
		{"Control-c", OpInterrupt},
		{"tab", OpComplete},
	}
	for _, b := range binds {
		mustBindOperation(k, b.spec, b.op)
	}
	return k
}

// newViMoveKeyMap builds the vi command (normal) mode keymap: motions,
// operators, and mode switches, grounded in
// miles-to-go-readline-vim.go's viCommands and
// landry-some-readline-standard-widgets.go.
func newViMoveKeyMap() *KeyMap {
	k := NewKeyMap("vi-move")

	binds := []struct {
		spec string
		op   Operation
	}{
		{"h", OpBackwardChar},
		{"left", OpBackwardChar},
		{"l", OpForwardChar},
		{"right", OpForwardChar},
		{"w", OpForwardWord},
		{"b", OpBackwardWord},
		{"0", OpBeginningOfLine},
		{"$", OpEndOfLine},
		{"^", OpViFirstPrint},
		{"i", OpViInsertMode},
		{"a", OpViInsertMode},
		{"I", OpViInsertBeg},
		{"A", OpViAppendEol},
		{"x", OpViDeleteChar},
		{"X", OpBackwardDeleteChar},
		{"d", OpViDeleteTo},
		{"c", OpViChangeTo},
		{"y", OpViYankTo},
		{"D", OpKillLine},
		{"C", OpViChangeToEol},
		{"p", OpViPut},
		{"P", OpViPut},
		{"r", OpViSubstChar},
		{"R", OpViReplace},
		{"u", OpUndo},
		{"f", OpViCharSearch},
		{"F", OpViCharSearch},
		{"t", OpViCharSearch},
		{"T", OpViCharSearch},
		{";", OpViRepeatCharSearch},
		{",", OpViRepeatCharSearch},
		{"Control-r", OpReverseSearchHistory},
		{"k", OpPreviousHistory},
		{"up", OpPreviousHistory},
		{"j", OpNextHistory},
		{"down", OpNextHistory},
		{"Control-j", OpAcceptLine},
		{"enter", OpAcceptLine},
		{"Control-m", OpAcceptLine},
		{"Control-d", OpEndOfFileOrDelete},
		{"Control-c", OpInterrupt},
		{"escape", OpAbort},
		{".", OpViRedo},
	}
	for _, b := range binds {
		mustBindOperation(k, b.spec, b.op)
	}
	k.BindOperation([]rune{'0'}, OpViBeginningOfLineOrArgDigit)
	for d := '1'; d <= '9'; d++ {
		k.BindOperation([]rune{d}, OpDigitArgument)
	}
	return k
}

// viOperatorMotionFilter is the set of operations valid as the motion
// half of a d/c/y operator-motion pair (spec.md §4.6.4); widgets outside
// this set abort the pending operator instead of completing it.
var viOperatorMotionFilter = map[Operation]bool{
	OpForwardChar:                 true,
	OpBackwardChar:                true,
	OpForwardWord:                 true,
	OpBackwardWord:                true,
	OpBeginningOfLine:             true,
	OpEndOfLine:                   true,
	OpViFirstPrint:                true,
	OpViCharSearch:                true,
	OpDigitArgument:               true,
	OpViBeginningOfLineOrArgDigit: true,
	OpViDeleteTo:                  true, // dd
	OpViChangeTo:                  true, // cc
	OpViYankTo:                    true, // yy
}
