package rline

import "io"

// Option configures an Editor at construction time. Grounded on the
// teacher's options.go Option/apply shape, generalized from the
// teacher's single flat Prompt to the Editor's component set (history,
// kill ring, completer, editing mode, variables) this spec names.
type Option interface {
	apply(e *Editor)
}

type optionFunc func(e *Editor)

func (f optionFunc) apply(e *Editor) { f(e) }

// WithInput overrides the reader an Editor reads raw bytes from,
// primarily useful for tests.
func WithInput(r io.Reader) Option {
	return optionFunc(func(e *Editor) {
		e.term.in = r
		e.term.fd = fdOf(r)
	})
}

// WithOutput overrides the writer an Editor writes rendered output to,
// primarily useful for tests.
func WithOutput(w io.Writer) Option {
	return optionFunc(func(e *Editor) {
		e.term.out = w
	})
}

// WithSize fixes the Editor's known terminal width and height, for
// tests that have no real tty to query.
func WithSize(width, height int) Option {
	return optionFunc(func(e *Editor) {
		e.term.setSize(width, height)
		e.screen.SetSize(width, height)
	})
}

// WithInputFinished installs a callback consulted when ACCEPT_LINE is
// dispatched: if it returns false, a newline is inserted into the
// buffer instead of finishing the read (e.g. a SQL REPL waiting for a
// terminating semicolon).
func WithInputFinished(fn func(text string) bool) Option {
	return optionFunc(func(e *Editor) {
		e.inputFinished = fn
	})
}

// WithCompleter installs the candidate-completion callback consulted
// by OpComplete/OpPossibleCompletions/OpInsertCompletions.
func WithCompleter(c Completer) Option {
	return optionFunc(func(e *Editor) {
		e.completer = c
	})
}

// WithClipboard installs the external clipboard consulted by the
// paste-from-clipboard widget.
func WithClipboard(c Clipboard) Option {
	return optionFunc(func(e *Editor) {
		e.clipboard = c
	})
}

// WithHighlighter installs a syntax highlighter consulted on redisplay.
func WithHighlighter(h Highlighter) Option {
	return optionFunc(func(e *Editor) {
		e.screen.SetHighlighter(h)
	})
}

// WithHistory replaces the Editor's history store, e.g. with one
// restored from a caller-managed persistence file.
func WithHistory(h *History) Option {
	return optionFunc(func(e *Editor) {
		e.history = h
	})
}

// WithHistorySize bounds a freshly created History to n entries (-1
// for unbounded). Ignored if WithHistory is also supplied after it.
func WithHistorySize(n int) Option {
	return optionFunc(func(e *Editor) {
		e.history = NewHistory(n)
	})
}

// WithKillRingSize overrides the kill ring's default capacity of 60
// slots (spec.md §4.5).
func WithKillRingSize(n int) Option {
	return optionFunc(func(e *Editor) {
		e.killRing = newKillRing(n)
	})
}

// WithEditingMode selects emacs or vi bindings as the initial active
// key map.
func WithEditingMode(m EditingMode) Option {
	return optionFunc(func(e *Editor) {
		e.mode = m
		if m == ViMode {
			e.activeMap = e.viInsert
		} else {
			e.activeMap = e.emacsMap
		}
	})
}

// WithVariable sets an inputrc-style variable (spec.md §6) at
// construction time, e.g. WithVariable("keyseq-timeout", "100").
func WithVariable(name, value string) Option {
	return optionFunc(func(e *Editor) {
		e.config.SetVariable(name, value)
	})
}

func fdOf(r interface{}) int {
	if f, ok := r.(interface{ Fd() uintptr }); ok {
		return int(f.Fd())
	}
	return -1
}
