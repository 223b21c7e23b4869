package rline

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

// UserInterruptError is returned by ReadLine when the user cancels
// input (Control-c, bound to the interrupt widget in every key map, or
// SIGINT during a read), carrying whatever
// text had been entered so far. Grounded in
// other_examples/.../chzyer-readline-operation.go's InterruptError,
// which likewise threads the in-progress line back to the caller
// instead of discarding it.
type UserInterruptError struct {
	Line string
}

func (e *UserInterruptError) Error() string {
	return fmt.Sprintf("interrupt with %q", e.Line)
}

// Config holds inputrc-style variables consulted by the dispatch and
// redisplay components (spec.md §6). Populated with GNU readline's
// documented defaults and overridable via WithVariable or SetVariable.
type Config struct {
	mu        sync.Mutex
	variables map[string]string
}

func newConfig() *Config {
	c := &Config{variables: map[string]string{
		"bell-style":                   "audible",
		"prefer-visible-bell":          "off",
		"keyseq-timeout":               "500",
		"completion-query-items":       "100",
		"page-completions":             "on",
		"disable-completion":           "off",
		"bind-tty-special-chars":       "on",
		"horizontal-scroll-mode":       "off",
		"blink-matching-paren":         "off",
		"blink-matching-paren-timeout": "500000",
		"comment-begin":                "#",
		"disable-history":              "off",
		"disable-event-expansion":      "off",
		"search-terminators":           "\x1b\r",
		"copy-paste-detection":         "off",
	}}
	return c
}

// GetVariable returns the named variable's value and whether it is set.
func (c *Config) GetVariable(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.variables[name]
	return v, ok
}

// SetVariable sets the named variable's value.
func (c *Config) SetVariable(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.variables[name] = value
}

// EditingMode selects the active top-level key map.
type EditingMode int

const (
	EmacsMode EditingMode = iota
	ViMode
)

// Editor reads lines of input with emacs- or vi-style editing, history
// recall/search, a kill ring, and incremental redisplay. Grounded on
// the teacher's Prompt: same fd/in/out/option shape, same mutex-guarded
// nested-state layout, generalized to separate components (terminal,
// buffer, screen, history, killRing, keymaps, dispatch, widgets, config)
// instead of the teacher's single flat state+bindings pair.
type Editor struct {
	term   *terminal
	screen *screen

	config *Config

	history  *History
	killRing *killRing

	completer Completer
	clipboard Clipboard

	mode       EditingMode
	emacsMap   *KeyMap
	viInsert   *KeyMap
	viMove     *KeyMap
	activeMap  *KeyMap
	userMacros map[string][]rune

	widgets map[Operation]func(*Editor, []rune)

	inputFinished func(text string) bool

	mu sync.Mutex

	interrupted int32 // atomic: set by a SIGINT handler run outside the mu-held readLine call

	buf  buffer
	disp dispatchState
	sess *readlineSession
}

// readlineSession holds the per-call state described by spec.md's
// ReadlineSession entity: only meaningful while readLine is running.
type readlineSession struct {
	prompt             []rune
	promptDisplayWidth int
	masked             bool // true for ReadLineMasked, and for ReadLineInitial with a nonzero mask
	mask               rune // meaningful only when masked is true; 0 hides input entirely
	originalBuffer     []rune
	originalPrompt     []rune
}

// New creates an Editor reading from os.Stdin and writing to os.Stdout
// unless overridden by options.
func New(options ...Option) *Editor {
	e := &Editor{
		config:     newConfig(),
		history:    NewHistory(500),
		killRing:   newKillRing(60),
		emacsMap:   newEmacsKeyMap(),
		viInsert:   newViInsertKeyMap(),
		viMove:     newViMoveKeyMap(),
		userMacros: make(map[string][]rune),
	}
	e.term = newTerminal(os.Stdin, os.Stdout)
	e.screen = newScreen(e.term)
	e.activeMap = e.emacsMap

	for _, opt := range options {
		opt.apply(e)
	}

	if v, _ := e.config.GetVariable("bind-tty-special-chars"); v == "on" {
		e.applyTtySpecialChars()
	}

	e.widgets = newWidgetTable(e)
	return e
}

// applyTtySpecialChars overrides the default C-?, C-W, C-U, C-V
// bindings in the emacs and vi-insert maps with whatever the terminal's
// own VERASE/VWERASE/VKILL/VLNEXT are set to, per spec.md §6: the
// default code point is rebound to SELF_INSERT and the terminal's code
// point is bound to the operation instead.
func (e *Editor) applyTtySpecialChars() {
	rebind := []struct {
		name    string
		op      Operation
		deflt   rune
	}{
		{"erase", OpBackwardDeleteChar, keyBackspace},
		{"werase", OpUnixWordRubout, ctrlOf('W')},
		{"kill", OpUnixLineDiscard, ctrlOf('U')},
		{"lnext", OpQuotedInsert, ctrlOf('V')},
	}
	for _, km := range []*KeyMap{e.emacsMap, e.viInsert} {
		for _, r := range rebind {
			c := e.term.specialChar(r.name)
			if c == 0 || c == r.deflt {
				continue
			}
			km.BindOperation([]rune{r.deflt}, OpSelfInsert)
			km.BindOperation([]rune{c}, r.op)
		}
	}
}

// Close releases any resources held by the Editor.
func (e *Editor) Close() error { return nil }

// History returns the Editor's history store.
func (e *Editor) History() *History { return e.history }

// SetHistory replaces the Editor's history store.
func (e *Editor) SetHistory(h *History) { e.history = h }

// SetHighlighter installs a syntax highlighter consulted on redisplay.
func (e *Editor) SetHighlighter(h Highlighter) { e.screen.SetHighlighter(h) }

// SetCompleter installs the candidate-completion callback.
func (e *Editor) SetCompleter(c Completer) { e.completer = c }

// KeyMapName returns the name of the currently active key map.
func (e *Editor) KeyMapName() string { return e.activeMap.Name() }

// BindWidget binds a single key sequence directly to a user-supplied
// closure in the active editing mode's key map (spec.md §6's
// "triggered-action registration").
func (e *Editor) BindWidget(spec string, fn Widget) error {
	seq, err := parseKeySequence(spec)
	if err != nil {
		return err
	}
	e.activeMap.BindWidget(seq, fn)
	return nil
}

// Config returns the Editor's variable set.
func (e *Editor) Config() *Config { return e.config }

// ReadLine reads one line of input with the empty prompt.
func (e *Editor) ReadLine() (string, error) { return e.readLine("", false, 0, nil) }

// ReadLinePrompt reads one line of input with the given prompt.
func (e *Editor) ReadLinePrompt(prompt string) (string, error) {
	return e.readLine(prompt, false, 0, nil)
}

// ReadLineMasked reads one line of input, echoing mask in place of
// every typed character (for password entry). A mask of 0 hides the
// input entirely instead of echoing anything (spec.md §4.7 step 1).
func (e *Editor) ReadLineMasked(prompt string, mask rune) (string, error) {
	return e.readLine(prompt, true, mask, nil)
}

// ReadLineInitial reads one line of input starting from initial text,
// with the cursor placed at its end. A nonzero mask masks the initial
// text too; mask 0 leaves it unmasked (ReadLineInitial has no use for
// "fully hidden with preloaded text").
func (e *Editor) ReadLineInitial(prompt string, mask rune, initial string) (string, error) {
	return e.readLine(prompt, mask != 0, mask, []rune(initial))
}

func (e *Editor) readLine(prompt string, masked bool, mask rune, initial []rune) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if w, h, err := e.term.size(); err == nil {
		e.screen.SetSize(w, h)
	}
	stopResize := e.term.watchResize(func() {
		if w, h, err := e.term.size(); err == nil {
			e.mu.Lock()
			e.screen.SetSize(w, h)
			e.screen.render(&e.buf)
			e.screen.Flush(e.term.out)
			e.mu.Unlock()
		}
	})
	defer stopResize()

	stopInterrupt := e.term.watchInterrupt(func() {
		atomic.StoreInt32(&e.interrupted, 1)
	})
	defer stopInterrupt()

	restore, err := e.term.enterRaw()
	if err != nil {
		return "", err
	}
	defer restore()

	e.sess = &readlineSession{prompt: []rune(prompt), masked: masked, mask: mask}
	e.disp = dispatchState{}
	e.buf.reset(initial)
	e.screen.SetMask(masked, mask)
	e.screen.Reset(e.sess.prompt, &e.buf)
	e.screen.Flush(e.term.out)

	return e.runLoop()
}

// --- editSource implementation (consumed by History) -----------------

func (e *Editor) currentText() []rune { return e.buf.copy() }
func (e *Editor) cursorOffset() int   { return e.buf.cursor }

func (e *Editor) replaceText(text []rune, cursor int) {
	e.buf.reset(text)
	if cursor >= 0 && cursor <= len(text) {
		e.buf.cursor = cursor
	}
	e.screen.render(&e.buf)
}

func (e *Editor) setStatusSuffix(suffix []rune) {
	e.screen.SetSuffix(&e.buf, suffix)
}

// errAbortSilent is a sentinel for unwinding the current readLine call
// without producing a result. No widget returns it: opAbort (CTRL-G)
// beeps and resets state instead.
var errAbortSilent = errors.New("rline: silent abort")
