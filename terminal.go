package rline

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2/terminfo"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// keySeqTimeout is the default value of the keyseq-timeout variable
// (spec.md §4.6.2). Nothing refers to the constant: readBinding parses the
// variable itself, falling back to 500ms, and hands the duration to
// peekTimeout.
const keySeqTimeout = 500 * time.Millisecond

// terminal is the C1 Terminal I/O Port: raw-mode lifecycle, code-point
// decoding, terminfo capability lookups, size queries, and signal
// plumbing. Grounded on the teacher's prompt.go (MakeRaw/Restore,
// SIGWINCH wiring, updateSize) generalized with a cancellable read loop
// in the style of chzyer-readline's Terminal/KickRead, plus termios
// special-char extraction (golang.org/x/sys/unix) the teacher never
// needed.
type terminal struct {
	fd  int
	in  io.Reader
	out io.Writer

	mu      sync.Mutex
	pending []byte
	buf     [256]byte

	width, height int

	ti *terminfo.Terminfo

	sigwinch chan os.Signal
	sigcont  chan os.Signal
	onResize func()

	specialChars map[string]rune // bind-tty-special-chars: name -> rune, e.g. "erase" -> VERASE
}

func newTerminal(in io.Reader, out io.Writer) *terminal {
	t := &terminal{in: in, out: out, fd: -1}
	if f, ok := in.(interface{ Fd() uintptr }); ok {
		t.fd = int(f.Fd())
	}
	ti, _ := terminfo.LookupTerminfo(os.Getenv("TERM"))
	t.ti = ti
	return t
}

// enterRaw puts the terminal into raw mode, returning a restore function.
// If the terminal has no fd (e.g. in tests with a bytes.Buffer) it is a
// no-op, matching the teacher's p.fd != -1 guard in ReadLine.
func (t *terminal) enterRaw() (restore func(), err error) {
	if t.fd == -1 {
		return func() {}, nil
	}
	saved, err := term.MakeRaw(t.fd)
	if err != nil {
		return nil, err
	}
	return func() { _ = term.Restore(t.fd, saved) }, nil
}

// watchResize starts a goroutine invoking fn whenever SIGWINCH fires,
// mirroring the teacher's ReadLine SIGWINCH plumbing. The returned
// function stops the watch.
func (t *terminal) watchResize(fn func()) func() {
	if t.fd == -1 {
		return func() {}
	}
	t.sigwinch = make(chan os.Signal, 1)
	signal.Notify(t.sigwinch, syscall.SIGWINCH)
	go func() {
		for range t.sigwinch {
			fn()
		}
	}()
	return func() {
		signal.Stop(t.sigwinch)
		close(t.sigwinch)
	}
}

// watchInterrupt invokes fn on SIGINT, and best-effort unblocks a read
// already in progress by setting an expired read deadline on in, if it
// supports one (spec.md §5's cancellation: "INT interrupts the current
// read"). The returned function stops the watch.
func (t *terminal) watchInterrupt(fn func()) func() {
	if t.fd == -1 {
		return func() {}
	}
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT)
	go func() {
		for range sigint {
			if dl, ok := t.in.(interface{ SetReadDeadline(time.Time) error }); ok {
				_ = dl.SetReadDeadline(time.Now())
			}
			fn()
		}
	}()
	return func() {
		signal.Stop(sigint)
		close(sigint)
	}
}

// size returns the current terminal width and height.
func (t *terminal) size() (width, height int, err error) {
	if t.fd == -1 {
		if t.width == 0 {
			t.width, t.height = 80, 24
		}
		return t.width, t.height, nil
	}
	return term.GetSize(t.fd)
}

// setSize overrides the terminal's known size, used by WithSize for
// tests that have no real tty.
func (t *terminal) setSize(width, height int) {
	t.width, t.height = width, height
}

// specialChar reads one VERASE/VWERASE/VKILL/VLNEXT-style termios
// special character by name, for the bind-tty-special-chars variable
// (spec.md §6). Returns 0 if unavailable (no fd, or unsupported name).
func (t *terminal) specialChar(name string) rune {
	if t.fd == -1 {
		return 0
	}
	term, err := unix.IoctlGetTermios(t.fd, ioctlGetTermiosRequest)
	if err != nil {
		return 0
	}
	idx, ok := map[string]int{
		"erase":  unix.VERASE,
		"werase": unix.VWERASE,
		"kill":   unix.VKILL,
		"lnext":  unix.VLNEXT,
	}[name]
	if !ok {
		return 0
	}
	return rune(term.Cc[idx])
}

// caps returns the loaded terminfo capability set, or nil if the
// terminal database had no entry for $TERM. screen.go reads Bell,
// Clear, and AutoMargin directly off it (bell, clear_screen, and
// auto_right_margin in spec.md §6's vocabulary) and falls back to
// portable ANSI sequences for capabilities this trimmed, tcell-Screen-
// oriented struct doesn't carry as named fields (parm_ich/parm_dch/
// clr_eol/cursor motions) or when nil.
func (t *terminal) caps() *terminfo.Terminfo {
	return t.ti
}

// flush writes buffered output bytes to the terminal.
func (t *terminal) flush(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	_, err := t.out.Write(b)
	return err
}

// fillPending copies any unconsumed bytes from a previous decode back to
// the front of the read buffer and blocks for at least one more read,
// exactly as the teacher's ReadLine main loop does with p.inBytes/p.inBuf.
func (t *terminal) fillPending() error {
	if len(t.pending) > 0 {
		n := copy(t.buf[:], t.pending)
		t.pending = t.buf[:n]
	}
	readBuf := t.buf[len(t.pending):]
	n, err := t.in.Read(readBuf)
	if err != nil {
		return err
	}
	t.pending = t.buf[:n+len(t.pending)]
	return nil
}

// readCodePoint decodes one input unit: a UTF-8 rune, or a recognized
// ESC-prefixed special key collapsed to a single pseudo rune, or a bare
// ESC (Meta prefix). It blocks on the underlying reader as needed.
//
// No timeout applies here: an ESC that is the last pending byte, or one
// followed by a byte other than '[' or 'O', is returned as a bare ESC at
// once, while an unfinished ESC [ / ESC O sequence blocks until more
// bytes arrive. Timing out a lone ESC is left to readBinding, through
// peekTimeout.
func (t *terminal) readCodePoint() (rune, error) {
	for {
		if r, ok := t.tryDecodePending(); ok {
			return r, nil
		}
		if err := t.fillPending(); err != nil {
			return utf8.RuneError, err
		}
	}
}

func (t *terminal) tryDecodePending() (rune, bool) {
	buf := t.pending
	if len(buf) == 0 {
		return 0, false
	}
	if buf[0] == keyEscape && len(buf) > 1 {
		if r, rest, ok := decodeEscapeSequence(buf); ok {
			t.pending = rest
			return r, true
		}
		// Not a recognized multi-byte sequence: if buf[1] can't possibly
		// extend into one (not '[' / 'O'), this is Meta-<something>; emit
		// bare ESC and let the next call decode buf[1:] as the "something".
		if buf[1] != '[' && buf[1] != 'O' {
			t.pending = buf[1:]
			return keyEscape, true
		}
		return 0, false // wait for more bytes
	}
	if !utf8.FullRune(buf) {
		return 0, false
	}
	r, size := utf8.DecodeRune(buf)
	t.pending = buf[size:]
	return r, true
}

// peekTimeout reports whether more input is available, waiting up to d.
// Bytes already pending count at once; deadliner readers (os.File) are
// read under a deadline of d; any other reader reports false at once,
// matching the spirit of the teacher's comment that ESC alone must
// resolve quickly.
func (t *terminal) peekTimeout(d time.Duration) bool {
	if len(t.pending) > 0 {
		return true
	}
	type deadliner interface {
		SetReadDeadline(time.Time) error
	}
	dl, ok := t.in.(deadliner)
	if !ok {
		return false
	}
	_ = dl.SetReadDeadline(time.Now().Add(d))
	defer dl.SetReadDeadline(time.Time{})
	err := t.fillPending()
	return err == nil && len(t.pending) > 0
}
