package rline

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestEditor(t *testing.T, input string, opts ...Option) (*Editor, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	base := []Option{
		WithInput(strings.NewReader(input)),
		WithOutput(&out),
		WithSize(80, 24),
	}
	e := New(append(base, opts...)...)
	return e, &out
}

func TestReadLineBasicInput(t *testing.T) {
	e, _ := newTestEditor(t, "hello\r")
	defer e.Close()
	line, err := e.ReadLinePrompt("> ")
	require.NoError(t, err)
	require.Equal(t, "hello", line)
}

func TestReadLineBackspaceEdits(t *testing.T) {
	e, _ := newTestEditor(t, "helllo\x7f\x7fo\r")
	defer e.Close()
	line, err := e.ReadLinePrompt("> ")
	require.NoError(t, err)
	require.Equal(t, "hello", line)
}

func TestReadLineEmacsKillAndYank(t *testing.T) {
	// type "hello world", C-a (beginning-of-line), C-k (kill-line), C-y (yank), Enter
	e, _ := newTestEditor(t, "hello world\x01\x0b\x19\r")
	defer e.Close()
	line, err := e.ReadLinePrompt("> ")
	require.NoError(t, err)
	require.Equal(t, "hello world", line)
}

func TestReadLineHistoryRecall(t *testing.T) {
	h := NewHistory(-1)
	h.Add("select 1")
	e, _ := newTestEditor(t, "\x10\r", WithHistory(h)) // C-p then Enter
	defer e.Close()
	line, err := e.ReadLinePrompt("> ")
	require.NoError(t, err)
	require.Equal(t, "select 1", line)
}

func TestReadLineMaskedHidesInput(t *testing.T) {
	e, out := newTestEditor(t, "secret\r")
	defer e.Close()
	line, err := e.ReadLineMasked("password: ", '*')
	require.NoError(t, err)
	require.Equal(t, "secret", line)
	require.NotContains(t, out.String(), "secret")
	require.Equal(t, 6, strings.Count(out.String(), "*"))
}

func TestReadLineMaskedZeroHidesEntirely(t *testing.T) {
	e, out := newTestEditor(t, "secret\r")
	defer e.Close()
	line, err := e.ReadLineMasked("password: ", 0)
	require.NoError(t, err)
	require.Equal(t, "secret", line)
	require.NotContains(t, out.String(), "secret")
	require.NotContains(t, out.String(), "*")
}

func TestReadLineInterrupt(t *testing.T) {
	e, _ := newTestEditor(t, "abc\x03")
	defer e.Close()
	_, err := e.ReadLinePrompt("> ")
	require.Error(t, err)
	var interrupt *UserInterruptError
	require.ErrorAs(t, err, &interrupt)
	require.Equal(t, "abc", interrupt.Line)
}

func TestReadLineEOFOnEmptyBuffer(t *testing.T) {
	e, _ := newTestEditor(t, "\x04")
	defer e.Close()
	_, err := e.ReadLinePrompt("> ")
	require.Error(t, err)
	require.True(t, errors.Is(err, io.EOF))
}

func TestReadLineMultiLineUntilSemicolon(t *testing.T) {
	inputFinished := func(text string) bool {
		return strings.HasSuffix(strings.TrimSpace(text), ";")
	}
	e, _ := newTestEditor(t, "select 1\rfrom foo;\r", WithInputFinished(inputFinished))
	defer e.Close()
	line, err := e.ReadLinePrompt("> ")
	require.NoError(t, err)
	require.Equal(t, "select 1\nfrom foo;", line)
}

func TestReadLineViDeleteWholeLine(t *testing.T) {
	// vi-insert "hello world", ESC to vi-move, dd deletes the whole line,
	// i re-enters insert mode, then "world" is typed fresh.
	e, _ := newTestEditor(t, "hello world\x1bdd"+"iworld\r", WithEditingMode(ViMode))
	defer e.Close()
	line, err := e.ReadLinePrompt("> ")
	require.NoError(t, err)
	require.Equal(t, "world", line)
}

func TestReadLineTabCompletion(t *testing.T) {
	completer := func(text []rune, wordStart, wordEnd int) []string {
		word := string(text[wordStart:wordEnd])
		if strings.HasPrefix("select", word) {
			return []string{"select"}
		}
		return nil
	}
	e, _ := newTestEditor(t, "sel\t\r", WithCompleter(completer))
	defer e.Close()
	line, err := e.ReadLinePrompt("> ")
	require.NoError(t, err)
	require.Equal(t, "select", line)
}
