package rline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScreenComputeLinesWraps(t *testing.T) {
	s := newScreen(newTerminal(nil, &bytes.Buffer{}))
	s.SetSize(5, 24)
	s.computeLines([]rune("hello world"))
	require.Len(t, s.lines, 3)
	require.Equal(t, lineInfo{startPos: 0, endPos: 5, y: 0}, s.lines[0])
	require.Equal(t, lineInfo{startPos: 5, endPos: 10, y: 1}, s.lines[1])
	require.Equal(t, lineInfo{startPos: 10, endPos: 11, y: 2}, s.lines[2])
}

func TestScreenComputeLinesSplitsOnNewline(t *testing.T) {
	s := newScreen(newTerminal(nil, &bytes.Buffer{}))
	s.SetSize(80, 24)
	s.computeLines([]rune("abc\ndef"))
	require.Len(t, s.lines, 2)
	require.Equal(t, 0, s.lines[0].startPos)
	require.Equal(t, 3, s.lines[0].endPos)
	require.Equal(t, 4, s.lines[1].startPos)
	require.Equal(t, 7, s.lines[1].endPos)
}

func TestCellWidthCountsWideRunes(t *testing.T) {
	require.Equal(t, 3, cellWidth([]rune("abc")))
	// a fullwidth CJK character occupies two terminal cells.
	require.Equal(t, 2, cellWidth([]rune("中")))
}

func TestScreenRenderProducesOutput(t *testing.T) {
	var out bytes.Buffer
	term := newTerminal(nil, &out)
	term.setSize(80, 24)
	s := newScreen(term)
	s.SetSize(80, 24)

	var buf buffer
	buf.reset([]rune("hi"))
	s.Reset([]rune("> "), &buf)
	s.Flush(term.out)

	require.Contains(t, out.String(), "> hi")
}

func TestScreenSetSuffixAddsSearchPrompt(t *testing.T) {
	var out bytes.Buffer
	term := newTerminal(nil, &out)
	term.setSize(80, 24)
	s := newScreen(term)
	s.SetSize(80, 24)

	var buf buffer
	buf.reset([]rune("sel"))
	s.Reset([]rune("> "), &buf)
	s.Flush(term.out)
	out.Reset()

	s.SetSuffix(&buf, []rune("\n(bck-i-search:`sel')"))
	s.Flush(term.out)
	require.True(t, strings.Contains(out.String(), "bck-i-search"))
}

func TestScreenRenderDiffsUnchangedPrefix(t *testing.T) {
	var out bytes.Buffer
	term := newTerminal(nil, &out)
	term.setSize(80, 24)
	s := newScreen(term)
	s.SetSize(80, 24)

	var buf buffer
	buf.reset([]rune("hello"))
	s.Reset([]rune("> "), &buf)
	s.Flush(term.out)

	out.Reset()
	buf.insert([]rune("!"))
	s.render(&buf)
	s.Flush(term.out)

	got := out.String()
	require.NotContains(t, got, "hello")
	require.Contains(t, got, "!")
}

func TestScreenRenderClearsExcessLine(t *testing.T) {
	var out bytes.Buffer
	term := newTerminal(nil, &out)
	term.setSize(80, 24)
	s := newScreen(term)
	s.SetSize(80, 24)

	var buf buffer
	buf.reset([]rune("one\ntwo"))
	s.Reset(nil, &buf)
	s.Flush(term.out)

	out.Reset()
	buf.reset([]rune("one"))
	s.render(&buf)
	s.Flush(term.out)

	require.Contains(t, out.String(), "\x1b[K")
}

func TestScreenComposedMasksBuffer(t *testing.T) {
	s := newScreen(newTerminal(nil, &bytes.Buffer{}))
	s.SetMask(true, '*')

	var buf buffer
	buf.reset([]rune("secret"))
	require.Equal(t, "******", string(s.composed(&buf)))
}

func TestScreenComposedZeroMaskHidesEntirely(t *testing.T) {
	s := newScreen(newTerminal(nil, &bytes.Buffer{}))
	s.SetMask(true, 0)

	var buf buffer
	buf.reset([]rune("secret"))
	require.Equal(t, "", string(s.composed(&buf)))
}

func TestScreenComposedUnmaskedShowsBuffer(t *testing.T) {
	s := newScreen(newTerminal(nil, &bytes.Buffer{}))

	var buf buffer
	buf.reset([]rune("secret"))
	require.Equal(t, "secret", string(s.composed(&buf)))
}

func TestScreenMoveToClampsToLastLine(t *testing.T) {
	s := newScreen(newTerminal(nil, &bytes.Buffer{}))
	s.SetSize(80, 24)
	s.lastText = []rune("hello")
	s.computeLines(s.lastText)
	s.MoveTo(100)
	require.Equal(t, 100, s.cursorPos)
	require.Equal(t, 5, s.cursorX)
	require.Equal(t, 0, s.cursorY)
}
