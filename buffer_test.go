package rline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferInsertAndCursor(t *testing.T) {
	var b buffer
	b.reset(nil)
	b.insert([]rune("hello"))
	require.Equal(t, "hello", string(b.text))
	require.Equal(t, 5, b.cursor)

	b.cursor = 0
	b.insert([]rune("> "))
	require.Equal(t, "> hello", string(b.text))
	require.Equal(t, 2, b.cursor)
}

func TestBufferOvertype(t *testing.T) {
	var b buffer
	b.reset([]rune("hello"))
	b.cursor = 0
	b.overtype = true
	b.insert([]rune("HE"))
	require.Equal(t, "HEllo", string(b.text))
	require.Equal(t, 2, b.cursor)

	b.cursor = 4
	b.insert([]rune("LLO"))
	require.Equal(t, "HEllLLO", string(b.text))
}

func TestBufferDeleteRange(t *testing.T) {
	var b buffer
	b.reset([]rune("hello world"))
	b.cursor = 11
	removed := b.deleteRange(5, 11)
	require.Equal(t, " world", string(removed))
	require.Equal(t, "hello", string(b.text))
	require.Equal(t, 5, b.cursor)
}

func TestBufferBackspace(t *testing.T) {
	var b buffer
	b.reset([]rune("hello"))
	n := b.backspace(2)
	require.Equal(t, 2, n)
	require.Equal(t, "hel", string(b.text))
	require.Equal(t, 3, b.cursor)

	n = b.backspace(10)
	require.Equal(t, 3, n)
	require.Equal(t, "", string(b.text))
}

func TestBufferMoveCursorClamped(t *testing.T) {
	var b buffer
	b.reset([]rune("abc"))
	b.cursor = 0
	require.Equal(t, 0, b.moveCursor(-5))
	require.Equal(t, 0, b.cursor)
	require.Equal(t, 3, b.moveCursor(10))
	require.Equal(t, 3, b.cursor)
}

func TestBufferGraphemeBoundaries(t *testing.T) {
	var b buffer
	// "e" + combining acute accent is a single grapheme cluster.
	b.reset([]rune("éx"))
	require.Equal(t, 2, b.nextGraphemeEnd(0))
	require.Equal(t, 0, b.prevGraphemeStart(2))
	require.Equal(t, 3, b.nextGraphemeEnd(2))
}

func TestBufferResetClearsMark(t *testing.T) {
	var b buffer
	b.reset([]rune("abc"))
	b.mark = 1
	b.reset([]rune("xyz"))
	require.Equal(t, -1, b.mark)
	b.mark = 2
	b.clear()
	require.Equal(t, -1, b.mark)
}
