package rline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyMapBindAndLookup(t *testing.T) {
	k := NewKeyMap("test")
	k.BindOperation([]rune{ctrlOf('A')}, OpBeginningOfLine)
	k.BindOperation([]rune{keyEscape, 'f'}, OpForwardWord)

	b, ok := k.getBound([]rune{ctrlOf('A')})
	require.True(t, ok)
	require.Equal(t, OpBeginningOfLine, b.Op)

	b, ok = k.getBound([]rune{keyEscape, 'f'})
	require.True(t, ok)
	require.Equal(t, OpForwardWord, b.Op)

	_, ok = k.getBound([]rune{keyEscape, 'g'})
	require.False(t, ok)
}

func TestKeyMapHasChildren(t *testing.T) {
	k := NewKeyMap("test")
	k.BindOperation([]rune{keyEscape, 'f'}, OpForwardWord)
	require.True(t, k.hasChildren([]rune{keyEscape}))
	require.False(t, k.hasChildren([]rune{keyEscape, 'f'}))
}

func TestKeyMapOtherKey(t *testing.T) {
	k := NewKeyMap("test")
	k.SetOtherKey(binding{Kind: bindOperation, Op: OpSelfInsert})
	b, ok := k.otherKeyAt(nil)
	require.True(t, ok)
	require.Equal(t, OpSelfInsert, b.Op)
}

func TestParseKeySequence(t *testing.T) {
	seq, err := parseKeySequence("Control-a")
	require.NoError(t, err)
	require.Equal(t, []rune{1}, seq)

	seq, err = parseKeySequence("Meta-f")
	require.NoError(t, err)
	require.Equal(t, []rune{keyEscape, 'f'}, seq)

	seq, err = parseKeySequence("tab")
	require.NoError(t, err)
	require.Equal(t, []rune{'\t'}, seq)

	_, err = parseKeySequence("")
	require.Error(t, err)
}

func TestCtrlOf(t *testing.T) {
	require.Equal(t, rune(1), ctrlOf('a'))
	require.Equal(t, rune(1), ctrlOf('A'))
	require.Equal(t, rune(keyBackspace), ctrlOf('?'))
}
