package rline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandEventsNoBang(t *testing.T) {
	h := NewHistory(-1)
	out, changed, err := expandEvents(h, "select * from foo")
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, "select * from foo", out)
}

func TestExpandEventsBangBang(t *testing.T) {
	h := NewHistory(-1)
	h.Add("select 1")
	out, changed, err := expandEvents(h, "!!")
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, "select 1", out)
}

func TestExpandEventsBangBangNotFound(t *testing.T) {
	h := NewHistory(-1)
	_, _, err := expandEvents(h, "!!")
	require.Error(t, err)
	var nfe *EventNotFoundError
	require.ErrorAs(t, err, &nfe)
}

func TestExpandEventsLastWord(t *testing.T) {
	h := NewHistory(-1)
	h.Add("cp foo bar")
	out, changed, err := expandEvents(h, "echo !$")
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, "echo bar", out)
}

func TestExpandEventsByPrefix(t *testing.T) {
	h := NewHistory(-1)
	h.Add("select one")
	h.Add("update two")
	out, changed, err := expandEvents(h, "!sel")
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, "select one", out)
}

func TestExpandEventsByContains(t *testing.T) {
	h := NewHistory(-1)
	h.Add("select one from foo")
	h.Add("update two")
	out, changed, err := expandEvents(h, "!?one?")
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, "select one from foo", out)
}

func TestExpandEventsByRelativeIndex(t *testing.T) {
	h := NewHistory(-1)
	h.Add("one")
	h.Add("two")
	h.Add("three")
	out, changed, err := expandEvents(h, "!-2")
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, "two", out)
}

func TestExpandEventsByAbsoluteIndex(t *testing.T) {
	h := NewHistory(-1)
	h.Add("one")
	h.Add("two")
	out, changed, err := expandEvents(h, "!0")
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, "one", out)
}

func TestExpandEventsQuickSubst(t *testing.T) {
	h := NewHistory(-1)
	h.Add("select foo from bar")
	out, changed, err := expandEvents(h, "^foo^baz^")
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, "select baz from bar", out)
}

func TestExpandEventsEscaped(t *testing.T) {
	h := NewHistory(-1)
	h.Add("one")
	out, _, err := expandEvents(h, `echo \!\!`)
	require.NoError(t, err)
	require.Equal(t, "echo !!", out)
}

func TestExpandEventsHashExpandsSoFar(t *testing.T) {
	h := NewHistory(-1)
	out, changed, err := expandEvents(h, "echo !#foo")
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, "echo echo foo", out)
}

func TestExpandEventsBangSpaceIsLiteral(t *testing.T) {
	h := NewHistory(-1)
	out, _, err := expandEvents(h, "echo ! foo")
	require.NoError(t, err)
	require.Equal(t, "echo ! foo", out)
}
