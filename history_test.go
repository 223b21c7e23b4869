package rline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeEditSource is a minimal editSource used to drive History in
// isolation from the Editor/screen.
type fakeEditSource struct {
	text   []rune
	cursor int
	suffix []rune
}

func (f *fakeEditSource) currentText() []rune { return f.text }
func (f *fakeEditSource) cursorOffset() int   { return f.cursor }
func (f *fakeEditSource) replaceText(text []rune, cursor int) {
	f.text = text
	if cursor < 0 {
		cursor = len(text)
	}
	f.cursor = cursor
}
func (f *fakeEditSource) setStatusSuffix(suffix []rune) { f.suffix = suffix }

func TestHistoryAddAndEntries(t *testing.T) {
	h := NewHistory(-1)
	h.Add("one")
	h.Add("two")
	h.Add("two")
	h.Add("three")
	require.Equal(t, []string{"one", "two", "three"}, h.Entries())
}

func TestHistoryBoundedEviction(t *testing.T) {
	h := NewHistory(2)
	h.Add("one")
	h.Add("two")
	h.Add("three")
	require.Equal(t, []string{"two", "three"}, h.Entries())
}

func TestHistoryZeroSizeDisabled(t *testing.T) {
	h := NewHistory(0)
	h.Add("one")
	require.Equal(t, 0, h.Len())
}

func TestHistoryPreviousNext(t *testing.T) {
	h := NewHistory(-1)
	h.Add("one")
	h.Add("two")

	e := &fakeEditSource{text: []rune("pending")}
	require.True(t, h.Previous(e))
	require.Equal(t, "two", string(e.text))

	require.True(t, h.Previous(e))
	require.Equal(t, "one", string(e.text))

	require.False(t, h.Previous(e))

	require.True(t, h.Next(e))
	require.Equal(t, "two", string(e.text))

	require.True(t, h.Next(e))
	require.Equal(t, "pending", string(e.text))

	require.False(t, h.Next(e))
}

func TestHistoryMoveToFirstAndLast(t *testing.T) {
	h := NewHistory(-1)
	h.Add("one")
	h.Add("two")
	h.Add("three")

	e := &fakeEditSource{text: []rune("pending")}
	require.True(t, h.MoveToFirst(e))
	require.Equal(t, "one", string(e.text))

	require.True(t, h.MoveToLast(e))
	require.Equal(t, "pending", string(e.text))
}

func TestHistoryReverseSearch(t *testing.T) {
	h := NewHistory(-1)
	h.Add("select one")
	h.Add("select two")
	h.Add("other")

	e := &fakeEditSource{text: []rune("")}
	require.True(t, h.ReverseSearch(e))
	require.Equal(t, -1, h.Searching())
	require.True(t, h.AppendSearchKey(e, 's'))
	require.True(t, h.AppendSearchKey(e, 'e'))
	require.True(t, h.AppendSearchKey(e, 'l'))
	require.Equal(t, "select two", string(e.text))
	require.NotNil(t, e.suffix)

	require.True(t, h.CancelSearch(e))
	require.Equal(t, 0, h.Searching())
	require.Nil(t, e.suffix)
}

func TestHistorySubstringSearch(t *testing.T) {
	h := NewHistory(-1)
	h.Add("select one")
	h.Add("update two")
	h.Add("select three")

	e := &fakeEditSource{text: []rune("select"), cursor: 6}
	require.True(t, h.substringSearch(e, true))
	require.Equal(t, "select three", string(e.text))

	require.True(t, h.substringSearch(e, true))
	require.Equal(t, "select one", string(e.text))

	require.False(t, h.substringSearch(e, true))
}
