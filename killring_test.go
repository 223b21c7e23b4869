package rline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKillRingAppendAccumulates(t *testing.T) {
	r := newKillRing(4)
	r.Append("hello")
	r.Append(" world")
	require.Equal(t, []rune("hello world"), r.Yank())
}

func TestKillRingPrependAccumulates(t *testing.T) {
	r := newKillRing(4)
	r.Prepend("world")
	r.Prepend("hello ")
	require.Equal(t, []rune("hello world"), r.Yank())
}

func TestKillRingResetKillingStartsNewSlot(t *testing.T) {
	r := newKillRing(4)
	r.Append("one")
	r.resetKilling()
	r.Append("two")
	require.Equal(t, []rune("two"), r.Yank())
	require.Equal(t, []string{"one", "two"}, r.entriesSnapshot())
}

func TestKillRingYankPop(t *testing.T) {
	r := newKillRing(4)
	r.Append("one")
	r.resetKilling()
	r.Append("two")
	require.Equal(t, []rune("two"), r.Yank())
	require.True(t, r.isYanking())
	r.Rotate()
	require.Equal(t, []rune("one"), r.Yank())
}

func TestKillRingResetYanking(t *testing.T) {
	r := newKillRing(4)
	r.Append("one")
	r.Yank()
	require.True(t, r.isYanking())
	r.resetYanking()
	require.False(t, r.isYanking())
}

func TestKillRingBoundedSize(t *testing.T) {
	r := newKillRing(2)
	r.Append("one")
	r.resetKilling()
	r.Append("two")
	r.resetKilling()
	r.Append("three")
	require.Equal(t, []string{"two", "three"}, r.entriesSnapshot())
}

func TestKillRingEmptyYank(t *testing.T) {
	r := newKillRing(2)
	require.Nil(t, r.Yank())
}
