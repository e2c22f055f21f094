package lookahead

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_Pop_When_Empty(t *testing.T) {
	t.Parallel()

	b := New(4)
	_, ok := b.Pop()

	assert.False(t, ok)
}

func TestBuffer_Pop_When_PreservesOrder(t *testing.T) {
	t.Parallel()

	b := New(4)
	b.Push("first")
	b.Push("second")
	b.Push("third")

	for _, want := range []string{"first", "second", "third"} {
		got, ok := b.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := b.Pop()
	assert.False(t, ok)
}

func TestBuffer_Push_When_Full(t *testing.T) {
	t.Parallel()

	b := New(2)
	b.Push("a")
	b.Push("b")

	assert.Panics(t, func() { b.Push("c") })
}

func TestBuffer_Peek_When_CursorAdvances(t *testing.T) {
	t.Parallel()

	b := New(4)
	b.Push("head")
	b.Push("ahead-1")
	b.Push("ahead-2")

	head, ok := b.Pop()
	require.True(t, ok)
	assert.Equal(t, "head", head)

	assert.Equal(t, "ahead-1", b.Peek())
	assert.Equal(t, "ahead-2", b.Peek())
}

func TestBuffer_Peek_When_PastBufferedLines(t *testing.T) {
	t.Parallel()

	b := New(4)
	b.Push("only")
	b.Pop()

	assert.Panics(t, func() { b.Peek() }, "peek past buffered lines must be fatal")
}

func TestBuffer_Pop_When_ResetsCursor(t *testing.T) {
	t.Parallel()

	b := New(4)
	b.Push("a")
	b.Push("b")
	b.Push("c")

	b.Pop()
	assert.Equal(t, "b", b.Peek())

	b.Pop() // removes "b", cursor back to 0
	assert.Equal(t, "c", b.Peek())
}

func TestBuffer_PushDrain_When_DepthWithinCapacity(t *testing.T) {
	t.Parallel()

	// Pushing one line at a time and draining whenever occupancy reaches
	// capacity must never trip the sizing fault for lookahead depth up to
	// capacity-1.
	const capacity = 10
	b := New(capacity)

	assert.NotPanics(t, func() {
		for i := 0; i < 100; i++ {
			if b.Len() == capacity {
				b.Pop()
				for d := 0; d < b.Len(); d++ {
					b.Peek()
				}
			}
			b.Push(fmt.Sprintf("line %d", i))
		}
		for b.Len() > 0 {
			b.Pop()
		}
	})
}

func TestWindow_Next_When_LimitReached(t *testing.T) {
	t.Parallel()

	b := New(8)
	b.Push("a")
	b.Push("b")
	b.Push("c")

	src := b.Window(2)
	one, ok := src.Next()
	require.True(t, ok)
	assert.Equal(t, "a", one)
	two, ok := src.Next()
	require.True(t, ok)
	assert.Equal(t, "b", two)

	_, ok = src.Next()
	assert.False(t, ok, "window must stop at its limit")
}

func TestWindow_Next_When_FewerLinesThanLimit(t *testing.T) {
	t.Parallel()

	b := New(8)
	b.Push("tail")

	src := b.Window(5)
	line, ok := src.Next()
	require.True(t, ok)
	assert.Equal(t, "tail", line)

	_, ok = src.Next()
	assert.False(t, ok, "exhaustion near stream end is not fatal through a window")
}

func TestNew_When_InvalidCapacity(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { New(0) })
}
