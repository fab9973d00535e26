package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputBuffer_Capacity(t *testing.T) {
	b := NewInputBuffer(3)
	assert.True(t, b.Push(0))
	assert.True(t, b.Push(1))
	assert.True(t, b.Push(2))
	assert.False(t, b.Push(3))
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []int{0, 1, 2}, b.Indices())
	assert.False(t, b.Contains(3))
}

func TestInputBuffer_NoDuplicates(t *testing.T) {
	b := NewInputBuffer(4)
	assert.True(t, b.Push(2))
	assert.False(t, b.Push(2))
	assert.False(t, b.Push(-1))
	assert.Equal(t, 1, b.Len())
}

func TestInputBuffer_PopAndTruncate(t *testing.T) {
	b := NewInputBuffer(5)
	_, ok := b.PopLast()
	assert.False(t, ok)

	for _, i := range []int{4, 0, 3, 1} {
		b.Push(i)
	}
	last, ok := b.PopLast()
	assert.True(t, ok)
	assert.Equal(t, 1, last)
	assert.False(t, b.Contains(1))

	assert.Equal(t, []int{0, 3}, b.TruncateFrom(1))
	assert.Equal(t, []int{4}, b.Indices())
	assert.False(t, b.Contains(0))
	assert.True(t, b.Contains(4))
	assert.Nil(t, b.TruncateFrom(7))

	assert.True(t, b.Push(0), "truncated indices can be selected again")
	b.Clear()
	assert.Equal(t, 0, b.Len())
	assert.False(t, b.Contains(4))
}

func TestInputBuffer_Value(t *testing.T) {
	letters := []rune("aegr")
	b := NewInputBuffer(4)
	for _, i := range []int{2, 1, 0, 3} {
		b.Push(i)
	}
	assert.Equal(t, "gear", b.Value(func(i int) rune { return letters[i] }))
}
