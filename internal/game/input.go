package game

import (
	"slices"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// InputBuffer holds the tile indices the player selected, in selection
// order. Each index appears at most once and the length never exceeds max.
type InputBuffer struct {
	indices []int
	members *bitset.BitSet
	max     int
}

func NewInputBuffer(max int) *InputBuffer {
	return &InputBuffer{
		indices: make([]int, 0, max),
		members: bitset.New(uint(max)),
		max:     max,
	}
}

// Push appends i. It returns false without changing anything when the
// buffer is full or i is already buffered.
func (b *InputBuffer) Push(i int) bool {
	if len(b.indices) >= b.max || i < 0 || b.Contains(i) {
		return false
	}
	b.indices = append(b.indices, i)
	b.members.Set(uint(i))
	return true
}

// PopLast removes and returns the last index.
func (b *InputBuffer) PopLast() (int, bool) {
	if len(b.indices) == 0 {
		return 0, false
	}
	last := b.indices[len(b.indices)-1]
	b.indices = b.indices[:len(b.indices)-1]
	b.members.Clear(uint(last))
	return last, true
}

func (b *InputBuffer) Contains(i int) bool {
	return i >= 0 && b.members.Test(uint(i))
}

// TruncateFrom drops every element at or after pos and returns them.
func (b *InputBuffer) TruncateFrom(pos int) []int {
	if pos < 0 {
		pos = 0
	}
	if pos >= len(b.indices) {
		return nil
	}
	dropped := slices.Clone(b.indices[pos:])
	for _, i := range dropped {
		b.members.Clear(uint(i))
	}
	b.indices = b.indices[:pos]
	return dropped
}

func (b *InputBuffer) Clear() { b.TruncateFrom(0) }

func (b *InputBuffer) Len() int { return len(b.indices) }

func (b *InputBuffer) Max() int { return b.max }

func (b *InputBuffer) Indices() []int { return slices.Clone(b.indices) }

// Value joins the looked-up letters in buffer order.
func (b *InputBuffer) Value(lookup func(int) rune) string {
	var sb strings.Builder
	for _, i := range b.indices {
		sb.WriteRune(lookup(i))
	}
	return sb.String()
}
