package puzzle

import (
	"sort"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set"
)

// AnswerIndex groups valid words by length. It is built once and only read
// afterwards.
type AnswerIndex struct {
	groups map[int][]string
	sets   map[int]mapset.Set
}

// BuildAnswerIndex groups answers by letter count, keeping their relative
// order inside each group.
func BuildAnswerIndex(answers []string) AnswerIndex {
	idx := AnswerIndex{
		groups: make(map[int][]string),
		sets:   make(map[int]mapset.Set),
	}
	for _, w := range answers {
		n := utf8.RuneCountInString(w)
		idx.groups[n] = append(idx.groups[n], w)
		set, ok := idx.sets[n]
		if !ok {
			set = mapset.NewThreadUnsafeSet()
			idx.sets[n] = set
		}
		set.Add(w)
	}
	return idx
}

// Get returns the answers of length n. A missing length yields an empty
// slice: there are simply no valid words at that level.
func (a AnswerIndex) Get(n int) []string {
	group, ok := a.groups[n]
	if !ok {
		return []string{}
	}
	return group
}

// Contains reports whether word is an answer of its own length.
func (a AnswerIndex) Contains(word string) bool {
	set, ok := a.sets[utf8.RuneCountInString(word)]
	return ok && set.Contains(word)
}

// Lengths lists the word lengths present, ascending.
func (a AnswerIndex) Lengths() []int {
	out := make([]int, 0, len(a.groups))
	for n := range a.groups {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
