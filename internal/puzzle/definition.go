// internal/puzzle/definition.go
//
// Puzzle definitions for the word ladder.
// Responsibilities:
//   - Parse the compact "stages,answers" definition string.
//   - Validate that a definition can actually be played to the end.
//
// Format:
//   "<stage0>|<stage1>|...,<answer>|<answer>|..."
//   Stage 0 lists the starting letters in full; every later stage lists only
//   the letters it adds. Answers span all levels.

package puzzle

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrBadDefinition is wrapped by every parse and validation failure.
var ErrBadDefinition = errors.New("puzzle: bad definition")

// Definition is the immutable input of one puzzle.
type Definition struct {
	Stages  []string // letters added per stage (stage 0 in full)
	Answers []string // valid words across all levels
}

// Parse reads a definition string. Sections are lowercased and empty
// entries dropped.
func Parse(s string) (Definition, error) {
	stages, answers, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return Definition{}, fmt.Errorf("%w: missing answers section", ErrBadDefinition)
	}
	d := Definition{
		Stages:  splitSection(stages),
		Answers: splitSection(answers),
	}
	if len(d.Stages) == 0 {
		return Definition{}, fmt.Errorf("%w: no stages", ErrBadDefinition)
	}
	if len(d.Answers) == 0 {
		return Definition{}, fmt.Errorf("%w: no answers", ErrBadDefinition)
	}
	return d, nil
}

// MustParse is Parse for fixtures; it panics on error.
func MustParse(s string) Definition {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func splitSection(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// String renders the definition back into its compact form.
func (d Definition) String() string {
	return strings.Join(d.Stages, "|") + "," + strings.Join(d.Answers, "|")
}

// Validate checks that every level from 0 to the final one has at least one
// answer and that the first answer of each level (the hint target) can be
// spelled from the letters unlocked at that level.
func (d Definition) Validate(seeded int) error {
	wordsets := BuildWordsets(d.Stages)
	if len(wordsets) == 0 {
		return fmt.Errorf("%w: no stages", ErrBadDefinition)
	}
	if n := utf8.RuneCountInString(wordsets[0]); n < seeded {
		return fmt.Errorf("%w: stage 0 has %d letters, need %d", ErrBadDefinition, n, seeded)
	}
	if hasRepeats(wordsets[0]) {
		return fmt.Errorf("%w: stage 0 repeats a letter", ErrBadDefinition)
	}

	index := BuildAnswerIndex(d.Answers)
	final := MaxChars(wordsets) - seeded
	for level := 0; level <= final; level++ {
		n := level + seeded
		candidates := index.Get(n)
		if len(candidates) == 0 {
			return fmt.Errorf("%w: level %d has no %d-letter answer", ErrBadDefinition, level, n)
		}
		if alphabet := WordsetAt(wordsets, level); !Spellable(candidates[0], alphabet) {
			return fmt.Errorf("%w: %q cannot be spelled from %q", ErrBadDefinition, candidates[0], alphabet)
		}
	}
	return nil
}

// Spellable reports whether word can be built from alphabet using each
// letter at most once.
func Spellable(word, alphabet string) bool {
	avail := make(map[rune]int, len(alphabet))
	for _, r := range alphabet {
		avail[r]++
	}
	for _, r := range word {
		if avail[r] == 0 {
			return false
		}
		avail[r]--
	}
	return true
}

func hasRepeats(s string) bool {
	seen := make(map[rune]struct{}, len(s))
	for _, r := range s {
		if _, ok := seen[r]; ok {
			return true
		}
		seen[r] = struct{}{}
	}
	return false
}
