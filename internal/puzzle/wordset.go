package puzzle

import (
	"strings"
	"unicode/utf8"
)

// BuildWordsets derives the cumulative alphabet for every level. Stage 0 is
// taken verbatim; each later stage appends its letters that are not already
// present, in definition order. Earlier letters therefore always keep their
// position, and a tile's index is its position in the final alphabet.
func BuildWordsets(stages []string) []string {
	out := make([]string, 0, len(stages))
	for i, stage := range stages {
		if i == 0 {
			out = append(out, stage)
			continue
		}
		var b strings.Builder
		b.WriteString(out[i-1])
		for _, r := range stage {
			if !strings.ContainsRune(b.String(), r) {
				b.WriteRune(r)
			}
		}
		out = append(out, b.String())
	}
	return out
}

// MaxChars is the size of the final alphabet, or 0 without stages.
func MaxChars(wordsets []string) int {
	if len(wordsets) == 0 {
		return 0
	}
	return utf8.RuneCountInString(wordsets[len(wordsets)-1])
}

// WordsetAt returns the alphabet for level, clamped to the last stage.
func WordsetAt(wordsets []string, level int) string {
	switch {
	case len(wordsets) == 0:
		return ""
	case level < 0:
		return wordsets[0]
	case level >= len(wordsets):
		return wordsets[len(wordsets)-1]
	}
	return wordsets[level]
}

// RuneIndex is the position of r in alphabet counted in letters, or -1.
func RuneIndex(alphabet string, r rune) int {
	i := 0
	for _, c := range alphabet {
		if c == r {
			return i
		}
		i++
	}
	return -1
}
