// internal/catalog/catalog.go
//
// Provides puzzle definition management for the game engine.
//
// Responsibilities:
//   - Load puzzle definitions from a file or fall back to the embedded list.
//   - Drop definitions that cannot be played to the end (logged, not fatal).
//   - Supply random and indexed selection for new games and the daily puzzle.
//
// Sources (Load):
//   1. If path is set (PUZZLES_FILE), read one definition per line from it.
//   2. Otherwise use assets.PuzzleLines() (embedded puzzles.txt).
//
// Lines are trimmed and lowercased; blank lines and "#" comments are skipped.

package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordladder/assets"
	"github.com/robalobadob/wordladder/internal/puzzle"
)

// ErrEmpty is returned when no playable definition was loaded.
var ErrEmpty = errors.New("catalog: no playable puzzles")

// Catalog is an ordered, read-only list of playable definitions.
type Catalog struct {
	puzzles []puzzle.Definition
	skipped int
}

// Load reads definitions from path, or the embedded list when path is "".
func Load(path string, seeded int) (*Catalog, error) {
	var (
		lines []string
		err   error
	)
	if path != "" {
		lines, err = ReadLines(path)
	} else {
		lines, err = assets.PuzzleLines()
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}
	return FromLines(lines, seeded)
}

// FromLines parses and validates every line. Invalid lines are skipped.
func FromLines(lines []string, seeded int) (*Catalog, error) {
	c := &Catalog{}
	for n, line := range lines {
		def, err := puzzle.Parse(line)
		if err == nil {
			err = def.Validate(seeded)
		}
		if err != nil {
			log.Warn().Err(err).Int("line", n+1).Msg("skipping puzzle")
			c.skipped++
			continue
		}
		c.puzzles = append(c.puzzles, def)
	}
	if len(c.puzzles) == 0 {
		return nil, ErrEmpty
	}
	return c, nil
}

// ReadLines loads one definition per line from a file.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(strings.ToLower(sc.Text()))
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// Len is the number of playable puzzles.
func (c *Catalog) Len() int { return len(c.puzzles) }

// Skipped is the number of lines dropped while loading.
func (c *Catalog) Skipped() int { return c.skipped }

// At returns the puzzle at index i.
func (c *Catalog) At(i int) (puzzle.Definition, bool) {
	if i < 0 || i >= len(c.puzzles) {
		return puzzle.Definition{}, false
	}
	return c.puzzles[i], true
}

// Random picks a puzzle and returns it with its index.
func (c *Catalog) Random() (puzzle.Definition, int) {
	i := rand.IntN(len(c.puzzles))
	return c.puzzles[i], i
}
