// internal/game/types.go
//
// Core type definitions for the word-ladder engine.
// Defines:
//   - EventKind/Event: per-intent results handed to the presentation layer.
//   - Session: the state of a single puzzle run.
//   - Status: read-only summary of a session for adapters.
//   - MissingTileError: the one fatal fault of the engine.

package game

import (
	"errors"
	"fmt"

	"github.com/robalobadob/wordladder/internal/puzzle"
)

// EventKind names the outcome of an intent.
type EventKind string

const (
	EventNone               EventKind = ""
	EventLevelAdvanced      EventKind = "level_advanced"
	EventPuzzleSolved       EventKind = "puzzle_solved"
	EventSubmissionRejected EventKind = "submission_rejected"
	EventHintApplied        EventKind = "hint_applied"
	EventHintExhausted      EventKind = "hint_exhausted"
	EventShuffled           EventKind = "shuffled"
)

// Event is what an intent produced. MessageIndex is set for
// EventLevelAdvanced, Tile for EventHintApplied and Arrangement for
// EventShuffled.
type Event struct {
	Kind         EventKind `json:"kind"`
	MessageIndex int       `json:"messageIndex"`
	Tile         int       `json:"tile"`
	Arrangement  string    `json:"arrangement,omitempty"`
}

// Session holds the state of one puzzle run. Only Controller mutates it.
type Session struct {
	Level          int                // 0-based; required word length is Level + Seeded
	HintsRemaining int                // starts at Options.Hints
	HintsUsed      int                // hints applied so far
	Submissions    int                // Enter presses that were evaluated
	Solved         bool               // true once the final word was accepted
	InputLocked    bool               // true while a rejection is being shown
	Wordsets       []string           // cumulative alphabet per level
	Answers        puzzle.AnswerIndex // answers grouped by length
	Tiles          *TileSet
	Input          *InputBuffer
}

// Status summarizes a session for adapters.
type Status struct {
	Level          int    `json:"level"`
	FinalLevel     int    `json:"finalLevel"`
	RequiredLength int    `json:"requiredLength"`
	HintsRemaining int    `json:"hintsRemaining"`
	HintsUsed      int    `json:"hintsUsed"`
	Submissions    int    `json:"submissions"`
	Solved         bool   `json:"solved"`
	InputLocked    bool   `json:"inputLocked"`
	Value          string `json:"value"`
	Input          []int  `json:"input"`
	Arrangement    string `json:"arrangement"`
}

var (
	// ErrNoStages is returned for a definition without letters.
	ErrNoStages = errors.New("game: definition has no stages")
	// ErrTooFewLetters is returned when the first or final alphabet is
	// shorter than the number of pre-seeded letters.
	ErrTooFewLetters = errors.New("game: alphabet shorter than seeded letters")
)

// MissingTileError means a hint needed a letter no tile holds. The
// definition and its alphabets disagree; the session cannot continue
// reliably.
type MissingTileError struct {
	Char  rune
	Level int
}

func (e *MissingTileError) Error() string {
	return fmt.Sprintf("game: no tile for %q at level %d", e.Char, e.Level)
}
