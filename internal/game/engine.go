// internal/game/engine.go
//
// Puzzle controller for a single word-ladder run.
// Responsibilities:
//   - Build a session from a puzzle definition (alphabets, answers, tiles).
//   - Apply player intents: select, delete, enter, hint, shuffle.
//   - Advance levels and finish the puzzle.
//   - Gate input while a rejected word is on screen.
//
// Notes:
//   - Required word length is Level + Seeded; the final level is
//     maxChars - Seeded.
//   - Intents are synchronous and not safe for concurrent use; callers that
//     share a Controller must serialize access.
//   - randomID() is a compact hex identifier for correlating server state.

package game

import (
	"crypto/rand"
	"encoding/hex"
	mrand "math/rand/v2"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/robalobadob/wordladder/internal/puzzle"
)

const (
	defaultSeeded          = 3
	defaultHints           = 3
	defaultShuffleAttempts = 100
)

// Options tune a controller. Zero fields take the defaults; a negative Hints
// disables hints.
type Options struct {
	Seeded          int         // letters revealed before play starts
	Hints           int         // hints per puzzle
	ShuffleAttempts int         // cap on shuffle retries
	Rand            *mrand.Rand // shuffle source; random PCG when nil
}

// DefaultOptions returns the standard rules: 3 seeded letters, 3 hints,
// 100 shuffle attempts.
func DefaultOptions() Options {
	return Options{
		Seeded:          defaultSeeded,
		Hints:           defaultHints,
		ShuffleAttempts: defaultShuffleAttempts,
	}
}

func (o Options) withDefaults() Options {
	if o.Seeded <= 0 {
		o.Seeded = defaultSeeded
	}
	switch {
	case o.Hints == 0:
		o.Hints = defaultHints
	case o.Hints < 0:
		o.Hints = 0
	}
	if o.ShuffleAttempts <= 0 {
		o.ShuffleAttempts = defaultShuffleAttempts
	}
	if o.Rand == nil {
		o.Rand = mrand.New(mrand.NewPCG(mrand.Uint64(), mrand.Uint64()))
	}
	return o
}

// Controller orchestrates one puzzle session.
type Controller struct {
	ID         string            // Unique identifier (random hex string).
	Definition puzzle.Definition // The puzzle being played.

	opts    Options
	session *Session
}

// New constructs a controller and starts def at level 0.
func New(def puzzle.Definition, opts Options) (*Controller, error) {
	c := &Controller{ID: randomID(), opts: opts.withDefaults()}
	if err := c.Load(def); err != nil {
		return nil, err
	}
	return c, nil
}

// Load replaces the session with a fresh one for def.
func (c *Controller) Load(def puzzle.Definition) error {
	wordsets := puzzle.BuildWordsets(def.Stages)
	if len(wordsets) == 0 {
		return ErrNoStages
	}
	maxChars := puzzle.MaxChars(wordsets)
	if maxChars < c.opts.Seeded || utf8.RuneCountInString(wordsets[0]) < c.opts.Seeded {
		return ErrTooFewLetters
	}

	s := &Session{
		HintsRemaining: c.opts.Hints,
		Wordsets:       wordsets,
		Answers:        puzzle.BuildAnswerIndex(def.Answers),
		Tiles:          NewTileSet(maxChars),
		Input:          NewInputBuffer(maxChars),
	}
	s.Tiles.RevealForLevel(wordsets[0])
	c.Definition = def
	c.session = s
	return nil
}

// Options returns the effective options.
func (c *Controller) Options() Options { return c.opts }

// FinalLevel is the level whose word solves the puzzle.
func (c *Controller) FinalLevel() int { return c.session.Tiles.Len() - c.opts.Seeded }

// RequiredLength is the word length the current level accepts.
func (c *Controller) RequiredLength() int { return c.session.Level + c.opts.Seeded }

func (c *Controller) alphabet() string {
	return puzzle.WordsetAt(c.session.Wordsets, c.session.Level)
}

func (c *Controller) char(i int) rune {
	if t, ok := c.session.Tiles.Tile(i); ok {
		return t.Char
	}
	return 0
}

// Value is the player's current candidate word.
func (c *Controller) Value() string { return c.session.Input.Value(c.char) }

// Status summarizes the session.
func (c *Controller) Status() Status {
	s := c.session
	return Status{
		Level:          s.Level,
		FinalLevel:     c.FinalLevel(),
		RequiredLength: c.RequiredLength(),
		HintsRemaining: s.HintsRemaining,
		HintsUsed:      s.HintsUsed,
		Submissions:    s.Submissions,
		Solved:         s.Solved,
		InputLocked:    s.InputLocked,
		Value:          c.Value(),
		Input:          s.Input.Indices(),
		Arrangement:    s.Tiles.Arrangement(),
	}
}

// Solved reports whether the final word was accepted.
func (c *Controller) Solved() bool { return c.session.Solved }

// InputLocked reports whether a rejection is on screen. Input adapters check
// it before forwarding selections.
func (c *Controller) InputLocked() bool { return c.session.InputLocked }

func (c *Controller) acceptsInput() bool {
	return !c.session.Solved && !c.session.InputLocked
}

// Select appends tile i to the input buffer. Empty tiles, tiles already
// selected and a full buffer are ignored.
func (c *Controller) Select(i int) bool {
	if !c.acceptsInput() {
		return false
	}
	t, ok := c.session.Tiles.Tile(i)
	if !ok || t.State().Phase == PhaseEmpty {
		return false
	}
	if !c.session.Input.Push(i) {
		return false
	}
	t.Use()
	return true
}

// TileFor maps a typed letter to the revealed tile holding it.
func (c *Controller) TileFor(r rune) (int, bool) {
	r = unicode.ToLower(r)
	i := puzzle.RuneIndex(c.alphabet(), r)
	t, ok := c.session.Tiles.Tile(i)
	if !ok || t.Char != r || t.State().Phase == PhaseEmpty {
		return -1, false
	}
	return i, true
}

// SelectSlot selects the tile currently shown at slot.
func (c *Controller) SelectSlot(slot int) bool {
	i, ok := c.session.Tiles.Slot(slot)
	if !ok {
		return false
	}
	return c.Select(i)
}

// Delete removes the last selected tile.
func (c *Controller) Delete() bool {
	if !c.acceptsInput() {
		return false
	}
	i, ok := c.session.Input.PopLast()
	if !ok {
		return false
	}
	if t, ok := c.session.Tiles.Tile(i); ok {
		t.Release()
	}
	return true
}

// Enter submits the buffer. A correct word clears the buffer and advances;
// a wrong one leaves the buffer as is and locks input until EndReject.
func (c *Controller) Enter() Event {
	s := c.session
	if !c.acceptsInput() {
		return Event{}
	}
	s.Submissions++

	word := strings.ToLower(c.Value())
	if utf8.RuneCountInString(word) == c.RequiredLength() && s.Answers.Contains(word) {
		c.clearInput()
		return c.advanceLevel()
	}
	s.InputLocked = true
	return Event{Kind: EventSubmissionRejected}
}

// EndReject closes the rejection window: the buffer is cleared and input
// is accepted again.
func (c *Controller) EndReject() {
	if !c.session.InputLocked {
		return
	}
	c.clearInput()
	c.session.InputLocked = false
}

func (c *Controller) clearInput() {
	c.session.Tiles.ReleaseAll()
	c.session.Input.Clear()
}

func (c *Controller) advanceLevel() Event {
	s := c.session
	if s.Level >= c.FinalLevel() {
		s.Tiles.EndAll()
		s.Solved = true
		return Event{Kind: EventPuzzleSolved}
	}
	s.Tiles.CompleteActive()
	s.Level++
	s.Tiles.RevealForLevel(c.alphabet())
	return Event{Kind: EventLevelAdvanced, MessageIndex: s.Level - 1}
}

// Hint places the next letter of the level's first answer. A wrong prefix
// in the buffer is dropped first. Hints are unavailable on the final level.
func (c *Controller) Hint() (Event, error) {
	s := c.session
	if !c.acceptsInput() || s.Level >= c.FinalLevel() {
		return Event{}, nil
	}
	if s.HintsRemaining <= 0 {
		return Event{Kind: EventHintExhausted}, nil
	}
	candidates := s.Answers.Get(c.RequiredLength())
	if len(candidates) == 0 {
		return Event{}, nil
	}
	target := []rune(candidates[0])

	for pos, i := range s.Input.Indices() {
		if pos >= len(target) || c.char(i) != target[pos] {
			for _, d := range s.Input.TruncateFrom(pos) {
				if t, ok := s.Tiles.Tile(d); ok {
					t.Release()
				}
			}
			break
		}
	}

	pos := s.Input.Len()
	if pos >= len(target) {
		return Event{}, nil
	}
	next := target[pos]
	i := puzzle.RuneIndex(c.alphabet(), next)
	t, ok := s.Tiles.Tile(i)
	if !ok || t.Char != next || !s.Input.Push(i) {
		return Event{}, &MissingTileError{Char: next, Level: s.Level}
	}
	t.Hint()
	t.Use()
	s.HintsRemaining--
	s.HintsUsed++
	return Event{Kind: EventHintApplied, Tile: i}, nil
}

// Shuffle rearranges the revealed tiles so they neither repeat the current
// order nor spell an answer, within the retry cap.
func (c *Controller) Shuffle() Event {
	s := c.session
	if s.Solved {
		return Event{}
	}
	arr := s.Tiles.Shuffle(c.opts.Rand, c.opts.ShuffleAttempts, s.Answers.Contains)
	return Event{Kind: EventShuffled, Arrangement: arr}
}

// Tick runs one update/presentation pass: it returns the tile snapshot and
// marks every state as seen.
func (c *Controller) Tick() []TileView {
	views := c.session.Tiles.Snapshot()
	c.session.Tiles.Settle()
	return views
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
