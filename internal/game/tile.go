// internal/game/tile.go
//
// Tile lifecycle for the word ladder.
// A tile is one letter slot. Its state is a lifecycle phase plus three
// independent markers:
//   - Phase:  Empty → Idle (letter unlocked) → Complete (level passed).
//   - Hinted: the letter was placed by a hint.
//   - InUse:  the tile is currently in the input buffer.
//   - Ended:  the puzzle is over; set on top of whatever phase the tile had.
//
// Presentation code detects one-shot effects by comparing the current state
// with the snapshot taken at the last Settle (JustEntered). Settle marks a
// state as seen so the same effect does not fire again on the next tick.

package game

// Phase is the exclusive lifecycle phase of a tile.
type Phase uint8

const (
	PhaseEmpty Phase = iota
	PhaseIdle
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseComplete:
		return "complete"
	default:
		return "empty"
	}
}

// Flag is the bitmask view of a tile state handed to renderers.
type Flag uint8

const (
	FlagEmpty Flag = 1 << iota
	FlagIdle
	FlagInUse
	FlagComplete
	FlagHinted
	FlagEnded
)

// State is a snapshot of a tile's phase and markers.
type State struct {
	Phase  Phase
	Hinted bool
	InUse  bool
	Ended  bool
}

// Flags folds the state into its bitmask form.
func (s State) Flags() Flag {
	var f Flag
	switch s.Phase {
	case PhaseEmpty:
		f |= FlagEmpty
	case PhaseIdle:
		f |= FlagIdle
	case PhaseComplete:
		f |= FlagComplete
	}
	if s.InUse {
		f |= FlagInUse
	}
	if s.Hinted {
		f |= FlagHinted
	}
	if s.Ended {
		f |= FlagEnded
	}
	return f
}

// Has reports whether every bit of mask is set.
func (s State) Has(mask Flag) bool { return s.Flags()&mask == mask }

// Tile is a single letter slot. Index is its position in the final alphabet
// and never changes; Char is zero until the tile is revealed.
type Tile struct {
	Index int
	Char  rune
	state State
	prev  State
}

// NewTile returns an empty tile.
func NewTile(index int) *Tile { return &Tile{Index: index} }

func (t *Tile) State() State { return t.state }

// Prev is the state as of the last Settle.
func (t *Tile) Prev() State { return t.prev }

// set applies next. prev keeps the state of the last Settle, so several
// transitions within one intent read as a single edge.
func (t *Tile) set(next State) bool {
	if next == t.state {
		return false
	}
	t.state = next
	return true
}

// Reveal assigns ch and moves an empty tile to idle. Tiles that already hold
// a letter are left untouched.
func (t *Tile) Reveal(ch rune) bool {
	if t.state.Phase != PhaseEmpty {
		return false
	}
	next := t.state
	next.Phase = PhaseIdle
	t.Char = ch
	return t.set(next)
}

// Complete moves an idle tile to complete. Markers are kept.
func (t *Tile) Complete() bool {
	if t.state.Phase != PhaseIdle {
		return false
	}
	next := t.state
	next.Phase = PhaseComplete
	return t.set(next)
}

// Finish marks the tile as ended without clearing anything else.
func (t *Tile) Finish() bool {
	next := t.state
	next.Ended = true
	return t.set(next)
}

func (t *Tile) Hint() bool {
	next := t.state
	next.Hinted = true
	return t.set(next)
}

func (t *Tile) Use() bool {
	next := t.state
	next.InUse = true
	return t.set(next)
}

// Release clears both overlays once the tile leaves the input buffer.
func (t *Tile) Release() bool {
	next := t.state
	next.InUse = false
	next.Hinted = false
	return t.set(next)
}

// Transitioned reports a change since the last Settle.
func (t *Tile) Transitioned() bool { return t.state != t.prev }

// JustEntered reports that all bits of mask are set now and were not all set
// at the last Settle.
func (t *Tile) JustEntered(mask Flag) bool {
	return t.state.Has(mask) && !t.prev.Has(mask)
}

// Settle marks the current state as seen.
func (t *Tile) Settle() { t.prev = t.state }
