package game

import (
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// TileView is the per-tile snapshot handed to renderers on every tick.
type TileView struct {
	Index        int    `json:"index"`
	Slot         int    `json:"slot"`
	Char         string `json:"char"`
	Flags        Flag   `json:"flags"`
	Transitioned bool   `json:"transitioned"`
}

// TileSet owns the tiles of one puzzle and their on-screen arrangement.
// tiles is indexed by tile index; order maps a slot to a tile index.
//
// Revealed tiles always occupy the leading slots: reveals go in index order
// and shuffles only permute the revealed prefix.
type TileSet struct {
	tiles []*Tile
	order []int
}

// NewTileSet creates n empty tiles in identity order.
func NewTileSet(n int) *TileSet {
	ts := &TileSet{
		tiles: make([]*Tile, n),
		order: make([]int, n),
	}
	for i := range ts.tiles {
		ts.tiles[i] = NewTile(i)
		ts.order[i] = i
	}
	return ts
}

func (ts *TileSet) Len() int { return len(ts.tiles) }

// Tile returns the tile with index i.
func (ts *TileSet) Tile(i int) (*Tile, bool) {
	if i < 0 || i >= len(ts.tiles) {
		return nil, false
	}
	return ts.tiles[i], true
}

// Slot resolves an on-screen slot to a tile index.
func (ts *TileSet) Slot(slot int) (int, bool) {
	if slot < 0 || slot >= len(ts.order) {
		return 0, false
	}
	return ts.order[slot], true
}

// Order returns a copy of the slot → tile index mapping.
func (ts *TileSet) Order() []int { return slices.Clone(ts.order) }

// RevealForLevel reveals every still-empty tile addressed by alphabet and
// returns the indices that changed.
func (ts *TileSet) RevealForLevel(alphabet string) []int {
	var revealed []int
	i := 0
	for _, r := range alphabet {
		if i >= len(ts.tiles) {
			break
		}
		if ts.tiles[i].Reveal(r) {
			revealed = append(revealed, i)
		}
		i++
	}
	return revealed
}

// CompleteActive moves every idle tile to complete.
func (ts *TileSet) CompleteActive() {
	for _, t := range ts.tiles {
		t.Complete()
	}
}

// EndAll finishes every tile that holds a letter.
func (ts *TileSet) EndAll() {
	for _, t := range ts.tiles {
		if t.State().Phase != PhaseEmpty {
			t.Finish()
		}
	}
}

// AvailableCount counts tiles with an assigned letter.
func (ts *TileSet) AvailableCount() int {
	return lo.CountBy(ts.tiles, func(t *Tile) bool { return t.Char != 0 })
}

// Arrangement spells the revealed letters in slot order.
func (ts *TileSet) Arrangement() string { return ts.spell(ts.order) }

func (ts *TileSet) spell(order []int) string {
	var b strings.Builder
	for _, i := range order {
		if c := ts.tiles[i].Char; c != 0 {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Shuffle permutes the revealed slots until the arrangement differs from
// the current one and is not rejected, trying at most attempts times. When
// no attempt qualifies the last permutation is kept anyway.
func (ts *TileSet) Shuffle(rng *rand.Rand, attempts int, rejected func(string) bool) string {
	n := ts.AvailableCount()
	current := ts.Arrangement()

	var last []int
	for i := 0; i < attempts; i++ {
		candidate := slices.Clone(ts.order)
		prefix := candidate[:n]
		rng.Shuffle(n, func(i, j int) { prefix[i], prefix[j] = prefix[j], prefix[i] })
		last = candidate
		text := ts.spell(candidate)
		if text != current && !rejected(text) {
			break
		}
	}
	if last != nil {
		ts.order = last
	}
	return ts.Arrangement()
}

// ReleaseAll clears the input overlays on every tile.
func (ts *TileSet) ReleaseAll() {
	for _, t := range ts.tiles {
		if t.State().InUse || t.State().Hinted {
			t.Release()
		}
	}
}

// Snapshot lists the tiles in slot order.
func (ts *TileSet) Snapshot() []TileView {
	return lo.Map(ts.order, func(i int, slot int) TileView {
		t := ts.tiles[i]
		v := TileView{
			Index:        t.Index,
			Slot:         slot,
			Flags:        t.State().Flags(),
			Transitioned: t.Transitioned(),
		}
		if t.Char != 0 {
			v.Char = string(t.Char)
		}
		return v
	})
}

// Settle marks every tile state as seen.
func (ts *TileSet) Settle() {
	for _, t := range ts.tiles {
		t.Settle()
	}
}
