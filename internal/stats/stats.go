// internal/stats/stats.go
//
// Persisted per-player statistics.
// Responsibilities:
//   - Key/value access (Get/Set) for presentation text such as the stats drawer.
//   - Counters updated when a game starts and when it is solved.
//
// Owners are user IDs for signed-in players and anonymous cookie IDs for
// guests. Values are stored as text. Nothing here is read back into puzzle
// logic.

package stats

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
)

// Well-known keys.
const (
	KeyPlayed    = "played"
	KeySolved    = "solved"
	KeyHintsUsed = "hints_used"
	KeyStreak    = "streak"
	KeyMaxStreak = "max_streak"
	KeyOpen      = "open" // "1" while the latest game is unsolved
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a SQLite-backed statistics store.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Get returns the value for key; ok is false when it was never set.
func (s *Store) Get(ctx context.Context, owner, key string) (string, bool, error) {
	return get(ctx, s.db, owner, key)
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, owner, key, value string) error {
	return set(ctx, s.db, owner, key, value)
}

func get(ctx context.Context, q querier, owner, key string) (string, bool, error) {
	var v string
	err := q.QueryRowContext(ctx, `SELECT value FROM stats WHERE owner=? AND key=?`, owner, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func set(ctx context.Context, q querier, owner, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO stats (owner, key, value) VALUES (?,?,?)
		ON CONFLICT(owner, key) DO UPDATE SET value=excluded.value`, owner, key, value)
	return err
}

func getInt(ctx context.Context, q querier, owner, key string) (int, error) {
	v, ok, err := get(ctx, q, owner, key)
	if err != nil || !ok {
		return 0, err
	}
	n, _ := strconv.Atoi(v)
	return n, nil
}

func add(ctx context.Context, q querier, owner, key string, delta int) (int, error) {
	n, err := getInt(ctx, q, owner, key)
	if err != nil {
		return 0, err
	}
	n += delta
	return n, set(ctx, q, owner, key, strconv.Itoa(n))
}

// GameStarted counts a new game. Starting over while the previous game is
// still unsolved breaks the streak.
func (s *Store) GameStarted(ctx context.Context, owner string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if open, _, err := get(ctx, tx, owner, KeyOpen); err != nil {
			return err
		} else if open == "1" {
			if err := set(ctx, tx, owner, KeyStreak, "0"); err != nil {
				return err
			}
		}
		if _, err := add(ctx, tx, owner, KeyPlayed, 1); err != nil {
			return err
		}
		return set(ctx, tx, owner, KeyOpen, "1")
	})
}

// GameSolved counts a solve and the hints it used.
func (s *Store) GameSolved(ctx context.Context, owner string, hintsUsed int) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := add(ctx, tx, owner, KeySolved, 1); err != nil {
			return err
		}
		if _, err := add(ctx, tx, owner, KeyHintsUsed, hintsUsed); err != nil {
			return err
		}
		streak, err := add(ctx, tx, owner, KeyStreak, 1)
		if err != nil {
			return err
		}
		best, err := getInt(ctx, tx, owner, KeyMaxStreak)
		if err != nil {
			return err
		}
		if streak > best {
			if err := set(ctx, tx, owner, KeyMaxStreak, strconv.Itoa(streak)); err != nil {
				return err
			}
		}
		return set(ctx, tx, owner, KeyOpen, "0")
	})
}

// Summary is the stats drawer content.
type Summary struct {
	Played    int `json:"played"`
	Solved    int `json:"solved"`
	HintsUsed int `json:"hintsUsed"`
	Streak    int `json:"streak"`
	MaxStreak int `json:"maxStreak"`
}

func (s *Store) Summary(ctx context.Context, owner string) (Summary, error) {
	var out Summary
	for key, dst := range map[string]*int{
		KeyPlayed:    &out.Played,
		KeySolved:    &out.Solved,
		KeyHintsUsed: &out.HintsUsed,
		KeyStreak:    &out.Streak,
		KeyMaxStreak: &out.MaxStreak,
	} {
		n, err := getInt(ctx, s.db, owner, key)
		if err != nil {
			return Summary{}, err
		}
		*dst = n
	}
	return out, nil
}

// MoveOwner folds every stat of from into to, e.g. when a guest signs up or
// logs in. Counters add up, streaks keep the larger value and open follows
// the guest's latest game. Any other key of to is kept. The rows of from are
// removed.
func (s *Store) MoveOwner(ctx context.Context, from, to string) error {
	if from == "" || to == "" || from == to {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		guest, err := rowsOf(ctx, tx, from)
		if err != nil {
			return err
		}
		for key, value := range guest {
			if err := mergeKey(ctx, tx, to, key, value); err != nil {
				return err
			}
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM stats WHERE owner=?`, from)
		return err
	})
}

func rowsOf(ctx context.Context, tx *sql.Tx, owner string) (map[string]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT key, value FROM stats WHERE owner=?`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func mergeKey(ctx context.Context, q querier, owner, key, value string) error {
	switch key {
	case KeyPlayed, KeySolved, KeyHintsUsed:
		n, _ := strconv.Atoi(value)
		_, err := add(ctx, q, owner, key, n)
		return err
	case KeyStreak, KeyMaxStreak:
		n, _ := strconv.Atoi(value)
		cur, err := getInt(ctx, q, owner, key)
		if err != nil || cur >= n {
			return err
		}
		return set(ctx, q, owner, key, strconv.Itoa(n))
	case KeyOpen:
		return set(ctx, q, owner, key, value)
	}
	_, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO stats (owner, key, value) VALUES (?,?,?)`, owner, key, value)
	return err
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
