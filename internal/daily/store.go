package daily

import (
	"context"
	"database/sql"
)

// Result is one player's solve of a daily puzzle.
type Result struct {
	UserID      string `json:"userId"`
	Date        string `json:"date"`
	PuzzleIndex int    `json:"puzzleIndex"`
	HintsUsed   int    `json:"hintsUsed"`
	Submissions int    `json:"submissions"`
	ElapsedMs   int    `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult stores r; a second result for the same user and date is
// ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, puzzle_index, hints_used, submissions, elapsed_ms)
		VALUES(?,?,?,?,?,?)`, r.UserID, r.Date, r.PuzzleIndex, r.HintsUsed, r.Submissions, r.ElapsedMs,
	)
	return err
}

type LBRow struct {
	UserID      string `json:"userId"`
	HintsUsed   int    `json:"hintsUsed"`
	Submissions int    `json:"submissions"`
	ElapsedMs   int    `json:"elapsedMs"`
}

// Leaderboard ranks a day's results: fewest hints, then fastest, then
// fewest submissions.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, hints_used, submissions, elapsed_ms
		FROM daily_results
		WHERE date=?
		ORDER BY hints_used ASC, elapsed_ms ASC, submissions ASC, created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.HintsUsed, &r.Submissions, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
