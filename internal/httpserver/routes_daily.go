// internal/httpserver/routes_daily.go
//
// Puzzle of the day.
//   - POST /daily/new         -> start (or resume) today's puzzle
//   - GET  /daily/leaderboard -> ranked results for today (or ?date=YYYY-MM-DD)
//
// Play goes through the regular /game/{id}/* intents. Each player can finish
// a date once (UNIQUE(user_id, date)); the result is stored on solve.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordladder/internal/daily"
	"github.com/robalobadob/wordladder/internal/game"
	"github.com/robalobadob/wordladder/internal/store"
)

type dailyServer struct {
	srv *Server

	mu     sync.Mutex             // guards the maps, not the work behind them
	locks  map[string]*sync.Mutex // owner|date -> start lock
	active map[string]string      // owner|date -> game ID
}

// lock serializes starts for one owner and date.
func (d *dailyServer) lock(key string) func() {
	d.mu.Lock()
	l, ok := d.locks[key]
	if !ok {
		l = new(sync.Mutex)
		d.locks[key] = l
	}
	d.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (d *dailyServer) activeGame(key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, ok := d.active[key]
	return id, ok
}

func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:    s,
		locks:  make(map[string]*sync.Mutex),
		active: make(map[string]string),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

type dailyNewRes struct {
	Date   string   `json:"date"`
	Played bool     `json:"played"`
	Game   *gameRes `json:"game,omitempty"`
}

// handleNew returns Played=true when the caller already has a result for
// today; otherwise it resumes or starts today's game.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	s := d.srv
	owner := s.ownerID(w, r)
	now := time.Now()
	date := daily.DateKey(now)

	if played, err := s.daily.AlreadyPlayed(r.Context(), owner, date); err != nil {
		log.Warn().Err(err).Msg("daily already played")
	} else if played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: true})
		return
	}

	key := owner + "|" + date
	defer d.lock(key)()

	if id, ok := d.activeGame(key); ok {
		if res, ok := d.resume(r.Context(), id); ok {
			_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Game: &res})
			return
		}
	}

	idx := daily.PuzzleIndex(now, s.cfg.DailySalt, s.catalog.Len())
	def, ok := s.catalog.At(idx)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no_puzzles")
		return
	}
	sess, err := s.startGame(w, r, def, idx, date)
	if err != nil {
		log.Error().Err(err).Msg("start daily game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	d.mu.Lock()
	d.active[key] = sess.Game.ID
	d.mu.Unlock()
	res, _ := d.resume(r.Context(), sess.Game.ID)
	_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Game: &res})
}

func (d *dailyServer) resume(ctx context.Context, id string) (gameRes, bool) {
	var res gameRes
	err := d.srv.store.Update(ctx, id, func(sess *store.Session) error {
		res = present(sess, gameRes{})
		return nil
	})
	return res, err == nil
}

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	}
	rows, err := d.srv.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}

// recordDaily stores the result of a solved daily game.
func (s *Server) recordDaily(ctx context.Context, sess *store.Session, st game.Status) {
	err := s.daily.InsertResult(ctx, daily.Result{
		UserID:      sess.Owner,
		Date:        sess.Daily,
		PuzzleIndex: sess.Puzzle,
		HintsUsed:   st.HintsUsed,
		Submissions: st.Submissions,
		ElapsedMs:   int(time.Since(sess.Started).Milliseconds()),
	})
	if err != nil {
		log.Warn().Err(err).Str("owner", sess.Owner).Msg("insert daily result")
	}
}
