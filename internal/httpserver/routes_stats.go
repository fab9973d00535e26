// internal/httpserver/routes_stats.go
//
// Player statistics and history.
//   - GET /stats/me       -> counters for the caller (guest or user)
//   - GET /stats/me/{key} -> one stored value
//   - PUT /stats/me/{key} -> {"value": "..."}
//   - GET /games/mine     -> recent games (signed-in users only)

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

func (s *Server) mountStats(r chi.Router) {
	r.Get("/stats/me", s.handleStats)
	r.Get("/stats/me/{key}", s.handleStatGet)
	r.Put("/stats/me/{key}", s.handleStatSet)
	s.r.With(s.requireAuth()).Get("/games/mine", s.handleMyGames)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sum, err := s.stats.Summary(r.Context(), s.ownerID(w, r))
	if err != nil {
		log.Error().Err(err).Msg("stats summary")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	_ = json.NewEncoder(w).Encode(sum)
}

type statValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Found bool   `json:"found"`
}

func (s *Server) handleStatGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	v, ok, err := s.stats.Get(r.Context(), s.ownerID(w, r), key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	_ = json.NewEncoder(w).Encode(statValue{Key: key, Value: v, Found: ok})
}

func (s *Server) handleStatSet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || key == "" {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}
	if err := s.stats.Set(r.Context(), s.ownerID(w, r), key, body.Value); err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	_ = json.NewEncoder(w).Encode(statValue{Key: key, Value: body.Value, Found: true})
}

type gameRow struct {
	ID          string `json:"id"`
	Puzzle      int    `json:"puzzle"`
	Daily       string `json:"daily,omitempty"`
	Status      string `json:"status"`
	Level       int    `json:"level"`
	Submissions int    `json:"submissions"`
	HintsUsed   int    `json:"hintsUsed"`
	StartedAt   string `json:"startedAt"`
	FinishedAt  string `json:"finishedAt,omitempty"`
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	rows, err := s.db.QueryContext(r.Context(), `
		SELECT id, puzzle_index, COALESCE(daily_date,''), status, level, submissions, hints_used,
		       started_at, COALESCE(finished_at,'')
		FROM games WHERE user_id=? ORDER BY started_at DESC LIMIT 50`, me.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	defer rows.Close()

	out := []gameRow{}
	for rows.Next() {
		var g gameRow
		if err := rows.Scan(&g.ID, &g.Puzzle, &g.Daily, &g.Status, &g.Level, &g.Submissions,
			&g.HintsUsed, &g.StartedAt, &g.FinishedAt); err != nil {
			log.Warn().Err(err).Msg("scan game row")
			continue
		}
		out = append(out, g)
	}
	_ = json.NewEncoder(w).Encode(out)
}
