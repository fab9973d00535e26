// internal/httpserver/routes_game.go
//
// Game endpoints. Every intent answers with the same gameRes shape: the event
// it produced, the text to show for it, the session status and a tile
// snapshot (one presentation tick).
//
//   - POST /game/new             -> start a puzzle (catalog random/index or custom)
//   - GET  /game/{id}            -> current state
//   - POST /game/{id}/select     -> {"tile": i} or {"slot": n}
//   - POST /game/{id}/delete
//   - POST /game/{id}/enter
//   - POST /game/{id}/release    -> end the rejection window
//   - POST /game/{id}/hint
//   - POST /game/{id}/shuffle

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordladder/internal/game"
	"github.com/robalobadob/wordladder/internal/puzzle"
	"github.com/robalobadob/wordladder/internal/store"
)

var errPuzzleCorrupt = errors.New("puzzle_corrupt")

func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", s.intent(func(*store.Session, *http.Request) (gameRes, error) {
			return gameRes{}, nil
		}))
		r.Post("/select", s.intent(selectTile))
		r.Post("/delete", s.intent(func(sess *store.Session, _ *http.Request) (gameRes, error) {
			return gameRes{Accepted: sess.Game.Delete()}, nil
		}))
		r.Post("/enter", s.intent(func(sess *store.Session, r *http.Request) (gameRes, error) {
			ev := sess.Game.Enter()
			s.recordProgress(r.Context(), sess, ev)
			return gameRes{Event: ev}, nil
		}))
		r.Post("/release", s.intent(func(sess *store.Session, _ *http.Request) (gameRes, error) {
			sess.Game.EndReject()
			return gameRes{}, nil
		}))
		r.Post("/hint", s.intent(func(sess *store.Session, _ *http.Request) (gameRes, error) {
			ev, err := sess.Game.Hint()
			var missing *game.MissingTileError
			if errors.As(err, &missing) {
				log.Error().Err(err).Str("gameId", sess.Game.ID).Int("puzzle", sess.Puzzle).
					Str("definition", sess.Game.Definition.String()).Msg("hint target not on board")
				return gameRes{}, errPuzzleCorrupt
			}
			return gameRes{Event: ev}, err
		}))
		r.Post("/shuffle", s.intent(func(sess *store.Session, _ *http.Request) (gameRes, error) {
			return gameRes{Event: sess.Game.Shuffle()}, nil
		}))
	})
}

// gameRes is the response of every game endpoint.
type gameRes struct {
	GameID    string          `json:"gameId"`
	Event     game.Event      `json:"event"`
	Text      string          `json:"text,omitempty"`
	Accepted  bool            `json:"accepted,omitempty"` // select/delete took effect
	HintLabel string          `json:"hintLabel"`
	Daily     string          `json:"daily,omitempty"`
	Status    game.Status     `json:"status"`
	Tiles     []game.TileView `json:"tiles"`
}

func present(sess *store.Session, res gameRes) gameRes {
	res.GameID = sess.Game.ID
	res.Text = game.EventText(res.Event)
	res.Status = sess.Game.Status()
	res.HintLabel = game.HintLabel(res.Status.HintsRemaining)
	res.Daily = sess.Daily
	res.Tiles = sess.Game.Tick()
	return res
}

type intentFunc func(sess *store.Session, r *http.Request) (gameRes, error)

// intent loads the caller's session, runs fn under the store lock and
// writes the presented result.
func (s *Server) intent(fn intentFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		owner := s.ownerID(w, r)

		var res gameRes
		err := s.store.Update(r.Context(), id, func(sess *store.Session) error {
			if sess.Owner != owner && !s.claimLive(r, sess, owner) {
				return store.ErrNotFound
			}
			out, err := fn(sess, r)
			if err != nil {
				return err
			}
			res = present(sess, out)
			return nil
		})
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found")
		case errors.Is(err, errBadRequest):
			writeError(w, http.StatusBadRequest, "bad_request")
		case errors.Is(err, errPuzzleCorrupt):
			writeError(w, http.StatusInternalServerError, errPuzzleCorrupt.Error())
		case err != nil:
			log.Error().Err(err).Str("gameId", id).Msg("intent failed")
			writeError(w, http.StatusInternalServerError, "server_error")
		default:
			_ = json.NewEncoder(w).Encode(res)
		}
	}
}

var errBadRequest = errors.New("bad_request")

// claimLive hands a game started as a guest to the user who just signed in
// from the same browser.
func (s *Server) claimLive(r *http.Request, sess *store.Session, owner string) bool {
	if currentUser(r) == nil {
		return false
	}
	c, err := r.Cookie(s.cfg.AnonCookie)
	if err != nil || c.Value == "" || c.Value != sess.Owner {
		return false
	}
	sess.Owner = owner
	return true
}

// selectReq names a tile by stable index or by displayed slot.
type selectReq struct {
	Tile *int `json:"tile"`
	Slot *int `json:"slot"`
}

func selectTile(sess *store.Session, r *http.Request) (gameRes, error) {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return gameRes{}, errBadRequest
	}
	switch {
	case req.Tile != nil:
		return gameRes{Accepted: sess.Game.Select(*req.Tile)}, nil
	case req.Slot != nil:
		return gameRes{Accepted: sess.Game.SelectSlot(*req.Slot)}, nil
	}
	return gameRes{}, errBadRequest
}

// ------------------------------- /game/new ---------------------------------

type newGameReq struct {
	Definition string `json:"definition"` // optional custom puzzle
	Index      *int   `json:"index"`      // optional catalog index
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	var (
		def puzzle.Definition
		idx = -1
		err error
	)
	switch {
	case req.Definition != "":
		def, err = puzzle.Parse(req.Definition)
		if err == nil {
			err = def.Validate(s.seeded())
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_definition")
			return
		}
	case req.Index != nil:
		var ok bool
		if def, ok = s.catalog.At(*req.Index); !ok {
			writeError(w, http.StatusBadRequest, "bad_index")
			return
		}
		idx = *req.Index
	default:
		def, idx = s.catalog.Random()
	}

	sess, err := s.startGame(w, r, def, idx, "")
	if err != nil {
		log.Error().Err(err).Msg("start game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	var res gameRes
	_ = s.store.Update(r.Context(), sess.Game.ID, func(sess *store.Session) error {
		res = present(sess, gameRes{})
		return nil
	})
	_ = json.NewEncoder(w).Encode(res)
}

func (s *Server) seeded() int {
	if s.cfg.Game.Seeded > 0 {
		return s.cfg.Game.Seeded
	}
	return game.DefaultOptions().Seeded
}

// startGame builds a controller, registers it and records the game row and
// the played counter. Persistence failures are logged, not returned.
func (s *Server) startGame(w http.ResponseWriter, r *http.Request, def puzzle.Definition, idx int, date string) (*store.Session, error) {
	c, err := game.New(def, s.cfg.Game)
	if err != nil {
		return nil, err
	}
	owner := s.ownerID(w, r)
	sess := &store.Session{Game: c, Owner: owner, Puzzle: idx, Daily: date, Started: time.Now()}
	if err := s.store.Save(r.Context(), sess); err != nil {
		return nil, err
	}

	ownerCol := "anonymous_id"
	if currentUser(r) != nil {
		ownerCol = "user_id"
	}
	if _, err := s.db.ExecContext(r.Context(),
		`INSERT INTO games (id, `+ownerCol+`, puzzle_index, daily_date, started_at, status)
		 VALUES (?,?,?,NULLIF(?,''),?,'playing')`,
		c.ID, owner, idx, date, sess.Started.UTC().Format(time.RFC3339)); err != nil {
		log.Warn().Err(err).Str("gameId", c.ID).Msg("insert game row")
	}
	if err := s.stats.GameStarted(r.Context(), owner); err != nil {
		log.Warn().Err(err).Str("owner", owner).Msg("stats: game started")
	}
	log.Info().Str("gameId", c.ID).Int("puzzle", idx).Str("daily", date).Msg("game started")
	return sess, nil
}

// recordProgress persists the outcome of an accepted word (best effort).
func (s *Server) recordProgress(ctx context.Context, sess *store.Session, ev game.Event) {
	st := sess.Game.Status()
	switch ev.Kind {
	case game.EventLevelAdvanced:
		if _, err := s.db.ExecContext(ctx,
			`UPDATE games SET level=?, submissions=?, hints_used=? WHERE id=?`,
			st.Level, st.Submissions, st.HintsUsed, sess.Game.ID); err != nil {
			log.Warn().Err(err).Msg("update game row")
		}
		log.Debug().Str("gameId", sess.Game.ID).Int("level", st.Level).Msg("level advanced")

	case game.EventPuzzleSolved:
		if _, err := s.db.ExecContext(ctx,
			`UPDATE games SET level=?, submissions=?, hints_used=?, status='solved', finished_at=? WHERE id=?`,
			st.Level, st.Submissions, st.HintsUsed, time.Now().UTC().Format(time.RFC3339), sess.Game.ID); err != nil {
			log.Warn().Err(err).Msg("finish game row")
		}
		if err := s.stats.GameSolved(ctx, sess.Owner, st.HintsUsed); err != nil {
			log.Warn().Err(err).Str("owner", sess.Owner).Msg("stats: game solved")
		}
		if sess.Daily != "" {
			s.recordDaily(ctx, sess, st)
		}
		log.Info().Str("gameId", sess.Game.ID).Int("hintsUsed", st.HintsUsed).
			Int("submissions", st.Submissions).Msg("puzzle solved")

	default:
		if _, err := s.db.ExecContext(ctx,
			`UPDATE games SET submissions=? WHERE id=?`, st.Submissions, sess.Game.ID); err != nil {
			log.Warn().Err(err).Msg("update game row")
		}
	}
}
