package httpserver

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordladder/internal/catalog"
	"github.com/robalobadob/wordladder/internal/game"
	"github.com/robalobadob/wordladder/internal/stats"
	"github.com/robalobadob/wordladder/internal/store"
)

const (
	ladder = "aeg|aegr|aegrs|adegrs|abdegrs|abdegirs,age|gear|rage|gears|rages|sarge|grades|badgers|abridges|brigades"
	short  = "abc|d,abc|abcd"
)

func newTestServer(t *testing.T, puzzles ...string) *httptest.Server {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../sql/001_init.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	if len(puzzles) == 0 {
		puzzles = []string{ladder, short}
	}
	cat, err := catalog.FromLines(puzzles, 3)
	require.NoError(t, err)

	srv := New(store.NewMemoryStore(), db, cat, Config{JWTSecret: "test", DailySalt: "salt"})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

type client struct {
	t    *testing.T
	base string
	hc   *http.Client
}

func newClient(t *testing.T, ts *httptest.Server) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: ts.URL, hc: &http.Client{Jar: jar}}
}

// do sends body as JSON and decodes the response into out when non-nil.
func (c *client) do(method, path string, body, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *client) newGame(index int) gameRes {
	c.t.Helper()
	var res gameRes
	require.Equal(c.t, http.StatusOK, c.do("POST", "/game/new", map[string]any{"index": index}, &res))
	return res
}

func (c *client) spell(id string, tiles ...int) {
	c.t.Helper()
	for _, i := range tiles {
		var res gameRes
		require.Equal(c.t, http.StatusOK, c.do("POST", "/game/"+id+"/select", map[string]int{"tile": i}, &res))
		require.True(c.t, res.Accepted, "tile %d", i)
	}
}

func (c *client) enter(id string) gameRes {
	c.t.Helper()
	var res gameRes
	require.Equal(c.t, http.StatusOK, c.do("POST", "/game/"+id+"/enter", nil, &res))
	return res
}

func TestHealth(t *testing.T) {
	c := newClient(t, newTestServer(t))
	var out map[string]any
	assert.Equal(t, http.StatusOK, c.do("GET", "/health", nil, &out))
	assert.Equal(t, true, out["ok"])
	assert.EqualValues(t, 2, out["puzzles"])
	assert.Equal(t, http.StatusNotFound, c.do("GET", "/nope", nil, nil))
}

func TestGame_NewSelectEnter(t *testing.T) {
	c := newClient(t, newTestServer(t))
	g := c.newGame(0)
	require.Len(t, g.GameID, 16)
	assert.Equal(t, 0, g.Status.Level)
	assert.Equal(t, "aeg", g.Status.Arrangement)
	assert.Equal(t, "HINT - 3", g.HintLabel)
	require.Len(t, g.Tiles, 8)
	assert.Equal(t, game.FlagIdle, g.Tiles[0].Flags)
	assert.True(t, g.Tiles[0].Transitioned)
	assert.Equal(t, game.FlagEmpty, g.Tiles[3].Flags)

	c.spell(g.GameID, 0, 2, 1) // a g e
	res := c.enter(g.GameID)
	assert.Equal(t, game.EventLevelAdvanced, res.Event.Kind)
	assert.Equal(t, "Good!", res.Text)
	assert.Equal(t, 1, res.Status.Level)
	assert.Equal(t, 4, res.Status.RequiredLength)
	assert.Equal(t, "r", res.Tiles[3].Char)
	assert.Equal(t, game.FlagComplete, res.Tiles[0].Flags)

	var again gameRes
	require.Equal(t, http.StatusOK, c.do("GET", "/game/"+g.GameID, nil, &again))
	assert.Equal(t, 1, again.Status.Level)
	assert.False(t, again.Tiles[3].Transitioned, "settled by the previous response")
}

func TestGame_RejectAndRelease(t *testing.T) {
	c := newClient(t, newTestServer(t))
	id := c.newGame(0).GameID

	c.spell(id, 2, 0, 1) // g a e
	res := c.enter(id)
	assert.Equal(t, game.EventSubmissionRejected, res.Event.Kind)
	assert.True(t, res.Status.InputLocked)
	assert.Equal(t, "gae", res.Status.Value)

	var sel gameRes
	require.Equal(t, http.StatusOK, c.do("POST", "/game/"+id+"/select", map[string]int{"slot": 0}, &sel))
	assert.False(t, sel.Accepted)

	var rel gameRes
	require.Equal(t, http.StatusOK, c.do("POST", "/game/"+id+"/release", nil, &rel))
	assert.False(t, rel.Status.InputLocked)
	assert.Equal(t, "", rel.Status.Value)

	assert.Equal(t, http.StatusBadRequest, c.do("POST", "/game/"+id+"/select", map[string]int{}, nil))
}

func TestGame_DeleteHintShuffle(t *testing.T) {
	c := newClient(t, newTestServer(t))
	id := c.newGame(0).GameID
	c.spell(id, 0, 2, 1)
	c.enter(id)

	c.spell(id, 3)
	var del gameRes
	require.Equal(t, http.StatusOK, c.do("POST", "/game/"+id+"/delete", nil, &del))
	assert.True(t, del.Accepted)
	assert.Equal(t, "", del.Status.Value)

	var hint gameRes
	require.Equal(t, http.StatusOK, c.do("POST", "/game/"+id+"/hint", nil, &hint))
	assert.Equal(t, game.Event{Kind: game.EventHintApplied, Tile: 2}, hint.Event)
	assert.Equal(t, "g", hint.Status.Value)
	assert.Equal(t, "HINT - 2", hint.HintLabel)
	assert.True(t, hint.Tiles[2].Flags&game.FlagHinted != 0)

	var sh gameRes
	require.Equal(t, http.StatusOK, c.do("POST", "/game/"+id+"/shuffle", nil, &sh))
	assert.Equal(t, game.EventShuffled, sh.Event.Kind)
	assert.Equal(t, sh.Event.Arrangement, sh.Status.Arrangement)
}

func TestGame_OwnershipAndErrors(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)
	id := c.newGame(0).GameID

	other := newClient(t, ts)
	assert.Equal(t, http.StatusNotFound, other.do("GET", "/game/"+id, nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do("GET", "/game/unknown", nil, nil))

	assert.Equal(t, http.StatusBadRequest, c.do("POST", "/game/new", map[string]any{"index": 9}, nil))
	assert.Equal(t, http.StatusBadRequest, c.do("POST", "/game/new", map[string]any{"definition": "ab,ab"}, nil))

	var custom gameRes
	require.Equal(t, http.StatusOK, c.do("POST", "/game/new", map[string]any{"definition": short}, &custom))
	assert.Equal(t, 1, custom.Status.FinalLevel)
}

func TestGame_SolveUpdatesStats(t *testing.T) {
	c := newClient(t, newTestServer(t))
	id := c.newGame(1).GameID
	c.spell(id, 0, 1, 2)
	require.Equal(t, game.EventLevelAdvanced, c.enter(id).Event.Kind)
	c.spell(id, 0, 1, 2, 3)
	res := c.enter(id)
	assert.Equal(t, game.EventPuzzleSolved, res.Event.Kind)
	assert.Equal(t, game.WinMessage, res.Text)
	assert.True(t, res.Status.Solved)
	assert.Equal(t, game.FlagComplete|game.FlagEnded, res.Tiles[0].Flags)

	var sum stats.Summary
	require.Equal(t, http.StatusOK, c.do("GET", "/stats/me", nil, &sum))
	assert.Equal(t, stats.Summary{Played: 1, Solved: 1, Streak: 1, MaxStreak: 1}, sum)
}

func TestStats_KeyValue(t *testing.T) {
	c := newClient(t, newTestServer(t))
	var v statValue
	require.Equal(t, http.StatusOK, c.do("GET", "/stats/me/theme", nil, &v))
	assert.False(t, v.Found)

	require.Equal(t, http.StatusOK, c.do("PUT", "/stats/me/theme", map[string]string{"value": "dark"}, nil))
	require.Equal(t, http.StatusOK, c.do("GET", "/stats/me/theme", nil, &v))
	assert.Equal(t, statValue{Key: "theme", Value: "dark", Found: true}, v)
}

func TestDaily(t *testing.T) {
	ts := newTestServer(t, short)
	c := newClient(t, ts)

	var first, second dailyNewRes
	require.Equal(t, http.StatusOK, c.do("POST", "/daily/new", nil, &first))
	require.NotNil(t, first.Game)
	assert.False(t, first.Played)
	assert.Equal(t, first.Date, first.Game.Daily)
	require.Equal(t, http.StatusOK, c.do("POST", "/daily/new", nil, &second))
	assert.Equal(t, first.Game.GameID, second.Game.GameID, "resumed")

	id := first.Game.GameID
	c.spell(id, 0, 1, 2)
	c.enter(id)
	c.spell(id, 0, 1, 2, 3)
	require.Equal(t, game.EventPuzzleSolved, c.enter(id).Event.Kind)

	var done dailyNewRes
	require.Equal(t, http.StatusOK, c.do("POST", "/daily/new", nil, &done))
	assert.True(t, done.Played)
	assert.Nil(t, done.Game)

	var lb lbRes
	require.Equal(t, http.StatusOK, c.do("GET", "/daily/leaderboard", nil, &lb))
	assert.Equal(t, first.Date, lb.Date)
	require.Len(t, lb.Top, 1)
	assert.Equal(t, 2, lb.Top[0].Submissions)

	require.Equal(t, http.StatusOK, c.do("GET", "/daily/leaderboard?date=2000-01-01", nil, &lb))
	assert.Empty(t, lb.Top)
}

func TestDaily_ConcurrentStartsShareOneGame(t *testing.T) {
	ts := newTestServer(t, short)
	c := newClient(t, ts)
	var sum stats.Summary
	require.Equal(t, http.StatusOK, c.do("GET", "/stats/me", nil, &sum))

	ids := make([]string, 8)
	var g errgroup.Group
	for i := range ids {
		g.Go(func() error {
			resp, err := c.hc.Post(ts.URL+"/daily/new", "application/json", nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status %d", resp.StatusCode)
			}
			var res dailyNewRes
			if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
				return err
			}
			if res.Game == nil {
				return fmt.Errorf("no game in %+v", res)
			}
			ids[i] = res.Game.GameID
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	require.Equal(t, http.StatusOK, c.do("GET", "/stats/me", nil, &sum))
	assert.Equal(t, 1, sum.Played)
}

func TestAuth_SignupClaimsGuestHistory(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)

	id := c.newGame(1).GameID
	assert.Equal(t, http.StatusUnauthorized, c.do("GET", "/auth/me", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, c.do("GET", "/games/mine", nil, nil))

	creds := map[string]string{"username": "ladder_fan", "password": "correct horse"}
	require.Equal(t, http.StatusOK, c.do("POST", "/auth/signup", creds, nil))
	assert.Equal(t, http.StatusConflict, c.do("POST", "/auth/signup", creds, nil))

	var me authUser
	require.Equal(t, http.StatusOK, c.do("GET", "/auth/me", nil, &me))
	assert.Equal(t, "ladder_fan", me.Username)

	var sum stats.Summary
	require.Equal(t, http.StatusOK, c.do("GET", "/stats/me", nil, &sum))
	assert.Equal(t, 1, sum.Played, "guest stats moved to the account")

	c.spell(id, 0, 1, 2) // live guest game follows the new account
	assert.Equal(t, game.EventLevelAdvanced, c.enter(id).Event.Kind)

	var mine []gameRow
	require.Equal(t, http.StatusOK, c.do("GET", "/games/mine", nil, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, id, mine[0].ID)
	assert.Equal(t, 1, mine[0].Level)

	require.Equal(t, http.StatusOK, c.do("POST", "/auth/logout", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, c.do("GET", "/auth/me", nil, nil))

	bad := map[string]string{"username": "ladder_fan", "password": "wrong password"}
	assert.Equal(t, http.StatusUnauthorized, c.do("POST", "/auth/login", bad, nil))
	require.Equal(t, http.StatusOK, c.do("POST", "/auth/login", creds, nil))
	require.Equal(t, http.StatusOK, c.do("GET", "/auth/me", nil, &me))
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		user, pass string
		ok         bool
	}{
		{"abc", "12345678", true},
		{"ab", "12345678", false},
		{"has space", "12345678", false},
		{"abc", "short", false},
	}
	for _, tt := range tests {
		t.Run(tt.user+"/"+tt.pass, func(t *testing.T) {
			err := validateSignup(tt.user, tt.pass)
			assert.Equal(t, tt.ok, err == nil, "%v", err)
		})
	}
}
