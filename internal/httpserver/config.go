package httpserver

import (
	"os"
	"strconv"
	"time"

	"github.com/robalobadob/wordladder/internal/game"
)

// Config carries the environment-derived settings of the server.
type Config struct {
	JWTSecret    string
	JWTTTL       time.Duration
	CookieName   string // auth token cookie
	AnonCookie   string // guest identity cookie
	ClientOrigin string // single CORS origin
	Production   bool   // Secure + SameSite=None cookies
	DailySalt    string
	Game         game.Options
}

// ConfigFromEnv reads JWT_SECRET, JWT_EXPIRES_DAYS, COOKIE_NAME,
// CLIENT_ORIGIN, NODE_ENV, DAILY_SALT, HINTS, SEEDED_LETTERS and
// SHUFFLE_ATTEMPTS.
func ConfigFromEnv() Config {
	hints := envInt("HINTS", 3)
	if hints == 0 {
		hints = -1 // game.Options treats 0 as "default"
	}
	return Config{
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTTTL:       time.Duration(envInt("JWT_EXPIRES_DAYS", 14)) * 24 * time.Hour,
		CookieName:   getEnv("COOKIE_NAME", "ladder_token"),
		AnonCookie:   "ladder_anon",
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:   os.Getenv("NODE_ENV") == "production",
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		Game: game.Options{
			Seeded:          envInt("SEEDED_LETTERS", 3),
			Hints:           hints,
			ShuffleAttempts: envInt("SHUFFLE_ATTEMPTS", 100),
		},
	}
}

func (c Config) withDefaults() Config {
	d := ConfigFromEnv()
	if c.JWTSecret == "" {
		c.JWTSecret = d.JWTSecret
	}
	if c.JWTTTL <= 0 {
		c.JWTTTL = d.JWTTTL
	}
	if c.CookieName == "" {
		c.CookieName = d.CookieName
	}
	if c.AnonCookie == "" {
		c.AnonCookie = d.AnonCookie
	}
	if c.ClientOrigin == "" {
		c.ClientOrigin = d.ClientOrigin
	}
	if c.DailySalt == "" {
		c.DailySalt = d.DailySalt
	}
	return c
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt parses k as an int, falling back to def.
func envInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return def
}
