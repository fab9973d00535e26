// main.go
//
// Word-ladder HTTP server.
// Loads .env, configures logging, loads the puzzle catalog, opens and
// migrates SQLite, then serves the API.

package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordladder/internal/catalog"
	"github.com/robalobadob/wordladder/internal/httpserver"
	"github.com/robalobadob/wordladder/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cfg := httpserver.ConfigFromEnv()

	cat, err := catalog.Load(os.Getenv("PUZZLES_FILE"), cfg.Game.Seeded)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load puzzles")
	}
	log.Info().Int("puzzles", cat.Len()).Int("skipped", cat.Skipped()).Msg("catalog loaded")

	db, err := openDB(getEnv("DB_PATH", "./data/app.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	defer db.Close()
	if err := migrate(db, os.DirFS("."), "sql"); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	srv := httpserver.New(store.NewMemoryStore(), db, cat, cfg)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting wordladder server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
