// Command ladder plays word-ladder puzzles in the terminal and checks puzzle
// catalogs.
//
//	ladder play [--index n | --definition "stages,answers"] [--seed s]
//	ladder check [--puzzles file]
package main

import (
	"context"
	"fmt"
	mrand "math/rand/v2"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3" // imports as package "cli"

	"github.com/robalobadob/wordladder/assets"
	"github.com/robalobadob/wordladder/internal/catalog"
	"github.com/robalobadob/wordladder/internal/game"
	"github.com/robalobadob/wordladder/internal/puzzle"
)

func main() {
	_ = godotenv.Load()

	// global flags
	puzzlesFile := ""
	seeded := 3
	verbose := false
	// play flags
	index := -1
	definition := ""
	hints := 3
	var seed uint64

	cmd := &cli.Command{
		Name:  "ladder",
		Usage: "word ladder puzzles",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "puzzles",
				Aliases:     []string{"p"},
				Usage:       "puzzle file, one definition per line; embedded list when empty",
				Sources:     cli.EnvVars("PUZZLES_FILE"),
				Destination: &puzzlesFile,
			},
			&cli.IntFlag{
				Name:        "seeded",
				Value:       3,
				Usage:       "letters revealed before play starts",
				Sources:     cli.EnvVars("SEEDED_LETTERS"),
				Destination: &seeded,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "debug logging",
				Destination: &verbose,
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "play",
				Usage: "play a puzzle: type words, ? for a hint, ! to shuffle, - to delete, q to quit",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "index",
						Aliases:     []string{"i"},
						Value:       -1,
						Usage:       "catalog index, random when negative",
						Destination: &index,
					},
					&cli.StringFlag{
						Name:        "definition",
						Aliases:     []string{"d"},
						Usage:       `custom puzzle "stage|stage,answer|answer"`,
						Destination: &definition,
					},
					&cli.IntFlag{
						Name:        "hints",
						Value:       3,
						Usage:       "hints per puzzle",
						Sources:     cli.EnvVars("HINTS"),
						Destination: &hints,
					},
					&cli.Uint64Flag{
						Name:        "seed",
						Usage:       "shuffle seed, random when 0",
						Destination: &seed,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					def, err := pickPuzzle(puzzlesFile, seeded, index, definition)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					opts := game.Options{Seeded: seeded, Hints: hints}
					if hints == 0 {
						opts.Hints = -1
					}
					if seed != 0 {
						opts.Rand = mrand.New(mrand.NewPCG(seed, seed))
					}
					c, err := game.New(def, opts)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					return play(ctx, c, os.Stdin, os.Stdout)
				},
			},
			{
				Name:  "check",
				Usage: "validate every definition of the catalog and solve it once",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					lines, err := catalogLines(puzzlesFile)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					bad, err := check(ctx, lines, seeded, os.Stderr)
					if err != nil {
						return err
					}
					for _, r := range bad {
						log.Error().Int("line", r.Line).Err(r.Err).Msg("invalid puzzle")
					}
					log.Info().Int("puzzles", len(lines)).Int("invalid", len(bad)).Msg("check finished")
					if len(bad) > 0 {
						return cli.Exit("catalog has invalid puzzles", 2)
					}
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("ladder")
	}
}

func catalogLines(path string) ([]string, error) {
	if path == "" {
		return assets.PuzzleLines()
	}
	return catalog.ReadLines(path)
}

func pickPuzzle(path string, seeded, index int, definition string) (puzzle.Definition, error) {
	if definition != "" {
		def, err := puzzle.Parse(definition)
		if err != nil {
			return def, err
		}
		return def, def.Validate(seeded)
	}
	cat, err := catalog.Load(path, seeded)
	if err != nil {
		return puzzle.Definition{}, err
	}
	if index < 0 {
		def, i := cat.Random()
		log.Debug().Int("index", i).Msg("random puzzle")
		return def, nil
	}
	def, ok := cat.At(index)
	if !ok {
		return def, fmt.Errorf("no puzzle at index %d, catalog has %d", index, cat.Len())
	}
	return def, nil
}
