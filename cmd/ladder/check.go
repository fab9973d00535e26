package main

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordladder/internal/game"
	"github.com/robalobadob/wordladder/internal/puzzle"
)

// checkResult is one rejected catalog line (1-based).
type checkResult struct {
	Line int
	Err  error
}

// check validates each definition and plays it through with the first answer
// of every level. Lines are checked concurrently; progress goes to w.
func check(ctx context.Context, lines []string, seeded int, w io.Writer) ([]checkResult, error) {
	bar := progressbar.NewOptions(len(lines),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("checking"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	errs := make([]error, len(lines))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, line := range lines {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			errs[i] = checkLine(line, seeded)
			_ = bar.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	_ = bar.Finish()

	var bad []checkResult
	for i, err := range errs {
		if err != nil {
			bad = append(bad, checkResult{Line: i + 1, Err: err})
		}
	}
	return bad, nil
}

func checkLine(line string, seeded int) error {
	def, err := puzzle.Parse(line)
	if err != nil {
		return err
	}
	if err := def.Validate(seeded); err != nil {
		return err
	}
	c, err := game.New(def, game.Options{Seeded: seeded})
	if err != nil {
		return err
	}
	answers := puzzle.BuildAnswerIndex(def.Answers)
	for !c.Solved() {
		level := c.Status().Level
		words := answers.Get(c.RequiredLength())
		if len(words) == 0 {
			return fmt.Errorf("level %d: no answers", level)
		}
		for _, r := range words[0] {
			i, ok := c.TileFor(r)
			if !ok || !c.Select(i) {
				return fmt.Errorf("level %d: %q not on the board for %q", level, r, words[0])
			}
		}
		if ev := c.Enter(); ev.Kind != game.EventLevelAdvanced && ev.Kind != game.EventPuzzleSolved {
			return fmt.Errorf("level %d: %q was not accepted", level, words[0])
		}
	}
	return nil
}
