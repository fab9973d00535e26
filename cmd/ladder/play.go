package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/robalobadob/wordladder/internal/game"
)

// play runs the terminal loop until the puzzle is solved, the input ends or
// the player quits.
func play(ctx context.Context, c *game.Controller, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	render(c, out)
	for !c.Solved() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())

		switch line {
		case "":
			continue
		case "q":
			return nil
		case "?":
			ev, err := c.Hint()
			if err != nil {
				return err
			}
			if ev.Kind == game.EventHintExhausted {
				fmt.Fprintln(out, game.EventText(ev))
			}
		case "!":
			c.Shuffle()
		case "-":
			c.Delete()
		default:
			submit(c, line, out)
		}
		render(c, out)
	}
	return nil
}

// submit types word and presses Enter. Letters already in the buffer from
// hints are kept when they start the word.
func submit(c *game.Controller, word string, out io.Writer) {
	word = strings.ToLower(word)
	if !strings.HasPrefix(word, c.Value()) {
		for c.Delete() {
		}
	}
	base := len(c.Value())
	for _, r := range word[base:] {
		i, ok := c.TileFor(r)
		if !ok || !c.Select(i) {
			fmt.Fprintf(out, "Can't use %q\n", r)
			for len(c.Value()) > base && c.Delete() {
			}
			return
		}
	}

	ev := c.Enter()
	if text := game.EventText(ev); text != "" {
		fmt.Fprintln(out, text)
	}
	if ev.Kind == game.EventSubmissionRejected {
		c.EndReject()
	}
}

// render prints the board: idle letters lowercase, completed letters upper
// case, hinted letters starred, selected letters bracketed.
func render(c *game.Controller, out io.Writer) {
	st := c.Status()
	var b strings.Builder
	for _, v := range c.Tick() {
		ch := v.Char
		switch {
		case v.Flags&game.FlagEmpty != 0:
			ch = "_"
		case v.Flags&game.FlagComplete != 0:
			ch = strings.Map(unicode.ToUpper, ch)
		}
		if v.Flags&game.FlagHinted != 0 {
			ch += "*"
		}
		if v.Flags&game.FlagInUse != 0 {
			b.WriteString("[" + ch + "]")
		} else {
			b.WriteString(" " + ch + " ")
		}
	}
	fmt.Fprintf(out, "Level %d/%d (%d letters)  %s\n%s\n", st.Level+1, st.FinalLevel+1,
		st.RequiredLength, game.HintLabel(st.HintsRemaining), b.String())
	if st.Value != "" {
		fmt.Fprintf(out, "  %s\n", st.Value)
	}
}
