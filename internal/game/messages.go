package game

import "fmt"

var celebrations = []string{"Good!", "Great!", "Amazing!", "Superb!", "Incredible!"}

// WinMessage is shown once the final word is accepted.
const WinMessage = "You win!"

// Message returns the celebration text for a level-advance message index.
// Indices past the end repeat the last entry.
func Message(i int) string {
	switch {
	case i < 0:
		return celebrations[0]
	case i >= len(celebrations):
		return celebrations[len(celebrations)-1]
	}
	return celebrations[i]
}

// EventText is the one-line text a renderer shows for ev, or "".
func EventText(ev Event) string {
	switch ev.Kind {
	case EventLevelAdvanced:
		return Message(ev.MessageIndex)
	case EventPuzzleSolved:
		return WinMessage
	case EventSubmissionRejected:
		return "Not in the list"
	case EventHintExhausted:
		return "No hints left"
	}
	return ""
}

// HintLabel is the hint button caption.
func HintLabel(remaining int) string { return fmt.Sprintf("HINT - %d", remaining) }
