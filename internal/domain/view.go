package domain

import "fmt"

// Outcome summarizes the active board for API consumers.
type Outcome string

const (
	InProgress Outcome = "in_progress"
	Won        Outcome = "won"
	Draw       Outcome = "draw"
)

// drawStep is the step reached when every cell has been filled.
const drawStep = Size

// Status is the line shown above the board.
func Status(s Session) string {
	if r := Evaluate(s.Active()); r.Decided() {
		return "Winner: " + r.Winner.String()
	}
	if s.Step == drawStep {
		return "Game ends in a draw!"
	}
	return "Next player: " + s.Next().String()
}

// OutcomeOf reports whether the active board is won, drawn or still open.
func OutcomeOf(s Session) Outcome {
	b := s.Active()
	switch {
	case Evaluate(b).Decided():
		return Won
	case b.Full():
		return Draw
	default:
		return InProgress
	}
}

// Label describes one history entry after the initial board.
type Label struct {
	Step    int
	Text    string
	Current bool
}

// Coords returns the 1-based (column, row) of cell i.
func Coords(i int) (col, row int) {
	return i%3 + 1, i/3 + 1
}

// Labels lists the jump targets for every move. The initial record gets no label.
func Labels(s Session) []Label {
	out := make([]Label, 0, len(s.History)-1)
	for n := 1; n < len(s.History); n++ {
		col, row := Coords(s.History[n].LastMove)
		out = append(out, Label{
			Step:    n,
			Text:    fmt.Sprintf("Move #%d at coords (%d,%d)", n, col, row),
			Current: n == s.Step,
		})
	}
	return out
}
