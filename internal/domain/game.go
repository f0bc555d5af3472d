package domain

import (
	"errors"
	"fmt"
)

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

func (c Cell) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Cell) UnmarshalText(b []byte) error {
	switch string(b) {
	case "":
		*c = Empty
	case "X":
		*c = X
	case "O":
		*c = O
	default:
		return fmt.Errorf("unknown cell %q", b)
	}
	return nil
}

// Size is the number of cells on the board.
const Size = 9

// Board is a fixed 3x3 board stored row-major.
type Board [Size]Cell

// Full reports whether no cell is Empty.
func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// NoMove marks the initial history record, which has no last move.
const NoMove = -1

// Move is one history record: the board after the move and the cell that was filled.
type Move struct {
	Board    Board `json:"board"`
	LastMove int   `json:"last_move"`
}

// Session is an immutable game value. Transitions return a new Session.
type Session struct {
	History []Move `json:"history"`
	Step    int    `json:"step"`
}

// ErrStepOutOfRange is returned by JumpTo for a step outside the history.
var ErrStepOutOfRange = errors.New("step out of range")

// New returns the initial session: one empty board, X to move.
func New() Session {
	return Session{History: []Move{{LastMove: NoMove}}}
}

// CurrentPlayer returns whose turn it is at the given step.
func CurrentPlayer(step int) Cell {
	if step%2 == 0 {
		return X
	}
	return O
}

// Active returns the board selected by Step.
func (s Session) Active() Board {
	return s.History[s.Step].Board
}

// Next returns the player to move at the current step.
func (s Session) Next() Cell {
	return CurrentPlayer(s.Step)
}

// CanPlay reports whether ApplyMove would accept a move at cell.
func CanPlay(s Session, cell int) bool {
	if cell < 0 || cell >= Size {
		return false
	}
	b := s.Active()
	if b[cell] != Empty {
		return false
	}
	return !Evaluate(b).Decided()
}

// ApplyMove plays the current player's mark at cell. Illegal moves return s unchanged.
// Any history after the current step is discarded.
func ApplyMove(s Session, cell int) Session {
	if !CanPlay(s, cell) {
		return s
	}
	history := make([]Move, s.Step+1, s.Step+2)
	copy(history, s.History[:s.Step+1])

	board := s.Active()
	board[cell] = CurrentPlayer(s.Step)
	history = append(history, Move{Board: board, LastMove: cell})

	return Session{History: history, Step: len(history) - 1}
}

// JumpTo selects an earlier (or later) history entry without touching the history.
func JumpTo(s Session, step int) (Session, error) {
	if step < 0 || step >= len(s.History) {
		return s, fmt.Errorf("%w: %d not in [0,%d]", ErrStepOutOfRange, step, len(s.History)-1)
	}
	return Session{History: s.History, Step: step}, nil
}

// Validate checks the history invariants. Sessions decoded from storage go through it.
func (s Session) Validate() error {
	if len(s.History) == 0 {
		return errors.New("empty history")
	}
	if s.Step < 0 || s.Step >= len(s.History) {
		return fmt.Errorf("%w: %d not in [0,%d]", ErrStepOutOfRange, s.Step, len(s.History)-1)
	}
	first := s.History[0]
	if first.Board != (Board{}) || first.LastMove != NoMove {
		return errors.New("history must start with an empty board")
	}
	for n := 1; n < len(s.History); n++ {
		prev, cur := s.History[n-1], s.History[n]
		i := cur.LastMove
		if i < 0 || i >= Size {
			return fmt.Errorf("move %d: last move %d is not a cell", n, i)
		}
		if prev.Board[i] != Empty || cur.Board[i] != CurrentPlayer(n-1) {
			return fmt.Errorf("move %d: cell %d is not a fresh %s mark", n, i, CurrentPlayer(n-1))
		}
		want := prev.Board
		want[i] = cur.Board[i]
		if want != cur.Board {
			return fmt.Errorf("move %d changes more than one cell", n)
		}
	}
	return nil
}
