package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper to apply a sequence of moves, each of which must be accepted
func playMoves(t *testing.T, s Session, cells ...int) Session {
	t.Helper()
	for i, c := range cells {
		next := ApplyMove(s, c)
		if len(next.History) == len(s.History) && next.Step == s.Step {
			t.Fatalf("move %d (cell %d) was rejected", i, c)
		}
		s = next
	}
	return s
}

func TestNewGameInitialState(t *testing.T) {
	s := New()
	require.Len(t, s.History, 1)
	assert.Equal(t, 0, s.Step)
	assert.Equal(t, Board{}, s.History[0].Board)
	assert.Equal(t, NoMove, s.History[0].LastMove)
	assert.Equal(t, X, s.Next())
	assert.False(t, Evaluate(s.Active()).Decided())
	require.NoError(t, s.Validate())
}

func TestRestartEqualsFirstSession(t *testing.T) {
	first := New()
	played := playMoves(t, first, 0, 4, 8)
	require.Equal(t, first, New())
	require.NotEqual(t, first, played)
	// playing never leaks into a fresh session
	require.Equal(t, Board{}, New().Active())
}

func TestCurrentPlayerParity(t *testing.T) {
	for step := 0; step < 10; step++ {
		want := O
		if step%2 == 0 {
			want = X
		}
		assert.Equal(t, want, CurrentPlayer(step), "step %d", step)
	}
}

func TestApplyMoveAppendsAndAlternates(t *testing.T) {
	s := New()
	s1 := ApplyMove(s, 4)
	require.Len(t, s1.History, 2)
	assert.Equal(t, 1, s1.Step)
	assert.Equal(t, X, s1.Active()[4])
	assert.Equal(t, 4, s1.History[1].LastMove)
	assert.Equal(t, O, s1.Next())

	s2 := ApplyMove(s1, 0)
	assert.Equal(t, O, s2.Active()[0])
	assert.Equal(t, X, s2.Next())

	// values are not mutated
	assert.Len(t, s.History, 1)
	assert.Len(t, s1.History, 2)
	assert.Equal(t, Empty, s1.Active()[0])
	require.NoError(t, s2.Validate())
}

func TestApplyMoveOccupiedIsNoop(t *testing.T) {
	s := playMoves(t, New(), 0, 4, 2)
	for _, c := range []int{0, 4, 2} {
		assert.Equal(t, s, ApplyMove(s, c), "cell %d", c)
	}
}

func TestApplyMoveOutOfBoundsIsNoop(t *testing.T) {
	s := New()
	for _, c := range []int{-1, 9, 42} {
		assert.Equal(t, s, ApplyMove(s, c), "cell %d", c)
		assert.False(t, CanPlay(s, c))
	}
}

func TestGameOverBlocksFurtherMoves(t *testing.T) {
	// X wins on the top row
	s := playMoves(t, New(), 0, 3, 1, 4, 2)
	require.True(t, Evaluate(s.Active()).Decided())
	for c := 0; c < Size; c++ {
		assert.Equal(t, s, ApplyMove(s, c), "cell %d", c)
		assert.False(t, CanPlay(s, c))
	}
}

func TestApplyMoveAtLatestStepGrowsByOne(t *testing.T) {
	s := New()
	for i, c := range []int{0, 1, 2, 4, 3} {
		require.Equal(t, len(s.History)-1, s.Step)
		next := ApplyMove(s, c)
		require.Len(t, next.History, len(s.History)+1, "move %d", i)
		s = next
	}
}

func TestApplyMoveAfterJumpTruncates(t *testing.T) {
	s := playMoves(t, New(), 0, 1, 2)
	require.Len(t, s.History, 4)

	back, err := JumpTo(s, 1)
	require.NoError(t, err)
	assert.Equal(t, s.History, back.History)
	assert.Equal(t, O, back.Next())

	branched := ApplyMove(back, 4)
	require.Len(t, branched.History, 3)
	assert.Equal(t, 2, branched.Step)
	assert.Equal(t, CurrentPlayer(1), branched.Active()[4])
	assert.Equal(t, Empty, branched.Active()[1])
	assert.Equal(t, Empty, branched.Active()[2])

	// the session we jumped from keeps its redo states
	assert.Len(t, s.History, 4)
	assert.Equal(t, X, s.Active()[2])
	require.NoError(t, branched.Validate())
}

func TestApplyMoveTruncationLengthProperty(t *testing.T) {
	s := playMoves(t, New(), 0, 1, 2, 3, 5)
	for step := 0; step < len(s.History); step++ {
		j, err := JumpTo(s, step)
		require.NoError(t, err)
		// find any legal cell at that step
		for c := 0; c < Size; c++ {
			if !CanPlay(j, c) {
				continue
			}
			next := ApplyMove(j, c)
			assert.Len(t, next.History, step+2, "step %d cell %d", step, c)
			break
		}
	}
}

func TestJumpToKeepsHistory(t *testing.T) {
	s := playMoves(t, New(), 4, 0, 8, 2)
	for step := 0; step < len(s.History); step++ {
		j, err := JumpTo(s, step)
		require.NoError(t, err)
		assert.Equal(t, s.History, j.History)
		assert.Equal(t, step, j.Step)
		assert.Equal(t, step%2 == 0, j.Next() == X)
	}
}

func TestJumpToOutOfRange(t *testing.T) {
	s := playMoves(t, New(), 4)
	for _, step := range []int{-1, 2, 10} {
		j, err := JumpTo(s, step)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrStepOutOfRange))
		assert.Equal(t, s, j)
	}
}

func TestValidateRejectsCorruptHistory(t *testing.T) {
	good := playMoves(t, New(), 0, 4)

	cases := map[string]func(s Session) Session{
		"empty": func(s Session) Session { return Session{} },
		"step": func(s Session) Session {
			s.Step = len(s.History)
			return s
		},
		"initial board": func(s Session) Session {
			h := append([]Move(nil), s.History...)
			h[0] = Move{Board: Board{X}, LastMove: NoMove}
			return Session{History: h}
		},
		"wrong mark": func(s Session) Session {
			h := append([]Move(nil), s.History...)
			h[1].Board[0] = O
			return Session{History: h, Step: s.Step}
		},
		"two cells": func(s Session) Session {
			h := append([]Move(nil), s.History...)
			h[2].Board[8] = O
			return Session{History: h, Step: s.Step}
		},
		"last move": func(s Session) Session {
			h := append([]Move(nil), s.History...)
			h[1].LastMove = 9
			return Session{History: h, Step: s.Step}
		},
	}
	for name, corrupt := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, corrupt(good).Validate())
		})
	}
	require.NoError(t, good.Validate())
}

func TestCellText(t *testing.T) {
	for _, c := range []Cell{Empty, X, O} {
		b, err := c.MarshalText()
		require.NoError(t, err)
		var back Cell
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, c, back)
	}
	var c Cell
	assert.Error(t, c.UnmarshalText([]byte("Z")))
}
