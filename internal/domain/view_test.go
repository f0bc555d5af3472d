package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusNextPlayer(t *testing.T) {
	s := New()
	assert.Equal(t, "Next player: X", Status(s))
	s = ApplyMove(s, 4)
	assert.Equal(t, "Next player: O", Status(s))
	assert.Equal(t, InProgress, OutcomeOf(s))
}

func TestDrawAtStepNine(t *testing.T) {
	s := playMoves(t, New(), 0, 1, 3, 4, 2, 6, 7, 8, 5)
	require.Equal(t, 9, s.Step)
	assert.Equal(t, NoResult, Evaluate(s.Active()))
	assert.Equal(t, "Game ends in a draw!", Status(s))
	assert.Equal(t, Draw, OutcomeOf(s))
	assert.True(t, s.Active().Full())

	// jumping back reopens the game
	back, err := JumpTo(s, 8)
	require.NoError(t, err)
	assert.Equal(t, "Next player: X", Status(back))
	assert.Equal(t, InProgress, OutcomeOf(back))
}

func TestWinOnLastCellIsNotADraw(t *testing.T) {
	// X's ninth mark on 8 completes the right column
	s := playMoves(t, New(), 0, 1, 2, 3, 5, 4, 7, 6, 8)
	require.Equal(t, 9, s.Step)
	assert.Equal(t, "Winner: X", Status(s))
	assert.Equal(t, Won, OutcomeOf(s))
	assert.Equal(t, [3]int{2, 5, 8}, Evaluate(s.Active()).Line)
}

func TestLabels(t *testing.T) {
	assert.Empty(t, Labels(New()))

	s := playMoves(t, New(), 0, 4, 5)
	labels := Labels(s)
	require.Len(t, labels, 3)
	assert.Equal(t, Label{Step: 1, Text: "Move #1 at coords (1,1)"}, labels[0])
	assert.Equal(t, Label{Step: 2, Text: "Move #2 at coords (2,2)"}, labels[1])
	assert.Equal(t, Label{Step: 3, Text: "Move #3 at coords (3,2)", Current: true}, labels[2])

	back, err := JumpTo(s, 1)
	require.NoError(t, err)
	labels = Labels(back)
	require.Len(t, labels, 3)
	assert.True(t, labels[0].Current)
	assert.False(t, labels[2].Current)
}

func TestCoords(t *testing.T) {
	want := [Size][2]int{{1, 1}, {2, 1}, {3, 1}, {1, 2}, {2, 2}, {3, 2}, {1, 3}, {2, 3}, {3, 3}}
	for i, w := range want {
		col, row := Coords(i)
		assert.Equal(t, w, [2]int{col, row}, "cell %d", i)
	}
}
