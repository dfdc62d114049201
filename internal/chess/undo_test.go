package chess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteUndoRestoresPosition(t *testing.T) {
	fens := []string{
		StartFEN,
		kiwipeteFEN,
		endgameFEN,
		mirrorFEN,
		talkchessFEN,
		"k7/8/8/3pP3/8/8/8/7K w - d6 0 2",
		"1n5k/P7/8/8/8/8/8/7K w - - 0 1",
		"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
	}
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			p := mustFEN(t, fen)
			before := p.Clone()
			for _, m := range p.AllLegalMoves() {
				require.NoError(t, p.Apply(m), m.String())
				require.NoError(t, p.Undo(), m.String())
				require.Equal(t, before, p, "after %s", m)
			}
		})
	}
}

func TestUndoSequence(t *testing.T) {
	p := NewPosition()
	var fens []string
	for _, m := range []string{"e2e4", "d7d5", "e4d5", "d8d5", "b1c3", "d5a5", "e1e2"} {
		fens = append(fens, p.FEN())
		require.NoError(t, p.Apply(mustUCI(t, m)), m)
	}
	assert.Len(t, p.History(), 7)

	for i := len(fens) - 1; i >= 0; i-- {
		require.NoError(t, p.Undo())
		assert.Equal(t, fens[i], p.FEN())
	}
	assert.ErrorIs(t, p.Undo(), ErrNothingToUndo)
	assert.Empty(t, p.History())
}

func TestUndoRestoresTerminalState(t *testing.T) {
	p := NewPosition()
	for _, m := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		require.NoError(t, p.Apply(mustUCI(t, m)))
	}
	require.True(t, p.Ended())

	require.NoError(t, p.Undo())
	assert.False(t, p.Ended())
	assert.Equal(t, StatusActive, p.Status())
	assert.Equal(t, Black, p.SideToMove())
	assert.NotEmpty(t, p.AllLegalMoves())
}

func TestUndoKeepsFENEnPassantTarget(t *testing.T) {
	fen := "k7/8/8/3pP3/8/8/8/7K w - d6 0 2"
	p := mustFEN(t, fen)
	require.NoError(t, p.Apply(mustUCI(t, "h1g1")))
	require.NoError(t, p.Undo())
	assert.Equal(t, fen, p.FEN())
	assert.Contains(t, names(p.LegalMoves(sq(t, "e5"))), "d6")
}

func TestCloneIsIndependent(t *testing.T) {
	p := NewPosition()
	c := p.Clone()
	require.NoError(t, c.Apply(mustUCI(t, "e2e4")))
	assert.Equal(t, StartFEN, p.FEN())
	assert.Empty(t, p.History())
	assert.Len(t, c.History(), 1)
	assert.Equal(t, 1, p.RepetitionCount())
}
