package chess

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFEN(t *testing.T, fen string) *Position {
	t.Helper()
	p, err := ParseFEN(fen)
	require.NoError(t, err, fen)
	return p
}

func sq(t *testing.T, s string) Square {
	t.Helper()
	out, err := ParseSquare(s)
	require.NoError(t, err)
	return out
}

func names(squares []Square) []string {
	out := make([]string, 0, len(squares))
	for _, s := range squares {
		out = append(out, s.String())
	}
	return out
}

func TestLegalMoves(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		from  string
		want  []string
		total int
	}{
		{
			name:  "knight from the start",
			fen:   StartFEN,
			from:  "g1",
			want:  []string{"f3", "h3"},
			total: 20,
		},
		{
			name:  "king boxed in by rook and pawns",
			fen:   endgameFEN,
			from:  "a5",
			want:  []string{"a4", "a6"},
			total: 14,
		},
		{
			name:  "rook pinned on its file keeps the file",
			fen:   "4r2k/8/8/8/8/8/4R3/4K3 w - - 0 1",
			from:  "e2",
			want:  []string{"e3", "e4", "e5", "e6", "e7", "e8"},
			total: 10,
		},
		{
			name:  "bishop pinned on a file cannot move",
			fen:   "4r2k/8/8/8/8/8/4B3/4K3 w - - 0 1",
			from:  "e2",
			want:  []string{},
			total: 4,
		},
		{
			name:  "knight may only block the check",
			fen:   "4r2k/8/8/8/8/8/3N4/4K3 w - - 0 1",
			from:  "d2",
			want:  []string{"e4"},
			total: 4,
		},
		{
			name:  "king may not step back along the checking line",
			fen:   "4r2k/8/8/8/8/8/4K3/8 w - - 0 1",
			from:  "e2",
			want:  []string{"d1", "d2", "d3", "f1", "f2", "f3"},
			total: 6,
		},
		{
			name: "en passant exposing the king along the rank",
			fen:  "8/8/8/K2pP2r/8/8/8/7k w - d6 0 1",
			from: "e5",
			want: []string{"e6"},
		},
		{
			name: "en passant exposing the king along a diagonal",
			fen:  "6b1/8/8/3pP3/8/1K6/8/7k w - d6 0 1",
			from: "e5",
			want: []string{"e6"},
		},
		{
			name:  "en passant allowed",
			fen:   "k7/8/8/3pP3/8/8/8/7K w - d6 0 2",
			from:  "e5",
			want:  []string{"e6", "d6"},
			total: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustFEN(t, tt.fen)
			assert.ElementsMatch(t, tt.want, names(p.LegalMoves(sq(t, tt.from))))
			if tt.total > 0 {
				assert.Len(t, p.AllLegalMoves(), tt.total)
			}
		})
	}
}

func TestLegalMovesWrongSide(t *testing.T) {
	p := NewPosition()
	assert.Nil(t, p.LegalMoves(sq(t, "e7")), "black pawn with white to move")
	assert.Nil(t, p.LegalMoves(sq(t, "e4")), "empty square")
	assert.Nil(t, p.LegalMoves(Sq(9, 0)), "off the board")
}

func TestLegalMovesDoesNotMutate(t *testing.T) {
	p := mustFEN(t, kiwipeteFEN)
	before := p.Clone()
	for _, pc := range p.Pieces() {
		p.LegalMoves(pc.Square)
	}
	p.AllLegalMoves()
	assert.Equal(t, before, p)
}

func TestCheckState(t *testing.T) {
	p := mustFEN(t, "4r2k/8/8/8/8/8/3N4/4K3 w - - 0 1")
	assert.True(t, p.InCheck())
	assert.Equal(t, 1, p.CheckCount())
	checker, ok := p.Checker()
	require.True(t, ok)
	assert.Equal(t, Rook, checker.Kind)
	assert.Equal(t, "e8", checker.Square.String())

	for _, s := range []string{"e2", "e5", "e8"} {
		assert.NotZero(t, p.Tile(White, sq(t, s))&AllowedInCheck, s)
	}
	assert.Zero(t, p.Tile(White, sq(t, "d2"))&AllowedInCheck)
	assert.NotZero(t, p.Tile(White, sq(t, "e1"))&BlockedForKing)
}

func TestPinState(t *testing.T) {
	p := mustFEN(t, "4r2k/8/8/8/8/8/4R3/4K3 w - - 0 1")
	rook, ok := p.PieceAt(sq(t, "e2"))
	require.True(t, ok)
	assert.True(t, rook.Pinned)
	df, dr, ok := rook.PinLine()
	assert.True(t, ok)
	assert.Equal(t, 0, df)
	assert.Equal(t, 1, dr)
	assert.False(t, p.InCheck())
}

func TestKnightCheckAllowsOnlyCapture(t *testing.T) {
	p := mustFEN(t, "4k3/8/8/8/8/3n4/8/R3K3 w - - 0 1")
	assert.True(t, p.InCheck())
	assert.Empty(t, p.LegalMoves(sq(t, "a1")), "a rook cannot block a knight check")
	assert.NotZero(t, p.Tile(White, sq(t, "d3"))&AllowedInCheck)
}

func TestDoubleCheck(t *testing.T) {
	p := mustFEN(t, "4k3/8/r7/8/4N3/8/8/4RK2 w - - 0 1")
	kind, err := p.Execute(sq(t, "e4"), sq(t, "d6"))
	require.NoError(t, err)
	assert.Equal(t, Normal, kind)

	assert.Equal(t, 2, p.CheckCount())
	assert.Nil(t, p.LegalMoves(sq(t, "a6")), "only the king may move in double check")
	assert.ElementsMatch(t, []string{"d7", "d8", "f8"}, names(p.LegalMoves(sq(t, "e8"))))
	assert.Len(t, p.AllLegalMoves(), 3)
}

func TestSetupRejectsDoubleCheck(t *testing.T) {
	_, err := ParseFEN("4k3/8/3N4/8/8/8/8/4RK2 b - - 0 1")
	assert.ErrorIs(t, err, ErrFEN)
	assert.ErrorIs(t, err, ErrSetup)
}

func TestCastling(t *testing.T) {
	p := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	moves := p.LegalMoves(sq(t, "e1"))
	var castles []string
	for _, m := range moves {
		if m.Kind == Castle {
			castles = append(castles, m.String())
		}
	}
	assert.ElementsMatch(t, []string{"g1", "c1"}, castles)

	kind, err := p.Execute(sq(t, "e1"), sq(t, "g1"))
	require.NoError(t, err)
	assert.Equal(t, Castle, kind)
	assert.Equal(t, "r3k2r/8/8/8/8/8/8/R4RK1 b kq - 1 1", p.FEN())

	rook, ok := p.PieceAt(sq(t, "f1"))
	require.True(t, ok)
	assert.Equal(t, Rook, rook.Kind)
	assert.True(t, rook.Moved)

	require.NoError(t, p.Undo())
	assert.Equal(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", p.FEN())
}

func TestCastlingThroughAttack(t *testing.T) {
	p := mustFEN(t, "r3k2r/8/8/8/8/8/5r2/R3K2R w KQkq - 0 1")
	var castles []string
	for _, m := range p.LegalMoves(sq(t, "e1")) {
		if m.Kind == Castle {
			castles = append(castles, m.String())
		}
	}
	assert.Equal(t, []string{"c1"}, castles)
}

func TestCastlingRightsLostAfterRookMove(t *testing.T) {
	p := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	_, err := p.Execute(sq(t, "h1"), sq(t, "h2"))
	require.NoError(t, err)
	assert.Equal(t, "r3k2r/8/8/8/8/8/7R/R3K3 b Qkq - 1 1", p.FEN())
}

func TestEnPassantCapture(t *testing.T) {
	p := NewPosition()
	for _, m := range []string{"e2e4", "a7a6", "e4e5", "d7d5"} {
		require.NoError(t, p.Apply(mustUCI(t, m)), m)
	}
	assert.Equal(t, "rnbqkbnr/1pp1pppp/p7/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3", p.FEN())

	kind, err := p.Execute(sq(t, "e5"), sq(t, "d6"))
	require.NoError(t, err)
	assert.Equal(t, EnPassant, kind)
	_, ok := p.PieceAt(sq(t, "d5"))
	assert.False(t, ok, "captured pawn removed")
	assert.Equal(t, 15, p.LiveCount(Black))

	require.NoError(t, p.Undo())
	pawn, ok := p.PieceAt(sq(t, "d5"))
	require.True(t, ok)
	assert.Equal(t, Black, pawn.Color)
	assert.Equal(t, 16, p.LiveCount(Black))
}

func TestEnPassantExpires(t *testing.T) {
	p := mustFEN(t, "k7/8/8/3pP3/8/8/8/7K w - d6 0 2")
	require.NoError(t, p.Apply(mustUCI(t, "h1g1")))
	require.NoError(t, p.Apply(mustUCI(t, "a8b8")))
	assert.ElementsMatch(t, []string{"e6"}, names(p.LegalMoves(sq(t, "e5"))))
}

func TestExecuteRejectsIllegal(t *testing.T) {
	p := NewPosition()
	tests := []struct {
		name     string
		from, to Square
	}{
		{"empty origin", Sq(4, 3), Sq(4, 4)},
		{"enemy piece", Sq(4, 6), Sq(4, 5)},
		{"unreachable", Sq(4, 1), Sq(4, 4)},
		{"off board", Sq(4, 1), Sq(4, 9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Execute(tt.from, tt.to)
			assert.ErrorIs(t, err, ErrIllegalMove)
			assert.Equal(t, StartFEN, p.FEN())
		})
	}
}

func mustUCI(t *testing.T, s string) Move {
	t.Helper()
	m, err := ParseUCIMove(s)
	require.NoError(t, err)
	return m
}

func TestCheckmate(t *testing.T) {
	p := NewPosition()
	for _, m := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		require.NoError(t, p.Apply(mustUCI(t, m)), m)
	}
	assert.True(t, p.Ended())
	assert.Equal(t, Checkmate, p.Terminal())
	winner, ok := p.Winner()
	assert.True(t, ok)
	assert.Equal(t, Black, winner)
	assert.Equal(t, "0-1", p.Result())
	assert.Empty(t, p.AllLegalMoves())

	_, err := p.Execute(sq(t, "e2"), sq(t, "e4"))
	assert.True(t, errors.Is(err, ErrGameOver))
}
