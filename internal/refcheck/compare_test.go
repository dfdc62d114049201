package refcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justinabrahms/chesscore/internal/chess"
)

var positions = []string{
	chess.StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"k7/8/8/3pP3/8/8/8/7K w - d6 0 2",
}

type fixedReference struct {
	moves []string
}

func (fixedReference) Name() string { return "fixed" }

func (f fixedReference) LegalMoves(string) ([]string, error) { return f.moves, nil }

func (fixedReference) Perft(string, int) (uint64, error) { return 0, nil }

func TestCompareAgreesWithReferences(t *testing.T) {
	for _, ref := range All() {
		for _, fen := range positions {
			t.Run(ref.Name()+"/"+fen, func(t *testing.T) {
				p, err := chess.ParseFEN(fen)
				require.NoError(t, err)
				mm, err := Compare(p, ref)
				require.NoError(t, err)
				assert.Nil(t, mm)
			})
		}
	}
}

func TestCompareReportsDifferences(t *testing.T) {
	p := chess.NewPosition()
	moves := EngineMoves(p)
	require.Len(t, moves, 20)

	ref := fixedReference{moves: append([]string{"a1a3"}, moves[1:]...)}
	mm, err := Compare(p, ref)
	require.NoError(t, err)
	require.NotNil(t, mm)
	assert.Equal(t, "fixed", mm.Reference)
	assert.Equal(t, chess.StartFEN, mm.FEN)
	assert.Equal(t, []string{"a1a3"}, mm.Missing)
	assert.Equal(t, []string{moves[0]}, mm.Extra)
	assert.Contains(t, mm.String(), "fixed disagrees")
}

func TestWalk(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping tree walk in short mode")
	}
	for _, ref := range All() {
		t.Run(ref.Name(), func(t *testing.T) {
			p, err := chess.ParseFEN(positions[1])
			require.NoError(t, err)
			mismatches, err := Walk(p, 1, ref)
			require.NoError(t, err)
			assert.Empty(t, mismatches)
			assert.Equal(t, positions[1], p.FEN())
		})
	}
}

func TestWalkStopsAtMismatch(t *testing.T) {
	mismatches, err := Walk(chess.NewPosition(), 3, fixedReference{})
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Len(t, mismatches[0].Extra, 20)
}

func TestComparePerft(t *testing.T) {
	for _, ref := range All() {
		t.Run(ref.Name(), func(t *testing.T) {
			p, err := chess.ParseFEN(positions[2])
			require.NoError(t, err)
			res, err := ComparePerft(p, 3, ref)
			require.NoError(t, err)
			assert.True(t, res.Agrees(), "%+v", res)
			assert.Equal(t, uint64(2812), res.Engine)
		})
	}
}

func TestNamed(t *testing.T) {
	ref, err := Named("notnil")
	require.NoError(t, err)
	assert.Equal(t, "notnil", ref.Name())

	ref, err = Named("dragontoothmg")
	require.NoError(t, err)
	assert.Equal(t, "dragontoothmg", ref.Name())

	_, err = Named("stockfish")
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	missing, extra := diff([]string{"a", "b", "d"}, []string{"b", "c", "d", "e"})
	assert.Equal(t, []string{"a"}, missing)
	assert.Equal(t, []string{"c", "e"}, extra)

	missing, extra = diff(nil, nil)
	assert.Empty(t, missing)
	assert.Empty(t, extra)
}
