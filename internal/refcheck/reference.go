// Package refcheck cross-checks the move generator against independent
// chess libraries.
package refcheck

import (
	"fmt"
	"sort"

	"github.com/dylhunn/dragontoothmg"
	notnil "github.com/notnil/chess"
)

// Reference is an independent move generator addressed by FEN.
type Reference interface {
	Name() string
	// LegalMoves returns the legal moves of the FEN position in UCI form.
	LegalMoves(fen string) ([]string, error)
	Perft(fen string, depth int) (uint64, error)
}

// Notnil wraps github.com/notnil/chess.
type Notnil struct{}

func (Notnil) Name() string { return "notnil" }

func (Notnil) position(fen string) (*notnil.Position, error) {
	opt, err := notnil.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("notnil: %w", err)
	}
	return notnil.NewGame(opt).Position(), nil
}

func (n Notnil) LegalMoves(fen string) ([]string, error) {
	pos, err := n.position(fen)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range pos.ValidMoves() {
		out = append(out, notnil.UCINotation{}.Encode(pos, m))
	}
	sort.Strings(out)
	return out, nil
}

func (n Notnil) Perft(fen string, depth int) (uint64, error) {
	pos, err := n.position(fen)
	if err != nil {
		return 0, err
	}
	return notnilPerft(pos, depth), nil
}

func notnilPerft(pos *notnil.Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := pos.ValidMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		nodes += notnilPerft(pos.Update(m), depth-1)
	}
	return nodes
}

// Dragontooth wraps github.com/dylhunn/dragontoothmg, a bitboard generator.
type Dragontooth struct{}

func (Dragontooth) Name() string { return "dragontoothmg" }

func (Dragontooth) LegalMoves(fen string) ([]string, error) {
	board := dragontoothmg.ParseFen(fen)
	moves := board.GenerateLegalMoves()
	out := make([]string, 0, len(moves))
	for i := range moves {
		out = append(out, moves[i].String())
	}
	sort.Strings(out)
	return out, nil
}

func (Dragontooth) Perft(fen string, depth int) (uint64, error) {
	board := dragontoothmg.ParseFen(fen)
	return dragontoothPerft(&board, depth), nil
}

func dragontoothPerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		unapply := b.Apply(m)
		nodes += dragontoothPerft(b, depth-1)
		unapply()
	}
	return nodes
}

// Named returns the reference called name.
func Named(name string) (Reference, error) {
	switch name {
	case "notnil":
		return Notnil{}, nil
	case "dragontoothmg", "dragontooth":
		return Dragontooth{}, nil
	}
	return nil, fmt.Errorf("unknown reference %q", name)
}

// All returns every available reference.
func All() []Reference {
	return []Reference{Notnil{}, Dragontooth{}}
}
