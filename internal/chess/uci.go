package chess

import "fmt"

// ParseUCIMove decodes a move such as "e2e4" or "e7e8q". It performs no
// legality check; the destination kind is left as Normal.
func ParseUCIMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%w: %q has length %d", ErrUCI, s, len(s))
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %v", ErrUCI, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %v", ErrUCI, err)
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		m.Promotion = ParsePromotion(s[4:])
		if m.Promotion == NoPieceKind {
			return Move{}, fmt.Errorf("%w: promotion letter %q", ErrUCI, s[4])
		}
	}
	return m, nil
}

// FormatUCIMove encodes a move as origin, destination and optional
// promotion letter.
func FormatUCIMove(m Move) string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoPieceKind {
		s += string(m.Promotion.Letter())
	}
	return s
}

// ParsePromotion maps a UCI promotion letter to a piece kind. Unknown
// letters yield NoPieceKind.
func ParsePromotion(p string) PieceKind {
	switch p {
	case "q", "Q":
		return Queen
	case "r", "R":
		return Rook
	case "b", "B":
		return Bishop
	case "n", "N":
		return Knight
	default:
		return NoPieceKind
	}
}
