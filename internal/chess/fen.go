package chess

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds a position from the six FEN fields. Any failure wraps
// ErrFEN (or ErrSetup for placements that cannot be a legal position).
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return nil, fmt.Errorf("%w: expected 6 fields, got %d", ErrFEN, len(fields))
	}

	placed, err := parsePlacement(fields[0])
	if err != nil {
		return nil, err
	}

	var turn Color
	switch fields[1] {
	case "w":
		turn = White
	case "b":
		turn = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrFEN, fields[1])
	}

	if err := applyCastling(placed, fields[2]); err != nil {
		return nil, err
	}

	var lastDouble *Square
	if fields[3] != "-" {
		target, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%w: en passant target: %v", ErrFEN, err)
		}
		// the target lies behind a pawn of the side that just moved
		wantRank := 5
		if turn == Black {
			wantRank = 2
		}
		if int(target.Rank) != wantRank {
			return nil, fmt.Errorf("%w: en passant target %s on wrong rank", ErrFEN, target)
		}
		pawnSq := Sq(int(target.File), int(target.Rank)-pawnForward(turn))
		lastDouble = &pawnSq
		for _, pc := range placed {
			if pc.Square.Equal(target) || pc.Square.Equal(Sq(int(target.File), int(target.Rank)+pawnForward(turn))) {
				return nil, fmt.Errorf("%w: en passant squares around %s are occupied", ErrFEN, target)
			}
		}
	}

	halfMove, err := strconv.Atoi(fields[4])
	if err != nil || halfMove < 0 {
		return nil, fmt.Errorf("%w: half-move clock %q", ErrFEN, fields[4])
	}
	fullMove, err := strconv.Atoi(fields[5])
	if err != nil || fullMove < 1 {
		return nil, fmt.Errorf("%w: full-move number %q", ErrFEN, fields[5])
	}

	p, err := newPosition(placed, turn, halfMove, fullMove, lastDouble)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFEN, err)
	}
	return p, nil
}

func parsePlacement(field string) ([]Piece, error) {
	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("%w: expected 8 ranks, got %d", ErrFEN, len(ranks))
	}
	var placed []Piece
	for row, line := range ranks {
		rank := 7 - row
		file := 0
		for i := 0; i < len(line); i++ {
			c := line[i]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			pc, ok := pieceFromLetter(c)
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q", ErrFEN, c)
			}
			if file > 7 {
				return nil, fmt.Errorf("%w: rank %d overflows", ErrFEN, rank+1)
			}
			pc.Square = Sq(file, rank)
			switch pc.Kind {
			case King, Rook:
				pc.Moved = true
			case Pawn:
				pc.Moved = rank != pawnStartRank(pc.Color)
			}
			placed = append(placed, pc)
			file++
		}
		if file != 8 {
			return nil, fmt.Errorf("%w: rank %d covers %d files", ErrFEN, rank+1, file)
		}
	}
	return placed, nil
}

// applyCastling marks the king and rook named by each castling letter as
// unmoved. Both must stand on their home squares.
func applyCastling(placed []Piece, field string) error {
	if field == "-" {
		return nil
	}
	seen := make(map[rune]bool, 4)
	for _, c := range field {
		if seen[c] {
			return fmt.Errorf("%w: repeated castling right %q", ErrFEN, c)
		}
		seen[c] = true

		var color Color
		var kingSide bool
		switch c {
		case 'K':
			color, kingSide = White, true
		case 'Q':
			color, kingSide = White, false
		case 'k':
			color, kingSide = Black, true
		case 'q':
			color, kingSide = Black, false
		default:
			return fmt.Errorf("%w: castling right %q", ErrFEN, c)
		}

		king := findPlaced(placed, color, King, homeKing(color))
		rook := findPlaced(placed, color, Rook, homeRook(color, kingSide))
		if king < 0 || rook < 0 {
			return fmt.Errorf("%w: castling right %q without king and rook on home squares", ErrFEN, c)
		}
		placed[king].Moved = false
		placed[rook].Moved = false
	}
	return nil
}

func findPlaced(placed []Piece, c Color, k PieceKind, sq Square) int {
	for i, pc := range placed {
		if pc.Color == c && pc.Kind == k && pc.Square.Equal(sq) {
			return i
		}
	}
	return -1
}

// FEN serializes the position. The en passant field is set only when the
// last move was a two-square pawn advance.
func (p *Position) FEN() string {
	var b strings.Builder
	b.Grow(90)
	writePlacement(&b, p)
	if p.turn == White {
		b.WriteString(" w ")
	} else {
		b.WriteString(" b ")
	}
	b.WriteString(p.castlingField())
	b.WriteByte(' ')
	b.WriteString(p.enPassantField())
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(p.halfMove))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(p.fullMove))
	return b.String()
}

func writePlacement(b *strings.Builder, p *Position) {
	for r := 7; r >= 0; r-- {
		empty := 0
		for f := 0; f < 8; f++ {
			idx := p.at(f, r)
			if idx == noPiece {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteByte('0' + byte(empty))
				empty = 0
			}
			b.WriteByte(pieceLetter(p.pieces[idx]))
		}
		if empty > 0 {
			b.WriteByte('0' + byte(empty))
		}
		if r > 0 {
			b.WriteByte('/')
		}
	}
}

func (p *Position) castlingField() string {
	var out []byte
	for _, c := range [2]Color{White, Black} {
		for _, kingSide := range [2]bool{true, false} {
			if p.canStillCastle(c, kingSide) {
				l := byte('q')
				if kingSide {
					l = 'k'
				}
				if c == White {
					l -= 'a' - 'A'
				}
				out = append(out, l)
			}
		}
	}
	if len(out) == 0 {
		return "-"
	}
	return string(out)
}

// canStillCastle reports the castling right, not whether castling is
// playable right now.
func (p *Position) canStillCastle(c Color, kingSide bool) bool {
	king := &p.pieces[p.sides[c].king]
	if king.Moved || !king.Square.Equal(homeKing(c)) {
		return false
	}
	sq := homeRook(c, kingSide)
	idx := p.at(int(sq.File), int(sq.Rank))
	if idx == noPiece {
		return false
	}
	rook := &p.pieces[idx]
	return rook.Kind == Rook && rook.Color == c && !rook.Moved
}

func (p *Position) enPassantField() string {
	last := p.history[len(p.history)-1]
	if !p.isDoubleAdvance(last) {
		return "-"
	}
	return Sq(int(last.To.File), (int(last.From.Rank)+int(last.To.Rank))/2).String()
}
