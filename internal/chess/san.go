package chess

import "strings"

// sanBody renders m in standard algebraic notation without the check
// suffix. It must be called before the move is played.
func (p *Position) sanBody(m Move) string {
	idx := p.at(int(m.From.File), int(m.From.Rank))
	if idx == noPiece {
		return ""
	}
	pc := p.pieces[idx]
	if m.To.Kind == Castle {
		if m.To.File == 6 {
			return "O-O"
		}
		return "O-O-O"
	}

	var b strings.Builder
	if pc.Kind == Pawn {
		if m.To.Kind.IsCapture() {
			b.WriteByte('a' + byte(m.From.File))
			b.WriteByte('x')
		}
		b.WriteString(m.To.String())
		if m.Promotion != NoPieceKind {
			b.WriteByte('=')
			b.WriteByte(m.Promotion.Letter() - ('a' - 'A'))
		}
		return b.String()
	}

	b.WriteByte(pc.Kind.Letter() - ('a' - 'A'))
	b.WriteString(p.disambiguation(idx, m.To))
	if m.To.Kind.IsCapture() {
		b.WriteByte('x')
	}
	b.WriteString(m.To.String())
	return b.String()
}

// disambiguation returns the file, rank or both needed to tell piece idx
// apart from another piece of the same kind that can reach to.
func (p *Position) disambiguation(idx int, to Square) string {
	pc := p.pieces[idx]
	var sameFile, sameRank, clash bool
	s := p.sides[pc.Color]
	var buf [32]Square
	for i := s.lo; i < s.hi; i++ {
		other := p.pieces[i]
		if i == idx || !other.Alive || other.Kind != pc.Kind {
			continue
		}
		reach := false
		for _, t := range p.legalMovesFor(i, buf[:0]) {
			if t.Equal(to) {
				reach = true
				break
			}
		}
		if !reach {
			continue
		}
		clash = true
		if other.Square.File == pc.Square.File {
			sameFile = true
		}
		if other.Square.Rank == pc.Square.Rank {
			sameRank = true
		}
	}
	switch {
	case !clash:
		return ""
	case !sameFile:
		return string('a' + rune(pc.Square.File))
	case !sameRank:
		return string('1' + rune(pc.Square.Rank))
	default:
		return pc.Square.String()
	}
}

// sanSuffix returns "#" or "+" for the position after a move.
func (p *Position) sanSuffix() string {
	switch {
	case p.status == Checkmate:
		return "#"
	case p.checks > 0:
		return "+"
	}
	return ""
}
