package chess

var promotionKinds = [4]PieceKind{Queen, Rook, Bishop, Knight}

// LegalMoves returns the legal destinations of the piece on sq. It returns
// nil for empty squares, pieces of the side not to move, and while a
// promotion is pending. Calling it does not mutate the position.
func (p *Position) LegalMoves(sq Square) []Square {
	if !sq.OnBoard() || p.pending != noPiece {
		return nil
	}
	idx := p.at(int(sq.File), int(sq.Rank))
	if idx == noPiece || p.pieces[idx].Color != p.turn {
		return nil
	}
	return p.legalMovesFor(idx, nil)
}

// AllLegalMoves lists every legal move of the side to move, with one entry
// per promotion piece.
func (p *Position) AllLegalMoves() []Move {
	if p.pending != noPiece {
		return nil
	}
	var (
		moves []Move
		buf   []Square
	)
	s := p.sides[p.turn]
	for i := s.lo; i < s.hi; i++ {
		if !p.pieces[i].Alive {
			continue
		}
		from := p.pieces[i].Square
		buf = p.legalMovesFor(i, buf[:0])
		for _, to := range buf {
			if to.Kind.IsPromotion() {
				for _, k := range promotionKinds {
					moves = append(moves, Move{From: from, To: to, Promotion: k})
				}
				continue
			}
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

func (p *Position) hasLegalMove() bool {
	var buf [32]Square
	s := p.sides[p.turn]
	for i := s.lo; i < s.hi; i++ {
		if p.pieces[i].Alive && len(p.legalMovesFor(i, buf[:0])) > 0 {
			return true
		}
	}
	return false
}

// legalMovesFor filters the piece's pseudo-legal moves through the current
// check and pin state. Only valid after rebuild ran for the piece's color.
func (p *Position) legalMovesFor(idx int, buf []Square) []Square {
	pc := &p.pieces[idx]
	if !pc.Alive {
		return buf
	}
	if pc.Kind == King {
		return p.kingMoves(idx, buf)
	}
	if p.checks >= 2 {
		return buf
	}

	start := len(buf)
	buf = p.pseudoMoves(idx, buf)
	king := p.kingSquare(pc.Color)
	grid := &p.tiles[pc.Color]
	out := buf[:start]
	for _, t := range buf[start:] {
		if t.Kind == EnPassant {
			if p.enPassantSafe(idx, t) {
				out = append(out, t)
			}
			continue
		}
		if pc.Pinned && !onPinLine(king, pc.pinDir, t) {
			continue
		}
		if p.checks == 1 && grid[t.File][t.Rank]&AllowedInCheck == 0 {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (p *Position) kingMoves(idx int, buf []Square) []Square {
	pc := &p.pieces[idx]
	grid := &p.tiles[pc.Color]
	f, r := int(pc.Square.File), int(pc.Square.Rank)
	for _, d := range kingLines {
		tf, tr := f+int(d.df), r+int(d.dr)
		if !onBoard(tf, tr) || grid[tf][tr]&BlockedForKing != 0 {
			continue
		}
		occ := p.at(tf, tr)
		if occ == noPiece {
			buf = append(buf, Sq(tf, tr))
		} else if p.pieces[occ].Color != pc.Color {
			buf = append(buf, Square{File: int8(tf), Rank: int8(tr), Kind: Capture})
		}
	}
	for _, kingSide := range [2]bool{true, false} {
		if t, ok := p.castleTarget(pc, kingSide); ok {
			buf = append(buf, t)
		}
	}
	return buf
}

// castleTarget checks the castling conditions: king and rook unmoved on
// their home squares, the squares between them empty, and no king transit
// square (start and end included) blocked.
func (p *Position) castleTarget(king *Piece, kingSide bool) (Square, bool) {
	if king.Moved || p.checks > 0 || !king.Square.Equal(homeKing(king.Color)) {
		return Square{}, false
	}
	rank := backRank(king.Color)
	rookSq := homeRook(king.Color, kingSide)
	ri := p.at(int(rookSq.File), rank)
	if ri == noPiece {
		return Square{}, false
	}
	rook := &p.pieces[ri]
	if rook.Kind != Rook || rook.Color != king.Color || rook.Moved {
		return Square{}, false
	}

	lo, hi := int(rookSq.File)+1, 4
	dest := 2
	if kingSide {
		lo, hi = 5, int(rookSq.File)
		dest = 6
	}
	for f := lo; f < hi; f++ {
		if p.at(f, rank) != noPiece {
			return Square{}, false
		}
	}
	step := -1
	if kingSide {
		step = 1
	}
	grid := &p.tiles[king.Color]
	for f := 4; ; f += step {
		if grid[f][rank]&BlockedForKing != 0 {
			return Square{}, false
		}
		if f == dest {
			break
		}
	}
	return Square{File: int8(dest), Rank: int8(rank), Kind: Castle}, true
}

// enPassantSafe plays the capture on the square map and tests whether the
// king is attacked afterwards. Removing two pawns at once can open a line
// that the single-piece pin scan does not see, most often along the rank.
// The same test also covers en passant while in check.
func (p *Position) enPassantSafe(idx int, dest Square) bool {
	pc := &p.pieces[idx]
	from := pc.Square
	capSq := Sq(int(dest.File), int(from.Rank))
	captured := p.board[capSq.File][capSq.Rank]

	p.board[from.File][from.Rank] = noPiece
	p.board[capSq.File][capSq.Rank] = noPiece
	p.board[dest.File][dest.Rank] = int16(idx)

	safe := !p.attacked(p.kingSquare(pc.Color), pc.Color.Other())

	p.board[dest.File][dest.Rank] = noPiece
	p.board[capSq.File][capSq.Rank] = captured
	p.board[from.File][from.Rank] = int16(idx)
	return safe
}

// findMove returns the legal destination matching to for the piece at idx.
func (p *Position) findMove(idx int, to Square) (Square, bool) {
	var buf [32]Square
	for _, t := range p.legalMovesFor(idx, buf[:0]) {
		if t.Equal(to) {
			return t, true
		}
	}
	return Square{}, false
}
