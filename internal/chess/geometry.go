package chess

type direction struct {
	df, dr int8
}

var (
	orthogonals = [4]direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonals   = [4]direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	// kingLines lists the orthogonals first, then the diagonals.
	kingLines = [8]direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

	knightOffsets = [8]direction{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
)

// knightTargets holds the on-board knight destinations from every square,
// indexed [file][rank]. Built once, never written afterwards.
var knightTargets [8][8][]Square

func init() {
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			for _, o := range knightOffsets {
				tf, tr := f+int(o.df), r+int(o.dr)
				if onBoard(tf, tr) {
					knightTargets[f][r] = append(knightTargets[f][r], Sq(tf, tr))
				}
			}
		}
	}
}

func (d direction) diagonal() bool {
	return d.df != 0 && d.dr != 0
}

// slidesAlong reports whether kind k attacks along rays of the given type.
func isSlider(k PieceKind) bool {
	return k == Rook || k == Bishop || k == Queen
}

func slidesAlong(k PieceKind, diagonal bool) bool {
	if k == Queen {
		return true
	}
	if diagonal {
		return k == Bishop
	}
	return k == Rook
}

func sliderDirections(k PieceKind) []direction {
	switch k {
	case Bishop:
		return diagonals[:]
	case Rook:
		return orthogonals[:]
	case Queen:
		return kingLines[:]
	}
	return nil
}

func pawnForward(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

// enPassantRank is the rank a pawn must stand on to capture en passant.
func enPassantRank(c Color) int {
	if c == White {
		return 4
	}
	return 3
}

func lastRank(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

// pseudoMoves appends the pseudo-legal destinations of the piece at idx,
// ignoring pins and checks. King moves are left to kingMoves since they
// depend on the tile grid.
func (p *Position) pseudoMoves(idx int, buf []Square) []Square {
	pc := &p.pieces[idx]
	f, r := int(pc.Square.File), int(pc.Square.Rank)
	switch pc.Kind {
	case Pawn:
		return p.pawnMoves(pc, buf)
	case Knight:
		for _, t := range knightTargets[f][r] {
			occ := p.at(int(t.File), int(t.Rank))
			if occ == noPiece {
				buf = append(buf, t)
			} else if p.pieces[occ].Color != pc.Color {
				t.Kind = Capture
				buf = append(buf, t)
			}
		}
	case Bishop, Rook, Queen:
		for _, d := range sliderDirections(pc.Kind) {
			buf = p.rayMoves(pc.Color, f, r, d, buf)
		}
	}
	return buf
}

// rayMoves walks from (f, r) along d, stopping at the first occupied square
// and including it only when it holds an enemy.
func (p *Position) rayMoves(c Color, f, r int, d direction, buf []Square) []Square {
	for tf, tr := f+int(d.df), r+int(d.dr); onBoard(tf, tr); tf, tr = tf+int(d.df), tr+int(d.dr) {
		occ := p.at(tf, tr)
		if occ == noPiece {
			buf = append(buf, Sq(tf, tr))
			continue
		}
		if p.pieces[occ].Color != c {
			buf = append(buf, Square{File: int8(tf), Rank: int8(tr), Kind: Capture})
		}
		break
	}
	return buf
}

func (p *Position) pawnMoves(pc *Piece, buf []Square) []Square {
	f, r := int(pc.Square.File), int(pc.Square.Rank)
	fwd := pawnForward(pc.Color)
	promo := r+fwd == lastRank(pc.Color)

	if onBoard(f, r+fwd) && p.at(f, r+fwd) == noPiece {
		t := Sq(f, r+fwd)
		if promo {
			t.Kind = Promotion
		}
		buf = append(buf, t)
		if r == pawnStartRank(pc.Color) && p.at(f, r+2*fwd) == noPiece {
			buf = append(buf, Sq(f, r+2*fwd))
		}
	}
	for _, df := range [2]int{-1, 1} {
		tf, tr := f+df, r+fwd
		if !onBoard(tf, tr) {
			continue
		}
		occ := p.at(tf, tr)
		if occ == noPiece || p.pieces[occ].Color == pc.Color {
			continue
		}
		t := Square{File: int8(tf), Rank: int8(tr), Kind: Capture}
		if promo {
			t.Kind = CapturePromotion
		}
		buf = append(buf, t)
	}
	if t, ok := p.enPassantTarget(pc); ok {
		buf = append(buf, t)
	}
	return buf
}

// enPassantTarget returns the en passant destination for pawn pc when the
// previous move was an adjacent two-square advance.
func (p *Position) enPassantTarget(pc *Piece) (Square, bool) {
	r := int(pc.Square.Rank)
	if r != enPassantRank(pc.Color) {
		return Square{}, false
	}
	last := p.history[len(p.history)-1]
	if !p.isDoubleAdvance(last) || p.pieces[last.Piece].Color == pc.Color {
		return Square{}, false
	}
	if int(last.To.Rank) != r {
		return Square{}, false
	}
	df := int(last.To.File) - int(pc.Square.File)
	if df != 1 && df != -1 {
		return Square{}, false
	}
	return Square{File: last.To.File, Rank: int8(r + pawnForward(pc.Color)), Kind: EnPassant}, true
}

func (p *Position) isDoubleAdvance(e HistoryEntry) bool {
	if e.Piece == noPiece || p.pieces[e.Piece].Kind != Pawn {
		return false
	}
	d := int(e.To.Rank) - int(e.From.Rank)
	return d == 2 || d == -2
}

// markThreats flags every tile threatened by the enemy piece at idx as
// blocked for the king of color us. Knights and pawns that hit the king
// register a check here; slider checks come from the king-line scan.
func (p *Position) markThreats(idx int, us Color) {
	pc := &p.pieces[idx]
	grid := &p.tiles[us]
	f, r := int(pc.Square.File), int(pc.Square.Rank)
	king := p.kingSquare(us)

	hit := func(tf, tr int) {
		grid[tf][tr] |= BlockedForKing
		if pc.Kind != King && int(king.File) == tf && int(king.Rank) == tr {
			p.addCheck(idx)
			grid[f][r] |= AllowedInCheck
		}
	}

	switch pc.Kind {
	case Pawn:
		fwd := pawnForward(pc.Color)
		for _, df := range [2]int{-1, 1} {
			if onBoard(f+df, r+fwd) {
				hit(f+df, r+fwd)
			}
		}
	case Knight:
		for _, t := range knightTargets[f][r] {
			hit(int(t.File), int(t.Rank))
		}
	case King:
		for _, d := range kingLines {
			if onBoard(f+int(d.df), r+int(d.dr)) {
				hit(f+int(d.df), r+int(d.dr))
			}
		}
	case Bishop, Rook, Queen:
		for _, d := range sliderDirections(pc.Kind) {
			for tf, tr := f+int(d.df), r+int(d.dr); onBoard(tf, tr); tf, tr = tf+int(d.df), tr+int(d.dr) {
				grid[tf][tr] |= BlockedForKing
				if p.at(tf, tr) != noPiece {
					break
				}
			}
		}
	}
}

// attacked reports whether sq is attacked by any piece of color by, reading
// only the square map. Callers may temporarily edit the map to test
// hypothetical positions.
func (p *Position) attacked(sq Square, by Color) bool {
	f, r := int(sq.File), int(sq.Rank)
	is := func(tf, tr int, kinds ...PieceKind) bool {
		occ := p.at(tf, tr)
		if occ == noPiece || p.pieces[occ].Color != by {
			return false
		}
		for _, k := range kinds {
			if p.pieces[occ].Kind == k {
				return true
			}
		}
		return false
	}

	for _, t := range knightTargets[f][r] {
		if is(int(t.File), int(t.Rank), Knight) {
			return true
		}
	}
	// an attacking pawn stands one rank behind sq from its own point of view
	pr := r - pawnForward(by)
	for _, df := range [2]int{-1, 1} {
		if onBoard(f+df, pr) && is(f+df, pr, Pawn) {
			return true
		}
	}
	for _, d := range kingLines {
		tf, tr := f+int(d.df), r+int(d.dr)
		if onBoard(tf, tr) && is(tf, tr, King) {
			return true
		}
		for ; onBoard(tf, tr); tf, tr = tf+int(d.df), tr+int(d.dr) {
			occ := p.at(tf, tr)
			if occ == noPiece {
				continue
			}
			pc := p.pieces[occ]
			if pc.Color == by && slidesAlong(pc.Kind, d.diagonal()) {
				return true
			}
			break
		}
	}
	return false
}
