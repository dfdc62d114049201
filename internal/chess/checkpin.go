package chess

// rebuild recomputes the tile grid, check state and pins for the side to
// move from scratch. The opponent's grid is cleared; it is rebuilt when the
// opponent gets the move.
func (p *Position) rebuild() {
	us := p.turn
	p.tiles = [2][8][8]TileState{}
	p.checks = 0
	p.checker = noPiece
	for i := range p.pieces {
		p.pieces[i].Pinned = false
		p.pieces[i].pinDir = direction{}
	}

	them := &p.sides[us.Other()]
	for i := them.lo; i < them.hi; i++ {
		if pc := &p.pieces[i]; pc.Alive && !isSlider(pc.Kind) {
			p.markThreats(i, us)
		}
	}
	for _, list := range them.sliders() {
		for _, i := range list {
			if p.pieces[i].Alive {
				p.markThreats(i, us)
			}
		}
	}
	p.scanKingLines(us)
}

func (p *Position) addCheck(idx int) {
	p.checker = idx
	if p.checks < 2 {
		p.checks++
	}
}

// scanKingLines walks the eight rays out of the king of color us. The first
// occupied square decides the ray: a matching enemy slider gives check, a
// friendly piece is pinned when the next occupied square is a matching
// enemy slider.
func (p *Position) scanKingLines(us Color) {
	grid := &p.tiles[us]
	king := p.kingSquare(us)
	kf, kr := int(king.File), int(king.Rank)

	for _, d := range kingLines {
		diag := d.diagonal()
		shield := noPiece
		for f, r := kf+int(d.df), kr+int(d.dr); onBoard(f, r); f, r = f+int(d.df), r+int(d.dr) {
			occ := p.at(f, r)
			if occ == noPiece {
				continue
			}
			pc := &p.pieces[occ]
			if pc.Color == us {
				if shield != noPiece {
					break
				}
				shield = occ
				continue
			}
			if !slidesAlong(pc.Kind, diag) {
				break
			}
			if shield != noPiece {
				p.pieces[shield].Pinned = true
				p.pieces[shield].pinDir = d
				break
			}
			p.addCheck(occ)
			for af, ar := kf+int(d.df), kr+int(d.dr); ; af, ar = af+int(d.df), ar+int(d.dr) {
				grid[af][ar] |= AllowedInCheck
				if af == f && ar == r {
					break
				}
			}
			if bf, br := kf-int(d.df), kr-int(d.dr); onBoard(bf, br) {
				grid[bf][br] |= BlockedForKing
			}
			break
		}
	}
}

// onPinLine reports whether dest lies on the line from the king through a
// piece pinned along d.
func onPinLine(king Square, d direction, dest Square) bool {
	df := int(dest.File) - int(king.File)
	dr := int(dest.Rank) - int(king.Rank)
	if df*int(d.dr) != dr*int(d.df) {
		return false
	}
	return df*int(d.df)+dr*int(d.dr) > 0
}
