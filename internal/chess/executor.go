package chess

import "fmt"

// Execute plays the piece on from to the destination to. A promotion move
// leaves the position awaiting Promote; nothing else may be played until
// then. Illegal requests return ErrIllegalMove without mutating anything.
func (p *Position) Execute(from, to Square) (MoveKind, error) {
	idx, dest, err := p.resolve(from, to)
	if err != nil {
		return Normal, err
	}
	p.execute(idx, dest)
	return dest.Kind, nil
}

// resolve finds the legal move of the side to move from -> to.
func (p *Position) resolve(from, to Square) (int, Square, error) {
	if p.pending != noPiece {
		return noPiece, Square{}, violation(ErrAwaitingPromotion)
	}
	if p.Ended() {
		return noPiece, Square{}, ErrGameOver
	}
	if !from.OnBoard() || !to.OnBoard() {
		return noPiece, Square{}, ErrIllegalMove
	}
	idx := p.at(int(from.File), int(from.Rank))
	if idx == noPiece || p.pieces[idx].Color != p.turn {
		return noPiece, Square{}, ErrIllegalMove
	}
	dest, ok := p.findMove(idx, to)
	if !ok {
		return noPiece, Square{}, ErrIllegalMove
	}
	return idx, dest, nil
}

// Promote supplies the replacement piece for a pending promotion and
// finishes the turn.
func (p *Position) Promote(kind PieceKind) error {
	if p.pending == noPiece {
		return violation(ErrNoPendingPromotion)
	}
	if !validPromotion(kind) {
		return violation(fmt.Errorf("%w: %s", ErrInvalidPromotion, kind))
	}
	p.promote(p.pending, kind)
	p.pending = noPiece
	p.finishTurn()
	return nil
}

// promote turns the pawn at idx into kind and records it on the last
// history entry.
func (p *Position) promote(idx int, kind PieceKind) {
	pc := &p.pieces[idx]
	pc.Kind = kind
	p.sides[pc.Color].addSlider(kind, idx)
	p.history[len(p.history)-1].Promoted = kind
}

func validPromotion(k PieceKind) bool {
	return k == Knight || k == Bishop || k == Rook || k == Queen
}

// Apply plays a complete move, promotion included, in one step. The
// promotion piece must be set exactly when the move promotes.
func (p *Position) Apply(m Move) error {
	idx, dest, err := p.resolve(m.From, m.To)
	if err != nil {
		return err
	}
	if dest.Kind.IsPromotion() != (m.Promotion != NoPieceKind) {
		return violation(ErrPromotionMismatch)
	}
	if dest.Kind.IsPromotion() && !validPromotion(m.Promotion) {
		return violation(fmt.Errorf("%w: %s", ErrInvalidPromotion, m.Promotion))
	}
	p.execute(idx, dest)
	if dest.Kind.IsPromotion() {
		return p.Promote(m.Promotion)
	}
	return nil
}

// applyLegal plays a move already known to be legal; used by perft.
func (p *Position) applyLegal(m Move) {
	idx := p.at(int(m.From.File), int(m.From.Rank))
	p.execute(idx, m.To)
	if m.To.Kind.IsPromotion() {
		p.promote(idx, m.Promotion)
		p.pending = noPiece
		p.finishTurn()
	}
}

func (p *Position) execute(idx int, dest Square) {
	pc := &p.pieces[idx]
	from := pc.Square
	entry := HistoryEntry{
		From:         from,
		To:           dest,
		Piece:        idx,
		Captured:     noPiece,
		PrevHalfMove: p.halfMove,
		FirstMove:    !pc.Moved,
	}

	switch dest.Kind {
	case Capture, CapturePromotion:
		entry.Captured = p.at(int(dest.File), int(dest.Rank))
	case EnPassant:
		entry.Captured = p.at(int(dest.File), int(from.Rank))
	case Castle:
		rank := int(from.Rank)
		rf, tf := 7, 5
		if dest.File == 2 {
			rf, tf = 0, 3
		}
		ri := p.at(rf, rank)
		p.place(ri, Sq(tf, rank))
		p.pieces[ri].Moved = true
	}
	if entry.Captured != noPiece {
		p.remove(entry.Captured)
	}

	p.place(idx, dest)
	pc.Moved = true
	if pc.Kind == Pawn || entry.Captured != noPiece {
		p.halfMove = 0
	} else {
		p.halfMove++
	}
	p.history = append(p.history, entry)

	if dest.Kind.IsPromotion() {
		p.pending = idx
		return
	}
	p.finishTurn()
}

// finishTurn hands the move to the other side and runs the post-move
// pipeline.
func (p *Position) finishTurn() {
	if p.turn == Black {
		p.fullMove++
	}
	p.turn = p.turn.Other()
	p.rebuild()
	p.repetition[p.positionKey()]++
	p.evaluateTerminal()
}

// place moves piece idx to sq on the square map.
func (p *Position) place(idx int, sq Square) {
	pc := &p.pieces[idx]
	if p.at(int(pc.Square.File), int(pc.Square.Rank)) == idx {
		p.board[pc.Square.File][pc.Square.Rank] = noPiece
	}
	pc.Square = sq.Coords()
	p.board[sq.File][sq.Rank] = int16(idx)
}

func (p *Position) remove(idx int) {
	pc := &p.pieces[idx]
	pc.Alive = false
	p.board[pc.Square.File][pc.Square.Rank] = noPiece
	p.sides[pc.Color].live--
}

func (p *Position) revive(idx int) {
	pc := &p.pieces[idx]
	pc.Alive = true
	p.board[pc.Square.File][pc.Square.Rank] = int16(idx)
	p.sides[pc.Color].live++
}

// Undo retracts the last move and rebuilds the tile state for the side that
// regains the move.
func (p *Position) Undo() error {
	if p.pending != noPiece {
		return violation(ErrAwaitingPromotion)
	}
	if len(p.history) <= 1 {
		return ErrNothingToUndo
	}
	key := p.positionKey()
	if p.repetition[key] <= 1 {
		delete(p.repetition, key)
	} else {
		p.repetition[key]--
	}
	p.turn = p.turn.Other()
	if p.turn == Black {
		p.fullMove--
	}
	p.retract()
	p.status = NotEnded
	p.winner = White
	p.rebuild()
	p.evaluateTerminal()
	return nil
}

// retract reverses the structural effects of the last history entry and
// pops it. Counters other than the half-move clock are left to the caller.
func (p *Position) retract() {
	e := p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]

	pc := &p.pieces[e.Piece]
	p.place(e.Piece, e.From)
	pc.Moved = !e.FirstMove
	if e.To.Kind.IsPromotion() {
		p.sides[pc.Color].dropSlider(pc.Kind, e.Piece)
		pc.Kind = Pawn
	}
	if e.To.Kind == Castle {
		rank := int(e.From.Rank)
		rf, tf := 7, 5
		if e.To.File == 2 {
			rf, tf = 0, 3
		}
		ri := p.at(tf, rank)
		p.place(ri, Sq(rf, rank))
		p.pieces[ri].Moved = false
	}
	if e.Captured != noPiece {
		p.revive(e.Captured)
	}
	p.halfMove = e.PrevHalfMove
	p.pending = noPiece
}
