package chess

import (
	"fmt"
	"time"
)

// Engine is the interactive surface over a Position: piece selection,
// drop, promotion, undo, reset and the clock.
type Engine struct {
	pos      *Position
	clock    *Clock
	flagged  time.Duration // time left before the flag fell
	selected int
	targets  []Square
}

func NewEngine() *Engine {
	return &Engine{
		pos:      NewPosition(),
		clock:    &Clock{},
		selected: noPiece,
	}
}

func NewEngineFromFEN(fen string) (*Engine, error) {
	pos, err := ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return &Engine{
		pos:      pos,
		clock:    &Clock{},
		selected: noPiece,
	}, nil
}

// Position exposes the underlying position for read-only queries.
func (e *Engine) Position() *Position { return e.pos }

// Clock exposes the game clock.
func (e *Engine) Clock() *Clock { return e.clock }

// Select picks the piece on sq for a following Drop. Empty squares, enemy
// pieces, finished games and off-board squares are rejected.
func (e *Engine) Select(sq Square) bool {
	if e.pos.pending != noPiece {
		violation(ErrAwaitingPromotion)
		return false
	}
	e.clearSelection()
	if e.pos.Ended() || !sq.OnBoard() {
		return false
	}
	idx := e.pos.at(int(sq.File), int(sq.Rank))
	if idx == noPiece || e.pos.pieces[idx].Color != e.pos.turn {
		return false
	}
	e.selected = idx
	e.targets = e.pos.legalMovesFor(idx, nil)
	return true
}

// Selected returns the selected piece and its legal destinations.
func (e *Engine) Selected() (Piece, []Square, bool) {
	if e.selected == noPiece {
		return Piece{}, nil, false
	}
	return e.pos.pieces[e.selected], append([]Square(nil), e.targets...), true
}

func (e *Engine) clearSelection() {
	e.selected = noPiece
	e.targets = nil
}

// Drop moves the selected piece to sq. It reports whether the move was
// accepted and its kind. A promotion is accepted but waits for Promote.
func (e *Engine) Drop(sq Square) (bool, MoveKind) {
	if e.pos.pending != noPiece {
		violation(ErrAwaitingPromotion)
		return false, Normal
	}
	if e.selected == noPiece {
		return false, Normal
	}
	from := e.pos.pieces[e.selected].Square
	mover := e.pos.turn
	kind, err := e.pos.Execute(from, sq)
	if err != nil {
		return false, Normal
	}
	e.clearSelection()
	if !kind.IsPromotion() {
		e.clock.Credit(mover)
	}
	return true, kind
}

// Promote supplies the replacement piece for a pending promotion.
func (e *Engine) Promote(kind PieceKind) error {
	mover := e.pos.turn
	if err := e.pos.Promote(kind); err != nil {
		return err
	}
	e.clock.Credit(mover)
	return nil
}

// Undo takes back the last move. It returns false when there is nothing to
// undo or a promotion is pending. Undoing a loss on time hands the loser
// back the time it had before the flag fell.
func (e *Engine) Undo() bool {
	e.clearSelection()
	timedOut, loser := e.pos.status == Timeout, e.pos.turn
	if e.pos.Undo() != nil {
		return false
	}
	if timedOut {
		e.clock.restore(loser, e.flagged)
	}
	return true
}

// Reset returns to the standard starting position.
func (e *Engine) Reset() {
	e.pos = NewPosition()
	e.clearSelection()
	e.clock.Rearm()
}

// LoadFEN replaces the position. On error the engine is unchanged.
func (e *Engine) LoadFEN(fen string) error {
	pos, err := ParseFEN(fen)
	if err != nil {
		return err
	}
	e.pos = pos
	e.clearSelection()
	e.clock.Rearm()
	return nil
}

// ResetLayout replaces the position with a literal layout.
func (e *Engine) ResetLayout(layout [8]string, turn Color) error {
	pos, err := NewPositionFromLayout(layout, turn)
	if err != nil {
		return err
	}
	e.pos = pos
	e.clearSelection()
	e.clock.Rearm()
	return nil
}

// SetClock sets both sides' remaining time in milliseconds.
func (e *Engine) SetClock(whiteMs, blackMs int64) {
	e.clock.Set(time.Duration(whiteMs)*time.Millisecond, time.Duration(blackMs)*time.Millisecond)
}

// AdvanceClock charges elapsed milliseconds to the side to move. A fallen
// flag ends the game.
func (e *Engine) AdvanceClock(elapsedMs int64) {
	if e.pos.Ended() {
		return
	}
	left := e.clock.Remaining(e.pos.turn)
	if e.clock.Advance(e.pos.turn, time.Duration(elapsedMs)*time.Millisecond) {
		e.flagged = left
		e.pos.flagFall(e.pos.turn)
		e.clearSelection()
	}
}

// MakeUCIMove selects the origin, validates the destination against the
// legal moves and plays it, promotion letter included.
func (e *Engine) MakeUCIMove(uci string) (*MoveResult, error) {
	m, err := ParseUCIMove(uci)
	if err != nil {
		return nil, err
	}
	return e.play(m)
}

// MakeMove plays from -> to given as algebraic squares.
func (e *Engine) MakeMove(from, to string, promotion PieceKind) (*MoveResult, error) {
	fromSquare, err := ParseSquare(from)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUCI, err)
	}
	toSquare, err := ParseSquare(to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUCI, err)
	}
	return e.play(Move{From: fromSquare, To: toSquare, Promotion: promotion})
}

func (e *Engine) play(m Move) (*MoveResult, error) {
	if e.pos.Ended() {
		return nil, ErrGameOver
	}
	if e.pos.pending != noPiece {
		return nil, violation(ErrAwaitingPromotion)
	}
	if !e.Select(m.From) {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	var dest Square
	found := false
	for _, t := range e.targets {
		if t.Equal(m.To) {
			dest, found = t, true
			break
		}
	}
	if !found {
		e.clearSelection()
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	m.To = dest
	if dest.Kind.IsPromotion() != (m.Promotion != NoPieceKind) {
		e.clearSelection()
		return nil, violation(ErrPromotionMismatch)
	}

	san := e.pos.sanBody(m)
	mover := e.pos.turn
	if err := e.pos.Apply(m); err != nil {
		e.clearSelection()
		return nil, err
	}
	e.clearSelection()
	e.clock.Credit(mover)

	pos := e.pos
	result := &MoveResult{
		From:      m.From.String(),
		To:        m.To.String(),
		UCI:       m.String(),
		SAN:       san + pos.sanSuffix(),
		Kind:      dest.Kind.String(),
		FEN:       pos.FEN(),
		Check:     pos.InCheck(),
		Checkmate: pos.status == Checkmate,
		Draw:      pos.Status() == StatusDraw,
		GameOver:  pos.Ended(),
		Result:    pos.Result(),
	}
	return result, nil
}

func (e *Engine) GetFEN() string {
	return e.pos.FEN()
}

func (e *Engine) GetStatus() GameStatus {
	return e.pos.Status()
}

func (e *Engine) GetActiveColor() string {
	return e.pos.turn.String()
}

// IsDrawn reports whether the game ended in a draw.
func (e *Engine) IsDrawn() bool {
	return e.pos.Status() == StatusDraw
}

// GetDrawReason returns the draw reason, empty unless drawn.
func (e *Engine) GetDrawReason() string {
	if !e.IsDrawn() {
		return ""
	}
	return e.pos.status.String()
}

func (e *Engine) GetMaterialCount() MaterialCount {
	return e.pos.GetMaterialCount()
}

func (e *Engine) GetMaterialBalance() int {
	return e.pos.GetMaterialBalance()
}

func (e *Engine) ValidateFEN(fen string) error {
	_, err := ParseFEN(fen)
	return err
}
