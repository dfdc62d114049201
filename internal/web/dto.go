package web

import (
	"strings"

	"github.com/justinabrahms/chesscore/internal/chess"
)

// BoardView is the full observable state of one game.
type BoardView struct {
	GameID   string              `json:"game_id"`
	FEN      string              `json:"fen"`
	Board    []string            `json:"board"` // rank 8 first, '.' for empty
	Pieces   []PieceView         `json:"pieces"`
	Turn     string              `json:"turn"`
	Status   chess.GameStatus    `json:"status"`
	Reason   string              `json:"reason,omitempty"`
	Result   string              `json:"result,omitempty"`
	InCheck  bool                `json:"in_check"`
	Checker  string              `json:"checker,omitempty"`
	Pending  string              `json:"pending_promotion,omitempty"`
	Selected string              `json:"selected,omitempty"`
	Targets  []TargetView        `json:"targets,omitempty"`
	HalfMove int                 `json:"half_move"`
	FullMove int                 `json:"full_move"`
	History  []MoveView          `json:"history"`
	Material chess.MaterialCount `json:"material"`
	Clock    *ClockView          `json:"clock,omitempty"`
}

type PieceView struct {
	Square string `json:"square"`
	Color  string `json:"color"`
	Kind   string `json:"kind"`
	Moved  bool   `json:"moved"`
	Pinned bool   `json:"pinned,omitempty"`
}

type TargetView struct {
	To   string `json:"to"`
	Kind string `json:"kind"`
}

type MoveView struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Kind     string `json:"kind"`
	Piece    string `json:"piece"`
	Captured string `json:"captured,omitempty"`
	Promoted string `json:"promoted,omitempty"`
}

type ClockView struct {
	WhiteMs int64  `json:"white_ms"`
	BlackMs int64  `json:"black_ms"`
	White   string `json:"white"`
	Black   string `json:"black"`
}

func targetViews(squares []chess.Square) []TargetView {
	out := make([]TargetView, len(squares))
	for i, s := range squares {
		out[i] = TargetView{To: s.String(), Kind: s.Kind.String()}
	}
	return out
}

func newBoardView(id string, e *chess.Engine) BoardView {
	p := e.Position()
	v := BoardView{
		GameID:   id,
		FEN:      p.FEN(),
		Board:    strings.Split(strings.TrimSuffix(p.String(), "\n"), "\n"),
		Turn:     p.SideToMove().String(),
		Status:   p.Status(),
		Result:   p.Result(),
		InCheck:  p.InCheck(),
		HalfMove: p.HalfMoveClock(),
		FullMove: p.FullMoveNumber(),
		History:  []MoveView{},
		Material: p.GetMaterialCount(),
	}
	if p.Ended() {
		v.Reason = p.Terminal().String()
	}
	if c, ok := p.Checker(); ok {
		v.Checker = c.Square.String()
	}
	if pawn, ok := p.PendingPromotion(); ok {
		v.Pending = pawn.Square.String()
	}
	if pc, targets, ok := e.Selected(); ok {
		v.Selected = pc.Square.String()
		v.Targets = targetViews(targets)
	}

	arena := p.Pieces()
	for _, pc := range arena {
		if !pc.Alive {
			continue
		}
		v.Pieces = append(v.Pieces, PieceView{
			Square: pc.Square.String(),
			Color:  pc.Color.String(),
			Kind:   pc.Kind.String(),
			Moved:  pc.Moved,
			Pinned: pc.Pinned,
		})
	}
	history := p.History()
	// a promoted piece was a pawn up to and including its promotion
	promotedAt := make(map[int]int)
	for i, h := range history {
		if h.To.Kind.IsPromotion() {
			promotedAt[h.Piece] = i
		}
	}
	for i, h := range history {
		mv := MoveView{
			From:  h.From.String(),
			To:    h.To.String(),
			Kind:  h.To.Kind.String(),
			Piece: arena[h.Piece].Kind.String(),
		}
		if at, ok := promotedAt[h.Piece]; ok && i <= at {
			mv.Piece = chess.Pawn.String()
		}
		if h.Promoted != chess.NoPieceKind {
			mv.Promoted = h.Promoted.String()
		}
		if h.Captured >= 0 {
			mv.Captured = arena[h.Captured].Kind.String()
		}
		v.History = append(v.History, mv)
	}

	if clock := e.Clock(); clock.Enabled() {
		white, black := clock.Remaining(chess.White), clock.Remaining(chess.Black)
		v.Clock = &ClockView{
			WhiteMs: white.Milliseconds(),
			BlackMs: black.Milliseconds(),
			White:   chess.FormatTimeRemaining(white),
			Black:   chess.FormatTimeRemaining(black),
		}
	}
	return v
}
