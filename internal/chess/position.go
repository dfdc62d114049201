package chess

import (
	"fmt"
	"strings"
)

// StandardLayout is the starting position, rank 8 first, '.' for empty.
var StandardLayout = [8]string{
	"rnbqkbnr",
	"pppppppp",
	"........",
	"........",
	"........",
	"........",
	"PPPPPPPP",
	"RNBQKBNR",
}

const noPiece = -1

// side caches per-color data about the piece arena.
type side struct {
	king int
	// arena range [lo, hi) holding this color's pieces
	lo, hi int
	live   int
	// arena indices of the color's rooks, bishops and queens, captured ones
	// included; promotion appends, undoing it removes
	rooks, bishops, queens []int
}

func (s *side) sliderList(k PieceKind) *[]int {
	switch k {
	case Rook:
		return &s.rooks
	case Bishop:
		return &s.bishops
	case Queen:
		return &s.queens
	}
	return nil
}

func (s *side) addSlider(k PieceKind, idx int) {
	if list := s.sliderList(k); list != nil {
		*list = append(*list, idx)
	}
}

func (s *side) dropSlider(k PieceKind, idx int) {
	list := s.sliderList(k)
	if list == nil {
		return
	}
	for i := len(*list) - 1; i >= 0; i-- {
		if (*list)[i] == idx {
			*list = append((*list)[:i], (*list)[i+1:]...)
			break
		}
	}
	if len(*list) == 0 {
		*list = nil
	}
}

// sliders returns every slider index of the color.
func (s *side) sliders() [3][]int {
	return [3][]int{s.rooks, s.bishops, s.queens}
}

func (s side) clone() side {
	s.rooks = append([]int(nil), s.rooks...)
	s.bishops = append([]int(nil), s.bishops...)
	s.queens = append([]int(nil), s.queens...)
	return s
}

// Position is a mutable chess position. It owns every piece by arena
// index; captured pieces stay in the arena with Alive unset.
//
// A Position is not safe for concurrent use.
type Position struct {
	pieces []Piece
	board  [8][8]int16
	tiles  [2][8][8]TileState
	sides  [2]side

	turn     Color
	halfMove int
	fullMove int

	// arena index of a pawn waiting for its replacement piece, or noPiece
	pending int
	checker int
	checks  int

	status TerminalReason
	winner Color

	history    []HistoryEntry
	repetition map[string]int
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	p, err := NewPositionFromLayout(StandardLayout, White)
	if err != nil {
		panic(err)
	}
	return p
}

// NewPositionFromLayout builds a position from a literal board, rank 8 first.
// Kings and rooks standing on their home squares count as unmoved.
func NewPositionFromLayout(layout [8]string, turn Color) (*Position, error) {
	var placed []Piece
	for row, line := range layout {
		if len(line) != 8 {
			return nil, fmt.Errorf("%w: rank %d has %d squares", ErrSetup, 8-row, len(line))
		}
		rank := 7 - row
		for file := 0; file < 8; file++ {
			c := line[file]
			if c == '.' || c == ' ' {
				continue
			}
			pc, ok := pieceFromLetter(c)
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q", ErrSetup, c)
			}
			pc.Square = Sq(file, rank)
			placed = append(placed, pc)
		}
	}
	for i := range placed {
		pc := &placed[i]
		switch pc.Kind {
		case King:
			pc.Moved = !pc.Square.Equal(homeKing(pc.Color))
		case Rook:
			pc.Moved = !pc.Square.Equal(homeRook(pc.Color, true)) && !pc.Square.Equal(homeRook(pc.Color, false))
		case Pawn:
			pc.Moved = int(pc.Square.Rank) != pawnStartRank(pc.Color)
		}
	}
	return newPosition(placed, turn, 0, 1, nil)
}

func pieceFromLetter(c byte) (Piece, bool) {
	color := White
	if c >= 'a' && c <= 'z' {
		color = Black
		c -= 'a' - 'A'
	}
	var k PieceKind
	switch c {
	case 'P':
		k = Pawn
	case 'N':
		k = Knight
	case 'B':
		k = Bishop
	case 'R':
		k = Rook
	case 'Q':
		k = Queen
	case 'K':
		k = King
	default:
		return Piece{}, false
	}
	return Piece{Color: color, Kind: k, Alive: true}, true
}

func pieceLetter(pc Piece) byte {
	l := pc.Kind.Letter()
	if pc.Color == White {
		l -= 'a' - 'A'
	}
	return l
}

func homeKing(c Color) Square {
	return Sq(4, backRank(c))
}

func homeRook(c Color, kingSide bool) Square {
	if kingSide {
		return Sq(7, backRank(c))
	}
	return Sq(0, backRank(c))
}

func backRank(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

func pawnStartRank(c Color) int {
	if c == White {
		return 1
	}
	return 6
}

// newPosition assembles and validates a position. lastDouble, when set, is
// the destination of a two-square pawn advance that preceded the position.
func newPosition(placed []Piece, turn Color, halfMove, fullMove int, lastDouble *Square) (*Position, error) {
	p := &Position{
		turn:       turn,
		halfMove:   halfMove,
		fullMove:   fullMove,
		pending:    noPiece,
		checker:    noPiece,
		repetition: make(map[string]int),
	}
	for f := range p.board {
		for r := range p.board[f] {
			p.board[f][r] = noPiece
		}
	}

	p.pieces = make([]Piece, 0, len(placed))
	for _, color := range [2]Color{White, Black} {
		s := side{king: noPiece, lo: len(p.pieces)}
		for _, pc := range placed {
			if pc.Color != color {
				continue
			}
			if pc.Kind == Pawn && (pc.Square.Rank == 0 || pc.Square.Rank == 7) {
				return nil, fmt.Errorf("%w: %s pawn on %s", ErrSetup, color, pc.Square)
			}
			idx := len(p.pieces)
			if p.board[pc.Square.File][pc.Square.Rank] != noPiece {
				return nil, fmt.Errorf("%w: two pieces on %s", ErrSetup, pc.Square)
			}
			if pc.Kind == King {
				if s.king != noPiece {
					return nil, fmt.Errorf("%w: %s has more than one king", ErrSetup, color)
				}
				s.king = idx
			}
			s.addSlider(pc.Kind, idx)
			pc.Square = pc.Square.Coords()
			pc.Alive = true
			p.pieces = append(p.pieces, pc)
			p.board[pc.Square.File][pc.Square.Rank] = int16(idx)
		}
		if s.king == noPiece {
			return nil, fmt.Errorf("%w: %s has no king", ErrSetup, color)
		}
		s.hi = len(p.pieces)
		s.live = s.hi - s.lo
		p.sides[color] = s
	}
	if len(p.pieces) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 pieces, got %d", ErrSetup, len(p.pieces))
	}

	sentinel := HistoryEntry{Piece: noPiece, Captured: noPiece, PrevHalfMove: halfMove}
	if lastDouble != nil {
		idx := p.at(int(lastDouble.File), int(lastDouble.Rank))
		if idx == noPiece || p.pieces[idx].Kind != Pawn || p.pieces[idx].Color == turn {
			return nil, fmt.Errorf("%w: no pawn on %s for en passant", ErrSetup, lastDouble)
		}
		step := 2
		if p.pieces[idx].Color == Black {
			step = -2
		}
		sentinel.Piece = idx
		sentinel.To = lastDouble.Coords()
		sentinel.From = Sq(int(lastDouble.File), int(lastDouble.Rank)-step)
	}
	p.history = append(p.history, sentinel)

	if p.attacked(p.kingSquare(turn.Other()), turn) {
		return nil, fmt.Errorf("%w: %s king is in check with %s to move", ErrSetup, turn.Other(), turn)
	}
	p.rebuild()
	if p.checks >= 2 {
		return nil, fmt.Errorf("%w: starting position is a double check", ErrSetup)
	}
	p.repetition[p.positionKey()]++
	p.evaluateTerminal()
	return p, nil
}

func (p *Position) at(file, rank int) int {
	return int(p.board[file][rank])
}

func (p *Position) kingSquare(c Color) Square {
	return p.pieces[p.sides[c].king].Square
}

// PieceAt returns the live piece on sq, if any.
func (p *Position) PieceAt(sq Square) (Piece, bool) {
	if !sq.OnBoard() {
		return Piece{}, false
	}
	idx := p.at(int(sq.File), int(sq.Rank))
	if idx == noPiece {
		return Piece{}, false
	}
	return p.pieces[idx], true
}

// Pieces returns a copy of the piece arena, captured pieces included.
func (p *Position) Pieces() []Piece {
	out := make([]Piece, len(p.pieces))
	copy(out, p.pieces)
	return out
}

// LiveCount returns how many pieces of color c are still on the board.
func (p *Position) LiveCount(c Color) int {
	return p.sides[c].live
}

func (p *Position) SideToMove() Color   { return p.turn }
func (p *Position) HalfMoveClock() int  { return p.halfMove }
func (p *Position) FullMoveNumber() int { return p.fullMove }

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool { return p.checks > 0 }

// CheckCount returns 0, 1 or 2 for none, single and double check.
func (p *Position) CheckCount() int { return p.checks }

// Checker returns the piece giving check, if any. Under double check it is
// the last checker found.
func (p *Position) Checker() (Piece, bool) {
	if p.checker == noPiece {
		return Piece{}, false
	}
	return p.pieces[p.checker], true
}

// Tile returns the tile state of sq in the grid of color c. Only the grid of
// the side to move is populated.
func (p *Position) Tile(c Color, sq Square) TileState {
	return p.tiles[c][sq.File][sq.Rank]
}

// PendingPromotion returns the pawn waiting for its replacement piece.
func (p *Position) PendingPromotion() (Piece, bool) {
	if p.pending == noPiece {
		return Piece{}, false
	}
	return p.pieces[p.pending], true
}

// Ended reports whether the game has reached a terminal state.
func (p *Position) Ended() bool { return p.status != NotEnded }

// Terminal returns the terminal reason, NotEnded while play continues.
func (p *Position) Terminal() TerminalReason { return p.status }

// Status summarizes the outcome as a GameStatus.
func (p *Position) Status() GameStatus {
	switch p.status {
	case NotEnded:
		return StatusActive
	case Checkmate, Timeout:
		if p.winner == White {
			return StatusWhiteWon
		}
		return StatusBlackWon
	default:
		return StatusDraw
	}
}

// History returns the executed moves, sentinel excluded.
func (p *Position) History() []HistoryEntry {
	out := make([]HistoryEntry, len(p.history)-1)
	copy(out, p.history[1:])
	return out
}

// LastMove returns the most recent history entry. Before any move it is the
// sentinel, whose Piece is -1 unless the position came from a FEN with an
// en passant target.
func (p *Position) LastMove() HistoryEntry {
	return p.history[len(p.history)-1]
}

// Clone returns an independent deep copy.
func (p *Position) Clone() *Position {
	c := *p
	c.pieces = append([]Piece(nil), p.pieces...)
	for i := range c.sides {
		c.sides[i] = p.sides[i].clone()
	}
	c.history = append([]HistoryEntry(nil), p.history...)
	c.repetition = make(map[string]int, len(p.repetition))
	for k, v := range p.repetition {
		c.repetition[k] = v
	}
	return &c
}

// String renders the board as eight text ranks, rank 8 first.
func (p *Position) String() string {
	var b strings.Builder
	for r := 7; r >= 0; r-- {
		for f := 0; f < 8; f++ {
			idx := p.at(f, r)
			if idx == noPiece {
				b.WriteByte('.')
				continue
			}
			b.WriteByte(pieceLetter(p.pieces[idx]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// positionKey identifies a position for repetition counting: placement,
// side to move, castling rights and en passant target.
func (p *Position) positionKey() string {
	var b strings.Builder
	b.Grow(80)
	writePlacement(&b, p)
	b.WriteByte(' ')
	b.WriteString(p.castlingField())
	b.WriteByte(' ')
	b.WriteString(p.enPassantField())
	if p.turn == White {
		b.WriteString(" w")
	} else {
		b.WriteString(" b")
	}
	return b.String()
}
