package chess

import "fmt"

type GameStatus string

const (
	StatusActive   GameStatus = "active"
	StatusDraw     GameStatus = "draw"
	StatusWhiteWon GameStatus = "white_won"
	StatusBlackWon GameStatus = "black_won"
)

// Color of a piece or of the side to move.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposing color.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

type PieceKind uint8

const (
	NoPieceKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindNames = [...]string{"none", "pawn", "knight", "bishop", "rook", "queen", "king"}

func (k PieceKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("PieceKind(%d)", uint8(k))
}

// Letter returns the lower-case FEN letter for the kind.
func (k PieceKind) Letter() byte {
	return " pnbrqk"[k]
}

// MoveKind tags a destination square when it is used as a move descriptor.
type MoveKind uint8

const (
	Normal MoveKind = iota
	Capture
	Promotion
	Castle
	EnPassant
	CapturePromotion
)

var moveKindNames = [...]string{"normal", "capture", "promotion", "castle", "en_passant", "capture_promotion"}

func (k MoveKind) String() string {
	if int(k) < len(moveKindNames) {
		return moveKindNames[k]
	}
	return fmt.Sprintf("MoveKind(%d)", uint8(k))
}

// IsCapture reports whether the move removes an enemy piece.
func (k MoveKind) IsCapture() bool {
	return k == Capture || k == EnPassant || k == CapturePromotion
}

// IsPromotion reports whether the move needs a replacement piece.
func (k MoveKind) IsPromotion() bool {
	return k == Promotion || k == CapturePromotion
}

// Square is a board coordinate. File and Rank run 0-7 (a-h, 1-8). Kind is
// only meaningful when the square describes a move destination.
type Square struct {
	File int8
	Rank int8
	Kind MoveKind
}

// Sq builds a square from zero-based file and rank.
func Sq(file, rank int) Square {
	return Square{File: int8(file), Rank: int8(rank)}
}

// Equal compares coordinates only; the move kind is ignored.
func (s Square) Equal(o Square) bool {
	return s.File == o.File && s.Rank == o.Rank
}

// OnBoard reports whether the coordinates are inside the 8x8 board.
func (s Square) OnBoard() bool {
	return onBoard(int(s.File), int(s.Rank))
}

// Coords returns the square stripped of its move kind.
func (s Square) Coords() Square {
	return Square{File: s.File, Rank: s.Rank}
}

func (s Square) String() string {
	if !s.OnBoard() {
		return "-"
	}
	return string([]byte{'a' + byte(s.File), '1' + byte(s.Rank)})
}

// ParseSquare decodes algebraic coordinates such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	return Sq(int(s[0]-'a'), int(s[1]-'1')), nil
}

func onBoard(file, rank int) bool {
	return file >= 0 && file < 8 && rank >= 0 && rank < 8
}

// Piece is one entry of the position's piece arena.
type Piece struct {
	Color  Color
	Kind   PieceKind
	Square Square
	Alive  bool
	Moved  bool
	Pinned bool

	pinDir direction
}

// PinLine returns the direction from the king through the pinned piece.
func (p Piece) PinLine() (df, dr int, ok bool) {
	if !p.Pinned {
		return 0, 0, false
	}
	return int(p.pinDir.df), int(p.pinDir.dr), true
}

// TileState flags one square of a color's tile grid.
type TileState uint8

const (
	// BlockedForKing marks squares the king may not step onto.
	BlockedForKing TileState = 1 << iota
	// AllowedInCheck marks squares that block or capture the checking piece.
	AllowedInCheck
)

type TerminalReason uint8

const (
	NotEnded TerminalReason = iota
	Checkmate
	Stalemate
	FiftyMoveRule
	Repetition
	InsufficientMaterial
	Timeout
)

var reasonNames = [...]string{"", "checkmate", "stalemate", "fifty_move_rule", "threefold_repetition", "insufficient_material", "timeout"}

func (r TerminalReason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return fmt.Sprintf("TerminalReason(%d)", uint8(r))
}

// Move is a complete move: origin, destination with kind, and the
// replacement piece for promotions.
type Move struct {
	From      Square
	To        Square
	Promotion PieceKind
}

// String returns the UCI encoding of the move.
func (m Move) String() string {
	return FormatUCIMove(m)
}

// HistoryEntry records one executed move. The entry at index zero is a
// sentinel so the previous move can always be inspected.
type HistoryEntry struct {
	From         Square
	To           Square
	Piece        int
	Captured     int
	PrevHalfMove int
	FirstMove    bool
	Promoted     PieceKind
}

// MoveResult describes a completed move for callers outside the engine.
type MoveResult struct {
	From      string `json:"from"`
	To        string `json:"to"`
	UCI       string `json:"uci"`
	SAN       string `json:"san"`
	Kind      string `json:"kind"`
	FEN       string `json:"fen"`
	Check     bool   `json:"check"`
	Checkmate bool   `json:"checkmate"`
	Draw      bool   `json:"draw"`
	GameOver  bool   `json:"gameOver"`
	Result    string `json:"result"`
}

// MaterialCount represents the material count for both sides
type MaterialCount struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// StandardPieceValues maps piece kinds to their standard values
var StandardPieceValues = map[PieceKind]int{
	Pawn:   1,
	Knight: 3,
	Bishop: 3,
	Rook:   5,
	Queen:  9,
	King:   0, // King has no material value
}
