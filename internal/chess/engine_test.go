package chess

import (
	"errors"
	"testing"
)

func TestNewEngine(t *testing.T) {
	engine := NewEngine()
	if engine == nil {
		t.Fatal("Expected non-nil engine")
	}

	expectedFEN := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	if engine.GetFEN() != expectedFEN {
		t.Errorf("Expected FEN %s, got %s", expectedFEN, engine.GetFEN())
	}

	if engine.GetStatus() != StatusActive {
		t.Errorf("Expected status %s, got %s", StatusActive, engine.GetStatus())
	}

	if engine.GetActiveColor() != "white" {
		t.Errorf("Expected active color white, got %s", engine.GetActiveColor())
	}
}

func TestMakeMove(t *testing.T) {
	engine := NewEngine()

	// Test valid move
	result, err := engine.MakeMove("e2", "e4", NoPieceKind)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.From != "e2" {
		t.Errorf("Expected from e2, got %s", result.From)
	}

	if result.To != "e4" {
		t.Errorf("Expected to e4, got %s", result.To)
	}

	if result.SAN != "e4" {
		t.Errorf("Expected SAN e4, got %s", result.SAN)
	}

	if result.FEN != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1" {
		t.Errorf("Unexpected FEN %s", result.FEN)
	}

	if result.Check {
		t.Error("Expected no check")
	}

	if result.Checkmate {
		t.Error("Expected no checkmate")
	}

	// Same move again is illegal: it is black's turn and e2 is empty
	_, err = engine.MakeMove("e2", "e4", NoPieceKind)
	if !errors.Is(err, ErrIllegalMove) {
		t.Errorf("Expected ErrIllegalMove, got %v", err)
	}
}

func TestMakeMoveInvalidSquare(t *testing.T) {
	engine := NewEngine()

	_, err := engine.MakeMove("z9", "e4", NoPieceKind)
	if err == nil {
		t.Error("Expected error for invalid square")
	}

	_, err = engine.MakeMove("e2", "z9", NoPieceKind)
	if err == nil {
		t.Error("Expected error for invalid square")
	}
}

func TestNewEngineFromFEN(t *testing.T) {
	validFEN := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	engine, err := NewEngineFromFEN(validFEN)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if engine.GetFEN() != validFEN {
		t.Errorf("Expected FEN %s, got %s", validFEN, engine.GetFEN())
	}

	if engine.GetActiveColor() != "black" {
		t.Errorf("Expected active color black, got %s", engine.GetActiveColor())
	}
}

func TestNewEngineFromInvalidFEN(t *testing.T) {
	_, err := NewEngineFromFEN("invalid-fen")
	if !errors.Is(err, ErrFEN) {
		t.Errorf("Expected ErrFEN, got %v", err)
	}
}

func TestParsePromotion(t *testing.T) {
	tests := []struct {
		input    string
		expected PieceKind
	}{
		{"q", Queen},
		{"r", Rook},
		{"b", Bishop},
		{"n", Knight},
		{"x", NoPieceKind},
		{"", NoPieceKind},
	}

	for _, test := range tests {
		result := ParsePromotion(test.input)
		if result != test.expected {
			t.Errorf("ParsePromotion(%s) = %v, expected %v", test.input, result, test.expected)
		}
	}
}

func TestValidateFEN(t *testing.T) {
	engine := NewEngine()

	if err := engine.ValidateFEN(StartFEN); err != nil {
		t.Errorf("Expected no error for valid FEN, got %v", err)
	}

	if err := engine.ValidateFEN("invalid-fen"); err == nil {
		t.Error("Expected error for invalid FEN")
	}
}

func TestSelectAndDrop(t *testing.T) {
	engine := NewEngine()

	if engine.Select(Sq(4, 3)) {
		t.Error("Selecting an empty square should be rejected")
	}
	if engine.Select(Sq(4, 6)) {
		t.Error("Selecting an enemy piece should be rejected")
	}

	if !engine.Select(Sq(6, 0)) {
		t.Fatal("Expected g1 knight to be selectable")
	}
	piece, targets, ok := engine.Selected()
	if !ok || piece.Kind != Knight {
		t.Fatalf("Expected selected knight, got %+v", piece)
	}
	if len(targets) != 2 {
		t.Errorf("Expected 2 knight targets, got %v", targets)
	}

	if accepted, _ := engine.Drop(Sq(6, 2)); accepted {
		t.Fatal("g3 is not reachable by the g1 knight")
	}
	if engine.GetActiveColor() != "white" {
		t.Error("A rejected drop must not change the side to move")
	}
}

func TestDropAcceptsLegalTarget(t *testing.T) {
	engine := NewEngine()
	if !engine.Select(Sq(6, 0)) {
		t.Fatal("Expected g1 knight to be selectable")
	}
	accepted, kind := engine.Drop(Sq(5, 2))
	if !accepted || kind != Normal {
		t.Fatalf("Expected accepted normal move, got %v %v", accepted, kind)
	}
	if engine.GetActiveColor() != "black" {
		t.Error("Expected black to move after Nf3")
	}
	if accepted, _ := engine.Drop(Sq(5, 3)); accepted {
		t.Error("Drop without a selection should be rejected")
	}
}

func TestFoolsMate(t *testing.T) {
	engine := NewEngine()

	var result *MoveResult
	for _, uci := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		var err error
		result, err = engine.MakeUCIMove(uci)
		if err != nil {
			t.Fatalf("Move %s failed: %v", uci, err)
		}
	}

	if result.SAN != "Qh4#" {
		t.Errorf("Expected SAN Qh4#, got %s", result.SAN)
	}
	if !result.Checkmate || !result.GameOver {
		t.Errorf("Expected checkmate, got %+v", result)
	}
	if result.Result != "0-1" {
		t.Errorf("Expected result 0-1, got %s", result.Result)
	}
	if engine.GetStatus() != StatusBlackWon {
		t.Errorf("Expected black to win, got %s", engine.GetStatus())
	}

	if _, err := engine.MakeUCIMove("e2e4"); err == nil {
		t.Error("Expected moves to be rejected after checkmate")
	}
	if engine.Select(Sq(4, 1)) {
		t.Error("Expected selection to be rejected after checkmate")
	}
}

func TestMakeUCIMoveRequiresPromotionLetter(t *testing.T) {
	engine, err := NewEngineFromFEN("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if _, err := engine.MakeUCIMove("a7a8"); !errors.Is(err, ErrProtocol) {
		t.Fatalf("Expected protocol violation without promotion letter, got %v", err)
	}
	if engine.GetFEN() != "8/P6k/8/8/8/8/8/K7 w - - 0 1" {
		t.Errorf("Position changed after rejected move: %s", engine.GetFEN())
	}

	result, err := engine.MakeUCIMove("a7a8n")
	if err != nil {
		t.Fatalf("Expected promotion to succeed, got %v", err)
	}
	if result.SAN != "a8=N" {
		t.Errorf("Expected SAN a8=N, got %s", result.SAN)
	}
	if result.Kind != "promotion" {
		t.Errorf("Expected kind promotion, got %s", result.Kind)
	}

	if _, err := engine.MakeUCIMove("h7h6q"); !errors.Is(err, ErrProtocol) {
		t.Errorf("Expected protocol violation for stray promotion letter, got %v", err)
	}
}

func TestInteractivePromotion(t *testing.T) {
	engine, err := NewEngineFromFEN("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if !engine.Select(Sq(0, 6)) {
		t.Fatal("Expected a7 pawn to be selectable")
	}
	accepted, kind := engine.Drop(Sq(0, 7))
	if !accepted || kind != Promotion {
		t.Fatalf("Expected pending promotion, got %v %v", accepted, kind)
	}
	if _, ok := engine.Position().PendingPromotion(); !ok {
		t.Fatal("Expected a pending promotion")
	}
	if engine.Select(Sq(0, 0)) {
		t.Error("Selection must be refused while a promotion is pending")
	}
	if engine.Undo() {
		t.Error("Undo must be refused while a promotion is pending")
	}

	if err := engine.Promote(Queen); err != nil {
		t.Fatalf("Promote failed: %v", err)
	}
	if engine.GetFEN() != "Q7/7k/8/8/8/8/8/K7 b - - 0 1" {
		t.Errorf("Unexpected FEN after promotion: %s", engine.GetFEN())
	}
	if err := engine.Promote(Queen); !errors.Is(err, ErrNoPendingPromotion) {
		t.Errorf("Expected ErrNoPendingPromotion, got %v", err)
	}
}

func TestEngineUndoAndReset(t *testing.T) {
	engine := NewEngine()
	if engine.Undo() {
		t.Error("Expected nothing to undo in the starting position")
	}
	if _, err := engine.MakeUCIMove("d2d4"); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !engine.Undo() {
		t.Fatal("Expected undo to succeed")
	}
	if engine.GetFEN() != StartFEN {
		t.Errorf("Expected start FEN after undo, got %s", engine.GetFEN())
	}

	if err := engine.LoadFEN("bogus"); err == nil {
		t.Error("Expected LoadFEN to fail")
	}
	if engine.GetFEN() != StartFEN {
		t.Error("Failed LoadFEN must leave the position unchanged")
	}

	if _, err := engine.MakeUCIMove("e2e4"); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	engine.Reset()
	if engine.GetFEN() != StartFEN {
		t.Errorf("Expected start FEN after reset, got %s", engine.GetFEN())
	}
}

func TestMakeMoveWhilePromotionPending(t *testing.T) {
	engine, err := NewEngineFromFEN("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if !engine.Select(Sq(0, 6)) {
		t.Fatal("Expected a7 pawn to be selectable")
	}
	if accepted, _ := engine.Drop(Sq(0, 7)); !accepted {
		t.Fatal("Expected pending promotion")
	}

	_, err = engine.MakeUCIMove("a1b1")
	if !errors.Is(err, ErrAwaitingPromotion) {
		t.Fatalf("Expected ErrAwaitingPromotion, got %v", err)
	}
	if errors.Is(err, ErrIllegalMove) {
		t.Errorf("Pending promotion must not be reported as an illegal move: %v", err)
	}
	if _, err := engine.MakeMove("a1", "a2", NoPieceKind); !errors.Is(err, ErrProtocol) {
		t.Errorf("Expected protocol violation from MakeMove, got %v", err)
	}

	if err := engine.Promote(Rook); err != nil {
		t.Fatalf("Promote failed: %v", err)
	}
	if _, err := engine.MakeUCIMove("h7g6"); err != nil {
		t.Errorf("Expected play to resume after promotion, got %v", err)
	}
}
