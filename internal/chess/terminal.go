package chess

const (
	// FiftyMoveLimit is the half-move clock value (plies without a capture
	// or pawn move) that draws the game.
	FiftyMoveLimit = 50
	// RepetitionLimit is the number of occurrences of the same position
	// that draws the game.
	RepetitionLimit = 3
)

// evaluateTerminal runs after every tile rebuild for the side to move.
// Checkmate and stalemate take precedence over the counter draws.
func (p *Position) evaluateTerminal() {
	p.status = NotEnded
	switch {
	case !p.hasLegalMove():
		if p.checks > 0 {
			p.status = Checkmate
			p.winner = p.turn.Other()
		} else {
			p.status = Stalemate
		}
	case p.halfMove >= FiftyMoveLimit:
		p.status = FiftyMoveRule
	case p.repetition[p.positionKey()] >= RepetitionLimit:
		p.status = Repetition
	case p.insufficientMaterial():
		p.status = InsufficientMaterial
	}
}

// insufficientMaterial covers the forced draws: king against king, and king
// with a single knight or bishop against a bare king.
func (p *Position) insufficientMaterial() bool {
	w, b := p.sides[White].live, p.sides[Black].live
	if w+b == 2 {
		return true
	}
	if w+b != 3 {
		return false
	}
	for i := range p.pieces {
		pc := &p.pieces[i]
		if pc.Alive && pc.Kind != King {
			return pc.Kind == Knight || pc.Kind == Bishop
		}
	}
	return false
}

// RepetitionCount returns how often the current position has occurred.
func (p *Position) RepetitionCount() int {
	return p.repetition[p.positionKey()]
}

// Winner returns the winning color when the game ended decisively.
func (p *Position) Winner() (Color, bool) {
	if p.status == Checkmate || p.status == Timeout {
		return p.winner, true
	}
	return White, false
}

// Result returns the PGN-style result string, empty while in play.
func (p *Position) Result() string {
	switch p.Status() {
	case StatusWhiteWon:
		return "1-0"
	case StatusBlackWon:
		return "0-1"
	case StatusDraw:
		return "1/2-1/2"
	}
	return ""
}

// flagFall ends the game on time against color loser.
func (p *Position) flagFall(loser Color) {
	if p.Ended() {
		return
	}
	p.status = Timeout
	p.winner = loser.Other()
}
