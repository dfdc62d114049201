package chess

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

var (
	// ErrSetup is returned when a layout cannot form a legal position.
	ErrSetup = errors.New("invalid setup")
	// ErrFEN wraps every FEN translation failure.
	ErrFEN = errors.New("invalid FEN")
	// ErrUCI wraps every UCI move translation failure.
	ErrUCI = errors.New("invalid UCI move")

	ErrIllegalMove   = errors.New("illegal move")
	ErrGameOver      = errors.New("game is over")
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrProtocol marks calls that break the engine's calling protocol,
	// e.g. promoting with nothing pending.
	ErrProtocol           = errors.New("protocol violation")
	ErrAwaitingPromotion  = fmt.Errorf("%w: awaiting promotion choice", ErrProtocol)
	ErrNoPendingPromotion = fmt.Errorf("%w: no promotion pending", ErrProtocol)
	ErrInvalidPromotion   = fmt.Errorf("%w: invalid promotion piece", ErrProtocol)
	ErrPromotionMismatch  = fmt.Errorf("%w: promotion letter does not match move", ErrProtocol)
)

// violation reports a protocol violation. Debug builds (tag chessdebug)
// panic; release builds log and let the caller treat it as a no-op.
func violation(err error) error {
	if debugAssertions {
		panic(err)
	}
	log.Warn().Err(err).Msg("Ignoring protocol violation")
	return err
}
