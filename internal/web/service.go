package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/chesscore/internal/chess"
	"github.com/justinabrahms/chesscore/internal/config"
	"github.com/justinabrahms/chesscore/internal/refcheck"
	"github.com/justinabrahms/chesscore/internal/session"
)

type Service struct {
	games  *session.Manager
	hub    *Hub
	config *config.Config
}

func NewService(games *session.Manager, hub *Hub, config *config.Config) *Service {
	return &Service{
		games:  games,
		hub:    hub,
		config: config,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps engine and session errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, chess.ErrFEN), errors.Is(err, chess.ErrUCI), errors.Is(err, chess.ErrSetup),
		errors.Is(err, chess.ErrIllegalMove), errors.Is(err, chess.ErrInvalidPromotion),
		errors.Is(err, chess.ErrPromotionMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, chess.ErrGameOver), errors.Is(err, chess.ErrProtocol),
		errors.Is(err, chess.ErrNothingToUndo):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}

func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// game resolves the {id} route variable.
func (s *Service) game(r *http.Request) (*session.Game, error) {
	return s.games.Get(mux.Vars(r)["id"])
}

// mutate runs fn on the game named in the route, then answers with the
// resulting board and broadcasts it to the game's watchers.
func (s *Service) mutate(w http.ResponseWriter, r *http.Request, event string, fn func(e *chess.Engine) (any, error)) {
	g, err := s.game(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var (
		out  any
		view BoardView
	)
	err = g.Do(func(e *chess.Engine) error {
		var err error
		out, err = fn(e)
		view = newBoardView(g.ID, e)
		return err
	})
	if err != nil {
		log.Info().Err(err).Str("gameID", g.ID).Str("event", event).Msg("Request rejected")
		writeError(w, err)
		return
	}
	switch resp := out.(type) {
	case nil:
		out = view
	case *AcceptedResponse:
		resp.Board = view
	}
	s.hub.BroadcastGameUpdate(GameUpdate{GameID: g.ID, Type: event, Data: view})
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"games":  s.games.Len(),
	})
}

type CreateGameRequest struct {
	FEN string `json:"fen,omitempty"`
}

func (s *Service) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	g, err := s.games.Create(req.FEN)
	if err != nil {
		log.Error().Err(err).Str("fen", req.FEN).Msg("Failed to create game")
		writeError(w, err)
		return
	}
	log.Info().Str("gameID", g.ID).Msg("Game created")

	var view BoardView
	_ = g.Do(func(e *chess.Engine) error {
		view = newBoardView(g.ID, e)
		return nil
	})
	writeJSON(w, http.StatusCreated, view)
}

func (s *Service) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"games": s.games.IDs()})
}

func (s *Service) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	g, err := s.game(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var view BoardView
	_ = g.Do(func(e *chess.Engine) error {
		view = newBoardView(g.ID, e)
		return nil
	})
	writeJSON(w, http.StatusOK, view)
}

func (s *Service) DeleteGameHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.games.Delete(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) LegalMovesHandler(w http.ResponseWriter, r *http.Request) {
	g, err := s.game(r)
	if err != nil {
		writeError(w, err)
		return
	}
	square := r.URL.Query().Get("square")

	var out any
	err = g.Do(func(e *chess.Engine) error {
		p := e.Position()
		if square == "" {
			moves := p.AllLegalMoves()
			ucis := make([]string, len(moves))
			for i, m := range moves {
				ucis[i] = m.String()
			}
			out = map[string]any{"moves": ucis}
			return nil
		}
		sq, err := chess.ParseSquare(square)
		if err != nil {
			return fmt.Errorf("%w: %v", chess.ErrIllegalMove, err)
		}
		out = map[string]any{"square": square, "moves": targetViews(p.LegalMoves(sq))}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type SquareRequest struct {
	Square string `json:"square"`
}

type AcceptedResponse struct {
	Accepted bool      `json:"accepted"`
	Kind     string    `json:"kind,omitempty"`
	Board    BoardView `json:"board"`
}

func (s *Service) SelectHandler(w http.ResponseWriter, r *http.Request) {
	var req SquareRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sq, err := chess.ParseSquare(req.Square)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	g, err := s.game(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var resp AcceptedResponse
	_ = g.Do(func(e *chess.Engine) error {
		resp.Accepted = e.Select(sq)
		resp.Board = newBoardView(g.ID, e)
		return nil
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) DropHandler(w http.ResponseWriter, r *http.Request) {
	var req SquareRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sq, err := chess.ParseSquare(req.Square)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mutate(w, r, "move", func(e *chess.Engine) (any, error) {
		accepted, kind := e.Drop(sq)
		resp := &AcceptedResponse{Accepted: accepted}
		if accepted {
			resp.Kind = kind.String()
		}
		return resp, nil
	})
}

type PromoteRequest struct {
	Piece string `json:"piece"`
}

// promotionKind accepts a piece name ("queen") or its UCI letter ("q").
func promotionKind(name string) chess.PieceKind {
	for _, k := range []chess.PieceKind{chess.Knight, chess.Bishop, chess.Rook, chess.Queen} {
		if strings.EqualFold(name, k.String()) {
			return k
		}
	}
	return chess.ParsePromotion(name)
}

func (s *Service) PromoteHandler(w http.ResponseWriter, r *http.Request) {
	var req PromoteRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	kind := promotionKind(req.Piece)

	s.mutate(w, r, "promotion", func(e *chess.Engine) (any, error) {
		return nil, e.Promote(kind)
	})
}

func (s *Service) UndoHandler(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "undo", func(e *chess.Engine) (any, error) {
		return &AcceptedResponse{Accepted: e.Undo()}, nil
	})
}

type MakeMoveRequest struct {
	UCI       string `json:"uci,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Promotion string `json:"promotion,omitempty"`
}

func (s *Service) MakeMoveHandler(w http.ResponseWriter, r *http.Request) {
	var req MakeMoveRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.UCI == "" && (req.From == "" || req.To == "") {
		http.Error(w, "either uci or from and to are required", http.StatusBadRequest)
		return
	}

	s.mutate(w, r, "move", func(e *chess.Engine) (any, error) {
		if req.UCI != "" {
			return e.MakeUCIMove(req.UCI)
		}
		return e.MakeMove(req.From, req.To, promotionKind(req.Promotion))
	})
}

type ResetRequest struct {
	FEN string `json:"fen,omitempty"`
}

func (s *Service) ResetHandler(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mutate(w, r, "reset", func(e *chess.Engine) (any, error) {
		if req.FEN == "" {
			e.Reset()
			return nil, nil
		}
		return nil, e.LoadFEN(req.FEN)
	})
}

// ClockRequest either sets both clocks or charges elapsed time to the side
// to move.
type ClockRequest struct {
	WhiteMs   *int64 `json:"white_ms,omitempty"`
	BlackMs   *int64 `json:"black_ms,omitempty"`
	ElapsedMs *int64 `json:"elapsed_ms,omitempty"`
}

func (s *Service) ClockHandler(w http.ResponseWriter, r *http.Request) {
	var req ClockRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	set := req.WhiteMs != nil && req.BlackMs != nil
	if !set && req.ElapsedMs == nil {
		http.Error(w, "white_ms and black_ms, or elapsed_ms, are required", http.StatusBadRequest)
		return
	}

	s.mutate(w, r, "clock", func(e *chess.Engine) (any, error) {
		if set {
			e.SetClock(*req.WhiteMs, *req.BlackMs)
		}
		if req.ElapsedMs != nil {
			e.AdvanceClock(*req.ElapsedMs)
		}
		return nil, nil
	})
}

type PerftResponse struct {
	FEN       string                `json:"fen"`
	Depth     int                   `json:"depth"`
	Nodes     uint64                `json:"nodes"`
	Divide    map[string]uint64     `json:"divide,omitempty"`
	Reference *refcheck.PerftResult `json:"reference,omitempty"`
	ElapsedMs int64                 `json:"elapsed_ms"`
}

func (s *Service) PerftHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fen := q.Get("fen")
	if fen == "" {
		fen = chess.StartFEN
	}
	depth, err := strconv.Atoi(q.Get("depth"))
	if err != nil || depth < 1 || depth > s.config.Perft.MaxDepth {
		http.Error(w, fmt.Sprintf("depth must be between 1 and %d", s.config.Perft.MaxDepth), http.StatusBadRequest)
		return
	}
	p, err := chess.ParseFEN(fen)
	if err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	resp := PerftResponse{FEN: fen, Depth: depth}
	if q.Get("divide") == "true" {
		resp.Divide = chess.PerftDivide(p, depth)
		for _, n := range resp.Divide {
			resp.Nodes += n
		}
	} else {
		resp.Nodes, err = chess.ParallelPerft(r.Context(), p, depth, s.config.Perft.Workers)
		if err != nil {
			log.Error().Err(err).Str("fen", fen).Int("depth", depth).Msg("Perft aborted")
			http.Error(w, "perft aborted", http.StatusServiceUnavailable)
			return
		}
	}

	if name := q.Get("verify"); name != "" {
		ref, err := refcheck.Named(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := refcheck.ComparePerft(p, depth, ref)
		if err != nil {
			writeError(w, err)
			return
		}
		if !res.Agrees() {
			log.Warn().Str("fen", fen).Int("depth", depth).Str("reference", res.Reference).
				Uint64("engine", res.Engine).Uint64("expected", res.Expected).Msg("Perft disagrees with reference")
		}
		resp.Reference = &res
	}
	resp.ElapsedMs = time.Since(start).Milliseconds()
	writeJSON(w, http.StatusOK, resp)
}
