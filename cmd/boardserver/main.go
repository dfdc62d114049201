package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/chesscore/internal/config"
	"github.com/justinabrahms/chesscore/internal/session"
	"github.com/justinabrahms/chesscore/internal/web"
)

func main() {
	// Parse command line flags
	var showHelp bool
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.Parse()

	if showHelp {
		showHelpMessage()
		return
	}

	// Setup logging
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.Development.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Development.Debug {
		level = zerolog.DebugLevel
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	games := session.NewManager(cfg.Game.StartFEN, cfg.Game.TimeControl())
	hub := web.NewHub()
	go hub.Run(ctx)
	go pruneIdle(ctx, games, cfg.Game.IdleTTL)

	service := web.NewService(games, hub, cfg)
	router := web.NewRouter(service, hub, cfg.Server.StaticDir)

	// Create server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Info().Str("addr", srv.Addr).Str("timeControl", cfg.Game.TimeControl().Type).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// pruneIdle drops games nobody has touched for ttl. A ttl of zero keeps
// games forever.
func pruneIdle(ctx context.Context, games *session.Manager, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			games.Prune(ttl)
		}
	}
}

func showHelpMessage() {
	fmt.Println(`Chesscore Board Server

DESCRIPTION:
    Serves in-memory chess games over a JSON API and pushes every board
    change to websocket watchers. Each game enforces the full rules of
    chess: check, pins, castling, en passant, promotion, draws and clocks.

USAGE:
    boardserver [OPTIONS]

OPTIONS:
    -h, --help    Show this help message

CONFIGURATION:
    The server reads config.yaml from the current directory or ./config.
    Every key can be overridden with a CHESSCORE_ environment variable,
    e.g. CHESSCORE_SERVER_PORT=9090.

    Example config.yaml:
        server:
          host: localhost
          port: 8080
          static_dir: ./web/static

        game:
          start_fen: ""          # empty means the standard position
          clock_initial: 300     # seconds, 0 disables the clock
          clock_increment: 2
          idle_ttl: 24h

        perft:
          workers: 4
          max_depth: 5

        development:
          debug: false
          log_level: info

API ENDPOINTS:
    GET    /api/health                  - Service health check
    POST   /api/games                   - Create a game (optional "fen")
    GET    /api/games                   - List game IDs
    GET    /api/games/{id}              - Board state
    DELETE /api/games/{id}              - Drop a game
    GET    /api/games/{id}/legal        - Legal moves (?square=e2)
    POST   /api/games/{id}/select       - Select a piece
    POST   /api/games/{id}/drop         - Move the selected piece
    POST   /api/games/{id}/promote      - Choose a promotion piece
    POST   /api/games/{id}/moves        - Play a move ("uci" or "from"/"to")
    POST   /api/games/{id}/undo         - Take back the last move
    POST   /api/games/{id}/reset        - Restart (optional "fen")
    POST   /api/games/{id}/clock        - Set clocks or charge elapsed time
    GET    /api/perft                   - Count leaf nodes (?fen=&depth=&divide=&verify=)
    GET    /ws?gameId={id}              - Board updates for one game

EXAMPLES:
    # Start with default configuration
    boardserver

    # Create a game and play a move
    curl -X POST http://localhost:8080/api/games
    curl -X POST http://localhost:8080/api/games/{id}/moves \
      -H "Content-Type: application/json" \
      -d '{"uci": "e2e4"}'`)
}
