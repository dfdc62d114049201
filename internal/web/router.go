package web

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController and the websocket upgrader reach the
// underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

// NewRouter wires the JSON API, the websocket endpoint and, when staticDir
// is set, a file server for the board UI.
func NewRouter(s *Service, hub *Hub, staticDir string) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(requestLogger)
	// preflight requests never match a method-restricted route
	router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.HealthHandler).Methods("GET")
	api.HandleFunc("/games", s.CreateGameHandler).Methods("POST")
	api.HandleFunc("/games", s.ListGamesHandler).Methods("GET")
	api.HandleFunc("/games/{id}", s.GetGameHandler).Methods("GET")
	api.HandleFunc("/games/{id}", s.DeleteGameHandler).Methods("DELETE")
	api.HandleFunc("/games/{id}/legal", s.LegalMovesHandler).Methods("GET")
	api.HandleFunc("/games/{id}/select", s.SelectHandler).Methods("POST")
	api.HandleFunc("/games/{id}/drop", s.DropHandler).Methods("POST")
	api.HandleFunc("/games/{id}/promote", s.PromoteHandler).Methods("POST")
	api.HandleFunc("/games/{id}/undo", s.UndoHandler).Methods("POST")
	api.HandleFunc("/games/{id}/moves", s.MakeMoveHandler).Methods("POST")
	api.HandleFunc("/games/{id}/reset", s.ResetHandler).Methods("POST")
	api.HandleFunc("/games/{id}/clock", s.ClockHandler).Methods("POST")
	api.HandleFunc("/perft", s.PerftHandler).Methods("GET")

	router.HandleFunc("/ws", s.WebSocketHandler(hub))

	if staticDir != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}
	return router
}
