// Package session keeps independent games in memory, keyed by uuid.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/chesscore/internal/chess"
)

var ErrNotFound = errors.New("game not found")

// Game is one engine instance. The engine is not safe for concurrent use, so
// every access goes through Do.
type Game struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	engine    *chess.Engine
	updatedAt time.Time
}

// Do runs fn with exclusive access to the game's engine.
func (g *Game) Do(fn func(e *chess.Engine) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	err := fn(g.engine)
	g.updatedAt = time.Now()
	return err
}

// UpdatedAt returns the time of the last access through Do.
func (g *Game) UpdatedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.updatedAt
}

type Manager struct {
	mu          sync.RWMutex
	games       map[string]*Game
	startFEN    string
	timeControl chess.TimeControl
}

// NewManager creates a registry whose new games start from startFEN (the
// standard position when empty) under the given time control.
func NewManager(startFEN string, tc chess.TimeControl) *Manager {
	if startFEN == "" {
		startFEN = chess.StartFEN
	}
	return &Manager{
		games:       make(map[string]*Game),
		startFEN:    startFEN,
		timeControl: tc,
	}
}

// Create starts a new game from fen, or from the manager's start position
// when fen is empty.
func (m *Manager) Create(fen string) (*Game, error) {
	if fen == "" {
		fen = m.startFEN
	}
	engine, err := chess.NewEngineFromFEN(fen)
	if err != nil {
		return nil, err
	}
	if m.timeControl.Initial > 0 {
		ms := int64(m.timeControl.Initial) * 1000
		engine.SetClock(ms, ms)
		engine.Clock().SetIncrement(time.Duration(m.timeControl.Increment) * time.Second)
	}

	now := time.Now()
	g := &Game{
		ID:        uuid.NewString(),
		CreatedAt: now,
		engine:    engine,
		updatedAt: now,
	}

	m.mu.Lock()
	m.games[g.ID] = g
	m.mu.Unlock()

	log.Debug().Str("game_id", g.ID).Str("fen", fen).Msg("Created game")
	return g, nil
}

func (m *Manager) Get(id string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return ErrNotFound
	}
	delete(m.games, id)
	return nil
}

// IDs returns the ids of all live games, oldest first.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	games := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		games = append(games, g)
	}
	m.mu.RUnlock()

	sort.Slice(games, func(i, j int) bool { return games[i].CreatedAt.Before(games[j].CreatedAt) })
	ids := make([]string, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}
	return ids
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// Prune drops games idle for longer than ttl and returns how many went.
func (m *Manager) Prune(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	pruned := 0
	for id, g := range m.games {
		if g.UpdatedAt().Before(cutoff) {
			delete(m.games, id)
			pruned++
		}
	}
	if pruned > 0 {
		log.Info().Int("pruned", pruned).Int("remaining", len(m.games)).Msg("Pruned idle games")
	}
	return pruned
}
