// Package session serves many concurrent games backed by a store. Moves on
// one game are serialized; different games proceed in parallel.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hailam/quantumchess/internal/board"
	"github.com/hailam/quantumchess/internal/engine"
	"github.com/hailam/quantumchess/internal/notation"
	"github.com/hailam/quantumchess/internal/quantum"
	"github.com/hailam/quantumchess/internal/storage"
)

var (
	// ErrGameNotFound is returned for unknown game ids.
	ErrGameNotFound = storage.ErrGameNotFound
	// ErrInvalidID is returned for ids that are not UUIDs.
	ErrInvalidID = errors.New("invalid game id")
)

// Store persists game snapshots. *storage.Storage implements it.
type Store interface {
	Insert(snap engine.Snapshot) (string, error)
	Update(id string, snap engine.Snapshot) error
	Load(id string) (engine.Snapshot, error)
	ActiveGames() ([]storage.GameInfo, error)
}

// SquareInfo describes what may stand on one square.
type SquareInfo struct {
	Piece       board.Piece
	Present     bool
	Probability float64
}

// Info is a read-only view of a game.
type Info struct {
	ID           string
	Status       board.Status
	ActivePlayer board.Player
	Harmonics    int
	Entropy      float64
	Squares      [64]SquareInfo
}

type game struct {
	mu         sync.Mutex
	eng        *engine.Engine
	lastAccess time.Time
	evicted    bool
}

// Manager caches games in memory and writes every accepted move to the store.
type Manager struct {
	mu    sync.RWMutex
	games map[string]*game

	store     Store
	logger    *zap.Logger
	newSource func() quantum.Source
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithSourceFactory sets how each game gets its random source.
// Sources are never shared between games.
func WithSourceFactory(f func() quantum.Source) Option {
	return func(m *Manager) { m.newSource = f }
}

// WithClock replaces time.Now for access tracking.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager over store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		games:  make(map[string]*game),
		store:  store,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) engineOptions() []quantum.Option {
	opts := []quantum.Option{quantum.WithLogger(m.logger.Named("quantum"))}
	if m.newSource != nil {
		opts = append(opts, quantum.WithSource(m.newSource()))
	}
	return opts
}

// Create starts a new game and returns its id.
func (m *Manager) Create() (string, error) {
	eng := engine.NewEngine(m.engineOptions()...)
	id, err := m.store.Insert(eng.Snapshot())
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.games[id] = &game{eng: eng, lastAccess: m.now()}
	m.mu.Unlock()

	m.logger.Info("game created", zap.String("game", id))
	return id, nil
}

// acquire returns the game locked for exclusive use, loading it if needed.
func (m *Manager) acquire(id string) (*game, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.Wrapf(ErrInvalidID, "%q", id)
	}

	for {
		m.mu.RLock()
		g, ok := m.games[id]
		m.mu.RUnlock()

		if !ok {
			var err error
			if g, err = m.load(id); err != nil {
				return nil, err
			}
		}

		g.mu.Lock()
		if g.evicted {
			g.mu.Unlock()
			continue
		}
		g.lastAccess = m.now()
		return g, nil
	}
}

func (m *Manager) load(id string) (*game, error) {
	snap, err := m.store.Load(id)
	if err != nil {
		return nil, err
	}
	eng, err := engine.Restore(snap, m.engineOptions()...)
	if err != nil {
		return nil, errors.Wrapf(err, "restore game %s", id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.games[id]; ok {
		return g, nil
	}
	g := &game{eng: eng}
	m.games[id] = g
	m.logger.Debug("game loaded", zap.String("game", id))
	return g, nil
}

// evict drops g from the cache so the next request reloads the stored state.
// The caller holds g.mu.
func (m *Manager) evict(id string, g *game) {
	g.evicted = true
	m.mu.Lock()
	if m.games[id] == g {
		delete(m.games, id)
	}
	m.mu.Unlock()
}

// Submit resolves req against the game and plays it. A user error leaves the
// game untouched. An engine invariant failure evicts the game and re-panics.
func (m *Manager) Submit(id string, req notation.Request) error {
	g, err := m.acquire(id)
	if err != nil {
		return err
	}
	defer g.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			m.evict(id, g)
			m.logger.Error("game evicted after engine failure", zap.String("game", id), zap.Any("panic", r))
			panic(r)
		}
	}()

	move, err := req.Resolve(g.eng.ActivePlayer(), g.eng)
	if err != nil {
		return err
	}
	if err := g.eng.Submit(move); err != nil {
		m.logger.Debug("move rejected", zap.String("game", id), zap.Stringer("move", move), zap.Error(err))
		return err
	}

	if err := m.store.Update(id, g.eng.Snapshot()); err != nil {
		m.evict(id, g)
		return errors.Wrapf(err, "save game %s", id)
	}
	m.logger.Debug("move accepted",
		zap.String("game", id),
		zap.Stringer("move", move),
		zap.Int("harmonics", len(g.eng.Harmonics())),
		zap.Stringer("status", g.eng.Status()))
	return nil
}

// Info returns a view of the game.
func (m *Manager) Info(id string) (Info, error) {
	g, err := m.acquire(id)
	if err != nil {
		return Info{}, err
	}
	defer g.mu.Unlock()

	harmonics := g.eng.Harmonics()
	info := Info{
		ID:           id,
		Status:       g.eng.Status(),
		ActivePlayer: g.eng.ActivePlayer(),
		Harmonics:    len(harmonics),
		Entropy:      g.eng.Entropy(),
	}
	for sq := board.A1; sq < board.NoSquare; sq++ {
		p, present, prob := g.eng.QuantumPiece(sq)
		info.Squares[sq] = SquareInfo{Piece: p, Present: present, Probability: prob}
	}
	return info, nil
}

// Harmonics returns a copy of the game's harmonics.
func (m *Manager) Harmonics(id string) ([]quantum.Harmonic, error) {
	g, err := m.acquire(id)
	if err != nil {
		return nil, err
	}
	defer g.mu.Unlock()
	return g.eng.Harmonics(), nil
}

// ActiveGames lists unfinished stored games.
func (m *Manager) ActiveGames() ([]storage.GameInfo, error) {
	return m.store.ActiveGames()
}

// Clean drops cached games not accessed for idle and returns how many.
// Dropped games stay in the store and are reloaded on demand.
func (m *Manager) Clean(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.RLock()
	candidates := make(map[string]*game)
	for id, g := range m.games {
		candidates[id] = g
	}
	m.mu.RUnlock()

	removed := 0
	for id, g := range candidates {
		g.mu.Lock()
		if !g.evicted && g.lastAccess.Before(cutoff) {
			m.evict(id, g)
			removed++
		}
		g.mu.Unlock()
	}
	if removed > 0 {
		m.logger.Info("cleaned idle games", zap.Int("count", removed))
	}
	return removed
}

// Len returns the number of cached games.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
