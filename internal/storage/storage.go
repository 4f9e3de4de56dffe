package storage

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hailam/quantumchess/internal/board"
	"github.com/hailam/quantumchess/internal/engine"
)

// Storage keys
const (
	gamePrefix = "game/"
)

// ErrGameNotFound is returned for ids with no stored game.
var ErrGameNotFound = errors.New("game not found")

// GameInfo summarizes a stored game.
type GameInfo struct {
	ID           string
	ActivePlayer board.Player
	Status       board.Status
	LastModified time.Time
}

// Storage wraps BadgerDB for persistent game storage
type Storage struct {
	db     *badger.DB
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Storage.
type Option func(*Storage)

// WithLogger routes storage and badger logs to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTTL makes stored games expire d after their last modification.
func WithTTL(d time.Duration) Option {
	return func(s *Storage) { s.ttl = d }
}

// WithClock replaces time.Now for modification times.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) { s.now = now }
}

func newStorage(opts []Option) *Storage {
	s := &Storage{logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStorage opens the database in the platform data directory.
func NewStorage(opts ...Option) (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir, opts...)
}

// Open opens or creates the database in dir.
func Open(dir string, opts ...Option) (*Storage, error) {
	s := newStorage(opts)
	bopts := badger.DefaultOptions(dir)
	bopts.Logger = badgerLogger{s.logger.Named("badger").Sugar()}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, errors.Wrapf(err, "open database %s", dir)
	}
	s.db = db
	s.logger.Info("database opened", zap.String("dir", dir))
	return s, nil
}

// OpenInMemory opens a database that lives only in memory.
func OpenInMemory(opts ...Option) (*Storage, error) {
	s := newStorage(opts)
	bopts := badger.DefaultOptions("").WithInMemory(true)
	bopts.Logger = badgerLogger{s.logger.Named("badger").Sugar()}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, errors.Wrap(err, "open in-memory database")
	}
	s.db = db
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func gameKey(id string) []byte {
	return []byte(gamePrefix + id)
}

func (s *Storage) entry(id string, snap engine.Snapshot) (*badger.Entry, error) {
	doc, err := encodeDocument(snap, s.now())
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e := badger.NewEntry(gameKey(id), data)
	if s.ttl > 0 {
		e = e.WithTTL(s.ttl)
	}
	return e, nil
}

// Insert stores a new game and returns its id.
func (s *Storage) Insert(snap engine.Snapshot) (string, error) {
	id := uuid.NewString()
	e, err := s.entry(id, snap)
	if err != nil {
		return "", err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(e)
	})
	if err != nil {
		return "", errors.Wrapf(err, "insert game %s", id)
	}
	return id, nil
}

// Update replaces the stored state of an existing game.
func (s *Storage) Update(id string, snap engine.Snapshot) error {
	e, err := s.entry(id, snap)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(e.Key)
		if err == badger.ErrKeyNotFound {
			return errors.Wrap(ErrGameNotFound, id)
		}
		if err != nil {
			return err
		}
		return txn.SetEntry(e)
	})
}

func (s *Storage) loadDocument(id string) (gameDocument, error) {
	var doc gameDocument
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if err == badger.ErrKeyNotFound {
			return errors.Wrap(ErrGameNotFound, id)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	return doc, err
}

// Load returns the stored state of a game.
func (s *Storage) Load(id string) (engine.Snapshot, error) {
	doc, err := s.loadDocument(id)
	if err != nil {
		return engine.Snapshot{}, err
	}
	snap, err := decodeDocument(doc)
	if err != nil {
		return engine.Snapshot{}, errors.Wrapf(err, "game %s", id)
	}
	return snap, nil
}

// each calls fn with the id and document of every stored game.
func (s *Storage) each(fn func(id string, doc gameDocument)) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(gamePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := strings.TrimPrefix(string(item.Key()), gamePrefix)
			var doc gameDocument
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				s.logger.Warn("skipping unreadable game", zap.String("id", id), zap.Error(err))
				continue
			}
			fn(id, doc)
		}
		return nil
	})
}

// ActiveGames lists unfinished games, most recently modified first.
func (s *Storage) ActiveGames() ([]GameInfo, error) {
	var games []GameInfo
	err := s.each(func(id string, doc gameDocument) {
		status, err := lookup(statusNames, doc.GameState, "game state")
		if err != nil || status != board.InProgress {
			return
		}
		player, err := lookup(playerNames, doc.ActivePlayer, "active player")
		if err != nil {
			return
		}
		games = append(games, GameInfo{
			ID:           id,
			ActivePlayer: player,
			Status:       status,
			LastModified: doc.LastModificationTime,
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(games, func(a, b GameInfo) int {
		return b.LastModified.Compare(a.LastModified)
	})
	return games, nil
}

// CleanOlderThan deletes games last modified before cutoff and returns how many.
func (s *Storage) CleanOlderThan(cutoff time.Time) (int, error) {
	var stale [][]byte
	err := s.each(func(id string, doc gameDocument) {
		if doc.LastModificationTime.Before(cutoff) {
			stale = append(stale, gameKey(id))
		}
	})
	if err != nil {
		return 0, err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, errors.Wrap(err, "delete stale game")
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, errors.Wrap(err, "delete stale games")
	}
	if len(stale) > 0 {
		s.logger.Info("removed stale games", zap.Int("count", len(stale)), zap.Time("cutoff", cutoff))
	}
	return len(stale), nil
}

// badgerLogger adapts zap to badger.Logger.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}
