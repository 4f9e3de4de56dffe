package engine

import (
	"github.com/hailam/quantumchess/internal/board"
	"github.com/hailam/quantumchess/internal/quantum"
)

// Snapshot is the complete state of a game, enough to rebuild it exactly.
type Snapshot struct {
	ActivePlayer board.Player
	Status       board.Status
	Harmonics    []quantum.Harmonic
}

// Snapshot exports the game state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		ActivePlayer: e.active,
		Status:       e.sp.Status(),
		Harmonics:    e.sp.Harmonics(),
	}
}

// Restore rebuilds a game from a snapshot, rejecting inconsistent state.
func Restore(s Snapshot, opts ...quantum.Option) (*Engine, error) {
	sp, err := quantum.New(s.Harmonics, s.Status, opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{sp: sp, active: s.ActivePlayer}, nil
}
