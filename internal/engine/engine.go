// Package engine runs a quantum chess game: it tracks whose turn it is and
// dispatches submitted moves to the superposition.
package engine

import (
	"github.com/pkg/errors"

	"github.com/hailam/quantumchess/internal/board"
	"github.com/hailam/quantumchess/internal/invariant"
	"github.com/hailam/quantumchess/internal/quantum"
)

var (
	// ErrWrongTurn is returned when a player moves out of turn.
	ErrWrongTurn = errors.New("not your turn")
	// ErrInapplicable is returned when a move is illegal on every harmonic.
	ErrInapplicable = errors.New("move is inapplicable on all harmonics")
	// ErrGameOver is returned for moves submitted after the game has ended.
	ErrGameOver = errors.New("game is over")
)

// Engine is a single quantum chess game. It is not safe for concurrent use.
type Engine struct {
	sp     *quantum.Superposition
	active board.Player
}

// NewEngine creates a game in the starting position with White to move.
func NewEngine(opts ...quantum.Option) *Engine {
	return &Engine{
		sp:     quantum.NewStarting(opts...),
		active: board.White,
	}
}

// ActivePlayer returns the player to move.
func (e *Engine) ActivePlayer() board.Player {
	return e.active
}

// Status returns the aggregate game status.
func (e *Engine) Status() board.Status {
	return e.sp.Status()
}

// QuantumPiece reports the piece that may stand on sq and its probability.
func (e *Engine) QuantumPiece(sq board.Square) (board.Piece, bool, float64) {
	return e.sp.QuantumPiece(sq)
}

// Harmonics returns a copy of the current harmonics.
func (e *Engine) Harmonics() []quantum.Harmonic {
	return e.sp.Harmonics()
}

// Entropy returns the entropy of the harmonic distribution in nats.
func (e *Engine) Entropy() float64 {
	return e.sp.Entropy()
}

// Submit validates and plays m. A rejected move leaves the game unchanged.
func (e *Engine) Submit(m board.Move) error {
	if e.sp.Status().IsTerminal() {
		return errors.Wrapf(ErrGameOver, "%s", e.sp.Status())
	}
	if m.Actor() != e.active {
		return errors.Wrapf(ErrWrongTurn, "%s to move", e.active)
	}

	switch m := m.(type) {
	case board.Capitulate:
		e.sp.RegisterVictory(m.Player.Other())
		return nil

	case board.AgreeToTie:
		e.sp.RegisterTie()
		return nil

	case board.Ordinary:
		if !e.sp.CheckOrdinary(m) {
			return errors.Wrapf(ErrInapplicable, "%s", m)
		}
		e.sp.ApplyOrdinary(m)

	case board.Quantum:
		if !e.sp.CheckQuantum(m) {
			return errors.Wrapf(ErrInapplicable, "%s", m)
		}
		e.sp.ApplyQuantum(m)

	case board.Castle:
		if !e.sp.CheckCastle(m) {
			return errors.Wrapf(ErrInapplicable, "%s", m)
		}
		e.sp.ApplyCastle(m)

	default:
		invariant.Fail("unsupported move type %T", m)
	}

	e.active = e.active.Other()
	return nil
}
