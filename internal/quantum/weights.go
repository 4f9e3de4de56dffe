package quantum

import (
	"math/bits"

	"github.com/pkg/errors"

	"github.com/hailam/quantumchess/internal/board"
	"github.com/hailam/quantumchess/internal/invariant"
)

// ErrInvalidState is returned when exported harmonics cannot form a valid superposition.
var ErrInvalidState = errors.New("invalid superposition")

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// add sums weights, treating overflow as a broken invariant.
func add(a, b uint64) uint64 {
	s, carry := bits.Add64(a, b, 0)
	invariant.Check(carry == 0, "weight overflow: %d + %d", a, b)
	return s
}

func mul2(w uint64) uint64 {
	return add(w, w)
}

func sum(ws []uint64) uint64 {
	var s uint64
	for _, w := range ws {
		s = add(s, w)
	}
	return s
}

func totalWeight(hs []Harmonic) uint64 {
	var s uint64
	for _, h := range hs {
		s = add(s, h.Weight)
	}
	return s
}

// Validate checks that harmonics and status describe a consistent game.
func Validate(harmonics []Harmonic, status board.Status) error {
	if len(harmonics) == 0 {
		return errors.Wrap(ErrInvalidState, "no harmonics")
	}

	var (
		g       uint64
		total   uint64
		running bool
	)
	for i, h := range harmonics {
		if h.Weight == 0 {
			return errors.Wrapf(ErrInvalidState, "harmonic %d has zero weight", i)
		}
		s, carry := bits.Add64(total, h.Weight, 0)
		if carry != 0 {
			return errors.Wrap(ErrInvalidState, "total weight overflows")
		}
		total = s
		g = gcd(g, h.Weight)
		if h.Board.Status() == board.InProgress {
			running = true
		}
		for j := range i {
			if harmonics[j].Board == h.Board {
				return errors.Wrapf(ErrInvalidState, "harmonics %d and %d are identical", j, i)
			}
		}
	}
	if g != 1 {
		return errors.Wrapf(ErrInvalidState, "weights share factor %d", g)
	}
	if status == board.InProgress && !running {
		return errors.Wrap(ErrInvalidState, "game in progress without an unfinished harmonic")
	}

	for sq := board.A1; sq < board.NoSquare; sq++ {
		var (
			seen  board.Piece
			found bool
		)
		for _, h := range harmonics {
			p, ok := h.Board.At(sq).Piece()
			if !ok {
				continue
			}
			if found && p != seen {
				return errors.Wrapf(ErrInvalidState, "square %s holds both %s and %s", sq, seen, p)
			}
			seen, found = p, true
		}
	}
	return nil
}
