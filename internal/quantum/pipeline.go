package quantum

import (
	"cmp"
	"slices"

	"go.uber.org/zap"

	"github.com/hailam/quantumchess/internal/board"
	"github.com/hailam/quantumchess/internal/invariant"
)

// update runs after every move: measure, bound the population, merge,
// normalize and finally observe the outcome if every branch has finished.
func (s *Superposition) update() {
	s.removeVanishing()
	s.renormalize()
	for sq := board.A1; sq < board.NoSquare; sq++ {
		s.measureSquare(sq)
	}
	s.spontaneousMeasurement()
	s.regroup()
	s.renormalize()
	s.updateStatus()
}

func (s *Superposition) removeVanishing() {
	s.harmonics = slices.DeleteFunc(s.harmonics, func(h Harmonic) bool {
		return h.Weight == 0
	})
}

// renormalize divides every weight by their gcd.
func (s *Superposition) renormalize() {
	g := uint64(0)
	for _, h := range s.harmonics {
		g = gcd(g, h.Weight)
	}
	if g <= 1 {
		return
	}
	for i := range s.harmonics {
		s.harmonics[i].Weight /= g
	}
}

// decide returns true with probability mass/remaining.
func (s *Superposition) decide(mass, remaining uint64) bool {
	if mass == 0 {
		return false
	}
	return s.src.Uint64N(remaining) < mass
}

// choose picks an index with probability proportional to masses[i].
// The running remaining mass makes the last non-zero candidate certain.
func (s *Superposition) choose(masses []uint64) int {
	remaining := sum(masses)
	for i, m := range masses {
		if s.decide(m, remaining) {
			return i
		}
		remaining -= m
	}
	invariant.Fail("weighted choice over %v picked nothing", masses)
	return -1
}

// measureSquare collapses sq when harmonics disagree on which piece stands
// there. Harmonics where sq is empty survive whatever the outcome.
func (s *Superposition) measureSquare(sq board.Square) {
	var (
		pieces []board.Piece
		masses []uint64
	)
	for _, h := range s.harmonics {
		p, ok := h.Board.At(sq).Piece()
		if !ok {
			continue
		}
		i := slices.Index(pieces, p)
		if i < 0 {
			pieces = append(pieces, p)
			masses = append(masses, 0)
			i = len(pieces) - 1
		}
		masses[i] = add(masses[i], h.Weight)
	}
	if len(pieces) <= 1 {
		return
	}

	i := s.choose(masses)
	chosen := pieces[i]
	s.logger.Debug("measurement",
		zap.Stringer("square", sq),
		zap.Int("candidates", len(pieces)),
		zap.Stringer("piece", chosen),
		zap.Float64("probability", float64(masses[i])/float64(sum(masses))))

	s.harmonics = slices.DeleteFunc(s.harmonics, func(h Harmonic) bool {
		c := h.Board.At(sq)
		return !c.IsEmpty() && !c.Holds(chosen)
	})
	s.renormalize()
}

// spontaneousMeasurement collapses the whole superposition to one harmonic
// once it grows past the harmonic or weight ceiling.
func (s *Superposition) spontaneousMeasurement() {
	total := s.TotalWeight()
	if len(s.harmonics) < s.ceiling && total <= s.weightCeiling {
		return
	}
	masses := make([]uint64, len(s.harmonics))
	for i, h := range s.harmonics {
		masses[i] = h.Weight
	}
	i := s.choose(masses)
	s.logger.Debug("spontaneous measurement",
		zap.Int("harmonics", len(s.harmonics)),
		zap.Uint64("total_weight", total),
		zap.Float64("probability", float64(masses[i])/float64(total)))

	s.harmonics = []Harmonic{{Board: s.harmonics[i].Board, Weight: 1}}
}

// regroup merges identical boards and orders harmonics by descending weight.
func (s *Superposition) regroup() {
	s.removeVanishing()
	invariant.Check(len(s.harmonics) > 0, "no harmonics left")

	slices.SortFunc(s.harmonics, func(a, b Harmonic) int {
		return board.Compare(&a.Board, &b.Board)
	})
	merged := s.harmonics[:1]
	for _, h := range s.harmonics[1:] {
		last := &merged[len(merged)-1]
		if last.Board == h.Board {
			last.Weight = add(last.Weight, h.Weight)
			continue
		}
		merged = append(merged, h)
	}
	slices.SortStableFunc(merged, func(a, b Harmonic) int {
		return cmp.Compare(b.Weight, a.Weight)
	})
	s.harmonics = merged
}

// updateStatus observes the final outcome once every harmonic has finished.
// One draw decides tie against a decisive result, a second picks the winner.
func (s *Superposition) updateStatus() {
	if s.status != board.InProgress {
		return
	}
	var white, black, tie uint64
	for _, h := range s.harmonics {
		switch h.Board.Status() {
		case board.InProgress:
			return
		case board.WhiteWins:
			white = add(white, h.Weight)
		case board.BlackWins:
			black = add(black, h.Weight)
		case board.Tie:
			tie = add(tie, h.Weight)
		}
	}

	total := add(add(white, black), tie)
	switch {
	case s.decide(tie, total):
		s.status = board.Tie
	case s.decide(white, total-tie):
		s.status = board.WhiteWins
	default:
		s.status = board.BlackWins
	}
	s.logger.Debug("outcome observed",
		zap.Stringer("status", s.status),
		zap.Uint64("white", white),
		zap.Uint64("black", black),
		zap.Uint64("tie", tie))
}
