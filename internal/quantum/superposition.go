// Package quantum holds a chess game as a weighted superposition of
// classical boards and applies moves to all of them at once.
package quantum

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/hailam/quantumchess/internal/board"
	"github.com/hailam/quantumchess/internal/invariant"
)

const (
	// DefaultCeiling is the harmonic count that triggers a spontaneous measurement.
	DefaultCeiling = 1024
	// DefaultWeightCeiling is the total weight that triggers a spontaneous measurement.
	DefaultWeightCeiling uint64 = 1 << 40
)

// Source draws uniform random numbers in [0, n). *rand.Rand satisfies it.
type Source interface {
	Uint64N(n uint64) uint64
}

// NewSource returns a deterministic PCG source for seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Harmonic is one classical board with its integer weight.
// Its probability is Weight divided by the total weight of the superposition.
type Harmonic struct {
	Board  board.Board
	Weight uint64
}

// Superposition is an ordered, non-empty list of distinct harmonics whose
// weights have a gcd of 1, plus the aggregate game status.
//
// It is not safe for concurrent use.
type Superposition struct {
	harmonics []Harmonic
	status    board.Status

	src           Source
	logger        *zap.Logger
	ceiling       int
	weightCeiling uint64
}

// Option configures a Superposition.
type Option func(*Superposition)

// WithSource sets the random source used by measurements.
func WithSource(src Source) Option {
	return func(s *Superposition) { s.src = src }
}

// WithLogger sets the logger for measurement events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Superposition) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCeiling sets the harmonic count that forces a full collapse.
func WithCeiling(n int) Option {
	return func(s *Superposition) { s.ceiling = n }
}

// WithWeightCeiling sets the total weight that forces a full collapse.
func WithWeightCeiling(w uint64) Option {
	return func(s *Superposition) { s.weightCeiling = w }
}

func newSuperposition(opts []Option) *Superposition {
	s := &Superposition{
		logger:        zap.NewNop(),
		ceiling:       DefaultCeiling,
		weightCeiling: DefaultWeightCeiling,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.src == nil {
		s.src = NewSource(uint64(time.Now().UnixNano()))
	}
	return s
}

// NewStarting returns a game in the standard starting position.
func NewStarting(opts ...Option) *Superposition {
	s := newSuperposition(opts)
	s.harmonics = []Harmonic{{Board: board.NewStarting(), Weight: 1}}
	s.status = board.InProgress
	return s
}

// New rebuilds a superposition from previously exported harmonics.
// The input is validated and rejected if it breaks any consistency rule.
func New(harmonics []Harmonic, status board.Status, opts ...Option) (*Superposition, error) {
	if err := Validate(harmonics, status); err != nil {
		return nil, err
	}
	s := newSuperposition(opts)
	s.harmonics = append([]Harmonic(nil), harmonics...)
	s.status = status
	return s, nil
}

// Status returns the aggregate game status.
func (s *Superposition) Status() board.Status {
	return s.status
}

// Len returns the number of harmonics.
func (s *Superposition) Len() int {
	return len(s.harmonics)
}

// Harmonics returns a copy of the harmonics, heaviest first.
func (s *Superposition) Harmonics() []Harmonic {
	return append([]Harmonic(nil), s.harmonics...)
}

// TotalWeight returns the sum of all harmonic weights.
func (s *Superposition) TotalWeight() uint64 {
	return totalWeight(s.harmonics)
}

// Entropy returns the Shannon entropy, in nats, of the harmonic distribution.
func (s *Superposition) Entropy() float64 {
	total := float64(s.TotalWeight())
	p := make([]float64, len(s.harmonics))
	for i, h := range s.harmonics {
		p[i] = float64(h.Weight) / total
	}
	return stat.Entropy(p)
}

// Occupancy returns the weight of harmonics with a piece at sq and the total
// weight. The piece, if any, is the same in every occupied harmonic.
func (s *Superposition) Occupancy(sq board.Square) (piece board.Piece, occupied, total uint64) {
	found := false
	for _, h := range s.harmonics {
		total += h.Weight
		p, ok := h.Board.At(sq).Piece()
		if !ok {
			continue
		}
		if found {
			invariant.Check(p == piece, "square %s holds both %s and %s", sq, piece, p)
		}
		piece, found = p, true
		occupied += h.Weight
	}
	return piece, occupied, total
}

// QuantumPiece reports the piece that may stand on sq and the probability
// that it does. An empty square reports present=false with probability 1.
func (s *Superposition) QuantumPiece(sq board.Square) (piece board.Piece, present bool, probability float64) {
	piece, occupied, total := s.Occupancy(sq)
	if occupied == 0 {
		return board.Piece{}, false, 1
	}
	return piece, true, float64(occupied) / float64(total)
}

// CheckOrdinary reports whether m is legal on some unfinished harmonic.
func (s *Superposition) CheckOrdinary(m board.Ordinary) bool {
	return s.any(func(b *board.Board) bool { return b.CheckOrdinary(m) })
}

// CheckQuantum reports whether m is legal on some unfinished harmonic.
func (s *Superposition) CheckQuantum(m board.Quantum) bool {
	return s.any(func(b *board.Board) bool { return b.CheckQuantum(m) })
}

// CheckCastle reports whether m is legal on some unfinished harmonic.
func (s *Superposition) CheckCastle(m board.Castle) bool {
	return s.any(func(b *board.Board) bool { return b.CheckCastle(m) })
}

func (s *Superposition) any(legal func(*board.Board) bool) bool {
	for i := range s.harmonics {
		b := &s.harmonics[i].Board
		if b.Status() == board.InProgress && legal(b) {
			return true
		}
	}
	return false
}

// ApplyOrdinary plays m on every unfinished harmonic where it is legal.
func (s *Superposition) ApplyOrdinary(m board.Ordinary) {
	applied := 0
	for i := range s.harmonics {
		b := &s.harmonics[i].Board
		if b.Status() == board.InProgress && b.CheckOrdinary(m) {
			b.ApplyOrdinary(m)
			applied++
		}
	}
	invariant.Check(applied > 0, "ordinary move %s applied to no harmonic", m)
	s.update()
}

// ApplyCastle plays m on every unfinished harmonic where it is legal.
func (s *Superposition) ApplyCastle(m board.Castle) {
	applied := 0
	for i := range s.harmonics {
		b := &s.harmonics[i].Board
		if b.Status() == board.InProgress && b.CheckCastle(m) {
			b.ApplyCastle(m)
			applied++
		}
	}
	invariant.Check(applied > 0, "castle %s applied to no harmonic", m)
	s.update()
}

// ApplyQuantum splits every harmonic where m is legal into the unmoved board
// and the moved board, each keeping the original weight. Every other
// harmonic has its weight doubled, so the total weight doubles.
func (s *Superposition) ApplyQuantum(m board.Quantum) {
	applied := 0
	next := make([]Harmonic, 0, len(s.harmonics)*2)
	for _, h := range s.harmonics {
		if h.Board.Status() == board.InProgress && h.Board.CheckQuantum(m) {
			moved := h
			moved.Board.ApplyQuantum(m)
			next = append(next, h, moved)
			applied++
			continue
		}
		h.Weight = mul2(h.Weight)
		next = append(next, h)
	}
	invariant.Check(applied > 0, "quantum move %s applied to no harmonic", m)
	s.harmonics = next
	s.update()
}

// RegisterVictory ends every unfinished harmonic with a win for p.
func (s *Superposition) RegisterVictory(p board.Player) {
	for i := range s.harmonics {
		s.harmonics[i].Board.RegisterVictory(p)
	}
	s.regroup()
	s.renormalize()
	s.updateStatus()
}

// RegisterTie ends every unfinished harmonic in a tie.
func (s *Superposition) RegisterTie() {
	for i := range s.harmonics {
		s.harmonics[i].Board.RegisterTie()
	}
	s.regroup()
	s.renormalize()
	s.updateStatus()
}
