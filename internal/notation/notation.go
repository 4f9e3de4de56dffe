// Package notation turns textual move requests into board moves.
package notation

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/hailam/quantumchess/internal/board"
)

// ErrParse is returned for requests that do not describe a move.
var ErrParse = errors.New("cannot parse move")

// Kind names a move type on the wire.
type Kind string

const (
	KindOrdinary    Kind = "ordinary"
	KindQuantum     Kind = "quantum"
	KindCapitulate  Kind = "capitulate"
	KindAgreeToTie  Kind = "agree_to_tie"
	KindCastleLeft  Kind = "castle_left"
	KindCastleRight Kind = "castle_right"
)

// Request is a move as received from a player, with squares still as text.
type Request struct {
	Type   Kind   `json:"moveType"`
	Source string `json:"source,omitempty"`
	Middle string `json:"middle,omitempty"`
	Target string `json:"target,omitempty"`
}

// PieceLookup reports which piece may stand on a square.
type PieceLookup interface {
	QuantumPiece(sq board.Square) (board.Piece, bool, float64)
}

// Resolve builds the move for player. The moving piece of ordinary and
// quantum moves is whatever stands on the source square, so its owner, not
// player, becomes the actor.
func (r Request) Resolve(player board.Player, lookup PieceLookup) (board.Move, error) {
	switch r.Type {
	case KindCapitulate:
		return board.Capitulate{Player: player}, nil
	case KindAgreeToTie:
		return board.AgreeToTie{Player: player}, nil
	case KindCastleLeft:
		return board.Castle{Player: player, Side: board.CastleLeft}, nil
	case KindCastleRight:
		return board.Castle{Player: player, Side: board.CastleRight}, nil
	case KindOrdinary, KindQuantum:
	default:
		return nil, errors.Wrapf(ErrParse, "unknown move type %q", r.Type)
	}

	source, err := parseSquare(r.Source)
	if err != nil {
		return nil, err
	}
	target, err := parseSquare(r.Target)
	if err != nil {
		return nil, err
	}
	piece, ok, _ := lookup.QuantumPiece(source)
	if !ok {
		return nil, errors.Wrapf(ErrParse, "no piece found at %s", source)
	}

	if r.Type == KindOrdinary {
		if r.Middle != "" {
			return nil, errors.Wrap(ErrParse, "ordinary moves have no middle square")
		}
		return board.Ordinary{Piece: piece, Source: source, Target: target}, nil
	}

	middle := board.NoSquare
	if r.Middle != "" {
		if middle, err = parseSquare(r.Middle); err != nil {
			return nil, err
		}
	}
	return board.Quantum{Piece: piece, Source: source, Middle: middle, Target: target}, nil
}

func parseSquare(s string) (board.Square, error) {
	sq, err := board.ParseSquare(strings.TrimSpace(s))
	if err != nil {
		return board.NoSquare, errors.Wrapf(ErrParse, "invalid square %q", s)
	}
	return sq, nil
}

var (
	capitulateRe = regexp.MustCompile(`^(?:quit|exit|capitulate)$`)
	tieRe        = regexp.MustCompile(`^tie$`)
	ordinaryRe   = regexp.MustCompile(`^([A-Za-z][1-8])\s*([A-Za-z][1-8])$`)
	quantumRe    = regexp.MustCompile(`^(?:q|Q|quantum)\s+([A-Za-z][1-8])\s*((?:[A-Za-z][1-8])?)\s*([A-Za-z][1-8])$`)
	castleRe     = regexp.MustCompile(`^castle (left|right)$`)
)

// ParseCommand parses a console line such as "e2e4", "q e2 e4",
// "quantum g1 e2 c3", "castle left", "tie" or "capitulate".
func ParseCommand(line string) (Request, error) {
	line = strings.TrimSpace(line)

	if capitulateRe.MatchString(line) {
		return Request{Type: KindCapitulate}, nil
	}
	if tieRe.MatchString(line) {
		return Request{Type: KindAgreeToTie}, nil
	}
	if m := castleRe.FindStringSubmatch(line); m != nil {
		if m[1] == "left" {
			return Request{Type: KindCastleLeft}, nil
		}
		return Request{Type: KindCastleRight}, nil
	}
	if m := quantumRe.FindStringSubmatch(line); m != nil {
		return Request{Type: KindQuantum, Source: m[1], Middle: m[2], Target: m[3]}, nil
	}
	if m := ordinaryRe.FindStringSubmatch(line); m != nil {
		return Request{Type: KindOrdinary, Source: m[1], Target: m[2]}, nil
	}
	return Request{}, errors.Wrapf(ErrParse, "unrecognized command %q", line)
}
