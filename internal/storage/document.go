package storage

import (
	"math"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/hailam/quantumchess/internal/board"
	"github.com/hailam/quantumchess/internal/engine"
	"github.com/hailam/quantumchess/internal/quantum"
)

// gameDocument is the stored form of a game.
type gameDocument struct {
	ActivePlayer         string             `json:"active_player"`
	GameState            string             `json:"game_state"`
	LastModificationTime time.Time          `json:"last_modification_time"`
	Harmonics            []harmonicDocument `json:"harmonics"`
}

type harmonicDocument struct {
	HarmonicState string           `json:"harmonic_state"`
	Degeneracy    int64            `json:"degeneracy"`
	Chessboard    []*pieceDocument `json:"chessboard"`
}

type pieceDocument struct {
	Player string `json:"player"`
	Piece  string `json:"piece"`
}

var (
	playerNames = map[board.Player]string{
		board.White: "white",
		board.Black: "black",
	}
	pieceNames = map[board.PieceType]string{
		board.Pawn:   "pawn",
		board.Knight: "knight",
		board.Bishop: "bishop",
		board.Rook:   "rook",
		board.Queen:  "queen",
		board.King:   "king",
	}
	statusNames = map[board.Status]string{
		board.InProgress: "game_still_going",
		board.WhiteWins:  "white_victory",
		board.BlackWins:  "black_victory",
		board.Tie:        "tie",
	}
)

func lookup[K comparable](names map[K]string, s, what string) (K, error) {
	for k, name := range names {
		if name == s {
			return k, nil
		}
	}
	var zero K
	return zero, errors.Errorf("invalid %s %q", what, s)
}

func encodeDocument(snap engine.Snapshot, modified time.Time) (gameDocument, error) {
	doc := gameDocument{
		ActivePlayer:         playerNames[snap.ActivePlayer],
		GameState:            statusNames[snap.Status],
		LastModificationTime: modified.UTC(),
		Harmonics:            make([]harmonicDocument, 0, len(snap.Harmonics)),
	}
	for _, h := range snap.Harmonics {
		if h.Weight > math.MaxInt64 {
			return doc, errors.Errorf("weight %d does not fit the document", h.Weight)
		}
		cells := h.Board.Cells()
		hd := harmonicDocument{
			HarmonicState: statusNames[h.Board.Status()],
			Degeneracy:    int64(h.Weight),
			Chessboard:    make([]*pieceDocument, len(cells)),
		}
		for i, c := range cells {
			if p, ok := c.Piece(); ok {
				hd.Chessboard[i] = &pieceDocument{Player: playerNames[p.Player], Piece: pieceNames[p.Type]}
			}
		}
		doc.Harmonics = append(doc.Harmonics, hd)
	}
	return doc, nil
}

// decodeDocument converts a stored document back into a snapshot,
// reporting every malformed field at once.
func decodeDocument(doc gameDocument) (engine.Snapshot, error) {
	var (
		snap engine.Snapshot
		errs *multierror.Error
		err  error
	)

	if snap.ActivePlayer, err = lookup(playerNames, doc.ActivePlayer, "active player"); err != nil {
		errs = multierror.Append(errs, err)
	}
	if snap.Status, err = lookup(statusNames, doc.GameState, "game state"); err != nil {
		errs = multierror.Append(errs, err)
	}

	for i, hd := range doc.Harmonics {
		status, err := lookup(statusNames, hd.HarmonicState, "harmonic state")
		if err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "harmonic %d", i))
		}
		if hd.Degeneracy <= 0 {
			errs = multierror.Append(errs, errors.Errorf("harmonic %d: non-positive degeneracy %d", i, hd.Degeneracy))
		}
		if len(hd.Chessboard) != 64 {
			errs = multierror.Append(errs, errors.Errorf("harmonic %d: chessboard has %d squares", i, len(hd.Chessboard)))
			continue
		}

		var cells [64]board.Cell
		for sq, pd := range hd.Chessboard {
			if pd == nil {
				continue
			}
			player, perr := lookup(playerNames, pd.Player, "player")
			pt, terr := lookup(pieceNames, pd.Piece, "piece")
			if perr != nil || terr != nil {
				errs = multierror.Append(errs, errors.Wrapf(multierror.Append(perr, terr).ErrorOrNil(),
					"harmonic %d, square %s", i, board.Square(sq)))
				continue
			}
			cells[sq] = board.Occupied(board.NewPiece(player, pt))
		}
		snap.Harmonics = append(snap.Harmonics, quantum.Harmonic{
			Board:  board.NewBoard(cells, status),
			Weight: uint64(hd.Degeneracy),
		})
	}

	if errs == nil {
		if err := quantum.Validate(snap.Harmonics, snap.Status); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return snap, errors.Wrap(err, "decode game")
	}
	return snap, nil
}

// PlayerName returns the stored name of p, e.g. "white".
func PlayerName(p board.Player) string {
	return playerNames[p]
}

// PieceName returns the stored name of pt, e.g. "knight".
func PieceName(pt board.PieceType) string {
	return pieceNames[pt]
}

// StatusName returns the stored name of s, e.g. "game_still_going".
func StatusName(s board.Status) string {
	return statusNames[s]
}
