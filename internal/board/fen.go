package board

import (
	"strings"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// StartPlacement is the FEN piece placement of the starting position.
const StartPlacement = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"

var fenPieces = [2][6]chess.Piece{
	{chess.WhitePawn, chess.WhiteKnight, chess.WhiteBishop, chess.WhiteRook, chess.WhiteQueen, chess.WhiteKing},
	{chess.BlackPawn, chess.BlackKnight, chess.BlackBishop, chess.BlackRook, chess.BlackQueen, chess.BlackKing},
}

// FEN returns the FEN piece placement field of the board.
func (b *Board) FEN() string {
	m := make(map[chess.Square]chess.Piece)
	for i, c := range b.cells {
		if c.occupied {
			m[chess.Square(i)] = fenPieces[c.piece.Player][c.piece.Type]
		}
	}
	return chess.NewBoard(m).String()
}

// ParsePlacement parses a FEN piece placement field into a board with the
// given status. Trailing FEN fields, if present, are ignored.
func ParsePlacement(fen string, status Status) (Board, error) {
	b := NewEmpty(status)
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return b, errors.New("invalid FEN: empty placement")
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return b, errors.Errorf("invalid piece placement: need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return b, errors.Errorf("too many squares in rank %d", rank+1)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			piece, ok := PieceFromChar(byte(c))
			if !ok {
				return b, errors.Errorf("invalid piece character: %c", c)
			}
			b.cells[NewSquare(file, rank)] = Occupied(piece)
			file++
		}

		if file != 8 {
			return b, errors.Errorf("invalid number of squares in rank %d: got %d", rank+1, file)
		}
	}

	return b, nil
}
