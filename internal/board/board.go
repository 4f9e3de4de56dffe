package board

import (
	"fmt"
	"strings"
)

// Status is the outcome of a game, or InProgress while it is undecided.
type Status uint8

const (
	InProgress Status = iota
	WhiteWins
	BlackWins
	Tie
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case InProgress:
		return "InProgress"
	case WhiteWins:
		return "WhiteWins"
	case BlackWins:
		return "BlackWins"
	case Tie:
		return "Tie"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether the status is a final outcome.
func (s Status) IsTerminal() bool {
	return s != InProgress
}

// VictoryFor returns the status in which p has won.
func VictoryFor(p Player) Status {
	if p == White {
		return WhiteWins
	}
	return BlackWins
}

// Cell is the content of one square: empty or exactly one piece.
type Cell struct {
	piece    Piece
	occupied bool
}

// EmptyCell returns a cell without a piece.
func EmptyCell() Cell {
	return Cell{}
}

// Occupied returns a cell holding p.
func Occupied(p Piece) Cell {
	return Cell{piece: p, occupied: true}
}

// Piece returns the piece in the cell and whether there is one.
func (c Cell) Piece() (Piece, bool) {
	return c.piece, c.occupied
}

// IsEmpty reports whether the cell holds no piece.
func (c Cell) IsEmpty() bool {
	return !c.occupied
}

// Holds reports whether the cell holds exactly p.
func (c Cell) Holds(p Piece) bool {
	return c.occupied && c.piece == p
}

// String returns the FEN character of the piece, or "." when empty.
func (c Cell) String() string {
	if !c.occupied {
		return "."
	}
	return c.piece.String()
}

func (c Cell) key() int {
	if !c.occupied {
		return -1
	}
	return int(c.piece.Player)*6 + int(c.piece.Type)
}

// Board is a single classical chess position with its status.
//
// Board is a value type: assignment copies it, and two boards are equal
// under == exactly when every cell and the status match.
type Board struct {
	cells  [64]Cell
	status Status
}

// NewEmpty returns a board without pieces and the given status.
func NewEmpty(status Status) Board {
	return Board{status: status}
}

// NewStarting returns the standard initial position, in progress.
func NewStarting() Board {
	b := NewEmpty(InProgress)
	back := [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for file, pt := range back {
		b.cells[NewSquare(file, 0)] = Occupied(NewPiece(White, pt))
		b.cells[NewSquare(file, 1)] = Occupied(NewPiece(White, Pawn))
		b.cells[NewSquare(file, 6)] = Occupied(NewPiece(Black, Pawn))
		b.cells[NewSquare(file, 7)] = Occupied(NewPiece(Black, pt))
	}
	return b
}

// NewBoard builds a board from explicit cells and status.
func NewBoard(cells [64]Cell, status Status) Board {
	return Board{cells: cells, status: status}
}

// At returns the cell at sq.
func (b *Board) At(sq Square) Cell {
	return b.cells[sq]
}

// Put places c at sq. It is meant for setting up positions, not for playing.
func (b *Board) Put(sq Square, c Cell) {
	b.cells[sq] = c
}

// Cells returns a copy of all 64 cells indexed by Square.
func (b *Board) Cells() [64]Cell {
	return b.cells
}

// Status returns the status of this board.
func (b *Board) Status() Status {
	return b.status
}

// Compare orders boards structurally: cell by cell from a1, then by status.
// It returns 0 exactly when a == b.
func Compare(a, b *Board) int {
	for i := range a.cells {
		if ka, kb := a.cells[i].key(), b.cells[i].key(); ka != kb {
			if ka < kb {
				return -1
			}
			return 1
		}
	}
	switch {
	case a.status < b.status:
		return -1
	case a.status > b.status:
		return 1
	}
	return 0
}

// String returns a diagram of the board.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sb.WriteString(b.cells[NewSquare(file, rank)].String())
			sb.WriteByte(' ')
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Status: %s\n", b.status)
	return sb.String()
}

func (b *Board) kings() (white, black bool) {
	for _, c := range b.cells {
		if c.occupied && c.piece.Type == King {
			if c.piece.Player == White {
				white = true
			} else {
				black = true
			}
		}
	}
	return white, black
}
