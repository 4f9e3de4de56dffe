package board

// Player represents the side owning a piece or making a move.
type Player uint8

const (
	White Player = iota
	Black
)

// Other returns the opposite player.
func (p Player) Other() Player {
	return p ^ 1
}

// String returns the player name.
func (p Player) String() string {
	switch p {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoPlayer"
	}
}

// HomeRank returns the back rank of the player (0 for White, 7 for Black).
func (p Player) HomeRank() int {
	if p == White {
		return 0
	}
	return 7
}

// PieceType represents the type of a chess piece.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Char returns the FEN character for the piece type (lowercase).
func (pt PieceType) Char() byte {
	chars := []byte{'p', 'n', 'b', 'r', 'q', 'k'}
	if pt > King {
		return ' '
	}
	return chars[pt]
}

// Piece is a piece type owned by a player. Pieces are compared by value.
type Piece struct {
	Player Player
	Type   PieceType
}

// NewPiece creates a Piece from a player and a piece type.
func NewPiece(p Player, pt PieceType) Piece {
	return Piece{Player: p, Type: pt}
}

// String returns the FEN character for the piece.
// Uppercase for white, lowercase for black.
func (p Piece) String() string {
	c := p.Type.Char()
	if p.Player == White {
		c -= 'a' - 'A'
	}
	return string(c)
}

// Glyph returns the Unicode chess symbol for the piece.
func (p Piece) Glyph() rune {
	if p.Player == White {
		return []rune("♙♘♗♖♕♔")[p.Type]
	}
	return []rune("♟♞♝♜♛♚")[p.Type]
}

// PieceFromChar converts a FEN character to a Piece.
func PieceFromChar(c byte) (Piece, bool) {
	player := White
	if c >= 'a' && c <= 'z' {
		player = Black
		c -= 'a' - 'A'
	}
	switch c {
	case 'P':
		return NewPiece(player, Pawn), true
	case 'N':
		return NewPiece(player, Knight), true
	case 'B':
		return NewPiece(player, Bishop), true
	case 'R':
		return NewPiece(player, Rook), true
	case 'Q':
		return NewPiece(player, Queen), true
	case 'K':
		return NewPiece(player, King), true
	default:
		return Piece{}, false
	}
}
