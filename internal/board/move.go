package board

import "fmt"

// Move is a request submitted by a player. The set of moves is closed:
// Capitulate, AgreeToTie, Ordinary, Quantum and Castle.
type Move interface {
	// Actor returns the player making the move.
	Actor() Player
	fmt.Stringer
	sealed()
}

// Capitulate resigns the game for Player.
type Capitulate struct {
	Player Player
}

// AgreeToTie ends the game in a tie on Player's request.
type AgreeToTie struct {
	Player Player
}

// Ordinary moves Piece from Source to Target, capturing what stands there.
type Ordinary struct {
	Piece  Piece
	Source Square
	Target Square
}

// Quantum moves Piece from Source to an empty Target in a new branch,
// optionally hopping through Middle. Middle is NoSquare when absent.
type Quantum struct {
	Piece  Piece
	Source Square
	Middle Square
	Target Square
}

// CastleSide selects the rook taking part in a castle.
type CastleSide uint8

const (
	// CastleLeft castles with the rook on the a-file.
	CastleLeft CastleSide = iota
	// CastleRight castles with the rook on the h-file.
	CastleRight
)

// String returns "left" or "right".
func (cs CastleSide) String() string {
	if cs == CastleLeft {
		return "left"
	}
	return "right"
}

// Castle moves the king and a rook of Player on its home rank.
type Castle struct {
	Player Player
	Side   CastleSide
}

func (m Capitulate) Actor() Player { return m.Player }
func (m AgreeToTie) Actor() Player { return m.Player }
func (m Ordinary) Actor() Player   { return m.Piece.Player }
func (m Quantum) Actor() Player    { return m.Piece.Player }
func (m Castle) Actor() Player     { return m.Player }

func (Capitulate) sealed() {}
func (AgreeToTie) sealed() {}
func (Ordinary) sealed()   {}
func (Quantum) sealed()    {}
func (Castle) sealed()     {}

func (m Capitulate) String() string { return m.Player.String() + " capitulates" }
func (m AgreeToTie) String() string { return m.Player.String() + " agrees to tie" }

func (m Ordinary) String() string {
	return fmt.Sprintf("%s%s%s", m.Piece, m.Source, m.Target)
}

func (m Quantum) String() string {
	if m.HasMiddle() {
		return fmt.Sprintf("q %s%s%s%s", m.Piece, m.Source, m.Middle, m.Target)
	}
	return fmt.Sprintf("q %s%s%s", m.Piece, m.Source, m.Target)
}

func (m Castle) String() string {
	return fmt.Sprintf("%s castles %s", m.Player, m.Side)
}

// HasMiddle reports whether the quantum move hops through a middle square.
func (m Quantum) HasMiddle() bool {
	return m.Middle != NoSquare
}
