package board

import "github.com/hailam/quantumchess/internal/invariant"

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// clearBetween reports whether every square strictly between from and to,
// stepping by (sx, sy), is empty.
func (b *Board) clearBetween(from Square, steps, sx, sy int) bool {
	for i := 1; i < steps; i++ {
		if !b.cells[NewSquare(from.File()+i*sx, from.Rank()+i*sy)].IsEmpty() {
			return false
		}
	}
	return true
}

// reachable checks the movement shape of p from source to target and that
// the path between them is free. Pawns move diagonally only when capturing.
func (b *Board) reachable(p Piece, source, target Square, capture bool) bool {
	dx := target.File() - source.File()
	dy := target.Rank() - source.Rank()
	adx, ady := abs(dx), abs(dy)

	switch p.Type {
	case Pawn:
		forward := 1
		if p.Player == Black {
			forward = -1
		}
		if capture {
			return adx == 1 && dy == forward
		}
		if dx != 0 {
			return false
		}
		if dy == forward {
			return true
		}
		// Double step from the pawn's starting rank over an empty square.
		return dy == 2*forward && source.RelativeRank(p.Player) == 1 &&
			b.clearBetween(source, 2, 0, forward)

	case Knight:
		return adx == 1 && ady == 2 || adx == 2 && ady == 1

	case Bishop:
		return adx == ady && b.clearBetween(source, adx, sign(dx), sign(dy))

	case Rook:
		return (dx == 0 || dy == 0) && b.clearBetween(source, adx+ady, sign(dx), sign(dy))

	case Queen:
		if adx == ady {
			return b.clearBetween(source, adx, sign(dx), sign(dy))
		}
		return (dx == 0 || dy == 0) && b.clearBetween(source, adx+ady, sign(dx), sign(dy))

	case King:
		return adx <= 1 && ady <= 1
	}

	invariant.Fail("unsupported piece type %d", p.Type)
	return false
}

// promote turns a pawn that reached the last rank into a queen.
func (b *Board) promote(sq Square) {
	c := b.cells[sq]
	if c.occupied && c.piece.Type == Pawn && (sq.Rank() == 0 || sq.Rank() == 7) {
		b.cells[sq] = Occupied(NewPiece(c.piece.Player, Queen))
	}
}

// CheckOrdinary reports whether m is legal on this board.
func (b *Board) CheckOrdinary(m Ordinary) bool {
	if m.Source == m.Target {
		return false
	}
	if !b.cells[m.Source].Holds(m.Piece) {
		return false
	}
	target := b.cells[m.Target]
	if target.occupied && target.piece.Player == m.Piece.Player {
		return false
	}
	return b.reachable(m.Piece, m.Source, m.Target, target.occupied)
}

// ApplyOrdinary plays m. m must pass CheckOrdinary.
// Capturing a king ends a game in progress.
func (b *Board) ApplyOrdinary(m Ordinary) {
	invariant.Check(b.CheckOrdinary(m), "applying inapplicable ordinary move %s", m)

	b.cells[m.Target] = b.cells[m.Source]
	b.cells[m.Source] = EmptyCell()
	b.promote(m.Target)

	if b.status != InProgress {
		return
	}
	white, black := b.kings()
	switch {
	case !white && !black:
		b.status = Tie
	case !white:
		b.status = BlackWins
	case !black:
		b.status = WhiteWins
	}
}

// CheckQuantum reports whether m is legal on this board.
// Quantum moves never capture: the target and any middle square must be empty.
func (b *Board) CheckQuantum(m Quantum) bool {
	if m.Source == m.Target {
		return false
	}
	if !b.cells[m.Source].Holds(m.Piece) {
		return false
	}
	if !b.cells[m.Target].IsEmpty() {
		return false
	}
	if !m.HasMiddle() {
		return b.reachable(m.Piece, m.Source, m.Target, false)
	}
	if m.Middle == m.Source || m.Middle == m.Target || !b.cells[m.Middle].IsEmpty() {
		return false
	}
	return b.reachable(m.Piece, m.Source, m.Middle, false) &&
		b.reachable(m.Piece, m.Middle, m.Target, false)
}

// ApplyQuantum plays m on this branch. m must pass CheckQuantum.
func (b *Board) ApplyQuantum(m Quantum) {
	invariant.Check(b.CheckQuantum(m), "applying inapplicable quantum move %s", m)

	b.cells[m.Target] = b.cells[m.Source]
	b.cells[m.Source] = EmptyCell()
	b.promote(m.Target)
}

// CheckCastle reports whether m is legal on this board.
func (b *Board) CheckCastle(m Castle) bool {
	r := m.Player.HomeRank()
	king := NewPiece(m.Player, King)
	rook := NewPiece(m.Player, Rook)

	if !b.cells[NewSquare(4, r)].Holds(king) {
		return false
	}
	if m.Side == CastleLeft {
		return b.cells[NewSquare(0, r)].Holds(rook) &&
			b.cells[NewSquare(1, r)].IsEmpty() &&
			b.cells[NewSquare(2, r)].IsEmpty() &&
			b.cells[NewSquare(3, r)].IsEmpty()
	}
	return b.cells[NewSquare(7, r)].Holds(rook) &&
		b.cells[NewSquare(5, r)].IsEmpty() &&
		b.cells[NewSquare(6, r)].IsEmpty()
}

// ApplyCastle plays m. m must pass CheckCastle.
func (b *Board) ApplyCastle(m Castle) {
	invariant.Check(b.CheckCastle(m), "applying inapplicable castle %s", m)

	r := m.Player.HomeRank()
	king := Occupied(NewPiece(m.Player, King))
	rook := Occupied(NewPiece(m.Player, Rook))

	b.cells[NewSquare(4, r)] = EmptyCell()
	if m.Side == CastleLeft {
		b.cells[NewSquare(0, r)] = EmptyCell()
		b.cells[NewSquare(2, r)] = king
		b.cells[NewSquare(3, r)] = rook
		return
	}
	b.cells[NewSquare(7, r)] = EmptyCell()
	b.cells[NewSquare(5, r)] = rook
	b.cells[NewSquare(6, r)] = king
}

// RegisterVictory marks p as the winner of a game in progress.
func (b *Board) RegisterVictory(p Player) {
	if b.status == InProgress {
		b.status = VictoryFor(p)
	}
}

// RegisterTie marks a game in progress as tied.
func (b *Board) RegisterTie() {
	if b.status == InProgress {
		b.status = Tie
	}
}
