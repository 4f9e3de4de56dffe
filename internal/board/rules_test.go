package board

import (
	"testing"
)

func mustPlacement(t *testing.T, fen string) Board {
	t.Helper()
	b, err := ParsePlacement(fen, InProgress)
	if err != nil {
		t.Fatal("Error parsing placement:", err)
	}
	return b
}

func sq(t *testing.T, s string) Square {
	t.Helper()
	s2, err := ParseSquare(s)
	if err != nil {
		t.Fatal(err)
	}
	return s2
}

func TestStartingBoard(t *testing.T) {
	b := NewStarting()
	if got := b.FEN(); got != StartPlacement {
		t.Errorf("starting placement = %s, want %s", got, StartPlacement)
	}
	if b.Status() != InProgress {
		t.Errorf("starting status = %s", b.Status())
	}
	parsed := mustPlacement(t, StartPlacement)
	if parsed != b {
		t.Error("parsed starting placement differs from NewStarting")
	}
}

func TestCheckOrdinary(t *testing.T) {
	wp := NewPiece(White, Pawn)
	bp := NewPiece(Black, Pawn)

	tests := []struct {
		name string
		fen  string
		move Ordinary
		want bool
	}{
		{"pawn single step", StartPlacement, Ordinary{wp, E2, E3}, true},
		{"pawn double step", StartPlacement, Ordinary{wp, E2, E4}, true},
		{"black pawn double step", StartPlacement, Ordinary{bp, D7, D5}, true},
		{"pawn backwards", "8/8/8/8/4P3/8/8/8", Ordinary{wp, E4, E3}, false},
		{"pawn double step off home rank", "8/8/8/8/8/4P3/8/8", Ordinary{wp, E3, E5}, false},
		{"pawn double step blocked", "8/8/8/8/8/4n3/4P3/8", Ordinary{wp, E2, E4}, false},
		{"pawn diagonal without capture", StartPlacement, Ordinary{wp, E2, D3}, false},
		{"pawn capture", "8/8/8/3p4/4P3/8/8/8", Ordinary{wp, E4, D5}, true},
		{"pawn straight capture", "8/8/8/4p3/4P3/8/8/8", Ordinary{wp, E4, E5}, false},
		{"knight jump", StartPlacement, Ordinary{NewPiece(White, Knight), G1, F3}, true},
		{"knight bad shape", StartPlacement, Ordinary{NewPiece(White, Knight), G1, G3}, false},
		{"bishop blocked", StartPlacement, Ordinary{NewPiece(White, Bishop), F1, C4}, false},
		{"bishop open", "8/8/8/8/8/8/8/5B2", Ordinary{NewPiece(White, Bishop), F1, A6}, true},
		{"rook open file", "8/8/8/8/8/8/8/R7", Ordinary{NewPiece(White, Rook), A1, A8}, true},
		{"rook blocked", "8/8/8/8/p7/8/8/R7", Ordinary{NewPiece(White, Rook), A1, A8}, false},
		{"rook captures blocker", "8/8/8/8/p7/8/8/R7", Ordinary{NewPiece(White, Rook), A1, A4}, true},
		{"queen diagonal", "8/8/8/8/8/8/8/3Q4", Ordinary{NewPiece(White, Queen), D1, H5}, true},
		{"queen bad shape", "8/8/8/8/8/8/8/3Q4", Ordinary{NewPiece(White, Queen), D1, E3}, false},
		{"king step", "8/8/8/8/8/8/8/4K3", Ordinary{NewPiece(White, King), E1, F2}, true},
		{"king two steps", "8/8/8/8/8/8/8/4K3", Ordinary{NewPiece(White, King), E1, G1}, false},
		{"same square", StartPlacement, Ordinary{wp, E2, E2}, false},
		{"wrong piece at source", StartPlacement, Ordinary{NewPiece(White, Knight), E2, E4}, false},
		{"empty source", StartPlacement, Ordinary{wp, E4, E5}, false},
		{"self capture", StartPlacement, Ordinary{NewPiece(White, Rook), A1, A2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustPlacement(t, tt.fen)
			if got := b.CheckOrdinary(tt.move); got != tt.want {
				t.Errorf("CheckOrdinary(%s) = %v, want %v", tt.move, got, tt.want)
			}
		})
	}
}

func TestApplyOrdinary(t *testing.T) {
	b := NewStarting()
	b.ApplyOrdinary(Ordinary{NewPiece(White, Pawn), E2, E4})
	if !b.At(E2).IsEmpty() {
		t.Error("e2 should be empty")
	}
	if !b.At(E4).Holds(NewPiece(White, Pawn)) {
		t.Error("e4 should hold the white pawn")
	}
	if b.Status() != InProgress {
		t.Errorf("status = %s", b.Status())
	}
}

func TestPromotion(t *testing.T) {
	b := mustPlacement(t, "8/4P3/8/8/8/8/8/8")
	b.ApplyOrdinary(Ordinary{NewPiece(White, Pawn), E7, E8})
	if !b.At(E8).Holds(NewPiece(White, Queen)) {
		t.Errorf("expected queen on e8, got %s", b.At(E8))
	}

	b = mustPlacement(t, "8/8/8/8/8/8/3p4/8")
	b.ApplyQuantum(Quantum{NewPiece(Black, Pawn), D2, NoSquare, D1})
	if !b.At(D1).Holds(NewPiece(Black, Queen)) {
		t.Errorf("expected black queen on d1, got %s", b.At(D1))
	}
}

func TestKingCaptureEndsGame(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		move Ordinary
		want Status
	}{
		{"white captures king", "4k3/4R3/8/8/8/8/8/4K3", Ordinary{NewPiece(White, Rook), E7, E8}, WhiteWins},
		{"black captures king", "4k3/8/8/8/8/8/4r3/4K3", Ordinary{NewPiece(Black, Rook), E2, E1}, BlackWins},
		{"last king captured", "8/8/8/8/8/8/4r3/4K3", Ordinary{NewPiece(Black, Rook), E2, E1}, Tie},
		{"both kings remain", "4k3/8/8/8/8/8/4r3/4K3", Ordinary{NewPiece(Black, Rook), E2, E3}, InProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustPlacement(t, tt.fen)
			b.ApplyOrdinary(tt.move)
			if b.Status() != tt.want {
				t.Errorf("status = %s, want %s", b.Status(), tt.want)
			}
		})
	}
}

func TestFinishedBoardKeepsStatus(t *testing.T) {
	b, err := ParsePlacement("4k3/4R3/8/8/8/8/8/4K3", BlackWins)
	if err != nil {
		t.Fatal(err)
	}
	b.ApplyOrdinary(Ordinary{NewPiece(White, Rook), E7, E8})
	if b.Status() != BlackWins {
		t.Errorf("status changed to %s", b.Status())
	}
	b.RegisterTie()
	b.RegisterVictory(White)
	if b.Status() != BlackWins {
		t.Errorf("status changed to %s", b.Status())
	}
}

func TestCheckQuantum(t *testing.T) {
	wp := NewPiece(White, Pawn)
	wr := NewPiece(White, Rook)
	wn := NewPiece(White, Knight)

	tests := []struct {
		name string
		fen  string
		move Quantum
		want bool
	}{
		{"pawn double step", StartPlacement, Quantum{wp, E2, NoSquare, E4}, true},
		{"pawn step", "8/8/8/3p4/4P3/8/8/8", Quantum{wp, E4, NoSquare, E5}, true},
		{"no capture", "8/8/8/3p4/4P3/8/8/8", Quantum{wp, E4, NoSquare, D5}, false},
		{"target occupied by enemy", "8/8/8/8/p7/8/8/R7", Quantum{wr, A1, NoSquare, A4}, false},
		{"rook via middle", "8/8/8/8/8/8/8/R7", Quantum{wr, A1, A5, H5}, true},
		{"middle occupied", "8/8/8/p7/8/8/8/R7", Quantum{wr, A1, A5, H5}, false},
		{"second leg blocked", "8/8/8/3p4/8/8/8/R7", Quantum{wr, A1, A5, H5}, false},
		{"middle equals target", "8/8/8/8/8/8/8/R7", Quantum{wr, A1, A5, A5}, false},
		{"knight two hops", StartPlacement, Quantum{wn, G1, F3, G5}, true},
		{"knight bad second hop", StartPlacement, Quantum{wn, G1, F3, F4}, false},
		{"source equals target", StartPlacement, Quantum{wp, E2, NoSquare, E2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustPlacement(t, tt.fen)
			if got := b.CheckQuantum(tt.move); got != tt.want {
				t.Errorf("CheckQuantum(%s) = %v, want %v", tt.move, got, tt.want)
			}
		})
	}
}

func TestCastle(t *testing.T) {
	tests := []struct {
		name       string
		fen        string
		move       Castle
		want       bool
		king       Square
		rook       Square
		emptyAfter []Square
	}{
		{"white right", "8/8/8/8/8/8/8/4K2R", Castle{White, CastleRight}, true, G1, F1, []Square{E1, H1}},
		{"white left", "8/8/8/8/8/8/8/R3K3", Castle{White, CastleLeft}, true, C1, D1, []Square{A1, B1, E1}},
		{"black right", "4k2r/8/8/8/8/8/8/8", Castle{Black, CastleRight}, true, G8, F8, []Square{E8, H8}},
		{"black left", "r3k3/8/8/8/8/8/8/8", Castle{Black, CastleLeft}, true, C8, D8, []Square{A8, B8, E8}},
		{"blocked", StartPlacement, Castle{White, CastleRight}, false, 0, 0, nil},
		{"left blocked on b", "8/8/8/8/8/8/8/RN2K3", Castle{White, CastleLeft}, false, 0, 0, nil},
		{"missing rook", "8/8/8/8/8/8/8/4K3", Castle{White, CastleRight}, false, 0, 0, nil},
		{"king moved", "8/8/8/8/8/8/8/5K1R", Castle{White, CastleRight}, false, 0, 0, nil},
		{"enemy rook", "8/8/8/8/8/8/8/4K2r", Castle{White, CastleRight}, false, 0, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustPlacement(t, tt.fen)
			if got := b.CheckCastle(tt.move); got != tt.want {
				t.Fatalf("CheckCastle(%s) = %v, want %v", tt.move, got, tt.want)
			}
			if !tt.want {
				return
			}
			b.ApplyCastle(tt.move)
			if !b.At(tt.king).Holds(NewPiece(tt.move.Player, King)) {
				t.Errorf("king not on %s", tt.king)
			}
			if !b.At(tt.rook).Holds(NewPiece(tt.move.Player, Rook)) {
				t.Errorf("rook not on %s", tt.rook)
			}
			for _, s := range tt.emptyAfter {
				if !b.At(s).IsEmpty() {
					t.Errorf("%s should be empty", s)
				}
			}
		})
	}
}

func TestApplyInapplicablePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	b := NewStarting()
	b.ApplyOrdinary(Ordinary{NewPiece(White, Pawn), E2, E5})
}

func TestCompare(t *testing.T) {
	a := NewStarting()
	b := NewStarting()
	if Compare(&a, &b) != 0 {
		t.Fatal("identical boards compare unequal")
	}
	b.ApplyOrdinary(Ordinary{NewPiece(White, Pawn), E2, E4})
	if c1, c2 := Compare(&a, &b), Compare(&b, &a); c1 == 0 || c1 != -c2 {
		t.Errorf("Compare not antisymmetric: %d, %d", c1, c2)
	}

	c := NewStarting()
	c.RegisterTie()
	if Compare(&a, &c) == 0 {
		t.Error("boards differing only by status compare equal")
	}
}

func TestParseSquare(t *testing.T) {
	tests := []struct {
		in   string
		want Square
		ok   bool
	}{
		{"a1", A1, true},
		{"h8", H8, true},
		{"E4", E4, true},
		{"i1", NoSquare, false},
		{"a9", NoSquare, false},
		{"e", NoSquare, false},
	}
	for _, tt := range tests {
		got, err := ParseSquare(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseSquare(%q) = %v, %v", tt.in, got, err)
		}
	}

	if _, err := SquareAt(8, 0); err == nil {
		t.Error("SquareAt(8, 0) should fail")
	}
	if s, err := SquareAt(4, 3); err != nil || s != sq(t, "e4") {
		t.Errorf("SquareAt(4, 3) = %v, %v", s, err)
	}
}

func TestParsePlacementErrors(t *testing.T) {
	for _, fen := range []string{"", "8/8/8", "9/8/8/8/8/8/8/8", "x7/8/8/8/8/8/8/8", "7/8/8/8/8/8/8/8"} {
		if _, err := ParsePlacement(fen, InProgress); err == nil {
			t.Errorf("ParsePlacement(%q) should fail", fen)
		}
	}
}
