package storage

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/hailam/quantumchess/internal/board"
	"github.com/hailam/quantumchess/internal/engine"
	"github.com/hailam/quantumchess/internal/quantum"
)

func openTestStorage(t *testing.T, opts ...Option) *Storage {
	t.Helper()
	s, err := OpenInMemory(opts...)
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func quantumGame(t *testing.T) *engine.Engine {
	t.Helper()
	eng := engine.NewEngine(quantum.WithSource(quantum.NewSource(1)))
	m := board.Quantum{Piece: board.NewPiece(board.White, board.Pawn), Source: board.E2, Middle: board.NoSquare, Target: board.E4}
	if err := eng.Submit(m); err != nil {
		t.Fatal(err)
	}
	return eng
}

func sameSnapshot(a, b engine.Snapshot) bool {
	if a.ActivePlayer != b.ActivePlayer || a.Status != b.Status || len(a.Harmonics) != len(b.Harmonics) {
		return false
	}
	for i := range a.Harmonics {
		if a.Harmonics[i] != b.Harmonics[i] {
			return false
		}
	}
	return true
}

func TestStorage(t *testing.T) {
	s := openTestStorage(t)

	t.Run("RoundTrip", func(t *testing.T) {
		snap := quantumGame(t).Snapshot()
		id, err := s.Insert(snap)
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		loaded, err := s.Load(id)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !sameSnapshot(snap, loaded) {
			t.Errorf("loaded snapshot differs:\n got %+v\nwant %+v", loaded, snap)
		}
	})

	t.Run("Update", func(t *testing.T) {
		eng := engine.NewEngine()
		id, err := s.Insert(eng.Snapshot())
		if err != nil {
			t.Fatal(err)
		}
		if err := eng.Submit(board.Capitulate{Player: board.White}); err != nil {
			t.Fatal(err)
		}
		if err := s.Update(id, eng.Snapshot()); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		loaded, err := s.Load(id)
		if err != nil {
			t.Fatal(err)
		}
		if loaded.Status != board.BlackWins {
			t.Errorf("Expected BlackWins, got %s", loaded.Status)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if _, err := s.Load("no-such-game"); !errors.Is(err, ErrGameNotFound) {
			t.Errorf("Load missing: %v", err)
		}
		if err := s.Update("no-such-game", engine.NewEngine().Snapshot()); !errors.Is(err, ErrGameNotFound) {
			t.Errorf("Update missing: %v", err)
		}
	})
}

func TestActiveGamesAndCleanup(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := openTestStorage(t, WithClock(func() time.Time { return now }))

	insertAt := func(at time.Time, snap engine.Snapshot) string {
		now = at
		id, err := s.Insert(snap)
		if err != nil {
			t.Fatal(err)
		}
		return id
	}

	base := now
	oldID := insertAt(base.Add(-48*time.Hour), engine.NewEngine().Snapshot())
	newID := insertAt(base, engine.NewEngine().Snapshot())

	finished := engine.NewEngine()
	if err := finished.Submit(board.AgreeToTie{Player: board.White}); err != nil {
		t.Fatal(err)
	}
	insertAt(base.Add(-time.Hour), finished.Snapshot())

	games, err := s.ActiveGames()
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 2 {
		t.Fatalf("Expected 2 active games, got %d", len(games))
	}
	if games[0].ID != newID || games[1].ID != oldID {
		t.Errorf("Expected newest first, got %s, %s", games[0].ID, games[1].ID)
	}
	if games[0].ActivePlayer != board.White {
		t.Errorf("Expected White to move, got %s", games[0].ActivePlayer)
	}

	removed, err := s.CleanOlderThan(base.Add(-24 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed game, got %d", removed)
	}
	if _, err := s.Load(oldID); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("Old game should be gone: %v", err)
	}
	if _, err := s.Load(newID); err != nil {
		t.Errorf("New game should survive: %v", err)
	}
}

func TestDocumentFormat(t *testing.T) {
	doc, err := encodeDocument(engine.NewEngine().Snapshot(), time.Unix(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)

	for _, want := range []string{
		`"active_player":"white"`,
		`"game_state":"game_still_going"`,
		`"harmonic_state":"game_still_going"`,
		`"degeneracy":1`,
		`"chessboard":[{"player":"white","piece":"rook"},{"player":"white","piece":"knight"}`,
		`null`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Document missing %s", want)
		}
	}
}

func TestDecodeReportsAllErrors(t *testing.T) {
	cells := make([]*pieceDocument, 64)
	cells[0] = &pieceDocument{Player: "green", Piece: "rook"}
	doc := gameDocument{
		ActivePlayer: "purple",
		GameState:    "paused",
		Harmonics: []harmonicDocument{
			{HarmonicState: "game_still_going", Degeneracy: 0, Chessboard: cells},
			{HarmonicState: "game_still_going", Degeneracy: 1, Chessboard: cells[:10]},
		},
	}

	_, err := decodeDocument(doc)
	if err == nil {
		t.Fatal("Expected decode error")
	}
	for _, want := range []string{"purple", "paused", "non-positive degeneracy", "green", "10 squares"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Error %q does not mention %s", err, want)
		}
	}
}

func TestDecodeRejectsInconsistentGame(t *testing.T) {
	doc, err := encodeDocument(quantumGame(t).Snapshot(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	doc.Harmonics[0].Degeneracy = 2
	doc.Harmonics[1].Degeneracy = 2

	if _, err := decodeDocument(doc); !errors.Is(err, quantum.ErrInvalidState) {
		t.Errorf("Expected invalid state, got %v", err)
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	id, err := s.Insert(engine.NewEngine().Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer s.Close()
	if _, err := s.Load(id); err != nil {
		t.Errorf("Game lost after reopen: %v", err)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}

	// Verify directory exists
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	dbDir, err := GetDatabaseDir()
	if err != nil {
		t.Fatalf("GetDatabaseDir failed: %v", err)
	}
	t.Logf("Database directory: %s", dbDir)
}
