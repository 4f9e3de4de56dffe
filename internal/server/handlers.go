package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hailam/quantumchess/internal/board"
	"github.com/hailam/quantumchess/internal/engine"
	"github.com/hailam/quantumchess/internal/notation"
	"github.com/hailam/quantumchess/internal/session"
	"github.com/hailam/quantumchess/internal/storage"
)

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type moveRequest struct {
	GameID string `json:"gameId"`
	notation.Request
}

type squareView struct {
	Player      string  `json:"player"`
	Piece       string  `json:"piece"`
	Probability float64 `json:"probability"`
}

type gameInfoResponse struct {
	GameID       string                 `json:"gameId"`
	GameState    string                 `json:"gameState"`
	ActivePlayer string                 `json:"activePlayer"`
	Harmonics    int                    `json:"harmonics"`
	Entropy      float64                `json:"entropy"`
	Squares      map[string]*squareView `json:"squares"`
}

type harmonicView struct {
	State  string `json:"state"`
	Weight uint64 `json:"weight"`
	FEN    string `json:"fen"`
}

type activeGameView struct {
	GameID       string    `json:"gameId"`
	ActivePlayer string    `json:"activePlayer"`
	LastModified time.Time `json:"lastModified"`
}

// statusFor maps a session error to its HTTP status. Move rejections are
// answered with 200 and success=false.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrInvalidID), errors.Is(err, session.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, notation.ErrParse),
		errors.Is(err, engine.ErrWrongTurn),
		errors.Is(err, engine.ErrInapplicable),
		errors.Is(err, engine.ErrGameOver):
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		msg = "internal error"
	}
	writeError(w, status, msg)
}

// ---- API: games ----

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, err := s.games.Create()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"gameId": id})
}

func (s *Server) handleSubmitMove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req moveRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := s.games.Submit(req.GameID, req.Request); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, response{Success: true, Message: "Move applied"})
}

func (s *Server) handleGameInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	info, err := s.games.Info(r.URL.Query().Get("gameId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := gameInfoResponse{
		GameID:       info.ID,
		GameState:    storage.StatusName(info.Status),
		ActivePlayer: storage.PlayerName(info.ActivePlayer),
		Harmonics:    info.Harmonics,
		Entropy:      info.Entropy,
		Squares:      make(map[string]*squareView, len(info.Squares)),
	}
	for i, sq := range info.Squares {
		var view *squareView
		if sq.Present {
			view = &squareView{
				Player:      storage.PlayerName(sq.Piece.Player),
				Piece:       storage.PieceName(sq.Piece.Type),
				Probability: sq.Probability,
			}
		}
		resp.Squares[board.Square(i).String()] = view
	}
	writeJSON(w, resp)
}

func (s *Server) handleHarmonics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	hs, err := s.games.Harmonics(r.URL.Query().Get("gameId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	views := make([]harmonicView, len(hs))
	for i, h := range hs {
		views[i] = harmonicView{
			State:  storage.StatusName(h.Board.Status()),
			Weight: h.Weight,
			FEN:    h.Board.FEN(),
		}
	}
	writeJSON(w, map[string]any{"harmonics": views})
}

func (s *Server) handleActiveGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	games, err := s.games.ActiveGames()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	views := make([]activeGameView, len(games))
	for i, g := range games {
		views[i] = activeGameView{
			GameID:       g.ID,
			ActivePlayer: storage.PlayerName(g.ActivePlayer),
			LastModified: g.LastModified,
		}
	}
	writeJSON(w, map[string]any{"games": views})
}
