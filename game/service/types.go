package service

import (
	"fmt"
	"time"

	"github.com/wricardo/tictactoe/game/engine"
)

// MatchStatus is the durable lifecycle state of a match
type MatchStatus string

const (
	MatchInProgress MatchStatus = "in_progress"
	MatchFinished   MatchStatus = "finished"
)

// Player is a registered participant
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MatchRecord is the durable form of a match.
// WinnerID is nil for a draw and while in progress.
type MatchRecord struct {
	ID          string       `json:"id"`
	Player1ID   string       `json:"player1_id"`
	Player2ID   string       `json:"player2_id"`
	Player1Name string       `json:"player1_name,omitempty"`
	Player2Name string       `json:"player2_name,omitempty"`
	Cells       engine.Cells `json:"board"`
	Turn        engine.Mark  `json:"turn"`
	Status      MatchStatus  `json:"status"`
	WinnerID    *string      `json:"winner_id"`
	StartedAt   time.Time    `json:"started_at"`
	EndedAt     *time.Time   `json:"ended_at,omitempty"`
}

// Stats holds the per-player counters; Played == Won + Lost + Drawn
type Stats struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Played     int    `json:"played"`
	Won        int    `json:"won"`
	Lost       int    `json:"lost"`
	Drawn      int    `json:"drawn"`
}

// GameState is the board as returned to callers
type GameState struct {
	Board          []string     `json:"board"`
	Turn           engine.Mark  `json:"turn"`
	Winner         *engine.Mark `json:"winner"`
	Terminal       bool         `json:"terminal"`
	AvailableMoves []int        `json:"available_moves"`
}

// NewGameState converts an engine snapshot
func NewGameState(snap engine.Snapshot) GameState {
	moves := snap.AvailableMoves()
	if moves == nil {
		moves = []int{}
	}
	return GameState{
		Board:          snap.Board(),
		Turn:           snap.Turn,
		Winner:         snap.Winner,
		Terminal:       snap.Terminal,
		AvailableMoves: moves,
	}
}

// MatchView composes a match's players with its live board
type MatchView struct {
	MatchID  string      `json:"match_id"`
	Player1  *Player     `json:"player1"`
	Player2  *Player     `json:"player2"`
	Status   MatchStatus `json:"status"`
	WinnerID *string     `json:"winner_id"`
	GameState
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	MatchID  string        `json:"match_id"`
	Position int           `json:"position"`
	Result   engine.Result `json:"result"`
	Message  string        `json:"message"`
	Status   MatchStatus   `json:"status"`
	WinnerID *string       `json:"winner_id"`
	GameState
}

// resultMessage mirrors the user-facing text for each outcome
func resultMessage(res engine.Result, mover engine.Mark) string {
	switch res {
	case engine.ResultWin:
		return fmt.Sprintf("Player %s wins!", mover)
	case engine.ResultDraw:
		return "It's a draw!"
	default:
		return "Valid move"
	}
}
