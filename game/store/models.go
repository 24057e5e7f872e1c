package store

import (
	"fmt"
	"time"

	"github.com/wricardo/tictactoe/game/engine"
	"github.com/wricardo/tictactoe/game/service"
)

type playerModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"uniqueIndex;not null;size:100"`
	CreatedAt time.Time `gorm:"not null"`
}

func (playerModel) TableName() string { return "players" }

func (m playerModel) toPlayer() *service.Player {
	return &service.Player{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt}
}

type matchModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Player1ID string    `gorm:"column:player1_id;index;not null;size:36"`
	Player2ID string    `gorm:"column:player2_id;index;not null;size:36"`
	Board     string    `gorm:"not null;size:64"` // comma-joined cells
	Turn      string    `gorm:"not null;size:1"`
	Status    string    `gorm:"index;not null;size:16"`
	WinnerID  *string   `gorm:"size:36"`
	StartedAt time.Time `gorm:"index;not null"`
	EndedAt   *time.Time

	Player1 playerModel `gorm:"foreignKey:Player1ID"`
	Player2 playerModel `gorm:"foreignKey:Player2ID"`
}

func (matchModel) TableName() string { return "matches" }

func (m matchModel) toRecord() (*service.MatchRecord, error) {
	cells, err := engine.DecodeCells(m.Board)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", m.ID, err)
	}
	return &service.MatchRecord{
		ID:          m.ID,
		Player1ID:   m.Player1ID,
		Player2ID:   m.Player2ID,
		Player1Name: m.Player1.Name,
		Player2Name: m.Player2.Name,
		Cells:       cells,
		Turn:        engine.Mark(m.Turn),
		Status:      service.MatchStatus(m.Status),
		WinnerID:    m.WinnerID,
		StartedAt:   m.StartedAt,
		EndedAt:     m.EndedAt,
	}, nil
}

type statsModel struct {
	PlayerID string `gorm:"primaryKey;size:36"`
	Played   int    `gorm:"not null;default:0"`
	Won      int    `gorm:"not null;default:0"`
	Lost     int    `gorm:"not null;default:0"`
	Drawn    int    `gorm:"not null;default:0"`

	Player playerModel `gorm:"foreignKey:PlayerID"`
}

func (statsModel) TableName() string { return "stats" }

func (m statsModel) toStats() *service.Stats {
	return &service.Stats{
		PlayerID:   m.PlayerID,
		PlayerName: m.Player.Name,
		Played:     m.Played,
		Won:        m.Won,
		Lost:       m.Lost,
		Drawn:      m.Drawn,
	}
}
