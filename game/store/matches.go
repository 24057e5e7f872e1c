package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wricardo/tictactoe/game/engine"
	"github.com/wricardo/tictactoe/game/service"
)

// CreateMatch records a new in-progress match between two distinct, existing players
func (s *Store) CreateMatch(ctx context.Context, player1ID, player2ID string, cells engine.Cells, turn engine.Mark) (*service.MatchRecord, error) {
	if player1ID == "" || player2ID == "" || player1ID == player2ID {
		return nil, service.ErrInvalidPlayers
	}

	match := matchModel{
		ID:        uuid.NewString(),
		Player1ID: player1ID,
		Player2ID: player2ID,
		Board:     engine.EncodeCells(cells),
		Turn:      string(turn),
		Status:    string(service.MatchInProgress),
		StartedAt: time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found int64
		if err := tx.Model(&playerModel{}).
			Where("id IN ?", []string{player1ID, player2ID}).
			Count(&found).Error; err != nil {
			return err
		}
		if found != 2 {
			return service.ErrInvalidPlayers
		}
		return tx.Omit(clause.Associations).Create(&match).Error
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidPlayers) {
			return nil, err
		}
		return nil, persistErr("create match", err)
	}

	return s.GetMatch(ctx, match.ID)
}

// UpdateMatch overwrites the board, turn, status and winner of a match in one statement
func (s *Store) UpdateMatch(ctx context.Context, matchID string, cells engine.Cells, turn engine.Mark, status service.MatchStatus, winnerID *string) error {
	updates := map[string]interface{}{
		"board":     engine.EncodeCells(cells),
		"turn":      string(turn),
		"status":    string(status),
		"winner_id": winnerID,
	}
	if status == service.MatchFinished {
		updates["ended_at"] = time.Now().UTC()
	}

	res := s.db.WithContext(ctx).Model(&matchModel{}).Where("id = ?", matchID).Updates(updates)
	if res.Error != nil {
		return persistErr("update match", res.Error)
	}
	if res.RowsAffected == 0 {
		return service.ErrMatchNotFound
	}
	return nil
}

// GetMatch fetches a match with both player names
func (s *Store) GetMatch(ctx context.Context, matchID string) (*service.MatchRecord, error) {
	var match matchModel
	err := s.db.WithContext(ctx).
		Preload("Player1").
		Preload("Player2").
		First(&match, "id = ?", matchID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrMatchNotFound
		}
		return nil, persistErr("get match", err)
	}

	rec, err := match.toRecord()
	if err != nil {
		return nil, persistErr("decode match", err)
	}
	return rec, nil
}

// ListActiveMatches returns in-progress matches, newest first
func (s *Store) ListActiveMatches(ctx context.Context) ([]*service.MatchRecord, error) {
	var rows []matchModel
	err := s.db.WithContext(ctx).
		Preload("Player1").
		Preload("Player2").
		Where("status = ?", string(service.MatchInProgress)).
		Order("started_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, persistErr("list active matches", err)
	}

	records := make([]*service.MatchRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, persistErr("decode match", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
