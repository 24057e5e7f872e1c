package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wricardo/tictactoe/game/service"
)

// RecordOutcome adds one finished match to both players' counters.
// A nil winner counts as a draw for both. Either both rows change or neither does.
func (s *Store) RecordOutcome(ctx context.Context, player1ID, player2ID string, winnerID *string) error {
	if player1ID == player2ID {
		return service.ErrInvalidPlayers
	}
	if winnerID != nil && *winnerID != player1ID && *winnerID != player2ID {
		return service.ErrInvalidPlayers
	}

	outcome := func(playerID string) string {
		switch {
		case winnerID == nil:
			return "drawn"
		case *winnerID == playerID:
			return "won"
		default:
			return "lost"
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, playerID := range []string{player1ID, player2ID} {
			column := outcome(playerID)
			res := tx.Model(&statsModel{}).
				Where("player_id = ?", playerID).
				Updates(map[string]interface{}{
					"played": gorm.Expr("played + ?", 1),
					column:   gorm.Expr(column+" + ?", 1),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return service.ErrPlayerNotFound
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) {
			return err
		}
		return persistErr("record outcome", err)
	}
	return nil
}

// GetStats returns one player's counters
func (s *Store) GetStats(ctx context.Context, playerID string) (*service.Stats, error) {
	var row statsModel
	err := s.db.WithContext(ctx).
		Preload("Player").
		First(&row, "player_id = ?", playerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrPlayerNotFound
		}
		return nil, persistErr("get stats", err)
	}
	return row.toStats(), nil
}

// ListStats returns every player's counters, most wins first then by name
func (s *Store) ListStats(ctx context.Context) ([]*service.Stats, error) {
	var rows []statsModel
	err := s.db.WithContext(ctx).
		Preload("Player").
		Joins("JOIN players ON players.id = stats.player_id").
		Order("stats.won DESC").
		Order("players.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, persistErr("list stats", err)
	}

	stats := make([]*service.Stats, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, row.toStats())
	}
	return stats, nil
}
