package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wricardo/tictactoe/game/service"
)

// CreatePlayer inserts a player together with a zeroed statistics row
func (s *Store) CreatePlayer(ctx context.Context, name string) (*service.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, service.ErrInvalidName
	}

	player := playerModel{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&player).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&statsModel{PlayerID: player.ID}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, service.ErrDuplicateName
		}
		return nil, persistErr("create player", err)
	}

	return player.toPlayer(), nil
}

// GetPlayer fetches a player by ID
func (s *Store) GetPlayer(ctx context.Context, playerID string) (*service.Player, error) {
	var player playerModel
	if err := s.db.WithContext(ctx).First(&player, "id = ?", playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrPlayerNotFound
		}
		return nil, persistErr("get player", err)
	}
	return player.toPlayer(), nil
}

// GetPlayerByName fetches a player by exact name
func (s *Store) GetPlayerByName(ctx context.Context, name string) (*service.Player, error) {
	var player playerModel
	if err := s.db.WithContext(ctx).First(&player, "name = ?", strings.TrimSpace(name)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrPlayerNotFound
		}
		return nil, persistErr("get player by name", err)
	}
	return player.toPlayer(), nil
}

// ListPlayers returns every player ordered by name
func (s *Store) ListPlayers(ctx context.Context) ([]*service.Player, error) {
	var rows []playerModel
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, persistErr("list players", err)
	}

	players := make([]*service.Player, 0, len(rows))
	for _, row := range rows {
		players = append(players, row.toPlayer())
	}
	return players, nil
}
