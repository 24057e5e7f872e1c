package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wricardo/tictactoe/game/engine"
)

// gameServiceImpl implements the GameService interface.
// It owns neither the live sessions nor the durable records, it only mediates.
type gameServiceImpl struct {
	sessions SessionStore
	store    Gateway
	logger   *zap.Logger
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionStore, store Gateway, logger *zap.Logger) GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gameServiceImpl{
		sessions: sessions,
		store:    store,
		logger:   logger,
	}
}

// CreatePlayer registers a new player with zeroed statistics
func (s *gameServiceImpl) CreatePlayer(ctx context.Context, name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	player, err := s.store.CreatePlayer(ctx, name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("player created", zap.String("player_id", player.ID), zap.String("name", player.Name))
	return player, nil
}

// GetPlayer fetches a player by ID
func (s *gameServiceImpl) GetPlayer(ctx context.Context, playerID string) (*Player, error) {
	return s.store.GetPlayer(ctx, playerID)
}

// GetPlayerByName fetches a player by exact, trimmed name
func (s *gameServiceImpl) GetPlayerByName(ctx context.Context, name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	return s.store.GetPlayerByName(ctx, name)
}

// ListPlayers returns every player ordered by name
func (s *gameServiceImpl) ListPlayers(ctx context.Context) ([]*Player, error) {
	return s.store.ListPlayers(ctx)
}

// StartMatch creates a durable match and registers its fresh board
func (s *gameServiceImpl) StartMatch(ctx context.Context, player1ID, player2ID string) (*MatchView, error) {
	board := engine.New()
	snap := board.Snapshot()

	rec, err := s.store.CreateMatch(ctx, player1ID, player2ID, snap.Cells, snap.Turn)
	if err != nil {
		return nil, err
	}

	sess := s.sessions.Put(NewSession(rec.ID, rec.Player1ID, rec.Player2ID, board))

	s.logger.Info("match started",
		zap.String("match_id", rec.ID),
		zap.String("player1_id", rec.Player1ID),
		zap.String("player2_id", rec.Player2ID))

	return s.view(ctx, sess)
}

// GetMatch returns the live board of a match, rehydrating it on a cache miss
func (s *gameServiceImpl) GetMatch(ctx context.Context, matchID string) (*MatchView, error) {
	sess, err := s.sessions.Load(ctx, matchID, s.loadSession)
	if err != nil {
		return nil, err
	}
	sess.Touch()

	return s.view(ctx, sess)
}

// SubmitMove applies a move under the match lock and persists the outcome.
//
// Board validation errors are returned untouched and nothing is written.
// On success the board is persisted first and, when the move ends the match,
// the statistics are committed immediately afterwards. A crash between the two
// writes under-counts that match; the window is kept to two back-to-back calls.
func (s *gameServiceImpl) SubmitMove(ctx context.Context, matchID string, position int) (*MoveResult, error) {
	var result *MoveResult

	err := s.sessions.Update(ctx, matchID, s.loadSession, func(sess *Session) error {
		sess.Touch()
		mover := sess.Board.Turn()

		res, err := sess.Board.ApplyMove(position)
		if err != nil {
			return err
		}

		snap := sess.Board.Snapshot()
		status := MatchInProgress
		if snap.Terminal {
			status = MatchFinished
		}
		winnerID := sess.winnerID(snap)

		if err := s.store.UpdateMatch(ctx, matchID, snap.Cells, snap.Turn, status, winnerID); err != nil {
			// the board is ahead of the durable record; drop it so the next access rehydrates
			sess.MarkEvicted()
			s.logger.Error("persist move failed, session evicted",
				zap.String("match_id", matchID),
				zap.Int("position", position),
				zap.Error(err))
			return err
		}
		sess.Publish()

		if snap.Terminal {
			if err := s.store.RecordOutcome(ctx, sess.Player1ID, sess.Player2ID, winnerID); err != nil {
				s.logger.Error("match finished but statistics were not recorded",
					zap.String("match_id", matchID),
					zap.String("player1_id", sess.Player1ID),
					zap.String("player2_id", sess.Player2ID),
					zap.Error(err))
				return fmt.Errorf("record outcome for match %s: %w", matchID, err)
			}
			s.logger.Info("match finished",
				zap.String("match_id", matchID),
				zap.String("result", string(res)),
				zap.Stringp("winner_id", winnerID))
		}

		result = &MoveResult{
			MatchID:   matchID,
			Position:  position,
			Result:    res,
			Message:   resultMessage(res, mover),
			Status:    status,
			WinnerID:  winnerID,
			GameState: NewGameState(snap),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("move applied",
		zap.String("match_id", matchID),
		zap.Int("position", position),
		zap.String("result", string(result.Result)))
	return result, nil
}

// ListActiveMatches returns in-progress matches, newest first
func (s *gameServiceImpl) ListActiveMatches(ctx context.Context) ([]*MatchRecord, error) {
	return s.store.ListActiveMatches(ctx)
}

// EvictMatch drops the cached board of a match; the durable record is untouched
func (s *gameServiceImpl) EvictMatch(ctx context.Context, matchID string) error {
	if !s.sessions.Evict(matchID) {
		// not cached: only an error if the match does not exist at all
		if _, err := s.store.GetMatch(ctx, matchID); err != nil {
			return err
		}
		return nil
	}
	s.logger.Info("match session evicted", zap.String("match_id", matchID))
	return nil
}

// GetStats returns one player's counters
func (s *gameServiceImpl) GetStats(ctx context.Context, playerID string) (*Stats, error) {
	return s.store.GetStats(ctx, playerID)
}

// ListStats returns every player's counters ordered by wins
func (s *gameServiceImpl) ListStats(ctx context.Context) ([]*Stats, error) {
	return s.store.ListStats(ctx)
}

// loadSession rebuilds a session from its durable record
func (s *gameServiceImpl) loadSession(ctx context.Context, matchID string) (*Session, error) {
	rec, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	board, err := engine.Load(rec.Cells, rec.Turn)
	if err != nil {
		return nil, fmt.Errorf("rehydrate match %s: %w", matchID, err)
	}

	s.logger.Info("match rehydrated",
		zap.String("match_id", matchID),
		zap.Bool("terminal", board.IsTerminal()))
	return NewSession(rec.ID, rec.Player1ID, rec.Player2ID, board), nil
}

// view composes the players of a session with its current snapshot
func (s *gameServiceImpl) view(ctx context.Context, sess *Session) (*MatchView, error) {
	player1, err := s.store.GetPlayer(ctx, sess.Player1ID)
	if err != nil {
		return nil, err
	}
	player2, err := s.store.GetPlayer(ctx, sess.Player2ID)
	if err != nil {
		return nil, err
	}

	snap := sess.Snapshot()
	status := MatchInProgress
	if snap.Terminal {
		status = MatchFinished
	}

	return &MatchView{
		MatchID:   sess.ID,
		Player1:   player1,
		Player2:   player2,
		Status:    status,
		WinnerID:  sess.winnerID(snap),
		GameState: NewGameState(snap),
	}, nil
}
