package service

import (
	"context"

	"github.com/wricardo/tictactoe/game/engine"
)

// GameService defines all match-related operations
type GameService interface {
	// Players
	CreatePlayer(ctx context.Context, name string) (*Player, error)
	GetPlayer(ctx context.Context, playerID string) (*Player, error)
	GetPlayerByName(ctx context.Context, name string) (*Player, error)
	ListPlayers(ctx context.Context) ([]*Player, error)

	// Matches
	StartMatch(ctx context.Context, player1ID, player2ID string) (*MatchView, error)
	GetMatch(ctx context.Context, matchID string) (*MatchView, error)
	SubmitMove(ctx context.Context, matchID string, position int) (*MoveResult, error)
	ListActiveMatches(ctx context.Context) ([]*MatchRecord, error)
	EvictMatch(ctx context.Context, matchID string) error

	// Statistics
	GetStats(ctx context.Context, playerID string) (*Stats, error)
	ListStats(ctx context.Context) ([]*Stats, error)
}

// Loader rebuilds a session from durable storage after a cache miss
type Loader func(ctx context.Context, matchID string) (*Session, error)

// SessionStore holds the live session of every cached match.
// It is the mutual-exclusion boundary for a match.
type SessionStore interface {
	Get(matchID string) (*Session, bool)
	Put(sess *Session) *Session
	Load(ctx context.Context, matchID string, loader Loader) (*Session, error)
	Update(ctx context.Context, matchID string, loader Loader, fn func(*Session) error) error
	Evict(matchID string) bool
	List() []*Session
}

// Gateway is the durable record of players, matches and statistics.
// Every call is atomic on its own; there is no cross-call transaction.
type Gateway interface {
	CreatePlayer(ctx context.Context, name string) (*Player, error)
	GetPlayer(ctx context.Context, playerID string) (*Player, error)
	GetPlayerByName(ctx context.Context, name string) (*Player, error)
	ListPlayers(ctx context.Context) ([]*Player, error)

	CreateMatch(ctx context.Context, player1ID, player2ID string, cells engine.Cells, turn engine.Mark) (*MatchRecord, error)
	UpdateMatch(ctx context.Context, matchID string, cells engine.Cells, turn engine.Mark, status MatchStatus, winnerID *string) error
	GetMatch(ctx context.Context, matchID string) (*MatchRecord, error)
	ListActiveMatches(ctx context.Context) ([]*MatchRecord, error)

	RecordOutcome(ctx context.Context, player1ID, player2ID string, winnerID *string) error
	GetStats(ctx context.Context, playerID string) (*Stats, error)
	ListStats(ctx context.Context) ([]*Stats, error)
}
