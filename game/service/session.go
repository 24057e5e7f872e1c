package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/wricardo/tictactoe/game/engine"
)

// Session is the live, authoritative board of one match plus the
// participants needed to resolve a winning mark to a player.
//
// Board may only be touched while holding the session lock. Snapshot is
// safe to call at any time.
type Session struct {
	ID        string
	Player1ID string
	Player2ID string
	Board     *engine.Board
	CreatedAt time.Time

	mu       sync.Mutex
	evicted  atomic.Bool
	snapshot atomic.Pointer[engine.Snapshot]
	accessed atomic.Int64
}

// NewSession wraps a board for the given match
func NewSession(matchID, player1ID, player2ID string, board *engine.Board) *Session {
	now := time.Now()
	s := &Session{
		ID:        matchID,
		Player1ID: player1ID,
		Player2ID: player2ID,
		Board:     board,
		CreatedAt: now,
	}
	s.accessed.Store(now.UnixNano())
	s.Publish()
	return s
}

// Lock acquires exclusive access to the board
func (s *Session) Lock() { s.mu.Lock() }

// TryLock acquires the lock only if it is free
func (s *Session) TryLock() bool { return s.mu.TryLock() }

// Unlock releases the board
func (s *Session) Unlock() { s.mu.Unlock() }

// MarkEvicted flags the session as no longer authoritative.
// Holders of a stale pointer must reload after seeing the flag.
func (s *Session) MarkEvicted() { s.evicted.Store(true) }

// Evicted reports whether the session was dropped from its store
func (s *Session) Evicted() bool { return s.evicted.Load() }

// Publish refreshes the lock-free snapshot from the board; call with the lock held
func (s *Session) Publish() {
	snap := s.Board.Snapshot()
	s.snapshot.Store(&snap)
}

// Snapshot returns the last published board state
func (s *Session) Snapshot() engine.Snapshot {
	return *s.snapshot.Load()
}

// Touch records an access
func (s *Session) Touch() { s.accessed.Store(time.Now().UnixNano()) }

// LastAccessedAt returns the time of the last access
func (s *Session) LastAccessedAt() time.Time {
	return time.Unix(0, s.accessed.Load())
}

// PlayerFor maps a mark to the player holding it: X is player 1, O is player 2
func (s *Session) PlayerFor(mark engine.Mark) string {
	if mark == engine.O {
		return s.Player2ID
	}
	return s.Player1ID
}

// winnerID resolves the winning player of a snapshot, nil for draws and live games
func (s *Session) winnerID(snap engine.Snapshot) *string {
	if snap.Winner == nil {
		return nil
	}
	id := s.PlayerFor(*snap.Winner)
	return &id
}
