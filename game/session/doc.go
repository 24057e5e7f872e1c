// Package session provides the in-memory session store for live matches.
//
// The session package implements:
//   - Thread-safe session registration and lookup
//   - Deduplicated rehydration of uncached matches
//   - Per-match mutual exclusion for moves
//   - Idle and capacity based eviction
//
// Core Types:
//
// Manager is the session store. It satisfies service.SessionStore and holds
// one service.Session per cached match.
//
// Concurrency:
//
// Moves on the same match are serialized by the session's own lock; moves on
// different matches never wait on each other. Concurrent cache misses for one
// match share a single loader call, so every caller ends up holding the same
// session. Eviction marks the session before removing it, and Update reloads
// whenever it acquires a session that was evicted in the meantime.
//
// Usage:
//
//	manager := session.NewManager(session.WithCapacity(1000), session.WithLogger(logger))
//
//	sess, err := manager.Load(ctx, matchID, loader)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	err = manager.Update(ctx, matchID, loader, func(s *service.Session) error {
//		_, err := s.Board.ApplyMove(4)
//		return err
//	})
//
// Cleanup:
//
// CleanupExpiredSessions drops sessions that have not been touched within a
// given age. Sessions in the middle of a move are skipped until the next run.
// Dropping a session never loses state; the next access reloads it.
package session
