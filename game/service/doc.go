// Package service coordinates tic-tac-toe matches between registered players.
//
// The service package implements:
//   - Player registration and lookup
//   - Match start, move submission and rehydration
//   - Result recording into per-player statistics
//
// Core Interfaces:
//
// GameService is the entry point used by every transport.
// SessionStore keeps the live board of each cached match and serializes
// moves on the same match.
// Gateway is the durable record of players, matches and statistics.
//
// Architecture:
//
// A move is validated by the board engine while the match lock is held,
// persisted through the Gateway, and only then published to readers. When a
// move ends the match, both players' statistics are updated right after the
// board write. If the board write fails the cached session is dropped so the
// next access reloads the last durable state.
//
// Usage:
//
//	db, err := store.Open(store.DriverSQLite, "tictactoe.db", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	gameService := service.NewGameService(session.NewManager(), db, logger)
//
//	ana, _ := gameService.CreatePlayer(ctx, "Ana")
//	beto, _ := gameService.CreatePlayer(ctx, "Beto")
//	match, _ := gameService.StartMatch(ctx, ana.ID, beto.ID)
//
//	result, err := gameService.SubmitMove(ctx, match.MatchID, 4)
package service
