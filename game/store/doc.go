// Package store is the durable record of players, matches and statistics.
//
// Store implements service.Gateway on top of gorm. SQLite is used for local
// runs and tests, PostgreSQL in production. Each method is a single statement
// or a single transaction; nothing spans two calls.
//
// Boards are stored as nine comma-joined cells in play order, with the side
// to move kept alongside. Whether a match is over is never trusted from the
// row alone: the engine re-derives it on load.
//
// Errors map to the service sentinels (ErrPlayerNotFound, ErrMatchNotFound,
// ErrDuplicateName, ErrInvalidPlayers). Any other driver failure is returned
// as a *service.PersistenceError.
package store
