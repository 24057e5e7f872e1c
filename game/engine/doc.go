// Package engine provides the core rules for a single tic-tac-toe match.
//
// The engine package implements:
//   - Move validation (range, occupancy, terminal state)
//   - Win detection across the eight fixed lines of the 3x3 grid
//   - Draw detection on a full board without a winning line
//   - Strict X/O turn alternation
//   - Reconstruction of a live board from a persisted snapshot
//
// Core Types:
//
// Board is the mutable state machine for one match. Snapshot is an immutable
// value copy of a Board that callers can hold and share freely. Mark is the
// content of a cell and doubles as the turn marker.
//
// Usage:
//
//	board := engine.New()
//
//	result, err := board.ApplyMove(4)
//	if err != nil {
//		// engine.ErrGameOver, engine.ErrInvalidPosition or engine.ErrCellOccupied
//	}
//
//	snap := board.Snapshot()
//	fmt.Println(snap)
//
// Persistence:
//
// EncodeCells and DecodeCells convert a board to and from the stored text
// layout: nine comma-joined tokens, each " ", "X" or "O". Load rebuilds a
// Board from those cells and a turn marker and re-derives the terminal
// verdict instead of trusting a stored flag.
//
// A Board is not safe for concurrent use. The session package serializes
// access to each live Board.
package engine
