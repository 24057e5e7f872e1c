package engine

import "fmt"

// Board is the state machine for one match
type Board struct {
	cells    Cells
	turn     Mark
	terminal bool
	winner   Mark
}

// New creates an empty board with X to move
func New() *Board {
	return &Board{
		cells: EmptyCells(),
		turn:  X,
	}
}

// Load rebuilds a board from persisted cells and turn marker.
// The terminal verdict is derived from the cells, never stored.
func Load(cells Cells, turn Mark) (*Board, error) {
	if !turn.IsPlayer() {
		return nil, fmt.Errorf("%w: turn %q", ErrInvalidState, string(turn))
	}
	for i, c := range cells {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: cell %d holds %q", ErrInvalidState, i, string(c))
		}
	}

	b := &Board{cells: cells, turn: turn}
	if mark, ok := b.winningMark(); ok {
		b.terminal = true
		b.winner = mark
	} else if b.full() {
		b.terminal = true
	}
	return b, nil
}

// ApplyMove places the current turn's mark at pos.
// Failed moves leave the board untouched.
func (b *Board) ApplyMove(pos int) (Result, error) {
	if b.terminal {
		return "", ErrGameOver
	}
	if pos < 0 || pos >= BoardSize {
		return "", fmt.Errorf("%w: %d is outside 0-8", ErrInvalidPosition, pos)
	}
	if b.cells[pos] != Empty {
		return "", fmt.Errorf("%w: position %d", ErrCellOccupied, pos)
	}

	b.cells[pos] = b.turn

	// win before draw: a full board with a line is a win
	if _, ok := b.winningMark(); ok {
		b.terminal = true
		b.winner = b.turn
		return ResultWin, nil
	}
	if b.full() {
		b.terminal = true
		return ResultDraw, nil
	}

	b.turn = b.turn.Opponent()
	return ResultContinue, nil
}

// IsTerminal reports whether the match is won or drawn
func (b *Board) IsTerminal() bool {
	return b.terminal
}

// Turn returns the mark to move next
func (b *Board) Turn() Mark {
	return b.turn
}

// Winner returns the winning mark, if any
func (b *Board) Winner() (Mark, bool) {
	if b.winner == "" {
		return "", false
	}
	return b.winner, true
}

// Status returns the lifecycle state of the board
func (b *Board) Status() Status {
	switch {
	case !b.terminal:
		return StatusInProgress
	case b.winner != "":
		return StatusWon
	default:
		return StatusDrawn
	}
}

// Snapshot returns an immutable copy of the current state
func (b *Board) Snapshot() Snapshot {
	snap := Snapshot{
		Cells:    b.cells,
		Turn:     b.turn,
		Terminal: b.terminal,
		Status:   b.Status(),
	}
	if b.winner != "" {
		w := b.winner
		snap.Winner = &w
	}
	return snap
}

func (b *Board) winningMark() (Mark, bool) {
	for _, line := range lines {
		first := b.cells[line[0]]
		if first != Empty && first == b.cells[line[1]] && first == b.cells[line[2]] {
			return first, true
		}
	}
	return "", false
}

func (b *Board) full() bool {
	for _, c := range b.cells {
		if c == Empty {
			return false
		}
	}
	return true
}
