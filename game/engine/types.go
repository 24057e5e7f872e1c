package engine

import (
	"errors"
	"strings"
)

// Mark is the content of a cell and the turn marker
type Mark string

const (
	Empty Mark = " "
	X     Mark = "X"
	O     Mark = "O"

	// BoardSize is the number of cells on the board
	BoardSize = 9
)

// Result is the outcome of a successful move
type Result string

const (
	ResultContinue Result = "continue"
	ResultWin      Result = "win"
	ResultDraw     Result = "draw"
)

// Status is the lifecycle state of a board
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDrawn      Status = "drawn"
)

var (
	ErrGameOver        = errors.New("game is already over")
	ErrInvalidPosition = errors.New("invalid position")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrInvalidState    = errors.New("invalid board state")
	ErrInvalidBoard    = errors.New("invalid board encoding")
)

// lines lists the rows, columns and diagonals of the grid
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

// Cells is the fixed-size cell array of a board
type Cells [BoardSize]Mark

// EmptyCells returns a board with every cell empty
func EmptyCells() Cells {
	var c Cells
	for i := range c {
		c[i] = Empty
	}
	return c
}

// Valid reports whether m is a cell value
func (m Mark) Valid() bool {
	return m == Empty || m == X || m == O
}

// IsPlayer reports whether m is X or O
func (m Mark) IsPlayer() bool {
	return m == X || m == O
}

// Opponent returns the other player's mark
func (m Mark) Opponent() Mark {
	if m == X {
		return O
	}
	return X
}

// Snapshot is an immutable copy of a board's state.
// Winner is nil while in progress and for a draw.
type Snapshot struct {
	Cells    Cells
	Turn     Mark
	Terminal bool
	Winner   *Mark
	Status   Status
}

// Board returns the cells as a slice of strings in board order
func (s Snapshot) Board() []string {
	out := make([]string, BoardSize)
	for i, c := range s.Cells {
		out[i] = string(c)
	}
	return out
}

// AvailableMoves returns the indices of empty cells, or nil once terminal
func (s Snapshot) AvailableMoves() []int {
	if s.Terminal {
		return nil
	}
	moves := make([]int, 0, BoardSize)
	for i, c := range s.Cells {
		if c == Empty {
			moves = append(moves, i)
		}
	}
	return moves
}

// String renders the board as a 3x3 text grid
func (s Snapshot) String() string {
	var b strings.Builder
	for row := 0; row < 3; row++ {
		i := row * 3
		b.WriteString(" " + string(s.Cells[i]) + " | " + string(s.Cells[i+1]) + " | " + string(s.Cells[i+2]) + " \n")
		if row < 2 {
			b.WriteString("-----------\n")
		}
	}
	return b.String()
}
