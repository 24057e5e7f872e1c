package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EncodeCells serializes cells as nine comma-joined tokens ("X, ,O,...")
func EncodeCells(cells Cells) string {
	parts := make([]string, BoardSize)
	for i, c := range cells {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}

// DecodeCells parses the text written by EncodeCells
func DecodeCells(s string) (Cells, error) {
	var cells Cells
	parts := strings.Split(s, ",")
	if len(parts) != BoardSize {
		return cells, fmt.Errorf("%w: expected %d tokens, got %d", ErrInvalidBoard, BoardSize, len(parts))
	}
	for i, p := range parts {
		m := Mark(p)
		if !m.Valid() {
			return cells, fmt.Errorf("%w: token %d is %q", ErrInvalidBoard, i, p)
		}
		cells[i] = m
	}
	return cells, nil
}

// CellsFromStrings converts a board array such as ["X"," ","O",...]
func CellsFromStrings(board []string) (Cells, error) {
	var cells Cells
	if len(board) != BoardSize {
		return cells, fmt.Errorf("%w: expected %d cells, got %d", ErrInvalidBoard, BoardSize, len(board))
	}
	for i, v := range board {
		m := Mark(v)
		if !m.Valid() {
			return cells, fmt.Errorf("%w: cell %d is %q", ErrInvalidBoard, i, v)
		}
		cells[i] = m
	}
	return cells, nil
}

type snapshotJSON struct {
	Board    []string `json:"board"`
	Turn     Mark     `json:"turn"`
	Terminal bool     `json:"terminal"`
	Winner   *Mark    `json:"winner"`
	Status   Status   `json:"status"`
}

// MarshalJSON writes the board as a string array alongside the turn data
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		Board:    s.Board(),
		Turn:     s.Turn,
		Terminal: s.Terminal,
		Winner:   s.Winner,
		Status:   s.Status,
	})
}

// UnmarshalJSON reads the layout written by MarshalJSON
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cells, err := CellsFromStrings(raw.Board)
	if err != nil {
		return err
	}
	*s = Snapshot{
		Cells:    cells,
		Turn:     raw.Turn,
		Terminal: raw.Terminal,
		Winner:   raw.Winner,
		Status:   raw.Status,
	}
	return nil
}
