package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCells(t *testing.T) {
	assert.Equal(t, " , , , , , , , , ", EncodeCells(EmptyCells()))

	cells := EmptyCells()
	cells[0], cells[1], cells[2] = X, X, X
	cells[3], cells[4] = O, O
	assert.Equal(t, "X,X,X,O,O, , , , ", EncodeCells(cells))
}

func TestDecodeCells_RoundTrip(t *testing.T) {
	for _, text := range []string{
		" , , , , , , , , ",
		"X, , , , , , , , ",
		"X,O,X,X,O,O,O,X,X",
		" , , , ,O, , , ,X",
	} {
		cells, err := DecodeCells(text)
		require.NoError(t, err, text)
		assert.Equal(t, text, EncodeCells(cells))
	}
}

func TestDecodeCells_Invalid(t *testing.T) {
	for _, text := range []string{
		"",
		"X,O",
		"X,O,X,X,O,O,O,X,X,X",
		"x, , , , , , , , ",
		"XX, , , , , , , , ",
		",,,,,,,,",
	} {
		_, err := DecodeCells(text)
		assert.ErrorIs(t, err, ErrInvalidBoard, "input %q", text)
	}
}

func TestCellsFromStrings(t *testing.T) {
	cells, err := CellsFromStrings([]string{"X", " ", " ", " ", " ", " ", " ", " ", " "})
	require.NoError(t, err)
	assert.Equal(t, X, cells[0])

	_, err = CellsFromStrings([]string{"X"})
	assert.ErrorIs(t, err, ErrInvalidBoard)
}

func TestSnapshot_JSON(t *testing.T) {
	b := New()
	for _, pos := range []int{0, 3, 1, 4, 2} {
		_, err := b.ApplyMove(pos)
		require.NoError(t, err)
	}

	data, err := json.Marshal(b.Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"board": ["X","X","X","O","O"," "," "," "," "],
		"turn": "X",
		"terminal": true,
		"winner": "X",
		"status": "won"
	}`, string(data))

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, b.Snapshot(), decoded)
}

func TestSnapshot_JSONNullWinner(t *testing.T) {
	data, err := json.Marshal(New().Snapshot())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "winner")
	assert.Nil(t, raw["winner"])
}
