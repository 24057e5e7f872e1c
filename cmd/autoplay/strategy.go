package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/wricardo/tictactoe/game/engine"
	"github.com/wricardo/tictactoe/game/service"
)

// Strategy picks the next position for the side to move
type Strategy interface {
	Name() string
	NextMove(state service.GameState) (int, error)
}

// NewStrategy resolves a strategy by name
func NewStrategy(name string, seed uint64) (Strategy, error) {
	switch name {
	case "minimax":
		return NewMinimaxStrategy(), nil
	case "random":
		return NewRandomStrategy(seed), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want minimax or random)", name)
	}
}

// RandomStrategy plays any available cell
type RandomStrategy struct {
	rng *rand.Rand
}

func NewRandomStrategy(seed uint64) *RandomStrategy {
	return &RandomStrategy{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *RandomStrategy) Name() string { return "random" }

func (s *RandomStrategy) NextMove(state service.GameState) (int, error) {
	if len(state.AvailableMoves) == 0 {
		return 0, engine.ErrGameOver
	}
	return state.AvailableMoves[s.rng.IntN(len(state.AvailableMoves))], nil
}

// MinimaxStrategy plays perfectly: it never loses and wins whenever the opponent errs.
// Scores are memoized per board, which also determines whose turn it is.
type MinimaxStrategy struct {
	memo map[engine.Cells]int
}

func NewMinimaxStrategy() *MinimaxStrategy {
	return &MinimaxStrategy{memo: make(map[engine.Cells]int)}
}

func (s *MinimaxStrategy) Name() string { return "minimax" }

func (s *MinimaxStrategy) NextMove(state service.GameState) (int, error) {
	if state.Terminal || len(state.AvailableMoves) == 0 {
		return 0, engine.ErrGameOver
	}
	cells, err := engine.CellsFromStrings(state.Board)
	if err != nil {
		return 0, err
	}

	best, bestScore := -1, -2
	for _, pos := range state.AvailableMoves {
		score, err := s.scoreMove(cells, state.Turn, pos)
		if err != nil {
			return 0, err
		}
		if score > bestScore {
			best, bestScore = pos, score
		}
	}
	return best, nil
}

// scoreMove returns +1 if placing turn at pos wins with best play, 0 for a draw, -1 for a loss
func (s *MinimaxStrategy) scoreMove(cells engine.Cells, turn engine.Mark, pos int) (int, error) {
	board, err := engine.Load(cells, turn)
	if err != nil {
		return 0, err
	}
	result, err := board.ApplyMove(pos)
	if err != nil {
		return 0, err
	}

	switch result {
	case engine.ResultWin:
		return 1, nil
	case engine.ResultDraw:
		return 0, nil
	}

	next := board.Snapshot()
	reply, err := s.bestScore(next.Cells, next.Turn)
	if err != nil {
		return 0, err
	}
	return -reply, nil
}

// bestScore is the value of a non-terminal position for the side to move
func (s *MinimaxStrategy) bestScore(cells engine.Cells, turn engine.Mark) (int, error) {
	if v, ok := s.memo[cells]; ok {
		return v, nil
	}

	best := -2
	for pos, c := range cells {
		if c != engine.Empty {
			continue
		}
		score, err := s.scoreMove(cells, turn, pos)
		if err != nil {
			return 0, err
		}
		if score > best {
			best = score
		}
		if best == 1 {
			break
		}
	}

	s.memo[cells] = best
	return best, nil
}
