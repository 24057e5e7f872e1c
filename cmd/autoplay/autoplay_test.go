package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wricardo/tictactoe/api"
	"github.com/wricardo/tictactoe/game/engine"
	"github.com/wricardo/tictactoe/game/service"
	"github.com/wricardo/tictactoe/game/session"
	"github.com/wricardo/tictactoe/game/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "autoplay.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := service.NewGameService(session.NewManager(), db, nil)
	srv := httptest.NewServer(api.NewServer(svc, nil, nil))
	t.Cleanup(srv.Close)
	return srv
}

func stateOf(t *testing.T, moves ...int) service.GameState {
	t.Helper()
	b := engine.New()
	for _, m := range moves {
		_, err := b.ApplyMove(m)
		require.NoError(t, err)
	}
	return service.NewGameState(b.Snapshot())
}

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy("minimax", 1)
	require.NoError(t, err)
	assert.Equal(t, "minimax", s.Name())

	s, err = NewStrategy("random", 1)
	require.NoError(t, err)
	assert.Equal(t, "random", s.Name())

	_, err = NewStrategy("greedy", 1)
	assert.Error(t, err)
}

func TestMinimax_TakesWin(t *testing.T) {
	// X: 0,1  O: 3,4  X to move completes the top row
	state := stateOf(t, 0, 3, 1, 4)

	pos, err := NewMinimaxStrategy().NextMove(state)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
}

func TestMinimax_BlocksLoss(t *testing.T) {
	// X: 0,8  O: 4,5  X must block 3
	state := stateOf(t, 0, 4, 8, 5)

	pos, err := NewMinimaxStrategy().NextMove(state)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)
}

func TestMinimax_TerminalState(t *testing.T) {
	state := stateOf(t, 0, 3, 1, 4, 2)

	_, err := NewMinimaxStrategy().NextMove(state)
	assert.ErrorIs(t, err, engine.ErrGameOver)
}

func TestRandomStrategy_PicksAvailable(t *testing.T) {
	s := NewRandomStrategy(42)
	state := stateOf(t, 4, 0, 8)

	for i := 0; i < 50; i++ {
		pos, err := s.NextMove(state)
		require.NoError(t, err)
		assert.Contains(t, state.AvailableMoves, pos)
	}
}

func TestRun_MinimaxNeverLoses(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL)

	opts := Options{
		Games: 5,
		XName: "bot-x",
		OName: "bot-o",
		Strategy: map[engine.Mark]Strategy{
			engine.X: NewMinimaxStrategy(),
			engine.O: NewRandomStrategy(7),
		},
	}

	tally, err := Run(context.Background(), client, opts, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 5, tally.XWins+tally.OWins+tally.Draws)
	assert.Zero(t, tally.OWins)

	stats, err := client.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	for _, s := range stats {
		assert.Equal(t, 5, s.Played)
		assert.Equal(t, s.Played, s.Won+s.Lost+s.Drawn)
	}
}

func TestRun_PerfectPlayDraws(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL)

	minimax := NewMinimaxStrategy()
	opts := Options{
		Games:    2,
		XName:    "x",
		OName:    "o",
		Strategy: map[engine.Mark]Strategy{engine.X: minimax, engine.O: minimax},
	}

	tally, err := Run(context.Background(), client, opts, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Tally{Draws: 2}, tally)
}

func TestRun_ResumeAndReusePlayers(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL)
	ctx := context.Background()

	// players already exist from an earlier run
	px, err := client.EnsurePlayer(ctx, "bot-x")
	require.NoError(t, err)
	po, err := client.EnsurePlayer(ctx, "bot-o")
	require.NoError(t, err)

	again, err := client.EnsurePlayer(ctx, "bot-x")
	require.NoError(t, err)
	assert.Equal(t, px.ID, again.ID)

	view, err := client.StartMatch(ctx, px.ID, po.ID)
	require.NoError(t, err)
	_, err = client.Move(ctx, view.MatchID, 4)
	require.NoError(t, err)

	minimax := NewMinimaxStrategy()
	opts := Options{
		Resume:   view.MatchID,
		Strategy: map[engine.Mark]Strategy{engine.X: minimax, engine.O: minimax},
	}

	tally, err := Run(ctx, client, opts, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, tally.XWins+tally.OWins+tally.Draws)

	finished, err := client.GetMatch(ctx, view.MatchID)
	require.NoError(t, err)
	assert.True(t, finished.Terminal)
}

func TestClient_Errors(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL)

	_, err := client.GetMatch(context.Background(), "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)

	_, err = client.EnsurePlayer(context.Background(), "   ")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
}

func TestCommand_PrintsSummary(t *testing.T) {
	srv := newTestServer(t)

	var out bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &out

	err := cmd.Run(context.Background(), []string{"autoplay", "--url", srv.URL, "--games", "2", "--x", "minimax", "--o", "minimax"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "X wins: 0  O wins: 0  Draws: 2")
	assert.Contains(t, out.String(), "bot-x-minimax")
	assert.Contains(t, out.String(), "bot-o-minimax")
}
