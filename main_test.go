package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/tictactoe/game/config"
	"github.com/wricardo/tictactoe/game/engine"
	"github.com/wricardo/tictactoe/game/service"
	"github.com/wricardo/tictactoe/game/session"
	"github.com/wricardo/tictactoe/game/store"
	"github.com/wricardo/tictactoe/transport/mcp"
)

func TestConstants(t *testing.T) {
	assert.Equal(t, "1.0.0", Version)
	assert.Equal(t, "Tic-Tac-Toe Server", AppName)
}

func TestNewCommand_Subcommands(t *testing.T) {
	cmd := newCommand()

	var names []string
	for _, sub := range cmd.Commands {
		names = append(names, sub.Name)
	}
	assert.Equal(t, []string{"server", "stdio-mcp", "leaderboard"}, names)
	assert.NotNil(t, cmd.Action, "root command should default to the server")
}

func TestLoadConfig_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("TTT_PORT", "7000")
	t.Setenv("TTT_DB_DSN", "from-env.db")

	var cfg *config.Config
	cmd := newCommand()
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		var err error
		cfg, err = loadConfig(c)
		return err
	}

	err := cmd.Run(context.Background(), []string{"tictactoe", "--port", "9191", "--host", "0.0.0.0", "--debug"})
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.True(t, cfg.Debug)
	// unset flags keep the environment value
	assert.Equal(t, "from-env.db", cfg.DBDSN)
	assert.Equal(t, "http://localhost:9191", cfg.BaseURL())
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	cmd := newCommand()
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		_, err := loadConfig(c)
		return err
	}

	err := cmd.Run(context.Background(), []string{"tictactoe", "--db-driver", "mysql"})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestInitializeServices(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{
		"TTT_DB_DSN":           filepath.Join(t.TempDir(), "ttt.db"),
		"TTT_SESSION_CAPACITY": "2",
	})
	require.NoError(t, err)

	svc, err := initializeServices(cfg, zap.NewNop())
	require.NoError(t, err)
	defer svc.Close()

	ctx := context.Background()
	ana, err := svc.games.CreatePlayer(ctx, "Ana")
	require.NoError(t, err)
	beto, err := svc.games.CreatePlayer(ctx, "Beto")
	require.NoError(t, err)

	view, err := svc.games.StartMatch(ctx, ana.ID, beto.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.sessions.Count())

	_, ok := svc.sessions.Get(view.MatchID)
	assert.True(t, ok)
}

func TestServicesAPIServer_HealthFollowsStore(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{
		"TTT_DB_DSN": filepath.Join(t.TempDir(), "ttt.db"),
	})
	require.NoError(t, err)

	svc, err := initializeServices(cfg, zap.NewNop())
	require.NoError(t, err)
	handler := svc.apiServer(nil, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, svc.Close())
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestInitializeServices_UnsupportedDriver(t *testing.T) {
	cfg := &config.Config{DBDriver: "mysql", DBDSN: "x"}

	_, err := initializeServices(cfg, zap.NewNop())
	assert.ErrorIs(t, err, store.ErrUnsupportedDriver)
}

func TestCleanupSessions(t *testing.T) {
	m := session.NewManager()
	m.Put(service.NewSession("idle", "p1", "p2", engine.New()))

	time.Sleep(20 * time.Millisecond)
	m.Put(service.NewSession("fresh", "p1", "p2", engine.New()))

	removed := cleanupSessions(m, 10*time.Millisecond, zap.NewNop())
	assert.Equal(t, 1, removed)

	_, ok := m.Get("fresh")
	assert.True(t, ok)
	_, ok = m.Get("idle")
	assert.False(t, ok)
}

func TestStartCleanupScheduler(t *testing.T) {
	m := session.NewManager()
	sess := m.Put(service.NewSession("idle", "p1", "p2", engine.New()))

	cfg := &config.Config{
		SessionIdleTTL:         time.Millisecond,
		SessionCleanupInterval: 20 * time.Millisecond,
	}
	sched, err := startCleanupScheduler(m, cfg, zap.NewNop())
	require.NoError(t, err)
	defer sched.Shutdown()

	assert.Eventually(t, func() bool { return m.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, sess.Evicted())
}

func TestMCPHandler(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://127.0.0.1:1"))

	t.Run("rejects GET", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler(rr, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})

	t.Run("answers initialize", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0.0.1"}}}`
		rr := httptest.NewRecorder()
		handler(rr, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Body.String(), "Tic-Tac-Toe")
	})
}

func TestAPIReachable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)

	assert.True(t, apiReachable(context.Background(), srv.URL))

	srv.Close()
	assert.False(t, apiReachable(context.Background(), srv.URL))
}

func TestLeaderboardCommand(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "ttt.db")
	t.Setenv("TTT_DB_DSN", dsn)

	st, err := store.Open(store.DriverSQLite, dsn, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	ana, err := st.CreatePlayer(ctx, "Ana")
	require.NoError(t, err)
	beto, err := st.CreatePlayer(ctx, "Beto")
	require.NoError(t, err)
	require.NoError(t, st.RecordOutcome(ctx, ana.ID, beto.ID, &beto.ID))
	require.NoError(t, st.Close())

	var out bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &out

	err = cmd.Run(ctx, []string{"tictactoe", "leaderboard", "--limit", "1"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Beto")
	assert.NotContains(t, out.String(), "Ana")
}
