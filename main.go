// Command tictactoe starts the tic-tac-toe match server.
//
// It supports three modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "leaderboard" – prints player statistics straight from the database
//
// Settings come from TTT_* environment variables (optionally via a .env file);
// flags override them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/tictactoe/api"
	"github.com/wricardo/tictactoe/game/config"
	"github.com/wricardo/tictactoe/game/service"
	"github.com/wricardo/tictactoe/game/session"
	"github.com/wricardo/tictactoe/game/store"
	"github.com/wricardo/tictactoe/transport/mcp"
	"github.com/wricardo/tictactoe/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tic-Tac-Toe Server"
)

const shutdownTimeout = 10 * time.Second

// main loads .env, then runs the selected command until a signal arrives.
func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

// newCommand builds the CLI. Running it without a subcommand starts the server.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "tictactoe",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host (TTT_HOST)"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port (TTT_PORT)"},
			&cli.StringFlag{Name: "db-driver", Usage: "database driver: sqlite or postgres (TTT_DB_DRIVER)"},
			&cli.StringFlag{Name: "dsn", Usage: "database DSN or SQLite file (TTT_DB_DSN)"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging (TTT_DEBUG)"},
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServer,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server, starting an internal HTTP server if needed",
				Action:  runStdioMCP,
			},
			{
				Name:  "leaderboard",
				Usage: "Print player statistics ordered by wins",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 10, Usage: "number of rows to print; 0 prints all"},
				},
				Action: runLeaderboard,
			},
		},
	}
}

// loadConfig reads the environment and applies explicitly set flags on top
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("db-driver") {
		cfg.DBDriver = cmd.String("db-driver")
	}
	if cmd.IsSet("dsn") {
		cfg.DBDSN = cmd.String("dsn")
	}
	if cmd.IsSet("debug") {
		cfg.Debug = cmd.Bool("debug")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes to stderr so stdout stays free for the MCP stdio protocol
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// services holds everything a running server needs
type services struct {
	store    *store.Store
	sessions *session.Manager
	games    service.GameService
}

// initializeServices opens the database and wires the session cache and the game service.
func initializeServices(cfg *config.Config, logger *zap.Logger) (*services, error) {
	st, err := store.Open(cfg.DBDriver, cfg.DBDSN, logger.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	sessions := session.NewManager(
		session.WithCapacity(cfg.SessionCapacity),
		session.WithLogger(logger.Named("session")),
	)

	return &services{
		store:    st,
		sessions: sessions,
		games:    service.NewGameService(sessions, st, logger.Named("game")),
	}, nil
}

// apiServer builds the REST handler with the store behind /api/health
func (s *services) apiServer(hub *websocket.Hub, logger *zap.Logger) *api.Server {
	srv := api.NewServer(s.games, hub, logger)
	srv.SetHealthCheck(s.store)
	return srv
}

func (s *services) Close() error {
	return s.store.Close()
}

// startCleanupScheduler evicts sessions idle for longer than the configured TTL.
// Evicted matches are reloaded from the database on their next access.
func startCleanupScheduler(sessions *session.Manager, cfg *config.Config, logger *zap.Logger) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(cfg.SessionCleanupInterval),
		gocron.NewTask(func() {
			cleanupSessions(sessions, cfg.SessionIdleTTL, logger)
		}),
		gocron.WithName("session-cleanup"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule session cleanup: %w", err)
	}

	sched.Start()
	return sched, nil
}

func cleanupSessions(sessions *session.Manager, idleTTL time.Duration, logger *zap.Logger) int {
	removed := sessions.CleanupExpiredSessions(idleTTL)
	if removed > 0 {
		logger.Debug("session cleanup finished",
			zap.Int("removed", removed),
			zap.Int("cached", sessions.Count()))
	}
	return removed
}

// newRouter mounts the REST API at the root and the MCP JSON-RPC endpoint at /mcp
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// runServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
func runServer(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting", zap.String("app", AppName), zap.String("version", Version), zap.String("mode", "server"))

	svc, err := initializeServices(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	sched, err := startCleanupScheduler(svc.sessions, cfg, logger.Named("cleanup"))
	if err != nil {
		return err
	}
	defer sched.Shutdown()

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	hub := websocket.NewHub(logger.Named("ws"))
	go hub.Run(hubCtx)

	apiServer := svc.apiServer(hub, logger.Named("api"))
	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newRouter(apiServer, mcp.NewClient(cfg.BaseURL())),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		defer close(serveErr)

		logger.Info("HTTP server listening",
			zap.String("addr", cfg.Addr()),
			zap.String("api", cfg.BaseURL()+"/api"),
			zap.String("websocket", "ws://"+cfg.Addr()+"/ws?match=<match_id>"),
			zap.String("mcp", cfg.BaseURL()+"/mcp"))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// apiReachable reports whether a REST API answers its health check at baseURL
func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server.
// It reuses the API at the configured address when one answers; otherwise it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	baseURL := cfg.BaseURL()
	if apiReachable(ctx, baseURL) {
		logger.Info("using external API server for MCP", zap.String("url", baseURL))
	} else {
		logger.Info("no external API server found, starting internal HTTP server")

		svc, err := initializeServices(cfg, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		sched, err := startCleanupScheduler(svc.sessions, cfg, logger.Named("cleanup"))
		if err != nil {
			return err
		}
		defer sched.Shutdown()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		// MCP clients poll; no websocket watchers in this mode
		httpServer := &http.Server{Handler: svc.apiServer(nil, logger.Named("api"))}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", zap.Error(err))
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		logger.Info("internal HTTP server started", zap.String("url", baseURL))
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}

// runLeaderboard prints the leaderboard without starting a server
func runLeaderboard(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	st, err := store.Open(cfg.DBDriver, cfg.DBDSN, logger.Named("store"))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	stats, err := st.ListStats(ctx)
	if err != nil {
		return err
	}
	if limit := int(cmd.Int("limit")); limit > 0 && limit < len(stats) {
		stats = stats[:limit]
	}

	_, err = fmt.Fprint(cmd.Root().Writer, mcp.FormatLeaderboard(stats))
	return err
}
