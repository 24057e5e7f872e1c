package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/tictactoe/game/engine"
	"github.com/wricardo/tictactoe/game/service"
	"github.com/wricardo/tictactoe/transport/websocket"
)

// HealthChecker reports whether a backing dependency is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	health  HealthChecker
	router  *mux.Router
	logger  *zap.Logger
}

// NewServer creates a new API server; hub may be nil to disable live updates
func NewServer(gameService service.GameService, hub *websocket.Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

// SetHealthCheck makes /api/health report 503 while h.Ping fails
func (s *Server) SetHealthCheck(h HealthChecker) {
	s.health = h
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Players
	api.HandleFunc("/players", s.handleCreatePlayer).Methods("POST")
	api.HandleFunc("/players", s.handleGetPlayerByName).Methods("GET").Queries("name", "{name}")
	api.HandleFunc("/players", s.handleListPlayers).Methods("GET")
	api.HandleFunc("/players/{id}", s.handleGetPlayer).Methods("GET")
	api.HandleFunc("/players/{id}/stats", s.handleGetStats).Methods("GET")
	api.HandleFunc("/stats", s.handleListStats).Methods("GET")

	// Matches
	api.HandleFunc("/matches", s.handleStartMatch).Methods("POST")
	api.HandleFunc("/matches", s.handleListMatches).Methods("GET")
	api.HandleFunc("/matches/{id}", s.handleGetMatch).Methods("GET")
	api.HandleFunc("/matches/{id}/moves", s.handleMove).Methods("POST")
	api.HandleFunc("/matches/{id}/session", s.handleEvictSession).Methods("DELETE")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps a service error to its HTTP status
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidPosition),
		errors.Is(err, engine.ErrCellOccupied),
		errors.Is(err, engine.ErrGameOver),
		errors.Is(err, service.ErrInvalidPlayers),
		errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrMatchNotFound),
		errors.Is(err, service.ErrPlayerNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Player Handlers

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	player, err := s.service.CreatePlayer(r.Context(), req.Name)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, player)
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.service.ListPlayers(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(players),
		"players": players,
	})
}

func (s *Server) handleGetPlayerByName(w http.ResponseWriter, r *http.Request) {
	player, err := s.service.GetPlayerByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, player)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.service.GetPlayer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, player)
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.GetStats(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.ListStats(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(stats) {
			stats = stats[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(stats),
		"stats": stats,
	})
}

// Match Handlers

func (s *Server) handleStartMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player1ID string `json:"player1_id"`
		Player2ID string `json:"player2_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := s.service.StartMatch(r.Context(), req.Player1ID, req.Player2ID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.service.ListActiveMatches(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(matches) {
			matches = matches[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(matches),
		"matches": matches,
	})
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.GetMatch(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		cells, err := engine.CellsFromStrings(view.Board)
		if err != nil {
			s.respondServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(engine.Snapshot{Cells: cells}.String()))
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]

	var req struct {
		Position *int `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Position == nil {
		respondError(w, http.StatusBadRequest, "position is required")
		return
	}

	result, err := s.service.SubmitMove(r.Context(), matchID, *req.Position)
	if err != nil {
		s.logger.Debug("move rejected",
			zap.String("match_id", matchID),
			zap.Int("position", *req.Position),
			zap.Error(err))
		s.respondServiceError(w, err)
		return
	}

	// Broadcast to WebSocket clients
	if s.hub != nil {
		event := websocket.EventMove
		if result.Terminal {
			event = websocket.EventFinished
		}
		s.hub.Broadcast(matchID, event, result)
	}

	s.logger.Info("move",
		zap.String("match_id", matchID),
		zap.Int("position", *req.Position),
		zap.String("result", string(result.Result)))

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleEvictSession(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]

	if err := s.service.EvictMatch(r.Context(), matchID); err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message":  "Session evicted",
		"match_id": matchID,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "Live updates are disabled")
		return
	}

	matchID := r.URL.Query().Get("match")
	if matchID == "" {
		respondError(w, http.StatusBadRequest, "match is required")
		return
	}
	if _, err := s.service.GetMatch(r.Context(), matchID); err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.hub.ServeWS(w, r, matchID)
}
