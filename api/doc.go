// Package api provides the HTTP REST API for tic-tac-toe matches.
//
// The api package implements:
//   - Player registration and lookup
//   - Match creation, board retrieval and move submission
//   - Per-player statistics and the leaderboard
//   - WebSocket upgrade for match spectators
//
// Endpoints:
//
// Players:
//   - POST /api/players - Register a player {"name": "Ana"}
//   - GET /api/players - List players
//   - GET /api/players?name={name} - Find a player by exact name
//   - GET /api/players/{id} - Get one player
//   - GET /api/players/{id}/stats - Get a player's statistics
//   - GET /api/stats?limit=N - Leaderboard, most wins first
//
// Matches:
//   - POST /api/matches - Start a match {"player1_id": "...", "player2_id": "..."}
//   - GET /api/matches?limit=N - List matches still in progress
//   - GET /api/matches/{id} - Get the board; ?format=text renders it as a grid
//   - POST /api/matches/{id}/moves - Place the next mark {"position": 4}
//   - DELETE /api/matches/{id}/session - Drop the cached session; the match reloads on next access
//
// Other:
//   - GET /api/health - Database ping; 503 while the store is unreachable
//   - GET /ws?match={id} - Subscribe to live move events
//
// Positions are numbered 0-8, row-major from the top-left corner. Player 1
// plays X and always moves first.
//
// Error Handling:
//
// Errors are returned as JSON:
//
//	{"error": "error message"}
//
// Rejected moves (bad position, occupied cell, finished match) and invalid
// player input answer 400. Unknown matches or players answer 404. Storage
// failures answer 500.
//
// Usage:
//
//	srv := api.NewServer(gameService, hub, logger)
//	http.ListenAndServe(":8080", srv)
package api
