// Package mcp exposes the tic-tac-toe REST API as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call becomes one HTTP request against
// a running server, and the JSON response is rendered as text an agent can
// read. No game state lives in this package.
//
// Tools:
//   - create_player, list_players
//   - start_match, get_match, move, list_matches
//   - leaderboard
//   - game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
//
// API errors are returned as tool errors carrying the server's message, so an
// agent sees "cell already occupied" rather than a transport failure.
package mcp
