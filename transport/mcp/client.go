package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/tictactoe/game/engine"
	"github.com/wricardo/tictactoe/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tic-Tac-Toe",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tic-Tac-Toe - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Two registered players alternate placing marks on a 3x3 board. X always moves
first and belongs to player 1. Three in a row wins; a full board without a line
is a draw. Results are recorded in each player's statistics.

BOARD POSITIONS:
 0 | 1 | 2
-----------
 3 | 4 | 5
-----------
 6 | 7 | 8

AVAILABLE TOOLS:
- create_player: Register a player by name
- list_players: List registered players
- start_match: Start a match between two players
- get_match: Show the board of a match
- move: Place the next mark at a position (0-8)
- list_matches: List matches still in progress
- leaderboard: Show player statistics ordered by wins
- game_instructions: Rules and tips`),
	)

	c.registerTools()
}

func matchIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Match ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Players
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_player",
		Description: "Register a new player. Names must be unique.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Player name",
				},
			},
			Required: []string{"name"},
		},
	}, c.handleCreatePlayer)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_players",
		Description: "List all registered players",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPlayers)

	// Matches
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_match",
		Description: "Start a match. Player 1 plays X and moves first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player1_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the player who plays X",
				},
				"player2_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the player who plays O",
				},
			},
			Required: []string{"player1_id", "player2_id"},
		},
	}, c.handleStartMatch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_match",
		Description: "Get the current board of a match",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": matchIDProperty(),
			},
			Required: []string{"match_id"},
		},
	}, c.handleGetMatch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Place the mark of the player to move at a board position",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": matchIDProperty(),
				"position": map[string]interface{}{
					"type":        "integer",
					"minimum":     0,
					"maximum":     8,
					"description": "Cell index, 0-8 in row-major order",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"match_id", "position"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_matches",
		Description: "List matches that are still in progress, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMatches)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "leaderboard",
		Description: "Show player statistics ordered by wins",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of rows (optional)",
				},
			},
		},
	}, c.handleLeaderboard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument; ok is false when missing or fractional
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}

// Tool handlers

func (c *Client) handleCreatePlayer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := arguments(request)["name"].(string)

	var player service.Player
	if err := c.apiCall(ctx, "POST", "/api/players", map[string]string{"name": name}, &player); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created player: %s\nID: %s\n", player.Name, player.ID)), nil
}

func (c *Client) handleListPlayers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int               `json:"count"`
		Players []*service.Player `json:"players"`
	}
	if err := c.apiCall(ctx, "GET", "/api/players", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Count == 0 {
		return mcp.NewToolResultText("No players registered yet."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Players (%d):\n", response.Count)
	for _, p := range response.Players {
		fmt.Fprintf(&b, "- %s (%s)\n", p.Name, p.ID)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleStartMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	player1ID, _ := args["player1_id"].(string)
	player2ID, _ := args["player2_id"].(string)

	body := map[string]string{"player1_id": player1ID, "player2_id": player2ID}
	var view service.MatchView
	if err := c.apiCall(ctx, "POST", "/api/matches", body, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Match started.\n" + formatMatch(&view)), nil
}

func (c *Client) handleGetMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	matchID, _ := arguments(request)["match_id"].(string)
	if matchID == "" {
		return mcp.NewToolResultError("match_id is required"), nil
	}

	var view service.MatchView
	if err := c.apiCall(ctx, "GET", "/api/matches/"+matchID, nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMatch(&view)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	matchID, _ := args["match_id"].(string)
	if matchID == "" {
		return mcp.NewToolResultError("match_id is required"), nil
	}
	position, ok := intArg(args, "position")
	if !ok {
		return mcp.NewToolResultError("position must be an integer between 0 and 8"), nil
	}

	var result service.MoveResult
	err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/matches/%s/moves", matchID), map[string]int{"position": position}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleListMatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int                    `json:"count"`
		Matches []*service.MatchRecord `json:"matches"`
	}
	if err := c.apiCall(ctx, "GET", "/api/matches", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Count == 0 {
		return mcp.NewToolResultText("No matches in progress."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Matches in progress (%d):\n", response.Count)
	for _, m := range response.Matches {
		fmt.Fprintf(&b, "- %s: %s (X) vs %s (O), %s to move, started %s\n",
			m.ID, m.Player1Name, m.Player2Name, m.Turn, m.StartedAt.Format(time.RFC3339))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/stats"
	if limit, ok := intArg(arguments(request), "limit"); ok && limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	var response struct {
		Count int              `json:"count"`
		Stats []*service.Stats `json:"stats"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(FormatLeaderboard(response.Stats)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `TIC-TAC-TOE RULES

1. Register two players with create_player, then start_match with their IDs.
2. Player 1 plays X and always moves first. Turns strictly alternate.
3. A move names a cell by index:

    0 | 1 | 2
   -----------
    3 | 4 | 5
   -----------
    6 | 7 | 8

4. A move is rejected if the index is outside 0-8, the cell is taken, or the
   match is already over. Rejected moves change nothing and do not pass the turn.
5. Three marks in a row, column or diagonal win. A full board with no line is a draw.
6. When a match ends, both players' statistics are updated exactly once.

TIPS:
- The center (4) takes part in four lines; corners in three; edges in two.
- Always block an opponent's open two-in-a-row before building your own.
`
	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func renderBoard(board []string) string {
	cells, err := engine.CellsFromStrings(board)
	if err != nil {
		return strings.Join(board, ",")
	}
	return engine.Snapshot{Cells: cells}.String()
}

func formatMatch(view *service.MatchView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Match: %s\n", view.MatchID)
	if view.Player1 != nil && view.Player2 != nil {
		fmt.Fprintf(&b, "X: %s\nO: %s\n", view.Player1.Name, view.Player2.Name)
	}
	b.WriteString("\n" + renderBoard(view.Board) + "\n")
	b.WriteString(formatStatus(view.GameState, view.WinnerID))
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (position %d)\n\n", result.Message, result.Position)
	b.WriteString(renderBoard(result.Board) + "\n")
	b.WriteString(formatStatus(result.GameState, result.WinnerID))
	return b.String()
}

func formatStatus(state service.GameState, winnerID *string) string {
	switch {
	case state.Terminal && state.Winner != nil:
		id := ""
		if winnerID != nil {
			id = *winnerID
		}
		return fmt.Sprintf("🏆 %s WINS (player %s)\n", *state.Winner, id)
	case state.Terminal:
		return "🤝 DRAW\n"
	default:
		moves := make([]string, 0, len(state.AvailableMoves))
		for _, m := range state.AvailableMoves {
			moves = append(moves, fmt.Sprint(m))
		}
		return fmt.Sprintf("Turn: %s\nAvailable moves: %s\n", state.Turn, strings.Join(moves, ", "))
	}
}

// FormatLeaderboard renders statistics as a fixed-width table
func FormatLeaderboard(stats []*service.Stats) string {
	if len(stats) == 0 {
		return "No players registered yet.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-4s %-20s %6s %4s %4s %4s\n", "#", "Player", "Played", "Won", "Lost", "Draw")
	for i, s := range stats {
		fmt.Fprintf(&b, "%-4d %-20s %6d %4d %4d %4d\n", i+1, s.PlayerName, s.Played, s.Won, s.Lost, s.Drawn)
	}
	return b.String()
}
