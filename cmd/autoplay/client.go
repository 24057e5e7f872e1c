package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/tictactoe/game/service"
)

// Client drives a match server through its REST API
type Client struct {
	baseURL string
	client  *http.Client
}

// APIError is a non-2xx answer from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// EnsurePlayer registers name, or returns the existing player with that name
func (c *Client) EnsurePlayer(ctx context.Context, name string) (*service.Player, error) {
	var player service.Player
	err := c.do(ctx, http.MethodPost, "/api/players", map[string]string{"name": name}, &player)
	if err == nil {
		return &player, nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		return nil, fmt.Errorf("create player %q: %w", name, err)
	}

	var existing service.Player
	lookupErr := c.do(ctx, http.MethodGet, "/api/players?name="+url.QueryEscape(name), nil, &existing)
	if lookupErr == nil {
		return &existing, nil
	}
	var lookupAPIErr *APIError
	if errors.As(lookupErr, &lookupAPIErr) && lookupAPIErr.Status < http.StatusInternalServerError {
		return nil, fmt.Errorf("create player %q: %w", name, apiErr)
	}
	return nil, fmt.Errorf("find player %q: %w", name, lookupErr)
}

func (c *Client) StartMatch(ctx context.Context, player1ID, player2ID string) (*service.MatchView, error) {
	var view service.MatchView
	body := map[string]string{"player1_id": player1ID, "player2_id": player2ID}
	if err := c.do(ctx, http.MethodPost, "/api/matches", body, &view); err != nil {
		return nil, fmt.Errorf("start match: %w", err)
	}
	return &view, nil
}

func (c *Client) GetMatch(ctx context.Context, matchID string) (*service.MatchView, error) {
	var view service.MatchView
	if err := c.do(ctx, http.MethodGet, "/api/matches/"+matchID, nil, &view); err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	return &view, nil
}

func (c *Client) Move(ctx context.Context, matchID string, position int) (*service.MoveResult, error) {
	var result service.MoveResult
	body := map[string]int{"position": position}
	if err := c.do(ctx, http.MethodPost, "/api/matches/"+matchID+"/moves", body, &result); err != nil {
		return nil, fmt.Errorf("move %d: %w", position, err)
	}
	return &result, nil
}

func (c *Client) Leaderboard(ctx context.Context) ([]*service.Stats, error) {
	var board struct {
		Stats []*service.Stats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &board); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return board.Stats, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return &APIError{Status: resp.StatusCode, Message: errResp.Error}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
