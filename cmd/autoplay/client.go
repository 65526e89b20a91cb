package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/wricardo/wordsearch-translate/game/puzzle"
	"github.com/wricardo/wordsearch-translate/game/service"
)

// Client talks to the word search REST API on behalf of one session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a client. A zero or negative rps means no pacing.
func NewClient(baseURL string, rps float64) *Client {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// SessionID returns the session the client plays
func (c *Client) SessionID() string { return c.sessionID }

func (c *Client) CreateSession(ctx context.Context, source, method string) (*service.SessionInfo, error) {
	req := service.CreateSessionRequest{Source: source, IterationMethod: method}

	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = info.ID
	return &info, nil
}

// Resume attaches the client to an existing session
func (c *Client) Resume(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	c.sessionID = sessionID

	var info service.SessionInfo
	if err := c.do(ctx, http.MethodGet, c.sessionPath(""), nil, &info); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &info, nil
}

func (c *Client) Puzzle(ctx context.Context) (*service.PuzzleView, error) {
	var view service.PuzzleView
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/puzzle"), nil, &view); err != nil {
		return nil, fmt.Errorf("get puzzle: %w", err)
	}
	return &view, nil
}

// SelectPath submits one whole gesture
func (c *Client) SelectPath(ctx context.Context, points []puzzle.Point) (*service.GestureResult, error) {
	req := struct {
		Points []puzzle.Point `json:"points"`
	}{Points: points}

	var result service.GestureResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/gesture"), req, &result); err != nil {
		return nil, fmt.Errorf("select path: %w", err)
	}
	return &result, nil
}

func (c *Client) Next(ctx context.Context) (*service.PuzzleView, error) {
	var view service.PuzzleView
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/next"), nil, &view); err != nil {
		return nil, fmt.Errorf("next puzzle: %w", err)
	}
	return &view, nil
}

func (c *Client) Restart(ctx context.Context) (*service.PuzzleView, error) {
	var view service.PuzzleView
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/restart"), nil, &view); err != nil {
		return nil, fmt.Errorf("restart: %w", err)
	}
	return &view, nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + c.sessionID + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
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

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s - %s", resp.Status, strings.TrimSpace(string(data)))
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
