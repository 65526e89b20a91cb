package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/wordsearch-translate/game/puzzle"
	"github.com/wricardo/wordsearch-translate/game/service"
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
		baseURL: strings.TrimSuffix(baseURL, "/"),
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
		"Word Search Translate",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Word Search Translate - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Each puzzle shows a source word. Its translations are hidden in a letter grid
along straight lines (horizontal, vertical or diagonal, either direction).
Find every translation to solve the puzzle; solve every puzzle to finish the group.

AVAILABLE TOOLS:
- create_session: Start a session on a puzzle source
- list_sessions / get_session: Inspect sessions
- puzzle_state: Show the current grid with coordinates and progress
- select_word: Select a line of cells; matched words are marked
- next_puzzle: Move on once the current puzzle is solved
- restart_group: Reset every puzzle of the session
- describe_cell: Read one cell
- list_sources: List puzzle sources
- game_instructions: Full rules and coordinate conventions`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new play session. Without a source the remote puzzle feed is tried first, then the local fallback.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Puzzle source name or http(s) URL (optional)",
				},
				"iteration_method": map[string]interface{}{
					"type":        "string",
					"description": "Puzzle order: sequential or random (optional)",
					"enum":        []string{"sequential", "random"},
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Play
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "puzzle_state",
		Description: "Show the current puzzle: grid with column/row indexes, found cells, words left",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handlePuzzleState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_word",
		Description: "Select cells as one gesture. Gaps along a straight line are filled, so the two end cells are enough. The selection is also checked backwards.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Cells as comma separated column,row pairs, e.g. \"0,0,0,2\" selects column 0 rows 0 to 2",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Which word you expect to find and why (optional)",
				},
			},
			Required: []string{"session_id", "path"},
		},
	}, c.handleSelectWord)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "next_puzzle",
		Description: "Move to the next unsolved puzzle of the group",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleNextPuzzle)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_group",
		Description: "Reset every puzzle of the session to unsolved",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"iteration_method": map[string]interface{}{
					"type":        "string",
					"description": "New puzzle order: sequential or random (optional, keeps the current one)",
					"enum":        []string{"sequential", "random"},
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRestartGroup)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get the character of one grid cell and whether it is part of a found word",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"column": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based, left to right)",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based, top to bottom)",
				},
			},
			Required: []string{"session_id", "column", "row"},
		},
	}, c.handleDescribeCell)

	// Sources
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sources",
		Description: "List available puzzle sources with their validation stats",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSources)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules and coordinate conventions",
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
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
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
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

func requireSessionID(args map[string]interface{}) (string, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return url.PathEscape(sessionID), nil
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), v == float64(int(v))
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

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := service.CreateSessionRequest{}
	body.Source, _ = args["source"].(string)
	body.IterationMethod, _ = args["iteration_method"].(string)

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                    `json:"count"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Count == 0 {
		return mcp.NewToolResultText("No active sessions"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active sessions (%d):\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s: source=%s puzzles=%d unsolved=%d order=%s\n",
			s.ID, s.Source, s.PuzzleCount, s.UnsolvedPuzzles, s.IterationMethod)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSessionID(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID, nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handlePuzzleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSessionID(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var view service.PuzzleView
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID+"/puzzle", nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPuzzleView(&view)), nil
}

func (c *Client) handleSelectWord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, err := requireSessionID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	key, _ := args["path"].(string)
	points, err := puzzle.ParsePathKey(strings.ReplaceAll(key, " ", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid path %q: expected column,row pairs like \"0,0,0,2\"", key)), nil
	}

	body := map[string]interface{}{"points": points}
	var result service.GestureResult
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+sessionID+"/gesture", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGestureResult(&result)), nil
}

func (c *Client) handleNextPuzzle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSessionID(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var view service.PuzzleView
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+sessionID+"/next", nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPuzzleView(&view)), nil
}

func (c *Client) handleRestartGroup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, err := requireSessionID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]string{}
	if method, _ := args["iteration_method"].(string); method != "" {
		body["iteration_method"] = method
	}

	var response struct {
		Message string              `json:"message"`
		Puzzle  *service.PuzzleView `json:"puzzle"`
	}
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+sessionID+"/restart", body, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := response.Message + "\n"
	if response.Puzzle != nil {
		result += "\n" + formatPuzzleView(response.Puzzle)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, err := requireSessionID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	column, okCol := intArg(args, "column")
	row, okRow := intArg(args, "row")
	if !okCol || !okRow {
		return mcp.NewToolResultError("column and row must be integers"), nil
	}

	var cell service.CellInfo
	path := fmt.Sprintf("/api/sessions/%s/cells/%d/%d", sessionID, column, row)
	if err := c.apiCall(ctx, "GET", path, nil, &cell); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	status := "not part of a found word"
	if cell.Matched {
		status = "part of a found word"
	}
	result := fmt.Sprintf("Cell (column %d, row %d): %q, %s", column, row, cell.Character, status)
	if cell.Highlighted {
		result += ", on the current selection path"
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sources []*service.SourceInfo
	if err := c.apiCall(ctx, "GET", "/api/sources", nil, &sources); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(sources) == 0 {
		return mcp.NewToolResultText("No puzzle sources available"), nil
	}

	var b strings.Builder
	b.WriteString("Puzzle sources:\n")
	for _, s := range sources {
		marker := ""
		if s.Default {
			marker = " (default)"
		}
		fmt.Fprintf(&b, "- %s%s: %d puzzles, %d bad lines [%s]\n",
			s.Name, marker, s.Puzzles, s.Stats.JSONProcessingFailure, s.Origin)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Word Search Translate - Instructions

GAME OBJECTIVE:
Every puzzle names a source word in one language. Its translations into the
target language are hidden in a rectangular letter grid. Find all of them.

COORDINATES:
- Cells are addressed as (column, row), both 0-based.
- Column 0 is the left edge, row 0 is the top edge.
- puzzle_state prints column indexes across the top and row indexes down the side.

SELECTING:
- select_word takes a path of column,row pairs: "2,0,2,3" is column 2, rows 0 to 3.
- Only straight lines count: horizontal, vertical or 45 degree diagonal.
- Cells skipped between two points on such a line are filled in, so the two
  end cells are enough.
- Words may run backwards. A selection is checked in both directions.
- A cell may belong to several words; found cells are shown in brackets.

PROGRESS:
- When every word of a puzzle is found the puzzle is solved; call next_puzzle.
- When every puzzle is solved the group is complete; restart_group replays it.
- Puzzles come in source order (sequential) or at random; pick with
  create_session or restart_group.

STRATEGY:
1. Read the source word and the number of words left.
2. Look for the first letter of a likely translation, then check the eight
   directions around it.
3. Use describe_cell to confirm a letter before selecting.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(info *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", info.ID)
	fmt.Fprintf(&b, "Source: %s\n", info.Source)
	if info.SourceOutcome != "" {
		fmt.Fprintf(&b, "Acquisition: %s\n", info.SourceOutcome)
	}
	fmt.Fprintf(&b, "Order: %s\n", info.IterationMethod)
	fmt.Fprintf(&b, "Puzzles: %d (%d unsolved)\n", info.PuzzleCount, info.UnsolvedPuzzles)
	if info.Puzzle != nil {
		b.WriteString("\n")
		b.WriteString(formatPuzzleView(info.Puzzle))
	}
	return b.String()
}

func formatPuzzleView(view *service.PuzzleView) string {
	var b strings.Builder

	if len(view.Grid) == 0 {
		if view.GroupCompleted {
			b.WriteString("Every puzzle in the group is solved. Use restart_group to play again.\n")
		} else {
			b.WriteString("No current puzzle. Use next_puzzle.\n")
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Puzzle %d of %d (%d unsolved)\n", view.PuzzleIndex+1, view.PuzzleCount, view.UnsolvedPuzzles)
	fmt.Fprintf(&b, "Translate %q from %s to %s\n", view.SourceWord, view.SourceLanguage, view.TargetLanguage)
	fmt.Fprintf(&b, "Words left: %d of %d\n", view.UnmatchedCount, view.TotalWords)
	if len(view.UnmatchedWords) > 0 {
		fmt.Fprintf(&b, "Looking for: %s\n", strings.Join(view.UnmatchedWords, ", "))
	}
	b.WriteString("\n")
	b.WriteString(formatGrid(view))

	switch {
	case view.GroupCompleted:
		b.WriteString("\nEvery puzzle in the group is solved!\n")
	case view.PuzzleSolved:
		b.WriteString("\nPuzzle solved. Use next_puzzle to continue.\n")
	case view.IsLastPuzzle:
		b.WriteString("\nThis is the last unsolved puzzle.\n")
	}
	return b.String()
}

// formatGrid prints the grid with indexes; found cells are bracketed
func formatGrid(view *service.PuzzleView) string {
	matched := make(map[puzzle.Point]bool, len(view.MatchedCells))
	for _, pt := range view.MatchedCells {
		matched[pt] = true
	}

	var b strings.Builder
	b.WriteString("    ")
	for col := 0; col < view.Dimensions.Columns; col++ {
		fmt.Fprintf(&b, "%3d", col)
	}
	b.WriteString("\n")

	for row, cells := range view.Grid {
		fmt.Fprintf(&b, "%3d ", row)
		for col, ch := range cells {
			if matched[puzzle.Point{Column: col, Row: row}] {
				fmt.Fprintf(&b, "[%s]", ch)
			} else {
				fmt.Fprintf(&b, " %s ", ch)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatGestureResult(result *service.GestureResult) string {
	var b strings.Builder

	if result.Matched {
		direction := "forward"
		if result.Reversed {
			direction = "backwards"
		}
		fmt.Fprintf(&b, "MATCH: %s (read %s along %s)\n", result.Word, direction, puzzle.PathKey(result.Path))
	} else {
		fmt.Fprintf(&b, "No match along %s\n", puzzle.PathKey(result.Path))
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}

	if result.Puzzle != nil {
		b.WriteString("\n")
		b.WriteString(formatPuzzleView(result.Puzzle))
	}
	return b.String()
}
