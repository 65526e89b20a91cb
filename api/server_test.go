package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/wordsearch-translate/game/config"
	"github.com/wricardo/wordsearch-translate/game/group"
	"github.com/wricardo/wordsearch-translate/game/puzzle"
	"github.com/wricardo/wordsearch-translate/game/service"
	"github.com/wricardo/wordsearch-translate/game/session"
	"github.com/wricardo/wordsearch-translate/game/source"
	"github.com/wricardo/wordsearch-translate/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Play
	GetPuzzleFunc    func(ctx context.Context, sessionID string) (*service.PuzzleView, error)
	BeginGestureFunc func(ctx context.Context, sessionID string, pt puzzle.Point) (*service.PuzzleView, error)
	AddHitFunc       func(ctx context.Context, sessionID string, pt puzzle.Point) (*service.PuzzleView, error)
	EndGestureFunc   func(ctx context.Context, sessionID string) (*service.GestureResult, error)
	SelectPathFunc   func(ctx context.Context, sessionID string, points []puzzle.Point) (*service.GestureResult, error)
	NextPuzzleFunc   func(ctx context.Context, sessionID string) (*service.PuzzleView, error)
	RestartGroupFunc func(ctx context.Context, sessionID, method string) (*service.PuzzleView, error)
	DescribeCellFunc func(ctx context.Context, sessionID string, pt puzzle.Point) (*service.CellInfo, error)

	// Sources
	ListSourcesFunc func(ctx context.Context) ([]*service.SourceInfo, error)
	GetSourceFunc   func(ctx context.Context, name string) (*service.SourceDetail, error)
	SaveSourceFunc  func(ctx context.Context, name string, blob []byte) (*service.SourceInfo, error)
}

func testView(sessionID string) *service.PuzzleView {
	return &service.PuzzleView{
		SessionID:    sessionID,
		SourceWord:   "animals",
		Dimensions:   puzzle.GridDimensions{Columns: 3, Rows: 3},
		MatchedCells: []puzzle.Point{},
		Path:         []puzzle.Point{},
	}
}

// Session Management
func (m *MockGameService) CreateSession(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, req)
	}
	return &service.SessionInfo{
		ID:        "test-session",
		Source:    req.Source,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:        sessionID,
		Source:    "main",
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

// Play
func (m *MockGameService) GetPuzzle(ctx context.Context, sessionID string) (*service.PuzzleView, error) {
	if m.GetPuzzleFunc != nil {
		return m.GetPuzzleFunc(ctx, sessionID)
	}
	return testView(sessionID), nil
}

func (m *MockGameService) BeginGesture(ctx context.Context, sessionID string, pt puzzle.Point) (*service.PuzzleView, error) {
	if m.BeginGestureFunc != nil {
		return m.BeginGestureFunc(ctx, sessionID, pt)
	}
	view := testView(sessionID)
	view.Path = []puzzle.Point{pt}
	return view, nil
}

func (m *MockGameService) AddHit(ctx context.Context, sessionID string, pt puzzle.Point) (*service.PuzzleView, error) {
	if m.AddHitFunc != nil {
		return m.AddHitFunc(ctx, sessionID, pt)
	}
	return testView(sessionID), nil
}

func (m *MockGameService) EndGesture(ctx context.Context, sessionID string) (*service.GestureResult, error) {
	if m.EndGestureFunc != nil {
		return m.EndGestureFunc(ctx, sessionID)
	}
	return &service.GestureResult{Path: []puzzle.Point{}, Puzzle: testView(sessionID)}, nil
}

func (m *MockGameService) SelectPath(ctx context.Context, sessionID string, points []puzzle.Point) (*service.GestureResult, error) {
	if m.SelectPathFunc != nil {
		return m.SelectPathFunc(ctx, sessionID, points)
	}
	return &service.GestureResult{Path: points, Puzzle: testView(sessionID)}, nil
}

func (m *MockGameService) NextPuzzle(ctx context.Context, sessionID string) (*service.PuzzleView, error) {
	if m.NextPuzzleFunc != nil {
		return m.NextPuzzleFunc(ctx, sessionID)
	}
	return testView(sessionID), nil
}

func (m *MockGameService) RestartGroup(ctx context.Context, sessionID, method string) (*service.PuzzleView, error) {
	if m.RestartGroupFunc != nil {
		return m.RestartGroupFunc(ctx, sessionID, method)
	}
	return testView(sessionID), nil
}

func (m *MockGameService) DescribeCell(ctx context.Context, sessionID string, pt puzzle.Point) (*service.CellInfo, error) {
	if m.DescribeCellFunc != nil {
		return m.DescribeCellFunc(ctx, sessionID, pt)
	}
	return &service.CellInfo{Point: pt, Character: "C"}, nil
}

// Sources
func (m *MockGameService) ListSources(ctx context.Context) ([]*service.SourceInfo, error) {
	if m.ListSourcesFunc != nil {
		return m.ListSourcesFunc(ctx)
	}
	return []*service.SourceInfo{}, nil
}

func (m *MockGameService) GetSource(ctx context.Context, name string) (*service.SourceDetail, error) {
	if m.GetSourceFunc != nil {
		return m.GetSourceFunc(ctx, name)
	}
	return &service.SourceDetail{SourceInfo: service.SourceInfo{Name: name}}, nil
}

func (m *MockGameService) SaveSource(ctx context.Context, name string, blob []byte) (*service.SourceInfo, error) {
	if m.SaveSourceFunc != nil {
		return m.SaveSourceFunc(ctx, name, blob)
	}
	return &service.SourceInfo{Name: name}, nil
}

// Test helpers
func setupTestServer(t *testing.T, svc service.GameService) *Server {
	t.Helper()
	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return NewServer(svc, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default source",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					if req.Source != "" {
						t.Errorf("Expected empty source, got %s", req.Source)
					}
					return &service.SessionInfo{
						ID:            "sess-123",
						Source:        "main",
						SourceOutcome: string(source.RemoteFetchFailedUsedLocal),
						CreatedAt:     time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected session ID sess-123, got %s", resp.ID)
				}
				if resp.SourceOutcome != "remote_fetch_failed_used_local" {
					t.Errorf("Unexpected outcome %s", resp.SourceOutcome)
				}
			},
		},
		{
			name:        "Create session with named source and method",
			requestBody: map[string]string{"source": "alternate_examples", "iteration_method": "sequential"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					if req.Source != "alternate_examples" || req.IterationMethod != "sequential" {
						t.Errorf("Unexpected request %+v", req)
					}
					return &service.SessionInfo{ID: "sess-456", Source: req.Source}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Malformed body",
			requestBody:    "not an object",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Invalid iteration method",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: unknown iteration method", service.ErrInvalidRequest)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Every source failed",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("failed to acquire puzzles: %w", source.ErrTotalFailure)
				}
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions", tt.requestBody)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Minute)},
				{ID: "new", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "mid", CreatedAt: now.Add(-90 * time.Minute), LastAccessedAt: now},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		query string
		want  []string
		total int
	}{
		{query: "", want: []string{"mid", "old", "new"}, total: 3},
		{query: "?sort=created&order=asc", want: []string{"old", "mid", "new"}, total: 3},
		{query: "?sort=created&limit=2", want: []string{"new", "mid"}, total: 3},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != tt.total || resp.Count != len(tt.want) {
				t.Errorf("Expected count %d total %d, got %d/%d", len(tt.want), tt.total, resp.Count, resp.Total)
			}
			for i, id := range tt.want {
				if resp.Sessions[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestGetAndDeleteSession_NotFound(t *testing.T) {
	notFound := fmt.Errorf("session not found: %w", session.ErrSessionNotFound)
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, notFound
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			return session.ErrSessionNotFound
		},
	}
	server := setupTestServer(t, mockService)

	for _, method := range []string{"GET", "DELETE"} {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest(method, "/api/sessions/missing", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", method, w.Code)
		}
	}
}

// Play Tests

func TestGestureEndpoints(t *testing.T) {
	var gotBegin, gotHit puzzle.Point
	var gotPoints []puzzle.Point

	mockService := &MockGameService{
		BeginGestureFunc: func(ctx context.Context, sessionID string, pt puzzle.Point) (*service.PuzzleView, error) {
			gotBegin = pt
			return testView(sessionID), nil
		},
		AddHitFunc: func(ctx context.Context, sessionID string, pt puzzle.Point) (*service.PuzzleView, error) {
			gotHit = pt
			return testView(sessionID), nil
		},
		SelectPathFunc: func(ctx context.Context, sessionID string, points []puzzle.Point) (*service.GestureResult, error) {
			gotPoints = points
			return &service.GestureResult{Matched: true, Word: "CAT", Path: points, Puzzle: testView(sessionID)}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/s1/gesture/begin", map[string]int{"column": 0, "row": 0}))
	if w.Code != http.StatusOK {
		t.Fatalf("begin: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/s1/gesture/hit", map[string]int{"column": 0, "row": 2}))
	if w.Code != http.StatusOK {
		t.Fatalf("hit: expected 200, got %d", w.Code)
	}

	if gotBegin != (puzzle.Point{Column: 0, Row: 0}) || gotHit != (puzzle.Point{Column: 0, Row: 2}) {
		t.Errorf("Unexpected points begin=%v hit=%v", gotBegin, gotHit)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/s1/gesture/end", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("end: expected 200, got %d", w.Code)
	}

	body := map[string]interface{}{"points": []map[string]int{{"column": 0, "row": 2}, {"column": 0, "row": 0}}}
	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/s1/gesture", body))
	if w.Code != http.StatusOK {
		t.Fatalf("gesture: expected 200, got %d", w.Code)
	}

	var result service.GestureResult
	parseResponse(t, w, &result)
	if !result.Matched || result.Word != "CAT" {
		t.Errorf("Unexpected result %+v", result)
	}
	if len(gotPoints) != 2 || gotPoints[0] != (puzzle.Point{Column: 0, Row: 2}) {
		t.Errorf("Unexpected points %v", gotPoints)
	}
}

func TestGestureEndpoints_BadInput(t *testing.T) {
	mockService := &MockGameService{
		BeginGestureFunc: func(ctx context.Context, sessionID string, pt puzzle.Point) (*service.PuzzleView, error) {
			return nil, &puzzle.RangeError{Point: pt, Dimensions: puzzle.GridDimensions{Columns: 3, Rows: 3}}
		},
		EndGestureFunc: func(ctx context.Context, sessionID string) (*service.GestureResult, error) {
			return nil, service.ErrNoCurrentPuzzle
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
	}{
		{"begin without body", "/api/sessions/s1/gesture/begin", nil, http.StatusBadRequest},
		{"begin out of range", "/api/sessions/s1/gesture/begin", map[string]int{"column": 9, "row": 0}, http.StatusBadRequest},
		{"hit with junk", "/api/sessions/s1/gesture/hit", "junk", http.StatusBadRequest},
		{"empty path", "/api/sessions/s1/gesture", map[string]interface{}{"points": []int{}}, http.StatusBadRequest},
		{"end on completed group", "/api/sessions/s1/gesture/end", nil, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", tt.path, tt.body))
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
		})
	}
}

func TestRestartAndNext(t *testing.T) {
	var gotMethod string
	mockService := &MockGameService{
		RestartGroupFunc: func(ctx context.Context, sessionID, method string) (*service.PuzzleView, error) {
			gotMethod = method
			return testView(sessionID), nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/s1/restart", map[string]string{"iteration_method": "random"}))
	if w.Code != http.StatusOK {
		t.Fatalf("restart: expected 200, got %d", w.Code)
	}
	if gotMethod != "random" {
		t.Errorf("Expected method random, got %q", gotMethod)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/s1/restart", nil))
	if w.Code != http.StatusOK || gotMethod != "" {
		t.Errorf("restart without body: status %d method %q", w.Code, gotMethod)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/s1/next", nil))
	if w.Code != http.StatusOK {
		t.Errorf("next: expected 200, got %d", w.Code)
	}
}

func TestDescribeCell(t *testing.T) {
	var got puzzle.Point
	mockService := &MockGameService{
		DescribeCellFunc: func(ctx context.Context, sessionID string, pt puzzle.Point) (*service.CellInfo, error) {
			got = pt
			if pt.Column < 0 {
				return nil, &puzzle.RangeError{Point: pt}
			}
			return &service.CellInfo{Point: pt, Character: "O", Matched: true}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/s1/cells/1/2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if got != (puzzle.Point{Column: 1, Row: 2}) {
		t.Errorf("Expected column 1 row 2, got %v", got)
	}

	var cell service.CellInfo
	parseResponse(t, w, &cell)
	if cell.Character != "O" || !cell.Matched {
		t.Errorf("Unexpected cell %+v", cell)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/s1/cells/-1/0", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/s1/cells/a/0", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for non-numeric column, got %d", w.Code)
	}
}

// Source Tests

func TestSources(t *testing.T) {
	var savedName, savedBlob string
	mockService := &MockGameService{
		ListSourcesFunc: func(ctx context.Context) ([]*service.SourceInfo, error) {
			return []*service.SourceInfo{{Name: "main", Default: true, Puzzles: 9}}, nil
		},
		GetSourceFunc: func(ctx context.Context, name string) (*service.SourceDetail, error) {
			if name != "main" {
				return nil, fmt.Errorf("load %q: %w", name, config.ErrSourceNotFound)
			}
			return &service.SourceDetail{SourceInfo: service.SourceInfo{Name: name, Puzzles: 9}}, nil
		},
		SaveSourceFunc: func(ctx context.Context, name string, blob []byte) (*service.SourceInfo, error) {
			if len(blob) == 0 {
				return nil, fmt.Errorf("%w: %w", config.ErrInvalidSource, &group.GroupError{Name: name, Reason: group.ErrNoData})
			}
			savedName, savedBlob = name, string(blob)
			return &service.SourceInfo{Name: name, Puzzles: 1}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sources", nil))
	var list []*service.SourceInfo
	parseResponse(t, w, &list)
	if len(list) != 1 || !list[0].Default {
		t.Errorf("Unexpected source list %+v", list)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sources/main", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sources/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sources", map[string]string{"name": "mine", "blob": "{}\n"}))
	if w.Code != http.StatusCreated {
		t.Errorf("Expected 201, got %d", w.Code)
	}
	if savedName != "mine" || savedBlob != "{}\n" {
		t.Errorf("Unexpected save %q %q", savedName, savedBlob)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sources", map[string]string{"name": "empty"}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty blob, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sources", map[string]string{"blob": "x"}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing name, got %d", w.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{session.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("x: %w", config.ErrSourceNotFound), http.StatusNotFound},
		{service.ErrInvalidRequest, http.StatusBadRequest},
		{&puzzle.RangeError{}, http.StatusBadRequest},
		{&group.GroupError{Reason: group.ErrNoValidPuzzles}, http.StatusBadRequest},
		{service.ErrNoCurrentPuzzle, http.StatusConflict},
		{fmt.Errorf("%w: %w", source.ErrTotalFailure, errors.New("boom")), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: %w", source.ErrTotalFailure, errors.Join(source.ErrNoRemote,
			&group.GroupError{Name: "main", Reason: group.ErrNoValidPuzzles})), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: %w", source.ErrTotalFailure, errors.Join(source.ErrNoRemote,
			fmt.Errorf("load %q: %w", "missing", config.ErrSourceNotFound))), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestWebSocket_RequiresSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, session.ErrSessionNotFound
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/ws", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/ws?session=missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

// Integration: real service, session store, catalog and hub

// C X Y
// A O Z
// T Q W
const animalsRecord = `{"source_language":"en","word":"animals","target_language":"en",` +
	`"word_locations":{"0,0,0,1,0,2":"CAT","0,0,1,1,2,2":"COW"},` +
	`"character_grid":[["C","X","Y"],["A","O","Z"],["T","Q","W"]]}`

func setupIntegrationServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "animals.txt"), []byte(animalsRecord+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	catalog, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("config manager: %v", err)
	}
	acquirer := source.NewAcquirer(source.Config{FallbackSource: "animals"}, catalog)
	svc := service.NewGameService(session.NewManager(), catalog, acquirer, service.WithDisplayTranslation(true))

	server := setupTestServer(t, svc)
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)
	return ts, server
}

func postJSON(t *testing.T, url string, body interface{}, target interface{}) int {
	t.Helper()
	data, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestIntegration_PlayOverREST(t *testing.T) {
	ts, server := setupIntegrationServer(t)

	var info service.SessionInfo
	if code := postJSON(t, ts.URL+"/api/sessions", nil, &info); code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", code)
	}
	if info.SourceOutcome != string(source.RemoteFetchFailedUsedLocal) {
		t.Errorf("Expected local fallback outcome, got %q", info.SourceOutcome)
	}
	if info.Puzzle == nil || len(info.Puzzle.UnmatchedWords) != 2 {
		t.Fatalf("Expected two unmatched words, got %+v", info.Puzzle)
	}

	// Subscribe before playing so the solve is pushed
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=" + info.ID
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for server.hub.ClientCount(info.ID) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	var result service.GestureResult
	path := map[string]interface{}{"points": []puzzle.Point{{Column: 0, Row: 2}, {Column: 0, Row: 0}}}
	if code := postJSON(t, ts.URL+"/api/sessions/"+info.ID+"/gesture", path, &result); code != http.StatusOK {
		t.Fatalf("gesture: expected 200, got %d", code)
	}
	if !result.Matched || !result.Reversed || result.Word != "CAT" {
		t.Errorf("Expected reversed CAT, got %+v", result)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg websocket.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read websocket: %v", err)
	}
	if msg.Event != websocket.EventPuzzleUpdate || len(msg.Events) == 0 || msg.Events[0].Word != "CAT" {
		t.Errorf("Unexpected push %+v", msg)
	}

	code := postJSON(t, ts.URL+"/api/sessions/"+info.ID+"/gesture",
		map[string]interface{}{"points": []puzzle.Point{{Column: 0, Row: 0}, {Column: 7, Row: 7}}}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("Expected 400 for out-of-range path, got %d", code)
	}

	if code := postJSON(t, ts.URL+"/api/sessions/nope/next", nil, nil); code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", code)
	}

	if code := postJSON(t, ts.URL+"/api/sessions", map[string]string{"source": "missing"}, nil); code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown source, got %d", code)
	}
}
