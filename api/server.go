package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/wordsearch-translate/game/config"
	"github.com/wricardo/wordsearch-translate/game/group"
	"github.com/wricardo/wordsearch-translate/game/puzzle"
	"github.com/wricardo/wordsearch-translate/game/service"
	"github.com/wricardo/wordsearch-translate/game/session"
	"github.com/wricardo/wordsearch-translate/game/source"
	"github.com/wricardo/wordsearch-translate/transport/websocket"
)

// maxSourceBody bounds an uploaded puzzle source
const maxSourceBody = 32 << 20

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Play
	api.HandleFunc("/sessions/{id}/puzzle", s.handleGetPuzzle).Methods("GET")
	api.HandleFunc("/sessions/{id}/gesture/begin", s.handleBeginGesture).Methods("POST")
	api.HandleFunc("/sessions/{id}/gesture/hit", s.handleAddHit).Methods("POST")
	api.HandleFunc("/sessions/{id}/gesture/end", s.handleEndGesture).Methods("POST")
	api.HandleFunc("/sessions/{id}/gesture", s.handleSelectPath).Methods("POST")
	api.HandleFunc("/sessions/{id}/next", s.handleNextPuzzle).Methods("POST")
	api.HandleFunc("/sessions/{id}/restart", s.handleRestart).Methods("POST")
	api.HandleFunc("/sessions/{id}/cells/{column:-?[0-9]+}/{row:-?[0-9]+}", s.handleDescribeCell).Methods("GET")

	// Puzzle sources
	api.HandleFunc("/sources", s.handleListSources).Methods("GET")
	api.HandleFunc("/sources", s.handleSaveSource).Methods("POST")
	api.HandleFunc("/sources/{name}", s.handleGetSource).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
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

// respondServiceError maps service errors onto HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var (
		rangeErr *puzzle.RangeError
		groupErr *group.GroupError
	)
	switch {
	// A total failure wraps the local cause, which may itself be a source or group error.
	case errors.Is(err, source.ErrTotalFailure):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, config.ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, config.ErrInvalidSource),
		errors.As(err, &rangeErr), errors.As(err, &groupErr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoCurrentPuzzle):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) broadcast(sessionID string, view *service.PuzzleView, events []service.GameEvent) {
	if s.hub != nil && view != nil {
		s.hub.BroadcastToSession(sessionID, view, events)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSessionRequest

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	info, err := s.service.CreateSession(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Play Handlers

func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	view, err := s.service.GetPuzzle(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func decodePoint(r *http.Request) (puzzle.Point, error) {
	var pt *puzzle.Point
	if err := json.NewDecoder(r.Body).Decode(&pt); err != nil || pt == nil {
		return puzzle.Point{}, errors.New("Invalid request body: expected {\"column\":N,\"row\":N}")
	}
	return *pt, nil
}

func (s *Server) handleBeginGesture(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	pt, err := decodePoint(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.service.BeginGesture(r.Context(), sessionID, pt)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, view, nil)
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleAddHit(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	pt, err := decodePoint(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.service.AddHit(r.Context(), sessionID, pt)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, view, nil)
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleEndGesture(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.EndGesture(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.logGesture(sessionID, result)
	s.broadcast(sessionID, result.Puzzle, result.Events)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSelectPath(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Points []puzzle.Point `json:"points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Points) == 0 {
		respondError(w, http.StatusBadRequest, "points must contain at least one cell")
		return
	}

	result, err := s.service.SelectPath(r.Context(), sessionID, req.Points)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.logGesture(sessionID, result)
	s.broadcast(sessionID, result.Puzzle, result.Events)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) logGesture(sessionID string, result *service.GestureResult) {
	evt := log.Info().
		Str("session", sessionID).
		Str("path", puzzle.PathKey(result.Path)).
		Bool("matched", result.Matched)
	if result.Matched {
		evt = evt.Str("word", result.Word).Bool("reversed", result.Reversed)
	}
	evt.Bool("puzzle_solved", result.PuzzleSolved).Msg("gesture")
}

func (s *Server) handleNextPuzzle(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	view, err := s.service.NextPuzzle(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, view, []service.GameEvent{{
		Type:      service.EventNextPuzzle,
		Message:   "Next puzzle selected",
		Timestamp: time.Now(),
	}})
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		IterationMethod string `json:"iteration_method,omitempty"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	view, err := s.service.RestartGroup(r.Context(), sessionID, req.IterationMethod)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, view, []service.GameEvent{{
		Type:      service.EventRestart,
		Message:   "Group restarted",
		Timestamp: time.Now(),
	}})
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Group restarted successfully",
		"puzzle":  view,
	})
}

func (s *Server) handleDescribeCell(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	column, err := strconv.Atoi(vars["column"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid column")
		return
	}
	row, err := strconv.Atoi(vars["row"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid row")
		return
	}

	cell, err := s.service.DescribeCell(r.Context(), vars["id"], puzzle.Point{Column: column, Row: row})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cell)
}

// Source Handlers

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.service.ListSources(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sources)
}

func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	detail, err := s.service.GetSource(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleSaveSource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Blob string `json:"blob"`
	}

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSourceBody)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Source name is required")
		return
	}

	info, err := s.service.SaveSource(r.Context(), req.Name, []byte(req.Blob))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Puzzle source saved successfully",
		"source":  info,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if s.hub == nil {
		http.Error(w, "websocket not available", http.StatusServiceUnavailable)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
