package service

import (
	"time"

	"github.com/wricardo/wordsearch-translate/game/group"
	"github.com/wricardo/wordsearch-translate/game/puzzle"
)

// Event types reported in GestureResult.Events and over the websocket hub
const (
	EventWordFound      = "word_found"
	EventNoMatch        = "no_match"
	EventPuzzleSolved   = "puzzle_solved"
	EventGroupCompleted = "group_completed"
	EventNextPuzzle     = "next_puzzle"
	EventRestart        = "restart"
)

// SessionInfo provides information about a play session
type SessionInfo struct {
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	SourceOutcome   string      `json:"source_outcome,omitempty"`
	IterationMethod string      `json:"iteration_method"`
	CreatedAt       time.Time   `json:"created_at"`
	LastAccessedAt  time.Time   `json:"last_accessed_at"`
	PuzzleCount     int         `json:"puzzle_count"`
	UnsolvedPuzzles int         `json:"unsolved_puzzles"`
	Puzzle          *PuzzleView `json:"puzzle,omitempty"`
}

// PuzzleView is the rendering collaborator's view of the current puzzle
type PuzzleView struct {
	SessionID   string `json:"session_id"`
	PuzzleIndex int    `json:"puzzle_index"`

	SourceLanguage string                `json:"source_language,omitempty"`
	SourceWord     string                `json:"source_word,omitempty"`
	TargetLanguage string                `json:"target_language,omitempty"`
	Dimensions     puzzle.GridDimensions `json:"dimensions"`
	Grid           [][]string            `json:"grid,omitempty"`

	// UnmatchedWords is empty when translations are hidden; UnmatchedCount is always set.
	UnmatchedWords []string       `json:"unmatched_words,omitempty"`
	UnmatchedCount int            `json:"unmatched_count"`
	TotalWords     int            `json:"total_words"`
	MatchedCells   []puzzle.Point `json:"matched_cells"`
	Path           []puzzle.Point `json:"path"`
	PuzzleSolved   bool           `json:"puzzle_solved"`

	PuzzleCount     int    `json:"puzzle_count"`
	UnsolvedPuzzles int    `json:"unsolved_puzzles"`
	IsLastPuzzle    bool   `json:"is_last_puzzle"`
	GroupCompleted  bool   `json:"group_completed"`
	IterationMethod string `json:"iteration_method"`
}

// GestureResult contains the outcome of a completed gesture
type GestureResult struct {
	Matched      bool           `json:"matched"`
	Word         string         `json:"word,omitempty"`
	Path         []puzzle.Point `json:"path"`
	Reversed     bool           `json:"reversed"`
	PuzzleSolved bool           `json:"puzzle_solved"`
	Message      string         `json:"message"`
	Events       []GameEvent    `json:"events,omitempty"`
	Puzzle       *PuzzleView    `json:"puzzle"`
}

// GameEvent represents an event that occurred during play
type GameEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Word      string    `json:"word,omitempty"`
}

// CellInfo describes one grid cell of the current puzzle
type CellInfo struct {
	Point       puzzle.Point `json:"point"`
	Character   string       `json:"character"`
	Highlighted bool         `json:"highlighted"`
	Matched     bool         `json:"matched"`
}

// SourceInfo provides information about a puzzle source in the catalog
type SourceInfo struct {
	Name     string                `json:"name"`
	Filename string                `json:"filename"`
	Origin   string                `json:"origin"` // "bundled" or "directory"
	Default  bool                  `json:"default"`
	Puzzles  int                   `json:"puzzles"`
	Stats    group.ValidationStats `json:"stats"`
}

// PuzzleSummary describes one puzzle of a source without its grid
type PuzzleSummary struct {
	Index          int                   `json:"index"`
	SourceLanguage string                `json:"source_language"`
	SourceWord     string                `json:"source_word"`
	TargetLanguage string                `json:"target_language"`
	Dimensions     puzzle.GridDimensions `json:"dimensions"`
	TargetWords    []string              `json:"target_words"`
}

// SourceDetail is a source together with its parsed puzzles
type SourceDetail struct {
	SourceInfo
	PuzzleList []PuzzleSummary `json:"puzzle_list"`
}
