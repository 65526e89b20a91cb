package service

import (
	"context"
	"time"

	"github.com/wricardo/wordsearch-translate/game/group"
	"github.com/wricardo/wordsearch-translate/game/puzzle"
	"github.com/wricardo/wordsearch-translate/game/selection"
	"github.com/wricardo/wordsearch-translate/game/source"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Play
	GetPuzzle(ctx context.Context, sessionID string) (*PuzzleView, error)
	BeginGesture(ctx context.Context, sessionID string, pt puzzle.Point) (*PuzzleView, error)
	AddHit(ctx context.Context, sessionID string, pt puzzle.Point) (*PuzzleView, error)
	EndGesture(ctx context.Context, sessionID string) (*GestureResult, error)
	SelectPath(ctx context.Context, sessionID string, points []puzzle.Point) (*GestureResult, error)
	NextPuzzle(ctx context.Context, sessionID string) (*PuzzleView, error)
	RestartGroup(ctx context.Context, sessionID string, method string) (*PuzzleView, error)
	DescribeCell(ctx context.Context, sessionID string, pt puzzle.Point) (*CellInfo, error)

	// Sources
	ListSources(ctx context.Context) ([]*SourceInfo, error)
	GetSource(ctx context.Context, name string) (*SourceDetail, error)
	SaveSource(ctx context.Context, name string, blob []byte) (*SourceInfo, error)
}

// CreateSessionRequest selects the puzzle source and iteration order for a
// new session. An empty Source uses remote acquisition with local fallback.
type CreateSessionRequest struct {
	Source          string `json:"source,omitempty"`
	IterationMethod string `json:"iteration_method,omitempty"`
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, source string, g *group.Group) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	LastAccessed(id string) (time.Time, error)
}

// SourceCatalog handles named puzzle sources
type SourceCatalog interface {
	LoadBlob(name string) ([]byte, error)
	ListSources() ([]*SourceInfo, error)
	SaveSource(name string, blob []byte) (*SourceInfo, error)
}

// GroupAcquirer builds puzzle groups for new sessions
type GroupAcquirer interface {
	Acquire(ctx context.Context, method group.IterationMethod) (*group.Group, source.Outcome, error)
	AcquireNamed(ctx context.Context, name string, method group.IterationMethod) (*group.Group, error)
}

// Session is one player's group of puzzles and their gesture state
type Session struct {
	ID             string
	Source         string
	SourceOutcome  source.Outcome
	Group          *group.Group
	Selection      *selection.Engine
	CreatedAt      time.Time
	// LastAccessedAt belongs to the SessionManager; read it through LastAccessed.
	LastAccessedAt time.Time
}
