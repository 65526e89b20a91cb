package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/wordsearch-translate/game/group"
	"github.com/wricardo/wordsearch-translate/game/puzzle"
	"github.com/wricardo/wordsearch-translate/game/source"
)

var (
	ErrNoCurrentPuzzle = errors.New("no current puzzle: every puzzle in the group is solved")
	ErrInvalidRequest  = errors.New("invalid request")
)

// Option configures the game service
type Option func(*gameServiceImpl)

// WithDisplayTranslation shows the unmatched target words in puzzle views.
// When off only their count is reported.
func WithDisplayTranslation(display bool) Option {
	return func(s *gameServiceImpl) {
		s.displayTranslation = display
	}
}

// WithIterationMethod sets the iteration method used when a request names none
func WithIterationMethod(method group.IterationMethod) Option {
	return func(s *gameServiceImpl) {
		s.defaultMethod = method
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	sources  SourceCatalog
	acquirer GroupAcquirer
	mu       sync.RWMutex

	displayTranslation bool
	defaultMethod      group.IterationMethod
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, sources SourceCatalog, acquirer GroupAcquirer, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions:      sessions,
		sources:       sources,
		acquirer:      acquirer,
		defaultMethod: group.Random,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession acquires a puzzle group and starts a session on it
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	method, err := s.iterationMethod(req.IterationMethod)
	if err != nil {
		return nil, err
	}

	// Acquisition may block on the network and runs outside the service lock.
	var (
		g       *group.Group
		outcome source.Outcome
	)
	if req.Source == "" {
		g, outcome, err = s.acquirer.Acquire(ctx, method)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire puzzles: %w", err)
		}
	} else {
		g, err = s.acquirer.AcquireNamed(ctx, req.Source, method)
		if err != nil {
			return nil, fmt.Errorf("failed to load source %s: %w", req.Source, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Create("", g.Name(), g)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.SourceOutcome = outcome

	log.Info().
		Str("session", sess.ID).
		Str("source", sess.Source).
		Str("outcome", string(outcome)).
		Int("puzzles", g.Len()).
		Str("iteration", method.String()).
		Msg("session created")

	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		info := s.sessionInfo(sess)
		info.Puzzle = nil
		result = append(result, info)
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// GetPuzzle returns the view of the current puzzle
func (s *gameServiceImpl) GetPuzzle(ctx context.Context, sessionID string) (*PuzzleView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.puzzleView(sess), nil
}

// BeginGesture starts a new selection path at pt
func (s *gameServiceImpl) BeginGesture(ctx context.Context, sessionID string, pt puzzle.Point) (*PuzzleView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getPlayableSession(sessionID, pt)
	if err != nil {
		return nil, err
	}

	sess.Selection.BeginHit(pt)
	return s.puzzleView(sess), nil
}

// AddHit extends the selection path with pt
func (s *gameServiceImpl) AddHit(ctx context.Context, sessionID string, pt puzzle.Point) (*PuzzleView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getPlayableSession(sessionID, pt)
	if err != nil {
		return nil, err
	}

	sess.Selection.AddHit(pt)
	return s.puzzleView(sess), nil
}

// EndGesture validates the selection path and clears it
func (s *gameServiceImpl) EndGesture(ctx context.Context, sessionID string) (*GestureResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Group.CurrentPuzzle() == nil {
		return nil, ErrNoCurrentPuzzle
	}

	return s.endGesture(sess), nil
}

// SelectPath runs a whole gesture: the first point begins it, the rest are hits
func (s *gameServiceImpl) SelectPath(ctx context.Context, sessionID string, points []puzzle.Point) (*GestureResult, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: path must contain at least one point", ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getPlayableSession(sessionID, points...)
	if err != nil {
		return nil, err
	}

	sess.Selection.BeginHit(points[0])
	for _, pt := range points[1:] {
		sess.Selection.AddHit(pt)
	}
	return s.endGesture(sess), nil
}

// NextPuzzle advances the group to the next unsolved puzzle
func (s *gameServiceImpl) NextPuzzle(ctx context.Context, sessionID string) (*PuzzleView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Selection.SetPuzzle(sess.Group.SelectNext())
	return s.puzzleView(sess), nil
}

// RestartGroup resets every puzzle and reselects the current one. An empty
// method keeps the group's current iteration method.
func (s *gameServiceImpl) RestartGroup(ctx context.Context, sessionID string, method string) (*PuzzleView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	m := sess.Group.IterationMethod()
	if method != "" {
		if m, err = group.ParseIterationMethod(method); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}

	sess.Group.RestartIteration(m)
	sess.Selection.ClearMatches()
	sess.Selection.SetPuzzle(sess.Group.CurrentPuzzle())

	log.Info().Str("session", sess.ID).Str("iteration", m.String()).Msg("group restarted")
	return s.puzzleView(sess), nil
}

// DescribeCell reports one cell of the current puzzle
func (s *gameServiceImpl) DescribeCell(ctx context.Context, sessionID string, pt puzzle.Point) (*CellInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	p := sess.Group.CurrentPuzzle()
	if p == nil {
		return nil, ErrNoCurrentPuzzle
	}

	ch, err := p.CharacterAt(pt)
	if err != nil {
		return nil, err
	}

	return &CellInfo{
		Point:       pt,
		Character:   ch,
		Highlighted: sess.Selection.IsHighlighted(pt),
		Matched:     sess.Selection.IsMatched(pt),
	}, nil
}

// ListSources returns the puzzle source catalog
func (s *gameServiceImpl) ListSources(ctx context.Context) ([]*SourceInfo, error) {
	return s.sources.ListSources()
}

// GetSource parses a named source and summarizes its puzzles
func (s *gameServiceImpl) GetSource(ctx context.Context, name string) (*SourceDetail, error) {
	blob, err := s.sources.LoadBlob(name)
	if err != nil {
		return nil, err
	}

	detail := &SourceDetail{
		SourceInfo: SourceInfo{Name: strings.TrimSuffix(name, ".txt")},
		PuzzleList: []PuzzleSummary{},
	}
	if list, err := s.sources.ListSources(); err == nil {
		for _, info := range list {
			if info.Name == detail.Name {
				detail.SourceInfo = *info
				break
			}
		}
	}

	puzzles, stats, _ := group.Scan(detail.Name, blob)
	detail.Stats = stats
	detail.Puzzles = len(puzzles)
	for i, p := range puzzles {
		detail.PuzzleList = append(detail.PuzzleList, PuzzleSummary{
			Index:          i,
			SourceLanguage: p.SourceLanguage(),
			SourceWord:     p.SourceWord(),
			TargetLanguage: p.TargetLanguage(),
			Dimensions:     p.Dimensions(),
			TargetWords:    p.TargetWords(),
		})
	}

	return detail, nil
}

// SaveSource validates and stores a puzzle source
func (s *gameServiceImpl) SaveSource(ctx context.Context, name string, blob []byte) (*SourceInfo, error) {
	return s.sources.SaveSource(name, blob)
}

func (s *gameServiceImpl) iterationMethod(name string) (group.IterationMethod, error) {
	if name == "" {
		return s.defaultMethod, nil
	}
	m, err := group.ParseIterationMethod(name)
	if err != nil {
		return m, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return m, nil
}

// getSession looks up a session and marks it accessed
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// getPlayableSession also requires a current puzzle containing every point
func (s *gameServiceImpl) getPlayableSession(sessionID string, points ...puzzle.Point) (*Session, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	p := sess.Group.CurrentPuzzle()
	if p == nil {
		return nil, ErrNoCurrentPuzzle
	}

	dims := p.Dimensions()
	for _, pt := range points {
		if !dims.Contains(pt) {
			return nil, &puzzle.RangeError{Point: pt, Dimensions: dims}
		}
	}
	return sess, nil
}

func (s *gameServiceImpl) endGesture(sess *Session) *GestureResult {
	res := sess.Selection.EndGesture()
	now := time.Now()

	result := &GestureResult{
		Matched:      res.Matched,
		Word:         res.Word,
		Path:         res.Path,
		Reversed:     res.Reversed,
		PuzzleSolved: res.PuzzleSolved,
		Events:       []GameEvent{},
	}
	if result.Path == nil {
		result.Path = []puzzle.Point{}
	}

	if !res.Matched {
		result.Message = "No target word along that path"
		result.Events = append(result.Events, GameEvent{
			Type:      EventNoMatch,
			Message:   result.Message,
			Timestamp: now,
		})
		result.Puzzle = s.puzzleView(sess)
		return result
	}

	result.Message = fmt.Sprintf("Found %s", res.Word)
	result.Events = append(result.Events, GameEvent{
		Type:      EventWordFound,
		Message:   result.Message,
		Timestamp: now,
		Word:      res.Word,
	})

	if res.JustSolved {
		unsolved := sess.Group.NumberOfUnsolvedPuzzles()
		result.Message = fmt.Sprintf("Found %s. Puzzle solved! %d puzzle(s) left", res.Word, unsolved)
		result.Events = append(result.Events, GameEvent{
			Type:      EventPuzzleSolved,
			Message:   fmt.Sprintf("Solved %s", sess.Selection.Puzzle().SourceWord()),
			Timestamp: now,
		})
		if unsolved == 0 {
			result.Message = fmt.Sprintf("Found %s. Every puzzle in the group is solved!", res.Word)
			result.Events = append(result.Events, GameEvent{
				Type:      EventGroupCompleted,
				Message:   "All puzzles solved",
				Timestamp: now,
			})
		}
	}

	log.Debug().Str("session", sess.ID).Str("word", res.Word).Bool("reversed", res.Reversed).Msg("word found")

	result.Puzzle = s.puzzleView(sess)
	return result
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	lastAccessed, err := s.sessions.LastAccessed(sess.ID)
	if err != nil {
		lastAccessed = sess.CreatedAt
	}

	return &SessionInfo{
		ID:              sess.ID,
		Source:          sess.Source,
		SourceOutcome:   string(sess.SourceOutcome),
		IterationMethod: sess.Group.IterationMethod().String(),
		CreatedAt:       sess.CreatedAt,
		LastAccessedAt:  lastAccessed,
		PuzzleCount:     sess.Group.Len(),
		UnsolvedPuzzles: sess.Group.NumberOfUnsolvedPuzzles(),
		Puzzle:          s.puzzleView(sess),
	}
}

func (s *gameServiceImpl) puzzleView(sess *Session) *PuzzleView {
	g := sess.Group
	v := &PuzzleView{
		SessionID:       sess.ID,
		PuzzleIndex:     g.CurrentIndex(),
		MatchedCells:    sess.Selection.MatchedCells(),
		Path:            sess.Selection.Path(),
		PuzzleCount:     g.Len(),
		UnsolvedPuzzles: g.NumberOfUnsolvedPuzzles(),
		IsLastPuzzle:    g.IsLastPuzzle(),
		IterationMethod: g.IterationMethod().String(),
	}
	v.GroupCompleted = v.UnsolvedPuzzles == 0
	if v.Path == nil {
		v.Path = []puzzle.Point{}
	}

	p := g.CurrentPuzzle()
	if p == nil {
		return v
	}

	v.SourceLanguage = p.SourceLanguage()
	v.SourceWord = p.SourceWord()
	v.TargetLanguage = p.TargetLanguage()
	v.Dimensions = p.Dimensions()
	v.Grid = p.Grid()
	v.UnmatchedCount = p.NumberOfUnmatchedWords()
	v.TotalWords = len(p.TargetWords())
	v.PuzzleSolved = p.IsSolved()
	if s.displayTranslation {
		v.UnmatchedWords = p.UnmatchedWords()
	}
	return v
}
