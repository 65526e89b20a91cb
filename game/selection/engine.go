package selection

import (
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/wordsearch-translate/game/puzzle"
)

// Result describes the outcome of one gesture
type Result struct {
	Matched      bool           `json:"matched"`
	Word         string         `json:"word,omitempty"`
	Path         []puzzle.Point `json:"path"`
	Reversed     bool           `json:"reversed"`
	PuzzleSolved bool           `json:"puzzle_solved"`
	JustSolved   bool           `json:"just_solved"`
}

// Engine holds the selection path of the gesture in progress and the cells
// already claimed by found words. Matched cells are kept per puzzle, so they
// agree with the puzzle's matched words when the engine comes back to it.
// It is not safe for concurrent use.
type Engine struct {
	puzzle  *puzzle.Puzzle
	path    []puzzle.Point
	matched map[puzzle.Point]bool
	cells   map[*puzzle.Puzzle]map[puzzle.Point]bool
}

// NewEngine creates an engine bound to p. p may be nil until SetPuzzle is called.
func NewEngine(p *puzzle.Puzzle) *Engine {
	e := &Engine{
		cells: make(map[*puzzle.Puzzle]map[puzzle.Point]bool),
	}
	e.SetPuzzle(p)
	return e
}

// SetPuzzle binds the engine to p and forgets the path. Cells matched on p
// earlier are kept.
func (e *Engine) SetPuzzle(p *puzzle.Puzzle) {
	e.puzzle = p
	e.path = nil

	matched, ok := e.cells[p]
	if !ok {
		matched = make(map[puzzle.Point]bool)
		if p != nil {
			e.cells[p] = matched
		}
	}
	e.matched = matched
}

// ClearMatches forgets the matched cells of every puzzle, for use after the
// puzzles are reset to unsolved.
func (e *Engine) ClearMatches() {
	clear(e.cells)
	e.SetPuzzle(e.puzzle)
}

// Puzzle returns the bound puzzle
func (e *Engine) Puzzle() *puzzle.Puzzle { return e.puzzle }

// BeginHit starts a new gesture at pt
func (e *Engine) BeginHit(pt puzzle.Point) {
	e.path = append(e.path[:0], pt)
}

// AddHit extends the current gesture with pt
func (e *Engine) AddHit(pt puzzle.Point) {
	n := len(e.path)
	if n == 0 {
		e.path = append(e.path, pt)
		return
	}

	last := e.path[n-1]
	if pt == last {
		return
	}

	// Backing up over the previous cell undoes the last step.
	if n >= 2 && pt == e.path[n-2] {
		e.path = e.path[:n-1]
		return
	}

	if slices.Contains(e.path, pt) {
		return
	}

	if skipped := SkippedCells(last, pt); len(skipped) > 0 {
		e.path = append(e.path, skipped...)
		return
	}
	e.path = append(e.path, pt)
}

// EndGesture validates the path against the puzzle, forward first and then
// reversed, and clears it.
func (e *Engine) EndGesture() Result {
	path := e.path
	e.path = nil

	result := Result{Path: path}
	if e.puzzle == nil || len(path) == 0 {
		return result
	}

	wasSolved := e.puzzle.IsSolved()

	word, ok := e.validate(path)
	if !ok && len(path) > 1 {
		reversed := puzzle.Reverse(path)
		if word, ok = e.validate(reversed); ok {
			result.Reversed = true
		}
	}

	result.PuzzleSolved = e.puzzle.IsSolved()
	if !ok {
		return result
	}

	for _, pt := range path {
		e.matched[pt] = true
	}
	result.Matched = true
	result.Word = word
	result.JustSolved = !wasSolved && result.PuzzleSolved

	return result
}

func (e *Engine) validate(path []puzzle.Point) (string, bool) {
	text, err := e.puzzle.TextAlong(path)
	if err != nil {
		log.Warn().Err(err).Str("path", puzzle.PathKey(path)).Msg("selection left the grid")
		return "", false
	}
	if !e.puzzle.ValidateSelection(text, path) {
		return "", false
	}
	return text, true
}

// Path returns a copy of the path of the gesture in progress
func (e *Engine) Path() []puzzle.Point {
	return slices.Clone(e.path)
}

// IsHighlighted reports whether pt is on the current path
func (e *Engine) IsHighlighted(pt puzzle.Point) bool {
	return slices.Contains(e.path, pt)
}

// IsMatched reports whether pt belongs to a found word
func (e *Engine) IsMatched(pt puzzle.Point) bool {
	return e.matched[pt]
}

// MatchedCells returns the cells of found words in row, then column, order
func (e *Engine) MatchedCells() []puzzle.Point {
	cells := make([]puzzle.Point, 0, len(e.matched))
	for pt := range e.matched {
		cells = append(cells, pt)
	}
	slices.SortFunc(cells, func(a, b puzzle.Point) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Column - b.Column
	})
	return cells
}
