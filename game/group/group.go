package group

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/wordsearch-translate/game/puzzle"
)

// UndefinedIndex marks a group with no current puzzle
const UndefinedIndex = -1

// maxLineSize bounds a single record line
const maxLineSize = 4 * 1024 * 1024

// IterationMethod decides the order in which unsolved puzzles are offered
type IterationMethod int

const (
	Sequential IterationMethod = iota
	Random
)

func (m IterationMethod) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Random:
		return "random"
	default:
		return fmt.Sprintf("IterationMethod(%d)", int(m))
	}
}

// ParseIterationMethod accepts "sequential" (or "in_order") and "random"
func ParseIterationMethod(s string) (IterationMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sequential", "in_order", "inorder", "in-order":
		return Sequential, nil
	case "random":
		return Random, nil
	default:
		return Sequential, fmt.Errorf("unknown iteration method %q (use sequential or random)", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (m IterationMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *IterationMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseIterationMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Option configures a Group
type Option func(*Group)

// WithRand sets the random source used by Random iteration
func WithRand(r *rand.Rand) Option {
	return func(g *Group) {
		g.rng = r
	}
}

// Group owns an ordered set of puzzles and the current position in it
type Group struct {
	name    string
	puzzles []*puzzle.Puzzle
	method  IterationMethod
	current int
	stats   ValidationStats
	rng     *rand.Rand
}

// Load parses blob line by line and builds a Group from every valid record.
// Bad lines are skipped; a *GroupError is returned only when the blob is
// empty, undecodable, or yields no puzzle at all.
func Load(name string, blob []byte, method IterationMethod, opts ...Option) (*Group, error) {
	puzzles, stats, err := Scan(name, blob)
	if err != nil {
		return nil, err
	}

	g, err := New(name, puzzles, method, opts...)
	if err != nil {
		return nil, err
	}
	g.stats = stats

	log.Info().
		Str("source", name).
		Int("lines", stats.LineCount).
		Int("empty", stats.EmptyLines).
		Int("failed", stats.JSONProcessingFailure).
		Int("parsed", stats.JSONProcessingSuccess).
		Msg("puzzle group loaded")

	return g, nil
}

// Scan parses every line of blob without building a Group
func Scan(name string, blob []byte) ([]*puzzle.Puzzle, ValidationStats, error) {
	var stats ValidationStats

	if len(blob) == 0 {
		stats.ErrorMessage = ErrNoData.Error()
		return nil, stats, &GroupError{Name: name, Reason: ErrNoData, Stats: stats}
	}
	if !utf8.Valid(blob) {
		stats.ErrorMessage = ErrUndecodable.Error()
		return nil, stats, &GroupError{Name: name, Reason: ErrUndecodable, Stats: stats}
	}

	var puzzles []*puzzle.Puzzle

	for rest := blob; len(rest) > 0; {
		var line []byte
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line, rest = rest[:i], rest[i+1:]
		} else {
			line, rest = rest, nil
		}
		line = bytes.TrimSuffix(line, []byte("\r"))
		stats.LineCount++

		if len(bytes.TrimSpace(line)) == 0 {
			stats.EmptyLines++
			continue
		}

		var (
			p   *puzzle.Puzzle
			err error
		)
		if len(line) > maxLineSize {
			err = fmt.Errorf("line is %d bytes, limit is %d", len(line), maxLineSize)
		} else {
			p, err = puzzle.ParseRecord(string(line))
		}
		if err != nil {
			stats.JSONProcessingFailure++
			stats.Failures = append(stats.Failures, LineFailure{Line: stats.LineCount, Error: err.Error()})
			log.Warn().Str("source", name).Int("line", stats.LineCount).Err(err).Msg("skipping puzzle record")
			continue
		}

		puzzles = append(puzzles, p)
		stats.JSONProcessingSuccess++
	}

	if len(puzzles) == 0 {
		stats.ErrorMessage = fmt.Sprintf("cannot find one valid puzzle in %s", name)
		return nil, stats, &GroupError{Name: name, Reason: ErrNoValidPuzzles, Stats: stats}
	}

	return puzzles, stats, nil
}

// New builds a Group from already parsed puzzles and selects the first current puzzle
func New(name string, puzzles []*puzzle.Puzzle, method IterationMethod, opts ...Option) (*Group, error) {
	if len(puzzles) == 0 {
		return nil, &GroupError{Name: name, Reason: ErrNoValidPuzzles}
	}

	g := &Group{
		name:    name,
		puzzles: puzzles,
		method:  method,
		current: UndefinedIndex,
		stats:   ValidationStats{JSONProcessingSuccess: len(puzzles), LineCount: len(puzzles)},
	}
	for _, opt := range opts {
		opt(g)
	}

	g.RestartIteration(method)
	return g, nil
}

// Name returns the source name the group was loaded from
func (g *Group) Name() string { return g.name }

// Len returns the number of puzzles
func (g *Group) Len() int { return len(g.puzzles) }

// Puzzle returns the puzzle at index i, or nil when i is out of range
func (g *Group) Puzzle(i int) *puzzle.Puzzle {
	if i < 0 || i >= len(g.puzzles) {
		return nil
	}
	return g.puzzles[i]
}

// Puzzles returns the puzzles in record order
func (g *Group) Puzzles() []*puzzle.Puzzle {
	return append([]*puzzle.Puzzle(nil), g.puzzles...)
}

// Stats returns the validation tally from loading
func (g *Group) Stats() ValidationStats { return g.stats }

// IterationMethod returns the active iteration method
func (g *Group) IterationMethod() IterationMethod { return g.method }

// CurrentIndex returns the current index or UndefinedIndex
func (g *Group) CurrentIndex() int { return g.current }

// CurrentPuzzle returns the current puzzle, or nil when none is selected
func (g *Group) CurrentPuzzle() *puzzle.Puzzle {
	if g.current == UndefinedIndex {
		return nil
	}
	return g.puzzles[g.current]
}

// NumberOfUnsolvedPuzzles counts puzzles with at least one word left
func (g *Group) NumberOfUnsolvedPuzzles() int {
	unsolved := 0
	for _, p := range g.puzzles {
		if !p.IsSolved() {
			unsolved++
		}
	}
	return unsolved
}

// IsLastPuzzle reports whether exactly one unsolved puzzle remains
func (g *Group) IsLastPuzzle() bool {
	return g.NumberOfUnsolvedPuzzles() == 1
}

// SelectNext moves to the next unsolved puzzle under the iteration method and
// returns it. It returns nil once every puzzle is solved.
func (g *Group) SelectNext() *puzzle.Puzzle {
	defer func() {
		log.Debug().Str("source", g.name).Int("current_index", g.current).Msg("puzzle selected")
	}()

	if g.NumberOfUnsolvedPuzzles() == 0 {
		g.current = UndefinedIndex
		return nil
	}

	switch g.method {
	case Random:
		g.current = g.randomIndex(len(g.puzzles))
	default:
		if g.current == UndefinedIndex {
			g.current = 0
		}
	}

	// At least one puzzle is unsolved, so the scan terminates.
	for g.puzzles[g.current].IsSolved() {
		g.current = (g.current + 1) % len(g.puzzles)
	}

	return g.puzzles[g.current]
}

// RestartIteration resets every puzzle to unsolved and selects a new current
// puzzle using method.
func (g *Group) RestartIteration(method IterationMethod) {
	g.method = method
	for _, p := range g.puzzles {
		p.ResetToUnsolved()
	}
	g.current = UndefinedIndex
	g.SelectNext()
}

func (g *Group) randomIndex(n int) int {
	if g.rng != nil {
		return g.rng.IntN(n)
	}
	return rand.IntN(n)
}

// String dumps the group for diagnostics
func (g *Group) String() string {
	return fmt.Sprintf("Group %q: method=%s puzzles=%d unsolved=%d current=%d last=%t",
		g.name, g.method, len(g.puzzles), g.NumberOfUnsolvedPuzzles(), g.current, g.IsLastPuzzle())
}
