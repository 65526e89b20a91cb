package puzzle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Puzzle is one word search grid with its target words and progress.
// The grid and word mapping never change after construction; only the
// matched flags do, through ValidateSelection and ResetToUnsolved.
type Puzzle struct {
	sourceLanguage string
	sourceWord     string
	targetLanguage string

	dimensions GridDimensions
	grid       [][]string

	wordsByPath map[string]string
	words       []string // distinct word texts, ordered by path key
	matched     map[string]bool
}

// New builds a Puzzle from a decoded record after validating it
func New(rec Record) (*Puzzle, error) {
	if err := ValidateRecord(rec); err != nil {
		return nil, err
	}

	grid := make([][]string, len(rec.CharacterGrid))
	for i, row := range rec.CharacterGrid {
		grid[i] = append([]string(nil), row...)
	}

	p := &Puzzle{
		sourceLanguage: rec.SourceLanguage,
		sourceWord:     rec.SourceWord,
		targetLanguage: rec.TargetLanguage,
		dimensions:     GridDimensions{Columns: len(grid[0]), Rows: len(grid)},
		grid:           grid,
		wordsByPath:    make(map[string]string, len(rec.WordLocations)),
		matched:        make(map[string]bool, len(rec.WordLocations)),
	}

	keys := make([]string, 0, len(rec.WordLocations))
	for key := range rec.WordLocations {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		word := rec.WordLocations[key]
		p.wordsByPath[key] = word
		if _, seen := p.matched[word]; !seen {
			p.matched[word] = false
			p.words = append(p.words, word)
		}
	}

	return p, nil
}

// SourceLanguage returns the language of the source word
func (p *Puzzle) SourceLanguage() string { return p.sourceLanguage }

// SourceWord returns the word being translated
func (p *Puzzle) SourceWord() string { return p.sourceWord }

// TargetLanguage returns the language of the hidden words
func (p *Puzzle) TargetLanguage() string { return p.targetLanguage }

// Dimensions returns the grid size
func (p *Puzzle) Dimensions() GridDimensions { return p.dimensions }

// IsSquare reports whether the grid has as many rows as columns
func (p *Puzzle) IsSquare() bool {
	return p.dimensions.Rows == p.dimensions.Columns
}

// Grid returns a copy of the character grid, rows outer
func (p *Puzzle) Grid() [][]string {
	grid := make([][]string, len(p.grid))
	for i, row := range p.grid {
		grid[i] = append([]string(nil), row...)
	}
	return grid
}

// TargetWords returns the distinct words hidden in the grid
func (p *Puzzle) TargetWords() []string {
	return append([]string(nil), p.words...)
}

// WordsByPath returns a copy of the path key to word mapping
func (p *Puzzle) WordsByPath() map[string]string {
	out := make(map[string]string, len(p.wordsByPath))
	for k, v := range p.wordsByPath {
		out[k] = v
	}
	return out
}

// CharacterAt returns the grid cell at pt, or a *RangeError when pt is outside the grid
func (p *Puzzle) CharacterAt(pt Point) (string, error) {
	if !p.dimensions.Contains(pt) {
		err := &RangeError{Point: pt, Dimensions: p.dimensions}
		log.Error().Err(err).Msg("puzzle point out of range")
		return "", err
	}
	return p.grid[pt.Row][pt.Column], nil
}

// TextAlong concatenates the characters along path
func (p *Puzzle) TextAlong(path []Point) (string, error) {
	var b strings.Builder
	for _, pt := range path {
		ch, err := p.CharacterAt(pt)
		if err != nil {
			return "", err
		}
		b.WriteString(ch)
	}
	return b.String(), nil
}

// ValidateSelection marks candidate as found when path is exactly the stored
// path for that word. The path is not reversed or normalized here.
func (p *Puzzle) ValidateSelection(candidate string, path []Point) bool {
	key := PathKey(path)

	word, ok := p.wordsByPath[key]
	if !ok {
		log.Debug().Str("path", key).Msg("selected sequence is not a target path")
		return false
	}

	if word != candidate {
		log.Debug().Str("path", key).Str("candidate", candidate).Msg("candidate does not match word at path")
		return false
	}

	log.Info().Str("word", word).Str("path", key).Msg("target word found")
	p.matched[word] = true
	return true
}

// IsMatched reports whether word has been found
func (p *Puzzle) IsMatched(word string) bool {
	return p.matched[word]
}

// ResetToUnsolved clears every matched flag
func (p *Puzzle) ResetToUnsolved() {
	for word := range p.matched {
		p.matched[word] = false
	}
}

// NumberOfUnmatchedWords counts distinct words not yet found
func (p *Puzzle) NumberOfUnmatchedWords() int {
	count := 0
	for _, found := range p.matched {
		if !found {
			count++
		}
	}
	return count
}

// UnmatchedWords lists words not yet found. When all are found it returns a
// single NoUnmatchedWords placeholder for display.
func (p *Puzzle) UnmatchedWords() []string {
	var unmatched []string
	for _, word := range p.words {
		if !p.matched[word] {
			unmatched = append(unmatched, word)
		}
	}
	if len(unmatched) == 0 {
		return []string{NoUnmatchedWords}
	}
	return unmatched
}

// IsSolved reports whether every word has been found
func (p *Puzzle) IsSolved() bool {
	return p.NumberOfUnmatchedWords() == 0
}

// IsFresh reports whether no word has been found yet
func (p *Puzzle) IsFresh() bool {
	return p.NumberOfUnmatchedWords() == len(p.words)
}

// Equal compares the immutable content of two puzzles
func (p *Puzzle) Equal(other *Puzzle) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.sourceLanguage != other.sourceLanguage ||
		p.sourceWord != other.sourceWord ||
		p.targetLanguage != other.targetLanguage ||
		p.dimensions != other.dimensions ||
		len(p.wordsByPath) != len(other.wordsByPath) {
		return false
	}
	for key, word := range p.wordsByPath {
		if other.wordsByPath[key] != word {
			return false
		}
	}
	for r := range p.grid {
		for c := range p.grid[r] {
			if p.grid[r][c] != other.grid[r][c] {
				return false
			}
		}
	}
	return true
}

// String dumps the puzzle for diagnostics
func (p *Puzzle) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Puzzle %s:%q -> %s\n", p.sourceLanguage, p.sourceWord, p.targetLanguage)
	fmt.Fprintf(&b, "  targetWords     = %s\n", strings.Join(p.words, " "))
	fmt.Fprintf(&b, "  gridDimensions  = %dx%d\n", p.dimensions.Columns, p.dimensions.Rows)
	for _, row := range p.grid {
		fmt.Fprintf(&b, "    %s\n", strings.Join(row, " "))
	}
	fmt.Fprintf(&b, "  isSolved=%t isFresh=%t isSquare=%t unmatched=%d %v",
		p.IsSolved(), p.IsFresh(), p.IsSquare(), p.NumberOfUnmatchedWords(), p.UnmatchedWords())
	return b.String()
}
