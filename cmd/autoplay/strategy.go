package main

import (
	"strings"

	"github.com/wricardo/wordsearch-translate/game/puzzle"
	"github.com/wricardo/wordsearch-translate/game/service"
)

// minWordCells is the shortest run tried when the words are hidden
const minWordCells = 2

type direction struct{ dc, dr int }

// Words may be read in any of the eight directions.
var allDirections = []direction{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {-1, -1}, {1, -1}, {-1, 1},
}

// Reversed paths are checked by the server, so half the directions suffice
// when sweeping blindly.
var sweepDirections = []direction{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// Strategy proposes paths for the current puzzle. With visible words it
// locates each one in the grid; otherwise it sweeps every straight run.
type Strategy struct {
	tried map[string]bool
}

func NewStrategy() *Strategy {
	return &Strategy{tried: make(map[string]bool)}
}

// Reset forgets the paths tried on the previous puzzle
func (s *Strategy) Reset() {
	s.tried = make(map[string]bool)
}

// Candidates returns the untried paths worth submitting for view
func (s *Strategy) Candidates(view *service.PuzzleView) [][]puzzle.Point {
	if view == nil || len(view.Grid) == 0 {
		return nil
	}

	var paths [][]puzzle.Point
	if len(view.UnmatchedWords) > 0 {
		for _, word := range view.UnmatchedWords {
			paths = append(paths, findWord(view.Grid, word)...)
		}
	} else {
		paths = sweep(view.Grid, matchedSet(view.MatchedCells))
	}

	out := paths[:0]
	for _, p := range paths {
		key := puzzle.PathKey(p)
		if s.tried[key] {
			continue
		}
		s.tried[key] = true
		out = append(out, p)
	}
	return out
}

// findWord returns every straight path spelling word
func findWord(grid [][]string, word string) [][]puzzle.Point {
	var paths [][]puzzle.Point
	for r := range grid {
		for c := range grid[r] {
			if !strings.HasPrefix(word, grid[r][c]) {
				continue
			}
			for _, d := range allDirections {
				if p := spell(grid, word, c, r, d); p != nil {
					paths = append(paths, p)
				}
			}
		}
	}
	return paths
}

// spell walks from (c, r) along d consuming word cell by cell
func spell(grid [][]string, word string, c, r int, d direction) []puzzle.Point {
	var path []puzzle.Point
	rest := word
	for rest != "" {
		if r < 0 || r >= len(grid) || c < 0 || c >= len(grid[r]) {
			return nil
		}
		cell := grid[r][c]
		if cell == "" || !strings.HasPrefix(rest, cell) {
			return nil
		}
		rest = rest[len(cell):]
		path = append(path, puzzle.Point{Column: c, Row: r})
		c += d.dc
		r += d.dr
	}
	return path
}

// sweep lists straight runs of at least minWordCells cells, skipping runs
// whose cells are all matched already. Shorter runs come first.
func sweep(grid [][]string, matched map[puzzle.Point]bool) [][]puzzle.Point {
	rows := len(grid)
	cols := len(grid[0])
	maxLen := rows
	if cols > maxLen {
		maxLen = cols
	}

	var paths [][]puzzle.Point
	for length := minWordCells; length <= maxLen; length++ {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				for _, d := range sweepDirections {
					endC, endR := c+d.dc*(length-1), r+d.dr*(length-1)
					if endC < 0 || endC >= cols || endR < 0 || endR >= rows {
						continue
					}

					path := make([]puzzle.Point, length)
					fresh := false
					for i := range path {
						path[i] = puzzle.Point{Column: c + d.dc*i, Row: r + d.dr*i}
						if !matched[path[i]] {
							fresh = true
						}
					}
					if fresh {
						paths = append(paths, path)
					}
				}
			}
		}
	}
	return paths
}

func matchedSet(points []puzzle.Point) map[puzzle.Point]bool {
	set := make(map[puzzle.Point]bool, len(points))
	for _, p := range points {
		set[p] = true
	}
	return set
}
