package selection

import "github.com/wricardo/wordsearch-translate/game/puzzle"

// Direction is one of the eight compass directions on the grid.
// Rows grow downward, so North decreases the row.
type Direction int

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var directionNames = [...]string{"north", "northeast", "east", "southeast", "south", "southwest", "west", "northwest"}

func (d Direction) String() string {
	if d < North || d > NorthWest {
		return "unknown"
	}
	return directionNames[d]
}

// Delta returns the column and row step for d
func (d Direction) Delta() (dc, dr int) {
	switch d {
	case North:
		return 0, -1
	case NorthEast:
		return 1, -1
	case East:
		return 1, 0
	case SouthEast:
		return 1, 1
	case South:
		return 0, 1
	case SouthWest:
		return -1, 1
	case West:
		return -1, 0
	case NorthWest:
		return -1, -1
	}
	return 0, 0
}

// DirectionBetween reports the direction from a to b when both lie on one
// horizontal, vertical or diagonal line. It returns false for equal points.
func DirectionBetween(a, b puzzle.Point) (Direction, bool) {
	dc := sign(b.Column - a.Column)
	dr := sign(b.Row - a.Row)

	if dc == 0 && dr == 0 {
		return 0, false
	}
	if dc != 0 && dr != 0 && abs(b.Column-a.Column) != abs(b.Row-a.Row) {
		return 0, false
	}

	for d := North; d <= NorthWest; d++ {
		if ddc, ddr := d.Delta(); ddc == dc && ddr == dr {
			return d, true
		}
	}
	return 0, false
}

// SkippedCells lists the cells after from up to and including to, stepping
// one cell at a time. It returns nil unless the points are on a shared line
// and more than one cell apart.
func SkippedCells(from, to puzzle.Point) []puzzle.Point {
	d, ok := DirectionBetween(from, to)
	if !ok {
		return nil
	}

	steps := max(abs(to.Column-from.Column), abs(to.Row-from.Row))
	if steps < 2 {
		return nil
	}

	dc, dr := d.Delta()
	cells := make([]puzzle.Point, 0, steps)
	for i := 1; i <= steps; i++ {
		cells = append(cells, puzzle.Point{Column: from.Column + i*dc, Row: from.Row + i*dr})
	}
	return cells
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
