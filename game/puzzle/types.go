package puzzle

import "fmt"

const (
	// NoUnmatchedWords is returned by UnmatchedWords once every word is found.
	NoUnmatchedWords = "(none)"

	// PathSeparator joins coordinates inside a path key.
	PathSeparator = ","
)

// Point is a (column, row) coordinate inside a character grid
type Point struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// String renders the point as "(column,row)"
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Column, p.Row)
}

// GridDimensions holds the column and row counts of a grid
type GridDimensions struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
}

// Contains reports whether p lies inside the grid
func (d GridDimensions) Contains(p Point) bool {
	return p.Row >= 0 && p.Row < d.Rows && p.Column >= 0 && p.Column < d.Columns
}

// Record is the decoded form of one input line
type Record struct {
	SourceLanguage string            `json:"source_language"`
	SourceWord     string            `json:"word"`
	TargetLanguage string            `json:"target_language"`
	WordLocations  map[string]string `json:"word_locations"`
	CharacterGrid  [][]string        `json:"character_grid"`
}
