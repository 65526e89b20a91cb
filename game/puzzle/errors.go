package puzzle

import "fmt"

// Stage identifies which group of record fields failed validation
type Stage string

const (
	StageDecode Stage = "decode"
	StageSource Stage = "source"
	StageTarget Stage = "target"
	StageGrid   Stage = "grid"
)

// RecordError reports why a single record could not become a Puzzle
type RecordError struct {
	Stage   Stage
	Message string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %s: %s", e.Stage, e.Message)
}

// RangeError reports a grid lookup outside the puzzle's dimensions
type RangeError struct {
	Point      Point
	Dimensions GridDimensions
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("point %s out of range for %dx%d grid",
		e.Point, e.Dimensions.Columns, e.Dimensions.Rows)
}
