package puzzle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseRecord decodes one line of puzzle input and builds a Puzzle from it.
// Malformed JSON and schema problems both come back as a *RecordError.
func ParseRecord(line string) (*Puzzle, error) {
	var rec Record
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &rec); err != nil {
		return nil, &RecordError{Stage: StageDecode, Message: err.Error()}
	}
	return New(rec)
}

// ValidateRecord runs the record checks in order and returns the first failure
func ValidateRecord(rec Record) error {
	if rec.SourceLanguage == "" || rec.SourceWord == "" {
		return &RecordError{Stage: StageSource, Message: "failed to populate source_language or word"}
	}

	if rec.TargetLanguage == "" || len(rec.WordLocations) == 0 {
		return &RecordError{Stage: StageTarget, Message: "failed to populate target_language or word_locations"}
	}

	if len(rec.CharacterGrid) == 0 || len(rec.CharacterGrid[0]) == 0 {
		return &RecordError{Stage: StageGrid, Message: "failed to populate character_grid"}
	}

	columns := len(rec.CharacterGrid[0])
	for i, row := range rec.CharacterGrid {
		if len(row) != columns {
			return &RecordError{
				Stage:   StageGrid,
				Message: fmt.Sprintf("character_grid is not rectangular: row %d has %d columns, expected %d", i, len(row), columns),
			}
		}
	}

	return nil
}
