// Package puzzle provides the word search puzzle model for Word Search Translate.
//
// The puzzle package implements:
//   - Parsing and validation of a single puzzle record (one JSON object per line)
//   - Grid character lookups with bounds checking
//   - Word validation against the exact path of grid cells that spells it
//   - Per-word progress tracking and reset for replay
//
// Record Format:
//
// Each record is a JSON object with a source word in one language and the
// translations hidden in a character grid:
//
//	{"source_language": "en", "word": "cat", "target_language": "es",
//	 "word_locations": {"0,0,1,0,2,0,3,0": "GATO"},
//	 "character_grid": [["G","A","T","O"],["X","Y","Z","W"]]}
//
// Keys of word_locations are path keys: the (column,row) pairs of every cell
// along the word, in reading order, joined with commas.
//
// Usage:
//
//	p, err := puzzle.ParseRecord(line)
//	if err != nil {
//		var recErr *puzzle.RecordError
//		if errors.As(err, &recErr) {
//			log.Warn().Str("stage", string(recErr.Stage)).Msg(recErr.Message)
//		}
//		return err
//	}
//
//	path := []puzzle.Point{{Column: 0, Row: 0}, {Column: 1, Row: 0}}
//	found := p.ValidateSelection("GA", path)
//
// Validation:
//
// Parsing only checks that the required fields are populated and that the
// grid is rectangular. Path keys are not checked against the grid; bounds are
// enforced lazily by CharacterAt.
package puzzle
