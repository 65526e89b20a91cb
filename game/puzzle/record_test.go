package puzzle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord_Valid(t *testing.T) {
	p, err := ParseRecord(catRecord)
	require.NoError(t, err)

	assert.Equal(t, GridDimensions{Columns: 3, Rows: 3}, p.Dimensions())
	assert.Equal(t, 2, len(p.WordsByPath()))
	assert.Equal(t, "CAT", p.WordsByPath()["0,0,0,1,0,2"])
}

func TestParseRecord_Failures(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		stage Stage
	}{
		{
			name:  "not json",
			line:  `{"source_language": "en",`,
			stage: StageDecode,
		},
		{
			name:  "json array",
			line:  `[1,2,3]`,
			stage: StageDecode,
		},
		{
			name:  "wrong value type",
			line:  `{"source_language":"en","word":"cat","target_language":"es","word_locations":{"0,0":7},"character_grid":[["G"]]}`,
			stage: StageDecode,
		},
		{
			name:  "missing source language",
			line:  `{"word":"cat","target_language":"es","word_locations":{"0,0":"G"},"character_grid":[["G"]]}`,
			stage: StageSource,
		},
		{
			name:  "empty word",
			line:  `{"source_language":"en","word":"","target_language":"es","word_locations":{"0,0":"G"},"character_grid":[["G"]]}`,
			stage: StageSource,
		},
		{
			name:  "missing target language",
			line:  `{"source_language":"en","word":"cat","word_locations":{"0,0":"G"},"character_grid":[["G"]]}`,
			stage: StageTarget,
		},
		{
			name:  "no word locations",
			line:  `{"source_language":"en","word":"cat","target_language":"es","word_locations":{},"character_grid":[["G"]]}`,
			stage: StageTarget,
		},
		{
			name:  "missing grid",
			line:  `{"source_language":"en","word":"cat","target_language":"es","word_locations":{"0,0":"G"}}`,
			stage: StageGrid,
		},
		{
			name:  "empty first row",
			line:  `{"source_language":"en","word":"cat","target_language":"es","word_locations":{"0,0":"G"},"character_grid":[[]]}`,
			stage: StageGrid,
		},
		{
			name:  "ragged grid",
			line:  `{"source_language":"en","word":"cat","target_language":"es","word_locations":{"0,0":"G"},"character_grid":[["G","A"],["T"]]}`,
			stage: StageGrid,
		},
		{
			name:  "null",
			line:  `null`,
			stage: StageSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseRecord(tt.line)
			assert.Nil(t, p)

			var recErr *RecordError
			require.True(t, errors.As(err, &recErr), "expected *RecordError, got %v", err)
			assert.Equal(t, tt.stage, recErr.Stage)
			assert.NotEmpty(t, recErr.Message)
		})
	}
}

func TestParseRecord_ShortCircuitsInOrder(t *testing.T) {
	// Every group is broken; the source fields are reported first.
	_, err := ParseRecord(`{"character_grid":[[]]}`)

	var recErr *RecordError
	require.True(t, errors.As(err, &recErr))
	assert.Equal(t, StageSource, recErr.Stage)
}

func TestParseRecord_DoesNotCheckPathBounds(t *testing.T) {
	p, err := ParseRecord(`{"source_language":"en","word":"cat","target_language":"es",` +
		`"word_locations":{"9,9,10,10":"GA"},"character_grid":[["G","A"]]}`)
	require.NoError(t, err)
	assert.Equal(t, 1, p.NumberOfUnmatchedWords())
}
