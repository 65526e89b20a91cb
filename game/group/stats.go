package group

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoData         = errors.New("input contains no data")
	ErrUndecodable    = errors.New("input is not valid UTF-8 text")
	ErrNoValidPuzzles = errors.New("no valid puzzle in input")
)

// LineFailure records why one input line was skipped
type LineFailure struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// ValidationStats tallies line outcomes while loading a blob
type ValidationStats struct {
	LineCount             int           `json:"line_count"`
	EmptyLines            int           `json:"empty_lines"`
	JSONProcessingFailure int           `json:"json_processing_failure"`
	JSONProcessingSuccess int           `json:"json_processing_success"`
	ErrorMessage          string        `json:"error_message,omitempty"`
	Failures              []LineFailure `json:"failures,omitempty"`
}

func (s ValidationStats) String() string {
	msg := s.ErrorMessage
	if msg == "" {
		msg = "(none)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "ValidationStats--\n")
	fmt.Fprintf(&b, "  lineCount             = %d\n", s.LineCount)
	fmt.Fprintf(&b, "  emptyLines            = %d\n", s.EmptyLines)
	fmt.Fprintf(&b, "  jsonProcessingFailure = %d\n", s.JSONProcessingFailure)
	fmt.Fprintf(&b, "  jsonProcessingSuccess = %d\n", s.JSONProcessingSuccess)
	fmt.Fprintf(&b, "  errorMessage          = %s", msg)
	return b.String()
}

// GroupError aborts a whole load. Stats holds the tally gathered so far.
type GroupError struct {
	Name   string
	Reason error
	Stats  ValidationStats
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("load %q: %v (lines=%d empty=%d failed=%d parsed=%d)",
		e.Name, e.Reason, e.Stats.LineCount, e.Stats.EmptyLines,
		e.Stats.JSONProcessingFailure, e.Stats.JSONProcessingSuccess)
}

func (e *GroupError) Unwrap() error {
	return e.Reason
}
