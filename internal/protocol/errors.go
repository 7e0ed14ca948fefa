package protocol

import (
	"errors"
	"fmt"
)

// Sentinel errors for skater blocks that cannot be parsed. Match them with errors.Is.
var (
	ErrColumnCount      = errors.New("wrong summary column count")
	ErrBoundaryNotFound = errors.New("failed to separate TES and PCS")
)

// ParseError reports a skater block that was abandoned, with enough context to find
// the offending protocol row by hand.
type ParseError struct {
	Competition string
	Source      string
	Skater      string
	Row         Line
	Err         error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s - %s: skater %q: %v: row %s", e.Competition, e.Source, e.Skater, e.Err, e.Row)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WarningKind classifies a data-quality warning
type WarningKind string

const (
	WarnRaggedColumns    WarningKind = "ragged_columns"
	WarnUnrecognizedMark WarningKind = "unrecognized_mark"
	WarnUnknownCategory  WarningKind = "unknown_category"
	WarnColumnNames      WarningKind = "column_names"
	WarnAmbiguousGroup   WarningKind = "ambiguous_group"
	WarnNationApprox     WarningKind = "nation_approx"

	WarnUnknownCompetition WarningKind = "unknown_competition"
)

// Warning is a non-fatal data-quality problem. The output it refers to is still
// produced but needs a human look.
type Warning struct {
	Kind        WarningKind `json:"kind"`
	Competition string      `json:"competition"`
	Source      string      `json:"source,omitempty"`
	Skater      string      `json:"skater,omitempty"`
	Detail      string      `json:"detail"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s - %s: %s %s", w.Kind, w.Competition, w.Source, w.Skater, w.Detail)
}
