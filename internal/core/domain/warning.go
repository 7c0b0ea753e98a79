package domain

import (
	"fmt"
	"time"
)

// WarningKind classifies a non-fatal diagnostic.
type WarningKind string

const (
	// WarnMissingField means an input path resolved to nothing.
	WarnMissingField WarningKind = "missing_field"

	// WarnTypeMismatch means the target has the wrong shape for the row.
	WarnTypeMismatch WarningKind = "type_mismatch"

	// WarnCoercion means a value could not be coerced to its declared type.
	WarnCoercion WarningKind = "coercion_failure"

	// WarnExpression means a row expression failed.
	WarnExpression WarningKind = "expression_failure"

	// WarnMisplacedAttribute means an attribute arrived after its element
	// already had content.
	WarnMisplacedAttribute WarningKind = "misplaced_attribute"

	// WarnSkippedRow means the loader dropped a row.
	WarnSkippedRow WarningKind = "skipped_row"
)

// String returns the string representation of the warning kind.
func (k WarningKind) String() string {
	return string(k)
}

// Warning is a non-fatal diagnostic raised while loading or converting.
type Warning struct {
	Kind       WarningKind `json:"kind"`
	Line       int         `json:"line,omitempty"`
	OutputPath string      `json:"output_path,omitempty"`
	InputPath  string      `json:"input_path,omitempty"`
	Message    string      `json:"message"`
}

// String formats the warning for logs.
func (w Warning) String() string {
	s := string(w.Kind)
	if w.Line > 0 {
		s += fmt.Sprintf(" (row %d)", w.Line)
	}
	if w.OutputPath != "" {
		s += " " + w.OutputPath
	}
	if w.InputPath != "" {
		s += " <- " + w.InputPath
	}
	return s + ": " + w.Message
}

// Report summarises a completed conversion.
type Report struct {
	RunID        string        `json:"run_id"`
	Elements     int           `json:"elements"`
	Attributes   int           `json:"attributes"`
	BytesWritten int64         `json:"bytes_written"`
	Warnings     []Warning     `json:"warnings"`
	Duration     time.Duration `json:"duration"`
}

// Count returns the number of warnings of kind k.
func (r *Report) Count(k WarningKind) int {
	n := 0
	for _, w := range r.Warnings {
		if w.Kind == k {
			n++
		}
	}
	return n
}
