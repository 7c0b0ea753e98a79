package domain

import "time"

// RunStatus is the outcome of a conversion run.
type RunStatus string

const (
	// RunSucceeded means the document was written (possibly with warnings).
	RunSucceeded RunStatus = "succeeded"

	// RunFailed means the conversion aborted.
	RunFailed RunStatus = "failed"
)

// String returns the string representation.
func (s RunStatus) String() string {
	return string(s)
}

// ConversionRun is a recorded conversion.
type ConversionRun struct {
	ID           string
	Mapping      string
	Input        string
	Output       string
	Fingerprint  uint64
	Status       RunStatus
	Warnings     int
	BytesWritten int64
	Error        string
	StartedAt    time.Time
	Duration     time.Duration
}

// StoredMapping is a mapping table kept in the mapping library.
type StoredMapping struct {
	Name        string
	Source      string
	Fingerprint uint64
	Rows        []MappingRow
	ImportedAt  time.Time
}

// ConvertRequest describes one conversion.
type ConvertRequest struct {
	// Mapping is a mapping reference: a path or URL, or "db:<name>" for a
	// mapping from the library.
	Mapping string

	// Input and Output are document paths or URLs.
	Input  string
	Output string

	Options OutputSettings
}
