package domain

import "time"

const unknownDescription = "Unknown"

// MappingFormat identifies the tabular encoding of a mapping table.
type MappingFormat string

// Available mapping formats.
const (
	// MappingFormatCSV is comma separated text with a header row.
	MappingFormatCSV MappingFormat = "csv"

	// MappingFormatXLSX is an Office Open XML spreadsheet.
	MappingFormatXLSX MappingFormat = "xlsx"

	// MappingFormatYAML is a YAML sequence of row mappings.
	MappingFormatYAML MappingFormat = "yaml"
)

// IsValid returns true if the format is recognised.
func (f MappingFormat) IsValid() bool {
	switch f {
	case MappingFormatCSV, MappingFormatXLSX, MappingFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f MappingFormat) String() string {
	return string(f)
}

// Description returns a human-readable description of the format.
func (f MappingFormat) Description() string {
	switch f {
	case MappingFormatCSV:
		return "CSV (comma separated, header row)"
	case MappingFormatXLSX:
		return "XLSX (spreadsheet, header row)"
	case MappingFormatYAML:
		return "YAML (list of rows keyed by column name)"
	default:
		return unknownDescription
	}
}

// AllMappingFormats returns all supported mapping formats.
func AllMappingFormats() []MappingFormat {
	return []MappingFormat{
		MappingFormatCSV,
		MappingFormatXLSX,
		MappingFormatYAML,
	}
}

// OutputSettings controls how XML is written.
type OutputSettings struct {
	// Indent is the indentation unit. Empty means compact output.
	Indent string

	// Namespaces enables xmlns declarations for row namespaces.
	Namespaces bool
}

// MappingSettings controls how mapping tables are read.
type MappingSettings struct {
	// Sheet selects a spreadsheet sheet by name. Empty means the first one.
	Sheet string
}

// HistorySettings controls conversion run recording.
type HistorySettings struct {
	Enabled bool
}

// CacheSettings controls the loaded mapping tree cache.
type CacheSettings struct {
	Size int
}

// WatchSettings controls watch mode.
type WatchSettings struct {
	// Interval is the minimum time between two re-conversions.
	Interval time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Output  OutputSettings
	Mapping MappingSettings
	History HistorySettings
	Cache   CacheSettings
	Watch   WatchSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Output: OutputSettings{
			Namespaces: true,
		},
		History: HistorySettings{
			Enabled: true,
		},
		Cache: CacheSettings{
			Size: 16,
		},
		Watch: WatchSettings{
			Interval: 500 * time.Millisecond,
		},
	}
}
