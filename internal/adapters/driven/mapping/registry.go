// Package mapping selects mapping table readers and holds the record rules
// shared by the tabular formats.
package mapping

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.MappingReaderRegistry = (*Registry)(nil)

// Registry maps formats and file extensions to readers.
type Registry struct {
	byFormat    map[domain.MappingFormat]driven.MappingReader
	byExtension map[string]driven.MappingReader
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byFormat:    make(map[domain.MappingFormat]driven.MappingReader),
		byExtension: make(map[string]driven.MappingReader),
	}
}

// Register adds reader for its format and the given extensions.
// Extensions are matched case-insensitively, with or without a dot.
func (r *Registry) Register(reader driven.MappingReader, extensions ...string) {
	r.byFormat[reader.Format()] = reader
	for _, ext := range extensions {
		r.byExtension[normaliseExt(ext)] = reader
	}
}

// ForFormat returns the reader for format.
func (r *Registry) ForFormat(format domain.MappingFormat) (driven.MappingReader, error) {
	reader, ok := r.byFormat[format]
	if !ok {
		return nil, fmt.Errorf("%w: mapping format %q", domain.ErrUnsupportedFormat, format)
	}
	return reader, nil
}

// ForPath returns the reader registered for the extension of path.
func (r *Registry) ForPath(path string) (driven.MappingReader, error) {
	ext := normaliseExt(filepath.Ext(path))
	reader, ok := r.byExtension[ext]
	if !ok {
		return nil, fmt.Errorf("%w: no mapping reader for %q", domain.ErrUnsupportedFormat, path)
	}
	return reader, nil
}

// Formats lists the registered formats in sorted order.
func (r *Registry) Formats() []domain.MappingFormat {
	formats := make([]domain.MappingFormat, 0, len(r.byFormat))
	for f := range r.byFormat {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

func normaliseExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MinCells is the number of cells a record needs to be read as a row.
const MinCells = 4

// Rows converts raw records into mapping rows. The first record is the
// header and is skipped. Blank records and records with fewer than
// MinCells cells are skipped with a warning. Line numbers are 1-based
// with the header on line 1.
func Rows(records [][]string) ([]domain.MappingRow, []domain.Warning) {
	if len(records) == 0 {
		return nil, nil
	}
	var rows []domain.MappingRow
	var warnings []domain.Warning
	for i, rec := range records[1:] {
		line := i + 2
		switch {
		case blank(rec):
			warnings = append(warnings, domain.Warning{
				Kind:    domain.WarnSkippedRow,
				Line:    line,
				Message: "blank row",
			})
		case len(rec) < MinCells:
			warnings = append(warnings, domain.Warning{
				Kind:    domain.WarnSkippedRow,
				Line:    line,
				Message: fmt.Sprintf("row has %d cells, at least %d required", len(rec), MinCells),
			})
		default:
			rows = append(rows, domain.RowFromCells(line, rec))
		}
	}
	return rows, warnings
}

func blank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
