// Package yamltable reads mapping tables written as YAML: a sequence of
// mappings keyed by column name.
//
//	- output_path: Company
//	- input_path: name
//	  output_path: Company/Name
//	  output_type: string
//	  parent_key: Company
package yamltable

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.MappingReader = (*Reader)(nil)

// Reader reads YAML mapping tables.
type Reader struct{}

// NewReader creates a YAML reader.
func NewReader() *Reader {
	return &Reader{}
}

// Format returns domain.MappingFormatYAML.
func (r *Reader) Format() domain.MappingFormat {
	return domain.MappingFormatYAML
}

// Read parses data. Each row's line is the YAML line it starts on.
func (r *Reader) Read(data []byte) ([]domain.MappingRow, []domain.Warning, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, domain.ErrMappingLoad.New(fmt.Sprintf("parsing yaml: %v", err))
	}
	if len(doc.Content) == 0 {
		return nil, nil, nil
	}
	seq := doc.Content[0]
	if seq.Kind != yaml.SequenceNode {
		return nil, nil, domain.ErrMappingLoad.New("yaml mapping table must be a sequence of rows")
	}

	rows := make([]domain.MappingRow, 0, len(seq.Content))
	var warnings []domain.Warning
	for _, item := range seq.Content {
		if item.Kind != yaml.MappingNode || len(item.Content) == 0 {
			warnings = append(warnings, domain.Warning{
				Kind:    domain.WarnSkippedRow,
				Line:    item.Line,
				Message: "row is not a mapping",
			})
			continue
		}
		var row domain.MappingRow
		if err := item.Decode(&row); err != nil {
			return nil, nil, domain.ErrInvalidRow.New(item.Line, err.Error())
		}
		row = domain.RowFromCells(item.Line, row.Cells())
		rows = append(rows, row)
	}
	return rows, warnings, nil
}

// Write renders rows as a YAML mapping table.
func Write(rows []domain.MappingRow) ([]byte, error) {
	return yaml.Marshal(rows)
}
