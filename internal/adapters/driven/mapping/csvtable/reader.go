// Package csvtable reads mapping tables from comma separated text.
package csvtable

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/custodia-labs/mapxml/internal/adapters/driven/mapping"
	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.MappingReader = (*Reader)(nil)

var bom = []byte{0xEF, 0xBB, 0xBF}

// Reader reads CSV mapping tables.
type Reader struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// NewReader creates a comma delimited reader.
func NewReader() *Reader {
	return &Reader{}
}

// Format returns domain.MappingFormatCSV.
func (r *Reader) Format() domain.MappingFormat {
	return domain.MappingFormatCSV
}

// Read parses data. Records may have any number of fields.
func (r *Reader) Read(data []byte) ([]domain.MappingRow, []domain.Warning, error) {
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, bom)))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if r.Comma != 0 {
		cr.Comma = r.Comma
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, domain.ErrMappingLoad.New(fmt.Sprintf("reading csv: %v", err))
	}
	rows, warnings := mapping.Rows(records)
	return rows, warnings, nil
}
