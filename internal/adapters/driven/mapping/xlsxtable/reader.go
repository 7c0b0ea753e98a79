// Package xlsxtable reads mapping tables from spreadsheets.
package xlsxtable

import (
	"fmt"

	"github.com/tealeg/xlsx"

	"github.com/custodia-labs/mapxml/internal/adapters/driven/mapping"
	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.MappingReader = (*Reader)(nil)

// Reader reads one sheet of an XLSX workbook.
type Reader struct {
	sheet string
}

// NewReader creates a reader for the named sheet.
// An empty name selects the first sheet.
func NewReader(sheet string) *Reader {
	return &Reader{sheet: sheet}
}

// Format returns domain.MappingFormatXLSX.
func (r *Reader) Format() domain.MappingFormat {
	return domain.MappingFormatXLSX
}

// Read parses the workbook in data.
func (r *Reader) Read(data []byte) ([]domain.MappingRow, []domain.Warning, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, nil, domain.ErrMappingLoad.New(fmt.Sprintf("opening workbook: %v", err))
	}
	sheets, err := file.ToSlice()
	if err != nil {
		return nil, nil, domain.ErrMappingLoad.New(fmt.Sprintf("reading workbook: %v", err))
	}
	if len(sheets) == 0 {
		return nil, nil, domain.ErrMappingLoad.New("workbook has no sheets")
	}

	index := 0
	if r.sheet != "" {
		index = -1
		for i, s := range file.Sheets {
			if s.Name == r.sheet {
				index = i
				break
			}
		}
		if index < 0 || index >= len(sheets) {
			return nil, nil, domain.ErrMappingLoad.New(fmt.Sprintf("workbook has no sheet %q", r.sheet))
		}
	}

	rows, warnings := mapping.Rows(sheets[index])
	return rows, warnings, nil
}
