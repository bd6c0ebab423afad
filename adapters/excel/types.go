package excel

import (
	"fmt"

	"discscore/domain/core"
)

// RawRowData represents a row of raw Excel data as string key-value pairs
type RawRowData map[string]string

// ExcelData represents the complete Excel dataset
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// HasColumn reports whether name is one of the headers
func (d *ExcelData) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Column returns the cells of one column in row order
func (d *ExcelData) Column(name string) ([]string, error) {
	if !d.HasColumn(name) {
		return nil, fmt.Errorf("%w: column %q not found (have %v)", core.ErrInvalidQuery, name, d.Headers)
	}
	cells := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		cells[i] = row[name]
	}
	return cells, nil
}
