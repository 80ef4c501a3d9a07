package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"fitinsight/internal/domain/dataset"
)

// DecodeCSV reads a delimited-text stream into a single raw table. CSV
// uploads carry no sheet structure, so the result stands in for the members
// table; attendance and payments stay empty.
// PRE: r is a CSV stream with a header row
// POST: ragged rows are tolerated (short rows pad, long rows truncate)
func DecodeCSV(r io.Reader) (dataset.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // ragged exports are common; the coercer copes

	header, err := cr.Read()
	if err == io.EOF {
		return dataset.Table{}, nil
	}
	if err != nil {
		return dataset.Table{}, fmt.Errorf("read csv header: %w", err)
	}

	var cells [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return dataset.Table{}, fmt.Errorf("read csv row: %w", err)
		}
		cells = append(cells, record)
	}

	return dataset.NewTable(header, cells), nil
}
