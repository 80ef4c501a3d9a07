package dataset

// Row maps an original (unnormalized) header to the cell value for one record.
// Cell values are always strings; typing happens during coercion.
type Row map[string]string

// Table is one uploaded sheet: an ordered header list plus its data rows.
// A zero Table stands in for a sheet that was absent from the upload.
type Table struct {
	Headers []string
	Rows    []Row
}

// Empty returns true if the table has no data rows.
// INVARIANT: Headers and Rows are not mutated
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Cell returns the value of the given original header in a row.
// Missing keys read as the empty string, same as an empty cell.
func (t Table) Cell(row Row, header string) string {
	return row[header]
}

// NewTable builds a Table from a header list and cell matrix.
// Short rows are padded with empty cells; extra cells are dropped.
// PRE: headers is the first row of the source sheet
// POST: every Row has an entry for every header
func NewTable(headers []string, cells [][]string) Table {
	t := Table{Headers: headers}
	for _, cs := range cells {
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(cs) {
				row[h] = cs[i]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
