// Package spreadsheet decodes uploaded workbook and CSV containers into raw
// tables. It only handles container mechanics; schema resolution and value
// coercion are the pipeline's job.
package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"fitinsight/internal/domain/dataset"
)

// Named sheets looked up in an uploaded workbook.
const (
	SheetMembers    = "members"
	SheetAttendance = "attendance"
	SheetPayments   = "payments"
)

// Sheets holds the three named tables of one upload. Absent sheets are
// empty tables, not errors.
type Sheets struct {
	Members    dataset.Table
	Attendance dataset.Table
	Payments   dataset.Table
}

// DecodeWorkbook reads an xlsx stream and extracts the members, attendance
// and payments sheets. Sheet names match case-insensitively, so "Members"
// and "MEMBERS" work as well as the canonical lowercase names.
// PRE: r is a readable xlsx stream
// POST: missing sheets come back empty; only an unreadable container errors
func DecodeWorkbook(r io.Reader) (Sheets, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Sheets{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	byName := make(map[string]string)
	for _, name := range f.GetSheetList() {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, taken := byName[key]; !taken {
			byName[key] = name
		}
	}

	var sheets Sheets
	var decodeErr error
	for key, dst := range map[string]*dataset.Table{
		SheetMembers:    &sheets.Members,
		SheetAttendance: &sheets.Attendance,
		SheetPayments:   &sheets.Payments,
	} {
		name, ok := byName[key]
		if !ok {
			continue
		}
		rows, err := f.GetRows(name)
		if err != nil {
			decodeErr = fmt.Errorf("read sheet %q: %w", name, err)
			break
		}
		*dst = tableFromRows(rows)
	}
	if decodeErr != nil {
		return Sheets{}, decodeErr
	}
	return sheets, nil
}

// tableFromRows converts an excelize row matrix (first row = headers) into a
// Table. A sheet without a header row is treated as empty.
func tableFromRows(rows [][]string) dataset.Table {
	if len(rows) == 0 {
		return dataset.Table{}
	}
	return dataset.NewTable(rows[0], rows[1:])
}
