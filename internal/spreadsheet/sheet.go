package spreadsheet

import (
	"bytes"
	"fmt"
	"os"

	"github.com/extrame/xls"
)

// Sheet is a read-only view over the first worksheet of the publisher's
// export. It is the seam between the pipeline and the xls library: the
// normalizer and the availability rule only ever see this interface.
type Sheet interface {
	// Rows is the number of rows, header included.
	Rows() int
	// Cell returns the formatted text of a cell, "" when absent.
	Cell(row, col int) string
}

type xlsSheet struct {
	sheet *xls.WorkSheet
}

func (s *xlsSheet) Rows() int {
	return int(s.sheet.MaxRow) + 1
}

func (s *xlsSheet) Cell(row, col int) string {
	r := s.sheet.Row(row)
	if r == nil {
		return ""
	}
	return r.Col(col)
}

// Classify opens the artifact at path with the tolerant xls parser (the
// publisher's files do not strictly conform to the BIFF spec), applies the
// availability rule, and deletes the artifact regardless of outcome. No
// on-disk state survives between polls.
func Classify(path string) (Sheet, bool, error) {
	data, err := os.ReadFile(path)
	os.Remove(path)
	if err != nil {
		return nil, false, fmt.Errorf("read artifact: %w", err)
	}

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, false, fmt.Errorf("open workbook: %w", err)
	}
	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, false, fmt.Errorf("workbook has no sheets")
	}
	s := &xlsSheet{sheet: ws}
	return s, Available(s), nil
}

// Available reports whether a sheet carries published data. The publisher
// always returns a well-formed container; a header-only sheet (exactly one
// row) means the day's results are not out yet.
func Available(s Sheet) bool {
	return s.Rows() > 1
}
