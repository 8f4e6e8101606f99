package spreadsheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/LexGlu/energy-data-api/internal/model"
)

// decimals arrive locale-formatted: comma decimal separator, spaces (plain or
// non-breaking) as thousands separators.
var decimalCleaner = strings.NewReplacer(" ", "", " ", "", ",", ".")

// Normalize converts the sheet's data rows into hourly records for date.
// Column 0 is a compound hour label of which only the first two characters
// are the hour (01..24); columns 1 and 2 are price and volume. The publisher
// never repeats the date per row, so it is stamped on here. Row order is
// preserved as published.
//
// The format is all-or-nothing per day: any cell that fails to convert fails
// the whole batch, and nothing is returned.
func Normalize(sheet Sheet, date model.MarketDate) ([]model.Record, error) {
	rows := sheet.Rows()
	records := make([]model.Record, 0, rows-1)
	for r := 1; r < rows; r++ {
		hour, err := parseHour(sheet.Cell(r, 0))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", r, err)
		}
		price, err := parseDecimal(sheet.Cell(r, 1))
		if err != nil {
			return nil, fmt.Errorf("row %d price: %w", r, err)
		}
		volume, err := parseDecimal(sheet.Cell(r, 2))
		if err != nil {
			return nil, fmt.Errorf("row %d volume: %w", r, err)
		}
		records = append(records, model.Record{
			Date:   date,
			Hour:   hour,
			Price:  price,
			Volume: volume,
		})
	}
	return records, nil
}

func parseHour(label string) (int, error) {
	if len(label) < 2 {
		return 0, fmt.Errorf("hour label %q too short", label)
	}
	hour, err := strconv.Atoi(label[:2])
	if err != nil {
		return 0, fmt.Errorf("hour label %q: %w", label, err)
	}
	if hour < 1 || hour > 24 {
		return 0, fmt.Errorf("hour %d out of range 1..24", hour)
	}
	return hour, nil
}

func parseDecimal(s string) (float64, error) {
	cleaned := decimalCleaner.Replace(s)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("decimal %q: %w", s, err)
	}
	return v, nil
}
