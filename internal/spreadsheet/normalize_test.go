package spreadsheet

import (
	"fmt"
	"testing"

	"github.com/LexGlu/energy-data-api/internal/model"
)

// fakeSheet implements Sheet from an in-memory grid.
type fakeSheet struct {
	grid [][]string
}

func (f *fakeSheet) Rows() int { return len(f.grid) }

func (f *fakeSheet) Cell(row, col int) string {
	if row >= len(f.grid) || col >= len(f.grid[row]) {
		return ""
	}
	return f.grid[row][col]
}

func mustDate(t *testing.T, s string) model.MarketDate {
	t.Helper()
	d, err := model.ParseMarketDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func fullDaySheet() *fakeSheet {
	grid := [][]string{{"Hour", "Price", "Volume"}}
	for h := 1; h <= 24; h++ {
		grid = append(grid, []string{
			fmt.Sprintf("%02d (%02d:00-%02d:00)", h, h-1, h),
			fmt.Sprintf("%d,50", 1000+h),
			fmt.Sprintf("%d,00", 100+h),
		})
	}
	return &fakeSheet{grid: grid}
}

func TestAvailable(t *testing.T) {
	headerOnly := &fakeSheet{grid: [][]string{{"Hour", "Price", "Volume"}}}
	if Available(headerOnly) {
		t.Error("header-only sheet must not be available")
	}
	if !Available(fullDaySheet()) {
		t.Error("sheet with data rows must be available")
	}
}

func TestNormalize_FullDay(t *testing.T) {
	date := mustDate(t, "09.06.2023")
	records, err := Normalize(fullDaySheet(), date)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(records) != 24 {
		t.Fatalf("expected 24 records, got %d", len(records))
	}
	seen := make(map[int]bool)
	for i, rec := range records {
		if !rec.Date.Equal(date) {
			t.Errorf("record %d: date %s, want %s", i, rec.Date, date)
		}
		if rec.Hour < 1 || rec.Hour > 24 || seen[rec.Hour] {
			t.Errorf("record %d: bad or duplicate hour %d", i, rec.Hour)
		}
		seen[rec.Hour] = true
	}
	// row order preserved: hour 1 first, hour 24 last
	if records[0].Hour != 1 || records[23].Hour != 24 {
		t.Errorf("row order not preserved: first=%d last=%d", records[0].Hour, records[23].Hour)
	}
}

func TestNormalize_LocaleDecimals(t *testing.T) {
	date := mustDate(t, "09.06.2023")
	sheet := &fakeSheet{grid: [][]string{
		{"Hour", "Price", "Volume"},
		{"01 (00:00-01:00)", "1 234,56", "123,45"},
	}}
	records, err := Normalize(sheet, date)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if records[0].Price != 1234.56 {
		t.Errorf("price = %v, want 1234.56", records[0].Price)
	}
	if records[0].Volume != 123.45 {
		t.Errorf("volume = %v, want 123.45", records[0].Volume)
	}
}

func TestNormalize_AllOrNothing(t *testing.T) {
	date := mustDate(t, "09.06.2023")
	tests := []struct {
		name string
		row  []string
	}{
		{"bad hour label", []string{"x", "100,0", "10,0"}},
		{"hour out of range", []string{"25 (24:00-25:00)", "100,0", "10,0"}},
		{"bad price", []string{"02 (01:00-02:00)", "n/a", "10,0"}},
		{"bad volume", []string{"02 (01:00-02:00)", "100,0", ""}},
	}
	for _, tt := range tests {
		sheet := &fakeSheet{grid: [][]string{
			{"Hour", "Price", "Volume"},
			{"01 (00:00-01:00)", "100,0", "10,0"},
			tt.row,
		}}
		records, err := Normalize(sheet, date)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
		if records != nil {
			t.Errorf("%s: expected no records on failure, got %d", tt.name, len(records))
		}
	}
}
