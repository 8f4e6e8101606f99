package model

import (
	"fmt"
	"time"
)

// BoundaryFormat is the date layout used everywhere the publisher or the
// query API is involved: the download URL, the ledger file, and the JSON/CSV
// output all speak dd.mm.yyyy.
const BoundaryFormat = "02.01.2006"

// isoFormat is the layout records are stored under; it sorts lexicographically.
const isoFormat = "2006-01-02"

// MarketDate is a calendar delivery day. The zero value is invalid.
type MarketDate struct {
	t time.Time
}

// ParseMarketDate parses a dd.mm.yyyy token.
func ParseMarketDate(s string) (MarketDate, error) {
	t, err := time.Parse(BoundaryFormat, s)
	if err != nil {
		return MarketDate{}, fmt.Errorf("parse date %q: expected dd.mm.yyyy: %w", s, err)
	}
	return MarketDate{t: t}, nil
}

// ParseISODate parses a yyyy-mm-dd token, the storage-side layout.
func ParseISODate(s string) (MarketDate, error) {
	t, err := time.Parse(isoFormat, s)
	if err != nil {
		return MarketDate{}, fmt.Errorf("parse date %q: expected yyyy-mm-dd: %w", s, err)
	}
	return MarketDate{t: t}, nil
}

// DateOf truncates a time to its calendar day.
func DateOf(t time.Time) MarketDate {
	y, m, d := t.Date()
	return MarketDate{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d MarketDate) String() string { return d.t.Format(BoundaryFormat) }
func (d MarketDate) ISO() string    { return d.t.Format(isoFormat) }
func (d MarketDate) IsZero() bool   { return d.t.IsZero() }

func (d MarketDate) AddDays(n int) MarketDate { return MarketDate{t: d.t.AddDate(0, 0, n)} }
func (d MarketDate) Before(o MarketDate) bool { return d.t.Before(o.t) }
func (d MarketDate) After(o MarketDate) bool  { return d.t.After(o.t) }
func (d MarketDate) Equal(o MarketDate) bool  { return d.t.Equal(o.t) }

// Record is one settlement-hour observation of the day-ahead market.
// (date, hour) is the natural key; records are insert-only.
type Record struct {
	Date   MarketDate
	Hour   int // 1..24 as published
	Price  float64
	Volume float64
}
