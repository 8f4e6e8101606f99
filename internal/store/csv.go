package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/LexGlu/energy-data-api/internal/model"
)

var csvHeader = []string{"date", "hour", "price", "volume"}

// CSVStore appends records to a single CSV file, writing the header only when
// the file is empty. Dates are serialized dd.mm.yyyy at this boundary. It is
// typically paired with a FileLedger.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) InsertRecords(records []model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat csv: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, rec := range records {
		row := []string{
			rec.Date.String(),
			strconv.Itoa(rec.Hour),
			strconv.FormatFloat(rec.Price, 'f', -1, 64),
			strconv.FormatFloat(rec.Volume, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func (s *CSVStore) DeleteRecordsForDate(date model.MarketDate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	kept := records[:0]
	for _, rec := range records {
		if !rec.Date.Equal(date) {
			kept = append(kept, rec)
		}
	}
	return s.rewrite(kept)
}

func (s *CSVStore) RecordsForDate(date model.MarketDate) ([]model.Record, error) {
	return s.filter(func(rec model.Record) bool { return rec.Date.Equal(date) })
}

func (s *CSVStore) RecordsForRange(start, end model.MarketDate) ([]model.Record, error) {
	return s.filter(func(rec model.Record) bool {
		return !rec.Date.Before(start) && !rec.Date.After(end)
	})
}

func (s *CSVStore) filter(keep func(model.Record) bool) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []model.Record
	for _, rec := range all {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	// presentation ordering is the query layer's contract
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Hour < out[j].Hour
	})
	return out, nil
}

func (s *CSVStore) readAll() ([]model.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	var records []model.Record
	for i, row := range rows {
		if i == 0 || len(row) < 4 {
			continue
		}
		date, err := model.ParseMarketDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i, err)
		}
		hour, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("csv row %d hour: %w", i, err)
		}
		price, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("csv row %d price: %w", i, err)
		}
		volume, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("csv row %d volume: %w", i, err)
		}
		records = append(records, model.Record{Date: date, Hour: hour, Price: price, Volume: volume})
	}
	return records, nil
}

func (s *CSVStore) rewrite(records []model.Record) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create tmp csv: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Date.String(),
			strconv.Itoa(rec.Hour),
			strconv.FormatFloat(rec.Price, 'f', -1, 64),
			strconv.FormatFloat(rec.Volume, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *CSVStore) Close() error { return nil }
