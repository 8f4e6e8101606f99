package fetcher

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/LexGlu/energy-data-api/internal/model"
)

func mustDate(t *testing.T, s string) model.MarketDate {
	t.Helper()
	d, err := model.ParseMarketDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestURL(t *testing.T) {
	f := NewHTTPFetcher("https://example.com/export", t.TempDir(), time.Second)
	d := mustDate(t, "09.06.2023")
	want := "https://example.com/export/09.06.2023/DAM/2"
	if got := f.URL(d); got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
}

func TestFetch_WritesArtifact(t *testing.T) {
	body := []byte("xls-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/12.06.2023/DAM/2" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write(body)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL, t.TempDir(), time.Second)
	path, err := f.Fetch(mustDate(t, "12.06.2023"))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(got) != string(body) {
		t.Errorf("artifact content = %q, want %q", got, body)
	}
}

func TestFetch_NonOKIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewHTTPFetcher(srv.URL, dir, time.Second)
	_, err := f.Fetch(mustDate(t, "12.06.2023"))
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", se.StatusCode)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected no artifact on non-200, found %d files", len(entries))
	}
}
