package fetcher

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/LexGlu/energy-data-api/internal/model"
)

// StatusError reports a non-200 response from the publisher. Callers treat it
// as "not yet available", not as a hard ETL failure.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("publisher returned status %d", e.StatusCode)
}

// HTTPFetcher downloads the per-day spreadsheet export.
type HTTPFetcher struct {
	BaseURL string
	Workdir string
	Client  *http.Client
}

// NewHTTPFetcher creates a fetcher writing artifacts under workdir.
// TLS verification is disabled for this client only: the publisher's
// certificate chain is known to be inconsistently valid.
func NewHTTPFetcher(baseURL, workdir string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: baseURL,
		Workdir: workdir,
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

func (f *HTTPFetcher) Name() string { return "oree" }

// URL builds the deterministic per-day export URL.
func (f *HTTPFetcher) URL(date model.MarketDate) string {
	return fmt.Sprintf("%s/%s/DAM/2", f.BaseURL, date)
}

// Fetch downloads the spreadsheet for date into a temporary artifact and
// returns its path. A partially written artifact is removed before any error
// return, so failed attempts leave no files behind.
func (f *HTTPFetcher) Fetch(date model.MarketDate) (string, error) {
	resp, err := f.Client.Get(f.URL(date))
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", date, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	if err := os.MkdirAll(f.Workdir, 0o755); err != nil {
		return "", fmt.Errorf("create workdir: %w", err)
	}
	path := filepath.Join(f.Workdir, fmt.Sprintf("dam_%s.xls", date))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("write artifact for %s: %w", date, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close artifact for %s: %w", date, err)
	}
	return path, nil
}
