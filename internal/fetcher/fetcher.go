package fetcher

import "github.com/LexGlu/energy-data-api/internal/model"

// Fetcher retrieves the publisher's spreadsheet export for a delivery day.
// On success it returns the path of a temporary artifact the caller must
// dispose of; a non-200 response surfaces as *StatusError.
type Fetcher interface {
	Fetch(date model.MarketDate) (string, error)
	Name() string
}
