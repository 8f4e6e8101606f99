// Package api exposes the read-only query service over ingested records.
// It filters by a single date or a date range and renders JSON or CSV; all
// write paths belong to the ingestion pipeline.
package api

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LexGlu/energy-data-api/internal/model"
	"github.com/LexGlu/energy-data-api/internal/store"
)

// Handler serves /dam_data over a storage backend.
type Handler struct {
	Store store.Store

	// Now is the clock used to derive the default query date; overridable in
	// tests.
	Now func() time.Time
	// Target is "tomorrow" (day-ahead default) or "today".
	Target string
}

func NewHandler(st store.Store, target string) *Handler {
	return &Handler{Store: st, Now: time.Now, Target: target}
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.Default()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/dam_data", h.GetRecords)
	return router
}

type recordJSON struct {
	Date   string  `json:"date"`
	Hour   int     `json:"hour"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// GetRecords handles GET /dam_data. Query parameters: either `date` or both
// `start_date` and `end_date` (dd.mm.yyyy), plus optional `format` = json|csv.
// With no date parameters the target day is queried.
func (h *Handler) GetRecords(c *gin.Context) {
	startParam := c.Query("start_date")
	endParam := c.Query("end_date")
	dateParam := c.Query("date")
	format := strings.ToLower(c.Query("format"))

	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid output format. Please use json or csv"})
		return
	}

	if (startParam != "" || endParam != "") && dateParam != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please use either date or date range"})
		return
	}
	if startParam != "" && endParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide end_date parameter"})
		return
	}
	if endParam != "" && startParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide start_date parameter"})
		return
	}

	var (
		records []model.Record
		err     error
	)
	switch {
	case startParam != "" && endParam != "":
		start, perr := model.ParseMarketDate(startParam)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Indicate date in format dd.mm.yyyy"})
			return
		}
		end, perr := model.ParseMarketDate(endParam)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Indicate date in format dd.mm.yyyy"})
			return
		}
		if start.After(end) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be less than end_date"})
			return
		}
		records, err = h.Store.RecordsForRange(start, end)
	default:
		if dateParam == "" {
			dateParam = h.defaultDate().String()
		}
		date, perr := model.ParseMarketDate(dateParam)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Indicate date in format dd.mm.yyyy"})
			return
		}
		records, err = h.Store.RecordsForDate(date)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data is not available yet. Wait until 12:30 - 13:00"})
		return
	}

	if format == "csv" {
		c.Data(http.StatusOK, "text/csv", renderCSV(records))
		return
	}
	out := make([]recordJSON, len(records))
	for i, rec := range records {
		out[i] = recordJSON{
			Date:   rec.Date.String(),
			Hour:   rec.Hour,
			Price:  rec.Price,
			Volume: rec.Volume,
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) defaultDate() model.MarketDate {
	today := model.DateOf(h.Now())
	if h.Target == "today" {
		return today
	}
	return today.AddDays(1)
}

func renderCSV(records []model.Record) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"date", "hour", "price", "volume"})
	for _, rec := range records {
		w.Write([]string{
			rec.Date.String(),
			strconv.Itoa(rec.Hour),
			strconv.FormatFloat(rec.Price, 'f', -1, 64),
			strconv.FormatFloat(rec.Volume, 'f', -1, 64),
		})
	}
	w.Flush()
	return buf.Bytes()
}
