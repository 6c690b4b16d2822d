// Package ingest reads raw attendance rows as exported from the AppSheet spreadsheet
// and turns them into show records.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BandSeparator splits the free-text lineup column. Whitespace around each name is
// dropped, so "A, B" and "A ,B" both give two bands.
const BandSeparator = ","

const (
	exportDateLayout = "01/02/2006"
	StoreDateLayout  = "2006-01-02"
)

// Row is one exported attendance row. Field names follow the export's column headers.
type Row struct {
	RowID     string `json:"Row ID"`
	Date      string `json:"Date"`
	Venue     string `json:"Venue"`
	Location  string `json:"Location"`
	Event     string `json:"Event"`
	Bands     string `json:"Bands"`
	Confirmed string `json:"Confirmed"`
}

// ShowRecord is a show ready to be stored: ISO date and a split, ordered lineup.
type ShowRecord struct {
	SourceID  string   `json:"source_id"`
	Date      string   `json:"date"`
	Venue     string   `json:"venue"`
	Location  string   `json:"location"`
	Event     string   `json:"event"`
	Bands     []string `json:"bands"`
	Confirmed bool     `json:"confirmed"`
}

// SplitBands splits a lineup on commas keeping billing order. Blank entries are dropped.
func SplitBands(lineup string) []string {
	var bands []string
	for _, b := range strings.Split(lineup, BandSeparator) {
		if b = strings.TrimSpace(b); b != "" {
			bands = append(bands, b)
		}
	}
	return bands
}

// ParseDate reads the export's MM/DD/YYYY date.
func (r Row) ParseDate() (time.Time, error) {
	t, err := time.Parse(exportDateLayout, strings.TrimSpace(r.Date))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s' in row '%s': %w", r.Date, r.RowID, err)
	}
	return t, nil
}

// ToShowRecord converts the row. Rows without a Row ID get a random source id, so
// re-importing them creates duplicates.
func (r Row) ToShowRecord() (ShowRecord, error) {
	date, err := r.ParseDate()
	if err != nil {
		return ShowRecord{}, err
	}
	sourceID := strings.TrimSpace(r.RowID)
	if sourceID == "" {
		sourceID = uuid.NewString()
	}
	return ShowRecord{
		SourceID:  sourceID,
		Date:      date.Format(StoreDateLayout),
		Venue:     strings.TrimSpace(r.Venue),
		Location:  strings.TrimSpace(r.Location),
		Event:     strings.TrimSpace(r.Event),
		Bands:     SplitBands(r.Bands),
		Confirmed: !strings.EqualFold(strings.TrimSpace(r.Confirmed), "N"),
	}, nil
}

// FilterByYear keeps rows dated in year. year <= 0 keeps everything; rows with an
// unreadable date are dropped when filtering.
func FilterByYear(rows []Row, year int) []Row {
	if year <= 0 {
		return rows
	}
	var out []Row
	for _, r := range rows {
		d, err := r.ParseDate()
		if err != nil {
			continue
		}
		if d.Year() == year {
			out = append(out, r)
		}
	}
	return out
}

// ReadRows decodes a JSON array of rows.
func ReadRows(r io.Reader) ([]Row, error) {
	var rows []Row
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	return rows, nil
}

// LoadRows reads a JSON export file.
func LoadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export '%s': %w", path, err)
	}
	defer f.Close()
	return ReadRows(f)
}
