package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/showlog/showlogbackend/stats"
)

type Overview struct {
	TotalShows int `json:"total_shows"`
	BandsSeen  int `json:"bands_seen"` // aliases are not counted separately
	Venues     int `json:"venues"`
	Events     int `json:"events"`
}

type YearCount struct {
	Year  string `json:"year"`
	Shows int    `json:"shows"`
}

type VenueCount struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Shows    int    `json:"shows"`
}

// ShowSummary is a show with its venue, event and the ordered lineup as billed.
type ShowSummary struct {
	ID            int64    `json:"id"`
	Date          string   `json:"date"`
	VenueName     string   `json:"venue_name"`
	VenueLocation string   `json:"venue_location"`
	Event         *string  `json:"event,omitempty"`
	Lineup        []string `json:"lineup"`
}

// BandShow is a show a band (or one of its aliases) played. PerformedAs is the name
// that was actually billed, which differs from the band's name for alias appearances.
type BandShow struct {
	ShowSummary
	PerformedAs string `json:"performed_as"`
}

func countRows(db *sql.DB, builder sq.SelectBuilder, what string) (int, error) {
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL counting %s: %w", what, err)
	}
	var n int
	if err := db.QueryRow(sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", what, err)
	}
	return n, nil
}

// GetOverview returns the headline totals.
func GetOverview(db *sql.DB) (Overview, error) {
	var o Overview
	var err error
	if o.TotalShows, err = countRows(db, psql.Select("COUNT(*)").From("shows"), "shows"); err != nil {
		return Overview{}, err
	}
	if o.BandsSeen, err = countRows(db, psql.Select("COUNT(*)").From("bands").Where(sq.Eq{"primary_band_id": nil}), "bands"); err != nil {
		return Overview{}, err
	}
	if o.Venues, err = countRows(db, psql.Select("COUNT(*)").From("venues"), "venues"); err != nil {
		return Overview{}, err
	}
	if o.Events, err = countRows(db, psql.Select("COUNT(*)").From("events"), "events"); err != nil {
		return Overview{}, err
	}
	return o, nil
}

// ShowsByYear returns show counts per year, most recent first.
func ShowsByYear(db *sql.DB) ([]YearCount, error) {
	sqlStr, args, err := psql.Select("strftime('%Y', date) AS year", "COUNT(*) AS show_count").
		From("shows").
		GroupBy("year").
		OrderBy("year DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ShowsByYear: %w", err)
	}
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ShowsByYear query: %w", err)
	}
	defer rows.Close()
	years := []YearCount{}
	for rows.Next() {
		var yc YearCount
		if err := rows.Scan(&yc.Year, &yc.Shows); err != nil {
			return nil, fmt.Errorf("failed to scan year row: %w", err)
		}
		years = append(years, yc)
	}
	if err = rows.Err(); err != nil {
		return years, fmt.Errorf("error iterating year rows: %w", err)
	}
	return years, nil
}

// TopVenues ranks venues by number of shows, ties by name.
func TopVenues(db *sql.DB, year string, limit int) ([]VenueCount, error) {
	queryBuilder := psql.Select("v.name", "COALESCE(v.location, '')", "COUNT(s.id) AS show_count").
		From("venues v").
		Join("shows s ON s.venue_id = v.id").
		GroupBy("v.id", "v.name", "v.location").
		OrderBy("show_count DESC", "v.name ASC")
	if year != "" {
		queryBuilder = queryBuilder.Where(sq.Expr("strftime('%Y', s.date) = ?", year))
	}
	if limit > 0 {
		queryBuilder = queryBuilder.Limit(uint64(limit))
	}
	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for TopVenues: %w", err)
	}
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute TopVenues query: %w", err)
	}
	defer rows.Close()
	venues := []VenueCount{}
	for rows.Next() {
		var vc VenueCount
		if err := rows.Scan(&vc.Name, &vc.Location, &vc.Shows); err != nil {
			return nil, fmt.Errorf("failed to scan venue row: %w", err)
		}
		venues = append(venues, vc)
	}
	if err = rows.Err(); err != nil {
		return venues, fmt.Errorf("error iterating venue rows: %w", err)
	}
	return venues, nil
}

// TopEvents ranks events by number of shows, ties by name.
func TopEvents(db *sql.DB) ([]stats.NameCount, error) {
	sqlStr, args, err := psql.Select("e.name", "COUNT(s.id) AS show_count").
		From("events e").
		Join("shows s ON s.event_id = e.id").
		GroupBy("e.id", "e.name").
		OrderBy("show_count DESC", "e.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for TopEvents: %w", err)
	}
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute TopEvents query: %w", err)
	}
	defer rows.Close()
	events := []stats.NameCount{}
	for rows.Next() {
		var nc stats.NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, nc)
	}
	if err = rows.Err(); err != nil {
		return events, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

// ShowYears lists the distinct years with at least one show, most recent first.
func ShowYears(db *sql.DB) ([]string, error) {
	yearCounts, err := ShowsByYear(db)
	if err != nil {
		return nil, err
	}
	years := make([]string, 0, len(yearCounts))
	for _, yc := range yearCounts {
		years = append(years, yc.Year)
	}
	return years, nil
}

// ListBandNames returns every stored band name, aliases included, ordered by name.
func ListBandNames(db *sql.DB) ([]string, error) {
	sqlStr, args, err := psql.Select("name").From("bands").OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListBandNames: %w", err)
	}
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListBandNames query: %w", err)
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan band name: %w", err)
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return names, fmt.Errorf("error iterating band name rows: %w", err)
	}
	return names, nil
}

func showSummaryQuery() sq.SelectBuilder {
	return psql.Select("s.id", "s.date", "v.name", "COALESCE(v.location, '')", "e.name").
		From("shows s").
		Join("venues v ON s.venue_id = v.id").
		LeftJoin("events e ON s.event_id = e.id")
}

// ListShows returns shows newest first. search matches any billed band name; year is
// a four digit year.
func ListShows(db *sql.DB, search, year string) ([]ShowSummary, error) {
	queryBuilder := showSummaryQuery().OrderBy("s.date DESC", "s.id DESC")
	if search != "" {
		queryBuilder = queryBuilder.Where(
			"s.id IN (SELECT sb2.show_id FROM show_bands sb2 JOIN bands b2 ON sb2.band_id = b2.id WHERE b2.name LIKE ?)",
			"%"+search+"%",
		)
	}
	if year != "" {
		queryBuilder = queryBuilder.Where(sq.Expr("strftime('%Y', s.date) = ?", year))
	}
	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListShows: %w", err)
	}

	shows, err := scanShowSummaries(db, sqlStr, args, false)
	if err != nil {
		return nil, err
	}
	summaries := make([]ShowSummary, len(shows))
	for i := range shows {
		summaries[i] = shows[i].ShowSummary
	}
	return summaries, nil
}

// ListBandShows returns every show the band or any of its aliases appeared at, newest
// first. The caller passes a primary or standalone id.
func ListBandShows(db *sql.DB, bandID int64) ([]BandShow, error) {
	sqlStr, args, err := showSummaryQuery().
		Column("b_actual.name").
		Join("show_bands sb ON sb.show_id = s.id").
		Join("bands b_actual ON sb.band_id = b_actual.id").
		Where(sq.Or{sq.Eq{"b_actual.id": bandID}, sq.Eq{"b_actual.primary_band_id": bandID}}).
		OrderBy("s.date DESC", "s.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListBandShows: %w", err)
	}
	return scanShowSummaries(db, sqlStr, args, true)
}

// scanShowSummaries runs a showSummaryQuery and fills in lineups. withPerformedAs is set
// when the query selects an extra billed-name column.
func scanShowSummaries(db *sql.DB, sqlStr string, args []interface{}, withPerformedAs bool) ([]BandShow, error) {
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute show query: %w", err)
	}
	shows := []BandShow{}
	for rows.Next() {
		var bs BandShow
		var event sql.NullString
		dest := []interface{}{&bs.ID, &bs.Date, &bs.VenueName, &bs.VenueLocation, &event}
		if withPerformedAs {
			dest = append(dest, &bs.PerformedAs)
		}
		if err := rows.Scan(dest...); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan show row: %w", err)
		}
		if event.Valid {
			bs.Event = &event.String
		}
		shows = append(shows, bs)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("error iterating show rows: %w", err)
	}

	// rows must be closed first; in-memory databases run on a single connection
	ids := make([]int64, len(shows))
	for i, s := range shows {
		ids[i] = s.ID
	}
	lineups, err := ShowLineups(db, ids)
	if err != nil {
		return nil, err
	}
	for i := range shows {
		shows[i].Lineup = lineups[shows[i].ID]
		if shows[i].Lineup == nil {
			shows[i].Lineup = []string{}
		}
	}
	return shows, nil
}

// ShowLineups returns the billed band names of each show in billing order.
func ShowLineups(db *sql.DB, showIDs []int64) (map[int64][]string, error) {
	lineups := make(map[int64][]string, len(showIDs))
	if len(showIDs) == 0 {
		return lineups, nil
	}
	sqlStr, args, err := psql.Select("sb.show_id", "b.name").
		From("show_bands sb").
		Join("bands b ON sb.band_id = b.id").
		Where(sq.Eq{"sb.show_id": showIDs}).
		OrderBy("sb.show_id", "sb.band_order", "sb.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ShowLineups: %w", err)
	}
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ShowLineups query: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var showID int64
		var name string
		if err := rows.Scan(&showID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan lineup row: %w", err)
		}
		lineups[showID] = append(lineups[showID], name)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lineup rows: %w", err)
	}
	return lineups, nil
}

// MostByLetter ranks bands for each initial letter using effective show counts.
func MostByLetter(db *sql.DB, year string) ([]stats.LetterLeaders, error) {
	bands, err := ListBandStats(db, BandFilter{Year: year})
	if err != nil {
		return nil, err
	}
	counts := make([]stats.NameCount, len(bands))
	for i, b := range bands {
		counts[i] = stats.NameCount{Name: b.Name, Count: b.TimesSeen}
	}
	return stats.MostByLetter(counts), nil
}
