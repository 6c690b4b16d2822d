package database

import (
	"database/sql"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/facette/natsort"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// BandStat is one row of the band ranking. Aliases never get their own row; their
// appearances are folded into the primary's TimesSeen.
type BandStat struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	TimesSeen int     `json:"times_seen"`
	FirstShow *string `json:"first_show,omitempty"`
	LastShow  *string `json:"last_show,omitempty"`
}

// BandFilter narrows ListBandStats. Zero values mean "no filter", except MinShows
// which defaults to 1 so bands never seen (in Year) are dropped.
type BandFilter struct {
	Search   string
	MinShows int
	Year     string
	Sort     string
	Limit    int
}

// appearancesQuery selects every appearance with its show date, optionally limited to one year.
func appearancesQuery(year string) sq.SelectBuilder {
	q := psql.Select("sb.id AS appearance_id", "sb.band_id", "s.date").
		From("show_bands sb").
		Join("shows s ON s.id = sb.show_id")
	if year != "" {
		q = q.Where(sq.Expr("strftime('%Y', s.date) = ?", year))
	}
	return q
}

// ListBandStats ranks every non-alias band by effective show count. Ties on count are
// ordered by name ascending.
func ListBandStats(db *sql.DB, filter BandFilter) ([]BandStat, error) {
	if filter.Sort == "" {
		filter.Sort = DefaultSortOrder
	}
	if !IsValidSortOrder(filter.Sort) {
		return nil, fmt.Errorf("invalid sort order: %s", filter.Sort)
	}
	minShows := filter.MinShows
	if minShows <= 0 {
		minShows = 1
	}

	apSQL, apArgs, err := appearancesQuery(filter.Year).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build appearances subquery for ListBandStats: %w", err)
	}

	queryBuilder := psql.Select(
		"b.id",
		"b.name",
		"COUNT(DISTINCT ap.appearance_id) AS times_seen",
		"MIN(ap.date) AS first_show",
		"MAX(ap.date) AS last_show",
	).
		From("bands b").
		LeftJoin("bands m ON (m.id = b.id OR m.primary_band_id = b.id)").
		LeftJoin("("+apSQL+") ap ON ap.band_id = m.id", apArgs...).
		Where(sq.Eq{"b.primary_band_id": nil}).
		GroupBy("b.id", "b.name").
		Having("COUNT(DISTINCT ap.appearance_id) >= ?", minShows)

	if filter.Search != "" {
		queryBuilder = queryBuilder.Where(sq.Like{"b.name": "%" + filter.Search + "%"})
	}

	switch filter.Sort {
	case SortNameAsc:
		queryBuilder = queryBuilder.OrderBy("b.name ASC")
	case SortCountDesc:
		queryBuilder = queryBuilder.OrderBy("times_seen DESC", "b.name ASC")
	}
	if filter.Limit > 0 && filter.Sort != SortNameNat {
		queryBuilder = queryBuilder.Limit(uint64(filter.Limit))
	}

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListBandStats: %w", err)
	}
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListBandStats query: %w", err)
	}
	defer rows.Close()

	bands := []BandStat{}
	for rows.Next() {
		var b BandStat
		var first, last sql.NullString
		if err := rows.Scan(&b.ID, &b.Name, &b.TimesSeen, &first, &last); err != nil {
			return nil, fmt.Errorf("failed to scan band stat row: %w", err)
		}
		if first.Valid {
			b.FirstShow = &first.String
		}
		if last.Valid {
			b.LastShow = &last.String
		}
		bands = append(bands, b)
	}
	if err = rows.Err(); err != nil {
		return bands, fmt.Errorf("error iterating band stat rows: %w", err)
	}

	if filter.Sort == SortNameNat {
		sort.SliceStable(bands, func(i, j int) bool {
			return natsort.Compare(bands[i].Name, bands[j].Name)
		})
		if filter.Limit > 0 && len(bands) > filter.Limit {
			bands = bands[:filter.Limit]
		}
	}
	return bands, nil
}

// ResolvePrimaryID returns the id a band's statistics roll up into: its primary when it
// is an alias, otherwise itself. sql.ErrNoRows is returned for unknown ids.
func ResolvePrimaryID(db *sql.DB, bandID int64) (int64, error) {
	sqlStr, args, err := psql.Select("COALESCE(primary_band_id, id)").
		From("bands").
		Where(sq.Eq{"id": bandID}).
		Limit(1).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL for ResolvePrimaryID: %w", err)
	}
	var primaryID int64
	err = db.QueryRow(sqlStr, args...).Scan(&primaryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, sql.ErrNoRows
		}
		return 0, fmt.Errorf("failed to resolve primary for band %d: %w", bandID, err)
	}
	return primaryID, nil
}

// EffectiveShowCount counts the appearances of a band together with all its current
// aliases. An alias id is first resolved to its primary.
func EffectiveShowCount(db *sql.DB, bandID int64) (int, error) {
	primaryID, err := ResolvePrimaryID(db, bandID)
	if err != nil {
		return 0, err
	}
	sqlStr, args, err := psql.Select("COUNT(DISTINCT sb.id)").
		From("show_bands sb").
		Join("bands m ON m.id = sb.band_id").
		Where(sq.Or{sq.Eq{"m.id": primaryID}, sq.Eq{"m.primary_band_id": primaryID}}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL for EffectiveShowCount: %w", err)
	}
	var count int
	if err := db.QueryRow(sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count effective shows for band %d: %w", bandID, err)
	}
	return count, nil
}

// DirectShowCount counts only the appearances billed under this exact band record.
func DirectShowCount(db *sql.DB, bandID int64) (int, error) {
	sqlStr, args, err := psql.Select("COUNT(DISTINCT id)").
		From("show_bands").
		Where(sq.Eq{"band_id": bandID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL for DirectShowCount: %w", err)
	}
	var count int
	if err := db.QueryRow(sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count direct shows for band %d: %w", bandID, err)
	}
	return count, nil
}
