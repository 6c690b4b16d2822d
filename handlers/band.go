package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/showlog/showlogbackend/bandnames"
	"github.com/showlog/showlogbackend/database"
	"github.com/showlog/showlogbackend/realtime"
	"github.com/showlog/showlogbackend/repository"
)

type BandHandler struct {
	DB     *sql.DB
	Bands  repository.BandRepositoryInterface
	Groups repository.AliasGroupStore
	Events EventPublisher
}

// BandSummary is a band reference without timestamps.
type BandSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// BandDetail is a single band with its group membership and both appearance counts.
type BandDetail struct {
	ID                 uint          `json:"id"`
	Name               string        `json:"name"`
	Primary            *BandSummary  `json:"primary,omitempty"`
	Aliases            []BandSummary `json:"aliases"`
	ShowCount          int           `json:"show_count"`
	EffectiveShowCount int           `json:"effective_show_count"`
}

// yearParam returns the "year" query value, rejecting anything but four digits.
func yearParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	year := strings.TrimSpace(r.URL.Query().Get("year"))
	if year == "" {
		return "", true
	}
	if _, err := strconv.Atoi(year); err != nil || len(year) != 4 {
		WriteAPIError(w, http.StatusBadRequest, "invalid_year", "year must be a four digit year")
		return "", false
	}
	return year, true
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		WriteAPIError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}

// ListBands ranks primary and standalone bands by effective show count.
func (bh *BandHandler) ListBands(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	minShows, ok := intParam(w, r, "min_shows")
	if !ok {
		return
	}
	limit, ok := intParam(w, r, "limit")
	if !ok {
		return
	}
	sortOrder := q.Get("sort")
	if sortOrder != "" && !database.IsValidSortOrder(sortOrder) {
		WriteAPIError(w, http.StatusBadRequest, "invalid_sort", "sort must be one of count, name, name_nat")
		return
	}

	bands, err := database.ListBandStats(bh.DB, database.BandFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		MinShows: minShows,
		Year:     year,
		Sort:     sortOrder,
		Limit:    limit,
	})
	if err != nil {
		log.Printf("Error listing bands: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve bands")
		return
	}
	writeJSON(w, http.StatusOK, bands)
}

// ListStandalone lists the bands that can be used to build a new group.
func (bh *BandHandler) ListStandalone(w http.ResponseWriter, r *http.Request) {
	bands, err := bh.Groups.ListStandalone()
	if err != nil {
		writeRepoError(w, "listing standalone bands", err)
		return
	}
	out := make([]BandSummary, len(bands))
	for i, b := range bands {
		out[i] = BandSummary{ID: b.ID, Name: b.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

// ListDuplicates reports stored names that share a normalization key. These are
// suggestions only; nothing is merged.
func (bh *BandHandler) ListDuplicates(w http.ResponseWriter, r *http.Request) {
	names, err := database.ListBandNames(bh.DB)
	if err != nil {
		log.Printf("Error listing band names: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve band names")
		return
	}
	writeJSON(w, http.StatusOK, bandnames.FindDuplicates(names))
}

func (bh *BandHandler) GetBand(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "band_id")
	if !ok {
		return
	}
	band, err := bh.Bands.GetByID(id)
	if err != nil {
		writeRepoError(w, "retrieving band", err)
		return
	}

	detail := BandDetail{ID: band.ID, Name: band.Name, Aliases: []BandSummary{}}
	for _, a := range band.Aliases {
		detail.Aliases = append(detail.Aliases, BandSummary{ID: a.ID, Name: a.Name})
	}
	if band.IsAlias() {
		primary, err := bh.Bands.GetByID(*band.PrimaryBandID)
		if err != nil {
			writeRepoError(w, "retrieving primary band", err)
			return
		}
		detail.Primary = &BandSummary{ID: primary.ID, Name: primary.Name}
	}

	if detail.ShowCount, err = database.DirectShowCount(bh.DB, int64(id)); err != nil {
		writeRepoError(w, "counting band shows", err)
		return
	}
	if detail.EffectiveShowCount, err = bh.Groups.EffectiveShowCount(id); err != nil {
		writeRepoError(w, "counting band shows", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ListBandShows lists every show of the band's group. An alias id lists its primary's shows.
func (bh *BandHandler) ListBandShows(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "band_id")
	if !ok {
		return
	}
	primaryID, err := database.ResolvePrimaryID(bh.DB, int64(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeRepoError(w, "retrieving band", &repository.NotFoundError{Entity: "band", ID: id})
			return
		}
		writeRepoError(w, "retrieving band", err)
		return
	}
	shows, err := database.ListBandShows(bh.DB, primaryID)
	if err != nil {
		writeRepoError(w, "listing band shows", err)
		return
	}
	writeJSON(w, http.StatusOK, shows)
}

func (bh *BandHandler) RenameBand(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "band_id")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := bh.Bands.Rename(id, req.Name); err != nil {
		writeRepoError(w, "renaming band", err)
		return
	}
	publish(bh.Events, realtime.EventBandRenamed, id)
	band, err := bh.Bands.GetByID(id)
	if err != nil {
		writeRepoError(w, "retrieving band", err)
		return
	}
	writeJSON(w, http.StatusOK, BandSummary{ID: band.ID, Name: band.Name})
}
