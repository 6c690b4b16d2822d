package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strings"

	"github.com/showlog/showlogbackend/bandnames"
	"github.com/showlog/showlogbackend/database"
)

type StatsHandler struct {
	DB       *sql.DB
	TopLimit int
}

func (sh *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := database.GetOverview(sh.DB)
	if err != nil {
		log.Printf("Error building overview: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve overview")
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (sh *StatsHandler) Years(w http.ResponseWriter, r *http.Request) {
	years, err := database.ShowsByYear(sh.DB)
	if err != nil {
		log.Printf("Error counting shows by year: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve yearly counts")
		return
	}
	writeJSON(w, http.StatusOK, years)
}

func (sh *StatsHandler) Venues(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	limit, ok := intParam(w, r, "limit")
	if !ok {
		return
	}
	if limit == 0 {
		limit = sh.TopLimit
	}
	venues, err := database.TopVenues(sh.DB, year, limit)
	if err != nil {
		log.Printf("Error ranking venues: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve venues")
		return
	}
	writeJSON(w, http.StatusOK, venues)
}

func (sh *StatsHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := database.TopEvents(sh.DB)
	if err != nil {
		log.Printf("Error ranking events: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve events")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (sh *StatsHandler) Letters(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	letters, err := database.MostByLetter(sh.DB, year)
	if err != nil {
		log.Printf("Error ranking bands by letter: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve letter leaders")
		return
	}
	writeJSON(w, http.StatusOK, letters)
}

// NormalizeResponse shows how a raw name is treated by the static equivalence table and
// the duplicate-detection key.
type NormalizeResponse struct {
	Name       string `json:"name"`
	Canonical  string `json:"canonical"`
	Equivalent bool   `json:"equivalent"`
	Key        string `json:"key"`
}

// NormalizeHandler serves GET /api/normalize?name=.
func NormalizeHandler(n *bandnames.Normalizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			WriteAPIError(w, http.StatusBadRequest, "validation_failed", "Missing required query parameter: name")
			return
		}
		canonical, ok := n.Lookup(name)
		if !ok {
			canonical = name
		}
		writeJSON(w, http.StatusOK, NormalizeResponse{
			Name:       name,
			Canonical:  canonical,
			Equivalent: ok,
			Key:        bandnames.Key(name),
		})
	}
}
