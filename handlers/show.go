package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strings"

	"github.com/showlog/showlogbackend/database"
	"github.com/showlog/showlogbackend/ingest"
	"github.com/showlog/showlogbackend/realtime"
	"github.com/showlog/showlogbackend/repository"
)

type ShowHandler struct {
	DB     *sql.DB
	Shows  repository.ShowRepositoryInterface
	Events EventPublisher
}

func (sh *ShowHandler) ListShows(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	shows, err := database.ListShows(sh.DB, strings.TrimSpace(r.URL.Query().Get("search")), year)
	if err != nil {
		log.Printf("Error listing shows: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve shows")
		return
	}
	writeJSON(w, http.StatusOK, shows)
}

func (sh *ShowHandler) ListYears(w http.ResponseWriter, r *http.Request) {
	years, err := database.ShowYears(sh.DB)
	if err != nil {
		log.Printf("Error listing show years: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve years")
		return
	}
	writeJSON(w, http.StatusOK, years)
}

func (sh *ShowHandler) CreateShow(w http.ResponseWriter, r *http.Request) {
	var req ingest.ShowRecord
	if !decodeBody(w, r, &req) {
		return
	}
	show, err := sh.Shows.Create(req)
	if err != nil {
		writeRepoError(w, "creating show", err)
		return
	}
	publish(sh.Events, realtime.EventShowCreated, show.ID)
	writeJSON(w, http.StatusCreated, show)
}

func (sh *ShowHandler) UpdateShow(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "show_id")
	if !ok {
		return
	}
	var req ingest.ShowRecord
	if !decodeBody(w, r, &req) {
		return
	}
	show, err := sh.Shows.Update(id, req)
	if err != nil {
		writeRepoError(w, "updating show", err)
		return
	}
	publish(sh.Events, realtime.EventShowUpdated, id)
	writeJSON(w, http.StatusOK, show)
}

func (sh *ShowHandler) DeleteShow(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "show_id")
	if !ok {
		return
	}
	if err := sh.Shows.Delete(id); err != nil {
		writeRepoError(w, "deleting show", err)
		return
	}
	publish(sh.Events, realtime.EventShowDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}
