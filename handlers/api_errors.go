package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/showlog/showlogbackend/realtime"
	"github.com/showlog/showlogbackend/repository"
)

// EventPublisher receives change notifications after a mutation commits.
type EventPublisher interface {
	Broadcast(event realtime.Event)
}

func publish(p EventPublisher, eventType string, id uint) {
	if p != nil {
		p.Broadcast(realtime.Event{Type: eventType, ID: id})
	}
}

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{
		Errors: []APIErrorDetail{
			{
				Code:   code,
				Status: strconv.Itoa(httpStatus),
				Detail: detail,
			},
		},
	}

	_ = json.NewEncoder(w).Encode(resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

// writeRepoError maps repository errors onto HTTP statuses. Anything unrecognised is
// logged and reported as a 500 without leaking the underlying message.
func writeRepoError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidGroup):
		WriteAPIError(w, http.StatusUnprocessableEntity, "invalid_group", err.Error())
	case errors.Is(err, repository.ErrNotFound):
		WriteAPIError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, repository.ErrDuplicateName):
		WriteAPIError(w, http.StatusConflict, "duplicate_name", err.Error())
	case errors.Is(err, repository.ErrValidation):
		WriteAPIError(w, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		log.Printf("Error %s: %v", action, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed "+action)
	}
}

// idParam reads a positive numeric URL parameter, writing a 400 when it is malformed.
func idParam(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid "+name+": "+raw)
		return 0, false
	}
	return uint(id), true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return false
	}
	return true
}
