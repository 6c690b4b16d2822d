package handlers

import (
	"net/http"

	"github.com/showlog/showlogbackend/realtime"
	"github.com/showlog/showlogbackend/repository"
)

type GroupHandler struct {
	Groups repository.AliasGroupStore
	Events EventPublisher
}

func NewGroupHandler(groups repository.AliasGroupStore, events EventPublisher) *GroupHandler {
	return &GroupHandler{Groups: groups, Events: events}
}

type GroupCreatePayload struct {
	PrimaryID uint   `json:"primary_id"`
	AliasIDs  []uint `json:"alias_ids"`
}

type AliasAddPayload struct {
	AliasID uint `json:"alias_id"`
}

func (gh *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := gh.Groups.ListGroups()
	if err != nil {
		writeRepoError(w, "listing band groups", err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (gh *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupCreatePayload
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PrimaryID == 0 {
		WriteAPIError(w, http.StatusBadRequest, "validation_failed", "Missing required field: primary_id")
		return
	}
	if err := gh.Groups.CreateGroup(req.PrimaryID, req.AliasIDs); err != nil {
		writeRepoError(w, "creating band group", err)
		return
	}
	publish(gh.Events, realtime.EventGroupCreated, req.PrimaryID)
	gh.writeGroup(w, http.StatusCreated, req.PrimaryID)
}

func (gh *GroupHandler) DisbandGroup(w http.ResponseWriter, r *http.Request) {
	primaryID, ok := idParam(w, r, "primary_id")
	if !ok {
		return
	}
	if err := gh.Groups.DisbandGroup(primaryID); err != nil {
		writeRepoError(w, "disbanding band group", err)
		return
	}
	publish(gh.Events, realtime.EventGroupDisbanded, primaryID)
	w.WriteHeader(http.StatusNoContent)
}

func (gh *GroupHandler) AddAlias(w http.ResponseWriter, r *http.Request) {
	primaryID, ok := idParam(w, r, "primary_id")
	if !ok {
		return
	}
	var req AliasAddPayload
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AliasID == 0 {
		WriteAPIError(w, http.StatusBadRequest, "validation_failed", "Missing required field: alias_id")
		return
	}
	if err := gh.Groups.AddAlias(primaryID, req.AliasID); err != nil {
		writeRepoError(w, "adding alias", err)
		return
	}
	publish(gh.Events, realtime.EventAliasAdded, req.AliasID)
	gh.writeGroup(w, http.StatusOK, primaryID)
}

func (gh *GroupHandler) RemoveAlias(w http.ResponseWriter, r *http.Request) {
	aliasID, ok := idParam(w, r, "alias_id")
	if !ok {
		return
	}
	if err := gh.Groups.RemoveAlias(aliasID); err != nil {
		writeRepoError(w, "removing alias", err)
		return
	}
	publish(gh.Events, realtime.EventAliasRemoved, aliasID)
	w.WriteHeader(http.StatusNoContent)
}

// writeGroup responds with the current state of primaryID's group.
func (gh *GroupHandler) writeGroup(w http.ResponseWriter, status int, primaryID uint) {
	groups, err := gh.Groups.ListGroups()
	if err != nil {
		writeRepoError(w, "listing band groups", err)
		return
	}
	for _, g := range groups {
		if g.Primary.ID == primaryID {
			writeJSON(w, status, g)
			return
		}
	}
	// a concurrent edit emptied the group after our write committed
	writeJSON(w, status, map[string]interface{}{"primary_id": primaryID})
}
