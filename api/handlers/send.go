package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kestrelapps/taskdeck-api/api/dispatch"
	"github.com/kestrelapps/taskdeck-api/config"
	"github.com/kestrelapps/taskdeck-api/models"
)

// Send struct mostly used for mocking tests
type Send struct {
	Orchestrator *dispatch.Orchestrator
}

// SendToUsersRequest is the request body for fanning a notification out to several owners
type SendToUsersRequest struct {
	OwnerIDs     []string            `json:"ownerIds"`
	Notification models.Notification `json:"notification"`
}

// SendToUserHandler fans one notification out to every active device of one owner.
// Partial delivery failure is still a 200 with the per-token outcomes embedded.
func (s Send) SendToUserHandler(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["owner_id"]

	var notification models.Notification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	report, err := s.Orchestrator.SendToUser(context.Background(), ownerID, notification)
	if err != nil {
		writeDispatchError(w, err)
		return
	}

	b, err := json.Marshal(report)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SendToUsersHandler fans one notification out to a list of owners independently
func (s Send) SendToUsersHandler(w http.ResponseWriter, r *http.Request) {
	var req SendToUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if len(req.OwnerIDs) == 0 {
		config.ErrorStatus("ownerIds must not be empty", http.StatusBadRequest, w, errOwnersRequired)
		return
	}

	reports, err := s.Orchestrator.SendToUsers(context.Background(), req.OwnerIDs, req.Notification)
	if err != nil {
		writeDispatchError(w, err)
		return
	}

	b, err := json.Marshal(reports)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SendToGroupHandler resolves group membership and fans out to every member
func (s Send) SendToGroupHandler(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["group_id"]

	var notification models.Notification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	reports, err := s.Orchestrator.SendToGroup(context.Background(), groupID, notification)
	if err != nil {
		if errors.Is(err, dispatch.ErrEmptyNotification) {
			writeDispatchError(w, err)
			return
		}
		config.ErrorStatus("failed to resolve group members", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(reports)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func writeDispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dispatch.ErrEmptyNotification):
		config.ErrorStatus("notification title and body are required", http.StatusBadRequest, w, err)
	case errors.Is(err, dispatch.ErrMissingOwner):
		config.ErrorStatus("ownerId is required", http.StatusBadRequest, w, err)
	default:
		config.ErrorStatus("failed to dispatch notification", http.StatusInternalServerError, w, err)
	}
}

var errOwnersRequired = errors.New("missing ownerIds")
