package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kestrelapps/taskdeck-api/api/dispatch"
	"github.com/kestrelapps/taskdeck-api/config"
	"github.com/kestrelapps/taskdeck-api/models"
)

// PushToken struct mostly used for mocking tests
type PushToken struct {
	Lifecycle *dispatch.Lifecycle
}

// RegisterTokenRequest is the request body for registering a device token
type RegisterTokenRequest struct {
	OwnerID  string `json:"ownerId"`
	Token    string `json:"token"`
	Platform string `json:"platform"`
	DeviceID string `json:"deviceId"`
}

// UnregisterTokenRequest is the request body for unregistering a device token
type UnregisterTokenRequest struct {
	Token string `json:"token"`
}

// RegisterTokenHandler registers (or re-registers) a device push token for an owner
func (p PushToken) RegisterTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.OwnerID == "" || req.Token == "" {
		config.ErrorStatus("ownerId and token are required", http.StatusBadRequest, w, errOwnerAndToken)
		return
	}
	if !models.ValidPlatform(req.Platform) {
		config.ErrorStatus("platform must be ios, android or web", http.StatusBadRequest, w, fmt.Errorf("got %q", req.Platform))
		return
	}

	registration, err := p.Lifecycle.Register(context.Background(), req.OwnerID, req.Token, req.Platform, req.DeviceID)
	if err != nil {
		if errors.Is(err, dispatch.ErrInvalidToken) {
			config.ErrorStatus("failed to register push token", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("failed to register push token", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Debugw("registered push token",
		"ownerId", req.OwnerID,
		"platform", req.Platform,
	)

	b, err := json.Marshal(registration)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UnregisterTokenHandler deactivates a device push token. Unknown tokens are
// acked as well so clients can always log out cleanly.
func (p PushToken) UnregisterTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req UnregisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Token == "" {
		config.ErrorStatus("token is required", http.StatusBadRequest, w, errTokenRequired)
		return
	}

	if err := p.Lifecycle.Unregister(context.Background(), req.Token); err != nil {
		config.ErrorStatus("failed to unregister push token", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"response": "token unregistered"}`))
}

// ListTokensHandler returns the owner's active tokens, for diagnostics
func (p PushToken) ListTokensHandler(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["owner_id"]

	tokens, err := p.Lifecycle.TokensFor(context.Background(), ownerID)
	if err != nil {
		config.ErrorStatus("failed to get tokens by owner ID", http.StatusNotFound, w, err)
		return
	}
	if tokens == nil {
		tokens = []models.DeviceToken{}
	}

	b, err := json.Marshal(tokens)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

var (
	errOwnerAndToken = errors.New("missing ownerId or token")
	errTokenRequired = errors.New("missing token")
)
